package formula

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
)

// allowedFunctions is the closed function set exposed to formulas.
var allowedFunctions = map[string]bool{
	"ROUND": true,
	"ABS":   true,
	"MIN":   true,
	"MAX":   true,
}

// functionOptions returns the expr compile options registering the allowed
// function set.
func functionOptions() []expr.Option {
	return []expr.Option{
		expr.Function("ROUND", fnRound),
		expr.Function("ABS", fnAbs),
		expr.Function("MIN", fnMin),
		expr.Function("MAX", fnMax),
	}
}

// fnRound rounds to the nearest integer, or to the given number of decimal
// digits when a second argument is supplied.
func fnRound(params ...any) (any, error) {
	if len(params) < 1 || len(params) > 2 {
		return nil, fmt.Errorf("ROUND expects 1 or 2 arguments, got %d", len(params))
	}
	x, err := toFloat(params[0])
	if err != nil {
		return nil, fmt.Errorf("ROUND: %w", err)
	}
	if len(params) == 1 {
		return math.Round(x), nil
	}
	digits, err := toFloat(params[1])
	if err != nil {
		return nil, fmt.Errorf("ROUND digits: %w", err)
	}
	pow := math.Pow(10, math.Trunc(digits))
	return math.Round(x*pow) / pow, nil
}

func fnAbs(params ...any) (any, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("ABS expects 1 argument, got %d", len(params))
	}
	x, err := toFloat(params[0])
	if err != nil {
		return nil, fmt.Errorf("ABS: %w", err)
	}
	return math.Abs(x), nil
}

func fnMin(params ...any) (any, error) {
	return fold("MIN", math.Min, params)
}

func fnMax(params ...any) (any, error) {
	return fold("MAX", math.Max, params)
}

func fold(name string, pick func(a, b float64) float64, params []any) (any, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("%s expects at least 1 argument", name)
	}
	result, err := toFloat(params[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	for _, p := range params[1:] {
		x, err := toFloat(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		result = pick(result, x)
	}
	return result, nil
}

// toFloat coerces the numeric types a JSON document or expr can produce.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
