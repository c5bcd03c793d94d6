package formula

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/formweave/formweave/internal/pathmap"
)

// Evaluator compiles and runs formulas against flat value bindings.
// Compiled programs are cached by source text; the cache is safe for
// concurrent use and the evaluation itself is pure.
type Evaluator struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

// NewEvaluator creates an Evaluator with an empty program cache.
func NewEvaluator() *Evaluator {
	return &Evaluator{programs: make(map[string]*vm.Program)}
}

// Evaluate runs a formula against the flat values+derived bindings map.
// Identifiers are dotted paths; a reference to a path absent from the
// bindings (and not an object prefix of any binding) is an unknown
// identifier. All failures surface as *FormulaError.
func (e *Evaluator) Evaluate(formula string, bindings map[string]any) (any, error) {
	a, err := analyze(formula)
	if err != nil {
		return nil, err
	}

	for _, fn := range a.functions {
		if !allowedFunctions[fn] {
			return nil, &FormulaError{
				Formula:    formula,
				Identifier: fn,
				Message:    "unknown function",
			}
		}
	}
	for _, id := range a.identifiers {
		if !bindingExists(bindings, id) {
			return nil, &FormulaError{
				Formula:    formula,
				Identifier: id,
				Message:    "unknown identifier",
			}
		}
	}

	program, err := e.compile(formula)
	if err != nil {
		return nil, err
	}

	env, err := pathmap.Unflatten(bindings)
	if err != nil {
		var pathErr *pathmap.PathError
		if errors.As(err, &pathErr) {
			return nil, &FormulaError{Formula: formula, Message: pathErr.Error(), Err: err}
		}
		return nil, &FormulaError{Formula: formula, Message: "invalid bindings", Err: err}
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, &FormulaError{
			Formula: formula,
			Message: fmt.Sprintf("evaluation failed: %v", err),
			Err:     err,
		}
	}
	return out, nil
}

// Check compiles a formula without running it, reporting parse failures
// and unknown functions. Used by the config compiler for static checks.
func (e *Evaluator) Check(formula string) error {
	a, err := analyze(formula)
	if err != nil {
		return err
	}
	for _, fn := range a.functions {
		if !allowedFunctions[fn] {
			return &FormulaError{Formula: formula, Identifier: fn, Message: "unknown function"}
		}
	}
	_, err = e.compile(formula)
	return err
}

// compile returns the cached program for a formula, compiling on first use
// with every expr builtin disabled and only the allowed functions exposed.
func (e *Evaluator) compile(formula string) (*vm.Program, error) {
	e.mu.RLock()
	program, ok := e.programs[formula]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	opts := append(functionOptions(),
		expr.DisableAllBuiltins(),
		expr.AllowUndefinedVariables(),
	)
	program, err := expr.Compile(formula, opts...)
	if err != nil {
		return nil, parseError(formula, err)
	}

	e.mu.Lock()
	e.programs[formula] = program
	e.mu.Unlock()
	return program, nil
}

// bindingExists reports whether a dotted identifier resolves against the
// flat bindings: either as an exact key or as an object prefix of one
// (referencing "user" when "user.name" is bound).
func bindingExists(bindings map[string]any, identifier string) bool {
	if _, ok := bindings[identifier]; ok {
		return true
	}
	prefix := identifier + "."
	for key := range bindings {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
