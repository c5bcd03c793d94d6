package harness

import (
	"fmt"
	"reflect"

	"github.com/formweave/formweave/internal/compiler"
	"github.com/formweave/formweave/internal/form"
	"github.com/formweave/formweave/internal/formstate"
	"github.com/formweave/formweave/internal/pathmap"
)

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every expectation matched.
	Pass bool `json:"pass"`

	// Failures lists expectation mismatches. Empty if Pass is true.
	Failures []string `json:"failures,omitempty"`

	// State is the final form state.
	State *formstate.FormState `json:"state"`

	// Document is the prepared document, present when the mode submits.
	Document map[string]any `json:"document,omitempty"`

	// Valid is the final validation outcome.
	Valid bool `json:"valid"`
}

// Run executes a scenario: compile the config, open the session, apply
// every step, validate, and (when the mode submits) prepare the document.
// Expectation mismatches land in Result.Failures; an error return means
// the scenario could not run at all.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := compiler.Load(scenario.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	mode, err := form.ParseMode(scenario.Mode)
	if err != nil {
		return nil, err
	}

	manager := formstate.NewManager()
	state, err := manager.New(cfg, mode, scenario.Existing, scenario.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("open form: %w", err)
	}

	for i, step := range scenario.Steps {
		state, err = manager.Update(state, cfg, step.Set, step.Value)
		if err != nil {
			return nil, fmt.Errorf("steps[%d] set %q: %w", i, step.Set, err)
		}
	}

	result := &Result{Pass: true, State: state}
	result.Valid = manager.Validate(state, cfg)

	if mode.CanSubmit() {
		doc, err := formstate.PrepareDocument(state, cfg, manager.SubmitConfig(state, cfg))
		if err != nil {
			return nil, fmt.Errorf("prepare document: %w", err)
		}
		result.Document = doc
	}

	checkExpectations(scenario.Expect, result)
	return result, nil
}

// checkExpectations applies the scenario's subset-match assertions to the
// final state.
func checkExpectations(expect *Expect, result *Result) {
	if expect == nil {
		return
	}
	fail := func(format string, args ...any) {
		result.Failures = append(result.Failures, fmt.Sprintf(format, args...))
		result.Pass = false
	}

	if expect.Valid != nil && result.Valid != *expect.Valid {
		fail("valid = %v, want %v (errors: %v)", result.Valid, *expect.Valid, result.State.Errors)
	}
	if expect.Dirty != nil && result.State.Meta.IsDirty != *expect.Dirty {
		fail("dirty = %v, want %v", result.State.Meta.IsDirty, *expect.Dirty)
	}

	for path, want := range expect.Errors {
		got, ok := result.State.Errors[path]
		if !ok {
			fail("expected an error on %q, got none", path)
			continue
		}
		if want != "" && got != want {
			fail("error on %q = %q, want %q", path, got, want)
		}
	}

	for path, want := range expect.Values {
		if got, ok := result.State.Values[path]; !ok || !looselyEqual(got, want) {
			fail("values[%q] = %v, want %v", path, got, want)
		}
	}
	for path, want := range expect.Derived {
		if got, ok := result.State.Derived[path]; !ok || !looselyEqual(got, want) {
			fail("derived[%q] = %v, want %v", path, got, want)
		}
	}

	for path, want := range expect.Document {
		if result.Document == nil {
			fail("expected a prepared document, mode does not submit")
			break
		}
		got, ok := pathmap.Get(result.Document, path)
		if !ok || !looselyEqual(got, want) {
			fail("document[%q] = %v, want %v", path, got, want)
		}
	}
}

// looselyEqual compares across the numeric type mix YAML and the engine
// produce (int vs float64).
func looselyEqual(got, want any) bool {
	if reflect.DeepEqual(got, want) {
		return true
	}
	gf, gok := toFloat(got)
	wf, wok := toFloat(want)
	return gok && wok && gf == wf
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
