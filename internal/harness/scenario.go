// Package harness runs declarative form-session scenarios: load a form
// configuration, open it in a mode, apply a sequence of field updates,
// then check validation results and the prepared document.
//
// Scenarios live in YAML files next to the configs they exercise, so
// form behavior can be pinned down without writing Go for every case.
// Golden-file comparison captures the full end state for regression
// checks.
package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one form-session test: which config and mode to open,
// the document to hydrate from, the updates to apply, and what to expect
// at the end.
type Scenario struct {
	// Name uniquely identifies this scenario; it is also the golden file
	// name.
	Name string `yaml:"name"`

	// Description explains what this scenario pins down.
	Description string `yaml:"description"`

	// Config is the path to the form configuration file (.cue, .json, or
	// .yaml), relative to the scenario file unless absolute.
	Config string `yaml:"config"`

	// Mode the session opens in.
	Mode string `yaml:"mode"`

	// Existing is the document hydrated in edit/view/clone modes.
	Existing map[string]any `yaml:"existing,omitempty"`

	// DocumentID identifies the hydrated document.
	DocumentID string `yaml:"documentId,omitempty"`

	// Steps are applied in order; each sets one field value.
	Steps []Step `yaml:"steps,omitempty"`

	// Expect holds the end-state assertions. All matches are subset
	// matches: only the listed keys are checked.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Step sets one field to a value.
type Step struct {
	Set   string `yaml:"set"`
	Value any    `yaml:"value"`
}

// Expect describes the expected end state of a scenario.
type Expect struct {
	// Valid asserts the overall validation outcome.
	Valid *bool `yaml:"valid,omitempty"`

	// Errors maps field paths to expected messages. An empty string
	// asserts the field has some error without pinning the text.
	Errors map[string]string `yaml:"errors,omitempty"`

	// Values and Derived assert flat state entries.
	Values  map[string]any `yaml:"values,omitempty"`
	Derived map[string]any `yaml:"derived,omitempty"`

	// Document asserts entries of the prepared document, keyed by dotted
	// path.
	Document map[string]any `yaml:"document,omitempty"`

	// Dirty asserts the final dirty flag.
	Dirty *bool `yaml:"dirty,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file, resolving the
// config path relative to the scenario file. Unknown fields are rejected
// so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) {
		scenario.Config = filepath.Join(filepath.Dir(path), scenario.Config)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Config == "" {
		return fmt.Errorf("config is required")
	}
	if _, err := os.Stat(s.Config); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", s.Config)
	}
	if s.Mode == "" {
		return fmt.Errorf("mode is required")
	}
	for i, step := range s.Steps {
		if step.Set == "" {
			return fmt.Errorf("steps[%d]: set is required", i)
		}
	}
	return nil
}
