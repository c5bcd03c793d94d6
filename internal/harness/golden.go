package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden-file representation of a scenario's end state.
// json.MarshalIndent sorts map keys, so serialization is deterministic.
type Snapshot struct {
	ScenarioName string            `json:"scenario_name"`
	Mode         string            `json:"mode"`
	Values       map[string]any    `json:"values"`
	Derived      map[string]any    `json:"derived,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
	Valid        bool              `json:"valid"`
	Dirty        bool              `json:"dirty"`
	Document     map[string]any    `json:"document,omitempty"`
}

// RunWithGolden executes a scenario and compares its end-state snapshot
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := Snapshot{
		ScenarioName: scenario.Name,
		Mode:         scenario.Mode,
		Values:       result.State.Values,
		Derived:      result.State.Derived,
		Errors:       result.State.Errors,
		Valid:        result.Valid,
		Dirty:        result.State.Meta.IsDirty,
		Document:     result.Document,
	}
	if len(snapshot.Derived) == 0 {
		snapshot.Derived = nil
	}
	if len(snapshot.Errors) == 0 {
		snapshot.Errors = nil
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
