package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/apiwrapper/internal/ir"
)

// LogSnapshot captures the call log of a scenario run.
type LogSnapshot struct {
	ScenarioName string     `json:"scenario_name"`
	Log          []LogEntry `json:"log"`
	Used         []string   `json:"used"`
}

// toCanonicalMap converts a LogSnapshot to a plain map for canonical JSON
// serialization, dropping empty optional fields.
func (s *LogSnapshot) toCanonicalMap() map[string]any {
	logList := make([]any, len(s.Log))
	for i, entry := range s.Log {
		entryMap := map[string]any{
			"step":   entry.Step,
			"call":   entry.Call,
			"params": entry.Params,
		}
		if entry.MatchKey != "" {
			entryMap["match_key"] = entry.MatchKey
		}
		if entry.Return != nil {
			entryMap["return"] = entry.Return
		}
		if entry.Error != "" {
			entryMap["error"] = entry.Error
		}
		logList[i] = entryMap
	}

	used := make([]any, len(s.Used))
	for i, key := range s.Used {
		used[i] = key
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"log":           logList,
		"used":          used,
	}
}

// RunWithGolden executes a scenario and compares its call log against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the log doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Snapshot returns the canonical JSON of the call log of result, the
// content of its golden file.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := LogSnapshot{
		ScenarioName: scenarioName,
		Log:          result.Log,
		Used:         result.Used,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// AssertGolden compares the call log of result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	logJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, logJSON)

	return nil
}
