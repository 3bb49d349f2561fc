package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a replay test: the dumps to register and the calls to make.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dumps lists the dump files to register, in order. A later any-params
	// record of a subject replaces an earlier one.
	Dumps []DumpRef `yaml:"dumps"`

	// Steps are the calls to make, in order.
	Steps []Step `yaml:"steps"`

	// ExpectUsed is the number of calls recorded dumps must have answered.
	ExpectUsed *int `yaml:"expect_used,omitempty"`

	// Assertions validate the log of used match keys.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// DumpRef is one dump file to register.
type DumpRef struct {
	// File is the dump path, relative to the scenario file unless absolute.
	File string `yaml:"file"`

	// MatchParams registers the record for calls with equal params only.
	MatchParams bool `yaml:"match_params,omitempty"`
}

// Step is one call. Exactly one of Action or Module+Function is set.
type Step struct {
	Action   string `yaml:"action,omitempty"`
	Module   string `yaml:"module,omitempty"`
	Function string `yaml:"function,omitempty"`

	// Params are the positional call params.
	Params []any `yaml:"params,omitempty"`

	// Expect specifies the expected outcome. If nil, the call must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// Call names the call of the step, e.g. "action ping" or "ShopModule::getOrder".
func (s Step) Call() string {
	if s.Action != "" {
		return "action " + s.Action
	}
	return s.Module + "::" + s.Function
}

// ExpectClause specifies the expected outcome of a step. Setting Error or
// ErrorClass expects a failure.
type ExpectClause struct {
	// Return is the expected return value; objects match as subsets.
	// If nil, the return value is not checked.
	Return any `yaml:"return,omitempty"`

	// Error is a substring of the expected error message.
	Error string `yaml:"error,omitempty"`

	// ErrorClass is the class of the expected replayed failure.
	ErrorClass string `yaml:"error_class,omitempty"`
}

// ExpectsError reports whether the clause expects a failure.
func (e *ExpectClause) ExpectsError() bool {
	return e != nil && (e.Error != "" || e.ErrorClass != "")
}

// Assertion validates the used match keys.
type Assertion struct {
	// Type is one of used_contains, used_order, used_count.
	Type string `yaml:"type"`

	// Key is the match key (used_contains, used_count).
	Key string `yaml:"key,omitempty"`

	// Keys is the expected key order (used_order).
	Keys []string `yaml:"keys,omitempty"`

	// Count is the expected number of uses (used_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertUsedContains = "used_contains"
	AssertUsedOrder    = "used_order"
	AssertUsedCount    = "used_count"
)

// LoadScenario reads and parses a scenario YAML file, resolving dump paths
// relative to the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving dump paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields (catches typos like "step:" vs "steps:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve dump paths BEFORE validation
	for i, ref := range scenario.Dumps {
		if ref.File != "" && !filepath.IsAbs(ref.File) && basePath != "" {
			scenario.Dumps[i].File = filepath.Join(basePath, ref.File)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, ref := range s.Dumps {
		if ref.File == "" {
			return fmt.Errorf("dumps[%d]: file is required", i)
		}
		if _, err := os.Stat(ref.File); os.IsNotExist(err) {
			return fmt.Errorf("dump file not found: %s", ref.File)
		}
	}

	for i, step := range s.Steps {
		switch {
		case step.Action != "" && (step.Module != "" || step.Function != ""):
			return fmt.Errorf("steps[%d]: action and module are mutually exclusive", i)
		case step.Action == "" && step.Module == "":
			return fmt.Errorf("steps[%d]: action or module is required", i)
		case step.Module != "" && step.Function == "":
			return fmt.Errorf("steps[%d]: function is required with module", i)
		}
		if step.Expect != nil && step.Expect.Return != nil && step.Expect.ExpectsError() {
			return fmt.Errorf("steps[%d].expect: return and error are mutually exclusive", i)
		}
	}

	if s.ExpectUsed != nil && *s.ExpectUsed < 0 {
		return fmt.Errorf("expect_used must be non-negative")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertUsedContains:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for used_contains", index)
		}
	case AssertUsedOrder:
		if len(a.Keys) == 0 {
			return fmt.Errorf("assertions[%d]: keys list is required for used_order", index)
		}
	case AssertUsedCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for used_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
