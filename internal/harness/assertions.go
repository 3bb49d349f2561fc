package harness

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/roach88/apiwrapper/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Used     []string // All used match keys for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nUsed returns:\n")
	for i, key := range e.Used {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, key)
	}

	return buf.String()
}

// assertUsedContains checks that key answered at least one call.
func assertUsedContains(used []string, assertion Assertion) error {
	for _, key := range used {
		if key == assertion.Key {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertUsedContains,
		Expected: fmt.Sprintf("%s answered a call", assertion.Key),
		Actual:   "not used",
		Used:     used,
	}
}

// assertUsedOrder checks that the keys answered calls in the given relative
// order. Other keys may come in between.
func assertUsedOrder(used []string, assertion Assertion) error {
	next := 0
	for _, key := range used {
		if next < len(assertion.Keys) && key == assertion.Keys[next] {
			next++
		}
	}
	if next == len(assertion.Keys) {
		return nil
	}
	return &AssertionError{
		Type:     AssertUsedOrder,
		Expected: strings.Join(assertion.Keys, " -> "),
		Actual:   fmt.Sprintf("%s not found in order", assertion.Keys[next]),
		Used:     used,
	}
}

// assertUsedCount checks how many calls key answered, or how many calls
// were answered at all when the key is empty.
func assertUsedCount(used []string, assertion Assertion) error {
	count := len(used)
	if assertion.Key != "" {
		count = 0
		for _, key := range used {
			if key == assertion.Key {
				count++
			}
		}
	}
	if count == assertion.Count {
		return nil
	}
	what := "all keys"
	if assertion.Key != "" {
		what = assertion.Key
	}
	return &AssertionError{
		Type:     AssertUsedCount,
		Expected: fmt.Sprintf("%s used %d times", what, assertion.Count),
		Actual:   fmt.Sprintf("used %d times", count),
		Used:     used,
	}
}

// matchValue checks that actual matches expected. Objects match as subsets:
// extra keys in actual are ignored. Everything else compares by canonical
// JSON, so numbers decoded from a dump equal numbers parsed from YAML.
func matchValue(actual, expected any) bool {
	if expectedMap, ok := toObject(expected); ok {
		actualMap, ok := toObject(actual)
		if !ok {
			return false
		}
		for key, expectedVal := range expectedMap {
			actualVal, exists := actualMap[key]
			if !exists || !matchValue(actualVal, expectedVal) {
				return false
			}
		}
		return true
	}
	if expectedList, ok := expected.([]any); ok {
		actualList, ok := actual.([]any)
		if !ok || len(actualList) != len(expectedList) {
			return false
		}
		for i := range expectedList {
			if !matchValue(actualList[i], expectedList[i]) {
				return false
			}
		}
		return true
	}
	return valuesEqual(actual, expected)
}

// toObject accepts the map types produced by encoding/json and yaml.v3.
func toObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// valuesEqual compares two scalar values by canonical JSON.
func valuesEqual(actual, expected any) bool {
	a, err := ir.MarshalCanonical(actual)
	if err != nil {
		return false
	}
	e, err := ir.MarshalCanonical(expected)
	if err != nil {
		return false
	}
	return bytes.Equal(a, e)
}

// describe renders v for messages.
func describe(v any) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertUsedContains:
			err = assertUsedContains(result.Used, assertion)
		case AssertUsedOrder:
			err = assertUsedOrder(result.Used, assertion)
		case AssertUsedCount:
			err = assertUsedCount(result.Used, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
