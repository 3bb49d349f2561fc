package ir

import (
	"cmp"
	"slices"
	"strings"
)

// SortedKeys returns the keys of m in natural order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareNatural)
	return keys
}

// CompareNatural orders strings the way a person would: runs of digits are
// compared by numeric value, everything else byte by byte.
//
// Examples: "2" < "10", "a2" < "a10", "a" < "b".
// When two digit runs have the same value the one with fewer leading zeros
// sorts first, which keeps the order total.
func CompareNatural(a, b string) int {
	for a != "" && b != "" {
		if isDigit(a[0]) && isDigit(b[0]) {
			da, restA := digitRun(a)
			db, restB := digitRun(b)

			ta := strings.TrimLeft(da, "0")
			tb := strings.TrimLeft(db, "0")
			if len(ta) != len(tb) {
				return cmp.Compare(len(ta), len(tb))
			}
			if c := strings.Compare(ta, tb); c != 0 {
				return c
			}
			if len(da) != len(db) {
				return cmp.Compare(len(da), len(db))
			}
			a, b = restA, restB
			continue
		}

		if a[0] != b[0] {
			return cmp.Compare(a[0], b[0])
		}
		a, b = a[1:], b[1:]
	}
	return cmp.Compare(len(a), len(b))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// digitRun splits s into its leading run of ASCII digits and the remainder.
func digitRun(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}
