// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeFold trims each element, applies fold, and drops empties and
// duplicates of the folded value. First occurrence wins and order is kept.
// A nil fold keeps the trimmed value as is.
//
// Example:
//
//	DedupeFold([]string{" pol001", "POL001", "pol002 "}, strings.ToUpper)
//	// Returns: []string{"POL001", "POL002"}
func DedupeFold(values []string, fold func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if fold != nil {
			v = fold(v)
		}
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// DedupeUpper is DedupeFold with upper-casing, the canonical form for
// case-insensitive identifiers such as policy numbers.
func DedupeUpper(values []string) []string {
	return DedupeFold(values, strings.ToUpper)
}
