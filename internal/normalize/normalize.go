// Package normalize provides utilities for normalizing and sanitizing data.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Name canonicalizes an icon or category name for comparison: Unicode NFC,
// case folding, trimmed and with inner whitespace runs collapsed to one space.
// Display names keep their original form; only lookups and duplicate
// detection go through this.
func Name(s string) string {
	s = norm.NFC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// NamesEqual reports whether two names collide under Name canonicalization.
func NamesEqual(a, b string) bool {
	return Name(a) == Name(b)
}

// Tags canonicalizes a tag list: trims entries, drops empties, and removes
// case-insensitive duplicates while preserving first-seen order.
func Tags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := Name(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
