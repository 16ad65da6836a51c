package resolve

import (
	"sort"
	"strings"
)

// DepKind classifies a dependency.
type DepKind int

// Dependency kinds. Objects sort before columns.
const (
	DepObject DepKind = iota
	DepColumn
)

// Dependency is one resolved reference from a body to a schema object or to
// one of its columns. For DepObject, Column is empty.
type Dependency struct {
	Kind   DepKind
	Schema string
	Name   string
	Column string
}

// String returns the bracketed reference form.
func (d Dependency) String() string {
	if d.Kind == DepColumn {
		return "[" + d.Schema + "].[" + d.Name + "].[" + d.Column + "]"
	}
	return "[" + d.Schema + "].[" + d.Name + "]"
}

// identity is the structural dedup key, case-folded.
func (d Dependency) identity() string {
	return string(rune('0'+d.Kind)) + "|" +
		strings.ToLower(d.Schema) + "|" +
		strings.ToLower(d.Name) + "|" +
		strings.ToLower(d.Column)
}

// BuildSet deduplicates raw dependencies by structural identity and imposes
// a total order (kind, schema, name, column) so that two runs on identical
// input emit byte-identical sequences.
func BuildSet(raw []Dependency) []Dependency {
	seen := make(map[string]struct{}, len(raw))
	out := make([]Dependency, 0, len(raw))
	for _, d := range raw {
		key := d.identity()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if c := compareFold(a.Schema, b.Schema); c != 0 {
			return c < 0
		}
		if c := compareFold(a.Name, b.Name); c != 0 {
			return c < 0
		}
		if c := compareFold(a.Column, b.Column); c != 0 {
			return c < 0
		}
		// same case-folded identity cannot occur twice after dedup, but
		// keep the comparison total
		return a.String() < b.String()
	})

	return out
}

// compareFold compares two strings case-insensitively, falling back to a
// case-sensitive comparison for equal folds so ordering stays total.
func compareFold(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		if la < lb {
			return -1
		}
		return 1
	}
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}
