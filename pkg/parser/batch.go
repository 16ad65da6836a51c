package parser

import "strings"

// SplitBatches splits a script on GO batch separators.
//
// GO is a client-side separator, not a T-SQL statement: it only counts when
// it is the first word on a line (optionally followed by a repeat count,
// which project scripts never use). Batches that are empty after trimming
// are dropped.
func SplitBatches(src string) []string {
	var batches []string
	var current strings.Builder

	for _, line := range strings.SplitAfter(src, "\n") {
		if isGoSeparator(line) {
			if b := strings.TrimSpace(current.String()); b != "" {
				batches = append(batches, b)
			}
			current.Reset()
			continue
		}
		current.WriteString(line)
	}
	if b := strings.TrimSpace(current.String()); b != "" {
		batches = append(batches, b)
	}

	return batches
}

// isGoSeparator reports whether the line is a GO batch separator.
func isGoSeparator(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 2 {
		return false
	}
	if !strings.EqualFold(trimmed[:2], "go") {
		return false
	}
	rest := strings.TrimSpace(trimmed[2:])
	if rest == "" {
		return true
	}
	// GO n repeat form, or a trailing comment
	if strings.HasPrefix(rest, "--") {
		return true
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
