package token

// Position is a location in a script. Line and Column are 1-based; Offset
// is the 0-based byte offset into the source.
type Position struct {
	Line   int
	Column int
	Offset int
}

// IsValid reports whether the position came from the scanner rather than
// being a zero value.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Span is the half-open byte range [Start.Offset, End.Offset) a lexeme or
// comment covers in its source.
type Span struct {
	Start Position
	End   Position
}

// Before reports whether the span ends at or before the given byte offset.
// The parser uses this to find the comment run sitting above a statement.
func (s Span) Before(offset int) bool {
	return s.End.Offset <= offset
}
