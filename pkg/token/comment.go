package token

import "strings"

// CommentKind distinguishes the two T-SQL comment forms.
type CommentKind int

// Comment kinds.
const (
	LineComment  CommentKind = iota // -- to end of line
	BlockComment                    // /* ... */, possibly nested
)

// Comment is one source comment captured during scanning. Text keeps the
// raw form, delimiters included, so Span stays byte-accurate against the
// source.
type Comment struct {
	Kind CommentKind
	Text string
	Span Span
}

// DocText returns the comment content with delimiters stripped and every
// line trimmed. This is the form object descriptions are built from: a
// comment block above a CREATE statement becomes the object's
// MS_Description in the emitted model.
func (c *Comment) DocText() string {
	text := c.Text
	switch c.Kind {
	case LineComment:
		return strings.TrimSpace(strings.TrimPrefix(text, "--"))
	case BlockComment:
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		// banner-style continuation asterisks are decoration, not content
		line = strings.TrimSpace(strings.TrimLeft(line, "*"))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
