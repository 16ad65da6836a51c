package parser

import (
	"fmt"

	"github.com/sqlforge/sqlforge/pkg/token"
)

// ParseError describes a statement the parser could not understand.
// Parse errors are diagnostics, not build failures: the caller skips the
// statement and continues.
type ParseError struct {
	Message string
	Pos     token.Position
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("parse error at line %d: %s", e.Pos.Line, e.Message)
	}
	return "parse error: " + e.Message
}
