package token

import "testing"

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		ident string
		want  TokenType
	}{
		{"select", SELECT},
		{"from", FROM},
		{"merge", MERGE},
		{"matched", MATCHED},
		{"using", USING},
		{"apply", APPLY},
		{"accountid", IDENT},
		{"tag", IDENT},
	}

	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			if got := LookupIdent(tt.ident); got != tt.want {
				t.Errorf("LookupIdent(%q) = %v, want %v", tt.ident, got, tt.want)
			}
		})
	}
}

func TestIsKeyword(t *testing.T) {
	if !IsKeyword(SELECT) {
		t.Error("SELECT should be a keyword")
	}
	if !IsKeyword(WITH) {
		t.Error("WITH should be a keyword")
	}
	if IsKeyword(IDENT) {
		t.Error("IDENT should not be a keyword")
	}
	if IsKeyword(LPAREN) {
		t.Error("LPAREN should not be a keyword")
	}
}

func TestIsIdentLike(t *testing.T) {
	if !IsIdentLike(IDENT) || !IsIdentLike(BIDENT) {
		t.Error("IDENT and BIDENT are ident-like")
	}
	if IsIdentLike(ATVAR) {
		t.Error("ATVAR is not ident-like")
	}
}

func TestSpanBefore(t *testing.T) {
	s := Span{
		Start: Position{Line: 1, Column: 1, Offset: 10},
		End:   Position{Line: 1, Column: 11, Offset: 20},
	}

	if !s.Before(20) {
		t.Error("span ending at the offset should be before it")
	}
	if !s.Before(25) {
		t.Error("span ending earlier should be before the offset")
	}
	if s.Before(19) {
		t.Error("span ending past the offset is not before it")
	}
}

func TestCommentDocText(t *testing.T) {
	tests := []struct {
		name string
		c    Comment
		want string
	}{
		{
			"line comment",
			Comment{Kind: LineComment, Text: "-- Customer accounts."},
			"Customer accounts.",
		},
		{
			"line comment without space",
			Comment{Kind: LineComment, Text: "--total per order"},
			"total per order",
		},
		{
			"block comment",
			Comment{Kind: BlockComment, Text: "/* Order header rows. */"},
			"Order header rows.",
		},
		{
			"banner block comment",
			Comment{Kind: BlockComment, Text: "/*\n * Line one.\n * Line two.\n */"},
			"Line one.\nLine two.",
		},
		{
			"empty block comment",
			Comment{Kind: BlockComment, Text: "/* */"},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.DocText(); got != tt.want {
				t.Errorf("DocText() = %q, want %q", got, tt.want)
			}
		})
	}
}
