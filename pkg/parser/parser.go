// Package parser provides the T-SQL lexer and DDL statement parser.
//
// The parser is deliberately shallow: it extracts the typed shape of DDL
// statements (names, columns, constraints, parameters) and captures routine,
// view, and trigger bodies as raw text spans. Body text is analyzed later by
// the reference resolver, which only needs tokens, not an expression tree.
package parser

import (
	"fmt"
	"strings"

	"github.com/sqlforge/sqlforge/pkg/token"
)

// DefaultSchema is the schema applied to unqualified object names when the
// project does not configure one.
const DefaultSchema = "dbo"

// Parser parses one DDL batch.
type Parser struct {
	src           string
	tokens        []token.Token
	comments      []*token.Comment
	pos           int
	defaultSchema string
}

// New creates a parser for a single batch.
func New(src, defaultSchema string) *Parser {
	if defaultSchema == "" {
		defaultSchema = DefaultSchema
	}

	lex := NewLexer(src)
	var toks []token.Token
	for {
		t := lex.NextToken()
		toks = append(toks, t)
		if t.Type == token.EOF {
			break
		}
	}

	return &Parser{
		src:           src,
		tokens:        toks,
		comments:      lex.Comments,
		defaultSchema: defaultSchema,
	}
}

// ParseScript splits a script into batches and parses each one.
// Unrecognized statements produce errors but do not stop the scan.
func ParseScript(src, defaultSchema string) ([]Statement, []error) {
	var stmts []Statement
	var errs []error

	for _, batch := range SplitBatches(src) {
		p := New(batch, defaultSchema)
		stmt, err := p.ParseStatement()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	return stmts, errs
}

// ParseStatement parses the first statement in the batch.
// Returns (nil, nil) for empty batches and batches that contain only
// settings noise (SET ANSI_NULLS ON and friends).
func (p *Parser) ParseStatement() (Statement, error) {
	p.skipSettings()
	start := p.cur().Pos.Offset

	stmt, err := p.parseStatement()
	if err != nil || stmt == nil {
		return stmt, err
	}

	if doc := p.leadingDoc(start); doc != "" {
		if d, ok := stmt.(interface{ setDescription(string) }); ok {
			d.setDescription(doc)
		}
	}
	return stmt, nil
}

func (p *Parser) parseStatement() (Statement, error) {
	switch {
	case p.cur().Type == token.EOF:
		return nil, nil
	case p.cur().Type == token.CREATE:
		return p.parseCreate()
	case p.cur().Type == token.EXEC || p.cur().Type == token.EXECUTE:
		return p.parseExecCall()
	case p.curIsWord("grant") || p.curIsWord("deny") || p.curIsWord("revoke"):
		return p.parsePermission()
	default:
		return nil, p.errorf("unsupported statement starting with %s", p.cur().Literal)
	}
}

// leadingDoc joins the comment run sitting directly above the statement
// into one documentation string. A blank line detaches the run.
func (p *Parser) leadingDoc(stmtOffset int) string {
	var run []*token.Comment
	end := stmtOffset
	for i := len(p.comments) - 1; i >= 0; i-- {
		c := p.comments[i]
		if !c.Span.Before(end) {
			continue
		}
		gap := p.src[c.Span.End.Offset:end]
		if strings.TrimSpace(gap) != "" || strings.Count(gap, "\n") > 1 {
			break
		}
		run = append(run, c)
		end = c.Span.Start.Offset
	}

	var parts []string
	for i := len(run) - 1; i >= 0; i-- {
		if text := run[i].DocText(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// parseCreate dispatches on the object kind after CREATE.
func (p *Parser) parseCreate() (Statement, error) {
	p.advance() // consume CREATE

	// OR ALTER is accepted and ignored
	if p.curIsWord("or") {
		p.advance()
		if !p.curIsWord("alter") {
			return nil, p.errorf("expected ALTER after OR")
		}
		p.advance()
	}

	switch {
	case p.cur().Type == token.TABLE:
		p.advance()
		return p.parseCreateTable()
	case p.cur().Type == token.VIEW:
		p.advance()
		return p.parseCreateView()
	case p.cur().Type == token.PROCEDURE || p.curIsWord("proc"):
		p.advance()
		return p.parseCreateProcedure()
	case p.cur().Type == token.FUNCTION:
		p.advance()
		return p.parseCreateFunction()
	case p.cur().Type == token.TRIGGER:
		p.advance()
		return p.parseCreateTrigger()
	case p.cur().Type == token.SCHEMA:
		p.advance()
		return p.parseCreateSchema()
	case p.cur().Type == token.SYNONYM:
		p.advance()
		return p.parseCreateSynonym()
	case p.cur().Type == token.SEQUENCE:
		p.advance()
		return p.parseCreateSequence()
	case p.curIsWord("type"):
		p.advance()
		return p.parseCreateTableType()
	case p.cur().Type == token.UNIQUE || p.cur().Type == token.CLUSTERED ||
		p.curIsWord("nonclustered") || p.cur().Type == token.INDEX:
		return p.parseCreateIndex()
	default:
		return nil, p.errorf("unsupported CREATE %s", p.cur().Literal)
	}
}

// skipSettings skips leading SET option statements and semicolons.
func (p *Parser) skipSettings() {
	for {
		switch {
		case p.cur().Type == token.SEMICOLON:
			p.advance()
		case p.cur().Type == token.SET:
			// SET ANSI_NULLS ON etc. - consume through end of the option
			p.advance()
			for p.cur().Type != token.EOF && p.cur().Type != token.SEMICOLON &&
				p.cur().Type != token.CREATE {
				p.advance()
			}
		default:
			return
		}
	}
}

// --- token cursor helpers ---

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

// curIsWord reports whether the current token is an identifier or keyword
// with the given lowercase text.
func (p *Parser) curIsWord(word string) bool {
	t := p.cur()
	if t.Type != token.IDENT && !token.IsKeyword(t.Type) {
		return false
	}
	return strings.EqualFold(t.Literal, word)
}

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Pos: p.cur().Pos}
}

// parseObjectName parses a one- or two-part object name, applying the
// default schema to unqualified names.
func (p *Parser) parseObjectName() (ObjectName, error) {
	first := p.cur()
	if !token.IsIdentLike(first.Type) {
		return ObjectName{}, p.errorf("expected object name, got %s", first.Literal)
	}
	p.advance()

	if p.cur().Type != token.DOT {
		return ObjectName{Schema: p.defaultSchema, Name: first.Literal}, nil
	}

	p.advance() // consume dot
	second := p.cur()
	if !token.IsIdentLike(second.Type) {
		return ObjectName{}, p.errorf("expected name after schema qualifier")
	}
	p.advance()

	return ObjectName{Schema: first.Literal, Name: second.Literal}, nil
}

// skipParenGroup consumes a balanced parenthesized group, including the
// closing paren. The current token must be LPAREN.
func (p *Parser) skipParenGroup() {
	if p.cur().Type != token.LPAREN {
		return
	}
	depth := 0
	for p.cur().Type != token.EOF {
		switch p.cur().Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// textFrom returns the raw source from the given byte offset to the end of
// the batch, trimmed.
func (p *Parser) textFrom(offset int) string {
	if offset < 0 || offset >= len(p.src) {
		return ""
	}
	return strings.TrimSpace(p.src[offset:])
}

// textBetween returns the raw source between two byte offsets, trimmed.
func (p *Parser) textBetween(start, end int) string {
	if start < 0 || end > len(p.src) || start >= end {
		return ""
	}
	return strings.TrimSpace(p.src[start:end])
}
