package parser

import (
	"strings"

	"github.com/sqlforge/sqlforge/pkg/token"
)

// parseCreateIndex parses a CREATE [UNIQUE] [CLUSTERED|NONCLUSTERED] INDEX
// statement. The cursor sits on the first modifier or on INDEX.
func (p *Parser) parseCreateIndex() (Statement, error) {
	stmt := &CreateIndex{}

	for p.cur().Type != token.INDEX {
		switch {
		case p.cur().Type == token.UNIQUE:
			stmt.Unique = true
			p.advance()
		case p.cur().Type == token.CLUSTERED:
			stmt.Clustered = true
			p.advance()
		case p.curIsWord("nonclustered"):
			p.advance()
		default:
			return nil, p.errorf("expected INDEX, got %s", p.cur().Literal)
		}
	}
	p.advance() // consume INDEX

	if !token.IsIdentLike(p.cur().Type) {
		return nil, p.errorf("expected index name")
	}
	stmt.Name = p.cur().Literal
	p.advance()

	if p.cur().Type != token.ON {
		return nil, p.errorf("expected ON in index")
	}
	p.advance()

	table, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}
	stmt.Table = table
	stmt.Columns = p.parseIndexColumnList()
	// INCLUDE (...), WHERE ..., WITH (...) do not affect the model

	return stmt, nil
}

// parseCreateSchema parses a CREATE SCHEMA statement.
func (p *Parser) parseCreateSchema() (Statement, error) {
	if !token.IsIdentLike(p.cur().Type) {
		return nil, p.errorf("expected schema name")
	}
	name := p.cur().Literal
	p.advance()
	// AUTHORIZATION owner is accepted and ignored
	return &CreateSchema{Name: name}, nil
}

// parseCreateSynonym parses a CREATE SYNONYM statement. The target may be a
// three- or four-part name, kept as raw text.
func (p *Parser) parseCreateSynonym() (Statement, error) {
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}

	if p.cur().Type != token.FOR {
		return nil, p.errorf("expected FOR in synonym")
	}
	p.advance()

	var parts []string
	for token.IsIdentLike(p.cur().Type) {
		parts = append(parts, p.cur().Literal)
		p.advance()
		if p.cur().Type != token.DOT {
			break
		}
		parts = append(parts, ".")
		p.advance()
	}
	if len(parts) == 0 {
		return nil, p.errorf("expected synonym target")
	}

	return &CreateSynonym{Name: name, Target: strings.Join(parts, "")}, nil
}

// parseCreateSequence parses a CREATE SEQUENCE statement.
func (p *Parser) parseCreateSequence() (Statement, error) {
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}

	stmt := &CreateSequence{Name: name}

	for p.cur().Type != token.EOF && p.cur().Type != token.SEMICOLON {
		switch {
		case p.cur().Type == token.AS:
			p.advance()
			stmt.DataType = p.captureDataTypeText()
		case p.curIsWord("start"):
			p.advance()
			if p.cur().Type == token.WITH {
				p.advance()
			}
			stmt.Start = p.captureSignedNumber()
		case p.curIsWord("increment"):
			p.advance()
			if p.cur().Type == token.BY {
				p.advance()
			}
			stmt.Increment = p.captureSignedNumber()
		default:
			// MINVALUE, MAXVALUE, CACHE, CYCLE options
			p.advance()
		}
	}

	return stmt, nil
}

// captureSignedNumber captures an optionally signed numeric literal as text.
func (p *Parser) captureSignedNumber() string {
	var sb strings.Builder
	if p.cur().Type == token.MINUS {
		sb.WriteByte('-')
		p.advance()
	}
	if p.cur().Type == token.NUMBER {
		sb.WriteString(p.cur().Literal)
		p.advance()
	}
	return sb.String()
}
