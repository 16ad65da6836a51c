package parser

import (
	"strings"

	"github.com/sqlforge/sqlforge/pkg/token"
)

// parseExecCall parses an EXEC statement. Only sp_addextendedproperty calls
// carry model meaning; every other procedure call is skipped with a
// diagnostic.
func (p *Parser) parseExecCall() (Statement, error) {
	p.advance() // consume EXEC or EXECUTE

	// optional schema qualifier: sys.sp_addextendedproperty
	if token.IsIdentLike(p.cur().Type) && p.peek().Type == token.DOT {
		p.advance()
		p.advance()
	}

	if !p.curIsWord("sp_addextendedproperty") {
		return nil, p.errorf("unsupported procedure call %s", p.cur().Literal)
	}
	p.advance()

	ep := &ExtendedProperty{Schema: p.defaultSchema}
	for p.cur().Type != token.EOF && p.cur().Type != token.SEMICOLON {
		if p.cur().Type != token.ATVAR {
			return nil, p.errorf("expected @parameter in sp_addextendedproperty, got %s", p.cur().Literal)
		}
		param := strings.ToLower(p.cur().Literal)
		p.advance()

		if p.cur().Type != token.EQ {
			return nil, p.errorf("expected = after %s", param)
		}
		p.advance()

		value, err := p.parsePropertyValue()
		if err != nil {
			return nil, err
		}

		switch param {
		case "@name":
			ep.Name = value
		case "@value":
			ep.Value = value
		case "@level0name":
			if value != "" {
				ep.Schema = value
			}
		case "@level1type":
			ep.Level1Type = value
		case "@level1name":
			ep.Level1Name = value
		case "@level2type":
			ep.Level2Type = value
		case "@level2name":
			ep.Level2Name = value
		case "@level0type":
			// always SCHEMA at level 0
		default:
			return nil, p.errorf("unknown sp_addextendedproperty parameter %s", param)
		}

		if p.cur().Type == token.COMMA {
			p.advance()
		}
	}

	if ep.Name == "" {
		return nil, p.errorf("sp_addextendedproperty without @name")
	}
	return ep, nil
}

// parsePropertyValue reads one parameter value: a string literal, NULL, or
// a bare word.
func (p *Parser) parsePropertyValue() (string, error) {
	t := p.cur()
	switch {
	case t.Type == token.STRING, token.IsIdentLike(t.Type), t.Type == token.NUMBER:
		p.advance()
		return t.Literal, nil
	case t.Type == token.NULL:
		p.advance()
		return "", nil
	default:
		return "", p.errorf("expected parameter value, got %s", t.Literal)
	}
}
