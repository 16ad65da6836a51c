package parser

import "github.com/sqlforge/sqlforge/pkg/token"

// parseCreateView parses the remainder of a CREATE VIEW statement.
// The view body is everything after the top-level AS, kept as raw text.
func (p *Parser) parseCreateView() (Statement, error) {
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}

	// optional explicit column list
	if p.cur().Type == token.LPAREN {
		p.skipParenGroup()
	}
	// WITH SCHEMABINDING and friends
	if p.cur().Type == token.WITH {
		p.advance()
		for token.IsIdentLike(p.cur().Type) || p.cur().Type == token.COMMA {
			p.advance()
		}
	}

	body, err := p.bodyAfterAS()
	if err != nil {
		return nil, err
	}

	return &CreateView{Name: name, Body: body}, nil
}

// parseCreateProcedure parses the remainder of a CREATE PROCEDURE statement.
func (p *Parser) parseCreateProcedure() (Statement, error) {
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}

	stmt := &CreateRoutine{Name: name, Kind: RoutineProcedure}

	// procedure parameters may be parenthesized or bare
	parenthesized := p.cur().Type == token.LPAREN
	if parenthesized {
		p.advance()
	}
	if p.cur().Type == token.ATVAR {
		stmt.Params = p.parseParams(parenthesized)
	}
	if parenthesized && p.cur().Type == token.RPAREN {
		p.advance()
	}

	p.skipRoutineOptions()

	body, err := p.bodyAfterAS()
	if err != nil {
		return nil, err
	}
	stmt.Body = body

	return stmt, nil
}

// parseCreateFunction parses the remainder of a CREATE FUNCTION statement.
// The RETURNS clause decides between scalar and table-valued kinds.
func (p *Parser) parseCreateFunction() (Statement, error) {
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}

	stmt := &CreateRoutine{Name: name}

	if p.cur().Type != token.LPAREN {
		return nil, p.errorf("expected ( after function name")
	}
	p.advance()
	stmt.Params = p.parseParams(true)
	if p.cur().Type == token.RPAREN {
		p.advance()
	}

	if p.cur().Type != token.RETURNS {
		return nil, p.errorf("expected RETURNS in function")
	}
	p.advance()

	switch {
	case p.cur().Type == token.TABLE:
		// inline table-valued: RETURNS TABLE ... AS RETURN (select)
		stmt.Kind = RoutineTableFunction
		stmt.Returns = "TABLE"
		p.advance()
	case p.cur().Type == token.ATVAR:
		// multi-statement table-valued: RETURNS @result TABLE (...)
		stmt.Kind = RoutineTableFunction
		start := p.cur().Pos.Offset
		end := p.cur().End
		p.advance()
		if p.cur().Type == token.TABLE {
			end = p.cur().End
			p.advance()
		}
		stmt.Returns = p.textBetween(start, end)
		if p.cur().Type == token.LPAREN {
			p.skipParenGroup()
		}
	default:
		stmt.Kind = RoutineScalarFunction
		stmt.Returns = p.captureDataTypeText()
	}

	p.skipRoutineOptions()

	body, err := p.bodyAfterAS()
	if err != nil {
		return nil, err
	}
	stmt.Body = body

	return stmt, nil
}

// parseCreateTrigger parses the remainder of a CREATE TRIGGER statement.
func (p *Parser) parseCreateTrigger() (Statement, error) {
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}

	if p.cur().Type != token.ON {
		return nil, p.errorf("expected ON in trigger")
	}
	p.advance()

	table, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}

	// FOR | AFTER | INSTEAD OF and the event list run up to AS
	body, err := p.bodyAfterAS()
	if err != nil {
		return nil, err
	}

	return &CreateTrigger{Name: name, Table: table, Body: body}, nil
}

// parseParams parses a routine parameter list. The cursor sits on the first
// @parameter, or already past the list if there are no parameters.
func (p *Parser) parseParams(parenthesized bool) []Param {
	var params []Param

	for p.cur().Type == token.ATVAR {
		param := Param{Name: p.cur().Literal}
		p.advance()

		// AS before the type is legal and rare
		if p.cur().Type == token.AS && p.peek().Type != token.EOF &&
			token.IsIdentLike(p.peek().Type) {
			p.advance()
		}
		param.DataType = p.captureDataTypeText()

		// default value
		if p.cur().Type == token.EQ {
			p.advance()
			p.skipParamDefault(parenthesized)
		}
		if p.cur().Type == token.OUTPUT || p.curIsWord("out") {
			param.Output = true
			p.advance()
		}
		if p.curIsWord("readonly") {
			p.advance()
		}

		params = append(params, param)

		if p.cur().Type != token.COMMA {
			break
		}
		p.advance()
	}

	return params
}

// skipParamDefault consumes a parameter default value expression.
func (p *Parser) skipParamDefault(parenthesized bool) {
	for {
		switch p.cur().Type {
		case token.COMMA, token.AS, token.WITH, token.OUTPUT, token.EOF:
			return
		case token.RPAREN:
			if parenthesized {
				return
			}
			p.advance()
		case token.LPAREN:
			p.skipParenGroup()
		case token.MINUS, token.PLUS, token.NUMBER, token.STRING,
			token.NULL, token.IDENT, token.ATVAR:
			p.advance()
		default:
			return
		}
	}
}

// skipRoutineOptions consumes a WITH options clause before AS.
func (p *Parser) skipRoutineOptions() {
	if p.cur().Type != token.WITH {
		return
	}
	p.advance()
	for p.cur().Type != token.AS && p.cur().Type != token.EOF {
		if p.cur().Type == token.LPAREN {
			p.skipParenGroup()
		} else {
			p.advance()
		}
	}
}

// bodyAfterAS scans forward to the first depth-zero AS keyword and returns
// the raw source text after it.
func (p *Parser) bodyAfterAS() (string, error) {
	depth := 0
	for p.cur().Type != token.EOF {
		switch p.cur().Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		case token.AS:
			if depth == 0 {
				end := p.cur().End
				p.pos = len(p.tokens)
				return p.textFrom(end), nil
			}
		}
		p.advance()
	}
	return "", p.errorf("expected AS before body")
}
