package parser

import "github.com/sqlforge/sqlforge/pkg/token"

// parseCreateTable parses the remainder of a CREATE TABLE statement.
// The cursor sits on the table name.
func (p *Parser) parseCreateTable() (Statement, error) {
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}

	if p.cur().Type != token.LPAREN {
		return nil, p.errorf("expected ( after table name")
	}
	p.advance()

	stmt := &CreateTable{Name: name}

	for p.cur().Type != token.EOF && p.cur().Type != token.RPAREN {
		if err := p.parseTableItem(stmt); err != nil {
			return nil, err
		}
		if p.cur().Type == token.COMMA {
			p.advance()
		}
	}
	if p.cur().Type == token.RPAREN {
		p.advance()
	}
	// trailing WITH (...) / ON [filegroup] options are irrelevant to the model

	return stmt, nil
}

// parseCreateTableType parses the remainder of a CREATE TYPE ... AS TABLE
// statement. The cursor sits on the type name. Items reuse the table forms,
// plus the inline INDEX items table types allow.
func (p *Parser) parseCreateTableType() (Statement, error) {
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}

	if p.cur().Type != token.AS {
		return nil, p.errorf("expected AS TABLE after type name")
	}
	p.advance()
	if p.cur().Type != token.TABLE {
		return nil, p.errorf("expected TABLE after AS in type")
	}
	p.advance()

	if p.cur().Type != token.LPAREN {
		return nil, p.errorf("expected ( after AS TABLE")
	}
	p.advance()

	shape := &CreateTable{Name: name}
	for p.cur().Type != token.EOF && p.cur().Type != token.RPAREN {
		if p.cur().Type == token.INDEX {
			c, err := p.parseInlineIndex()
			if err != nil {
				return nil, err
			}
			shape.Constraints = append(shape.Constraints, c)
		} else if err := p.parseTableItem(shape); err != nil {
			return nil, err
		}
		if p.cur().Type == token.COMMA {
			p.advance()
		}
	}
	if p.cur().Type == token.RPAREN {
		p.advance()
	}

	return &CreateTableType{
		Name:        name,
		Columns:     shape.Columns,
		Constraints: shape.Constraints,
	}, nil
}

// parseInlineIndex parses INDEX name [UNIQUE] [CLUSTERED|NONCLUSTERED]
// (cols) inside a table type body.
func (p *Parser) parseInlineIndex() (ConstraintDef, error) {
	p.advance() // consume INDEX

	c := ConstraintDef{Kind: ConstraintIndex}
	if !token.IsIdentLike(p.cur().Type) {
		return c, p.errorf("expected index name")
	}
	c.Name = p.cur().Literal
	p.advance()

	for {
		switch {
		case p.cur().Type == token.UNIQUE:
			c.Unique = true
			p.advance()
		case p.cur().Type == token.CLUSTERED:
			c.Clustered = true
			p.advance()
		case p.curIsWord("nonclustered"):
			p.advance()
		default:
			c.Columns = p.parseIndexColumnList()
			return c, nil
		}
	}
}

// parseTableItem parses one column definition or table constraint.
func (p *Parser) parseTableItem(stmt *CreateTable) error {
	switch p.cur().Type {
	case token.CONSTRAINT:
		p.advance()
		cname := p.cur().Literal
		if !token.IsIdentLike(p.cur().Type) {
			return p.errorf("expected constraint name")
		}
		p.advance()
		c, err := p.parseTableConstraint(cname)
		if err != nil {
			return err
		}
		stmt.Constraints = append(stmt.Constraints, c)
		return nil
	case token.PRIMARY, token.FOREIGN, token.UNIQUE, token.CHECK:
		c, err := p.parseTableConstraint("")
		if err != nil {
			return err
		}
		stmt.Constraints = append(stmt.Constraints, c)
		return nil
	default:
		return p.parseColumnDef(stmt)
	}
}

// parseTableConstraint parses the body of a table constraint. The cursor
// sits on the constraint kind keyword.
func (p *Parser) parseTableConstraint(name string) (ConstraintDef, error) {
	c := ConstraintDef{Name: name}

	switch p.cur().Type {
	case token.PRIMARY:
		c.Kind = ConstraintPrimaryKey
		p.advance()
		if p.cur().Type != token.KEY {
			return c, p.errorf("expected KEY after PRIMARY")
		}
		p.advance()
		p.skipClusteringHint()
		c.Columns = p.parseIndexColumnList()
	case token.UNIQUE:
		c.Kind = ConstraintUnique
		p.advance()
		p.skipClusteringHint()
		c.Columns = p.parseIndexColumnList()
	case token.FOREIGN:
		c.Kind = ConstraintForeignKey
		p.advance()
		if p.cur().Type != token.KEY {
			return c, p.errorf("expected KEY after FOREIGN")
		}
		p.advance()
		c.Columns = p.parseIndexColumnList()
		if p.cur().Type != token.REFERENCES {
			return c, p.errorf("expected REFERENCES in foreign key")
		}
		p.advance()
		ref, err := p.parseObjectName()
		if err != nil {
			return c, err
		}
		c.RefTable = ref
		if p.cur().Type == token.LPAREN {
			c.RefColumns = p.parseIndexColumnList()
		}
		p.skipReferentialActions()
	case token.CHECK:
		c.Kind = ConstraintCheck
		p.advance()
		c.Expr = p.captureParenGroupText()
	case token.DEFAULT:
		c.Kind = ConstraintDefault
		p.advance()
		c.Expr = p.captureItemExprText()
		if p.cur().Type == token.FOR {
			p.advance()
			if token.IsIdentLike(p.cur().Type) {
				c.Columns = []string{p.cur().Literal}
				p.advance()
			}
		}
	default:
		return c, p.errorf("unsupported constraint kind %s", p.cur().Literal)
	}

	return c, nil
}

// parseColumnDef parses a column definition and appends it, plus any inline
// constraints, to the statement.
func (p *Parser) parseColumnDef(stmt *CreateTable) error {
	if !token.IsIdentLike(p.cur().Type) {
		return p.errorf("expected column name, got %s", p.cur().Literal)
	}
	col := ColumnDef{Name: p.cur().Literal}
	p.advance()

	// computed column: name AS (expr)
	if p.cur().Type == token.AS {
		p.advance()
		col.Computed = p.captureItemExprText()
		stmt.Columns = append(stmt.Columns, col)
		return nil
	}

	col.DataType = p.captureDataTypeText()

	// column modifiers until the item ends at depth zero
	for {
		switch p.cur().Type {
		case token.COMMA, token.RPAREN, token.EOF:
			stmt.Columns = append(stmt.Columns, col)
			return nil
		case token.NOT:
			p.advance()
			if p.cur().Type == token.NULL {
				col.NotNull = true
				p.advance()
			} else {
				// NOT FOR REPLICATION
				p.advance()
				if p.curIsWord("replication") {
					p.advance()
				}
			}
		case token.NULL:
			p.advance()
		case token.IDENTITY:
			col.Identity = true
			p.advance()
			if p.cur().Type == token.LPAREN {
				p.skipParenGroup()
			}
		case token.DEFAULT:
			p.advance()
			col.Default = p.captureItemExprText()
		case token.CONSTRAINT:
			// inline named constraint: CONSTRAINT name DEFAULT|PRIMARY|...
			p.advance()
			cname := p.cur().Literal
			p.advance()
			if p.cur().Type == token.DEFAULT {
				p.advance()
				col.Default = p.captureItemExprText()
				continue
			}
			c, err := p.parseInlineConstraint(cname, col.Name)
			if err != nil {
				return err
			}
			stmt.Constraints = append(stmt.Constraints, c)
		case token.PRIMARY, token.UNIQUE, token.REFERENCES, token.CHECK:
			c, err := p.parseInlineConstraint("", col.Name)
			if err != nil {
				return err
			}
			stmt.Constraints = append(stmt.Constraints, c)
		default:
			// COLLATE, ROWGUIDCOL, SPARSE, masking options and other
			// modifiers that do not affect the model
			if p.cur().Type == token.LPAREN {
				p.skipParenGroup()
			} else {
				p.advance()
			}
		}
	}
}

// parseInlineConstraint parses a column-level constraint and lifts it to a
// table constraint bound to the column.
func (p *Parser) parseInlineConstraint(name, column string) (ConstraintDef, error) {
	c := ConstraintDef{Name: name, Columns: []string{column}}

	switch p.cur().Type {
	case token.PRIMARY:
		c.Kind = ConstraintPrimaryKey
		p.advance()
		if p.cur().Type == token.KEY {
			p.advance()
		}
		p.skipClusteringHint()
	case token.UNIQUE:
		c.Kind = ConstraintUnique
		p.advance()
		p.skipClusteringHint()
	case token.REFERENCES:
		c.Kind = ConstraintForeignKey
		p.advance()
		ref, err := p.parseObjectName()
		if err != nil {
			return c, err
		}
		c.RefTable = ref
		if p.cur().Type == token.LPAREN {
			c.RefColumns = p.parseIndexColumnList()
		}
		p.skipReferentialActions()
	case token.CHECK:
		c.Kind = ConstraintCheck
		p.advance()
		c.Expr = p.captureParenGroupText()
	default:
		return c, p.errorf("unsupported inline constraint %s", p.cur().Literal)
	}

	return c, nil
}

// parseIndexColumnList parses ( col [ASC|DESC], ... ) and returns the
// column names. Ordering hints are dropped.
func (p *Parser) parseIndexColumnList() []string {
	if p.cur().Type != token.LPAREN {
		return nil
	}
	p.advance()

	var cols []string
	for p.cur().Type != token.RPAREN && p.cur().Type != token.EOF {
		if token.IsIdentLike(p.cur().Type) {
			cols = append(cols, p.cur().Literal)
			p.advance()
			if p.curIsWord("asc") || p.curIsWord("desc") {
				p.advance()
			}
		}
		if p.cur().Type == token.COMMA {
			p.advance()
		} else if p.cur().Type != token.RPAREN {
			p.advance()
		}
	}
	if p.cur().Type == token.RPAREN {
		p.advance()
	}
	return cols
}

// skipClusteringHint consumes an optional CLUSTERED or NONCLUSTERED keyword.
func (p *Parser) skipClusteringHint() {
	if p.cur().Type == token.CLUSTERED || p.curIsWord("nonclustered") {
		p.advance()
	}
}

// skipReferentialActions consumes ON DELETE / ON UPDATE clauses and
// NOT FOR REPLICATION after a REFERENCES clause.
func (p *Parser) skipReferentialActions() {
	for {
		switch {
		case p.cur().Type == token.ON:
			p.advance() // past ON
			p.advance() // DELETE or UPDATE
			p.advance() // CASCADE, SET, NO
			if p.cur().Type == token.NULL || p.cur().Type == token.DEFAULT ||
				p.curIsWord("action") {
				p.advance()
			}
		case p.cur().Type == token.NOT:
			p.advance()
			if p.cur().Type == token.FOR {
				p.advance()
			}
			if p.curIsWord("replication") {
				p.advance()
			}
		default:
			return
		}
	}
}

// captureParenGroupText returns the raw text of a balanced paren group,
// including the parens, and consumes it.
func (p *Parser) captureParenGroupText() string {
	if p.cur().Type != token.LPAREN {
		return ""
	}
	start := p.cur().Pos.Offset
	end := start
	depth := 0
	for p.cur().Type != token.EOF {
		switch p.cur().Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				end = p.cur().End
				p.advance()
				return p.textBetween(start, end)
			}
		}
		end = p.cur().End
		p.advance()
	}
	return p.textBetween(start, end)
}

// captureItemExprText captures expression text up to the end of the current
// table item: a depth-zero comma or closing paren, or the next column
// modifier keyword.
func (p *Parser) captureItemExprText() string {
	if p.cur().Type == token.LPAREN {
		return p.captureParenGroupText()
	}

	start := p.cur().Pos.Offset
	end := start
	for {
		switch p.cur().Type {
		case token.COMMA, token.RPAREN, token.EOF,
			token.NOT, token.NULL, token.IDENTITY, token.CONSTRAINT,
			token.PRIMARY, token.UNIQUE, token.CHECK, token.FOR:
			return p.textBetween(start, end)
		case token.LPAREN:
			// function-call defaults like getdate()
			depth := 0
			for p.cur().Type != token.EOF {
				if p.cur().Type == token.LPAREN {
					depth++
				} else if p.cur().Type == token.RPAREN {
					depth--
				}
				end = p.cur().End
				p.advance()
				if depth == 0 {
					break
				}
			}
		default:
			end = p.cur().End
			p.advance()
		}
	}
}

// captureDataTypeText captures a data type, including any size or precision
// arguments, as raw text. Type names may be schema qualified for UDTs.
func (p *Parser) captureDataTypeText() string {
	if !token.IsIdentLike(p.cur().Type) && !token.IsKeyword(p.cur().Type) {
		return ""
	}
	start := p.cur().Pos.Offset
	end := p.cur().End
	p.advance()

	if p.cur().Type == token.DOT {
		p.advance()
		if token.IsIdentLike(p.cur().Type) {
			end = p.cur().End
			p.advance()
		}
	}
	if p.cur().Type == token.LPAREN {
		depth := 0
		for p.cur().Type != token.EOF {
			if p.cur().Type == token.LPAREN {
				depth++
			} else if p.cur().Type == token.RPAREN {
				depth--
			}
			end = p.cur().End
			p.advance()
			if depth == 0 {
				break
			}
		}
	}

	return p.textBetween(start, end)
}
