package parser

import (
	"strings"

	"github.com/sqlforge/sqlforge/pkg/token"
)

// parsePermission parses a GRANT, DENY, or REVOKE statement. The cursor
// sits on the action word.
func (p *Parser) parsePermission() (Statement, error) {
	stmt := &PermissionStatement{}
	switch {
	case p.curIsWord("deny"):
		stmt.Action = PermissionDeny
	case p.curIsWord("revoke"):
		stmt.Action = PermissionRevoke
	default:
		stmt.Action = PermissionGrant
	}
	p.advance()

	// REVOKE GRANT OPTION FOR revokes only the regrant right
	if stmt.Action == PermissionRevoke && p.curIsWord("grant") {
		p.advance()
		if !p.curIsWord("option") {
			return nil, p.errorf("expected OPTION after GRANT in revoke")
		}
		p.advance()
		if p.cur().Type != token.FOR {
			return nil, p.errorf("expected FOR after GRANT OPTION")
		}
		p.advance()
	}

	stmt.Permissions = p.parsePermissionList()
	if len(stmt.Permissions) == 0 {
		return nil, p.errorf("expected permission name after %s", stmt.Action)
	}

	if p.cur().Type == token.ON {
		p.advance()
		if err := p.parsePermissionTarget(stmt); err != nil {
			return nil, err
		}
	}

	if !p.curIsWord("to") && p.cur().Type != token.FROM {
		return nil, p.errorf("expected TO or FROM in %s", stmt.Action)
	}
	p.advance()

	if !token.IsIdentLike(p.cur().Type) {
		return nil, p.errorf("expected principal name")
	}
	stmt.Principal = p.cur().Literal
	p.advance()

	for p.cur().Type != token.EOF && p.cur().Type != token.SEMICOLON {
		switch {
		case p.cur().Type == token.WITH:
			// WITH GRANT OPTION
			p.advance()
			if p.curIsWord("grant") {
				stmt.WithGrantOption = true
				p.advance()
				if p.curIsWord("option") {
					p.advance()
				}
			}
		case p.curIsWord("cascade"):
			stmt.Cascade = true
			p.advance()
		default:
			// AS grantor and other trailing clauses
			p.advance()
		}
	}

	return stmt, nil
}

// parsePermissionList reads the comma-separated permission names. Compound
// permissions (CREATE TABLE, VIEW DEFINITION) join with a space.
func (p *Parser) parsePermissionList() []string {
	var perms []string
	var words []string

	flush := func() {
		if len(words) > 0 {
			perms = append(perms, strings.Join(words, " "))
			words = nil
		}
	}

	for {
		t := p.cur()
		switch {
		case t.Type == token.COMMA:
			flush()
			p.advance()
		case t.Type == token.ON || t.Type == token.FROM || t.Type == token.EOF ||
			p.curIsWord("to"):
			flush()
			return perms
		case token.IsIdentLike(t.Type) || token.IsKeyword(t.Type):
			words = append(words, strings.ToUpper(t.Literal))
			p.advance()
		default:
			flush()
			return perms
		}
	}
}

// parsePermissionTarget reads the ON clause: SCHEMA::name, OBJECT::name, or
// a plain object name.
func (p *Parser) parsePermissionTarget(stmt *PermissionStatement) error {
	if p.cur().Type == token.SCHEMA {
		p.advance()
		p.skipScopeQualifier()
		if !token.IsIdentLike(p.cur().Type) {
			return p.errorf("expected schema name after SCHEMA::")
		}
		stmt.TargetSchema = p.cur().Literal
		p.advance()
		return nil
	}

	if p.curIsWord("object") {
		p.advance()
		p.skipScopeQualifier()
	}

	target, err := p.parseObjectName()
	if err != nil {
		return err
	}
	stmt.Target = target
	return nil
}

// skipScopeQualifier consumes the :: separator, which the lexer surfaces
// as tokens it has no symbol for.
func (p *Parser) skipScopeQualifier() {
	for p.cur().Type == token.ILLEGAL && p.cur().Literal == ":" {
		p.advance()
	}
}
