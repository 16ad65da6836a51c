package resolve

import (
	"strings"

	"github.com/sqlforge/sqlforge/pkg/token"
)

// maxScopeDepth bounds scope nesting. Pathological nesting stops discovering
// deeper scopes instead of erroring; resolution proceeds with the scopes
// already built.
const maxScopeDepth = 64

// ScopeKind classifies lexical scopes.
type ScopeKind int

// Scope kinds.
const (
	ScopeTopLevel ScopeKind = iota
	ScopeCte
	ScopeDerivedTable
	ScopeApply
	ScopeSubquery
)

// TargetKind classifies what an alias resolves to.
type TargetKind int

// Target kinds.
const (
	TargetTable TargetKind = iota
	TargetCte
	TargetDerived
	TargetUnknown
)

// Target is the resolution of an alias or table reference.
// For TargetCte and TargetDerived, Scope indexes the scope holding the
// subquery body; a CTE's underlying table is the first table bound there.
type Target struct {
	Kind   TargetKind
	Schema string
	Name   string
	Scope  int
}

// Scope is one lexical scope: a byte range, a parent link, and the alias
// bindings introduced inside it. Tables holds table targets in order of
// appearance, which drives the zero-match fallback.
type Scope struct {
	Kind    ScopeKind
	Start   int // byte offset, inclusive
	End     int // byte offset, exclusive
	Parent  int // index into the tree arena, -1 for the top level
	Depth   int
	Aliases map[string]Target
	Tables  []Target
}

// ScopeTree is the arena of scopes for one body. Index 0 is always the
// top-level scope covering the whole body.
type ScopeTree struct {
	Scopes []Scope
}

// ExtractScopes runs the structural scan over a body's tokens and returns
// the scope tree. Unqualified table names resolve against defaultSchema.
// Malformed nesting terminates discovery at the point of failure; scopes
// already built remain valid.
func ExtractScopes(toks []token.Token, defaultSchema string) *ScopeTree {
	e := &extractor{
		toks:          toks,
		defaultSchema: defaultSchema,
	}
	e.run()
	return &ScopeTree{Scopes: e.scopes}
}

// InnermostAt returns the index of the deepest scope containing the offset.
func (t *ScopeTree) InnermostAt(offset int) int {
	best := 0
	for i, s := range t.Scopes {
		if s.Start <= offset && offset < s.End && s.Depth >= t.Scopes[best].Depth {
			best = i
		}
	}
	return best
}

// LookupAlias resolves a case-folded name against the scope chain,
// innermost first.
func (t *ScopeTree) LookupAlias(scope int, lower string) (Target, bool) {
	for idx := scope; idx >= 0; idx = t.Scopes[idx].Parent {
		if target, ok := t.Scopes[idx].Aliases[lower]; ok {
			return target, true
		}
	}
	return Target{}, false
}

// IsBoundName reports whether the name is an alias, table, or CTE name
// anywhere in the scope chain.
func (t *ScopeTree) IsBoundName(scope int, lower string) bool {
	_, ok := t.LookupAlias(scope, lower)
	return ok
}

// Underlying resolves a target to a concrete table. A CTE or derived table
// resolves to the first table bound inside its own scope, recursively.
func (t *ScopeTree) Underlying(target Target) (Target, bool) {
	for range t.Scopes {
		switch target.Kind {
		case TargetTable:
			return target, true
		case TargetCte, TargetDerived:
			tables := t.Scopes[target.Scope].Tables
			if len(tables) == 0 {
				return Target{}, false
			}
			target = tables[0]
		default:
			return Target{}, false
		}
	}
	return Target{}, false
}

// CandidateTables collects the concrete tables reachable from the scope
// chain, innermost first, deduplicated by key.
func (t *ScopeTree) CandidateTables(scope int) []TableKey {
	var keys []TableKey
	seen := make(map[TableKey]struct{})
	for idx := scope; idx >= 0; idx = t.Scopes[idx].Parent {
		for _, tbl := range t.Scopes[idx].Tables {
			concrete, ok := t.Underlying(tbl)
			if !ok {
				continue
			}
			key := KeyFor(concrete.Schema, concrete.Name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}

// FirstTable returns the first table of the innermost scope that has one,
// walking outward. This is the zero-match fallback target.
func (t *ScopeTree) FirstTable(scope int) (Target, bool) {
	for idx := scope; idx >= 0; idx = t.Scopes[idx].Parent {
		for _, tbl := range t.Scopes[idx].Tables {
			if concrete, ok := t.Underlying(tbl); ok {
				return concrete, true
			}
		}
	}
	return Target{}, false
}

// extractor is the structural scan state for one body.
type extractor struct {
	toks          []token.Token
	defaultSchema string
	scopes        []Scope

	// open tracks every unclosed left paren: the scope index it opened,
	// or -1 for ordinary grouping parens.
	open []int
	cur  int // innermost open scope

	pendingCte string // CTE name awaiting its defining paren
}

func (e *extractor) run() {
	end := 1 << 30
	if n := len(e.toks); n > 0 {
		end = e.toks[n-1].End + 1
	}
	e.scopes = []Scope{{
		Kind:    ScopeTopLevel,
		Start:   0,
		End:     end,
		Parent:  -1,
		Aliases: make(map[string]Target),
	}}
	e.cur = 0

	for i := 0; i < len(e.toks); i++ {
		switch e.toks[i].Type {
		case token.WITH:
			// WITH name [(cols)] AS ( starts a CTE chain;
			// WITH (NOLOCK) is a table hint and opens no scope
			if name, lparen, ok := e.matchCteDef(i + 1); ok {
				e.pendingCte = name
				i = lparen - 1
			}
		case token.LPAREN:
			e.openParen(i)
		case token.RPAREN:
			i = e.closeParen(i)
		case token.FROM, token.JOIN, token.INTO, token.USING:
			i = e.bindTables(i)
		}
	}
}

// matchCteDef matches `name [(column-list)] AS (` starting at i and returns
// the CTE name and the index of the opening paren of its body.
func (e *extractor) matchCteDef(i int) (string, int, bool) {
	if i >= len(e.toks) || !token.IsIdentLike(e.toks[i].Type) {
		return "", 0, false
	}
	name := e.toks[i].Literal
	j := i + 1

	// optional explicit column list
	if j < len(e.toks) && e.toks[j].Type == token.LPAREN {
		depth := 0
		for ; j < len(e.toks); j++ {
			if e.toks[j].Type == token.LPAREN {
				depth++
			} else if e.toks[j].Type == token.RPAREN {
				depth--
				if depth == 0 {
					j++
					break
				}
			}
		}
	}

	if j+1 >= len(e.toks) || e.toks[j].Type != token.AS || e.toks[j+1].Type != token.LPAREN {
		return "", 0, false
	}
	return name, j + 1, true
}

// openParen decides whether a left paren introduces a new scope.
func (e *extractor) openParen(i int) {
	if e.scopes[e.cur].Depth >= maxScopeDepth {
		e.pendingCte = ""
		e.open = append(e.open, -1)
		return
	}

	switch {
	case e.pendingCte != "":
		idx := e.newScope(ScopeCte, i)
		e.scopes[e.cur].Aliases[strings.ToLower(e.pendingCte)] = Target{
			Kind:  TargetCte,
			Name:  e.pendingCte,
			Scope: idx,
		}
		e.pendingCte = ""
		e.enterScope(idx)
	case e.startsSubquery(i):
		kind := ScopeSubquery
		switch e.prevType(i) {
		case token.APPLY:
			kind = ScopeApply
		case token.FROM, token.JOIN, token.COMMA, token.USING:
			kind = ScopeDerivedTable
		}
		idx := e.newScope(kind, i)
		e.enterScope(idx)
	default:
		e.open = append(e.open, -1)
	}
}

// closeParen closes the innermost paren. If it ends a scope, the scope's
// range is sealed and a trailing `[AS] alias` binds in the parent. Returns
// the index to resume from.
func (e *extractor) closeParen(i int) int {
	if len(e.open) == 0 {
		// unbalanced input: stop adjusting, resolution continues with
		// whatever was discovered
		return i
	}
	scopeIdx := e.open[len(e.open)-1]
	e.open = e.open[:len(e.open)-1]
	if scopeIdx < 0 {
		return i
	}

	e.scopes[scopeIdx].End = e.toks[i].Pos.Offset
	e.cur = e.scopes[scopeIdx].Parent

	// CTE bodies take their alias from the WITH clause, not a trailing one;
	// a comma after the body continues the CTE chain
	if e.scopes[scopeIdx].Kind == ScopeCte {
		if i+1 < len(e.toks) && e.toks[i+1].Type == token.COMMA {
			if name, lparen, ok := e.matchCteDef(i + 2); ok {
				e.pendingCte = name
				return lparen - 1
			}
		}
		return i
	}

	j := i + 1
	if j < len(e.toks) && e.toks[j].Type == token.AS {
		j++
	}
	if j < len(e.toks) && token.IsIdentLike(e.toks[j].Type) {
		alias := e.toks[j].Literal
		target := Target{Kind: TargetDerived, Name: alias, Scope: scopeIdx}
		e.scopes[e.cur].Aliases[strings.ToLower(alias)] = target
		e.scopes[e.cur].Tables = append(e.scopes[e.cur].Tables, target)
		return j
	}
	return i
}

// startsSubquery reports whether the paren at i opens a SELECT (possibly
// behind a nested CTE chain).
func (e *extractor) startsSubquery(i int) bool {
	if i+1 >= len(e.toks) {
		return false
	}
	next := e.toks[i+1].Type
	return next == token.SELECT || next == token.WITH
}

// prevType returns the token type before i, or EOF at the start.
func (e *extractor) prevType(i int) token.TokenType {
	if i == 0 {
		return token.EOF
	}
	return e.toks[i-1].Type
}

// newScope appends a scope opened by the paren at token index i.
func (e *extractor) newScope(kind ScopeKind, i int) int {
	e.scopes = append(e.scopes, Scope{
		Kind:    kind,
		Start:   e.toks[i].End,
		End:     e.scopes[0].End,
		Parent:  e.cur,
		Depth:   e.scopes[e.cur].Depth + 1,
		Aliases: make(map[string]Target),
	})
	return len(e.scopes) - 1
}

func (e *extractor) enterScope(idx int) {
	e.open = append(e.open, idx)
	e.cur = idx
}

// bindTables binds the table reference after FROM/JOIN/INTO/USING, plus any
// comma-separated follow-ups in the same FROM list. For each plain table the
// alias (if any) and a case-folded self-alias of the table name are bound in
// the current scope. Returns the index to resume from.
func (e *extractor) bindTables(i int) int {
	j := i + 1
	for {
		j = e.bindOneTable(j)
		// comma-separated FROM list
		if e.toks[i].Type != token.FROM ||
			j >= len(e.toks) || e.toks[j].Type != token.COMMA ||
			j+1 >= len(e.toks) || !token.IsIdentLike(e.toks[j+1].Type) {
			return j - 1
		}
		j++
	}
}

// bindOneTable binds a single table reference starting at j and returns the
// index just past it. Derived tables, temp tables, and table variables are
// left for the paren machinery or skipped.
func (e *extractor) bindOneTable(j int) int {
	if j >= len(e.toks) {
		return j
	}
	switch e.toks[j].Type {
	case token.LPAREN:
		// derived table, handled when the paren opens
		return j
	case token.ATVAR, token.TEMP:
		// table variable or temp table: bind an alias to an unknown
		// target so the names are not misread as columns later
		name := e.toks[j].Literal
		j++
		if j < len(e.toks) && e.toks[j].Type == token.AS {
			j++
		}
		if j < len(e.toks) && token.IsIdentLike(e.toks[j].Type) {
			e.scopes[e.cur].Aliases[strings.ToLower(e.toks[j].Literal)] = Target{
				Kind: TargetUnknown,
				Name: name,
			}
			j++
		}
		return j
	}
	if !token.IsIdentLike(e.toks[j].Type) {
		return j
	}

	// identifier chain, up to three parts
	var parts []string
	for {
		parts = append(parts, e.toks[j].Literal)
		j++
		if len(parts) == 3 || j+1 >= len(e.toks) ||
			e.toks[j].Type != token.DOT || !token.IsIdentLike(e.toks[j+1].Type) {
			break
		}
		j++
	}

	name := parts[len(parts)-1]
	schema := e.defaultSchema
	if len(parts) >= 2 {
		schema = parts[len(parts)-2]
	}
	target := Target{Kind: TargetTable, Schema: schema, Name: name}

	scope := &e.scopes[e.cur]
	lower := strings.ToLower(name)

	// CTE names shadow table names: an unqualified FROM over a name the
	// body defined as a CTE binds to the CTE, not a phantom table
	if len(parts) == 1 {
		if cte, ok := e.lookupCte(lower); ok {
			target = cte
		}
	}

	scope.Tables = append(scope.Tables, target)
	scope.Aliases[lower] = target

	// optional [AS] alias
	if j < len(e.toks) && e.toks[j].Type == token.AS {
		j++
	}
	if j < len(e.toks) && token.IsIdentLike(e.toks[j].Type) {
		scope.Aliases[strings.ToLower(e.toks[j].Literal)] = target
		j++
	}
	return j
}

// lookupCte finds a CTE binding for the name anywhere up the scope chain.
func (e *extractor) lookupCte(lower string) (Target, bool) {
	for idx := e.cur; idx >= 0; idx = e.scopes[idx].Parent {
		if t, ok := e.scopes[idx].Aliases[lower]; ok && t.Kind == TargetCte {
			return t, true
		}
	}
	return Target{}, false
}
