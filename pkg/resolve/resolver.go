package resolve

import (
	"strings"

	"github.com/sqlforge/sqlforge/pkg/parser"
	"github.com/sqlforge/sqlforge/pkg/token"
)

// Resolver resolves body text against a Column Registry. It is a pure
// function of (body text, default schema, registry): no I/O, no shared
// mutable state, safe for concurrent use across bodies.
type Resolver struct {
	registry      *Registry
	defaultSchema string
}

// NewResolver creates a resolver. The registry must be fully built before
// the first Resolve call; the resolver never mutates it.
func NewResolver(registry *Registry, defaultSchema string) *Resolver {
	if defaultSchema == "" {
		defaultSchema = parser.DefaultSchema
	}
	return &Resolver{registry: registry, defaultSchema: defaultSchema}
}

// Resolve scans a body and returns its deduplicated, deterministically
// ordered dependencies. Malformed input degrades to a partial dependency
// set; Resolve never fails.
func (r *Resolver) Resolve(body string) []Dependency {
	toks, _ := parser.Scan(body)
	if len(toks) > 0 && toks[len(toks)-1].Type == token.EOF {
		toks = toks[:len(toks)-1]
	}
	if len(toks) == 0 {
		return nil
	}

	scopes := ExtractScopes(toks, r.defaultSchema)
	locals := collectLocalColumns(toks)

	w := &walker{
		resolver: r,
		toks:     toks,
		scopes:   scopes,
		locals:   locals,
	}
	w.run()

	return BuildSet(w.deps)
}

// walker holds the single-pass resolution state for one body.
type walker struct {
	resolver *Resolver
	toks     []token.Token
	scopes   *ScopeTree
	locals   map[string]struct{}
	deps     []Dependency
}

func (w *walker) run() {
	for i := 0; i < len(w.toks); i++ {
		t := w.toks[i]
		switch {
		case token.IsIdentLike(t.Type):
			i = w.resolveChain(i)
		case t.Type == token.STAR:
			w.resolveBareStar(i)
		}
	}
}

// chainPart is one segment of an identifier chain.
type chainPart struct {
	text      string
	bracketed bool
}

// resolveChain greedily consumes the maximal identifier chain starting at i,
// classifies it, and returns the index of its last token.
func (w *walker) resolveChain(i int) int {
	parts := []chainPart{{
		text:      w.toks[i].Literal,
		bracketed: w.toks[i].Type == token.BIDENT,
	}}
	star := false
	last := i

	j := i + 1
	for j+1 < len(w.toks) && w.toks[j].Type == token.DOT {
		next := w.toks[j+1]
		if next.Type == token.STAR {
			star = true
			last = j + 1
			j += 2
			break
		}
		if !token.IsIdentLike(next.Type) {
			break
		}
		parts = append(parts, chainPart{
			text:      next.Literal,
			bracketed: next.Type == token.BIDENT,
		})
		last = j + 1
		j += 2
	}

	// T-SQL names have at most four parts (server.database.schema.object);
	// a longer run is consumed whole but resolves to nothing
	if len(parts) > 4 {
		return last
	}

	prev := w.prevType(i)
	nextIsCall := j < len(w.toks) && w.toks[j].Type == token.LPAREN

	// a leading dot means the chain hangs off a non-identifier, like a
	// function result or numeric literal; nothing resolvable starts here
	if prev == token.DOT {
		return last
	}
	// column aliases, CAST targets, and scope aliases all follow AS; scope
	// aliases are rebound by the extractor, so skipping here loses nothing
	if prev == token.AS {
		return last
	}

	scope := w.scopes.InnermostAt(w.toks[i].Pos.Offset)

	switch {
	case prev == token.EXEC || prev == token.EXECUTE:
		w.emitObject(parts)
	case star:
		w.resolveQualifiedStar(parts, scope)
	case nextIsCall:
		// one-part calls are built-ins or intrinsics, never dependencies;
		// schema-qualified calls are routine dependencies
		if len(parts) >= 2 {
			w.emitObject(parts)
		}
	case len(parts) >= 3:
		w.resolveMultiPart(parts)
	case len(parts) == 2:
		w.resolveTwoPart(parts, scope)
	default:
		w.resolveOnePart(parts[0], scope)
	}

	return last
}

// emitObject records an object dependency from the last two chain parts.
func (w *walker) emitObject(parts []chainPart) {
	name := parts[len(parts)-1].text
	schema := w.resolver.defaultSchema
	if len(parts) >= 2 {
		schema = parts[len(parts)-2].text
	}
	w.deps = append(w.deps, Dependency{Kind: DepObject, Schema: schema, Name: name})
}

// resolveTwoPart handles A.B: alias-qualified column, schema-qualified
// object, or nothing. Unresolved chains are dropped, never invented.
func (w *walker) resolveTwoPart(parts []chainPart, scope int) {
	qualifier := strings.ToLower(parts[0].text)
	column := parts[1].text

	if target, ok := w.scopes.LookupAlias(scope, qualifier); ok {
		// only table and CTE targets carry a registry identity; columns of
		// derived tables and table variables are not dependencies
		if target.Kind != TargetTable && target.Kind != TargetCte {
			return
		}
		if concrete, ok := w.scopes.Underlying(target); ok {
			w.emitColumn(concrete, column)
		}
		return
	}

	// schema-qualified table or view reference
	if w.resolver.registry.HasSchema(parts[0].text) {
		key := KeyFor(parts[0].text, parts[1].text)
		if w.resolver.registry.HasTable(key) {
			schema, name, _ := w.resolver.registry.TableName(key)
			w.deps = append(w.deps, Dependency{Kind: DepObject, Schema: schema, Name: name})
		}
	}
}

// resolveOnePart handles a bare identifier: keyword, alias self-reference,
// local, or column candidate disambiguated through the registry.
func (w *walker) resolveOnePart(part chainPart, scope int) {
	lower := strings.ToLower(part.text)

	// bracketed keywords may be real columns, but only the registry can
	// say so; bare keywords never are
	filtered := isNonColumnWord(lower)
	if filtered && !part.bracketed {
		return
	}
	if w.scopes.IsBoundName(scope, lower) {
		return
	}
	if _, local := w.locals[lower]; local {
		return
	}

	candidates := w.scopes.CandidateTables(scope)
	matches := w.resolver.registry.TablesWithColumn(candidates, lower)

	switch len(matches) {
	case 1:
		schema, name, _ := w.resolver.registry.TableName(matches[0])
		column := w.resolver.registry.ColumnName(matches[0], part.text)
		w.deps = append(w.deps, Dependency{
			Kind: DepColumn, Schema: schema, Name: name, Column: column,
		})
	case 0:
		if filtered {
			// bracketed keyword without registry confirmation: dropped
			return
		}
		// legacy fallback: attribute the column to the first table in the
		// innermost scope rather than dropping every unqualified column
		if first, ok := w.scopes.FirstTable(scope); ok {
			w.emitColumn(first, part.text)
		}
	default:
		// ambiguous: dropped rather than guessed
	}
}

// resolveMultiPart handles 3- and 4-part chains. A 3-part name whose first
// two parts identify a local table is a fully qualified column reference;
// everything else is a cross-database object captured best-effort.
func (w *walker) resolveMultiPart(parts []chainPart) {
	if len(parts) == 3 {
		key := KeyFor(parts[0].text, parts[1].text)
		if w.resolver.registry.HasTable(key) {
			schema, name, _ := w.resolver.registry.TableName(key)
			w.deps = append(w.deps, Dependency{
				Kind:   DepColumn,
				Schema: schema,
				Name:   name,
				Column: w.resolver.registry.ColumnName(key, parts[2].text),
			})
			return
		}
	}
	w.emitObject(parts)
}

// resolveQualifiedStar handles A.* as a star reference against A's table.
func (w *walker) resolveQualifiedStar(parts []chainPart, scope int) {
	qualifier := strings.ToLower(parts[0].text)
	target, ok := w.scopes.LookupAlias(scope, qualifier)
	if !ok || (target.Kind != TargetTable && target.Kind != TargetCte) {
		return
	}
	if concrete, ok := w.scopes.Underlying(target); ok {
		w.emitColumn(concrete, "*")
	}
}

// resolveBareStar handles SELECT * with a synthetic star reference against
// the first table in scope.
func (w *walker) resolveBareStar(i int) {
	prev := w.prevType(i)
	if prev != token.SELECT && prev != token.DISTINCT && prev != token.ALL {
		return
	}
	scope := w.scopes.InnermostAt(w.toks[i].Pos.Offset)
	if first, ok := w.scopes.FirstTable(scope); ok {
		w.emitColumn(first, "*")
	}
}

// emitColumn records a column dependency against a concrete table target,
// preferring registry casing when the table is known.
func (w *walker) emitColumn(target Target, column string) {
	schema, name := target.Schema, target.Name
	key := KeyFor(schema, name)
	if s, n, ok := w.resolver.registry.TableName(key); ok {
		schema, name = s, n
		if column != "*" {
			column = w.resolver.registry.ColumnName(key, column)
		}
	}
	w.deps = append(w.deps, Dependency{
		Kind: DepColumn, Schema: schema, Name: name, Column: column,
	})
}

func (w *walker) prevType(i int) token.TokenType {
	if i == 0 {
		return token.EOF
	}
	return w.toks[i-1].Type
}

// collectLocalColumns gathers the column names of DECLARE @x TABLE (...)
// variables so they are not misread as schema columns.
func collectLocalColumns(toks []token.Token) map[string]struct{} {
	locals := make(map[string]struct{})

	for i := 0; i+3 < len(toks); i++ {
		if toks[i].Type != token.DECLARE ||
			toks[i+1].Type != token.ATVAR ||
			toks[i+2].Type != token.TABLE ||
			toks[i+3].Type != token.LPAREN {
			continue
		}

		depth := 0
		itemStart := true
		for j := i + 3; j < len(toks); j++ {
			switch toks[j].Type {
			case token.LPAREN:
				depth++
			case token.RPAREN:
				depth--
			case token.COMMA:
				if depth == 1 {
					itemStart = true
				}
			default:
				if depth == 1 && itemStart && token.IsIdentLike(toks[j].Type) {
					locals[strings.ToLower(toks[j].Literal)] = struct{}{}
					itemStart = false
				}
			}
			if depth == 0 && j > i+3 {
				i = j
				break
			}
		}
	}

	return locals
}
