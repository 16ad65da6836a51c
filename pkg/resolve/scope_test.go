package resolve

import (
	"strings"
	"testing"

	"github.com/sqlforge/sqlforge/pkg/parser"
	"github.com/sqlforge/sqlforge/pkg/token"
)

func extract(t *testing.T, body string) *ScopeTree {
	t.Helper()
	toks, _ := parser.Scan(body)
	if n := len(toks); n > 0 && toks[n-1].Type == token.EOF {
		toks = toks[:n-1]
	}
	return ExtractScopes(toks, "dbo")
}

func TestExtractTopLevelAliases(t *testing.T) {
	tree := extract(t, "SELECT a.Id FROM Account a JOIN Orders ON Orders.CustomerId = a.Id")

	if len(tree.Scopes) != 1 {
		t.Fatalf("expected 1 scope, got %d", len(tree.Scopes))
	}
	top := tree.Scopes[0]

	for _, alias := range []string{"a", "account", "orders"} {
		if _, ok := top.Aliases[alias]; !ok {
			t.Errorf("alias %q not bound", alias)
		}
	}
	if target := top.Aliases["a"]; target.Schema != "dbo" || target.Name != "Account" {
		t.Errorf("alias a bound to %+v", target)
	}
	if len(top.Tables) != 2 {
		t.Errorf("expected 2 tables, got %d", len(top.Tables))
	}
}

func TestExtractDerivedTableScope(t *testing.T) {
	body := "SELECT T.Id FROM (SELECT Id FROM Tag) T"
	tree := extract(t, body)

	if len(tree.Scopes) != 2 {
		t.Fatalf("expected 2 scopes, got %d", len(tree.Scopes))
	}
	inner := tree.Scopes[1]
	if inner.Kind != ScopeDerivedTable {
		t.Errorf("expected derived-table scope, got %v", inner.Kind)
	}
	if inner.Parent != 0 {
		t.Errorf("expected parent 0, got %d", inner.Parent)
	}
	if len(inner.Tables) != 1 || inner.Tables[0].Name != "Tag" {
		t.Errorf("inner scope tables: %+v", inner.Tables)
	}

	target, ok := tree.Scopes[0].Aliases["t"]
	if !ok || target.Kind != TargetDerived {
		t.Errorf("alias t not bound to derived table: %+v", target)
	}

	// a position inside the subquery belongs to the inner scope
	off := strings.Index(body, "Id FROM Tag")
	if got := tree.InnermostAt(off); got != 1 {
		t.Errorf("InnermostAt(%d) = %d, want 1", off, got)
	}
	// the outer select list belongs to the top level
	if got := tree.InnermostAt(strings.Index(body, "T.Id")); got != 0 {
		t.Errorf("outer position resolved to scope %d, want 0", 0)
	}
}

func TestExtractCte(t *testing.T) {
	tree := extract(t, `WITH recent AS (SELECT Id FROM Orders) SELECT Id FROM recent`)

	target, ok := tree.Scopes[0].Aliases["recent"]
	if !ok {
		t.Fatal("CTE name not bound in enclosing scope")
	}
	if target.Kind != TargetCte {
		t.Fatalf("expected CTE target, got %+v", target)
	}

	underlying, ok := tree.Underlying(target)
	if !ok {
		t.Fatal("CTE has no underlying table")
	}
	if underlying.Schema != "dbo" || underlying.Name != "Orders" {
		t.Errorf("underlying = %+v, want dbo.Orders", underlying)
	}
}

func TestExtractTableHintOpensNoScope(t *testing.T) {
	tree := extract(t, "SELECT Id FROM Account WITH (NOLOCK)")
	if len(tree.Scopes) != 1 {
		t.Errorf("table hint created a scope: %d scopes", len(tree.Scopes))
	}
}

func TestExtractApplyScope(t *testing.T) {
	tree := extract(t,
		"SELECT 1 FROM Account a OUTER APPLY (SELECT Id FROM Orders WHERE CustomerId = a.Id) o")

	if len(tree.Scopes) != 2 {
		t.Fatalf("expected 2 scopes, got %d", len(tree.Scopes))
	}
	if tree.Scopes[1].Kind != ScopeApply {
		t.Errorf("expected apply scope, got %v", tree.Scopes[1].Kind)
	}
	if _, ok := tree.Scopes[0].Aliases["o"]; !ok {
		t.Error("apply alias o not bound in outer scope")
	}
}

func TestExtractCommaSeparatedFrom(t *testing.T) {
	tree := extract(t, "SELECT 1 FROM Account a, Orders o WHERE a.Id = o.CustomerId")

	top := tree.Scopes[0]
	if len(top.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %+v", top.Tables)
	}
	if top.Aliases["o"].Name != "Orders" {
		t.Errorf("alias o bound to %+v", top.Aliases["o"])
	}
}

func TestExtractDepthCap(t *testing.T) {
	// nesting beyond the cap stops discovering scopes but must not panic
	// or lose the scopes already built
	var sb strings.Builder
	sb.WriteString("SELECT Id FROM ")
	for range maxScopeDepth + 8 {
		sb.WriteString("(SELECT Id FROM ")
	}
	sb.WriteString("Tag")
	for range maxScopeDepth + 8 {
		sb.WriteString(") x")
	}

	tree := extract(t, sb.String())
	for _, s := range tree.Scopes {
		if s.Depth > maxScopeDepth {
			t.Fatalf("scope exceeds depth cap: %d", s.Depth)
		}
	}
}

func TestExtractMalformedNesting(t *testing.T) {
	// unbalanced parens terminate discovery without invalidating what was
	// already found
	tree := extract(t, "SELECT Id FROM (SELECT Id FROM Tag")
	if len(tree.Scopes) < 2 {
		t.Fatalf("expected partial scopes, got %d", len(tree.Scopes))
	}
	if len(tree.Scopes[1].Tables) != 1 {
		t.Errorf("partial scope lost its table: %+v", tree.Scopes[1].Tables)
	}
}

func TestFirstTableWalksOutward(t *testing.T) {
	body := "SELECT (SELECT 1) FROM Account"
	tree := extract(t, body)

	inner := tree.InnermostAt(strings.Index(body, "1"))
	first, ok := tree.FirstTable(inner)
	if !ok {
		t.Fatal("no fallback table found")
	}
	if first.Name != "Account" {
		t.Errorf("fallback = %+v, want Account", first)
	}
}
