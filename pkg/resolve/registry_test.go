package resolve

import "testing"

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.AddTable("dbo", "Account", []string{"Id", "DisplayName"})

	key := KeyFor("DBO", "ACCOUNT")
	if !r.HasTable(key) {
		t.Fatal("case-folded key did not match")
	}
	if !r.HasColumn(key, "displayname") {
		t.Error("case-folded column lookup failed")
	}
	if r.HasColumn(key, "missing") {
		t.Error("unknown column reported present")
	}
	if !r.HasSchema("Dbo") {
		t.Error("schema lookup should be case-insensitive")
	}
}

func TestRegistryRetainsOriginalCasing(t *testing.T) {
	r := NewRegistry()
	r.AddTable("dbo", "Account", []string{"DisplayName"})

	key := KeyFor("dbo", "account")
	schema, name, ok := r.TableName(key)
	if !ok || schema != "dbo" || name != "Account" {
		t.Errorf("TableName = %q.%q, want dbo.Account", schema, name)
	}
	if got := r.ColumnName(key, "DISPLAYNAME"); got != "DisplayName" {
		t.Errorf("ColumnName = %q, want DisplayName", got)
	}
	if got := r.ColumnName(key, "NotThere"); got != "NotThere" {
		t.Errorf("unknown column should keep the given casing, got %q", got)
	}
}

func TestRegistryLastDefinitionWins(t *testing.T) {
	r := NewRegistry()
	r.AddTable("dbo", "Account", []string{"Id", "Old"})
	r.AddTable("dbo", "Account", []string{"Id", "New"})

	key := KeyFor("dbo", "Account")
	if r.HasColumn(key, "Old") {
		t.Error("replaced column set still visible")
	}
	if !r.HasColumn(key, "New") {
		t.Error("replacement column missing")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 table, got %d", r.Len())
	}
}

func TestTablesWithColumn(t *testing.T) {
	r := NewRegistry()
	r.AddTable("dbo", "Account", []string{"Id", "Name"})
	r.AddTable("dbo", "Users", []string{"Id", "Name"})
	r.AddTable("dbo", "Tag", []string{"Id", "Label"})

	candidates := []TableKey{
		KeyFor("dbo", "Account"),
		KeyFor("dbo", "Users"),
		KeyFor("dbo", "Tag"),
		KeyFor("dbo", "Missing"),
	}

	matches := r.TablesWithColumn(candidates, "name")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %v", matches)
	}
	// candidate order preserved
	if matches[0] != KeyFor("dbo", "Account") || matches[1] != KeyFor("dbo", "Users") {
		t.Errorf("matches out of order: %v", matches)
	}

	if got := r.TablesWithColumn(candidates, "label"); len(got) != 1 {
		t.Errorf("expected single match for label, got %v", got)
	}
	if got := r.TablesWithColumn(candidates, "absent"); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}
