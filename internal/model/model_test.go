package model

import (
	"testing"

	"github.com/sqlforge/sqlforge/pkg/parser"
	"github.com/sqlforge/sqlforge/pkg/resolve"
)

func addScript(t *testing.T, m *Model, file, src string) {
	t.Helper()
	stmts, errs := parser.ParseScript(src, parser.DefaultSchema)
	if len(errs) > 0 {
		t.Fatalf("parse %s: %v", file, errs)
	}
	for _, s := range stmts {
		if err := m.Add(s, file); err != nil {
			t.Fatalf("add %s: %v", file, err)
		}
	}
}

func TestModelOrdering(t *testing.T) {
	m := New()
	addScript(t, m, "views/v.sql", "CREATE VIEW dbo.V AS SELECT 1 AS One")
	addScript(t, m, "tables/b.sql", "CREATE TABLE dbo.Beta (Id INT)")
	addScript(t, m, "tables/a.sql", "CREATE TABLE dbo.Alpha (Id INT)")
	addScript(t, m, "schemas/audit.sql", "CREATE SCHEMA audit")

	objs := m.Objects()
	var got []string
	for _, o := range objs {
		got = append(got, o.Kind.String()+":"+o.Name.Name)
	}
	want := []string{"SqlSchema:audit", "SqlTable:Alpha", "SqlTable:Beta", "SqlView:V"}
	if len(got) != len(want) {
		t.Fatalf("objects = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("objects[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestModelLastDefinitionWins(t *testing.T) {
	m := New()
	addScript(t, m, "a.sql", "CREATE TABLE dbo.T (Old INT)")
	addScript(t, m, "b.sql", "CREATE TABLE dbo.T (New INT)")

	if m.Len() != 1 {
		t.Fatalf("expected 1 object, got %d", m.Len())
	}
	obj, ok := m.Lookup("dbo", "t")
	if !ok {
		t.Fatal("table not found")
	}
	tbl := obj.Statement.(*parser.CreateTable)
	if len(tbl.Columns) != 1 || tbl.Columns[0].Name != "New" {
		t.Errorf("stale definition survived: %+v", tbl.Columns)
	}
	if obj.SourceFile != "b.sql" {
		t.Errorf("SourceFile = %q, want b.sql", obj.SourceFile)
	}
}

func TestModelIndexDoesNotShadowTable(t *testing.T) {
	m := New()
	addScript(t, m, "t.sql", "CREATE TABLE dbo.Orders (Id INT)")
	addScript(t, m, "ix.sql", "CREATE INDEX Orders ON dbo.Orders (Id)")

	if m.Len() != 2 {
		t.Fatalf("expected 2 objects, got %d", m.Len())
	}
	obj, ok := m.Lookup("dbo", "Orders")
	if !ok || obj.Kind != KindTable {
		t.Errorf("table lookup returned %+v", obj)
	}
}

func TestModelKindOrdering(t *testing.T) {
	m := New()
	addScript(t, m, "perm.sql", "GRANT SELECT ON dbo.Zebra TO AppUser")
	addScript(t, m, "prop.sql",
		`EXEC sp_addextendedproperty @name = N'MS_Description', @value = N'Zebra herd',
	@level0type = N'SCHEMA', @level0name = N'dbo',
	@level1type = N'TABLE', @level1name = N'Zebra'`)
	addScript(t, m, "t.sql", "CREATE TABLE dbo.Zebra (Id INT)")
	addScript(t, m, "tt.sql", "CREATE TYPE dbo.IdList AS TABLE (Id INT NOT NULL)")

	if m.Len() != 4 {
		t.Fatalf("expected 4 objects, got %d", m.Len())
	}

	var got []string
	for _, o := range m.Objects() {
		got = append(got, o.Kind.String())
	}
	// types precede tables; properties and permissions trail their hosts
	want := []string{"SqlTableType", "SqlTable", "SqlExtendedProperty", "SqlPermissionStatement"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("objects[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestModelPermissionIdentity(t *testing.T) {
	m := New()
	// restating a grant collapses; a different principal does not
	addScript(t, m, "a.sql", "GRANT SELECT ON dbo.T TO AppUser")
	addScript(t, m, "b.sql", "GRANT SELECT ON dbo.T TO AppUser")
	addScript(t, m, "c.sql", "GRANT SELECT ON dbo.T TO Auditor")

	if m.Len() != 2 {
		t.Errorf("expected 2 permission objects, got %d", m.Len())
	}
}

func TestModelDescriptionFromDocComment(t *testing.T) {
	m := New()
	addScript(t, m, "v.sql", "-- Names currently in use.\nCREATE VIEW dbo.Names AS SELECT 1 AS One")

	obj, ok := m.Lookup("dbo", "Names")
	if !ok {
		t.Fatal("view not in model")
	}
	if obj.Description != "Names currently in use." {
		t.Errorf("Description = %q", obj.Description)
	}
}

func TestModelBodied(t *testing.T) {
	m := New()
	addScript(t, m, "t.sql", "CREATE TABLE dbo.Account (Id INT, Name NVARCHAR(50))")
	addScript(t, m, "v.sql", "CREATE VIEW dbo.Names AS SELECT Name FROM Account")
	addScript(t, m, "p.sql", "CREATE PROCEDURE dbo.Touch AS SELECT Id FROM Account")

	bodied := m.Bodied()
	if len(bodied) != 2 {
		t.Fatalf("expected 2 bodied objects, got %d", len(bodied))
	}
	for _, o := range bodied {
		if o.Body == "" {
			t.Errorf("%s has empty body", o.Name)
		}
	}
}

func TestBuildRegistry(t *testing.T) {
	m := New()
	addScript(t, m, "s.sql", "CREATE SCHEMA audit")
	addScript(t, m, "t.sql", "CREATE TABLE dbo.Account (Id INT, Name NVARCHAR(50))")

	reg := m.BuildRegistry()
	key := resolve.KeyFor("dbo", "Account")
	if !reg.HasTable(key) {
		t.Fatal("registry missing table")
	}
	if !reg.HasColumn(key, "name") {
		t.Error("registry missing column")
	}
	if !reg.HasSchema("audit") || !reg.HasSchema("dbo") {
		t.Error("registry missing schemas")
	}
}
