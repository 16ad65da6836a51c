package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleProj = `<?xml version="1.0" encoding="utf-8"?>
<Project DefaultTargets="Build" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <PropertyGroup>
    <Name>Warehouse</Name>
    <DSP>Microsoft.Data.Tools.Schema.Sql.Sql150DatabaseSchemaProvider</DSP>
    <DacVersion>2.1.0.0</DacVersion>
    <DefaultSchema>dbo</DefaultSchema>
    <ModelCollation>1033, CI</ModelCollation>
  </PropertyGroup>
  <ItemGroup>
    <Build Include="Tables\**\*.sql" />
    <Build Include="Views\Active.sql" />
  </ItemGroup>
  <ItemGroup>
    <SqlCmdVariable Include="Environment">
      <DefaultValue>dev</DefaultValue>
    </SqlCmdVariable>
  </ItemGroup>
</Project>`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSqlproj(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Warehouse.sqlproj"), sampleProj)
	writeFile(t, filepath.Join(dir, "Tables", "Orders.sql"), "CREATE TABLE Orders (Id INT)")
	writeFile(t, filepath.Join(dir, "Tables", "Sub", "Lines.sql"), "CREATE TABLE Lines (Id INT)")
	writeFile(t, filepath.Join(dir, "Views", "Active.sql"), "CREATE VIEW Active AS SELECT 1 AS One")
	writeFile(t, filepath.Join(dir, "Views", "Skipped.sql"), "CREATE VIEW Skipped AS SELECT 1 AS One")

	p, err := Load(filepath.Join(dir, "Warehouse.sqlproj"))
	if err != nil {
		t.Fatal(err)
	}

	if p.Props.Name != "Warehouse" {
		t.Errorf("Name = %q", p.Props.Name)
	}
	if p.Props.TargetVersion != "Sql150" {
		t.Errorf("TargetVersion = %q", p.Props.TargetVersion)
	}
	if p.Props.Version != "2.1.0.0" {
		t.Errorf("Version = %q", p.Props.Version)
	}
	if p.Variables["Environment"] != "dev" {
		t.Errorf("Variables = %v", p.Variables)
	}

	if len(p.Scripts) != 3 {
		t.Fatalf("Scripts = %v", p.Scripts)
	}
	for _, s := range p.Scripts {
		if strings.Contains(s, "Skipped") {
			t.Errorf("non-build-item file discovered: %s", s)
		}
	}
}

func TestLoadDirectoryWithoutProjectFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.sql"), "CREATE TABLE A (Id INT)")
	writeFile(t, filepath.Join(dir, "nested", "b.sql"), "CREATE TABLE B (Id INT)")
	writeFile(t, filepath.Join(dir, "readme.md"), "not sql")

	p, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Scripts) != 2 {
		t.Fatalf("Scripts = %v", p.Scripts)
	}
	if p.Props.DefaultSchema != "dbo" {
		t.Errorf("DefaultSchema = %q", p.Props.DefaultSchema)
	}
}

func TestLoadDirectoryFindsProjectFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Warehouse.sqlproj"), sampleProj)
	writeFile(t, filepath.Join(dir, "Views", "Active.sql"), "CREATE VIEW Active AS SELECT 1 AS One")

	p, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if p.File == "" || p.Props.Name != "Warehouse" {
		t.Errorf("project file not picked up: %+v", p.Props)
	}
}

func TestDecodeScriptBOMs(t *testing.T) {
	const want = "SELECT 1"

	utf16le := []byte{0xFF, 0xFE}
	for _, r := range want {
		utf16le = append(utf16le, byte(r), 0)
	}
	utf16be := []byte{0xFE, 0xFF}
	for _, r := range want {
		utf16be = append(utf16be, 0, byte(r))
	}

	cases := []struct {
		name string
		raw  []byte
	}{
		{"plain", []byte(want)},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, want...)},
		{"utf16 le", utf16le},
		{"utf16 be", utf16be},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeScript(tc.raw)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestExpandVariables(t *testing.T) {
	vars := map[string]string{"Environment": "dev", "Schema": "audit"}

	cases := []struct {
		in, want string
	}{
		{"SELECT '$(Environment)'", "SELECT 'dev'"},
		{"USE [$(environment)]", "USE [dev]"}, // case-insensitive
		{"$(Schema).$(Environment)", "audit.dev"},
		{"$(Missing) stays", "$(Missing) stays"},
		{"no vars at all", "no vars at all"},
		{"dangling $(open", "dangling $(open"},
	}
	for _, tc := range cases {
		if got := ExpandVariables(tc.in, vars); got != tc.want {
			t.Errorf("ExpandVariables(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
