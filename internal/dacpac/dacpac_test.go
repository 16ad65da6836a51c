package dacpac

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sqlforge/sqlforge/internal/model"
	"github.com/sqlforge/sqlforge/internal/project"
	"github.com/sqlforge/sqlforge/pkg/parser"
	"github.com/sqlforge/sqlforge/pkg/resolve"
)

func buildModel(t *testing.T, scripts ...string) *model.Model {
	t.Helper()
	m := model.New()
	for i, src := range scripts {
		stmts, errs := parser.ParseScript(src, parser.DefaultSchema)
		if len(errs) > 0 {
			t.Fatalf("script %d: %v", i, errs)
		}
		for _, s := range stmts {
			if err := m.Add(s, "test.sql"); err != nil {
				t.Fatal(err)
			}
		}
	}
	return m
}

func renderModel(t *testing.T, m *model.Model, deps map[string][]resolve.Dependency) string {
	t.Helper()
	var buf bytes.Buffer
	props := project.Properties{Name: "Test", Version: "1.0.0.0", TargetVersion: "Sql160"}
	if err := WriteModel(&buf, m, deps, props, nil); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestWriteModelTable(t *testing.T) {
	m := buildModel(t, `CREATE TABLE dbo.Account (
		Id INT IDENTITY(1,1) NOT NULL,
		Name NVARCHAR(50) NOT NULL,
		Balance DECIMAL(18, 2),
		CONSTRAINT PK_Account PRIMARY KEY (Id)
	)`)

	out := renderModel(t, m, nil)

	for _, want := range []string{
		`<Element Type="SqlTable" Name="[dbo].[Account]">`,
		`<Element Type="SqlSimpleColumn" Name="[dbo].[Account].[Id]">`,
		`<Property Name="IsIdentity" Value="True">`,
		`<Property Name="IsNullable" Value="False">`,
		`<Property Name="Length" Value="50">`,
		`<Property Name="Precision" Value="18">`,
		`<Property Name="Scale" Value="2">`,
		`<References ExternalSource="BuiltIns" Name="[int]">`,
		`<Element Type="SqlPrimaryKeyConstraint" Name="[dbo].[PK_Account]">`,
		`DspName="Microsoft.Data.Tools.Schema.Sql.Sql160DatabaseSchemaProvider"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("model.xml missing %s", want)
		}
	}

	// dbo is built in and must not appear as a schema element
	if strings.Contains(out, `Type="SqlSchema" Name="[dbo]"`) {
		t.Error("built-in schema emitted as element")
	}
}

func TestWriteModelViewDependencies(t *testing.T) {
	m := buildModel(t,
		"CREATE TABLE dbo.Account (Id INT, Name NVARCHAR(50))",
		"CREATE VIEW dbo.Names AS SELECT Name FROM Account",
	)

	view, ok := m.Lookup("dbo", "Names")
	if !ok {
		t.Fatal("view not in model")
	}
	deps := map[string][]resolve.Dependency{
		view.Key(): resolve.NewResolver(m.BuildRegistry(), "dbo").Resolve(view.Body),
	}

	out := renderModel(t, m, deps)
	if !strings.Contains(out, `<Relationship Name="QueryDependencies">`) {
		t.Fatal("QueryDependencies relationship missing")
	}
	if !strings.Contains(out, `<References Name="[dbo].[Account].[Name]">`) {
		t.Errorf("resolved dependency not rendered:\n%s", out)
	}
}

func TestWriteModelDeterministic(t *testing.T) {
	m := buildModel(t,
		"CREATE TABLE dbo.B (Id INT)",
		"CREATE TABLE dbo.A (Id INT)",
		"CREATE VIEW dbo.V AS SELECT Id FROM A",
	)

	first := renderModel(t, m, nil)
	second := renderModel(t, m, nil)
	if first != second {
		t.Error("model.xml output differs between runs")
	}

	// tables in name order regardless of definition order
	if strings.Index(first, "[dbo].[A]") > strings.Index(first, "[dbo].[B]") {
		t.Error("elements not sorted by name")
	}
}

func TestWriteModelTableType(t *testing.T) {
	m := buildModel(t,
		"CREATE TABLE dbo.Aaa (Id INT)",
		`CREATE TYPE dbo.OrderLineList AS TABLE (
	ProductId INT NOT NULL,
	Qty INT NOT NULL,
	PRIMARY KEY CLUSTERED (ProductId),
	CHECK (Qty > 0),
	INDEX IX_OrderLineList_Qty NONCLUSTERED (Qty)
)`)

	out := renderModel(t, m, nil)
	for _, want := range []string{
		`<Element Type="SqlTableType" Name="[dbo].[OrderLineList]">`,
		`<Element Type="SqlTableTypeColumn" Name="[dbo].[OrderLineList].[ProductId]">`,
		`<Element Type="SqlTableTypePrimaryKeyConstraint">`,
		`<Element Type="SqlTableTypeCheckConstraint">`,
		`<Relationship Name="Indexes">`,
		`<Element Type="SqlTableTypeIndex" Name="[dbo].[OrderLineList].[IX_OrderLineList_Qty]">`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("model.xml missing %s", want)
		}
	}

	// types come before tables so routines and tables can reference them,
	// regardless of name order
	if strings.Index(out, `Type="SqlTableType"`) > strings.Index(out, `Name="[dbo].[Aaa]"`) {
		t.Error("table type emitted after tables")
	}
}

func TestWriteModelExtendedProperty(t *testing.T) {
	m := buildModel(t,
		"CREATE TABLE dbo.Account (Id INT, Email NVARCHAR(100))",
		`EXEC sys.sp_addextendedproperty @name = N'MS_Description', @value = N'Customer''s email',
	@level0type = N'SCHEMA', @level0name = N'dbo',
	@level1type = N'TABLE', @level1name = N'Account',
	@level2type = N'COLUMN', @level2name = N'Email'`,
	)

	out := renderModel(t, m, nil)
	if !strings.Contains(out,
		`<Element Type="SqlExtendedProperty" Name="[dbo].[Account].[Email].[MS_Description]">`) {
		t.Fatalf("extended property element missing:\n%s", out)
	}
	// the value is scripted back as an N literal with quotes doubled
	if !strings.Contains(out, "N&#39;Customer&#39;&#39;s email&#39;") {
		t.Errorf("property value not scripted as N literal:\n%s", out)
	}
	if !strings.Contains(out, `<References Name="[dbo].[Account].[Email]">`) {
		t.Error("Host relationship missing")
	}
}

func TestWriteModelDocComments(t *testing.T) {
	m := buildModel(t,
		"CREATE TABLE dbo.Account (Id INT, Name NVARCHAR(50))",
		`-- Current account names.
CREATE VIEW dbo.Names AS SELECT Name FROM Account`,
	)

	out := renderModel(t, m, nil)
	if !strings.Contains(out,
		`<Element Type="SqlExtendedProperty" Name="[dbo].[Names].[MS_Description]">`) {
		t.Fatalf("doc comment not surfaced as MS_Description:\n%s", out)
	}
	if !strings.Contains(out, "N&#39;Current account names.&#39;") {
		t.Errorf("doc text not scripted:\n%s", out)
	}
}

func TestWriteModelExplicitDescriptionWins(t *testing.T) {
	m := buildModel(t,
		`-- Stale doc text.
CREATE VIEW dbo.Names AS SELECT 1 AS One`,
		`EXEC sp_addextendedproperty @name = N'MS_Description', @value = N'Authored text',
	@level0type = N'SCHEMA', @level0name = N'dbo',
	@level1type = N'VIEW', @level1name = N'Names'`,
	)

	out := renderModel(t, m, nil)
	if strings.Contains(out, "Stale doc text") {
		t.Error("doc comment emitted despite explicit MS_Description")
	}
	if !strings.Contains(out, "N&#39;Authored text&#39;") {
		t.Errorf("explicit description missing:\n%s", out)
	}
}

func TestWriteModelPermission(t *testing.T) {
	m := buildModel(t,
		"CREATE TABLE dbo.Account (Id INT)",
		"GRANT SELECT, INSERT ON dbo.Account TO AppUser WITH GRANT OPTION",
		"GRANT EXECUTE ON SCHEMA::dbo TO ServiceRole",
	)

	out := renderModel(t, m, nil)
	for _, want := range []string{
		`<Element Type="SqlPermissionStatement">`,
		`<Property Name="PermissionAction" Value="GRANT">`,
		`<Property Name="Permission" Value="SELECT, INSERT">`,
		`<Property Name="WithGrantOption" Value="True">`,
		`<References Name="[AppUser]">`,
		`<References Name="[dbo].[Account]">`,
		`<Property Name="Permission" Value="EXECUTE">`,
		`<References Name="[ServiceRole]">`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("model.xml missing %s", want)
		}
	}
}

func TestWritePackage(t *testing.T) {
	m := buildModel(t, "CREATE TABLE dbo.Account (Id INT)")
	out := filepath.Join(t.TempDir(), "out", "Test.dacpac")

	proj := &project.Project{
		Props: project.Properties{Name: "Test", Version: "1.2.3.4", TargetVersion: "Sql160"},
	}
	if err := WritePackage(out, m, nil, proj); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	parts := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		parts[f.Name] = string(data)
	}

	for _, name := range []string{"model.xml", "DacMetadata.xml", "Origin.xml", "[Content_Types].xml"} {
		if _, ok := parts[name]; !ok {
			t.Errorf("package missing %s", name)
		}
	}
	if !strings.Contains(parts["DacMetadata.xml"], "<Version>1.2.3.4</Version>") {
		t.Error("DacMetadata.xml missing version")
	}
	if !strings.Contains(parts["Origin.xml"], `<Checksum Uri="/model.xml">`) {
		t.Error("Origin.xml missing model checksum")
	}
}
