// Package dacpac emits the package artifacts: model.xml, DacMetadata.xml,
// Origin.xml, [Content_Types].xml, and the ZIP container holding them.
package dacpac

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sqlforge/sqlforge/internal/model"
	"github.com/sqlforge/sqlforge/internal/project"
	"github.com/sqlforge/sqlforge/pkg/parser"
	"github.com/sqlforge/sqlforge/pkg/resolve"
)

const serializationNamespace = "http://schemas.microsoft.com/sqlserver/dac/Serialization/2012/02"

// builtinSchemas exist in every SQL Server database and are never emitted as
// model elements; references to them carry ExternalSource="BuiltIns".
var builtinSchemas = map[string]struct{}{
	"dbo":                {},
	"guest":              {},
	"information_schema": {},
	"sys":                {},
	"db_owner":           {},
	"db_accessadmin":     {},
	"db_securityadmin":   {},
	"db_ddladmin":        {},
	"db_backupoperator":  {},
	"db_datareader":      {},
	"db_datawriter":      {},
	"db_denydatareader":  {},
	"db_denydatawriter":  {},
}

func isBuiltinSchema(name string) bool {
	_, ok := builtinSchemas[strings.ToLower(name)]
	return ok
}

// WriteModel renders model.xml. deps maps an object's case-folded key to its
// resolved dependency list; the list order is the emission order.
func WriteModel(w io.Writer, m *model.Model, deps map[string][]resolve.Dependency, props project.Properties, vars map[string]string) error {
	x := newXMLWriter(w)

	x.start("DataSchemaModel",
		"FileFormatVersion", "1.2",
		"SchemaVersion", "2.9",
		"DspName", dspName(props.TargetVersion),
		"CollationLcid", "1033",
		"CollationCaseSensitive", "False",
		"xmlns", serializationNamespace,
	)

	writeHeader(x, props, vars)

	x.start("Model")
	described := explicitDescriptions(m)
	for _, obj := range m.Objects() {
		writeElement(x, obj, deps[obj.Key()])
		writeDocDescription(x, obj, described)
	}
	x.end("Model")

	x.end("DataSchemaModel")
	return x.flush()
}

func dspName(target string) string {
	if target == "" {
		target = "Sql160"
	}
	return "Microsoft.Data.Tools.Schema.Sql." + target + "DatabaseSchemaProvider"
}

// compatibilityMode derives the numeric compatibility level from the target,
// e.g. Sql160 -> 160.
func compatibilityMode(target string) string {
	n := strings.TrimPrefix(target, "Sql")
	if n == "" || n == target {
		return "160"
	}
	return n
}

func writeHeader(x *xmlWriter, props project.Properties, vars map[string]string) {
	x.start("Header")
	writeCustomData(x, "AnsiNulls", "AnsiNulls", "True")
	writeCustomData(x, "QuotedIdentifier", "QuotedIdentifier", "True")
	writeCustomData(x, "CompatibilityMode", "CompatibilityMode", compatibilityMode(props.TargetVersion))

	if len(vars) > 0 {
		names := make([]string, 0, len(vars))
		for name := range vars {
			names = append(names, name)
		}
		sort.Strings(names)

		x.start("CustomData", "Category", "SqlCmdVariables", "Type", "SqlCmdVariable")
		for _, name := range names {
			x.empty("Metadata", "Name", name, "Value", "")
		}
		x.end("CustomData")
	}
	x.end("Header")
}

func writeCustomData(x *xmlWriter, category, name, value string) {
	x.start("CustomData", "Category", category, "Type", category)
	x.empty("Metadata", "Name", name, "Value", value)
	x.end("CustomData")
}

// depRefs renders a dependency list in its resolved order.
func depRefs(deps []resolve.Dependency) []string {
	refs := make([]string, len(deps))
	for i, d := range deps {
		refs[i] = d.String()
	}
	return refs
}

// explicitDescriptions collects the hosts whose MS_Description comes from
// an sp_addextendedproperty call. Explicit properties win over doc comments.
func explicitDescriptions(m *model.Model) map[string]struct{} {
	hosts := make(map[string]struct{})
	for _, obj := range m.Objects() {
		ep, ok := obj.Statement.(*parser.ExtendedProperty)
		if !ok || !strings.EqualFold(ep.Name, "MS_Description") {
			continue
		}
		hosts[strings.ToLower(ep.HostName())] = struct{}{}
	}
	return hosts
}

// writeDocDescription surfaces a statement's leading doc comment as an
// MS_Description property, unless the scripts set one explicitly.
func writeDocDescription(x *xmlWriter, obj *model.Object, described map[string]struct{}) {
	if obj.Description == "" {
		return
	}
	host := obj.Name.String()
	if _, explicit := described[strings.ToLower(host)]; explicit {
		return
	}
	writePropertyElement(x, host, "MS_Description", obj.Description)
}

func writeElement(x *xmlWriter, obj *model.Object, deps []resolve.Dependency) {
	switch s := obj.Statement.(type) {
	case *parser.CreateSchema:
		writeSchema(x, s)
	case *parser.CreateTable:
		writeTable(x, s)
	case *parser.CreateTableType:
		writeTableType(x, s)
	case *parser.ExtendedProperty:
		writeExtendedProperty(x, s)
	case *parser.PermissionStatement:
		writePermission(x, s)
	case *parser.CreateView:
		writeView(x, s, deps)
	case *parser.CreateRoutine:
		writeRoutine(x, s, deps)
	case *parser.CreateTrigger:
		writeTrigger(x, s, deps)
	case *parser.CreateIndex:
		writeIndex(x, s)
	case *parser.CreateSynonym:
		writeSynonym(x, s)
	case *parser.CreateSequence:
		writeSequence(x, s)
	}
}

func writeSchema(x *xmlWriter, s *parser.CreateSchema) {
	if isBuiltinSchema(s.Name) {
		return
	}
	x.start("Element", "Type", "SqlSchema", "Name", "["+s.Name+"]")
	x.builtinRelationship("Authorizer", "[dbo]")
	x.end("Element")
}

func writeTable(x *xmlWriter, t *parser.CreateTable) {
	fullName := t.Name.String()
	x.start("Element", "Type", "SqlTable", "Name", fullName)
	x.property("IsAnsiNullsOn", "True")

	if len(t.Columns) > 0 {
		x.start("Relationship", "Name", "Columns")
		for _, col := range t.Columns {
			writeColumn(x, fullName, col)
		}
		x.end("Relationship")
	}
	x.schemaRelationship(t.Name.Schema)
	x.end("Element")

	for _, c := range t.Constraints {
		writeConstraint(x, t, c)
	}
}

func writeColumn(x *xmlWriter, tableName string, col parser.ColumnDef) {
	colName := tableName + ".[" + col.Name + "]"
	x.start("Entry")

	if col.Computed != "" {
		x.start("Element", "Type", "SqlComputedColumn", "Name", colName)
		x.scriptProperty("ExpressionScript", col.Computed)
		x.end("Element")
		x.end("Entry")
		return
	}

	x.start("Element", "Type", "SqlSimpleColumn", "Name", colName)
	if col.NotNull {
		x.property("IsNullable", "False")
	}
	if col.Identity {
		x.property("IsIdentity", "True")
	}
	writeTypeSpecifier(x, col.DataType)
	x.end("Element")
	x.end("Entry")
}

// writeTypeSpecifier renders the TypeSpecifier relationship for a built-in
// type, with Length or Precision/Scale properties where the type text
// declares them.
func writeTypeSpecifier(x *xmlWriter, dataType string) {
	if dataType == "" {
		return
	}
	base, args := splitTypeArgs(dataType)

	x.start("Relationship", "Name", "TypeSpecifier")
	x.start("Entry")
	x.start("Element", "Type", "SqlTypeSpecifier")
	switch {
	case len(args) == 1 && strings.EqualFold(args[0], "max"):
		x.property("IsMax", "True")
	case len(args) == 1:
		x.property("Length", args[0])
	case len(args) == 2:
		x.property("Precision", args[0])
		x.property("Scale", args[1])
	}
	x.builtinRelationship("Type", "["+strings.ToLower(base)+"]")
	x.end("Element")
	x.end("Entry")
	x.end("Relationship")
}

// splitTypeArgs separates "nvarchar(50)" into base and argument list.
func splitTypeArgs(dataType string) (string, []string) {
	open := strings.IndexByte(dataType, '(')
	if open < 0 {
		return strings.TrimSpace(dataType), nil
	}
	base := strings.TrimSpace(dataType[:open])
	inner := strings.TrimSuffix(strings.TrimSpace(dataType[open+1:]), ")")
	var args []string
	for _, a := range strings.Split(inner, ",") {
		if a = strings.TrimSpace(a); a != "" {
			args = append(args, a)
		}
	}
	return base, args
}

func constraintTypeName(kind parser.ConstraintKind) string {
	switch kind {
	case parser.ConstraintPrimaryKey:
		return "SqlPrimaryKeyConstraint"
	case parser.ConstraintForeignKey:
		return "SqlForeignKeyConstraint"
	case parser.ConstraintUnique:
		return "SqlUniqueConstraint"
	case parser.ConstraintCheck:
		return "SqlCheckConstraint"
	default:
		return "SqlDefaultConstraint"
	}
}

func writeConstraint(x *xmlWriter, t *parser.CreateTable, c parser.ConstraintDef) {
	attrs := []string{"Type", constraintTypeName(c.Kind)}
	if c.Name != "" {
		attrs = append(attrs, "Name", "["+t.Name.Schema+"].["+c.Name+"]")
	}
	x.start("Element", attrs...)

	tableName := t.Name.String()
	x.relationship("DefiningTable", tableName)

	switch c.Kind {
	case parser.ConstraintPrimaryKey, parser.ConstraintUnique:
		x.relationship("ColumnSpecifications", columnRefs(tableName, c.Columns)...)
	case parser.ConstraintForeignKey:
		x.relationship("Columns", columnRefs(tableName, c.Columns)...)
		x.relationship("ForeignTable", c.RefTable.String())
		x.relationship("ForeignColumns", columnRefs(c.RefTable.String(), c.RefColumns)...)
	case parser.ConstraintCheck:
		x.scriptProperty("CheckExpressionScript", c.Expr)
	case parser.ConstraintDefault:
		x.scriptProperty("DefaultExpressionScript", c.Expr)
		x.relationship("ForColumn", columnRefs(tableName, c.Columns)...)
	}

	if c.Name != "" {
		x.schemaRelationship(t.Name.Schema)
	}
	x.end("Element")
}

func columnRefs(tableName string, cols []string) []string {
	refs := make([]string, len(cols))
	for i, c := range cols {
		refs[i] = tableName + ".[" + c + "]"
	}
	return refs
}

func writeView(x *xmlWriter, v *parser.CreateView, deps []resolve.Dependency) {
	x.start("Element", "Type", "SqlView", "Name", v.Name.String())
	x.property("IsAnsiNullsOn", "True")
	x.scriptProperty("QueryScript", v.Body)
	x.relationship("QueryDependencies", depRefs(deps)...)
	x.schemaRelationship(v.Name.Schema)
	x.end("Element")
}

func routineTypeName(kind parser.RoutineKind) string {
	switch kind {
	case parser.RoutineScalarFunction:
		return "SqlScalarFunction"
	case parser.RoutineTableFunction:
		return "SqlInlineTableValuedFunction"
	default:
		return "SqlProcedure"
	}
}

func writeRoutine(x *xmlWriter, r *parser.CreateRoutine, deps []resolve.Dependency) {
	fullName := r.Name.String()
	x.start("Element", "Type", routineTypeName(r.Kind), "Name", fullName)
	x.property("IsAnsiNullsOn", "True")
	x.property("IsQuotedIdentifierOn", "True")
	x.scriptProperty("BodyScript", r.Body)
	x.relationship("BodyDependencies", depRefs(deps)...)

	if len(r.Params) > 0 {
		x.start("Relationship", "Name", "Parameters")
		for _, p := range r.Params {
			x.start("Entry")
			x.start("Element", "Type", "SqlSubroutineParameter",
				"Name", fmt.Sprintf("%s.[%s]", fullName, p.Name))
			if p.Output {
				x.property("IsOutput", "True")
			}
			writeTypeSpecifier(x, p.DataType)
			x.end("Element")
			x.end("Entry")
		}
		x.end("Relationship")
	}

	if r.Kind != parser.RoutineProcedure && r.Returns != "" && !strings.EqualFold(r.Returns, "table") {
		x.start("Relationship", "Name", "Type")
		x.start("Entry")
		x.start("Element", "Type", "SqlTypeSpecifier")
		x.builtinRelationship("Type", "["+strings.ToLower(r.Returns)+"]")
		x.end("Element")
		x.end("Entry")
		x.end("Relationship")
	}

	x.schemaRelationship(r.Name.Schema)
	x.end("Element")
}

func writeTrigger(x *xmlWriter, tr *parser.CreateTrigger, deps []resolve.Dependency) {
	x.start("Element", "Type", "SqlDmlTrigger", "Name", tr.Name.String())
	x.property("IsAnsiNullsOn", "True")
	x.property("IsQuotedIdentifierOn", "True")
	x.scriptProperty("BodyScript", tr.Body)
	x.relationship("Parent", tr.Table.String())
	x.relationship("BodyDependencies", depRefs(deps)...)
	x.schemaRelationship(tr.Name.Schema)
	x.end("Element")
}

func writeIndex(x *xmlWriter, ix *parser.CreateIndex) {
	tableName := ix.Table.String()
	x.start("Element", "Type", "SqlIndex", "Name", tableName+".["+ix.Name+"]")
	if ix.Unique {
		x.property("IsUnique", "True")
	}
	if ix.Clustered {
		x.property("IsClustered", "True")
	}
	x.relationship("IndexedObject", tableName)
	x.relationship("ColumnSpecifications", columnRefs(tableName, ix.Columns)...)
	x.end("Element")
}

func writeTableType(x *xmlWriter, tt *parser.CreateTableType) {
	fullName := tt.Name.String()
	x.start("Element", "Type", "SqlTableType", "Name", fullName)
	x.schemaRelationship(tt.Name.Schema)

	if len(tt.Columns) > 0 {
		x.start("Relationship", "Name", "Columns")
		for _, col := range tt.Columns {
			writeTableTypeColumn(x, fullName, col)
		}
		x.end("Relationship")
	}

	var constraints, indexes []parser.ConstraintDef
	for _, c := range tt.Constraints {
		if c.Kind == parser.ConstraintIndex {
			indexes = append(indexes, c)
		} else {
			constraints = append(constraints, c)
		}
	}

	if len(constraints) > 0 {
		x.start("Relationship", "Name", "Constraints")
		for _, c := range constraints {
			writeTableTypeConstraint(x, fullName, c)
		}
		x.end("Relationship")
	}
	if len(indexes) > 0 {
		x.start("Relationship", "Name", "Indexes")
		for _, c := range indexes {
			writeTableTypeIndex(x, fullName, c)
		}
		x.end("Relationship")
	}

	x.end("Element")
}

// writeTableTypeColumn renders one table type column. Table types use
// SqlTableTypeColumn where tables use SqlSimpleColumn.
func writeTableTypeColumn(x *xmlWriter, typeName string, col parser.ColumnDef) {
	x.start("Entry")
	x.start("Element", "Type", "SqlTableTypeColumn", "Name", typeName+".["+col.Name+"]")
	if col.NotNull {
		x.property("IsNullable", "False")
	}
	if col.Identity {
		x.property("IsIdentity", "True")
	}
	writeTypeSpecifier(x, col.DataType)
	x.end("Element")
	x.end("Entry")
}

func tableTypeConstraintName(kind parser.ConstraintKind) string {
	switch kind {
	case parser.ConstraintPrimaryKey:
		return "SqlTableTypePrimaryKeyConstraint"
	case parser.ConstraintUnique:
		return "SqlTableTypeUniqueConstraint"
	case parser.ConstraintCheck:
		return "SqlTableTypeCheckConstraint"
	default:
		return "SqlTableTypeDefaultConstraint"
	}
}

// writeTableTypeConstraint renders an anonymous constraint entry inside the
// type's Constraints relationship.
func writeTableTypeConstraint(x *xmlWriter, typeName string, c parser.ConstraintDef) {
	x.start("Entry")
	x.start("Element", "Type", tableTypeConstraintName(c.Kind))

	switch c.Kind {
	case parser.ConstraintPrimaryKey, parser.ConstraintUnique:
		x.relationship("ColumnSpecifications", columnRefs(typeName, c.Columns)...)
	case parser.ConstraintCheck:
		x.scriptProperty("CheckExpressionScript", c.Expr)
	case parser.ConstraintDefault:
		x.scriptProperty("DefaultExpressionScript", c.Expr)
		x.relationship("ForColumn", columnRefs(typeName, c.Columns)...)
	}

	x.end("Element")
	x.end("Entry")
}

// writeTableTypeIndex renders an inline INDEX item of a table type.
func writeTableTypeIndex(x *xmlWriter, typeName string, c parser.ConstraintDef) {
	x.start("Entry")
	x.start("Element", "Type", "SqlTableTypeIndex", "Name", typeName+".["+c.Name+"]")
	if c.Unique {
		x.property("IsUnique", "True")
	}
	if c.Clustered {
		x.property("IsClustered", "True")
	}
	x.relationship("ColumnSpecifications", columnRefs(typeName, c.Columns)...)
	x.end("Element")
	x.end("Entry")
}

func writeExtendedProperty(x *xmlWriter, ep *parser.ExtendedProperty) {
	writePropertyElement(x, ep.HostName(), ep.Name, ep.Value)
}

// writePropertyElement renders one SqlExtendedProperty element. The value
// is wrapped as an N'...' literal with embedded quotes doubled, matching
// how SQL Server scripts the property back out.
func writePropertyElement(x *xmlWriter, host, property, value string) {
	x.start("Element", "Type", "SqlExtendedProperty", "Name", host+".["+property+"]")
	escaped := strings.ReplaceAll(value, "'", "''")
	x.scriptProperty("Value", "N'"+escaped+"'")
	x.relationship("Host", host)
	x.end("Element")
}

func writePermission(x *xmlWriter, ps *parser.PermissionStatement) {
	x.start("Element", "Type", "SqlPermissionStatement")
	x.property("PermissionAction", ps.Action.String())
	x.property("Permission", strings.Join(ps.Permissions, ", "))
	if ps.WithGrantOption {
		x.property("WithGrantOption", "True")
	}
	x.relationship("Grantee", "["+ps.Principal+"]")
	switch {
	case ps.TargetSchema != "":
		x.relationship("SecuredObject", "["+ps.TargetSchema+"]")
	case ps.Target.Name != "":
		x.relationship("SecuredObject", ps.Target.String())
	}
	x.end("Element")
}

func writeSynonym(x *xmlWriter, s *parser.CreateSynonym) {
	x.start("Element", "Type", "SqlSynonym", "Name", s.Name.String())
	x.scriptProperty("ForObjectScript", s.Target)
	x.schemaRelationship(s.Name.Schema)
	x.end("Element")
}

func writeSequence(x *xmlWriter, s *parser.CreateSequence) {
	x.start("Element", "Type", "SqlSequence", "Name", s.Name.String())
	if s.Start != "" {
		x.property("StartValue", s.Start)
	}
	if s.Increment != "" {
		x.property("IncrementValue", s.Increment)
	}
	if s.DataType != "" {
		writeTypeSpecifier(x, s.DataType)
	}
	x.schemaRelationship(s.Name.Schema)
	x.end("Element")
}
