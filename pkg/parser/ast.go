package parser

import "strings"

// ObjectName is a schema-qualified object name.
type ObjectName struct {
	Schema string
	Name   string
}

// String returns the bracketed two-part form: [schema].[name].
func (n ObjectName) String() string {
	return "[" + n.Schema + "].[" + n.Name + "]"
}

// Key returns the case-folded lookup form of the name.
func (n ObjectName) Key() string {
	return strings.ToLower(n.Schema) + "." + strings.ToLower(n.Name)
}

// Statement is a parsed DDL statement.
type Statement interface {
	stmtNode()
}

// Described is embedded by statements that can carry a leading
// documentation comment: the comment run sitting directly above the
// statement, delimiters stripped.
type Described struct {
	Description string
}

func (d *Described) setDescription(text string) { d.Description = text }

// Doc returns the statement's documentation comment, if any.
func (d *Described) Doc() string { return d.Description }

// DocOf returns the documentation comment attached to a statement, or ""
// for statements that carry none.
func DocOf(s Statement) string {
	if d, ok := s.(interface{ Doc() string }); ok {
		return d.Doc()
	}
	return ""
}

// ColumnDef is a column definition inside CREATE TABLE.
type ColumnDef struct {
	Name     string
	DataType string // normalized type text, e.g. "nvarchar(50)"
	NotNull  bool
	Identity bool
	Default  string // default expression text, if any
	Computed string // computed column expression text, if any
}

// ConstraintKind classifies table constraints.
type ConstraintKind int

// Constraint kinds.
const (
	ConstraintPrimaryKey ConstraintKind = iota
	ConstraintForeignKey
	ConstraintUnique
	ConstraintCheck
	ConstraintDefault
	ConstraintIndex // inline INDEX item, table types only
)

// ConstraintDef is a named or anonymous table constraint.
type ConstraintDef struct {
	Name       string
	Kind       ConstraintKind
	Columns    []string
	RefTable   ObjectName // foreign key target
	RefColumns []string
	Expr       string // check/default expression text
	Unique     bool   // inline index modifier
	Clustered  bool   // inline index modifier
}

// CreateTable is a parsed CREATE TABLE statement.
type CreateTable struct {
	Described
	Name        ObjectName
	Columns     []ColumnDef
	Constraints []ConstraintDef
}

func (*CreateTable) stmtNode() {}

// CreateTableType is a parsed CREATE TYPE ... AS TABLE statement. Columns
// and constraints take the same forms as CREATE TABLE.
type CreateTableType struct {
	Described
	Name        ObjectName
	Columns     []ColumnDef
	Constraints []ConstraintDef
}

func (*CreateTableType) stmtNode() {}

// CreateView is a parsed CREATE VIEW statement. Body is the raw SELECT
// text following AS; reference resolution works on that text.
type CreateView struct {
	Described
	Name ObjectName
	Body string
}

func (*CreateView) stmtNode() {}

// RoutineKind distinguishes procedures from functions.
type RoutineKind int

// Routine kinds.
const (
	RoutineProcedure RoutineKind = iota
	RoutineScalarFunction
	RoutineTableFunction
)

// Param is a routine parameter. Name keeps its @ prefix.
type Param struct {
	Name     string
	DataType string
	Output   bool
}

// CreateRoutine is a parsed CREATE PROCEDURE or CREATE FUNCTION statement.
type CreateRoutine struct {
	Described
	Name    ObjectName
	Kind    RoutineKind
	Params  []Param
	Returns string // function return type text, empty for procedures
	Body    string // raw body text following AS
}

func (*CreateRoutine) stmtNode() {}

// CreateTrigger is a parsed CREATE TRIGGER statement.
type CreateTrigger struct {
	Described
	Name  ObjectName
	Table ObjectName
	Body  string
}

func (*CreateTrigger) stmtNode() {}

// CreateIndex is a parsed CREATE INDEX statement.
type CreateIndex struct {
	Name      string
	Table     ObjectName
	Columns   []string
	Unique    bool
	Clustered bool
}

func (*CreateIndex) stmtNode() {}

// CreateSchema is a parsed CREATE SCHEMA statement.
type CreateSchema struct {
	Name string
}

func (*CreateSchema) stmtNode() {}

// CreateSynonym is a parsed CREATE SYNONYM statement. Target keeps its raw
// (possibly three- or four-part) text since synonyms may cross databases.
type CreateSynonym struct {
	Name   ObjectName
	Target string
}

func (*CreateSynonym) stmtNode() {}

// CreateSequence is a parsed CREATE SEQUENCE statement.
type CreateSequence struct {
	Name      ObjectName
	DataType  string
	Start     string
	Increment string
}

func (*CreateSequence) stmtNode() {}

// ExtendedProperty is a parsed sp_addextendedproperty call. Level names
// follow the procedure's level0/level1/level2 addressing: schema, object,
// then column or other sub-object.
type ExtendedProperty struct {
	Name       string // property name, e.g. MS_Description
	Value      string
	Schema     string // level0name, defaults to dbo
	Level1Type string // TABLE, VIEW, PROCEDURE, ...
	Level1Name string
	Level2Type string // COLUMN, INDEX, ...
	Level2Name string
}

func (*ExtendedProperty) stmtNode() {}

// HostName returns the bracketed path of the object the property extends:
// [schema], [schema].[object], or [schema].[object].[column].
func (ep *ExtendedProperty) HostName() string {
	ref := "[" + ep.Schema + "]"
	if ep.Level1Name != "" {
		ref += ".[" + ep.Level1Name + "]"
	}
	if ep.Level2Name != "" {
		ref += ".[" + ep.Level2Name + "]"
	}
	return ref
}

// PermissionAction classifies GRANT, DENY, and REVOKE.
type PermissionAction int

// Permission actions.
const (
	PermissionGrant PermissionAction = iota
	PermissionDeny
	PermissionRevoke
)

// String returns the SQL keyword for the action.
func (a PermissionAction) String() string {
	switch a {
	case PermissionDeny:
		return "DENY"
	case PermissionRevoke:
		return "REVOKE"
	default:
		return "GRANT"
	}
}

// PermissionStatement is a parsed GRANT, DENY, or REVOKE statement.
// Exactly one of Target and TargetSchema is set for scoped permissions;
// both are zero for database-level ones.
type PermissionStatement struct {
	Action          PermissionAction
	Permissions     []string   // SELECT, EXECUTE, ...
	Target          ObjectName // ON [schema].[object]
	TargetSchema    string     // ON SCHEMA::name
	Principal       string     // TO / FROM principal
	WithGrantOption bool
	Cascade         bool
}

func (*PermissionStatement) stmtNode() {}
