// Package model holds the schema model: the typed view of every object the
// project's DDL defines, assembled before reference resolution runs.
package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sqlforge/sqlforge/pkg/parser"
	"github.com/sqlforge/sqlforge/pkg/resolve"
)

// ObjectKind classifies schema objects for emission ordering.
type ObjectKind int

// Object kinds in emission order. Table types precede tables because
// routines and tables may reference them; extended properties and
// permissions trail everything they can attach to.
const (
	KindSchema ObjectKind = iota
	KindTableType
	KindTable
	KindView
	KindProcedure
	KindScalarFunction
	KindTableFunction
	KindTrigger
	KindIndex
	KindSynonym
	KindSequence
	KindExtendedProperty
	KindPermission
)

// String returns the SQL Server type name for the kind.
func (k ObjectKind) String() string {
	switch k {
	case KindSchema:
		return "SqlSchema"
	case KindTableType:
		return "SqlTableType"
	case KindTable:
		return "SqlTable"
	case KindView:
		return "SqlView"
	case KindProcedure:
		return "SqlProcedure"
	case KindScalarFunction:
		return "SqlScalarFunction"
	case KindTableFunction:
		return "SqlInlineTableValuedFunction"
	case KindTrigger:
		return "SqlDmlTrigger"
	case KindIndex:
		return "SqlIndex"
	case KindSynonym:
		return "SqlSynonym"
	case KindSequence:
		return "SqlSequence"
	case KindExtendedProperty:
		return "SqlExtendedProperty"
	case KindPermission:
		return "SqlPermissionStatement"
	default:
		return fmt.Sprintf("ObjectKind(%d)", int(k))
	}
}

// Object is one schema object plus its provenance and parsed statement.
// Body is non-empty for views, routines, and triggers; those are the objects
// the reference resolver visits. Description carries the leading doc comment
// of the defining statement, when one exists.
type Object struct {
	Kind        ObjectKind
	Name        parser.ObjectName
	SourceFile  string
	Statement   parser.Statement
	Body        string
	Description string
}

// Key returns the case-folded identity of the object.
func (o *Object) Key() string {
	return o.Name.Key()
}

// Model is the assembled schema model for one project.
type Model struct {
	objects map[string]*Object // key -> object, last definition wins
	order   []string           // insertion order for stable iteration
	schemas map[string]string  // lower -> original casing
}

// New creates an empty model. The default dbo schema is always present.
func New() *Model {
	return &Model{
		objects: make(map[string]*Object),
		schemas: map[string]string{"dbo": "dbo"},
	}
}

// Add incorporates a parsed statement. Redefining an object replaces the
// previous definition; indexes attach to their table's identity space under
// a composite key so they never collide with objects.
func (m *Model) Add(stmt parser.Statement, sourceFile string) error {
	obj, err := objectFor(stmt)
	if err != nil {
		return err
	}
	if obj == nil {
		return nil
	}
	obj.SourceFile = sourceFile
	obj.Description = parser.DocOf(stmt)

	m.schemas[strings.ToLower(obj.Name.Schema)] = obj.Name.Schema

	key := objectStoreKey(obj)
	if _, exists := m.objects[key]; !exists {
		m.order = append(m.order, key)
	}
	m.objects[key] = obj
	return nil
}

// objectStoreKey keeps identity spaces apart: indexes live under their
// table's schema, extended properties under their host, and permissions
// under a composite of their own fields.
func objectStoreKey(obj *Object) string {
	switch obj.Kind {
	case KindIndex:
		return "index:" + obj.Key()
	case KindExtendedProperty:
		return "prop:" + obj.Key()
	case KindPermission:
		return "perm:" + obj.Key()
	default:
		return obj.Key()
	}
}

// objectFor maps a parsed statement to a model object.
func objectFor(stmt parser.Statement) (*Object, error) {
	switch s := stmt.(type) {
	case *parser.CreateTable:
		return &Object{Kind: KindTable, Name: s.Name, Statement: s}, nil
	case *parser.CreateView:
		return &Object{Kind: KindView, Name: s.Name, Statement: s, Body: s.Body}, nil
	case *parser.CreateRoutine:
		kind := KindProcedure
		switch s.Kind {
		case parser.RoutineScalarFunction:
			kind = KindScalarFunction
		case parser.RoutineTableFunction:
			kind = KindTableFunction
		}
		return &Object{Kind: kind, Name: s.Name, Statement: s, Body: s.Body}, nil
	case *parser.CreateTrigger:
		return &Object{Kind: KindTrigger, Name: s.Name, Statement: s, Body: s.Body}, nil
	case *parser.CreateIndex:
		name := parser.ObjectName{Schema: s.Table.Schema, Name: s.Name}
		return &Object{Kind: KindIndex, Name: name, Statement: s}, nil
	case *parser.CreateSchema:
		name := parser.ObjectName{Schema: s.Name, Name: s.Name}
		return &Object{Kind: KindSchema, Name: name, Statement: s}, nil
	case *parser.CreateSynonym:
		return &Object{Kind: KindSynonym, Name: s.Name, Statement: s}, nil
	case *parser.CreateSequence:
		return &Object{Kind: KindSequence, Name: s.Name, Statement: s}, nil
	case *parser.CreateTableType:
		return &Object{Kind: KindTableType, Name: s.Name, Statement: s}, nil
	case *parser.ExtendedProperty:
		name := parser.ObjectName{Schema: s.Schema, Name: propertyPath(s)}
		return &Object{Kind: KindExtendedProperty, Name: name, Statement: s}, nil
	case *parser.PermissionStatement:
		return &Object{Kind: KindPermission, Name: permissionName(s), Statement: s}, nil
	default:
		return nil, fmt.Errorf("unsupported statement type %T", stmt)
	}
}

// propertyPath gives an extended property a name unique among properties:
// the host path below the schema plus the property name.
func propertyPath(ep *parser.ExtendedProperty) string {
	parts := make([]string, 0, 3)
	if ep.Level1Name != "" {
		parts = append(parts, ep.Level1Name)
	}
	if ep.Level2Name != "" {
		parts = append(parts, ep.Level2Name)
	}
	parts = append(parts, ep.Name)
	return strings.Join(parts, ".")
}

// permissionName derives a stable identity for a permission statement, so
// an exact restatement collapses while distinct grants coexist.
func permissionName(ps *parser.PermissionStatement) parser.ObjectName {
	schema := ps.Target.Schema
	if schema == "" {
		schema = ps.TargetSchema
	}
	if schema == "" {
		schema = parser.DefaultSchema
	}
	name := strings.Join([]string{
		ps.Action.String(),
		strings.Join(ps.Permissions, "_"),
		ps.Target.Name,
		ps.Principal,
	}, ".")
	return parser.ObjectName{Schema: schema, Name: name}
}

// Objects returns all objects ordered by (kind, schema, name) for
// deterministic emission.
func (m *Model) Objects() []*Object {
	out := make([]*Object, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, m.objects[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

// Lookup finds an object by case-folded key.
func (m *Model) Lookup(schema, name string) (*Object, bool) {
	obj, ok := m.objects[strings.ToLower(schema)+"."+strings.ToLower(name)]
	return obj, ok
}

// Tables returns the table objects only.
func (m *Model) Tables() []*parser.CreateTable {
	var tables []*parser.CreateTable
	for _, obj := range m.Objects() {
		if t, ok := obj.Statement.(*parser.CreateTable); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// Bodied returns the objects whose bodies go through reference resolution:
// views, procedures, functions, and triggers, in deterministic order.
func (m *Model) Bodied() []*Object {
	var out []*Object
	for _, obj := range m.Objects() {
		if obj.Body != "" {
			out = append(out, obj)
		}
	}
	return out
}

// Schemas returns all schema names in sorted order, original casing.
func (m *Model) Schemas() []string {
	out := make([]string, 0, len(m.schemas))
	for _, orig := range m.schemas {
		out = append(out, orig)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of objects in the model.
func (m *Model) Len() int {
	return len(m.objects)
}

// BuildRegistry derives the Column Registry from the model's tables. The
// registry must be complete before any body is resolved, so callers build it
// exactly once after the last Add.
func (m *Model) BuildRegistry() *resolve.Registry {
	reg := resolve.NewRegistry()
	for _, schema := range m.Schemas() {
		reg.AddSchema(schema)
	}
	for _, tbl := range m.Tables() {
		cols := make([]string, 0, len(tbl.Columns))
		for _, c := range tbl.Columns {
			cols = append(cols, c.Name)
		}
		reg.AddTable(tbl.Name.Schema, tbl.Name.Name, cols)
	}
	return reg
}
