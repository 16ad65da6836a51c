// Package resolve implements body reference resolution: given the raw text
// of a view, procedure, function, or trigger body, it determines which
// tables, columns, and routines the body depends on.
//
// Resolution is scope aware. A two-pass structural scan builds a tree of
// lexical scopes (CTEs, derived tables, APPLY subqueries, nested
// subqueries), each with its own alias bindings, and identifier chains are
// resolved against the innermost scope containing their position. Unqualified
// column names are disambiguated against the Column Registry built from the
// schema model.
package resolve

import "strings"

// TableKey is the case-folded "schema.name" lookup key for a table.
type TableKey string

// KeyFor builds the registry key for a schema-qualified table name.
func KeyFor(schema, name string) TableKey {
	return TableKey(strings.ToLower(schema) + "." + strings.ToLower(name))
}

// tableEntry holds one table's columns. Schema and Name keep the casing
// from the defining DDL for output.
type tableEntry struct {
	Schema string
	Name   string
	cols   map[string]string // lower -> original casing
}

// Registry is the immutable, case-insensitive index of table columns.
// It is built once from the completed schema model before any body is
// resolved, then shared read-only across concurrent resolutions.
type Registry struct {
	tables  map[TableKey]*tableEntry
	schemas map[string]struct{} // lower schema names
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tables:  make(map[TableKey]*tableEntry),
		schemas: make(map[string]struct{}),
	}
}

// AddTable registers a table and its column names. Registering the same
// table twice replaces the previous column set: the last definition wins,
// matching how column redefinition is handled upstream.
func (r *Registry) AddTable(schema, name string, columns []string) {
	entry := &tableEntry{
		Schema: schema,
		Name:   name,
		cols:   make(map[string]string, len(columns)),
	}
	for _, col := range columns {
		entry.cols[strings.ToLower(col)] = col
	}
	r.tables[KeyFor(schema, name)] = entry
	r.schemas[strings.ToLower(schema)] = struct{}{}
}

// AddSchema registers a schema name without any table.
func (r *Registry) AddSchema(schema string) {
	r.schemas[strings.ToLower(schema)] = struct{}{}
}

// HasTable reports whether a table with the given key exists.
func (r *Registry) HasTable(key TableKey) bool {
	_, ok := r.tables[key]
	return ok
}

// HasSchema reports whether the schema name is known, case-insensitively.
func (r *Registry) HasSchema(name string) bool {
	_, ok := r.schemas[strings.ToLower(name)]
	return ok
}

// HasColumn reports whether the table has the column, case-insensitively.
func (r *Registry) HasColumn(key TableKey, column string) bool {
	entry, ok := r.tables[key]
	if !ok {
		return false
	}
	_, ok = entry.cols[strings.ToLower(column)]
	return ok
}

// TablesWithColumn returns the subset of candidate keys whose table has the
// column, preserving candidate order.
func (r *Registry) TablesWithColumn(candidates []TableKey, column string) []TableKey {
	lower := strings.ToLower(column)
	var matches []TableKey
	for _, key := range candidates {
		entry, ok := r.tables[key]
		if !ok {
			continue
		}
		if _, ok := entry.cols[lower]; ok {
			matches = append(matches, key)
		}
	}
	return matches
}

// TableName returns the original-cased schema and name for a key.
func (r *Registry) TableName(key TableKey) (schema, name string, ok bool) {
	entry, found := r.tables[key]
	if !found {
		return "", "", false
	}
	return entry.Schema, entry.Name, true
}

// ColumnName returns the original-cased column name as defined in DDL.
// Falls back to the given casing when the column is unknown.
func (r *Registry) ColumnName(key TableKey, column string) string {
	if entry, ok := r.tables[key]; ok {
		if orig, ok := entry.cols[strings.ToLower(column)]; ok {
			return orig
		}
	}
	return column
}

// Len returns the number of registered tables.
func (r *Registry) Len() int {
	return len(r.tables)
}
