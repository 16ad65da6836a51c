package resolve

// nonColumnWords holds reserved words, type names, and built-in function
// names that are never treated as bare-column candidates. The set is
// deliberately permissive: words like ID, ACTION, TIMESTAMP, TEXT, DATE and
// TIME are excluded because real schemas use them as column names all the
// time. A bracketed occurrence of a listed word can still resolve as a
// column, but only when the Column Registry confirms it exists on a table in
// scope.
var nonColumnWords = map[string]struct{}{
	// statement and clause keywords
	"select": {}, "from": {}, "where": {}, "and": {}, "or": {}, "not": {},
	"null": {}, "is": {}, "in": {}, "as": {}, "on": {}, "join": {},
	"left": {}, "right": {}, "inner": {}, "outer": {}, "cross": {},
	"full": {}, "insert": {}, "into": {}, "values": {}, "update": {},
	"set": {}, "delete": {}, "create": {}, "alter": {}, "drop": {},
	"table": {}, "view": {}, "index": {}, "procedure": {}, "function": {},
	"trigger": {}, "begin": {}, "end": {}, "if": {}, "else": {},
	"while": {}, "return": {}, "declare": {}, "primary": {}, "key": {},
	"foreign": {}, "references": {}, "unique": {}, "check": {},
	"default": {}, "constraint": {}, "identity": {}, "nocount": {},
	"case": {}, "when": {}, "then": {}, "exec": {}, "execute": {},
	"go": {}, "use": {}, "database": {}, "schema": {}, "grant": {},
	"revoke": {}, "deny": {}, "order": {}, "by": {}, "group": {},
	"having": {}, "distinct": {}, "top": {}, "offset": {}, "fetch": {},
	"next": {}, "rows": {}, "only": {}, "union": {}, "all": {},
	"except": {}, "intersect": {}, "exists": {}, "any": {}, "some": {},
	"like": {}, "between": {}, "asc": {}, "desc": {}, "clustered": {},
	"nonclustered": {}, "output": {}, "option": {}, "for": {}, "path": {},
	"with": {}, "apply": {}, "over": {}, "partition": {},
	"merge": {}, "matched": {}, "using": {}, "pivot": {}, "unpivot": {},
	"nolock": {}, "readonly": {}, "percent": {}, "ties": {},

	// core data types rarely used as column names
	"int": {}, "integer": {}, "varchar": {}, "nvarchar": {}, "char": {},
	"nchar": {}, "bit": {}, "tinyint": {}, "smallint": {}, "bigint": {},
	"decimal": {}, "numeric": {}, "float": {}, "real": {}, "money": {},
	"smallmoney": {}, "datetime": {}, "datetime2": {}, "smalldatetime": {},
	"datetimeoffset": {}, "uniqueidentifier": {}, "binary": {},
	"varbinary": {}, "xml": {}, "sql_variant": {}, "rowversion": {},
	"geography": {}, "geometry": {}, "hierarchyid": {}, "ntext": {},

	// built-in functions commonly written without qualification
	"count": {}, "sum": {}, "avg": {}, "min": {}, "max": {},
	"isnull": {}, "coalesce": {}, "cast": {}, "convert": {},
	"scope_identity": {}, "stuff": {}, "string_agg": {}, "concat": {},
	"len": {}, "charindex": {}, "substring": {}, "replace": {},
	"ltrim": {}, "rtrim": {}, "trim": {}, "upper": {}, "lower": {},
	"getdate": {}, "getutcdate": {}, "sysdatetime": {},
	"sysutcdatetime": {}, "dateadd": {}, "datediff": {}, "datename": {},
	"datepart": {}, "year": {}, "month": {}, "day": {}, "hour": {},
	"minute": {}, "second": {}, "iif": {}, "choose": {}, "format": {},
	"newid": {}, "newsequentialid": {}, "abs": {}, "round": {},
	"ceiling": {}, "floor": {}, "nullif": {},

	// window functions
	"row_number": {}, "rank": {}, "dense_rank": {}, "ntile": {},
	"lag": {}, "lead": {}, "first_value": {}, "last_value": {},

	// TRY_ and JSON_ families
	"try_cast": {}, "try_convert": {}, "try_parse": {},
	"json_value": {}, "json_query": {}, "json_modify": {}, "openjson": {},
}

// isNonColumnWord reports whether a lowercase word is filtered from
// bare-column candidacy.
func isNonColumnWord(lower string) bool {
	_, ok := nonColumnWords[lower]
	return ok
}
