// Package token defines the token types for T-SQL scanning.
//
// The scanner classifies keywords by a fixed table; everything else falls
// out of punctuation rules (brackets, quotes, '@', '.'). Bracketed and
// double-quoted identifiers keep their own token type because resolution
// treats them differently from bare identifiers.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals and identifiers
	IDENT  // unquoted identifier
	BIDENT // [bracketed] or "quoted" identifier
	ATVAR  // @variable or @@builtin
	TEMP   // #temp or ##globaltemp table name
	NUMBER // 123, 45.67, 0x1F, 1e10
	STRING // 'hello', N'hello'

	// Operators and punctuation
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PERCENT   // %
	EQ        // =
	NE        // != or <>
	LT        // <
	GT        // >
	LE        // <=
	GE        // >=
	DOT       // .
	COMMA     // ,
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )

	// Keywords (alphabetical)
	ALL
	AND
	APPLY
	AS
	ASC
	BEGIN
	BETWEEN
	BY
	CASE
	CAST
	CHECK
	CLUSTERED
	CONSTRAINT
	CREATE
	CROSS
	DECLARE
	DEFAULT
	DELETE
	DESC
	DISTINCT
	ELSE
	END
	EXCEPT
	EXEC
	EXECUTE
	EXISTS
	FOR
	FOREIGN
	FROM
	FULL
	FUNCTION
	GROUP
	HAVING
	IDENTITY
	IF
	IN
	INDEX
	INNER
	INSERT
	INTERSECT
	INTO
	IS
	JOIN
	KEY
	LEFT
	LIKE
	MATCHED
	MERGE
	NOT
	NULL
	ON
	OR
	ORDER
	OUTER
	OUTPUT
	OVER
	PARTITION
	PIVOT
	PRIMARY
	PROCEDURE
	REFERENCES
	RETURN
	RETURNS
	RIGHT
	SCHEMA
	SELECT
	SEQUENCE
	SET
	SYNONYM
	TABLE
	THEN
	TOP
	TRIGGER
	UNION
	UNIQUE
	UNPIVOT
	UPDATE
	USING
	VALUES
	VIEW
	WHEN
	WHERE
	WHILE
	WITH
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	BIDENT: "BIDENT",
	ATVAR:  "ATVAR",
	TEMP:   "TEMP",
	NUMBER: "NUMBER",
	STRING: "STRING",

	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	PERCENT:   "%",
	EQ:        "=",
	NE:        "<>",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	DOT:       ".",
	COMMA:     ",",
	SEMICOLON: ";",
	LPAREN:    "(",
	RPAREN:    ")",

	ALL:        "ALL",
	AND:        "AND",
	APPLY:      "APPLY",
	AS:         "AS",
	ASC:        "ASC",
	BEGIN:      "BEGIN",
	BETWEEN:    "BETWEEN",
	BY:         "BY",
	CASE:       "CASE",
	CAST:       "CAST",
	CHECK:      "CHECK",
	CLUSTERED:  "CLUSTERED",
	CONSTRAINT: "CONSTRAINT",
	CREATE:     "CREATE",
	CROSS:      "CROSS",
	DECLARE:    "DECLARE",
	DEFAULT:    "DEFAULT",
	DELETE:     "DELETE",
	DESC:       "DESC",
	DISTINCT:   "DISTINCT",
	ELSE:       "ELSE",
	END:        "END",
	EXCEPT:     "EXCEPT",
	EXEC:       "EXEC",
	EXECUTE:    "EXECUTE",
	EXISTS:     "EXISTS",
	FOR:        "FOR",
	FOREIGN:    "FOREIGN",
	FROM:       "FROM",
	FULL:       "FULL",
	FUNCTION:   "FUNCTION",
	GROUP:      "GROUP",
	HAVING:     "HAVING",
	IDENTITY:   "IDENTITY",
	IF:         "IF",
	IN:         "IN",
	INDEX:      "INDEX",
	INNER:      "INNER",
	INSERT:     "INSERT",
	INTERSECT:  "INTERSECT",
	INTO:       "INTO",
	IS:         "IS",
	JOIN:       "JOIN",
	KEY:        "KEY",
	LEFT:       "LEFT",
	LIKE:       "LIKE",
	MATCHED:    "MATCHED",
	MERGE:      "MERGE",
	NOT:        "NOT",
	NULL:       "NULL",
	ON:         "ON",
	OR:         "OR",
	ORDER:      "ORDER",
	OUTER:      "OUTER",
	OUTPUT:     "OUTPUT",
	OVER:       "OVER",
	PARTITION:  "PARTITION",
	PIVOT:      "PIVOT",
	PRIMARY:    "PRIMARY",
	PROCEDURE:  "PROCEDURE",
	REFERENCES: "REFERENCES",
	RETURN:     "RETURN",
	RETURNS:    "RETURNS",
	RIGHT:      "RIGHT",
	SCHEMA:     "SCHEMA",
	SELECT:     "SELECT",
	SEQUENCE:   "SEQUENCE",
	SET:        "SET",
	SYNONYM:    "SYNONYM",
	TABLE:      "TABLE",
	THEN:       "THEN",
	TOP:        "TOP",
	TRIGGER:    "TRIGGER",
	UNION:      "UNION",
	UNIQUE:     "UNIQUE",
	UNPIVOT:    "UNPIVOT",
	UPDATE:     "UPDATE",
	USING:      "USING",
	VALUES:     "VALUES",
	VIEW:       "VIEW",
	WHEN:       "WHEN",
	WHERE:      "WHERE",
	WHILE:      "WHILE",
	WITH:       "WITH",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"all":        ALL,
	"and":        AND,
	"apply":      APPLY,
	"as":         AS,
	"asc":        ASC,
	"begin":      BEGIN,
	"between":    BETWEEN,
	"by":         BY,
	"case":       CASE,
	"cast":       CAST,
	"check":      CHECK,
	"clustered":  CLUSTERED,
	"constraint": CONSTRAINT,
	"create":     CREATE,
	"cross":      CROSS,
	"declare":    DECLARE,
	"default":    DEFAULT,
	"delete":     DELETE,
	"desc":       DESC,
	"distinct":   DISTINCT,
	"else":       ELSE,
	"end":        END,
	"except":     EXCEPT,
	"exec":       EXEC,
	"execute":    EXECUTE,
	"exists":     EXISTS,
	"for":        FOR,
	"foreign":    FOREIGN,
	"from":       FROM,
	"full":       FULL,
	"function":   FUNCTION,
	"group":      GROUP,
	"having":     HAVING,
	"identity":   IDENTITY,
	"if":         IF,
	"in":         IN,
	"index":      INDEX,
	"inner":      INNER,
	"insert":     INSERT,
	"intersect":  INTERSECT,
	"into":       INTO,
	"is":         IS,
	"join":       JOIN,
	"key":        KEY,
	"left":       LEFT,
	"like":       LIKE,
	"matched":    MATCHED,
	"merge":      MERGE,
	"not":        NOT,
	"null":       NULL,
	"on":         ON,
	"or":         OR,
	"order":      ORDER,
	"outer":      OUTER,
	"output":     OUTPUT,
	"over":       OVER,
	"partition":  PARTITION,
	"pivot":      PIVOT,
	"primary":    PRIMARY,
	"procedure":  PROCEDURE,
	"references": REFERENCES,
	"return":     RETURN,
	"returns":    RETURNS,
	"right":      RIGHT,
	"schema":     SCHEMA,
	"select":     SELECT,
	"sequence":   SEQUENCE,
	"set":        SET,
	"synonym":    SYNONYM,
	"table":      TABLE,
	"then":       THEN,
	"top":        TOP,
	"trigger":    TRIGGER,
	"union":      UNION,
	"unique":     UNIQUE,
	"unpivot":    UNPIVOT,
	"update":     UPDATE,
	"using":      USING,
	"values":     VALUES,
	"view":       VIEW,
	"when":       WHEN,
	"where":      WHERE,
	"while":      WHILE,
	"with":       WITH,
}

// LookupIdent returns the token type for the given lowercase identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= ALL && t <= WITH
}

// IsIdentLike returns true if the token can begin an identifier chain.
func IsIdentLike(t TokenType) bool {
	return t == IDENT || t == BIDENT
}

// Token represents a lexical token with position information.
// End is the byte offset one past the token's raw text, so
// [Pos.Offset, End) spans the token in the source.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
	End     int
}
