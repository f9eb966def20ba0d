package classify

import "strings"

// SemanticType is the language-neutral category of a database type.
type SemanticType string

const (
	String  SemanticType = "string"
	Number  SemanticType = "number"
	Date    SemanticType = "date"
	Binary  SemanticType = "binary"
	Boolean SemanticType = "boolean"
	JSON    SemanticType = "json"
	Unknown SemanticType = "unknown"
)

// MySQL and PostgreSQL type names, plus the aliases the connectors report
// (udt names, SQL Server and SQLite spellings).
var dbTypes = map[string]SemanticType{
	"CHAR": String, "VARCHAR": String, "TEXT": String, "TINYTEXT": String,
	"MEDIUMTEXT": String, "LONGTEXT": String, "ENUM": String, "SET": String,
	"CHARACTER": String, "CHARACTER VARYING": String, "UUID": String,
	"NVARCHAR": String, "NCHAR": String, "NTEXT": String, "CITEXT": String,
	"BPCHAR": String, "VARCHAR2": String, "NVARCHAR2": String, "CLOB": String,
	"UNIQUEIDENTIFIER": String, "STRING": String,

	"INTEGER": Number, "INT": Number, "SMALLINT": Number, "TINYINT": Number,
	"MEDIUMINT": Number, "BIGINT": Number, "DECIMAL": Number, "NUMERIC": Number,
	"FLOAT": Number, "DOUBLE": Number, "INT2": Number, "INT4": Number,
	"INT8": Number, "REAL": Number, "DOUBLE PRECISION": Number, "FLOAT4": Number,
	"FLOAT8": Number, "SMALLSERIAL": Number, "SERIAL2": Number, "SERIAL": Number,
	"SERIAL4": Number, "BIGSERIAL": Number, "SERIAL8": Number, "NUMBER": Number,
	"MONEY": Number,

	"DATE": Date, "TIME": Date, "DATETIME": Date, "TIMESTAMP": Date,
	"YEAR": Date, "TIMESTAMPTZ": Date, "TIMESTAMP WITH TIME ZONE": Date,
	"TIMESTAMP WITHOUT TIME ZONE": Date, "TIMETZ": Date,
	"TIME WITH TIME ZONE": Date, "TIME WITHOUT TIME ZONE": Date,
	"DATETIME2": Date, "DATETIMEOFFSET": Date, "SMALLDATETIME": Date,
	"TIMESTAMP_NTZ": Date, "TIMESTAMP_LTZ": Date, "TIMESTAMP_TZ": Date,

	"BINARY": Binary, "VARBINARY": Binary, "BYTEA": Binary, "BLOB": Binary,
	"TINYBLOB": Binary, "MEDIUMBLOB": Binary, "LONGBLOB": Binary, "IMAGE": Binary,

	"BOOL": Boolean, "BOOLEAN": Boolean, "BIT": Boolean,

	"JSON": JSON, "JSONB": JSON, "VARIANT": JSON, "OBJECT": JSON,
}

// Semantic looks up the semantic type of a raw database type. Lookup is case
// insensitive, ignores a parenthesized length ("varchar(255)") and treats a
// trailing "[]" as an array of the element type.
func Semantic(dataType string) (SemanticType, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(dataType))
	isArray := strings.HasSuffix(normalized, "[]")
	normalized = strings.TrimSpace(strings.TrimSuffix(normalized, "[]"))
	if idx := strings.IndexByte(normalized, '('); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	normalized = strings.TrimSpace(strings.TrimSuffix(normalized, " UNSIGNED"))

	if sem, ok := dbTypes[normalized]; ok {
		return sem, isArray
	}
	return Unknown, isArray
}

// TSType returns the declared TypeScript type for a semantic type. Only
// string and number columns keep their array-ness.
func TSType(sem SemanticType, isArray bool) string {
	switch sem {
	case String:
		if isArray {
			return "string[]"
		}
		return "string"
	case Number:
		if isArray {
			return "number[]"
		}
		return "number"
	case Date:
		return "DateTime"
	case Binary:
		return "Buffer"
	case Boolean:
		return "boolean"
	case JSON:
		return "Record<string, any>"
	}
	return "unknown"
}
