// Package classify derives per-column facts used by relationship inference
// and model rendering.
package classify

import (
	"strings"

	"github.com/faucetdb/modelgen/internal/catalog"
	"github.com/faucetdb/modelgen/internal/naming"
)

// IdentifierSuffix marks identifier-style foreign key columns.
const IdentifierSuffix = "_id"

// Column is a catalog column with its derived facts.
type Column struct {
	catalog.Column

	Property               string       `json:"property"`
	Semantic               SemanticType `json:"semantic_type"`
	TSType                 string       `json:"ts_type"`
	IsArray                bool         `json:"is_array,omitempty"`
	IsDateTime             bool         `json:"is_date_time,omitempty"`
	IsIdentifierForeignKey bool         `json:"is_identifier_foreign_key,omitempty"`
}

// IsIdentifierForeignKey reports whether c takes part in relationship
// inference: its name ends in IdentifierSuffix (in any case, for databases
// that fold identifiers to upper case) and it has a complete foreign-key
// target. Foreign keys named any other way are ignored.
func IsIdentifierForeignKey(c catalog.Column) bool {
	return hasIdentifierSuffix(c.Name) && len(c.Name) > len(IdentifierSuffix) && c.HasForeignKey()
}

// TrimIdentifier strips IdentifierSuffix, in any case, from a column name.
func TrimIdentifier(name string) string {
	if hasIdentifierSuffix(name) {
		return name[:len(name)-len(IdentifierSuffix)]
	}
	return name
}

func hasIdentifierSuffix(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), IdentifierSuffix)
}

// IsDateTime reports whether a raw database type holds a date or time value.
func IsDateTime(dataType string) bool {
	lower := strings.ToLower(strings.TrimSpace(dataType))
	if strings.Contains(lower, "timestamp") || lower == "date" {
		return true
	}
	sem, _ := Semantic(dataType)
	return sem == Date
}

// Classify derives the facts for a single column.
func Classify(c catalog.Column) Column {
	sem, isArray := Semantic(c.DataType)
	return Column{
		Column:                 c,
		Property:               naming.Camel(c.Name),
		Semantic:               sem,
		TSType:                 TSType(sem, isArray),
		IsArray:                isArray,
		IsDateTime:             IsDateTime(c.DataType),
		IsIdentifierForeignKey: IsIdentifierForeignKey(c),
	}
}

// Table classifies every column of t in order.
func Table(t catalog.Table) []Column {
	cols := make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = Classify(c)
	}
	return cols
}
