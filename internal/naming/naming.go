// Package naming derives model, file and property identifiers from raw
// database identifiers.
package naming

import (
	"sort"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
)

// Singular returns the singular form of a table or model name.
func Singular(s string) string { return inflection.Singular(s) }

// Plural returns the plural form of a table or model name.
func Plural(s string) string { return inflection.Plural(s) }

// Camel converts s to lowerCamelCase.
func Camel(s string) string { return strcase.ToLowerCamel(s) }

// Pascal converts s to PascalCase.
func Pascal(s string) string { return strcase.ToCamel(s) }

// Snake converts s to snake_case.
func Snake(s string) string { return strcase.ToSnake(s) }

// ModelName returns the entity name for a table: the singular table name in
// PascalCase. "blog_posts" becomes "BlogPost".
func ModelName(table string) string {
	return Pascal(Singular(table))
}

// FileName returns the source file stem for a model: "BlogPost" becomes
// "blog_post".
func FileName(model string) string {
	return Snake(model)
}

// TableName returns the table an ORM would assume for a model when none is
// configured: the snake_case plural of the model name.
func TableName(model string) string {
	return Plural(Snake(model))
}

// PivotTableName returns the conventional join table for two models: both
// model names sorted, joined with "_" and snake cased.
func PivotTableName(a, b string) string {
	names := []string{a, b}
	sort.Strings(names)
	return Snake(strings.Join(names, "_"))
}

// Unique returns base if it is not yet taken, otherwise base followed by the
// first free counter ("books", "books1", "books2", ...).
func Unique(taken map[string]bool, base string) string {
	name := base
	for counter := 1; taken[name]; counter++ {
		name = base + strconv.Itoa(counter)
	}
	return name
}
