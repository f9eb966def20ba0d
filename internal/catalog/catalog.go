// Package catalog holds the by-value schema facts that model generation
// consumes: tables, their ordered columns and each column's foreign-key target.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/faucetdb/modelgen/internal/model"
)

var (
	// ErrNoColumns is reported for a table that has no columns.
	ErrNoColumns = errors.New("table has no columns")
	// ErrMissingField is reported for a column lacking a required field.
	ErrMissingField = errors.New("column is missing a required field")
	// ErrWrongTable is reported for a column whose table_name names another table.
	ErrWrongTable = errors.New("column belongs to another table")
)

// Column is a single column of a catalog table.
type Column struct {
	Name             string `json:"name" yaml:"name"`
	TableName        string `json:"table_name" yaml:"table_name"`
	DataType         string `json:"data_type" yaml:"data_type"`
	IsPrimaryKey     bool   `json:"is_primary_key,omitempty" yaml:"is_primary_key,omitempty"`
	IsNullable       bool   `json:"is_nullable,omitempty" yaml:"is_nullable,omitempty"`
	ForeignKeyTable  string `json:"foreign_key_table,omitempty" yaml:"foreign_key_table,omitempty"`
	ForeignKeyColumn string `json:"foreign_key_column,omitempty" yaml:"foreign_key_column,omitempty"`
}

// HasForeignKey reports whether the column carries a complete foreign-key
// target. A column with only one of the two target fields has none.
func (c Column) HasForeignKey() bool {
	return c.ForeignKeyTable != "" && c.ForeignKeyColumn != ""
}

// Table is a named, ordered list of columns.
type Table struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// Column looks up a column by name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Validate reports every structural problem in the table. The returned error
// wraps ErrNoColumns, ErrMissingField or ErrWrongTable.
func (t Table) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name: %w", ErrMissingField)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q: %w", t.Name, ErrNoColumns)
	}

	var errs []error
	for i, c := range t.Columns {
		switch {
		case c.Name == "":
			errs = append(errs, fmt.Errorf("table %q column %d: name: %w", t.Name, i+1, ErrMissingField))
		case c.TableName == "":
			errs = append(errs, fmt.Errorf("table %q column %q: table_name: %w", t.Name, c.Name, ErrMissingField))
		case c.TableName != t.Name:
			errs = append(errs, fmt.Errorf("table %q column %q: owned by %q: %w", t.Name, c.Name, c.TableName, ErrWrongTable))
		case c.DataType == "":
			errs = append(errs, fmt.Errorf("table %q column %q: data_type: %w", t.Name, c.Name, ErrMissingField))
		}
	}
	return errors.Join(errs...)
}

// Catalog is the ordered set of tables a generation run treats as the universe
// of models.
type Catalog struct {
	Tables []Table `json:"tables" yaml:"tables"`
}

// Table looks up a table by name.
func (c Catalog) Table(name string) (Table, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// TableNames returns table names in catalog order.
func (c Catalog) TableNames() []string {
	names := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		names[i] = t.Name
	}
	return names
}

// DefaultIgnoreTables lists the migration bookkeeping tables excluded from
// every catalog unless configured otherwise.
func DefaultIgnoreTables() []string {
	return []string{"adonis_schema", "adonis_schema_versions"}
}

// Options controls how introspected schemas become catalogs.
type Options struct {
	// IgnoreTables are dropped from the catalog entirely.
	IgnoreTables []string
}

// Apply returns c without the tables opts ignores. The receiver is not
// modified.
func (c Catalog) Apply(opts Options) Catalog {
	out := Catalog{Tables: make([]Table, 0, len(c.Tables))}
	for _, t := range c.Tables {
		if !slices.Contains(opts.IgnoreTables, t.Name) {
			out.Tables = append(out.Tables, t)
		}
	}
	return out
}

// FromSchema converts an introspected schema into a catalog. Views and ignored
// tables are left out; foreign keys are attached to the columns they start
// from. Table order follows the schema.
func FromSchema(schema *model.Schema, opts Options) Catalog {
	cat := Catalog{Tables: []Table{}}
	if schema == nil {
		return cat
	}

	for _, ts := range schema.Tables {
		if slices.Contains(opts.IgnoreTables, ts.Name) {
			continue
		}
		cat.Tables = append(cat.Tables, FromTableSchema(ts))
	}
	return cat
}

// FromTableSchema converts a single introspected table.
func FromTableSchema(ts model.TableSchema) Table {
	fks := make(map[string]model.ForeignKey, len(ts.ForeignKeys))
	for _, fk := range ts.ForeignKeys {
		if _, seen := fks[fk.ColumnName]; !seen {
			fks[fk.ColumnName] = fk
		}
	}

	t := Table{Name: ts.Name, Columns: make([]Column, 0, len(ts.Columns))}
	for _, col := range ts.Columns {
		c := Column{
			Name:         col.Name,
			TableName:    ts.Name,
			DataType:     col.Type,
			IsPrimaryKey: col.IsPrimaryKey || slices.Contains(ts.PrimaryKey, col.Name),
			IsNullable:   col.Nullable,
		}
		if fk, ok := fks[col.Name]; ok {
			c.ForeignKeyTable = fk.ReferencedTable
			c.ForeignKeyColumn = fk.ReferencedColumn
		}
		t.Columns = append(t.Columns, c)
	}
	return t
}
