package connector

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/faucetdb/modelgen/internal/model"
)

// Table types reported by the drivers.
const (
	TypeTable = "table"
	TypeView  = "view"
)

// TableRow is one table or view as listed by a driver.
type TableRow struct {
	Name string
	Type string
}

// ColumnRow is one column as listed by a driver.
type ColumnRow struct {
	Table         string
	Name          string
	Position      int
	DataType      string
	Nullable      bool
	Default       *string
	AutoIncrement bool
	Comment       string
}

// KeyRow is one primary key column.
type KeyRow struct {
	Table  string
	Column string
}

// ForeignKeyRow is one column of a foreign key constraint.
type ForeignKeyRow struct {
	Name             string
	Table            string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
	OnDelete         string
	OnUpdate         string
}

// Assemble groups driver result sets into a schema. Tables keep the order of
// tables, columns are ordered by position. Foreign keys without a
// constraint name get a synthesized one.
func Assemble(tables []TableRow, columns []ColumnRow, pks []KeyRow, fks []ForeignKeyRow) *model.Schema {
	cols := make(map[string][]model.Column)
	for _, c := range columns {
		cols[c.Table] = append(cols[c.Table], model.Column{
			Name:            c.Name,
			Position:        c.Position,
			Type:            c.DataType,
			Nullable:        c.Nullable,
			Default:         c.Default,
			IsAutoIncrement: c.AutoIncrement,
			Comment:         c.Comment,
		})
	}

	keys := make(map[string][]string)
	for _, pk := range pks {
		if !slices.Contains(keys[pk.Table], pk.Column) {
			keys[pk.Table] = append(keys[pk.Table], pk.Column)
		}
	}

	foreign := make(map[string][]model.ForeignKey)
	for _, fk := range fks {
		name := fk.Name
		if name == "" {
			name = fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
		}
		foreign[fk.Table] = append(foreign[fk.Table], model.ForeignKey{
			Name:             name,
			ColumnName:       fk.Column,
			ReferencedTable:  fk.ReferencedTable,
			ReferencedColumn: fk.ReferencedColumn,
			OnDelete:         strings.ToUpper(fk.OnDelete),
			OnUpdate:         strings.ToUpper(fk.OnUpdate),
		})
	}

	schema := &model.Schema{Tables: []model.TableSchema{}, Views: []model.TableSchema{}}
	for _, t := range tables {
		ts := BuildTable(t, cols[t.Name], keys[t.Name], foreign[t.Name])
		if ts.Type == TypeView {
			schema.Views = append(schema.Views, ts)
			continue
		}
		schema.Tables = append(schema.Tables, ts)
	}
	return schema
}

// BuildTable assembles a single table from its already filtered rows.
// Foreign keys spanning several columns are left out.
func BuildTable(t TableRow, columns []model.Column, pk []string, fks []model.ForeignKey) model.TableSchema {
	fks = singleColumnKeys(fks)
	columns = slices.Clone(columns)
	slices.SortStableFunc(columns, func(a, b model.Column) int { return cmp.Compare(a.Position, b.Position) })
	for i := range columns {
		columns[i].IsPrimaryKey = slices.Contains(pk, columns[i].Name)
	}

	ts := model.TableSchema{
		Name:        t.Name,
		Type:        TypeTable,
		Columns:     columns,
		PrimaryKey:  pk,
		ForeignKeys: fks,
	}
	if strings.EqualFold(t.Type, TypeView) {
		ts.Type = TypeView
	}
	if ts.Columns == nil {
		ts.Columns = []model.Column{}
	}
	if ts.PrimaryKey == nil {
		ts.PrimaryKey = []string{}
	}
	if ts.ForeignKeys == nil {
		ts.ForeignKeys = []model.ForeignKey{}
	}
	return ts
}

// singleColumnKeys drops every foreign key whose constraint name appears on
// more than one column.
func singleColumnKeys(fks []model.ForeignKey) []model.ForeignKey {
	count := make(map[string]int, len(fks))
	for _, fk := range fks {
		count[fk.Name]++
	}
	out := make([]model.ForeignKey, 0, len(fks))
	for _, fk := range fks {
		if fk.Name == "" || count[fk.Name] == 1 {
			out = append(out, fk)
		}
	}
	return out
}

// ErrTableNotFound is returned by IntrospectTable for unknown tables.
var ErrTableNotFound = errors.New("table not found")

// Find returns the named table or view from schema.
func Find(schema *model.Schema, name string) (*model.TableSchema, error) {
	if t, ok := schema.Table(name); ok {
		return t, nil
	}
	for i := range schema.Views {
		if schema.Views[i].Name == name {
			return &schema.Views[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrTableNotFound)
}
