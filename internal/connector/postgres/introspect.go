package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/faucetdb/modelgen/internal/connector"
	"github.com/faucetdb/modelgen/internal/model"
)

type tableRow struct {
	TableName string `db:"table_name"`
	TableType string `db:"table_type"`
}

type columnRow struct {
	TableName  string  `db:"table_name"`
	ColumnName string  `db:"column_name"`
	DataType   string  `db:"data_type"`
	UDTName    string  `db:"udt_name"`
	IsNullable string  `db:"is_nullable"`
	Default    *string `db:"column_default"`
	Position   int     `db:"ordinal_position"`
	Comment    *string `db:"column_comment"`
}

type pkRow struct {
	TableName  string `db:"table_name"`
	ColumnName string `db:"column_name"`
}

type fkRow struct {
	ConstraintName   string `db:"constraint_name"`
	TableName        string `db:"table_name"`
	ColumnName       string `db:"column_name"`
	ReferencedTable  string `db:"referenced_table"`
	ReferencedColumn string `db:"referenced_column"`
	DeleteRule       string `db:"delete_rule"`
	UpdateRule       string `db:"update_rule"`
}

const tablesQuery = `SELECT table_name, table_type
	FROM information_schema.tables
	WHERE table_schema = $1 AND ($2 = '' OR table_name = $2)
	ORDER BY table_name`

const columnsQuery = `SELECT
		c.table_name,
		c.column_name,
		c.data_type,
		c.udt_name,
		c.is_nullable,
		c.column_default,
		c.ordinal_position,
		col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position) AS column_comment
	FROM information_schema.columns c
	WHERE c.table_schema = $1 AND ($2 = '' OR c.table_name = $2)
	ORDER BY c.table_name, c.ordinal_position`

const primaryKeysQuery = `SELECT kcu.table_name, kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_schema = $1 AND ($2 = '' OR tc.table_name = $2)
	ORDER BY kcu.table_name, kcu.ordinal_position`

// Composite keys pair each column with its referenced column through the
// unique constraint position; BuildTable then drops them.
const foreignKeysQuery = `SELECT
		tc.constraint_name,
		tc.table_name,
		kcu.column_name,
		ref.table_name AS referenced_table,
		ref.column_name AS referenced_column,
		rc.delete_rule,
		rc.update_rule
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	JOIN information_schema.referential_constraints rc
		ON tc.constraint_name = rc.constraint_name
		AND tc.table_schema = rc.constraint_schema
	JOIN information_schema.key_column_usage ref
		ON rc.unique_constraint_name = ref.constraint_name
		AND rc.unique_constraint_schema = ref.constraint_schema
		AND kcu.position_in_unique_constraint = ref.ordinal_position
	WHERE tc.constraint_type = 'FOREIGN KEY'
		AND tc.table_schema = $1 AND ($2 = '' OR tc.table_name = $2)
	ORDER BY tc.table_name, kcu.ordinal_position`

// IntrospectSchema returns every table and view in the configured schema.
func (c *PostgresConnector) IntrospectSchema(ctx context.Context) (*model.Schema, error) {
	return c.introspect(ctx, "")
}

// IntrospectTable returns a single table or view.
func (c *PostgresConnector) IntrospectTable(ctx context.Context, tableName string) (*model.TableSchema, error) {
	schema, err := c.introspect(ctx, tableName)
	if err != nil {
		return nil, err
	}
	return connector.Find(schema, tableName)
}

// GetTableNames lists base tables in the configured schema.
func (c *PostgresConnector) GetTableNames(ctx context.Context) ([]string, error) {
	const query = `SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	var names []string
	if err := c.DB.SelectContext(ctx, &names, query, c.schemaName); err != nil {
		return nil, fmt.Errorf("get table names: %w", err)
	}
	return names, nil
}

// introspect reads the schema, restricted to one table when table is set.
func (c *PostgresConnector) introspect(ctx context.Context, table string) (*model.Schema, error) {
	var tables []tableRow
	if err := c.DB.SelectContext(ctx, &tables, tablesQuery, c.schemaName, table); err != nil {
		return nil, fmt.Errorf("introspect tables: %w", err)
	}
	var columns []columnRow
	if err := c.DB.SelectContext(ctx, &columns, columnsQuery, c.schemaName, table); err != nil {
		return nil, fmt.Errorf("introspect columns: %w", err)
	}
	var pks []pkRow
	if err := c.DB.SelectContext(ctx, &pks, primaryKeysQuery, c.schemaName, table); err != nil {
		return nil, fmt.Errorf("introspect primary keys: %w", err)
	}
	var fks []fkRow
	if err := c.DB.SelectContext(ctx, &fks, foreignKeysQuery, c.schemaName, table); err != nil {
		return nil, fmt.Errorf("introspect foreign keys: %w", err)
	}

	tableRows := make([]connector.TableRow, len(tables))
	for i, t := range tables {
		tableRows[i] = connector.TableRow{Name: t.TableName, Type: t.TableType}
	}

	columnRows := make([]connector.ColumnRow, len(columns))
	for i, col := range columns {
		columnRows[i] = connector.ColumnRow{
			Table:         col.TableName,
			Name:          col.ColumnName,
			Position:      col.Position,
			DataType:      dataType(col.DataType, col.UDTName),
			Nullable:      col.IsNullable == "YES",
			Default:       col.Default,
			AutoIncrement: col.Default != nil && strings.Contains(*col.Default, "nextval"),
		}
		if col.Comment != nil {
			columnRows[i].Comment = *col.Comment
		}
	}

	keyRows := make([]connector.KeyRow, len(pks))
	for i, pk := range pks {
		keyRows[i] = connector.KeyRow{Table: pk.TableName, Column: pk.ColumnName}
	}

	fkRows := make([]connector.ForeignKeyRow, len(fks))
	for i, fk := range fks {
		fkRows[i] = connector.ForeignKeyRow{
			Name:             fk.ConstraintName,
			Table:            fk.TableName,
			Column:           fk.ColumnName,
			ReferencedTable:  fk.ReferencedTable,
			ReferencedColumn: fk.ReferencedColumn,
			OnDelete:         fk.DeleteRule,
			OnUpdate:         fk.UpdateRule,
		}
	}

	return connector.Assemble(tableRows, columnRows, keyRows, fkRows), nil
}

// dataType reports arrays as "<element>[]" and user-defined types by name;
// everything else keeps information_schema's spelling.
func dataType(dataType, udtName string) string {
	switch strings.ToUpper(dataType) {
	case "ARRAY":
		return strings.TrimPrefix(udtName, "_") + "[]"
	case "USER-DEFINED":
		return udtName
	}
	return dataType
}
