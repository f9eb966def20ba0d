package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/faucetdb/modelgen/internal/connector"
	"github.com/faucetdb/modelgen/internal/model"
)

type tableRow struct {
	TableName string `db:"TABLE_NAME"`
	TableType string `db:"TABLE_TYPE"`
}

type columnRow struct {
	TableName  string  `db:"TABLE_NAME"`
	ColumnName string  `db:"COLUMN_NAME"`
	DataType   string  `db:"DATA_TYPE"`
	ColumnType string  `db:"COLUMN_TYPE"`
	IsNullable string  `db:"IS_NULLABLE"`
	Default    *string `db:"COLUMN_DEFAULT"`
	Position   int     `db:"ORDINAL_POSITION"`
	Extra      string  `db:"EXTRA"`
	Comment    string  `db:"COLUMN_COMMENT"`
}

type pkRow struct {
	TableName  string `db:"TABLE_NAME"`
	ColumnName string `db:"COLUMN_NAME"`
}

type fkRow struct {
	ConstraintName   string `db:"CONSTRAINT_NAME"`
	TableName        string `db:"TABLE_NAME"`
	ColumnName       string `db:"COLUMN_NAME"`
	ReferencedTable  string `db:"REFERENCED_TABLE_NAME"`
	ReferencedColumn string `db:"REFERENCED_COLUMN_NAME"`
	DeleteRule       string `db:"DELETE_RULE"`
	UpdateRule       string `db:"UPDATE_RULE"`
}

// Every query takes (schema, table, table); an empty table selects all.
const tablesQuery = `SELECT TABLE_NAME, TABLE_TYPE
	FROM INFORMATION_SCHEMA.TABLES
	WHERE TABLE_SCHEMA = ? AND (? = '' OR TABLE_NAME = ?)
	ORDER BY TABLE_NAME`

const columnsQuery = `SELECT
		TABLE_NAME, COLUMN_NAME, DATA_TYPE, COLUMN_TYPE, IS_NULLABLE,
		COLUMN_DEFAULT, ORDINAL_POSITION, EXTRA, COLUMN_COMMENT
	FROM INFORMATION_SCHEMA.COLUMNS
	WHERE TABLE_SCHEMA = ? AND (? = '' OR TABLE_NAME = ?)
	ORDER BY TABLE_NAME, ORDINAL_POSITION`

const primaryKeysQuery = `SELECT TABLE_NAME, COLUMN_NAME
	FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
	WHERE TABLE_SCHEMA = ? AND (? = '' OR TABLE_NAME = ?)
		AND CONSTRAINT_NAME = 'PRIMARY'
	ORDER BY TABLE_NAME, ORDINAL_POSITION`

const foreignKeysQuery = `SELECT
		kcu.CONSTRAINT_NAME,
		kcu.TABLE_NAME,
		kcu.COLUMN_NAME,
		kcu.REFERENCED_TABLE_NAME,
		kcu.REFERENCED_COLUMN_NAME,
		rc.DELETE_RULE,
		rc.UPDATE_RULE
	FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
	JOIN INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc
		ON kcu.CONSTRAINT_NAME = rc.CONSTRAINT_NAME
		AND kcu.TABLE_SCHEMA = rc.CONSTRAINT_SCHEMA
	WHERE kcu.TABLE_SCHEMA = ? AND (? = '' OR kcu.TABLE_NAME = ?)
		AND kcu.REFERENCED_TABLE_NAME IS NOT NULL
	ORDER BY kcu.TABLE_NAME, kcu.ORDINAL_POSITION`

// IntrospectSchema returns every table and view in the configured database.
func (c *MySQLConnector) IntrospectSchema(ctx context.Context) (*model.Schema, error) {
	return c.introspect(ctx, "")
}

// IntrospectTable returns a single table or view.
func (c *MySQLConnector) IntrospectTable(ctx context.Context, tableName string) (*model.TableSchema, error) {
	schema, err := c.introspect(ctx, tableName)
	if err != nil {
		return nil, err
	}
	return connector.Find(schema, tableName)
}

// GetTableNames lists base tables in the configured database.
func (c *MySQLConnector) GetTableNames(ctx context.Context) ([]string, error) {
	const query = `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`

	var names []string
	if err := c.DB.SelectContext(ctx, &names, query, c.schemaName); err != nil {
		return nil, fmt.Errorf("get table names: %w", err)
	}
	return names, nil
}

func (c *MySQLConnector) introspect(ctx context.Context, table string) (*model.Schema, error) {
	args := []any{c.schemaName, table, table}

	var tables []tableRow
	if err := c.DB.SelectContext(ctx, &tables, tablesQuery, args...); err != nil {
		return nil, fmt.Errorf("introspect tables: %w", err)
	}
	var columns []columnRow
	if err := c.DB.SelectContext(ctx, &columns, columnsQuery, args...); err != nil {
		return nil, fmt.Errorf("introspect columns: %w", err)
	}
	var pks []pkRow
	if err := c.DB.SelectContext(ctx, &pks, primaryKeysQuery, args...); err != nil {
		return nil, fmt.Errorf("introspect primary keys: %w", err)
	}
	var fks []fkRow
	if err := c.DB.SelectContext(ctx, &fks, foreignKeysQuery, args...); err != nil {
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
			DataType:      dataType(col.DataType, col.ColumnType),
			Nullable:      col.IsNullable == "YES",
			Default:       col.Default,
			AutoIncrement: strings.Contains(col.Extra, "auto_increment"),
			Comment:       col.Comment,
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

// dataType keeps DATA_TYPE except for tinyint(1), which MySQL uses for
// booleans.
func dataType(dataType, columnType string) string {
	if strings.EqualFold(dataType, "tinyint") && strings.HasPrefix(strings.ToLower(columnType), "tinyint(1)") {
		return "boolean"
	}
	return dataType
}
