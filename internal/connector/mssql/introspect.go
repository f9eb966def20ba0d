package mssql

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
	IsNullable string  `db:"IS_NULLABLE"`
	Default    *string `db:"COLUMN_DEFAULT"`
	Position   int     `db:"ORDINAL_POSITION"`
	IsIdentity bool    `db:"IS_IDENTITY"`
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

const tablesQuery = `SELECT TABLE_NAME, TABLE_TYPE
	FROM INFORMATION_SCHEMA.TABLES
	WHERE TABLE_SCHEMA = @p1 AND (@p2 = '' OR TABLE_NAME = @p2)
	ORDER BY TABLE_NAME`

const columnsQuery = `SELECT
		c.TABLE_NAME,
		c.COLUMN_NAME,
		c.DATA_TYPE,
		c.IS_NULLABLE,
		c.COLUMN_DEFAULT,
		c.ORDINAL_POSITION,
		CAST(COLUMNPROPERTY(OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME)), c.COLUMN_NAME, 'IsIdentity') AS BIT) AS IS_IDENTITY
	FROM INFORMATION_SCHEMA.COLUMNS c
	WHERE c.TABLE_SCHEMA = @p1 AND (@p2 = '' OR c.TABLE_NAME = @p2)
	ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`

const primaryKeysQuery = `SELECT kcu.TABLE_NAME, kcu.COLUMN_NAME
	FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
	JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
		AND tc.TABLE_SCHEMA = kcu.TABLE_SCHEMA
	WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
		AND tc.TABLE_SCHEMA = @p1 AND (@p2 = '' OR tc.TABLE_NAME = @p2)
	ORDER BY kcu.TABLE_NAME, kcu.ORDINAL_POSITION`

const foreignKeysQuery = `SELECT
		fk.name AS CONSTRAINT_NAME,
		fk_tab.name AS TABLE_NAME,
		fk_col.name AS COLUMN_NAME,
		pk_tab.name AS REFERENCED_TABLE_NAME,
		pk_col.name AS REFERENCED_COLUMN_NAME,
		fk.delete_referential_action_desc AS DELETE_RULE,
		fk.update_referential_action_desc AS UPDATE_RULE
	FROM sys.foreign_keys fk
	JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
	JOIN sys.tables fk_tab ON fkc.parent_object_id = fk_tab.object_id
	JOIN sys.columns fk_col ON fkc.parent_object_id = fk_col.object_id AND fkc.parent_column_id = fk_col.column_id
	JOIN sys.tables pk_tab ON fkc.referenced_object_id = pk_tab.object_id
	JOIN sys.columns pk_col ON fkc.referenced_object_id = pk_col.object_id AND fkc.referenced_column_id = pk_col.column_id
	JOIN sys.schemas s ON fk_tab.schema_id = s.schema_id
	WHERE s.name = @p1 AND (@p2 = '' OR fk_tab.name = @p2)
	ORDER BY fk_tab.name, fkc.constraint_column_id`

// IntrospectSchema returns every table and view in the configured schema.
func (c *MSSQLConnector) IntrospectSchema(ctx context.Context) (*model.Schema, error) {
	return c.introspect(ctx, "")
}

// IntrospectTable returns a single table or view.
func (c *MSSQLConnector) IntrospectTable(ctx context.Context, tableName string) (*model.TableSchema, error) {
	schema, err := c.introspect(ctx, tableName)
	if err != nil {
		return nil, err
	}
	return connector.Find(schema, tableName)
}

// GetTableNames lists base tables in the configured schema.
func (c *MSSQLConnector) GetTableNames(ctx context.Context) ([]string, error) {
	const query = `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`

	var names []string
	if err := c.DB.SelectContext(ctx, &names, query, c.schemaName); err != nil {
		return nil, fmt.Errorf("get table names: %w", err)
	}
	return names, nil
}

func (c *MSSQLConnector) introspect(ctx context.Context, table string) (*model.Schema, error) {
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
			DataType:      col.DataType,
			Nullable:      col.IsNullable == "YES",
			Default:       col.Default,
			AutoIncrement: col.IsIdentity,
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
			OnDelete:         referentialAction(fk.DeleteRule),
			OnUpdate:         referentialAction(fk.UpdateRule),
		}
	}

	return connector.Assemble(tableRows, columnRows, keyRows, fkRows), nil
}

// referentialAction turns sys.foreign_keys spellings ("SET_NULL") into the
// information_schema ones ("SET NULL").
func referentialAction(desc string) string {
	return strings.ReplaceAll(desc, "_", " ")
}
