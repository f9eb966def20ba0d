package oracle

import (
	"context"
	"fmt"

	"github.com/faucetdb/modelgen/internal/connector"
	"github.com/faucetdb/modelgen/internal/model"
)

type tableRow struct {
	TableName string `db:"TABLE_NAME"`
	TableType string `db:"TABLE_TYPE"`
}

type columnRow struct {
	TableName  string `db:"TABLE_NAME"`
	ColumnName string `db:"COLUMN_NAME"`
	DataType   string `db:"DATA_TYPE"`
	Nullable   string `db:"NULLABLE"`
	Position   int    `db:"COLUMN_ID"`
	Identity   string `db:"IDENTITY_COLUMN"`
}

type pkRow struct {
	TableName  string `db:"TABLE_NAME"`
	ColumnName string `db:"COLUMN_NAME"`
}

type fkRow struct {
	ConstraintName   string `db:"CONSTRAINT_NAME"`
	TableName        string `db:"TABLE_NAME"`
	ColumnName       string `db:"COLUMN_NAME"`
	ReferencedTable  string `db:"REFERENCED_TABLE"`
	ReferencedColumn string `db:"REFERENCED_COLUMN"`
	DeleteRule       string `db:"DELETE_RULE"`
}

// Every query binds (owner, table, table); an empty table selects all.
const tablesQuery = `SELECT TABLE_NAME, TABLE_TYPE FROM (
		SELECT OWNER, TABLE_NAME, 'table' AS TABLE_TYPE FROM ALL_TABLES
		UNION ALL
		SELECT OWNER, VIEW_NAME, 'view' FROM ALL_VIEWS
	)
	WHERE OWNER = :1 AND (:2 IS NULL OR TABLE_NAME = :3)
	ORDER BY TABLE_NAME`

const columnsQuery = `SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE, NULLABLE, COLUMN_ID, IDENTITY_COLUMN
	FROM ALL_TAB_COLUMNS
	WHERE OWNER = :1 AND (:2 IS NULL OR TABLE_NAME = :3)
	ORDER BY TABLE_NAME, COLUMN_ID`

const primaryKeysQuery = `SELECT cc.TABLE_NAME, cc.COLUMN_NAME
	FROM ALL_CONSTRAINTS c
	JOIN ALL_CONS_COLUMNS cc
		ON c.OWNER = cc.OWNER AND c.CONSTRAINT_NAME = cc.CONSTRAINT_NAME
	WHERE c.CONSTRAINT_TYPE = 'P'
		AND c.OWNER = :1 AND (:2 IS NULL OR c.TABLE_NAME = :3)
	ORDER BY cc.TABLE_NAME, cc.POSITION`

const foreignKeysQuery = `SELECT
		c.CONSTRAINT_NAME,
		cc.TABLE_NAME,
		cc.COLUMN_NAME,
		rc.TABLE_NAME AS REFERENCED_TABLE,
		rc.COLUMN_NAME AS REFERENCED_COLUMN,
		c.DELETE_RULE
	FROM ALL_CONSTRAINTS c
	JOIN ALL_CONS_COLUMNS cc
		ON c.OWNER = cc.OWNER AND c.CONSTRAINT_NAME = cc.CONSTRAINT_NAME
	JOIN ALL_CONS_COLUMNS rc
		ON c.R_OWNER = rc.OWNER AND c.R_CONSTRAINT_NAME = rc.CONSTRAINT_NAME
		AND cc.POSITION = rc.POSITION
	WHERE c.CONSTRAINT_TYPE = 'R'
		AND c.OWNER = :1 AND (:2 IS NULL OR c.TABLE_NAME = :3)
	ORDER BY cc.TABLE_NAME, cc.POSITION`

// IntrospectSchema returns every table and view owned by the schema.
func (c *OracleConnector) IntrospectSchema(ctx context.Context) (*model.Schema, error) {
	return c.introspect(ctx, "")
}

// IntrospectTable returns a single table or view.
func (c *OracleConnector) IntrospectTable(ctx context.Context, tableName string) (*model.TableSchema, error) {
	schema, err := c.introspect(ctx, tableName)
	if err != nil {
		return nil, err
	}
	return connector.Find(schema, tableName)
}

// GetTableNames lists tables owned by the schema.
func (c *OracleConnector) GetTableNames(ctx context.Context) ([]string, error) {
	const query = `SELECT TABLE_NAME FROM ALL_TABLES WHERE OWNER = :1 ORDER BY TABLE_NAME`

	var names []string
	if err := c.DB.SelectContext(ctx, &names, query, c.owner); err != nil {
		return nil, fmt.Errorf("get table names: %w", err)
	}
	return names, nil
}

func (c *OracleConnector) introspect(ctx context.Context, table string) (*model.Schema, error) {
	// Oracle treats '' as NULL, so an empty filter binds as NULL.
	args := []any{c.owner, table, table}

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
			DataType:      col.DataType,
			Nullable:      col.Nullable == "Y",
			AutoIncrement: col.Identity == "YES",
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
		}
	}

	return connector.Assemble(tableRows, columnRows, keyRows, fkRows), nil
}
