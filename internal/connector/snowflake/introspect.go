package snowflake

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

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
	IsIdentity string  `db:"IS_IDENTITY"`
	Comment    *string `db:"COMMENT"`
}

const tablesQuery = `SELECT TABLE_NAME, TABLE_TYPE
	FROM INFORMATION_SCHEMA.TABLES
	WHERE TABLE_SCHEMA = ? AND (? = '' OR TABLE_NAME = ?)
	ORDER BY TABLE_NAME`

const columnsQuery = `SELECT
		TABLE_NAME, COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT,
		ORDINAL_POSITION, IS_IDENTITY, COMMENT
	FROM INFORMATION_SCHEMA.COLUMNS
	WHERE TABLE_SCHEMA = ? AND (? = '' OR TABLE_NAME = ?)
	ORDER BY TABLE_NAME, ORDINAL_POSITION`

// IntrospectSchema returns every table and view in the configured schema.
func (c *SnowflakeConnector) IntrospectSchema(ctx context.Context) (*model.Schema, error) {
	return c.introspect(ctx, "")
}

// IntrospectTable returns a single table or view.
func (c *SnowflakeConnector) IntrospectTable(ctx context.Context, tableName string) (*model.TableSchema, error) {
	schema, err := c.introspect(ctx, tableName)
	if err != nil {
		return nil, err
	}
	return connector.Find(schema, tableName)
}

// GetTableNames lists base tables in the configured schema.
func (c *SnowflakeConnector) GetTableNames(ctx context.Context) ([]string, error) {
	const query = `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`

	var names []string
	if err := c.DB.SelectContext(ctx, &names, query, c.schemaName); err != nil {
		return nil, fmt.Errorf("get table names: %w", err)
	}
	return names, nil
}

func (c *SnowflakeConnector) introspect(ctx context.Context, table string) (*model.Schema, error) {
	args := []any{c.schemaName, table, table}

	var tables []tableRow
	if err := c.DB.SelectContext(ctx, &tables, tablesQuery, args...); err != nil {
		return nil, fmt.Errorf("introspect tables: %w", err)
	}
	var columns []columnRow
	if err := c.DB.SelectContext(ctx, &columns, columnsQuery, args...); err != nil {
		return nil, fmt.Errorf("introspect columns: %w", err)
	}
	pks, err := c.showPrimaryKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("introspect primary keys: %w", err)
	}
	fks, err := c.showImportedKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("introspect foreign keys: %w", err)
	}
	if table != "" {
		pks = lo.Filter(pks, func(k connector.KeyRow, _ int) bool { return k.Table == table })
		fks = lo.Filter(fks, func(k connector.ForeignKeyRow, _ int) bool { return k.Table == table })
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
			AutoIncrement: col.IsIdentity == "YES",
			Comment:       lo.FromPtr(col.Comment),
		}
	}

	return connector.Assemble(tableRows, columnRows, pks, fks), nil
}

// showPrimaryKeys reads SHOW PRIMARY KEYS; Snowflake does not expose key
// columns through INFORMATION_SCHEMA.
func (c *SnowflakeConnector) showPrimaryKeys(ctx context.Context) ([]connector.KeyRow, error) {
	rows, err := c.show(ctx, "SHOW PRIMARY KEYS IN SCHEMA "+c.QuoteIdentifier(c.schemaName))
	if err != nil {
		return nil, err
	}
	keys := make([]connector.KeyRow, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, connector.KeyRow{Table: row["table_name"], Column: row["column_name"]})
	}
	return keys, nil
}

func (c *SnowflakeConnector) showImportedKeys(ctx context.Context) ([]connector.ForeignKeyRow, error) {
	rows, err := c.show(ctx, "SHOW IMPORTED KEYS IN SCHEMA "+c.QuoteIdentifier(c.schemaName))
	if err != nil {
		return nil, err
	}
	fks := make([]connector.ForeignKeyRow, 0, len(rows))
	for _, row := range rows {
		fks = append(fks, connector.ForeignKeyRow{
			Name:             row["fk_name"],
			Table:            row["fk_table_name"],
			Column:           row["fk_column_name"],
			ReferencedTable:  row["pk_table_name"],
			ReferencedColumn: row["pk_column_name"],
			OnDelete:         row["delete_rule"],
			OnUpdate:         row["update_rule"],
		})
	}
	return fks, nil
}

// show runs a SHOW command and returns each row keyed by lower-cased column
// name with string values.
func (c *SnowflakeConnector) show(ctx context.Context, query string) ([]map[string]string, error) {
	rows, err := c.DB.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]string
	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return nil, err
		}
		row := make(map[string]string, len(raw))
		for k, v := range raw {
			switch s := v.(type) {
			case string:
				row[strings.ToLower(k)] = s
			case []byte:
				row[strings.ToLower(k)] = string(s)
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
