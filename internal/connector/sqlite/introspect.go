package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/faucetdb/modelgen/internal/connector"
	"github.com/faucetdb/modelgen/internal/model"
)

// parallelism bounds concurrent PRAGMA reads during IntrospectSchema.
const parallelism = 4

type masterRow struct {
	Name string  `db:"name"`
	Type string  `db:"type"`
	SQL  *string `db:"sql"`
}

type tableInfoRow struct {
	CID     int     `db:"cid"`
	Name    string  `db:"name"`
	Type    string  `db:"type"`
	NotNull int     `db:"notnull"`
	Default *string `db:"dflt_value"`
	PK      int     `db:"pk"`
}

type foreignKeyRow struct {
	ID       int     `db:"id"`
	Seq      int     `db:"seq"`
	Table    string  `db:"table"`
	From     string  `db:"from"`
	To       *string `db:"to"`
	OnUpdate string  `db:"on_update"`
	OnDelete string  `db:"on_delete"`
	Match    string  `db:"match"`
}

// IntrospectSchema returns every table and view. Tables are read
// concurrently; the result keeps sqlite_master name order.
func (c *SQLiteConnector) IntrospectSchema(ctx context.Context) (*model.Schema, error) {
	objects, err := c.objects(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("introspect schema: %w", err)
	}

	tables := make([]model.TableSchema, len(objects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, obj := range objects {
		g.Go(func() error {
			ts, err := c.table(gctx, obj)
			if err != nil {
				return fmt.Errorf("introspect table %q: %w", obj.Name, err)
			}
			tables[i] = ts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolveImplicitReferences(tables)

	schema := &model.Schema{Tables: []model.TableSchema{}, Views: []model.TableSchema{}}
	for _, ts := range tables {
		if ts.Type == connector.TypeView {
			schema.Views = append(schema.Views, ts)
			continue
		}
		schema.Tables = append(schema.Tables, ts)
	}
	return schema, nil
}

// IntrospectTable returns a single table or view.
func (c *SQLiteConnector) IntrospectTable(ctx context.Context, tableName string) (*model.TableSchema, error) {
	objects, err := c.objects(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("introspect table %q: %w", tableName, err)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("%q: %w", tableName, connector.ErrTableNotFound)
	}
	ts, err := c.table(ctx, objects[0])
	if err != nil {
		return nil, fmt.Errorf("introspect table %q: %w", tableName, err)
	}
	return &ts, nil
}

// GetTableNames lists user tables.
func (c *SQLiteConnector) GetTableNames(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT name FROM %s.sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%%'
		ORDER BY name`, c.QuoteIdentifier(c.schemaName))

	var names []string
	if err := c.DB.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("get table names: %w", err)
	}
	return names, nil
}

// objects lists tables and views, or only the named one.
func (c *SQLiteConnector) objects(ctx context.Context, name string) ([]masterRow, error) {
	query := fmt.Sprintf(`SELECT name, type, sql FROM %s.sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%%'
			AND (? = '' OR name = ?)
		ORDER BY name`, c.QuoteIdentifier(c.schemaName))

	var rows []masterRow
	if err := c.DB.SelectContext(ctx, &rows, query, name, name); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *SQLiteConnector) table(ctx context.Context, obj masterRow) (model.TableSchema, error) {
	schema := c.QuoteIdentifier(c.schemaName)
	quoted := c.QuoteIdentifier(obj.Name)

	var info []tableInfoRow
	if err := c.DB.SelectContext(ctx, &info, fmt.Sprintf("PRAGMA %s.table_info(%s)", schema, quoted)); err != nil {
		return model.TableSchema{}, fmt.Errorf("table_info: %w", err)
	}
	var fks []foreignKeyRow
	if err := c.DB.SelectContext(ctx, &fks, fmt.Sprintf("PRAGMA %s.foreign_key_list(%s)", schema, quoted)); err != nil {
		return model.TableSchema{}, fmt.Errorf("foreign_key_list: %w", err)
	}

	pkCols := lo.FilterMap(info, func(col tableInfoRow, _ int) (string, bool) { return col.Name, col.PK > 0 })
	rowidAlias := len(pkCols) == 1 && obj.SQL != nil &&
		strings.Contains(strings.ToUpper(*obj.SQL), "INTEGER PRIMARY KEY")

	columns := make([]model.Column, len(info))
	for i, col := range info {
		columns[i] = model.Column{
			Name:            col.Name,
			Position:        col.CID + 1,
			Type:            col.Type,
			Nullable:        col.NotNull == 0 && col.PK == 0,
			Default:         col.Default,
			IsAutoIncrement: rowidAlias && col.PK > 0,
		}
	}

	foreignKeys := make([]model.ForeignKey, 0, len(fks))
	for _, fk := range fks {
		foreignKeys = append(foreignKeys, model.ForeignKey{
			Name:             fmt.Sprintf("fk_%s_%d", obj.Name, fk.ID),
			ColumnName:       fk.From,
			ReferencedTable:  fk.Table,
			ReferencedColumn: lo.FromPtr(fk.To),
			OnDelete:         fk.OnDelete,
			OnUpdate:         fk.OnUpdate,
		})
	}

	return connector.BuildTable(connector.TableRow{Name: obj.Name, Type: obj.Type}, columns, pkCols, foreignKeys), nil
}

// resolveImplicitReferences fills the target column of "REFERENCES t"
// clauses that name no column: SQLite then means t's primary key.
func resolveImplicitReferences(tables []model.TableSchema) {
	pks := make(map[string][]string, len(tables))
	for _, t := range tables {
		pks[t.Name] = t.PrimaryKey
	}
	for i := range tables {
		for j, fk := range tables[i].ForeignKeys {
			if fk.ReferencedColumn == "" && len(pks[fk.ReferencedTable]) == 1 {
				tables[i].ForeignKeys[j].ReferencedColumn = pks[fk.ReferencedTable][0]
			}
		}
	}
}
