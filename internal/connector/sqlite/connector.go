// Package sqlite introspects SQLite databases through the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/faucetdb/modelgen/internal/connector"
)

// SQLiteConnector implements connector.Connector for SQLite.
type SQLiteConnector struct {
	connector.Pool
	schemaName string
}

// New creates a connector for the "main" database.
func New() connector.Connector {
	return &SQLiteConnector{schemaName: "main"}
}

// Connect opens the database file named by the DSN. An in-memory database
// is pinned to a single connection so every query sees the same data.
func (c *SQLiteConnector) Connect(cfg connector.ConnectionConfig) error {
	db, err := connector.Open("sqlite", cfg.DSN, cfg)
	if err != nil {
		return fmt.Errorf("sqlite connect: %w", err)
	}
	if strings.Contains(cfg.DSN, ":memory:") || strings.Contains(cfg.DSN, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if cfg.SchemaName != "" {
		c.schemaName = cfg.SchemaName
	}
	c.DB = db
	return nil
}

func (c *SQLiteConnector) DriverName() string { return "sqlite" }

// QuoteIdentifier wraps name in double quotes, doubling embedded quotes.
func (c *SQLiteConnector) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
