// Package postgres introspects PostgreSQL schemas through pgx.
package postgres

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/faucetdb/modelgen/internal/connector"
)

// PostgresConnector implements connector.Connector for PostgreSQL.
type PostgresConnector struct {
	connector.Pool
	schemaName string
}

// New creates a connector that reads the "public" schema unless configured
// otherwise.
func New() connector.Connector {
	return &PostgresConnector{schemaName: "public"}
}

// Connect opens the pool and records the schema to introspect.
func (c *PostgresConnector) Connect(cfg connector.ConnectionConfig) error {
	db, err := connector.Open("pgx", cfg.DSN, cfg)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	if cfg.SchemaName != "" {
		c.schemaName = cfg.SchemaName
	}
	c.DB = db
	return nil
}

func (c *PostgresConnector) DriverName() string { return "postgres" }

// QuoteIdentifier wraps name in double quotes, doubling embedded quotes.
func (c *PostgresConnector) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
