// Package mysql introspects MySQL and MariaDB schemas.
package mysql

import (
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/faucetdb/modelgen/internal/connector"
)

// MySQLConnector implements connector.Connector for MySQL.
type MySQLConnector struct {
	connector.Pool
	schemaName string
}

// New creates a connector that reads the DSN's database unless a schema is
// configured.
func New() connector.Connector {
	return &MySQLConnector{}
}

// Connect opens the pool. Without a configured schema the current database
// is introspected.
func (c *MySQLConnector) Connect(cfg connector.ConnectionConfig) error {
	db, err := connector.Open("mysql", cfg.DSN, cfg)
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}

	c.schemaName = cfg.SchemaName
	if c.schemaName == "" {
		var dbName *string
		if err := db.Get(&dbName, "SELECT DATABASE()"); err == nil && dbName != nil {
			c.schemaName = *dbName
		}
	}
	if c.schemaName == "" {
		db.Close()
		return fmt.Errorf("mysql connect: no database selected in DSN and no schema configured")
	}

	c.DB = db
	return nil
}

func (c *MySQLConnector) DriverName() string { return "mysql" }

// QuoteIdentifier wraps name in backticks, doubling embedded backticks.
func (c *MySQLConnector) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
