// Package mssql introspects Microsoft SQL Server schemas.
package mssql

import (
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/faucetdb/modelgen/internal/connector"
)

// MSSQLConnector implements connector.Connector for SQL Server.
type MSSQLConnector struct {
	connector.Pool
	schemaName string
}

// New creates a connector for the "dbo" schema.
func New() connector.Connector {
	return &MSSQLConnector{schemaName: "dbo"}
}

// Connect opens the pool through the "sqlserver" driver.
func (c *MSSQLConnector) Connect(cfg connector.ConnectionConfig) error {
	db, err := connector.Open("sqlserver", cfg.DSN, cfg)
	if err != nil {
		return fmt.Errorf("mssql connect: %w", err)
	}
	if cfg.SchemaName != "" {
		c.schemaName = cfg.SchemaName
	}
	c.DB = db
	return nil
}

func (c *MSSQLConnector) DriverName() string { return "mssql" }

// QuoteIdentifier wraps name in brackets, doubling embedded closing brackets.
func (c *MSSQLConnector) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
