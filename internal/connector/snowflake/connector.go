// Package snowflake introspects Snowflake schemas, with optional key-pair
// (JWT) authentication.
package snowflake

import (
	"fmt"
	"strings"

	_ "github.com/snowflakedb/gosnowflake"

	"github.com/faucetdb/modelgen/internal/connector"
)

// SnowflakeConnector implements connector.Connector for Snowflake.
type SnowflakeConnector struct {
	connector.Pool
	schemaName string
}

// New creates a connector for the PUBLIC schema.
func New() connector.Connector {
	return &SnowflakeConnector{schemaName: "PUBLIC"}
}

// Connect opens the pool. With PrivateKeyPath set the DSN is rewritten for
// JWT authentication and any password in it is dropped.
func (c *SnowflakeConnector) Connect(cfg connector.ConnectionConfig) error {
	dsn := cfg.DSN
	if cfg.PrivateKeyPath != "" {
		var err error
		if dsn, err = buildJWTDSN(cfg.DSN, cfg.PrivateKeyPath); err != nil {
			return fmt.Errorf("snowflake jwt auth: %w", err)
		}
	}

	db, err := connector.Open("snowflake", dsn, cfg)
	if err != nil {
		return fmt.Errorf("snowflake connect: %w", err)
	}
	if cfg.SchemaName != "" {
		c.schemaName = cfg.SchemaName
	}
	c.DB = db
	return nil
}

func (c *SnowflakeConnector) DriverName() string { return "snowflake" }

// QuoteIdentifier wraps name in double quotes. Quoted Snowflake identifiers
// are case-sensitive.
func (c *SnowflakeConnector) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
