package model

import "time"

// ServiceConfig holds the connection settings for a registered database.
// Each service is one schema that models can be generated from.
type ServiceConfig struct {
	ID             int64      `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Label          string     `json:"label" db:"label"`
	Driver         string     `json:"driver" db:"driver"` // postgres, mysql, mssql, oracle, snowflake, sqlite
	DSN            string     `json:"dsn,omitempty" db:"dsn"`
	PrivateKeyPath string     `json:"private_key_path,omitempty" db:"private_key_path"`
	Schema         string     `json:"schema" db:"schema_name"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	Pool           PoolConfig `json:"pool"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// PoolConfig controls the database connection pool used while introspecting.
type PoolConfig struct {
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" json:"conn_max_idle_time"`
}

// DefaultPoolConfig returns pool defaults sized for short introspection runs.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}
