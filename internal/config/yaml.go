package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/faucetdb/modelgen/internal/catalog"
)

// YAMLConfig is the modelgen.yaml file.
type YAMLConfig struct {
	Generator GeneratorConfig `yaml:"generator"`
	Server    ServerConfig    `yaml:"server"`
	MCP       MCPConfig       `yaml:"mcp"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GeneratorConfig controls model generation.
type GeneratorConfig struct {
	OutputDir    string   `yaml:"output_dir"`
	IgnoreTables []string `yaml:"ignore_tables"`
	Overwrite    bool     `yaml:"overwrite"`
}

// CatalogOptions returns the catalog options the generator settings imply.
func (g GeneratorConfig) CatalogOptions() catalog.Options {
	return catalog.Options{IgnoreTables: g.IgnoreTables}
}

// ServerConfig controls the HTTP preview server.
type ServerConfig struct {
	Host            string     `yaml:"host"`
	Port            int        `yaml:"port"`
	ShutdownTimeout string     `yaml:"shutdown_timeout"`
	RateLimit       int        `yaml:"rate_limit"`
	CORS            CORSConfig `yaml:"cors"`
}

// CORSConfig controls cross-origin resource sharing settings.
type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

// MCPConfig controls the MCP server.
type MCPConfig struct {
	Transport string `yaml:"transport"` // stdio or http
	Port      int    `yaml:"port"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadYAMLConfig reads a configuration file. ${VAR} references are expanded
// from the environment before parsing; unset keys keep their defaults.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultYAMLConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// DefaultYAMLConfig returns the configuration used when no file is present.
func DefaultYAMLConfig() *YAMLConfig {
	return &YAMLConfig{
		Generator: GeneratorConfig{
			OutputDir:    "app/models",
			IgnoreTables: catalog.DefaultIgnoreTables(),
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ShutdownTimeout: "10s",
			RateLimit:       100,
			CORS:            CORSConfig{Origins: []string{"*"}},
		},
		MCP: MCPConfig{
			Transport: "stdio",
			Port:      3001,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// WriteDefaultConfig writes the default configuration to path, creating its
// directory if needed.
func WriteDefaultConfig(path string) error {
	data, err := yaml.Marshal(DefaultYAMLConfig())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
