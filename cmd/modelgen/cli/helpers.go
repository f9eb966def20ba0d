package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/faucetdb/modelgen/internal/config"
	"github.com/faucetdb/modelgen/internal/connector"
	"github.com/faucetdb/modelgen/internal/connector/mssql"
	"github.com/faucetdb/modelgen/internal/connector/mysql"
	"github.com/faucetdb/modelgen/internal/connector/oracle"
	"github.com/faucetdb/modelgen/internal/connector/postgres"
	"github.com/faucetdb/modelgen/internal/connector/snowflake"
	"github.com/faucetdb/modelgen/internal/connector/sqlite"
	"github.com/faucetdb/modelgen/internal/service"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from --data-dir,
// MODELGEN_DATA_DIR or ~/.modelgen, in that order.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("MODELGEN_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".modelgen")
}

func openConfigStore() (*config.Store, error) {
	store, err := config.NewStore(resolveDataDir())
	if err != nil {
		return nil, fmt.Errorf("open config store: %w", err)
	}
	return store, nil
}

// newRegistry creates a connector registry with every supported driver.
func newRegistry() *connector.Registry {
	registry := connector.NewRegistry()
	registry.RegisterDriver("postgres", postgres.New)
	registry.RegisterDriver("mysql", mysql.New)
	registry.RegisterDriver("mssql", mssql.New)
	registry.RegisterDriver("oracle", oracle.New)
	registry.RegisterDriver("snowflake", snowflake.New)
	registry.RegisterDriver("sqlite", sqlite.New)
	return registry
}

// newLogger builds the process logger from the logging config. --verbose
// forces debug level.
func newLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// app bundles what most commands need: the service store and the model
// service built on it.
type app struct {
	store    *config.Store
	registry *connector.Registry
	models   *service.Models
	logger   *slog.Logger
}

func openApp() (*app, error) {
	logger := newLogger(os.Stderr, appConfig.Logging)

	store, err := openConfigStore()
	if err != nil {
		return nil, err
	}

	registry := newRegistry()
	models, err := service.New(store, registry, appConfig.Generator.CatalogOptions(), logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &app{store: store, registry: registry, models: models, logger: logger}, nil
}

func (a *app) Close() {
	a.models.Close()
	a.store.Close()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
