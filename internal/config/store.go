package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/faucetdb/modelgen/internal/model"
)

// Store persists modelgen's local state in SQLite: registered database
// services, key/value settings and catalog snapshots.
type Store struct {
	db *sqlx.DB
}

// NewStore opens (and migrates) the store in dataDir. Pass an empty string
// for an in-memory store.
func NewStore(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == "" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = filepath.Join(dataDir, "modelgen.db") + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open config database: %w", err)
	}

	// One writer; also keeps an in-memory database on a single connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate config database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Services
// ---------------------------------------------------------------------------

// serviceRow maps 1:1 to the services table; model.ServiceConfig nests the
// pool settings.
type serviceRow struct {
	ID                int64     `db:"id"`
	Name              string    `db:"name"`
	Label             string    `db:"label"`
	Driver            string    `db:"driver"`
	DSN               string    `db:"dsn"`
	PrivateKeyPath    string    `db:"private_key_path"`
	SchemaName        string    `db:"schema_name"`
	IsActive          bool      `db:"is_active"`
	MaxOpenConns      int       `db:"max_open_conns"`
	MaxIdleConns      int       `db:"max_idle_conns"`
	ConnMaxLifetimeMs int64     `db:"conn_max_lifetime_ms"`
	ConnMaxIdleTimeMs int64     `db:"conn_max_idle_time_ms"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func serviceRowFromModel(svc *model.ServiceConfig) serviceRow {
	return serviceRow{
		ID:                svc.ID,
		Name:              svc.Name,
		Label:             svc.Label,
		Driver:            svc.Driver,
		DSN:               svc.DSN,
		PrivateKeyPath:    svc.PrivateKeyPath,
		SchemaName:        svc.Schema,
		IsActive:          svc.IsActive,
		MaxOpenConns:      svc.Pool.MaxOpenConns,
		MaxIdleConns:      svc.Pool.MaxIdleConns,
		ConnMaxLifetimeMs: svc.Pool.ConnMaxLifetime.Milliseconds(),
		ConnMaxIdleTimeMs: svc.Pool.ConnMaxIdleTime.Milliseconds(),
		CreatedAt:         svc.CreatedAt,
		UpdatedAt:         svc.UpdatedAt,
	}
}

func (r serviceRow) toModel() model.ServiceConfig {
	return model.ServiceConfig{
		ID:             r.ID,
		Name:           r.Name,
		Label:          r.Label,
		Driver:         r.Driver,
		DSN:            r.DSN,
		PrivateKeyPath: r.PrivateKeyPath,
		Schema:         r.SchemaName,
		IsActive:       r.IsActive,
		Pool: model.PoolConfig{
			MaxOpenConns:    r.MaxOpenConns,
			MaxIdleConns:    r.MaxIdleConns,
			ConnMaxLifetime: time.Duration(r.ConnMaxLifetimeMs) * time.Millisecond,
			ConnMaxIdleTime: time.Duration(r.ConnMaxIdleTimeMs) * time.Millisecond,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const serviceColumns = `id, name, label, driver, dsn, private_key_path, schema_name, is_active,
	max_open_conns, max_idle_conns, conn_max_lifetime_ms, conn_max_idle_time_ms, created_at, updated_at`

// CreateService inserts a new service. ID, CreatedAt and UpdatedAt are set on
// svc after a successful insert.
func (s *Store) CreateService(ctx context.Context, svc *model.ServiceConfig) error {
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	const q = `INSERT INTO services
		(name, label, driver, dsn, private_key_path, schema_name, is_active,
		 max_open_conns, max_idle_conns, conn_max_lifetime_ms, conn_max_idle_time_ms,
		 created_at, updated_at)
		VALUES
		(:name, :label, :driver, :dsn, :private_key_path, :schema_name, :is_active,
		 :max_open_conns, :max_idle_conns, :conn_max_lifetime_ms, :conn_max_idle_time_ms,
		 :created_at, :updated_at)`

	result, err := s.db.NamedExecContext(ctx, q, serviceRowFromModel(svc))
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get service id: %w", err)
	}
	svc.ID = id
	return nil
}

// GetService returns a service by ID.
func (s *Store) GetService(ctx context.Context, id int64) (*model.ServiceConfig, error) {
	return s.getService(ctx, "id", id)
}

// GetServiceByName returns a service by its unique name.
func (s *Store) GetServiceByName(ctx context.Context, name string) (*model.ServiceConfig, error) {
	return s.getService(ctx, "name", name)
}

func (s *Store) getService(ctx context.Context, column string, value any) (*model.ServiceConfig, error) {
	var row serviceRow
	q := "SELECT " + serviceColumns + " FROM services WHERE " + column + " = ?"
	if err := s.db.GetContext(ctx, &row, q, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	svc := row.toModel()
	return &svc, nil
}

// ListServices returns all services ordered by name.
func (s *Store) ListServices(ctx context.Context) ([]model.ServiceConfig, error) {
	var rows []serviceRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT "+serviceColumns+" FROM services ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	services := make([]model.ServiceConfig, len(rows))
	for i, r := range rows {
		services[i] = r.toModel()
	}
	return services, nil
}

// UpdateService updates an existing service and refreshes UpdatedAt.
func (s *Store) UpdateService(ctx context.Context, svc *model.ServiceConfig) error {
	svc.UpdatedAt = time.Now().UTC()

	const q = `UPDATE services SET
		name = :name, label = :label, driver = :driver, dsn = :dsn, private_key_path = :private_key_path,
		schema_name = :schema_name, is_active = :is_active,
		max_open_conns = :max_open_conns, max_idle_conns = :max_idle_conns,
		conn_max_lifetime_ms = :conn_max_lifetime_ms, conn_max_idle_time_ms = :conn_max_idle_time_ms,
		updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, serviceRowFromModel(svc))
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	return mustAffect(result, "update service")
}

// DeleteService removes a service and its snapshots.
func (s *Store) DeleteService(ctx context.Context, id int64) error {
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_snapshots WHERE service_name = ?", svc.Name); err != nil {
		return fmt.Errorf("delete service snapshots: %w", err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM services WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if err := mustAffect(result, "delete service"); err != nil {
		return err
	}
	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// GetSetting returns the value stored under key, or ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	if err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting creates or replaces a setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	const q = `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a setting; a missing key is not an error.
func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}

// GeneratedAtKey is the settings key holding the time of a service's last
// generation run.
func GeneratedAtKey(service string) string {
	return "generated_at." + service
}

func mustAffect(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
