package config

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/faucetdb/modelgen/internal/catalog"
	"github.com/faucetdb/modelgen/internal/snapshot"
)

// ReplaceSnapshots stores cat as the snapshot of serviceName, dropping any
// table the previous snapshot had that cat no longer has.
func (s *Store) ReplaceSnapshots(ctx context.Context, serviceName string, cat catalog.Catalog) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_snapshots WHERE service_name = ?", serviceName); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}

	now := time.Now().UTC()
	const q = `INSERT INTO schema_snapshots (service_name, table_name, table_json, taken_at)
		VALUES (?, ?, ?, ?)`
	for _, t := range cat.Tables {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal table %q: %w", t.Name, err)
		}
		if _, err := tx.ExecContext(ctx, q, serviceName, t.Name, string(data), now); err != nil {
			return fmt.Errorf("save snapshot of %q: %w", t.Name, err)
		}
	}
	return tx.Commit()
}

// SaveSnapshot creates or replaces the snapshot of a single table.
func (s *Store) SaveSnapshot(ctx context.Context, serviceName string, t catalog.Table) (*snapshot.Snapshot, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal table: %w", err)
	}

	now := time.Now().UTC()
	const q = `INSERT INTO schema_snapshots (service_name, table_name, table_json, taken_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(service_name, table_name) DO UPDATE SET
			table_json = excluded.table_json,
			taken_at = excluded.taken_at`
	if _, err := s.db.ExecContext(ctx, q, serviceName, t.Name, string(data), now); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return s.GetSnapshot(ctx, serviceName, t.Name)
}

// GetSnapshot returns the snapshot of one table.
func (s *Store) GetSnapshot(ctx context.Context, serviceName, tableName string) (*snapshot.Snapshot, error) {
	rows, err := s.selectSnapshots(ctx, "WHERE service_name = ? AND table_name = ?", serviceName, tableName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ListSnapshots returns a service's snapshots ordered by table name.
func (s *Store) ListSnapshots(ctx context.Context, serviceName string) ([]snapshot.Snapshot, error) {
	return s.selectSnapshots(ctx, "WHERE service_name = ? ORDER BY table_name", serviceName)
}

// SnapshotCatalog rebuilds the catalog saved for a service, in table name
// order. It returns ErrNotFound when nothing was saved.
func (s *Store) SnapshotCatalog(ctx context.Context, serviceName string) (catalog.Catalog, error) {
	snaps, err := s.ListSnapshots(ctx, serviceName)
	if err != nil {
		return catalog.Catalog{}, err
	}
	if len(snaps) == 0 {
		return catalog.Catalog{}, ErrNotFound
	}
	cat := catalog.Catalog{Tables: make([]catalog.Table, len(snaps))}
	for i, snap := range snaps {
		cat.Tables[i] = snap.Table
	}
	return cat, nil
}

// DeleteServiceSnapshots removes every snapshot of a service and returns
// how many were removed.
func (s *Store) DeleteServiceSnapshots(ctx context.Context, serviceName string) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM schema_snapshots WHERE service_name = ?", serviceName)
	if err != nil {
		return 0, fmt.Errorf("delete service snapshots: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

func (s *Store) selectSnapshots(ctx context.Context, where string, args ...any) ([]snapshot.Snapshot, error) {
	var rows []snapshot.Snapshot
	q := "SELECT id, service_name, table_name, table_json, taken_at FROM schema_snapshots " + where
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	for i := range rows {
		if err := json.Unmarshal([]byte(rows[i].TableJSON), &rows[i].Table); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot of %s: %w", rows[i].TableName, err)
		}
	}
	return rows, nil
}
