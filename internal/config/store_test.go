package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/faucetdb/modelgen/internal/catalog"
	"github.com/faucetdb/modelgen/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore("") // in-memory
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestServiceCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	svc := &model.ServiceConfig{
		Name:     "testdb",
		Label:    "Test Database",
		Driver:   "postgres",
		DSN:      "postgres://localhost/test",
		Schema:   "public",
		IsActive: true,
		Pool:     model.DefaultPoolConfig(),
	}
	if err := s.CreateService(ctx, svc); err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if svc.ID == 0 {
		t.Fatal("expected non-zero ID after create")
	}

	got, err := s.GetService(ctx, svc.ID)
	if err != nil {
		t.Fatalf("GetService: %v", err)
	}
	if got.Name != "testdb" || got.Driver != "postgres" || got.Schema != "public" {
		t.Errorf("got %+v", got)
	}

	byName, err := s.GetServiceByName(ctx, "testdb")
	if err != nil {
		t.Fatalf("GetServiceByName: %v", err)
	}
	if byName.ID != svc.ID {
		t.Errorf("got ID %d, want %d", byName.ID, svc.ID)
	}

	svc.Label = "Updated Label"
	svc.PrivateKeyPath = "/keys/rsa.p8"
	if err := s.UpdateService(ctx, svc); err != nil {
		t.Fatalf("UpdateService: %v", err)
	}
	got, _ = s.GetService(ctx, svc.ID)
	if got.Label != "Updated Label" || got.PrivateKeyPath != "/keys/rsa.p8" {
		t.Errorf("after update got %+v", got)
	}

	if err := s.DeleteService(ctx, svc.ID); err != nil {
		t.Fatalf("DeleteService: %v", err)
	}
	if _, err := s.GetService(ctx, svc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestServiceNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetServiceByName(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetServiceByName: expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateService(ctx, &model.ServiceConfig{ID: 99, Name: "x", Driver: "sqlite"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateService: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteService(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteService: expected ErrNotFound, got %v", err)
	}
}

func TestServiceNameUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &model.ServiceConfig{Name: "app", Driver: "sqlite", DSN: "app.db"}
	if err := s.CreateService(ctx, first); err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	dup := &model.ServiceConfig{Name: "app", Driver: "sqlite", DSN: "other.db"}
	if err := s.CreateService(ctx, dup); err == nil {
		t.Error("expected duplicate name to fail")
	}
}

func TestListServicesOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"warehouse", "app", "billing"} {
		if err := s.CreateService(ctx, &model.ServiceConfig{Name: name, Driver: "sqlite", DSN: name + ".db"}); err != nil {
			t.Fatalf("CreateService(%s): %v", name, err)
		}
	}

	list, err := s.ListServices(ctx)
	if err != nil {
		t.Fatalf("ListServices: %v", err)
	}
	want := []string{"app", "billing", "warehouse"}
	if len(list) != len(want) {
		t.Fatalf("got %d services, want %d", len(list), len(want))
	}
	for i, svc := range list {
		if svc.Name != want[i] {
			t.Errorf("service %d: got %q, want %q", i, svc.Name, want[i])
		}
	}
}

func TestDeleteServiceDropsSnapshots(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	svc := &model.ServiceConfig{Name: "shop", Driver: "sqlite", DSN: "shop.db"}
	if err := s.CreateService(ctx, svc); err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	cat := catalog.Catalog{Tables: []catalog.Table{{Name: "users", Columns: []catalog.Column{
		{Name: "id", TableName: "users", DataType: "integer", IsPrimaryKey: true},
	}}}}
	if err := s.ReplaceSnapshots(ctx, "shop", cat); err != nil {
		t.Fatalf("ReplaceSnapshots: %v", err)
	}

	if err := s.DeleteService(ctx, svc.ID); err != nil {
		t.Fatalf("DeleteService: %v", err)
	}
	snaps, err := s.ListSnapshots(ctx, "shop")
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("expected snapshots to be removed, got %d", len(snaps))
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetSetting(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	key := GeneratedAtKey("shop")
	if key != "generated_at.shop" {
		t.Errorf("GeneratedAtKey = %q", key)
	}
	if err := s.SetSetting(ctx, key, "first"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := s.SetSetting(ctx, key, "second"); err != nil {
		t.Fatalf("SetSetting (overwrite): %v", err)
	}
	v, err := s.GetSetting(ctx, key)
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if v != "second" {
		t.Errorf("got %q, want %q", v, "second")
	}

	if err := s.DeleteSetting(ctx, key); err != nil {
		t.Fatalf("DeleteSetting: %v", err)
	}
	if err := s.DeleteSetting(ctx, key); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
}

func TestPoolConfigRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	svc := &model.ServiceConfig{
		Name:   "pooltest",
		Driver: "postgres",
		DSN:    "postgres://localhost/test",
		Pool: model.PoolConfig{
			MaxOpenConns:    50,
			MaxIdleConns:    10,
			ConnMaxLifetime: 10 * time.Minute,
			ConnMaxIdleTime: 2 * time.Minute,
		},
	}
	if err := s.CreateService(ctx, svc); err != nil {
		t.Fatalf("CreateService: %v", err)
	}

	got, err := s.GetService(ctx, svc.ID)
	if err != nil {
		t.Fatalf("GetService: %v", err)
	}
	if got.Pool != svc.Pool {
		t.Errorf("pool: got %+v, want %+v", got.Pool, svc.Pool)
	}
}

func TestNewStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.SetSetting(ctx, "k", "v"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	s.Close()

	// Reopening runs the migrations again and keeps the data.
	s, err = NewStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if v, err := s.GetSetting(ctx, "k"); err != nil || v != "v" {
		t.Errorf("GetSetting after reopen = %q, %v", v, err)
	}
}
