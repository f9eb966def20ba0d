// Package service ties the stores, the connector registry and the generation
// pipeline together for the CLI, the preview server and the MCP server.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/faucetdb/modelgen/internal/catalog"
	"github.com/faucetdb/modelgen/internal/config"
	"github.com/faucetdb/modelgen/internal/connector"
	"github.com/faucetdb/modelgen/internal/descriptor"
	"github.com/faucetdb/modelgen/internal/model"
	"github.com/faucetdb/modelgen/internal/relation"
	"github.com/faucetdb/modelgen/internal/render"
	"github.com/faucetdb/modelgen/internal/snapshot"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrServiceInactive = errors.New("service is disabled")
	ErrModelNotFound   = errors.New("model not found")
	ErrNoSnapshot      = errors.New("no snapshot saved; run generate first")
)

// Models answers model generation questions about registered services.
type Models struct {
	store    *config.Store
	registry *connector.Registry
	opts     catalog.Options
	renderer *render.Renderer
	logger   *slog.Logger
}

// New creates a Models service. opts is applied to every introspected
// catalog.
func New(store *config.Store, registry *connector.Registry, opts catalog.Options, logger *slog.Logger) (*Models, error) {
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Models{store: store, registry: registry, opts: opts, renderer: renderer, logger: logger}, nil
}

// Renderer returns the shared model renderer.
func (m *Models) Renderer() *render.Renderer { return m.renderer }

// Services lists the registered services.
func (m *Models) Services(ctx context.Context) ([]model.ServiceConfig, error) {
	return m.store.ListServices(ctx)
}

// Service returns one registered service.
func (m *Models) Service(ctx context.Context, name string) (*model.ServiceConfig, error) {
	svc, err := m.store.GetServiceByName(ctx, name)
	if errors.Is(err, config.ErrNotFound) {
		return nil, fmt.Errorf("%q: %w", name, ErrServiceNotFound)
	}
	return svc, err
}

// Connector returns the live connector of a service, connecting on first use.
func (m *Models) Connector(ctx context.Context, name string) (connector.Connector, error) {
	if conn, err := m.registry.Get(name); err == nil {
		return conn, nil
	}

	svc, err := m.Service(ctx, name)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, fmt.Errorf("%q: %w", name, ErrServiceInactive)
	}
	if err := m.registry.Connect(name, connector.FromService(*svc)); err != nil {
		return nil, err
	}
	m.logger.Debug("service connected", "service", name, "driver", svc.Driver)
	return m.registry.Get(name)
}

// Schema introspects the live schema of a service.
func (m *Models) Schema(ctx context.Context, name string) (*model.Schema, error) {
	conn, err := m.Connector(ctx, name)
	if err != nil {
		return nil, err
	}
	schema, err := conn.IntrospectSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("introspect %q: %w", name, err)
	}
	return schema, nil
}

// Catalog introspects a service and converts the result into a catalog.
func (m *Models) Catalog(ctx context.Context, name string) (catalog.Catalog, error) {
	schema, err := m.Schema(ctx, name)
	if err != nil {
		return catalog.Catalog{}, err
	}
	return catalog.FromSchema(schema, m.opts), nil
}

// Build runs inference and description for a service's live catalog.
func (m *Models) Build(ctx context.Context, name string) (*descriptor.Result, error) {
	cat, err := m.Catalog(ctx, name)
	if err != nil {
		return nil, err
	}
	return m.BuildCatalog(cat), nil
}

// BuildCatalog describes an already loaded catalog, logging the engine's
// diagnostics.
func (m *Models) BuildCatalog(cat catalog.Catalog) *descriptor.Result {
	res := descriptor.Build(cat)
	LogDiagnostics(m.logger, res.Graph.Diagnostics)
	return res
}

// Render returns the descriptor and source text of one model of a service.
// name matches a model or table name.
func (m *Models) Render(ctx context.Context, service, name string) (descriptor.Model, string, error) {
	res, err := m.Build(ctx, service)
	if err != nil {
		return descriptor.Model{}, "", err
	}
	md, ok := res.Model(name)
	if !ok {
		return descriptor.Model{}, "", fmt.Errorf("%q: %w", name, ErrModelNotFound)
	}
	src, err := m.renderer.Render(md)
	if err != nil {
		return descriptor.Model{}, "", err
	}
	return md, src, nil
}

// Generated reports the outcome of a generation run.
type Generated struct {
	Service       string                `json:"service,omitempty"`
	Files         []string              `json:"files"`
	Models        int                   `json:"models"`
	Relationships int                   `json:"relationships"`
	Pivots        []string              `json:"pivots"`
	Diagnostics   []relation.Diagnostic `json:"diagnostics"`
}

// Generate writes the models of a service into dir, then saves the catalog
// snapshot that later drift checks compare against.
func (m *Models) Generate(ctx context.Context, name, dir string, overwrite bool) (*Generated, error) {
	cat, err := m.Catalog(ctx, name)
	if err != nil {
		return nil, err
	}

	gen, err := m.GenerateCatalog(cat, dir, overwrite)
	if err != nil {
		return nil, err
	}
	gen.Service = name

	if err := m.store.ReplaceSnapshots(ctx, name, cat); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	if err := m.store.SetSetting(ctx, config.GeneratedAtKey(name), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	return gen, nil
}

// GenerateCatalog writes the models of an offline catalog into dir.
func (m *Models) GenerateCatalog(cat catalog.Catalog, dir string, overwrite bool) (*Generated, error) {
	res := m.BuildCatalog(cat)
	files, err := m.renderer.WriteAll(dir, res.Models, overwrite)
	if err != nil {
		return nil, err
	}
	m.logger.Info("models written", "dir", dir, "models", len(res.Models), "relationships", len(res.Graph.Relationships))
	return &Generated{
		Files:         files,
		Models:        len(res.Models),
		Relationships: len(res.Graph.Relationships),
		Pivots:        res.Graph.Pivots,
		Diagnostics:   res.Graph.Diagnostics,
	}, nil
}

// Check compares a service's saved snapshot with its live catalog.
func (m *Models) Check(ctx context.Context, name string) (snapshot.Report, error) {
	if _, err := m.Service(ctx, name); err != nil {
		return snapshot.Report{}, err
	}
	saved, err := m.store.ListSnapshots(ctx, name)
	if err != nil {
		return snapshot.Report{}, err
	}
	if len(saved) == 0 {
		return snapshot.Report{}, fmt.Errorf("%q: %w", name, ErrNoSnapshot)
	}
	live, err := m.Catalog(ctx, name)
	if err != nil {
		return snapshot.Report{}, err
	}
	return snapshot.Diff(name, saved, live), nil
}

// Close disconnects every service connected through m.
func (m *Models) Close() {
	m.registry.CloseAll()
}

// LogDiagnostics logs inference diagnostics: input the engine had to skip at
// warn level, the rest at debug.
func LogDiagnostics(logger *slog.Logger, diags []relation.Diagnostic) {
	for _, d := range diags {
		level := slog.LevelDebug
		switch d.Kind {
		case relation.MalformedTable, relation.DuplicateTable, relation.ModelNameCollision:
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, "inference diagnostic",
			"kind", d.Kind, "table", d.Table, "column", d.Column, "message", d.Message)
	}
}
