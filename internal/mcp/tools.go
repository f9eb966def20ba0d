package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/lo"

	"github.com/faucetdb/modelgen/internal/descriptor"
	"github.com/faucetdb/modelgen/internal/model"
	"github.com/faucetdb/modelgen/internal/relation"
	"github.com/faucetdb/modelgen/internal/render"
	"github.com/faucetdb/modelgen/internal/service"
)

func (s *MCPServer) registerTools(srv *server.MCPServer) {
	srv.AddTool(
		mcp.NewTool("modelgen_list_services",
			mcp.WithDescription(
				"List the database services registered with modelgen. Returns each "+
					"service's name, driver and active status. Call this first to find "+
					"the service names the other tools expect.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleListServices,
	)

	srv.AddTool(
		mcp.NewTool("modelgen_describe_schema",
			mcp.WithDescription(
				"Introspect the schema of a service: tables, views, columns with their "+
					"types and nullability, primary keys and foreign keys. Pass table "+
					"to describe a single table.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("service",
				mcp.Required(),
				mcp.Description("Name of the database service"),
			),
			mcp.WithString("table",
				mcp.Description("Optional table name; omit to describe every table"),
			),
		),
		withService(s.handleDescribeSchema),
	)

	srv.AddTool(
		mcp.NewTool("modelgen_infer_relationships",
			mcp.WithDescription(
				"Infer the relationship graph of a service from its foreign keys: "+
					"belongsTo, hasMany and manyToMany (through detected pivot tables). "+
					"Also returns the detected pivot tables and any diagnostics about "+
					"tables or foreign keys that were skipped. Pass table to list only "+
					"the relationships of that table's model.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("service",
				mcp.Required(),
				mcp.Description("Name of the database service"),
			),
			mcp.WithString("table",
				mcp.Description("Optional table name to filter by"),
			),
		),
		withService(s.handleInferRelationships),
	)

	srv.AddTool(
		mcp.NewTool("modelgen_render_model",
			mcp.WithDescription(
				"Render the Lucid model source for one table of a service, exactly as "+
					"the generate command would write it. Nothing is written to disk.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("service",
				mcp.Required(),
				mcp.Description("Name of the database service"),
			),
			mcp.WithString("model",
				mcp.Required(),
				mcp.Description("Model name (e.g. User) or table name (e.g. users)"),
			),
		),
		withService(s.handleRenderModel),
	)

	srv.AddTool(
		mcp.NewTool("modelgen_check_drift",
			mcp.WithDescription(
				"Compare the live schema of a service with the snapshot saved by the "+
					"last generate run. Reports added, removed and changed tables and "+
					"columns, and whether any change affects relationships, meaning "+
					"the models should be regenerated.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("service",
				mcp.Required(),
				mcp.Description("Name of the database service"),
			),
		),
		withService(s.handleCheckDrift),
	)
}

// serviceInfo is a registered service without its credentials.
type serviceInfo struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Driver   string `json:"driver"`
	Schema   string `json:"schema,omitempty"`
	IsActive bool   `json:"is_active"`
}

func toServiceInfo(svc model.ServiceConfig, _ int) serviceInfo {
	return serviceInfo{
		Name:     svc.Name,
		Label:    svc.Label,
		Driver:   svc.Driver,
		Schema:   svc.Schema,
		IsActive: svc.IsActive,
	}
}

func (s *MCPServer) handleListServices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	services, err := s.models.Services(ctx)
	if err != nil {
		return toolError("failed to list services: %v", err)
	}
	return jsonResult(map[string]any{
		"services": lo.Map(services, toServiceInfo),
		"count":    len(services),
	})
}

func (s *MCPServer) handleDescribeSchema(ctx context.Context, request mcp.CallToolRequest, serviceName string) (*mcp.CallToolResult, error) {

	schema, err := s.models.Schema(ctx, serviceName)
	if err != nil {
		return s.serviceError(serviceName, err)
	}

	tableName := request.GetString("table", "")
	if tableName == "" {
		return jsonResult(schema)
	}
	table, ok := schema.Table(tableName)
	if !ok {
		return toolError("table %q not found in service %q", tableName, serviceName)
	}
	return jsonResult(table)
}

// relationshipsResult is the relationship graph, optionally narrowed to one
// table.
type relationshipsResult struct {
	Service       string                  `json:"service"`
	Table         string                  `json:"table,omitempty"`
	Relationships []relation.Relationship `json:"relationships"`
	Pivots        []string                `json:"pivots"`
	Diagnostics   []relation.Diagnostic   `json:"diagnostics"`
}

func (s *MCPServer) handleInferRelationships(ctx context.Context, request mcp.CallToolRequest, serviceName string) (*mcp.CallToolResult, error) {

	res, err := s.models.Build(ctx, serviceName)
	if err != nil {
		return s.serviceError(serviceName, err)
	}
	graph := res.Graph

	out := relationshipsResult{
		Service:       serviceName,
		Relationships: graph.Relationships,
		Pivots:        graph.Pivots,
		Diagnostics:   graph.Diagnostics,
	}

	if table := request.GetString("table", ""); table != "" {
		m, ok := res.Model(table)
		if !ok {
			if graph.IsPivot(table) {
				return toolError("%q is a pivot table; its relationships are the manyToMany edges that list it as pivot", table)
			}
			return toolError("no model for table %q in service %q", table, serviceName)
		}
		out.Table = m.TableName
		out.Relationships = lo.Map(graph.Attached(m.TableName), func(a relation.Attachment, _ int) relation.Relationship {
			return a.Relationship
		})
		out.Diagnostics = lo.Filter(graph.Diagnostics, func(d relation.Diagnostic, _ int) bool {
			return d.Table == m.TableName
		})
	}

	return jsonResult(out)
}

// renderedModel is a model descriptor with its source and the path
// generate would write it to.
type renderedModel struct {
	Model  descriptor.Model `json:"model"`
	Path   string           `json:"path"`
	Source string           `json:"source"`
}

func (s *MCPServer) handleRenderModel(ctx context.Context, request mcp.CallToolRequest, serviceName string) (*mcp.CallToolResult, error) {
	name := request.GetString("model", "")
	if name == "" {
		return toolError("missing required parameter %q", "model")
	}

	md, src, err := s.models.Render(ctx, serviceName, name)
	if err != nil {
		if errors.Is(err, service.ErrModelNotFound) {
			return toolError("no model %q in service %q; pivot tables have no model of their own", name, serviceName)
		}
		return s.serviceError(serviceName, err)
	}
	return jsonResult(renderedModel{Model: md, Path: render.Path("", md), Source: src})
}

func (s *MCPServer) handleCheckDrift(ctx context.Context, request mcp.CallToolRequest, serviceName string) (*mcp.CallToolResult, error) {

	report, err := s.models.Check(ctx, serviceName)
	if err != nil {
		if errors.Is(err, service.ErrNoSnapshot) {
			return toolError("service %q has no snapshot; run generate first", serviceName)
		}
		return s.serviceError(serviceName, err)
	}
	return jsonResult(report)
}

// serviceError turns a service lookup or introspection failure into a tool
// error result, listing the known services when the name was wrong.
func (s *MCPServer) serviceError(serviceName string, err error) (*mcp.CallToolResult, error) {
	s.logger.Debug("mcp tool failed", "service", serviceName, "error", err)
	if errors.Is(err, service.ErrServiceNotFound) {
		services, listErr := s.models.Services(context.Background())
		if listErr == nil {
			names := lo.Map(services, func(svc model.ServiceConfig, _ int) string { return svc.Name })
			return toolError("service %q not found (available: %v)", serviceName, names)
		}
		return toolError("service %q not found", serviceName)
	}
	if errors.Is(err, service.ErrServiceInactive) {
		return toolError("service %q is inactive", serviceName)
	}
	return toolError("service %q: %v", serviceName, err)
}
