package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/lo"

	"github.com/faucetdb/modelgen/internal/render"
)

const (
	servicesURI       = "modelgen://services"
	modelsURIPrefix   = "modelgen://models/"
	modelsURITemplate = modelsURIPrefix + "{service}"
)

func (s *MCPServer) registerResources(srv *server.MCPServer) {
	srv.AddResource(
		mcp.NewResource(
			servicesURI,
			"Registered Database Services",
			mcp.WithResourceDescription("Database services registered with modelgen, with driver and active status."),
			mcp.WithMIMEType("application/json"),
		),
		s.handleServicesResource,
	)

	srv.AddResourceTemplate(
		mcp.NewResourceTemplate(
			modelsURITemplate,
			"Generated Models",
			mcp.WithTemplateDescription(
				"Every Lucid model modelgen would generate for a service, "+
					"with its descriptor, target path and rendered source.",
			),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleModelsResource,
	)
}

func (s *MCPServer) handleServicesResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	services, err := s.models.Services(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return jsonContents(servicesURI, lo.Map(services, toServiceInfo))
}

func (s *MCPServer) handleModelsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	serviceName, ok := strings.CutPrefix(uri, modelsURIPrefix)
	if !ok || serviceName == "" {
		return nil, fmt.Errorf("invalid models URI %q: expected %s", uri, modelsURITemplate)
	}

	res, err := s.models.Build(ctx, serviceName)
	if err != nil {
		return nil, fmt.Errorf("build models for %q: %w", serviceName, err)
	}

	renderer := s.models.Renderer()
	out := make([]renderedModel, 0, len(res.Models))
	for _, m := range res.Models {
		src, err := renderer.Render(m)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", m.Name, err)
		}
		out = append(out, renderedModel{Model: m, Path: render.Path("", m), Source: src})
	}
	return jsonContents(uri, out)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
