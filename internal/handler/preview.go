// Package handler serves the read-only preview API: what modelgen would
// generate for each registered service, without writing any files.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/faucetdb/modelgen/internal/descriptor"
	"github.com/faucetdb/modelgen/internal/model"
	"github.com/faucetdb/modelgen/internal/openapi"
	"github.com/faucetdb/modelgen/internal/render"
	"github.com/faucetdb/modelgen/internal/service"
)

// PreviewHandler serves the /api/v1 preview routes.
type PreviewHandler struct {
	models *service.Models
}

// NewPreviewHandler creates a PreviewHandler.
func NewPreviewHandler(models *service.Models) *PreviewHandler {
	return &PreviewHandler{models: models}
}

// ServiceSummary is a registered service without its credentials.
type ServiceSummary struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Driver   string `json:"driver"`
	Schema   string `json:"schema,omitempty"`
	IsActive bool   `json:"is_active"`
}

// ModelSource is a model descriptor with its rendered source.
type ModelSource struct {
	Model  descriptor.Model `json:"model"`
	Path   string           `json:"path"`
	Source string           `json:"source"`
}

// ListServices returns the registered services.
// GET /api/v1/services
func (h *PreviewHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	services, err := h.models.Services(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	summaries := lo.Map(services, func(s model.ServiceConfig, _ int) ServiceSummary {
		return ServiceSummary{Name: s.Name, Label: s.Label, Driver: s.Driver, Schema: s.Schema, IsActive: s.IsActive}
	})
	writeList(w, summaries, len(summaries), start)
}

// Schema returns the introspected schema of a service.
// GET /api/v1/{serviceName}/_schema
func (h *PreviewHandler) Schema(w http.ResponseWriter, r *http.Request) {
	schema, err := h.models.Schema(r.Context(), chi.URLParam(r, "serviceName"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

// ListModels returns every model descriptor of a service. With
// ?source=true each entry also carries its rendered source.
// GET /api/v1/{serviceName}/_models
func (h *PreviewHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, err := h.models.Build(r.Context(), chi.URLParam(r, "serviceName"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if !queryBool(r, "source") {
		writeList(w, res.Models, len(res.Models), start)
		return
	}

	out := make([]ModelSource, 0, len(res.Models))
	for _, m := range res.Models {
		src, err := h.models.Renderer().Render(m)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out = append(out, ModelSource{Model: m, Path: m.FileName + render.Extension, Source: src})
	}
	writeList(w, out, len(out), start)
}

// GetModel returns one model descriptor and its source. With ?format=ts
// only the source is written, as text.
// GET /api/v1/{serviceName}/_models/{modelName}
func (h *PreviewHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	m, src, err := h.models.Render(r.Context(), chi.URLParam(r, "serviceName"), chi.URLParam(r, "modelName"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "ts" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(src))
		return
	}
	writeJSON(w, http.StatusOK, ModelSource{Model: m, Path: m.FileName + render.Extension, Source: src})
}

// Relationships returns the inferred relationship graph with its
// diagnostics.
// GET /api/v1/{serviceName}/_relationships
func (h *PreviewHandler) Relationships(w http.ResponseWriter, r *http.Request) {
	res, err := h.models.Build(r.Context(), chi.URLParam(r, "serviceName"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Graph)
}

// Doc returns the OpenAPI document of a service's models.
// GET /api/v1/{serviceName}/_doc
func (h *PreviewHandler) Doc(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "serviceName")
	res, err := h.models.Build(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, openapi.Generate(name+" models", res.Models))
}

// Check reports drift between the last generation snapshot and the live
// schema.
// GET /api/v1/{serviceName}/_check
func (h *PreviewHandler) Check(w http.ResponseWriter, r *http.Request) {
	report, err := h.models.Check(r.Context(), chi.URLParam(r, "serviceName"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if report.AffectsRelationships {
		w.Header().Set("X-Schema-Drift", "relationships")
	} else if report.HasDrift() {
		w.Header().Set("X-Schema-Drift", "columns")
	} else {
		w.Header().Set("X-Schema-Drift", "none")
	}
	writeJSON(w, http.StatusOK, report)
}

func writeList(w http.ResponseWriter, resource any, count int, start time.Time) {
	writeJSON(w, http.StatusOK, model.ListResponse{
		Resource: resource,
		Meta: &model.ResponseMeta{
			Count:  count,
			TookMs: float64(time.Since(start).Microseconds()) / 1000.0,
		},
	})
}
