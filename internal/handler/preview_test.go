package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faucetdb/modelgen/internal/catalog"
	"github.com/faucetdb/modelgen/internal/config"
	"github.com/faucetdb/modelgen/internal/connector"
	"github.com/faucetdb/modelgen/internal/connector/sqlite"
	"github.com/faucetdb/modelgen/internal/model"
	"github.com/faucetdb/modelgen/internal/service"
)

const fixture = `
CREATE TABLE authors (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
CREATE TABLE books (id INTEGER PRIMARY KEY, author_id INTEGER NOT NULL REFERENCES authors(id), title TEXT NOT NULL);
`

// newTestRouter mounts the preview routes over a sqlite-backed "library"
// service.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "library.db")
	db, err := sqlx.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(fixture)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store, err := config.NewStore("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.CreateService(ctx, &model.ServiceConfig{
		Name: "library", Label: "Library", Driver: "sqlite", DSN: dbPath, IsActive: true,
	}))
	require.NoError(t, store.CreateService(ctx, &model.ServiceConfig{
		Name: "archive", Driver: "sqlite", DSN: dbPath, IsActive: false,
	}))

	registry := connector.NewRegistry()
	registry.RegisterDriver("sqlite", sqlite.New)
	models, err := service.New(store, registry, catalog.Options{}, nil)
	require.NoError(t, err)
	t.Cleanup(models.Close)

	h := NewPreviewHandler(models)
	r := chi.NewRouter()
	r.Get("/api/v1/services", h.ListServices)
	r.Route("/api/v1/{serviceName}", func(r chi.Router) {
		r.Get("/_schema", h.Schema)
		r.Get("/_models", h.ListModels)
		r.Get("/_models/{modelName}", h.GetModel)
		r.Get("/_relationships", h.Relationships)
		r.Get("/_doc", h.Doc)
		r.Get("/_check", h.Check)
	})
	return r
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func TestListServices(t *testing.T) {
	rr := get(t, newTestRouter(t), "/api/v1/services")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "library.db", "DSNs are never exposed")

	var resp struct {
		Resource []ServiceSummary   `json:"resource"`
		Meta     model.ResponseMeta `json:"meta"`
	}
	decode(t, rr, &resp)
	assert.Equal(t, 2, resp.Meta.Count)
	assert.Equal(t, "archive", resp.Resource[0].Name)
	assert.Equal(t, "library", resp.Resource[1].Name)
}

func TestSchema(t *testing.T) {
	rr := get(t, newTestRouter(t), "/api/v1/library/_schema")
	require.Equal(t, http.StatusOK, rr.Code)

	var schema model.Schema
	decode(t, rr, &schema)
	assert.Len(t, schema.Tables, 2)
}

func TestListModels(t *testing.T) {
	r := newTestRouter(t)

	rr := get(t, r, "/api/v1/library/_models")
	require.Equal(t, http.StatusOK, rr.Code)
	var plain struct {
		Resource []struct {
			Name string `json:"name"`
		} `json:"resource"`
	}
	decode(t, rr, &plain)
	require.Len(t, plain.Resource, 2)
	assert.Equal(t, "Author", plain.Resource[0].Name)

	rr = get(t, r, "/api/v1/library/_models?source=true")
	require.Equal(t, http.StatusOK, rr.Code)
	var withSource struct {
		Resource []ModelSource `json:"resource"`
	}
	decode(t, rr, &withSource)
	require.Len(t, withSource.Resource, 2)
	assert.Equal(t, "book.ts", withSource.Resource[1].Path)
	assert.Contains(t, withSource.Resource[1].Source, "@belongsTo(() => Author)")
}

func TestGetModel(t *testing.T) {
	r := newTestRouter(t)

	rr := get(t, r, "/api/v1/library/_models/Author")
	require.Equal(t, http.StatusOK, rr.Code)
	var ms ModelSource
	decode(t, rr, &ms)
	assert.Equal(t, "authors", ms.Model.TableName)
	assert.Contains(t, ms.Source, "@hasMany(() => Book)")

	rr = get(t, r, "/api/v1/library/_models/books?format=ts")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rr.Body.String(), "export default class Book extends BaseModel")

	rr = get(t, r, "/api/v1/library/_models/Publisher")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRelationships(t *testing.T) {
	rr := get(t, newTestRouter(t), "/api/v1/library/_relationships")
	require.Equal(t, http.StatusOK, rr.Code)

	var graph struct {
		Relationships []struct {
			Key struct {
				Table  string `json:"table"`
				Column string `json:"column"`
			} `json:"key"`
		} `json:"relationships"`
	}
	decode(t, rr, &graph)
	require.Len(t, graph.Relationships, 1)
	assert.Equal(t, "books", graph.Relationships[0].Key.Table)
	assert.Equal(t, "author_id", graph.Relationships[0].Key.Column)
}

func TestDoc(t *testing.T) {
	rr := get(t, newTestRouter(t), "/api/v1/library/_doc")
	require.Equal(t, http.StatusOK, rr.Code)

	var doc struct {
		OpenAPI    string `json:"openapi"`
		Components struct {
			Schemas map[string]json.RawMessage `json:"schemas"`
		} `json:"components"`
	}
	decode(t, rr, &doc)
	assert.Equal(t, "3.1.0", doc.OpenAPI)
	assert.Contains(t, doc.Components.Schemas, "Author")
	assert.Contains(t, doc.Components.Schemas, "Book")
}

func TestCheckWithoutSnapshot(t *testing.T) {
	rr := get(t, newTestRouter(t), "/api/v1/library/_check")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServiceErrors(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/missing/_models", http.StatusNotFound},
		{"/api/v1/missing/_schema", http.StatusNotFound},
		{"/api/v1/archive/_models", http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := get(t, r, tt.path)
			assert.Equal(t, tt.status, rr.Code)

			var resp model.ErrorResponse
			decode(t, rr, &resp)
			assert.Equal(t, tt.status, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}
