package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faucetdb/modelgen/internal/descriptor"
	"github.com/faucetdb/modelgen/internal/render"
	"github.com/faucetdb/modelgen/internal/service"
)

const libraryCatalog = `tables:
  - name: authors
    columns:
      - {name: id, data_type: integer, is_primary_key: true}
      - {name: name, data_type: varchar}
  - name: books
    columns:
      - {name: id, data_type: integer, is_primary_key: true}
      - {name: author_id, data_type: integer, foreign_key_table: authors, foreign_key_column: id}
      - {name: title, data_type: varchar}
  - name: adonis_schema
    columns:
      - {name: id, data_type: integer, is_primary_key: true}
`

// run executes the command tree with a fresh data directory per test.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd("1.2.3", "abc123", "2026-01-01")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data-dir", filepath.Join(dir, "data")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeCatalog(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "library.yaml")
	require.NoError(t, os.WriteFile(path, []byte(libraryCatalog), 0o644))
	return path
}

func createDB(t *testing.T, path, sql string) {
	t.Helper()
	db, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(sql)
	require.NoError(t, err)
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, t.TempDir(), "version", "--json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "abc123", info["commit"])
}

func TestGenerateFromCatalog(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeCatalog(t, dir)
	outDir := filepath.Join(dir, "models")

	out, err := run(t, dir, "generate", "--catalog", catalogPath, "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 2 models with 1 relationships")

	book, err := os.ReadFile(filepath.Join(outDir, "book"+render.Extension))
	require.NoError(t, err)
	assert.Contains(t, string(book), "@belongsTo(() => Author)")

	author, err := os.ReadFile(filepath.Join(outDir, "author"+render.Extension))
	require.NoError(t, err)
	assert.Contains(t, string(author), "@hasMany(() => Book)")

	assert.NoFileExists(t, filepath.Join(outDir, "adonis_schema"+render.Extension))

	_, err = run(t, dir, "generate", "--catalog", catalogPath, "--out", outDir)
	require.ErrorIs(t, err, render.ErrExists)
	assert.Contains(t, err.Error(), "--overwrite")

	out, err = run(t, dir, "generate", "--catalog", catalogPath, "--out", outDir, "--overwrite", "--json")
	require.NoError(t, err)
	var gen service.Generated
	require.NoError(t, json.Unmarshal([]byte(out), &gen))
	assert.Equal(t, 2, gen.Models)
	assert.Len(t, gen.Files, 2)
}

func TestGenerateReportsWriteFailure(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeCatalog(t, dir)
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := run(t, dir, "generate", "--catalog", catalogPath, "--out", blocker, "--overwrite")
	require.Error(t, err)
	assert.ErrorContains(t, err, "create output dir")
}

func TestGenerateNeedsOneSource(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "generate")
	assert.ErrorContains(t, err, "specify a service name or --catalog")

	_, err = run(t, dir, "generate", "blog", "--catalog", writeCatalog(t, dir))
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestInspectCatalog(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeCatalog(t, dir)

	out, err := run(t, dir, "inspect", "--catalog", catalogPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Author")
	assert.Contains(t, out, "books.author_id")
	assert.Contains(t, out, "hasMany")

	saved := filepath.Join(dir, "copy.json")
	out, err = run(t, dir, "inspect", "--catalog", catalogPath, "--table", "books", "--json", "--save-catalog", saved)
	require.NoError(t, err)
	var res descriptor.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Models, 1)
	assert.Equal(t, "Book", res.Models[0].Name)
	assert.Len(t, res.Graph.Relationships, 1)
	assert.FileExists(t, saved)

	_, err = run(t, dir, "inspect", "--catalog", catalogPath, "--table", "missing")
	assert.ErrorContains(t, err, `no model for "missing"`)
}

func TestOpenAPICatalog(t *testing.T) {
	dir := t.TempDir()
	outFile := filepath.Join(dir, "models.json")

	out, err := run(t, dir, "openapi", "--catalog", writeCatalog(t, dir), "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2 schemas")

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var doc struct {
		OpenAPI    string `json:"openapi"`
		Components struct {
			Schemas map[string]any `json:"schemas"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "3.1.0", doc.OpenAPI)
	assert.Contains(t, doc.Components.Schemas, "Author")
	assert.Contains(t, doc.Components.Schemas, "Book")
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modelgen.yaml")

	_, err := run(t, dir, "config", "init", "--path", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = run(t, dir, "config", "init", "--path", path)
	assert.ErrorContains(t, err, "already exists")

	t.Setenv("MODELGEN_SERVER_PORT", "9191")
	out, err := run(t, dir, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# config file: "+path)
	assert.Contains(t, out, "port: 9191")
	assert.Contains(t, out, "output_dir: app/models")
}

func TestMissingConfigFileFails(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "--config", filepath.Join(dir, "nope.yaml"), "version")
	assert.ErrorContains(t, err, "read config")
}

func TestDBLifecycleAndDrift(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "blog.db")
	createDB(t, dbPath, `
CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL);
CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER REFERENCES users(id), title TEXT);
`)

	out, err := run(t, dir, "db", "add", "--name", "blog", "--driver", "sqlite", "--dsn", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, `Added service "blog"`)

	_, err = run(t, dir, "db", "add", "--name", "x", "--driver", "db2", "--dsn", "x")
	assert.ErrorContains(t, err, `unsupported driver "db2"`)

	out, err = run(t, dir, "db", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "blog")
	assert.Contains(t, out, "sqlite")

	out, err = run(t, dir, "db", "test", "blog")
	require.NoError(t, err)
	assert.Contains(t, out, "Connection successful (sqlite, 2 tables)")

	out, err = run(t, dir, "db", "schema", "blog", "--table", "posts")
	require.NoError(t, err)
	assert.Contains(t, out, `"referenced_table": "users"`)

	_, err = run(t, dir, "check", "blog")
	assert.ErrorIs(t, err, service.ErrNoSnapshot)

	_, err = run(t, dir, "generate", "blog", "--out", filepath.Join(dir, "models"))
	require.NoError(t, err)

	out, err = run(t, dir, "check", "blog", "--fail-on-drift")
	require.NoError(t, err)
	assert.Contains(t, out, "no drift")

	createDB(t, dbPath, `ALTER TABLE posts ADD COLUMN editor_id INTEGER REFERENCES users(id);`)

	out, err = run(t, dir, "check", "blog", "--fail-on-drift")
	assert.ErrorIs(t, err, errModelsStale)
	assert.Contains(t, out, "1 of 2 tables drifted")

	_, err = run(t, dir, "db", "disable", "blog")
	require.NoError(t, err)
	_, err = run(t, dir, "db", "test", "blog")
	assert.ErrorIs(t, err, service.ErrServiceInactive)

	_, err = run(t, dir, "db", "remove", "blog")
	require.NoError(t, err)
	out, err = run(t, dir, "db", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No services configured")
}
