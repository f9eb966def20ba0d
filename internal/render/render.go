// Package render turns model descriptors into Lucid model source files.
package render

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/faucetdb/modelgen/internal/descriptor"
)

//go:embed templates/*.tpl
var templates embed.FS

// Extension is the suffix of generated model files.
const Extension = ".ts"

// ErrExists is returned by WriteAll when a target file is already present and
// overwriting was not requested.
var ErrExists = errors.New("model file already exists")

// ErrDuplicatePath is returned by WriteAll when two models map to one file.
var ErrDuplicatePath = errors.New("models share a file name")

type member struct {
	Decorator   string
	Declaration string
}

// members lists the class body in output order: columns, then relationships.
func members(m descriptor.Model) []member {
	out := make([]member, 0, len(m.Columns)+len(m.Relationships))
	for _, c := range m.Columns {
		out = append(out, member{Decorator: c.Decorator, Declaration: c.Declaration})
	}
	for _, d := range m.Relationships {
		out = append(out, member{Decorator: d.Decorator, Declaration: d.Declaration})
	}
	return out
}

// Renderer renders models with the embedded templates.
type Renderer struct {
	tpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tpl, err := template.New("").Funcs(template.FuncMap{"members": members}).ParseFS(templates, "templates/*.tpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// Render returns the source of a single model file.
func (r *Renderer) Render(m descriptor.Model) (string, error) {
	var w strings.Builder
	if err := r.tpl.ExecuteTemplate(&w, "model.tpl", m); err != nil {
		return "", fmt.Errorf("render %s: %w", m.Name, err)
	}
	return w.String(), nil
}

// Path returns where WriteAll places a model inside dir.
func Path(dir string, m descriptor.Model) string {
	return filepath.Join(dir, m.FileName+Extension)
}

// WriteAll renders every model into dir, creating it when needed. Nothing is
// written if two models share a target file or, unless overwrite is set, if
// any target file already exists.
// It returns the paths written.
func (r *Renderer) WriteAll(dir string, models []descriptor.Model, overwrite bool) ([]string, error) {
	targets := make(map[string]string, len(models))
	for _, m := range models {
		path := Path(dir, m)
		if prev, ok := targets[path]; ok {
			return nil, fmt.Errorf("%s: models %s and %s: %w", path, prev, m.Name, ErrDuplicatePath)
		}
		targets[path] = m.Name
	}

	if !overwrite {
		for _, m := range models {
			path := Path(dir, m)
			if _, err := os.Stat(path); err == nil {
				return nil, fmt.Errorf("%s: %w", path, ErrExists)
			} else if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("stat %s: %w", path, err)
			}
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	written := make([]string, 0, len(models))
	for _, m := range models {
		src, err := r.Render(m)
		if err != nil {
			return written, err
		}
		path := Path(dir, m)
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
