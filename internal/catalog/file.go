package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for catalog files that are neither YAML nor JSON.
var ErrUnknownFormat = errors.New("unknown catalog file format (expected .yaml, .yml or .json)")

// ReadFile loads a catalog snapshot. The format is chosen by file extension.
// Columns written without a table_name inherit the name of their table.
func ReadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog file: %w", err)
	}

	var cat Catalog
	switch format(path) {
	case "yaml":
		err = yaml.Unmarshal(data, &cat)
	case "json":
		err = json.Unmarshal(data, &cat)
	default:
		return Catalog{}, ErrUnknownFormat
	}
	if err != nil {
		return Catalog{}, fmt.Errorf("parse catalog file: %w", err)
	}

	for i := range cat.Tables {
		for j := range cat.Tables[i].Columns {
			if cat.Tables[i].Columns[j].TableName == "" {
				cat.Tables[i].Columns[j].TableName = cat.Tables[i].Name
			}
		}
	}
	return cat, nil
}

// WriteFile saves a catalog snapshot in the format implied by the extension.
func WriteFile(path string, cat Catalog) error {
	var (
		data []byte
		err  error
	)
	switch format(path) {
	case "yaml":
		data, err = yaml.Marshal(cat)
	case "json":
		data, err = json.MarshalIndent(cat, "", "  ")
	default:
		return ErrUnknownFormat
	}
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	}
	return ""
}
