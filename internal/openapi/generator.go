// Package openapi exports generated model descriptors as OpenAPI component
// schemas, so API tooling can share the shapes the ORM models declare.
package openapi

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/faucetdb/modelgen/internal/descriptor"
	"github.com/faucetdb/modelgen/internal/relation"
)

// Version is the OpenAPI version of generated documents.
const Version = "3.1.0"

// Generate builds a document with one component schema per model. The
// document has no paths.
func Generate(title string, models []descriptor.Model) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:       title,
			Description: "Model schemas generated from the database catalog.",
			Version:     "1.0.0",
		},
		Paths: openapi3.NewPaths(),
	}

	components := openapi3.NewComponents()
	components.Schemas = make(openapi3.Schemas, len(models))
	doc.Components = &components

	for _, m := range models {
		doc.Components.Schemas[m.Name] = ModelSchema(m)
	}
	return doc
}

// ModelSchema converts one model. Columns become typed properties named
// like the model's properties; relationships become references to the
// related model, wrapped in an array for to-many kinds.
func ModelSchema(m descriptor.Model) *openapi3.SchemaRef {
	s := &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Title:      m.Name,
		Properties: make(openapi3.Schemas, len(m.Columns)+len(m.Relationships)),
		Extensions: map[string]any{"x-table": m.TableName},
	}

	for _, c := range m.Columns {
		s.Properties[c.Property] = &openapi3.SchemaRef{Value: columnSchema(c)}
		if !c.IsNullable {
			s.Required = append(s.Required, c.Property)
		}
	}
	for _, r := range m.Relationships {
		s.Properties[r.Property] = relationshipSchema(r)
	}
	return &openapi3.SchemaRef{Value: s}
}

// Ref returns the component reference of a model.
func Ref(modelName string) string {
	return "#/components/schemas/" + modelName
}

func columnSchema(c descriptor.Column) *openapi3.Schema {
	var s *openapi3.Schema
	if element, ok := strings.CutSuffix(strings.TrimSpace(c.DataType), "[]"); ok {
		s = &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: &openapi3.SchemaRef{Value: columnTypeSchema(MapDBType(element))},
		}
	} else {
		s = columnTypeSchema(MapDBType(c.DataType))
	}

	if c.IsNullable {
		types := append(*s.Type, "null")
		s.Type = &types
	}
	if c.Property != c.Name {
		s.Description = fmt.Sprintf("Column %s", c.Name)
	}
	if c.IsPrimaryKey {
		s.ReadOnly = true
	}
	return s
}

func columnTypeSchema(m TypeMapping) *openapi3.Schema {
	s := &openapi3.Schema{
		Type:   &openapi3.Types{m.Type},
		Format: m.Format,
	}
	if m.Type == "array" {
		s.Items = &openapi3.SchemaRef{Value: &openapi3.Schema{}}
	}
	return s
}

func relationshipSchema(d descriptor.Definition) *openapi3.SchemaRef {
	ref := &openapi3.SchemaRef{Ref: Ref(d.RelatedModel)}

	switch d.Kind {
	case relation.HasMany, relation.ManyToMany:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{
			Type:       &openapi3.Types{"array"},
			Items:      ref,
			Extensions: map[string]any{"x-relationship": string(d.Kind)},
		}}
	default:
		return ref
	}
}
