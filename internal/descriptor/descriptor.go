// Package descriptor assembles the per-model output of a generation run:
// classified columns, the relationship definitions attached to each model and
// the imports the model file needs.
package descriptor

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/faucetdb/modelgen/internal/catalog"
	"github.com/faucetdb/modelgen/internal/classify"
	"github.com/faucetdb/modelgen/internal/imports"
	"github.com/faucetdb/modelgen/internal/naming"
	"github.com/faucetdb/modelgen/internal/relation"
)

// Import paths referenced by generated Lucid models.
const (
	OrmPath       = "@adonisjs/lucid/orm"
	RelationsPath = "@adonisjs/lucid/types/relations"
	LuxonPath     = "luxon"
)

// Column is a model column ready for rendering.
type Column struct {
	Name         string                `json:"name"`
	Property     string                `json:"property"`
	DataType     string                `json:"data_type"`
	Semantic     classify.SemanticType `json:"semantic_type"`
	TSType       string                `json:"ts_type"`
	IsPrimaryKey bool                  `json:"is_primary_key"`
	IsNullable   bool                  `json:"is_nullable"`
	IsDateTime   bool                  `json:"is_date_time"`
	Decorator    string                `json:"decorator"`
	Declaration  string                `json:"declaration"`
}

// Option is one explicit decorator option, emitted only where the schema
// departs from the ORM's naming convention.
type Option struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Definition is a relationship as declared on one model.
type Definition struct {
	Key          relation.Key  `json:"key"`
	Kind         relation.Kind `json:"type"`
	Property     string        `json:"property"`
	RelatedModel string        `json:"related_model"`
	RelatedTable string        `json:"related_table"`
	Options      []Option      `json:"options,omitempty"`
	Decorator    string        `json:"decorator"`
	Declaration  string        `json:"declaration"`
}

// Model is the descriptor for one table.
type Model struct {
	Name      string `json:"name"`
	TableName string `json:"table_name"`
	FileName  string `json:"file_name"`
	// ExplicitTable is set when the table name is not the one the ORM would
	// derive from the model name.
	ExplicitTable bool             `json:"explicit_table,omitempty"`
	IsPivotTable  bool             `json:"is_pivot_table,omitempty"`
	Columns       []Column         `json:"columns"`
	Relationships []Definition     `json:"relationships"`
	Imports       []imports.Import `json:"imports"`
	Statements    []string         `json:"import_statements"`
}

// Result is the output of one generation run. Models holds only retained
// (non-pivot) models, ordered by table name.
type Result struct {
	Models []Model         `json:"models"`
	Graph  *relation.Graph `json:"graph"`
}

// Model returns the model with the given name, matching against the model
// name or its table name. An exact match wins over a case-insensitive one.
func (r *Result) Model(name string) (Model, bool) {
	matchers := []func(Model) bool{
		func(m Model) bool { return m.Name == name || m.TableName == name },
		func(m Model) bool { return strings.EqualFold(m.Name, name) || strings.EqualFold(m.TableName, name) },
	}
	for _, match := range matchers {
		if m, ok := lo.Find(r.Models, match); ok {
			return m, true
		}
	}
	return Model{}, false
}

// Build runs inference over cat and describes every retained model.
func Build(cat catalog.Catalog) *Result {
	g := relation.Infer(cat)
	return &Result{Models: Describe(cat, g), Graph: g}
}

// Describe builds a model for every uniquely named table in cat and drops
// those g collapsed into many-to-many relationships. Malformed tables keep
// their columns but carry no relationships.
func Describe(cat catalog.Catalog, g *relation.Graph) []Model {
	tables := lo.UniqBy(cat.Tables, func(t catalog.Table) string { return t.Name })
	tables = lo.Filter(tables, func(t catalog.Table, _ int) bool { return t.Name != "" })
	slices.SortFunc(tables, func(a, b catalog.Table) int { return strings.Compare(a.Name, b.Name) })

	models := make([]Model, 0, len(tables))
	for _, t := range tables {
		m := describeTable(t, g)
		if m.IsPivotTable {
			continue
		}
		models = append(models, m)
	}
	return models
}

func describeTable(t catalog.Table, g *relation.Graph) Model {
	name := g.ModelName(t.Name)
	m := Model{
		Name:          name,
		TableName:     t.Name,
		FileName:      naming.FileName(name),
		ExplicitTable: naming.TableName(name) != t.Name,
		IsPivotTable:  g.IsPivot(t.Name),
	}

	taken := make(map[string]bool)
	for _, c := range t.Columns {
		if c.Name == "" {
			continue
		}
		col := describeColumn(classify.Classify(c))
		taken[col.Property] = true
		m.Columns = append(m.Columns, col)
	}

	if !g.IsMalformed(t.Name) {
		for _, a := range g.Attached(t.Name) {
			d := define(a)
			d.Property = naming.Unique(taken, d.Property)
			taken[d.Property] = true
			d.Declaration = declaration(d)
			m.Relationships = append(m.Relationships, d)
		}
	}

	var set imports.Set
	set.Add(imports.Import{Name: "BaseModel", Path: OrmPath})
	set.Add(imports.Import{Name: "column", Path: OrmPath})
	if lo.SomeBy(m.Columns, func(c Column) bool { return c.IsDateTime }) {
		set.Add(imports.Import{Name: "DateTime", Path: LuxonPath})
	}
	for _, d := range m.Relationships {
		set.Add(imports.Import{Name: string(d.Kind), Path: OrmPath})
		set.Add(imports.Import{Name: d.Kind.Pascal(), Path: RelationsPath, IsType: true})
		if d.RelatedModel != m.Name {
			set.Add(imports.Import{
				Name:      d.RelatedModel,
				Path:      "./" + naming.FileName(d.RelatedModel) + ".js",
				IsDefault: true,
			})
		}
	}
	m.Imports = set.Imports()
	m.Statements = set.Statements()
	return m
}
