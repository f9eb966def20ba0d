package relation

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/samber/lo"

	"github.com/faucetdb/modelgen/internal/catalog"
	"github.com/faucetdb/modelgen/internal/classify"
	"github.com/faucetdb/modelgen/internal/naming"
)

// edge is a resolved belongs-to edge: Table.Column references
// Target.TargetColumn.
type edge struct {
	Table        string
	Column       string
	Target       string
	TargetColumn string
}

func (e edge) key() Key { return Key{Table: e.Table, Column: e.Column} }

// pivotMatch is a confirmed join table and the two edges it collapses into.
type pivotMatch struct {
	Table  string
	Parent edge
	Child  edge
}

// Infer builds the relationship graph for a catalog.
//
// Every identifier-style foreign key becomes a belongs-to edge whose inverse
// is always has-many. Tables named as the join of two other tables and
// holding a foreign key to each collapse into a single many-to-many
// relationship and drop out of the model set. Inference never fails: dangling
// references, malformed tables and discarded pivot columns are reported as
// diagnostics.
func Infer(cat catalog.Catalog) *Graph {
	g := newGraph()

	tables := g.validTables(cat)
	byName := lo.SliceToMap(tables, func(t catalog.Table) (string, catalog.Table) { return t.Name, t })
	names := lo.Uniq(cat.TableNames())

	edges := make(map[string][]edge, len(tables))
	for _, t := range tables {
		edges[t.Name] = g.collectEdges(t, byName)
	}

	pivots := make(map[string]pivotMatch)
	for _, t := range tables {
		if m, ok := detectPivot(t.Name, names, edges[t.Name]); ok {
			pivots[t.Name] = m
		}
	}

	g.nameModels(names, pivots)

	rels := make(map[Key]Relationship)
	add := func(r Relationship) {
		if _, exists := rels[r.Key]; !exists {
			rels[r.Key] = r
		}
	}

	for _, t := range tables {
		if m, ok := pivots[t.Name]; ok {
			if r, ok := g.collapse(m, pivots); ok {
				add(r)
			}
			g.reportDiscarded(t, m, edges[t.Name])
			continue
		}
		for _, e := range edges[t.Name] {
			if _, isPivot := pivots[e.Target]; isPivot {
				g.diagnose(PivotEndpoint, e.Table, e.Column, fmt.Sprintf("references pivot table %q", e.Target))
				continue
			}
			add(g.belongsTo(e))
		}
	}

	g.finish(rels, lo.Keys(pivots))
	return g
}

// nameModels gives every table that becomes a model a distinct model name,
// and so a distinct file name. Tables are named in sorted order; a later
// table whose conventional name is taken gets a numeric suffix.
func (g *Graph) nameModels(names []string, pivots map[string]pivotMatch) {
	sorted := slices.Clone(names)
	slices.Sort(sorted)

	owner := make(map[string]string, len(sorted))
	taken := make(map[string]bool, len(sorted))
	files := make(map[string]bool, len(sorted))
	for _, table := range sorted {
		if table == "" {
			continue
		}
		if _, isPivot := pivots[table]; isPivot {
			continue
		}
		base := naming.ModelName(table)
		name := base
		for counter := 1; taken[name] || files[naming.FileName(name)]; counter++ {
			name = base + strconv.Itoa(counter)
		}
		if name != base {
			g.diagnose(ModelNameCollision, table, "",
				fmt.Sprintf("model name %q already used by table %q; named %q", base, owner[base], name))
		}
		owner[name] = table
		taken[name] = true
		files[naming.FileName(name)] = true
		g.models[table] = name
	}
}

// validTables returns the first table of each name that passes validation.
// Malformed and duplicate tables are diagnosed and left out of inference.
func (g *Graph) validTables(cat catalog.Catalog) []catalog.Table {
	seen := make(map[string]bool, len(cat.Tables))
	valid := make([]catalog.Table, 0, len(cat.Tables))
	for _, t := range cat.Tables {
		if seen[t.Name] {
			g.diagnose(DuplicateTable, t.Name, "", "table name already defined; later definition skipped")
			continue
		}
		seen[t.Name] = true

		if err := t.Validate(); err != nil {
			g.malformed[t.Name] = true
			g.diagnose(MalformedTable, t.Name, "", err.Error())
			continue
		}
		valid = append(valid, t)
	}
	return valid
}

// collectEdges resolves every identifier foreign key of t. Unresolvable
// targets are dropped.
func (g *Graph) collectEdges(t catalog.Table, byName map[string]catalog.Table) []edge {
	var out []edge
	for _, c := range t.Columns {
		if !classify.IsIdentifierForeignKey(c) {
			continue
		}
		target, ok := byName[c.ForeignKeyTable]
		if !ok {
			g.diagnose(DanglingReference, t.Name, c.Name, fmt.Sprintf("table %q is not in the catalog", c.ForeignKeyTable))
			continue
		}
		if _, ok := target.Column(c.ForeignKeyColumn); !ok {
			g.diagnose(DanglingReference, t.Name, c.Name, fmt.Sprintf("column %q is not in table %q", c.ForeignKeyColumn, c.ForeignKeyTable))
			continue
		}
		out = append(out, edge{
			Table:        t.Name,
			Column:       c.Name,
			Target:       c.ForeignKeyTable,
			TargetColumn: c.ForeignKeyColumn,
		})
	}
	return out
}

// detectPivot confirms a name match with the table's own edges: one edge must
// reference the prefix table and a different edge the suffix table.
func detectPivot(table string, names []string, edges []edge) (pivotMatch, bool) {
	if len(edges) < 2 {
		return pivotMatch{}, false
	}
	prefix, suffix, ok := MatchPivot(table, names)
	if !ok {
		return pivotMatch{}, false
	}

	parent, ok := lo.Find(edges, func(e edge) bool { return e.Target == prefix })
	if !ok {
		return pivotMatch{}, false
	}
	child, ok := lo.Find(edges, func(e edge) bool { return e.Target == suffix && e.Column != parent.Column })
	if !ok {
		return pivotMatch{}, false
	}
	return pivotMatch{Table: table, Parent: parent, Child: child}, true
}

// collapse replaces a pivot's two edges with one many-to-many relationship
// between the tables they reference.
func (g *Graph) collapse(m pivotMatch, pivots map[string]pivotMatch) (Relationship, bool) {
	for _, e := range []edge{m.Parent, m.Child} {
		if _, isPivot := pivots[e.Target]; isPivot {
			g.diagnose(PivotEndpoint, e.Table, e.Column, fmt.Sprintf("references pivot table %q", e.Target))
			return Relationship{}, false
		}
	}
	return Relationship{
		Key: m.Parent.key(),
		Parent: Side{
			Kind:   ManyToMany,
			Model:  g.ModelName(m.Parent.Target),
			Table:  m.Parent.Target,
			Column: m.Parent.TargetColumn,
		},
		Child: Side{
			Kind:   ManyToMany,
			Model:  g.ModelName(m.Child.Target),
			Table:  m.Child.Target,
			Column: m.Child.TargetColumn,
		},
		Pivot: &Pivot{
			Table:        m.Table,
			ParentColumn: m.Parent.Column,
			ChildColumn:  m.Child.Column,
		},
	}, true
}

// reportDiscarded records pivot columns that no generated relationship
// carries: payload columns and any extra foreign keys.
func (g *Graph) reportDiscarded(t catalog.Table, m pivotMatch, edges []edge) {
	extra := lo.SliceToMap(edges, func(e edge) (string, edge) { return e.Column, e })
	for _, c := range t.Columns {
		if c.IsPrimaryKey || c.Name == m.Parent.Column || c.Name == m.Child.Column {
			continue
		}
		if e, ok := extra[c.Name]; ok {
			g.diagnose(PivotColumnDiscarded, t.Name, c.Name, fmt.Sprintf("foreign key to %q dropped with pivot table", e.Target))
			continue
		}
		g.diagnose(PivotColumnDiscarded, t.Name, c.Name, "payload column dropped with pivot table")
	}
}

func (g *Graph) belongsTo(e edge) Relationship {
	return Relationship{
		Key: e.key(),
		Parent: Side{
			Kind:   HasMany,
			Model:  g.ModelName(e.Target),
			Table:  e.Target,
			Column: e.TargetColumn,
		},
		Child: Side{
			Kind:   BelongsTo,
			Model:  g.ModelName(e.Table),
			Table:  e.Table,
			Column: e.Column,
		},
	}
}

// finish freezes the graph: relationships ordered by key, pivots by name.
func (g *Graph) finish(rels map[Key]Relationship, pivots []string) {
	keys := lo.Keys(rels)
	slices.SortFunc(keys, Key.Compare)

	g.Relationships = make([]Relationship, 0, len(keys))
	for _, k := range keys {
		g.Relationships = append(g.Relationships, rels[k])
	}

	slices.Sort(pivots)
	g.Pivots = pivots
	for _, p := range pivots {
		g.pivots[p] = true
	}

	slices.SortFunc(g.Diagnostics, compareDiagnostics)
	g.index()
}
