package relation

import "github.com/faucetdb/modelgen/internal/naming"

// Graph is the immutable result of one inference run. Relationships are held
// once, in key order, and indexed by the tables they touch.
type Graph struct {
	Relationships []Relationship `json:"relationships"`
	Pivots        []string       `json:"pivots"`
	Diagnostics   []Diagnostic   `json:"diagnostics"`

	byTable   map[string][]int
	pivots    map[string]bool
	malformed map[string]bool
	models    map[string]string
}

func newGraph() *Graph {
	return &Graph{
		Diagnostics: []Diagnostic{},
		byTable:     make(map[string][]int),
		pivots:      make(map[string]bool),
		malformed:   make(map[string]bool),
		models:      make(map[string]string),
	}
}

func (g *Graph) diagnose(kind DiagnosticKind, table, column, msg string) {
	g.Diagnostics = append(g.Diagnostics, Diagnostic{Kind: kind, Table: table, Column: column, Message: msg})
}

func (g *Graph) index() {
	for i, r := range g.Relationships {
		g.byTable[r.Parent.Table] = append(g.byTable[r.Parent.Table], i)
		if !r.IsSelfReferencing() {
			g.byTable[r.Child.Table] = append(g.byTable[r.Child.Table], i)
		}
	}
}

// IsPivot reports whether table was collapsed into a many-to-many relationship.
func (g *Graph) IsPivot(table string) bool { return g.pivots[table] }

// ModelName returns the model name assigned to table. Tables the graph did
// not name fall back to the naming convention.
func (g *Graph) ModelName(table string) string {
	if name, ok := g.models[table]; ok {
		return name
	}
	return naming.ModelName(table)
}

// IsMalformed reports whether table failed validation.
func (g *Graph) IsMalformed(table string) bool { return g.malformed[table] }

// Relationship returns the relationship with the given key.
func (g *Graph) Relationship(key Key) (Relationship, bool) {
	for _, r := range g.Relationships {
		if r.Key == key {
			return r, true
		}
	}
	return Relationship{}, false
}

// Attached returns the relationships touching table, seen from that table's
// side, in key order. A self-referencing foreign key is attached once, from
// its belongs-to side.
func (g *Graph) Attached(table string) []Attachment {
	idx := g.byTable[table]
	out := make([]Attachment, 0, len(idx))
	for _, i := range idx {
		r := g.Relationships[i]
		isParent := r.Parent.Table == table
		if r.IsSelfReferencing() && r.Child.Kind == BelongsTo {
			isParent = false
		}

		a := Attachment{Relationship: r, IsParent: isParent}
		if isParent {
			a.Own, a.Related = r.Parent, r.Child
		} else {
			a.Own, a.Related = r.Child, r.Parent
		}
		out = append(out, a)
	}
	return out
}
