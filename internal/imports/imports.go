// Package imports collects the external references a generated model needs
// and renders them as grouped import statements.
package imports

import (
	"strings"
)

// Import is one referenced name from a module path.
type Import struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	IsDefault bool   `json:"is_default,omitempty"`
	IsType    bool   `json:"is_type,omitempty"`
}

func (i Import) id() string { return i.Name + "@" + i.Path }

// Set is an insertion-ordered, deduplicated collection of imports. The zero
// value is ready to use.
type Set struct {
	order []string
	items map[string]*Import
}

// Add records an import. A name requested both as type-only and as a full
// import is kept as a full import, whatever the order of the requests.
func (s *Set) Add(imp Import) {
	if s.items == nil {
		s.items = make(map[string]*Import)
	}
	id := imp.id()
	if existing, ok := s.items[id]; ok {
		if existing.IsType && !imp.IsType {
			existing.IsType = false
		}
		if imp.IsDefault {
			existing.IsDefault = true
		}
		return
	}
	s.items[id] = &imp
	s.order = append(s.order, id)
}

// Imports returns the merged imports in first-seen order.
func (s *Set) Imports() []Import {
	out := make([]Import, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

// Group is every import sharing one path.
type Group struct {
	Path    string
	Default *Import
	Named   []Import
}

// IsTypeOnly reports whether nothing in the group is needed at runtime.
func (g Group) IsTypeOnly() bool {
	if g.Default != nil && !g.Default.IsType {
		return false
	}
	for _, n := range g.Named {
		if !n.IsType {
			return false
		}
	}
	return true
}

// Groups returns the imports grouped by path, paths in first-seen order. A
// group holds at most one default import; further defaults from the same
// path are dropped.
func (s *Set) Groups() []Group {
	var groups []Group
	index := make(map[string]int)
	for _, imp := range s.Imports() {
		i, ok := index[imp.Path]
		if !ok {
			i = len(groups)
			index[imp.Path] = i
			groups = append(groups, Group{Path: imp.Path})
		}
		if imp.IsDefault {
			if groups[i].Default == nil {
				d := imp
				groups[i].Default = &d
			}
			continue
		}
		groups[i].Named = append(groups[i].Named, imp)
	}
	return groups
}

// Statements renders one import statement per path.
//
// A group that is entirely type-only becomes "import type ..."; otherwise
// type-only named imports are marked inline.
func (s *Set) Statements() []string {
	groups := s.Groups()
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Statement())
	}
	return out
}

// Statement renders the group as a single import statement.
func (g Group) Statement() string {
	typeOnly := g.IsTypeOnly() && !(g.Default != nil && len(g.Named) > 0)

	var parts []string
	if g.Default != nil {
		parts = append(parts, g.Default.Name)
	}
	if len(g.Named) > 0 {
		names := make([]string, len(g.Named))
		for i, n := range g.Named {
			if n.IsType && !typeOnly {
				names[i] = "type " + n.Name
				continue
			}
			names[i] = n.Name
		}
		parts = append(parts, "{ "+strings.Join(names, ", ")+" }")
	}

	keyword := "import "
	if typeOnly {
		keyword = "import type "
	}
	return keyword + strings.Join(parts, ", ") + " from '" + g.Path + "'"
}
