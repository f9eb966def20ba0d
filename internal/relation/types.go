// Package relation infers the relationship graph between models from
// foreign-key wiring and table naming conventions.
package relation

import (
	"cmp"

	"github.com/faucetdb/modelgen/internal/naming"
)

// Kind is the cardinality assigned to one side of a relationship.
type Kind string

const (
	BelongsTo  Kind = "belongsTo"
	HasOne     Kind = "hasOne"
	HasMany    Kind = "hasMany"
	ManyToMany Kind = "manyToMany"
)

// Pascal returns the kind in PascalCase, as used for relation type names.
func (k Kind) Pascal() string { return naming.Pascal(string(k)) }

// Key identifies the foreign key a relationship originates from: the
// referencing table and its foreign-key column. A many-to-many relationship is
// keyed by the pivot column pointing at its parent side.
type Key struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

func (k Key) String() string { return k.Table + "." + k.Column }

// Compare orders keys by table, then column.
func (k Key) Compare(o Key) int {
	return cmp.Or(cmp.Compare(k.Table, o.Table), cmp.Compare(k.Column, o.Column))
}

// Side is one endpoint of a relationship. Column is the table column on this
// side that the relationship joins through.
type Side struct {
	Kind   Kind   `json:"type"`
	Model  string `json:"model"`
	Table  string `json:"table"`
	Column string `json:"column"`
}

// Pivot describes the join table behind a many-to-many relationship.
type Pivot struct {
	Table        string `json:"table"`
	ParentColumn string `json:"parent_column"`
	ChildColumn  string `json:"child_column"`
}

// Relationship is a directional edge between two models. Parent is the "one"
// side (the referenced table); Child is the referencing side. For
// many-to-many both sides are ManyToMany and Pivot is set.
type Relationship struct {
	Key    Key    `json:"key"`
	Parent Side   `json:"parent"`
	Child  Side   `json:"child"`
	Pivot  *Pivot `json:"pivot,omitempty"`
}

// IsSelfReferencing reports whether both sides are the same table.
func (r Relationship) IsSelfReferencing() bool {
	return r.Parent.Table == r.Child.Table
}

// Attachment is a relationship seen from one of its models.
type Attachment struct {
	Relationship Relationship
	Own          Side
	Related      Side
	// IsParent is true when Own is the relationship's parent side.
	IsParent bool
}

// OwnPivotColumn returns the pivot column that points at the owning model.
func (a Attachment) OwnPivotColumn() string {
	if a.Relationship.Pivot == nil {
		return ""
	}
	if a.IsParent {
		return a.Relationship.Pivot.ParentColumn
	}
	return a.Relationship.Pivot.ChildColumn
}

// RelatedPivotColumn returns the pivot column that points at the related model.
func (a Attachment) RelatedPivotColumn() string {
	if a.Relationship.Pivot == nil {
		return ""
	}
	if a.IsParent {
		return a.Relationship.Pivot.ChildColumn
	}
	return a.Relationship.Pivot.ParentColumn
}
