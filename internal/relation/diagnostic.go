package relation

import (
	"cmp"
	"fmt"
)

// DiagnosticKind classifies a degraded input the engine worked around.
type DiagnosticKind string

const (
	// MalformedTable: the table failed validation and gets no relationships.
	MalformedTable DiagnosticKind = "malformed_table"
	// DuplicateTable: a later table reused an earlier table's name and was skipped.
	DuplicateTable DiagnosticKind = "duplicate_table"
	// DanglingReference: a foreign key points outside the catalog and was dropped.
	DanglingReference DiagnosticKind = "dangling_reference"
	// PivotEndpoint: an edge would have ended on a collapsed pivot table.
	PivotEndpoint DiagnosticKind = "pivot_endpoint"
	// PivotColumnDiscarded: a pivot table column that no relationship carries.
	PivotColumnDiscarded DiagnosticKind = "pivot_column_discarded"
	// ModelNameCollision: the table's conventional model name was taken by
	// another table and a suffixed name was used.
	ModelNameCollision DiagnosticKind = "model_name_collision"
)

// Diagnostic records a non-fatal problem found during inference. Inference
// never fails; callers decide whether and how to surface these.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Table   string         `json:"table"`
	Column  string         `json:"column,omitempty"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Column != "" {
		return fmt.Sprintf("%s: %s.%s: %s", d.Kind, d.Table, d.Column, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Kind, d.Table, d.Message)
}

func compareDiagnostics(a, b Diagnostic) int {
	return cmp.Or(
		cmp.Compare(a.Table, b.Table),
		cmp.Compare(a.Column, b.Column),
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.Message, b.Message),
	)
}
