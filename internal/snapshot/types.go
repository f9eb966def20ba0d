// Package snapshot records the catalog a service's models were generated
// from and reports how the live database has drifted since.
package snapshot

import (
	"time"

	"github.com/faucetdb/modelgen/internal/catalog"
)

// Snapshot is the saved catalog entry for one table of a service.
type Snapshot struct {
	ID          int64         `json:"id" db:"id"`
	ServiceName string        `json:"service_name" db:"service_name"`
	TableName   string        `json:"table_name" db:"table_name"`
	Table       catalog.Table `json:"table"`
	TableJSON   string        `json:"-" db:"table_json"`
	TakenAt     time.Time     `json:"taken_at" db:"taken_at"`
}

// Category names the kind of a single change.
type Category string

const (
	TableAdded           Category = "table_added"
	TableRemoved         Category = "table_removed"
	ColumnAdded          Category = "column_added"
	ColumnRemoved        Category = "column_removed"
	TypeChanged          Category = "type_changed"
	NullableChanged      Category = "nullable_changed"
	PrimaryKeyChanged    Category = "primary_key_changed"
	ForeignKeyAdded      Category = "foreign_key_added"
	ForeignKeyRemoved    Category = "foreign_key_removed"
	ForeignKeyRetargeted Category = "foreign_key_retargeted"
)

// Change is one difference between the snapshot and the live catalog.
type Change struct {
	Category    Category `json:"category"`
	TableName   string   `json:"table_name"`
	ColumnName  string   `json:"column_name,omitempty"`
	OldValue    string   `json:"old_value,omitempty"`
	NewValue    string   `json:"new_value,omitempty"`
	Description string   `json:"description"`
	// AffectsRelationships is set when the change can alter the inferred
	// relationship graph, so regenerated models will differ in more than
	// their column list.
	AffectsRelationships bool `json:"affects_relationships"`
}

// TableReport collects the changes of a single table.
type TableReport struct {
	TableName            string    `json:"table_name"`
	HasDrift             bool      `json:"has_drift"`
	AffectsRelationships bool      `json:"affects_relationships"`
	Changes              []Change  `json:"changes"`
	TakenAt              time.Time `json:"taken_at,omitzero"`
}

// Report summarizes drift across every table of a service.
type Report struct {
	ServiceName          string        `json:"service_name"`
	TotalTables          int           `json:"total_tables"`
	DriftedTables        int           `json:"drifted_tables"`
	AffectsRelationships bool          `json:"affects_relationships"`
	Tables               []TableReport `json:"tables"`
	CheckedAt            time.Time     `json:"checked_at"`
}

// HasDrift reports whether any table changed.
func (r Report) HasDrift() bool { return r.DriftedTables > 0 }
