package model

// Schema is the introspection result for one database service. Views are
// reported apart from tables because they never become models.
type Schema struct {
	Tables []TableSchema `json:"tables"`
	Views  []TableSchema `json:"views"`
}

// TableSchema describes the structure of a single table or view.
type TableSchema struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"` // "table" or "view"
	Columns     []Column     `json:"columns"`
	PrimaryKey  []string     `json:"primary_key"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
}

// Column describes a single column within a table or view.
type Column struct {
	Name            string  `json:"name"`
	Position        int     `json:"position"`
	Type            string  `json:"db_type"`
	Nullable        bool    `json:"nullable"`
	Default         *string `json:"default,omitempty"`
	IsPrimaryKey    bool    `json:"is_primary_key"`
	IsAutoIncrement bool    `json:"is_auto_increment"`
	Comment         string  `json:"comment,omitempty"`
}

// ForeignKey describes a single-column foreign key constraint.
type ForeignKey struct {
	Name             string `json:"name"`
	ColumnName       string `json:"column_name"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
	OnDelete         string `json:"on_delete,omitempty"`
	OnUpdate         string `json:"on_update,omitempty"`
}

// Table returns the named table (views excluded).
func (s *Schema) Table(name string) (*TableSchema, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}
