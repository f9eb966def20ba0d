package snapshot

import (
	"testing"
	"time"

	"github.com/faucetdb/modelgen/internal/catalog"
)

func col(table, name, typ string) catalog.Column {
	return catalog.Column{Name: name, TableName: table, DataType: typ}
}

func fk(c catalog.Column, table, column string) catalog.Column {
	c.ForeignKeyTable, c.ForeignKeyColumn = table, column
	return c
}

func books() catalog.Table {
	id := col("books", "id", "integer")
	id.IsPrimaryKey = true
	return catalog.Table{Name: "books", Columns: []catalog.Column{
		id,
		col("books", "title", "varchar(255)"),
		fk(col("books", "author_id", "integer"), "authors", "id"),
	}}
}

func TestDiffTable_NoDrift(t *testing.T) {
	if changes := DiffTable(books(), books()); len(changes) != 0 {
		t.Errorf("expected no changes, got %+v", changes)
	}
}

func TestDiffTable_TypeCaseInsensitive(t *testing.T) {
	live := books()
	live.Columns[1].DataType = "VARCHAR(255)"
	if changes := DiffTable(books(), live); len(changes) != 0 {
		t.Errorf("expected no changes, got %+v", changes)
	}
}

func TestDiffTable_ColumnAddedAndRemoved(t *testing.T) {
	live := books()
	live.Columns = append(live.Columns[:1:1], col("books", "subtitle", "text"), live.Columns[2])

	changes := DiffTable(books(), live)
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %+v", changes)
	}
	if changes[0].Category != ColumnRemoved || changes[0].ColumnName != "title" {
		t.Errorf("first change = %+v, want title removed", changes[0])
	}
	if changes[1].Category != ColumnAdded || changes[1].ColumnName != "subtitle" {
		t.Errorf("second change = %+v, want subtitle added", changes[1])
	}
	for _, c := range changes {
		if c.AffectsRelationships {
			t.Errorf("%s on a plain column should not affect relationships", c.Category)
		}
	}
}

func TestDiffTable_ForeignKeyColumnRemoved(t *testing.T) {
	live := books()
	live.Columns = live.Columns[:2]

	changes := DiffTable(books(), live)
	if len(changes) != 1 || changes[0].Category != ColumnRemoved {
		t.Fatalf("expected one column_removed, got %+v", changes)
	}
	if !changes[0].AffectsRelationships {
		t.Error("removing a foreign key column affects relationships")
	}
}

func TestDiffTable_ColumnChanges(t *testing.T) {
	live := books()
	live.Columns[1].DataType = "text"
	live.Columns[1].IsNullable = true
	live.Columns[0].IsPrimaryKey = false

	changes := DiffTable(books(), live)
	got := map[Category]Change{}
	for _, c := range changes {
		got[c.Category] = c
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 categories, got %+v", changes)
	}
	if c := got[TypeChanged]; c.OldValue != "varchar(255)" || c.NewValue != "text" {
		t.Errorf("type change = %+v", c)
	}
	if c := got[NullableChanged]; c.OldValue != "NOT NULL" || c.NewValue != "nullable" {
		t.Errorf("nullable change = %+v", c)
	}
	if _, ok := got[PrimaryKeyChanged]; !ok {
		t.Error("expected primary_key_changed")
	}
}

func TestDiffTable_ForeignKeys(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *catalog.Column)
		category Category
		old, new string
	}{
		{
			name:     "removed",
			mutate:   func(c *catalog.Column) { c.ForeignKeyTable, c.ForeignKeyColumn = "", "" },
			category: ForeignKeyRemoved,
			old:      "authors.id",
		},
		{
			name:     "retargeted",
			mutate:   func(c *catalog.Column) { c.ForeignKeyTable = "writers" },
			category: ForeignKeyRetargeted,
			old:      "authors.id",
			new:      "writers.id",
		},
		{
			name:     "half target counts as none",
			mutate:   func(c *catalog.Column) { c.ForeignKeyColumn = "" },
			category: ForeignKeyRemoved,
			old:      "authors.id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := books()
			tt.mutate(&live.Columns[2])

			changes := DiffTable(books(), live)
			if len(changes) != 1 {
				t.Fatalf("expected 1 change, got %+v", changes)
			}
			c := changes[0]
			if c.Category != tt.category || c.OldValue != tt.old || c.NewValue != tt.new {
				t.Errorf("change = %+v", c)
			}
			if !c.AffectsRelationships {
				t.Error("foreign key changes affect relationships")
			}
		})
	}

	saved := books()
	saved.Columns[2].ForeignKeyTable, saved.Columns[2].ForeignKeyColumn = "", ""
	changes := DiffTable(saved, books())
	if len(changes) != 1 || changes[0].Category != ForeignKeyAdded || changes[0].NewValue != "authors.id" {
		t.Errorf("expected foreign_key_added, got %+v", changes)
	}
}

func TestDiff(t *testing.T) {
	taken := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	authors := catalog.Table{Name: "authors", Columns: []catalog.Column{col("authors", "id", "integer")}}
	tags := catalog.Table{Name: "tags", Columns: []catalog.Column{col("tags", "id", "integer")}}
	bookTag := catalog.Table{Name: "book_tag", Columns: []catalog.Column{
		fk(col("book_tag", "book_id", "integer"), "books", "id"),
		fk(col("book_tag", "tag_id", "integer"), "tags", "id"),
	}}

	saved := []Snapshot{
		{ServiceName: "shop", TableName: "authors", Table: authors, TakenAt: taken},
		{ServiceName: "shop", TableName: "books", Table: books(), TakenAt: taken},
		{ServiceName: "shop", TableName: "tags", Table: tags, TakenAt: taken},
	}
	live := catalog.Catalog{Tables: []catalog.Table{books(), authors, bookTag}}

	report := Diff("shop", saved, live)

	if report.ServiceName != "shop" {
		t.Errorf("service = %q", report.ServiceName)
	}
	if report.TotalTables != 4 || report.DriftedTables != 2 {
		t.Errorf("total/drifted = %d/%d, want 4/2", report.TotalTables, report.DriftedTables)
	}
	if !report.HasDrift() || !report.AffectsRelationships {
		t.Error("expected relationship-affecting drift")
	}

	names := make([]string, len(report.Tables))
	for i, tr := range report.Tables {
		names[i] = tr.TableName
	}
	want := []string{"authors", "book_tag", "books", "tags"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("table order = %v, want %v", names, want)
		}
	}

	added := report.Tables[1]
	if added.Changes[0].Category != TableAdded || !added.AffectsRelationships {
		t.Errorf("book_tag report = %+v", added)
	}
	removed := report.Tables[3]
	if removed.Changes[0].Category != TableRemoved || !removed.TakenAt.Equal(taken) {
		t.Errorf("tags report = %+v", removed)
	}
	if report.Tables[0].HasDrift || report.Tables[2].HasDrift {
		t.Error("unchanged tables should not drift")
	}
}

func TestDiff_AddedTableWithoutForeignKeys(t *testing.T) {
	report := Diff("shop", nil, catalog.Catalog{Tables: []catalog.Table{
		{Name: "settings", Columns: []catalog.Column{col("settings", "key", "text")}},
	}})
	if report.DriftedTables != 1 || report.AffectsRelationships {
		t.Errorf("report = %+v", report)
	}
}
