package snapshot

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/faucetdb/modelgen/internal/catalog"
)

// DiffTable lists the changes between a saved table and its live version.
// Columns are matched by name; removed columns are reported in saved order,
// added columns in live order.
func DiffTable(saved, live catalog.Table) []Change {
	changes := []Change{}
	liveByName := lo.KeyBy(live.Columns, func(c catalog.Column) string { return c.Name })
	savedByName := lo.KeyBy(saved.Columns, func(c catalog.Column) string { return c.Name })

	for _, old := range saved.Columns {
		cur, ok := liveByName[old.Name]
		if !ok {
			changes = append(changes, Change{
				Category:             ColumnRemoved,
				TableName:            saved.Name,
				ColumnName:           old.Name,
				OldValue:             old.DataType,
				Description:          fmt.Sprintf("Column %q was removed from table %q", old.Name, saved.Name),
				AffectsRelationships: old.HasForeignKey(),
			})
			continue
		}
		changes = append(changes, diffColumn(saved.Name, old, cur)...)
	}

	for _, cur := range live.Columns {
		if _, ok := savedByName[cur.Name]; ok {
			continue
		}
		changes = append(changes, Change{
			Category:             ColumnAdded,
			TableName:            saved.Name,
			ColumnName:           cur.Name,
			NewValue:             cur.DataType,
			Description:          fmt.Sprintf("Column %q was added to table %q", cur.Name, saved.Name),
			AffectsRelationships: cur.HasForeignKey(),
		})
	}
	return changes
}

func diffColumn(table string, old, cur catalog.Column) []Change {
	var changes []Change
	add := func(cat Category, oldValue, newValue, desc string, rel bool) {
		changes = append(changes, Change{
			Category:             cat,
			TableName:            table,
			ColumnName:           old.Name,
			OldValue:             oldValue,
			NewValue:             newValue,
			Description:          desc,
			AffectsRelationships: rel,
		})
	}

	if !strings.EqualFold(old.DataType, cur.DataType) {
		add(TypeChanged, old.DataType, cur.DataType,
			fmt.Sprintf("Column %q type changed from %q to %q", old.Name, old.DataType, cur.DataType), false)
	}
	if old.IsNullable != cur.IsNullable {
		add(NullableChanged, nullability(old.IsNullable), nullability(cur.IsNullable),
			fmt.Sprintf("Column %q changed from %s to %s", old.Name, nullability(old.IsNullable), nullability(cur.IsNullable)), false)
	}
	if old.IsPrimaryKey != cur.IsPrimaryKey {
		add(PrimaryKeyChanged, fmt.Sprint(old.IsPrimaryKey), fmt.Sprint(cur.IsPrimaryKey),
			fmt.Sprintf("Column %q primary key flag changed to %t", old.Name, cur.IsPrimaryKey), false)
	}

	oldRef, curRef := target(old), target(cur)
	switch {
	case oldRef == curRef:
	case oldRef == "":
		add(ForeignKeyAdded, "", curRef,
			fmt.Sprintf("Column %q now references %s", old.Name, curRef), true)
	case curRef == "":
		add(ForeignKeyRemoved, oldRef, "",
			fmt.Sprintf("Column %q no longer references %s", old.Name, oldRef), true)
	default:
		add(ForeignKeyRetargeted, oldRef, curRef,
			fmt.Sprintf("Column %q reference moved from %s to %s", old.Name, oldRef, curRef), true)
	}
	return changes
}

func target(c catalog.Column) string {
	if !c.HasForeignKey() {
		return ""
	}
	return c.ForeignKeyTable + "." + c.ForeignKeyColumn
}

func nullability(nullable bool) string {
	if nullable {
		return "nullable"
	}
	return "NOT NULL"
}

func hasForeignKeys(t catalog.Table) bool {
	return slices.ContainsFunc(t.Columns, catalog.Column.HasForeignKey)
}

// Diff compares a service's saved snapshots against the live catalog. Tables
// are reported in name order; every saved and every live table is counted.
func Diff(serviceName string, saved []Snapshot, live catalog.Catalog) Report {
	report := Report{
		ServiceName: serviceName,
		Tables:      []TableReport{},
		CheckedAt:   time.Now().UTC(),
	}

	liveByName := lo.KeyBy(live.Tables, func(t catalog.Table) string { return t.Name })
	savedNames := make(map[string]bool, len(saved))

	for _, s := range saved {
		savedNames[s.TableName] = true
		tr := TableReport{TableName: s.TableName, TakenAt: s.TakenAt}

		cur, ok := liveByName[s.TableName]
		if !ok {
			tr.Changes = []Change{{
				Category:             TableRemoved,
				TableName:            s.TableName,
				Description:          fmt.Sprintf("Table %q was removed from the database", s.TableName),
				AffectsRelationships: true,
			}}
		} else {
			tr.Changes = DiffTable(s.Table, cur)
		}
		report.add(tr)
	}

	for _, t := range live.Tables {
		if savedNames[t.Name] {
			continue
		}
		report.add(TableReport{
			TableName: t.Name,
			Changes: []Change{{
				Category:             TableAdded,
				TableName:            t.Name,
				Description:          fmt.Sprintf("Table %q was added to the database", t.Name),
				AffectsRelationships: hasForeignKeys(t),
			}},
		})
	}

	slices.SortFunc(report.Tables, func(a, b TableReport) int { return strings.Compare(a.TableName, b.TableName) })
	return report
}

func (r *Report) add(tr TableReport) {
	tr.HasDrift = len(tr.Changes) > 0
	tr.AffectsRelationships = slices.ContainsFunc(tr.Changes, func(c Change) bool { return c.AffectsRelationships })

	r.TotalTables++
	if tr.HasDrift {
		r.DriftedTables++
	}
	if tr.AffectsRelationships {
		r.AffectsRelationships = true
	}
	r.Tables = append(r.Tables, tr)
}
