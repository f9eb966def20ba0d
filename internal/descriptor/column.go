package descriptor

import (
	"strings"

	"github.com/faucetdb/modelgen/internal/classify"
	"github.com/faucetdb/modelgen/internal/naming"
)

func describeColumn(c classify.Column) Column {
	tsType := c.TSType
	if c.IsDateTime {
		tsType = "DateTime"
	}
	col := Column{
		Name:         c.Name,
		Property:     c.Property,
		DataType:     c.DataType,
		Semantic:     c.Semantic,
		TSType:       tsType,
		IsPrimaryKey: c.IsPrimaryKey,
		IsNullable:   c.IsNullable,
		IsDateTime:   c.IsDateTime,
	}
	col.Decorator = columnDecorator(c)

	declared := tsType
	if c.IsNullable {
		declared += " | null"
	}
	col.Declaration = "declare " + c.Property + ": " + declared
	return col
}

// columnDecorator picks the column helper and its options. The column name is
// only spelled out when the ORM could not derive it back from the property.
func columnDecorator(c classify.Column) string {
	var opts []string
	if c.IsPrimaryKey {
		opts = append(opts, "isPrimary: true")
	}
	if naming.Snake(c.Property) != c.Name {
		opts = append(opts, "columnName: '"+c.Name+"'")
	}

	helper := "@column"
	switch {
	case c.IsDateTime && strings.EqualFold(strings.TrimSpace(c.DataType), "date"):
		helper = "@column.date"
	case c.IsDateTime:
		helper = "@column.dateTime"
		switch c.Name {
		case "created_at":
			opts = append(opts, "autoCreate: true")
		case "updated_at":
			opts = append(opts, "autoCreate: true", "autoUpdate: true")
		}
	}

	if len(opts) == 0 {
		return helper + "()"
	}
	return helper + "({ " + strings.Join(opts, ", ") + " })"
}
