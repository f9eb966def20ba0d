package descriptor

import (
	"strings"

	"github.com/faucetdb/modelgen/internal/classify"
	"github.com/faucetdb/modelgen/internal/naming"
	"github.com/faucetdb/modelgen/internal/relation"
)

// defaultKey is the key column the ORM assumes when none is given.
const defaultKey = "id"

// define derives the property name, override options and decorator for one
// side of a relationship. The property name is not yet made unique.
func define(a relation.Attachment) Definition {
	d := Definition{
		Key:          a.Relationship.Key,
		Kind:         a.Own.Kind,
		RelatedModel: a.Related.Model,
		RelatedTable: a.Related.Table,
	}

	switch a.Own.Kind {
	case relation.BelongsTo:
		d.Property = naming.Camel(classify.TrimIdentifier(a.Own.Column))
		d.Options = belongsToOptions(a)
	case relation.HasOne:
		d.Property = naming.Camel(a.Related.Model)
		d.Options = hasManyOptions(a)
	case relation.HasMany:
		d.Property = naming.Camel(naming.Plural(a.Related.Model))
		d.Options = hasManyOptions(a)
	case relation.ManyToMany:
		d.Property = naming.Camel(naming.Plural(a.Related.Model))
		d.Options = manyToManyOptions(a)
	}
	d.Decorator = decorator(d)
	return d
}

// belongsToOptions: the foreign key lives on the owning model and the local
// key is the related model's key.
func belongsToOptions(a relation.Attachment) []Option {
	var opts options
	opts.keyUnlessDefault("localKey", a.Related.Column)
	opts.unlessEqual("foreignKey", naming.Camel(a.Own.Column), naming.Camel(a.Related.Model+"Id"))
	return opts
}

// hasManyOptions: the foreign key lives on the related model and points at
// the owning model.
func hasManyOptions(a relation.Attachment) []Option {
	var opts options
	opts.keyUnlessDefault("localKey", a.Own.Column)
	opts.unlessEqual("foreignKey", naming.Camel(a.Related.Column), naming.Camel(a.Own.Model+"Id"))
	return opts
}

func manyToManyOptions(a relation.Attachment) []Option {
	var opts options
	opts.keyUnlessDefault("localKey", a.Own.Column)
	opts.unlessEqual("pivotTable", a.Relationship.Pivot.Table, naming.PivotTableName(a.Own.Model, a.Related.Model))
	opts.unlessEqual("pivotForeignKey", a.OwnPivotColumn(), naming.Snake(a.Own.Model)+classify.IdentifierSuffix)
	opts.unlessEqual("pivotRelatedForeignKey", a.RelatedPivotColumn(), naming.Snake(a.Related.Model)+classify.IdentifierSuffix)
	opts.keyUnlessDefault("relatedKey", a.Related.Column)
	return opts
}

type options []Option

func (o *options) unlessEqual(key, actual, convention string) {
	if actual != convention {
		*o = append(*o, Option{Key: key, Value: actual})
	}
}

func (o *options) keyUnlessDefault(key, column string) {
	if naming.Camel(column) != defaultKey {
		*o = append(*o, Option{Key: key, Value: naming.Camel(column)})
	}
}

func decorator(d Definition) string {
	var b strings.Builder
	b.WriteString("@" + string(d.Kind) + "(() => " + d.RelatedModel)
	if len(d.Options) > 0 {
		parts := make([]string, len(d.Options))
		for i, o := range d.Options {
			parts[i] = o.Key + ": '" + o.Value + "'"
		}
		b.WriteString(", { " + strings.Join(parts, ", ") + " }")
	}
	b.WriteString(")")
	return b.String()
}

func declaration(d Definition) string {
	return "declare " + d.Property + ": " + d.Kind.Pascal() + "<typeof " + d.RelatedModel + ">"
}
