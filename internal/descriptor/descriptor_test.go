package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faucetdb/modelgen/internal/catalog"
	"github.com/faucetdb/modelgen/internal/relation"
)

func pk(table string) catalog.Column {
	return catalog.Column{Name: "id", TableName: table, DataType: "integer", IsPrimaryKey: true}
}

func col(table, name, dataType string) catalog.Column {
	return catalog.Column{Name: name, TableName: table, DataType: dataType}
}

func fk(table, name, target string) catalog.Column {
	return catalog.Column{
		Name:             name,
		TableName:        table,
		DataType:         "integer",
		ForeignKeyTable:  target,
		ForeignKeyColumn: "id",
	}
}

func table(name string, cols ...catalog.Column) catalog.Table {
	return catalog.Table{Name: name, Columns: cols}
}

func authorsBooks(fkColumn string) catalog.Catalog {
	return catalog.Catalog{Tables: []catalog.Table{
		table("authors", pk("authors"), col("authors", "name", "varchar(255)")),
		table("books", pk("books"), col("books", "title", "varchar"), fk("books", fkColumn, "authors")),
	}}
}

func mustModel(t *testing.T, r *Result, name string) Model {
	t.Helper()
	m, ok := r.Model(name)
	require.True(t, ok, "model %s", name)
	return m
}

func TestBuildBelongsToAndHasMany(t *testing.T) {
	r := Build(authorsBooks("author_id"))
	require.Len(t, r.Models, 2)
	assert.Equal(t, "Author", r.Models[0].Name)
	assert.Equal(t, "Book", r.Models[1].Name)

	author := mustModel(t, r, "Author")
	require.Len(t, author.Relationships, 1)
	assert.Equal(t, Definition{
		Key:          relation.Key{Table: "books", Column: "author_id"},
		Kind:         relation.HasMany,
		Property:     "books",
		RelatedModel: "Book",
		RelatedTable: "books",
		Decorator:    "@hasMany(() => Book)",
		Declaration:  "declare books: HasMany<typeof Book>",
	}, author.Relationships[0])
	assert.Equal(t, []string{
		"import { BaseModel, column, hasMany } from '@adonisjs/lucid/orm'",
		"import type { HasMany } from '@adonisjs/lucid/types/relations'",
		"import Book from './book.js'",
	}, author.Statements)

	book := mustModel(t, r, "books")
	require.Len(t, book.Relationships, 1)
	rel := book.Relationships[0]
	assert.Equal(t, relation.BelongsTo, rel.Kind)
	assert.Equal(t, "author", rel.Property)
	assert.Empty(t, rel.Options, "conventional foreign key needs no override")
	assert.Equal(t, "@belongsTo(() => Author)", rel.Decorator)
	assert.Equal(t, "declare author: BelongsTo<typeof Author>", rel.Declaration)
}

func TestBuildForeignKeyOverride(t *testing.T) {
	r := Build(authorsBooks("writer_id"))

	book := mustModel(t, r, "Book")
	require.Len(t, book.Relationships, 1)
	assert.Equal(t, "writer", book.Relationships[0].Property)
	assert.Equal(t, []Option{{Key: "foreignKey", Value: "writerId"}}, book.Relationships[0].Options)
	assert.Equal(t, "@belongsTo(() => Author, { foreignKey: 'writerId' })", book.Relationships[0].Decorator)

	author := mustModel(t, r, "Author")
	require.Len(t, author.Relationships, 1)
	assert.Equal(t, "@hasMany(() => Book, { foreignKey: 'writerId' })", author.Relationships[0].Decorator)
}

func TestBuildLocalKeyOverride(t *testing.T) {
	cat := catalog.Catalog{Tables: []catalog.Table{
		table("countries", col("countries", "code", "char(2)"), col("countries", "name", "varchar")),
		table("cities", pk("cities"), catalog.Column{
			Name: "country_id", TableName: "cities", DataType: "char(2)",
			ForeignKeyTable: "countries", ForeignKeyColumn: "code",
		}),
	}}
	cat.Tables[0].Columns[0].IsPrimaryKey = true

	r := Build(cat)
	city := mustModel(t, r, "City")
	require.Len(t, city.Relationships, 1)
	assert.Equal(t, "@belongsTo(() => Country, { localKey: 'code' })", city.Relationships[0].Decorator)

	country := mustModel(t, r, "Country")
	require.Len(t, country.Relationships, 1)
	assert.Equal(t, "@hasMany(() => City, { localKey: 'code' })", country.Relationships[0].Decorator)
}

func TestBuildExcludesPivot(t *testing.T) {
	cat := catalog.Catalog{Tables: []catalog.Table{
		table("users", pk("users")),
		table("roles", pk("roles")),
		table("role_user", fk("role_user", "user_id", "users"), fk("role_user", "role_id", "roles")),
	}}

	r := Build(cat)
	names := make([]string, len(r.Models))
	for i, m := range r.Models {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"Role", "User"}, names)
	assert.Equal(t, []string{"role_user"}, r.Graph.Pivots)

	user := mustModel(t, r, "User")
	require.Len(t, user.Relationships, 1)
	assert.Equal(t, "@manyToMany(() => Role)", user.Relationships[0].Decorator)
	assert.Equal(t, "declare roles: ManyToMany<typeof Role>", user.Relationships[0].Declaration)

	role := mustModel(t, r, "Role")
	require.Len(t, role.Relationships, 1)
	assert.Equal(t, "@manyToMany(() => User)", role.Relationships[0].Decorator)
}

func TestBuildPivotTableOverride(t *testing.T) {
	cat := catalog.Catalog{Tables: []catalog.Table{
		table("users", pk("users")),
		table("roles", pk("roles")),
		table("user_roles", fk("user_roles", "user_id", "users"), fk("user_roles", "role_id", "roles")),
	}}

	r := Build(cat)
	require.Len(t, r.Models, 2)
	user := mustModel(t, r, "User")
	require.Len(t, user.Relationships, 1)
	assert.Equal(t, []Option{{Key: "pivotTable", Value: "user_roles"}}, user.Relationships[0].Options)
}

func TestBuildSelfReference(t *testing.T) {
	cat := catalog.Catalog{Tables: []catalog.Table{
		table("employees", pk("employees"), fk("employees", "manager_id", "employees")),
	}}

	r := Build(cat)
	require.Len(t, r.Models, 1)
	emp := r.Models[0]
	require.Len(t, emp.Relationships, 1)
	assert.Equal(t, relation.BelongsTo, emp.Relationships[0].Kind)
	assert.Equal(t, "manager", emp.Relationships[0].Property)
	assert.Equal(t, "@belongsTo(() => Employee, { foreignKey: 'managerId' })", emp.Relationships[0].Decorator)
	for _, imp := range emp.Imports {
		assert.NotEqual(t, "Employee", imp.Name, "a model never imports itself")
	}
}

func TestBuildUniquePropertyNames(t *testing.T) {
	cat := catalog.Catalog{Tables: []catalog.Table{
		table("users", pk("users"), col("users", "email", "varchar")),
		table("reviews", pk("reviews"), fk("reviews", "author_id", "users"), fk("reviews", "editor_id", "users")),
	}}

	r := Build(cat)
	user := mustModel(t, r, "User")
	require.Len(t, user.Relationships, 2)
	assert.Equal(t, "reviews", user.Relationships[0].Property)
	assert.Equal(t, "reviews1", user.Relationships[1].Property)
	assert.Equal(t, "@hasMany(() => Review, { foreignKey: 'authorId' })", user.Relationships[0].Decorator)
	assert.Equal(t, "@hasMany(() => Review, { foreignKey: 'editorId' })", user.Relationships[1].Decorator)

	// One default import for both relationships.
	count := 0
	for _, imp := range user.Imports {
		if imp.Name == "Review" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestBuildColumnPropertyTakesPrecedence(t *testing.T) {
	cat := catalog.Catalog{Tables: []catalog.Table{
		table("authors", pk("authors")),
		table("books", pk("books"), col("books", "author", "varchar"), fk("books", "author_id", "authors")),
	}}

	book := mustModel(t, Build(cat), "Book")
	require.Len(t, book.Relationships, 1)
	assert.Equal(t, "author1", book.Relationships[0].Property)
}

func TestBuildColumns(t *testing.T) {
	nullable := col("people", "birthday", "date")
	nullable.IsNullable = true
	cat := catalog.Catalog{Tables: []catalog.Table{
		table("people",
			pk("people"),
			col("people", "URL", "text"),
			nullable,
			col("people", "created_at", "timestamp"),
			col("people", "updated_at", "timestamp with time zone"),
			col("people", "tags", "text[]"),
		),
	}}

	m := mustModel(t, Build(cat), "Person")
	assert.False(t, m.ExplicitTable)
	decorators := make([]string, len(m.Columns))
	declarations := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		decorators[i] = c.Decorator
		declarations[i] = c.Declaration
	}
	assert.Equal(t, []string{
		"@column({ isPrimary: true })",
		"@column({ columnName: 'URL' })",
		"@column.date()",
		"@column.dateTime({ autoCreate: true })",
		"@column.dateTime({ autoCreate: true, autoUpdate: true })",
		"@column()",
	}, decorators)
	assert.Equal(t, []string{
		"declare id: number",
		"declare url: string",
		"declare birthday: DateTime | null",
		"declare createdAt: DateTime",
		"declare updatedAt: DateTime",
		"declare tags: string[]",
	}, declarations)
	assert.Contains(t, m.Statements, "import { DateTime } from 'luxon'")
}

func TestBuildExplicitTable(t *testing.T) {
	cat := catalog.Catalog{Tables: []catalog.Table{
		table("person", pk("person")),
		table("users", pk("users")),
	}}

	r := Build(cat)
	assert.True(t, mustModel(t, r, "Person").ExplicitTable)
	assert.False(t, mustModel(t, r, "User").ExplicitTable)
}

func TestBuildMalformedTableKeepsColumns(t *testing.T) {
	broken := fk("broken_items", "user_id", "users")
	cat := catalog.Catalog{Tables: []catalog.Table{
		table("users", pk("users")),
		table("broken_items", pk("broken_items"), broken, catalog.Column{Name: "note", TableName: "broken_items"}),
	}}

	r := Build(cat)
	require.Len(t, r.Models, 2)
	item := mustModel(t, r, "BrokenItem")
	assert.Len(t, item.Columns, 3)
	assert.Empty(t, item.Relationships)
	assert.Empty(t, mustModel(t, r, "User").Relationships)
	assert.True(t, r.Graph.IsMalformed("broken_items"))
}

func TestBuildIdempotent(t *testing.T) {
	cat := authorsBooks("author_id")
	assert.Equal(t, Build(cat), Build(cat))
}

func TestBuildModelNameCollision(t *testing.T) {
	r := Build(catalog.Catalog{Tables: []catalog.Table{
		table("person", pk("person"), fk("person", "team_id", "teams")),
		table("people", pk("people")),
		table("teams", pk("teams")),
	}})

	names := map[string]string{}
	files := map[string]bool{}
	for _, m := range r.Models {
		assert.NotContains(t, names, m.Name, "model names are unique")
		assert.NotContains(t, files, m.FileName, "file names are unique")
		names[m.Name] = m.TableName
		files[m.FileName] = true
	}
	assert.Equal(t, "people", names["Person"])
	assert.Equal(t, "person", names["Person1"])

	renamed := mustModel(t, r, "Person1")
	assert.True(t, renamed.ExplicitTable)
	assert.Equal(t, "Person1", mustModel(t, r, "person").Name, "exact table name wins")
	assert.Equal(t, "Person", mustModel(t, r, "Person").Name)

	team := mustModel(t, r, "Team")
	require.Len(t, team.Relationships, 1)
	assert.Equal(t, "Person1", team.Relationships[0].RelatedModel)
	assert.Contains(t, team.Statements, "import Person1 from './"+renamed.FileName+".js'")
}
