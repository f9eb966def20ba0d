package openapi

import (
	"encoding/json"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faucetdb/modelgen/internal/catalog"
	"github.com/faucetdb/modelgen/internal/descriptor"
)

func shop() []descriptor.Model {
	cat := catalog.Catalog{Tables: []catalog.Table{
		{Name: "users", Columns: []catalog.Column{
			{Name: "id", TableName: "users", DataType: "integer", IsPrimaryKey: true},
			{Name: "email_address", TableName: "users", DataType: "varchar(255)"},
			{Name: "tags", TableName: "users", DataType: "text[]", IsNullable: true},
			{Name: "created_at", TableName: "users", DataType: "timestamp"},
		}},
		{Name: "roles", Columns: []catalog.Column{
			{Name: "id", TableName: "roles", DataType: "integer", IsPrimaryKey: true},
		}},
		{Name: "role_user", Columns: []catalog.Column{
			{Name: "role_id", TableName: "role_user", DataType: "integer", ForeignKeyTable: "roles", ForeignKeyColumn: "id"},
			{Name: "user_id", TableName: "role_user", DataType: "integer", ForeignKeyTable: "users", ForeignKeyColumn: "id"},
		}},
		{Name: "posts", Columns: []catalog.Column{
			{Name: "id", TableName: "posts", DataType: "integer", IsPrimaryKey: true},
			{Name: "user_id", TableName: "posts", DataType: "integer", IsNullable: true, ForeignKeyTable: "users", ForeignKeyColumn: "id"},
		}},
	}}
	return descriptor.Build(cat).Models
}

func TestGenerate(t *testing.T) {
	doc := Generate("blog models", shop())

	assert.Equal(t, Version, doc.OpenAPI)
	assert.Equal(t, "blog models", doc.Info.Title)
	assert.Equal(t, 0, doc.Paths.Len())
	require.NotNil(t, doc.Components)
	assert.Len(t, doc.Components.Schemas, 3, "pivot tables get no schema")
	for _, name := range []string{"Post", "Role", "User"} {
		assert.Contains(t, doc.Components.Schemas, name)
	}

	_, err := json.Marshal(doc)
	assert.NoError(t, err)
}

func TestModelSchemaColumns(t *testing.T) {
	doc := Generate("blog", shop())
	user := doc.Components.Schemas["User"].Value

	assert.True(t, user.Type.Is("object"))
	assert.Equal(t, "users", user.Extensions["x-table"])

	id := user.Properties["id"].Value
	assert.True(t, id.Type.Is("integer"))
	assert.True(t, id.ReadOnly)

	email := user.Properties["emailAddress"].Value
	assert.True(t, email.Type.Is("string"))
	assert.Equal(t, "Column email_address", email.Description)

	tags := user.Properties["tags"].Value
	assert.Equal(t, openapi3.Types{"array", "null"}, *tags.Type)
	assert.True(t, tags.Items.Value.Type.Is("string"))

	created := user.Properties["createdAt"].Value
	assert.Equal(t, "date-time", created.Format)

	assert.ElementsMatch(t, []string{"id", "emailAddress", "createdAt"}, user.Required)
}

func TestModelSchemaRelationships(t *testing.T) {
	doc := Generate("blog", shop())

	post := doc.Components.Schemas["Post"].Value
	assert.Equal(t, "#/components/schemas/User", post.Properties["user"].Ref)

	user := doc.Components.Schemas["User"].Value
	posts := user.Properties["posts"].Value
	require.NotNil(t, posts)
	assert.True(t, posts.Type.Is("array"))
	assert.Equal(t, Ref("Post"), posts.Items.Ref)
	assert.Equal(t, "hasMany", posts.Extensions["x-relationship"])

	roles := user.Properties["roles"].Value
	require.NotNil(t, roles)
	assert.Equal(t, Ref("Role"), roles.Items.Ref)
	assert.Equal(t, "manyToMany", roles.Extensions["x-relationship"])
}

func TestGenerateEmpty(t *testing.T) {
	doc := Generate("empty", nil)
	assert.Empty(t, doc.Components.Schemas)
}
