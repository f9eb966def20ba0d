package relation

import "github.com/faucetdb/modelgen/internal/catalog"

func pk(table string) catalog.Column {
	return catalog.Column{Name: "id", TableName: table, DataType: "integer", IsPrimaryKey: true}
}

func col(table, name, dataType string) catalog.Column {
	return catalog.Column{Name: name, TableName: table, DataType: dataType}
}

func fk(table, name, target, targetColumn string) catalog.Column {
	return catalog.Column{
		Name:             name,
		TableName:        table,
		DataType:         "integer",
		ForeignKeyTable:  target,
		ForeignKeyColumn: targetColumn,
	}
}

func table(name string, cols ...catalog.Column) catalog.Table {
	return catalog.Table{Name: name, Columns: cols}
}

func authorsBooks() catalog.Catalog {
	return catalog.Catalog{Tables: []catalog.Table{
		table("authors", pk("authors"), col("authors", "name", "varchar")),
		table("books", pk("books"), col("books", "title", "varchar"), fk("books", "author_id", "authors", "id")),
	}}
}

func usersRoles(pivotCols ...catalog.Column) catalog.Catalog {
	cols := append([]catalog.Column{
		fk("role_user", "user_id", "users", "id"),
		fk("role_user", "role_id", "roles", "id"),
	}, pivotCols...)
	return catalog.Catalog{Tables: []catalog.Table{
		table("users", pk("users"), col("users", "email", "varchar")),
		table("roles", pk("roles"), col("roles", "name", "varchar")),
		table("role_user", cols...),
	}}
}

// shop is a larger schema mixing every shape the engine handles.
func shop() catalog.Catalog {
	return catalog.Catalog{Tables: []catalog.Table{
		table("users", pk("users"), col("users", "email", "varchar"), col("users", "created_at", "timestamp")),
		table("roles", pk("roles"), col("roles", "name", "varchar")),
		table("role_user", fk("role_user", "user_id", "users", "id"), fk("role_user", "role_id", "roles", "id")),
		table("categories", pk("categories"), fk("categories", "parent_id", "categories", "id")),
		table("products", pk("products"), fk("products", "category_id", "categories", "id"), col("products", "price", "numeric")),
		table("orders", pk("orders"), fk("orders", "user_id", "users", "id"), fk("orders", "coupon_id", "coupons", "id")),
		table("order_lines", pk("order_lines"), fk("order_lines", "order_id", "orders", "id"), fk("order_lines", "product_id", "products", "id"), col("order_lines", "qty", "int")),
		table("reviews", pk("reviews"), fk("reviews", "author_id", "users", "id"), fk("reviews", "editor_id", "users", "id"), fk("reviews", "product_id", "products", "id")),
		table("ghosts"),
	}}
}
