package pull

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	datadict "github.com/lacek/wb-datadict"
)

func tableNames(schema *datadict.Schema) []string {
	names := []string{}
	for _, table := range schema.Tables {
		names = append(names, table.Name)
	}

	return names
}

func createSQLiteDatabase(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "inventory.db")

	db, err := sql.Open("sqlite3", dbPath)
	assert.NoError(t, err)

	defer db.Close()

	queries := []string{
		`CREATE TABLE categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name varchar(50) NOT NULL
		)`,
		`CREATE UNIQUE INDEX name_UNIQUE ON categories (name)`,
		`CREATE TABLE products (
			id INTEGER PRIMARY KEY,
			category_id INTEGER NOT NULL REFERENCES categories(id),
			sku TEXT NOT NULL UNIQUE,
			price NUMERIC(10,2) DEFAULT 0,
			note TEXT
		)`,
		`CREATE INDEX idx_products_price ON products (price)`,
		`CREATE TABLE order_lines (
			order_id INTEGER NOT NULL,
			line_no INTEGER NOT NULL,
			product_id INTEGER,
			PRIMARY KEY (order_id, line_no)
		)`,
		`CREATE TABLE tmp_import (line TEXT)`,
	}

	for _, query := range queries {
		_, err := db.Exec(query)
		assert.NoError(t, err)
	}

	return dbPath
}

// TestSQLiteIntegration tests the complete pull operation with a SQLite file
func TestSQLiteIntegration(t *testing.T) {
	dbPath := createSQLiteDatabase(t)
	outputPath := filepath.Join(t.TempDir(), "snapshots", "inventory.yaml")

	var logged []string

	result, err := ExecutePull(t.Context(), PullConfig{
		DatabaseURL:   "sqlite://" + dbPath,
		OutputPath:    outputPath,
		ExcludeTables: []string{"tmp_*"},
		Logger: func(format string, args ...any) {
			logged = append(logged, format)
		},
	})
	assert.NoError(t, err)
	assert.NotZero(t, logged)

	assert.Equal(t, "sqlite", result.DatabaseInfo.Type)
	assert.NotZero(t, result.DatabaseInfo.Version)
	assert.Equal(t, outputPath, result.OutputPath)

	schema := result.Schema
	assert.Equal(t, "inventory", schema.Name)
	assert.Equal(t, []string{"categories", "order_lines", "products"}, tableNames(schema))

	t.Run("AutoIncrement", func(t *testing.T) {
		categories := schema.Table("categories")
		assert.Equal(t, []string{"id"}, categories.PrimaryKey)
		assert.True(t, categories.Column("id").AutoIncrement)
		assert.Equal(t, "INTEGER", categories.Column("id").FormattedType)
		assert.Equal(t, "VARCHAR(50)", categories.Column("name").FormattedType)
		assert.True(t, categories.Column("name").IsNotNull)

		products := schema.Table("products")
		assert.False(t, products.Column("id").AutoIncrement)
	})

	t.Run("Indexes", func(t *testing.T) {
		categories := schema.Table("categories")
		assert.Equal(t, []*datadict.Index{{Name: "name_UNIQUE", Type: "UNIQUE", Columns: []string{"name"}}}, categories.Indices)

		products := schema.Table("products")
		assert.Equal(t, []*datadict.Index{{Name: "idx_products_price", Type: "INDEX", Columns: []string{"price"}}}, products.Indices)
	})

	t.Run("Defaults", func(t *testing.T) {
		products := schema.Table("products")
		assert.Equal(t, "0", *products.Column("price").DefaultValue)
		assert.Zero(t, products.Column("note").DefaultValue)
	})

	t.Run("CompositePrimaryKey", func(t *testing.T) {
		lines := schema.Table("order_lines")
		assert.Equal(t, []string{"order_id", "line_no"}, lines.PrimaryKey)
		assert.False(t, lines.Column("order_id").AutoIncrement)
	})

	t.Run("ForeignKeys", func(t *testing.T) {
		products := schema.Table("products")
		assert.Equal(t, []*datadict.ForeignKey{{
			Name:              "fk_products_0",
			Columns:           []string{"category_id"},
			ReferencedTable:   "categories",
			ReferencedColumns: []string{"id"},
		}}, products.ForeignKeys)
		assert.True(t, products.IsForeignKeyColumn(products.Column("category_id")))
	})

	t.Run("Snapshot", func(t *testing.T) {
		_, err := os.Stat(outputPath)
		assert.NoError(t, err)

		loaded, err := LoadSnapshot(outputPath)
		assert.NoError(t, err)
		assert.Equal(t, schema, loaded)
	})
}

func TestSQLiteIntegrationExplicitSchemaName(t *testing.T) {
	dbPath := createSQLiteDatabase(t)

	result, err := ExecutePull(t.Context(), PullConfig{
		DatabaseURL:   "sqlite://" + dbPath,
		Schema:        "warehouse",
		IncludeTables: []string{"prod*"},
	})
	assert.NoError(t, err)
	assert.Equal(t, "warehouse", result.Schema.Name)
	assert.Equal(t, []string{"products"}, tableNames(result.Schema))
	assert.Equal(t, "", result.OutputPath)
}
