package main

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	datadict "github.com/lacek/wb-datadict"
	"github.com/lacek/wb-datadict/pull"
)

func TestResolveDatabase(t *testing.T) {
	config := &datadict.Config{
		DefaultEnvironment: "development",
		Databases: map[string]datadict.Database{
			"development": {Driver: "sqlite", Connection: "sqlite://dev.db"},
			"reporting":   {Driver: "postgres", Connection: "postgres://app@localhost:5432/app", Schema: "reports"},
			"broken":      {Driver: "mysql"},
		},
	}

	t.Run("ExplicitURL", func(t *testing.T) {
		db, err := resolveDatabase(config, "mysql://root@localhost:3306/shop", "reporting")
		assert.NoError(t, err)
		assert.Equal(t, datadict.Database{Connection: "mysql://root@localhost:3306/shop"}, db)
	})

	t.Run("NamedEnvironment", func(t *testing.T) {
		db, err := resolveDatabase(config, "", "reporting")
		assert.NoError(t, err)
		assert.Equal(t, "reports", db.Schema)
		assert.Equal(t, "postgres", db.Driver)
	})

	t.Run("DefaultEnvironment", func(t *testing.T) {
		db, err := resolveDatabase(config, "", "")
		assert.NoError(t, err)
		assert.Equal(t, "sqlite://dev.db", db.Connection)
	})

	t.Run("UnknownEnvironment", func(t *testing.T) {
		_, err := resolveDatabase(config, "", "staging")
		assert.IsError(t, err, datadict.ErrEnvironmentNotFound)
	})

	t.Run("EmptyConnection", func(t *testing.T) {
		_, err := resolveDatabase(config, "", "broken")
		assert.IsError(t, err, ErrEmptyConnectionString)
	})

	t.Run("NothingConfigured", func(t *testing.T) {
		_, err := resolveDatabase(&datadict.Config{}, "", "")
		assert.IsError(t, err, ErrMissingDBOrEnv)

		_, err = resolveDatabase(&datadict.Config{}, "", "staging")
		assert.IsError(t, err, ErrNoDatabasesConfigured)
	})
}

func TestCreatePullConfig(t *testing.T) {
	cmd := &PullCmd{
		Output:        "out/schema.yaml",
		IncludeTables: []string{"orders*"},
		ExcludeTables: []string{"orders_archive"},
	}

	config := cmd.createPullConfig(datadict.Database{Driver: "postgres", Connection: "postgres://app@localhost/app", Schema: "sales"})
	assert.Equal(t, "postgres://app@localhost/app", config.DatabaseURL)
	assert.Equal(t, "postgres", config.DatabaseType)
	assert.Equal(t, "sales", config.Schema)
	assert.Equal(t, "out/schema.yaml", config.OutputPath)
	assert.Equal(t, []string{"orders*"}, config.IncludeTables)

	cmd.Schema = "override"
	assert.Equal(t, "override", cmd.createPullConfig(datadict.Database{Schema: "sales"}).Schema)
}

func TestPullCmdSQLite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "inventory.db")

	db, err := sql.Open("sqlite3", dbPath)
	assert.NoError(t, err)

	_, err = db.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL DEFAULT '')`)
	assert.NoError(t, err)
	assert.NoError(t, db.Close())

	output := filepath.Join(dir, "snapshots", "inventory.yaml")
	cmd := &PullCmd{DB: "sqlite://" + dbPath, Output: output}

	assert.NoError(t, cmd.Run(quietContext(dir)))

	schema, err := pull.LoadSnapshot(output)
	assert.NoError(t, err)
	assert.Equal(t, "inventory", schema.Name)
	assert.Equal(t, "''", *schema.Table("items").Column("name").DefaultValue)

	// the snapshot feeds generate
	html := filepath.Join(dir, "inventory.html")
	generate := &GenerateCmd{Source: sourceFlags{Snapshot: output}, Output: html, NoOpen: true}
	assert.NoError(t, generate.Run(quietContext(dir)))
	assert.Contains(t, readFile(t, html), "<table id='items'>")
}
