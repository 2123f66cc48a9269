package pull

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	datadict "github.com/lacek/wb-datadict"
)

// TestPostgreSQLIntegration tests the complete pull operation with a real PostgreSQL database
func TestPostgreSQLIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := t.Context()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.BasicWaitStrategies(),
	)
	assert.NoError(t, err)

	defer func() {
		assert.NoError(t, postgresContainer.Terminate(ctx))
	}()

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	assert.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	assert.NoError(t, err)

	defer db.Close()

	assert.NoError(t, setupPostgreSQLTestData(db))

	t.Run("FullPullOperation", func(t *testing.T) {
		outputPath := filepath.Join(t.TempDir(), "shop.schema.yaml")

		result, err := ExecutePull(t.Context(), PullConfig{
			DatabaseURL: connStr,
			Schema:      "shop",
			OutputPath:  outputPath,
		})
		assert.NoError(t, err)
		assert.Equal(t, "postgresql", result.DatabaseInfo.Type)
		assert.Equal(t, outputPath, result.OutputPath)

		schema := result.Schema
		assert.Equal(t, "shop", schema.Name)
		assert.Equal(t, "Online shop", schema.Comment)
		assert.Equal(t, []string{"customers", "orders"}, tableNames(schema))

		orders := schema.Table("orders")
		assert.Equal(t, "Customer orders", orders.Comment)
		assert.Equal(t, []string{"id"}, orders.PrimaryKey)

		id := orders.Column("id")
		assert.True(t, id.AutoIncrement)
		assert.True(t, id.IsNotNull)
		assert.Zero(t, id.DefaultValue)
		assert.Equal(t, "INTEGER", id.FormattedType)

		status := orders.Column("status")
		assert.Equal(t, "CHARACTER VARYING(20)", status.FormattedType)
		assert.Equal(t, "'new'::character varying", *status.DefaultValue)
		assert.Equal(t, "Order state", status.Comment)

		assert.True(t, orders.IsForeignKeyColumn(orders.Column("customer_id")))
		assert.Equal(t, "customers", orders.ForeignKeys[0].ReferencedTable)
		assert.Equal(t, []string{"id"}, orders.ForeignKeys[0].ReferencedColumns)

		customers := schema.Table("customers")
		assert.True(t, customers.Column("id").AutoIncrement)
		assert.True(t, hasIndex(customers, "email_UNIQUE"))

		loaded, err := LoadSnapshot(outputPath)
		assert.NoError(t, err)
		assert.Equal(t, schema, loaded)
	})

	t.Run("UnknownSchema", func(t *testing.T) {
		_, err := ExecutePull(t.Context(), PullConfig{DatabaseURL: connStr, Schema: "missing"})
		assert.IsError(t, err, ErrSchemaNotFound)
	})
}

// TestMySQLIntegration tests the complete pull operation with a real MySQL database
func TestMySQLIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := t.Context()

	mysqlContainer, err := mysql.Run(ctx,
		"mysql:8.4",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("testuser"),
		mysql.WithPassword("testpass"),
	)
	assert.NoError(t, err)

	defer func() {
		assert.NoError(t, mysqlContainer.Terminate(ctx))
	}()

	connStr, err := mysqlContainer.ConnectionString(ctx)
	assert.NoError(t, err)

	db, err := sql.Open("mysql", connStr)
	assert.NoError(t, err)

	defer db.Close()

	assert.NoError(t, setupMySQLTestData(db))

	t.Run("FullPullOperation", func(t *testing.T) {
		result, err := ExecutePull(t.Context(), PullConfig{
			DatabaseURL:   convertMySQLConnStrToURL(t, connStr),
			ExcludeTables: []string{"tmp_*"},
		})
		assert.NoError(t, err)
		assert.Equal(t, "mysql", result.DatabaseInfo.Type)

		schema := result.Schema
		assert.Equal(t, "testdb", schema.Name)
		assert.Equal(t, []string{"customers", "orders"}, tableNames(schema))

		orders := schema.Table("orders")
		assert.Equal(t, "Customer orders", orders.Comment)
		assert.Equal(t, []string{"id"}, orders.PrimaryKey)

		id := orders.Column("id")
		assert.True(t, id.AutoIncrement)
		assert.True(t, id.HasFlag(datadict.FlagUnsigned))
		assert.Equal(t, "INT", id.FormattedType)

		code := orders.Column("code")
		assert.Equal(t, "VARCHAR(20)", code.FormattedType)
		assert.True(t, code.HasFlag(datadict.FlagBinary))
		assert.Equal(t, "Order code", code.Comment)

		quantity := orders.Column("quantity")
		assert.True(t, quantity.HasFlag(datadict.FlagZeroFill))
		assert.Equal(t, "1", *quantity.DefaultValue)

		note := orders.Column("note")
		assert.False(t, note.IsNotNull)
		assert.Zero(t, note.DefaultValue)

		assert.True(t, orders.IsForeignKeyColumn(orders.Column("customer_id")))
		assert.Equal(t, "customers", orders.ForeignKeys[0].ReferencedTable)

		customers := schema.Table("customers")
		assert.True(t, hasIndex(customers, "email_UNIQUE"))
	})

	t.Run("NoDatabaseSelected", func(t *testing.T) {
		cfg, err := gomysql.ParseDSN(connStr)
		assert.NoError(t, err)

		cfg.DBName = ""

		noDB, err := sql.Open("mysql", cfg.FormatDSN())
		assert.NoError(t, err)

		defer noDB.Close()

		_, err = NewMySQLExtractor().ExtractSchema(t.Context(), noDB, ExtractConfig{})
		assert.IsError(t, err, ErrNoDatabaseSelected)
	})
}

func hasIndex(table *datadict.Table, name string) bool {
	for _, index := range table.Indices {
		if index.Name == name {
			return true
		}
	}

	return false
}

func setupPostgreSQLTestData(db *sql.DB) error {
	queries := []string{
		`CREATE SCHEMA shop`,
		`COMMENT ON SCHEMA shop IS 'Online shop'`,
		`CREATE TABLE shop.customers (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			name TEXT
		)`,
		`CREATE UNIQUE INDEX "email_UNIQUE" ON shop.customers (email)`,
		`CREATE TABLE shop.orders (
			id INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			customer_id INTEGER NOT NULL REFERENCES shop.customers(id),
			status VARCHAR(20) DEFAULT 'new',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		)`,
		`COMMENT ON TABLE shop.orders IS 'Customer orders'`,
		`COMMENT ON COLUMN shop.orders.status IS 'Order state'`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func setupMySQLTestData(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE customers (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT,
			email VARCHAR(255) NOT NULL,
			PRIMARY KEY (id),
			UNIQUE INDEX email_UNIQUE (email)
		)`,
		`CREATE TABLE orders (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT,
			customer_id INT UNSIGNED NOT NULL,
			code VARCHAR(20) COLLATE utf8mb4_bin NOT NULL COMMENT 'Order code',
			quantity INT(4) UNSIGNED ZEROFILL DEFAULT 1,
			note TEXT,
			PRIMARY KEY (id),
			CONSTRAINT fk_orders_customers FOREIGN KEY (customer_id) REFERENCES customers (id)
		) COMMENT = 'Customer orders'`,
		`CREATE TABLE tmp_import (line TEXT)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// convertMySQLConnStrToURL converts a go-sql-driver DSN to a mysql:// URL
func convertMySQLConnStrToURL(t *testing.T, connStr string) string {
	t.Helper()

	cfg, err := gomysql.ParseDSN(connStr)
	assert.NoError(t, err)

	host, port, _ := strings.Cut(cfg.Addr, ":")

	return NewDatabaseConnector().BuildConnectionString(ConnectionInfo{
		Type:     "mysql",
		Host:     host,
		Port:     port,
		Database: cfg.DBName,
		Username: cfg.User,
		Password: cfg.Passwd,
	})
}
