package pull

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	datadict "github.com/lacek/wb-datadict"
)

// PostgreSQLExtractor handles PostgreSQL-specific schema extraction
type PostgreSQLExtractor struct {
	*BaseExtractor
}

// NewPostgreSQLExtractor creates a new PostgreSQL extractor
func NewPostgreSQLExtractor() *PostgreSQLExtractor {
	return &PostgreSQLExtractor{
		BaseExtractor: NewBaseExtractor("postgresql"),
	}
}

// pgTable pairs a table with its catalog oid for the follow-up queries.
type pgTable struct {
	oid   int64
	table *datadict.Table
}

// ExtractSchema reads config.Schema, "public" when empty.
func (e *PostgreSQLExtractor) ExtractSchema(ctx context.Context, db *sql.DB, config ExtractConfig) (*datadict.Schema, error) {
	schemaName := config.Schema
	if schemaName == "" {
		schemaName = "public"
	}

	var comment string

	err := db.QueryRowContext(ctx, pgSchemaQuery, schemaName).Scan(&comment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, schemaName)
	}

	if err != nil {
		return nil, e.HandleDatabaseError("schema", err)
	}

	tables, err := e.extractTables(ctx, db, schemaName)
	if err != nil {
		return nil, err
	}

	schema := &datadict.Schema{Name: schemaName, Comment: comment, Tables: []*datadict.Table{}}

	for _, t := range tables {
		if !ShouldIncludeTable(t.table.Name, config.IncludeTables, config.ExcludeTables) {
			continue
		}

		if err := e.fillTable(ctx, db, t); err != nil {
			return nil, err
		}

		schema.Tables = append(schema.Tables, t.table)
	}

	return schema, nil
}

func (e *PostgreSQLExtractor) fillTable(ctx context.Context, db *sql.DB, t pgTable) error {
	columns, err := e.ExtractColumns(ctx, db, t.oid)
	if err != nil {
		return err
	}

	t.table.Columns = columns

	indices, primaryKey, err := e.ExtractIndexes(ctx, db, t.oid)
	if err != nil {
		return err
	}

	t.table.Indices = indices
	t.table.PrimaryKey = primaryKey

	foreignKeys, err := e.ExtractForeignKeys(ctx, db, t.oid)
	if err != nil {
		return err
	}

	t.table.ForeignKeys = foreignKeys

	return nil
}

func (e *PostgreSQLExtractor) extractTables(ctx context.Context, db *sql.DB, schemaName string) ([]pgTable, error) {
	rows, err := db.QueryContext(ctx, pgTablesQuery, schemaName)
	if err != nil {
		return nil, e.HandleDatabaseError("tables", err)
	}
	defer rows.Close()

	var tables []pgTable

	for rows.Next() {
		var (
			oid           int64
			name, comment string
		)

		if err := rows.Scan(&oid, &name, &comment); err != nil {
			return nil, e.HandleDatabaseError("tables", err)
		}

		tables = append(tables, pgTable{oid: oid, table: &datadict.Table{Name: name, Comment: comment}})
	}

	if err := rows.Err(); err != nil {
		return nil, e.HandleDatabaseError("tables", err)
	}

	return tables, nil
}

// ExtractColumns reads the columns of the table with the given oid.
// Identity columns and nextval() defaults count as auto-increment; the
// sequence default itself is dropped.
func (e *PostgreSQLExtractor) ExtractColumns(ctx context.Context, db *sql.DB, tableOID int64) ([]*datadict.Column, error) {
	rows, err := db.QueryContext(ctx, pgColumnsQuery, tableOID)
	if err != nil {
		return nil, e.HandleDatabaseError("columns", err)
	}
	defer rows.Close()

	var columns []*datadict.Column

	for rows.Next() {
		var (
			name, dataType, identity, comment string
			notNull                           bool
			defaultValue                      sql.NullString
		)

		if err := rows.Scan(&name, &dataType, &notNull, &defaultValue, &identity, &comment); err != nil {
			return nil, e.HandleDatabaseError("columns", err)
		}

		column := &datadict.Column{
			Name:          name,
			FormattedType: formatTypeName(dataType),
			Comment:       comment,
			IsNotNull:     notNull,
			AutoIncrement: identity != "",
		}

		switch {
		case IsSequenceDefault(defaultValue.String):
			column.AutoIncrement = true
		case defaultValue.Valid:
			column.DefaultValue = datadict.StringPtr(defaultValue.String)
		}

		columns = append(columns, column)
	}

	if err := rows.Err(); err != nil {
		return nil, e.HandleDatabaseError("columns", err)
	}

	return columns, nil
}

// ExtractIndexes reads the indexes of the table with the given oid; the
// primary index also yields the primary key column list.
func (e *PostgreSQLExtractor) ExtractIndexes(ctx context.Context, db *sql.DB, tableOID int64) ([]*datadict.Index, []string, error) {
	rows, err := db.QueryContext(ctx, pgIndexesQuery, tableOID)
	if err != nil {
		return nil, nil, e.HandleDatabaseError("indexes", err)
	}
	defer rows.Close()

	builder := newIndexBuilder()

	var primaryKey []string

	for rows.Next() {
		var (
			name, column        string
			isUnique, isPrimary bool
		)

		if err := rows.Scan(&name, &isUnique, &isPrimary, &column); err != nil {
			return nil, nil, e.HandleDatabaseError("indexes", err)
		}

		indexType := "INDEX"

		switch {
		case isPrimary:
			indexType = "PRIMARY"
			primaryKey = append(primaryKey, column)
		case isUnique:
			indexType = "UNIQUE"
		}

		builder.add(name, indexType, column)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, e.HandleDatabaseError("indexes", err)
	}

	return builder.indices, primaryKey, nil
}

// ExtractForeignKeys reads the foreign key constraints of the table with the given oid.
func (e *PostgreSQLExtractor) ExtractForeignKeys(ctx context.Context, db *sql.DB, tableOID int64) ([]*datadict.ForeignKey, error) {
	rows, err := db.QueryContext(ctx, pgForeignKeysQuery, tableOID)
	if err != nil {
		return nil, e.HandleDatabaseError("foreign keys", err)
	}
	defer rows.Close()

	builder := newForeignKeyBuilder()

	for rows.Next() {
		var name, column, referencedTable, referencedColumn string

		if err := rows.Scan(&name, &column, &referencedTable, &referencedColumn); err != nil {
			return nil, e.HandleDatabaseError("foreign keys", err)
		}

		builder.add(name, column, referencedTable, referencedColumn)
	}

	if err := rows.Err(); err != nil {
		return nil, e.HandleDatabaseError("foreign keys", err)
	}

	return builder.keys, nil
}

// GetDatabaseInfo extracts database information
func (e *PostgreSQLExtractor) GetDatabaseInfo(ctx context.Context, db *sql.DB) (DatabaseInfo, error) {
	var version, dbName string

	if err := db.QueryRowContext(ctx, "SELECT current_setting('server_version'), current_database()").Scan(&version, &dbName); err != nil {
		return DatabaseInfo{}, e.HandleDatabaseError("version", err)
	}

	return DatabaseInfo{
		Type:    "postgresql",
		Version: version,
		Name:    dbName,
	}, nil
}

// IsSequenceDefault reports whether a column default draws from a sequence,
// as serial columns do.
func IsSequenceDefault(defaultValue string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(defaultValue)), "nextval(")
}

const pgSchemaQuery = `
		SELECT COALESCE(obj_description(n.oid, 'pg_namespace'), '')
		FROM pg_catalog.pg_namespace n
		WHERE n.nspname = $1`

const pgTablesQuery = `
		SELECT
			c.oid::bigint,
			c.relname,
			COALESCE(obj_description(c.oid, 'pg_class'), '')
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1
		  AND c.relkind IN ('r', 'p')
		  AND NOT c.relispartition
		ORDER BY c.relname`

const pgColumnsQuery = `
		SELECT
			a.attname,
			pg_catalog.format_type(a.atttypid, a.atttypmod),
			a.attnotnull,
			pg_catalog.pg_get_expr(d.adbin, d.adrelid),
			a.attidentity::text,
			COALESCE(col_description(a.attrelid, a.attnum), '')
		FROM pg_catalog.pg_attribute a
		LEFT JOIN pg_catalog.pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		WHERE a.attrelid::bigint = $1
		  AND a.attnum > 0
		  AND NOT a.attisdropped
		ORDER BY a.attnum`

const pgIndexesQuery = `
		SELECT
			ic.relname,
			i.indisunique,
			i.indisprimary,
			a.attname
		FROM pg_catalog.pg_index i
		JOIN pg_catalog.pg_class ic ON ic.oid = i.indexrelid
		CROSS JOIN LATERAL unnest(i.indkey::int2[]) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_catalog.pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = k.attnum
		WHERE i.indrelid::bigint = $1
		ORDER BY i.indisprimary DESC, ic.relname, k.ord`

const pgForeignKeysQuery = `
		SELECT
			con.conname,
			a.attname,
			rc.relname,
			ra.attname
		FROM pg_catalog.pg_constraint con
		CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(attnum, refnum, ord)
		JOIN pg_catalog.pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
		JOIN pg_catalog.pg_class rc ON rc.oid = con.confrelid
		JOIN pg_catalog.pg_attribute ra ON ra.attrelid = con.confrelid AND ra.attnum = k.refnum
		WHERE con.contype = 'f'
		  AND con.conrelid::bigint = $1
		ORDER BY con.conname, k.ord`
