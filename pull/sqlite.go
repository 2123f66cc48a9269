package pull

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	datadict "github.com/lacek/wb-datadict"
)

// SQLiteExtractor handles SQLite-specific schema extraction
type SQLiteExtractor struct {
	*BaseExtractor
}

// NewSQLiteExtractor creates a new SQLite extractor
func NewSQLiteExtractor() *SQLiteExtractor {
	return &SQLiteExtractor{
		BaseExtractor: NewBaseExtractor("sqlite"),
	}
}

// ExtractSchema reads the main database. SQLite has no schema names, so the
// result is named after config.Schema ("main" when empty).
func (e *SQLiteExtractor) ExtractSchema(ctx context.Context, db *sql.DB, config ExtractConfig) (*datadict.Schema, error) {
	name := config.Schema
	if name == "" {
		name = "main"
	}

	rows, err := db.QueryContext(ctx, `SELECT name, COALESCE(sql, '') FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, e.HandleDatabaseError("tables", err)
	}

	type tableDDL struct {
		name string
		ddl  string
	}

	var found []tableDDL

	for rows.Next() {
		var t tableDDL
		if err := rows.Scan(&t.name, &t.ddl); err != nil {
			rows.Close()
			return nil, e.HandleDatabaseError("tables", err)
		}

		found = append(found, t)
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, e.HandleDatabaseError("tables", err)
	}

	schema := &datadict.Schema{Name: name, Tables: []*datadict.Table{}}

	for _, t := range found {
		if !ShouldIncludeTable(t.name, config.IncludeTables, config.ExcludeTables) {
			continue
		}

		table, err := e.extractTable(ctx, db, t.name, t.ddl)
		if err != nil {
			return nil, err
		}

		schema.Tables = append(schema.Tables, table)
	}

	return schema, nil
}

func (e *SQLiteExtractor) extractTable(ctx context.Context, db *sql.DB, name, ddl string) (*datadict.Table, error) {
	table := &datadict.Table{Name: name}

	columns, primaryKey, err := e.ExtractColumns(ctx, db, name)
	if err != nil {
		return nil, err
	}

	table.Columns = columns
	table.PrimaryKey = primaryKey

	// AUTOINCREMENT is only legal on a single INTEGER PRIMARY KEY column
	if len(primaryKey) == 1 && HasAutoIncrement(ddl) {
		if column := table.Column(primaryKey[0]); column != nil {
			column.AutoIncrement = true
		}
	}

	indices, err := e.ExtractIndexes(ctx, db, name)
	if err != nil {
		return nil, err
	}

	table.Indices = indices

	foreignKeys, err := e.ExtractForeignKeys(ctx, db, name)
	if err != nil {
		return nil, err
	}

	table.ForeignKeys = foreignKeys

	return table, nil
}

// ExtractColumns reads PRAGMA table_info and returns the columns together
// with the primary key columns in key order.
func (e *SQLiteExtractor) ExtractColumns(ctx context.Context, db *sql.DB, tableName string) ([]*datadict.Column, []string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdentifier(tableName)))
	if err != nil {
		return nil, nil, e.HandleDatabaseError("columns", err)
	}
	defer rows.Close()

	type keyColumn struct {
		name string
		pos  int
	}

	var (
		columns []*datadict.Column
		keys    []keyColumn
	)

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, dataType   string
			defaultValue     sql.NullString
		)

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return nil, nil, e.HandleDatabaseError("columns", err)
		}

		column := &datadict.Column{
			Name:          name,
			FormattedType: formatTypeName(dataType),
			IsNotNull:     notNull != 0,
		}

		if defaultValue.Valid {
			column.DefaultValue = datadict.StringPtr(defaultValue.String)
		}

		if pk > 0 {
			keys = append(keys, keyColumn{name: name, pos: pk})
		}

		columns = append(columns, column)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, e.HandleDatabaseError("columns", err)
	}

	slices.SortFunc(keys, func(a, b keyColumn) int { return a.pos - b.pos })

	var primaryKey []string
	for _, k := range keys {
		primaryKey = append(primaryKey, k.name)
	}

	return columns, primaryKey, nil
}

// ExtractIndexes reads the named indexes of a table. Automatic indexes
// created for PRIMARY KEY/UNIQUE constraints are skipped.
func (e *SQLiteExtractor) ExtractIndexes(ctx context.Context, db *sql.DB, tableName string) ([]*datadict.Index, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", quoteIdentifier(tableName)))
	if err != nil {
		return nil, e.HandleDatabaseError("indexes", err)
	}

	var indices []*datadict.Index

	for rows.Next() {
		var (
			seq, unique, partial int
			name, origin         string
		)

		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, e.HandleDatabaseError("indexes", err)
		}

		if strings.HasPrefix(name, "sqlite_autoindex_") {
			continue
		}

		indexType := "INDEX"
		if unique != 0 {
			indexType = "UNIQUE"
		}

		indices = append(indices, &datadict.Index{Name: name, Type: indexType})
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, e.HandleDatabaseError("indexes", err)
	}

	for _, index := range indices {
		columns, err := e.indexColumns(ctx, db, index.Name)
		if err != nil {
			return nil, err
		}

		index.Columns = columns
	}

	return indices, nil
}

func (e *SQLiteExtractor) indexColumns(ctx context.Context, db *sql.DB, indexName string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", quoteIdentifier(indexName)))
	if err != nil {
		return nil, e.HandleDatabaseError("index columns", err)
	}
	defer rows.Close()

	var columns []string

	for rows.Next() {
		var (
			seqno, cid int
			name       sql.NullString
		)

		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, e.HandleDatabaseError("index columns", err)
		}

		// expression columns have no name
		if name.Valid {
			columns = append(columns, name.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, e.HandleDatabaseError("index columns", err)
	}

	return columns, nil
}

// ExtractForeignKeys reads PRAGMA foreign_key_list. SQLite foreign keys are
// unnamed, so they are named fk_<table>_<id>.
func (e *SQLiteExtractor) ExtractForeignKeys(ctx context.Context, db *sql.DB, tableName string) ([]*datadict.ForeignKey, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdentifier(tableName)))
	if err != nil {
		return nil, e.HandleDatabaseError("foreign keys", err)
	}
	defer rows.Close()

	builder := newForeignKeyBuilder()

	for rows.Next() {
		var (
			id, seq                           int
			referencedTable, from             string
			to, onUpdate, onDelete, matchRule sql.NullString
		)

		if err := rows.Scan(&id, &seq, &referencedTable, &from, &to, &onUpdate, &onDelete, &matchRule); err != nil {
			return nil, e.HandleDatabaseError("foreign keys", err)
		}

		builder.add(fmt.Sprintf("fk_%s_%d", tableName, id), from, referencedTable, to.String)
	}

	if err := rows.Err(); err != nil {
		return nil, e.HandleDatabaseError("foreign keys", err)
	}

	return builder.keys, nil
}

// GetDatabaseInfo extracts database information
func (e *SQLiteExtractor) GetDatabaseInfo(ctx context.Context, db *sql.DB) (DatabaseInfo, error) {
	var version string
	if err := db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return DatabaseInfo{}, e.HandleDatabaseError("version", err)
	}

	return DatabaseInfo{
		Type:    "sqlite",
		Version: version,
		Name:    "main",
	}, nil
}

// HasAutoIncrement reports whether a CREATE TABLE statement uses AUTOINCREMENT.
func HasAutoIncrement(ddl string) bool {
	return strings.Contains(strings.ToUpper(ddl), "AUTOINCREMENT")
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
