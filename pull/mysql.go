package pull

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	datadict "github.com/lacek/wb-datadict"
)

// MySQLExtractor handles MySQL-specific schema extraction
type MySQLExtractor struct {
	*BaseExtractor
}

// NewMySQLExtractor creates a new MySQL extractor
func NewMySQLExtractor() *MySQLExtractor {
	return &MySQLExtractor{
		BaseExtractor: NewBaseExtractor("mysql"),
	}
}

// ExtractSchema reads the database named by config.Schema, or the
// connection's current database when empty.
func (e *MySQLExtractor) ExtractSchema(ctx context.Context, db *sql.DB, config ExtractConfig) (*datadict.Schema, error) {
	schemaName := config.Schema
	if schemaName == "" {
		var current sql.NullString
		if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&current); err != nil {
			return nil, e.HandleDatabaseError("current database", err)
		}

		if !current.Valid || current.String == "" {
			return nil, fmt.Errorf("%w: %w", ErrSchemaNotFound, ErrNoDatabaseSelected)
		}

		schemaName = current.String
	}

	var found int
	if err := db.QueryRowContext(ctx, mysqlSchemaExistsQuery, schemaName).Scan(&found); err != nil {
		return nil, e.HandleDatabaseError("schemata", err)
	}

	if found == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, schemaName)
	}

	tables, err := e.ExtractTables(ctx, db, schemaName)
	if err != nil {
		return nil, err
	}

	tables = e.FilterTables(tables, config)

	for _, table := range tables {
		if err := e.fillTable(ctx, db, schemaName, table); err != nil {
			return nil, err
		}
	}

	return &datadict.Schema{Name: schemaName, Tables: tables}, nil
}

func (e *MySQLExtractor) fillTable(ctx context.Context, db *sql.DB, schemaName string, table *datadict.Table) error {
	columns, err := e.ExtractColumns(ctx, db, schemaName, table.Name)
	if err != nil {
		return err
	}

	table.Columns = columns

	indices, primaryKey, err := e.ExtractIndexes(ctx, db, schemaName, table.Name)
	if err != nil {
		return err
	}

	table.Indices = indices
	table.PrimaryKey = primaryKey

	foreignKeys, err := e.ExtractForeignKeys(ctx, db, schemaName, table.Name)
	if err != nil {
		return err
	}

	table.ForeignKeys = foreignKeys

	return nil
}

// ExtractTables lists the base tables of a schema with their comments.
func (e *MySQLExtractor) ExtractTables(ctx context.Context, db *sql.DB, schemaName string) ([]*datadict.Table, error) {
	rows, err := db.QueryContext(ctx, mysqlTablesQuery, schemaName)
	if err != nil {
		return nil, e.HandleDatabaseError("tables", err)
	}
	defer rows.Close()

	var tables []*datadict.Table

	for rows.Next() {
		var (
			name    string
			comment sql.NullString
		)

		if err := rows.Scan(&name, &comment); err != nil {
			return nil, e.HandleDatabaseError("tables", err)
		}

		tables = append(tables, &datadict.Table{Name: name, Comment: comment.String})
	}

	if err := rows.Err(); err != nil {
		return nil, e.HandleDatabaseError("tables", err)
	}

	return tables, nil
}

// ExtractColumns reads the columns of a table in ordinal order.
func (e *MySQLExtractor) ExtractColumns(ctx context.Context, db *sql.DB, schemaName, tableName string) ([]*datadict.Column, error) {
	rows, err := db.QueryContext(ctx, mysqlColumnsQuery, schemaName, tableName)
	if err != nil {
		return nil, e.HandleDatabaseError("columns", err)
	}
	defer rows.Close()

	var columns []*datadict.Column

	for rows.Next() {
		var (
			name, columnType, isNullable string
			columnDefault, extra         sql.NullString
			collation, comment           sql.NullString
		)

		if err := rows.Scan(&name, &columnType, &isNullable, &columnDefault, &extra, &collation, &comment); err != nil {
			return nil, e.HandleDatabaseError("columns", err)
		}

		formattedType, flags := ParseColumnType(columnType)
		if strings.HasSuffix(strings.ToLower(collation.String), "_bin") {
			flags = append(flags, datadict.FlagBinary)
		}

		column := &datadict.Column{
			Name:          name,
			FormattedType: formattedType,
			Comment:       comment.String,
			IsNotNull:     isNullable == "NO",
			AutoIncrement: strings.Contains(strings.ToLower(extra.String), "auto_increment"),
			Flags:         flags,
		}

		if columnDefault.Valid {
			column.DefaultValue = datadict.StringPtr(columnDefault.String)
		}

		columns = append(columns, column)
	}

	if err := rows.Err(); err != nil {
		return nil, e.HandleDatabaseError("columns", err)
	}

	return columns, nil
}

// ExtractIndexes reads the indexes of a table. The PRIMARY index also
// yields the primary key column list.
func (e *MySQLExtractor) ExtractIndexes(ctx context.Context, db *sql.DB, schemaName, tableName string) ([]*datadict.Index, []string, error) {
	rows, err := db.QueryContext(ctx, mysqlIndexesQuery, schemaName, tableName)
	if err != nil {
		return nil, nil, e.HandleDatabaseError("indexes", err)
	}
	defer rows.Close()

	builder := newIndexBuilder()

	var primaryKey []string

	for rows.Next() {
		var (
			indexName  string
			nonUnique  int
			columnName sql.NullString
		)

		if err := rows.Scan(&indexName, &nonUnique, &columnName); err != nil {
			return nil, nil, e.HandleDatabaseError("indexes", err)
		}

		indexType := "INDEX"

		switch {
		case indexName == "PRIMARY":
			indexType = "PRIMARY"
			primaryKey = append(primaryKey, columnName.String)
		case nonUnique == 0:
			indexType = "UNIQUE"
		}

		builder.add(indexName, indexType, columnName.String)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, e.HandleDatabaseError("indexes", err)
	}

	return builder.indices, primaryKey, nil
}

// ExtractForeignKeys reads the foreign keys declared on a table.
func (e *MySQLExtractor) ExtractForeignKeys(ctx context.Context, db *sql.DB, schemaName, tableName string) ([]*datadict.ForeignKey, error) {
	rows, err := db.QueryContext(ctx, mysqlForeignKeysQuery, schemaName, tableName)
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
func (e *MySQLExtractor) GetDatabaseInfo(ctx context.Context, db *sql.DB) (DatabaseInfo, error) {
	var (
		version string
		dbName  sql.NullString
	)

	if err := db.QueryRowContext(ctx, "SELECT VERSION(), DATABASE()").Scan(&version, &dbName); err != nil {
		return DatabaseInfo{}, e.HandleDatabaseError("version", err)
	}

	return DatabaseInfo{
		Type:    "mysql",
		Version: version,
		Name:    dbName.String,
	}, nil
}

// ParseColumnType splits an information_schema COLUMN_TYPE such as
// "int(10) unsigned zerofill" into the formatted type "INT(10)" and the
// flags UNSIGNED and ZEROFILL.
func ParseColumnType(columnType string) (string, []string) {
	columnType = strings.TrimSpace(columnType)

	base := columnType
	rest := ""

	if open := strings.Index(columnType, "("); open >= 0 {
		if end := closingParen(columnType, open); end > 0 {
			base = columnType[:end+1]
			rest = columnType[end+1:]
		}
	} else if space := strings.Index(columnType, " "); space >= 0 {
		base = columnType[:space]
		rest = columnType[space:]
	}

	var (
		flags  []string
		suffix []string
	)

	for _, word := range strings.Fields(rest) {
		switch strings.ToUpper(word) {
		case datadict.FlagUnsigned:
			flags = append(flags, datadict.FlagUnsigned)
		case datadict.FlagZeroFill:
			flags = append(flags, datadict.FlagZeroFill)
		default:
			suffix = append(suffix, word)
		}
	}

	formatted := formatTypeName(base)
	if len(suffix) > 0 {
		formatted += " " + formatTypeName(strings.Join(suffix, " "))
	}

	return formatted, flags
}

// closingParen returns the index of the parenthesis closing the one at open,
// skipping quoted enum/set values.
func closingParen(s string, open int) int {
	depth := 0
	quoted := false

	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\'':
			quoted = !quoted
		case '(':
			if !quoted {
				depth++
			}
		case ')':
			if !quoted {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}

	return -1
}

const mysqlSchemaExistsQuery = `
		SELECT COUNT(*)
		FROM information_schema.SCHEMATA
		WHERE SCHEMA_NAME = ?`

const mysqlTablesQuery = `
		SELECT
			TABLE_NAME,
			TABLE_COMMENT
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ?
		  AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`

const mysqlColumnsQuery = `
		SELECT
			COLUMN_NAME,
			COLUMN_TYPE,
			IS_NULLABLE,
			COLUMN_DEFAULT,
			EXTRA,
			COLLATION_NAME,
			COLUMN_COMMENT
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ?
		  AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`

const mysqlIndexesQuery = `
		SELECT
			INDEX_NAME,
			NON_UNIQUE,
			COLUMN_NAME
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = ?
		  AND TABLE_NAME = ?
		ORDER BY INDEX_NAME = 'PRIMARY' DESC, INDEX_NAME, SEQ_IN_INDEX`

const mysqlForeignKeysQuery = `
		SELECT
			CONSTRAINT_NAME,
			COLUMN_NAME,
			REFERENCED_TABLE_NAME,
			REFERENCED_COLUMN_NAME
		FROM information_schema.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ?
		  AND TABLE_NAME = ?
		  AND REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY CONSTRAINT_NAME, ORDINAL_POSITION`
