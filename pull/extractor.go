package pull

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	datadict "github.com/lacek/wb-datadict"
	"github.com/lacek/wb-datadict/filter"
)

// Extractor reads one schema from a database connection.
type Extractor interface {
	ExtractSchema(ctx context.Context, db *sql.DB, config ExtractConfig) (*datadict.Schema, error)
	GetDatabaseInfo(ctx context.Context, db *sql.DB) (DatabaseInfo, error)
}

// NewExtractor creates a new extractor for the specified database type
func NewExtractor(databaseType string) (Extractor, error) {
	if databaseType == "" {
		return nil, ErrEmptyDatabaseType
	}

	switch strings.ToLower(databaseType) {
	case "postgresql", "postgres":
		return NewPostgreSQLExtractor(), nil
	case "mysql":
		return NewMySQLExtractor(), nil
	case "sqlite", "sqlite3":
		return NewSQLiteExtractor(), nil
	default:
		return nil, ErrUnsupportedDatabase
	}
}

// ValidateExtractConfig validates the extraction configuration
func ValidateExtractConfig(config ExtractConfig) error {
	for _, includeTable := range config.IncludeTables {
		for _, excludeTable := range config.ExcludeTables {
			if includeTable == excludeTable {
				return fmt.Errorf("%w: %s", ErrConflictingTableFilters, includeTable)
			}
		}
	}

	return nil
}

// ShouldIncludeTable determines if a table should be included based on filters
func ShouldIncludeTable(tableName string, includeTables, excludeTables []string) bool {
	return filter.ShouldInclude(tableName, includeTables, excludeTables)
}

// MatchWildcard performs simple wildcard matching with * character
func MatchWildcard(pattern, text string) bool {
	return filter.MatchWildcard(pattern, text)
}

// BaseExtractor provides common functionality for all extractors
type BaseExtractor struct {
	databaseType string
}

// NewBaseExtractor creates a new base extractor
func NewBaseExtractor(databaseType string) *BaseExtractor {
	return &BaseExtractor{databaseType: databaseType}
}

// FilterTables filters tables based on the configuration
func (e *BaseExtractor) FilterTables(tables []*datadict.Table, config ExtractConfig) []*datadict.Table {
	filtered := make([]*datadict.Table, 0, len(tables))

	for _, table := range tables {
		if ShouldIncludeTable(table.Name, config.IncludeTables, config.ExcludeTables) {
			filtered = append(filtered, table)
		}
	}

	return filtered
}

// HandleDatabaseError wraps a driver error with the failing step.
func (e *BaseExtractor) HandleDatabaseError(step string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %s %s: %w", ErrQueryExecutionFailed, e.databaseType, step, err)
}

// indexBuilder collects index rows that arrive one column at a time,
// ordered by index name and column position.
type indexBuilder struct {
	indices []*datadict.Index
	byName  map[string]*datadict.Index
}

func newIndexBuilder() *indexBuilder {
	return &indexBuilder{byName: map[string]*datadict.Index{}}
}

func (b *indexBuilder) add(name, indexType, column string) {
	index, ok := b.byName[name]
	if !ok {
		index = &datadict.Index{Name: name, Type: indexType}
		b.byName[name] = index
		b.indices = append(b.indices, index)
	}

	if column != "" {
		index.Columns = append(index.Columns, column)
	}
}

// foreignKeyBuilder is indexBuilder for foreign key column pairs.
type foreignKeyBuilder struct {
	keys   []*datadict.ForeignKey
	byName map[string]*datadict.ForeignKey
}

func newForeignKeyBuilder() *foreignKeyBuilder {
	return &foreignKeyBuilder{byName: map[string]*datadict.ForeignKey{}}
}

func (b *foreignKeyBuilder) add(name, column, referencedTable, referencedColumn string) {
	fk, ok := b.byName[name]
	if !ok {
		fk = &datadict.ForeignKey{Name: name, ReferencedTable: referencedTable}
		b.byName[name] = fk
		b.keys = append(b.keys, fk)
	}

	fk.Columns = append(fk.Columns, column)
	if referencedColumn != "" {
		fk.ReferencedColumns = append(fk.ReferencedColumns, referencedColumn)
	}
}

// formatTypeName upper-cases a type declaration outside of quoted literals,
// so "varchar(45)" becomes "VARCHAR(45)" while enum values keep their case.
func formatTypeName(typeName string) string {
	var b strings.Builder

	quoted := false

	for _, r := range typeName {
		if r == '\'' {
			quoted = !quoted
		}

		if quoted {
			b.WriteRune(r)
		} else {
			b.WriteString(strings.ToUpper(string(r)))
		}
	}

	return b.String()
}
