package datadict

import (
	"fmt"
	"slices"
)

// Well-known column flags.
const (
	FlagBinary   = "BINARY"
	FlagUnsigned = "UNSIGNED"
	FlagZeroFill = "ZEROFILL"
)

// Schema is a read-only snapshot of one database schema.
type Schema struct {
	Name    string   `json:"name" yaml:"name"`
	Comment string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	Tables  []*Table `json:"tables" yaml:"tables"`
}

// Table is a table of a Schema. Columns keep their native order.
type Table struct {
	Name        string        `json:"name" yaml:"name"`
	Comment     string        `json:"comment,omitempty" yaml:"comment,omitempty"`
	Columns     []*Column     `json:"columns" yaml:"columns"`
	Indices     []*Index      `json:"indices,omitempty" yaml:"indices,omitempty"`
	PrimaryKey  []string      `json:"primaryKey,omitempty" yaml:"primary_key,omitempty,flow"`
	ForeignKeys []*ForeignKey `json:"foreignKeys,omitempty" yaml:"foreign_keys,omitempty"`
}

// Column is a single table column.
type Column struct {
	Name          string   `json:"name" yaml:"name"`
	FormattedType string   `json:"formattedType" yaml:"formatted_type"`
	Comment       string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	IsNotNull     bool     `json:"isNotNull,omitempty" yaml:"is_not_null,omitempty"`
	AutoIncrement bool     `json:"autoIncrement,omitempty" yaml:"auto_increment,omitempty"`
	DefaultValue  *string  `json:"defaultValue,omitempty" yaml:"default_value,omitempty"` // nil means no default
	Flags         []string `json:"flags,omitempty" yaml:"flags,omitempty,flow"`
}

// Index is a table index. Only the name takes part in rendering.
type Index struct {
	Name    string   `json:"name" yaml:"name"`
	Type    string   `json:"type,omitempty" yaml:"type,omitempty"` // PRIMARY, UNIQUE, INDEX, ...
	Columns []string `json:"columns,omitempty" yaml:"columns,omitempty,flow"`
}

// ForeignKey is a foreign key constraint of a table.
type ForeignKey struct {
	Name              string   `json:"name" yaml:"name"`
	Columns           []string `json:"columns" yaml:"columns,flow"`
	ReferencedTable   string   `json:"referencedTable,omitempty" yaml:"referenced_table,omitempty"`
	ReferencedColumns []string `json:"referencedColumns,omitempty" yaml:"referenced_columns,omitempty,flow"`
}

// IsPrimaryKeyColumn reports whether column is part of the table's primary key.
func (t *Table) IsPrimaryKeyColumn(column *Column) bool {
	if t == nil || column == nil {
		return false
	}

	for _, name := range t.PrimaryKey {
		if name == column.Name {
			return true
		}
	}

	return false
}

// IsForeignKeyColumn reports whether column takes part in any foreign key of the table.
func (t *Table) IsForeignKeyColumn(column *Column) bool {
	if t == nil || column == nil {
		return false
	}

	for _, fk := range t.ForeignKeys {
		if fk == nil {
			continue
		}

		for _, name := range fk.Columns {
			if name == column.Name {
				return true
			}
		}
	}

	return false
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	if t == nil {
		return nil
	}

	for _, c := range t.Columns {
		if c != nil && c.Name == name {
			return c
		}
	}

	return nil
}

// HasFlag reports whether flag is set on the column. Flags match exactly.
func (c *Column) HasFlag(flag string) bool {
	if c == nil {
		return false
	}

	return slices.Contains(c.Flags, flag)
}

// Table returns the table with the given name, or nil.
func (s *Schema) Table(name string) *Table {
	if s == nil {
		return nil
	}

	for _, t := range s.Tables {
		if t != nil && t.Name == name {
			return t
		}
	}

	return nil
}

// Validate checks the caller contract of the renderer: every table and column
// is present and named, and table names are unique within the schema.
func (s *Schema) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: schema is nil", ErrSchemaValidationFailed)
	}

	seen := make(map[string]struct{}, len(s.Tables))

	for i, t := range s.Tables {
		if t == nil {
			return fmt.Errorf("%w: table #%d is nil", ErrSchemaValidationFailed, i)
		}

		if t.Name == "" {
			return fmt.Errorf("%w: table #%d has no name", ErrSchemaValidationFailed, i)
		}

		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("%w: duplicate table name %q", ErrSchemaValidationFailed, t.Name)
		}

		seen[t.Name] = struct{}{}

		for j, c := range t.Columns {
			if c == nil {
				return fmt.Errorf("%w: table %q: column #%d is nil", ErrSchemaValidationFailed, t.Name, j)
			}

			if c.Name == "" {
				return fmt.Errorf("%w: table %q: column #%d has no name", ErrSchemaValidationFailed, t.Name, j)
			}
		}

		for j, idx := range t.Indices {
			if idx == nil {
				return fmt.Errorf("%w: table %q: index #%d is nil", ErrSchemaValidationFailed, t.Name, j)
			}
		}
	}

	return nil
}

// StringPtr returns a pointer to s. Handy for DefaultValue literals.
func StringPtr(s string) *string {
	return &s
}
