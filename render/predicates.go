package render

import (
	"strings"

	datadict "github.com/lacek/wb-datadict"
)

// UniqueIndexSuffix is appended to a column name by the modelling tool when it
// creates a single-column unique index.
const UniqueIndexSuffix = "_UNIQUE"

// foreignKeySuffix is stripped from a column name to guess the referenced table.
const foreignKeySuffix = "_id"

// IsUniqueByConvention reports whether table has an index named
// "<column name>_UNIQUE". Index members are not inspected.
func IsUniqueByConvention(column *datadict.Column, table *datadict.Table) bool {
	if column == nil || table == nil {
		return false
	}

	want := column.Name + UniqueIndexSuffix

	for _, index := range table.Indices {
		if index != nil && index.Name == want {
			return true
		}
	}

	return false
}

// ForeignKeyTarget returns the anchor a foreign key column links to: the column
// name with one trailing "_id" removed. The anchor is not checked to exist.
func ForeignKeyTarget(columnName string) string {
	return strings.TrimSuffix(columnName, foreignKeySuffix)
}
