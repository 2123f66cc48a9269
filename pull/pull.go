// Package pull reads a schema catalog from a live database.
//
// MySQL, PostgreSQL and SQLite are supported through database/sql. The
// result is a *datadict.Schema, which can be rendered directly or stored as
// a YAML snapshot for later runs.
package pull

import (
	"time"

	datadict "github.com/lacek/wb-datadict"
)

// PullConfig contains configuration for the pull operation
type PullConfig struct {
	DatabaseURL   string
	DatabaseType  string // derived from DatabaseURL when empty
	Schema        string // schema (PostgreSQL) or database (MySQL) to read
	OutputPath    string // YAML snapshot path; empty skips writing
	IncludeTables []string
	ExcludeTables []string
	Logger        func(format string, args ...any)
}

// PullResult contains the result of a pull operation
type PullResult struct {
	Schema       *datadict.Schema
	ExtractedAt  time.Time
	DatabaseInfo DatabaseInfo
	OutputPath   string
}

// ExtractConfig contains configuration for schema extraction
type ExtractConfig struct {
	Schema        string
	IncludeTables []string
	ExcludeTables []string
}

// DatabaseInfo describes the database server a schema was read from.
type DatabaseInfo struct {
	Type    string
	Version string
	Name    string
}

func (c PullConfig) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger(format, args...)
	}
}
