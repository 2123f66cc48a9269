// Package filter selects the tables that end up in a data dictionary.
//
// Selection combines glob include/exclude lists with an optional CEL
// expression evaluated per table.
package filter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	datadict "github.com/lacek/wb-datadict"
)

// ErrInvalidExpression is returned when a CEL table predicate does not compile.
var ErrInvalidExpression = errors.New("invalid table filter expression")

// Rules describes which tables to keep.
type Rules struct {
	Include []string
	Exclude []string
	Where   string
}

// MatchWildcard performs simple wildcard matching with * character
func MatchWildcard(pattern, text string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == text
	}

	matched, err := filepath.Match(pattern, text)
	if err != nil {
		// Broken patterns degrade to exact match
		return pattern == text
	}

	return matched
}

// ShouldInclude reports whether name passes the include/exclude lists.
// Exclusion wins; an empty include list includes everything.
func ShouldInclude(name string, include, exclude []string) bool {
	for _, pattern := range exclude {
		if MatchWildcard(pattern, name) {
			return false
		}
	}

	if len(include) == 0 {
		return true
	}

	for _, pattern := range include {
		if MatchWildcard(pattern, name) {
			return true
		}
	}

	return false
}

// Apply returns a copy of schema holding only the tables selected by rules.
// Table values are shared with the input; the input schema is not modified.
func Apply(schema *datadict.Schema, rules Rules) (*datadict.Schema, error) {
	if schema == nil {
		return nil, nil
	}

	var predicate *Predicate

	if strings.TrimSpace(rules.Where) != "" {
		p, err := Compile(rules.Where)
		if err != nil {
			return nil, err
		}

		predicate = p
	}

	result := &datadict.Schema{
		Name:    schema.Name,
		Comment: schema.Comment,
		Tables:  make([]*datadict.Table, 0, len(schema.Tables)),
	}

	for _, table := range schema.Tables {
		if table == nil || !ShouldInclude(table.Name, rules.Include, rules.Exclude) {
			continue
		}

		if predicate != nil {
			ok, err := predicate.Match(table)
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", table.Name, err)
			}

			if !ok {
				continue
			}
		}

		result.Tables = append(result.Tables, table)
	}

	return result, nil
}
