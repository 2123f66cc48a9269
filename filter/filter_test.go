package filter

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	datadict "github.com/lacek/wb-datadict"
)

func TestMatchWildcard(t *testing.T) {
	tests := []struct {
		pattern  string
		text     string
		expected bool
	}{
		{"users", "users", true},
		{"users", "user", false},
		{"*", "anything", true},
		{"user_*", "user_roles", true},
		{"user_*", "users", false},
		{"*_log", "audit_log", true},
		{"[", "[", true},
		{"tmp*", "tmp", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, MatchWildcard(tt.pattern, tt.text))
		})
	}
}

func TestShouldInclude(t *testing.T) {
	tests := []struct {
		name     string
		table    string
		include  []string
		exclude  []string
		expected bool
	}{
		{"no filters", "users", nil, nil, true},
		{"included", "users", []string{"users"}, nil, true},
		{"not included", "orders", []string{"users"}, nil, false},
		{"excluded", "tmp_a", nil, []string{"tmp_*"}, false},
		{"exclude wins", "tmp_a", []string{"*"}, []string{"tmp_*"}, false},
		{"wildcard include", "user_roles", []string{"user_*"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldInclude(tt.table, tt.include, tt.exclude))
		})
	}
}

func createTestSchema() *datadict.Schema {
	return &datadict.Schema{
		Name:    "shop",
		Comment: "Shop schema",
		Tables: []*datadict.Table{
			{
				Name:       "orders",
				Comment:    "Customer orders",
				Columns:    []*datadict.Column{{Name: "id"}, {Name: "customer_id"}},
				PrimaryKey: []string{"id"},
			},
			{
				Name:    "tmp_import",
				Columns: []*datadict.Column{{Name: "line"}},
			},
			nil,
			{
				Name:       "customers",
				Comment:    "deprecated",
				Columns:    []*datadict.Column{{Name: "id"}},
				PrimaryKey: []string{"id"},
			},
		},
	}
}

func tableNames(schema *datadict.Schema) []string {
	names := []string{}
	for _, table := range schema.Tables {
		names = append(names, table.Name)
	}

	return names
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		rules    Rules
		expected []string
	}{
		{"no rules", Rules{}, []string{"orders", "tmp_import", "customers"}},
		{"exclude", Rules{Exclude: []string{"tmp_*"}}, []string{"orders", "customers"}},
		{"include", Rules{Include: []string{"cust*"}}, []string{"customers"}},
		{"where primary key", Rules{Where: "has_primary_key"}, []string{"orders", "customers"}},
		{"where columns", Rules{Where: "columns > 1"}, []string{"orders"}},
		{"where comment", Rules{Where: `!comment.contains("deprecated")`}, []string{"orders", "tmp_import"}},
		{"combined", Rules{Exclude: []string{"orders"}, Where: "name.startsWith('c')"}, []string{"customers"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := createTestSchema()

			result, err := Apply(schema, tt.rules)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, tableNames(result))
			assert.Equal(t, "shop", result.Name)
			assert.Equal(t, "Shop schema", result.Comment)
			assert.Equal(t, 4, len(schema.Tables))
		})
	}
}

func TestApplyNilSchema(t *testing.T) {
	result, err := Apply(nil, Rules{Where: "true"})
	assert.NoError(t, err)
	assert.Zero(t, result)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"syntax", "name =="},
		{"unknown variable", "rows > 3"},
		{"not bool", "columns + 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.expr)
			assert.IsError(t, err, ErrInvalidExpression)
		})
	}

	t.Run("Apply propagates", func(t *testing.T) {
		_, err := Apply(createTestSchema(), Rules{Where: "name =="})
		assert.IsError(t, err, ErrInvalidExpression)
	})
}

func TestPredicateMatch(t *testing.T) {
	predicate, err := Compile(`name == "orders" && columns == 2`)
	assert.NoError(t, err)
	assert.Equal(t, `name == "orders" && columns == 2`, predicate.String())

	ok, err := predicate.Match(createTestSchema().Tables[0])
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = predicate.Match(&datadict.Table{Name: "orders"})
	assert.NoError(t, err)
	assert.False(t, ok)
}
