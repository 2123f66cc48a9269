package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"

	datadict "github.com/lacek/wb-datadict"
)

// Predicate is a compiled CEL table filter.
//
// Available variables:
//
//	name             string  table name
//	comment          string  table comment
//	columns          int     number of columns
//	has_primary_key  bool    whether the table declares a primary key
type Predicate struct {
	source  string
	program cel.Program
}

// Compile parses and type-checks expr. The expression must yield a bool.
func Compile(expr string) (*Predicate, error) {
	env, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("comment", cel.StringType),
		cel.Variable("columns", cel.IntType),
		cel.Variable("has_primary_key", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidExpression, expr, issues.Err())
	}

	if ast.OutputType() == nil || !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w: %s: expression must evaluate to bool", ErrInvalidExpression, expr)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidExpression, expr, err)
	}

	return &Predicate{source: expr, program: program}, nil
}

// String returns the source expression.
func (p *Predicate) String() string {
	return p.source
}

// Match evaluates the predicate against table.
func (p *Predicate) Match(table *datadict.Table) (bool, error) {
	out, _, err := p.program.Eval(map[string]any{
		"name":            table.Name,
		"comment":         table.Comment,
		"columns":         int64(len(table.Columns)),
		"has_primary_key": len(table.PrimaryKey) > 0,
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate %q: %w", p.source, err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s: expression must evaluate to bool", ErrInvalidExpression, p.source)
	}

	return result, nil
}
