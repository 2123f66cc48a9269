// Package render turns a catalog snapshot into a single static HTML data
// dictionary. Rendering is a pure function of its arguments: no I/O, no
// hidden state, and the input schema is never modified.
package render

import (
	"fmt"
	"slices"
	"strings"
	"time"

	datadict "github.com/lacek/wb-datadict"
)

// DateLayout is how the generation date is printed in the header.
const DateLayout = "2006-01-02"

// Options adjusts the rendered document. The zero value reproduces the
// legacy output of the Workbench plugin.
type Options struct {
	// EscapeAll also escapes schema/table/column names, formatted types and
	// default values. By default only comments are escaped.
	EscapeAll bool
	// NullDefault is printed in the Default cell of columns without a default.
	NullDefault string
	// Preface is trusted HTML placed between the header and the index.
	Preface string
}

// Render returns the data dictionary document for schema, stamped with today.
func Render(schema *datadict.Schema, today time.Time) string {
	return RenderWithOptions(schema, today, Options{})
}

// RenderWithOptions is Render with explicit Options.
func RenderWithOptions(schema *datadict.Schema, today time.Time, opts Options) string {
	r := renderer{opts: opts}
	if schema == nil {
		schema = &datadict.Schema{}
	}

	tables := SortedTables(schema)

	r.header(schema, today)
	r.b.WriteString(opts.Preface)
	r.index(tables)

	for _, table := range tables {
		r.table(table)
	}

	r.b.WriteString(footer)

	return r.b.String()
}

// SortedTables returns the schema's tables ordered by name using a
// byte-wise (code point) comparison. The schema itself is left untouched.
func SortedTables(schema *datadict.Schema) []*datadict.Table {
	if schema == nil {
		return nil
	}

	tables := make([]*datadict.Table, 0, len(schema.Tables))
	for _, t := range schema.Tables {
		if t != nil {
			tables = append(tables, t)
		}
	}

	slices.SortStableFunc(tables, func(a, b *datadict.Table) int {
		return strings.Compare(a.Name, b.Name)
	})

	return tables
}

type renderer struct {
	b    strings.Builder
	opts Options
}

// text escapes s only when EscapeAll is set; comments always go through Escape.
func (r *renderer) text(s string) string {
	if r.opts.EscapeAll {
		return Escape(s)
	}

	return s
}

func (r *renderer) header(schema *datadict.Schema, today time.Time) {
	name := r.text(schema.Name)

	r.b.WriteString("<!DOCTYPE html>\n")
	r.b.WriteString("<html lang=\"en\">\n")
	r.b.WriteString("<head>\n")
	r.b.WriteString("    <meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&r.b, "    <meta name=\"author\" content=\"%s\">\n", GeneratorName)
	fmt.Fprintf(&r.b, "    <meta name=\"description\" content=\"%s Data Dictionary.\">\n", name)
	fmt.Fprintf(&r.b, "    <title>%s Data Dictionary</title>\n", name)
	fmt.Fprintf(&r.b, "    <script src=\"%s\"></script>\n", jQueryURL)
	r.b.WriteString(headScript)
	r.b.WriteString(headStyle)
	r.b.WriteString("</head>\n")
	r.b.WriteString("<body>\n")
	r.b.WriteString("<header>\n")
	fmt.Fprintf(&r.b, "<h1>%s<br> Data Dictionary</h1>\n", name)
	r.b.WriteString("<p>\n")
	fmt.Fprintf(&r.b, "<em>%s</em>\n", today.Format(DateLayout))
	r.b.WriteString("</p>\n")
	r.b.WriteString("<p>\n")
	fmt.Fprintf(&r.b, "<em>%s</em>\n", Escape(schema.Comment))
	r.b.WriteString("</p>\n")
	r.b.WriteString("</header>\n")
}

func (r *renderer) index(tables []*datadict.Table) {
	r.b.WriteString("<h2>Alphabetic Index</h2>\n")
	r.b.WriteString("<ul>\n")

	for _, table := range tables {
		name := r.text(table.Name)
		fmt.Fprintf(&r.b, "<li><a href='#%s'>%s</a></li>\n", name, name)
	}

	r.b.WriteString("</ul>\n")
}

func (r *renderer) table(table *datadict.Table) {
	name := r.text(table.Name)

	fmt.Fprintf(&r.b, "<table id='%s'>\n", name)
	fmt.Fprintf(&r.b, "<caption>%s</caption>\n", name)
	fmt.Fprintf(&r.b, "<tr><td colspan='12'>%s</td></tr>\n", Escape(table.Comment))
	r.b.WriteString(columnHeaderRow)

	for _, column := range table.Columns {
		if column != nil {
			r.column(column, table)
		}
	}

	r.b.WriteString("</table>\n")
}

func (r *renderer) column(column *datadict.Column, table *datadict.Table) {
	r.b.WriteString("<tr>\n")
	fmt.Fprintf(&r.b, "    <td class='field'>%s</td>\n", r.text(column.Name))
	fmt.Fprintf(&r.b, "    <td>%s</td>\n", r.text(column.FormattedType))

	r.flag(table.IsPrimaryKeyColumn(column))

	if table.IsForeignKeyColumn(column) {
		fmt.Fprintf(&r.b, "    <td class='centered'><a href='#%s'>&#10004;</a></td>\n", r.text(ForeignKeyTarget(column.Name)))
	} else {
		r.b.WriteString(uncheckedCell)
	}

	r.flag(column.IsNotNull)
	r.flag(IsUniqueByConvention(column, table))
	r.flag(column.HasFlag(datadict.FlagBinary))
	r.flag(column.HasFlag(datadict.FlagUnsigned))
	r.flag(column.HasFlag(datadict.FlagZeroFill))
	r.flag(column.AutoIncrement)

	fmt.Fprintf(&r.b, "    <td>%s</td>\n", r.defaultValue(column))
	fmt.Fprintf(&r.b, "    <td>%s</td>\n", Escape(column.Comment))
	r.b.WriteString("</tr>\n")
}

func (r *renderer) flag(set bool) {
	if set {
		r.b.WriteString(checkedCell)
		return
	}

	r.b.WriteString(uncheckedCell)
}

func (r *renderer) defaultValue(column *datadict.Column) string {
	if column.DefaultValue == nil {
		return r.text(r.opts.NullDefault)
	}

	return r.text(*column.DefaultValue)
}
