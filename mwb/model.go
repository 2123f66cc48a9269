// Package mwb reads MySQL Workbench model files (.mwb) into catalog snapshots.
//
// A model file is a zip archive whose document.mwb.xml holds the serialized
// Workbench object graph. Only the physical model's catalog is read; diagrams,
// routines and views are ignored.
package mwb

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/beevik/etree"

	datadict "github.com/lacek/wb-datadict"
)

// DocumentName is the archive entry holding the model document.
const DocumentName = "document.mwb.xml"

const documentType = "MySQL Workbench Model"

// Model is a parsed Workbench catalog.
type Model struct {
	schemas       []*datadict.Schema
	defaultSchema string
}

// Open reads the model file at path.
func Open(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat model %q: %w", path, err)
	}

	model, err := Read(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return model, nil
}

// Read parses a model archive of the given size.
func Read(r io.ReaderAt, size int64) (*Model, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWorkbenchModel, err)
	}

	for _, file := range archive.File {
		if path.Base(file.Name) != DocumentName {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", DocumentName, err)
		}

		data, err := io.ReadAll(rc)
		rc.Close()

		if err != nil {
			return nil, fmt.Errorf("read %s: %w", DocumentName, err)
		}

		return ParseDocument(data)
	}

	return nil, ErrDocumentMissing
}

// ParseDocument parses the content of document.mwb.xml.
func ParseDocument(data []byte) (*Model, error) {
	doc := etree.NewDocument()

	if err := doc.ReadFromBytes(bytes.TrimSpace(data)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWorkbenchModel, err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "data" || root.SelectAttrValue("document_type", "") != documentType {
		return nil, fmt.Errorf("%w: unexpected document root", ErrNotWorkbenchModel)
	}

	catalog := root.FindElement("//value[@struct-name='db.mysql.Catalog']")
	if catalog == nil {
		return nil, fmt.Errorf("%w: model has no catalog", ErrNotWorkbenchModel)
	}

	p := newParser(root)
	model := &Model{}

	for _, schemaObj := range objects(catalog, "schemata") {
		schema := p.schema(schemaObj)
		model.schemas = append(model.schemas, schema)

		if objectID(schemaObj) == link(catalog, "defaultSchema") {
			model.defaultSchema = schema.Name
		}
	}

	if model.defaultSchema == "" && len(model.schemas) > 0 {
		model.defaultSchema = model.schemas[0].Name
	}

	return model, nil
}

// Schemas returns the schema names in model order.
func (m *Model) Schemas() []string {
	names := make([]string, 0, len(m.schemas))
	for _, s := range m.schemas {
		names = append(names, s.Name)
	}

	return names
}

// Schema returns the named schema. An empty name selects the default schema.
func (m *Model) Schema(name string) (*datadict.Schema, error) {
	if name == "" {
		return m.DefaultSchema()
	}

	for _, s := range m.schemas {
		if s.Name == name {
			return s, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
}

// DefaultSchema returns the catalog's default schema, or the first schema
// when the model does not name one.
func (m *Model) DefaultSchema() (*datadict.Schema, error) {
	if m.defaultSchema == "" {
		return nil, fmt.Errorf("%w: model has no schemas", ErrSchemaNotFound)
	}

	return m.Schema(m.defaultSchema)
}

// parser resolves links between objects of one document.
type parser struct {
	columns   map[string]string // column id -> name
	tables    map[string]string // table id -> name
	userTypes map[string]string // user datatype id -> SQL definition
}

func newParser(root *etree.Element) *parser {
	p := &parser{
		columns:   make(map[string]string),
		tables:    make(map[string]string),
		userTypes: make(map[string]string),
	}

	for _, col := range root.FindElements("//value[@struct-name='db.mysql.Column']") {
		p.columns[objectID(col)] = stringMember(col, "name")
	}

	for _, tbl := range root.FindElements("//value[@struct-name='db.mysql.Table']") {
		p.tables[objectID(tbl)] = stringMember(tbl, "name")
	}

	for _, ut := range root.FindElements("//value[@struct-name='db.UserDatatype']") {
		def := stringMember(ut, "sqlDefinition")
		if def == "" {
			def = stringMember(ut, "name")
		}

		p.userTypes[objectID(ut)] = def
	}

	return p
}

func (p *parser) schema(obj *etree.Element) *datadict.Schema {
	schema := &datadict.Schema{
		Name:    stringMember(obj, "name"),
		Comment: stringMember(obj, "comment"),
		Tables:  []*datadict.Table{},
	}

	for _, tbl := range objects(obj, "tables") {
		schema.Tables = append(schema.Tables, p.table(tbl))
	}

	return schema
}

func (p *parser) table(obj *etree.Element) *datadict.Table {
	table := &datadict.Table{
		Name:    stringMember(obj, "name"),
		Comment: stringMember(obj, "comment"),
		Columns: []*datadict.Column{},
	}

	for _, col := range objects(obj, "columns") {
		table.Columns = append(table.Columns, p.column(col))
	}

	primaryID := link(obj, "primaryKey")

	for _, idx := range objects(obj, "indices") {
		index := &datadict.Index{
			Name:    stringMember(idx, "name"),
			Type:    strings.ToUpper(stringMember(idx, "indexType")),
			Columns: p.indexColumns(idx),
		}

		table.Indices = append(table.Indices, index)

		if objectID(idx) == primaryID || (primaryID == "" && index.Type == "PRIMARY") {
			table.PrimaryKey = append([]string(nil), index.Columns...)
		}
	}

	for _, fk := range objects(obj, "foreignKeys") {
		table.ForeignKeys = append(table.ForeignKeys, &datadict.ForeignKey{
			Name:              stringMember(fk, "name"),
			Columns:           p.columnNames(linkList(fk, "columns")),
			ReferencedTable:   p.tables[link(fk, "referencedTable")],
			ReferencedColumns: p.columnNames(linkList(fk, "referencedColumns")),
		})
	}

	return table
}

func (p *parser) column(obj *etree.Element) *datadict.Column {
	column := &datadict.Column{
		Name:          stringMember(obj, "name"),
		FormattedType: p.formattedType(obj),
		Comment:       stringMember(obj, "comment"),
		IsNotNull:     boolMember(obj, "isNotNull"),
		AutoIncrement: boolMember(obj, "autoIncrement"),
		Flags:         stringList(obj, "flags"),
	}

	switch def := stringMember(obj, "defaultValue"); {
	case boolMember(obj, "defaultValueIsNull"):
		column.DefaultValue = datadict.StringPtr("NULL")
	case def != "":
		column.DefaultValue = datadict.StringPtr(def)
	}

	return column
}

// formattedType prefers the stored formattedType. Otherwise it is derived
// from the simple or user datatype plus length, precision and scale.
func (p *parser) formattedType(obj *etree.Element) string {
	if formatted := stringMember(obj, "formattedType"); formatted != "" {
		return formatted
	}

	var base string

	if simple := member(obj, "simpleType"); simple != nil && strings.TrimSpace(simple.Text()) != "" {
		ref := strings.TrimSpace(simple.Text())
		base = strings.ToUpper(ref[strings.LastIndex(ref, ".")+1:])
	} else if def, ok := p.userTypes[link(obj, "userType")]; ok {
		return def
	}

	length := intMember(obj, "length", -1)
	precision := intMember(obj, "precision", -1)
	scale := intMember(obj, "scale", -1)

	switch {
	case stringMember(obj, "datatypeExplicitParams") != "":
		return base + stringMember(obj, "datatypeExplicitParams")
	case length > 0:
		return fmt.Sprintf("%s(%d)", base, length)
	case precision > 0 && scale >= 0:
		return fmt.Sprintf("%s(%d,%d)", base, precision, scale)
	case precision > 0:
		return fmt.Sprintf("%s(%d)", base, precision)
	default:
		return base
	}
}

func (p *parser) indexColumns(idx *etree.Element) []string {
	var names []string

	for _, ic := range objects(idx, "columns") {
		if name, ok := p.columns[link(ic, "referencedColumn")]; ok {
			names = append(names, name)
		}
	}

	return names
}

func (p *parser) columnNames(ids []string) []string {
	var names []string

	for _, id := range ids {
		if name, ok := p.columns[id]; ok {
			names = append(names, name)
		}
	}

	return names
}
