package schemaimport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	tblsschema "github.com/k1LoW/tbls/schema"

	datadict "github.com/lacek/wb-datadict"
	"github.com/lacek/wb-datadict/filter"
	"github.com/lacek/wb-datadict/pull"
)

// Importer loads a tbls schema.json document and converts it into a catalog.
type Importer struct {
	cfg          *Config
	schema       *tblsschema.Schema
	schemaLoaded bool
}

// NewImporter constructs an Importer from a Config.
func NewImporter(cfg Config) *Importer {
	copyCfg := cfg
	return &Importer{cfg: &copyCfg}
}

// Config returns the resolved configuration backing the importer.
func (i *Importer) Config() *Config {
	if i == nil {
		return nil
	}

	return i.cfg
}

// LoadSchemaJSON loads the tbls JSON artefact into memory ready for conversion.
func (i *Importer) LoadSchemaJSON(ctx context.Context) error {
	if i == nil || i.cfg == nil {
		return ErrImporterNil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	path := i.cfg.SchemaJSONPath
	if strings.TrimSpace(path) == "" {
		return ErrSchemaJSONPathMissing
	}

	if !filepath.IsAbs(path) {
		base := i.cfg.WorkingDir
		if base == "" {
			base = "."
		}

		path = filepath.Join(base, path)
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("schemaimport: open schema JSON %q: %w", path, err)
	}
	defer file.Close()

	schema, err := decodeSchemaJSON(file)
	if err != nil {
		return fmt.Errorf("schemaimport: decode schema JSON %q: %w", path, err)
	}

	if err := validateSchema(schema); err != nil {
		return fmt.Errorf("schemaimport: invalid schema JSON %q: %w", path, err)
	}

	i.logf("Loaded schema JSON (%s) tables=%d", schema.Driver.Name, len(schema.Tables))

	i.schema = schema
	i.schemaLoaded = true

	return nil
}

// Schemas lists the schema names present in the loaded document, sorted.
func (i *Importer) Schemas() ([]string, error) {
	if i == nil {
		return nil, ErrImporterNil
	}

	if !i.schemaLoaded || i.schema == nil {
		return nil, ErrSchemaNotLoaded
	}

	var names []string

	for _, tbl := range i.schema.Tables {
		if tbl == nil {
			continue
		}

		schemaName, _ := splitSchemaAndName(tbl.Name, i.schema.Driver)
		if schemaName == "" {
			schemaName = i.defaultSchemaName()
		}

		if !slices.Contains(names, schemaName) {
			names = append(names, schemaName)
		}
	}

	slices.Sort(names)

	return names, nil
}

// Convert builds the catalog of schemaName from the loaded document. An
// empty schemaName selects the configured schema, then the driver's current
// schema. Views are skipped.
func (i *Importer) Convert(ctx context.Context, schemaName string) (*datadict.Schema, error) {
	if i == nil {
		return nil, ErrImporterNil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !i.schemaLoaded || i.schema == nil {
		return nil, ErrSchemaNotLoaded
	}

	if schemaName == "" {
		schemaName = i.cfg.Schema
	}

	if schemaName == "" {
		schemaName = i.selectDefaultSchema()
	}

	result := &datadict.Schema{
		Name:    schemaName,
		Comment: i.schema.Desc,
		Tables:  []*datadict.Table{},
	}

	matched := false

	for _, tbl := range i.schema.Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if tbl == nil {
			continue
		}

		tableSchema, tableName := splitSchemaAndName(tbl.Name, i.schema.Driver)
		if tableSchema == "" {
			tableSchema = i.defaultSchemaName()
		}

		if tableSchema != schemaName {
			continue
		}

		matched = true

		if strings.Contains(strings.ToUpper(tbl.Type), "VIEW") {
			i.logf("Skipping view %s", tbl.Name)
			continue
		}

		if !filter.ShouldInclude(tableName, i.cfg.Include, i.cfg.Exclude) {
			continue
		}

		result.Tables = append(result.Tables, convertTable(tbl, tableName))
	}

	if !matched && len(i.schema.Tables) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, schemaName)
	}

	i.logf("Converted schema %s -> %d table(s)", schemaName, len(result.Tables))

	return result, nil
}

// hasLoadedSchema reports whether a schema JSON payload has been loaded.
func (i *Importer) hasLoadedSchema() bool {
	if i == nil {
		return false
	}

	return i.schemaLoaded
}

// selectDefaultSchema picks the driver's current schema, or the schema of the
// first table in the document.
func (i *Importer) selectDefaultSchema() string {
	if driver := i.schema.Driver; driver != nil && driver.Meta != nil && driver.Meta.CurrentSchema != "" {
		return driver.Meta.CurrentSchema
	}

	for _, tbl := range i.schema.Tables {
		if tbl == nil {
			continue
		}

		if schemaName, _ := splitSchemaAndName(tbl.Name, i.schema.Driver); schemaName != "" {
			return schemaName
		}

		break
	}

	return i.defaultSchemaName()
}

// defaultSchemaName names the schema of unqualified tables: the driver's
// current schema, falling back to the database name of the DSN, the tbls
// document name, then the driver name.
func (i *Importer) defaultSchemaName() string {
	if driver := i.schema.Driver; driver != nil && driver.Meta != nil && driver.Meta.CurrentSchema != "" {
		return driver.Meta.CurrentSchema
	}

	if name := inferDatabaseName(i.cfg, i.schema); name != "" {
		return name
	}

	return normalizeDriverName(i.schema.Driver.Name)
}

func (i *Importer) logf(format string, args ...any) {
	if i == nil || i.cfg == nil {
		return
	}

	i.cfg.logf(format, args...)
}

func decodeSchemaJSON(r io.Reader) (*tblsschema.Schema, error) {
	dec := json.NewDecoder(r)

	var schema tblsschema.Schema
	if err := dec.Decode(&schema); err != nil {
		return nil, err
	}

	return &schema, nil
}

func validateSchema(s *tblsschema.Schema) error {
	if s == nil {
		return ErrSchemaPayloadNil
	}

	if s.Driver == nil {
		return ErrDriverMetadataMissing
	}

	if strings.TrimSpace(s.Driver.Name) == "" {
		return ErrDriverNameEmpty
	}

	return nil
}

func convertTable(tbl *tblsschema.Table, tableName string) *datadict.Table {
	table := &datadict.Table{
		Name:    tableName,
		Comment: tbl.Comment,
		Columns: make([]*datadict.Column, 0, len(tbl.Columns)),
	}

	for _, col := range tbl.Columns {
		if col == nil {
			continue
		}

		table.Columns = append(table.Columns, convertColumn(col))
	}

	for _, c := range tbl.Constraints {
		if c == nil {
			continue
		}

		switch strings.ToUpper(c.Type) {
		case "PRIMARY KEY":
			table.PrimaryKey = append([]string(nil), c.Columns...)
		case "FOREIGN KEY":
			fk := &datadict.ForeignKey{
				Name:              c.Name,
				Columns:           append([]string(nil), c.Columns...),
				ReferencedColumns: append([]string(nil), c.ReferencedColumns...),
			}

			if c.ReferencedTable != nil {
				_, fk.ReferencedTable = splitSchemaAndName(*c.ReferencedTable, nil)
			}

			table.ForeignKeys = append(table.ForeignKeys, fk)
		}
	}

	if len(table.PrimaryKey) == 0 {
		for _, col := range tbl.Columns {
			if col != nil && col.PK {
				table.PrimaryKey = append(table.PrimaryKey, col.Name)
			}
		}
	}

	for _, idx := range tbl.Indexes {
		if idx == nil {
			continue
		}

		table.Indices = append(table.Indices, &datadict.Index{
			Name:    idx.Name,
			Type:    parseIndexType(idx),
			Columns: append([]string(nil), idx.Columns...),
		})
	}

	return table
}

func convertColumn(col *tblsschema.Column) *datadict.Column {
	formattedType, flags := pull.ParseColumnType(col.Type)

	column := &datadict.Column{
		Name:          col.Name,
		FormattedType: formattedType,
		Comment:       col.Comment,
		IsNotNull:     !col.Nullable,
		AutoIncrement: isAutoIncrement(col.ExtraDef),
		Flags:         flags,
	}

	switch {
	case col.Default.Valid && pull.IsSequenceDefault(col.Default.String):
		column.AutoIncrement = true
	case col.Default.Valid:
		column.DefaultValue = datadict.StringPtr(col.Default.String)
	}

	return column
}

func isAutoIncrement(extraDef string) bool {
	def := strings.ToUpper(extraDef)
	return strings.Contains(def, "AUTO_INCREMENT") || strings.Contains(def, "AUTOINCREMENT") || strings.Contains(def, "IDENTITY")
}

func normalizeDriverName(driver string) string {
	switch strings.ToLower(driver) {
	case "postgresql", "postgres", "pgx":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return strings.ToLower(driver)
	}
}

func splitSchemaAndName(fullName string, driver *tblsschema.Driver) (string, string) {
	if idx := strings.Index(fullName, "."); idx >= 0 {
		return fullName[:idx], fullName[idx+1:]
	}

	if driver != nil && driver.Meta != nil && driver.Meta.CurrentSchema != "" {
		return driver.Meta.CurrentSchema, fullName
	}

	return "", fullName
}

func parseIndexType(idx *tblsschema.Index) string {
	def := strings.ToUpper(idx.Def)

	switch {
	case strings.Contains(def, "PRIMARY"):
		return "PRIMARY"
	case strings.Contains(def, "UNIQUE"):
		return "UNIQUE"
	default:
		return "INDEX"
	}
}

func inferDatabaseName(cfg *Config, schema *tblsschema.Schema) string {
	if cfg != nil && cfg.TblsConfig != nil {
		if dsn := strings.TrimSpace(cfg.TblsConfig.DSN.URL); dsn != "" {
			if name := extractDatabaseNameFromDSN(dsn); name != "" {
				return name
			}
		}

		if cfg.TblsConfig.Name != "" {
			return cfg.TblsConfig.Name
		}
	}

	if schema != nil && schema.Name != "" {
		return schema.Name
	}

	return ""
}

func extractDatabaseNameFromDSN(dsn string) string {
	if strings.HasPrefix(dsn, "sqlite://") {
		trimmed := strings.TrimSuffix(strings.TrimPrefix(dsn, "sqlite://"), "/")

		base := filepath.Base(trimmed)
		if base == "." || base == "" {
			return "sqlite"
		}

		return strings.TrimSuffix(base, filepath.Ext(base))
	}

	if u, err := url.Parse(dsn); err == nil {
		return strings.TrimPrefix(u.Path, "/")
	}

	return ""
}
