package schemaimport

import (
	"context"

	datadict "github.com/lacek/wb-datadict"
)

// Runtime holds resolved tbls configuration alongside the converted catalog.
type Runtime struct {
	Config Config
	Schema *datadict.Schema
}

// LoadRuntime resolves tbls configuration from opts, loads schema JSON, and converts the selected schema.
func LoadRuntime(ctx context.Context, opts Options) (*Runtime, error) {
	cfg, err := ResolveConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	importer := NewImporter(cfg)
	if err := importer.LoadSchemaJSON(ctx); err != nil {
		return nil, err
	}

	schema, err := importer.Convert(ctx, cfg.Schema)
	if err != nil {
		return nil, err
	}

	cfg.logf("Runtime prepared: schema=%s tables=%d", schema.Name, len(schema.Tables))

	return &Runtime{Config: cfg, Schema: schema}, nil
}

// LoadSchema is a shorthand for LoadRuntime returning only the catalog.
func LoadSchema(ctx context.Context, opts Options) (*datadict.Schema, error) {
	rt, err := LoadRuntime(ctx, opts)
	if err != nil {
		return nil, err
	}

	return rt.Schema, nil
}
