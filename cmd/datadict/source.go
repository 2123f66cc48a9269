package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	datadict "github.com/lacek/wb-datadict"
	"github.com/lacek/wb-datadict/mwb"
	"github.com/lacek/wb-datadict/pull"
	"github.com/lacek/wb-datadict/schemaimport"
)

// sourceFlags are the mutually exclusive ways of naming a catalog.
type sourceFlags struct {
	DB         string `help:"Database connection URL (postgres://, mysql://, sqlite://)" group:"source"`
	Env        string `help:"Database environment from configuration" group:"source"`
	Snapshot   string `help:"YAML schema snapshot written by 'datadict pull'" type:"path" group:"source"`
	Tbls       string `help:"tbls schema.json file" type:"path" group:"source"`
	TblsConfig string `name:"tbls-config" help:"tbls configuration file locating schema.json" type:"path" group:"source"`
	MWB        string `name:"mwb" help:"MySQL Workbench model file (.mwb)" type:"path" group:"source"`
	Schema     string `help:"Schema to document (database for MySQL, schema for PostgreSQL and Workbench models)"`
}

func (s sourceFlags) count() int {
	n := 0

	for _, v := range []string{s.DB, s.Env, s.Snapshot, s.Tbls, s.TblsConfig, s.MWB} {
		if v != "" {
			n++
		}
	}

	return n
}

// loadSchema reads the catalog named by the flags. sourcePath is the file
// the catalog came from, or empty for live databases.
func (s sourceFlags) loadSchema(ctx context.Context, appCtx *Context, config *datadict.Config) (schema *datadict.Schema, sourcePath string, err error) {
	if s.count() > 1 {
		return nil, "", ErrConflictingSources
	}

	switch {
	case s.Snapshot != "":
		verbosef(appCtx, "Loading snapshot %s", s.Snapshot)

		schema, err = pull.LoadSnapshot(s.Snapshot)

		return schema, s.Snapshot, err
	case s.MWB != "":
		verbosef(appCtx, "Loading Workbench model %s", s.MWB)

		model, err := mwb.Open(s.MWB)
		if err != nil {
			return nil, "", err
		}

		schema, err = model.Schema(s.Schema)

		return schema, s.MWB, err
	case s.Tbls != "" || s.TblsConfig != "":
		schema, err = schemaimport.LoadSchema(ctx, s.tblsOptions(appCtx, ""))
		if err != nil {
			return nil, "", err
		}

		path := s.Tbls
		if path == "" {
			path = s.TblsConfig
		}

		return schema, path, nil
	case s.DB != "" || s.Env != "" || len(config.Databases) > 0:
		return s.pullSchema(ctx, appCtx, config)
	}

	// Without any source, a tbls project next to the configuration is used.
	schema, err = schemaimport.LoadSchema(ctx, s.tblsOptions(appCtx, configBaseDir(appCtx.Config)))
	if errors.Is(err, schemaimport.ErrTblsConfigNotFound) {
		return nil, "", ErrMissingDBOrEnv
	}

	if err != nil {
		return nil, "", err
	}

	return schema, "", nil
}

func (s sourceFlags) pullSchema(ctx context.Context, appCtx *Context, config *datadict.Config) (*datadict.Schema, string, error) {
	db, err := resolveDatabase(config, s.DB, s.Env)
	if err != nil {
		return nil, "", err
	}

	schemaName := s.Schema
	if schemaName == "" {
		schemaName = db.Schema
	}

	result, err := pull.ExecutePull(ctx, pull.PullConfig{
		DatabaseURL:  db.Connection,
		DatabaseType: db.Driver,
		Schema:       schemaName,
		Logger:       logger(appCtx),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to pull schema: %w", err)
	}

	return result.Schema, "", nil
}

func (s sourceFlags) tblsOptions(appCtx *Context, workingDir string) schemaimport.Options {
	return schemaimport.Options{
		WorkingDir:     workingDir,
		TblsConfigPath: s.TblsConfig,
		SchemaJSONPath: s.Tbls,
		Schema:         s.Schema,
		Verbose:        appCtx.Verbose,
		Logger:         logger(appCtx),
	}
}

// resolveDatabase picks the connection: an explicit URL wins over a named
// environment, which falls back to the configured default environment.
func resolveDatabase(config *datadict.Config, dbURL, env string) (datadict.Database, error) {
	if dbURL != "" {
		return datadict.Database{Connection: dbURL}, nil
	}

	if len(config.Databases) == 0 {
		if env != "" {
			return datadict.Database{}, fmt.Errorf("%w: '%s'", ErrNoDatabasesConfigured, env)
		}

		return datadict.Database{}, ErrMissingDBOrEnv
	}

	db, err := config.ResolveDatabase(env)
	if err != nil {
		return datadict.Database{}, err
	}

	if db.Connection == "" {
		return datadict.Database{}, ErrEmptyConnectionString
	}

	return db, nil
}

// configBaseDir returns the directory holding the configuration file.
func configBaseDir(configPath string) string {
	if configPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "."
		}

		return cwd
	}

	if !filepath.IsAbs(configPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return "."
		}

		return filepath.Dir(filepath.Join(cwd, configPath))
	}

	return filepath.Dir(configPath)
}

func logger(appCtx *Context) func(format string, args ...any) {
	if !appCtx.Verbose {
		return nil
	}

	return func(format string, args ...any) {
		color.Cyan(format, args...)
	}
}

func verbosef(appCtx *Context, format string, args ...any) {
	if appCtx.Verbose {
		color.Blue(format, args...)
	}
}
