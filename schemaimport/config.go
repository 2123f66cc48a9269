package schemaimport

import (
	tblsconfig "github.com/k1LoW/tbls/config"
)

// Options describes the inputs required to construct a Config instance.
type Options struct {
	// WorkingDir is the base directory used to resolve relative paths.
	WorkingDir string
	// TblsConfigPath is the path to .tbls.yml / tbls.yml resolved from CLI or defaults.
	TblsConfigPath string
	// SchemaJSONPath is the path to the tbls-generated schema.json file.
	// When set, a tbls config file is optional.
	SchemaJSONPath string
	// Schema selects one schema of a multi-schema document. Empty picks the
	// driver's current schema.
	Schema string
	// Include patterns applied to table names after loading.
	Include []string
	// Exclude patterns applied to table names after loading.
	Exclude []string
	// Verbose toggles detailed logging.
	Verbose bool
	// Logger, when non-nil, is used for verbose logging.
	Logger func(format string, args ...any)
}

// Config contains the fully resolved settings for importing a tbls document.
type Config struct {
	WorkingDir     string
	TblsConfigPath string
	DocPath        string
	SchemaJSONPath string
	Schema         string
	Include        []string
	Exclude        []string
	Verbose        bool

	logger func(format string, args ...any)

	TblsConfig *tblsconfig.Config
}

// NewConfig creates a Config from Options, copying slices.
func NewConfig(opts Options) Config {
	return Config{
		WorkingDir:     opts.WorkingDir,
		TblsConfigPath: opts.TblsConfigPath,
		SchemaJSONPath: opts.SchemaJSONPath,
		Schema:         opts.Schema,
		Include:        append([]string(nil), opts.Include...),
		Exclude:        append([]string(nil), opts.Exclude...),
		Verbose:        opts.Verbose,
		logger:         opts.Logger,
	}
}

// DSN returns the resolved database connection string from the tbls configuration.
func (c Config) DSN() string {
	if c.TblsConfig == nil {
		return ""
	}

	return c.TblsConfig.DSN.URL
}

func (c Config) logf(format string, args ...any) {
	if !c.Verbose || c.logger == nil {
		return
	}

	c.logger(format, args...)
}
