package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	datadict "github.com/lacek/wb-datadict"
	"github.com/lacek/wb-datadict/pull"
)

// PullCmd represents the pull command
type PullCmd struct {
	// Database connection options
	DB     string `help:"Database connection string"`
	Env    string `help:"Environment name from configuration"`
	Schema string `help:"Schema to pull (database for MySQL, schema for PostgreSQL)"`

	// Output options
	Output string `short:"o" help:"Snapshot file" default:"./datadict.schema.yaml" type:"path"`

	// Filtering options
	IncludeTables []string `help:"Table patterns to include (can be specified multiple times)"`
	ExcludeTables []string `help:"Table patterns to exclude (can be specified multiple times)"`
}

// Run executes the pull command
func (p *PullCmd) Run(ctx *Context) error {
	if ctx.Verbose {
		if p.Env != "" {
			color.Blue("Pulling schema from environment: %s", p.Env)
		} else {
			color.Blue("Pulling schema from database")
		}
	}

	config, err := datadict.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if ctx.Verbose {
		color.Blue("Configuration loaded from: %s", ctx.Config)
	}

	db, err := resolveDatabase(config, p.DB, p.Env)
	if err != nil {
		return fmt.Errorf("failed to resolve database connection: %w", err)
	}

	pullConfig := p.createPullConfig(db)
	pullConfig.Logger = logger(ctx)

	result, err := pull.ExecutePull(context.Background(), pullConfig)
	if err != nil {
		return fmt.Errorf("failed to pull schema: %w", err)
	}

	if !ctx.Quiet {
		p.displayResults(result)
	}

	return nil
}

// createPullConfig creates a pull configuration from command line options
func (p *PullCmd) createPullConfig(db datadict.Database) pull.PullConfig {
	schema := p.Schema
	if schema == "" {
		schema = db.Schema
	}

	return pull.PullConfig{
		DatabaseURL:   db.Connection,
		DatabaseType:  db.Driver,
		Schema:        schema,
		OutputPath:    p.Output,
		IncludeTables: p.IncludeTables,
		ExcludeTables: p.ExcludeTables,
	}
}

// displayResults shows the results of the pull operation
func (p *PullCmd) displayResults(result *pull.PullResult) {
	color.Green("✓ Schema extraction completed successfully")
	color.Green("  Database: %s %s", result.DatabaseInfo.Type, result.DatabaseInfo.Version)
	color.Green("  Schema: %s", result.Schema.Name)
	color.Green("  Tables: %d", len(result.Schema.Tables))
	color.Green("  Output: %s", result.OutputPath)
}
