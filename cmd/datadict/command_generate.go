package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"

	datadict "github.com/lacek/wb-datadict"
	"github.com/lacek/wb-datadict/filter"
	"github.com/lacek/wb-datadict/preface"
	"github.com/lacek/wb-datadict/publish"
	"github.com/lacek/wb-datadict/render"
)

// GenerateCmd represents the generate command
type GenerateCmd struct {
	Source sourceFlags `embed:""`

	// Filtering options
	Include []string `help:"Table patterns to include (can be specified multiple times)"`
	Exclude []string `help:"Table patterns to exclude (can be specified multiple times)"`
	Where   string   `help:"CEL predicate over name, comment, columns and has_primary_key"`

	// Output options
	Output    string `short:"o" help:"Output HTML file; asks for a path when omitted" type:"path"`
	NoOpen    bool   `help:"Do not open the document in a Web browser"`
	Date      string `help:"Generation date (YYYY-MM-DD), defaults to today"`
	EscapeAll bool   `help:"Escape column names, types and defaults as well as comments"`
	Preface   string `help:"Markdown file rendered above the alphabetic index" type:"path"`

	// chooser and launcher replace the interactive collaborators in tests.
	chooser  publish.Chooser
	launcher publish.Launcher
}

// Run executes the generate command
func (g *GenerateCmd) Run(ctx *Context) error {
	config, err := datadict.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if ctx.Verbose {
		color.Blue("Configuration loaded from: %s", ctx.Config)
	}

	today, err := g.today()
	if err != nil {
		return err
	}

	schema, sourcePath, err := g.Source.loadSchema(context.Background(), ctx, config)
	if err != nil {
		return err
	}

	schema = applyDocumentConfig(schema, config.Document)

	schema, err = filter.Apply(schema, g.rules(config))
	if err != nil {
		return err
	}

	if err := schema.Validate(); err != nil {
		return err
	}

	if ctx.Verbose {
		color.Blue("Rendering %d table(s) of schema '%s'", len(schema.Tables), schema.Name)
	}

	opts, err := g.renderOptions(config)
	if err != nil {
		return err
	}

	doc := render.RenderWithOptions(schema, today, opts)

	suggested := config.Output.Path
	if sourcePath != "" {
		suggested = publish.SuggestPath(sourcePath, schema.Name)
	}

	publisher := &publish.Publisher{
		Chooser:  g.chooserFor(),
		Launcher: g.launcherFor(config),
		Notifier: publish.NewConsoleNotifier(ctx.Quiet),
	}

	result, err := publisher.Publish(context.Background(), schema.Name, doc, suggested)
	if err != nil {
		return err
	}

	if result.Cancelled && !ctx.Quiet {
		color.Yellow("Cancelled; no file was written")
	}

	if ctx.Verbose && !result.Cancelled {
		color.Cyan("Written to %s", result.Path)
	}

	return nil
}

func (g *GenerateCmd) today() (time.Time, error) {
	if g.Date == "" {
		return time.Now(), nil
	}

	today, err := time.Parse(render.DateLayout, g.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, g.Date)
	}

	return today, nil
}

// rules merges command line filters over the configured ones. Exclusions add up.
func (g *GenerateCmd) rules(config *datadict.Config) filter.Rules {
	rules := filter.Rules{
		Include: config.Tables.Include,
		Exclude: append(append([]string{}, config.Tables.Exclude...), g.Exclude...),
		Where:   config.Tables.Where,
	}

	if len(g.Include) > 0 {
		rules.Include = g.Include
	}

	if g.Where != "" {
		rules.Where = g.Where
	}

	return rules
}

func (g *GenerateCmd) renderOptions(config *datadict.Config) (render.Options, error) {
	opts := render.Options{
		EscapeAll:   g.EscapeAll || config.Document.EscapeAll,
		NullDefault: config.Document.NullDefault,
	}

	path := g.Preface
	if path == "" {
		path = config.Document.Preface
	}

	if path != "" {
		html, err := preface.RenderFile(path)
		if err != nil {
			return render.Options{}, err
		}

		opts.Preface = html
	}

	return opts, nil
}

func (g *GenerateCmd) chooserFor() publish.Chooser {
	switch {
	case g.chooser != nil:
		return g.chooser
	case g.Output != "":
		return publish.FixedChooser{Path: g.Output}
	default:
		return publish.NewPromptChooser()
	}
}

func (g *GenerateCmd) launcherFor(config *datadict.Config) publish.Launcher {
	switch {
	case g.NoOpen || !config.Output.ShouldOpenBrowser():
		return nil
	case g.launcher != nil:
		return g.launcher
	default:
		return publish.BrowserLauncher{}
	}
}

// applyDocumentConfig returns schema with the configured name and
// description applied. The description only fills an empty comment.
func applyDocumentConfig(schema *datadict.Schema, doc datadict.DocumentConfig) *datadict.Schema {
	if schema == nil || (doc.Name == "" && doc.Description == "") {
		return schema
	}

	overridden := *schema

	if doc.Name != "" {
		overridden.Name = doc.Name
	}

	if overridden.Comment == "" {
		overridden.Comment = doc.Description
	}

	return &overridden
}
