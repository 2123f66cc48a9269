package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	datadict "github.com/lacek/wb-datadict"
	"github.com/lacek/wb-datadict/publish"
)

// Version is the released version of the datadict command.
const Version = "v0.3.0"

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
}

// CLI represents the command-line interface
var CLI struct {
	Config   string      `help:"Configuration file path" default:"${default_config}"`
	Verbose  bool        `help:"Enable verbose output" short:"v"`
	Quiet    bool        `help:"Suppress output" short:"q"`
	Generate GenerateCmd `cmd:"" help:"Generate the HTML data dictionary of a schema"`
	Pull     PullCmd     `cmd:"" help:"Pull schema information from a database into a YAML snapshot"`
	Init     InitCmd     `cmd:"" help:"Write a sample datadict.yaml"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Printf("WB Datadict %s\n", Version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("datadict"),
		kong.Description("Generate a static HTML data dictionary from a database schema."),
		kong.UsageOnError(),
		kong.Vars{"default_config": datadict.DefaultConfigFile},
	)

	if CLI.Verbose {
		publish.SetBrowserOutput(os.Stdout, os.Stderr)
	} else {
		publish.SetBrowserOutput(nil, nil)
	}

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
