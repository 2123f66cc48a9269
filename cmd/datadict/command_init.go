package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	datadict "github.com/lacek/wb-datadict"
)

// InitCmd represents the init command
type InitCmd struct{}

// Run writes a sample configuration to the --config path.
func (i *InitCmd) Run(ctx *Context) error {
	path := ctx.Config
	if path == "" {
		path = datadict.DefaultConfigFile
	}

	if ctx.Verbose {
		color.Blue("Writing sample configuration to %s", path)
	}

	if fileExists(path) {
		return fmt.Errorf("%w: %s", datadict.ErrConfigFileExists, path)
	}

	if err := writeFile(path, datadict.SampleConfig); err != nil {
		return fmt.Errorf("failed to create sample configuration: %w", err)
	}

	if !ctx.Quiet {
		color.Green("Created %s", path)
		fmt.Println("\nNext steps:")
		fmt.Printf("1. Edit %s to configure your database settings\n", path)
		fmt.Println("2. Run 'datadict generate' to build the data dictionary")
	}

	return nil
}

// writeFile writes content to a file, creating directories if necessary
func writeFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return os.WriteFile(path, []byte(content), 0644)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
