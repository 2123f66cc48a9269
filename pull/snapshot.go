package pull

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	datadict "github.com/lacek/wb-datadict"
)

// WriteSnapshot stores schema as YAML at path, creating parent directories.
func WriteSnapshot(schema *datadict.Schema, path string) error {
	data, err := yaml.MarshalWithOptions(schema, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotWriteFailed, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %w", ErrSnapshotWriteFailed, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotWriteFailed, err)
	}

	return nil
}

// LoadSnapshot reads a YAML snapshot written by WriteSnapshot. Unknown keys
// are rejected and the result is validated.
func LoadSnapshot(path string) (*datadict.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotReadFailed, err)
	}

	var schema datadict.Schema
	if err := yaml.UnmarshalWithOptions(data, &schema, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSnapshotReadFailed, path, err)
	}

	if err := schema.Validate(); err != nil {
		return nil, err
	}

	return &schema, nil
}
