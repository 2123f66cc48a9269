package publish

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile stores doc at path. The content goes to a temporary file in the
// target directory first and is renamed into place, so a failed write never
// leaves a partial document at path.
func WriteFile(path, doc string) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: could not open %s: %w", ErrFileWriteFailed, path, err)
	}

	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("%w: %s: %w", ErrFileWriteFailed, path, cause)
	}

	if _, err := tmp.WriteString(doc); err != nil {
		return cleanup(err)
	}

	if err := tmp.Chmod(0o644); err != nil {
		return cleanup(err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", ErrFileWriteFailed, path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %w", ErrFileWriteFailed, path, err)
	}

	return nil
}
