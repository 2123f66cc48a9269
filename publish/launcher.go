package publish

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/browser"
)

// Launcher opens a written document for viewing.
type Launcher interface {
	Open(ctx context.Context, path string) error
}

// BrowserLauncher opens documents in the system's default Web browser.
type BrowserLauncher struct{}

// SetBrowserOutput redirects the output of the helper process started by
// BrowserLauncher. It changes process-wide state and must be called once at
// startup, before any launcher runs. Nil discards the stream.
func SetBrowserOutput(stdout, stderr io.Writer) {
	browser.Stdout = discardIfNil(stdout)
	browser.Stderr = discardIfNil(stderr)
}

// Open implements Launcher.
func (l BrowserLauncher) Open(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := browser.OpenFile(path); err != nil {
		return fmt.Errorf("%w: %w", ErrBrowserLaunchFailed, err)
	}

	return nil
}

func discardIfNil(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}

	return w
}
