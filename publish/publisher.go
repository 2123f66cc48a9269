// Package publish delivers a rendered data dictionary: it asks where to save
// the document, writes it, reports the outcome and opens it in a browser.
package publish

import (
	"context"
	"fmt"
)

// SuccessText is shown once the document has been written.
const SuccessText = "The data dictionary was successfully generated."

// Result describes what Publish did.
type Result struct {
	Path      string
	Cancelled bool
	Opened    bool
}

// Publisher wires the host collaborators together. Launcher and Notifier
// are optional; a nil Launcher leaves the document unopened.
type Publisher struct {
	Chooser  Chooser
	Launcher Launcher
	Notifier Notifier
}

// Publish saves doc for schemaName. A cancelled choice writes nothing and is
// not an error. A failed write is reported and returned wrapping
// ErrFileWriteFailed. A browser that cannot be started only yields a warning.
func (p *Publisher) Publish(ctx context.Context, schemaName, doc, suggested string) (Result, error) {
	if p.Chooser == nil {
		return Result{}, ErrNoChooser
	}

	notifier := p.Notifier
	if notifier == nil {
		notifier = discardNotifier{}
	}

	path, ok, err := p.Chooser.Choose(ctx, suggested)
	if err != nil {
		return Result{}, fmt.Errorf("failed to choose output path: %w", err)
	}

	if !ok {
		return Result{Cancelled: true}, nil
	}

	if err := WriteFile(path, doc); err != nil {
		notifier.Error("Error saving the file", fmt.Sprintf("Could not open %s.", path))
		return Result{Path: path}, err
	}

	result := Result{Path: path}

	notifier.Success(successTitle(schemaName), SuccessText)

	if p.Launcher == nil {
		return result, nil
	}

	if err := p.Launcher.Open(ctx, path); err != nil {
		notifier.Warning("Could not open the data dictionary in the Web browser.")
		return result, nil
	}

	result.Opened = true

	return result, nil
}
