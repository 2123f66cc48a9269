package publish

import "errors"

var (
	// ErrFileWriteFailed indicates the document could not be written to the chosen path.
	ErrFileWriteFailed = errors.New("failed to write data dictionary")
	// ErrBrowserLaunchFailed indicates the written document could not be opened in a browser.
	ErrBrowserLaunchFailed = errors.New("could not open the data dictionary in the Web browser")
	// ErrNoChooser indicates a Publisher without a save destination chooser.
	ErrNoChooser = errors.New("no save destination chooser configured")
)
