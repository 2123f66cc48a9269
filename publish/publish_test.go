package publish

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pkg/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	successes []string
	warnings  []string
	errors    []string
}

func (n *recordingNotifier) Success(title, text string) {
	n.successes = append(n.successes, title+": "+text)
}

func (n *recordingNotifier) Warning(text string) {
	n.warnings = append(n.warnings, text)
}

func (n *recordingNotifier) Error(title, text string) {
	n.errors = append(n.errors, title+": "+text)
}

type fakeLauncher struct {
	opened []string
	err    error
}

func (l *fakeLauncher) Open(_ context.Context, path string) error {
	l.opened = append(l.opened, path)
	return l.err
}

type cancelChooser struct{}

func (cancelChooser) Choose(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func TestPublish(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "shop.html")

	notifier := &recordingNotifier{}
	launcher := &fakeLauncher{}
	publisher := &Publisher{
		Chooser:  FixedChooser{Path: target},
		Launcher: launcher,
		Notifier: notifier,
	}

	result, err := publisher.Publish(t.Context(), "shop", "<html></html>", "ignored.html")
	require.NoError(t, err)

	assert.Equal(t, Result{Path: target, Opened: true}, result)
	assert.Equal(t, []string{target}, launcher.opened)
	assert.Equal(t, []string{"shop's data dictionary: The data dictionary was successfully generated."}, notifier.successes)
	assert.Empty(t, notifier.warnings)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(content))
}

func TestPublishCancelled(t *testing.T) {
	notifier := &recordingNotifier{}
	launcher := &fakeLauncher{}
	publisher := &Publisher{Chooser: cancelChooser{}, Launcher: launcher, Notifier: notifier}

	result, err := publisher.Publish(t.Context(), "shop", "<html></html>", "shop.html")
	require.NoError(t, err)

	assert.True(t, result.Cancelled)
	assert.Empty(t, launcher.opened)
	assert.Empty(t, notifier.successes)
	assert.Empty(t, notifier.errors)
}

func TestPublishWriteFailure(t *testing.T) {
	target := filepath.Join(t.TempDir(), "missing-dir", "shop.html")

	notifier := &recordingNotifier{}
	launcher := &fakeLauncher{}
	publisher := &Publisher{Chooser: FixedChooser{Path: target}, Launcher: launcher, Notifier: notifier}

	result, err := publisher.Publish(t.Context(), "shop", "<html></html>", "")
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrFileWriteFailed)
	assert.Equal(t, target, result.Path)
	assert.False(t, result.Opened)
	assert.Equal(t, []string{"Error saving the file: Could not open " + target + "."}, notifier.errors)
	assert.Empty(t, notifier.successes)
	assert.Empty(t, launcher.opened)

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPublishBrowserFailureIsWarning(t *testing.T) {
	target := filepath.Join(t.TempDir(), "shop.html")

	notifier := &recordingNotifier{}
	launcher := &fakeLauncher{err: errors.New("no display")}
	publisher := &Publisher{Chooser: FixedChooser{Path: target}, Launcher: launcher, Notifier: notifier}

	result, err := publisher.Publish(t.Context(), "shop", "<html></html>", "")
	require.NoError(t, err)

	assert.False(t, result.Opened)
	assert.Len(t, notifier.successes, 1)
	assert.Equal(t, []string{"Could not open the data dictionary in the Web browser."}, notifier.warnings)
	assert.FileExists(t, target)
}

func TestPublishWithoutLauncherOrNotifier(t *testing.T) {
	target := filepath.Join(t.TempDir(), "shop.html")
	publisher := &Publisher{Chooser: FixedChooser{Path: target}}

	result, err := publisher.Publish(t.Context(), "shop", "doc", "")
	require.NoError(t, err)
	assert.Equal(t, Result{Path: target}, result)

	_, err = (&Publisher{}).Publish(t.Context(), "shop", "doc", "")
	assert.ErrorIs(t, err, ErrNoChooser)
}

func TestSetBrowserOutput(t *testing.T) {
	t.Cleanup(func() { SetBrowserOutput(nil, nil) })

	var out, errOut bytes.Buffer

	SetBrowserOutput(&out, &errOut)
	assert.Same(t, &out, browser.Stdout)
	assert.Same(t, &errOut, browser.Stderr)

	SetBrowserOutput(nil, nil)
	assert.Equal(t, io.Discard, browser.Stdout)
	assert.Equal(t, io.Discard, browser.Stderr)
}

func TestBrowserLauncherLeavesOutputAlone(t *testing.T) {
	t.Cleanup(func() { SetBrowserOutput(nil, nil) })

	var out bytes.Buffer

	SetBrowserOutput(&out, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := BrowserLauncher{}.Open(ctx, filepath.Join(t.TempDir(), "shop.html"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Same(t, &out, browser.Stdout)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "doc.html")

	require.NoError(t, os.WriteFile(target, []byte("old content that is longer"), 0o644))
	require.NoError(t, WriteFile(target, "new"))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFixedChooser(t *testing.T) {
	path, ok, err := FixedChooser{Path: "out.html"}.Choose(t.Context(), "suggested.html")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "out.html", path)

	path, ok, err = FixedChooser{}.Choose(t.Context(), "suggested.html")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "suggested.html", path)

	_, ok, err = FixedChooser{}.Choose(t.Context(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPromptChooser(t *testing.T) {
	interactive := func() bool { return true }

	tests := []struct {
		name     string
		input    string
		terminal func() bool
		wantPath string
		wantOK   bool
	}{
		{name: "TypedPath", input: "custom.html\n", terminal: interactive, wantPath: "custom.html", wantOK: true},
		{name: "EmptyAcceptsSuggestion", input: "\n", terminal: interactive, wantPath: "shop.html", wantOK: true},
		{name: "NoTrailingNewline", input: "last.html", terminal: interactive, wantPath: "last.html", wantOK: true},
		{name: "EOFCancels", input: "", terminal: interactive, wantOK: false},
		{name: "NonTerminalUsesSuggestion", input: "ignored.html\n", terminal: func() bool { return false }, wantPath: "shop.html", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			chooser := &PromptChooser{In: strings.NewReader(tt.input), Out: &out, IsTerminal: tt.terminal}

			path, ok, err := chooser.Choose(t.Context(), "shop.html")
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPath, path)

			if tt.terminal() {
				assert.Contains(t, out.String(), "Save HTML data dictionary [shop.html]")
			} else {
				assert.Empty(t, out.String())
			}
		})
	}
}

func TestSuggestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("models", "shop.html"), SuggestPath(filepath.Join("models", "shop.mwb"), "shop"))
	assert.Equal(t, "shop.html", SuggestPath("", "shop"))
	assert.Equal(t, "datadict.html", SuggestPath("", ""))
}

func TestConsoleNotifier(t *testing.T) {
	color.NoColor = true

	var out, errOut bytes.Buffer

	notifier := &ConsoleNotifier{Out: &out, Err: &errOut}
	notifier.Success("shop's data dictionary", SuccessText)
	notifier.Warning("Could not open the data dictionary in the Web browser.")
	notifier.Error("Error saving the file", "Could not open /x.html.")

	assert.Equal(t, "shop's data dictionary\nThe data dictionary was successfully generated.\n", out.String())
	assert.Equal(t, "Warning: Could not open the data dictionary in the Web browser.\nError saving the file\nCould not open /x.html.\n", errOut.String())

	out.Reset()

	quiet := &ConsoleNotifier{Out: &out, Err: &errOut, Quiet: true}
	quiet.Success("shop's data dictionary", SuccessText)
	assert.Empty(t, out.String())
}
