package publish

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
)

// SaveDialogTitle is shown when asking for the output file.
const SaveDialogTitle = "Save HTML data dictionary"

// Chooser picks the path the document is saved to. ok is false when the
// user cancelled; that is not an error.
type Chooser interface {
	Choose(ctx context.Context, suggested string) (path string, ok bool, err error)
}

// FixedChooser always answers with Path, or the suggestion when Path is empty.
type FixedChooser struct {
	Path string
}

// Choose implements Chooser.
func (c FixedChooser) Choose(ctx context.Context, suggested string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	if c.Path != "" {
		return c.Path, true, nil
	}

	return suggested, suggested != "", nil
}

// PromptChooser asks for the path on a terminal. An empty answer accepts the
// suggestion and end of input cancels. When In is not a terminal the
// suggestion is used without prompting.
type PromptChooser struct {
	In  io.Reader
	Out io.Writer
	// IsTerminal reports whether In is interactive. Nil checks os.Stdin.
	IsTerminal func() bool
}

// NewPromptChooser returns a PromptChooser bound to stdin and stdout.
func NewPromptChooser() *PromptChooser {
	return &PromptChooser{In: os.Stdin, Out: os.Stdout}
}

// Choose implements Chooser.
func (c *PromptChooser) Choose(ctx context.Context, suggested string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	if !c.interactive() {
		return suggested, suggested != "", nil
	}

	fmt.Fprintf(c.Out, "%s [%s]: ", SaveDialogTitle, suggested)

	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, fmt.Errorf("failed to read output path: %w", err)
	}

	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(c.Out)
		return "", false, nil
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		answer = suggested
	}

	if answer == "" {
		return "", false, nil
	}

	return answer, true, nil
}

func (c *PromptChooser) interactive() bool {
	if c.IsTerminal != nil {
		return c.IsTerminal()
	}

	fd := os.Stdin.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// SuggestPath proposes "<dir>/<schema>.html", where dir is the directory of
// the source document or the working directory when there is none.
func SuggestPath(sourcePath, schemaName string) string {
	name := schemaName
	if name == "" {
		name = "datadict"
	}

	dir := "."
	if sourcePath != "" {
		dir = filepath.Dir(sourcePath)
	}

	return filepath.Join(dir, name+".html")
}
