package publish

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Notifier surfaces the outcome of a publish to the user.
type Notifier interface {
	Success(title, text string)
	Warning(text string)
	Error(title, text string)
}

// ConsoleNotifier prints notifications to the terminal. Success messages are
// suppressed in quiet mode; warnings and errors are always shown.
type ConsoleNotifier struct {
	Out   io.Writer
	Err   io.Writer
	Quiet bool
}

// NewConsoleNotifier returns a ConsoleNotifier writing to stdout and stderr.
func NewConsoleNotifier(quiet bool) *ConsoleNotifier {
	return &ConsoleNotifier{Out: color.Output, Err: color.Error, Quiet: quiet}
}

// Success implements Notifier.
func (n *ConsoleNotifier) Success(title, text string) {
	if n.Quiet {
		return
	}

	color.New(color.FgGreen, color.Bold).Fprintln(n.out(), title)
	color.New(color.FgGreen).Fprintln(n.out(), text)
}

// Warning implements Notifier.
func (n *ConsoleNotifier) Warning(text string) {
	color.New(color.FgYellow).Fprintf(n.err(), "Warning: %s\n", text)
}

// Error implements Notifier.
func (n *ConsoleNotifier) Error(title, text string) {
	color.New(color.FgRed, color.Bold).Fprintln(n.err(), title)
	color.New(color.FgRed).Fprintln(n.err(), text)
}

func (n *ConsoleNotifier) out() io.Writer {
	if n.Out == nil {
		return os.Stdout
	}

	return n.Out
}

func (n *ConsoleNotifier) err() io.Writer {
	if n.Err == nil {
		return os.Stderr
	}

	return n.Err
}

// discardNotifier drops every notification.
type discardNotifier struct{}

func (discardNotifier) Success(string, string) {}
func (discardNotifier) Warning(string)         {}
func (discardNotifier) Error(string, string)   {}

var _ Notifier = discardNotifier{}

func successTitle(schemaName string) string {
	return fmt.Sprintf("%s's data dictionary", schemaName)
}
