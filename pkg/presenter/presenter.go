// Package presenter provides consistent CLI output for user-facing
// messages: success, error, warning, and informational lines with color
// support and a quiet mode. Logging goes through pkg/logger; presenter
// output is what the human running the command sees.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Presenter writes user-facing CLI output.
type Presenter struct {
	output      io.Writer
	errorOutput io.Writer
	quiet       bool
}

var defaultPresenter = New()

// New creates a presenter writing to stdout/stderr.
func New() *Presenter {
	return NewWithWriters(os.Stdout, os.Stderr)
}

// NewWithWriters creates a presenter with custom writers, used in tests.
func NewWithWriters(output, errorOutput io.Writer) *Presenter {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
	return &Presenter{output: output, errorOutput: errorOutput}
}

// SetQuiet suppresses Info and Success output on the default presenter.
func SetQuiet(quiet bool) {
	defaultPresenter.quiet = quiet
}

// Error displays an error with optional context to stderr.
func Error(err error, context string) { defaultPresenter.Error(err, context) }

// Success displays a success message.
func Success(message string) { defaultPresenter.Success(message) }

// Warning displays a warning message.
func Warning(message string) { defaultPresenter.Warning(message) }

// Info displays an informational message.
func Info(message string) { defaultPresenter.Info(message) }

// Section displays a titled section header.
func Section(title string) { defaultPresenter.Section(title) }

// Separator displays a horizontal rule.
func Separator() { defaultPresenter.Separator() }

// Error writes an error line to the error writer.
func (p *Presenter) Error(err error, context string) {
	if err == nil {
		return
	}
	c := color.New(color.FgRed, color.Bold)
	if context != "" {
		c.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
	} else {
		c.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
	}
}

// Success writes a green success line.
func (p *Presenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen).Fprintf(p.output, "%s\n", message)
}

// Warning writes a yellow warning line to the error writer.
func (p *Presenter) Warning(message string) {
	color.New(color.FgYellow).Fprintf(p.errorOutput, "[WARNING] %s\n", message)
}

// Info writes a plain informational line.
func (p *Presenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "%s\n", message)
}

// Section writes a bold section header.
func (p *Presenter) Section(title string) {
	if p.quiet {
		return
	}
	c := color.New(color.Bold)
	c.Fprintf(p.output, "\n%s\n", title)
	fmt.Fprintf(p.output, "%s\n", strings.Repeat("-", len(title)))
}

// Separator writes a horizontal rule.
func (p *Presenter) Separator() {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "%s\n", strings.Repeat("=", 50))
}
