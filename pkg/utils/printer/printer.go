// Package printer writes operator-facing progress to the terminal. Structured diagnostics go
// to slog; this is what a human running a release reads.
package printer

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes colored progress lines
type Printer struct {
	w       io.Writer
	step    *color.Color
	action  *color.Color
	warn    *color.Color
	success *color.Color
	failure *color.Color
	muted   *color.Color
}

// Option is a functional option for Printer
type Option func(*Printer)

// WithWriter sets the output destination. Default is stdout.
func WithWriter(w io.Writer) Option {
	return func(p *Printer) {
		p.w = w
	}
}

// WithColor forces color on or off regardless of terminal detection
func WithColor(enabled bool) Option {
	return func(p *Printer) {
		for _, c := range []*color.Color{p.step, p.action, p.warn, p.success, p.failure, p.muted} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// New creates a Printer
func New(opts ...Option) *Printer {
	p := &Printer{
		w:       os.Stdout,
		step:    color.New(color.FgCyan, color.Bold),
		action:  color.New(color.FgYellow),
		warn:    color.New(color.FgYellow, color.Bold),
		success: color.New(color.FgGreen, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
		muted:   color.New(color.Faint),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Step announces a workflow step
func (p *Printer) Step(format string, args ...any) {
	p.line(p.step, "==> ", format, args...)
}

// Action reports a mutation that was suppressed by dry-run
func (p *Printer) Action(format string, args ...any) {
	p.line(p.action, "[dry-run] ", format, args...)
}

// Warn reports a non-fatal anomaly
func (p *Printer) Warn(format string, args ...any) {
	p.line(p.warn, "warning: ", format, args...)
}

// Success reports the final positive verdict
func (p *Printer) Success(format string, args ...any) {
	p.line(p.success, "✔ ", format, args...)
}

// Failure reports the final negative verdict
func (p *Printer) Failure(format string, args ...any) {
	p.line(p.failure, "✘ ", format, args...)
}

// Detail prints a dimmed indented line
func (p *Printer) Detail(format string, args ...any) {
	p.line(p.muted, "    ", format, args...)
}

func (p *Printer) line(c *color.Color, prefix, format string, args ...any) {
	_, _ = c.Fprintln(p.w, prefix+fmt.Sprintf(format, args...))
}
