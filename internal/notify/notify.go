// Package notify delivers user-facing feedback: categorized toasts and a
// loading indicator. Library code reports outcomes through the Notifier
// interface; the terminal implementation styles them for the CLI.
package notify

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
)

// Notifier receives categorized user feedback.
type Notifier interface {
	Success(summary, detail string)
	Warn(summary, detail string)
	Error(summary, detail string)
}

// Loader shows a loading indicator while a slow operation runs. Callers
// must invoke the returned stop function on every exit path, or the
// indicator sticks.
type Loader interface {
	Loading(message string) (stop func())
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

// Terminal writes styled toasts to a writer (stderr by default).
type Terminal struct {
	Out io.Writer
}

// NewTerminal creates a Terminal notifier writing to stderr.
func NewTerminal() *Terminal {
	return &Terminal{Out: os.Stderr}
}

func (t *Terminal) write(style lipgloss.Style, summary, detail string) {
	out := t.Out
	if out == nil {
		out = os.Stderr
	}
	if detail == "" {
		fmt.Fprintln(out, style.Render(summary))
		return
	}
	fmt.Fprintf(out, "%s %s\n", style.Render(summary), detailStyle.Render(detail))
}

// Success reports a completed operation.
func (t *Terminal) Success(summary, detail string) {
	t.write(successStyle, "✓ "+summary, detail)
}

// Warn reports a local validation problem; nothing was sent to the server.
func (t *Terminal) Warn(summary, detail string) {
	t.write(warnStyle, "! "+summary, detail)
}

// Error reports a failed operation.
func (t *Terminal) Error(summary, detail string) {
	t.write(errorStyle, "✗ "+summary, detail)
}

// Loading shows an indeterminate spinner until the stop function runs.
func (t *Terminal) Loading(message string) func() {
	out := t.Out
	if out == nil {
		out = os.Stderr
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(message),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()
	return func() {
		close(done)
		_ = bar.Finish()
	}
}
