// Package notify shows user feedback and keeps the signed-in user's
// notification feed.
package notify

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
)

// Console prints success and error notices, one per line.
type Console struct {
	out     io.Writer
	errOut  io.Writer
	logger  *slog.Logger
	success lipgloss.Style
	failure lipgloss.Style
}

// NewConsole writes successes to out and errors to errOut. A nil logger uses
// slog.Default().
func NewConsole(out, errOut io.Writer, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{
		out:     out,
		errOut:  errOut,
		logger:  logger,
		success: lipgloss.NewRenderer(out).NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"}),
		failure: lipgloss.NewRenderer(errOut).NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"}),
	}
}

// Success prints a confirmation.
func (c *Console) Success(msg string) {
	fmt.Fprintln(c.out, c.success.Render("✓ "+msg))
	// Debug only: the levelRouter would echo INFO to the same terminal.
	c.logger.Debug("notice", "kind", "success", "message", msg)
}

// Error prints a failure.
func (c *Console) Error(msg string) {
	fmt.Fprintln(c.errOut, c.failure.Render("✗ "+msg))
	c.logger.Debug("notice", "kind", "error", "message", msg)
}
