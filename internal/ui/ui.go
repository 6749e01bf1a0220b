// Package ui provides terminal output styling for the quill CLI.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	colorAccent  = lipgloss.Color("#7C6FF0")
	colorSuccess = lipgloss.Color("#2CD7A7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#6B7280")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	styleError   = lipgloss.NewStyle().Foreground(colorError)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleAccent  = lipgloss.NewStyle().Foreground(colorAccent)
)

// plain reports whether styling should be skipped: not a terminal, or
// the terminal advertises no color support.
func plain() bool {
	return termenv.NewOutput(os.Stdout).ColorProfile() == termenv.Ascii
}

func render(style lipgloss.Style, s string) string {
	if plain() {
		return s
	}
	return style.Render(s)
}

// Title renders a heading line.
func Title(s string) string { return render(styleTitle, s) }

// Pass renders a success marker plus message.
func Pass(s string) string { return render(styleSuccess, "✓ "+s) }

// Warn renders a warning marker plus message.
func Warn(s string) string { return render(styleWarning, "⚠ "+s) }

// Fail renders a failure marker plus message.
func Fail(s string) string { return render(styleError, "✗ "+s) }

// Muted renders de-emphasized text.
func Muted(s string) string { return render(styleMuted, s) }

// Accent renders emphasized inline text.
func Accent(s string) string { return render(styleAccent, s) }

// Printf writes formatted output to stdout.
func Printf(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format, args...)
}

// Println writes a line to stdout.
func Println(args ...any) {
	fmt.Fprintln(os.Stdout, args...)
}
