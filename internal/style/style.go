// Package style provides consistent terminal styling using Lipgloss.
package style

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	// Success style for positive outcomes (green)
	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	// Warning style for cautionary messages (yellow)
	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)

	// Error style for failures (red)
	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	// Info style for informational messages (blue)
	Info = lipgloss.NewStyle().
		Foreground(lipgloss.Color("39"))

	// Dim style for secondary information (gray)
	Dim = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	// ArrowPrefix for action indicators
	ArrowPrefix = Info.Render("→")
)

// IsTTY reports whether stdout is a terminal. Non-TTY output (pipes, CI)
// still gets the plain text; lipgloss strips colors on its own when the
// profile says so, this is for callers that want to skip decoration work.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// PrintInfo prints an informational message with the action prefix.
// The format and args work like fmt.Printf.
func PrintInfo(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", ArrowPrefix, fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message with consistent formatting.
func PrintWarning(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", Warning.Render("⚠ Warning:"), fmt.Sprintf(format, args...))
}

// PrintError prints an error message to stderr with consistent formatting.
func PrintError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", Error.Render("✗ Error:"), fmt.Sprintf(format, args...))
}
