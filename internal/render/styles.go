// Package render writes research reports for terminals and machines.
package render

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const (
	colorOrange = "208"
	colorGray   = "245"
	colorRed    = "196"
	colorYellow = "220"
)

// Styles holds the text styles used by the compact renderer.
type Styles struct {
	Header  lipgloss.Style
	Section lipgloss.Style
	ID      lipgloss.Style
	Dim     lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns colored styles for terminals.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorOrange)),
		Section: lipgloss.NewStyle().Bold(true),
		ID:      lipgloss.NewStyle().Foreground(lipgloss.Color(colorOrange)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
	}
}

// NoColorStyles returns unstyled components for pipes and NO_COLOR.
func NoColorStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle(),
		Section: lipgloss.NewStyle(),
		ID:      lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
	}
}

// StylesFor picks colored styles only when w is a terminal and NO_COLOR is unset.
func StylesFor(w io.Writer) Styles {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor || !IsTTY(w) {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
