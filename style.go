package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/strager/scft/config"
	"github.com/strager/scft/diag"
)

// Tag colors
var (
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorContext = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
)

// newStyler returns a diag.Styler that colors severity tags for w. In auto
// mode color is used only when w is a terminal.
func newStyler(mode string, w io.Writer) diag.Styler {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case config.ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	case config.ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}

	styles := map[diag.Severity]lipgloss.Style{
		diag.Error:   r.NewStyle().Bold(true).Foreground(colorError),
		diag.Warning: r.NewStyle().Bold(true).Foreground(colorWarning),
		diag.Context: r.NewStyle().Foreground(colorContext),
		diag.Empty:   r.NewStyle().Foreground(colorMuted),
	}
	return func(sev diag.Severity, tag string) string {
		return styles[sev].Render(tag)
	}
}
