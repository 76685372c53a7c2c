package ui

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/javiermolinar/salonboard/internal/appointment"
)

// Color definitions for consistent styling across the CLI.
var (
	colorHeader  = color.New(color.Bold)
	colorMuted   = color.New(color.FgWhite, color.Faint)
	colorSuccess = color.New(color.FgGreen)
	colorWarning = color.New(color.FgYellow)

	colorActive    = color.New(color.FgCyan)
	colorCancelled = color.New(color.FgWhite, color.Faint, color.CrossedOut)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isInteractive reports whether both stdin and stdout are terminals.
func isInteractive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

func formatSuccess(s string) string {
	return colorSuccess.Sprint(s)
}

func formatWarning(s string) string {
	return colorWarning.Sprint(s)
}

// formatStaff renders a staff name in its display color.
func formatStaff(m appointment.StaffMember) string {
	r, g, b, ok := parseHex(m.DisplayColor)
	if !ok {
		return colorHeader.Sprint(m.Name)
	}
	return color.RGB(r, g, b).Add(color.Bold).Sprint(m.Name)
}

// swatch returns a colored square for a display color.
func swatch(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return formatMuted("□")
	}
	return color.RGB(r, g, b).Sprint("■")
}

// formatStatus colors a status by how far along the appointment is.
func formatStatus(s appointment.Status) string {
	label := string(s)
	switch s {
	case appointment.StatusCancelled, appointment.StatusNoShow:
		return colorCancelled.Sprint(label)
	case appointment.StatusCompleted:
		return colorSuccess.Sprint(label)
	case appointment.StatusInProgress, appointment.StatusReadyToStart:
		return colorActive.Sprint(label)
	case appointment.StatusRequested:
		return colorWarning.Sprint(label)
	default:
		return label
	}
}

func parseHex(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	var v [3]int
	for i := range v {
		hi, ok1 := hexDigit(hex[1+2*i])
		lo, ok2 := hexDigit(hex[2+2*i])
		if !ok1 || !ok2 {
			return 0, 0, 0, false
		}
		v[i] = hi<<4 | lo
	}
	return v[0], v[1], v[2], true
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}
