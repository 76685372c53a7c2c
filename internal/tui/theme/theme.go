// Package theme provides color themes for the board.
package theme

import (
	"embed"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// Theme holds all colors for a board theme.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`           // Base background
	BgHighlight string `toml:"bg_highlight"` // Column headers, alternating hour rows
	BgSelection string `toml:"bg_selection"` // Cursor
	Fg          string `toml:"fg"`           // Primary foreground
	FgMuted     string `toml:"fg_muted"`     // Time gutter, cancelled appointments
	Accent      string `toml:"accent"`       // Title, borders
	Staff       string `toml:"staff"`        // Block color for staff without a display color
	Unassigned  string `toml:"unassigned"`   // Unassigned lane blocks
	Pending     string `toml:"pending"`      // Unconfirmed moves, drag preview
	Error       string `toml:"error"`        // Rejections, failed commits
	Success     string `toml:"success"`      // Committed moves
	Warning     string `toml:"warning"`      // Move mode
}

// Color returns a lipgloss.Color for the given hex string.
func Color(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

// Load loads a theme by name from embedded files.
// Falls back to mocha if the theme is not found.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = "mocha"
	}
	name = strings.ToLower(name)

	path := "embedded/" + name + ".toml"
	data, err := embeddedThemes.ReadFile(path)
	if err != nil {
		if name != "mocha" {
			return Load("mocha")
		}
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()

	return &t, nil
}

func (t *Theme) applyDefaults() {
	if t.BgHighlight == "" {
		t.BgHighlight = t.Bg
	}
	if t.Staff == "" {
		t.Staff = t.Accent
	}
	if t.Unassigned == "" {
		t.Unassigned = t.FgMuted
	}
	if t.Pending == "" {
		t.Pending = coalesce(t.Warning, t.Accent)
	}
	if t.Error == "" {
		t.Error = coalesce(t.Warning, t.Accent)
	}
	if t.Success == "" {
		t.Success = t.Accent
	}
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"mocha", "latte"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	name = strings.ToLower(name)
	for _, themeName := range Available() {
		if themeName == name {
			return true
		}
	}
	return false
}
