package theme

import (
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		themeName string
		wantName  string
	}{
		{name: "load mocha theme", themeName: "mocha", wantName: "mocha"},
		{name: "load latte theme", themeName: "latte", wantName: "latte"},
		{name: "name is case insensitive", themeName: "Latte", wantName: "latte"},
		{name: "empty name defaults to mocha", themeName: "", wantName: "mocha"},
		{name: "invalid theme falls back to mocha", themeName: "nonexistent", wantName: "mocha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme, err := Load(tt.themeName)
			if err != nil {
				t.Fatalf("Load(%q) unexpected error: %v", tt.themeName, err)
			}
			if theme.Name != tt.wantName {
				t.Errorf("Load(%q).Name = %q, want %q", tt.themeName, theme.Name, tt.wantName)
			}
		})
	}
}

func TestLoad_ThemeColors(t *testing.T) {
	for _, name := range Available() {
		theme, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%s) unexpected error: %v", name, err)
		}

		colors := map[string]string{
			"Bg":          theme.Bg,
			"BgHighlight": theme.BgHighlight,
			"BgSelection": theme.BgSelection,
			"Fg":          theme.Fg,
			"FgMuted":     theme.FgMuted,
			"Accent":      theme.Accent,
			"Staff":       theme.Staff,
			"Unassigned":  theme.Unassigned,
			"Pending":     theme.Pending,
			"Error":       theme.Error,
			"Success":     theme.Success,
			"Warning":     theme.Warning,
		}

		for field, hex := range colors {
			if !validHex(hex) {
				t.Errorf("%s: theme.%s = %q, want #rrggbb", name, field, hex)
			}
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	th := &Theme{Bg: "#000000", Fg: "#ffffff", FgMuted: "#777777", Accent: "#89b4fa", Warning: "#fab387"}
	th.applyDefaults()

	if th.Staff != th.Accent {
		t.Errorf("Staff = %q, want accent %q", th.Staff, th.Accent)
	}
	if th.Unassigned != th.FgMuted {
		t.Errorf("Unassigned = %q, want %q", th.Unassigned, th.FgMuted)
	}
	if th.Pending != th.Warning {
		t.Errorf("Pending = %q, want %q", th.Pending, th.Warning)
	}
	if th.BgHighlight != th.Bg {
		t.Errorf("BgHighlight = %q, want %q", th.BgHighlight, th.Bg)
	}
}

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name     string
		theme    string
		expected bool
	}{
		{name: "exact match", theme: "mocha", expected: true},
		{name: "case insensitive", theme: "Mocha", expected: true},
		{name: "missing theme", theme: "unknown", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAvailable(tt.theme); got != tt.expected {
				t.Errorf("IsAvailable(%q) = %t, want %t", tt.theme, got, tt.expected)
			}
		})
	}
}

func TestColor(t *testing.T) {
	hex := "#89b4fa"
	c := Color(hex)
	if string(c) != hex {
		t.Errorf("Color(%q) = %q, want %q", hex, string(c), hex)
	}
}
