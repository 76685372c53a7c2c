package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func stripView(m Model) string {
	return ansi.Strip(m.View())
}

func TestView_RendersColumnsAndBlocks(t *testing.T) {
	tb := newTestBoard(t)

	out := stripView(tb.model)
	for _, want := range []string{"salonboard", "Fri 14 Mar 2025", "Ana", "Bea", "Unassigned", "09:00 Lucia", "11:00 Marta", "30m"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestView_FitsTerminal(t *testing.T) {
	tb := newTestBoard(t)

	lines := strings.Split(tb.model.View(), "\n")
	if len(lines) != 40 {
		t.Fatalf("lines = %d, want 40", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w > 100 {
			t.Fatalf("line %d width = %d, want <= 100", i, w)
		}
	}
}

func TestView_ShowsPendingMove(t *testing.T) {
	tb := newTestBoard(t)

	tb.mouse(tea.MouseActionPress, 0, "09:00")
	tb.mouse(tea.MouseActionMotion, 0, "10:00")
	tb.mouse(tea.MouseActionRelease, 0, "10:00")

	out := stripView(tb.model)
	if !strings.Contains(out, "1 saving") {
		t.Errorf("view missing pending badge:\n%s", out)
	}
	if !strings.Contains(out, "10:00 Lucia …") {
		t.Errorf("view missing pending block at 10:00:\n%s", out)
	}
}

func TestView_MoveModeHelp(t *testing.T) {
	tb := newTestBoard(t)

	tb.keys(repeat("down", 4)...)
	tb.keys("m")

	out := stripView(tb.model)
	if !strings.Contains(out, "MOVE") || !strings.Contains(out, "drop") {
		t.Errorf("view missing move mode indicators:\n%s", out)
	}
}

func TestPreviewValid(t *testing.T) {
	tb := newTestBoard(t)

	tb.mouse(tea.MouseActionPress, 0, "09:00")
	tb.mouse(tea.MouseActionMotion, 0, "10:30")
	p, ok := tb.model.board.Drag().Preview()
	if !ok || tb.model.previewValid(p) {
		t.Fatal("preview over Marta should be invalid")
	}

	tb.mouse(tea.MouseActionMotion, 1, "10:30")
	p, _ = tb.model.board.Drag().Preview()
	if !tb.model.previewValid(p) {
		t.Fatal("preview on Bea's free column should be valid")
	}
}

func TestView_TooSmall(t *testing.T) {
	tb := newTestBoard(t)
	tb.send(tea.WindowSizeMsg{Width: 40, Height: 3})

	if got := tb.model.View(); got != "Terminal too small" {
		t.Fatalf("View() = %q, want too-small notice", got)
	}
}

func TestView_BeforeWindowSize(t *testing.T) {
	tb := newTestBoard(t)
	tb.model.width, tb.model.height = 0, 0

	if got := tb.model.View(); got != "Loading..." {
		t.Fatalf("View() = %q, want Loading...", got)
	}
}
