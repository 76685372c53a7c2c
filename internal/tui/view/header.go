package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// TitleState holds the title bar content.
type TitleState struct {
	Width      int
	Date       time.Time
	Today      time.Time
	Pending    int
	Moving     bool
	Loading    bool
	TitleStyle lipgloss.Style
	DateStyle  lipgloss.Style
	BadgeStyle lipgloss.Style
	MoveStyle  lipgloss.Style
	Bg         lipgloss.Color
}

// RenderTitle renders "salonboard  Fri 14 Mar 2025" plus pending and mode badges.
func RenderTitle(state TitleState) string {
	label := state.Date.Format("Mon 02 Jan 2006")
	if sameDay(state.Date, state.Today) {
		label += " (today)"
	}
	parts := []string{
		state.TitleStyle.Render(" salonboard "),
		state.DateStyle.Render(" " + label + " "),
	}
	if state.Pending > 0 {
		parts = append(parts, state.BadgeStyle.Render(fmt.Sprintf(" %d saving ", state.Pending)))
	}
	if state.Loading {
		parts = append(parts, state.BadgeStyle.Render(" loading… "))
	}
	if state.Moving {
		parts = append(parts, state.MoveStyle.Render("MOVE"))
	}
	return PadLinesWithBackground(strings.Join(parts, ""), state.Width, 1, state.Bg)
}

// HeaderLabels returns one label per column: the staff name, or "Unassigned".
func HeaderLabels(names []string, width int) []string {
	labels := make([]string, len(names))
	for i, name := range names {
		if width > 0 && lipgloss.Width(name) > width {
			name = Truncate(name, width)
		}
		labels[i] = name
	}
	return labels
}

func sameDay(a, b time.Time) bool {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	return ya == yb && ma == mb && da == db
}
