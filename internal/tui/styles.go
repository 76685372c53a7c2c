package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/salonboard/internal/tui/theme"
)

// Styles holds all lipgloss styles for the board, derived from a theme.
type Styles struct {
	palette *theme.Palette

	// Theme colors as lipgloss colors
	colorBg          lipgloss.Color
	colorBgHighlight lipgloss.Color
	colorBgSelection lipgloss.Color
	colorFg          lipgloss.Color
	colorFgMuted     lipgloss.Color
	colorAccent      lipgloss.Color
	colorPending     lipgloss.Color
	colorError       lipgloss.Color
	colorWarning     lipgloss.Color

	// Title bar
	TitleStyle    lipgloss.Style
	DateStyle     lipgloss.Style
	BadgeStyle    lipgloss.Style // pending count
	MoveModeStyle lipgloss.Style

	// Column headers
	HeaderStyle           lipgloss.Style
	HeaderUnassignedStyle lipgloss.Style
	HeaderCursorStyle     lipgloss.Style

	// Grid
	TimeColumnStyle       lipgloss.Style
	TimeColumnCursorStyle lipgloss.Style
	SeparatorStyle        lipgloss.Style
	EmptyCellStyle        lipgloss.Style
	HourCellStyle         lipgloss.Style // empty cell on a full hour
	CursorStyle           lipgloss.Style

	// Drag preview
	PreviewStyle        lipgloss.Style
	PreviewInvalidStyle lipgloss.Style

	// Footer
	StatusStyle      lipgloss.Style
	StatusErrorStyle lipgloss.Style
	HelpStyle        lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	s := &Styles{
		palette:          p,
		colorBg:          p.Bg,
		colorBgHighlight: p.BgHighlight,
		colorBgSelection: p.BgSelection,
		colorFg:          p.Fg,
		colorFgMuted:     p.FgMuted,
		colorAccent:      p.Accent,
		colorPending:     p.Pending,
		colorError:       p.Error,
		colorWarning:     p.Warning,
	}

	base := lipgloss.NewStyle().Background(s.colorBg).Foreground(s.colorFg)

	s.TitleStyle = base.Foreground(s.colorAccent).Bold(true)
	s.DateStyle = base.Bold(true)
	s.BadgeStyle = base.Foreground(s.colorPending)
	s.MoveModeStyle = lipgloss.NewStyle().
		Background(s.colorWarning).
		Foreground(p.TextOnWarning).
		Bold(true).
		Padding(0, 1)

	s.HeaderStyle = lipgloss.NewStyle().
		Background(s.colorBgHighlight).
		Foreground(s.colorFg).
		Bold(true).
		Align(lipgloss.Center)
	s.HeaderUnassignedStyle = s.HeaderStyle.Foreground(s.colorFgMuted).Italic(true)
	s.HeaderCursorStyle = s.HeaderStyle.Foreground(s.colorAccent).Underline(true)

	s.TimeColumnStyle = base.Foreground(s.colorFgMuted).Width(gutterWidth)
	s.TimeColumnCursorStyle = base.Foreground(s.colorAccent).Bold(true).Width(gutterWidth)
	s.SeparatorStyle = base.Foreground(s.colorBgSelection)
	s.EmptyCellStyle = base
	s.HourCellStyle = base.Foreground(s.colorBgHighlight)
	s.CursorStyle = lipgloss.NewStyle().Background(s.colorBgSelection).Foreground(s.colorFg)

	s.PreviewStyle = lipgloss.NewStyle().
		Background(s.colorBgSelection).
		Foreground(s.colorPending).
		Bold(true)
	s.PreviewInvalidStyle = lipgloss.NewStyle().
		Background(s.colorBgSelection).
		Foreground(s.colorError).
		Strikethrough(true)

	s.StatusStyle = base.Foreground(s.colorFg)
	s.StatusErrorStyle = base.Foreground(s.colorError).Bold(true)
	s.HelpStyle = base.Foreground(s.colorFgMuted)

	return s
}

// blockLook selects the style variant of one block row.
type blockLook struct {
	DisplayColor string
	Unassigned   bool
	Cancelled    bool
	Alt          bool // alternate shade for adjacent blocks
	Pending      bool
	Selected     bool
	Held         bool // the block being dragged, still at its old place
}

// Block returns the body style and the left marker style of a block.
func (s *Styles) Block(look blockLook) (body, marker lipgloss.Style) {
	colors := s.palette.Block(look.DisplayColor, look.Unassigned)
	if look.Cancelled {
		colors = s.palette.Cancelled(look.DisplayColor)
	}
	bg := colors.Bg
	if look.Alt {
		bg = colors.BgAlt
	}

	body = lipgloss.NewStyle().Background(bg).Foreground(colors.Text)
	marker = lipgloss.NewStyle().Background(bg).Foreground(colors.Border)

	switch {
	case look.Held:
		body = body.Foreground(s.colorFgMuted).Faint(true)
		marker = marker.Foreground(s.colorFgMuted)
	case look.Pending:
		body = body.Italic(true)
		marker = marker.Foreground(s.colorPending)
	}
	if look.Selected {
		body = body.Bold(true)
		marker = marker.Foreground(s.colorAccent).Bold(true)
	}
	return body, marker
}

func newHelp(s *Styles) help.Model {
	h := help.New()
	h.Styles.ShortKey = s.HelpStyle.Foreground(s.colorAccent)
	h.Styles.ShortDesc = s.HelpStyle
	h.Styles.ShortSeparator = s.HelpStyle
	h.Styles.FullKey = s.HelpStyle.Foreground(s.colorAccent)
	h.Styles.FullDesc = s.HelpStyle
	h.Styles.FullSeparator = s.HelpStyle
	h.Styles.Ellipsis = s.HelpStyle
	return h
}
