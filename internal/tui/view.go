package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/salonboard/internal/appointment"
	"github.com/javiermolinar/salonboard/internal/grid"
	"github.com/javiermolinar/salonboard/internal/tui/view"
)

// View renders the board.
func (m Model) View() string {
	return view.Render(view.ViewState{
		Width:            m.width,
		Height:           m.height,
		BaseContent:      m.renderAppContent(),
		EmptyPlaceholder: "Loading...",
	})
}

func (m Model) renderAppContent() string {
	if m.visibleRows() <= 0 {
		return "Terminal too small"
	}
	layout := m.board.View()

	title := view.RenderTitle(view.TitleState{
		Width:      m.width,
		Date:       m.board.Date(),
		Today:      m.now(),
		Pending:    m.board.PendingCount(),
		Moving:     m.mode == ModeMove || m.board.Drag().State() == grid.DragDragging,
		Loading:    m.loading,
		TitleStyle: m.styles.TitleStyle,
		DateStyle:  m.styles.DateStyle,
		BadgeStyle: m.styles.BadgeStyle,
		MoveStyle:  m.styles.MoveModeStyle,
		Bg:         m.styles.colorBg,
	})
	header := m.renderColumnHeaders(layout)
	body := m.renderGrid(layout)
	footer := view.RenderFooter(view.FooterViewState{
		InnerW:      m.width,
		FooterH:     m.footerHeight(),
		StatusText:  m.statusMsg,
		HelpText:    m.renderHelp(),
		StatusStyle: m.statusStyle(),
		VAlign:      lipgloss.Top,
		Bg:          m.styles.colorBg,
	})

	content := lipgloss.JoinVertical(lipgloss.Left, title, header, body, footer)
	return view.PadLinesWithBackground(content, m.width, m.height, m.styles.colorBg)
}

func (m Model) renderColumnHeaders(layout *grid.Layout) string {
	n := len(layout.Columns)
	cw := m.colWidth(n)
	names := make([]string, n)
	for i, c := range layout.Columns {
		names[i] = c.Staff.Name
	}
	labels := view.HeaderLabels(names, cw)

	var b strings.Builder
	b.WriteString(m.styles.TimeColumnStyle.Render(""))
	for i, label := range labels {
		style := m.styles.HeaderStyle
		switch {
		case i == m.cursor.Col:
			style = m.styles.HeaderCursorStyle
		case layout.Columns[i].IsUnassigned():
			style = m.styles.HeaderUnassignedStyle
		}
		b.WriteString(m.styles.SeparatorStyle.Render(" "))
		b.WriteString(view.Cell(style, cw, label))
	}
	return b.String()
}

// cell is what one grid row of one column shows.
type cell struct {
	block   *grid.Block
	row     int // row index inside the block
	alt     bool
	preview bool
}

// renderGrid draws the visible rows of every column.
func (m Model) renderGrid(layout *grid.Layout) string {
	n := len(layout.Columns)
	cw := m.colWidth(n)
	cells := m.cellMatrix(layout)
	preview, previewOK := m.board.Drag().Preview()
	previewValid := m.previewValid(preview)
	geo := m.board.Geometry()

	first := m.scrollOffset
	last := min(first+m.visibleRows(), m.totalSlots())
	lines := make([]string, 0, last-first)
	for slot := first; slot < last; slot++ {
		minutes := geo.Origin + slot*geo.Quantum
		onHour := minutes%60 == 0

		var b strings.Builder
		gutter := ""
		if onHour || slot == m.cursor.Slot {
			gutter = appointment.MinutesToTime(minutes)
		}
		if slot == m.cursor.Slot {
			b.WriteString(m.styles.TimeColumnCursorStyle.Render(gutter))
		} else {
			b.WriteString(m.styles.TimeColumnStyle.Render(gutter))
		}

		for col := 0; col < n; col++ {
			b.WriteString(m.styles.SeparatorStyle.Render("│"))
			c := cells[col][slot]
			selected := col == m.cursor.Col && slot == m.cursor.Slot
			switch {
			case c.preview && previewOK:
				b.WriteString(m.renderPreviewRow(preview, c.row, cw, previewValid))
			case c.block != nil:
				b.WriteString(m.renderBlockRow(layout.Columns[col], c, cw, selected || m.blockSelected(col, c.block)))
			case selected:
				b.WriteString(view.Cell(m.styles.CursorStyle, cw, ""))
			case onHour:
				b.WriteString(view.Cell(m.styles.HourCellStyle, cw, strings.Repeat("┈", cw)))
			default:
				b.WriteString(view.Cell(m.styles.EmptyCellStyle, cw, ""))
			}
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// cellMatrix assigns every block and the drag preview to the rows they cover.
func (m Model) cellMatrix(layout *grid.Layout) [][]cell {
	slots := m.totalSlots()
	cells := make([][]cell, len(layout.Columns))
	for col, c := range layout.Columns {
		cells[col] = make([]cell, slots)
		for i := range c.Blocks {
			b := &c.Blocks[i]
			first, rows := m.blockRows(b.Top, b.Height)
			for r := 0; r < rows; r++ {
				if s := first + r; s >= 0 && s < slots {
					cells[col][s] = cell{block: b, row: r, alt: i%2 == 1}
				}
			}
		}
	}

	if p, ok := m.board.Drag().Preview(); ok && p.Dragging {
		col := layout.ColumnIndex(p.Candidate.StaffID)
		if col < 0 {
			col = layout.ColumnIndex(grid.UnassignedLane)
		}
		first, rows := m.blockRows(p.Top, p.Height)
		for r := 0; r < rows; r++ {
			if s := first + r; s >= 0 && s < slots {
				cells[col][s] = cell{row: r, preview: true}
			}
		}
	}
	return cells
}

// previewValid checks the live candidate so the ghost can show a conflict
// before the pointer is released.
func (m Model) previewValid(p grid.Preview) bool {
	if !p.Dragging {
		return true
	}
	res := m.board.Rules().Check(p.Appointment, p.Candidate, m.board.Date(), m.board.Appointments())
	return res.Valid || res.Reason == grid.ReasonNoChange
}

// blockSelected reports whether the cursor is anywhere on block b in column col.
func (m Model) blockSelected(col int, b *grid.Block) bool {
	if col != m.cursor.Col {
		return false
	}
	first, rows := m.blockRows(b.Top, b.Height)
	return m.cursor.Slot >= first && m.cursor.Slot < first+rows
}

func (m Model) renderBlockRow(column grid.Column, c cell, cw int, selected bool) string {
	a := c.block.Appointment
	held := false
	if dragged := m.board.Drag().Appointment(); dragged != nil && dragged.ID == a.ID {
		held = m.board.Drag().State() == grid.DragDragging
	}
	body, marker := m.styles.Block(blockLook{
		DisplayColor: column.Staff.DisplayColor,
		Unassigned:   column.IsUnassigned(),
		Cancelled:    a.IsCancelled(),
		Alt:          c.alt,
		Pending:      c.block.Pending,
		Selected:     selected,
		Held:         held,
	})

	mark := "▌"
	if selected {
		mark = "┃"
	}
	return marker.Render(mark) + view.Cell(body, cw-1, m.blockLine(c.block, c.row))
}

// blockLine returns the text of row r of a block.
func (m Model) blockLine(b *grid.Block, r int) string {
	a := b.Appointment
	switch r {
	case 0:
		line := appointment.MinutesToTime(b.Start) + " " + a.ClientName
		if b.Pending {
			line += " …"
		}
		return line
	case 1:
		if a.ServiceName != "" {
			return a.ServiceName + " · " + view.FormatDuration(b.End-b.Start)
		}
		return view.FormatDuration(b.End - b.Start)
	case 2:
		if a.Status != appointment.StatusConfirmed {
			return strings.ReplaceAll(string(a.Status), "_", " ")
		}
	}
	return ""
}

func (m Model) renderPreviewRow(p grid.Preview, r, cw int, valid bool) string {
	style := m.styles.PreviewStyle
	if !valid {
		style = m.styles.PreviewInvalidStyle
	}
	text := ""
	if r == 0 {
		text = "▸ " + p.Candidate.Time() + " " + p.Appointment.ClientName
	}
	return view.Cell(style, cw, text)
}

func (m Model) statusStyle() lipgloss.Style {
	if m.statusErr {
		return m.styles.StatusErrorStyle
	}
	return m.styles.StatusStyle
}

func (m Model) renderHelp() string {
	if m.mode == ModeMove {
		return m.help.View(moveKeyMap{keys: m.keys})
	}
	return m.help.View(m.keys)
}

// footerHeight is the status line plus the help lines.
func (m Model) footerHeight() int {
	if m.help.ShowAll && m.mode != ModeMove {
		rows := 0
		for _, group := range m.keys.FullHelp() {
			rows = max(rows, len(group))
		}
		return 1 + rows
	}
	return footerRows
}
