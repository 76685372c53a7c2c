package tui

import (
	"github.com/javiermolinar/salonboard/internal/grid"
)

// Screen layout. One terminal row is one quantum of the grid.
const (
	gutterWidth = 6 // "HH:MM "
	titleRows   = 1
	headerRows  = 1
	footerRows  = 2
	minColWidth = 6
	maxColWidth = 28
)

func (m Model) gridTop() int {
	return titleRows + headerRows
}

// visibleRows returns the number of grid rows that fit the terminal.
func (m Model) visibleRows() int {
	return max(0, m.height-m.gridTop()-m.footerHeight())
}

func (m Model) totalSlots() int {
	return m.board.Geometry().Slots()
}

// colWidth returns the content width of each of n columns. Every column is
// preceded by a one-cell separator.
func (m Model) colWidth(n int) int {
	if n <= 0 {
		return maxColWidth
	}
	w := (m.width - gutterWidth - n) / n
	return min(max(w, minColWidth), maxColWidth)
}

// columnX returns the screen x of the first content cell of column col.
func (m Model) columnX(col, n int) int {
	return gutterWidth + col*(m.colWidth(n)+1) + 1
}

// columnAt maps a screen x to a column index of an n-column layout.
// The separator to the left of a column belongs to it.
func (m Model) columnAt(x, n int) (int, bool) {
	rel := x - gutterWidth
	if rel < 0 || n <= 0 {
		return 0, false
	}
	col := rel / (m.colWidth(n) + 1)
	if col >= n {
		return 0, false
	}
	return col, true
}

// slotAt maps a screen row to a grid slot.
func (m Model) slotAt(y int) (int, bool) {
	row := y - m.gridTop()
	if row < 0 || row >= m.visibleRows() {
		return 0, false
	}
	slot := row + m.scrollOffset
	if slot >= m.totalSlots() {
		return 0, false
	}
	return slot, true
}

// slotOffset converts a slot to the engine's pixel offset.
func (m Model) slotOffset(slot int) int {
	return slot * m.board.Geometry().QuantumPixels()
}

// blockRows returns the first row and the row count a block covers.
func (m Model) blockRows(top, height int) (int, int) {
	qpx := m.board.Geometry().QuantumPixels()
	first := top / qpx
	last := (top + height + qpx - 1) / qpx
	return first, max(1, last-first)
}

// pointerAt builds the engine pointer for a screen cell.
func (m Model) pointerAt(x, slot int) grid.Point {
	return grid.Point{X: x, Y: m.slotOffset(slot)}
}

// ensureCursorVisible scrolls so the cursor row is on screen.
func (m *Model) ensureCursorVisible() {
	m.ensureSlotVisible(m.cursor.Slot)
}

func (m *Model) ensureSlotVisible(slot int) {
	visible := m.visibleRows()
	if visible <= 0 {
		return
	}
	if slot < m.scrollOffset {
		m.scrollOffset = slot
	}
	if slot >= m.scrollOffset+visible {
		m.scrollOffset = slot - visible + 1
	}
	maxOffset := max(0, m.totalSlots()-visible)
	m.scrollOffset = min(max(m.scrollOffset, 0), maxOffset)
}

// clampCursor keeps the cursor inside the current layout.
func (m *Model) clampCursor(layout *grid.Layout) {
	n := len(layout.Columns)
	m.cursor.Col = min(max(m.cursor.Col, 0), max(n-1, 0))
	m.cursor.Slot = min(max(m.cursor.Slot, 0), m.totalSlots()-1)
}

// selectedBlock returns the block under the cursor.
func (m Model) selectedBlock(layout *grid.Layout) (grid.Block, bool) {
	return m.blockAtSlot(layout, m.cursor.Col, m.cursor.Slot)
}

// blockAtSlot returns the block drawn on row slot of column col. Blocks that
// start off the quantum still own every row they are drawn on.
func (m Model) blockAtSlot(layout *grid.Layout, col, slot int) (grid.Block, bool) {
	if col < 0 || col >= len(layout.Columns) {
		return grid.Block{}, false
	}
	for _, b := range layout.Columns[col].Blocks {
		first, rows := m.blockRows(b.Top, b.Height)
		if slot >= first && slot < first+rows {
			return b, true
		}
	}
	return grid.Block{}, false
}

// staffIDAt returns the staff id of column col.
func staffIDAt(layout *grid.Layout, col int) (string, bool) {
	if col < 0 || col >= len(layout.Columns) {
		return "", false
	}
	return layout.Columns[col].Staff.ID, true
}
