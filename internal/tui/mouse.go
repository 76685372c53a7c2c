package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// wheelStep is the number of rows scrolled per wheel notch.
const wheelStep = 3

// handleMouseMsg feeds pointer press, motion and release into the drag session.
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeMove {
		// keyboard move owns the session
		return m, nil
	}
	layout := m.board.View()
	n := len(layout.Columns)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollOffset = max(m.scrollOffset-wheelStep, 0)
			return m, nil
		case tea.MouseButtonWheelDown:
			m.scrollOffset = min(m.scrollOffset+wheelStep, max(0, m.totalSlots()-m.visibleRows()))
			return m, nil
		case tea.MouseButtonLeft:
		default:
			return m, nil
		}

		// a press during a drag means the release was lost
		var cancelled tea.Cmd
		if m.mouseDrag || m.board.Drag().Active() {
			m.mouseDrag = false
			m.board.Cancel("stale drag")
			cancelled = m.setStatus("Move cancelled", false)
		}

		col, okCol := m.columnAt(msg.X, n)
		slot, okSlot := m.slotAt(msg.Y)
		if !okCol || !okSlot {
			return m, cancelled
		}
		m.cursor = Position{Col: col, Slot: slot}
		block, ok := m.blockAtSlot(layout, col, slot)
		if !ok {
			return m, cancelled
		}
		if err := m.board.Grab(block.Appointment.ID, m.pointerAt(msg.X, slot)); err != nil {
			cmd := m.setStatus(err.Error(), true)
			return m, cmd
		}
		m.mouseDrag = true
		m.logger.Debug("mouse grab", "appointment_id", block.Appointment.ID, "x", msg.X, "y", msg.Y)
		return m, cancelled

	case tea.MouseActionMotion:
		if !m.mouseDrag {
			return m, nil
		}
		col, okCol := m.columnAt(msg.X, n)
		if !okCol {
			return m, nil
		}
		slot := m.dragSlot(msg.Y)
		staffID, _ := staffIDAt(layout, col)
		c, err := m.board.Move(staffID, m.pointerAt(msg.X, slot))
		if err != nil {
			m.mouseDrag = false
			return m, nil
		}
		m.followCandidate(layout, c)
		return m, nil

	case tea.MouseActionRelease:
		if !m.mouseDrag {
			return m, nil
		}
		col, okCol := m.columnAt(msg.X, n)
		slot, okSlot := m.slotAt(msg.Y)
		if !okCol || !okSlot {
			m.mouseDrag = false
			m.board.Cancel("released outside the board")
			cmd := m.setStatus("Move cancelled", false)
			return m, cmd
		}
		return m.drop(layout, col, m.pointerAt(msg.X, slot))
	}

	return m, nil
}

// dragSlot maps a motion row to a slot, scrolling when the pointer leaves
// the top or bottom edge of the grid.
func (m *Model) dragSlot(y int) int {
	if slot, ok := m.slotAt(y); ok {
		return slot
	}
	if y < m.gridTop() {
		m.scrollOffset = max(m.scrollOffset-1, 0)
		return m.scrollOffset
	}
	m.scrollOffset = min(m.scrollOffset+1, max(0, m.totalSlots()-m.visibleRows()))
	return min(m.scrollOffset+m.visibleRows(), m.totalSlots()) - 1
}

// handleBlur cancels any drag when the terminal loses focus.
func (m Model) handleBlur() (tea.Model, tea.Cmd) {
	m.mouseDrag = false
	m.mode = ModeNormal
	if !m.board.Cancel("focus lost") {
		return m, nil
	}
	cmd := m.setStatus("Move cancelled: focus lost", false)
	return m, cmd
}
