package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/salonboard/internal/appointment"
	"github.com/javiermolinar/salonboard/internal/dateutil"
	"github.com/javiermolinar/salonboard/internal/grid"
	"github.com/javiermolinar/salonboard/internal/tui/commands"
)

// keyMap holds every board binding.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	PrevDay   key.Binding
	NextDay   key.Binding
	Today     key.Binding
	Move      key.Binding
	Drop      key.Binding
	Cancel    key.Binding
	CancelApt key.Binding
	Copy      key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "earlier")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "later")),
		Left:      key.NewBinding(key.WithKeys("left", "shift+tab"), key.WithHelp("←", "prev staff")),
		Right:     key.NewBinding(key.WithKeys("right", "tab"), key.WithHelp("→", "next staff")),
		PageUp:    key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		PrevDay:   key.NewBinding(key.WithKeys("h", "["), key.WithHelp("h/[", "prev day")),
		NextDay:   key.NewBinding(key.WithKeys("l", "]"), key.WithHelp("l/]", "next day")),
		Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Move:      key.NewBinding(key.WithKeys("m", "enter"), key.WithHelp("m", "move")),
		Drop:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "drop")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel move")),
		CancelApt: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cancel appt")),
		Copy:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.PrevDay, k.NextDay, k.CancelApt, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.PageUp, k.PageDown},
		{k.PrevDay, k.NextDay, k.Today, k.Refresh},
		{k.Move, k.CancelApt, k.Copy, k.Help, k.Quit},
	}
}

// moveKeyMap is the help shown while an appointment is held.
type moveKeyMap struct {
	keys keyMap
}

func (k moveKeyMap) ShortHelp() []key.Binding {
	up := key.NewBinding(key.WithKeys("up"), key.WithHelp("↑↓", "time"))
	side := key.NewBinding(key.WithKeys("left"), key.WithHelp("←→", "staff"))
	return []key.Binding{up, side, k.keys.Drop, k.keys.Cancel}
}

func (k moveKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logger.Debug("key", "key", msg.String(), "mode", int(m.mode))

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case ModeMove:
		return m.handleMoveKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	layout := m.board.View()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	// Navigation
	case key.Matches(msg, m.keys.Up):
		m.cursor.Slot--
	case key.Matches(msg, m.keys.Down):
		m.cursor.Slot++
	case key.Matches(msg, m.keys.Left):
		m.cursor.Col--
	case key.Matches(msg, m.keys.Right):
		m.cursor.Col++
	case key.Matches(msg, m.keys.PageUp):
		m.cursor.Slot -= max(1, m.visibleRows())
	case key.Matches(msg, m.keys.PageDown):
		m.cursor.Slot += max(1, m.visibleRows())

	// Day navigation
	case key.Matches(msg, m.keys.PrevDay):
		return m.changeDay(m.board.Date().AddDate(0, 0, -1))
	case key.Matches(msg, m.keys.NextDay):
		return m.changeDay(m.board.Date().AddDate(0, 0, 1))
	case key.Matches(msg, m.keys.Today):
		return m.changeDay(dateutil.TruncateToDay(m.now()))
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, commands.LoadDay(m.store, m.board.Date())

	// Appointment actions
	case key.Matches(msg, m.keys.Move):
		return m.startKeyboardMove(layout)
	case key.Matches(msg, m.keys.CancelApt):
		block, ok := m.selectedBlock(layout)
		if !ok {
			cmd := m.setStatus("No appointment selected", true)
			return m, cmd
		}
		if m.board.IsPending(block.Appointment.ID) {
			cmd := m.setStatus("Wait for the pending move to finish", true)
			return m, cmd
		}
		return m, commands.SetStatus(m.store, block.Appointment.ID, appointment.StatusCancelled)
	case key.Matches(msg, m.keys.Copy):
		block, ok := m.selectedBlock(layout)
		if !ok {
			cmd := m.setStatus("No appointment selected", true)
			return m, cmd
		}
		if err := clipboard.WriteAll(m.summary(block)); err != nil {
			cmd := m.setStatus(fmt.Sprintf("Copy failed: %v", err), true)
			return m, cmd
		}
		cmd := m.setStatus("Copied to clipboard", false)
		return m, cmd
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	m.clampCursor(layout)
	m.ensureCursorVisible()
	return m, nil
}

// handleMoveKeys steers the held appointment with a synthetic pointer.
func (m Model) handleMoveKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	layout := m.board.View()
	qpx := m.board.Geometry().QuantumPixels()
	n := len(layout.Columns)

	switch {
	case key.Matches(msg, m.keys.Cancel), msg.String() == "q":
		m.board.Cancel("keyboard")
		m.mode = ModeNormal
		cmd := m.setStatus("Move cancelled", false)
		return m, cmd
	case key.Matches(msg, m.keys.Drop):
		return m.drop(layout, m.moveCol, m.movePointer)
	case key.Matches(msg, m.keys.Up):
		m.movePointer.Y = max(m.movePointer.Y-qpx, 0)
	case key.Matches(msg, m.keys.Down):
		m.movePointer.Y = min(m.movePointer.Y+qpx, m.slotOffset(m.totalSlots()-1))
	case key.Matches(msg, m.keys.Left), msg.String() == "h":
		m.moveCol = max(m.moveCol-1, 0)
	case key.Matches(msg, m.keys.Right), msg.String() == "l":
		m.moveCol = min(m.moveCol+1, n-1)
	default:
		return m, nil
	}

	m.movePointer.X = m.columnX(m.moveCol, n)
	staffID, _ := staffIDAt(layout, m.moveCol)
	c, err := m.board.Move(staffID, m.movePointer)
	if err != nil {
		m.mode = ModeNormal
		cmd := m.setStatus(err.Error(), true)
		return m, cmd
	}
	m.followCandidate(layout, c)
	return m, nil
}

// startKeyboardMove grabs the selected appointment at its top edge.
func (m Model) startKeyboardMove(layout *grid.Layout) (tea.Model, tea.Cmd) {
	block, ok := m.selectedBlock(layout)
	if !ok {
		cmd := m.setStatus("No appointment selected", true)
		return m, cmd
	}
	n := len(layout.Columns)
	pointer := grid.Point{X: m.columnX(m.cursor.Col, n), Y: block.Top}
	if err := m.board.Grab(block.Appointment.ID, pointer); err != nil {
		cmd := m.setStatus(err.Error(), true)
		return m, cmd
	}
	m.mode = ModeMove
	m.moveCol = m.cursor.Col
	m.movePointer = pointer
	return m, nil
}

// drop releases the held appointment over column col.
func (m Model) drop(layout *grid.Layout, col int, pointer grid.Point) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	m.mouseDrag = false
	staffID, ok := staffIDAt(layout, col)
	if !ok {
		m.board.Cancel("drop outside the board")
		cmd := m.setStatus("Move cancelled", false)
		return m, cmd
	}
	res, req, err := m.board.Drop(staffID, pointer)
	if err != nil {
		cmd := m.setStatus(err.Error(), true)
		return m, cmd
	}
	if res.Valid {
		m.followCandidate(m.board.View(), res.Candidate)
	}

	var cmds []tea.Cmd
	if req != nil {
		cmds = append(cmds, commands.Commit(m.store, *req), m.setStatus("Saving move...", false))
	}
	if cmd := m.flushNotices(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// followCandidate puts the cursor on the candidate position.
func (m *Model) followCandidate(layout *grid.Layout, c grid.Candidate) {
	if col := layout.ColumnIndex(c.StaffID); col >= 0 {
		m.cursor.Col = col
	}
	geo := m.board.Geometry()
	m.cursor.Slot = (geo.ClampToBusinessHours(c.Start) - geo.Origin) / geo.Quantum
	m.ensureCursorVisible()
}

// changeDay switches the board to date and reloads it.
func (m Model) changeDay(date time.Time) (tea.Model, tea.Cmd) {
	m.board.SetDate(dateutil.TruncateToDay(date))
	m.mode = ModeNormal
	m.mouseDrag = false
	m.loading = true
	return m, commands.LoadDay(m.store, m.board.Date())
}

// summary formats an appointment for the clipboard.
func (m Model) summary(b grid.Block) string {
	a := b.Appointment
	parts := []string{a.ClientName}
	if a.ServiceName != "" {
		parts = append(parts, a.ServiceName)
	}
	parts = append(parts, fmt.Sprintf("%s %s-%s",
		a.Date.Format("Mon 02 Jan 2006"),
		appointment.MinutesToTime(b.Start),
		appointment.MinutesToTime(b.End)))
	parts = append(parts, m.staffName(a.StaffID))
	return strings.Join(parts, " · ")
}

func (m Model) staffName(id string) string {
	if id == appointment.Unassigned {
		return "Unassigned"
	}
	for _, s := range m.board.Roster() {
		if s.ID == id {
			return s.Name
		}
	}
	return id
}
