package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/salonboard/internal/dateutil"
	"github.com/javiermolinar/salonboard/internal/tui/commands"
)

// statusDuration is how long a status message stays on screen.
const statusDuration = 5 * time.Second

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tea.BlurMsg:
		return m.handleBlur()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureCursorVisible()
		return m, nil

	case commands.DayLoadedMsg:
		if !dateutil.SameDay(msg.Date, m.board.Date()) {
			// the user navigated away while this day was loading
			return m, nil
		}
		m.loading = false
		m.board.SetRoster(msg.Staff)
		m.board.SetAppointments(msg.Appointments)
		m.clampCursor(m.board.View())
		m.logger.Debug("day loaded",
			"date", dateutil.FormatDay(msg.Date),
			"staff", len(msg.Staff),
			"appointments", len(msg.Appointments))
		cmd := m.flushNotices()
		return m, cmd

	case commands.CommitResultMsg:
		if msg.Err != nil {
			m.board.CommitFailed(msg.Request, msg.Err)
		} else {
			m.board.CommitSucceeded(msg.Request, msg.Record)
		}
		cmd := m.flushNotices()
		return m, cmd

	case commands.StatusChangedMsg:
		m.loading = true
		status := m.setStatus(fmt.Sprintf("%s is now %s", msg.Record.ClientName, msg.Record.Status), false)
		return m, tea.Batch(commands.LoadDay(m.store, m.board.Date()), status)

	case commands.ExpireTickMsg:
		m.board.Expire()
		notices := m.flushNotices()
		return m, tea.Batch(notices, commands.ExpireTick(expireEvery))

	case commands.ErrMsg:
		m.loading = false
		m.logger.Error("command failed", "error", msg.Err)
		cmd := m.setStatus(fmt.Sprintf("Error: %v", msg.Err), true)
		return m, cmd

	case commands.StatusMsgCmd:
		cmd := m.setStatus(msg.Msg, false)
		return m, cmd

	case commands.ClearStatusMsg:
		if m.now().After(m.statusTime) {
			m.statusMsg = ""
			m.statusErr = false
		}
		return m, nil
	}

	return m, nil
}

// setStatus shows a temporary status line message.
func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusMsg = msg
	m.statusErr = isErr
	m.statusTime = m.now().Add(statusDuration)
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return commands.ClearStatusMsg{}
	})
}

// flushNotices moves the board's notices to the status line.
func (m *Model) flushNotices() tea.Cmd {
	notices := m.board.DrainNotices()
	if len(notices) == 0 {
		return nil
	}
	last := notices[len(notices)-1]
	msg := last.Message
	if len(notices) > 1 {
		msg = fmt.Sprintf("%s (+%d more)", msg, len(notices)-1)
	}
	isErr := false
	for _, n := range notices {
		isErr = isErr || n.IsError()
	}
	return m.setStatus(capitalize(msg), isErr)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
