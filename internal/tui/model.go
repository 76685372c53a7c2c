// Package tui provides the terminal staff board for salonboard.
package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/salonboard/internal/appointment"
	"github.com/javiermolinar/salonboard/internal/config"
	"github.com/javiermolinar/salonboard/internal/dateutil"
	"github.com/javiermolinar/salonboard/internal/grid"
	"github.com/javiermolinar/salonboard/internal/logging"
	"github.com/javiermolinar/salonboard/internal/tui/commands"
	"github.com/javiermolinar/salonboard/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeMove        // keyboard move: arrows steer the held appointment
)

// expireEvery is how often pending moves are checked against the timeout.
const expireEvery = time.Second

// Position is a cursor position on the board.
type Position struct {
	Col  int // column index in the current layout
	Slot int // quantum row from the grid origin
}

// Model is the main board model.
type Model struct {
	// Dependencies
	store  appointment.Store
	config *config.Config
	board  *grid.Board
	logger *slog.Logger

	// Theme and styles
	theme  *theme.Theme
	styles *Styles
	keys   keyMap
	help   help.Model

	// State
	cursor  Position
	mode    Mode
	loading bool
	now     func() time.Time

	// Keyboard move: the synthetic pointer fed to the drag session
	movePointer grid.Point
	moveCol     int

	// Mouse drag in progress
	mouseDrag bool

	// Terminal dimensions
	width        int
	height       int
	scrollOffset int

	// Messages
	statusMsg  string
	statusErr  bool
	statusTime time.Time

	// Construction-time settings
	startDate   time.Time
	staffFilter []string
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithLogger sets the structured logger used by the board.
func WithLogger(l *slog.Logger) ModelOption {
	return func(m *Model) {
		m.logger = l
	}
}

// WithDate sets the initially displayed day.
func WithDate(date time.Time) ModelOption {
	return func(m *Model) {
		m.startDate = dateutil.TruncateToDay(date)
	}
}

// WithStaffFilter restricts the board to the given staff ids.
func WithStaffFilter(ids []string) ModelOption {
	return func(m *Model) {
		m.staffFilter = ids
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.now = now
	}
}

// New creates a new board model.
func New(store appointment.Store, cfg *config.Config, opts ...ModelOption) *Model {
	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load("mocha")
	}
	styles := NewStyles(t)

	m := &Model{
		store:   store,
		config:  cfg,
		theme:   t,
		styles:  styles,
		keys:    defaultKeyMap(),
		help:    newHelp(styles),
		mode:    ModeNormal,
		loading: true,
		now:     time.Now,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.startDate.IsZero() {
		m.startDate = dateutil.TruncateToDay(m.now())
	}

	boardOpts := grid.OptionsFromConfig(cfg.Grid)
	boardOpts.Now = m.now
	boardOpts.Logger = m.logger
	m.board = grid.NewBoard(m.startDate, boardOpts)
	if len(m.staffFilter) > 0 {
		m.board.SetStaffFilter(m.staffFilter)
	}
	m.cursor = Position{Col: 0, Slot: m.slotForTime(m.now())}
	m.ensureCursorVisible()

	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		commands.LoadDay(m.store, m.board.Date()),
		commands.ExpireTick(expireEvery),
	)
}

// Board exposes the grid board, mainly for tests.
func (m Model) Board() *grid.Board {
	return m.board
}

// Run starts the board.
func Run(store appointment.Store, cfg *config.Config, opts ...ModelOption) error {
	model := New(store, cfg, opts...)
	p := tea.NewProgram(*model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	_, err := p.Run()
	return err
}

// slotForTime returns the row of the wall-clock time t, clamped to the grid.
func (m Model) slotForTime(t time.Time) int {
	geo := m.board.Geometry()
	minutes := geo.ClampToBusinessHours(t.Hour()*60 + t.Minute())
	return (minutes - geo.Origin) / geo.Quantum
}
