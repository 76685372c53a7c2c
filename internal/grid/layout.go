package grid

import (
	"sort"
	"time"

	"github.com/javiermolinar/salonboard/internal/appointment"
)

// UnassignedLane is the staff id of the lane holding appointments without a
// known owner. It is always the last column of a Layout.
const UnassignedLane = appointment.Unassigned

// Block is one appointment placed on the grid.
type Block struct {
	Appointment *appointment.Appointment
	Start       int // minutes since midnight
	End         int
	Top         int // pixels from the grid top
	Height      int
	Pending     bool // shown at a locally proposed position not yet confirmed
}

// Column is one staff member's timeline for the day.
type Column struct {
	Staff  appointment.StaffMember
	Blocks []Block
}

// IsUnassigned reports whether this is the unassigned lane.
func (c Column) IsUnassigned() bool {
	return c.Staff.ID == UnassignedLane
}

// Layout is the per-staff grouping of a single day's appointments.
type Layout struct {
	Date    time.Time
	Columns []Column
}

// LayoutOptions controls which appointments BuildLayout places.
type LayoutOptions struct {
	Date            time.Time
	Staff           []string // selected staff ids, nil selects the whole roster
	DefaultDuration int
	Pending         func(id string) bool
}

// BuildLayout groups appointments into staff columns in roster order.
// Cancelled appointments and appointments on other days are skipped.
// Appointments without staff, or whose staff is not on the roster, land in the
// unassigned lane. Blocks are ordered by start time, then id.
func BuildLayout(apts []*appointment.Appointment, roster []appointment.StaffMember, geo Geometry, opts LayoutOptions) *Layout {
	selected := make(map[string]bool, len(opts.Staff))
	for _, id := range opts.Staff {
		selected[id] = true
	}
	isSelected := func(id string) bool {
		return len(selected) == 0 || selected[id]
	}

	layout := &Layout{Date: opts.Date}
	index := make(map[string]int, len(roster)+1)
	onRoster := make(map[string]bool, len(roster))
	for _, s := range roster {
		onRoster[s.ID] = true
		if !isSelected(s.ID) {
			continue
		}
		index[s.ID] = len(layout.Columns)
		layout.Columns = append(layout.Columns, Column{Staff: s})
	}
	index[UnassignedLane] = len(layout.Columns)
	layout.Columns = append(layout.Columns, Column{Staff: appointment.StaffMember{ID: UnassignedLane, Name: "Unassigned"}})

	for _, a := range apts {
		if a == nil || a.IsCancelled() || !a.SameDay(opts.Date) {
			continue
		}
		lane := a.StaffID
		if !onRoster[lane] {
			lane = UnassignedLane
		}
		col, ok := index[lane]
		if !ok {
			// staff member filtered out
			continue
		}
		start := a.StartMinutes()
		dur := a.Duration(opts.DefaultDuration)
		b := Block{
			Appointment: a,
			Start:       start,
			End:         start + dur,
			Top:         geo.TimeToOffset(start),
			Height:      geo.Height(dur),
		}
		if opts.Pending != nil {
			b.Pending = opts.Pending(a.ID)
		}
		layout.Columns[col].Blocks = append(layout.Columns[col].Blocks, b)
	}

	for i := range layout.Columns {
		blocks := layout.Columns[i].Blocks
		sort.SliceStable(blocks, func(x, y int) bool {
			if blocks[x].Start != blocks[y].Start {
				return blocks[x].Start < blocks[y].Start
			}
			return blocks[x].Appointment.ID < blocks[y].Appointment.ID
		})
	}
	return layout
}

// ColumnIndex returns the index of staffID's column, or -1.
func (l *Layout) ColumnIndex(staffID string) int {
	for i, c := range l.Columns {
		if c.Staff.ID == staffID {
			return i
		}
	}
	return -1
}

// Find locates the block for an appointment id.
func (l *Layout) Find(id string) (col int, block Block, ok bool) {
	for i, c := range l.Columns {
		for _, b := range c.Blocks {
			if b.Appointment.ID == id {
				return i, b, true
			}
		}
	}
	return -1, Block{}, false
}

// BlockAt returns the block in column col covering the pixel offset y.
func (l *Layout) BlockAt(col, y int) (Block, bool) {
	if col < 0 || col >= len(l.Columns) {
		return Block{}, false
	}
	for _, b := range l.Columns[col].Blocks {
		if y >= b.Top && y < b.Top+b.Height {
			return b, true
		}
	}
	return Block{}, false
}

// Count returns the number of placed blocks.
func (l *Layout) Count() int {
	n := 0
	for _, c := range l.Columns {
		n += len(c.Blocks)
	}
	return n
}
