// Package grid implements the staff scheduling grid: time/pixel geometry,
// per-staff layout, conflict detection, the drag session and the optimistic
// overlay that reconciles local moves with the appointment store.
package grid

import (
	"errors"
	"fmt"

	"github.com/javiermolinar/salonboard/internal/appointment"
	"github.com/javiermolinar/salonboard/internal/config"
)

// Geometry errors.
var (
	ErrOutsideBusinessHours = errors.New("start time is outside business hours")
	ErrCrossesMidnight      = errors.New("appointment would end after midnight")
)

const (
	// DefaultOrigin is the grid's first row, 08:00.
	DefaultOrigin = 8 * 60
	// DefaultLastStart is the latest start time a drop may produce, 23:45.
	DefaultLastStart = 23*60 + 45
	// DefaultQuantum is the snap granularity in minutes.
	DefaultQuantum = 15
	// DefaultPixelsPerMinute makes a 15 minute slot 30px tall.
	DefaultPixelsPerMinute = 2
	// DefaultMinBlockHeight keeps very short appointments clickable.
	DefaultMinBlockHeight = 20
)

// Geometry maps between minutes since midnight and vertical pixel offsets
// from the top of the grid. The zero value is not usable; use DefaultGeometry
// or GeometryFromConfig.
type Geometry struct {
	Origin          int // minutes since midnight at offset 0
	LastStart       int // latest allowed start, minutes since midnight
	Quantum         int // snap granularity, minutes
	PixelsPerMinute int
	MinBlockHeight  int // pixels
}

// DefaultGeometry returns the 08:00–23:45, 15 minute, 2px/min geometry.
func DefaultGeometry() Geometry {
	return Geometry{
		Origin:          DefaultOrigin,
		LastStart:       DefaultLastStart,
		Quantum:         DefaultQuantum,
		PixelsPerMinute: DefaultPixelsPerMinute,
		MinBlockHeight:  DefaultMinBlockHeight,
	}
}

// GeometryFromConfig builds a Geometry from the [grid] config section.
func GeometryFromConfig(cfg config.GridConfig) Geometry {
	return Geometry{
		Origin:          appointment.TimeToMinutes(cfg.DayStart),
		LastStart:       appointment.TimeToMinutes(cfg.LastStart),
		Quantum:         cfg.QuantumMin,
		PixelsPerMinute: cfg.PixelsPerMinute,
		MinBlockHeight:  cfg.MinBlockHeight,
	}
}

// QuantumPixels returns the height of one quantum.
func (g Geometry) QuantumPixels() int {
	return g.Quantum * g.PixelsPerMinute
}

// Slots returns the number of quantum rows between the origin and the last start, inclusive.
func (g Geometry) Slots() int {
	return (g.LastStart-g.Origin)/g.Quantum + 1
}

// TimeToOffset converts minutes since midnight to a pixel offset from the grid top.
func (g Geometry) TimeToOffset(minutes int) int {
	return (minutes - g.Origin) * g.PixelsPerMinute
}

// OffsetToTime converts a pixel offset to minutes since midnight, snapped to
// the nearest quantum and clamped to business hours.
// A value exactly halfway between two quanta rounds up to the later one.
func (g Geometry) OffsetToTime(px int) int {
	qpx := g.QuantumPixels()
	// floor(px/qpx + 1/2) in integer arithmetic
	steps := floorDiv(2*px+qpx, 2*qpx)
	return g.ClampToBusinessHours(g.Origin + steps*g.Quantum)
}

// ClampToBusinessHours clamps a start time to [Origin, LastStart].
func (g Geometry) ClampToBusinessHours(minutes int) int {
	return min(max(minutes, g.Origin), g.LastStart)
}

// Snap rounds minutes to the nearest quantum, half up.
func (g Geometry) Snap(minutes int) int {
	return floorDiv(2*minutes+g.Quantum, 2*g.Quantum) * g.Quantum
}

// ValidateSpan checks that the appointment ends no later than midnight and
// that its start lies inside business hours. Spans crossing midnight are
// rejected rather than clamped.
func (g Geometry) ValidateSpan(start, duration int) error {
	if start+duration > appointment.MinutesPerDay {
		return fmt.Errorf("%w: %s + %d min", ErrCrossesMidnight, appointment.MinutesToTime(start), duration)
	}
	if start < g.Origin || start > g.LastStart {
		return fmt.Errorf("%w: %s not in %s-%s", ErrOutsideBusinessHours,
			appointment.MinutesToTime(start),
			appointment.MinutesToTime(g.Origin),
			appointment.MinutesToTime(g.LastStart))
	}
	return nil
}

// Height returns the block height for a duration, never below MinBlockHeight.
func (g Geometry) Height(duration int) int {
	return max(duration*g.PixelsPerMinute, g.MinBlockHeight)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
