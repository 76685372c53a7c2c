package grid

import (
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/salonboard/internal/appointment"
)

// DragSession errors.
var (
	ErrDragActive  = errors.New("a drag is already in progress")
	ErrNotDragging = errors.New("no drag in progress")
)

// DefaultDragThreshold is the pointer travel, in pixels, before a grab becomes a drag.
const DefaultDragThreshold = 3

// DragState is the drag session lifecycle state.
type DragState int

const (
	DragIdle DragState = iota
	DragGrabbed
	DragDragging
)

func (s DragState) String() string {
	switch s {
	case DragGrabbed:
		return "grabbed"
	case DragDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Reason explains why a drop did not produce a move.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonOverlap         Reason = "overlap"
	ReasonOutOfHours      Reason = "out_of_hours"
	ReasonCrossesMidnight Reason = "crosses_midnight"
	ReasonNotFound        Reason = "not_found"
	ReasonNoChange        Reason = "no_change"
)

// Point is a pointer position in grid pixels. Y is relative to the grid top.
type Point struct {
	X, Y int
}

// Candidate is a proposed placement.
type Candidate struct {
	StaffID string
	Start   int // minutes since midnight
}

// Time returns the candidate start as "HH:MM".
func (c Candidate) Time() string {
	return appointment.MinutesToTime(c.Start)
}

// DropResult is the outcome of validating a placement.
type DropResult struct {
	Appointment *appointment.Appointment // record as it was before the move
	Candidate   Candidate
	Valid       bool
	Reason      Reason
	Conflict    *appointment.Appointment // set when Reason is ReasonOverlap
	Err         error
}

// Patch returns the partial update for a valid result. Only changed fields are set.
func (r DropResult) Patch() appointment.Patch {
	var p appointment.Patch
	if r.Appointment == nil {
		return p
	}
	if r.Candidate.StaffID != r.Appointment.StaffID {
		staff := r.Candidate.StaffID
		p.StaffID = &staff
	}
	if r.Candidate.Start != r.Appointment.StartMinutes() {
		t := r.Candidate.Time()
		p.StartTime = &t
	}
	return p
}

// Message renders a rejection for the status line.
func (r DropResult) Message() string {
	switch r.Reason {
	case ReasonOverlap:
		if r.Conflict != nil {
			return fmt.Sprintf("overlaps %s at %s", r.Conflict.ClientName, appointment.CanonicalTime(r.Conflict.StartTime))
		}
		return ErrOverlap.Error()
	case ReasonOutOfHours, ReasonCrossesMidnight:
		if r.Err != nil {
			return r.Err.Error()
		}
		return string(r.Reason)
	case ReasonNotFound:
		return "appointment no longer exists"
	case ReasonNoChange:
		return "no change"
	default:
		return ""
	}
}

// Rules validates placements against geometry and the conflict detector.
type Rules struct {
	Geometry Geometry
	Detector ConflictDetector
}

// Check validates moving apt to candidate on date. all is the merged working
// set; it is used both to resolve the current record and for conflicts.
func (r Rules) Check(apt *appointment.Appointment, c Candidate, date time.Time, all []*appointment.Appointment) DropResult {
	res := DropResult{Appointment: apt, Candidate: c}
	current := lookup(apt.ID, all)
	if current == nil || current.IsCancelled() {
		res.Reason = ReasonNotFound
		res.Err = appointment.ErrNotFound
		return res
	}
	res.Appointment = current

	if c.StaffID == current.StaffID && c.Start == current.StartMinutes() && current.SameDay(date) {
		res.Reason = ReasonNoChange
		return res
	}

	dur := current.Duration(r.Detector.DefaultDuration)
	if err := r.Geometry.ValidateSpan(c.Start, dur); err != nil {
		res.Err = err
		if errors.Is(err, ErrCrossesMidnight) {
			res.Reason = ReasonCrossesMidnight
		} else {
			res.Reason = ReasonOutOfHours
		}
		return res
	}

	if conflict := r.Detector.FindConflictOn(date, c.StaffID, c.Start, dur, current.ID, all); conflict != nil {
		res.Reason = ReasonOverlap
		res.Conflict = conflict
		res.Err = fmt.Errorf("%w: %s", ErrOverlap, conflict.ID)
		return res
	}

	res.Valid = true
	return res
}

func lookup(id string, all []*appointment.Appointment) *appointment.Appointment {
	for _, a := range all {
		if a != nil && a.ID == id {
			return a
		}
	}
	return nil
}

// Preview is the live drag state used to render the ghost block.
type Preview struct {
	Appointment *appointment.Appointment
	Candidate   Candidate
	Pointer     Point
	Top         int // pixel offset of the snapped candidate
	Height      int
	Dragging    bool
}

// DragSession tracks a single pointer-driven move. It is owned by the caller
// and mutated only from the UI event loop.
type DragSession struct {
	rules     Rules
	threshold int

	state      DragState
	apt        *appointment.Appointment // snapshot taken at grab
	origin     Point
	pointer    Point
	grabOffset int
	candidate  Candidate
}

// NewDragSession creates an idle session. A negative threshold uses DefaultDragThreshold.
func NewDragSession(rules Rules, threshold int) *DragSession {
	if threshold < 0 {
		threshold = DefaultDragThreshold
	}
	return &DragSession{rules: rules, threshold: threshold}
}

// State returns the current lifecycle state.
func (d *DragSession) State() DragState {
	return d.state
}

// Active returns true while an appointment is held.
func (d *DragSession) Active() bool {
	return d.state != DragIdle
}

// Appointment returns the held appointment, or nil when idle.
func (d *DragSession) Appointment() *appointment.Appointment {
	return d.apt
}

// Grab starts a session on apt. blockTop is the block's current pixel offset;
// the distance from it to the pointer is kept so the block does not jump.
func (d *DragSession) Grab(apt *appointment.Appointment, pointer Point, blockTop int) error {
	if d.state != DragIdle {
		return ErrDragActive
	}
	if apt == nil {
		return appointment.ErrNotFound
	}
	d.state = DragGrabbed
	d.apt = apt.Clone()
	d.origin = pointer
	d.pointer = pointer
	d.grabOffset = pointer.Y - blockTop
	d.candidate = Candidate{StaffID: apt.StaffID, Start: apt.StartMinutes()}
	return nil
}

// Move updates the live candidate from a pointer event over staffID's column.
func (d *DragSession) Move(staffID string, pointer Point) (Candidate, error) {
	if d.state == DragIdle {
		return Candidate{}, ErrNotDragging
	}
	d.pointer = pointer
	if d.state == DragGrabbed && d.pastThreshold(pointer) {
		d.state = DragDragging
	}
	if d.state == DragDragging {
		d.candidate = d.candidateAt(staffID, pointer)
	}
	return d.candidate, nil
}

// Drop ends the session at the release point and validates the placement
// against all, the merged working set for date. Releasing before the pointer
// passed the threshold is a click and yields ReasonNoChange.
func (d *DragSession) Drop(staffID string, pointer Point, date time.Time, all []*appointment.Appointment) (DropResult, error) {
	if d.state == DragIdle {
		return DropResult{}, ErrNotDragging
	}
	defer d.reset()

	if d.state == DragGrabbed && !d.pastThreshold(pointer) {
		return DropResult{Appointment: d.apt, Candidate: d.candidate, Reason: ReasonNoChange}, nil
	}
	d.candidate = d.candidateAt(staffID, pointer)
	return d.rules.Check(d.apt, d.candidate, date, all), nil
}

// Cancel aborts any session. It returns false if there was nothing to cancel.
func (d *DragSession) Cancel() bool {
	if d.state == DragIdle {
		return false
	}
	d.reset()
	return true
}

// Candidate returns the live candidate and whether a session is active.
func (d *DragSession) Candidate() (Candidate, bool) {
	return d.candidate, d.state != DragIdle
}

// Preview returns the ghost block for rendering, or false when idle.
func (d *DragSession) Preview() (Preview, bool) {
	if d.state == DragIdle {
		return Preview{}, false
	}
	geo := d.rules.Geometry
	dur := d.apt.Duration(d.rules.Detector.DefaultDuration)
	return Preview{
		Appointment: d.apt,
		Candidate:   d.candidate,
		Pointer:     d.pointer,
		Top:         geo.TimeToOffset(d.candidate.Start),
		Height:      geo.Height(dur),
		Dragging:    d.state == DragDragging,
	}, true
}

func (d *DragSession) candidateAt(staffID string, pointer Point) Candidate {
	return Candidate{
		StaffID: staffID,
		Start:   d.rules.Geometry.OffsetToTime(pointer.Y - d.grabOffset),
	}
}

func (d *DragSession) pastThreshold(p Point) bool {
	dx := abs(p.X - d.origin.X)
	dy := abs(p.Y - d.origin.Y)
	return max(dx, dy) >= d.threshold
}

func (d *DragSession) reset() {
	d.state = DragIdle
	d.apt = nil
	d.grabOffset = 0
	d.candidate = Candidate{}
	d.origin = Point{}
	d.pointer = Point{}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
