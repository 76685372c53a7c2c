package grid

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/javiermolinar/salonboard/internal/appointment"
	"github.com/javiermolinar/salonboard/internal/config"
	"github.com/javiermolinar/salonboard/internal/logging"
)

// Options configures a Board.
type Options struct {
	Geometry        Geometry
	DefaultDuration int
	DragThreshold   int
	PendingTimeout  time.Duration
	Now             func() time.Time
	Logger          *slog.Logger
}

// DefaultOptions returns the options matching the default config.
func DefaultOptions() Options {
	return Options{
		Geometry:        DefaultGeometry(),
		DefaultDuration: appointment.DefaultDurationMin,
		DragThreshold:   DefaultDragThreshold,
		PendingTimeout:  DefaultPendingTimeout,
	}
}

// OptionsFromConfig builds Options from the [grid] config section.
func OptionsFromConfig(cfg config.GridConfig) Options {
	return Options{
		Geometry:        GeometryFromConfig(cfg),
		DefaultDuration: cfg.DefaultDurationMin,
		DragThreshold:   cfg.DragThresholdPx,
		PendingTimeout:  cfg.PendingTimeout.Std(),
	}
}

// CommitRequest is a move the caller must send to the store. Generation
// identifies the overlay entry so late responses cannot clobber newer moves.
type CommitRequest struct {
	ID         string
	Patch      appointment.Patch
	Generation uint64
}

// Board coordinates one day of the grid: the authoritative records, the
// pending overlay and the drag session. It never calls the store itself;
// valid drops return a CommitRequest and the caller reports the outcome.
type Board struct {
	opts    Options
	rules   Rules
	overlay *Overlay
	drag    *DragSession
	notices noticeLog
	logger  *slog.Logger

	date          time.Time
	roster        []appointment.StaffMember
	staffFilter   []string
	authoritative []*appointment.Appointment
}

// NewBoard creates a board for the given day.
func NewBoard(date time.Time, opts Options) *Board {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = appointment.DefaultDurationMin
	}
	rules := Rules{
		Geometry: opts.Geometry,
		Detector: ConflictDetector{DefaultDuration: opts.DefaultDuration},
	}
	return &Board{
		opts:    opts,
		rules:   rules,
		overlay: NewOverlay(opts.PendingTimeout),
		drag:    NewDragSession(rules, opts.DragThreshold),
		logger:  logging.Component(opts.Logger, "board"),
		date:    date,
	}
}

// Geometry returns the board geometry.
func (b *Board) Geometry() Geometry {
	return b.opts.Geometry
}

// Rules returns the placement rules.
func (b *Board) Rules() Rules {
	return b.rules
}

// Date returns the displayed day.
func (b *Board) Date() time.Time {
	return b.date
}

// SetDate switches the displayed day. Any drag is cancelled and the
// authoritative set is cleared until the caller loads the new day.
// Pending moves survive so their commits can still resolve.
func (b *Board) SetDate(date time.Time) {
	b.Cancel("date changed")
	b.date = date
	b.authoritative = nil
}

// Roster returns the staff roster.
func (b *Board) Roster() []appointment.StaffMember {
	return b.roster
}

// SetRoster replaces the staff roster.
func (b *Board) SetRoster(roster []appointment.StaffMember) {
	b.roster = roster
}

// SetStaffFilter restricts the visible columns. nil shows everyone.
func (b *Board) SetStaffFilter(ids []string) {
	b.staffFilter = ids
}

// SetAppointments replaces the authoritative records for the day and
// reconciles pending moves against them.
func (b *Board) SetAppointments(list []*appointment.Appointment) {
	b.authoritative = append([]*appointment.Appointment(nil), list...)
	confirmed, expired := b.overlay.Reconcile(list, b.opts.Now())
	for _, id := range confirmed {
		b.logger.Debug("pending move confirmed by refresh", "appointment_id", id)
	}
	for _, id := range expired {
		b.drift(id)
	}
}

// Appointments returns the merged working set: authoritative records with
// pending moves applied.
func (b *Board) Appointments() []*appointment.Appointment {
	return b.overlay.Merge(b.authoritative)
}

// Appointment returns the merged record for id.
func (b *Board) Appointment(id string) (*appointment.Appointment, bool) {
	a := lookup(id, b.Appointments())
	return a, a != nil
}

// View lays out the merged working set.
func (b *Board) View() *Layout {
	return BuildLayout(b.Appointments(), b.roster, b.opts.Geometry, LayoutOptions{
		Date:            b.date,
		Staff:           b.staffFilter,
		DefaultDuration: b.opts.DefaultDuration,
		Pending:         b.overlay.Has,
	})
}

// IsPending reports whether id has an unconfirmed move.
func (b *Board) IsPending(id string) bool {
	return b.overlay.Has(id)
}

// PendingCount returns the number of unconfirmed moves.
func (b *Board) PendingCount() int {
	return b.overlay.Len()
}

// Drag exposes the drag session for rendering.
func (b *Board) Drag() *DragSession {
	return b.drag
}

// Grab starts dragging the appointment id from pointer.
func (b *Board) Grab(id string, pointer Point) error {
	_, block, ok := b.View().Find(id)
	if !ok {
		return fmt.Errorf("grab %s: %w", id, appointment.ErrNotFound)
	}
	if err := b.drag.Grab(block.Appointment, pointer, block.Top); err != nil {
		return err
	}
	b.logger.Debug("grab", "appointment_id", id, "x", pointer.X, "y", pointer.Y)
	return nil
}

// Move forwards a pointer motion over staffID's column to the drag session.
func (b *Board) Move(staffID string, pointer Point) (Candidate, error) {
	return b.drag.Move(staffID, pointer)
}

// Drop releases the drag over staffID's column. A valid drop is applied to
// the overlay and returned as a CommitRequest. Rejections record a notice.
func (b *Board) Drop(staffID string, pointer Point) (DropResult, *CommitRequest, error) {
	res, err := b.drag.Drop(staffID, pointer, b.date, b.Appointments())
	if err != nil {
		return res, nil, err
	}
	return res, b.accept(res), nil
}

// Propose validates and applies a move without a pointer gesture.
func (b *Board) Propose(id string, c Candidate) (DropResult, *CommitRequest) {
	apt, ok := b.Appointment(id)
	if !ok {
		return DropResult{Candidate: c, Reason: ReasonNotFound, Err: appointment.ErrNotFound}, nil
	}
	res := b.rules.Check(apt, c, b.date, b.Appointments())
	return res, b.accept(res)
}

func (b *Board) accept(res DropResult) *CommitRequest {
	if !res.Valid {
		if res.Reason != ReasonNoChange && res.Reason != ReasonNone {
			id := ""
			if res.Appointment != nil {
				id = res.Appointment.ID
			}
			b.notify(NoticeRejected, id, "move rejected: "+res.Message())
			b.logger.Info("drop rejected", "appointment_id", id, "reason", string(res.Reason))
		}
		return nil
	}
	patch := res.Patch()
	if prev, ok := b.overlay.Get(res.Appointment.ID); ok {
		patch = combine(prev.Patch, patch)
	}
	gen := b.overlay.Apply(res.Appointment.ID, patch, b.opts.Now())
	b.logger.Info("move proposed",
		"appointment_id", res.Appointment.ID,
		"patch", patch.String(),
		"generation", gen)
	return &CommitRequest{ID: res.Appointment.ID, Patch: patch, Generation: gen}
}

// Cancel aborts any drag. It is safe to call when idle.
func (b *Board) Cancel(reason string) bool {
	if !b.drag.Cancel() {
		return false
	}
	b.logger.Debug("drag cancelled", "reason", reason)
	return true
}

// CommitSucceeded records the store's response to req. record is the
// appointment as persisted.
func (b *Board) CommitSucceeded(req CommitRequest, record *appointment.Appointment) {
	if record != nil {
		b.upsert(record)
	}
	if b.overlay.Confirm(req.ID, req.Generation, record) {
		b.notify(NoticeMoved, req.ID, movedMessage(record))
		b.logger.Info("move committed", "appointment_id", req.ID, "generation", req.Generation)
		return
	}
	if p, ok := b.overlay.Get(req.ID); ok && p.Generation == req.Generation {
		// the store accepted the update but persisted something else
		b.overlay.Rollback(req.ID, req.Generation)
		b.drift(req.ID)
		return
	}
	b.logger.Debug("commit superseded by newer move", "appointment_id", req.ID, "generation", req.Generation)
}

// CommitFailed rolls back req and records a notice.
func (b *Board) CommitFailed(req CommitRequest, err error) {
	rolledBack := b.overlay.Rollback(req.ID, req.Generation)
	msg := "move failed: " + err.Error()
	switch {
	case errors.Is(err, appointment.ErrNotFound):
		msg = "move failed: appointment no longer exists"
		b.remove(req.ID)
	case errors.Is(err, appointment.ErrOverlap):
		msg = "move failed: slot was taken in the meantime"
	}
	b.notify(NoticeCommitFailed, req.ID, msg)
	b.logger.Warn("move commit failed",
		"appointment_id", req.ID,
		"generation", req.Generation,
		"rolled_back", rolledBack,
		"error", err)
}

// Expire drops pending moves that outlived the timeout.
func (b *Board) Expire() []string {
	expired := b.overlay.Expire(b.opts.Now())
	for _, id := range expired {
		b.drift(id)
	}
	return expired
}

// Notices returns the recent notices without clearing them.
func (b *Board) Notices() []Notice {
	return b.notices.all()
}

// DrainNotices returns and clears the recent notices.
func (b *Board) DrainNotices() []Notice {
	return b.notices.drain()
}

func (b *Board) drift(id string) {
	b.notify(NoticeDrift, id, "move was not confirmed by the server and has been reverted")
	b.logger.Warn("pending move dropped", "appointment_id", id)
}

func (b *Board) notify(kind NoticeKind, id, msg string) {
	b.notices.add(Notice{Kind: kind, AppointmentID: id, Message: msg, At: b.opts.Now()})
}

func (b *Board) upsert(record *appointment.Appointment) {
	for i, a := range b.authoritative {
		if a.ID == record.ID {
			if record.SameDay(b.date) {
				b.authoritative[i] = record
			} else {
				b.authoritative = append(b.authoritative[:i:i], b.authoritative[i+1:]...)
			}
			return
		}
	}
	if record.SameDay(b.date) {
		b.authoritative = append(b.authoritative, record)
	}
}

func (b *Board) remove(id string) {
	for i, a := range b.authoritative {
		if a.ID == id {
			b.authoritative = append(b.authoritative[:i:i], b.authoritative[i+1:]...)
			return
		}
	}
}

// combine layers next over prev so an in-flight change is not lost.
func combine(prev, next appointment.Patch) appointment.Patch {
	if next.StaffID != nil {
		prev.StaffID = next.StaffID
	}
	if next.StartTime != nil {
		prev.StartTime = next.StartTime
	}
	if next.Date != nil {
		prev.Date = next.Date
	}
	return prev
}

func movedMessage(a *appointment.Appointment) string {
	if a == nil {
		return "moved"
	}
	staff := a.StaffID
	if staff == appointment.Unassigned {
		staff = "unassigned"
	}
	return fmt.Sprintf("moved %s to %s (%s)", a.ClientName, appointment.CanonicalTime(a.StartTime), staff)
}
