package grid

import (
	"sort"
	"time"

	"github.com/javiermolinar/salonboard/internal/appointment"
)

// DefaultPendingTimeout bounds how long an unconfirmed move is displayed.
const DefaultPendingTimeout = 30 * time.Second

// PendingMove is a locally applied move awaiting confirmation from the store.
type PendingMove struct {
	ID         string
	Patch      appointment.Patch
	AppliedAt  time.Time
	Generation uint64
}

// Overlay holds pending moves keyed by appointment id and merges them over
// the authoritative records. It is not safe for concurrent use.
type Overlay struct {
	timeout time.Duration
	entries map[string]PendingMove
	gen     uint64
}

// NewOverlay creates an empty overlay. A non-positive timeout uses DefaultPendingTimeout.
func NewOverlay(timeout time.Duration) *Overlay {
	if timeout <= 0 {
		timeout = DefaultPendingTimeout
	}
	return &Overlay{
		timeout: timeout,
		entries: make(map[string]PendingMove),
	}
}

// Apply records a proposal for id, replacing any earlier one, and returns its generation.
func (o *Overlay) Apply(id string, patch appointment.Patch, now time.Time) uint64 {
	o.gen++
	o.entries[id] = PendingMove{
		ID:         id,
		Patch:      patch,
		AppliedAt:  now,
		Generation: o.gen,
	}
	return o.gen
}

// Get returns the pending move for id.
func (o *Overlay) Get(id string) (PendingMove, bool) {
	p, ok := o.entries[id]
	return p, ok
}

// Has reports whether id has a pending move.
func (o *Overlay) Has(id string) bool {
	_, ok := o.entries[id]
	return ok
}

// Len returns the number of pending moves.
func (o *Overlay) Len() int {
	return len(o.entries)
}

// IDs returns the pending ids in sorted order.
func (o *Overlay) IDs() []string {
	ids := make([]string, 0, len(o.entries))
	for id := range o.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Merge returns the authoritative records with pending fields applied.
// Every input id appears exactly once; the input is not modified.
func (o *Overlay) Merge(authoritative []*appointment.Appointment) []*appointment.Appointment {
	out := make([]*appointment.Appointment, 0, len(authoritative))
	for _, a := range authoritative {
		if a == nil {
			continue
		}
		if p, ok := o.entries[a.ID]; ok {
			out = append(out, p.Patch.ApplyTo(a))
			continue
		}
		out = append(out, a)
	}
	return out
}

// Reconcile compares pending moves with a fresh authoritative set. Entries
// whose fields all match are confirmed and removed. Entries older than the
// timeout are expired and removed. Entries whose id is missing from the set
// are kept until they expire.
func (o *Overlay) Reconcile(authoritative []*appointment.Appointment, now time.Time) (confirmed, expired []string) {
	byID := make(map[string]*appointment.Appointment, len(authoritative))
	for _, a := range authoritative {
		if a != nil {
			byID[a.ID] = a
		}
	}
	for _, id := range o.IDs() {
		p := o.entries[id]
		if a, ok := byID[id]; ok && p.Patch.Matches(a) {
			delete(o.entries, id)
			confirmed = append(confirmed, id)
			continue
		}
		if o.stale(p, now) {
			delete(o.entries, id)
			expired = append(expired, id)
		}
	}
	return confirmed, expired
}

// Expire removes entries older than the timeout and returns their ids.
func (o *Overlay) Expire(now time.Time) []string {
	var expired []string
	for _, id := range o.IDs() {
		if o.stale(o.entries[id], now) {
			delete(o.entries, id)
			expired = append(expired, id)
		}
	}
	return expired
}

// Rollback drops the entry for id if it still has generation gen.
// A newer proposal for the same id is left alone.
func (o *Overlay) Rollback(id string, gen uint64) bool {
	p, ok := o.entries[id]
	if !ok || p.Generation != gen {
		return false
	}
	delete(o.entries, id)
	return true
}

// Confirm drops the entry for id if it still has generation gen and record
// matches it. It reports whether the entry was removed.
func (o *Overlay) Confirm(id string, gen uint64, record *appointment.Appointment) bool {
	p, ok := o.entries[id]
	if !ok || p.Generation != gen || !p.Patch.Matches(record) {
		return false
	}
	delete(o.entries, id)
	return true
}

func (o *Overlay) stale(p PendingMove, now time.Time) bool {
	return now.Sub(p.AppliedAt) >= o.timeout
}
