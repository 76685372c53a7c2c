package grid

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/salonboard/internal/appointment"
)

var day = time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

func apt(id, staff, start string, dur int) *appointment.Appointment {
	return &appointment.Appointment{
		ID:          id,
		StaffID:     staff,
		ClientName:  "client " + id,
		Date:        day,
		StartTime:   start,
		DurationMin: dur,
		Status:      appointment.StatusConfirmed,
	}
}

func TestConflict_NoSelfConflict(t *testing.T) {
	d := ConflictDetector{DefaultDuration: 60}
	a := apt("a", "s1", "10:00", 60)

	assert.False(t, d.HasConflict("s1", 600, 60, "a", []*appointment.Appointment{a}))
	assert.True(t, d.HasConflict("s1", 600, 60, "other", []*appointment.Appointment{a}))
}

func TestConflict_TouchingIsNotOverlapping(t *testing.T) {
	d := ConflictDetector{DefaultDuration: 60}
	all := []*appointment.Appointment{apt("a", "s1", "10:00", 60)}

	assert.False(t, d.HasConflict("s1", 11*60, 30, "x", all), "starts at existing end")
	assert.False(t, d.HasConflict("s1", 9*60, 60, "x", all), "ends at existing start")
	assert.True(t, d.HasConflict("s1", 10*60+59, 30, "x", all))
	assert.True(t, d.HasConflict("s1", 9*60+1, 60, "x", all))
}

func TestConflict_Filters(t *testing.T) {
	d := ConflictDetector{DefaultDuration: 60}
	cancelled := apt("c", "s1", "10:00", 60)
	cancelled.Status = appointment.StatusCancelled
	otherStaff := apt("o", "s2", "10:00", 60)
	unassigned := apt("u", "", "10:00", 60)
	all := []*appointment.Appointment{cancelled, otherStaff, unassigned}

	assert.False(t, d.HasConflict("s1", 10*60, 60, "x", all))
	assert.False(t, d.HasConflict(UnassignedLane, 10*60, 60, "x", all), "unassigned lane is not a timeline")
}

func TestConflict_UnknownDurationUsesDefault(t *testing.T) {
	existing := apt("a", "s1", "10:00", 0)
	all := []*appointment.Appointment{existing}

	assert.True(t, ConflictDetector{DefaultDuration: 60}.HasConflict("s1", 10*60+45, 15, "x", all))
	assert.False(t, ConflictDetector{DefaultDuration: 30}.HasConflict("s1", 10*60+45, 15, "x", all))
}

func TestConflict_FindConflictReturnsBlocker(t *testing.T) {
	d := ConflictDetector{DefaultDuration: 60}
	blocker := apt("b", "s1", "14:00:00", 60)
	all := []*appointment.Appointment{apt("a", "s1", "09:00", 60), blocker}

	got := d.FindConflict("s1", 14*60+30, 60, "x", all)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)
}

func TestConflict_FindConflictOnIgnoresOtherDays(t *testing.T) {
	d := ConflictDetector{DefaultDuration: 60}
	tomorrow := apt("t", "s1", "10:00", 60)
	tomorrow.Date = day.AddDate(0, 0, 1)
	all := []*appointment.Appointment{tomorrow}

	assert.Nil(t, d.FindConflictOn(day, "s1", 10*60, 60, "x", all))
	assert.NotNil(t, d.FindConflictOn(day.AddDate(0, 0, 1), "s1", 10*60, 60, "x", all))
}

func TestConflict_SymmetryProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	d := ConflictDetector{DefaultDuration: 60}

	for i := 0; i < 2000; i++ {
		s1 := rng.Intn(24 * 60)
		s2 := rng.Intn(24 * 60)
		d1 := 1 + rng.Intn(180)
		d2 := 1 + rng.Intn(180)

		a := apt("a", "s1", appointment.MinutesToTime(s1), d1)
		b := apt("b", "s1", appointment.MinutesToTime(s2), d2)

		ab := d.HasConflict("s1", s1, d1, "a", []*appointment.Appointment{b})
		ba := d.HasConflict("s1", s2, d2, "b", []*appointment.Appointment{a})
		require.Equal(t, ab, ba, "a=[%d,+%d) b=[%d,+%d)", s1, d1, s2, d2)
		require.Equal(t, ab, appointment.IntervalsOverlap(s1, s1+d1, s2, s2+d2))
	}
}
