package ui

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/salonboard/internal/appointment"
	"github.com/javiermolinar/salonboard/internal/config"
	"github.com/javiermolinar/salonboard/internal/dateutil"
	"github.com/javiermolinar/salonboard/internal/db"
	"github.com/javiermolinar/salonboard/internal/logging"
)

var testDay = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

type cliHarness struct {
	t     *testing.T
	cfg   *config.Config
	store appointment.Store
	seed  *db.SeedResult
}

func newHarness(t *testing.T, seeded bool) *cliHarness {
	t.Helper()
	DisableColor()

	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "salonboard.db")
	store, err := db.New(cfg.Storage.DBPath, db.WithDefaultDuration(cfg.Grid.DefaultDurationMin))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h := &cliHarness{t: t, cfg: cfg, store: store}
	if seeded {
		h.seed, err = db.Seed(context.Background(), store, testDay)
		require.NoError(t, err)
	}
	return h
}

// run executes one command line against a fresh App sharing the store.
func (h *cliHarness) run(args ...string) (string, error) {
	h.t.Helper()
	app := NewApp(h.cfg,
		WithStore(h.store),
		WithLogger(logging.Discard()),
		WithConfigPath(filepath.Join(h.t.TempDir(), "config.toml")),
		WithClock(func() time.Time { return testDay.Add(8 * time.Hour) }),
	)
	var out bytes.Buffer
	app.root.SetOut(&out)
	app.root.SetErr(&out)
	if args == nil {
		args = []string{}
	}
	app.root.SetArgs(args)
	err := app.Execute()
	return out.String(), err
}

func (h *cliHarness) appointmentID(client string) string {
	h.t.Helper()
	for _, a := range h.seed.Appointments {
		if a.ClientName == client {
			return a.ID
		}
	}
	h.t.Fatalf("no seeded appointment for %s", client)
	return ""
}

func (h *cliHarness) staffID(name string) string {
	h.t.Helper()
	for _, m := range h.seed.Staff {
		if m.Name == name {
			return m.ID
		}
	}
	h.t.Fatalf("no seeded staff member %s", name)
	return ""
}

func TestList(t *testing.T) {
	h := newHarness(t, true)

	out, err := h.run("list")
	require.NoError(t, err)

	assert.Contains(t, out, "=== Fri 14 Mar 2025 ===")
	assert.Contains(t, out, "Alma")
	assert.Contains(t, out, "09:00-09:30")
	assert.Contains(t, out, "Lucía")
	assert.Contains(t, out, "Unassigned")
	assert.Contains(t, out, "Quique")
	assert.NotContains(t, out, "Rosa", "cancelled appointments are only counted")
	assert.Contains(t, out, "6 appointments")
	assert.Contains(t, out, "Cancelled: 1")
}

func TestList_StaffFilter(t *testing.T) {
	h := newHarness(t, true)

	out, err := h.run("list", "--staff", "bruno")
	require.NoError(t, err)
	assert.Contains(t, out, "Nadia")
	assert.Contains(t, out, "Omar")
	assert.NotContains(t, out, "Lucía")

	_, err = h.run("list", "--staff", "Nobody")
	assert.ErrorIs(t, err, appointment.ErrStaffNotFound)
}

func TestList_OtherDayIsEmpty(t *testing.T) {
	h := newHarness(t, true)

	out, err := h.run("list", "--date", "tomorrow")
	require.NoError(t, err)
	assert.Contains(t, out, "Sat 15 Mar 2025")
	assert.Contains(t, out, "(free all day)")
	assert.Contains(t, out, "0 appointments")
}

func TestList_InvalidDate(t *testing.T) {
	h := newHarness(t, true)

	_, err := h.run("list", "--date", "14/03/2025")
	assert.Error(t, err)
}

func TestList_Range(t *testing.T) {
	h := newHarness(t, true)

	out, err := h.run("list", "--date", "2025-03-14", "--to", "tomorrow")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Fri 14 Mar 2025 ===")
	assert.Contains(t, out, "=== Sat 15 Mar 2025 ===")
	assert.Contains(t, out, "(free all day)")
	assert.Contains(t, out, "6 appointments")
	assert.Contains(t, out, "Cancelled: 1")

	_, err = h.run("list", "--date", "2025-03-14", "--to", "2025-03-13")
	assert.ErrorIs(t, err, dateutil.ErrEndDateBeforeStart)

	_, err = h.run("list", "--date", "2025-03-01", "--to", "2025-06-01")
	assert.ErrorIs(t, err, dateutil.ErrRangeTooLong)
}

func TestStaff(t *testing.T) {
	h := newHarness(t, true)

	out, err := h.run("staff")
	require.NoError(t, err)
	assert.Contains(t, out, "Alma")
	assert.Contains(t, out, "Bruno")
	assert.Contains(t, out, "Carmen")
	assert.Contains(t, out, h.staffID("Carmen"))

	empty := newHarness(t, false)
	out, err = empty.run("staff")
	require.NoError(t, err)
	assert.Contains(t, out, "No staff members yet")
}

func TestMove(t *testing.T) {
	h := newHarness(t, true)
	id := h.appointmentID("Lucía")

	out, err := h.run("move", id, "--staff", "Carmen", "--time", "09:07")
	require.NoError(t, err)
	assert.Contains(t, out, "09:07 snapped to 09:00")
	assert.Contains(t, out, "Moved Lucía to 09:00 with Carmen")

	got, err := h.store.GetAppointment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, h.staffID("Carmen"), got.StaffID)
	assert.Equal(t, "09:00", appointment.CanonicalTime(got.StartTime))
}

func TestMove_ToUnassigned(t *testing.T) {
	h := newHarness(t, true)
	id := h.appointmentID("Omar")

	out, err := h.run("move", id, "--staff", "unassigned")
	require.NoError(t, err)
	assert.Contains(t, out, "unassigned")

	got, err := h.store.GetAppointment(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, got.IsAssigned())
	assert.Equal(t, "13:00", appointment.CanonicalTime(got.StartTime))
}

func TestMove_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{
			name:    "overlap",
			args:    []string{"--time", "10:30"},
			message: "overlaps Marco at 10:00",
		},
		{
			name:    "runs past midnight",
			args:    []string{"--time", "23:45"},
			message: "move rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, true)
			id := h.appointmentID("Lucía")

			_, err := h.run(append([]string{"move", id}, tt.args...)...)
			require.ErrorIs(t, err, ErrMoveRejected)
			assert.Contains(t, err.Error(), tt.message)

			got, err := h.store.GetAppointment(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, "09:00", appointment.CanonicalTime(got.StartTime), "store must be untouched")
		})
	}
}

func TestMove_TimeClampedToBusinessHours(t *testing.T) {
	h := newHarness(t, true)
	id := h.appointmentID("Lucía")

	out, err := h.run("move", id, "--time", "23:53")
	require.ErrorIs(t, err, ErrMoveRejected)
	assert.Contains(t, out, "23:53 snapped to 23:45")
	assert.NotContains(t, out, "23:59")

	out, err = h.run("move", id, "--time", "07:00")
	require.NoError(t, err)
	assert.Contains(t, out, "07:00 snapped to 08:00")

	got, err := h.store.GetAppointment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "08:00", appointment.CanonicalTime(got.StartTime))
}

func TestMove_NoChange(t *testing.T) {
	h := newHarness(t, true)

	out, err := h.run("move", h.appointmentID("Lucía"), "--time", "09:00")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to do")
}

func TestMove_Errors(t *testing.T) {
	h := newHarness(t, true)

	_, err := h.run("move", h.appointmentID("Lucía"))
	assert.Error(t, err, "needs --time or --staff")

	_, err = h.run("move", "missing-id", "--time", "10:00")
	assert.ErrorIs(t, err, appointment.ErrNotFound)

	_, err = h.run("move", h.appointmentID("Lucía"), "--time", "9am")
	assert.ErrorIs(t, err, appointment.ErrInvalidTimeFormat)
}

func TestStatus(t *testing.T) {
	h := newHarness(t, true)
	id := h.appointmentID("Lucía")

	out, err := h.run("status", id, "in_progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Lucía 09:00 is now in_progress")

	_, err = h.run("status", id, "cancelled")
	assert.ErrorIs(t, err, appointment.ErrStatusTransition)

	_, err = h.run("status", id, "done")
	assert.ErrorIs(t, err, appointment.ErrInvalidStatus)
}

func TestSeed(t *testing.T) {
	h := newHarness(t, false)

	out, err := h.run("seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Created 3 staff members, 3 services and 7 appointments on 2025-03-14")

	_, err = h.run("seed")
	assert.ErrorIs(t, err, ErrAlreadySeeded)
}

func TestVersion(t *testing.T) {
	h := newHarness(t, false)

	out, err := h.run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "salonboard dev")
}

func TestConfigShow(t *testing.T) {
	h := newHarness(t, false)

	out, err := h.run("config", "--show")
	require.NoError(t, err)
	assert.Contains(t, out, "[grid]")
	assert.Contains(t, out, "day_start            = 08:00")
	assert.Contains(t, out, "pending_timeout      = 30s")
	assert.Contains(t, out, h.cfg.Storage.DBPath)
}

func TestBoard_RequiresTerminal(t *testing.T) {
	if isInteractive() {
		t.Skip("running in a terminal")
	}
	h := newHarness(t, true)

	_, err := h.run()
	assert.ErrorIs(t, err, ErrNotInteractive)
}

func TestResolveStaff(t *testing.T) {
	roster := []appointment.StaffMember{
		{ID: "s1", Name: "Alma"},
		{ID: "s2", Name: "Bruno"},
		{ID: "s3", Name: "bruno"},
	}

	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{ref: "s1", want: "s1"},
		{ref: "alma", want: "s1"},
		{ref: " Alma ", want: "s1"},
		{ref: "unassigned", want: appointment.Unassigned},
		{ref: "Bruno", wantErr: true},
		{ref: "Carmen", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := resolveStaff(roster, tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "postgres://salon:xxxxx@db:5432/board", redactURL("postgres://salon:secret@db:5432/board"))
	assert.Equal(t, "postgres://db/board", redactURL("postgres://db/board"))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h"},
		{90, "1h30m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.minutes))
	}
}
