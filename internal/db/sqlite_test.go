package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/javiermolinar/salonboard/internal/appointment"
)

var testDate = time.Date(2026, 3, 4, 0, 0, 0, 0, time.Local)

func TestCreateAppointment(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	staff := createStaff(t, repo, "Alma")
	svc := &appointment.Service{Name: "Colour", DurationMin: 90}
	if err := repo.CreateService(ctx, svc); err != nil {
		t.Fatalf("CreateService failed: %v", err)
	}

	a := &appointment.Appointment{
		ClientName: "Lucía",
		StaffID:    staff.ID,
		ServiceID:  svc.ID,
		Date:       testDate,
		StartTime:  "09:00",
	}
	if err := repo.CreateAppointment(ctx, a); err != nil {
		t.Fatalf("CreateAppointment failed: %v", err)
	}

	if _, err := uuid.Parse(a.ID); err != nil {
		t.Errorf("expected a uuid id, got %q", a.ID)
	}
	if a.Status != appointment.StatusRequested {
		t.Errorf("expected default status requested, got %s", a.Status)
	}

	got, err := repo.GetAppointment(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAppointment failed: %v", err)
	}
	if got.StartTime != "09:00:00" {
		t.Errorf("expected seconds-inclusive start time, got %q", got.StartTime)
	}
	if got.DurationMin != 90 || got.ServiceName != "Colour" {
		t.Errorf("expected service duration and name, got %d %q", got.DurationMin, got.ServiceName)
	}
	if got.StaffID != staff.ID {
		t.Errorf("expected staff %s, got %s", staff.ID, got.StaffID)
	}
	if !got.SameDay(testDate) {
		t.Errorf("expected date %v, got %v", testDate, got.Date)
	}
}

func TestCreateAppointment_Validation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name string
		apt  *appointment.Appointment
		want error
	}{
		{"empty client", &appointment.Appointment{StartTime: "09:00", Date: testDate}, appointment.ErrEmptyClient},
		{"bad time", &appointment.Appointment{ClientName: "x", StartTime: "9am", Date: testDate}, appointment.ErrInvalidTimeFormat},
		{"unknown staff", &appointment.Appointment{ClientName: "x", StaffID: "ghost", StartTime: "09:00", Date: testDate}, appointment.ErrStaffNotFound},
		{"bad status", &appointment.Appointment{ClientName: "x", StartTime: "09:00", Date: testDate, Status: "done"}, appointment.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.CreateAppointment(ctx, tt.apt)
			if !errors.Is(err, tt.want) {
				t.Errorf("got error %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateAppointment_Overlap(t *testing.T) {
	repo := newTestRepo(t)
	staff := createStaff(t, repo, "Alma")
	createAppointment(t, repo, staff.ID, "10:00", 60)

	err := repo.CreateAppointment(context.Background(), &appointment.Appointment{
		ClientName: "late", StaffID: staff.ID, Date: testDate, StartTime: "10:30", DurationMin: 30,
	})
	if !errors.Is(err, appointment.ErrOverlap) {
		t.Errorf("got error %v, want %v", err, appointment.ErrOverlap)
	}

	// unassigned appointments never collide
	err = repo.CreateAppointment(context.Background(), &appointment.Appointment{
		ClientName: "walk-in", Date: testDate, StartTime: "10:30", DurationMin: 30,
	})
	if err != nil {
		t.Errorf("unexpected error for unassigned appointment: %v", err)
	}
}

func TestListAppointments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	staff := createStaff(t, repo, "Alma")

	late := createAppointment(t, repo, staff.ID, "15:00", 30)
	early := createAppointment(t, repo, staff.ID, "09:00", 30)
	cancelled := createAppointment(t, repo, staff.ID, "12:00", 30)
	if _, err := repo.SetStatus(ctx, cancelled.ID, appointment.StatusCancelled); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	other := &appointment.Appointment{ClientName: "tomorrow", StaffID: staff.ID, Date: testDate.AddDate(0, 0, 1), StartTime: "09:00"}
	if err := repo.CreateAppointment(ctx, other); err != nil {
		t.Fatalf("CreateAppointment failed: %v", err)
	}

	apts, err := repo.ListAppointments(ctx, testDate)
	if err != nil {
		t.Fatalf("ListAppointments failed: %v", err)
	}
	if len(apts) != 3 {
		t.Fatalf("expected 3 appointments including the cancelled one, got %d", len(apts))
	}
	if apts[0].ID != early.ID || apts[2].ID != late.ID {
		t.Errorf("expected appointments ordered by start time")
	}
	if apts[1].Status != appointment.StatusCancelled {
		t.Errorf("expected cancelled appointment to be listed, got %s", apts[1].Status)
	}
}

func TestGetAppointment_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetAppointment(context.Background(), "missing")
	if !errors.Is(err, appointment.ErrNotFound) {
		t.Errorf("got error %v, want %v", err, appointment.ErrNotFound)
	}
}

func TestUpdateAppointment(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alma := createStaff(t, repo, "Alma")
	bruno := createStaff(t, repo, "Bruno")

	blocker := createAppointment(t, repo, alma.ID, "09:00", 60)
	moving := createAppointment(t, repo, alma.ID, "11:00", 30)
	busy := createAppointment(t, repo, bruno.ID, "14:00", 60)

	t.Run("move to touching slot", func(t *testing.T) {
		start := "10:00"
		got, err := repo.UpdateAppointment(ctx, moving.ID, appointment.Patch{StartTime: &start})
		if err != nil {
			t.Fatalf("UpdateAppointment failed: %v", err)
		}
		if got.StartTime != "10:00:00" {
			t.Errorf("expected 10:00:00, got %s", got.StartTime)
		}
		if got.UpdatedAt.Before(got.CreatedAt) {
			t.Errorf("expected updated_at to advance")
		}
	})

	t.Run("overlap is rejected", func(t *testing.T) {
		start := "09:30"
		_, err := repo.UpdateAppointment(ctx, moving.ID, appointment.Patch{StartTime: &start})
		if !errors.Is(err, appointment.ErrOverlap) {
			t.Fatalf("got error %v, want %v", err, appointment.ErrOverlap)
		}
		got, _ := repo.GetAppointment(ctx, moving.ID)
		if got.StartTime != "10:00:00" {
			t.Errorf("rejected update must not change the record, got %s", got.StartTime)
		}
	})

	t.Run("reassignment checks the target staff", func(t *testing.T) {
		staffID, start := bruno.ID, "14:00"
		_, err := repo.UpdateAppointment(ctx, moving.ID, appointment.Patch{StaffID: &staffID, StartTime: &start})
		if !errors.Is(err, appointment.ErrOverlap) {
			t.Fatalf("got error %v, want %v", err, appointment.ErrOverlap)
		}

		start = "15:00"
		got, err := repo.UpdateAppointment(ctx, moving.ID, appointment.Patch{StaffID: &staffID, StartTime: &start})
		if err != nil {
			t.Fatalf("UpdateAppointment failed: %v", err)
		}
		if got.StaffID != bruno.ID {
			t.Errorf("expected staff %s, got %s", bruno.ID, got.StaffID)
		}
	})

	t.Run("unassign", func(t *testing.T) {
		none := appointment.Unassigned
		got, err := repo.UpdateAppointment(ctx, busy.ID, appointment.Patch{StaffID: &none})
		if err != nil {
			t.Fatalf("UpdateAppointment failed: %v", err)
		}
		if got.IsAssigned() {
			t.Errorf("expected appointment to be unassigned, got %q", got.StaffID)
		}
	})

	t.Run("unknown staff", func(t *testing.T) {
		ghost := "ghost"
		_, err := repo.UpdateAppointment(ctx, moving.ID, appointment.Patch{StaffID: &ghost})
		if !errors.Is(err, appointment.ErrStaffNotFound) {
			t.Errorf("got error %v, want %v", err, appointment.ErrStaffNotFound)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		start := "12:00"
		_, err := repo.UpdateAppointment(ctx, "missing", appointment.Patch{StartTime: &start})
		if !errors.Is(err, appointment.ErrNotFound) {
			t.Errorf("got error %v, want %v", err, appointment.ErrNotFound)
		}
	})

	t.Run("move to another day", func(t *testing.T) {
		next := testDate.AddDate(0, 0, 1)
		got, err := repo.UpdateAppointment(ctx, blocker.ID, appointment.Patch{Date: &next})
		if err != nil {
			t.Fatalf("UpdateAppointment failed: %v", err)
		}
		if !got.SameDay(next) {
			t.Errorf("expected date %v, got %v", next, got.Date)
		}
	})
}

func TestUpdateAppointment_CancelledDoesNotBlock(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	staff := createStaff(t, repo, "Alma")

	old := createAppointment(t, repo, staff.ID, "10:00", 60)
	if _, err := repo.SetStatus(ctx, old.ID, appointment.StatusCancelled); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	moving := createAppointment(t, repo, staff.ID, "13:00", 60)

	start := "10:00"
	if _, err := repo.UpdateAppointment(ctx, moving.ID, appointment.Patch{StartTime: &start}); err != nil {
		t.Errorf("cancelled appointments must not block: %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := createAppointment(t, repo, "", "10:00", 30)

	for _, st := range []appointment.Status{
		appointment.StatusAccepted,
		appointment.StatusConfirmed,
		appointment.StatusInProgress,
		appointment.StatusCompleted,
	} {
		got, err := repo.SetStatus(ctx, a.ID, st)
		if err != nil {
			t.Fatalf("SetStatus(%s) failed: %v", st, err)
		}
		if got.Status != st {
			t.Errorf("expected %s, got %s", st, got.Status)
		}
	}

	if _, err := repo.SetStatus(ctx, a.ID, appointment.StatusCancelled); !errors.Is(err, appointment.ErrStatusTransition) {
		t.Errorf("got error %v, want %v", err, appointment.ErrStatusTransition)
	}
	if _, err := repo.SetStatus(ctx, a.ID, "bogus"); !errors.Is(err, appointment.ErrInvalidStatus) {
		t.Errorf("got error %v, want %v", err, appointment.ErrInvalidStatus)
	}
	if _, err := repo.SetStatus(ctx, "missing", appointment.StatusAccepted); !errors.Is(err, appointment.ErrNotFound) {
		t.Errorf("got error %v, want %v", err, appointment.ErrNotFound)
	}
}

func TestListStaff_Order(t *testing.T) {
	repo := newTestRepo(t)
	createStaff(t, repo, "Zoe")
	createStaff(t, repo, "Alma")

	staff, err := repo.ListStaff(context.Background())
	if err != nil {
		t.Fatalf("ListStaff failed: %v", err)
	}
	if len(staff) != 2 || staff[0].Name != "Zoe" || staff[1].Name != "Alma" {
		t.Errorf("expected insertion order, got %+v", staff)
	}
}

func TestSeed(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	res, err := Seed(ctx, repo, testDate)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	staff, _ := repo.ListStaff(ctx)
	if len(staff) != len(res.Staff) {
		t.Errorf("expected %d staff, got %d", len(res.Staff), len(staff))
	}
	apts, _ := repo.ListAppointments(ctx, testDate)
	if len(apts) != len(res.Appointments) {
		t.Errorf("expected %d appointments, got %d", len(res.Appointments), len(apts))
	}

	var unassigned, cancelled int
	for _, a := range apts {
		if !a.IsAssigned() {
			unassigned++
		}
		if a.IsCancelled() {
			cancelled++
		}
		if a.DurationMin == 0 {
			t.Errorf("seeded appointment %s has no duration", a.ClientName)
		}
	}
	if unassigned != 1 || cancelled != 1 {
		t.Errorf("expected one unassigned and one cancelled appointment, got %d and %d", unassigned, cancelled)
	}
}

func newTestRepo(t *testing.T) *SQLite {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}

func createStaff(t *testing.T, repo *SQLite, name string) *appointment.StaffMember {
	t.Helper()
	m := &appointment.StaffMember{Name: name, DisplayColor: "#ffffff"}
	if err := repo.CreateStaff(context.Background(), m); err != nil {
		t.Fatalf("CreateStaff failed: %v", err)
	}
	return m
}

func createAppointment(t *testing.T, repo *SQLite, staffID, start string, duration int) *appointment.Appointment {
	t.Helper()
	a := &appointment.Appointment{
		ClientName:  "client " + start,
		StaffID:     staffID,
		Date:        testDate,
		StartTime:   start,
		DurationMin: duration,
	}
	if err := repo.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("CreateAppointment failed: %v", err)
	}
	return a
}
