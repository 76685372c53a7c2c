package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/javiermolinar/salonboard/internal/appointment"
	"github.com/javiermolinar/salonboard/internal/config"
	"github.com/javiermolinar/salonboard/internal/db"
	"github.com/javiermolinar/salonboard/internal/grid"
)

// TestDayBoundaryAcrossZones books appointments at local midnight in zones
// far from UTC and checks they are listed and laid out on the same day.
func TestDayBoundaryAcrossZones(t *testing.T) {
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("UTC+14", 14*3600),
		time.FixedZone("UTC-11", -11*3600),
	}

	for _, loc := range zones {
		t.Run(loc.String(), func(t *testing.T) {
			store, err := db.New(filepath.Join(t.TempDir(), "test.db"))
			if err != nil {
				t.Fatalf("failed to open store: %v", err)
			}
			defer func() { _ = store.Close() }()
			ctx := context.Background()

			date := time.Date(2025, 3, 14, 0, 0, 0, 0, loc)
			staff := &appointment.StaffMember{Name: "Alma", DisplayColor: "#f38ba8"}
			if err := store.CreateStaff(ctx, staff); err != nil {
				t.Fatalf("CreateStaff failed: %v", err)
			}
			apt, err := appointment.New("Lucía", staff.ID, date, "10:00", 60)
			if err != nil {
				t.Fatalf("failed to build appointment: %v", err)
			}
			if err := store.CreateAppointment(ctx, apt); err != nil {
				t.Fatalf("CreateAppointment failed: %v", err)
			}

			listed, err := store.ListAppointments(ctx, date)
			if err != nil {
				t.Fatalf("ListAppointments failed: %v", err)
			}
			if len(listed) != 1 {
				t.Fatalf("expected 1 appointment on %s, got %d", date.Format("2006-01-02"), len(listed))
			}
			if !listed[0].SameDay(date) {
				t.Errorf("listed date %v is not %v", listed[0].Date, date)
			}

			next, err := store.ListAppointments(ctx, date.AddDate(0, 0, 1))
			if err != nil {
				t.Fatalf("ListAppointments failed: %v", err)
			}
			if len(next) != 0 {
				t.Errorf("appointment leaked into the next day")
			}

			layout := grid.BuildLayout(listed, []appointment.StaffMember{*staff},
				grid.GeometryFromConfig(config.Default().Grid),
				grid.LayoutOptions{Date: date, DefaultDuration: 60})
			if layout.Count() != 1 {
				t.Errorf("expected the appointment on the grid, got %d blocks", layout.Count())
			}
		})
	}
}
