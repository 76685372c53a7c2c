package db

import (
	"context"
	"fmt"
	"time"

	"github.com/javiermolinar/salonboard/internal/appointment"
)

// SeedResult reports what Seed created.
type SeedResult struct {
	Staff        []appointment.StaffMember
	Services     []appointment.Service
	Appointments []*appointment.Appointment
}

// Seed fills an empty store with a demo roster, services and a day of
// appointments on date. It works against any appointment.Store.
func Seed(ctx context.Context, store appointment.Store, date time.Time) (*SeedResult, error) {
	res := &SeedResult{}

	staff := []appointment.StaffMember{
		{Name: "Alma", DisplayColor: "#f38ba8"},
		{Name: "Bruno", DisplayColor: "#89b4fa"},
		{Name: "Carmen", DisplayColor: "#a6e3a1"},
	}
	for i := range staff {
		if err := store.CreateStaff(ctx, &staff[i]); err != nil {
			return nil, fmt.Errorf("seeding staff %s: %w", staff[i].Name, err)
		}
	}
	res.Staff = staff

	services := []appointment.Service{
		{Name: "Haircut", DurationMin: 30},
		{Name: "Colour", DurationMin: 90},
		{Name: "Blow dry", DurationMin: 45},
	}
	for i := range services {
		if err := store.CreateService(ctx, &services[i]); err != nil {
			return nil, fmt.Errorf("seeding service %s: %w", services[i].Name, err)
		}
	}
	res.Services = services

	plan := []struct {
		client  string
		staff   int // index into staff, -1 for unassigned
		service int
		start   string
		status  appointment.Status
	}{
		{"Lucía", 0, 0, "09:00", appointment.StatusConfirmed},
		{"Marco", 0, 1, "10:00", appointment.StatusAccepted},
		{"Nadia", 1, 2, "09:30", appointment.StatusRequested},
		{"Omar", 1, 0, "13:00", appointment.StatusConfirmed},
		{"Paula", 2, 1, "11:15", appointment.StatusReadyToStart},
		{"Quique", -1, 0, "15:00", appointment.StatusRequested},
		{"Rosa", 2, 0, "16:00", appointment.StatusCancelled},
	}
	for _, p := range plan {
		a := &appointment.Appointment{
			ClientName: p.client,
			ServiceID:  services[p.service].ID,
			Date:       date,
			StartTime:  p.start,
			Status:     p.status,
		}
		if p.staff >= 0 {
			a.StaffID = staff[p.staff].ID
		}
		if err := store.CreateAppointment(ctx, a); err != nil {
			return nil, fmt.Errorf("seeding appointment for %s: %w", p.client, err)
		}
		res.Appointments = append(res.Appointments, a)
	}

	return res, nil
}
