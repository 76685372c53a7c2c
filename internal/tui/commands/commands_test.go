package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/salonboard/internal/appointment"
	"github.com/javiermolinar/salonboard/internal/grid"
)

type fakeStore struct {
	staff  []appointment.StaffMember
	apts   []*appointment.Appointment
	update func(id string, patch appointment.Patch) (*appointment.Appointment, error)
	status func(id string, s appointment.Status) (*appointment.Appointment, error)
	err    error
}

func (f *fakeStore) ListAppointments(ctx context.Context, date time.Time) ([]*appointment.Appointment, error) {
	return f.apts, f.err
}

func (f *fakeStore) GetAppointment(ctx context.Context, id string) (*appointment.Appointment, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStore) UpdateAppointment(ctx context.Context, id string, patch appointment.Patch) (*appointment.Appointment, error) {
	return f.update(id, patch)
}

func (f *fakeStore) CreateAppointment(ctx context.Context, a *appointment.Appointment) error {
	return errors.New("not implemented")
}

func (f *fakeStore) SetStatus(ctx context.Context, id string, s appointment.Status) (*appointment.Appointment, error) {
	return f.status(id, s)
}

func (f *fakeStore) ListStaff(ctx context.Context) ([]appointment.StaffMember, error) {
	return f.staff, nil
}

func (f *fakeStore) CreateStaff(ctx context.Context, s *appointment.StaffMember) error {
	return errors.New("not implemented")
}

func (f *fakeStore) CreateService(ctx context.Context, s *appointment.Service) error {
	return errors.New("not implemented")
}

func (f *fakeStore) Close() error {
	return nil
}

var day = time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local)

func TestLoadDay(t *testing.T) {
	store := &fakeStore{
		staff: []appointment.StaffMember{{ID: "s1", Name: "Ana"}},
		apts: []*appointment.Appointment{
			{ID: "a1", StaffID: "s1", ClientName: "Lucia", Date: day, StartTime: "09:00:00", DurationMin: 30},
		},
	}

	msg := LoadDay(store, day)()

	loaded, ok := msg.(DayLoadedMsg)
	require.True(t, ok, "msg type = %T, want DayLoadedMsg", msg)
	assert.Equal(t, day, loaded.Date)
	assert.Len(t, loaded.Staff, 1)
	require.Len(t, loaded.Appointments, 1)
	assert.Equal(t, "Lucia", loaded.Appointments[0].ClientName)
}

func TestLoadDay_Error(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}

	msg := LoadDay(store, day)()

	errMsg, ok := msg.(ErrMsg)
	require.True(t, ok, "msg type = %T, want ErrMsg", msg)
	assert.ErrorContains(t, errMsg.Err, "connection refused")
}

func TestCommit(t *testing.T) {
	start := "10:00"
	req := grid.CommitRequest{ID: "a1", Patch: appointment.Patch{StartTime: &start}, Generation: 3}

	t.Run("success carries record", func(t *testing.T) {
		store := &fakeStore{update: func(id string, patch appointment.Patch) (*appointment.Appointment, error) {
			return &appointment.Appointment{ID: id, StartTime: *patch.StartTime + ":00"}, nil
		}}

		res, ok := Commit(store, req)().(CommitResultMsg)
		require.True(t, ok)
		require.NoError(t, res.Err)
		assert.Equal(t, req, res.Request)
		assert.Equal(t, "10:00:00", res.Record.StartTime)
	})

	t.Run("failure keeps request for rollback", func(t *testing.T) {
		store := &fakeStore{update: func(string, appointment.Patch) (*appointment.Appointment, error) {
			return nil, appointment.ErrOverlap
		}}

		res, ok := Commit(store, req)().(CommitResultMsg)
		require.True(t, ok)
		assert.ErrorIs(t, res.Err, appointment.ErrOverlap)
		assert.Equal(t, uint64(3), res.Request.Generation)
		assert.Nil(t, res.Record)
	})
}

func TestSetStatus(t *testing.T) {
	store := &fakeStore{status: func(id string, s appointment.Status) (*appointment.Appointment, error) {
		if s == appointment.StatusCompleted {
			return nil, appointment.ErrStatusTransition
		}
		return &appointment.Appointment{ID: id, Status: s}, nil
	}}

	msg := SetStatus(store, "a1", appointment.StatusCancelled)()
	changed, ok := msg.(StatusChangedMsg)
	require.True(t, ok)
	assert.Equal(t, appointment.StatusCancelled, changed.Record.Status)

	msg = SetStatus(store, "a1", appointment.StatusCompleted)()
	errMsg, ok := msg.(ErrMsg)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, appointment.ErrStatusTransition)
}
