// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/salonboard/internal/appointment"
)

// SQLite implements appointment.Store using SQLite.
type SQLite struct {
	db              *sql.DB
	defaultDuration int
}

// Option configures a SQLite store.
type Option func(*SQLite)

// WithDefaultDuration sets the duration used for appointments without a
// service when checking overlaps.
func WithDefaultDuration(minutes int) Option {
	return func(s *SQLite) {
		if minutes > 0 {
			s.defaultDuration = minutes
		}
	}
}

// New creates a new SQLite store and runs migrations.
func New(path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// one connection so the pragma holds for every query
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLite{db: db, defaultDuration: appointment.DefaultDurationMin}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

const selectAppointment = `
	SELECT a.id, a.staff_id, a.client_name, a.service_id, COALESCE(sv.name, ''),
	       COALESCE(sv.duration_min, a.duration_min, 0),
	       a.appointment_date, a.start_time, a.status, a.created_at, a.updated_at
	FROM appointments a
	LEFT JOIN services sv ON sv.id = a.service_id
`

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row scanner) (*appointment.Appointment, error) {
	var (
		a         appointment.Appointment
		staffID   sql.NullString
		serviceID sql.NullString
		date      string
		status    string
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&a.ID,
		&staffID,
		&a.ClientName,
		&serviceID,
		&a.ServiceName,
		&a.DurationMin,
		&date,
		&a.StartTime,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.StaffID = staffID.String
	a.ServiceID = serviceID.String
	a.Status = appointment.Status(status)

	a.Date, err = parseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parsing appointment date: %w", err)
	}
	a.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}
	a.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated at: %w", err)
	}
	return &a, nil
}

// ListAppointments returns every appointment on date, including cancelled
// ones, ordered by start time.
func (s *SQLite) ListAppointments(ctx context.Context, date time.Time) ([]*appointment.Appointment, error) {
	query := selectAppointment + `
		WHERE a.appointment_date = ?
		ORDER BY a.start_time, a.id
	`

	rows, err := s.db.QueryContext(ctx, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("querying appointments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var apts []*appointment.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}
		apts = append(apts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating appointments: %w", err)
	}

	return apts, nil
}

// GetAppointment retrieves an appointment by ID.
func (s *SQLite) GetAppointment(ctx context.Context, id string) (*appointment.Appointment, error) {
	return getAppointment(ctx, s.db, id)
}

func getAppointment(ctx context.Context, q querier, id string) (*appointment.Appointment, error) {
	a, err := scanAppointment(q.QueryRowContext(ctx, selectAppointment+` WHERE a.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", appointment.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying appointment: %w", err)
	}
	return a, nil
}

// CreateAppointment inserts a new appointment. An empty ID is replaced with a
// random UUID. Returns appointment.ErrOverlap if the staff member is booked.
func (s *SQLite) CreateAppointment(ctx context.Context, a *appointment.Appointment) error {
	if strings.TrimSpace(a.ClientName) == "" {
		return appointment.ErrEmptyClient
	}
	start, err := appointment.WithSeconds(a.StartTime)
	if err != nil {
		return err
	}
	if a.Status == "" {
		a.Status = appointment.StatusRequested
	}
	if !a.Status.Valid() {
		return fmt.Errorf("%w: %s", appointment.ErrInvalidStatus, a.Status)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureStaff(ctx, tx, a.StaffID); err != nil {
		return err
	}

	if a.ServiceID != "" {
		if err := tx.QueryRowContext(ctx, `SELECT name, duration_min FROM services WHERE id = ?`, a.ServiceID).Scan(&a.ServiceName, &a.DurationMin); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("service %s not found", a.ServiceID)
			}
			return fmt.Errorf("querying service: %w", err)
		}
	}

	if !a.IsCancelled() {
		if err := s.checkOverlapExcluding(ctx, tx, a.StaffID, a.Date, appointment.TimeToMinutes(start), a.Duration(s.defaultDuration), a.ID); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO appointments (
			id, staff_id, client_name, service_id, duration_min,
			appointment_date, start_time, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		a.ID,
		nullable(a.StaffID),
		a.ClientName,
		nullable(a.ServiceID),
		nullableInt(a.DurationMin),
		a.Date.Format("2006-01-02"),
		start,
		string(a.Status),
		a.CreatedAt.UTC().Format(time.RFC3339),
		a.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	a.StartTime = appointment.CanonicalTime(start)
	return nil
}

// UpdateAppointment applies a partial update and returns the persisted record.
// The non-overlap invariant is enforced for the resulting staff and date.
func (s *SQLite) UpdateAppointment(ctx context.Context, id string, patch appointment.Patch) (*appointment.Appointment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getAppointment(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	next := patch.ApplyTo(current)
	start, err := appointment.WithSeconds(next.StartTime)
	if err != nil {
		return nil, err
	}
	if err := ensureStaff(ctx, tx, next.StaffID); err != nil {
		return nil, err
	}

	if !next.IsCancelled() {
		if err := s.checkOverlapExcluding(ctx, tx, next.StaffID, next.Date, appointment.TimeToMinutes(start), next.Duration(s.defaultDuration), id); err != nil {
			return nil, err
		}
	}

	query := `
		UPDATE appointments
		SET staff_id = ?, appointment_date = ?, start_time = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = tx.ExecContext(ctx, query,
		nullable(next.StaffID),
		next.Date.Format("2006-01-02"),
		start,
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating appointment: %w", err)
	}

	updated, err := getAppointment(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return updated, nil
}

// SetStatus moves an appointment to a new lifecycle status.
func (s *SQLite) SetStatus(ctx context.Context, id string, status appointment.Status) (*appointment.Appointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %s", appointment.ErrInvalidStatus, status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getAppointment(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !appointment.CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", appointment.ErrStatusTransition, current.Status, status)
	}

	query := `UPDATE appointments SET status = ?, updated_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, string(status), time.Now().UTC().Format(time.RFC3339), id); err != nil {
		return nil, fmt.Errorf("setting appointment status: %w", err)
	}

	updated, err := getAppointment(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return updated, nil
}

// ListStaff returns the roster in display order.
func (s *SQLite) ListStaff(ctx context.Context) ([]appointment.StaffMember, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, display_color FROM staff ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("querying staff: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var staff []appointment.StaffMember
	for rows.Next() {
		var m appointment.StaffMember
		if err := rows.Scan(&m.ID, &m.Name, &m.DisplayColor); err != nil {
			return nil, fmt.Errorf("scanning staff: %w", err)
		}
		staff = append(staff, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating staff: %w", err)
	}

	return staff, nil
}

// CreateStaff appends a staff member to the roster.
func (s *SQLite) CreateStaff(ctx context.Context, m *appointment.StaffMember) error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("staff name cannot be empty")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	query := `
		INSERT INTO staff (id, name, display_color, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM staff))
	`
	if _, err := s.db.ExecContext(ctx, query, m.ID, m.Name, m.DisplayColor); err != nil {
		return fmt.Errorf("inserting staff: %w", err)
	}
	return nil
}

// CreateService adds a bookable service.
func (s *SQLite) CreateService(ctx context.Context, sv *appointment.Service) error {
	if sv.DurationMin <= 0 {
		return appointment.ErrInvalidDuration
	}
	if sv.ID == "" {
		sv.ID = uuid.NewString()
	}

	query := `INSERT INTO services (id, name, duration_min) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, sv.ID, sv.Name, sv.DurationMin); err != nil {
		return fmt.Errorf("inserting service: %w", err)
	}
	return nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ensureStaff returns appointment.ErrStaffNotFound for unknown staff ids.
func ensureStaff(ctx context.Context, q querier, staffID string) error {
	if staffID == appointment.Unassigned {
		return nil
	}
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM staff WHERE id = ?`, staffID).Scan(&n); err != nil {
		return fmt.Errorf("querying staff: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", appointment.ErrStaffNotFound, staffID)
	}
	return nil
}

// checkOverlapExcluding checks for overlaps with the staff member's other
// non-cancelled appointments on date. Unassigned appointments never overlap.
// Two time ranges overlap if: start1 < end2 AND start2 < end1
func (s *SQLite) checkOverlapExcluding(ctx context.Context, q querier, staffID string, date time.Time, start, duration int, excludeID string) error {
	if staffID == appointment.Unassigned {
		return nil
	}

	query := selectAppointment + `
		WHERE a.staff_id = ?
		  AND a.appointment_date = ?
		  AND a.status != ?
		  AND a.id != ?
	`
	rows, err := q.QueryContext(ctx, query, staffID, date.Format("2006-01-02"), string(appointment.StatusCancelled), excludeID)
	if err != nil {
		return fmt.Errorf("checking overlap: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		other, err := scanAppointment(rows)
		if err != nil {
			return fmt.Errorf("scanning appointment: %w", err)
		}
		s2 := other.StartMinutes()
		if appointment.IntervalsOverlap(start, start+duration, s2, s2+other.Duration(s.defaultDuration)) {
			return fmt.Errorf("%w: conflicts with %s %q (%s)",
				appointment.ErrOverlap, other.ID, other.ClientName, appointment.CanonicalTime(other.StartTime))
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("checking overlap: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n > 0}
}

// parseDate parses a date string in various formats SQLite might return.
// Date-only values (midnight) are parsed in local timezone to match time.Now() behavior.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}

	// SQLite returns DATE columns as "2006-01-02T00:00:00Z"; treat as local midnight
	if len(s) == 20 && s[10] == 'T' && s[19] == 'Z' {
		if t, err := time.ParseInLocation("2006-01-02", s[:10], time.Local); err == nil {
			return t, nil
		}
	}

	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}
