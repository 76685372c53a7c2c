// Package postgres provides a PostgreSQL implementation of appointment.Store
// for shops that keep their bookings in a hosted database.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/javiermolinar/salonboard/internal/appointment"
)

// Store implements appointment.Store on a pgx connection pool.
type Store struct {
	pool            *pgxpool.Pool
	defaultDuration int
}

// Open connects to databaseURL, verifies the connection and runs migrations.
func Open(ctx context.Context, databaseURL string, defaultDuration int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if defaultDuration <= 0 {
		defaultDuration = appointment.DefaultDurationMin
	}
	s := &Store{pool: pool, defaultDuration: defaultDuration}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

const selectAppointment = `
	SELECT a.id, COALESCE(a.staff_id, ''), a.client_name, COALESCE(a.service_id, ''),
		COALESCE(sv.name, ''), COALESCE(sv.duration_min, a.duration_min, 0),
		a.appointment_date, to_char(a.start_time, 'HH24:MI:SS'), a.status,
		a.created_at, a.updated_at
	FROM appointments a
	LEFT JOIN services sv ON sv.id = a.service_id
`

func scanAppointment(row pgx.Row) (*appointment.Appointment, error) {
	var (
		a      appointment.Appointment
		status string
	)
	err := row.Scan(
		&a.ID,
		&a.StaffID,
		&a.ClientName,
		&a.ServiceID,
		&a.ServiceName,
		&a.DurationMin,
		&a.Date,
		&a.StartTime,
		&status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = appointment.Status(status)
	return &a, nil
}

// ListAppointments returns every appointment on date, including cancelled ones.
func (s *Store) ListAppointments(ctx context.Context, date time.Time) ([]*appointment.Appointment, error) {
	rows, err := s.pool.Query(ctx, selectAppointment+`
		WHERE a.appointment_date = $1
		ORDER BY a.start_time, a.id
	`, dateOnly(date))
	if err != nil {
		return nil, fmt.Errorf("querying appointments: %w", err)
	}
	defer rows.Close()

	var apts []*appointment.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}
		apts = append(apts, a)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating appointments: %w", rows.Err())
	}
	return apts, nil
}

// GetAppointment retrieves an appointment by ID.
func (s *Store) GetAppointment(ctx context.Context, id string) (*appointment.Appointment, error) {
	return getAppointment(ctx, s.pool, id, false)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getAppointment(ctx context.Context, q queryRower, id string, forUpdate bool) (*appointment.Appointment, error) {
	query := selectAppointment + ` WHERE a.id = $1`
	if forUpdate {
		query += ` FOR UPDATE OF a`
	}
	a, err := scanAppointment(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", appointment.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying appointment: %w", err)
	}
	return a, nil
}

// CreateAppointment inserts a new appointment, assigning a UUID when ID is empty.
func (s *Store) CreateAppointment(ctx context.Context, a *appointment.Appointment) error {
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockStaff(ctx, tx, a.StaffID); err != nil {
		return err
	}
	if a.ServiceID != "" {
		err := tx.QueryRow(ctx, `SELECT name, duration_min FROM services WHERE id = $1`, a.ServiceID).
			Scan(&a.ServiceName, &a.DurationMin)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("service %s not found", a.ServiceID)
		}
		if err != nil {
			return fmt.Errorf("querying service: %w", err)
		}
	}
	if !a.IsCancelled() {
		if err := s.checkOverlap(ctx, tx, a.StaffID, a.Date, appointment.TimeToMinutes(start), a.Duration(s.defaultDuration), a.ID); err != nil {
			return err
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO appointments
			(id, staff_id, client_name, service_id, duration_min, appointment_date, start_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7::time, $8)
		RETURNING created_at, updated_at
	`, a.ID, nullable(a.StaffID), a.ClientName, nullable(a.ServiceID), nullableInt(a.DurationMin),
		dateOnly(a.Date), start, string(a.Status)).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting appointment: %w", mapError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	a.StartTime = appointment.CanonicalTime(start)
	return nil
}

// UpdateAppointment applies a partial update and returns the persisted record.
func (s *Store) UpdateAppointment(ctx context.Context, id string, patch appointment.Patch) (*appointment.Appointment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := getAppointment(ctx, tx, id, true)
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
	if err := lockStaff(ctx, tx, next.StaffID); err != nil {
		return nil, err
	}
	if !next.IsCancelled() {
		if err := s.checkOverlap(ctx, tx, next.StaffID, next.Date, appointment.TimeToMinutes(start), next.Duration(s.defaultDuration), id); err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE appointments
		SET staff_id = $2, appointment_date = $3, start_time = $4::time, updated_at = now()
		WHERE id = $1
	`, id, nullable(next.StaffID), dateOnly(next.Date), start)
	if err != nil {
		return nil, fmt.Errorf("updating appointment: %w", mapError(err))
	}

	updated, err := getAppointment(ctx, tx, id, false)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return updated, nil
}

// SetStatus moves an appointment to a new lifecycle status.
func (s *Store) SetStatus(ctx context.Context, id string, status appointment.Status) (*appointment.Appointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %s", appointment.ErrInvalidStatus, status)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := getAppointment(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	if !appointment.CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", appointment.ErrStatusTransition, current.Status, status)
	}

	if _, err := tx.Exec(ctx, `UPDATE appointments SET status = $2, updated_at = now() WHERE id = $1`, id, string(status)); err != nil {
		return nil, fmt.Errorf("setting appointment status: %w", err)
	}
	updated, err := getAppointment(ctx, tx, id, false)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return updated, nil
}

// ListStaff returns the roster in display order.
func (s *Store) ListStaff(ctx context.Context) ([]appointment.StaffMember, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, display_color FROM staff ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("querying staff: %w", err)
	}
	defer rows.Close()

	var out []appointment.StaffMember
	for rows.Next() {
		var m appointment.StaffMember
		if err := rows.Scan(&m.ID, &m.Name, &m.DisplayColor); err != nil {
			return nil, fmt.Errorf("scanning staff: %w", err)
		}
		out = append(out, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating staff: %w", rows.Err())
	}
	return out, nil
}

// CreateStaff appends a staff member to the roster.
func (s *Store) CreateStaff(ctx context.Context, m *appointment.StaffMember) error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("staff name cannot be empty")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO staff (id, name, display_color) VALUES ($1, $2, $3)`,
		m.ID, m.Name, m.DisplayColor)
	if err != nil {
		return fmt.Errorf("inserting staff: %w", err)
	}
	return nil
}

// CreateService adds a bookable service.
func (s *Store) CreateService(ctx context.Context, sv *appointment.Service) error {
	if sv.DurationMin <= 0 {
		return appointment.ErrInvalidDuration
	}
	if sv.ID == "" {
		sv.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO services (id, name, duration_min) VALUES ($1, $2, $3)`,
		sv.ID, sv.Name, sv.DurationMin)
	if err != nil {
		return fmt.Errorf("inserting service: %w", err)
	}
	return nil
}

// lockStaff verifies staffID exists and serialises concurrent bookings for it.
func lockStaff(ctx context.Context, tx pgx.Tx, staffID string) error {
	if staffID == appointment.Unassigned {
		return nil
	}
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM staff WHERE id = $1 FOR UPDATE`, staffID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", appointment.ErrStaffNotFound, staffID)
	}
	if err != nil {
		return fmt.Errorf("locking staff: %w", err)
	}
	return nil
}

// checkOverlap looks for another non-cancelled booking of staffID on date
// that intersects [start, start+duration).
func (s *Store) checkOverlap(ctx context.Context, tx pgx.Tx, staffID string, date time.Time, start, duration int, excludeID string) error {
	if staffID == appointment.Unassigned {
		return nil
	}
	var (
		id     string
		client string
		at     string
	)
	err := tx.QueryRow(ctx, `
		SELECT a.id, a.client_name, to_char(a.start_time, 'HH24:MI')
		FROM appointments a
		LEFT JOIN services sv ON sv.id = a.service_id
		WHERE a.staff_id = $1
			AND a.appointment_date = $2
			AND a.status <> 'cancelled'
			AND a.id <> $3
			AND (EXTRACT(EPOCH FROM a.start_time)::int / 60) < $5
			AND (EXTRACT(EPOCH FROM a.start_time)::int / 60) + COALESCE(sv.duration_min, a.duration_min, $6) > $4
		ORDER BY a.start_time
		LIMIT 1
	`, staffID, dateOnly(date), excludeID, start, start+duration, s.defaultDuration).Scan(&id, &client, &at)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking overlap: %w", err)
	}
	return fmt.Errorf("%w: conflicts with %s %q (%s)", appointment.ErrOverlap, id, client, at)
}

// mapError translates constraint violations into domain errors.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", appointment.ErrStaffNotFound, pgErr.Detail)
		case "23P01": // exclusion_violation
			return fmt.Errorf("%w: %s", appointment.ErrOverlap, pgErr.Detail)
		}
	}
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableInt(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// dateOnly strips the clock so DATE parameters do not shift across time zones.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
