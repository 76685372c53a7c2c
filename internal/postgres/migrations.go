package postgres

import (
	"context"
	"fmt"
)

const schema = `
	CREATE TABLE IF NOT EXISTS staff (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		display_color TEXT NOT NULL DEFAULT '',
		position      SERIAL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS services (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		duration_min INTEGER NOT NULL CHECK (duration_min > 0)
	);

	CREATE TABLE IF NOT EXISTS appointments (
		id               TEXT PRIMARY KEY,
		staff_id         TEXT REFERENCES staff(id),
		client_name      TEXT NOT NULL,
		service_id       TEXT REFERENCES services(id),
		duration_min     INTEGER,
		appointment_date DATE NOT NULL,
		start_time       TIME NOT NULL,
		status           TEXT NOT NULL DEFAULT 'requested' CHECK (status IN (
			'requested', 'accepted', 'confirmed', 'ready_to_start',
			'in_progress', 'completed', 'no_show', 'cancelled')),
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(appointment_date);
	CREATE INDEX IF NOT EXISTS idx_appointments_staff_date ON appointments(staff_id, appointment_date);
`

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}
