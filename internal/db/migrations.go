package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS staff (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			display_color TEXT NOT NULL DEFAULT '',
			position      INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS services (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			duration_min INTEGER NOT NULL CHECK(duration_min > 0)
		);

		CREATE TABLE IF NOT EXISTS appointments (
			id               TEXT PRIMARY KEY,
			staff_id         TEXT REFERENCES staff(id),
			client_name      TEXT NOT NULL,
			service_id       TEXT REFERENCES services(id),
			duration_min     INTEGER,
			appointment_date DATE NOT NULL,
			start_time       TEXT NOT NULL,
			status           TEXT NOT NULL DEFAULT 'requested' CHECK(status IN (
				'requested', 'accepted', 'confirmed', 'ready_to_start',
				'in_progress', 'completed', 'no_show', 'cancelled')),
			created_at       TEXT NOT NULL,
			updated_at       TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(appointment_date);
		CREATE INDEX IF NOT EXISTS idx_appointments_staff_date ON appointments(staff_id, appointment_date);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
