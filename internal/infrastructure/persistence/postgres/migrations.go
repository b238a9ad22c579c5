package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION SUPPORT
// Versioned, embedded SQL migrations tracked in schema_migrations.
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// Migrator handles database migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a new migrator with the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the tracking table if it doesn't exist.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INT PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, m.tableName)

	if _, err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("%w: create tracking table: %v", ErrMigrationFailed, err)
	}
	return nil
}

// appliedVersions returns the versions already applied, with timestamps.
func (m *Migrator) appliedVersions(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s", m.tableName)

	rows, err := m.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: read applied versions: %v", ErrMigrationFailed, err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var (
			version int
			at      time.Time
		)
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("%w: scan version: %v", ErrMigrationFailed, err)
		}
		applied[version] = at
	}
	return applied, rows.Err()
}

// Up applies all pending migrations in version order. Each migration runs
// in its own transaction together with its tracking row.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}

		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return err
			}
			insert := fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName)
			_, err := tx.Exec(ctx, insert, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: migration %d (%s): %v", ErrMigrationFailed, mig.Version, mig.Name, err)
		}
	}
	return nil
}

// Status returns every migration annotated with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Migration, len(m.migrations))
	copy(result, m.migrations)
	for i := range result {
		if at, ok := applied[result[i].Version]; ok {
			result[i].IsApplied = true
			result[i].AppliedAt = at
		}
	}
	return result, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_users",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_exam_requests",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_notifications_and_messages",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name TEXT NOT NULL,
	phone TEXT NOT NULL,
	role TEXT NOT NULL CHECK (role IN ('student', 'writer')),
	availability BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS locations (
	user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	latitude DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
	longitude DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
	address TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_users_role_availability
	ON users (role, availability);
CREATE INDEX IF NOT EXISTS idx_locations_lat_lon
	ON locations (latitude, longitude);
`

const migration001Down = `
DROP TABLE IF EXISTS locations;
DROP TABLE IF EXISTS users;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS exam_requests (
	id UUID PRIMARY KEY,
	student_id UUID NOT NULL REFERENCES users(id),
	writer_id UUID REFERENCES users(id),
	exam_name TEXT NOT NULL,
	exam_date TIMESTAMPTZ NOT NULL,
	duration_seconds BIGINT NOT NULL CHECK (duration_seconds > 0),
	subject TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending'
		CHECK (status IN ('pending', 'accepted', 'declined')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT chk_writer_bound_iff_accepted CHECK (
		(status = 'accepted' AND writer_id IS NOT NULL)
		OR (status <> 'accepted' AND writer_id IS NULL)
	)
);

CREATE INDEX IF NOT EXISTS idx_exam_requests_student
	ON exam_requests (student_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_exam_requests_writer
	ON exam_requests (writer_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_exam_requests_status
	ON exam_requests (status);
`

const migration002Down = `
DROP TABLE IF EXISTS exam_requests;
`

const migration003Up = `
CREATE TABLE IF NOT EXISTS notifications (
	id UUID PRIMARY KEY,
	recipient_id UUID NOT NULL REFERENCES users(id),
	type TEXT NOT NULL CHECK (type IN ('request', 'update', 'message')),
	content TEXT NOT NULL,
	read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS messages (
	id UUID PRIMARY KEY,
	exam_request_id UUID NOT NULL REFERENCES exam_requests(id),
	sender_id UUID NOT NULL REFERENCES users(id),
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient
	ON notifications (recipient_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_unread
	ON notifications (recipient_id) WHERE NOT read;
CREATE INDEX IF NOT EXISTS idx_messages_request
	ON messages (exam_request_id, created_at ASC);
`

const migration003Down = `
DROP TABLE IF EXISTS messages;
DROP TABLE IF EXISTS notifications;
`
