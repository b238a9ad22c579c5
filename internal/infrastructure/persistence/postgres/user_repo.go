package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// userColumns selects a user joined with its optional location.
const userColumns = `
	u.id, u.email, u.password_hash, u.name, u.phone, u.role, u.availability,
	u.created_at, u.updated_at,
	l.latitude, l.longitude, l.address
`

// Create persists a user and, in the same transaction, its location.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, name, phone, role, availability, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			u.ID.String(),
			u.Email,
			u.PasswordHash,
			u.Name,
			u.Phone,
			u.Role.String(),
			u.Availability,
			u.CreatedAt,
			u.UpdatedAt,
		)
		if err != nil {
			return err
		}

		if u.Location != nil {
			_, err = tx.Exec(ctx, `
				INSERT INTO locations (user_id, latitude, longitude, address)
				VALUES ($1, $2, $3, $4)
			`,
				u.ID.String(),
				u.Location.Coordinates.Latitude,
				u.Location.Coordinates.Longitude,
				u.Location.Address,
			)
		}
		return err
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return user.ErrEmailTaken
		}
		return shared.WrapError("user", "Create", shared.ErrStorageUnavailable, "insert user", err)
	}
	return nil
}

// GetByID returns a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id shared.UserID) (*user.User, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN locations l ON l.user_id = u.id
		WHERE u.id = $1
	`, id.String())

	u, err := scanUser(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, shared.WrapError("user", "GetByID", shared.ErrStorageUnavailable, "query user", err)
	}
	return u, nil
}

// GetByEmail returns a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN locations l ON l.user_id = u.id
		WHERE u.email = $1
	`, strings.ToLower(strings.TrimSpace(email)))

	u, err := scanUser(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, shared.WrapError("user", "GetByEmail", shared.ErrStorageUnavailable, "query user", err)
	}
	return u, nil
}

// UpdateAvailability sets a writer's availability flag.
func (r *UserRepository) UpdateAvailability(ctx context.Context, id shared.UserID, available bool) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE users SET availability = $2, updated_at = now()
		WHERE id = $1
	`, id.String(), available)
	if err != nil {
		return shared.WrapError("user", "UpdateAvailability", shared.ErrStorageUnavailable, "update user", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// UpdateLocation attaches or replaces the user's location.
func (r *UserRepository) UpdateLocation(ctx context.Context, id shared.UserID, loc *user.Location) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO locations (user_id, latitude, longitude, address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
			SET latitude = EXCLUDED.latitude,
			    longitude = EXCLUDED.longitude,
			    address = EXCLUDED.address
	`,
		id.String(),
		loc.Coordinates.Latitude,
		loc.Coordinates.Longitude,
		loc.Address,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return user.ErrUserNotFound
		}
		return shared.WrapError("user", "UpdateLocation", shared.ErrStorageUnavailable, "upsert location", err)
	}
	return nil
}

// FindAvailableWritersWithin returns available writers located inside the
// bounding box. Bounds are inclusive: a writer exactly on the edge matches.
func (r *UserRepository) FindAvailableWritersWithin(ctx context.Context, box shared.BoundingBox) ([]*user.User, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+userColumns+`
		FROM users u
		JOIN locations l ON l.user_id = u.id
		WHERE u.role = 'writer'
		  AND u.availability = TRUE
		  AND l.latitude  BETWEEN $1 AND $2
		  AND l.longitude BETWEEN $3 AND $4
		ORDER BY u.created_at
	`,
		box.MinLatitude,
		box.MaxLatitude,
		box.MinLongitude,
		box.MaxLongitude,
	)
	if err != nil {
		return nil, shared.WrapError("user", "FindAvailableWritersWithin", shared.ErrStorageUnavailable, "query writers", err)
	}
	defer rows.Close()

	var writers []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, shared.WrapError("user", "FindAvailableWritersWithin", shared.ErrStorageUnavailable, "scan writer", err)
		}
		writers = append(writers, u)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("user", "FindAvailableWritersWithin", shared.ErrStorageUnavailable, "iterate writers", err)
	}
	return writers, nil
}

// ExistsByEmail reports whether a user with the email exists.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&exists)
	if err != nil {
		return false, shared.WrapError("user", "ExistsByEmail", shared.ErrStorageUnavailable, "query exists", err)
	}
	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

// scanUser scans a user row including the nullable location columns.
func scanUser(row pgx.Row) (*user.User, error) {
	var (
		u        user.User
		id, role string
		lat, lon *float64
		address  *string
	)

	err := row.Scan(
		&id,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Phone,
		&role,
		&u.Availability,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lat,
		&lon,
		&address,
	)
	if err != nil {
		return nil, err
	}

	u.ID = shared.UserID(id)
	u.Role = user.Role(role)

	if lat != nil && lon != nil {
		addr := ""
		if address != nil {
			addr = *address
		}
		u.Location = &user.Location{
			Coordinates: shared.Coordinates{Latitude: *lat, Longitude: *lon},
			Address:     addr,
		}
	}
	return &u, nil
}
