package user

import (
	"context"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Contracts for user storage. Implementations live in
// infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines storage operations for users.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Create persists a new user together with its location, if any.
	// Returns ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, u *User) error

	// GetByID returns the user with the given ID.
	// Returns ErrUserNotFound when no such user exists.
	GetByID(ctx context.Context, id shared.UserID) (*User, error)

	// GetByEmail returns the user registered under the given email.
	// Returns ErrUserNotFound when no such user exists.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdateAvailability sets a writer's availability flag.
	// Returns ErrUserNotFound when no such user exists.
	UpdateAvailability(ctx context.Context, id shared.UserID, available bool) error

	// UpdateLocation attaches or replaces the user's location.
	// Returns ErrUserNotFound when no such user exists.
	UpdateLocation(ctx context.Context, id shared.UserID, loc *Location) error

	// ─────────────────────────────────────────────────────────────────────────
	// Matching
	// ─────────────────────────────────────────────────────────────────────────

	// FindAvailableWritersWithin returns available writers whose location
	// falls inside the bounding box. Writers without a location are never
	// returned.
	FindAvailableWritersWithin(ctx context.Context, box shared.BoundingBox) ([]*User, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Existence Checks
	// ─────────────────────────────────────────────────────────────────────────

	// ExistsByEmail reports whether a user with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// PRESENCE TRACKER
// Tracks which users currently hold a realtime connection (usually Redis).
// ══════════════════════════════════════════════════════════════════════════════

// PresenceTracker defines operations for tracking realtime presence.
type PresenceTracker interface {
	// MarkOnline marks the user as connected.
	MarkOnline(ctx context.Context, id shared.UserID) error

	// MarkOffline marks the user as disconnected.
	MarkOffline(ctx context.Context, id shared.UserID) error

	// IsOnline reports whether the user currently holds a connection.
	IsOnline(ctx context.Context, id shared.UserID) (bool, error)

	// OnlineStates returns per-user presence for a batch of users.
	OnlineStates(ctx context.Context, ids []shared.UserID) (map[shared.UserID]bool, error)
}
