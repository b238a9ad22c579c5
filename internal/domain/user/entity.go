// Package user contains the user domain model: students who request exam
// assistance and writers who provide it, each optionally anchored to a
// geographic location.
package user

import (
	"strings"
	"time"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Role defines what side of an exam request a user sits on.
type Role string

const (
	// RoleStudent - a blind student who creates exam-assistance requests.
	RoleStudent Role = "student"

	// RoleWriter - a sighted writer who accepts requests and scribes exams.
	RoleWriter Role = "writer"
)

// IsValid checks that the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleWriter:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// ══════════════════════════════════════════════════════════════════════════════
// LOCATION
// ══════════════════════════════════════════════════════════════════════════════

// Location is a user's geographic anchor. It is owned by exactly one user and
// is either created together with the user at registration or attached later.
type Location struct {
	// Coordinates - latitude/longitude of the user.
	Coordinates shared.Coordinates

	// Address - free-text human-readable address.
	Address string
}

// NewLocation creates a Location with validation.
func NewLocation(lat, lon float64, address string) (*Location, error) {
	coords, err := shared.NewCoordinates(lat, lon)
	if err != nil {
		return nil, err
	}
	return &Location{
		Coordinates: coords,
		Address:     strings.TrimSpace(address),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// USER ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// User represents a registered platform user. Identity is immutable after
// registration; only availability (writers) and location may change.
type User struct {
	// ID - unique user identifier.
	ID shared.UserID

	// Email - login identifier, unique across the platform.
	Email string

	// PasswordHash - bcrypt hash of the user's password.
	PasswordHash string

	// Name - display name.
	Name string

	// Phone - contact phone number.
	Phone string

	// Role - student or writer.
	Role Role

	// Availability - whether a writer is currently accepting requests.
	// Meaningful for writers only; students always carry false.
	Availability bool

	// Location - optional geographic anchor.
	Location *Location

	// CreatedAt - registration time.
	CreatedAt time.Time

	// UpdatedAt - time of the last mutation.
	UpdatedAt time.Time
}

// NewUserParams contains parameters for creating a user.
type NewUserParams struct {
	ID           shared.UserID
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Role         Role
	Location     *Location
}

// NewUser creates a new user with validation.
func NewUser(params NewUserParams) (*User, error) {
	if !params.ID.IsValid() {
		return nil, ErrInvalidUserID
	}
	if strings.TrimSpace(params.Email) == "" {
		return nil, ErrEmptyEmail
	}
	if params.PasswordHash == "" {
		return nil, ErrEmptyPasswordHash
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(params.Phone) == "" {
		return nil, ErrEmptyPhone
	}
	if !params.Role.IsValid() {
		return nil, ErrInvalidRole
	}

	now := time.Now().UTC()

	return &User{
		ID:           params.ID,
		Email:        strings.ToLower(strings.TrimSpace(params.Email)),
		PasswordHash: params.PasswordHash,
		Name:         strings.TrimSpace(params.Name),
		Phone:        strings.TrimSpace(params.Phone),
		Role:         params.Role,
		Availability: params.Role == RoleWriter, // writers start available
		Location:     params.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// IsWriter reports whether the user is a writer.
func (u *User) IsWriter() bool {
	return u.Role == RoleWriter
}

// IsStudent reports whether the user is a student.
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// HasLocation reports whether the user has a geographic anchor.
func (u *User) HasLocation() bool {
	return u.Location != nil
}

// SetAvailability toggles a writer's availability flag.
// Students cannot be made available.
func (u *User) SetAvailability(available bool) error {
	if !u.IsWriter() {
		return ErrNotAWriter
	}
	u.Availability = available
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// AttachLocation attaches or replaces the user's location.
func (u *User) AttachLocation(loc *Location) error {
	if loc == nil {
		return ErrNilLocation
	}
	u.Location = loc
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidUserID - malformed user identifier.
	ErrInvalidUserID = shared.NewDomainError("user", "Validate", shared.ErrInvalidID, "invalid user id")

	// ErrEmptyEmail - email is required.
	ErrEmptyEmail = shared.NewDomainError("user", "Validate", shared.ErrEmptyValue, "email cannot be empty")

	// ErrEmptyPasswordHash - password hash is required.
	ErrEmptyPasswordHash = shared.NewDomainError("user", "Validate", shared.ErrEmptyValue, "password hash cannot be empty")

	// ErrEmptyName - name is required.
	ErrEmptyName = shared.NewDomainError("user", "Validate", shared.ErrEmptyValue, "name cannot be empty")

	// ErrEmptyPhone - phone is required.
	ErrEmptyPhone = shared.NewDomainError("user", "Validate", shared.ErrEmptyValue, "phone cannot be empty")

	// ErrInvalidRole - role must be student or writer.
	ErrInvalidRole = shared.NewDomainError("user", "Validate", shared.ErrInvalidInput, "role must be student or writer")

	// ErrNotAWriter - availability applies to writers only.
	ErrNotAWriter = shared.NewDomainError("user", "SetAvailability", shared.ErrForbidden, "only writers have availability")

	// ErrNilLocation - nil location.
	ErrNilLocation = shared.NewDomainError("user", "AttachLocation", shared.ErrInvalidInput, "location cannot be nil")

	// ErrUserNotFound - user does not exist.
	ErrUserNotFound = shared.NewDomainError("user", "Find", shared.ErrNotFound, "user not found")

	// ErrEmailTaken - email already registered.
	ErrEmailTaken = shared.NewDomainError("user", "Create", shared.ErrAlreadyExists, "email already registered")
)
