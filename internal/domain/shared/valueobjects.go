// Package shared contains common domain types, errors, and value objects
// that are used across all domain packages.
package shared

import (
	"regexp"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ══════════════════════════════════════════════════════════════════════════════

// UserID represents a unique user identifier (UUID format).
type UserID string

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValid checks if the user ID is a valid UUID.
func (id UserID) IsValid() bool {
	return uuidRegex.MatchString(string(id))
}

// String returns the string representation.
func (id UserID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty.
func (id UserID) IsEmpty() bool {
	return id == ""
}

// NewUserID creates a new UserID with validation.
func NewUserID(id string) (UserID, error) {
	uid := UserID(strings.ToLower(strings.TrimSpace(id)))
	if !uid.IsValid() {
		return "", NewDomainError("shared", "NewUserID", ErrInvalidID, "invalid user ID format")
	}
	return uid, nil
}

// RequestID represents a unique exam request identifier (UUID format).
type RequestID string

// IsValid checks if the request ID is a valid UUID.
func (id RequestID) IsValid() bool {
	return uuidRegex.MatchString(string(id))
}

// String returns the string representation.
func (id RequestID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty.
func (id RequestID) IsEmpty() bool {
	return id == ""
}

// NewRequestID creates a new RequestID with validation.
func NewRequestID(id string) (RequestID, error) {
	rid := RequestID(strings.ToLower(strings.TrimSpace(id)))
	if !rid.IsValid() {
		return "", NewDomainError("shared", "NewRequestID", ErrInvalidID, "invalid request ID format")
	}
	return rid, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// Coordinates Value Object
// ══════════════════════════════════════════════════════════════════════════════

// Coordinates represents a geographic point.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// IsValid checks that the coordinates lie within the valid WGS84 ranges.
func (c Coordinates) IsValid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// NewCoordinates creates Coordinates with validation.
func NewCoordinates(lat, lon float64) (Coordinates, error) {
	c := Coordinates{Latitude: lat, Longitude: lon}
	if !c.IsValid() {
		return Coordinates{}, NewDomainError("shared", "NewCoordinates", ErrInvalidInput, "coordinates out of range")
	}
	return c, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// Bounding Box Value Object
// ══════════════════════════════════════════════════════════════════════════════

// BoundingBox is a coarse axis-aligned latitude/longitude window around an
// origin. It is a deliberate approximation of "nearby": independent degree
// ranges instead of great-circle distance. Callers that need geodesic accuracy
// must treat this as a documented baseline, not upgrade it silently.
type BoundingBox struct {
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
}

// DefaultRadiusDegrees is the default half-width of the search window.
const DefaultRadiusDegrees = 0.1

// NewBoundingBox builds the window [origin-delta, origin+delta] on both axes.
func NewBoundingBox(origin Coordinates, delta float64) (BoundingBox, error) {
	if !origin.IsValid() {
		return BoundingBox{}, NewDomainError("shared", "NewBoundingBox", ErrInvalidInput, "invalid origin coordinates")
	}
	if delta <= 0 {
		return BoundingBox{}, NewDomainError("shared", "NewBoundingBox", ErrInvalidInput, "radius must be positive")
	}
	return BoundingBox{
		MinLatitude:  origin.Latitude - delta,
		MaxLatitude:  origin.Latitude + delta,
		MinLongitude: origin.Longitude - delta,
		MaxLongitude: origin.Longitude + delta,
	}, nil
}

// Contains reports whether the point falls inside the window.
// Bounds are inclusive on all four edges.
func (b BoundingBox) Contains(point Coordinates) bool {
	return point.Latitude >= b.MinLatitude && point.Latitude <= b.MaxLatitude &&
		point.Longitude >= b.MinLongitude && point.Longitude <= b.MaxLongitude
}
