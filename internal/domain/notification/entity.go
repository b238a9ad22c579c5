// Package notification contains the durable notification model. A
// notification row is written for every fan-out event so that recipients who
// are offline at delivery time still find the event when they reconnect.
package notification

import (
	"strings"
	"time"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION TYPE
// ══════════════════════════════════════════════════════════════════════════════

// Type classifies what event a notification records.
type Type string

const (
	// TypeRequest - a new exam request matched to a nearby writer.
	TypeRequest Type = "request"

	// TypeUpdate - an exam request changed state (accepted/declined).
	TypeUpdate Type = "update"

	// TypeMessage - a chat message arrived on one of the user's requests.
	TypeMessage Type = "message"
)

// IsValid checks that the type is one of the known values.
func (t Type) IsValid() bool {
	switch t {
	case TypeRequest, TypeUpdate, TypeMessage:
		return true
	default:
		return false
	}
}

// String returns the string representation of the type.
func (t Type) String() string {
	return string(t)
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Notification is a durable record of an event addressed to one user.
// Immutable once created except for the read flag.
type Notification struct {
	// ID - unique notification identifier.
	ID string

	// RecipientID - the user the notification is addressed to.
	RecipientID shared.UserID

	// Type - event classification.
	Type Type

	// Content - human-readable notification text.
	Content string

	// Read - whether the recipient has seen the notification.
	// New notifications are always unread.
	Read bool

	// CreatedAt - creation time.
	CreatedAt time.Time
}

// NewNotificationParams contains parameters for creating a notification.
type NewNotificationParams struct {
	ID          string
	RecipientID shared.UserID
	Type        Type
	Content     string
}

// NewNotification creates a new unread notification with validation.
func NewNotification(params NewNotificationParams) (*Notification, error) {
	if params.ID == "" {
		return nil, ErrInvalidNotificationID
	}
	if !params.RecipientID.IsValid() {
		return nil, ErrInvalidRecipientID
	}
	if !params.Type.IsValid() {
		return nil, ErrInvalidType
	}
	if strings.TrimSpace(params.Content) == "" {
		return nil, ErrEmptyContent
	}

	return &Notification{
		ID:          params.ID,
		RecipientID: params.RecipientID,
		Type:        params.Type,
		Content:     strings.TrimSpace(params.Content),
		Read:        false,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// MarkRead flags the notification as seen.
func (n *Notification) MarkRead() {
	n.Read = true
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidNotificationID - malformed notification identifier.
	ErrInvalidNotificationID = shared.NewDomainError("notification", "Validate", shared.ErrInvalidID, "invalid notification id")

	// ErrInvalidRecipientID - malformed recipient identifier.
	ErrInvalidRecipientID = shared.NewDomainError("notification", "Validate", shared.ErrInvalidID, "invalid recipient id")

	// ErrInvalidType - unknown notification type.
	ErrInvalidType = shared.NewDomainError("notification", "Validate", shared.ErrInvalidInput, "invalid notification type")

	// ErrEmptyContent - content is required.
	ErrEmptyContent = shared.NewDomainError("notification", "Validate", shared.ErrEmptyValue, "content cannot be empty")

	// ErrNotificationNotFound - notification does not exist.
	ErrNotificationNotFound = shared.NewDomainError("notification", "Find", shared.ErrNotFound, "notification not found")
)
