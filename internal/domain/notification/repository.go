package notification

import (
	"context"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

// Repository defines storage operations for notifications.
type Repository interface {
	// Create persists a new notification.
	Create(ctx context.Context, n *Notification) error

	// ListByRecipient returns the user's notifications, newest first.
	ListByRecipient(ctx context.Context, recipientID shared.UserID) ([]*Notification, error)

	// MarkRead flags a notification as seen.
	// Returns ErrNotificationNotFound when no such notification exists.
	MarkRead(ctx context.Context, id string) error

	// CountUnread returns the number of unread notifications for the user.
	CountUnread(ctx context.Context, recipientID shared.UserID) (int, error)
}
