package query

import (
	"context"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/notification"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET NOTIFICATIONS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetNotificationsQuery identifies whose notifications to list.
type GetNotificationsQuery struct {
	// UserID is the authenticated caller.
	UserID shared.UserID
}

// Validate validates the query.
func (q GetNotificationsQuery) Validate() error {
	if !q.UserID.IsValid() {
		return shared.NewDomainError("query", "GetNotifications", shared.ErrValidation, "user id is required")
	}
	return nil
}

// GetNotificationsResult contains the listed notifications.
type GetNotificationsResult struct {
	// Notifications are the caller's notifications, newest first.
	Notifications []*notification.Notification

	// UnreadCount is the number of unread notifications.
	UnreadCount int
}

// GetNotificationsHandler handles the GetNotificationsQuery.
type GetNotificationsHandler struct {
	notificationRepo notification.Repository
}

// NewGetNotificationsHandler creates a new GetNotificationsHandler.
func NewGetNotificationsHandler(notificationRepo notification.Repository) *GetNotificationsHandler {
	return &GetNotificationsHandler{notificationRepo: notificationRepo}
}

// Handle executes the get notifications query.
func (h *GetNotificationsHandler) Handle(ctx context.Context, q GetNotificationsQuery) (*GetNotificationsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	notifications, err := h.notificationRepo.ListByRecipient(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}

	return &GetNotificationsResult{
		Notifications: notifications,
		UnreadCount:   unread,
	}, nil
}
