package postgres

import (
	"context"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/notification"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// NotificationRepository implements notification.Repository for PostgreSQL.
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO notifications (id, recipient_id, type, content, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		n.ID,
		n.RecipientID.String(),
		n.Type.String(),
		n.Content,
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		return shared.WrapError("notification", "Create", shared.ErrStorageUnavailable, "insert notification", err)
	}
	return nil
}

// ListByRecipient returns the user's notifications, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID shared.UserID) ([]*notification.Notification, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, recipient_id, type, content, read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`, recipientID.String())
	if err != nil {
		return nil, shared.WrapError("notification", "ListByRecipient", shared.ErrStorageUnavailable, "query notifications", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		var (
			n              notification.Notification
			recipient, typ string
		)
		if err := rows.Scan(&n.ID, &recipient, &typ, &n.Content, &n.Read, &n.CreatedAt); err != nil {
			return nil, shared.WrapError("notification", "ListByRecipient", shared.ErrStorageUnavailable, "scan notification", err)
		}
		n.RecipientID = shared.UserID(recipient)
		n.Type = notification.Type(typ)
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("notification", "ListByRecipient", shared.ErrStorageUnavailable, "iterate notifications", err)
	}
	return notifications, nil
}

// MarkRead flags a notification as seen.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE notifications SET read = TRUE WHERE id = $1
	`, id)
	if err != nil {
		return shared.WrapError("notification", "MarkRead", shared.ErrStorageUnavailable, "update notification", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// CountUnread returns the number of unread notifications for the user.
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID shared.UserID) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `
		SELECT count(*) FROM notifications
		WHERE recipient_id = $1 AND NOT read
	`, recipientID.String()).Scan(&count)
	if err != nil {
		return 0, shared.WrapError("notification", "CountUnread", shared.ErrStorageUnavailable, "count notifications", err)
	}
	return count, nil
}
