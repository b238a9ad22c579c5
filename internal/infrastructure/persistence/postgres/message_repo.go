package postgres

import (
	"context"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/chat"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MessageRepository implements chat.Repository for PostgreSQL.
type MessageRepository struct {
	conn *Connection
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(conn *Connection) *MessageRepository {
	return &MessageRepository{conn: conn}
}

// Create persists a new message.
func (r *MessageRepository) Create(ctx context.Context, m *chat.Message) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO messages (id, exam_request_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		m.ID,
		m.ExamRequestID.String(),
		m.SenderID.String(),
		m.Content,
		m.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return request.ErrRequestNotFound
		}
		return shared.WrapError("chat", "Create", shared.ErrStorageUnavailable, "insert message", err)
	}
	return nil
}

// ListByRequest returns the request's messages in chronological order.
func (r *MessageRepository) ListByRequest(ctx context.Context, requestID shared.RequestID) ([]*chat.Message, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, exam_request_id, sender_id, content, created_at
		FROM messages
		WHERE exam_request_id = $1
		ORDER BY created_at ASC
	`, requestID.String())
	if err != nil {
		return nil, shared.WrapError("chat", "ListByRequest", shared.ErrStorageUnavailable, "query messages", err)
	}
	defer rows.Close()

	var messages []*chat.Message
	for rows.Next() {
		var (
			m             chat.Message
			reqID, sender string
		)
		if err := rows.Scan(&m.ID, &reqID, &sender, &m.Content, &m.CreatedAt); err != nil {
			return nil, shared.WrapError("chat", "ListByRequest", shared.ErrStorageUnavailable, "scan message", err)
		}
		m.ExamRequestID = shared.RequestID(reqID)
		m.SenderID = shared.UserID(sender)
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("chat", "ListByRequest", shared.ErrStorageUnavailable, "iterate messages", err)
	}
	return messages, nil
}
