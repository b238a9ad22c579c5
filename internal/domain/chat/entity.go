// Package chat contains the chat message model. Messages are scoped to an
// exam request and are immutable once created.
package chat

import (
	"strings"
	"time"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

// Message is a single chat message exchanged on an exam request.
type Message struct {
	// ID - unique message identifier.
	ID string

	// ExamRequestID - the request this message belongs to.
	ExamRequestID shared.RequestID

	// SenderID - the authoring user.
	SenderID shared.UserID

	// Content - message text.
	Content string

	// CreatedAt - creation time.
	CreatedAt time.Time
}

// NewMessageParams contains parameters for creating a message.
type NewMessageParams struct {
	ID            string
	ExamRequestID shared.RequestID
	SenderID      shared.UserID
	Content       string
}

// NewMessage creates a new message with validation.
func NewMessage(params NewMessageParams) (*Message, error) {
	if params.ID == "" {
		return nil, ErrInvalidMessageID
	}
	if !params.ExamRequestID.IsValid() {
		return nil, ErrInvalidExamRequestID
	}
	if !params.SenderID.IsValid() {
		return nil, ErrInvalidSenderID
	}
	if strings.TrimSpace(params.Content) == "" {
		return nil, ErrEmptyContent
	}

	return &Message{
		ID:            params.ID,
		ExamRequestID: params.ExamRequestID,
		SenderID:      params.SenderID,
		Content:       strings.TrimSpace(params.Content),
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidMessageID - malformed message identifier.
	ErrInvalidMessageID = shared.NewDomainError("chat", "Validate", shared.ErrInvalidID, "invalid message id")

	// ErrInvalidExamRequestID - malformed exam request identifier.
	ErrInvalidExamRequestID = shared.NewDomainError("chat", "Validate", shared.ErrInvalidID, "invalid exam request id")

	// ErrInvalidSenderID - malformed sender identifier.
	ErrInvalidSenderID = shared.NewDomainError("chat", "Validate", shared.ErrInvalidID, "invalid sender id")

	// ErrEmptyContent - content is required.
	ErrEmptyContent = shared.NewDomainError("chat", "Validate", shared.ErrEmptyValue, "message content cannot be empty")

	// ErrNotParticipant - sender is not bound to the exam request.
	ErrNotParticipant = shared.NewDomainError("chat", "Send", shared.ErrForbidden, "sender is not a participant of the exam request")
)
