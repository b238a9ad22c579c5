package chat

import (
	"context"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

// Repository defines storage operations for chat messages.
type Repository interface {
	// Create persists a new message.
	Create(ctx context.Context, m *Message) error

	// ListByRequest returns the messages of an exam request in
	// chronological order.
	ListByRequest(ctx context.Context, requestID shared.RequestID) ([]*Message, error)
}
