package query

import (
	"context"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/chat"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET MESSAGES QUERY
// Chat history of an exam request, readable by its participants only.
// ══════════════════════════════════════════════════════════════════════════════

// GetMessagesQuery identifies which request's chat to read.
type GetMessagesQuery struct {
	// ExamRequestID is the request whose chat history is requested.
	ExamRequestID shared.RequestID

	// CallerID is the authenticated caller. Must be a participant.
	CallerID shared.UserID
}

// Validate validates the query.
func (q GetMessagesQuery) Validate() error {
	if !q.ExamRequestID.IsValid() {
		return shared.NewDomainError("query", "GetMessages", shared.ErrValidation, "exam request id is required")
	}
	if !q.CallerID.IsValid() {
		return shared.NewDomainError("query", "GetMessages", shared.ErrValidation, "caller id is required")
	}
	return nil
}

// GetMessagesResult contains the chat history.
type GetMessagesResult struct {
	// Messages are the request's messages in chronological order.
	Messages []*chat.Message
}

// GetMessagesHandler handles the GetMessagesQuery.
type GetMessagesHandler struct {
	requestRepo request.Repository
	chatRepo    chat.Repository
}

// NewGetMessagesHandler creates a new GetMessagesHandler.
func NewGetMessagesHandler(requestRepo request.Repository, chatRepo chat.Repository) *GetMessagesHandler {
	return &GetMessagesHandler{requestRepo: requestRepo, chatRepo: chatRepo}
}

// Handle executes the get messages query.
func (h *GetMessagesHandler) Handle(ctx context.Context, q GetMessagesQuery) (*GetMessagesResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	req, err := h.requestRepo.GetByID(ctx, q.ExamRequestID)
	if err != nil {
		return nil, err
	}
	if !req.IsParticipant(q.CallerID) {
		return nil, chat.ErrNotParticipant
	}

	messages, err := h.chatRepo.ListByRequest(ctx, q.ExamRequestID)
	if err != nil {
		return nil, err
	}

	return &GetMessagesResult{Messages: messages}, nil
}
