package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/chat"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/notification"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEND MESSAGE COMMAND
// A participant sends a chat message on an exam request. The message is
// persisted first, then relayed to both bound parties over their realtime
// channels. On a request without an accepted writer only the student is
// reachable, which is expected.
// ══════════════════════════════════════════════════════════════════════════════

// SendMessageCommand contains the data to send a chat message.
type SendMessageCommand struct {
	// ExamRequestID is the request the message belongs to.
	ExamRequestID shared.RequestID

	// SenderID is the authenticated sender. The realtime handler always
	// fills this from the session identity, never from client input.
	SenderID shared.UserID

	// Content is the message text.
	Content string
}

// Validate validates the command.
func (c SendMessageCommand) Validate() error {
	if !c.ExamRequestID.IsValid() {
		return shared.NewDomainError("command", "SendMessage", shared.ErrValidation, "exam request id is required")
	}
	if !c.SenderID.IsValid() {
		return shared.NewDomainError("command", "SendMessage", shared.ErrValidation, "sender id is required")
	}
	if c.Content == "" {
		return shared.NewDomainError("command", "SendMessage", shared.ErrValidation, "content is required")
	}
	return nil
}

// SendMessageResult contains the result of sending a message.
type SendMessageResult struct {
	// Message is the persisted chat message.
	Message *chat.Message

	// DeliveredTo lists the participants a realtime push was attempted
	// for. Delivery itself is best-effort and unobservable here.
	DeliveredTo []shared.UserID
}

// SendMessageHandler handles the SendMessageCommand.
type SendMessageHandler struct {
	requestRepo      request.Repository
	chatRepo         chat.Repository
	notificationRepo notification.Repository
	pusher           RealtimePusher
	log              *logger.Logger
}

// NewSendMessageHandler creates a new SendMessageHandler.
func NewSendMessageHandler(
	requestRepo request.Repository,
	chatRepo chat.Repository,
	notificationRepo notification.Repository,
	pusher RealtimePusher,
	log *logger.Logger,
) *SendMessageHandler {
	return &SendMessageHandler{
		requestRepo:      requestRepo,
		chatRepo:         chatRepo,
		notificationRepo: notificationRepo,
		pusher:           pusher,
		log:              log,
	}
}

// Handle executes the send message command.
func (h *SendMessageHandler) Handle(ctx context.Context, cmd SendMessageCommand) (*SendMessageResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	req, err := h.requestRepo.GetByID(ctx, cmd.ExamRequestID)
	if err != nil {
		return nil, err
	}

	// Only the owning student and the bound writer may post into the
	// request's chat.
	if !req.IsParticipant(cmd.SenderID) {
		return nil, chat.ErrNotParticipant
	}

	msg, err := chat.NewMessage(chat.NewMessageParams{
		ID:            uuid.NewString(),
		ExamRequestID: cmd.ExamRequestID,
		SenderID:      cmd.SenderID,
		Content:       cmd.Content,
	})
	if err != nil {
		return nil, err
	}

	if err := h.chatRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("send_message: persist: %w", err)
	}

	result := &SendMessageResult{Message: msg}

	for _, participant := range req.Participants() {
		h.pusher.PushNewMessage(participant, msg)
		result.DeliveredTo = append(result.DeliveredTo, participant)

		if participant == cmd.SenderID {
			continue
		}
		// Durable trail for the counterparty so the message shows up in
		// their notification list even if they were offline.
		n, nerr := notification.NewNotification(notification.NewNotificationParams{
			ID:          uuid.NewString(),
			RecipientID: participant,
			Type:        notification.TypeMessage,
			Content:     fmt.Sprintf("New message on exam request %q", req.ExamName),
		})
		if nerr != nil {
			continue
		}
		if perr := h.notificationRepo.Create(ctx, n); perr != nil {
			h.log.Error("persist message notification",
				logger.RequestID(req.ID.String()),
				logger.UserID(participant.String()),
				logger.Err(perr),
			)
		}
	}

	return result, nil
}
