package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/notification"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPOND REQUEST COMMAND
// A writer accepts or declines a pending exam request. Multiple writers may
// race to accept the same request; the storage layer resolves the race with
// a single conditional update, so at most one writer ever binds. The student
// then gets a durable update notification plus a realtime ping.
// ══════════════════════════════════════════════════════════════════════════════

// RespondRequestCommand contains the data to resolve an exam request.
type RespondRequestCommand struct {
	// RequestID is the exam request being resolved.
	RequestID shared.RequestID

	// WriterID is the authenticated writer responding.
	WriterID shared.UserID

	// Status is the target state: accepted or declined.
	Status request.Status
}

// Validate validates the command.
func (c RespondRequestCommand) Validate() error {
	if !c.RequestID.IsValid() {
		return shared.NewDomainError("command", "RespondRequest", shared.ErrValidation, "request id is required")
	}
	if !c.WriterID.IsValid() {
		return shared.NewDomainError("command", "RespondRequest", shared.ErrValidation, "writer id is required")
	}
	if c.Status != request.StatusAccepted && c.Status != request.StatusDeclined {
		return shared.NewDomainError("command", "RespondRequest", shared.ErrValidation, "status must be accepted or declined")
	}
	return nil
}

// RespondRequestResult contains the result of resolving an exam request.
type RespondRequestResult struct {
	// Request is the exam request in its new terminal state.
	Request *request.ExamRequest
}

// RespondRequestHandler handles the RespondRequestCommand.
type RespondRequestHandler struct {
	requestRepo      request.Repository
	notificationRepo notification.Repository
	pusher           RealtimePusher
	log              *logger.Logger
}

// NewRespondRequestHandler creates a new RespondRequestHandler.
func NewRespondRequestHandler(
	requestRepo request.Repository,
	notificationRepo notification.Repository,
	pusher RealtimePusher,
	log *logger.Logger,
) *RespondRequestHandler {
	return &RespondRequestHandler{
		requestRepo:      requestRepo,
		notificationRepo: notificationRepo,
		pusher:           pusher,
		log:              log,
	}
}

// Handle executes the respond request command.
func (h *RespondRequestHandler) Handle(ctx context.Context, cmd RespondRequestCommand) (*RespondRequestResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Single conditional write: succeeds only while the stored status is
	// still pending. Losers of a concurrent accept race get
	// ErrAlreadyResolved, never a silent overwrite.
	req, err := h.requestRepo.ResolveIfPending(ctx, cmd.RequestID, cmd.WriterID, cmd.Status)
	if err != nil {
		return nil, err
	}

	content := fmt.Sprintf("Your exam request %q was %s", req.ExamName, req.Status)

	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:          uuid.NewString(),
		RecipientID: req.StudentID,
		Type:        notification.TypeUpdate,
		Content:     content,
	})
	if err == nil {
		if perr := h.notificationRepo.Create(ctx, n); perr != nil {
			h.log.Error("persist update notification",
				logger.RequestID(req.ID.String()),
				logger.Err(perr),
			)
		}
	}

	h.pusher.PushRequestUpdate(req.StudentID, req)

	h.log.Info("exam request resolved",
		logger.RequestID(req.ID.String()),
		logger.UserID(cmd.WriterID.String()),
		logger.String("status", req.Status.String()),
	)

	return &RespondRequestResult{Request: req}, nil
}
