package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/notification"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/user"
	"github.com/prasadk1999/scribe-connect-vision/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE REQUEST COMMAND
// A student creates an exam request. After the request is persisted, nearby
// available writers are discovered, each gets a durable notification row,
// and each is pinged over their realtime channels.
// ══════════════════════════════════════════════════════════════════════════════

// CreateRequestCommand contains the data to create an exam request.
type CreateRequestCommand struct {
	// StudentID is the authenticated student creating the request.
	StudentID shared.UserID

	// ExamName is the name of the exam.
	ExamName string

	// ExamDate is the scheduled exam date.
	ExamDate time.Time

	// Duration is the exam duration.
	Duration time.Duration

	// Subject is the exam subject.
	Subject string
}

// Validate validates the command.
func (c CreateRequestCommand) Validate() error {
	if !c.StudentID.IsValid() {
		return shared.NewDomainError("command", "CreateRequest", shared.ErrValidation, "student id is required")
	}
	if c.ExamName == "" {
		return shared.NewDomainError("command", "CreateRequest", shared.ErrValidation, "exam name is required")
	}
	if c.ExamDate.IsZero() {
		return shared.NewDomainError("command", "CreateRequest", shared.ErrValidation, "exam date is required")
	}
	if c.Duration <= 0 {
		return shared.NewDomainError("command", "CreateRequest", shared.ErrValidation, "duration is required")
	}
	if c.Subject == "" {
		return shared.NewDomainError("command", "CreateRequest", shared.ErrValidation, "subject is required")
	}
	return nil
}

// CreateRequestResult contains the result of creating an exam request.
type CreateRequestResult struct {
	// Request is the persisted exam request.
	Request *request.ExamRequest

	// MatchedWriters is the number of writers found within range.
	MatchedWriters int

	// NotifiedWriters is the number of writers a notification row was
	// written for. Equals MatchedWriters unless some writes failed.
	NotifiedWriters int
}

// CreateRequestHandler handles the CreateRequestCommand.
type CreateRequestHandler struct {
	userRepo         user.Repository
	requestRepo      request.Repository
	notificationRepo notification.Repository
	pusher           RealtimePusher
	matchRadius      float64
	log              *logger.Logger
}

// NewCreateRequestHandler creates a new CreateRequestHandler.
func NewCreateRequestHandler(
	userRepo user.Repository,
	requestRepo request.Repository,
	notificationRepo notification.Repository,
	pusher RealtimePusher,
	matchRadius float64,
	log *logger.Logger,
) *CreateRequestHandler {
	if matchRadius <= 0 {
		matchRadius = shared.DefaultRadiusDegrees
	}
	return &CreateRequestHandler{
		userRepo:         userRepo,
		requestRepo:      requestRepo,
		notificationRepo: notificationRepo,
		pusher:           pusher,
		matchRadius:      matchRadius,
		log:              log,
	}
}

// Handle executes the create request command.
func (h *CreateRequestHandler) Handle(ctx context.Context, cmd CreateRequestCommand) (*CreateRequestResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	student, err := h.userRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("create_request: load student: %w", err)
	}
	if !student.IsStudent() {
		return nil, shared.NewDomainError("command", "CreateRequest", shared.ErrForbidden, "only students can create exam requests")
	}

	id, err := shared.NewRequestID(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("create_request: generate id: %w", err)
	}

	req, err := request.NewExamRequest(request.NewExamRequestParams{
		ID:        id,
		StudentID: cmd.StudentID,
		ExamName:  cmd.ExamName,
		ExamDate:  cmd.ExamDate,
		Duration:  cmd.Duration,
		Subject:   cmd.Subject,
	})
	if err != nil {
		return nil, err
	}

	if err := h.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create_request: persist: %w", err)
	}

	result := &CreateRequestResult{Request: req}

	// Discovery is skipped for students without a location. The request
	// stays pending and visible through list endpoints.
	if !student.HasLocation() {
		h.log.Info("exam request created without location, matching skipped",
			logger.RequestID(req.ID.String()),
			logger.UserID(student.ID.String()),
		)
		return result, nil
	}

	writers, err := h.findNearbyWriters(ctx, student)
	if err != nil {
		// The request itself is already durable. Matching failure leaves
		// it pending without fan-out.
		h.log.Error("writer matching failed",
			logger.RequestID(req.ID.String()),
			logger.Err(err),
		)
		return result, nil
	}
	result.MatchedWriters = len(writers)

	content := fmt.Sprintf("New exam request: %s (%s) on %s",
		req.ExamName, req.Subject, req.ExamDate.Format("2006-01-02"))

	for _, w := range writers {
		n, err := notification.NewNotification(notification.NewNotificationParams{
			ID:          uuid.NewString(),
			RecipientID: w.ID,
			Type:        notification.TypeRequest,
			Content:     content,
		})
		if err != nil {
			h.log.Error("build notification", logger.UserID(w.ID.String()), logger.Err(err))
			continue
		}
		if err := h.notificationRepo.Create(ctx, n); err != nil {
			h.log.Error("persist notification", logger.UserID(w.ID.String()), logger.Err(err))
			continue
		}
		result.NotifiedWriters++

		h.pusher.PushNewRequest(w.ID, req)
	}

	h.log.Info("exam request created",
		logger.RequestID(req.ID.String()),
		logger.UserID(student.ID.String()),
		logger.Int("matched_writers", result.MatchedWriters),
		logger.Int("notified_writers", result.NotifiedWriters),
	)

	return result, nil
}

// findNearbyWriters returns available writers inside the bounding box
// centered on the student's location. The box is a coarse degree-delta
// approximation, not a geodesic radius.
func (h *CreateRequestHandler) findNearbyWriters(ctx context.Context, student *user.User) ([]*user.User, error) {
	box, err := shared.NewBoundingBox(student.Location.Coordinates, h.matchRadius)
	if err != nil {
		return nil, err
	}

	writers, err := h.userRepo.FindAvailableWritersWithin(ctx, box)
	if err != nil {
		return nil, err
	}

	// The student can never be their own writer.
	filtered := writers[:0]
	for _, w := range writers {
		if w.ID != student.ID {
			filtered = append(filtered, w)
		}
	}
	return filtered, nil
}
