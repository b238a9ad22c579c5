package request

import (
	"context"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Contract for exam-request storage. Implementations live in
// infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines storage operations for exam requests.
type Repository interface {
	// Create persists a new exam request.
	Create(ctx context.Context, r *ExamRequest) error

	// GetByID returns the request with the given ID.
	// Returns ErrRequestNotFound when no such request exists.
	GetByID(ctx context.Context, id shared.RequestID) (*ExamRequest, error)

	// ResolveIfPending transitions the request to the given terminal status
	// in a single conditional update: the write succeeds only if the stored
	// status is still pending. writerID is bound on acceptance and ignored
	// on decline.
	//
	// Returns the updated request on success. Returns ErrRequestNotFound
	// when the ID does not exist, and ErrAlreadyResolved when the request
	// exists but has already left the pending state. This is the only write
	// path out of pending, which makes concurrent acceptance a race with
	// exactly one winner.
	ResolveIfPending(ctx context.Context, id shared.RequestID, writerID shared.UserID, status Status) (*ExamRequest, error)

	// ListByStudent returns the student's requests, newest first.
	ListByStudent(ctx context.Context, studentID shared.UserID) ([]*ExamRequest, error)

	// ListByWriter returns requests bound to the writer, newest first.
	ListByWriter(ctx context.Context, writerID shared.UserID) ([]*ExamRequest, error)
}
