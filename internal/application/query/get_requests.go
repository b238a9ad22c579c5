package query

import (
	"context"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET REQUESTS QUERY
// Lists the caller's exam requests: the ones they created as a student, or
// the ones bound to them as a writer.
// ══════════════════════════════════════════════════════════════════════════════

// GetRequestsQuery identifies whose requests to list.
type GetRequestsQuery struct {
	// UserID is the authenticated caller.
	UserID shared.UserID

	// Role selects the listing side: a student's own requests or a
	// writer's bound requests.
	Role user.Role
}

// Validate validates the query.
func (q GetRequestsQuery) Validate() error {
	if !q.UserID.IsValid() {
		return shared.NewDomainError("query", "GetRequests", shared.ErrValidation, "user id is required")
	}
	if !q.Role.IsValid() {
		return shared.NewDomainError("query", "GetRequests", shared.ErrValidation, "role must be student or writer")
	}
	return nil
}

// GetRequestsResult contains the listed requests.
type GetRequestsResult struct {
	// Requests are the caller's exam requests, newest first.
	Requests []*request.ExamRequest
}

// GetRequestsHandler handles the GetRequestsQuery.
type GetRequestsHandler struct {
	requestRepo request.Repository
}

// NewGetRequestsHandler creates a new GetRequestsHandler.
func NewGetRequestsHandler(requestRepo request.Repository) *GetRequestsHandler {
	return &GetRequestsHandler{requestRepo: requestRepo}
}

// Handle executes the get requests query.
func (h *GetRequestsHandler) Handle(ctx context.Context, q GetRequestsQuery) (*GetRequestsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var (
		requests []*request.ExamRequest
		err      error
	)
	if q.Role == user.RoleWriter {
		requests, err = h.requestRepo.ListByWriter(ctx, q.UserID)
	} else {
		requests, err = h.requestRepo.ListByStudent(ctx, q.UserID)
	}
	if err != nil {
		return nil, err
	}

	return &GetRequestsResult{Requests: requests}, nil
}
