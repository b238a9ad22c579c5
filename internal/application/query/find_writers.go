// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/user"
	"github.com/prasadk1999/scribe-connect-vision/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// FIND WRITERS QUERY
// Proximity matching: available writers whose location falls inside a
// fixed-size bounding box around an origin. The box is a plain degree-delta
// comparison with inclusive bounds; a writer exactly on the boundary
// matches. This is a coarse approximation, not geodesic distance.
// ══════════════════════════════════════════════════════════════════════════════

// FindWritersQuery contains the matching origin.
type FindWritersQuery struct {
	// Origin is the center of the search box.
	Origin shared.Coordinates

	// Radius is the half-size of the box in degrees. Zero means the
	// default radius.
	Radius float64
}

// Validate validates the query.
func (q FindWritersQuery) Validate() error {
	if !q.Origin.IsValid() {
		return shared.NewDomainError("query", "FindWriters", shared.ErrValidation, "origin coordinates are invalid")
	}
	if q.Radius < 0 {
		return shared.NewDomainError("query", "FindWriters", shared.ErrValidation, "radius cannot be negative")
	}
	return nil
}

// WriterMatch is a matched writer annotated with realtime presence.
type WriterMatch struct {
	// Writer is the matched user.
	Writer *user.User

	// Online reports whether the writer currently holds a realtime
	// connection. False when presence tracking is disabled.
	Online bool
}

// FindWritersResult contains the matched writers.
type FindWritersResult struct {
	// Writers are the matches, in storage order.
	Writers []WriterMatch
}

// FindWritersHandler handles the FindWritersQuery.
type FindWritersHandler struct {
	userRepo user.Repository
	presence user.PresenceTracker
	log      *logger.Logger
}

// NewFindWritersHandler creates a new FindWritersHandler.
// presence may be nil, in which case all matches report offline.
func NewFindWritersHandler(userRepo user.Repository, presence user.PresenceTracker, log *logger.Logger) *FindWritersHandler {
	return &FindWritersHandler{userRepo: userRepo, presence: presence, log: log}
}

// Handle executes the find writers query.
func (h *FindWritersHandler) Handle(ctx context.Context, q FindWritersQuery) (*FindWritersResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	radius := q.Radius
	if radius == 0 {
		radius = shared.DefaultRadiusDegrees
	}

	box, err := shared.NewBoundingBox(q.Origin, radius)
	if err != nil {
		return nil, err
	}

	writers, err := h.userRepo.FindAvailableWritersWithin(ctx, box)
	if err != nil {
		return nil, err
	}

	result := &FindWritersResult{Writers: make([]WriterMatch, 0, len(writers))}
	if len(writers) == 0 {
		return result, nil
	}

	states := h.onlineStates(ctx, writers)
	for _, w := range writers {
		result.Writers = append(result.Writers, WriterMatch{
			Writer: w,
			Online: states[w.ID],
		})
	}
	return result, nil
}

// onlineStates fetches presence for the matched writers. Presence is an
// annotation only; a tracker failure degrades to all-offline rather than
// failing the match.
func (h *FindWritersHandler) onlineStates(ctx context.Context, writers []*user.User) map[shared.UserID]bool {
	if h.presence == nil {
		return nil
	}

	ids := make([]shared.UserID, 0, len(writers))
	for _, w := range writers {
		ids = append(ids, w.ID)
	}

	states, err := h.presence.OnlineStates(ctx, ids)
	if err != nil {
		h.log.Warn("presence lookup failed", logger.Err(err))
		return nil
	}
	return states
}
