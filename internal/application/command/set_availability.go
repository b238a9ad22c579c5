package command

import (
	"context"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/user"
	"github.com/prasadk1999/scribe-connect-vision/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET AVAILABILITY COMMAND
// A writer toggles whether they are currently accepting exam requests.
// Unavailable writers are excluded from proximity matching.
// ══════════════════════════════════════════════════════════════════════════════

// SetAvailabilityCommand contains the data to change availability.
type SetAvailabilityCommand struct {
	// WriterID is the authenticated writer.
	WriterID shared.UserID

	// Available is the new availability state.
	Available bool
}

// Validate validates the command.
func (c SetAvailabilityCommand) Validate() error {
	if !c.WriterID.IsValid() {
		return shared.NewDomainError("command", "SetAvailability", shared.ErrValidation, "writer id is required")
	}
	return nil
}

// SetAvailabilityResult contains the result of changing availability.
type SetAvailabilityResult struct {
	// User is the writer with the updated availability flag.
	User *user.User
}

// SetAvailabilityHandler handles the SetAvailabilityCommand.
type SetAvailabilityHandler struct {
	userRepo user.Repository
	log      *logger.Logger
}

// NewSetAvailabilityHandler creates a new SetAvailabilityHandler.
func NewSetAvailabilityHandler(userRepo user.Repository, log *logger.Logger) *SetAvailabilityHandler {
	return &SetAvailabilityHandler{userRepo: userRepo, log: log}
}

// Handle executes the set availability command.
func (h *SetAvailabilityHandler) Handle(ctx context.Context, cmd SetAvailabilityCommand) (*SetAvailabilityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	u, err := h.userRepo.GetByID(ctx, cmd.WriterID)
	if err != nil {
		return nil, err
	}

	if err := u.SetAvailability(cmd.Available); err != nil {
		return nil, err
	}

	if err := h.userRepo.UpdateAvailability(ctx, u.ID, u.Availability); err != nil {
		return nil, err
	}

	h.log.Info("writer availability changed",
		logger.UserID(u.ID.String()),
		logger.Bool("available", u.Availability),
	)

	return &SetAvailabilityResult{User: u}, nil
}
