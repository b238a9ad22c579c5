package command

import (
	"context"
	"fmt"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/user"
	"github.com/prasadk1999/scribe-connect-vision/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN USER COMMAND
// Verifies credentials and issues a session token.
// ══════════════════════════════════════════════════════════════════════════════

// ErrInvalidCredentials is returned for an unknown email or wrong password.
// The two cases are deliberately indistinguishable to the caller.
var ErrInvalidCredentials = shared.NewDomainError("command", "LoginUser", shared.ErrUnauthorized, "invalid email or password")

// LoginUserCommand contains login credentials.
type LoginUserCommand struct {
	// Email is the login identifier.
	Email string

	// Password is the plaintext password to verify.
	Password string
}

// Validate validates the command.
func (c LoginUserCommand) Validate() error {
	if c.Email == "" {
		return shared.NewDomainError("command", "LoginUser", shared.ErrValidation, "email is required")
	}
	if c.Password == "" {
		return shared.NewDomainError("command", "LoginUser", shared.ErrValidation, "password is required")
	}
	return nil
}

// LoginUserResult contains the result of a successful login.
type LoginUserResult struct {
	// User is the authenticated user.
	User *user.User

	// Token is the issued session token.
	Token string
}

// LoginUserHandler handles the LoginUserCommand.
type LoginUserHandler struct {
	userRepo user.Repository
	hasher   PasswordHasher
	tokens   TokenIssuer
	log      *logger.Logger
}

// NewLoginUserHandler creates a new LoginUserHandler.
func NewLoginUserHandler(
	userRepo user.Repository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	log *logger.Logger,
) *LoginUserHandler {
	return &LoginUserHandler{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
	}
}

// Handle executes the login command.
func (h *LoginUserHandler) Handle(ctx context.Context, cmd LoginUserCommand) (*LoginUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	u, err := h.userRepo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login_user: load user: %w", err)
	}

	if !h.hasher.Compare(u.PasswordHash, cmd.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := h.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("login_user: issue token: %w", err)
	}

	h.log.Info("user logged in", logger.UserID(u.ID.String()))

	return &LoginUserResult{User: u, Token: token}, nil
}
