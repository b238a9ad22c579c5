package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/user"
	"github.com/prasadk1999/scribe-connect-vision/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER COMMAND
// Registers a student or writer, optionally anchored to a location, and
// issues a session token so the client can connect immediately.
// ══════════════════════════════════════════════════════════════════════════════

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns a one-way hash of the password.
	Hash(password string) (string, error)

	// Compare reports whether the password matches the hash.
	Compare(hash, password string) bool
}

// TokenIssuer issues session tokens carrying an authenticated user id.
type TokenIssuer interface {
	// Issue returns a signed token for the user.
	Issue(id shared.UserID, role user.Role) (string, error)
}

// RegisterUserCommand contains the data to register a user.
type RegisterUserCommand struct {
	// Email is the login identifier.
	Email string

	// Password is the plaintext password, hashed before storage.
	Password string

	// Name is the display name.
	Name string

	// Phone is the contact phone number.
	Phone string

	// Role is student or writer.
	Role user.Role

	// Latitude/Longitude optionally anchor the user geographically.
	// Both must be present together.
	Latitude  *float64
	Longitude *float64

	// Address is a free-text address, only used with coordinates.
	Address string
}

// Validate validates the command.
func (c RegisterUserCommand) Validate() error {
	if c.Email == "" {
		return shared.NewDomainError("command", "RegisterUser", shared.ErrValidation, "email is required")
	}
	if len(c.Password) < 6 {
		return shared.NewDomainError("command", "RegisterUser", shared.ErrValidation, "password must be at least 6 characters")
	}
	if c.Name == "" {
		return shared.NewDomainError("command", "RegisterUser", shared.ErrValidation, "name is required")
	}
	if c.Phone == "" {
		return shared.NewDomainError("command", "RegisterUser", shared.ErrValidation, "phone is required")
	}
	if !c.Role.IsValid() {
		return shared.NewDomainError("command", "RegisterUser", shared.ErrValidation, "role must be student or writer")
	}
	if (c.Latitude == nil) != (c.Longitude == nil) {
		return shared.NewDomainError("command", "RegisterUser", shared.ErrValidation, "latitude and longitude must be provided together")
	}
	return nil
}

// RegisterUserResult contains the result of registering a user.
type RegisterUserResult struct {
	// User is the persisted user.
	User *user.User

	// Token is the issued session token.
	Token string
}

// RegisterUserHandler handles the RegisterUserCommand.
type RegisterUserHandler struct {
	userRepo user.Repository
	hasher   PasswordHasher
	tokens   TokenIssuer
	log      *logger.Logger
}

// NewRegisterUserHandler creates a new RegisterUserHandler.
func NewRegisterUserHandler(
	userRepo user.Repository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	log *logger.Logger,
) *RegisterUserHandler {
	return &RegisterUserHandler{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
	}
}

// Handle executes the register user command.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	taken, err := h.userRepo.ExistsByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("register_user: check email: %w", err)
	}
	if taken {
		return nil, user.ErrEmailTaken
	}

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("register_user: hash password: %w", err)
	}

	id, err := shared.NewUserID(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("register_user: generate id: %w", err)
	}

	var loc *user.Location
	if cmd.Latitude != nil {
		loc, err = user.NewLocation(*cmd.Latitude, *cmd.Longitude, cmd.Address)
		if err != nil {
			return nil, err
		}
	}

	u, err := user.NewUser(user.NewUserParams{
		ID:           id,
		Email:        cmd.Email,
		PasswordHash: hash,
		Name:         cmd.Name,
		Phone:        cmd.Phone,
		Role:         cmd.Role,
		Location:     loc,
	})
	if err != nil {
		return nil, err
	}

	if err := h.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := h.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("register_user: issue token: %w", err)
	}

	h.log.Info("user registered",
		logger.UserID(u.ID.String()),
		logger.String("role", u.Role.String()),
	)

	return &RegisterUserResult{User: u, Token: token}, nil
}
