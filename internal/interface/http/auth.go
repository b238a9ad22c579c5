package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// PASSWORD HASHING
// ══════════════════════════════════════════════════════════════════════════════

// BcryptHasher implements password hashing with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher. cost <= 0 selects the bcrypt default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hashed), nil
}

// Compare reports whether the password matches the hash.
func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ══════════════════════════════════════════════════════════════════════════════
// JWT SESSION TOKENS
// HS256-signed tokens carrying the authenticated user id and role.
// ══════════════════════════════════════════════════════════════════════════════

// ErrInvalidToken indicates a missing, malformed, or expired token.
var ErrInvalidToken = errors.New("auth: invalid token")

// sessionClaims are the JWT claims carried by session tokens.
type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies session tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTManager creates a JWTManager.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token for the user.
func (m *JWTManager) Issue(id shared.UserID, role user.Role) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns the identity it carries.
func (m *JWTManager) Verify(tokenString string) (shared.UserID, user.Role, error) {
	if tokenString == "" {
		return "", "", ErrInvalidToken
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}

	id, err := shared.NewUserID(claims.Subject)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	role := user.Role(claims.Role)
	if !role.IsValid() {
		return "", "", ErrInvalidToken
	}
	return id, role, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

type identityContextKey struct{}

// Identity is the authenticated caller extracted from the bearer token.
type Identity struct {
	UserID shared.UserID
	Role   user.Role
}

// identityFrom returns the caller identity stored by requireAuth.
func identityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// requireAuth rejects requests without a valid bearer token and stores the
// authenticated identity in the request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		userID, role, err := s.deps.Tokens.Verify(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey{}, Identity{UserID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
