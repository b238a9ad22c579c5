package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasadk1999/scribe-connect-vision/internal/application/command"
	"github.com/prasadk1999/scribe-connect-vision/internal/application/query"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/chat"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/notification"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/user"
	"github.com/prasadk1999/scribe-connect-vision/internal/interface/realtime"
	"github.com/prasadk1999/scribe-connect-vision/pkg/logger"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory fakes. The full command/query stack runs on top of them, so
// these tests exercise real parsing, auth, and error mapping end to end.
// ─────────────────────────────────────────────────────────────────────────────

type memUserRepo struct {
	mu    sync.Mutex
	users map[shared.UserID]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[shared.UserID]*user.User)}
}

func (m *memUserRepo) Create(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id shared.UserID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *memUserRepo) UpdateAvailability(ctx context.Context, id shared.UserID, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Availability = available
	return nil
}

func (m *memUserRepo) UpdateLocation(ctx context.Context, id shared.UserID, loc *user.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Location = loc
	return nil
}

func (m *memUserRepo) FindAvailableWritersWithin(ctx context.Context, box shared.BoundingBox) ([]*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*user.User
	for _, u := range m.users {
		if !u.IsWriter() || !u.Availability || !u.HasLocation() {
			continue
		}
		if box.Contains(u.Location.Coordinates) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

type memRequestRepo struct {
	mu       sync.Mutex
	requests map[shared.RequestID]*request.ExamRequest
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{requests: make(map[shared.RequestID]*request.ExamRequest)}
}

func (m *memRequestRepo) Create(ctx context.Context, r *request.ExamRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.requests[r.ID] = &cp
	return nil
}

func (m *memRequestRepo) GetByID(ctx context.Context, id shared.RequestID) (*request.ExamRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, request.ErrRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRequestRepo) ResolveIfPending(ctx context.Context, id shared.RequestID, writerID shared.UserID, status request.Status) (*request.ExamRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, request.ErrRequestNotFound
	}
	if r.Status != request.StatusPending {
		return nil, request.ErrAlreadyResolved
	}
	if status == request.StatusAccepted {
		if err := r.Accept(writerID); err != nil {
			return nil, err
		}
	} else if err := r.Decline(); err != nil {
		return nil, err
	}
	cp := *r
	return &cp, nil
}

func (m *memRequestRepo) ListByStudent(ctx context.Context, studentID shared.UserID) ([]*request.ExamRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*request.ExamRequest
	for _, r := range m.requests {
		if r.StudentID == studentID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRequestRepo) ListByWriter(ctx context.Context, writerID shared.UserID) ([]*request.ExamRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*request.ExamRequest
	for _, r := range m.requests {
		if r.WriterID != nil && *r.WriterID == writerID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memNotificationRepo struct {
	mu            sync.Mutex
	notifications []*notification.Notification
}

func (m *memNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *memNotificationRepo) ListByRecipient(ctx context.Context, recipientID shared.UserID) ([]*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notification.Notification
	for _, n := range m.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotificationRepo) MarkRead(ctx context.Context, id string) error {
	return notification.ErrNotificationNotFound
}

func (m *memNotificationRepo) CountUnread(ctx context.Context, recipientID shared.UserID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

type memChatRepo struct {
	mu       sync.Mutex
	messages []*chat.Message
}

func (m *memChatRepo) Create(ctx context.Context, msg *chat.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memChatRepo) ListByRequest(ctx context.Context, requestID shared.RequestID) ([]*chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*chat.Message
	for _, msg := range m.messages {
		if msg.ExamRequestID == requestID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type nopPusher struct{}

func (nopPusher) PushNewRequest(shared.UserID, *request.ExamRequest)    {}
func (nopPusher) PushRequestUpdate(shared.UserID, *request.ExamRequest) {}
func (nopPusher) PushNewMessage(shared.UserID, *chat.Message)           {}

// ─────────────────────────────────────────────────────────────────────────────
// Test server
// ─────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	server   *Server
	userRepo *memUserRepo
	tokens   *JWTManager
	hub      *realtime.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userRepo := newMemUserRepo()
	requestRepo := newMemRequestRepo()
	notifRepo := &memNotificationRepo{}
	chatRepo := &memChatRepo{}
	pusher := nopPusher{}
	log := logger.Nop()

	tokens := NewJWTManager("test-secret", time.Hour)
	hasher := NewBcryptHasher(4)

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0

	hub := realtime.NewHub(log)
	t.Cleanup(hub.Close)
	sendMessage := command.NewSendMessageHandler(requestRepo, chatRepo, notifRepo, pusher, log)
	wsHandler := realtime.NewHandler(hub, tokens, sendMessage, nil, log)

	server := NewServer(cfg, Dependencies{
		RegisterUserHandler:     command.NewRegisterUserHandler(userRepo, hasher, tokens, log),
		LoginUserHandler:        command.NewLoginUserHandler(userRepo, hasher, tokens, log),
		CreateRequestHandler:    command.NewCreateRequestHandler(userRepo, requestRepo, notifRepo, pusher, 0.1, log),
		RespondRequestHandler:   command.NewRespondRequestHandler(requestRepo, notifRepo, pusher, log),
		SetAvailabilityHandler:  command.NewSetAvailabilityHandler(userRepo, log),
		GetRequestsHandler:      query.NewGetRequestsHandler(requestRepo),
		GetMessagesHandler:      query.NewGetMessagesHandler(requestRepo, chatRepo),
		GetNotificationsHandler: query.NewGetNotificationsHandler(notifRepo),
		FindWritersHandler:      query.NewFindWritersHandler(userRepo, nil, log),
		UserRepo:                userRepo,
		Tokens:                  tokens,
		WSHandler:               wsHandler,
		Logger:                  log,
	})

	return &testEnv{server: server, userRepo: userRepo, tokens: tokens, hub: hub}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// register creates a user through the API and returns its id and token.
func (e *testEnv) register(t *testing.T, email, role string, lat, lon *float64) (shared.UserID, string) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":     email,
		"password":  "secret123",
		"name":      "Test User",
		"phone":     "+77001234567",
		"role":      role,
		"latitude":  lat,
		"longitude": lon,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var payload struct {
		Data authResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))

	id, err := shared.NewUserID(payload.Data.User.ID)
	require.NoError(t, err)
	return id, payload.Data.Token
}

func ptr(v float64) *float64 { return &v }

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	_, token := env.register(t, "aliya@example.com", "student", nil, nil)
	assert.NotEmpty(t, token)

	t.Run("duplicate email", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
			"email":    "aliya@example.com",
			"password": "secret123",
			"name":     "Other",
			"phone":    "+77000000000",
			"role":     "student",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("login", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"email":    "aliya@example.com",
			"password": "secret123",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"email":    "aliya@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, "unauthorized", resp.Error.Code)
	})

	t.Run("short password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
			"email":    "new@example.com",
			"password": "abc",
			"name":     "New",
			"phone":    "+77000000001",
			"role":     "student",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("password never leaves the server", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"email":    "aliya@example.com",
			"password": "secret123",
		})
		assert.NotContains(t, rec.Body.String(), "passwordHash")
		assert.NotContains(t, rec.Body.String(), "PasswordHash")
	})
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/requests"},
		{http.MethodGet, "/api/v1/requests"},
		{http.MethodGet, "/api/v1/notifications"},
		{http.MethodGet, "/api/v1/writers/nearby"},
		{http.MethodPatch, "/api/v1/users/me/availability"},
	} {
		rec := env.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}

	t.Run("garbage token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/requests", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCreateRequest(t *testing.T) {
	env := newTestEnv(t)
	_, studentToken := env.register(t, "student@example.com", "student", ptr(10.0), ptr(20.0))
	_, writerToken := env.register(t, "writer@example.com", "writer", ptr(10.05), ptr(20.05))

	body := map[string]any{
		"examName": "Final Mathematics",
		"examDate": "2026-09-15T09:00:00Z",
		"duration": "2h",
		"subject":  "Mathematics",
	}

	t.Run("success", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/requests", studentToken, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var payload struct {
			Data requestDTO `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
		assert.Equal(t, "pending", payload.Data.Status)
		assert.Nil(t, payload.Data.WriterID)
		assert.Equal(t, "2026-09-15T09:00:00Z", payload.Data.ExamDate)
	})

	t.Run("bare hours duration", func(t *testing.T) {
		b := map[string]any{
			"examName": "Short Quiz",
			"examDate": "2026-09-16",
			"duration": "1.5",
			"subject":  "History",
		}
		rec := env.do(t, http.MethodPost, "/api/v1/requests", studentToken, b)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("bad exam date", func(t *testing.T) {
		b := map[string]any{
			"examName": "X", "examDate": "next tuesday", "duration": "2h", "subject": "Y",
		}
		rec := env.do(t, http.MethodPost, "/api/v1/requests", studentToken, b)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing subject", func(t *testing.T) {
		b := map[string]any{
			"examName": "X", "examDate": "2026-09-15T09:00:00Z", "duration": "2h",
		}
		rec := env.do(t, http.MethodPost, "/api/v1/requests", studentToken, b)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("writer cannot create", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/requests", writerToken, body)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRespondRequest(t *testing.T) {
	env := newTestEnv(t)
	_, studentToken := env.register(t, "student@example.com", "student", nil, nil)
	_, firstToken := env.register(t, "first@example.com", "writer", nil, nil)
	_, secondToken := env.register(t, "second@example.com", "writer", nil, nil)

	createRec := env.do(t, http.MethodPost, "/api/v1/requests", studentToken, map[string]any{
		"examName": "Final Physics",
		"examDate": "2026-10-01T09:00:00Z",
		"duration": "3h",
		"subject":  "Physics",
	})
	require.Equal(t, http.StatusOK, createRec.Code)

	var created struct {
		Data requestDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(createRec.Body).Decode(&created))
	path := "/api/v1/requests/" + created.Data.ID

	t.Run("unknown id is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/api/v1/requests/7ed99bd0-87b2-4dbb-a97b-596c3f29c49b",
			firstToken, map[string]any{"status": "accepted"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/api/v1/requests/not-a-uuid",
			firstToken, map[string]any{"status": "accepted"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid status is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, path, firstToken, map[string]any{"status": "cancelled"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("first accept wins", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, path, firstToken, map[string]any{"status": "accepted"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resolved struct {
			Data requestDTO `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resolved))
		assert.Equal(t, "accepted", resolved.Data.Status)
		require.NotNil(t, resolved.Data.WriterID)
	})

	t.Run("second accept is 409", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, path, secondToken, map[string]any{"status": "accepted"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.Equal(t, "conflict", resp.Error.Code)
	})
}

func TestFindWritersNearby(t *testing.T) {
	env := newTestEnv(t)
	_, studentToken := env.register(t, "student@example.com", "student", ptr(10.0), ptr(20.0))
	env.register(t, "near@example.com", "writer", ptr(10.05), ptr(20.05))
	env.register(t, "far@example.com", "writer", ptr(10.5), ptr(20.5))
	_, noLocToken := env.register(t, "nomad@example.com", "student", nil, nil)

	t.Run("returns only nearby writers", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/writers/nearby", studentToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var payload struct {
			Data []writerMatchDTO `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
		require.Len(t, payload.Data, 1)
		assert.Equal(t, "near@example.com", payload.Data[0].Writer.Email)
		assert.False(t, payload.Data[0].Online)
	})

	t.Run("caller without location is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/writers/nearby", noLocToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSetAvailability(t *testing.T) {
	env := newTestEnv(t)
	writerID, writerToken := env.register(t, "writer@example.com", "writer", nil, nil)
	_, studentToken := env.register(t, "student@example.com", "student", nil, nil)

	t.Run("writer toggles off", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/api/v1/users/me/availability", writerToken,
			map[string]any{"available": false})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		stored, err := env.userRepo.GetByID(context.Background(), writerID)
		require.NoError(t, err)
		assert.False(t, stored.Availability)
	})

	t.Run("student cannot toggle", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/api/v1/users/me/availability", studentToken,
			map[string]any{"available": true})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestNotificationsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, studentToken := env.register(t, "student@example.com", "student", ptr(10.0), ptr(20.0))
	_, writerToken := env.register(t, "writer@example.com", "writer", ptr(10.01), ptr(20.01))

	rec := env.do(t, http.MethodPost, "/api/v1/requests", studentToken, map[string]any{
		"examName": "Geometry Final",
		"examDate": "2026-09-15T09:00:00Z",
		"duration": "2h",
		"subject":  "Geometry",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// The matched writer got a durable request notification.
	rec = env.do(t, http.MethodGet, "/api/v1/notifications", writerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data struct {
			Notifications []notificationDTO `json:"notifications"`
			UnreadCount   int               `json:"unreadCount"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	require.Len(t, payload.Data.Notifications, 1)
	assert.Equal(t, "request", payload.Data.Notifications[0].Type)
	assert.Equal(t, 1, payload.Data.UnreadCount)
}

func TestGetMessagesAuthorization(t *testing.T) {
	env := newTestEnv(t)
	_, studentToken := env.register(t, "student@example.com", "student", nil, nil)
	_, strangerToken := env.register(t, "stranger@example.com", "writer", nil, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/requests", studentToken, map[string]any{
		"examName": "Algebra Final",
		"examDate": "2026-09-15T09:00:00Z",
		"duration": "2h",
		"subject":  "Algebra",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		Data requestDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	path := "/api/v1/requests/" + created.Data.ID + "/messages"

	t.Run("participant reads empty history", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, path, studentToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("stranger is 403", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, path, strangerToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
