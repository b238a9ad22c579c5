package command

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/chat"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/notification"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/user"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory fakes. All are safe for concurrent use so race-oriented tests
// can hammer them from multiple goroutines.
// ─────────────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[shared.UserID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[shared.UserID]*user.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id shared.UserID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (f *fakeUserRepo) UpdateAvailability(ctx context.Context, id shared.UserID, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Availability = available
	return nil
}

func (f *fakeUserRepo) UpdateLocation(ctx context.Context, id shared.UserID, loc *user.Location) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Location = loc
	return nil
}

func (f *fakeUserRepo) FindAvailableWritersWithin(ctx context.Context, box shared.BoundingBox) ([]*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*user.User
	for _, u := range f.users {
		if !u.IsWriter() || !u.Availability || !u.HasLocation() {
			continue
		}
		if box.Contains(u.Location.Coordinates) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[shared.RequestID]*request.ExamRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[shared.RequestID]*request.ExamRequest)}
}

func (f *fakeRequestRepo) Create(ctx context.Context, r *request.ExamRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.requests[r.ID] = &cp
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id shared.RequestID) (*request.ExamRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, request.ErrRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRequestRepo) ResolveIfPending(ctx context.Context, id shared.RequestID, writerID shared.UserID, status request.Status) (*request.ExamRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
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
	} else {
		if err := r.Decline(); err != nil {
			return nil, err
		}
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRequestRepo) ListByStudent(ctx context.Context, studentID shared.UserID) ([]*request.ExamRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*request.ExamRequest
	for _, r := range f.requests {
		if r.StudentID == studentID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListByWriter(ctx context.Context, writerID shared.UserID) ([]*request.ExamRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*request.ExamRequest
	for _, r := range f.requests {
		if r.WriterID != nil && *r.WriterID == writerID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*notification.Notification
	failAll bool
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return shared.WrapError("notification", "Create", shared.ErrStorageUnavailable, "storage down", nil)
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID shared.UserID) ([]*notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*notification.Notification
	for _, n := range f.created {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.created {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, recipientID shared.UserID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.created {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) recipients() []shared.UserID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]shared.UserID, 0, len(f.created))
	for _, n := range f.created {
		out = append(out, n.RecipientID)
	}
	return out
}

type fakeChatRepo struct {
	mu       sync.Mutex
	messages []*chat.Message
}

func (f *fakeChatRepo) Create(ctx context.Context, m *chat.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeChatRepo) ListByRequest(ctx context.Context, requestID shared.RequestID) ([]*chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*chat.Message
	for _, m := range f.messages {
		if m.ExamRequestID == requestID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakePusher struct {
	mu             sync.Mutex
	newRequests    []shared.UserID
	requestUpdates []shared.UserID
	newMessages    []shared.UserID
}

func (f *fakePusher) PushNewRequest(recipientID shared.UserID, r *request.ExamRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newRequests = append(f.newRequests, recipientID)
}

func (f *fakePusher) PushRequestUpdate(recipientID shared.UserID, r *request.ExamRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestUpdates = append(f.requestUpdates, recipientID)
}

func (f *fakePusher) PushNewMessage(recipientID shared.UserID, m *chat.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newMessages = append(f.newMessages, recipientID)
}

// ─────────────────────────────────────────────────────────────────────────────
// Builders
// ─────────────────────────────────────────────────────────────────────────────

func buildUser(t *testing.T, role user.Role, loc *user.Location) *user.User {
	t.Helper()
	id, err := shared.NewUserID(uuid.NewString())
	require.NoError(t, err)

	u, err := user.NewUser(user.NewUserParams{
		ID:           id,
		Email:        id.String() + "@example.com",
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		Name:         "Test User",
		Phone:        "+77001234567",
		Role:         role,
		Location:     loc,
	})
	require.NoError(t, err)
	return u
}

func buildLocation(t *testing.T, lat, lon float64) *user.Location {
	t.Helper()
	loc, err := user.NewLocation(lat, lon, "Test Street 1")
	require.NoError(t, err)
	return loc
}
