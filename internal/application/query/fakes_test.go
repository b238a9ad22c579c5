package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/chat"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/notification"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/user"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory fakes, read paths only.
// ─────────────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	users []*user.User
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	f.users = append(f.users, u)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id shared.UserID) (*user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (f *fakeUserRepo) UpdateAvailability(ctx context.Context, id shared.UserID, available bool) error {
	return nil
}

func (f *fakeUserRepo) UpdateLocation(ctx context.Context, id shared.UserID, loc *user.Location) error {
	return nil
}

func (f *fakeUserRepo) FindAvailableWritersWithin(ctx context.Context, box shared.BoundingBox) ([]*user.User, error) {
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
	return false, nil
}

type fakePresence struct {
	online map[shared.UserID]bool
	fail   bool
}

func (f *fakePresence) MarkOnline(ctx context.Context, id shared.UserID) error  { return nil }
func (f *fakePresence) MarkOffline(ctx context.Context, id shared.UserID) error { return nil }

func (f *fakePresence) IsOnline(ctx context.Context, id shared.UserID) (bool, error) {
	return f.online[id], nil
}

func (f *fakePresence) OnlineStates(ctx context.Context, ids []shared.UserID) (map[shared.UserID]bool, error) {
	if f.fail {
		return nil, errors.New("presence backend down")
	}
	out := make(map[shared.UserID]bool, len(ids))
	for _, id := range ids {
		out[id] = f.online[id]
	}
	return out, nil
}

type fakeRequestRepo struct {
	requests []*request.ExamRequest
}

func (f *fakeRequestRepo) Create(ctx context.Context, r *request.ExamRequest) error {
	f.requests = append(f.requests, r)
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id shared.RequestID) (*request.ExamRequest, error) {
	for _, r := range f.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, request.ErrRequestNotFound
}

func (f *fakeRequestRepo) ResolveIfPending(ctx context.Context, id shared.RequestID, writerID shared.UserID, status request.Status) (*request.ExamRequest, error) {
	return nil, request.ErrRequestNotFound
}

func (f *fakeRequestRepo) ListByStudent(ctx context.Context, studentID shared.UserID) ([]*request.ExamRequest, error) {
	var out []*request.ExamRequest
	for _, r := range f.requests {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListByWriter(ctx context.Context, writerID shared.UserID) ([]*request.ExamRequest, error) {
	var out []*request.ExamRequest
	for _, r := range f.requests {
		if r.WriterID != nil && *r.WriterID == writerID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeChatRepo struct {
	messages []*chat.Message
}

func (f *fakeChatRepo) Create(ctx context.Context, m *chat.Message) error {
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeChatRepo) ListByRequest(ctx context.Context, requestID shared.RequestID) ([]*chat.Message, error) {
	var out []*chat.Message
	for _, m := range f.messages {
		if m.ExamRequestID == requestID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	notifications []*notification.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID shared.UserID) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for _, n := range f.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id string) error {
	for _, n := range f.notifications {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, recipientID shared.UserID) (int, error) {
	count := 0
	for _, n := range f.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Builders
// ─────────────────────────────────────────────────────────────────────────────

func newUserID(t *testing.T) shared.UserID {
	t.Helper()
	id, err := shared.NewUserID(uuid.NewString())
	require.NoError(t, err)
	return id
}

func buildWriter(t *testing.T, lat, lon float64, available bool) *user.User {
	t.Helper()
	loc, err := user.NewLocation(lat, lon, "Test Street 1")
	require.NoError(t, err)

	id := newUserID(t)
	u, err := user.NewUser(user.NewUserParams{
		ID:           id,
		Email:        id.String() + "@example.com",
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		Name:         "Writer",
		Phone:        "+77001234567",
		Role:         user.RoleWriter,
		Location:     loc,
	})
	require.NoError(t, err)
	require.NoError(t, u.SetAvailability(available))
	return u
}

func buildRequest(t *testing.T, studentID shared.UserID) *request.ExamRequest {
	t.Helper()
	id, err := shared.NewRequestID(uuid.NewString())
	require.NoError(t, err)

	r, err := request.NewExamRequest(request.NewExamRequestParams{
		ID:        id,
		StudentID: studentID,
		ExamName:  "History Final",
		ExamDate:  time.Date(2026, 12, 10, 14, 0, 0, 0, time.UTC),
		Duration:  2 * time.Hour,
		Subject:   "History",
	})
	require.NoError(t, err)
	return r
}
