// Package realtime implements the websocket channel router: it binds
// connections to user identities and delivers events to whoever is
// currently connected. Delivery is best-effort and at-most-once; durability
// lives in the notification store, not here.
package realtime

import (
	"encoding/json"
	"time"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/chat"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// WIRE PROTOCOL
// ══════════════════════════════════════════════════════════════════════════════

// Server-to-client event names.
const (
	// EventNewExamRequest carries a freshly created exam request to a
	// matched writer.
	EventNewExamRequest = "newExamRequest"

	// EventExamRequestUpdate carries a state change to the student.
	EventExamRequestUpdate = "examRequestUpdate"

	// EventNewMessage carries a chat message to a request participant.
	EventNewMessage = "newMessage"
)

// Client-to-server event names.
const (
	// EventJoin asks to bind the connection to the session identity.
	// The binding always uses the authenticated identity; any user id in
	// the payload is ignored.
	EventJoin = "join"

	// EventSendMessage posts a chat message into an exam request.
	EventSendMessage = "sendMessage"
)

// ServerEvent is the envelope for server-to-client events.
type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ClientEvent is the envelope for client-to-server events. Data is decoded
// per event name.
type ClientEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// sendMessagePayload is the client payload for EventSendMessage. The
// senderId field is accepted for wire compatibility but never trusted; the
// authenticated identity always wins.
type sendMessagePayload struct {
	ExamRequestID string `json:"examRequestId"`
	SenderID      string `json:"senderId,omitempty"`
	Content       string `json:"content"`
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT PAYLOADS
// ══════════════════════════════════════════════════════════════════════════════

// RequestPayload is the wire form of an exam request.
type RequestPayload struct {
	ID        string  `json:"id"`
	StudentID string  `json:"studentId"`
	WriterID  *string `json:"writerId"`
	ExamName  string  `json:"examName"`
	ExamDate  string  `json:"examDate"`
	Duration  string  `json:"duration"`
	Subject   string  `json:"subject"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// NewRequestPayload maps an exam request to its wire form.
func NewRequestPayload(r *request.ExamRequest) RequestPayload {
	p := RequestPayload{
		ID:        r.ID.String(),
		StudentID: r.StudentID.String(),
		ExamName:  r.ExamName,
		ExamDate:  timeutil.FormatExamDate(r.ExamDate),
		Duration:  timeutil.FormatDuration(r.Duration),
		Subject:   r.Subject,
		Status:    r.Status.String(),
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
	if r.WriterID != nil {
		w := r.WriterID.String()
		p.WriterID = &w
	}
	return p
}

// MessagePayload is the wire form of a chat message.
type MessagePayload struct {
	ID            string `json:"id"`
	ExamRequestID string `json:"examRequestId"`
	SenderID      string `json:"senderId"`
	Content       string `json:"content"`
	CreatedAt     string `json:"createdAt"`
}

// NewMessagePayload maps a chat message to its wire form.
func NewMessagePayload(m *chat.Message) MessagePayload {
	return MessagePayload{
		ID:            m.ID,
		ExamRequestID: m.ExamRequestID.String(),
		SenderID:      m.SenderID.String(),
		Content:       m.Content,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}
