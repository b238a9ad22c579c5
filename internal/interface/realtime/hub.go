package realtime

import (
	"errors"
	"sync"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/chat"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HUB
// Concurrent map from user identity to the set of channels currently bound
// to it. A user may hold several channels at once (multiple tabs, devices);
// delivery goes to all of them. Bind, Unbind, and Deliver are safe to call
// concurrently.
// ══════════════════════════════════════════════════════════════════════════════

// ErrHubClosed indicates the hub is shut down.
var ErrHubClosed = errors.New("realtime: hub is closed")

// Hub routes events to bound channels.
type Hub struct {
	mu       sync.RWMutex
	channels map[shared.UserID]map[*Channel]struct{}
	closed   bool
	log      *logger.Logger
}

// NewHub creates a new Hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		channels: make(map[shared.UserID]map[*Channel]struct{}),
		log:      log,
	}
}

// Bind associates a channel with a user identity. A channel holds at most
// one binding; binding again under a different identity detaches the old
// one first.
func (h *Hub) Bind(id shared.UserID, ch *Channel) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}

	if prev := ch.userID; prev != "" && prev != id {
		h.detachLocked(prev, ch)
	}
	ch.userID = id

	set, ok := h.channels[id]
	if !ok {
		set = make(map[*Channel]struct{})
		h.channels[id] = set
	}
	set[ch] = struct{}{}

	h.log.Debug("channel bound", logger.UserID(id.String()), logger.Int("channels", len(set)))
	return nil
}

// Unbind removes the channel's binding. Unbinding an unbound channel is a
// no-op.
func (h *Hub) Unbind(ch *Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch.userID == "" {
		return
	}
	h.detachLocked(ch.userID, ch)
	ch.userID = ""
}

// detachLocked removes ch from the identity's set. Caller holds h.mu.
func (h *Hub) detachLocked(id shared.UserID, ch *Channel) {
	set, ok := h.channels[id]
	if !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(h.channels, id)
	}
}

// Deliver sends the event to every channel bound to the user. Fire and
// forget: a user with no bound channels, a closed hub, or a channel with a
// full send buffer all result in the event being dropped silently.
func (h *Hub) Deliver(id shared.UserID, event ServerEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	set, ok := h.channels[id]
	if !ok {
		return
	}

	for ch := range set {
		if !ch.trySend(event) {
			h.log.Warn("dropped realtime event, send buffer full",
				logger.UserID(id.String()),
				logger.String("event", event.Event),
			)
		}
	}
}

// ConnectionCount returns the number of channels bound to the user.
func (h *Hub) ConnectionCount(id shared.UserID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[id])
}

// Close shuts the hub down and closes every bound channel. Subsequent
// Bind calls fail and Deliver calls become no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for _, set := range h.channels {
		for ch := range set {
			ch.closeSend()
		}
	}
	h.channels = make(map[shared.UserID]map[*Channel]struct{})
}

// ══════════════════════════════════════════════════════════════════════════════
// PUSHER ADAPTER
// Adapts the Hub to the application layer's delivery interface.
// ══════════════════════════════════════════════════════════════════════════════

// Pusher implements command.RealtimePusher on top of a Hub.
type Pusher struct {
	hub *Hub
}

// NewPusher creates a new Pusher.
func NewPusher(hub *Hub) *Pusher {
	return &Pusher{hub: hub}
}

// PushNewRequest delivers a freshly created exam request to a writer.
func (p *Pusher) PushNewRequest(recipientID shared.UserID, r *request.ExamRequest) {
	p.hub.Deliver(recipientID, ServerEvent{Event: EventNewExamRequest, Data: NewRequestPayload(r)})
}

// PushRequestUpdate delivers a state change to the request's student.
func (p *Pusher) PushRequestUpdate(recipientID shared.UserID, r *request.ExamRequest) {
	p.hub.Deliver(recipientID, ServerEvent{Event: EventExamRequestUpdate, Data: NewRequestPayload(r)})
}

// PushNewMessage delivers a chat message to a request participant.
func (p *Pusher) PushNewMessage(recipientID shared.UserID, m *chat.Message) {
	p.hub.Deliver(recipientID, ServerEvent{Event: EventNewMessage, Data: NewMessagePayload(m)})
}
