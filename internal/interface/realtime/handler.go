package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/prasadk1999/scribe-connect-vision/internal/application/command"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/user"
	"github.com/prasadk1999/scribe-connect-vision/pkg/logger"
)

// dispatchTimeout bounds the handling of a single client event.
const dispatchTimeout = 10 * time.Second

// presenceRefreshPeriod is how often a live connection renews its presence
// key. Must stay well below the tracker's TTL.
const presenceRefreshPeriod = time.Minute

// TokenVerifier validates a session token and returns the identity it
// carries.
type TokenVerifier interface {
	Verify(token string) (shared.UserID, user.Role, error)
}

// MessageSender executes the send message command.
type MessageSender interface {
	Handle(ctx context.Context, cmd command.SendMessageCommand) (*command.SendMessageResult, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// WEBSOCKET HANDLER
// Upgrades GET /ws, binds the connection to the authenticated identity, and
// dispatches inbound events. The binding lives exactly as long as the
// connection.
// ══════════════════════════════════════════════════════════════════════════════

// Handler serves websocket connections.
type Handler struct {
	hub      *Hub
	tokens   TokenVerifier
	messages MessageSender
	presence user.PresenceTracker
	upgrader websocket.Upgrader
	log      *logger.Logger

	// refreshEvery is the presence renewal interval.
	refreshEvery time.Duration
}

// NewHandler creates a websocket Handler. presence may be nil when presence
// tracking is disabled.
func NewHandler(
	hub *Hub,
	tokens TokenVerifier,
	messages MessageSender,
	presence user.PresenceTracker,
	log *logger.Logger,
) *Handler {
	return &Handler{
		hub:      hub,
		tokens:   tokens,
		messages: messages,
		presence: presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browsers cannot set an Authorization header on websocket
			// upgrades, so the token arrives via query parameter and
			// origins cannot be restricted meaningfully here.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:          log,
		refreshEvery: presenceRefreshPeriod,
	}
}

// ServeHTTP upgrades the connection and runs its read loop until the peer
// disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, _, err := h.tokens.Verify(bearerToken(r))
	if err != nil {
		http.Error(w, "invalid or missing token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.log.Debug("websocket upgrade failed", logger.Err(err))
		return
	}

	ch := newChannel(conn, h.log)
	if err := h.hub.Bind(userID, ch); err != nil {
		_ = conn.Close()
		return
	}
	h.markOnline(r.Context(), userID)

	stopRefresh := make(chan struct{})
	go h.refreshPresence(userID, stopRefresh)

	h.log.Info("realtime channel connected", logger.UserID(userID.String()))

	go ch.writePump()
	ch.readPump(h.dispatch)

	h.hub.Unbind(ch)
	ch.closeSend()
	close(stopRefresh)

	// The user may hold other live channels (another tab or device);
	// presence clears only when the last one goes.
	if h.hub.ConnectionCount(userID) == 0 {
		h.markOffline(userID)
	}

	h.log.Info("realtime channel disconnected", logger.UserID(userID.String()))
}

// dispatch routes one client event. The channel is already bound, so the
// sender identity is always the authenticated one.
func (h *Handler) dispatch(ch *Channel, event ClientEvent) {
	switch event.Event {
	case EventJoin:
		// The channel was bound at upgrade time from the session token.
		// A client-supplied user id cannot rebind it.
	case EventSendMessage:
		h.handleSendMessage(ch, event.Data)
	default:
		h.log.Debug("unknown client event", logger.String("event", event.Event))
	}
}

func (h *Handler) handleSendMessage(ch *Channel, data json.RawMessage) {
	var payload sendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.log.Debug("malformed sendMessage payload", logger.Err(err))
		return
	}

	requestID, err := shared.NewRequestID(payload.ExamRequestID)
	if err != nil {
		h.log.Debug("invalid exam request id in sendMessage",
			logger.UserID(ch.userID.String()),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	_, err = h.messages.Handle(ctx, command.SendMessageCommand{
		ExamRequestID: requestID,
		SenderID:      ch.userID,
		Content:       payload.Content,
	})
	if err != nil {
		h.log.Warn("sendMessage failed",
			logger.UserID(ch.userID.String()),
			logger.RequestID(requestID.String()),
			logger.Err(err),
		)
	}
}

// markOnline records presence. Presence is advisory; failures are logged
// and ignored.
func (h *Handler) markOnline(ctx context.Context, id shared.UserID) {
	if h.presence == nil {
		return
	}
	if err := h.presence.MarkOnline(ctx, id); err != nil {
		h.log.Warn("mark online failed", logger.UserID(id.String()), logger.Err(err))
	}
}

// refreshPresence renews the presence key until the connection ends, so a
// connection that outlives the key TTL stays visible as online.
func (h *Handler) refreshPresence(id shared.UserID, stop <-chan struct{}) {
	if h.presence == nil {
		return
	}

	ticker := time.NewTicker(h.refreshEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := h.presence.MarkOnline(ctx, id); err != nil {
				h.log.Warn("presence refresh failed", logger.UserID(id.String()), logger.Err(err))
			}
			cancel()
		case <-stop:
			return
		}
	}
}

func (h *Handler) markOffline(id shared.UserID) {
	if h.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.presence.MarkOffline(ctx, id); err != nil {
		h.log.Warn("mark offline failed", logger.UserID(id.String()), logger.Err(err))
	}
}

// bearerToken extracts the session token from the Authorization header or,
// for browser websocket clients, the "token" query parameter.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
	}
	return r.URL.Query().Get("token")
}
