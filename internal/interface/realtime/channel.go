package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/pkg/logger"
)

const (
	// writeWait is the allowed time for one write to the peer.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before it is
	// considered dead.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize limits inbound frames.
	maxMessageSize = 8 * 1024

	// sendBufferSize is the per-channel outbound queue. Events beyond it
	// are dropped, keeping delivery non-blocking.
	sendBufferSize = 64
)

// ══════════════════════════════════════════════════════════════════════════════
// CHANNEL
// One websocket connection. The hub writes into the buffered send queue;
// writePump drains it. readPump parses client events and hands them to the
// handler's dispatch function.
// ══════════════════════════════════════════════════════════════════════════════

// Channel wraps a single websocket connection.
type Channel struct {
	conn *websocket.Conn
	send chan ServerEvent
	log  *logger.Logger

	// userID is the bound identity. Guarded by the hub's mutex.
	userID shared.UserID

	closeOnce sync.Once
}

// newChannel creates a Channel around an upgraded connection.
func newChannel(conn *websocket.Conn, log *logger.Logger) *Channel {
	return &Channel{
		conn: conn,
		send: make(chan ServerEvent, sendBufferSize),
		log:  log,
	}
}

// trySend queues an event without blocking. Returns false when the buffer
// is full and the event was dropped.
func (ch *Channel) trySend(event ServerEvent) bool {
	select {
	case ch.send <- event:
		return true
	default:
		return false
	}
}

// closeSend closes the outbound queue, which terminates writePump.
func (ch *Channel) closeSend() {
	ch.closeOnce.Do(func() {
		close(ch.send)
	})
}

// writePump drains the send queue to the peer and keeps the connection
// alive with pings. One writePump per connection; it owns all writes.
func (ch *Channel) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = ch.conn.Close()
	}()

	for {
		select {
		case event, ok := <-ch.send:
			_ = ch.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ch.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ch.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = ch.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ch.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads client events until the connection drops and hands each
// one to dispatch. It returns when the peer disconnects.
func (ch *Channel) readPump(dispatch func(*Channel, ClientEvent)) {
	defer func() {
		_ = ch.conn.Close()
	}()

	ch.conn.SetReadLimit(maxMessageSize)
	_ = ch.conn.SetReadDeadline(time.Now().Add(pongWait))
	ch.conn.SetPongHandler(func(string) error {
		return ch.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := ch.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ch.log.Debug("websocket closed unexpectedly", logger.Err(err))
			}
			return
		}

		var event ClientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			ch.log.Debug("malformed client event", logger.Err(err))
			continue
		}
		dispatch(ch, event)
	}
}
