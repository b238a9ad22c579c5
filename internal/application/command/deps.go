// Package command contains write operations (CQRS - Commands).
package command

import (
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/chat"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHARED DEPENDENCIES
// Interfaces implemented by the realtime layer. All delivery is best-effort
// and fire-and-forget: a recipient without bound channels simply receives
// nothing, and no method here may fail or block the persistence that
// triggered it. Durability lives in the notification store, not here.
// ══════════════════════════════════════════════════════════════════════════════

// RealtimePusher pushes events to a user's currently bound channels.
type RealtimePusher interface {
	// PushNewRequest delivers a freshly created exam request to a writer.
	PushNewRequest(recipientID shared.UserID, r *request.ExamRequest)

	// PushRequestUpdate delivers a state change to the request's student.
	PushRequestUpdate(recipientID shared.UserID, r *request.ExamRequest)

	// PushNewMessage delivers a chat message to a request participant.
	PushNewMessage(recipientID shared.UserID, m *chat.Message)
}
