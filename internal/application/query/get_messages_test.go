package query

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/chat"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

func seedMessage(t *testing.T, repo *fakeChatRepo, requestID shared.RequestID, senderID shared.UserID, content string) {
	t.Helper()
	m, err := chat.NewMessage(chat.NewMessageParams{
		ID:            uuid.NewString(),
		ExamRequestID: requestID,
		SenderID:      senderID,
		Content:       content,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), m))
}

func TestGetMessages(t *testing.T) {
	requestRepo := &fakeRequestRepo{}
	chatRepo := &fakeChatRepo{}

	studentID := newUserID(t)
	writerID := newUserID(t)
	req := buildRequest(t, studentID)
	require.NoError(t, req.Accept(writerID))
	requestRepo.requests = append(requestRepo.requests, req)

	seedMessage(t, chatRepo, req.ID, studentID, "Hello")
	seedMessage(t, chatRepo, req.ID, writerID, "Hi, I accepted your request")

	h := NewGetMessagesHandler(requestRepo, chatRepo)

	t.Run("student reads", func(t *testing.T) {
		result, err := h.Handle(context.Background(), GetMessagesQuery{
			ExamRequestID: req.ID,
			CallerID:      studentID,
		})
		require.NoError(t, err)
		require.Len(t, result.Messages, 2)
		assert.Equal(t, "Hello", result.Messages[0].Content)
	})

	t.Run("bound writer reads", func(t *testing.T) {
		result, err := h.Handle(context.Background(), GetMessagesQuery{
			ExamRequestID: req.ID,
			CallerID:      writerID,
		})
		require.NoError(t, err)
		assert.Len(t, result.Messages, 2)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		_, err := h.Handle(context.Background(), GetMessagesQuery{
			ExamRequestID: req.ID,
			CallerID:      newUserID(t),
		})
		assert.ErrorIs(t, err, chat.ErrNotParticipant)
	})

	t.Run("unknown request", func(t *testing.T) {
		id, err := shared.NewRequestID(uuid.NewString())
		require.NoError(t, err)
		_, err = h.Handle(context.Background(), GetMessagesQuery{
			ExamRequestID: id,
			CallerID:      studentID,
		})
		assert.ErrorIs(t, err, request.ErrRequestNotFound)
	})
}
