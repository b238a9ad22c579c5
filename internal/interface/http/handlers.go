package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prasadk1999/scribe-connect-vision/internal/application/command"
	"github.com/prasadk1999/scribe-connect-vision/internal/application/query"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/chat"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/notification"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/user"
	"github.com/prasadk1999/scribe-connect-vision/pkg/logger"
	"github.com/prasadk1999/scribe-connect-vision/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// Domain error taxonomy to HTTP status codes.
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps a domain error to the HTTP response.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsConflict(err):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case shared.IsForbidden(err):
		writeJSONError(w, http.StatusForbidden, "forbidden", err.Error())
	case shared.IsStorage(err):
		writeJSONError(w, http.StatusServiceUnavailable, "storage_unavailable", "storage is temporarily unavailable")
	default:
		s.logger.Error("unhandled error",
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
			logger.Err(err),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DTOs
// ══════════════════════════════════════════════════════════════════════════════

// userDTO is the wire form of a user. The password hash never leaves the
// server.
type userDTO struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Phone        string       `json:"phone"`
	Role         string       `json:"role"`
	Availability bool         `json:"availability"`
	Location     *locationDTO `json:"location,omitempty"`
	CreatedAt    string       `json:"createdAt"`
}

type locationDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

func toUserDTO(u *user.User) userDTO {
	dto := userDTO{
		ID:           u.ID.String(),
		Email:        u.Email,
		Name:         u.Name,
		Phone:        u.Phone,
		Role:         u.Role.String(),
		Availability: u.Availability,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
	}
	if u.Location != nil {
		dto.Location = &locationDTO{
			Latitude:  u.Location.Coordinates.Latitude,
			Longitude: u.Location.Coordinates.Longitude,
			Address:   u.Location.Address,
		}
	}
	return dto
}

// requestDTO is the wire form of an exam request.
type requestDTO struct {
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

func toRequestDTO(r *request.ExamRequest) requestDTO {
	dto := requestDTO{
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
		dto.WriterID = &w
	}
	return dto
}

func toRequestDTOs(requests []*request.ExamRequest) []requestDTO {
	dtos := make([]requestDTO, 0, len(requests))
	for _, r := range requests {
		dtos = append(dtos, toRequestDTO(r))
	}
	return dtos
}

// messageDTO is the wire form of a chat message.
type messageDTO struct {
	ID            string `json:"id"`
	ExamRequestID string `json:"examRequestId"`
	SenderID      string `json:"senderId"`
	Content       string `json:"content"`
	CreatedAt     string `json:"createdAt"`
}

func toMessageDTO(m *chat.Message) messageDTO {
	return messageDTO{
		ID:            m.ID,
		ExamRequestID: m.ExamRequestID.String(),
		SenderID:      m.SenderID.String(),
		Content:       m.Content,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}

// notificationDTO is the wire form of a notification.
type notificationDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

func toNotificationDTO(n *notification.Notification) notificationDTO {
	return notificationDTO{
		ID:        n.ID,
		Type:      n.Type.String(),
		Content:   n.Content,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type registerRequest struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	Role      string   `json:"role"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
}

type authResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

// handleRegister serves POST /api/v1/auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}

	result, err := s.deps.RegisterUserHandler.Handle(r.Context(), command.RegisterUserCommand{
		Email:     body.Email,
		Password:  body.Password,
		Name:      body.Name,
		Phone:     body.Phone,
		Role:      user.Role(body.Role),
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		Address:   body.Address,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Token: result.Token,
		User:  toUserDTO(result.User),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin serves POST /api/v1/auth/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}

	result, err := s.deps.LoginUserHandler.Handle(r.Context(), command.LoginUserCommand{
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token: result.Token,
		User:  toUserDTO(result.User),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// EXAM REQUEST HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type createRequestBody struct {
	ExamName string `json:"examName"`
	ExamDate string `json:"examDate"`
	Duration string `json:"duration"`
	Subject  string `json:"subject"`
}

// handleCreateRequest serves POST /api/v1/requests. The student identity
// comes from the session, never from the body.
func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	var body createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}

	examDate, err := timeutil.ParseExamDate(body.ExamDate)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	duration, err := timeutil.ParseDuration(body.Duration)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	result, err := s.deps.CreateRequestHandler.Handle(r.Context(), command.CreateRequestCommand{
		StudentID: identity.UserID,
		ExamName:  body.ExamName,
		ExamDate:  examDate,
		Duration:  duration,
		Subject:   body.Subject,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestDTO(result.Request))
}

type respondRequestBody struct {
	Status string `json:"status"`
}

// handleRespondRequest serves PATCH /api/v1/requests/{id}. The responding
// writer is the session identity. 404 when the id is unknown, 409 when the
// request is already resolved.
func (s *Server) handleRespondRequest(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	requestID, err := shared.NewRequestID(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "exam request not found")
		return
	}

	var body respondRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}

	result, err := s.deps.RespondRequestHandler.Handle(r.Context(), command.RespondRequestCommand{
		RequestID: requestID,
		WriterID:  identity.UserID,
		Status:    request.Status(body.Status),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestDTO(result.Request))
}

// handleGetRequests serves GET /api/v1/requests: the caller's requests,
// listed by their session role.
func (s *Server) handleGetRequests(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	result, err := s.deps.GetRequestsHandler.Handle(r.Context(), query.GetRequestsQuery{
		UserID: identity.UserID,
		Role:   identity.Role,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestDTOs(result.Requests))
}

// handleGetMessages serves GET /api/v1/requests/{id}/messages.
func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	requestID, err := shared.NewRequestID(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "exam request not found")
		return
	}

	result, err := s.deps.GetMessagesHandler.Handle(r.Context(), query.GetMessagesQuery{
		ExamRequestID: requestID,
		CallerID:      identity.UserID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	dtos := make([]messageDTO, 0, len(result.Messages))
	for _, m := range result.Messages {
		dtos = append(dtos, toMessageDTO(m))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION, MATCHING, AND AVAILABILITY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetNotifications serves GET /api/v1/notifications.
func (s *Server) handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	result, err := s.deps.GetNotificationsHandler.Handle(r.Context(), query.GetNotificationsQuery{
		UserID: identity.UserID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	dtos := make([]notificationDTO, 0, len(result.Notifications))
	for _, n := range result.Notifications {
		dtos = append(dtos, toNotificationDTO(n))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": dtos,
		"unreadCount":   result.UnreadCount,
	})
}

type writerMatchDTO struct {
	Writer userDTO `json:"writer"`
	Online bool    `json:"online"`
}

// handleFindWriters serves GET /api/v1/writers/nearby. The search origin is
// the caller's stored location.
func (s *Server) handleFindWriters(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	caller, err := s.deps.UserRepo.GetByID(r.Context(), identity.UserID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if !caller.HasLocation() {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "no stored location to search from")
		return
	}

	result, err := s.deps.FindWritersHandler.Handle(r.Context(), query.FindWritersQuery{
		Origin: caller.Location.Coordinates,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	dtos := make([]writerMatchDTO, 0, len(result.Writers))
	for _, m := range result.Writers {
		dtos = append(dtos, writerMatchDTO{
			Writer: toUserDTO(m.Writer),
			Online: m.Online,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

type setAvailabilityBody struct {
	Available bool `json:"available"`
}

// handleSetAvailability serves PATCH /api/v1/users/me/availability.
func (s *Server) handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	var body setAvailabilityBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}

	result, err := s.deps.SetAvailabilityHandler.Handle(r.Context(), command.SetAvailabilityCommand{
		WriterID:  identity.UserID,
		Available: body.Available,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserDTO(result.User))
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth serves GET /health: liveness only.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady serves GET /ready: checks infrastructure reachability.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	ready := true

	if s.deps.Database != nil {
		if err := s.deps.Database.Ping(r.Context()); err != nil {
			checks["database"] = err.Error()
			ready = false
		} else {
			checks["database"] = "ok"
		}
	}
	if s.deps.Redis != nil {
		if err := s.deps.Redis.Ping(r.Context()); err != nil {
			checks["redis"] = err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, checks)
}
