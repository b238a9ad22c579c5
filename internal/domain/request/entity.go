// Package request contains the exam-request domain model and its state
// machine: a student creates a pending request, and at most one writer may
// bind to it by accepting. Terminal requests are kept for history, never
// deleted.
package request

import (
	"strings"
	"time"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status represents the lifecycle state of an exam request.
//
// Transitions:
//
//	pending → accepted (binds a writer)
//	pending → declined
//
// accepted and declined are terminal.
type Status string

const (
	// StatusPending - created, awaiting a writer's response.
	StatusPending Status = "pending"

	// StatusAccepted - a writer has bound to the request.
	StatusAccepted Status = "accepted"

	// StatusDeclined - declined without binding a writer.
	StatusDeclined Status = "declined"
)

// IsValid checks that the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ══════════════════════════════════════════════════════════════════════════════
// EXAM REQUEST ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// ExamRequest represents a student's request for a writer to scribe an exam.
//
// Invariant: WriterID is non-nil exactly when Status is accepted.
type ExamRequest struct {
	// ID - unique request identifier.
	ID shared.RequestID

	// StudentID - the student who created the request.
	StudentID shared.UserID

	// WriterID - the writer bound to the request. Nil until accepted.
	WriterID *shared.UserID

	// ExamName - name of the exam.
	ExamName string

	// ExamDate - scheduled date of the exam, UTC.
	ExamDate time.Time

	// Duration - exam duration.
	Duration time.Duration

	// Subject - exam subject.
	Subject string

	// Status - current lifecycle state.
	Status Status

	// CreatedAt - creation time.
	CreatedAt time.Time

	// UpdatedAt - time of the last state change.
	UpdatedAt time.Time
}

// NewExamRequestParams contains parameters for creating an exam request.
type NewExamRequestParams struct {
	ID        shared.RequestID
	StudentID shared.UserID
	ExamName  string
	ExamDate  time.Time
	Duration  time.Duration
	Subject   string
}

// NewExamRequest creates a new pending exam request with validation.
func NewExamRequest(params NewExamRequestParams) (*ExamRequest, error) {
	if !params.ID.IsValid() {
		return nil, ErrInvalidRequestID
	}
	if !params.StudentID.IsValid() {
		return nil, ErrInvalidStudentID
	}
	if strings.TrimSpace(params.ExamName) == "" {
		return nil, ErrEmptyExamName
	}
	if params.ExamDate.IsZero() {
		return nil, ErrEmptyExamDate
	}
	if params.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if strings.TrimSpace(params.Subject) == "" {
		return nil, ErrEmptySubject
	}

	now := time.Now().UTC()

	return &ExamRequest{
		ID:        params.ID,
		StudentID: params.StudentID,
		WriterID:  nil,
		ExamName:  strings.TrimSpace(params.ExamName),
		ExamDate:  params.ExamDate.UTC(),
		Duration:  params.Duration,
		Subject:   strings.TrimSpace(params.Subject),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE MACHINE
// ══════════════════════════════════════════════════════════════════════════════

// Accept binds the writer to the request and moves it to accepted.
// Fails with ErrAlreadyResolved when the request is no longer pending.
//
// Note: in-memory transition only. The persistence layer must additionally
// condition its UPDATE on status still being pending, since concurrent
// writers may race on the same request.
func (r *ExamRequest) Accept(writerID shared.UserID) error {
	if !writerID.IsValid() {
		return ErrInvalidWriterID
	}
	if r.Status != StatusPending {
		return ErrAlreadyResolved
	}
	r.Status = StatusAccepted
	r.WriterID = &writerID
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Decline moves the request to declined. WriterID stays nil.
// Fails with ErrAlreadyResolved when the request is no longer pending.
func (r *ExamRequest) Decline() error {
	if r.Status != StatusPending {
		return ErrAlreadyResolved
	}
	r.Status = StatusDeclined
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// IsPending reports whether the request is still awaiting a response.
func (r *ExamRequest) IsPending() bool {
	return r.Status == StatusPending
}

// HasWriter reports whether a writer is bound to the request.
func (r *ExamRequest) HasWriter() bool {
	return r.WriterID != nil
}

// Participants returns the identities allowed to exchange messages on this
// request: the owning student and, once accepted, the bound writer.
func (r *ExamRequest) Participants() []shared.UserID {
	ids := []shared.UserID{r.StudentID}
	if r.WriterID != nil {
		ids = append(ids, *r.WriterID)
	}
	return ids
}

// IsParticipant reports whether the user is bound to this request.
func (r *ExamRequest) IsParticipant(id shared.UserID) bool {
	if r.StudentID == id {
		return true
	}
	return r.WriterID != nil && *r.WriterID == id
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidRequestID - malformed request identifier.
	ErrInvalidRequestID = shared.NewDomainError("request", "Validate", shared.ErrInvalidID, "invalid request id")

	// ErrInvalidStudentID - malformed student identifier.
	ErrInvalidStudentID = shared.NewDomainError("request", "Validate", shared.ErrInvalidID, "invalid student id")

	// ErrInvalidWriterID - malformed writer identifier.
	ErrInvalidWriterID = shared.NewDomainError("request", "Accept", shared.ErrInvalidID, "invalid writer id")

	// ErrEmptyExamName - exam name is required.
	ErrEmptyExamName = shared.NewDomainError("request", "Validate", shared.ErrEmptyValue, "exam name cannot be empty")

	// ErrEmptyExamDate - exam date is required.
	ErrEmptyExamDate = shared.NewDomainError("request", "Validate", shared.ErrEmptyValue, "exam date cannot be empty")

	// ErrInvalidDuration - duration must be positive.
	ErrInvalidDuration = shared.NewDomainError("request", "Validate", shared.ErrInvalidInput, "duration must be positive")

	// ErrEmptySubject - subject is required.
	ErrEmptySubject = shared.NewDomainError("request", "Validate", shared.ErrEmptyValue, "subject cannot be empty")

	// ErrInvalidStatus - status must be accepted or declined.
	ErrInvalidStatus = shared.NewDomainError("request", "SetStatus", shared.ErrInvalidInput, "status must be accepted or declined")

	// ErrRequestNotFound - request does not exist.
	ErrRequestNotFound = shared.NewDomainError("request", "Find", shared.ErrNotFound, "exam request not found")

	// ErrAlreadyResolved - request has already been accepted or declined.
	ErrAlreadyResolved = shared.NewDomainError("request", "SetStatus", shared.ErrAlreadyResolved, "exam request already resolved")
)
