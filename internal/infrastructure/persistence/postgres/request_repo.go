package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/prasadk1999/scribe-connect-vision/internal/domain/request"
	"github.com/prasadk1999/scribe-connect-vision/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXAM REQUEST REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// RequestRepository implements request.Repository for PostgreSQL.
type RequestRepository struct {
	conn *Connection
}

// NewRequestRepository creates a new RequestRepository.
func NewRequestRepository(conn *Connection) *RequestRepository {
	return &RequestRepository{conn: conn}
}

const requestColumns = `
	id, student_id, writer_id, exam_name, exam_date, duration_seconds,
	subject, status, created_at, updated_at
`

// Create persists a new exam request.
func (r *RequestRepository) Create(ctx context.Context, req *request.ExamRequest) error {
	var writerID *string
	if req.WriterID != nil {
		s := req.WriterID.String()
		writerID = &s
	}

	_, err := r.conn.Exec(ctx, `
		INSERT INTO exam_requests (
			id, student_id, writer_id, exam_name, exam_date, duration_seconds,
			subject, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		req.ID.String(),
		req.StudentID.String(),
		writerID,
		req.ExamName,
		req.ExamDate,
		int64(req.Duration.Seconds()),
		req.Subject,
		req.Status.String(),
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return shared.WrapError("request", "Create", shared.ErrStorageUnavailable, "insert exam request", err)
	}
	return nil
}

// GetByID returns an exam request by ID.
func (r *RequestRepository) GetByID(ctx context.Context, id shared.RequestID) (*request.ExamRequest, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM exam_requests
		WHERE id = $1
	`, id.String())

	req, err := scanRequest(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, request.ErrRequestNotFound
		}
		return nil, shared.WrapError("request", "GetByID", shared.ErrStorageUnavailable, "query exam request", err)
	}
	return req, nil
}

// ResolveIfPending performs the single conditional write out of the pending
// state. The status predicate in the WHERE clause is what closes the
// concurrent-accept race: the update matches at most once per request
// lifetime, so every competing caller after the winner sees zero rows.
func (r *RequestRepository) ResolveIfPending(ctx context.Context, id shared.RequestID, writerID shared.UserID, status request.Status) (*request.ExamRequest, error) {
	if !status.IsTerminal() {
		return nil, request.ErrInvalidStatus
	}

	// Writer binds on acceptance only. On decline the column stays NULL,
	// enforced by the table's CHECK constraint as well.
	var boundWriter *string
	if status == request.StatusAccepted {
		s := writerID.String()
		boundWriter = &s
	}

	row := r.conn.QueryRow(ctx, `
		UPDATE exam_requests
		SET status = $2, writer_id = $3, updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+requestColumns+`
	`, id.String(), status.String(), boundWriter)

	req, err := scanRequest(row)
	if err == nil {
		return req, nil
	}
	if !IsNoRows(err) {
		return nil, shared.WrapError("request", "ResolveIfPending", shared.ErrStorageUnavailable, "update exam request", err)
	}

	// Zero rows: either the request never existed or it is already
	// terminal. Distinguish so the caller can map 404 vs 409.
	var exists bool
	if err := r.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM exam_requests WHERE id = $1)`,
		id.String(),
	).Scan(&exists); err != nil {
		return nil, shared.WrapError("request", "ResolveIfPending", shared.ErrStorageUnavailable, "query existence", err)
	}
	if !exists {
		return nil, request.ErrRequestNotFound
	}
	return nil, request.ErrAlreadyResolved
}

// ListByStudent returns the student's requests, newest first.
func (r *RequestRepository) ListByStudent(ctx context.Context, studentID shared.UserID) ([]*request.ExamRequest, error) {
	return r.list(ctx, `
		SELECT `+requestColumns+`
		FROM exam_requests
		WHERE student_id = $1
		ORDER BY created_at DESC
	`, studentID.String())
}

// ListByWriter returns requests bound to the writer, newest first.
func (r *RequestRepository) ListByWriter(ctx context.Context, writerID shared.UserID) ([]*request.ExamRequest, error) {
	return r.list(ctx, `
		SELECT `+requestColumns+`
		FROM exam_requests
		WHERE writer_id = $1
		ORDER BY created_at DESC
	`, writerID.String())
}

func (r *RequestRepository) list(ctx context.Context, query string, args ...interface{}) ([]*request.ExamRequest, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.WrapError("request", "List", shared.ErrStorageUnavailable, "query exam requests", err)
	}
	defer rows.Close()

	var requests []*request.ExamRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, shared.WrapError("request", "List", shared.ErrStorageUnavailable, "scan exam request", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("request", "List", shared.ErrStorageUnavailable, "iterate exam requests", err)
	}
	return requests, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func scanRequest(row pgx.Row) (*request.ExamRequest, error) {
	var (
		req             request.ExamRequest
		id, studentID   string
		writerID        *string
		status          string
		durationSeconds int64
	)

	err := row.Scan(
		&id,
		&studentID,
		&writerID,
		&req.ExamName,
		&req.ExamDate,
		&durationSeconds,
		&req.Subject,
		&status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.ID = shared.RequestID(id)
	req.StudentID = shared.UserID(studentID)
	req.Status = request.Status(status)
	req.Duration = time.Duration(durationSeconds) * time.Second
	if writerID != nil {
		w := shared.UserID(*writerID)
		req.WriterID = &w
	}
	return &req, nil
}
