package requests

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"skillmatch-backend/internal/extract"
	"skillmatch-backend/internal/matching"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new request.
func (r *PGRepo) Create(ctx context.Context, request Request) error {
	const query = `
INSERT INTO requests (
	id, source_channel, source_user, message_text, attachment_url, file_name,
	intent, status, requirement, match_limit, extracted, result, error_code,
	error_message, created_at, processed_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	requirement, err := marshalNullable(request.Requirement)
	if err != nil {
		return err
	}
	extracted, err := marshalNullable(request.Extracted)
	if err != nil {
		return err
	}
	result, err := marshalNullable(request.Result)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		request.ID,
		request.SourceChannel,
		request.SourceUser,
		request.MessageText,
		request.AttachmentURL,
		request.FileName,
		request.Intent,
		request.Status,
		requirement,
		request.Limit,
		extracted,
		result,
		nullString(request.ErrorCode),
		nullString(request.ErrorMessage),
		request.CreatedAt,
		request.ProcessedAt,
		request.UpdatedAt,
	)
	return err
}

// GetByID returns a request by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Request, error) {
	const query = `
SELECT id, source_channel, source_user, message_text, attachment_url, file_name,
       intent, status, requirement, match_limit, extracted, result, error_code,
       error_message, created_at, processed_at, updated_at
FROM requests
WHERE id = $1
LIMIT 1`
	var req Request
	var attachment, errorCode, errorMessage sql.NullString
	var requirement, extracted, result []byte
	var processedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.SourceChannel,
		&req.SourceUser,
		&req.MessageText,
		&attachment,
		&req.FileName,
		&req.Intent,
		&req.Status,
		&requirement,
		&req.Limit,
		&extracted,
		&result,
		&errorCode,
		&errorMessage,
		&req.CreatedAt,
		&processedAt,
		&req.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, err
	}
	req.AttachmentURL = attachment.String
	req.ErrorCode = errorCode.String
	req.ErrorMessage = errorMessage.String
	if processedAt.Valid {
		t := processedAt.Time
		req.ProcessedAt = &t
	}
	if err := unmarshalNullable(requirement, &req.Requirement); err != nil {
		return Request{}, err
	}
	if err := unmarshalNullable(extracted, &req.Extracted); err != nil {
		return Request{}, err
	}
	if err := unmarshalNullable(result, &req.Result); err != nil {
		return Request{}, err
	}
	return req, nil
}

// ClaimProcessing is an atomic compare-and-swap on the status column. Zero
// affected rows means the request was missing or not in the source status.
func (r *PGRepo) ClaimProcessing(ctx context.Context, id, from string) (Request, error) {
	const query = `
UPDATE requests
SET status = $3, error_code = NULL, error_message = NULL, updated_at = $4
WHERE id = $1 AND status = $2`
	res, err := r.DB.ExecContext(ctx, query, id, from, StatusProcessing, time.Now().UTC())
	if err != nil {
		return Request{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Request{}, err
	}
	if affected == 0 {
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrNotFound) {
			return Request{}, ErrNotFound
		}
		return Request{}, ErrInvalidTransition
	}
	return r.GetByID(ctx, id)
}

// Complete records extraction and result payloads and marks the request
// completed.
func (r *PGRepo) Complete(ctx context.Context, id string, extracted *extract.Result, result *Result, processedAt time.Time) error {
	const query = `
UPDATE requests
SET status = $2, extracted = $3, result = $4, processed_at = $5, updated_at = $6
WHERE id = $1`
	extractedPayload, err := marshalNullable(extracted)
	if err != nil {
		return err
	}
	resultPayload, err := marshalNullable(result)
	if err != nil {
		return err
	}
	return r.exec(ctx, query, id, StatusCompleted, extractedPayload, resultPayload, processedAt, time.Now().UTC())
}

// Fail marks the request failed with captured error detail.
func (r *PGRepo) Fail(ctx context.Context, id, code, message string, processedAt time.Time) error {
	const query = `
UPDATE requests
SET status = $2, error_code = $3, error_message = $4, processed_at = $5, updated_at = $6
WHERE id = $1`
	return r.exec(ctx, query, id, StatusFailed, code, message, processedAt, time.Now().UTC())
}

func (r *PGRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalNullable(v any) (any, error) {
	if v == nil || isNilPointer(v) {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func isNilPointer(v any) bool {
	switch p := v.(type) {
	case *extract.Result:
		return p == nil
	case *Result:
		return p == nil
	case *matching.Requirement:
		return p == nil
	default:
		return false
	}
}

func unmarshalNullable[T any](data []byte, dst **T) error {
	if len(data) == 0 {
		return nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*dst = &out
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
