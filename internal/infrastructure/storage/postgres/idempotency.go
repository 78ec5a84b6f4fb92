package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/tenant"
)

// IdempotencyStatus represents the state of an idempotent operation.
type IdempotencyStatus string

const (
	IdempotencyStatusPending IdempotencyStatus = "pending"
	IdempotencyStatusSuccess IdempotencyStatus = "success"
	IdempotencyStatusFailed  IdempotencyStatus = "failed"
)

// IdempotencyRecord stores the result of an idempotent operation.
// Keys are unique per tenant.
type IdempotencyRecord struct {
	Key         string            `db:"idempotency_key"`
	UserID      string            `db:"user_id"`
	Operation   string            `db:"operation"`
	Status      IdempotencyStatus `db:"status"`
	RequestHash string            `db:"request_hash"`
	Response    []byte            `db:"response"`
	StatusCode  int               `db:"response_status"`
	ContentType string            `db:"response_content_type"`
	CreatedAt   time.Time         `db:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at"`
	ExpiresAt   time.Time         `db:"expires_at"`
}

// IdempotencyReplay is the cached HTTP response for replay.
type IdempotencyReplay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IdempotencyStore manages idempotency keys for mutating endpoints
// (payment recording, document creation).
type IdempotencyStore struct {
	ttl time.Duration
}

// NewIdempotencyStore creates a new idempotency store.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{ttl: ttl}
}

// AcquireKey attempts to acquire an idempotency key.
// Returns:
//   - (nil, nil) if key acquired successfully
//   - (cachedResponse, nil) if operation already completed (success or failed)
//   - (nil, error) if key is locked by another request or reused for a
//     different request payload
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*IdempotencyReplay, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)
	tenantID := tenant.TenantID(ctx)

	var record IdempotencyRecord
	err := MustGetTxManager(ctx).GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO sys_idempotency (tenant_id, idempotency_key, user_id, operation, status, request_hash, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8)
		ON CONFLICT (tenant_id, idempotency_key) DO UPDATE SET
			updated_at = $7,
			expires_at = GREATEST(sys_idempotency.expires_at, $8)
		RETURNING idempotency_key, user_id, operation, status, request_hash, response, response_status, response_content_type, created_at, updated_at, expires_at
	`, tenantID, key, userID, operation, IdempotencyStatusPending, requestHash, now, expiresAt).Scan(
		&record.Key, &record.UserID, &record.Operation, &record.Status,
		&record.RequestHash, &record.Response, &record.StatusCode, &record.ContentType,
		&record.CreatedAt, &record.UpdatedAt, &record.ExpiresAt,
	)

	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}

	// Key was just created by us
	if record.CreatedAt.Equal(now) || record.CreatedAt.After(now.Add(-time.Second)) {
		return nil, nil
	}

	// Key exists: protect against reuse for a different request.
	if record.UserID != userID || record.Operation != operation || record.RequestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("stored_operation", record.Operation).
			WithDetail("request_operation", operation)
	}

	switch record.Status {
	case IdempotencyStatusSuccess, IdempotencyStatusFailed:
		return &IdempotencyReplay{
			StatusCode:  normalizeReplayStatus(record.StatusCode),
			ContentType: normalizeReplayContentType(record.ContentType),
			Body:        record.Response,
		}, nil

	case IdempotencyStatusPending:
		// Older than a minute means the original request likely crashed.
		if time.Since(record.UpdatedAt) > time.Minute {
			_, err := MustGetTxManager(ctx).GetQuerier(ctx).Exec(ctx, `
				UPDATE sys_idempotency
				SET updated_at = $1
				WHERE tenant_id = $2 AND idempotency_key = $3 AND status = $4
			`, now, tenantID, key, IdempotencyStatusPending)
			if err != nil {
				return nil, fmt.Errorf("reclaim stale key: %w", err)
			}
			return nil, nil
		}
		return nil, apperror.NewIdempotencyConflict(key)
	}

	return nil, nil
}

// CompleteKey marks an idempotency key as completed with the HTTP response.
func (s *IdempotencyStore) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finishKey(ctx, key, IdempotencyStatusSuccess, statusCode, contentType, response)
}

// FailKey marks an idempotency key as failed with the HTTP response.
// Failed responses replay too, so retries of a rejected request stay cheap.
func (s *IdempotencyStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finishKey(ctx, key, IdempotencyStatusFailed, statusCode, contentType, response)
}

func (s *IdempotencyStore) finishKey(ctx context.Context, key string, status IdempotencyStatus, statusCode int, contentType string, response any) error {
	var responseBytes []byte
	if response != nil {
		b, err := json.Marshal(response)
		if err != nil {
			if status == IdempotencyStatusSuccess {
				return fmt.Errorf("marshal response: %w", err)
			}
			responseBytes, _ = json.Marshal(map[string]string{"error": err.Error()})
		} else {
			responseBytes = b
		}
	}

	_, err := MustGetTxManager(ctx).GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1,
		    response = $2,
		    response_status = $3,
		    response_content_type = $4,
		    updated_at = $5
		WHERE tenant_id = $6 AND idempotency_key = $7
	`, status, responseBytes, statusCode, contentType, time.Now().UTC(), tenant.TenantID(ctx), key)

	return err
}

func normalizeReplayStatus(status int) int {
	if status == 0 {
		return 200
	}
	return status
}

func normalizeReplayContentType(ct string) string {
	if ct == "" {
		return "application/json"
	}
	return ct
}

// CleanupExpired removes expired idempotency records across all tenants.
// Called from the background worker.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := MustGetTxManager(ctx).GetQuerier(ctx).Exec(ctx, `
		DELETE FROM sys_idempotency WHERE expires_at < $1
	`, time.Now().UTC())

	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
