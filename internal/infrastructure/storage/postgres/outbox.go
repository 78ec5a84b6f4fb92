package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"finbooks/internal/core/id"
	"finbooks/internal/core/tenant"
	"finbooks/internal/domain"
	"finbooks/pkg/logger"
)

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// OutboxMessage represents a message in the transactional outbox.
type OutboxMessage struct {
	ID            id.ID        `db:"id"`
	TenantID      id.ID        `db:"tenant_id"`
	AggregateType string       `db:"aggregate_type"` // e.g. "trade_document", "payment"
	AggregateID   id.ID        `db:"aggregate_id"`
	EventType     string       `db:"event_type"` // e.g. "document.posted", "payment.recorded"
	Payload       []byte       `db:"payload"`
	Status        OutboxStatus `db:"status"`
	RetryCount    int          `db:"retry_count"`
	LastError     *string      `db:"last_error"`
	NextRetryAt   *time.Time   `db:"next_retry_at"`
	CreatedAt     time.Time    `db:"created_at"`
	PublishedAt   *time.Time   `db:"published_at"`
}

// DomainEvent represents an event to be published via outbox.
type DomainEvent struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// OutboxPublisher writes events to the outbox table within the caller's
// transaction, so event emission commits or rolls back with the mutation.
type OutboxPublisher struct{}

// NewOutboxPublisher creates a new outbox publisher.
func NewOutboxPublisher() *OutboxPublisher {
	return &OutboxPublisher{}
}

var _ domain.EventPublisher = EventSink{}

// EventSink adapts the outbox publisher to the domain event contract.
type EventSink struct {
	pub *OutboxPublisher
}

// NewEventSink creates the domain-facing outbox sink.
func NewEventSink() EventSink {
	return EventSink{pub: NewOutboxPublisher()}
}

// Publish implements domain.EventPublisher.
func (s EventSink) Publish(ctx context.Context, event domain.Event) error {
	return s.pub.Publish(ctx, DomainEvent{
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.Type,
		Payload:       event.Payload,
	})
}

// Publish writes an event to the outbox within the current transaction.
// MUST be called inside a transaction context.
func (p *OutboxPublisher) Publish(ctx context.Context, event DomainEvent) error {
	tx := MustGetTxManager(ctx).GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("outbox publish requires transaction context")
	}

	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO sys_outbox (id, tenant_id, aggregate_type, aggregate_id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id.New(), tenant.TenantID(ctx), event.AggregateType, event.AggregateID, event.EventType,
		payloadBytes, OutboxStatusPending, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}

	return nil
}

// PublishBatch writes multiple events to the outbox.
func (p *OutboxPublisher) PublishBatch(ctx context.Context, events []DomainEvent) error {
	tx := MustGetTxManager(ctx).GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("outbox publish requires transaction context")
	}

	batch := &pgx.Batch{}
	now := time.Now().UTC()
	tenantID := tenant.TenantID(ctx)

	for _, event := range events {
		payloadBytes, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}

		batch.Queue(`
			INSERT INTO sys_outbox (id, tenant_id, aggregate_type, aggregate_id, event_type, payload, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id.New(), tenantID, event.AggregateType, event.AggregateID, event.EventType,
			payloadBytes, OutboxStatusPending, now)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert outbox message: %w", err)
		}
	}

	return nil
}

// OutboxHandler processes outbox messages (broker publish, webhook delivery).
type OutboxHandler interface {
	Handle(ctx context.Context, msg *OutboxMessage) error
}

// OutboxRelay reads and dispatches pending messages.
// Driven by the background worker.
type OutboxRelay struct {
	pool      *pgxpool.Pool
	batchSize int
	handler   OutboxHandler
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(pool *pgxpool.Pool, batchSize int, handler OutboxHandler) *OutboxRelay {
	return &OutboxRelay{
		pool:      pool,
		batchSize: batchSize,
		handler:   handler,
	}
}

// ProcessBatch fetches and processes pending messages.
// Returns number of successfully dispatched messages.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, aggregate_type, aggregate_id, event_type, payload, status,
		       retry_count, last_error, next_retry_at, created_at, published_at
		FROM sys_outbox
		WHERE status = $1
		  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at
		LIMIT $2
	`, OutboxStatusPending, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*OutboxMessage
	for rows.Next() {
		var msg OutboxMessage
		err := rows.Scan(
			&msg.ID, &msg.TenantID, &msg.AggregateType, &msg.AggregateID, &msg.EventType,
			&msg.Payload, &msg.Status, &msg.RetryCount, &msg.LastError,
			&msg.NextRetryAt, &msg.CreatedAt, &msg.PublishedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("scan outbox message: %w", err)
		}
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate outbox messages: %w", err)
	}

	processed := 0
	for _, msg := range messages {
		if err := r.processMessage(ctx, msg); err != nil {
			logger.Warn(ctx, "outbox message dispatch failed",
				"message_id", msg.ID,
				"event_type", msg.EventType,
				"retry_count", msg.RetryCount,
				"error", err)
			continue
		}
		processed++
	}

	return processed, nil
}

func (r *OutboxRelay) processMessage(ctx context.Context, msg *OutboxMessage) error {
	err := r.handler.Handle(ctx, msg)

	if err != nil {
		// Linear backoff; after 5 attempts the message parks as failed.
		nextRetry := time.Now().Add(time.Duration(msg.RetryCount+1) * time.Minute)
		errStr := err.Error()

		_, updateErr := r.pool.Exec(ctx, `
			UPDATE sys_outbox
			SET retry_count = retry_count + 1,
			    last_error = $1,
			    next_retry_at = $2,
			    status = CASE WHEN retry_count >= 5 THEN $3 ELSE status END
			WHERE id = $4
		`, errStr, nextRetry, OutboxStatusFailed, msg.ID)

		if updateErr != nil {
			return fmt.Errorf("update failed message: %w", updateErr)
		}
		return err
	}

	now := time.Now().UTC()
	_, err = r.pool.Exec(ctx, `
		UPDATE sys_outbox
		SET status = $1, published_at = $2
		WHERE id = $3
	`, OutboxStatusPublished, now, msg.ID)

	return err
}
