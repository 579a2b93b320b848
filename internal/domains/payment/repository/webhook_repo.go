package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"payrouter-backend/internal/domains/payment/model"
)

// =====================================================
// WEBHOOK LOG REPOSITORY IMPLEMENTATION
// =====================================================
type webhookRepository struct {
	pool *pgxpool.Pool
}

func NewWebhookRepository(pool *pgxpool.Pool) WebhookRepoInterface {
	return &webhookRepository{pool: pool}
}

// Create creates webhook log.
// Called immediately when a delivery is received, before any
// verification or processing, so even rejected deliveries leave a trace.
func (r *webhookRepository) Create(ctx context.Context, log *model.PaymentWebhookLog) error {
	query := `
		INSERT INTO payment_webhook_logs (
			id, payment_record_id, provider, native_event,
			body, is_valid, is_processed, received_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	bodyJSON, err := json.Marshal(log.Body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		log.ID,
		log.PaymentRecordID,
		log.Provider,
		log.NativeEvent,
		bodyJSON,
		log.IsValid,
		log.IsProcessed,
		log.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create webhook log: %w", err)
	}

	return nil
}

// MarkAsProcessed marks webhook as processed
func (r *webhookRepository) MarkAsProcessed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE payment_webhook_logs
		SET is_processed = TRUE,
			is_valid = TRUE,
			processing_error = NULL
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark webhook as processed: %w", err)
	}

	return nil
}

// MarkAsInvalid marks webhook as invalid (auth or shape failed)
func (r *webhookRepository) MarkAsInvalid(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE payment_webhook_logs
		SET is_valid = FALSE,
			processing_error = $1
		WHERE id = $2
	`

	_, err := r.pool.Exec(ctx, query, reason, id)
	if err != nil {
		return fmt.Errorf("failed to mark webhook as invalid: %w", err)
	}

	return nil
}

// MarkProcessingError records a processing failure
func (r *webhookRepository) MarkProcessingError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE payment_webhook_logs
		SET processing_error = $1
		WHERE id = $2
	`

	_, err := r.pool.Exec(ctx, query, errorMsg, id)
	if err != nil {
		return fmt.Errorf("failed to mark webhook processing error: %w", err)
	}

	return nil
}

// ListByPaymentRecordID lists webhook logs for a payment record
func (r *webhookRepository) ListByPaymentRecordID(ctx context.Context, recordID uuid.UUID) ([]*model.PaymentWebhookLog, error) {
	query := `
		SELECT id, payment_record_id, provider, native_event,
			body, is_valid, is_processed, processing_error, received_at
		FROM payment_webhook_logs
		WHERE payment_record_id = $1
		ORDER BY received_at DESC
	`

	rows, err := r.pool.Query(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.PaymentWebhookLog
	for rows.Next() {
		entry := &model.PaymentWebhookLog{}
		var bodyJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.PaymentRecordID,
			&entry.Provider,
			&entry.NativeEvent,
			&bodyJSON,
			&entry.IsValid,
			&entry.IsProcessed,
			&entry.ProcessingError,
			&entry.ReceivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook log: %w", err)
		}

		if bodyJSON != nil {
			if err := json.Unmarshal(bodyJSON, &entry.Body); err != nil {
				return nil, fmt.Errorf("failed to unmarshal webhook body: %w", err)
			}
		}

		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate webhook logs: %w", err)
	}

	return logs, nil
}
