package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"payrouter-backend/internal/domains/payment/model"
)

// =====================================================
// PAYMENT RECORD REPOSITORY IMPLEMENTATION
// =====================================================
type paymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepoInterface {
	return &paymentRepository{pool: pool}
}

const paymentColumns = `
	id, payment_id, url, amount, currency, status,
	external_id, withdraw_id, tx_hash, payer_address,
	provider_name, chain_id,
	provider_response, metadata, original_request,
	created_at, updated_at, status_updated_at
`

// Create inserts a new payment record
func (r *paymentRepository) Create(ctx context.Context, record *model.PaymentRecord) error {
	query := `
		INSERT INTO payment_records (
			id, payment_id, url, amount, currency, status,
			external_id, provider_name, chain_id,
			provider_response, metadata, original_request
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING created_at, updated_at, status_updated_at
	`

	providerResponseJSON, err := json.Marshal(record.ProviderResponse)
	if err != nil {
		return fmt.Errorf("failed to marshal provider_response: %w", err)
	}
	metadataJSON, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	originalRequestJSON, err := json.Marshal(record.OriginalRequest)
	if err != nil {
		return fmt.Errorf("failed to marshal original_request: %w", err)
	}

	err = r.pool.QueryRow(ctx, query,
		record.ID,
		record.PaymentID,
		record.URL,
		record.Amount,
		record.Currency,
		record.Status,
		record.ExternalID,
		record.ProviderName,
		record.ChainID,
		providerResponseJSON,
		metadataJSON,
		originalRequestJSON,
	).Scan(&record.CreatedAt, &record.UpdatedAt, &record.StatusUpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payment record: %w", err)
	}

	return nil
}

// GetByPaymentID gets a record by provider-assigned payment id
func (r *paymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*model.PaymentRecord, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payment_records
		WHERE payment_id = $1
	`
	return r.queryOne(ctx, query, paymentID)
}

// GetByExternalID gets the latest record for a caller external id
func (r *paymentRepository) GetByExternalID(ctx context.Context, externalID string) (*model.PaymentRecord, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payment_records
		WHERE external_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.queryOne(ctx, query, externalID)
}

// UpdateFromProvider refreshes status and the stored provider payload.
// status_updated_at only advances when the status actually changes, so
// staleness is measured from the last real transition, not the last
// write.
func (r *paymentRepository) UpdateFromProvider(
	ctx context.Context,
	id uuid.UUID,
	status string,
	providerResponse map[string]interface{},
	txHash, payerAddress *string,
) error {
	query := `
		UPDATE payment_records
		SET status_updated_at = CASE WHEN status <> $1 THEN NOW() ELSE status_updated_at END,
			status = $1,
			provider_response = COALESCE($2, provider_response),
			tx_hash = COALESCE($3, tx_hash),
			payer_address = COALESCE($4, payer_address),
			updated_at = NOW()
		WHERE id = $5
	`

	var providerResponseJSON []byte
	if providerResponse != nil {
		var err error
		providerResponseJSON, err = json.Marshal(providerResponse)
		if err != nil {
			return fmt.Errorf("failed to marshal provider_response: %w", err)
		}
	}

	result, err := r.pool.Exec(ctx, query, status, providerResponseJSON, txHash, payerAddress, id)
	if err != nil {
		return fmt.Errorf("failed to update payment from provider: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrPaymentNotFound
	}

	return nil
}

// SetWithdrawID records the withdraw triggered on terminal transition
func (r *paymentRepository) SetWithdrawID(ctx context.Context, id uuid.UUID, withdrawID string) error {
	query := `
		UPDATE payment_records
		SET withdraw_id = $1,
			updated_at = NOW()
		WHERE id = $2 AND withdraw_id IS NULL
	`

	result, err := r.pool.Exec(ctx, query, withdrawID, id)
	if err != nil {
		return fmt.Errorf("failed to set withdraw id: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Either missing or already withdrawn; both are fine for an
		// at-most-once trigger.
		return nil
	}

	return nil
}

// ListStale lists started payments whose status has not moved within the window
func (r *paymentRepository) ListStale(ctx context.Context, window time.Duration, limit int) ([]*model.PaymentRecord, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payment_records
		WHERE status = $1
		  AND status_updated_at < NOW() - $2::interval
		ORDER BY status_updated_at ASC
		LIMIT $3
	`

	interval := fmt.Sprintf("%d seconds", int(window.Seconds()))
	rows, err := r.pool.Query(ctx, query, model.StatusStarted, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale payments: %w", err)
	}
	defer rows.Close()

	var records []*model.PaymentRecord
	for rows.Next() {
		record, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stale payments: %w", err)
	}

	return records, nil
}

// =====================================================
// SCAN HELPERS
// =====================================================

func (r *paymentRepository) queryOne(ctx context.Context, query string, arg interface{}) (*model.PaymentRecord, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get payment record: %w", err)
		}
		return nil, model.ErrPaymentNotFound
	}

	return scanPayment(rows)
}

func scanPayment(row pgx.Row) (*model.PaymentRecord, error) {
	record := &model.PaymentRecord{}
	var providerResponseJSON, metadataJSON, originalRequestJSON []byte

	err := row.Scan(
		&record.ID,
		&record.PaymentID,
		&record.URL,
		&record.Amount,
		&record.Currency,
		&record.Status,
		&record.ExternalID,
		&record.WithdrawID,
		&record.TxHash,
		&record.PayerAddress,
		&record.ProviderName,
		&record.ChainID,
		&providerResponseJSON,
		&metadataJSON,
		&originalRequestJSON,
		&record.CreatedAt,
		&record.UpdatedAt,
		&record.StatusUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to scan payment record: %w", err)
	}

	if providerResponseJSON != nil {
		if err := json.Unmarshal(providerResponseJSON, &record.ProviderResponse); err != nil {
			return nil, fmt.Errorf("failed to unmarshal provider_response: %w", err)
		}
	}
	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &record.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	if originalRequestJSON != nil {
		if err := json.Unmarshal(originalRequestJSON, &record.OriginalRequest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal original_request: %w", err)
		}
	}

	return record, nil
}
