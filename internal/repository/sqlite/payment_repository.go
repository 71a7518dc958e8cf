package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"userhub/internal/domain"
	"userhub/internal/repository"
)

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
	id TEXT PRIMARY KEY,
	provider TEXT NOT NULL,
	user_id TEXT NOT NULL,
	amount INTEGER NOT NULL DEFAULT 0,
	currency TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	provider_transaction_id TEXT NOT NULL UNIQUE,
	product_id TEXT NOT NULL DEFAULT '',
	subscription_id TEXT NOT NULL DEFAULT '',
	receipt_data TEXT NOT NULL DEFAULT '',
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const createPaymentsUserIndex = `CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments(user_id);`

const paymentColumns = `id, provider, user_id, amount, currency, status, provider_transaction_id, product_id, subscription_id, receipt_data, metadata, created_at, updated_at`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

var _ repository.PaymentRepository = (*PaymentRepository)(nil)

func (r *PaymentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPaymentsTable); err != nil {
		return fmt.Errorf("create payments table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createPaymentsUserIndex); err != nil {
		return fmt.Errorf("create payments user index: %w", err)
	}
	return nil
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	metadata, err := encodeMetadata(p.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO payments (`+paymentColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		string(p.Provider),
		p.UserID,
		p.Amount,
		p.Currency,
		string(p.Status),
		p.ProviderTransactionID,
		p.ProductID,
		p.SubscriptionID,
		p.ReceiptData,
		metadata,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPaymentExists
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	return optionalPayment(scanPayment(row))
}

func (r *PaymentRepository) FindByProviderTransactionID(ctx context.Context, txID string) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE provider_transaction_id = ?`, txID)
	return optionalPayment(scanPayment(row))
}

func (r *PaymentRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+paymentColumns+`
FROM payments
WHERE user_id = ?
ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Payment, error) {
	return r.Update(ctx, id, domain.PaymentUpdate{Status: &status})
}

func (r *PaymentRepository) Update(ctx context.Context, id string, update domain.PaymentUpdate) (*domain.Payment, error) {
	var status, metadata any
	if update.Status != nil {
		status = string(*update.Status)
	}
	if update.Metadata != nil {
		encoded, err := encodeMetadata(update.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = encoded
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE payments
SET status = COALESCE(?, status),
	metadata = COALESCE(?, metadata),
	receipt_data = COALESCE(?, receipt_data),
	updated_at = ?
WHERE id = ?`,
		status,
		metadata,
		nullable(update.ReceiptData),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("payment rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func encodeMetadata(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode payment metadata: %w", err)
	}
	return string(b), nil
}

func optionalPayment(p *domain.Payment, err error) (*domain.Payment, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func scanPayment(row scanner) (*domain.Payment, error) {
	var (
		p        domain.Payment
		provider string
		status   string
		metadata string
	)
	if err := row.Scan(
		&p.ID,
		&provider,
		&p.UserID,
		&p.Amount,
		&p.Currency,
		&status,
		&p.ProviderTransactionID,
		&p.ProductID,
		&p.SubscriptionID,
		&p.ReceiptData,
		&metadata,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	p.Provider = domain.PaymentProvider(provider)
	p.Status = domain.PaymentStatus(status)
	if metadata != "" && metadata != "{}" {
		if err := json.Unmarshal([]byte(metadata), &p.Metadata); err != nil {
			return nil, fmt.Errorf("decode payment metadata: %w", err)
		}
	}
	return &p, nil
}
