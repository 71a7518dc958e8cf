package repository

import (
	"context"

	"userhub/internal/domain"
)

// PaymentRepository persists verified payments. Lookups return (nil, nil) when absent.
type PaymentRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Payment, error)
	FindByProviderTransactionID(ctx context.Context, txID string) (*domain.Payment, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Payment, error)
	Create(ctx context.Context, payment *domain.Payment) error
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Payment, error)
	Update(ctx context.Context, id string, update domain.PaymentUpdate) (*domain.Payment, error)
}
