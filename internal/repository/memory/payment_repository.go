package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"userhub/internal/domain"
	"userhub/internal/repository"
)

type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{payments: make(map[string]*domain.Payment)}
}

var _ repository.PaymentRepository = (*PaymentRepository)(nil)

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	return clonePayment(p), nil
}

func (r *PaymentRepository) FindByProviderTransactionID(ctx context.Context, txID string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.payments {
		if p.ProviderTransactionID == txID {
			return clonePayment(p), nil
		}
	}
	return nil, nil
}

// FindByUserID returns the user's payments, newest first.
func (r *PaymentRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Payment{}
	for _, p := range r.payments {
		if p.UserID == userID {
			out = append(out, *clonePayment(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.payments {
		if p.ProviderTransactionID == payment.ProviderTransactionID {
			return domain.ErrPaymentExists
		}
	}
	now := time.Now().UTC()
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	payment.CreatedAt = now
	payment.UpdatedAt = now
	r.payments[payment.ID] = clonePayment(payment)
	return nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Payment, error) {
	return r.Update(ctx, id, domain.PaymentUpdate{Status: &status})
}

func (r *PaymentRepository) Update(ctx context.Context, id string, update domain.PaymentUpdate) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	if update.Metadata != nil {
		p.Metadata = update.Metadata
	}
	if update.ReceiptData != nil {
		p.ReceiptData = *update.ReceiptData
	}
	p.UpdatedAt = time.Now().UTC()
	return clonePayment(p), nil
}

func clonePayment(p *domain.Payment) *domain.Payment {
	cp := *p
	if p.Metadata != nil {
		cp.Metadata = p.CloneMetadata()
	}
	return &cp
}
