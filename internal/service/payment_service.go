package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"userhub/internal/domain"
	"userhub/internal/repository"
)

var errPaymentNotFound = domain.NewNotFoundError("Payment not found")

type VerifyStripeInput struct {
	TransactionID string
	Amount        int64
	Currency      string
	UserID        string
	Metadata      map[string]any
}

type VerifyAppleInput struct {
	TransactionID         string
	OriginalTransactionID string
	ProductID             string
	UserID                string
	ReceiptData           string
	Metadata              map[string]any
}

type VerifyGoogleInput struct {
	OrderID        string
	PackageName    string
	ProductID      string
	PurchaseToken  string
	UserID         string
	SubscriptionID string
	Metadata       map[string]any
}

type RefundInput struct {
	PaymentID string
	Reason    string
	Metadata  map[string]any
}

type RefundResult struct {
	Payment  *domain.Payment `json:"payment"`
	RefundID string          `json:"refundId,omitempty"`
}

type DisputeInput struct {
	ProviderTransactionID string
	DisputeID             string
	Reason                string
	Status                domain.DisputeStatus
	Amount                *int64
	Metadata              map[string]any
}

type PaymentList struct {
	Payments []domain.Payment `json:"payments"`
	Total    int              `json:"total"`
}

// PaymentService records provider-verified purchases and their refunds and disputes.
// Verification is idempotent on the provider transaction id.
type PaymentService interface {
	VerifyStripe(ctx context.Context, in VerifyStripeInput) (*domain.Payment, error)
	VerifyApple(ctx context.Context, in VerifyAppleInput) (*domain.Payment, error)
	VerifyGoogle(ctx context.Context, in VerifyGoogleInput) (*domain.Payment, error)
	Get(ctx context.Context, id string) (*domain.Payment, error)
	ListByUser(ctx context.Context, userID string) (PaymentList, error)
	Refund(ctx context.Context, in RefundInput) (RefundResult, error)
	HandleDispute(ctx context.Context, in DisputeInput) (*domain.Payment, error)
}

type paymentService struct {
	payments repository.PaymentRepository
	now      func() time.Time
}

func NewPaymentService(payments repository.PaymentRepository) PaymentService {
	return &paymentService{
		payments: payments,
		now:      time.Now,
	}
}

func (s *paymentService) VerifyStripe(ctx context.Context, in VerifyStripeInput) (*domain.Payment, error) {
	return s.record(ctx, &domain.Payment{
		Provider:              domain.ProviderStripe,
		UserID:                in.UserID,
		Amount:                in.Amount,
		Currency:              in.Currency,
		Status:                domain.PaymentStatusCompleted,
		ProviderTransactionID: in.TransactionID,
		Metadata:              in.Metadata,
	})
}

// VerifyApple records an App Store purchase. The amount is not part of the
// notification, so it is stored as 0 USD.
func (s *paymentService) VerifyApple(ctx context.Context, in VerifyAppleInput) (*domain.Payment, error) {
	return s.record(ctx, &domain.Payment{
		Provider:              domain.ProviderAppleIAP,
		UserID:                in.UserID,
		Currency:              "USD",
		Status:                domain.PaymentStatusCompleted,
		ProviderTransactionID: in.TransactionID,
		ProductID:             in.ProductID,
		SubscriptionID:        in.OriginalTransactionID,
		ReceiptData:           in.ReceiptData,
		Metadata:              in.Metadata,
	})
}

func (s *paymentService) VerifyGoogle(ctx context.Context, in VerifyGoogleInput) (*domain.Payment, error) {
	metadata := make(map[string]any, len(in.Metadata)+1)
	for k, v := range in.Metadata {
		metadata[k] = v
	}
	metadata["packageName"] = in.PackageName

	return s.record(ctx, &domain.Payment{
		Provider:              domain.ProviderGooglePlay,
		UserID:                in.UserID,
		Currency:              "USD",
		Status:                domain.PaymentStatusCompleted,
		ProviderTransactionID: in.OrderID,
		ProductID:             in.ProductID,
		SubscriptionID:        in.SubscriptionID,
		ReceiptData:           in.PurchaseToken,
		Metadata:              metadata,
	})
}

func (s *paymentService) record(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	existing, err := s.payments.FindByProviderTransactionID(ctx, p.ProviderTransactionID)
	if err != nil {
		return nil, fmt.Errorf("find payment by transaction: %w", err)
	}
	if existing != nil {
		return existing, nil
	}
	if err := s.payments.Create(ctx, p); err != nil {
		if !errors.Is(err, domain.ErrPaymentExists) {
			return nil, fmt.Errorf("create payment: %w", err)
		}
		// Another request stored the same transaction after the lookup above.
		existing, err = s.payments.FindByProviderTransactionID(ctx, p.ProviderTransactionID)
		if err != nil {
			return nil, fmt.Errorf("find payment by transaction: %w", err)
		}
		if existing == nil {
			return nil, domain.ErrPaymentExists
		}
		return existing, nil
	}
	return p, nil
}

func (s *paymentService) Get(ctx context.Context, id string) (*domain.Payment, error) {
	p, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if p == nil {
		return nil, errPaymentNotFound
	}
	return p, nil
}

func (s *paymentService) ListByUser(ctx context.Context, userID string) (PaymentList, error) {
	payments, err := s.payments.FindByUserID(ctx, userID)
	if err != nil {
		return PaymentList{}, fmt.Errorf("list payments: %w", err)
	}
	return PaymentList{Payments: payments, Total: len(payments)}, nil
}

func (s *paymentService) Refund(ctx context.Context, in RefundInput) (RefundResult, error) {
	p, err := s.Get(ctx, in.PaymentID)
	if err != nil {
		return RefundResult{}, err
	}
	if p.Status == domain.PaymentStatusRefunded {
		return RefundResult{Payment: p}, nil
	}
	if p.Status != domain.PaymentStatusCompleted {
		return RefundResult{}, domain.NewConflictError(fmt.Sprintf("cannot refund payment with status: %s", p.Status))
	}

	metadata := p.CloneMetadata()
	if in.Reason != "" {
		metadata["refundReason"] = in.Reason
	}
	metadata["refundedAt"] = s.now().UTC().Format(time.RFC3339)
	for k, v := range in.Metadata {
		metadata[k] = v
	}

	refunded := domain.PaymentStatusRefunded
	updated, err := s.payments.Update(ctx, p.ID, domain.PaymentUpdate{Status: &refunded, Metadata: metadata})
	if err != nil {
		return RefundResult{}, fmt.Errorf("refund payment: %w", err)
	}
	if updated == nil {
		return RefundResult{}, errPaymentNotFound
	}
	return RefundResult{Payment: updated, RefundID: "refund_" + p.ProviderTransactionID}, nil
}

// HandleDispute stores the dispute under the payment's "dispute" metadata key. A
// lost dispute also marks the payment refunded.
func (s *paymentService) HandleDispute(ctx context.Context, in DisputeInput) (*domain.Payment, error) {
	p, err := s.payments.FindByProviderTransactionID(ctx, in.ProviderTransactionID)
	if err != nil {
		return nil, fmt.Errorf("find payment by transaction: %w", err)
	}
	if p == nil {
		return nil, errPaymentNotFound
	}

	dispute := map[string]any{
		"disputeId": in.DisputeID,
		"reason":    in.Reason,
		"status":    string(in.Status),
		"createdAt": s.now().UTC().Format(time.RFC3339),
	}
	if in.Amount != nil {
		dispute["amount"] = *in.Amount
	}
	for k, v := range in.Metadata {
		dispute[k] = v
	}
	metadata := p.CloneMetadata()
	metadata["dispute"] = dispute

	updated, err := s.payments.Update(ctx, p.ID, domain.PaymentUpdate{Metadata: metadata})
	if err != nil {
		return nil, fmt.Errorf("record dispute: %w", err)
	}
	if updated == nil {
		return nil, errPaymentNotFound
	}
	if in.Status != domain.DisputeLost {
		return updated, nil
	}

	refunded, err := s.payments.UpdateStatus(ctx, p.ID, domain.PaymentStatusRefunded)
	if err != nil {
		return nil, fmt.Errorf("refund lost dispute: %w", err)
	}
	if refunded == nil {
		return nil, errPaymentNotFound
	}
	return refunded, nil
}
