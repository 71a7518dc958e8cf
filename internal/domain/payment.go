package domain

import "time"

type PaymentProvider string

const (
	ProviderStripe     PaymentProvider = "stripe"
	ProviderGooglePlay PaymentProvider = "google_play"
	ProviderAppleIAP   PaymentProvider = "apple_iap"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Payment is a verified purchase recorded from Stripe, Google Play or the App Store.
type Payment struct {
	ID                    string          `json:"id"`
	Provider              PaymentProvider `json:"provider"`
	UserID                string          `json:"userId"`
	Amount                int64           `json:"amount"`
	Currency              string          `json:"currency"`
	Status                PaymentStatus   `json:"status"`
	ProviderTransactionID string          `json:"providerTransactionId"`
	ProductID             string          `json:"productId,omitempty"`
	SubscriptionID        string          `json:"subscriptionId,omitempty"`
	ReceiptData           string          `json:"receiptData,omitempty"`
	Metadata              map[string]any  `json:"metadata,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// PaymentUpdate lists the payment fields to change. Nil fields are left untouched.
type PaymentUpdate struct {
	Status      *PaymentStatus
	Metadata    map[string]any
	ReceiptData *string
}

// CloneMetadata returns a shallow copy of the payment metadata, never nil.
func (p *Payment) CloneMetadata() map[string]any {
	out := make(map[string]any, len(p.Metadata)+2)
	for k, v := range p.Metadata {
		out[k] = v
	}
	return out
}

type DisputeStatus string

const (
	DisputeOpened      DisputeStatus = "opened"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeWon         DisputeStatus = "won"
	DisputeLost        DisputeStatus = "lost"
)
