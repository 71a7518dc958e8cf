// Package push delivers notifications to devices through Firebase Cloud Messaging
// and schedules the pending-message batch.
package push

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when neither FCM credentials nor a project are configured.
var ErrNotConfigured = errors.New("fcm is not configured")

// Message is one notification addressed to a device registration token.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// BatchResult counts the outcome of one batch run.
type BatchResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Batcher sends up to batchSize pending messages.
type Batcher interface {
	SendBatch(ctx context.Context, batchSize int) (BatchResult, error)
}

type disabledSender struct{}

// DisabledSender fails every send with ErrNotConfigured.
func DisabledSender() Sender { return disabledSender{} }

func (disabledSender) Send(context.Context, Message) error { return ErrNotConfigured }
