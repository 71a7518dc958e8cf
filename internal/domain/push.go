package domain

import "time"

type PushStatus string

const (
	PushStatusPending PushStatus = "pending"
	PushStatusSent    PushStatus = "sent"
	PushStatusFailed  PushStatus = "failed"
)

// PushMessage is a notification waiting for (or done with) delivery to a device token.
type PushMessage struct {
	ID           string            `json:"id"`
	Token        string            `json:"token"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	Data         map[string]string `json:"data,omitempty"`
	Status       PushStatus        `json:"status"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	SentAt       *time.Time        `json:"sentAt,omitempty"`
}
