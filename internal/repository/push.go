package repository

import (
	"context"

	"userhub/internal/domain"
)

// PushMessageRepository queues push notifications for batch delivery.
type PushMessageRepository interface {
	Create(ctx context.Context, msg *domain.PushMessage) error
	FindPending(ctx context.Context, limit int) ([]domain.PushMessage, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errorMessage string) error
}
