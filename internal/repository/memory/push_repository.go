package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"userhub/internal/domain"
	"userhub/internal/repository"
)

type PushMessageRepository struct {
	mu       sync.Mutex
	order    []string
	messages map[string]*domain.PushMessage
}

func NewPushMessageRepository() *PushMessageRepository {
	return &PushMessageRepository{messages: make(map[string]*domain.PushMessage)}
}

var _ repository.PushMessageRepository = (*PushMessageRepository)(nil)

func (r *PushMessageRepository) Create(ctx context.Context, msg *domain.PushMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Status == "" {
		msg.Status = domain.PushStatusPending
	}
	msg.CreatedAt = time.Now().UTC()
	cp := *msg
	r.messages[msg.ID] = &cp
	r.order = append(r.order, msg.ID)
	return nil
}

// FindPending returns up to limit pending messages, oldest first.
func (r *PushMessageRepository) FindPending(ctx context.Context, limit int) ([]domain.PushMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []domain.PushMessage{}
	for _, id := range r.order {
		if len(out) >= limit {
			break
		}
		if msg := r.messages[id]; msg.Status == domain.PushStatusPending {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (r *PushMessageRepository) MarkSent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg, ok := r.messages[id]; ok {
		now := time.Now().UTC()
		msg.Status = domain.PushStatusSent
		msg.SentAt = &now
	}
	return nil
}

func (r *PushMessageRepository) MarkFailed(ctx context.Context, id string, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg, ok := r.messages[id]; ok {
		msg.Status = domain.PushStatusFailed
		msg.ErrorMessage = errorMessage
	}
	return nil
}
