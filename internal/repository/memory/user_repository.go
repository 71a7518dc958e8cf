// Package memory implements the repository ports with process-local storage.
// Useful for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"userhub/internal/domain"
	"userhub/internal/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	order []string
	users map[string]*domain.User
	now   func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*domain.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (r *UserRepository) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(in.Email, "") {
		return nil, domain.ErrEmailExists
	}
	user := &domain.User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		Name:      in.Name,
		CreatedAt: r.now(),
	}
	r.users[user.ID] = user
	r.order = append(r.order, user.ID)

	cp := *user
	return &cp, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	if patch.Email != nil && r.emailTaken(*patch.Email, id) {
		return nil, domain.ErrEmailExists
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}

	cp := *user
	return &cp, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return nil
	}
	delete(r.users, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, params domain.ListParams) (domain.UserPage, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserPage{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.order)
	if params.Offset >= total || params.Limit <= 0 {
		return domain.UserPage{Users: []domain.User{}, Total: total}, nil
	}
	end := params.Offset + params.Limit
	if end > total {
		end = total
	}

	users := make([]domain.User, 0, end-params.Offset)
	for _, id := range r.order[params.Offset:end] {
		users = append(users, *r.users[id])
	}
	return domain.UserPage{Users: users, Total: total}, nil
}

// emailTaken must be called with the lock held.
func (r *UserRepository) emailTaken(email, exceptID string) bool {
	for id, user := range r.users {
		if id != exceptID && user.Email == email {
			return true
		}
	}
	return false
}
