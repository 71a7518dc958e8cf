package usecase_test

import (
	"context"
	"time"

	"userhub/internal/domain"
)

// mockUserRepository records every call and delegates to optional function fields.
type mockUserRepository struct {
	findByIDFn func(ctx context.Context, id string) (*domain.User, error)
	createFn   func(ctx context.Context, user domain.NewUser) (*domain.User, error)
	updateFn   func(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	deleteFn   func(ctx context.Context, id string) error
	listFn     func(ctx context.Context, params domain.ListParams) (domain.UserPage, error)

	findByIDCalls []string
	createCalls   []domain.NewUser
	updateIDs     []string
	updatePatches []domain.UserPatch
	deleteCalls   []string
	listCalls     []domain.ListParams
}

func (m *mockUserRepository) totalCalls() int {
	return len(m.findByIDCalls) + len(m.createCalls) + len(m.updateIDs) + len(m.deleteCalls) + len(m.listCalls)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	m.findByIDCalls = append(m.findByIDCalls, id)
	if m.findByIDFn == nil {
		return nil, nil
	}
	return m.findByIDFn(ctx, id)
}

func (m *mockUserRepository) Create(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	m.createCalls = append(m.createCalls, user)
	if m.createFn == nil {
		return &domain.User{ID: "1", Email: user.Email, Name: user.Name, CreatedAt: time.Now().UTC()}, nil
	}
	return m.createFn(ctx, user)
}

func (m *mockUserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	m.updateIDs = append(m.updateIDs, id)
	m.updatePatches = append(m.updatePatches, patch)
	if m.updateFn == nil {
		return nil, nil
	}
	return m.updateFn(ctx, id, patch)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	m.deleteCalls = append(m.deleteCalls, id)
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}

func (m *mockUserRepository) List(ctx context.Context, params domain.ListParams) (domain.UserPage, error) {
	m.listCalls = append(m.listCalls, params)
	if m.listFn == nil {
		return domain.UserPage{Users: []domain.User{}}, nil
	}
	return m.listFn(ctx, params)
}
