package usecase

import (
	"context"

	"userhub/internal/domain"
	"userhub/internal/repository"
	"userhub/internal/validation"
)

type GetUserInput struct {
	ID any
}

// GetUserResult holds the user, or nil when no user has the id.
type GetUserResult struct {
	User *domain.User
}

type GetUser struct {
	users repository.UserRepository
}

func NewGetUser(users repository.UserRepository) *GetUser {
	return &GetUser{users: users}
}

// Execute looks a user up by id. A missing user is a nil result, not an error.
func (uc *GetUser) Execute(ctx context.Context, in GetUserInput) (GetUserResult, error) {
	id, err := validation.ID(in.ID)
	if err != nil {
		return GetUserResult{}, err
	}

	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		return GetUserResult{}, err
	}
	return GetUserResult{User: user}, nil
}
