package usecase

import (
	"context"

	"userhub/internal/repository"
	"userhub/internal/validation"
)

type DeleteUserInput struct {
	ID any
}

type DeleteUser struct {
	users repository.UserRepository
}

func NewDeleteUser(users repository.UserRepository) *DeleteUser {
	return &DeleteUser{users: users}
}

// Execute removes a user. Deleting an unknown id succeeds.
func (uc *DeleteUser) Execute(ctx context.Context, in DeleteUserInput) error {
	id, err := validation.ID(in.ID)
	if err != nil {
		return err
	}
	return uc.users.Delete(ctx, id)
}
