package usecase

import (
	"context"

	"userhub/internal/domain"
	"userhub/internal/repository"
	"userhub/internal/validation"
)

// UpdateUserInput carries raw request values. A nil Email or Name means the field
// was not supplied.
type UpdateUserInput struct {
	ID    any
	Email any
	Name  any
}

// UpdateUserResult holds the updated user, or nil when no user has the id.
type UpdateUserResult struct {
	User *domain.User
}

type UpdateUser struct {
	users repository.UserRepository
}

func NewUpdateUser(users repository.UserRepository) *UpdateUser {
	return &UpdateUser{users: users}
}

// Execute changes the email and/or name of a user. Only supplied, non-blank fields
// are passed on; at least one is required.
func (uc *UpdateUser) Execute(ctx context.Context, in UpdateUserInput) (UpdateUserResult, error) {
	id, err := validation.ID(in.ID)
	if err != nil {
		return UpdateUserResult{}, err
	}
	email, hasEmail, err := validation.Email(in.Email, false)
	if err != nil {
		return UpdateUserResult{}, err
	}
	name, hasName, err := validation.Name(in.Name, false)
	if err != nil {
		return UpdateUserResult{}, err
	}

	var patch domain.UserPatch
	if hasEmail {
		patch.Email = &email
	}
	if hasName {
		patch.Name = &name
	}
	if patch.Empty() {
		return UpdateUserResult{}, domain.NewValidationError("at least one of email or name must be provided")
	}

	user, err := uc.users.Update(ctx, id, patch)
	if err != nil {
		return UpdateUserResult{}, err
	}
	return UpdateUserResult{User: user}, nil
}
