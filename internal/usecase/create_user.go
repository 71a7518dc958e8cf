// Package usecase holds the User application operations. Each use case validates its
// untyped input, makes a single repository call and shapes the result. Repository
// errors are returned as they are.
package usecase

import (
	"context"

	"userhub/internal/domain"
	"userhub/internal/repository"
	"userhub/internal/validation"
)

// CreateUserInput carries raw request values; fields may hold any type.
type CreateUserInput struct {
	Email any
	Name  any
}

type CreateUserResult struct {
	User *domain.User
}

// CreateUser registers a new user.
type CreateUser struct {
	users repository.UserRepository
}

func NewCreateUser(users repository.UserRepository) *CreateUser {
	return &CreateUser{users: users}
}

// Execute validates email then name and stores the user. A duplicate email surfaces
// as the repository's conflict error.
func (uc *CreateUser) Execute(ctx context.Context, in CreateUserInput) (CreateUserResult, error) {
	email, _, err := validation.Email(in.Email, true)
	if err != nil {
		return CreateUserResult{}, err
	}
	name, _, err := validation.Name(in.Name, true)
	if err != nil {
		return CreateUserResult{}, err
	}

	user, err := uc.users.Create(ctx, domain.NewUser{Email: email, Name: name})
	if err != nil {
		return CreateUserResult{}, err
	}
	return CreateUserResult{User: user}, nil
}
