package repository

import (
	"context"

	"userhub/internal/domain"
)

// UserRepository defines persistence operations for User records.
//
// FindByID and Update return (nil, nil) when no user has the given id. Create
// returns domain.ErrEmailExists when the email is taken. Delete of an unknown id is
// not an error. List orders users by creation so pages never overlap on a static
// dataset.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user domain.NewUser) (*domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params domain.ListParams) (domain.UserPage, error)
}
