package usecase

import (
	"context"

	"userhub/internal/domain"
	"userhub/internal/repository"
	"userhub/internal/validation"
)

type ListUsersInput struct {
	Page any
	Size any
}

// ListUsersResult is one page of users. Page and Size echo the validated request.
type ListUsersResult struct {
	Users []domain.User `json:"users"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

type ListUsers struct {
	users repository.UserRepository
}

func NewListUsers(users repository.UserRepository) *ListUsers {
	return &ListUsers{users: users}
}

func (uc *ListUsers) Execute(ctx context.Context, in ListUsersInput) (ListUsersResult, error) {
	req, err := validation.PageSize(in.Page, in.Size)
	if err != nil {
		return ListUsersResult{}, err
	}

	page, err := uc.users.List(ctx, req.ListParams())
	if err != nil {
		return ListUsersResult{}, err
	}
	return ListUsersResult{
		Users: page.Users,
		Total: page.Total,
		Page:  req.Page,
		Size:  req.Size,
	}, nil
}
