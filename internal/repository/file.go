package repository

import (
	"context"

	"userhub/internal/domain"
)

// FileRepository stores uploaded file metadata. FindByID returns (nil, nil) when absent.
type FileRepository interface {
	FindByID(ctx context.Context, id string) (*domain.File, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.File, error)
	Create(ctx context.Context, file *domain.File) error
	Delete(ctx context.Context, id string) error
}
