package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/domain"
	"userhub/internal/usecase"
)

func TestDeleteUser_IsIdempotent(t *testing.T) {
	repo := &mockUserRepository{}
	uc := usecase.NewDeleteUser(repo)

	require.NoError(t, uc.Execute(context.Background(), usecase.DeleteUserInput{ID: " u-1 "}))
	require.NoError(t, uc.Execute(context.Background(), usecase.DeleteUserInput{ID: "u-1"}))
	assert.Equal(t, []string{"u-1", "u-1"}, repo.deleteCalls)
}

func TestDeleteUser_InvalidID(t *testing.T) {
	repo := &mockUserRepository{}

	err := usecase.NewDeleteUser(repo).Execute(context.Background(), usecase.DeleteUserInput{ID: "undefined"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Equal(t, "id is reserved", err.Error())
	assert.Zero(t, repo.totalCalls())
}

func TestDeleteUser_RepositoryErrorPropagates(t *testing.T) {
	boom := errors.New("disk full")
	repo := &mockUserRepository{
		deleteFn: func(ctx context.Context, id string) error { return boom },
	}

	err := usecase.NewDeleteUser(repo).Execute(context.Background(), usecase.DeleteUserInput{ID: "u-1"})
	assert.Same(t, boom, err)
}
