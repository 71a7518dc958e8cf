package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/domain"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("duplicate key")))
	assert.False(t, isUniqueViolation(nil))
}

// Runs against a live server when USERHUB_TEST_POSTGRES_DSN is set.
func TestUserRepository_Integration(t *testing.T) {
	dsn := os.Getenv("USERHUB_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("USERHUB_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	pool, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewUserRepository(pool)
	require.NoError(t, repo.Init(ctx))

	email := fmt.Sprintf("%s@example.com", uuid.NewString())
	created, err := repo.Create(ctx, domain.NewUser{Email: email, Name: "Alice"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Delete(context.Background(), created.ID) })

	_, err = repo.Create(ctx, domain.NewUser{Email: email, Name: "Again"})
	assert.ErrorIs(t, err, domain.ErrEmailExists)

	name := "Bob"
	updated, err := repo.Update(ctx, created.ID, domain.UserPatch{Name: &name})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, email, updated.Email)
	assert.Equal(t, "Bob", updated.Name)

	missing, err := repo.Update(ctx, uuid.NewString(), domain.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Nil(t, missing)

	page, err := repo.List(ctx, domain.ListParams{Offset: 0, Limit: 100})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, page.Total, 1)

	require.NoError(t, repo.Delete(ctx, created.ID))
	require.NoError(t, repo.Delete(ctx, created.ID))
	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}
