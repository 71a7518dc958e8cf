package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/domain"
)

func TestUserRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	created, err := repo.Create(ctx, domain.NewUser{Email: "a@b.com", Name: "Alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)

	name := "Bob"
	updated, err := repo.Update(ctx, created.ID, domain.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Bob", updated.Name)
	assert.Equal(t, "a@b.com", updated.Email)

	require.NoError(t, repo.Delete(ctx, created.ID))
	require.NoError(t, repo.Delete(ctx, created.ID))

	found, err = repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUserRepository_AbsentUpdate(t *testing.T) {
	name := "x"
	got, err := NewUserRepository().Update(context.Background(), "nope", domain.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	a, err := repo.Create(ctx, domain.NewUser{Email: "a@b.com", Name: "A"})
	require.NoError(t, err)
	b, err := repo.Create(ctx, domain.NewUser{Email: "b@b.com", Name: "B"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.NewUser{Email: "a@b.com", Name: "Again"})
	assert.ErrorIs(t, err, domain.ErrEmailExists)

	// case is preserved, so a differently cased address is a different email
	_, err = repo.Create(ctx, domain.NewUser{Email: "A@b.com", Name: "Upper"})
	assert.NoError(t, err)

	taken := "a@b.com"
	_, err = repo.Update(ctx, b.ID, domain.UserPatch{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrEmailExists)

	// re-saving your own email is fine
	_, err = repo.Update(ctx, a.ID, domain.UserPatch{Email: &taken})
	assert.NoError(t, err)
}

func TestUserRepository_ListPagesInCreationOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	for i := 0; i < 25; i++ {
		_, err := repo.Create(ctx, domain.NewUser{Email: fmt.Sprintf("u%d@b.com", i), Name: fmt.Sprintf("U%d", i)})
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	for offset := 0; offset < 30; offset += 10 {
		page, err := repo.List(ctx, domain.ListParams{Offset: offset, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 25, page.Total)
		for i, u := range page.Users {
			assert.Equal(t, fmt.Sprintf("U%d", offset+i), u.Name)
			assert.False(t, seen[u.ID], "user %s listed twice", u.ID)
			seen[u.ID] = true
		}
	}
	assert.Len(t, seen, 25)

	page, err := repo.List(ctx, domain.ListParams{Offset: 100, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Users)
	assert.NotNil(t, page.Users)
	assert.Equal(t, 25, page.Total)
}

func TestUserRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewUserRepository().Create(ctx, domain.NewUser{Email: "a@b.com", Name: "A"})
	assert.ErrorIs(t, err, context.Canceled)
}
