package http

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/domain"
	"userhub/internal/repository/memory"
	"userhub/internal/usecase"
)

type brokenUsers struct {
	*memory.UserRepository
}

func (brokenUsers) FindByID(context.Context, string) (*domain.User, error) {
	return nil, errors.New("database is locked")
}

func TestUserLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/users", map[string]any{"email": " a@b.com ", "name": " Alice "}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created domain.User
	decodeData(t, rec, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "a@b.com", created.Email)
	assert.Equal(t, "Alice", created.Name)

	rec = s.do(t, http.MethodGet, "/v1/users/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.User
	decodeData(t, rec, &got)
	assert.Equal(t, created.ID, got.ID)

	rec = s.do(t, http.MethodPatch, "/v1/users/"+created.ID, map[string]any{"name": "Alicia"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.User
	decodeData(t, rec, &updated)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "a@b.com", updated.Email)

	rec = s.do(t, http.MethodDelete, "/v1/users/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/v1/users/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	requireError(t, s.do(t, http.MethodGet, "/v1/users/"+created.ID, nil, ""), http.StatusNotFound, "NOT_FOUND", "User not found")
	requireError(t, s.do(t, http.MethodPatch, "/v1/users/"+created.ID, map[string]any{"name": "x"}, ""), http.StatusNotFound, "NOT_FOUND", "User not found")
}

func TestCreateUserErrors(t *testing.T) {
	s := newTestServer(t)

	requireError(t, s.do(t, http.MethodPost, "/v1/users", nil, ""), http.StatusBadRequest, "VALIDATION_ERROR", "email is required")
	requireError(t, s.do(t, http.MethodPost, "/v1/users", `{"email":`, ""), http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
	requireError(t, s.do(t, http.MethodPost, "/v1/users", map[string]any{"email": "bad", "name": "A"}, ""),
		http.StatusBadRequest, "VALIDATION_ERROR", "email format is invalid")
	requireError(t, s.do(t, http.MethodPost, "/v1/users", map[string]any{"email": 5, "name": "A"}, ""),
		http.StatusBadRequest, "VALIDATION_ERROR", "email is required")

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/users", map[string]any{"email": "a@b.com", "name": "A"}, "").Code)
	requireError(t, s.do(t, http.MethodPost, "/v1/users", map[string]any{"email": "a@b.com", "name": "B"}, ""),
		http.StatusConflict, "CONFLICT", "email already exists")
}

func TestUpdateUserErrors(t *testing.T) {
	s := newTestServer(t)
	requireError(t, s.do(t, http.MethodPatch, "/v1/users/abc", map[string]any{}, ""),
		http.StatusBadRequest, "VALIDATION_ERROR", "at least one of email or name must be provided")
	requireError(t, s.do(t, http.MethodPatch, "/v1/users/null", map[string]any{"name": "x"}, ""),
		http.StatusBadRequest, "VALIDATION_ERROR", "id is reserved")
	requireError(t, s.do(t, http.MethodDelete, "/v1/users/undefined", nil, ""),
		http.StatusBadRequest, "VALIDATION_ERROR", "id is reserved")
}

func TestListUsers(t *testing.T) {
	s := newTestServer(t)
	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/users", map[string]any{"email": email, "name": "n"}, "").Code)
	}

	rec := s.do(t, http.MethodGet, "/v1/users", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res usecase.ListUsersResult
	decodeData(t, rec, &res)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 10, res.Size)
	require.Len(t, res.Users, 3)
	assert.Equal(t, "a@x.io", res.Users[0].Email)

	rec = s.do(t, http.MethodGet, "/v1/users?page=2&size=2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &res)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "c@x.io", res.Users[0].Email)

	rec = s.do(t, http.MethodGet, "/v1/users?page=abc&size=0", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &res)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 10, res.Size)

	rec = s.do(t, http.MethodGet, "/v1/users?page=9", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"users":[],"total":3,"page":9,"size":10}}`, rec.Body.String())

	requireError(t, s.do(t, http.MethodGet, "/v1/users?size=101", nil, ""), http.StatusBadRequest, "VALIDATION_ERROR", "size must not exceed 100")
	requireError(t, s.do(t, http.MethodGet, "/v1/users?page=-1", nil, ""), http.StatusBadRequest, "VALIDATION_ERROR", "page must be an integer >= 1")
}

func TestListUsersReadsLeadingInteger(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		query string
		page  int
		size  int
	}{
		{"page=2.5&size=20", 2, 20},
		{"page=3abc&size=5", 3, 5},
		{"page=%20%204&size=+7", 4, 7},
		{"size=1e1", 1, 1},
		{"page=-0&size=.5", 1, 10},
		{"page=x2", 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/v1/users?"+tt.query, nil, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var res usecase.ListUsersResult
			decodeData(t, rec, &res)
			assert.Equal(t, tt.page, res.Page)
			assert.Equal(t, tt.size, res.Size)
		})
	}

	requireError(t, s.do(t, http.MethodGet, "/v1/users?page=%20-1", nil, ""), http.StatusBadRequest, "VALIDATION_ERROR", "page must be an integer >= 1")
	requireError(t, s.do(t, http.MethodGet, "/v1/users?page=-2.9", nil, ""), http.StatusBadRequest, "VALIDATION_ERROR", "page must be an integer >= 1")
	requireError(t, s.do(t, http.MethodGet, "/v1/users?page=99999999999999999999", nil, ""), http.StatusBadRequest, "VALIDATION_ERROR", "page must be an integer >= 1")
}

func TestUnexpectedErrorIsHidden(t *testing.T) {
	s := newTestServer(t, func(d *Dependencies) {
		d.Users = usecase.NewUsers(brokenUsers{UserRepository: memory.NewUserRepository()})
	})

	rec := s.do(t, http.MethodGet, "/v1/users/abc", nil, "")
	requireError(t, rec, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred")
	assert.NotContains(t, rec.Body.String(), "database is locked")
}
