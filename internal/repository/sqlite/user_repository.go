package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"userhub/internal/domain"
	"userhub/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	user := &domain.User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		Name:      in.Name,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, email, name, created_at)
VALUES (?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Name,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, email, name, created_at
FROM users
WHERE id = ?`,
		id,
	)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET email = COALESCE(?, email),
	name = COALESCE(?, name)
WHERE id = ?`,
		nullable(patch.Email),
		nullable(patch.Name),
		id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("user rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// List pages users in insertion order. rowid grows with every insert, so it
// doubles as the creation sequence.
func (r *UserRepository) List(ctx context.Context, params domain.ListParams) (domain.UserPage, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return domain.UserPage{}, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, email, name, created_at
FROM users
ORDER BY rowid
LIMIT ? OFFSET ?`,
		params.Limit,
		params.Offset,
	)
	if err != nil {
		return domain.UserPage{}, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return domain.UserPage{}, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return domain.UserPage{}, fmt.Errorf("iterate users: %w", err)
	}
	return domain.UserPage{Users: users, Total: total}, nil
}

func scanUser(row scanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
