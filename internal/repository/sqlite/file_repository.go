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

const createFilesTable = `
CREATE TABLE IF NOT EXISTS files (
	id TEXT PRIMARY KEY,
	original_name TEXT NOT NULL,
	file_name TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	size INTEGER NOT NULL,
	file_type TEXT NOT NULL,
	compressed INTEGER NOT NULL DEFAULT 0,
	url TEXT NOT NULL DEFAULT '',
	user_id TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_files_user_id ON files(user_id);
`

type FileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

var _ repository.FileRepository = (*FileRepository)(nil)

func (r *FileRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createFilesTable); err != nil {
		return fmt.Errorf("create files table: %w", err)
	}
	return nil
}

func (r *FileRepository) Create(ctx context.Context, file *domain.File) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	file.CreatedAt = time.Now().UTC()

	if _, err := r.db.ExecContext(ctx, `
INSERT INTO files (id, original_name, file_name, mime_type, size, file_type, compressed, url, user_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		file.ID,
		file.OriginalName,
		file.FileName,
		file.MimeType,
		file.Size,
		string(file.FileType),
		file.Compressed,
		file.URL,
		file.UserID,
		file.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (r *FileRepository) FindByID(ctx context.Context, id string) (*domain.File, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, original_name, file_name, mime_type, size, file_type, compressed, url, user_id, created_at
FROM files
WHERE id = ?`, id)
	file, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return file, err
}

func (r *FileRepository) FindByUserID(ctx context.Context, userID string) ([]domain.File, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, original_name, file_name, mime_type, size, file_type, compressed, url, user_id, created_at
FROM files
WHERE user_id = ?
ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	files := []domain.File{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *file)
	}
	return files, rows.Err()
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func scanFile(row scanner) (*domain.File, error) {
	var (
		file     domain.File
		fileType string
	)
	if err := row.Scan(
		&file.ID,
		&file.OriginalName,
		&file.FileName,
		&file.MimeType,
		&file.Size,
		&fileType,
		&file.Compressed,
		&file.URL,
		&file.UserID,
		&file.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan file: %w", err)
	}
	file.FileType = domain.FileType(fileType)
	return &file, nil
}
