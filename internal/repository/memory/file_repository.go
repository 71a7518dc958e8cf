package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"userhub/internal/domain"
	"userhub/internal/repository"
)

type FileRepository struct {
	mu    sync.RWMutex
	files map[string]domain.File
}

func NewFileRepository() *FileRepository {
	return &FileRepository{files: make(map[string]domain.File)}
}

var _ repository.FileRepository = (*FileRepository)(nil)

func (r *FileRepository) FindByID(ctx context.Context, id string) (*domain.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.files[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r *FileRepository) FindByUserID(ctx context.Context, userID string) ([]domain.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.File{}
	for _, f := range r.files {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *FileRepository) Create(ctx context.Context, file *domain.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	file.CreatedAt = time.Now().UTC()
	r.files[file.ID] = *file
	return nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, id)
	return nil
}
