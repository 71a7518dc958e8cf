package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"userhub/internal/domain"
	"userhub/internal/repository"
)

const listVersionKey = "users:list:version"

// UserRepository caches user lookups and list pages in Redis in front of another
// UserRepository. Writes go straight through and bump a version counter: one per
// user and one shared by all list pages. Cached values are stored under the
// version read before loading, so a load that races a write lands under a key
// no later read will use.
//
// Redis failures never fail a request: reads fall back to the wrapped repository.
type UserRepository struct {
	next   repository.UserRepository
	client *redis.Client
	ttl    time.Duration
	logger logrus.FieldLogger
}

func NewUserRepository(next repository.UserRepository, client *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *UserRepository {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UserRepository{next: next, client: client, ttl: ttl, logger: logger}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func userVersionKey(id string) string { return "users:ver:" + id }

func userKey(id string, version int64) string { return fmt.Sprintf("users:id:%s:v%d", id, version) }

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	version, ok := r.version(ctx, userVersionKey(id))
	if !ok {
		return r.next.FindByID(ctx, id)
	}
	key := userKey(id, version)

	var cached domain.User
	if r.get(ctx, key, &cached) {
		return &cached, nil
	}

	user, err := r.next.FindByID(ctx, id)
	if err != nil || user == nil {
		return user, err
	}
	r.set(ctx, key, user)
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	user, err := r.next.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	r.bumpList(ctx)
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	user, err := r.next.Update(ctx, id, patch)
	if err != nil || user == nil {
		return user, err
	}
	r.invalidate(ctx, id)
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *UserRepository) List(ctx context.Context, params domain.ListParams) (domain.UserPage, error) {
	version, ok := r.version(ctx, listVersionKey)
	if !ok {
		return r.next.List(ctx, params)
	}
	key := fmt.Sprintf("users:list:%d:%d:%d", version, params.Offset, params.Limit)

	var cached domain.UserPage
	if r.get(ctx, key, &cached) {
		return cached, nil
	}
	page, err := r.next.List(ctx, params)
	if err != nil {
		return domain.UserPage{}, err
	}
	r.set(ctx, key, page)
	return page, nil
}

func (r *UserRepository) invalidate(ctx context.Context, id string) {
	if err := r.client.Incr(ctx, userVersionKey(id)).Err(); err != nil {
		r.logger.WithError(err).WithField("user_id", id).Warn("bump user version")
	}
	r.bumpList(ctx)
}

// version reads a counter, treating a missing key as 0. It reports false when
// Redis cannot be read.
func (r *UserRepository) version(ctx context.Context, key string) (int64, bool) {
	v, err := r.client.Get(ctx, key).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.WithError(err).WithField("key", key).Warn("read cache version")
		return 0, false
	}
	return v, true
}

func (r *UserRepository) bumpList(ctx context.Context) {
	if err := r.client.Incr(ctx, listVersionKey).Err(); err != nil {
		r.logger.WithError(err).Warn("bump user list version")
	}
}

func (r *UserRepository) get(ctx context.Context, key string, dest any) bool {
	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.WithError(err).WithField("key", key).Warn("read cache")
		}
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("decode cached value")
		return false
	}
	return true
}

func (r *UserRepository) set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("encode cache value")
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("write cache")
	}
}
