package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-app/internal/model"
)

// CachedTaskRepo кэширует список задач владельца в Redis.
// Любая успешная (или неудачная) запись сбрасывает ключ владельца и сдвигает его поколение.
// Список кладётся в кэш, только если поколение не сдвинулось за время чтения из хранилища.
// Ошибки Redis не фатальны: чтение уходит в хранилище.
type CachedTaskRepo struct {
	next   TaskStore
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ TaskStore = (*CachedTaskRepo)(nil)

func NewCachedTaskRepo(next TaskStore, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedTaskRepo {
	return &CachedTaskRepo{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// generationTTL переживает любое чтение из хранилища.
const generationTTL = 24 * time.Hour

func cacheKey(ownerID string) string {
	return fmt.Sprintf("todos:%s", ownerID)
}

func generationKey(ownerID string) string {
	return fmt.Sprintf("todos:%s:gen", ownerID)
}

func (r *CachedTaskRepo) List(ctx context.Context, ownerID string) ([]model.Task, error) {
	key := cacheKey(ownerID)

	b, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var tasks []model.Task
		if err := json.Unmarshal(b, &tasks); err == nil {
			return tasks, nil
		}
		r.logger.Debug("cached todos are corrupt", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		r.logger.Debug("redis get failed", zap.String("key", key), zap.Error(err))
	}

	var (
		tasks   []model.Task
		listErr error
		fetched bool
	)
	// WATCH ставится до чтения: запись, закоммиченная после него, отменит заполнение кэша
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		tasks, listErr = r.next.List(ctx, ownerID)
		fetched = true
		if listErr != nil {
			return nil
		}

		b, err := json.Marshal(tasks)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, r.ttl)
			return nil
		})
		return err
	}, generationKey(ownerID))

	switch {
	case !fetched:
		r.logger.Debug("redis watch failed", zap.String("key", key), zap.Error(err))
		return r.next.List(ctx, ownerID)
	case listErr != nil:
		return nil, listErr
	case errors.Is(err, redis.TxFailedErr):
		r.logger.Debug("todos changed during read, cache not filled", zap.String("key", key))
	case err != nil:
		r.logger.Debug("redis set failed", zap.String("key", key), zap.Error(err))
	}
	return tasks, nil
}

func (r *CachedTaskRepo) Insert(ctx context.Context, d model.Draft) (model.Task, error) {
	defer r.invalidate(ctx, d.OwnerID)
	return r.next.Insert(ctx, d)
}

func (r *CachedTaskRepo) Update(ctx context.Context, ownerID, id string, p model.Patch) (model.Task, error) {
	defer r.invalidate(ctx, ownerID)
	return r.next.Update(ctx, ownerID, id, p)
}

func (r *CachedTaskRepo) Delete(ctx context.Context, ownerID, id string) error {
	defer r.invalidate(ctx, ownerID)
	return r.next.Delete(ctx, ownerID, id)
}

// invalidate не зависит от отмены запроса: запись могла закоммититься и до отмены.
func (r *CachedTaskRepo) invalidate(ctx context.Context, ownerID string) {
	ctx = context.WithoutCancel(ctx)
	gen := generationKey(ownerID)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, gen)
		pipe.Expire(ctx, gen, generationTTL)
		pipe.Del(ctx, cacheKey(ownerID))
		return nil
	})
	if err != nil {
		r.logger.Warn("redis invalidate failed", zap.String("owner", ownerID), zap.Error(err))
	}
}
