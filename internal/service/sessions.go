package service

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/BuzzLyutic/todo-app/internal/repo"
	"github.com/BuzzLyutic/todo-app/internal/view"
)

const defaultLoadTimeout = 10 * time.Second

type SessionConfig struct {
	ViewCacheSize int
	MaxSessions   int           // 0 - без ограничения
	IdleTTL       time.Duration // 0 - сессии не истекают
	LoadTimeout   time.Duration
}

// Sessions хранит TaskService на каждого владельца.
// Первое обращение загружает коллекцию, неудачная загрузка не запоминается.
// Параллельные первые обращения одного владельца делят одну загрузку.
// Сессия закрывается по простою, при вытеснении или явным Drop.
type Sessions struct {
	store  repo.TaskStore
	logger *zap.Logger
	cfg    SessionConfig
	opts   []Option
	loads  singleflight.Group

	mu      sync.Mutex // Get+Add и Remove должны идти парой
	byOwner *expirable.LRU[string, *TaskService]
}

func NewSessions(store repo.TaskStore, logger *zap.Logger, cfg SessionConfig, opts ...Option) *Sessions {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = defaultLoadTimeout
	}
	s := &Sessions{
		store:  store,
		logger: logger,
		cfg:    cfg,
		opts:   opts,
	}
	s.byOwner = expirable.NewLRU[string, *TaskService](cfg.MaxSessions, s.closed, cfg.IdleTTL)
	return s
}

func (s *Sessions) closed(ownerID string, svc *TaskService) {
	svc.Reset()
	s.logger.Debug("session closed", zap.String("owner", ownerID))
}

// lookup продлевает срок простоя найденной сессии.
func (s *Sessions) lookup(ownerID string) (*TaskService, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.byOwner.Get(ownerID)
	if ok {
		s.byOwner.Add(ownerID, svc)
	}
	return svc, ok
}

type opened struct {
	svc   *TaskService
	fresh bool
}

// For возвращает загруженный сервис владельца.
func (s *Sessions) For(ctx context.Context, ownerID string) (*TaskService, error) {
	svc, _, err := s.Open(ctx, ownerID)
	return svc, err
}

// Open как For, но сообщает, загружена ли коллекция только что.
// Загрузка не зависит от отмены ctx вызывающего: её ждут и другие запросы.
func (s *Sessions) Open(ctx context.Context, ownerID string) (*TaskService, bool, error) {
	if svc, ok := s.lookup(ownerID); ok {
		return svc, false, nil
	}

	ch := s.loads.DoChan(ownerID, func() (interface{}, error) {
		if svc, ok := s.lookup(ownerID); ok {
			return opened{svc: svc}, nil
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.LoadTimeout)
		defer cancel()

		svc := s.newService()
		if _, err := svc.ListForUser(loadCtx, ownerID); err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.byOwner.Add(ownerID, svc)
		s.mu.Unlock()
		s.logger.Debug("session opened", zap.String("owner", ownerID))
		return opened{svc: svc, fresh: true}, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		o := res.Val.(opened)
		return o.svc, o.fresh, nil
	}
}

// Drop закрывает сессию владельца. Следующий For загрузит задачи заново.
func (s *Sessions) Drop(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byOwner.Remove(ownerID)
}

// Len - число открытых сессий.
func (s *Sessions) Len() int {
	return s.byOwner.Len()
}

func (s *Sessions) newService() *TaskService {
	opts := s.opts
	cache, err := view.NewCache(s.cfg.ViewCacheSize)
	if err != nil {
		s.logger.Warn("view cache disabled", zap.Error(err))
	} else {
		opts = append([]Option{WithViewCache(cache)}, opts...)
	}
	return NewTaskService(s.store, s.logger, opts...)
}
