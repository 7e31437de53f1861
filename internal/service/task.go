package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-app/internal/model"
	"github.com/BuzzLyutic/todo-app/internal/repo"
	"github.com/BuzzLyutic/todo-app/internal/view"
)

// Identity отдаёт id текущего пользователя. ok=false - пользователь не вошёл.
type Identity interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

type Option func(*TaskService)

// WithViewCache включает мемоизацию производных представлений.
func WithViewCache(c *view.Cache) Option {
	return func(s *TaskService) {
		s.views = c
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TaskService) {
		if now != nil {
			s.now = now
		}
	}
}

// TaskService держит упорядоченную коллекцию задач одного владельца.
// Локальное состояние меняется только после подтверждения хранилищем.
// Срезы задач не меняются на месте, каждая мутация собирает новый.
type TaskService struct {
	store  repo.TaskStore
	logger *zap.Logger
	views  *view.Cache
	now    func() time.Time

	mu       sync.RWMutex
	ownerID  string
	tasks    []model.Task
	revision uint64
}

func NewTaskService(store repo.TaskStore, logger *zap.Logger, opts ...Option) *TaskService {
	s := &TaskService{
		store:  store,
		logger: logger,
		now:    time.Now,
		tasks:  []model.Task{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const maxFetchAttempts = 3

// ListForUser загружает все задачи пользователя (новые первыми) и заменяет ими коллекцию.
// Список применяется, только если за время запроса коллекция не менялась,
// иначе он может не содержать подтверждённую запись, и запрос повторяется.
func (s *TaskService) ListForUser(ctx context.Context, userID string) ([]model.Task, error) {
	for attempt := 1; ; attempt++ {
		s.mu.RLock()
		revision := s.revision
		s.mu.RUnlock()

		tasks, err := s.store.List(ctx, userID)
		if err != nil {
			s.logger.Warn("failed to fetch tasks", zap.String("owner", userID), zap.Error(err))
			return nil, &FetchError{OwnerID: userID, Err: err}
		}
		if tasks == nil {
			tasks = []model.Task{}
		}

		s.mu.Lock()
		if s.revision == revision {
			s.ownerID = userID
			s.tasks = tasks
			s.revision++
			s.mu.Unlock()
			return slices.Clone(tasks), nil
		}
		s.mu.Unlock()

		if attempt == maxFetchAttempts {
			s.logger.Warn("collection keeps changing during fetch", zap.String("owner", userID), zap.Int("attempts", attempt))
			return nil, &FetchError{OwnerID: userID, Err: ErrConcurrentChange}
		}
		s.logger.Debug("collection changed during fetch, refetching", zap.String("owner", userID))
	}
}

// Refresh перечитывает коллекцию для текущего пользователя.
// Нет пользователя - нет данных, это не ошибка.
func (s *TaskService) Refresh(ctx context.Context, id Identity) ([]model.Task, error) {
	userID, ok := id.CurrentUserID(ctx)
	if !ok || userID == "" {
		s.Reset()
		return []model.Task{}, nil
	}
	return s.ListForUser(ctx, userID)
}

// Reset забывает владельца и его задачи (выход из аккаунта).
func (s *TaskService) Reset() {
	s.mu.Lock()
	s.ownerID = ""
	s.tasks = []model.Task{}
	s.revision++
	s.mu.Unlock()

	s.views.Purge()
}

func (s *TaskService) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownerID
}

func (s *TaskService) Create(ctx context.Context, d model.Draft) (model.Task, error) {
	owner := s.Owner()
	switch {
	case owner == "":
		return model.Task{}, &WriteError{Op: "create", Err: ErrSignedOut}
	case d.OwnerID == "":
		d.OwnerID = owner
	case d.OwnerID != owner:
		return model.Task{}, &WriteError{Op: "create", Err: ErrOwnerMismatch}
	}

	task, err := s.store.Insert(ctx, d.Normalize())
	if err != nil {
		s.logger.Warn("failed to create task", zap.String("owner", owner), zap.Error(err))
		return model.Task{}, &WriteError{Op: "create", Err: err}
	}

	s.apply(owner, func(tasks []model.Task) []model.Task {
		if indexOf(tasks, task.ID) >= 0 { // уже пришла с параллельной перезагрузкой
			return tasks
		}
		return append([]model.Task{task}, tasks...)
	})
	return task, nil
}

// Update отправляет патч и заменяет локальную запись строкой, которую вернуло хранилище.
func (s *TaskService) Update(ctx context.Context, id string, p model.Patch) (model.Task, error) {
	owner := s.Owner()
	if owner == "" {
		return model.Task{}, &WriteError{Op: "update", ID: id, Err: ErrSignedOut}
	}
	if p.Empty() {
		return model.Task{}, &WriteError{Op: "update", ID: id, Err: ErrEmptyPatch}
	}

	task, err := s.store.Update(ctx, owner, id, p)
	if err != nil {
		return model.Task{}, s.writeFailure("update", owner, id, err)
	}

	s.apply(owner, func(tasks []model.Task) []model.Task {
		out := slices.Clone(tasks)
		if i := indexOf(out, id); i >= 0 {
			out[i] = task
		}
		return out
	})
	return task, nil
}

// Toggle инвертирует completed относительно локальной копии.
func (s *TaskService) Toggle(ctx context.Context, id string) (model.Task, error) {
	cur, ok := s.Get(id)
	if !ok {
		return model.Task{}, &NotFoundError{ID: id}
	}
	completed := !cur.Completed
	return s.Update(ctx, id, model.Patch{Completed: &completed})
}

func (s *TaskService) ToggleImportant(ctx context.Context, id string) (model.Task, error) {
	cur, ok := s.Get(id)
	if !ok {
		return model.Task{}, &NotFoundError{ID: id}
	}
	important := !cur.Important
	return s.Update(ctx, id, model.Patch{Important: &important})
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	owner := s.Owner()
	if owner == "" {
		return &WriteError{Op: "delete", ID: id, Err: ErrSignedOut}
	}

	if err := s.store.Delete(ctx, owner, id); err != nil {
		return s.writeFailure("delete", owner, id, err)
	}

	s.apply(owner, func(tasks []model.Task) []model.Task {
		return slices.DeleteFunc(slices.Clone(tasks), func(t model.Task) bool {
			return t.ID == id
		})
	})
	return nil
}

func (s *TaskService) Get(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.tasks, id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

// Tasks возвращает копию коллекции.
func (s *TaskService) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// View строит видимый список и статистику по текущей коллекции.
func (s *TaskService) View(c model.Criteria) model.View {
	s.mu.RLock()
	tasks, revision := s.tasks, s.revision
	s.mu.RUnlock()

	return s.views.Derive(revision, tasks, c, s.now())
}

// apply применяет подтверждённое изменение, если за время запроса владелец не сменился.
func (s *TaskService) apply(owner string, mutate func([]model.Task) []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownerID != owner {
		s.logger.Debug("discarding result for previous owner", zap.String("owner", owner))
		return
	}
	s.tasks = mutate(s.tasks)
	s.revision++
}

func (s *TaskService) writeFailure(op, owner, id string, err error) error {
	if errors.Is(err, repo.ErrorNotFound) {
		s.logger.Info("task is gone", zap.String("op", op), zap.String("owner", owner), zap.String("task_id", id))
		return &NotFoundError{ID: id}
	}
	s.logger.Warn("failed to write task", zap.String("op", op), zap.String("owner", owner), zap.String("task_id", id), zap.Error(err))
	return &WriteError{Op: op, ID: id, Err: err}
}

func indexOf(tasks []model.Task, id string) int {
	return slices.IndexFunc(tasks, func(t model.Task) bool {
		return t.ID == id
	})
}
