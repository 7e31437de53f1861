package repo

import (
	"context"

	"github.com/BuzzLyutic/todo-app/internal/model"
)

// TaskStore - удалённое хранилище задач, все операции ограничены владельцем.
// Изменяющие вызовы либо возвращают итоговую строку, либо различимую ошибку.
type TaskStore interface {
	List(ctx context.Context, ownerID string) ([]model.Task, error)
	Insert(ctx context.Context, d model.Draft) (model.Task, error)
	Update(ctx context.Context, ownerID, id string, p model.Patch) (model.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
}
