package view

import (
	"time"

	"github.com/BuzzLyutic/todo-app/internal/model"
)

// Derive строит видимый список и статистику. Входной срез не меняется.
func Derive(tasks []model.Task, c model.Criteria, now time.Time) model.View {
	return model.View{
		Tasks:      Visible(tasks, c),
		Statistics: Stats(tasks, now),
	}
}

// Visible фильтрует, затем сортирует. Неизвестный ключ сортировки - как created_at.
func Visible(tasks []model.Task, c model.Criteria) []model.Task {
	return Sort(Filter(tasks, c), c.SortKey, c.Direction)
}
