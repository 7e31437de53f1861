package view

import (
	"strings"

	"github.com/BuzzLyutic/todo-app/internal/model"
)

// Match проверяет задачу по всем условиям критериев.
func Match(t model.Task, c model.Criteria) bool {
	if c.Category != "" && t.Category != c.Category {
		return false
	}
	if c.Priority != "" && t.Priority != c.Priority {
		return false
	}
	if !c.ShowCompleted && t.Completed {
		return false
	}
	if c.OnlyImportant && !t.Important {
		return false
	}
	return matchText(t.Text, c.Search)
}

func matchText(text, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(term))
}

// Filter сохраняет исходный порядок и не меняет вход.
func Filter(tasks []model.Task, c model.Criteria) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if Match(t, c) {
			out = append(out, t)
		}
	}
	return out
}
