package view

import (
	"slices"
	"strings"

	"github.com/BuzzLyutic/todo-app/internal/model"
)

// Sort возвращает устойчиво отсортированную копию. Направление меняет только знак сравнения,
// равные элементы сохраняют исходный порядок в обе стороны.
func Sort(tasks []model.Task, key model.SortKey, dir model.SortDirection) []model.Task {
	out := slices.Clone(tasks)
	cmp := comparator(key)
	sign := 1
	if dir == model.Desc {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b model.Task) int {
		return sign * cmp(a, b)
	})
	return out
}

func comparator(key model.SortKey) func(a, b model.Task) int {
	switch key {
	case model.SortByDueDate:
		return compareDueDate
	case model.SortByPriority:
		return func(a, b model.Task) int {
			return a.Priority.Rank() - b.Priority.Rank()
		}
	case model.SortByCategory:
		return func(a, b model.Task) int {
			return strings.Compare(string(a.Category), string(b.Category))
		}
	default:
		return func(a, b model.Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
}

// Задача без срока считается бесконечно поздней: по возрастанию в конце, по убыванию в начале.
func compareDueDate(a, b model.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	return a.DueDate.Compare(*b.DueDate)
}
