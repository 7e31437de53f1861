package view

import (
	"math"
	"time"

	"github.com/BuzzLyutic/todo-app/internal/model"
)

// Stats считает всю коллекцию без фильтров за один проход с одним now.
func Stats(tasks []model.Task, now time.Time) model.Statistics {
	s := model.Statistics{
		Total:      len(tasks),
		ByCategory: make(map[model.Category]int, len(model.Categories)),
		ByPriority: make(map[model.Priority]int, len(model.Priorities)),
	}
	for _, c := range model.Categories {
		s.ByCategory[c] = 0
	}
	for _, p := range model.Priorities {
		s.ByPriority[p] = 0
	}

	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
		if t.Important {
			s.Important++
		}
		s.ByCategory[t.Category]++
		s.ByPriority[t.Priority]++
	}
	return s
}

// CompletionPercent - доля выполненных в процентах с округлением, 0 для пустой коллекции.
func CompletionPercent(s model.Statistics) int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
}
