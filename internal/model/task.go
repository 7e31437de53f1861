package model

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Priorities в порядке отображения
var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// Rank возвращает порядковый вес приоритета: high=3, normal=2, low=1.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryStudy    Category = "study"
	CategoryHobby    Category = "hobby"
)

var Categories = []Category{CategoryWork, CategoryPersonal, CategoryStudy, CategoryHobby}

func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryStudy, CategoryHobby:
		return true
	}
	return false
}

type Task struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"user_id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	Priority  Priority   `json:"priority"`
	Category  Category   `json:"category"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Important bool       `json:"important"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// IsOverdue: срок задан, уже прошёл относительно now, и задача не выполнена.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return t.DueDate.Before(now)
}

// Draft - данные для создания задачи. id, created_at и completed назначает хранилище.
type Draft struct {
	OwnerID  string     `json:"-"`
	Text     string     `json:"text"`
	Priority Priority   `json:"priority"`
	Category Category   `json:"category"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}

// Normalize подставляет значения по умолчанию для пустых полей.
func (d Draft) Normalize() Draft {
	if d.Priority == "" {
		d.Priority = PriorityNormal
	}
	if d.Category == "" {
		d.Category = CategoryPersonal
	}
	return d
}

// Patch - частичное обновление. nil означает "не менять".
type Patch struct {
	Text         *string
	Completed    *bool
	Important    *bool
	Priority     *Priority
	Category     *Category
	DueDate      *time.Time
	ClearDueDate bool
}

func (p Patch) Empty() bool {
	return p.Text == nil && p.Completed == nil && p.Important == nil &&
		p.Priority == nil && p.Category == nil && p.DueDate == nil && !p.ClearDueDate
}

// Apply накладывает патч на копию задачи.
func (p Patch) Apply(t Task) Task {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Important != nil {
		t.Important = *p.Important
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	return t
}
