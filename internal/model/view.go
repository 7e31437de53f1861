package model

type SortKey string

const (
	SortByCreatedAt SortKey = "created_at"
	SortByDueDate   SortKey = "due_date"
	SortByPriority  SortKey = "priority"
	SortByCategory  SortKey = "category"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortByCreatedAt, SortByDueDate, SortByPriority, SortByCategory:
		return true
	}
	return false
}

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

func (d SortDirection) Valid() bool {
	return d == Asc || d == Desc
}

// Criteria - параметры фильтрации и сортировки. Пустые Category/Priority означают "любые".
// Тип сравнимый, используется как ключ кэша.
type Criteria struct {
	Category      Category
	Priority      Priority
	ShowCompleted bool
	OnlyImportant bool
	Search        string
	SortKey       SortKey
	Direction     SortDirection
}

func DefaultCriteria() Criteria {
	return Criteria{
		ShowCompleted: true,
		SortKey:       SortByCreatedAt,
		Direction:     Desc,
	}
}

type Statistics struct {
	Total      int              `json:"total"`
	Completed  int              `json:"completed"`
	Overdue    int              `json:"overdue"`
	Important  int              `json:"important"`
	ByCategory map[Category]int `json:"by_category"`
	ByPriority map[Priority]int `json:"by_priority"`
}

type View struct {
	Tasks      []Task     `json:"tasks"`
	Statistics Statistics `json:"statistics"`
}
