package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BuzzLyutic/todo-app/internal/model"
)

var ErrValidation = errors.New("validation error")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

type createRequest struct {
	Text     string  `json:"text"`
	Priority string  `json:"priority"`
	Category string  `json:"category"`
	DueDate  *string `json:"due_date"`
}

func (req createRequest) draft() (model.Draft, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return model.Draft{}, invalid("text must not be empty")
	}

	d := model.Draft{
		Text:     text,
		Priority: model.Priority(req.Priority),
		Category: model.Category(req.Category),
	}.Normalize()
	if !d.Priority.Valid() {
		return model.Draft{}, invalid("unknown priority %q", req.Priority)
	}
	if !d.Category.Valid() {
		return model.Draft{}, invalid("unknown category %q", req.Category)
	}

	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return model.Draft{}, err
		}
		d.DueDate = &due
	}
	return d, nil
}

// parsePatch разбирает частичное тело. Присутствие поля отличается от его отсутствия,
// due_date: null снимает срок.
func parsePatch(body []byte) (model.Patch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.Patch{}, invalid("invalid json")
	}

	var p model.Patch
	for field, value := range raw {
		switch field {
		case "text":
			var text string
			if err := json.Unmarshal(value, &text); err != nil || strings.TrimSpace(text) == "" {
				return model.Patch{}, invalid("text must be a non-empty string")
			}
			text = strings.TrimSpace(text)
			p.Text = &text
		case "completed":
			var v bool
			if err := json.Unmarshal(value, &v); err != nil || isNull(value) {
				return model.Patch{}, invalid("completed must be a boolean")
			}
			p.Completed = &v
		case "important":
			var v bool
			if err := json.Unmarshal(value, &v); err != nil || isNull(value) {
				return model.Patch{}, invalid("important must be a boolean")
			}
			p.Important = &v
		case "priority":
			var v model.Priority
			if err := json.Unmarshal(value, &v); err != nil || !v.Valid() {
				return model.Patch{}, invalid("unknown priority %s", value)
			}
			p.Priority = &v
		case "category":
			var v model.Category
			if err := json.Unmarshal(value, &v); err != nil || !v.Valid() {
				return model.Patch{}, invalid("unknown category %s", value)
			}
			p.Category = &v
		case "due_date":
			if isNull(value) {
				p.ClearDueDate = true
				continue
			}
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return model.Patch{}, invalid("due_date must be a string or null")
			}
			due, err := parseDueDate(s)
			if err != nil {
				return model.Patch{}, err
			}
			p.DueDate = &due
		default:
			return model.Patch{}, invalid("field %q cannot be updated", field)
		}
	}

	if p.Empty() {
		return model.Patch{}, invalid("nothing to update")
	}
	return p, nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

// parseDueDate принимает RFC3339 или дату из поля <input type="date">.
func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, invalid("due_date must be RFC3339 or YYYY-MM-DD")
}

// parseCriteria читает фильтры и сортировку из query. Отсутствующие параметры берутся по умолчанию.
func parseCriteria(r *http.Request) (model.Criteria, error) {
	q := r.URL.Query()
	c := model.DefaultCriteria()
	c.Search = q.Get("q")

	if v := q.Get("category"); v != "" {
		c.Category = model.Category(v)
		if !c.Category.Valid() {
			return c, invalid("unknown category %q", v)
		}
	}
	if v := q.Get("priority"); v != "" {
		c.Priority = model.Priority(v)
		if !c.Priority.Valid() {
			return c, invalid("unknown priority %q", v)
		}
	}
	if v := q.Get("sort"); v != "" {
		c.SortKey = model.SortKey(v)
		if !c.SortKey.Valid() {
			return c, invalid("unknown sort key %q", v)
		}
	}
	if v := q.Get("dir"); v != "" {
		c.Direction = model.SortDirection(v)
		if !c.Direction.Valid() {
			return c, invalid("unknown sort direction %q", v)
		}
	}

	var err error
	if c.ShowCompleted, err = parseBool(q.Get("show_completed"), true); err != nil {
		return c, invalid("show_completed must be a boolean")
	}
	if c.OnlyImportant, err = parseBool(q.Get("only_important"), false); err != nil {
		return c, invalid("only_important must be a boolean")
	}
	return c, nil
}

func parseBool(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}
