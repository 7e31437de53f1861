package view

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/BuzzLyutic/todo-app/internal/model"
)

const DefaultCacheSize = 64

type cacheKey struct {
	revision uint64
	criteria model.Criteria
}

// Cache запоминает видимые списки по ключу (ревизия коллекции, критерии).
// Статистика зависит от текущего времени и считается каждый раз.
type Cache struct {
	lru *lru.Cache[cacheKey, []model.Task]
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	l, err := lru.New[cacheKey, []model.Task](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

// Derive - то же, что пакетный Derive. Ревизия обязана меняться при каждом изменении коллекции.
// nil Cache считает без мемоизации.
func (c *Cache) Derive(revision uint64, tasks []model.Task, crit model.Criteria, now time.Time) model.View {
	if c == nil {
		return Derive(tasks, crit, now)
	}

	key := cacheKey{revision: revision, criteria: crit}
	visible, ok := c.lru.Get(key)
	if !ok {
		visible = Visible(tasks, crit)
		c.lru.Add(key, visible)
	}

	out := make([]model.Task, len(visible))
	copy(out, visible)
	return model.View{
		Tasks:      out,
		Statistics: Stats(tasks, now),
	}
}

func (c *Cache) Purge() {
	if c != nil {
		c.lru.Purge()
	}
}
