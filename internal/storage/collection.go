package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type stamper interface {
	Stamp(id string, now time.Time)
}

// Collection - типизированный доступ к одной коллекции документов.
type Collection[T any] struct {
	name    string
	backend Backend
	now     func() time.Time
}

// NewCollection создаёт коллекцию поверх драйвера.
func NewCollection[T any](backend Backend, name string) *Collection[T] {
	return &Collection[T]{
		name:    name,
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Name возвращает имя коллекции.
func (c *Collection[T]) Name() string { return c.name }

func (c *Collection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var out T
	if err := c.backend.FindByID(ctx, c.name, id, &out); err != nil {
		return nil, wrap("find", c.name, err)
	}
	return &out, nil
}

// Find возвращает все документы, подходящие под фильтр, в порядке создания.
// Пустой результат - непустой срез нулевой длины.
func (c *Collection[T]) Find(ctx context.Context, filter Filter) ([]*T, error) {
	var out []*T
	if err := c.backend.Find(ctx, c.name, filter, &out); err != nil {
		return nil, wrap("find", c.name, err)
	}
	if out == nil {
		out = []*T{}
	}
	return out, nil
}

// FindOne возвращает первый документ по фильтру или ErrNotFound.
func (c *Collection[T]) FindOne(ctx context.Context, filter Filter) (*T, error) {
	items, err := c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, wrap("find", c.name, ErrNotFound)
	}
	return items[0], nil
}

// Create присваивает сущности id и метки времени и сохраняет её.
func (c *Collection[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if s, ok := any(entity).(stamper); ok {
		s.Stamp(uuid.NewString(), c.now())
	}
	if err := c.backend.Insert(ctx, c.name, entity); err != nil {
		return nil, wrap("insert", c.name, err)
	}
	return entity, nil
}

// Update применяет частичное обновление и возвращает актуальную версию документа.
func (c *Collection[T]) Update(ctx context.Context, id string, patch Patch) (*T, error) {
	if patch == nil {
		patch = Patch{}
	}
	patch["updatedAt"] = c.now()
	if err := c.backend.Update(ctx, c.name, id, patch); err != nil {
		return nil, wrap("update", c.name, err)
	}
	return c.FindByID(ctx, id)
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return wrap("delete", c.name, c.backend.Delete(ctx, c.name, id))
}

// Count - оценка количества документов по фильтру (estimatedCount).
func (c *Collection[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	n, err := c.backend.Count(ctx, c.name, filter)
	if err != nil {
		return 0, wrap("count", c.name, err)
	}
	return n, nil
}
