package dataloader

import (
	"context"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

type contextKey string

const key = contextKey("dataloaders")

// Wait - окно, за которое собираются ключи одного батча.
const Wait = time.Millisecond

// Loaders содержит дата-лоадеры связей (автор поста, хаб, превью, аватар, иконка).
// Живут один запрос, поэтому кэш не устаревает между запросами.
type Loaders struct {
	Users   *dataloader.Loader
	Hubs    *dataloader.Loader
	Images  *dataloader.Loader
	Avatars *dataloader.Loader
	Icons   *dataloader.Loader
	Roles   *dataloader.Loader
}

// New создаёт набор лоадеров поверх хранилища. opts дополняют окно Wait.
func New(store *storage.Store, opts ...dataloader.Option) *Loaders {
	opts = append([]dataloader.Option{dataloader.WithWait(Wait)}, opts...)
	return &Loaders{
		Users:   newLoader(store.Users, func(u *domain.User) string { return u.ID }, opts),
		Hubs:    newLoader(store.Hubs, func(h *domain.Hub) string { return h.ID }, opts),
		Images:  newLoader(store.Images, func(i *domain.Image) string { return i.ID }, opts),
		Avatars: newLoader(store.Avatars, func(a *domain.Avatar) string { return a.ID }, opts),
		Icons:   newLoader(store.Icons, func(i *domain.Icon) string { return i.ID }, opts),
		Roles:   newLoader(store.Roles, func(r *domain.Role) string { return r.ID }, opts),
	}
}

// newLoader строит лоадер, который читает все ключи батча одним запросом Find(id IN keys).
// Отсутствующий документ - nil без ошибки.
func newLoader[T any](c *storage.Collection[T], id func(*T) string, opts []dataloader.Option) *dataloader.Loader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make(storage.In, len(keys))
		for i, k := range keys {
			ids[i] = k.String()
		}

		results := make([]*dataloader.Result, len(keys))
		items, err := c.Find(ctx, storage.Filter{"id": ids})
		if err != nil {
			// ошибка одного запроса - ошибка для всех ключей
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		byID := make(map[string]*T, len(items))
		for _, it := range items {
			byID[id(it)] = it
		}
		// результат в том же порядке, что и ключи
		for i, k := range ids {
			if it, ok := byID[k]; ok {
				results[i] = &dataloader.Result{Data: it}
			} else {
				results[i] = &dataloader.Result{}
			}
		}
		return results
	}
	return dataloader.NewBatchedLoader(batchFn, opts...)
}

// Middleware кладёт свежие лоадеры в контекст каждого запроса.
func Middleware(store *storage.Store, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithLoaders(r.Context(), New(store))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithLoaders помещает лоадеры в контекст (для websocket-операций без http-запроса).
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, key, l)
}

// For извлекает лоадеры из контекста. nil, если middleware не подключён.
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(key).(*Loaders)
	return l
}

// Load загружает документ по id через лоадер. Пустой id - nil.
func Load[T any](ctx context.Context, l *dataloader.Loader, id string) (*T, error) {
	if id == "" {
		return nil, nil
	}
	data, err := l.Load(ctx, dataloader.StringKey(id))()
	if err != nil || data == nil {
		return nil, err
	}
	v, _ := data.(*T)
	return v, nil
}
