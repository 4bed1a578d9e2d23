package graph

import (
	"context"

	dl "github.com/graph-gophers/dataloader"
	"github.com/graphql-go/graphql"

	"github.com/UkralStul/hub-graphql-service/internal/dataloader"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

// Загрузка связей. В http-запросе связи идут через лоадеры запроса,
// в подписках и тестах без middleware - напрямую из хранилища.

type entity interface {
	EntityID() string
}

type pickLoader func(*dataloader.Loaders) *dl.Loader

func loadOne[T any](ctx context.Context, pick pickLoader, c *storage.Collection[T], id string) (interface{}, error) {
	if id == "" {
		return nil, nil
	}
	var (
		v   *T
		err error
	)
	if l := dataloader.For(ctx); l != nil && pick != nil {
		v, err = dataloader.Load[T](ctx, pick(l), id)
	} else {
		v, err = c.FindByID(ctx, id)
		if storage.IsNotFound(err) {
			return nil, nil
		}
	}
	if err != nil || v == nil {
		return nil, err
	}
	return v, nil
}

// loadMany сохраняет порядок ids; отсутствующие документы пропускаются.
func loadMany[T any](ctx context.Context, pick pickLoader, c *storage.Collection[T], ids []string) (interface{}, error) {
	out := make([]*T, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	if l := dataloader.For(ctx); l != nil && pick != nil {
		data, errs := pick(l).LoadMany(ctx, dl.NewKeysFromStrings(ids))()
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
		for _, d := range data {
			if v, ok := d.(*T); ok && v != nil {
				out = append(out, v)
			}
		}
		return out, nil
	}

	items, err := c.Find(ctx, storage.Filter{"id": storage.In(ids)})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*T, len(items))
	for _, it := range items {
		if e, ok := any(it).(entity); ok {
			byID[e.EntityID()] = it
		}
	}
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

// ref - резолвер связи "один к одному": id берётся из источника.
func ref[S, T any](pick pickLoader, c *storage.Collection[T], id func(*S) string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		src, ok := p.Source.(*S)
		if !ok {
			return nil, nil
		}
		return loadOne(p.Context, pick, c, id(src))
	}
}

// refs - резолвер связи "один ко многим" по списку id.
func refs[S, T any](pick pickLoader, c *storage.Collection[T], ids func(*S) []string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		src, ok := p.Source.(*S)
		if !ok {
			return nil, nil
		}
		return loadMany(p.Context, pick, c, ids(src))
	}
}

func users(l *dataloader.Loaders) *dl.Loader   { return l.Users }
func hubs(l *dataloader.Loaders) *dl.Loader    { return l.Hubs }
func images(l *dataloader.Loaders) *dl.Loader  { return l.Images }
func avatars(l *dataloader.Loaders) *dl.Loader { return l.Avatars }
func icons(l *dataloader.Loaders) *dl.Loader   { return l.Icons }
func roles(l *dataloader.Loaders) *dl.Loader   { return l.Roles }
