package graph

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/UkralStul/hub-graphql-service/internal/auth"
	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/service"
)

// Адаптеры операций сервиса к резолверам graphql-go.
// Каждый получает пользователя операции из контекста.

type opFn[R any] func(p graphql.ResolveParams, v *domain.Viewer) (R, error)

// === Query Resolvers ===

// list - запрос списка. Без пользователя null, пустой результат - [].
func list[T any](r *Resolver, op string, fn opFn[[]*T]) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		v := viewer(p.Context)
		items, err := fn(p, v)
		if err != nil {
			return nil, r.present(p.Context, op, err)
		}
		if v == nil {
			return nil, nil
		}
		if items == nil {
			items = []*T{}
		}
		return items, nil
	}
}

// one - запрос одного документа. Отсутствующий документ - null.
func one[T any](r *Resolver, op string, fn opFn[*T]) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		item, err := fn(p, viewer(p.Context))
		if err != nil {
			return nil, r.present(p.Context, op, err)
		}
		if item == nil {
			return nil, nil
		}
		return item, nil
	}
}

func count(r *Resolver, op string, fn opFn[*int]) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		n, err := fn(p, viewer(p.Context))
		if err != nil {
			return nil, r.present(p.Context, op, err)
		}
		if n == nil {
			return nil, nil
		}
		return *n, nil
	}
}

// values - список значений enum для форм клиента.
func values[T ~string](all []T) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if viewer(p.Context) == nil {
			return nil, nil
		}
		return all, nil
	}
}

// === Mutation Resolvers ===

// done - Boolean-мутация: true при успехе, false без пользователя.
func done[R any](r *Resolver, op string, fn opFn[R]) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		_, err := fn(p, viewer(p.Context))
		return r.ack(p.Context, op, err)
	}
}

// erase - мутация удаления по списку id.
func erase(r *Resolver, op string, fn func(ctx context.Context, v *domain.Viewer, ids service.IDs) error) graphql.FieldResolveFn {
	return done(r, op, func(p graphql.ResolveParams, v *domain.Viewer) (struct{}, error) {
		return struct{}{}, fn(p.Context, v, args(p.Args).strs("id"))
	})
}

type authPayload struct {
	Token string `json:"token"`
	User  *domain.User
}

func (r *Resolver) register(p graphql.ResolveParams) (interface{}, error) {
	in := args(p.Args)
	if m, ok := p.Args["registerInput"].(map[string]interface{}); ok {
		in = args(m)
	}
	user, err := r.Service.Register(p.Context, service.RegisterInput{
		Name:            in.str("name"),
		Email:           in.str("email"),
		Password:        in.str("password"),
		ConfirmPassword: in.str("confirmPassword"),
		Phone:           in.str("phone"),
		Role:            in.str("role"),
		Avatar:          in.str("avatar"),
	})
	if err != nil {
		return nil, r.present(p.Context, "register", err)
	}
	return user, nil
}

// login проверяет пароль и открывает сессию. По websocket сессии нет,
// тогда токен не выдаётся.
func (r *Resolver) login(p graphql.ResolveParams) (interface{}, error) {
	a := args(p.Args)
	user, err := r.Service.Login(p.Context, service.LoginInput{
		Name:     a.str("name"),
		Password: a.str("password"),
		Area:     a.str("area"),
	})
	if err != nil {
		return nil, r.present(p.Context, "login", err)
	}
	out := &authPayload{User: user}
	if s := auth.SessionFrom(p.Context); s != nil {
		if out.Token, err = s.Start(user.ID); err != nil {
			return nil, r.present(p.Context, "login", err)
		}
	}
	return out, nil
}

func (r *Resolver) logout(p graphql.ResolveParams) (interface{}, error) {
	s := auth.SessionFrom(p.Context)
	if s == nil || viewer(p.Context) == nil {
		return false, nil
	}
	s.End()
	return true, nil
}

// === Subscription Resolvers ===

// stream - подписка. Канал сервиса передаётся graphql-go как есть,
// каждое значение становится Source поля. Без пользователя поток
// состоит из одного null.
func stream(r *Resolver, op string, fn opFn[chan any]) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		ch, err := fn(p, viewer(p.Context))
		if err != nil {
			return nil, formatted(r.present(p.Context, op, err))
		}
		if ch == nil {
			ch = make(chan interface{}, 1)
			ch <- noStream{}
			close(ch)
		}
		return ch, nil
	}
}

// noStream - единственное значение потока подписки без пользователя.
// nil graphql-go заменил бы пустым объектом корня.
type noStream struct{}

// source - резолвер поля подписки: значение потока уже является результатом.
func source(p graphql.ResolveParams) (interface{}, error) {
	if _, ok := p.Source.(noStream); ok {
		return nil, nil
	}
	return p.Source, nil
}

// formatted сохраняет extensions: ошибку подписки graphql-go форматирует без них.
func formatted(err error) error {
	if e, ok := err.(*Error); ok {
		return gqlerrors.FormattedError{Message: e.Message, Extensions: e.Extensions()}
	}
	return err
}
