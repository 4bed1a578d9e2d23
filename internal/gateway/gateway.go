package gateway

import (
	"context"
	"log/slog"

	"github.com/UkralStul/hub-graphql-service/internal/broadcast"
	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/pubsub"
)

// Validator проверяет входные данные операции до записи.
type Validator interface {
	Validate() error
}

// Mutation - одна операция записи: проверка, запись и темы, которые она затрагивает.
// Составные операции выполняют несколько записей внутри Write последовательно,
// уже сделанные записи при ошибке не откатываются.
type Mutation[R any] struct {
	Name    string
	Input   Validator
	Write   func(ctx context.Context) (R, error)
	Affects func(result R) []broadcast.Refresh
	// Anonymous разрешает вызов без пользователя (регистрация)
	Anonymous bool
}

// Gateway - общая точка входа для мутаций и подписок.
type Gateway struct {
	registry  *pubsub.Registry
	publisher *broadcast.Publisher
	logger    *slog.Logger
}

func New(registry *pubsub.Registry, publisher *broadcast.Publisher, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		registry:  registry,
		publisher: publisher,
		logger:    logger.With("component", "gateway"),
	}
}

// Execute выполняет мутацию: авторизация, валидация, запись, оповещение.
// Ошибка оповещения только логируется - запись уже состоялась, вызывающий видит успех.
func Execute[R any](ctx context.Context, g *Gateway, viewer *domain.Viewer, m Mutation[R]) (R, error) {
	var zero R
	if viewer == nil && !m.Anonymous {
		return zero, ErrUnauthorized
	}
	if m.Input != nil {
		if err := m.Input.Validate(); err != nil {
			return zero, err
		}
	}

	result, err := m.Write(ctx)
	if err != nil {
		g.logger.Debug("mutation failed", "mutation", m.Name, "viewer", viewerID(viewer), "error", err)
		return zero, err
	}

	if m.Affects != nil {
		// оповещение не должно обрываться вместе с запросом клиента
		nctx := context.WithoutCancel(ctx)
		if err := g.publisher.Notify(nctx, m.Affects(result)...); err != nil {
			g.logger.Error("broadcast failed", "mutation", m.Name, "viewer", viewerID(viewer), "error", err)
		}
	}
	return result, nil
}

// Subscribe регистрирует подписчика темы от имени viewer.
// Без пользователя возвращается nil-канал: потока нет.
// Подписка снимается, когда ctx отменён; после этого канал закрывается.
func (g *Gateway) Subscribe(ctx context.Context, viewer *domain.Viewer, topic string, filter pubsub.Filter) (chan any, error) {
	if viewer == nil {
		return nil, nil
	}
	sub, err := g.registry.Subscribe(topic, filter)
	if err != nil {
		g.logger.Error("subscribe failed", "topic", topic, "viewer", viewer.ID, "error", err)
		return nil, err
	}

	out := make(chan any)
	go func() {
		defer close(out)
		defer g.registry.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-sub.C():
				if !ok {
					return
				}
				select {
				case out <- pubsub.Unscope(v):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func viewerID(v *domain.Viewer) string {
	if v == nil {
		return ""
	}
	return v.ID
}
