package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UkralStul/hub-graphql-service/internal/pubsub"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

// Refresh описывает тему, которую нужно обновить после записи,
// и способ получить её актуальное полное представление.
type Refresh struct {
	Topic string
	Load  func(ctx context.Context) (any, error)
}

// Refetch - обновление темы полным перечитыванием коллекции по фильтру.
func Refetch[T any](topic string, c *storage.Collection[T], filter storage.Filter) Refresh {
	return Refresh{
		Topic: topic,
		Load: func(ctx context.Context) (any, error) {
			return c.Find(ctx, filter)
		},
	}
}

// RefetchFor - обновление производной темы только для одного ключа:
// перечитываются документы по фильтру, публикация доходит лишь до подписчиков с этим ключом.
func RefetchFor[T any](topic, key string, c *storage.Collection[T], filter storage.Filter) Refresh {
	return Refresh{
		Topic: topic,
		Load: func(ctx context.Context) (any, error) {
			items, err := c.Find(ctx, filter)
			if err != nil {
				return nil, err
			}
			return pubsub.Scoped{Key: key, View: items}, nil
		},
	}
}

// PublishError - сбой на шаге оповещения после успешной записи.
type PublishError struct {
	Topic string
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.Topic, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Publisher превращает завершённую запись в публикации в реестр тем.
type Publisher struct {
	registry *pubsub.Registry
	logger   *slog.Logger
}

func New(registry *pubsub.Registry, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		registry: registry,
		logger:   logger.With("component", "broadcast"),
	}
}

// Notify перечитывает представление каждой темы и публикует его.
// Ошибка одной темы не мешает остальным; все ошибки возвращаются вместе.
// Темы без подписчиков не перечитываются.
func (p *Publisher) Notify(ctx context.Context, refreshes ...Refresh) error {
	var errs []error
	for _, r := range refreshes {
		if !p.registry.Known(r.Topic) {
			errs = append(errs, &PublishError{Topic: r.Topic, Err: pubsub.ErrUnknownTopic})
			continue
		}
		if p.registry.Len(r.Topic) == 0 {
			continue
		}
		view, err := r.Load(ctx)
		if err != nil {
			errs = append(errs, &PublishError{Topic: r.Topic, Err: err})
			continue
		}
		n, err := p.registry.Publish(r.Topic, view)
		if err != nil {
			errs = append(errs, &PublishError{Topic: r.Topic, Err: err})
			continue
		}
		p.logger.Debug("published", "topic", r.Topic, "subscribers", n)
	}
	return errors.Join(errs...)
}
