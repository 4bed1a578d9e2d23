package graph

import (
	"context"
	"log/slog"

	"github.com/UkralStul/hub-graphql-service/internal/auth"
	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/service"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

// Resolver - корневая структура резолверов.
// Она содержит все зависимости, которые нужны для выполнения запросов.
type Resolver struct {
	Service *service.Service
	Logger  *slog.Logger
}

func NewResolver(svc *service.Service, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		Service: svc,
		Logger:  logger.With("component", "graph"),
	}
}

func (r *Resolver) store() *storage.Store { return r.Service.Store() }

// viewer - пользователь текущей операции (кладётся в контекст транспортом).
func viewer(ctx context.Context) *domain.Viewer {
	return auth.ViewerFrom(ctx)
}
