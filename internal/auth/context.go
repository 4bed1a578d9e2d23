package auth

import (
	"context"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
)

type contextKey string

const (
	viewerKey  = contextKey("viewer")
	sessionKey = contextKey("session")
)

// WithViewer кладёт пользователя в контекст.
func WithViewer(ctx context.Context, v *domain.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, v)
}

// ViewerFrom извлекает пользователя из контекста. nil - анонимный запрос.
func ViewerFrom(ctx context.Context) *domain.Viewer {
	v, _ := ctx.Value(viewerKey).(*domain.Viewer)
	return v
}

// SessionFrom извлекает управление сессией текущего HTTP-запроса.
// Для запросов по websocket возвращает nil.
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// WithoutSession убирает управление сессией: после upgrade до websocket
// cookie уже не выставить.
func WithoutSession(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionKey, (*Session)(nil))
}
