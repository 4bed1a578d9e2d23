package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

// Directory находит пользователя и его права по id.
type Directory interface {
	Viewer(ctx context.Context, userID string) (*domain.Viewer, error)
}

// CookieConfig - параметры cookie сессии.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// Resolver определяет пользователя запроса: bearer-токен, затем cookie сессии.
type Resolver struct {
	sessions *Sessions
	tokens   *Tokens
	dir      Directory
	cookie   CookieConfig
	logger   *slog.Logger
}

func NewResolver(sessions *Sessions, tokens *Tokens, dir Directory, cookie CookieConfig, logger *slog.Logger) *Resolver {
	if cookie.Name == "" {
		cookie.Name = "sid"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		sessions: sessions,
		tokens:   tokens,
		dir:      dir,
		cookie:   cookie,
		logger:   logger.With("component", "auth"),
	}
}

// FromRequest определяет пользователя HTTP-запроса и id сессии (если она есть).
func (r *Resolver) FromRequest(req *http.Request) (*domain.Viewer, string) {
	if h := req.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return r.FromToken(req.Context(), token), ""
		}
	}
	c, err := req.Cookie(r.cookie.Name)
	if err != nil {
		return nil, ""
	}
	userID, ok := r.sessions.Lookup(c.Value)
	if !ok {
		return nil, ""
	}
	return r.lookup(req.Context(), userID), c.Value
}

// FromToken определяет пользователя по токену из connection_init:
// подходит как JWT, так и id сессии.
func (r *Resolver) FromToken(ctx context.Context, token string) *domain.Viewer {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil
	}
	if userID, err := r.tokens.Parse(token); err == nil {
		return r.lookup(ctx, userID)
	}
	if userID, ok := r.sessions.Lookup(token); ok {
		return r.lookup(ctx, userID)
	}
	return nil
}

func (r *Resolver) lookup(ctx context.Context, userID string) *domain.Viewer {
	v, err := r.dir.Viewer(ctx, userID)
	if err != nil {
		// удалённый пользователь - обычный анонимный запрос
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Error("viewer lookup failed", "user", userID, "error", err)
		}
		return nil
	}
	return v
}

// Middleware кладёт в контекст пользователя и управление сессией запроса.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		viewer, sid := r.FromRequest(req)
		ctx := WithViewer(req.Context(), viewer)
		ctx = context.WithValue(ctx, sessionKey, &Session{resolver: r, w: w, id: sid})
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// Session управляет сессией текущего HTTP-запроса: login и logout.
type Session struct {
	resolver *Resolver
	w        http.ResponseWriter
	id       string
}

// Start открывает сессию пользователя, ставит cookie и возвращает bearer-токен.
func (s *Session) Start(userID string) (string, error) {
	if s.id != "" {
		s.resolver.sessions.Revoke(s.id)
	}
	s.id = s.resolver.sessions.Create(userID)
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.resolver.cookie.Name,
		Value:    s.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.resolver.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.resolver.cookie.TTL.Seconds()),
	})
	return s.resolver.tokens.Issue(userID)
}

// End закрывает сессию и удаляет cookie.
func (s *Session) End() {
	if s.id != "" {
		s.resolver.sessions.Revoke(s.id)
		s.id = ""
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.resolver.cookie.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.resolver.cookie.Secure,
		MaxAge:   -1,
	})
}
