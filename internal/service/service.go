package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/99designs/gqlgen/graphql"

	"github.com/UkralStul/hub-graphql-service/internal/broadcast"
	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/gateway"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
	"github.com/UkralStul/hub-graphql-service/internal/upload"
)

// Uploader сохраняет загруженный файл до записи сущности, которая на него ссылается.
type Uploader interface {
	Store(ctx context.Context, u *graphql.Upload) (*upload.File, error)
}

// Service - бизнес-операции платформы поверх хранилища и шлюза мутаций.
type Service struct {
	store  *storage.Store
	gw     *gateway.Gateway
	files  Uploader
	logger *slog.Logger
}

func New(store *storage.Store, gw *gateway.Gateway, files Uploader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		gw:     gw,
		files:  files,
		logger: logger.With("component", "service"),
	}
}

// Store возвращает хранилище (для загрузки связей в резолверах).
func (s *Service) Store() *storage.Store { return s.store }

// storeFile сохраняет загрузку. Ошибки формата файла - ошибки валидации поля field,
// прочие сбои - ошибки хранилища.
func (s *Service) storeFile(ctx context.Context, field string, u *graphql.Upload) (*upload.File, error) {
	if s.files == nil {
		return nil, &storage.Error{Op: "upload", Collection: field, Err: errors.New("uploads are not configured")}
	}
	f, err := s.files.Store(ctx, u)
	switch {
	case errors.Is(err, upload.ErrNotAllowed):
		return nil, gateway.Invalid(field, "file type is not allowed")
	case errors.Is(err, upload.ErrTooLarge):
		return nil, gateway.Invalid(field, "file is too large")
	case err != nil:
		return nil, &storage.Error{Op: "upload", Collection: field, Err: err}
	}
	return f, nil
}

// userIDsByName переводит имена пользователей в id. Неизвестные имена пропускаются.
func (s *Service) userIDsByName(ctx context.Context, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		u, err := s.store.Users.FindOne(ctx, storage.Filter{"name": name})
		if storage.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// deleteAll удаляет документы по очереди. Уже удалённые при ошибке не восстанавливаются.
func deleteAll[T any](ctx context.Context, c *storage.Collection[T], ids []string) error {
	for _, id := range ids {
		if err := c.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// found превращает ErrNotFound в (nil, nil): для запросов отсутствие - это null.
func found[T any](v *T, err error) (*T, error) {
	if storage.IsNotFound(err) {
		return nil, nil
	}
	return v, err
}

// Viewer реализует auth.Directory.
func (s *Service) Viewer(ctx context.Context, userID string) (*domain.Viewer, error) {
	u, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	v := &domain.Viewer{ID: u.ID, Name: u.Name, RoleID: u.RoleID}
	if u.RoleID != "" {
		role, err := s.store.Roles.FindByID(ctx, u.RoleID)
		switch {
		case err == nil:
			v.Permissions = role.Permissions
		case !storage.IsNotFound(err):
			return nil, err
		}
	}
	return v, nil
}

// affects - темы, которые обновляются после мутации независимо от её результата.
func affects[R any](refreshes ...broadcast.Refresh) func(R) []broadcast.Refresh {
	return func(R) []broadcast.Refresh { return refreshes }
}
