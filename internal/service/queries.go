package service

import (
	"context"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/gateway"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

// Запросы чтения не проходят через шлюз мутаций.
// Без пользователя любой запрос возвращает nil без обращения к хранилищу.

// optional добавляет поле в фильтр, только если значение задано.
func optional[T comparable](f storage.Filter, field string, v T) storage.Filter {
	var zero T
	if v != zero {
		f[field] = v
	}
	return f
}

func list[T any](ctx context.Context, v *domain.Viewer, c *storage.Collection[T], filter storage.Filter) ([]*T, error) {
	if v == nil {
		return nil, nil
	}
	return c.Find(ctx, filter)
}

func get[T any](ctx context.Context, v *domain.Viewer, c *storage.Collection[T], id string) (*T, error) {
	if v == nil {
		return nil, nil
	}
	return found(c.FindByID(ctx, id))
}

func count[T any](ctx context.Context, v *domain.Viewer, c *storage.Collection[T], filter storage.Filter) (*int, error) {
	if v == nil {
		return nil, nil
	}
	n, err := c.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := int(n)
	return &out, nil
}

func (s *Service) Users(ctx context.Context, v *domain.Viewer) ([]*domain.User, error) {
	return list(ctx, v, s.store.Users, nil)
}

func (s *Service) Roles(ctx context.Context, v *domain.Viewer) ([]*domain.Role, error) {
	return list(ctx, v, s.store.Roles, nil)
}

func (s *Service) Hubs(ctx context.Context, v *domain.Viewer, status domain.Status) ([]*domain.Hub, error) {
	return list(ctx, v, s.store.Hubs, optional(storage.Filter{}, "status", status))
}

func (s *Service) Posts(ctx context.Context, v *domain.Viewer, status domain.Status, typ domain.PostType) ([]*domain.Post, error) {
	f := optional(storage.Filter{}, "status", status)
	return list(ctx, v, s.store.Posts, optional(f, "type", typ))
}

// UserPosts - посты текущего пользователя.
func (s *Service) UserPosts(ctx context.Context, v *domain.Viewer, typ domain.PostType) ([]*domain.Post, error) {
	if v == nil {
		return nil, nil
	}
	return list(ctx, v, s.store.Posts, optional(storage.Filter{"author": v.ID}, "type", typ))
}

func (s *Service) PostComments(ctx context.Context, v *domain.Viewer, postID string) ([]*domain.Comment, error) {
	return list(ctx, v, s.store.Comments, storage.Filter{"post": postID})
}

func (s *Service) Chats(ctx context.Context, v *domain.Viewer) ([]*domain.Chat, error) {
	return list(ctx, v, s.store.Chats, nil)
}

// ensureMember пропускает только участника чата. Отсутствующий чат для
// постороннего неотличим от чужого.
func (s *Service) ensureMember(ctx context.Context, v *domain.Viewer, chatID string) error {
	chat, err := s.store.Chats.FindByID(ctx, chatID)
	if storage.IsNotFound(err) {
		return gateway.Forbidden("not a member of chat %s", chatID)
	}
	if err != nil {
		return err
	}
	if !chat.HasMember(v.ID) {
		return gateway.Forbidden("not a member of chat %s", chatID)
	}
	return nil
}

func (s *Service) ChatMessages(ctx context.Context, v *domain.Viewer, chatID string) ([]*domain.Message, error) {
	if v == nil {
		return nil, nil
	}
	if err := s.ensureMember(ctx, v, chatID); err != nil {
		return nil, err
	}
	return list(ctx, v, s.store.Messages, storage.Filter{"chat": chatID})
}

// UserChats - открытые переписки текущего пользователя.
func (s *Service) UserChats(ctx context.Context, v *domain.Viewer) ([]*domain.UserChat, error) {
	if v == nil {
		return nil, nil
	}
	return list(ctx, v, s.store.UserChats, openChatsFilter(v.ID))
}

func (s *Service) UserNotifications(ctx context.Context, v *domain.Viewer) ([]*domain.Notification, error) {
	if v == nil {
		return nil, nil
	}
	return list(ctx, v, s.store.Notifications, storage.Filter{"user": v.ID})
}

func (s *Service) Images(ctx context.Context, v *domain.Viewer) ([]*domain.Image, error) {
	return list(ctx, v, s.store.Images, nil)
}

func (s *Service) Avatars(ctx context.Context, v *domain.Viewer) ([]*domain.Avatar, error) {
	return list(ctx, v, s.store.Avatars, nil)
}

func (s *Service) Icons(ctx context.Context, v *domain.Viewer, typ domain.IconType) ([]*domain.Icon, error) {
	return list(ctx, v, s.store.Icons, optional(storage.Filter{}, "type", typ))
}

func (s *Service) Achievements(ctx context.Context, v *domain.Viewer) ([]*domain.Achievement, error) {
	return list(ctx, v, s.store.Achievements, nil)
}

func (s *Service) Languages(ctx context.Context, v *domain.Viewer) ([]*domain.Language, error) {
	return list(ctx, v, s.store.Languages, nil)
}

// User возвращает пользователя по id; пустой id - текущий пользователь.
func (s *Service) User(ctx context.Context, v *domain.Viewer, id string) (*domain.User, error) {
	if v != nil && id == "" {
		id = v.ID
	}
	return get(ctx, v, s.store.Users, id)
}

func (s *Service) Post(ctx context.Context, v *domain.Viewer, id string) (*domain.Post, error) {
	return get(ctx, v, s.store.Posts, id)
}

func (s *Service) Hub(ctx context.Context, v *domain.Viewer, id string) (*domain.Hub, error) {
	return get(ctx, v, s.store.Hubs, id)
}

func (s *Service) Avatar(ctx context.Context, v *domain.Viewer, id string) (*domain.Avatar, error) {
	return get(ctx, v, s.store.Avatars, id)
}

func (s *Service) Image(ctx context.Context, v *domain.Viewer, id string) (*domain.Image, error) {
	return get(ctx, v, s.store.Images, id)
}

func (s *Service) Icon(ctx context.Context, v *domain.Viewer, id string) (*domain.Icon, error) {
	return get(ctx, v, s.store.Icons, id)
}

func (s *Service) CountUsers(ctx context.Context, v *domain.Viewer) (*int, error) {
	return count(ctx, v, s.store.Users, nil)
}

func (s *Service) CountPosts(ctx context.Context, v *domain.Viewer, typ domain.PostType) (*int, error) {
	return count(ctx, v, s.store.Posts, optional(storage.Filter{}, "type", typ))
}

func (s *Service) CountComments(ctx context.Context, v *domain.Viewer, postID string) (*int, error) {
	return count(ctx, v, s.store.Comments, optional(storage.Filter{}, "post", postID))
}

func (s *Service) CountHubs(ctx context.Context, v *domain.Viewer) (*int, error) {
	return count(ctx, v, s.store.Hubs, nil)
}

func (s *Service) CountAvatars(ctx context.Context, v *domain.Viewer) (*int, error) {
	return count(ctx, v, s.store.Avatars, nil)
}

func (s *Service) CountImages(ctx context.Context, v *domain.Viewer) (*int, error) {
	return count(ctx, v, s.store.Images, nil)
}
