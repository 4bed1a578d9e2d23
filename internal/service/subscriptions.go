package service

import (
	"context"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/pubsub"
)

// Подписки. Каждая возвращает канал представлений темы, который закрывается
// после отмены ctx. Без пользователя канал nil.

func (s *Service) subscribe(ctx context.Context, v *domain.Viewer, topic string, filter pubsub.Filter) (chan any, error) {
	return s.gw.Subscribe(ctx, v, topic, filter)
}

// SubscribeTopic - подписка на глобальную тему без фильтра.
func (s *Service) SubscribeTopic(ctx context.Context, v *domain.Viewer, topic string) (chan any, error) {
	return s.subscribe(ctx, v, topic, nil)
}

func (s *Service) SubscribeHubs(ctx context.Context, v *domain.Viewer, status domain.Status) (chan any, error) {
	return s.subscribe(ctx, v, TopicHubs, pubsub.Match(func(h *domain.Hub) bool {
		return status == "" || h.Status == status
	}))
}

func (s *Service) SubscribePosts(ctx context.Context, v *domain.Viewer, status domain.Status, typ domain.PostType) (chan any, error) {
	return s.subscribe(ctx, v, TopicPosts, pubsub.Match(func(p *domain.Post) bool {
		return (status == "" || p.Status == status) && (typ == "" || p.Type == typ)
	}))
}

func (s *Service) SubscribeComments(ctx context.Context, v *domain.Viewer, postID string) (chan any, error) {
	return s.subscribe(ctx, v, commentsByPost.Name, commentsByPost.For(postID))
}

func (s *Service) SubscribeMessages(ctx context.Context, v *domain.Viewer, chatID string) (chan any, error) {
	if v == nil {
		return nil, nil
	}
	if err := s.ensureMember(ctx, v, chatID); err != nil {
		return nil, err
	}
	return s.subscribe(ctx, v, messagesByChat.Name, messagesByChat.For(chatID))
}

// SubscribeUserChats - открытые переписки текущего пользователя.
func (s *Service) SubscribeUserChats(ctx context.Context, v *domain.Viewer) (chan any, error) {
	if v == nil {
		return nil, nil
	}
	return s.subscribe(ctx, v, userChatsByUser.Name, userChatsByUser.For(v.ID))
}

func (s *Service) SubscribeUserNotifications(ctx context.Context, v *domain.Viewer) (chan any, error) {
	if v == nil {
		return nil, nil
	}
	return s.subscribe(ctx, v, notificationsByUser.Name, notificationsByUser.For(v.ID))
}

// SubscribeUserPosts - посты пользователя name (пустое имя - текущий пользователь).
func (s *Service) SubscribeUserPosts(ctx context.Context, v *domain.Viewer, name string, typ domain.PostType) (chan any, error) {
	if v == nil {
		return nil, nil
	}
	authorID := v.ID
	if name != "" && name != v.Name {
		ids, err := s.userIDsByName(ctx, []string{name})
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, nil
		}
		authorID = ids[0]
	}
	return s.subscribe(ctx, v, postsByAuthor.Name, postsByAuthor.Where(authorID, func(p *domain.Post) bool {
		return typ == "" || p.Type == typ
	}))
}
