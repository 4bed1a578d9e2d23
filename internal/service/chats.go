package service

import (
	"context"
	"fmt"

	"github.com/UkralStul/hub-graphql-service/internal/broadcast"
	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/gateway"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

func (s *Service) chatsTopic() broadcast.Refresh {
	return broadcast.Refetch(TopicChats, s.store.Chats, nil)
}

func (s *Service) messagesTopic(chatID string) broadcast.Refresh {
	return broadcast.RefetchFor(messagesByChat.Name, chatID, s.store.Messages, storage.Filter{"chat": chatID})
}

// openChatsFilter - открытые переписки пользователя.
func openChatsFilter(userID string) storage.Filter {
	return storage.Filter{"user": userID, "status": domain.ChatOpen}
}

func (s *Service) userChatsTopic(userID string) broadcast.Refresh {
	return broadcast.RefetchFor(userChatsByUser.Name, userID, s.store.UserChats, openChatsFilter(userID))
}

// === Chat ===

func (s *Service) AddChat(ctx context.Context, v *domain.Viewer, in AddChatInput) (*domain.Chat, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Chat]{
		Name:  "addChat",
		Input: in,
		Write: func(ctx context.Context) (*domain.Chat, error) {
			members, err := s.userIDsByName(ctx, in.Members)
			if err != nil {
				return nil, err
			}
			return s.store.Chats.Create(ctx, &domain.Chat{
				Type:     in.Type,
				Title:    in.Title,
				Members:  members,
				Messages: []string{},
			})
		},
		Affects: affects[*domain.Chat](s.chatsTopic()),
	})
}

func (s *Service) EditChat(ctx context.Context, v *domain.Viewer, in EditChatInput) (*domain.Chat, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Chat]{
		Name:  "editChat",
		Input: in,
		Write: func(ctx context.Context) (*domain.Chat, error) {
			p := storage.Patch{}
			storage.SetIf(p, "type", in.Type)
			storage.SetIf(p, "title", in.Title)
			if in.Members != nil {
				members, err := s.userIDsByName(ctx, *in.Members)
				if err != nil {
					return nil, err
				}
				p.Set("members", members)
			}
			return s.store.Chats.Update(ctx, in.ID, p)
		},
		Affects: affects[*domain.Chat](s.chatsTopic()),
	})
}

func (s *Service) DeleteChats(ctx context.Context, v *domain.Viewer, ids IDs) error {
	_, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[IDs]{
		Name:  "deleteChats",
		Input: ids,
		Write: func(ctx context.Context) (IDs, error) {
			return ids, deleteAll(ctx, s.store.Chats, ids)
		},
		Affects: affects[IDs](s.chatsTopic()),
	})
	return err
}

// === UserChat ===

// OpenUserChat открывает личную переписку текущего пользователя с пользователем name.
// Если участие уже есть, оно переоткрывается; иначе создаются чат и участие.
// Записи не атомарны: созданный чат остаётся, если участие записать не удалось.
func (s *Service) OpenUserChat(ctx context.Context, v *domain.Viewer, in OpenUserChatInput) (*domain.UserChat, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.UserChat]{
		Name:  "openUserChat",
		Input: in,
		Write: func(ctx context.Context) (*domain.UserChat, error) {
			if in.Name == v.Name {
				return nil, gateway.Invalid("name", "cannot open a chat with yourself")
			}
			peer, err := s.store.Users.FindOne(ctx, storage.Filter{"name": in.Name})
			if storage.IsNotFound(err) {
				return nil, gateway.Invalid("name", "user not found")
			}
			if err != nil {
				return nil, err
			}

			uc, err := s.store.UserChats.FindOne(ctx, storage.Filter{"user": v.ID, "interlocutor": peer.ID})
			switch {
			case err == nil:
				next := uc.Status.Next(domain.ChatOpened)
				if next == uc.Status {
					return uc, nil
				}
				return s.store.UserChats.Update(ctx, uc.ID, storage.Patch{"status": next})
			case !storage.IsNotFound(err):
				return nil, err
			}

			chat, err := s.store.Chats.Create(ctx, &domain.Chat{
				Type:     domain.ChatUser,
				Title:    peer.Name,
				Members:  []string{v.ID, peer.ID},
				Messages: []string{},
			})
			if err != nil {
				return nil, err
			}
			return s.store.UserChats.Create(ctx, &domain.UserChat{
				ChatID:         chat.ID,
				UserID:         v.ID,
				InterlocutorID: peer.ID,
				Status:         domain.ChatOpen,
			})
		},
		Affects: func(*domain.UserChat) []broadcast.Refresh {
			return []broadcast.Refresh{s.chatsTopic(), s.userChatsTopic(v.ID)}
		},
	})
}

// CloseUserChat закрывает участие текущего пользователя в переписке.
func (s *Service) CloseUserChat(ctx context.Context, v *domain.Viewer, id string) (*domain.UserChat, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.UserChat]{
		Name:  "closeUserChat",
		Input: IDs{id},
		Write: func(ctx context.Context) (*domain.UserChat, error) {
			uc, err := s.store.UserChats.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if uc.UserID != v.ID {
				return nil, gateway.Forbidden("chat %s belongs to another user", id)
			}
			return s.store.UserChats.Update(ctx, uc.ID, storage.Patch{"status": uc.Status.Next(domain.ChatClosedByUser)})
		},
		Affects: func(*domain.UserChat) []broadcast.Refresh {
			return []broadcast.Refresh{s.userChatsTopic(v.ID)}
		},
	})
}

// messageWrite - итог отправки сообщения: чат и участники, которых оно затронуло.
type messageWrite struct {
	chatID     string
	recipients []string
}

// AddUserChatMessage отправляет сообщение в чат от имени текущего пользователя.
// Для каждого другого участника участие открывается (или создаётся) и создаётся уведомление.
// Шаги выполняются по очереди и не откатываются.
func (s *Service) AddUserChatMessage(ctx context.Context, v *domain.Viewer, in SendMessageInput) (bool, error) {
	_, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[messageWrite]{
		Name:  "addUserChatMessage",
		Input: in,
		Write: func(ctx context.Context) (messageWrite, error) {
			chat, err := s.store.Chats.FindByID(ctx, in.Chat)
			if err != nil {
				return messageWrite{}, err
			}
			if !chat.HasMember(v.ID) {
				return messageWrite{}, gateway.Forbidden("not a member of chat %s", chat.ID)
			}

			msg, err := s.store.Messages.Create(ctx, &domain.Message{
				ChatID: chat.ID,
				UserID: v.ID,
				Text:   in.Text,
				Type:   domain.MessageUnread,
			})
			if err != nil {
				return messageWrite{}, err
			}
			messages := append(append([]string{}, chat.Messages...), msg.ID)
			if _, err := s.store.Chats.Update(ctx, chat.ID, storage.Patch{"messages": messages}); err != nil {
				return messageWrite{}, err
			}

			w := messageWrite{chatID: chat.ID}
			for _, member := range chat.Members {
				if member == v.ID {
					continue
				}
				if err := s.deliver(ctx, chat.ID, member, v); err != nil {
					return messageWrite{}, err
				}
				w.recipients = append(w.recipients, member)
			}
			return w, nil
		},
		Affects: func(w messageWrite) []broadcast.Refresh {
			refreshes := []broadcast.Refresh{s.messagesTopic(w.chatID), s.chatsTopic(), s.userChatsTopic(v.ID)}
			for _, m := range w.recipients {
				refreshes = append(refreshes, s.userChatsTopic(m), s.notificationsTopic(m))
			}
			return refreshes
		},
	})
	return err == nil, err
}

// deliver открывает участие member в чате и создаёт ему уведомление о сообщении от sender.
func (s *Service) deliver(ctx context.Context, chatID, member string, sender *domain.Viewer) error {
	uc, err := s.store.UserChats.FindOne(ctx, storage.Filter{"user": member, "chat": chatID})
	switch {
	case err == nil:
		if next := uc.Status.Next(domain.MessageReceived); next != uc.Status {
			if _, err := s.store.UserChats.Update(ctx, uc.ID, storage.Patch{"status": next}); err != nil {
				return err
			}
		}
	case storage.IsNotFound(err):
		_, err := s.store.UserChats.Create(ctx, &domain.UserChat{
			ChatID:         chatID,
			UserID:         member,
			InterlocutorID: sender.ID,
			Status:         domain.ChatOpen,
		})
		if err != nil {
			return err
		}
	default:
		return err
	}

	_, err = s.store.Notifications.Create(ctx, &domain.Notification{
		UserID: member,
		Text:   fmt.Sprintf("%s sent you message", sender.Name),
	})
	return err
}
