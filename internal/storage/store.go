package storage

import (
	"context"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
)

// Имена коллекций.
const (
	Roles         = "roles"
	Users         = "users"
	Hubs          = "hubs"
	Posts         = "posts"
	Comments      = "comments"
	Chats         = "chats"
	UserChats     = "user_chats"
	Messages      = "messages"
	Notifications = "notifications"
	Avatars       = "avatars"
	Images        = "images"
	Icons         = "icons"
	Achievements  = "achievements"
	Languages     = "languages"
)

// AllCollections перечисляет коллекции, которые создают драйверы при инициализации.
var AllCollections = []string{
	Roles, Users, Hubs, Posts, Comments, Chats, UserChats,
	Messages, Notifications, Avatars, Images, Icons, Achievements,
	Languages,
}

// Store объединяет типизированные коллекции поверх одного драйвера.
type Store struct {
	backend Backend

	Roles         *Collection[domain.Role]
	Users         *Collection[domain.User]
	Hubs          *Collection[domain.Hub]
	Posts         *Collection[domain.Post]
	Comments      *Collection[domain.Comment]
	Chats         *Collection[domain.Chat]
	UserChats     *Collection[domain.UserChat]
	Messages      *Collection[domain.Message]
	Notifications *Collection[domain.Notification]
	Avatars       *Collection[domain.Avatar]
	Images        *Collection[domain.Image]
	Icons         *Collection[domain.Icon]
	Achievements  *Collection[domain.Achievement]
	Languages     *Collection[domain.Language]
}

// New создаёт Store поверх драйвера.
func New(b Backend) *Store {
	return &Store{
		backend:       b,
		Roles:         NewCollection[domain.Role](b, Roles),
		Users:         NewCollection[domain.User](b, Users),
		Hubs:          NewCollection[domain.Hub](b, Hubs),
		Posts:         NewCollection[domain.Post](b, Posts),
		Comments:      NewCollection[domain.Comment](b, Comments),
		Chats:         NewCollection[domain.Chat](b, Chats),
		UserChats:     NewCollection[domain.UserChat](b, UserChats),
		Messages:      NewCollection[domain.Message](b, Messages),
		Notifications: NewCollection[domain.Notification](b, Notifications),
		Avatars:       NewCollection[domain.Avatar](b, Avatars),
		Images:        NewCollection[domain.Image](b, Images),
		Icons:         NewCollection[domain.Icon](b, Icons),
		Achievements:  NewCollection[domain.Achievement](b, Achievements),
		Languages:     NewCollection[domain.Language](b, Languages),
	}
}

// Backend возвращает драйвер, поверх которого построен Store.
func (s *Store) Backend() Backend { return s.backend }

func (s *Store) Close(ctx context.Context) error {
	return s.backend.Close(ctx)
}
