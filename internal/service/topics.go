package service

import (
	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/pubsub"
)

// Глобальные темы: каждый подписчик получает полную коллекцию.
const (
	TopicUsers        = "users"
	TopicRoles        = "roles"
	TopicHubs         = "hubs"
	TopicPosts        = "posts"
	TopicChats        = "chats"
	TopicImages       = "images"
	TopicAvatars      = "avatars"
	TopicIcons        = "icons"
	TopicAchievements = "achievements"
	TopicLanguages    = "languages"
)

// Производные темы: представление фильтруется по ключу подписчика.
var (
	commentsByPost      = pubsub.Keyed("comments", func(c *domain.Comment) string { return c.PostID })
	messagesByChat      = pubsub.Keyed("messages", func(m *domain.Message) string { return m.ChatID })
	userChatsByUser     = pubsub.Keyed("user-chats", func(uc *domain.UserChat) string { return uc.UserID })
	notificationsByUser = pubsub.Keyed("notifications", func(n *domain.Notification) string { return n.UserID })
	postsByAuthor       = pubsub.Keyed("user-posts", func(p *domain.Post) string { return p.AuthorID })
)

// Topics перечисляет все темы, которые должен знать реестр.
func Topics() []string {
	return []string{
		TopicUsers, TopicRoles, TopicHubs, TopicPosts, TopicChats,
		TopicImages, TopicAvatars, TopicIcons, TopicAchievements, TopicLanguages,
		commentsByPost.Name, messagesByChat.Name, userChatsByUser.Name,
		notificationsByUser.Name, postsByAuthor.Name,
	}
}
