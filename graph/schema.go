package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
)

// NewSchema собирает схему GraphQL поверх резолвера.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	t := newTypes(r.store())
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:        r.query(t),
		Mutation:     r.mutation(t),
		Subscription: r.subscription(t),
		Types:        []graphql.Type{Upload},
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("build schema: %w", err)
	}
	return schema, nil
}

func arg(t graphql.Input) *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: t}
}

func required(t graphql.Type) *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: graphql.NewNonNull(t)}
}

// idArgs - аргумент id: ID!, общий для get* и all*(id).
func idArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{"id": required(graphql.ID)}
}

func (r *Resolver) query(t *types) *graphql.Object {
	st := r.Service
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			// списки
			"allUsers": &graphql.Field{
				Type: listOf(t.user),
				Resolve: list(r, "allUsers", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.User, error) {
					return st.Users(p.Context, v)
				}),
			},
			"allRoles": &graphql.Field{
				Type: listOf(t.role),
				Resolve: list(r, "allRoles", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.Role, error) {
					return st.Roles(p.Context, v)
				}),
			},
			"allHubs": &graphql.Field{
				Type: listOf(t.hub),
				Args: graphql.FieldConfigArgument{"status": arg(t.status)},
				Resolve: list(r, "allHubs", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.Hub, error) {
					return st.Hubs(p.Context, v, enumArg[domain.Status](p.Args, "status"))
				}),
			},
			"allPosts": &graphql.Field{
				Type: listOf(t.post),
				Args: graphql.FieldConfigArgument{"status": arg(t.status), "type": arg(t.postType)},
				Resolve: list(r, "allPosts", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.Post, error) {
					return st.Posts(p.Context, v,
						enumArg[domain.Status](p.Args, "status"),
						enumArg[domain.PostType](p.Args, "type"))
				}),
			},
			"allUserPosts": &graphql.Field{
				Type: listOf(t.post),
				Args: graphql.FieldConfigArgument{"type": arg(t.postType)},
				Resolve: list(r, "allUserPosts", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.Post, error) {
					return st.UserPosts(p.Context, v, enumArg[domain.PostType](p.Args, "type"))
				}),
			},
			"allPostComments": &graphql.Field{
				Type: listOf(t.comment),
				Args: idArgs(),
				Resolve: list(r, "allPostComments", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.Comment, error) {
					return st.PostComments(p.Context, v, args(p.Args).str("id"))
				}),
			},
			"allChats": &graphql.Field{
				Type: listOf(t.chat),
				Resolve: list(r, "allChats", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.Chat, error) {
					return st.Chats(p.Context, v)
				}),
			},
			"allChatMessages": &graphql.Field{
				Type: listOf(t.message),
				Args: idArgs(),
				Resolve: list(r, "allChatMessages", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.Message, error) {
					return st.ChatMessages(p.Context, v, args(p.Args).str("id"))
				}),
			},
			"allUserChats": &graphql.Field{
				Type: listOf(t.userChat),
				Resolve: list(r, "allUserChats", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.UserChat, error) {
					return st.UserChats(p.Context, v)
				}),
			},
			"allUserNotifications": &graphql.Field{
				Type: listOf(t.notification),
				Resolve: list(r, "allUserNotifications", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.Notification, error) {
					return st.UserNotifications(p.Context, v)
				}),
			},
			"allImages": &graphql.Field{
				Type: listOf(t.image),
				Resolve: list(r, "allImages", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.Image, error) {
					return st.Images(p.Context, v)
				}),
			},
			"allAvatars": &graphql.Field{
				Type: listOf(t.avatar),
				Resolve: list(r, "allAvatars", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.Avatar, error) {
					return st.Avatars(p.Context, v)
				}),
			},
			"allIcons": &graphql.Field{
				Type: listOf(t.icon),
				Args: graphql.FieldConfigArgument{"type": arg(t.iconType)},
				Resolve: list(r, "allIcons", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.Icon, error) {
					return st.Icons(p.Context, v, enumArg[domain.IconType](p.Args, "type"))
				}),
			},
			"allAchievements": &graphql.Field{
				Type: listOf(t.achievement),
				Resolve: list(r, "allAchievements", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.Achievement, error) {
					return st.Achievements(p.Context, v)
				}),
			},
			"allLanguages": &graphql.Field{
				Type: listOf(t.language),
				Resolve: list(r, "allLanguages", func(p graphql.ResolveParams, v *domain.Viewer) ([]*domain.Language, error) {
					return st.Languages(p.Context, v)
				}),
			},

			// значения перечислений
			"allStatus":      &graphql.Field{Type: listOf(t.status), Resolve: values(domain.Statuses)},
			"allRarities":    &graphql.Field{Type: listOf(t.rarity), Resolve: values(domain.Rarities)},
			"allPermissions": &graphql.Field{Type: listOf(t.permission), Resolve: values(domain.Permissions)},
			"allSettings":    &graphql.Field{Type: listOf(t.setting), Resolve: values(domain.Settings)},
			"allAreas":       &graphql.Field{Type: listOf(t.area), Resolve: values(domain.Areas)},
			"allChatTypes":   &graphql.Field{Type: listOf(t.chatType), Resolve: values(domain.ChatTypes)},
			"allIconTypes":   &graphql.Field{Type: listOf(t.iconType), Resolve: values(domain.IconTypes)},
			"allPostTypes":   &graphql.Field{Type: listOf(t.postType), Resolve: values(domain.PostTypes)},

			// один документ
			"getUser": &graphql.Field{
				Type: t.user,
				Args: graphql.FieldConfigArgument{"id": arg(graphql.ID)},
				Resolve: one(r, "getUser", func(p graphql.ResolveParams, v *domain.Viewer) (*domain.User, error) {
					return st.User(p.Context, v, args(p.Args).str("id"))
				}),
			},
			"getPost": &graphql.Field{
				Type: t.post,
				Args: idArgs(),
				Resolve: one(r, "getPost", func(p graphql.ResolveParams, v *domain.Viewer) (*domain.Post, error) {
					return st.Post(p.Context, v, args(p.Args).str("id"))
				}),
			},
			"getHub": &graphql.Field{
				Type: t.hub,
				Args: idArgs(),
				Resolve: one(r, "getHub", func(p graphql.ResolveParams, v *domain.Viewer) (*domain.Hub, error) {
					return st.Hub(p.Context, v, args(p.Args).str("id"))
				}),
			},
			"getAvatar": &graphql.Field{
				Type: t.avatar,
				Args: idArgs(),
				Resolve: one(r, "getAvatar", func(p graphql.ResolveParams, v *domain.Viewer) (*domain.Avatar, error) {
					return st.Avatar(p.Context, v, args(p.Args).str("id"))
				}),
			},
			"getImage": &graphql.Field{
				Type: t.image,
				Args: idArgs(),
				Resolve: one(r, "getImage", func(p graphql.ResolveParams, v *domain.Viewer) (*domain.Image, error) {
					return st.Image(p.Context, v, args(p.Args).str("id"))
				}),
			},
			"getIcon": &graphql.Field{
				Type: t.icon,
				Args: idArgs(),
				Resolve: one(r, "getIcon", func(p graphql.ResolveParams, v *domain.Viewer) (*domain.Icon, error) {
					return st.Icon(p.Context, v, args(p.Args).str("id"))
				}),
			},

			// счётчики
			"countUsers": &graphql.Field{
				Type: graphql.Int,
				Resolve: count(r, "countUsers", func(p graphql.ResolveParams, v *domain.Viewer) (*int, error) {
					return st.CountUsers(p.Context, v)
				}),
			},
			"countPosts": &graphql.Field{
				Type: graphql.Int,
				Args: graphql.FieldConfigArgument{"type": arg(t.postType)},
				Resolve: count(r, "countPosts", func(p graphql.ResolveParams, v *domain.Viewer) (*int, error) {
					return st.CountPosts(p.Context, v, enumArg[domain.PostType](p.Args, "type"))
				}),
			},
			"countComments": &graphql.Field{
				Type: graphql.Int,
				Args: graphql.FieldConfigArgument{"id": arg(graphql.ID)},
				Resolve: count(r, "countComments", func(p graphql.ResolveParams, v *domain.Viewer) (*int, error) {
					return st.CountComments(p.Context, v, args(p.Args).str("id"))
				}),
			},
			"countHubs": &graphql.Field{
				Type: graphql.Int,
				Resolve: count(r, "countHubs", func(p graphql.ResolveParams, v *domain.Viewer) (*int, error) {
					return st.CountHubs(p.Context, v)
				}),
			},
			"countAvatars": &graphql.Field{
				Type: graphql.Int,
				Resolve: count(r, "countAvatars", func(p graphql.ResolveParams, v *domain.Viewer) (*int, error) {
					return st.CountAvatars(p.Context, v)
				}),
			},
			"countImages": &graphql.Field{
				Type: graphql.Int,
				Resolve: count(r, "countImages", func(p graphql.ResolveParams, v *domain.Viewer) (*int, error) {
					return st.CountImages(p.Context, v)
				}),
			},
		},
	})
}
