package graph

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

// types - типы схемы. Объектные типы ссылаются друг на друга,
// поэтому поля задаются через FieldsThunk.
type types struct {
	postType    *graphql.Enum
	status      *graphql.Enum
	chatType    *graphql.Enum
	chatStatus  *graphql.Enum
	messageType *graphql.Enum
	rarity      *graphql.Enum
	iconType    *graphql.Enum
	permission  *graphql.Enum
	setting     *graphql.Enum
	area        *graphql.Enum

	role         *graphql.Object
	user         *graphql.Object
	hub          *graphql.Object
	post         *graphql.Object
	comment      *graphql.Object
	chat         *graphql.Object
	userChat     *graphql.Object
	message      *graphql.Object
	notification *graphql.Object
	avatar       *graphql.Object
	image        *graphql.Object
	icon         *graphql.Object
	achievement  *graphql.Object
	language     *graphql.Object
	authPayload  *graphql.Object
}

// enumType строит enum, значения которого - доменные константы.
func enumType[T ~string](name string, values []T) *graphql.Enum {
	cfg := graphql.EnumValueConfigMap{}
	for _, v := range values {
		cfg[string(v)] = &graphql.EnumValueConfig{Value: v}
	}
	return graphql.NewEnum(graphql.EnumConfig{Name: name, Values: cfg})
}

type stamped interface {
	EntityID() string
	Created() time.Time
	Updated() time.Time
}

// withBase добавляет общие поля сущности: id, createdAt, updatedAt.
func withBase(fields graphql.Fields) graphql.Fields {
	fields["id"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.ID),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if e, ok := p.Source.(stamped); ok {
				return e.EntityID(), nil
			}
			return nil, nil
		},
	}
	fields["createdAt"] = &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if e, ok := p.Source.(stamped); ok {
				return timestamp(e.Created()), nil
			}
			return nil, nil
		},
	}
	fields["updatedAt"] = &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if e, ok := p.Source.(stamped); ok {
				return timestamp(e.Updated()), nil
			}
			return nil, nil
		},
	}
	return fields
}

func nonNull(t graphql.Output) graphql.Output { return graphql.NewNonNull(t) }

func listOf(t graphql.Output) graphql.Output { return graphql.NewList(t) }

func newTypes(st *storage.Store) *types {
	t := &types{
		postType:    enumType("PostType", domain.PostTypes),
		status:      enumType("Status", domain.Statuses),
		chatType:    enumType("ChatType", domain.ChatTypes),
		chatStatus:  enumType("ChatStatus", domain.ChatStatuses),
		messageType: enumType("MessageType", domain.MessageTypes),
		rarity:      enumType("Rarity", domain.Rarities),
		iconType:    enumType("IconType", domain.IconTypes),
		permission:  enumType("Permission", domain.Permissions),
		setting:     enumType("Setting", domain.Settings),
		area:        enumType("Area", domain.Areas),
	}

	t.role = graphql.NewObject(graphql.ObjectConfig{
		Name: "Role",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return withBase(graphql.Fields{
				"name":        &graphql.Field{Type: nonNull(graphql.String)},
				"permissions": &graphql.Field{Type: listOf(t.permission)},
			})
		}),
	})

	t.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return withBase(graphql.Fields{
				"name":       &graphql.Field{Type: nonNull(graphql.String)},
				"email":      &graphql.Field{Type: nonNull(graphql.String)},
				"phone":      &graphql.Field{Type: graphql.String},
				"balance":    &graphql.Field{Type: graphql.Int},
				"level":      &graphql.Field{Type: graphql.Int},
				"experience": &graphql.Field{Type: graphql.Int},
				"settings":   &graphql.Field{Type: listOf(t.setting)},
				"role": &graphql.Field{
					Type:    t.role,
					Resolve: ref(roles, st.Roles, func(u *domain.User) string { return u.RoleID }),
				},
				"avatar": &graphql.Field{
					Type:    t.avatar,
					Resolve: ref(avatars, st.Avatars, func(u *domain.User) string { return u.AvatarID }),
				},
				"availableAvatars": &graphql.Field{
					Type:    listOf(t.avatar),
					Resolve: refs(avatars, st.Avatars, func(u *domain.User) []string { return u.AvailableAvatars }),
				},
				"preferences": &graphql.Field{
					Type:    listOf(t.hub),
					Resolve: refs(hubs, st.Hubs, func(u *domain.User) []string { return u.Preferences }),
				},
				"chats": &graphql.Field{
					Type:    listOf(t.userChat),
					Resolve: userChats(st),
				},
			})
		}),
	})

	t.hub = graphql.NewObject(graphql.ObjectConfig{
		Name: "Hub",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return withBase(graphql.Fields{
				"title":       &graphql.Field{Type: nonNull(graphql.String)},
				"description": &graphql.Field{Type: nonNull(graphql.String)},
				"slogan":      &graphql.Field{Type: nonNull(graphql.String)},
				"color":       &graphql.Field{Type: graphql.String},
				"status":      &graphql.Field{Type: nonNull(t.status)},
				"icon": &graphql.Field{
					Type:    t.icon,
					Resolve: ref(icons, st.Icons, func(h *domain.Hub) string { return h.IconID }),
				},
			})
		}),
	})

	t.post = graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return withBase(graphql.Fields{
				"type":        &graphql.Field{Type: nonNull(t.postType)},
				"title":       &graphql.Field{Type: nonNull(graphql.String)},
				"subtitle":    &graphql.Field{Type: graphql.String},
				"description": &graphql.Field{Type: graphql.String},
				"content":     &graphql.Field{Type: graphql.String},
				"views":       &graphql.Field{Type: graphql.Int},
				"status":      &graphql.Field{Type: nonNull(t.status)},
				"author": &graphql.Field{
					Type:    t.user,
					Resolve: ref(users, st.Users, func(p *domain.Post) string { return p.AuthorID }),
				},
				"preview": &graphql.Field{
					Type:    t.image,
					Resolve: ref(images, st.Images, func(p *domain.Post) string { return p.PreviewID }),
				},
				"hub": &graphql.Field{
					Type:    t.hub,
					Resolve: ref(hubs, st.Hubs, func(p *domain.Post) string { return p.HubID }),
				},
				"comments": &graphql.Field{
					Type: listOf(t.comment),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						post, ok := p.Source.(*domain.Post)
						if !ok {
							return nil, nil
						}
						return st.Comments.Find(p.Context, storage.Filter{"post": post.ID})
					},
				},
			})
		}),
	})

	t.comment = graphql.NewObject(graphql.ObjectConfig{
		Name: "Comment",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return withBase(graphql.Fields{
				"text": &graphql.Field{Type: nonNull(graphql.String)},
				"user": &graphql.Field{
					Type:    t.user,
					Resolve: ref(users, st.Users, func(c *domain.Comment) string { return c.UserID }),
				},
				"post": &graphql.Field{
					Type:    t.post,
					Resolve: ref(nil, st.Posts, func(c *domain.Comment) string { return c.PostID }),
				},
			})
		}),
	})

	t.chat = graphql.NewObject(graphql.ObjectConfig{
		Name: "Chat",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return withBase(graphql.Fields{
				"type":  &graphql.Field{Type: t.chatType},
				"title": &graphql.Field{Type: nonNull(graphql.String)},
				"members": &graphql.Field{
					Type:    listOf(t.user),
					Resolve: refs(users, st.Users, func(c *domain.Chat) []string { return c.Members }),
				},
				"messages": &graphql.Field{
					Type:    listOf(t.message),
					Resolve: membersOnly(refs(nil, st.Messages, func(c *domain.Chat) []string { return c.Messages })),
				},
			})
		}),
	})

	t.userChat = graphql.NewObject(graphql.ObjectConfig{
		Name: "UserChat",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return withBase(graphql.Fields{
				"status": &graphql.Field{Type: nonNull(t.chatStatus)},
				"chat": &graphql.Field{
					Type:    t.chat,
					Resolve: ref(nil, st.Chats, func(uc *domain.UserChat) string { return uc.ChatID }),
				},
				"user": &graphql.Field{
					Type:    t.user,
					Resolve: ref(users, st.Users, func(uc *domain.UserChat) string { return uc.UserID }),
				},
				"interlocutor": &graphql.Field{
					Type:    t.user,
					Resolve: ref(users, st.Users, func(uc *domain.UserChat) string { return uc.InterlocutorID }),
				},
			})
		}),
	})

	t.message = graphql.NewObject(graphql.ObjectConfig{
		Name: "Message",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return withBase(graphql.Fields{
				"text": &graphql.Field{Type: nonNull(graphql.String)},
				"type": &graphql.Field{Type: nonNull(t.messageType)},
				"chat": &graphql.Field{
					Type:    t.chat,
					Resolve: ref(nil, st.Chats, func(m *domain.Message) string { return m.ChatID }),
				},
				"user": &graphql.Field{
					Type:    t.user,
					Resolve: ref(users, st.Users, func(m *domain.Message) string { return m.UserID }),
				},
			})
		}),
	})

	t.notification = graphql.NewObject(graphql.ObjectConfig{
		Name: "Notification",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return withBase(graphql.Fields{
				"text": &graphql.Field{Type: nonNull(graphql.String)},
				"user": &graphql.Field{
					Type:    t.user,
					Resolve: ref(users, st.Users, func(n *domain.Notification) string { return n.UserID }),
				},
			})
		}),
	})

	t.avatar = graphql.NewObject(graphql.ObjectConfig{
		Name: "Avatar",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return withBase(graphql.Fields{
				"name":   &graphql.Field{Type: nonNull(graphql.String)},
				"path":   &graphql.Field{Type: nonNull(graphql.String)},
				"rarity": &graphql.Field{Type: nonNull(t.rarity)},
				"hub": &graphql.Field{
					Type:    t.hub,
					Resolve: ref(hubs, st.Hubs, func(a *domain.Avatar) string { return a.HubID }),
				},
			})
		}),
	})

	t.image = graphql.NewObject(graphql.ObjectConfig{
		Name: "Image",
		Fields: withBase(graphql.Fields{
			"name":     &graphql.Field{Type: nonNull(graphql.String)},
			"path":     &graphql.Field{Type: nonNull(graphql.String)},
			"mimetype": &graphql.Field{Type: graphql.String},
		}),
	})

	t.icon = graphql.NewObject(graphql.ObjectConfig{
		Name: "Icon",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return withBase(graphql.Fields{
				"name": &graphql.Field{Type: nonNull(graphql.String)},
				"path": &graphql.Field{Type: nonNull(graphql.String)},
				"type": &graphql.Field{Type: nonNull(t.iconType)},
			})
		}),
	})

	t.achievement = graphql.NewObject(graphql.ObjectConfig{
		Name: "Achievement",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return withBase(graphql.Fields{
				"title":       &graphql.Field{Type: nonNull(graphql.String)},
				"description": &graphql.Field{Type: graphql.String},
				"area":        &graphql.Field{Type: nonNull(t.area)},
			})
		}),
	})

	t.language = graphql.NewObject(graphql.ObjectConfig{
		Name: "Language",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return withBase(graphql.Fields{
				"code":  &graphql.Field{Type: nonNull(graphql.String)},
				"title": &graphql.Field{Type: nonNull(graphql.String)},
				"flag": &graphql.Field{
					Type:    t.icon,
					Resolve: ref(icons, st.Icons, func(l *domain.Language) string { return l.FlagID }),
				},
			})
		}),
	})

	// AuthPayload - результат login: bearer-токен для websocket и пользователь.
	t.authPayload = graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"token": &graphql.Field{Type: graphql.String},
				"user":  &graphql.Field{Type: nonNull(t.user)},
			}
		}),
	})

	return t
}

// userChats - открытые переписки пользователя. Чужие переписки не раскрываются.
func userChats(st *storage.Store) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		u, ok := p.Source.(*domain.User)
		v := viewer(p.Context)
		if !ok || v == nil || v.ID != u.ID {
			return nil, nil
		}
		return st.UserChats.Find(p.Context, storage.Filter{"user": u.ID, "status": domain.ChatOpen})
	}
}

// membersOnly скрывает переписку чата от тех, кто в нём не состоит.
func membersOnly(next graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		c, ok := p.Source.(*domain.Chat)
		v := viewer(p.Context)
		if !ok || v == nil || !c.HasMember(v.ID) {
			return nil, nil
		}
		return next(p)
	}
}
