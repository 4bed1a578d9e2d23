package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/service"
)

func (r *Resolver) subscription(t *types) *graphql.Object {
	st := r.Service

	// global - подписка на глобальную тему без аргументов.
	global := func(topic string, of *graphql.Object) *graphql.Field {
		return &graphql.Field{
			Type: listOf(of),
			Subscribe: stream(r, topic, func(p params, v *domain.Viewer) (chan any, error) {
				return st.SubscribeTopic(p.Context, v, topic)
			}),
			Resolve: source,
		}
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Subscription",
		Fields: graphql.Fields{
			"users":        global(service.TopicUsers, t.user),
			"roles":        global(service.TopicRoles, t.role),
			"chats":        global(service.TopicChats, t.chat),
			"images":       global(service.TopicImages, t.image),
			"avatars":      global(service.TopicAvatars, t.avatar),
			"icons":        global(service.TopicIcons, t.icon),
			"achievements": global(service.TopicAchievements, t.achievement),
			"languages":    global(service.TopicLanguages, t.language),
			"hubs": &graphql.Field{
				Type: listOf(t.hub),
				Args: graphql.FieldConfigArgument{"status": arg(t.status)},
				Subscribe: stream(r, "hubs", func(p params, v *domain.Viewer) (chan any, error) {
					return st.SubscribeHubs(p.Context, v, enumArg[domain.Status](p.Args, "status"))
				}),
				Resolve: source,
			},
			"posts": &graphql.Field{
				Type: listOf(t.post),
				Args: graphql.FieldConfigArgument{"status": arg(t.status), "type": arg(t.postType)},
				Subscribe: stream(r, "posts", func(p params, v *domain.Viewer) (chan any, error) {
					return st.SubscribePosts(p.Context, v,
						enumArg[domain.Status](p.Args, "status"),
						enumArg[domain.PostType](p.Args, "type"))
				}),
				Resolve: source,
			},
			"comments": &graphql.Field{
				Type: listOf(t.comment),
				Args: idArgs(),
				Subscribe: stream(r, "comments", func(p params, v *domain.Viewer) (chan any, error) {
					return st.SubscribeComments(p.Context, v, args(p.Args).str("id"))
				}),
				Resolve: source,
			},
			"messages": &graphql.Field{
				Type: listOf(t.message),
				Args: idArgs(),
				Subscribe: stream(r, "messages", func(p params, v *domain.Viewer) (chan any, error) {
					return st.SubscribeMessages(p.Context, v, args(p.Args).str("id"))
				}),
				Resolve: source,
			},
			// name оставлен для совместимости клиентов: поток всегда
			// принадлежит текущему пользователю.
			"userChats": &graphql.Field{
				Type: listOf(t.userChat),
				Args: graphql.FieldConfigArgument{"name": arg(graphql.String)},
				Subscribe: stream(r, "userChats", func(p params, v *domain.Viewer) (chan any, error) {
					return st.SubscribeUserChats(p.Context, v)
				}),
				Resolve: source,
			},
			"userNotifications": &graphql.Field{
				Type: listOf(t.notification),
				Args: graphql.FieldConfigArgument{"name": arg(graphql.String)},
				Subscribe: stream(r, "userNotifications", func(p params, v *domain.Viewer) (chan any, error) {
					return st.SubscribeUserNotifications(p.Context, v)
				}),
				Resolve: source,
			},
			"userPosts": &graphql.Field{
				Type: listOf(t.post),
				Args: graphql.FieldConfigArgument{"name": arg(graphql.String), "type": arg(t.postType)},
				Subscribe: stream(r, "userPosts", func(p params, v *domain.Viewer) (chan any, error) {
					a := args(p.Args)
					return st.SubscribeUserPosts(p.Context, v, a.str("name"), enumArg[domain.PostType](a, "type"))
				}),
				Resolve: source,
			},
		},
	})
}
