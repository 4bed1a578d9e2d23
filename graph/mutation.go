package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/service"
)

type params = graphql.ResolveParams

func idsArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{"id": required(graphql.NewList(graphql.ID))}
}

func (r *Resolver) mutation(t *types) *graphql.Object {
	st := r.Service
	boolean := graphql.NewNonNull(graphql.Boolean)
	ids := graphql.NewList(graphql.ID)
	strs := graphql.NewList(graphql.String)

	registerInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "RegisterInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":            &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"confirmPassword": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"email":           &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"role":            &graphql.InputObjectFieldConfig{Type: graphql.ID},
			"phone":           &graphql.InputObjectFieldConfig{Type: graphql.String},
			"avatar":          &graphql.InputObjectFieldConfig{Type: graphql.ID},
		},
	})

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			// === Auth ===
			"register": &graphql.Field{
				Type:    graphql.NewNonNull(t.user),
				Args:    graphql.FieldConfigArgument{"registerInput": required(registerInput)},
				Resolve: r.register,
			},
			"login": &graphql.Field{
				Type: graphql.NewNonNull(t.authPayload),
				Args: graphql.FieldConfigArgument{
					"name":     required(graphql.String),
					"password": required(graphql.String),
					"area":     arg(graphql.String),
				},
				Resolve: r.login,
			},
			"logout": &graphql.Field{Type: boolean, Resolve: r.logout},

			// === Role ===
			"addRole": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"name":        required(graphql.String),
					"permissions": required(graphql.NewList(graphql.NewNonNull(t.permission))),
				},
				Resolve: done(r, "addRole", func(p params, v *domain.Viewer) (*domain.Role, error) {
					a := args(p.Args)
					return st.AddRole(p.Context, v, service.AddRoleInput{
						Name:        a.str("name"),
						Permissions: enumList[domain.Permission](a, "permissions"),
					})
				}),
			},
			"editRole": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"id":          required(graphql.ID),
					"name":        arg(graphql.String),
					"permissions": arg(graphql.NewList(t.permission)),
				},
				Resolve: done(r, "editRole", func(p params, v *domain.Viewer) (*domain.Role, error) {
					a := args(p.Args)
					return st.EditRole(p.Context, v, service.EditRoleInput{
						ID:          a.str("id"),
						Name:        a.strPtr("name"),
						Permissions: enumListPtr[domain.Permission](a, "permissions"),
					})
				}),
			},
			"deleteRoles": &graphql.Field{Type: boolean, Args: idsArgs(), Resolve: erase(r, "deleteRoles", st.DeleteRoles)},

			// === User ===
			"addUser": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"name":        required(graphql.String),
					"password":    required(graphql.String),
					"email":       required(graphql.String),
					"phone":       arg(graphql.String),
					"role":        arg(graphql.ID),
					"avatar":      arg(graphql.ID),
					"balance":     arg(graphql.Int),
					"level":       arg(graphql.Int),
					"experience":  arg(graphql.Int),
					"preferences": arg(ids),
					"settings":    arg(graphql.NewList(t.setting)),
				},
				Resolve: done(r, "addUser", func(p params, v *domain.Viewer) (*domain.User, error) {
					a := args(p.Args)
					return st.AddUser(p.Context, v, service.AddUserInput{
						Name:        a.str("name"),
						Password:    a.str("password"),
						Email:       a.str("email"),
						Phone:       a.str("phone"),
						Role:        a.str("role"),
						Avatar:      a.str("avatar"),
						Balance:     a.int("balance"),
						Level:       a.int("level"),
						Experience:  a.int("experience"),
						Preferences: a.strs("preferences"),
						Settings:    enumList[domain.Setting](a, "settings"),
					})
				}),
			},
			"editUser": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"id":               required(graphql.ID),
					"name":             arg(graphql.String),
					"password":         arg(graphql.String),
					"email":            arg(graphql.String),
					"phone":            arg(graphql.String),
					"role":             arg(graphql.ID),
					"avatar":           arg(graphql.ID),
					"balance":          arg(graphql.Int),
					"level":            arg(graphql.Int),
					"experience":       arg(graphql.Int),
					"availableAvatars": arg(ids),
					"preferences":      arg(ids),
					"settings":         arg(graphql.NewList(t.setting)),
				},
				Resolve: done(r, "editUser", func(p params, v *domain.Viewer) (*domain.User, error) {
					a := args(p.Args)
					return st.EditUser(p.Context, v, service.EditUserInput{
						ID:               a.str("id"),
						Name:             a.strPtr("name"),
						Password:         a.strPtr("password"),
						Email:            a.strPtr("email"),
						Phone:            a.strPtr("phone"),
						Role:             a.strPtr("role"),
						Avatar:           a.strPtr("avatar"),
						Balance:          a.intPtr("balance"),
						Level:            a.intPtr("level"),
						Experience:       a.intPtr("experience"),
						AvailableAvatars: a.strsPtr("availableAvatars"),
						Preferences:      a.strsPtr("preferences"),
						Settings:         enumListPtr[domain.Setting](a, "settings"),
					})
				}),
			},
			"deleteUsers": &graphql.Field{Type: boolean, Args: idsArgs(), Resolve: erase(r, "deleteUsers", st.DeleteUsers)},

			// === Hub ===
			"addHub": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"title":       required(graphql.String),
					"description": required(graphql.String),
					"slogan":      required(graphql.String),
					"icon":        arg(graphql.ID),
					"color":       arg(graphql.String),
					"status":      required(t.status),
				},
				Resolve: done(r, "addHub", func(p params, v *domain.Viewer) (*domain.Hub, error) {
					a := args(p.Args)
					return st.AddHub(p.Context, v, service.AddHubInput{
						Title:       a.str("title"),
						Description: a.str("description"),
						Slogan:      a.str("slogan"),
						Icon:        a.str("icon"),
						Color:       a.str("color"),
						Status:      enumArg[domain.Status](a, "status"),
					})
				}),
			},
			"editHub": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"id":          required(graphql.ID),
					"title":       arg(graphql.String),
					"description": arg(graphql.String),
					"slogan":      arg(graphql.String),
					"icon":        arg(graphql.ID),
					"color":       arg(graphql.String),
					"status":      arg(t.status),
				},
				Resolve: done(r, "editHub", func(p params, v *domain.Viewer) (*domain.Hub, error) {
					a := args(p.Args)
					return st.EditHub(p.Context, v, service.EditHubInput{
						ID:          a.str("id"),
						Title:       a.strPtr("title"),
						Description: a.strPtr("description"),
						Slogan:      a.strPtr("slogan"),
						Icon:        a.strPtr("icon"),
						Color:       a.strPtr("color"),
						Status:      enumPtr[domain.Status](a, "status"),
					})
				}),
			},
			"deleteHubs": &graphql.Field{Type: boolean, Args: idsArgs(), Resolve: erase(r, "deleteHubs", st.DeleteHubs)},

			// === Post ===
			"addPost": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"author":      arg(graphql.String),
					"type":        required(t.postType),
					"title":       required(graphql.String),
					"subtitle":    arg(graphql.String),
					"description": arg(graphql.String),
					"content":     arg(graphql.String),
					"preview":     arg(Upload),
					"hub":         arg(graphql.ID),
					"status":      arg(t.status),
				},
				Resolve: done(r, "addPost", func(p params, v *domain.Viewer) (*domain.Post, error) {
					a := args(p.Args)
					return st.AddPost(p.Context, v, service.AddPostInput{
						Author:      a.str("author"),
						Type:        enumArg[domain.PostType](a, "type"),
						Title:       a.str("title"),
						Subtitle:    a.str("subtitle"),
						Description: a.str("description"),
						Content:     a.str("content"),
						Preview:     a.upload("preview"),
						Hub:         a.str("hub"),
						Status:      enumArg[domain.Status](a, "status"),
					})
				}),
			},
			"editPost": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"id":          required(graphql.ID),
					"type":        arg(t.postType),
					"title":       arg(graphql.String),
					"subtitle":    arg(graphql.String),
					"description": arg(graphql.String),
					"content":     arg(graphql.String),
					"preview":     arg(Upload),
					"hub":         arg(graphql.ID),
					"views":       arg(graphql.Int),
					"status":      arg(t.status),
				},
				Resolve: done(r, "editPost", func(p params, v *domain.Viewer) (*domain.Post, error) {
					a := args(p.Args)
					return st.EditPost(p.Context, v, service.EditPostInput{
						ID:          a.str("id"),
						Type:        enumPtr[domain.PostType](a, "type"),
						Title:       a.strPtr("title"),
						Subtitle:    a.strPtr("subtitle"),
						Description: a.strPtr("description"),
						Content:     a.strPtr("content"),
						Preview:     a.upload("preview"),
						Hub:         a.strPtr("hub"),
						Views:       a.intPtr("views"),
						Status:      enumPtr[domain.Status](a, "status"),
					})
				}),
			},
			"deletePosts": &graphql.Field{Type: boolean, Args: idsArgs(), Resolve: erase(r, "deletePosts", st.DeletePosts)},

			// === Comment ===
			"addComment": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"post": required(graphql.ID),
					"text": required(graphql.String),
				},
				Resolve: done(r, "addComment", func(p params, v *domain.Viewer) (*domain.Comment, error) {
					a := args(p.Args)
					return st.AddComment(p.Context, v, service.AddCommentInput{Post: a.str("post"), Text: a.str("text")})
				}),
			},
			"editComment": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"id":   required(graphql.ID),
					"text": arg(graphql.String),
				},
				Resolve: done(r, "editComment", func(p params, v *domain.Viewer) (*domain.Comment, error) {
					a := args(p.Args)
					return st.EditComment(p.Context, v, service.EditCommentInput{ID: a.str("id"), Text: a.strPtr("text")})
				}),
			},
			"deleteComments": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"id":   required(ids),
					"post": required(graphql.ID),
				},
				Resolve: done(r, "deleteComments", func(p params, v *domain.Viewer) (struct{}, error) {
					a := args(p.Args)
					return struct{}{}, st.DeleteComments(p.Context, v, service.DeleteCommentsInput{
						Post: a.str("post"),
						IDs:  a.strs("id"),
					})
				}),
			},

			// === Chat ===
			"addChat": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"type":    required(t.chatType),
					"title":   required(graphql.String),
					"members": required(strs),
				},
				Resolve: done(r, "addChat", func(p params, v *domain.Viewer) (*domain.Chat, error) {
					a := args(p.Args)
					return st.AddChat(p.Context, v, service.AddChatInput{
						Type:    enumArg[domain.ChatType](a, "type"),
						Title:   a.str("title"),
						Members: a.strs("members"),
					})
				}),
			},
			"editChat": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"id":      required(graphql.ID),
					"type":    arg(t.chatType),
					"title":   arg(graphql.String),
					"members": arg(strs),
				},
				Resolve: done(r, "editChat", func(p params, v *domain.Viewer) (*domain.Chat, error) {
					a := args(p.Args)
					return st.EditChat(p.Context, v, service.EditChatInput{
						ID:      a.str("id"),
						Type:    enumPtr[domain.ChatType](a, "type"),
						Title:   a.strPtr("title"),
						Members: a.strsPtr("members"),
					})
				}),
			},
			"deleteChats": &graphql.Field{Type: boolean, Args: idsArgs(), Resolve: erase(r, "deleteChats", st.DeleteChats)},

			// === UserChat ===
			"openUserChat": &graphql.Field{
				Type: t.userChat,
				Args: graphql.FieldConfigArgument{
					"name": required(graphql.String),
					"type": arg(t.chatType),
				},
				Resolve: one(r, "openUserChat", func(p params, v *domain.Viewer) (*domain.UserChat, error) {
					return st.OpenUserChat(p.Context, v, service.OpenUserChatInput{Name: args(p.Args).str("name")})
				}),
			},
			"closeUserChat": &graphql.Field{
				Type: t.userChat,
				Args: idArgs(),
				Resolve: one(r, "closeUserChat", func(p params, v *domain.Viewer) (*domain.UserChat, error) {
					return st.CloseUserChat(p.Context, v, args(p.Args).str("id"))
				}),
			},
			"addUserChatMessage": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"id":   required(graphql.ID),
					"text": required(graphql.String),
				},
				Resolve: done(r, "addUserChatMessage", func(p params, v *domain.Viewer) (bool, error) {
					a := args(p.Args)
					return st.AddUserChatMessage(p.Context, v, service.SendMessageInput{Chat: a.str("id"), Text: a.str("text")})
				}),
			},

			// === Media ===
			"addImage": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"file": required(Upload),
					"name": arg(graphql.String),
				},
				Resolve: done(r, "addImage", func(p params, v *domain.Viewer) (*domain.Image, error) {
					a := args(p.Args)
					return st.AddImage(p.Context, v, service.AddImageInput{File: a.upload("file"), Name: a.str("name")})
				}),
			},
			"editImage": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"id":   required(graphql.ID),
					"file": arg(Upload),
					"name": arg(graphql.String),
				},
				Resolve: done(r, "editImage", func(p params, v *domain.Viewer) (*domain.Image, error) {
					a := args(p.Args)
					return st.EditImage(p.Context, v, service.EditImageInput{
						ID:   a.str("id"),
						File: a.upload("file"),
						Name: a.strPtr("name"),
					})
				}),
			},
			"deleteImages": &graphql.Field{Type: boolean, Args: idsArgs(), Resolve: erase(r, "deleteImages", st.DeleteImages)},

			"addAvatar": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"file":   required(Upload),
					"name":   arg(graphql.String),
					"rarity": arg(t.rarity),
					"hub":    arg(graphql.ID),
				},
				Resolve: done(r, "addAvatar", func(p params, v *domain.Viewer) (*domain.Avatar, error) {
					a := args(p.Args)
					return st.AddAvatar(p.Context, v, service.AddAvatarInput{
						File:   a.upload("file"),
						Name:   a.str("name"),
						Rarity: enumArg[domain.Rarity](a, "rarity"),
						Hub:    a.str("hub"),
					})
				}),
			},
			"editAvatar": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"id":     required(graphql.ID),
					"file":   arg(Upload),
					"name":   arg(graphql.String),
					"rarity": arg(t.rarity),
					"hub":    arg(graphql.ID),
				},
				Resolve: done(r, "editAvatar", func(p params, v *domain.Viewer) (*domain.Avatar, error) {
					a := args(p.Args)
					return st.EditAvatar(p.Context, v, service.EditAvatarInput{
						ID:     a.str("id"),
						File:   a.upload("file"),
						Name:   a.strPtr("name"),
						Rarity: enumPtr[domain.Rarity](a, "rarity"),
						Hub:    a.strPtr("hub"),
					})
				}),
			},
			"deleteAvatars": &graphql.Field{Type: boolean, Args: idsArgs(), Resolve: erase(r, "deleteAvatars", st.DeleteAvatars)},

			"addIcon": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"file": required(Upload),
					"name": arg(graphql.String),
					"type": required(t.iconType),
				},
				Resolve: done(r, "addIcon", func(p params, v *domain.Viewer) (*domain.Icon, error) {
					a := args(p.Args)
					return st.AddIcon(p.Context, v, service.AddIconInput{
						File: a.upload("file"),
						Name: a.str("name"),
						Type: enumArg[domain.IconType](a, "type"),
					})
				}),
			},
			"editIcon": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"id":   required(graphql.ID),
					"file": arg(Upload),
					"name": arg(graphql.String),
					"type": arg(t.iconType),
				},
				Resolve: done(r, "editIcon", func(p params, v *domain.Viewer) (*domain.Icon, error) {
					a := args(p.Args)
					return st.EditIcon(p.Context, v, service.EditIconInput{
						ID:   a.str("id"),
						File: a.upload("file"),
						Name: a.strPtr("name"),
						Type: enumPtr[domain.IconType](a, "type"),
					})
				}),
			},
			"deleteIcons": &graphql.Field{Type: boolean, Args: idsArgs(), Resolve: erase(r, "deleteIcons", st.DeleteIcons)},

			// === Achievement ===
			"addAchievement": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"title":       required(graphql.String),
					"description": arg(graphql.String),
					"area":        required(t.area),
				},
				Resolve: done(r, "addAchievement", func(p params, v *domain.Viewer) (*domain.Achievement, error) {
					a := args(p.Args)
					return st.AddAchievement(p.Context, v, service.AddAchievementInput{
						Title:       a.str("title"),
						Description: a.str("description"),
						Area:        enumArg[domain.Area](a, "area"),
					})
				}),
			},
			"editAchievement": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"id":          required(graphql.ID),
					"title":       arg(graphql.String),
					"description": arg(graphql.String),
					"area":        arg(t.area),
				},
				Resolve: done(r, "editAchievement", func(p params, v *domain.Viewer) (*domain.Achievement, error) {
					a := args(p.Args)
					return st.EditAchievement(p.Context, v, service.EditAchievementInput{
						ID:          a.str("id"),
						Title:       a.strPtr("title"),
						Description: a.strPtr("description"),
						Area:        enumPtr[domain.Area](a, "area"),
					})
				}),
			},
			"deleteAchievements": &graphql.Field{Type: boolean, Args: idsArgs(), Resolve: erase(r, "deleteAchievements", st.DeleteAchievements)},

			// === Language ===
			"addLanguage": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"code":  required(graphql.String),
					"title": required(graphql.String),
					"flag":  required(graphql.ID),
				},
				Resolve: done(r, "addLanguage", func(p params, v *domain.Viewer) (*domain.Language, error) {
					a := args(p.Args)
					return st.AddLanguage(p.Context, v, service.AddLanguageInput{
						Code:  a.str("code"),
						Title: a.str("title"),
						Flag:  a.str("flag"),
					})
				}),
			},
			"editLanguage": &graphql.Field{
				Type: boolean,
				Args: graphql.FieldConfigArgument{
					"id":    required(graphql.ID),
					"code":  arg(graphql.String),
					"title": arg(graphql.String),
					"flag":  arg(graphql.ID),
				},
				Resolve: done(r, "editLanguage", func(p params, v *domain.Viewer) (*domain.Language, error) {
					a := args(p.Args)
					return st.EditLanguage(p.Context, v, service.EditLanguageInput{
						ID:    a.str("id"),
						Code:  a.strPtr("code"),
						Title: a.strPtr("title"),
						Flag:  a.strPtr("flag"),
					})
				}),
			},
			"deleteLanguages": &graphql.Field{Type: boolean, Args: idsArgs(), Resolve: erase(r, "deleteLanguages", st.DeleteLanguages)},
		},
	})
}
