package service

import (
	"context"
	"fmt"

	"github.com/99designs/gqlgen/graphql"

	"github.com/UkralStul/hub-graphql-service/internal/broadcast"
	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/gateway"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

// === Post ===

func (s *Service) postsTopic() broadcast.Refresh {
	return broadcast.Refetch(TopicPosts, s.store.Posts, nil)
}

func (s *Service) userPostsTopic(authorID string) broadcast.Refresh {
	return broadcast.RefetchFor(postsByAuthor.Name, authorID, s.store.Posts, storage.Filter{"author": authorID})
}

// postWrite - результат записи поста: сам пост и признак созданного превью.
type postWrite struct {
	post    *domain.Post
	preview bool
}

func (s *Service) postChanged(w postWrite) []broadcast.Refresh {
	refreshes := []broadcast.Refresh{s.postsTopic(), s.userPostsTopic(w.post.AuthorID)}
	if w.preview {
		refreshes = append(refreshes, s.imagesTopic())
	}
	return refreshes
}

// createPreview сохраняет файл превью и создаёт для него Image.
func (s *Service) createPreview(ctx context.Context, u *graphql.Upload) (*domain.Image, error) {
	f, err := s.storeFile(ctx, "preview", u)
	if err != nil {
		return nil, err
	}
	return s.store.Images.Create(ctx, &domain.Image{Name: f.Filename, Path: f.Path, Mimetype: f.Mimetype})
}

// AddPost создаёт пост. Превью (если передано) сохраняется и записывается как Image до поста.
func (s *Service) AddPost(ctx context.Context, v *domain.Viewer, in AddPostInput) (*domain.Post, error) {
	w, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[postWrite]{
		Name:  "addPost",
		Input: in,
		Write: func(ctx context.Context) (postWrite, error) {
			authorID := v.ID
			if in.Author != "" {
				author, err := s.store.Users.FindOne(ctx, storage.Filter{"name": in.Author})
				if storage.IsNotFound(err) {
					return postWrite{}, gateway.Invalid("author", "user not found")
				}
				if err != nil {
					return postWrite{}, err
				}
				authorID = author.ID
			}

			post := &domain.Post{
				AuthorID:    authorID,
				Type:        in.Type,
				Title:       in.Title,
				Subtitle:    in.Subtitle,
				Description: in.Description,
				Content:     in.Content,
				HubID:       in.Hub,
				Status:      in.Status,
			}
			if post.Status == "" {
				post.Status = domain.StatusModeration
			}
			var w postWrite
			if in.Preview != nil {
				img, err := s.createPreview(ctx, in.Preview)
				if err != nil {
					return postWrite{}, err
				}
				post.PreviewID = img.ID
				w.preview = true
			}
			created, err := s.store.Posts.Create(ctx, post)
			if err != nil {
				return postWrite{}, err
			}
			w.post = created
			return w, nil
		},
		Affects: s.postChanged,
	})
	return w.post, err
}

func (s *Service) EditPost(ctx context.Context, v *domain.Viewer, in EditPostInput) (*domain.Post, error) {
	w, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[postWrite]{
		Name:  "editPost",
		Input: in,
		Write: func(ctx context.Context) (postWrite, error) {
			var w postWrite
			p := storage.Patch{}
			if in.Preview != nil {
				img, err := s.createPreview(ctx, in.Preview)
				if err != nil {
					return postWrite{}, err
				}
				p.Set("preview", img.ID)
				w.preview = true
			}
			storage.SetIf(p, "type", in.Type)
			storage.SetIf(p, "title", in.Title)
			storage.SetIf(p, "subtitle", in.Subtitle)
			storage.SetIf(p, "description", in.Description)
			storage.SetIf(p, "content", in.Content)
			storage.SetIf(p, "hub", in.Hub)
			storage.SetIf(p, "status", in.Status)
			storage.SetIf(p, "views", in.Views)
			post, err := s.store.Posts.Update(ctx, in.ID, p)
			if err != nil {
				return postWrite{}, err
			}
			w.post = post
			return w, nil
		},
		Affects: s.postChanged,
	})
	return w.post, err
}

// DeletePosts удаляет посты и обновляет ленты их авторов.
func (s *Service) DeletePosts(ctx context.Context, v *domain.Viewer, ids IDs) error {
	_, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[[]string]{
		Name:  "deletePosts",
		Input: ids,
		Write: func(ctx context.Context) ([]string, error) {
			posts, err := s.store.Posts.Find(ctx, storage.Filter{"id": storage.In(ids)})
			if err != nil {
				return nil, err
			}
			seen := map[string]bool{}
			var authors []string
			for _, p := range posts {
				if !seen[p.AuthorID] {
					seen[p.AuthorID] = true
					authors = append(authors, p.AuthorID)
				}
			}
			return authors, deleteAll(ctx, s.store.Posts, ids)
		},
		Affects: func(authors []string) []broadcast.Refresh {
			refreshes := []broadcast.Refresh{s.postsTopic()}
			for _, a := range authors {
				refreshes = append(refreshes, s.userPostsTopic(a))
			}
			return refreshes
		},
	})
	return err
}

// === Comment ===

func (s *Service) commentsTopic(postID string) broadcast.Refresh {
	return broadcast.RefetchFor(commentsByPost.Name, postID, s.store.Comments, storage.Filter{"post": postID})
}

func (s *Service) notificationsTopic(userID string) broadcast.Refresh {
	return broadcast.RefetchFor(notificationsByUser.Name, userID, s.store.Notifications, storage.Filter{"user": userID})
}

type commentWrite struct {
	comment  *domain.Comment
	notified string // id автора поста, получившего уведомление
}

// AddComment создаёт комментарий и, если пост чужой, уведомление его автору.
// Две записи выполняются последовательно: сбой уведомления не отменяет комментарий.
func (s *Service) AddComment(ctx context.Context, v *domain.Viewer, in AddCommentInput) (*domain.Comment, error) {
	w, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[commentWrite]{
		Name:  "addComment",
		Input: in,
		Write: func(ctx context.Context) (commentWrite, error) {
			post, err := s.store.Posts.FindByID(ctx, in.Post)
			if err != nil {
				return commentWrite{}, err
			}
			comment, err := s.store.Comments.Create(ctx, &domain.Comment{UserID: v.ID, PostID: post.ID, Text: in.Text})
			if err != nil {
				return commentWrite{}, err
			}
			w := commentWrite{comment: comment}
			if post.AuthorID != "" && post.AuthorID != v.ID {
				_, err := s.store.Notifications.Create(ctx, &domain.Notification{
					UserID: post.AuthorID,
					Text:   fmt.Sprintf("%s left a comment on the %s", v.Name, post.Title),
				})
				if err != nil {
					return commentWrite{}, err
				}
				w.notified = post.AuthorID
			}
			return w, nil
		},
		Affects: func(w commentWrite) []broadcast.Refresh {
			refreshes := []broadcast.Refresh{s.commentsTopic(w.comment.PostID)}
			if w.notified != "" {
				refreshes = append(refreshes, s.notificationsTopic(w.notified))
			}
			return refreshes
		},
	})
	return w.comment, err
}

func (s *Service) EditComment(ctx context.Context, v *domain.Viewer, in EditCommentInput) (*domain.Comment, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Comment]{
		Name:  "editComment",
		Input: in,
		Write: func(ctx context.Context) (*domain.Comment, error) {
			p := storage.Patch{}
			storage.SetIf(p, "text", in.Text)
			return s.store.Comments.Update(ctx, in.ID, p)
		},
		Affects: func(c *domain.Comment) []broadcast.Refresh {
			return []broadcast.Refresh{s.commentsTopic(c.PostID)}
		},
	})
}

func (s *Service) DeleteComments(ctx context.Context, v *domain.Viewer, in DeleteCommentsInput) error {
	_, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[DeleteCommentsInput]{
		Name:  "deleteComments",
		Input: in,
		Write: func(ctx context.Context) (DeleteCommentsInput, error) {
			return in, deleteAll(ctx, s.store.Comments, in.IDs)
		},
		Affects: func(in DeleteCommentsInput) []broadcast.Refresh {
			return []broadcast.Refresh{s.commentsTopic(in.Post)}
		},
	})
	return err
}
