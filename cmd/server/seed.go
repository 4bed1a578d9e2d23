package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Pallinder/go-randomdata"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/service"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

const adminRole = "ADMIN"

// seedRoles создаёт роли USER и ADMIN, если их ещё нет.
func seedRoles(ctx context.Context, store *storage.Store) error {
	roles := []*domain.Role{
		{Name: service.DefaultRole, Permissions: []domain.Permission{
			domain.PermAccessClient, domain.PermAddPost, domain.PermOpenChat,
			domain.PermCloseChat, domain.PermUserMessaging,
		}},
		{Name: adminRole, Permissions: domain.Permissions},
	}
	for _, r := range roles {
		_, err := store.Roles.FindOne(ctx, storage.Filter{"name": r.Name})
		if err == nil {
			continue
		}
		if !storage.IsNotFound(err) {
			return err
		}
		if _, err := store.Roles.Create(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// seedMockData заполняет in-memory хранилище для ручной проверки:
// администратор admin/admin, несколько пользователей, хаб, посты и комментарии.
func seedMockData(ctx context.Context, svc *service.Service, logger *slog.Logger) error {
	store := svc.Store()
	role, err := store.Roles.FindOne(ctx, storage.Filter{"name": adminRole})
	if err != nil {
		return err
	}
	admin, err := svc.Register(ctx, service.RegisterInput{
		Name:            "admin",
		Email:           "admin@example.com",
		Password:        "admin",
		ConfirmPassword: "admin",
		Role:            role.ID,
	})
	if err != nil {
		return fmt.Errorf("register admin: %w", err)
	}
	av, err := svc.Viewer(ctx, admin.ID)
	if err != nil {
		return err
	}

	var users []*domain.Viewer
	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("%s%d", strings.ToLower(randomdata.SillyName()), i+1)
		u, err := svc.Register(ctx, service.RegisterInput{
			Name:            name,
			Email:           randomdata.Email(),
			Password:        "password",
			ConfirmPassword: "password",
		})
		if err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
		v, err := svc.Viewer(ctx, u.ID)
		if err != nil {
			return err
		}
		users = append(users, v)
	}

	hub, err := svc.AddHub(ctx, av, service.AddHubInput{
		Title:       "Go",
		Description: "Всё о языке Go",
		Slogan:      "Simple is better",
		Status:      domain.StatusPublished,
	})
	if err != nil {
		return fmt.Errorf("add hub: %w", err)
	}

	for _, u := range users {
		post, err := svc.AddPost(ctx, u, service.AddPostInput{
			Type:    domain.PostArticle,
			Title:   randomdata.Adjective() + " " + randomdata.Noun(),
			Content: randomdata.Paragraph(),
			Hub:     hub.ID,
			Status:  domain.StatusPublished,
		})
		if err != nil {
			return fmt.Errorf("add post: %w", err)
		}
		for _, c := range users {
			if c.ID == u.ID {
				continue
			}
			if _, err := svc.AddComment(ctx, c, service.AddCommentInput{Post: post.ID, Text: randomdata.Paragraph()}); err != nil {
				return fmt.Errorf("add comment: %w", err)
			}
		}
	}

	logger.Info("mock data filled", "users", len(users)+1, "hub", hub.ID)
	return nil
}
