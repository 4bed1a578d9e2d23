package service

import (
	"context"
	"errors"
	"strings"

	"github.com/UkralStul/hub-graphql-service/internal/auth"
	"github.com/UkralStul/hub-graphql-service/internal/broadcast"
	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/gateway"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

// DefaultRole - роль, которая назначается при регистрации, если другая не указана.
const DefaultRole = "USER"

// DashboardArea - область входа, требующая права ACCESS_DASHBOARD.
const DashboardArea = "dashboard"

func (s *Service) usersTopic() broadcast.Refresh {
	return broadcast.Refetch(TopicUsers, s.store.Users, nil)
}

// ensureNameFree проверяет, что имя пользователя не занято (кроме самого пользователя exceptID).
func (s *Service) ensureNameFree(ctx context.Context, name, exceptID string) error {
	u, err := s.store.Users.FindOne(ctx, storage.Filter{"name": name})
	if storage.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if u.ID != exceptID {
		return gateway.Invalid("name", "This name is taken")
	}
	return nil
}

// Register создаёт пользователя без аутентификации. Пароль хранится в виде bcrypt-хэша.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return gateway.Execute(ctx, s.gw, nil, gateway.Mutation[*domain.User]{
		Name:      "register",
		Input:     in,
		Anonymous: true,
		Write: func(ctx context.Context) (*domain.User, error) {
			if err := s.ensureNameFree(ctx, in.Name, ""); err != nil {
				return nil, err
			}
			roleID := in.Role
			if roleID == "" {
				role, err := s.store.Roles.FindOne(ctx, storage.Filter{"name": DefaultRole})
				if err != nil && !storage.IsNotFound(err) {
					return nil, err
				}
				if role != nil {
					roleID = role.ID
				}
			}
			hash, err := auth.HashPassword(in.Password)
			if err != nil {
				return nil, err
			}
			return s.store.Users.Create(ctx, &domain.User{
				Name:     in.Name,
				Email:    in.Email,
				Password: hash,
				Phone:    in.Phone,
				RoleID:   roleID,
				AvatarID: in.Avatar,
			})
		},
		Affects: affects[*domain.User](s.usersTopic()),
	})
}

// Login проверяет имя и пароль. Область "dashboard" требует права ACCESS_DASHBOARD.
// Открытие сессии - забота транспорта.
func (s *Service) Login(ctx context.Context, in LoginInput) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	user, err := s.store.Users.FindOne(ctx, storage.Filter{"name": in.Name})
	if storage.IsNotFound(err) {
		return nil, gateway.Invalid("general", "User not found")
	}
	if err != nil {
		return nil, err
	}
	if err := auth.ComparePassword(user.Password, in.Password); err != nil {
		if errors.Is(err, auth.ErrWrongPassword) {
			return nil, gateway.Invalid("general", "Wrong credentials")
		}
		return nil, err
	}
	if strings.EqualFold(in.Area, DashboardArea) {
		viewer, err := s.Viewer(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if !viewer.Can(domain.PermAccessDashboard) {
			return nil, gateway.Forbidden("not enough permissions")
		}
	}
	return user, nil
}
