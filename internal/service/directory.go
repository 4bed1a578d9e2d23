package service

import (
	"context"

	"github.com/UkralStul/hub-graphql-service/internal/auth"
	"github.com/UkralStul/hub-graphql-service/internal/broadcast"
	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/gateway"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

// === Role ===

func (s *Service) rolesTopic() broadcast.Refresh {
	return broadcast.Refetch(TopicRoles, s.store.Roles, nil)
}

func (s *Service) AddRole(ctx context.Context, v *domain.Viewer, in AddRoleInput) (*domain.Role, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Role]{
		Name:  "addRole",
		Input: in,
		Write: func(ctx context.Context) (*domain.Role, error) {
			return s.store.Roles.Create(ctx, &domain.Role{Name: in.Name, Permissions: in.Permissions})
		},
		Affects: affects[*domain.Role](s.rolesTopic()),
	})
}

func (s *Service) EditRole(ctx context.Context, v *domain.Viewer, in EditRoleInput) (*domain.Role, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Role]{
		Name:  "editRole",
		Input: in,
		Write: func(ctx context.Context) (*domain.Role, error) {
			p := storage.Patch{}
			storage.SetIf(p, "name", in.Name)
			storage.SetIf(p, "permissions", in.Permissions)
			return s.store.Roles.Update(ctx, in.ID, p)
		},
		Affects: affects[*domain.Role](s.rolesTopic()),
	})
}

func (s *Service) DeleteRoles(ctx context.Context, v *domain.Viewer, ids IDs) error {
	_, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[IDs]{
		Name:  "deleteRoles",
		Input: ids,
		Write: func(ctx context.Context) (IDs, error) {
			return ids, deleteAll(ctx, s.store.Roles, ids)
		},
		Affects: affects[IDs](s.rolesTopic()),
	})
	return err
}

// === User ===

func (s *Service) AddUser(ctx context.Context, v *domain.Viewer, in AddUserInput) (*domain.User, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.User]{
		Name:  "addUser",
		Input: in,
		Write: func(ctx context.Context) (*domain.User, error) {
			if err := s.ensureNameFree(ctx, in.Name, ""); err != nil {
				return nil, err
			}
			if err := s.ensureAvatar(ctx, in.Avatar); err != nil {
				return nil, err
			}
			hash, err := auth.HashPassword(in.Password)
			if err != nil {
				return nil, err
			}
			u := &domain.User{
				Name:        in.Name,
				Password:    hash,
				Email:       in.Email,
				Phone:       in.Phone,
				RoleID:      in.Role,
				AvatarID:    in.Avatar,
				Balance:     in.Balance,
				Level:       in.Level,
				Experience:  in.Experience,
				Preferences: in.Preferences,
				Settings:    in.Settings,
			}
			if in.Avatar != "" {
				u.AvailableAvatars = []string{in.Avatar}
			}
			return s.store.Users.Create(ctx, u)
		},
		Affects: affects[*domain.User](s.usersTopic()),
	})
}

func (s *Service) EditUser(ctx context.Context, v *domain.Viewer, in EditUserInput) (*domain.User, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.User]{
		Name:  "editUser",
		Input: in,
		Write: func(ctx context.Context) (*domain.User, error) {
			p := storage.Patch{}
			if in.Name != nil {
				if err := s.ensureNameFree(ctx, *in.Name, in.ID); err != nil {
					return nil, err
				}
				p.Set("name", *in.Name)
			}
			if in.Avatar != nil {
				if err := s.ensureAvatar(ctx, *in.Avatar); err != nil {
					return nil, err
				}
				p.Set("avatar", *in.Avatar)
			}
			if in.Password != nil {
				hash, err := auth.HashPassword(*in.Password)
				if err != nil {
					return nil, err
				}
				p.Set("password", hash)
			}
			storage.SetIf(p, "email", in.Email)
			storage.SetIf(p, "phone", in.Phone)
			storage.SetIf(p, "role", in.Role)
			storage.SetIf(p, "balance", in.Balance)
			storage.SetIf(p, "level", in.Level)
			storage.SetIf(p, "experience", in.Experience)
			storage.SetIf(p, "availableAvatars", in.AvailableAvatars)
			storage.SetIf(p, "preferences", in.Preferences)
			storage.SetIf(p, "settings", in.Settings)
			return s.store.Users.Update(ctx, in.ID, p)
		},
		Affects: affects[*domain.User](s.usersTopic()),
	})
}

func (s *Service) DeleteUsers(ctx context.Context, v *domain.Viewer, ids IDs) error {
	_, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[IDs]{
		Name:  "deleteUsers",
		Input: ids,
		Write: func(ctx context.Context) (IDs, error) {
			return ids, deleteAll(ctx, s.store.Users, ids)
		},
		Affects: affects[IDs](s.usersTopic()),
	})
	return err
}

// ensureAvatar проверяет, что аватар существует. Пустой id - "без аватара".
func (s *Service) ensureAvatar(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	_, err := s.store.Avatars.FindByID(ctx, id)
	if storage.IsNotFound(err) {
		return gateway.Invalid("avatar", "avatar not found")
	}
	return err
}

// === Hub ===

func (s *Service) hubsTopic() broadcast.Refresh {
	return broadcast.Refetch(TopicHubs, s.store.Hubs, nil)
}

func (s *Service) AddHub(ctx context.Context, v *domain.Viewer, in AddHubInput) (*domain.Hub, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Hub]{
		Name:  "addHub",
		Input: in,
		Write: func(ctx context.Context) (*domain.Hub, error) {
			status := in.Status
			if status == "" {
				status = domain.StatusModeration
			}
			return s.store.Hubs.Create(ctx, &domain.Hub{
				Title:       in.Title,
				Description: in.Description,
				Slogan:      in.Slogan,
				IconID:      in.Icon,
				Color:       in.Color,
				Status:      status,
			})
		},
		Affects: affects[*domain.Hub](s.hubsTopic()),
	})
}

func (s *Service) EditHub(ctx context.Context, v *domain.Viewer, in EditHubInput) (*domain.Hub, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Hub]{
		Name:  "editHub",
		Input: in,
		Write: func(ctx context.Context) (*domain.Hub, error) {
			p := storage.Patch{}
			storage.SetIf(p, "title", in.Title)
			storage.SetIf(p, "description", in.Description)
			storage.SetIf(p, "slogan", in.Slogan)
			storage.SetIf(p, "icon", in.Icon)
			storage.SetIf(p, "color", in.Color)
			storage.SetIf(p, "status", in.Status)
			return s.store.Hubs.Update(ctx, in.ID, p)
		},
		Affects: affects[*domain.Hub](s.hubsTopic()),
	})
}

func (s *Service) DeleteHubs(ctx context.Context, v *domain.Viewer, ids IDs) error {
	_, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[IDs]{
		Name:  "deleteHubs",
		Input: ids,
		Write: func(ctx context.Context) (IDs, error) {
			return ids, deleteAll(ctx, s.store.Hubs, ids)
		},
		Affects: affects[IDs](s.hubsTopic()),
	})
	return err
}

// === Achievement ===

func (s *Service) achievementsTopic() broadcast.Refresh {
	return broadcast.Refetch(TopicAchievements, s.store.Achievements, nil)
}

func (s *Service) AddAchievement(ctx context.Context, v *domain.Viewer, in AddAchievementInput) (*domain.Achievement, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Achievement]{
		Name:  "addAchievement",
		Input: in,
		Write: func(ctx context.Context) (*domain.Achievement, error) {
			return s.store.Achievements.Create(ctx, &domain.Achievement{
				Title:       in.Title,
				Description: in.Description,
				Area:        in.Area,
			})
		},
		Affects: affects[*domain.Achievement](s.achievementsTopic()),
	})
}

func (s *Service) EditAchievement(ctx context.Context, v *domain.Viewer, in EditAchievementInput) (*domain.Achievement, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Achievement]{
		Name:  "editAchievement",
		Input: in,
		Write: func(ctx context.Context) (*domain.Achievement, error) {
			p := storage.Patch{}
			storage.SetIf(p, "title", in.Title)
			storage.SetIf(p, "description", in.Description)
			storage.SetIf(p, "area", in.Area)
			return s.store.Achievements.Update(ctx, in.ID, p)
		},
		Affects: affects[*domain.Achievement](s.achievementsTopic()),
	})
}

func (s *Service) DeleteAchievements(ctx context.Context, v *domain.Viewer, ids IDs) error {
	_, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[IDs]{
		Name:  "deleteAchievements",
		Input: ids,
		Write: func(ctx context.Context) (IDs, error) {
			return ids, deleteAll(ctx, s.store.Achievements, ids)
		},
		Affects: affects[IDs](s.achievementsTopic()),
	})
	return err
}

// === Language ===

func (s *Service) languagesTopic() broadcast.Refresh {
	return broadcast.Refetch(TopicLanguages, s.store.Languages, nil)
}

func (s *Service) AddLanguage(ctx context.Context, v *domain.Viewer, in AddLanguageInput) (*domain.Language, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Language]{
		Name:  "addLanguage",
		Input: in,
		Write: func(ctx context.Context) (*domain.Language, error) {
			return s.store.Languages.Create(ctx, &domain.Language{
				Code:   in.Code,
				Title:  in.Title,
				FlagID: in.Flag,
			})
		},
		Affects: affects[*domain.Language](s.languagesTopic()),
	})
}

func (s *Service) EditLanguage(ctx context.Context, v *domain.Viewer, in EditLanguageInput) (*domain.Language, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Language]{
		Name:  "editLanguage",
		Input: in,
		Write: func(ctx context.Context) (*domain.Language, error) {
			p := storage.Patch{}
			storage.SetIf(p, "code", in.Code)
			storage.SetIf(p, "title", in.Title)
			storage.SetIf(p, "flag", in.Flag)
			return s.store.Languages.Update(ctx, in.ID, p)
		},
		Affects: affects[*domain.Language](s.languagesTopic()),
	})
}

func (s *Service) DeleteLanguages(ctx context.Context, v *domain.Viewer, ids IDs) error {
	_, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[IDs]{
		Name:  "deleteLanguages",
		Input: ids,
		Write: func(ctx context.Context) (IDs, error) {
			return ids, deleteAll(ctx, s.store.Languages, ids)
		},
		Affects: affects[IDs](s.languagesTopic()),
	})
	return err
}
