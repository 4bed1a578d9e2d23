package service

import (
	"context"

	"github.com/UkralStul/hub-graphql-service/internal/broadcast"
	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/gateway"
	"github.com/UkralStul/hub-graphql-service/internal/storage"
)

// Файл загрузки сохраняется на диск до записи сущности.
// Если запись сущности не удалась, файл остаётся на диске.

// === Avatar ===

func (s *Service) avatarsTopic() broadcast.Refresh {
	return broadcast.Refetch(TopicAvatars, s.store.Avatars, nil)
}

func (s *Service) AddAvatar(ctx context.Context, v *domain.Viewer, in AddAvatarInput) (*domain.Avatar, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Avatar]{
		Name:  "addAvatar",
		Input: in,
		Write: func(ctx context.Context) (*domain.Avatar, error) {
			f, err := s.storeFile(ctx, "file", in.File)
			if err != nil {
				return nil, err
			}
			name := in.Name
			if name == "" {
				name = f.Filename
			}
			rarity := in.Rarity
			if rarity == "" {
				rarity = domain.RarityCommon
			}
			return s.store.Avatars.Create(ctx, &domain.Avatar{Name: name, Path: f.Path, Rarity: rarity, HubID: in.Hub})
		},
		Affects: affects[*domain.Avatar](s.avatarsTopic()),
	})
}

func (s *Service) EditAvatar(ctx context.Context, v *domain.Viewer, in EditAvatarInput) (*domain.Avatar, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Avatar]{
		Name:  "editAvatar",
		Input: in,
		Write: func(ctx context.Context) (*domain.Avatar, error) {
			p := storage.Patch{}
			if in.File != nil {
				f, err := s.storeFile(ctx, "file", in.File)
				if err != nil {
					return nil, err
				}
				p.Set("path", f.Path)
			}
			storage.SetIf(p, "name", in.Name)
			storage.SetIf(p, "rarity", in.Rarity)
			storage.SetIf(p, "hub", in.Hub)
			return s.store.Avatars.Update(ctx, in.ID, p)
		},
		Affects: affects[*domain.Avatar](s.avatarsTopic()),
	})
}

func (s *Service) DeleteAvatars(ctx context.Context, v *domain.Viewer, ids IDs) error {
	_, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[IDs]{
		Name:  "deleteAvatars",
		Input: ids,
		Write: func(ctx context.Context) (IDs, error) {
			return ids, deleteAll(ctx, s.store.Avatars, ids)
		},
		Affects: affects[IDs](s.avatarsTopic()),
	})
	return err
}

// === Image ===

func (s *Service) imagesTopic() broadcast.Refresh {
	return broadcast.Refetch(TopicImages, s.store.Images, nil)
}

func (s *Service) AddImage(ctx context.Context, v *domain.Viewer, in AddImageInput) (*domain.Image, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Image]{
		Name:  "addImage",
		Input: in,
		Write: func(ctx context.Context) (*domain.Image, error) {
			f, err := s.storeFile(ctx, "file", in.File)
			if err != nil {
				return nil, err
			}
			name := in.Name
			if name == "" {
				name = f.Filename
			}
			return s.store.Images.Create(ctx, &domain.Image{Name: name, Path: f.Path, Mimetype: f.Mimetype})
		},
		Affects: affects[*domain.Image](s.imagesTopic()),
	})
}

func (s *Service) EditImage(ctx context.Context, v *domain.Viewer, in EditImageInput) (*domain.Image, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Image]{
		Name:  "editImage",
		Input: in,
		Write: func(ctx context.Context) (*domain.Image, error) {
			p := storage.Patch{}
			if in.File != nil {
				f, err := s.storeFile(ctx, "file", in.File)
				if err != nil {
					return nil, err
				}
				p.Set("path", f.Path).Set("mimetype", f.Mimetype)
			}
			storage.SetIf(p, "name", in.Name)
			return s.store.Images.Update(ctx, in.ID, p)
		},
		Affects: affects[*domain.Image](s.imagesTopic()),
	})
}

func (s *Service) DeleteImages(ctx context.Context, v *domain.Viewer, ids IDs) error {
	_, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[IDs]{
		Name:  "deleteImages",
		Input: ids,
		Write: func(ctx context.Context) (IDs, error) {
			return ids, deleteAll(ctx, s.store.Images, ids)
		},
		Affects: affects[IDs](s.imagesTopic()),
	})
	return err
}

// === Icon ===

func (s *Service) iconsTopic() broadcast.Refresh {
	return broadcast.Refetch(TopicIcons, s.store.Icons, nil)
}

func (s *Service) AddIcon(ctx context.Context, v *domain.Viewer, in AddIconInput) (*domain.Icon, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Icon]{
		Name:  "addIcon",
		Input: in,
		Write: func(ctx context.Context) (*domain.Icon, error) {
			f, err := s.storeFile(ctx, "file", in.File)
			if err != nil {
				return nil, err
			}
			name := in.Name
			if name == "" {
				name = f.Filename
			}
			return s.store.Icons.Create(ctx, &domain.Icon{Name: name, Path: f.Path, Type: in.Type})
		},
		Affects: affects[*domain.Icon](s.iconsTopic()),
	})
}

func (s *Service) EditIcon(ctx context.Context, v *domain.Viewer, in EditIconInput) (*domain.Icon, error) {
	return gateway.Execute(ctx, s.gw, v, gateway.Mutation[*domain.Icon]{
		Name:  "editIcon",
		Input: in,
		Write: func(ctx context.Context) (*domain.Icon, error) {
			p := storage.Patch{}
			if in.File != nil {
				f, err := s.storeFile(ctx, "file", in.File)
				if err != nil {
					return nil, err
				}
				p.Set("path", f.Path)
			}
			storage.SetIf(p, "name", in.Name)
			storage.SetIf(p, "type", in.Type)
			return s.store.Icons.Update(ctx, in.ID, p)
		},
		Affects: affects[*domain.Icon](s.iconsTopic()),
	})
}

func (s *Service) DeleteIcons(ctx context.Context, v *domain.Viewer, ids IDs) error {
	_, err := gateway.Execute(ctx, s.gw, v, gateway.Mutation[IDs]{
		Name:  "deleteIcons",
		Input: ids,
		Write: func(ctx context.Context) (IDs, error) {
			return ids, deleteAll(ctx, s.store.Icons, ids)
		},
		Affects: affects[IDs](s.iconsTopic()),
	})
	return err
}
