package service

import (
	"context"
	"fmt"

	"attendance-backend/internal/model"
	"attendance-backend/internal/store"
)

type ProfileService struct {
	users UserRepository
}

func NewProfileService(users UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	id, ok := parseID(userID)
	if !ok {
		return nil, fail(ErrNotFound, "user_not_found")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if user == nil {
		return nil, fail(ErrNotFound, "user_not_found")
	}
	return user, nil
}

// UpdateProfile changes the supplied fields only. An empty name is treated as
// not supplied; an empty phone clears the phone.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, name, phone *string) (*model.User, error) {
	update := store.UserUpdate{Phone: phone}
	if name != nil && *name != "" {
		update.Name = name
	}
	return s.update(ctx, userID, update)
}

func (s *ProfileService) SetProfilePhoto(ctx context.Context, userID, photo string) (*model.User, error) {
	return s.update(ctx, userID, store.UserUpdate{ProfilePhoto: &photo})
}

func (s *ProfileService) ClearProfilePhoto(ctx context.Context, userID string) (*model.User, error) {
	empty := ""
	return s.update(ctx, userID, store.UserUpdate{ProfilePhoto: &empty})
}

func (s *ProfileService) update(ctx context.Context, userID string, update store.UserUpdate) (*model.User, error) {
	id, ok := parseID(userID)
	if !ok {
		return nil, fail(ErrNotFound, "user_not_found")
	}
	user, err := s.users.Update(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if user == nil {
		return nil, fail(ErrNotFound, "user_not_found")
	}
	return user, nil
}
