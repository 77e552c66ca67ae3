package service

import (
	"context"

	"quayside/internal/cache"
	"quayside/internal/models"
	"quayside/internal/repository"
)

// UserService manages user accounts and profiles.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput holds the editable profile fields. Empty fields are
// left unchanged.
type UpdateProfileInput struct {
	UserID      uint
	DisplayName string
	Bio         string
	Avatar      string
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUserByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500
	const maxDisplayNameLen = 100

	if in.DisplayName != "" {
		if len(in.DisplayName) > maxDisplayNameLen {
			return nil, models.NewValidationError("Display name too long (max 100 characters)")
		}
		user.DisplayName = in.DisplayName
	}
	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	cache.InvalidateUserHeader(ctx, user.ID)

	return user, nil
}

// SetAccessLevel changes a user's access level. Moderation endpoints gate
// who may call this; the service only enforces the level's validity.
func (s *UserService) SetAccessLevel(ctx context.Context, targetID uint, level models.AccessLevel) (*models.User, error) {
	if level < models.AccessBanned || level > models.AccessAdmin {
		return nil, models.NewValidationError("Unknown access level")
	}
	user, err := s.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateAccessLevel(ctx, targetID, level); err != nil {
		return nil, err
	}
	user.AccessLevel = level

	return user, nil
}
