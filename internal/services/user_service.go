package services

import (
	"context"
	"errors"
	"strings"

	"github.com/aaryankalra/auth-starter-kit/internal/models"
	"github.com/aaryankalra/auth-starter-kit/internal/repository"
	"go.uber.org/zap"
)

type userService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewUserService constructs the profile service.
func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("get profile: lookup failed", zap.Error(err))
		return nil, ErrInternal
	}
	return user, nil
}

// UpdateProfile overwrites the mutable fields that were provided, leaving
// the rest untouched.
func (s *userService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("update profile: lookup failed", zap.Error(err))
		return nil, ErrInternal
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if email := normalizeEmail(req.Email); email != "" {
		user.Email = email
	}
	if req.ProfilePic != "" {
		user.ProfilePic = req.ProfilePic
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("update profile: update failed", zap.Error(err))
		return nil, ErrInternal
	}
	return user, nil
}
