package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Bekarys01/unisport-system/models"
	"github.com/Bekarys01/unisport-system/repositories"
	"github.com/Bekarys01/unisport-system/storage"
)

type UpdateProfileInput struct {
	FirstName          *string `json:"first_name"`
	LastName           *string `json:"last_name"`
	RegistrationNumber *string `json:"registration_number"`
	Faculty            *string `json:"faculty"`
	Phone              *string `json:"phone"`
}

type UserService interface {
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error)
	UploadAvatar(ctx context.Context, userID int, contentType string, reader io.Reader) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserRepoError(err)
	}
	s.fillAvatarURL(user)
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserRepoError(err)
	}

	if input.FirstName != nil {
		if strings.TrimSpace(*input.FirstName) == "" {
			return nil, ErrValidationFailed
		}
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.RegistrationNumber != nil {
		if strings.TrimSpace(*input.RegistrationNumber) == "" {
			return nil, ErrValidationFailed
		}
		user.RegistrationNumber = input.RegistrationNumber
	}
	if input.Faculty != nil {
		user.Faculty = input.Faculty
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserRegNumberConflict):
			return nil, ErrUserRegNumberConflict
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		default:
			return nil, mapUserRepoError(err)
		}
	}

	s.fillAvatarURL(user)
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int, contentType string, reader io.Reader) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserRepoError(err)
	}

	key := fmt.Sprintf("avatars/user_%d", userID)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar for user %d: %w", userID, err)
	}

	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &result.Key); err != nil {
		return nil, mapUserRepoError(err)
	}

	user.AvatarKey = &result.Key
	s.fillAvatarURL(user)
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) fillAvatarURL(user *models.User) {
	if s.uploader == nil || user.AvatarKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*user.AvatarKey)
	user.AvatarURL = &url
}
