package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"servicemarket/internal/domain/entity"
	"servicemarket/internal/domain/repository"
	"servicemarket/internal/domain/service"
	"servicemarket/pkg/errors"
	"servicemarket/pkg/logger"
)

const avatarFolder = "avatars"

var avatarContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

type UserUseCase struct {
	userRepo       repository.UserRepository
	files          service.FileUploadService
	maxAvatarBytes int64
}

// NewUserUseCase wires profile operations. files may be nil, in which case
// avatar uploads fail with a dependency error.
func NewUserUseCase(userRepo repository.UserRepository, files service.FileUploadService, maxAvatarBytes int64) *UserUseCase {
	return &UserUseCase{
		userRepo:       userRepo,
		files:          files,
		maxAvatarBytes: maxAvatarBytes,
	}
}

// UpdateProfileInput is a patch; nil fields are left unchanged.
type UpdateProfileInput struct {
	Name       *string
	Email      *string
	Phone      *string
	Company    *string
	Skill      *string
	Experience *int
	Location   *string
}

type AvatarUpload struct {
	File     io.Reader
	Filename string
	Size     int64
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	if input.Name != nil && isBlank(*input.Name) {
		return nil, errors.Validation("name cannot be blank")
	}
	if input.Email != nil && isBlank(*input.Email) {
		return nil, errors.Validation("email cannot be blank")
	}
	if input.Experience != nil && *input.Experience < 0 {
		return nil, errors.Validation("experience cannot be negative")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			existing, err := uc.userRepo.GetByEmail(ctx, email)
			if err == nil && existing.ID != user.ID {
				return nil, errors.Conflict("Email already in use")
			}
			if err != nil && !errors.Is(err, errors.CodeNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Location != nil {
		user.Location = *input.Location
	}
	if input.Company != nil {
		user.Company = *input.Company
	}
	if input.Skill != nil {
		user.Skill = *input.Skill
	}
	if input.Experience != nil {
		user.Experience = *input.Experience
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadAvatar stores a new avatar and points the profile at it. The previous
// object is removed afterwards; failing to remove it is only logged.
func (uc *UserUseCase) UploadAvatar(ctx context.Context, userID string, upload AvatarUpload) (*entity.User, error) {
	if uc.files == nil {
		return nil, errors.Dependency("Avatar storage is not configured", nil)
	}
	if upload.Size > uc.maxAvatarBytes {
		return nil, errors.Validation(fmt.Sprintf("avatar must be at most %d bytes", uc.maxAvatarBytes))
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	contentType, ok := avatarContentTypes[ext]
	if !ok {
		return nil, errors.Validation("avatar must be a jpg, jpeg, png or gif image")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stored, err := uc.files.UploadFile(ctx, upload.File, contentType, avatarFolder)
	if err != nil {
		return nil, asDependency("Failed to upload avatar", err)
	}

	previous := user.AvatarObject
	user.AvatarURL = stored.URL
	user.AvatarObject = stored.Object
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if previous != "" && previous != stored.Object {
		if err := uc.files.DeleteFile(ctx, previous); err != nil {
			logger.Warn("Failed to delete old avatar %s of user %s: %v", previous, userID, err)
		}
	}

	return user, nil
}
