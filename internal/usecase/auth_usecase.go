package usecase

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"servicemarket/internal/domain/entity"
	"servicemarket/internal/domain/repository"
	"servicemarket/pkg/errors"
	"servicemarket/pkg/logger"
)

const minPasswordLength = 6

type AuthUseCase struct {
	userRepo repository.UserRepository
	identity IdentityProvider
}

func NewAuthUseCase(userRepo repository.UserRepository, identity IdentityProvider) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		identity: identity,
	}
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            entity.Role
	Phone           string
	Company         string
	Location        string
	Skill           string
	Experience      int
}

type LoginInput struct {
	Email    string
	Password string
	// Name is optional; when given it must match the account.
	Name string
}

type AuthResult struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if isBlank(input.Name) || isBlank(input.Email) || input.Password == "" {
		return nil, errors.Validation("name, email and password are required")
	}
	if !input.Role.Valid() {
		return nil, errors.Validation("role must be client or provider")
	}
	if len(input.Password) < minPasswordLength {
		return nil, errors.Validation("password must be at least 6 characters")
	}
	if input.Password != input.ConfirmPassword {
		return nil, errors.Validation("passwords do not match")
	}
	if input.Experience < 0 {
		return nil, errors.Validation("experience cannot be negative")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := uc.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, errors.Conflict("Email already in use")
	} else if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	user := &entity.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         input.Role,
		Phone:        input.Phone,
		Location:     input.Location,
	}
	switch input.Role {
	case entity.RoleClient:
		user.Company = input.Company
	case entity.RoleProvider:
		user.Skill = input.Skill
		user.Experience = input.Experience
	}

	id, err := uc.identity.CreateIdentity(ctx, user, input.Password)
	if err != nil {
		return nil, asDependency("Failed to create identity", err)
	}
	user.ID = id

	if err := uc.userRepo.Create(ctx, user); err != nil {
		if cleanupErr := uc.identity.DeleteIdentity(ctx, id); cleanupErr != nil {
			logger.Error("Failed to remove identity %s after user create failed: %v", id, cleanupErr)
		}
		return nil, err
	}

	token, err := uc.identity.IssueToken(ctx, user.ID, user.Role)
	if err != nil {
		return nil, asDependency("Failed to issue token", err)
	}

	logger.Info("Registered %s user %s", user.Role, user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if isBlank(input.Email) || input.Password == "" {
		return nil, errors.Validation("email and password are required")
	}

	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.Unauthorized("Invalid credentials", nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errors.Unauthorized("Invalid credentials", nil)
	}
	if name := strings.TrimSpace(input.Name); name != "" && !strings.EqualFold(name, user.Name) {
		return nil, errors.Unauthorized("Invalid credentials", nil)
	}

	token, err := uc.identity.IssueToken(ctx, user.ID, user.Role)
	if err != nil {
		return nil, asDependency("Failed to issue token", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token to the identity it was issued for.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, errors.Unauthorized("Missing token", nil)
	}
	identity, err := uc.identity.VerifyToken(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}
	return identity, nil
}

func asDependency(message string, err error) error {
	if appErr, ok := errors.As(err); ok {
		return appErr
	}
	return errors.Dependency(message, err)
}
