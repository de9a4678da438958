package service

import (
	"context"
	"errors"
	"fmt"

	"internboard/internal/common"
	"internboard/internal/common/security"
	"internboard/internal/domain/model"
	"internboard/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type RegisterRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token plus the public profile; internal
// record fields never leave the auth surface.
type LoginResponse struct {
	User  *model.Profile `json:"user"`
	Token string         `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if req.UserName == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("userName, email and password are required: %w", common.ErrValidation)
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleIntern {
		return nil, fmt.Errorf("role must be admin or intern: %w", common.ErrValidation)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		UserName:       req.UserName,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           req.Role,
	}

	// Duplicate emails are rejected by the unique index, so concurrent
	// registrations cannot both slip through.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	user.HashedPassword = ""
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Same message as a wrong password, to avoid user enumeration.
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		if errors.Is(err, security.ErrNoSecret) {
			return nil, common.ErrMisconfigured
		}
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResponse{User: user.Profile(), Token: token}, nil
}
