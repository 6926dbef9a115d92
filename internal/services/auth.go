package services

import (
	"context"

	"go.uber.org/zap"

	"equiptrack/internal/dto"
	"equiptrack/internal/repositories"
	apperrors "equiptrack/pkg/errors"
	"equiptrack/pkg/service"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.LoginResponseDTO, error)
	Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.LoginResponseDTO, error)
	ListLoginUsers(ctx context.Context) ([]dto.ShortUserDTO, error)
}

// AuthService issues sessions for the role-selection login: the client
// picks a user, no password is checked. The token still carries the real
// role and base so every later check is enforceable.
type AuthService struct {
	userRepo repositories.UserRepositoryInterface
	jwtSvc   service.JWTService
	logger   *zap.Logger
}

func NewAuthService(userRepo repositories.UserRepositoryInterface, jwtSvc service.JWTService, logger *zap.Logger) AuthServiceInterface {
	return &AuthService{userRepo: userRepo, jwtSvc: jwtSvc, logger: logger}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.LoginResponseDTO, error) {
	user, err := s.userRepo.FindUserByID(ctx, payload.UserID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	access, refresh, err := s.jwtSvc.GenerateTokens(user.ID, user.Name, user.Role, user.Base)
	if err != nil {
		s.logger.Error("failed to issue session tokens", zap.String("userId", user.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("userId", user.ID), zap.String("role", user.Role))
	return &dto.LoginResponseDTO{
		AccessToken:  access,
		RefreshToken: refresh,
		User: dto.ShortUserDTO{
			ID:   user.ID,
			Name: user.Name,
			Role: user.Role,
			Base: user.Base,
		},
	}, nil
}

func (s *AuthService) Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.LoginResponseDTO, error) {
	claims, err := s.jwtSvc.ValidateToken(payload.RefreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	// Re-read the user so a role or base change takes effect on refresh.
	user, err := s.userRepo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	access, refresh, err := s.jwtSvc.GenerateTokens(user.ID, user.Name, user.Role, user.Base)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponseDTO{
		AccessToken:  access,
		RefreshToken: refresh,
		User: dto.ShortUserDTO{
			ID:   user.ID,
			Name: user.Name,
			Role: user.Role,
			Base: user.Base,
		},
	}, nil
}

// ListLoginUsers backs the login screen's user picker.
func (s *AuthService) ListLoginUsers(ctx context.Context) ([]dto.ShortUserDTO, error) {
	users, err := s.userRepo.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ShortUserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, dto.ShortUserDTO{ID: u.ID, Name: u.Name, Role: u.Role, Base: u.Base})
	}
	return out, nil
}
