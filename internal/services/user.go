package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"equiptrack/internal/dto"
	"equiptrack/internal/entities"
	"equiptrack/internal/repositories"
	"equiptrack/pkg/constants"
	apperrors "equiptrack/pkg/errors"
)

type UserServiceInterface interface {
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserDTO, error)
	GetUsers(ctx context.Context) ([]dto.UserDTO, error)
	FindUser(ctx context.Context, id string) (*dto.UserDTO, error)
	TotalUsers(ctx context.Context) (int, error)
}

type UserService struct {
	repo   repositories.UserRepositoryInterface
	logger *zap.Logger
}

func NewUserService(repo repositories.UserRepositoryInterface, logger *zap.Logger) UserServiceInterface {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserDTO, error) {
	if existing, err := s.repo.FindUserByEmail(ctx, payload.Email); err == nil && existing != nil {
		return nil, apperrors.NewInvalidInputError("email %s is already registered", payload.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := entities.User{
		ID:           constants.UserIDPrefix + uuid.New().String(),
		Name:         payload.Name,
		Email:        payload.Email,
		Role:         payload.Role,
		Base:         payload.Base,
		PasswordHash: string(hash),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		s.logger.Error("failed to create user", zap.String("email", payload.Email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user created", zap.String("userId", user.ID), zap.String("role", user.Role))
	d := userToDTO(user)
	return &d, nil
}

func (s *UserService) GetUsers(ctx context.Context) ([]dto.UserDTO, error) {
	users, err := s.repo.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, userToDTO(u))
	}
	return out, nil
}

func (s *UserService) FindUser(ctx context.Context, id string) (*dto.UserDTO, error) {
	user, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := userToDTO(*user)
	return &d, nil
}

func (s *UserService) TotalUsers(ctx context.Context) (int, error) {
	return s.repo.CountUsers(ctx)
}

func userToDTO(u entities.User) dto.UserDTO {
	d := dto.UserDTO{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Base:  u.Base,
	}
	if u.CreatedAt != nil {
		d.CreatedAt = u.CreatedAt.Format("2006-01-02 15:04:05")
	}
	return d
}
