package service

import (
	"context"

	"campus_exchange/internal/domain"
	"campus_exchange/internal/repository"
	"campus_exchange/pkg/logger"
)

type UserService interface {
	GetMe(ctx context.Context, userID string) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	log      logger.Logger
}

func NewUserService(userRepo repository.UserRepository, log logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log,
	}
}

func (s *userService) GetMe(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
