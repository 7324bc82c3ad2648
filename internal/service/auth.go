package service

import (
	"context"
	"errors"
	"fmt"

	"campus_exchange/internal/config"
	"campus_exchange/internal/domain"
	"campus_exchange/internal/repository"
	apperrors "campus_exchange/pkg/errors"
	"campus_exchange/pkg/jwt"
	"campus_exchange/pkg/logger"
)

// AuthService resolves bearer credentials to known, active users.
// Credential issuance lives in the accounts subsystem.
type AuthService interface {
	ValidateToken(ctx context.Context, tokenString string) (*domain.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtCfg   config.JWTConfig
	log      logger.Logger
}

func NewAuthService(userRepo repository.UserRepository, jwtCfg config.JWTConfig, log logger.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
		log:      log,
	}
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := jwt.ValidateToken(tokenString, s.jwtCfg.AccessSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", apperrors.ErrInvalidToken)
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.ErrUserDisabled
	}

	return user, nil
}
