package service

import (
	"context"
	"time"

	"campus_exchange/internal/config"
	"campus_exchange/internal/repository"
	"campus_exchange/pkg/logger"
)

type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Duration
}

type RateLimitService interface {
	Allow(ctx context.Context, key string) (*RateLimitResult, error)
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	cfg           config.RateLimitConfig
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, cfg config.RateLimitConfig, log logger.Logger) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		cfg:           cfg,
		log:           log,
	}
}

func (s *rateLimitService) Allow(ctx context.Context, key string) (*RateLimitResult, error) {
	count, ttl, err := s.rateLimitRepo.Increment(ctx, key, s.cfg.Window)
	if err != nil {
		return nil, err
	}

	remaining := s.cfg.Requests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &RateLimitResult{
		Allowed:   count <= int64(s.cfg.Requests),
		Limit:     s.cfg.Requests,
		Remaining: remaining,
		Reset:     ttl,
	}, nil
}
