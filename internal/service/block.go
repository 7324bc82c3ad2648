package service

import (
	"context"
	"strings"
	"time"

	"campus_exchange/internal/domain"
	"campus_exchange/internal/repository"
	apperrors "campus_exchange/pkg/errors"
	"campus_exchange/pkg/logger"
)

type BlockService interface {
	Block(ctx context.Context, blockerID, userID, reason string) (*domain.BlockedUser, error)
	Unblock(ctx context.Context, blockerID, userID string) error
	ListBlocked(ctx context.Context, blockerID string) ([]*domain.BlockedUserView, error)
}

type blockService struct {
	blockRepo repository.BlockRepository
	userRepo  repository.UserRepository
	audit     AuditService
	log       logger.Logger
}

func NewBlockService(blockRepo repository.BlockRepository, userRepo repository.UserRepository, audit AuditService, log logger.Logger) BlockService {
	return &blockService{
		blockRepo: blockRepo,
		userRepo:  userRepo,
		audit:     audit,
		log:       log,
	}
}

func (s *blockService) Block(ctx context.Context, blockerID, userID, reason string) (*domain.BlockedUser, error) {
	if blockerID == userID {
		return nil, apperrors.ErrSelfBlock
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	block := &domain.BlockedUser{
		UserID:    userID,
		BlockedBy: blockerID,
		CreatedAt: time.Now().UTC(),
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		block.Reason = &reason
	}

	if err := s.blockRepo.Create(ctx, block); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, blockerID, nil, domain.EventTypeUserBlocked, map[string]interface{}{
		"blocked_user_id": userID,
	})

	return block, nil
}

func (s *blockService) Unblock(ctx context.Context, blockerID, userID string) error {
	if err := s.blockRepo.Delete(ctx, userID, blockerID); err != nil {
		return err
	}

	recordAudit(ctx, s.audit, s.log, blockerID, nil, domain.EventTypeUserUnblocked, map[string]interface{}{
		"blocked_user_id": userID,
	})

	return nil
}

func (s *blockService) ListBlocked(ctx context.Context, blockerID string) ([]*domain.BlockedUserView, error) {
	return s.blockRepo.ListByBlocker(ctx, blockerID)
}
