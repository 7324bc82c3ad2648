package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"campus_exchange/internal/domain"
	"campus_exchange/internal/repository"
	apperrors "campus_exchange/pkg/errors"
	"campus_exchange/pkg/logger"
)

const maxReactionRunes = 10

type ReactionService interface {
	// Toggle adds the reaction when absent and removes it when present.
	// The result reports whether it is present afterwards.
	Toggle(ctx context.Context, messageID int64, userID, reaction string) (bool, error)
	List(ctx context.Context, messageID int64, userID string) ([]domain.ReactionGroup, error)
}

type reactionService struct {
	reactionRepo repository.ReactionRepository
	chatRepo     repository.ChatRepository
	log          logger.Logger
}

func NewReactionService(reactionRepo repository.ReactionRepository, chatRepo repository.ChatRepository, log logger.Logger) ReactionService {
	return &reactionService{
		reactionRepo: reactionRepo,
		chatRepo:     chatRepo,
		log:          log,
	}
}

func (s *reactionService) participantMessage(ctx context.Context, messageID int64, userID string) (*domain.Message, error) {
	message, err := s.chatRepo.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if !message.IsVisible() {
		return nil, apperrors.ErrMessageNotFound
	}
	if !message.IsParticipant(userID) {
		return nil, apperrors.ErrNotParticipant
	}
	return message, nil
}

func (s *reactionService) Toggle(ctx context.Context, messageID int64, userID, reaction string) (bool, error) {
	reaction = strings.TrimSpace(reaction)
	if reaction == "" || utf8.RuneCountInString(reaction) > maxReactionRunes {
		return false, apperrors.ErrInvalidReaction
	}

	if _, err := s.participantMessage(ctx, messageID, userID); err != nil {
		return false, err
	}

	return s.reactionRepo.Toggle(ctx, &domain.Reaction{
		MessageID: messageID,
		UserID:    userID,
		Reaction:  reaction,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *reactionService) List(ctx context.Context, messageID int64, userID string) ([]domain.ReactionGroup, error) {
	if _, err := s.participantMessage(ctx, messageID, userID); err != nil {
		return nil, err
	}

	reactions, err := s.reactionRepo.ListByMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	return domain.GroupReactions(reactions), nil
}
