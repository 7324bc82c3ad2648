package service

import (
	"context"

	"campus_exchange/internal/domain"
	"campus_exchange/internal/repository"
	"campus_exchange/pkg/logger"
)

// Presence reports live connection state held by the session registry.
type Presence interface {
	UserConnections(userID string) int
}

type StatsService interface {
	GetChatStats(ctx context.Context, userID string) (*domain.ChatStats, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
	roomRepo  repository.RoomRepository
	presence  Presence
	log       logger.Logger
}

func NewStatsService(statsRepo repository.StatsRepository, roomRepo repository.RoomRepository, presence Presence, log logger.Logger) StatsService {
	return &statsService{
		statsRepo: statsRepo,
		roomRepo:  roomRepo,
		presence:  presence,
		log:       log,
	}
}

func (s *statsService) GetChatStats(ctx context.Context, userID string) (*domain.ChatStats, error) {
	rooms, err := s.roomRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	unread, err := s.statsRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &domain.ChatStats{Unread: unread}
	for _, room := range rooms {
		if room.Status == domain.RoomStatusActive {
			stats.ActiveRooms++
		}
	}
	if s.presence != nil {
		stats.ActiveConnections = s.presence.UserConnections(userID)
	}

	return stats, nil
}
