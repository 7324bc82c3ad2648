package service

import (
	"campus_exchange/internal/config"
	"campus_exchange/internal/repository"
	"campus_exchange/pkg/logger"
)

type Services struct {
	Auth      AuthService
	User      UserService
	Guard     GuardService
	Chat      ChatService
	Block     BlockService
	Reaction  ReactionService
	Stats     StatsService
	RateLimit RateLimitService
	Audit     AuditService
	Storage   StorageService
	Archiver  *RoomArchiver
}

// NewServices builds the service layer. presence is the live session
// registry; it may be nil when no realtime transport is mounted.
func NewServices(repos *repository.Repositories, cfg *config.Config, presence Presence, log logger.Logger) *Services {
	audit := NewAuditService(repos.Audit, log)
	auth := NewAuthService(repos.User, cfg.JWT, log)

	services := &Services{
		Auth:      auth,
		User:      NewUserService(repos.User, log),
		Guard:     NewGuardService(auth, repos.User, repos.Listing, repos.Block, log),
		Chat:      NewChatService(repos.Chat, repos.Room, audit, cfg.Chat, log),
		Block:     NewBlockService(repos.Block, repos.User, audit, log),
		Reaction:  NewReactionService(repos.Reaction, repos.Chat, log),
		Stats:     NewStatsService(repos.Stats, repos.Room, presence, log),
		RateLimit: NewRateLimitService(repos.RateLimit, cfg.RateLimit, log),
		Audit:     audit,
		Storage:   NewLocalStorage(cfg.Uploads, log),
		Archiver:  NewRoomArchiver(repos.Room, audit, cfg.Archive, log),
	}

	log.Info("Services initialized")

	return services
}
