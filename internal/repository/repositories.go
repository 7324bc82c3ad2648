package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"campus_exchange/pkg/logger"
)

type Repositories struct {
	User      UserRepository
	Listing   ListingRepository
	Chat      ChatRepository
	Room      RoomRepository
	Block     BlockRepository
	Reaction  ReactionRepository
	Stats     StatsRepository
	Audit     AuditRepository
	RateLimit RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	repos := &Repositories{
		User:      NewUserRepository(db, log),
		Listing:   NewListingRepository(db, log),
		Chat:      NewChatRepository(db, log),
		Room:      NewRoomRepository(db, log),
		Block:     NewBlockRepository(db, log),
		Reaction:  NewReactionRepository(db, log),
		Stats:     NewStatsRepository(db, log),
		Audit:     NewAuditRepository(db, log),
		RateLimit: NewRateLimitRepository(redis, log),
	}

	log.Info("Repositories initialized")

	return repos
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}
