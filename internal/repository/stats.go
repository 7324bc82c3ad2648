package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"campus_exchange/pkg/logger"
)

type StatsRepository interface {
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type statsRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewStatsRepository(db *pgxpool.Pool, log logger.Logger) StatsRepository {
	return &statsRepository{db: db, log: log}
}

func (r *statsRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM chat_messages
		WHERE receiver_id = $1 AND read_at IS NULL AND deleted = FALSE
	`

	var unread int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&unread); err != nil {
		r.log.Error("Failed to count unread messages", "error", err)
		return 0, fmt.Errorf("count unread: %w", err)
	}

	return unread, nil
}
