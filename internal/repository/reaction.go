package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus_exchange/internal/domain"
	"campus_exchange/pkg/logger"
)

type ReactionRepository interface {
	// Toggle removes the reaction if present, otherwise adds it. It reports
	// whether the reaction is present afterwards.
	Toggle(ctx context.Context, reaction *domain.Reaction) (bool, error)
	ListByMessage(ctx context.Context, messageID int64) ([]*domain.Reaction, error)
}

type reactionRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewReactionRepository(db *pgxpool.Pool, log logger.Logger) ReactionRepository {
	return &reactionRepository{db: db, log: log}
}

func (r *reactionRepository) Toggle(ctx context.Context, reaction *domain.Reaction) (bool, error) {
	remove := `DELETE FROM message_reactions WHERE message_id = $1 AND user_id = $2 AND reaction = $3`
	add := `
		INSERT INTO message_reactions (message_id, user_id, reaction, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (message_id, user_id, reaction) DO NOTHING
		RETURNING id
	`

	var active bool
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, remove, reaction.MessageID, reaction.UserID, reaction.Reaction)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			active = false
			return nil
		}
		err = tx.QueryRow(ctx, add, reaction.MessageID, reaction.UserID, reaction.Reaction, reaction.CreatedAt).
			Scan(&reaction.ID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		// ErrNoRows means a concurrent toggle inserted the same row first.
		active = true
		return nil
	})
	if err != nil {
		r.log.Error("Failed to toggle reaction", "error", err, "message_id", reaction.MessageID)
		return false, fmt.Errorf("toggle reaction: %w", err)
	}

	return active, nil
}

func (r *reactionRepository) ListByMessage(ctx context.Context, messageID int64) ([]*domain.Reaction, error) {
	query := `
		SELECT id, message_id, user_id, reaction, created_at
		FROM message_reactions
		WHERE message_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, messageID)
	if err != nil {
		r.log.Error("Failed to list reactions", "error", err)
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	defer rows.Close()

	reactions := make([]*domain.Reaction, 0)
	for rows.Next() {
		re := &domain.Reaction{}
		if err := rows.Scan(&re.ID, &re.MessageID, &re.UserID, &re.Reaction, &re.CreatedAt); err != nil {
			r.log.Error("Failed to scan reaction", "error", err)
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		reactions = append(reactions, re)
	}

	return reactions, rows.Err()
}
