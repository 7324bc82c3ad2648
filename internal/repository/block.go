package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus_exchange/internal/domain"
	apperrors "campus_exchange/pkg/errors"
	"campus_exchange/pkg/logger"
)

type BlockRepository interface {
	Create(ctx context.Context, block *domain.BlockedUser) error
	Delete(ctx context.Context, userID, blockedBy string) error
	// ExistsBetween reports a block edge in either direction.
	ExistsBetween(ctx context.Context, a, b string) (bool, error)
	ListByBlocker(ctx context.Context, blockedBy string) ([]*domain.BlockedUserView, error)
}

type blockRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewBlockRepository(db *pgxpool.Pool, log logger.Logger) BlockRepository {
	return &blockRepository{db: db, log: log}
}

func (r *blockRepository) Create(ctx context.Context, block *domain.BlockedUser) error {
	query := `
		INSERT INTO blocked_users (user_id, blocked_by, reason, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, block.UserID, block.BlockedBy, block.Reason, block.CreatedAt).
		Scan(&block.ID, &block.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrAlreadyBlocked
		}
		r.log.Error("Failed to create block", "error", err)
		return fmt.Errorf("create block: %w", err)
	}

	return nil
}

func (r *blockRepository) Delete(ctx context.Context, userID, blockedBy string) error {
	query := `DELETE FROM blocked_users WHERE user_id = $1 AND blocked_by = $2`

	tag, err := r.db.Exec(ctx, query, userID, blockedBy)
	if err != nil {
		r.log.Error("Failed to delete block", "error", err)
		return fmt.Errorf("delete block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotBlocked
	}

	return nil
}

func (r *blockRepository) ExistsBetween(ctx context.Context, a, b string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM blocked_users
			WHERE (user_id = $1 AND blocked_by = $2) OR (user_id = $2 AND blocked_by = $1)
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, a, b).Scan(&exists); err != nil {
		r.log.Error("Failed to check block", "error", err)
		return false, fmt.Errorf("check block: %w", err)
	}

	return exists, nil
}

func (r *blockRepository) ListByBlocker(ctx context.Context, blockedBy string) ([]*domain.BlockedUserView, error) {
	query := `
		SELECT b.user_id, u.email, b.created_at, b.reason
		FROM blocked_users b
		JOIN users u ON u.id = b.user_id
		WHERE b.blocked_by = $1
		ORDER BY b.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, blockedBy)
	if err != nil {
		r.log.Error("Failed to list blocked users", "error", err)
		return nil, fmt.Errorf("list blocked users: %w", err)
	}
	defer rows.Close()

	views := make([]*domain.BlockedUserView, 0)
	for rows.Next() {
		v := &domain.BlockedUserView{}
		if err := rows.Scan(&v.UserID, &v.Email, &v.BlockedAt, &v.Reason); err != nil {
			r.log.Error("Failed to scan blocked user", "error", err)
			return nil, fmt.Errorf("scan blocked user: %w", err)
		}
		views = append(views, v)
	}

	return views, rows.Err()
}
