package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus_exchange/internal/domain"
	apperrors "campus_exchange/pkg/errors"
	"campus_exchange/pkg/logger"
)

type ListingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
}

type listingRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewListingRepository(db *pgxpool.Pool, log logger.Logger) ListingRepository {
	return &listingRepository{db: db, log: log}
}

func (r *listingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	query := `
		SELECT id, owner_id, title, status, created_at
		FROM listings
		WHERE id = $1
	`

	listing := &domain.Listing{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&listing.ID, &listing.OwnerID, &listing.Title, &listing.Status, &listing.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrListingNotFound
		}
		r.log.Error("Failed to get listing", "error", err, "listing_id", id)
		return nil, fmt.Errorf("get listing: %w", err)
	}

	return listing, nil
}
