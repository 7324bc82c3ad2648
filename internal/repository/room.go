package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus_exchange/internal/domain"
	apperrors "campus_exchange/pkg/errors"
	"campus_exchange/pkg/logger"
)

type RoomRepository interface {
	// GetOrCreate fills room from the existing row for its
	// (listing, participant1, participant2) triple, inserting it first if
	// absent. The returned flag is true only for the inserting caller.
	GetOrCreate(ctx context.Context, room *domain.Room) (bool, error)
	GetByID(ctx context.Context, roomID int64) (*domain.Room, error)
	ListByParticipant(ctx context.Context, userID string) ([]*domain.Room, error)
	UpdateStatus(ctx context.Context, roomID int64, status string) error
	ArchiveIdle(ctx context.Context, idleSince time.Time) (int64, error)
}

type roomRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewRoomRepository(db *pgxpool.Pool, log logger.Logger) RoomRepository {
	return &roomRepository{db: db, log: log}
}

const roomColumns = `id, listing_id, participant1_id, participant2_id, created_at, last_message_at, status`

func scanRoom(row scanner) (*domain.Room, error) {
	room := &domain.Room{}
	err := row.Scan(
		&room.ID, &room.ListingID, &room.Participant1ID, &room.Participant2ID,
		&room.CreatedAt, &room.LastMessageAt, &room.Status,
	)
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (r *roomRepository) GetOrCreate(ctx context.Context, room *domain.Room) (bool, error) {
	insert := `
		INSERT INTO chat_rooms (listing_id, participant1_id, participant2_id, created_at, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (listing_id, participant1_id, participant2_id) DO NOTHING
		RETURNING ` + roomColumns
	lookup := `
		SELECT ` + roomColumns + `
		FROM chat_rooms
		WHERE listing_id = $1 AND participant1_id = $2 AND participant2_id = $3
	`

	room.Participant1ID, room.Participant2ID = domain.OrderParticipants(room.Participant1ID, room.Participant2ID)
	if room.Status == "" {
		room.Status = domain.RoomStatusActive
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}

	created, err := scanRoom(r.db.QueryRow(ctx, insert,
		room.ListingID, room.Participant1ID, room.Participant2ID, room.CreatedAt, room.Status,
	))
	if err == nil {
		*room = *created
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.log.Error("Failed to create room", "error", err, "listing_id", room.ListingID)
		return false, fmt.Errorf("create room: %w", err)
	}

	existing, err := scanRoom(r.db.QueryRow(ctx, lookup, room.ListingID, room.Participant1ID, room.Participant2ID))
	if err != nil {
		r.log.Error("Failed to load room after conflict", "error", err, "listing_id", room.ListingID)
		return false, fmt.Errorf("load room: %w", err)
	}
	*room = *existing

	return false, nil
}

func (r *roomRepository) GetByID(ctx context.Context, roomID int64) (*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM chat_rooms WHERE id = $1`

	room, err := scanRoom(r.db.QueryRow(ctx, query, roomID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRoomNotFound
		}
		r.log.Error("Failed to get room", "error", err, "room_id", roomID)
		return nil, fmt.Errorf("get room: %w", err)
	}

	return room, nil
}

// ListByParticipant returns the user's rooms, most recently active first.
func (r *roomRepository) ListByParticipant(ctx context.Context, userID string) ([]*domain.Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM chat_rooms
		WHERE participant1_id = $1 OR participant2_id = $1
		ORDER BY last_message_at DESC NULLS LAST, id DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list rooms", "error", err)
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]*domain.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			r.log.Error("Failed to scan room", "error", err)
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

func (r *roomRepository) UpdateStatus(ctx context.Context, roomID int64, status string) error {
	query := `UPDATE chat_rooms SET status = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, roomID, status)
	if err != nil {
		r.log.Error("Failed to update room status", "error", err, "room_id", roomID)
		return fmt.Errorf("update room status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRoomNotFound
	}

	return nil
}

// ArchiveIdle moves active rooms with no activity since idleSince to the
// archived state.
func (r *roomRepository) ArchiveIdle(ctx context.Context, idleSince time.Time) (int64, error) {
	query := `
		UPDATE chat_rooms
		SET status = 'archived'
		WHERE status = 'active' AND COALESCE(last_message_at, created_at) < $1
	`

	tag, err := r.db.Exec(ctx, query, idleSince)
	if err != nil {
		r.log.Error("Failed to archive idle rooms", "error", err)
		return 0, fmt.Errorf("archive rooms: %w", err)
	}

	return tag.RowsAffected(), nil
}
