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

// ChatRepository persists chat messages. Read paths never return
// soft-deleted rows except GetMessageByID, which callers use to decide
// between "not found" and "already deleted".
type ChatRepository interface {
	CreateMessage(ctx context.Context, message *domain.Message) error
	GetMessageByID(ctx context.Context, messageID int64) (*domain.Message, error)
	GetMessages(ctx context.Context, room *domain.Room, limit, offset int) ([]*domain.Message, error)
	CountMessages(ctx context.Context, room *domain.Room) (int, error)
	UpdateContent(ctx context.Context, messageID int64, content string) error
	SoftDelete(ctx context.Context, messageID int64) error
	MarkRead(ctx context.Context, messageID int64, at time.Time) error
	MarkRoomRead(ctx context.Context, room *domain.Room, readerID string, at time.Time) (int64, error)
}

type chatRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewChatRepository(db *pgxpool.Pool, log logger.Logger) ChatRepository {
	return &chatRepository{db: db, log: log}
}

const messageColumns = `id, listing_id, sender_id, receiver_id, content, timestamp, edited, deleted,
		       message_type, message_metadata, read_at, reply_to_id`

func scanMessage(row scanner) (*domain.Message, error) {
	message := &domain.Message{}
	err := row.Scan(
		&message.ID, &message.ListingID, &message.SenderID, &message.ReceiverID, &message.Content,
		&message.Timestamp, &message.Edited, &message.Deleted, &message.MessageType,
		&message.Metadata, &message.ReadAt, &message.ReplyToID,
	)
	if err != nil {
		return nil, err
	}
	return message, nil
}

// CreateMessage inserts the message and bumps the owning room's
// last_message_at in one transaction.
func (r *chatRepository) CreateMessage(ctx context.Context, message *domain.Message) error {
	insert := `
		INSERT INTO chat_messages (listing_id, sender_id, receiver_id, content, timestamp,
		                           message_type, message_metadata, reply_to_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, timestamp
	`
	touch := `
		UPDATE chat_rooms
		SET last_message_at = $4
		WHERE listing_id = $1 AND participant1_id = $2 AND participant2_id = $3
	`

	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	if message.MessageType == "" {
		message.MessageType = domain.MessageTypeText
	}
	low, high := domain.OrderParticipants(message.SenderID, message.ReceiverID)

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insert,
			message.ListingID, message.SenderID, message.ReceiverID, message.Content,
			message.Timestamp, message.MessageType, message.Metadata, message.ReplyToID,
		).Scan(&message.ID, &message.Timestamp)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, touch, message.ListingID, low, high, message.Timestamp)
		return err
	})
	if err != nil {
		r.log.Error("Failed to create message", "error", err, "listing_id", message.ListingID)
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

func (r *chatRepository) GetMessageByID(ctx context.Context, messageID int64) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM chat_messages WHERE id = $1`

	message, err := scanMessage(r.db.QueryRow(ctx, query, messageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		r.log.Error("Failed to get message", "error", err, "message_id", messageID)
		return nil, fmt.Errorf("get message: %w", err)
	}

	return message, nil
}

// GetMessages returns one page of visible messages, newest first.
func (r *chatRepository) GetMessages(ctx context.Context, room *domain.Room, limit, offset int) ([]*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM chat_messages
		WHERE listing_id = $1
		  AND ((sender_id = $2 AND receiver_id = $3) OR (sender_id = $3 AND receiver_id = $2))
		  AND deleted = FALSE
		ORDER BY timestamp DESC, id DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := r.db.Query(ctx, query, room.ListingID, room.Participant1ID, room.Participant2ID, limit, offset)
	if err != nil {
		r.log.Error("Failed to get messages", "error", err)
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0, limit)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

func (r *chatRepository) CountMessages(ctx context.Context, room *domain.Room) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM chat_messages
		WHERE listing_id = $1
		  AND ((sender_id = $2 AND receiver_id = $3) OR (sender_id = $3 AND receiver_id = $2))
		  AND deleted = FALSE
	`

	var total int
	if err := r.db.QueryRow(ctx, query, room.ListingID, room.Participant1ID, room.Participant2ID).Scan(&total); err != nil {
		r.log.Error("Failed to count messages", "error", err)
		return 0, fmt.Errorf("count messages: %w", err)
	}

	return total, nil
}

func (r *chatRepository) UpdateContent(ctx context.Context, messageID int64, content string) error {
	query := `
		UPDATE chat_messages
		SET content = $2, edited = TRUE
		WHERE id = $1 AND deleted = FALSE
	`

	tag, err := r.db.Exec(ctx, query, messageID, content)
	if err != nil {
		r.log.Error("Failed to update message", "error", err, "message_id", messageID)
		return fmt.Errorf("update message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}

	return nil
}

func (r *chatRepository) SoftDelete(ctx context.Context, messageID int64) error {
	query := `
		UPDATE chat_messages
		SET deleted = TRUE
		WHERE id = $1 AND deleted = FALSE
	`

	tag, err := r.db.Exec(ctx, query, messageID)
	if err != nil {
		r.log.Error("Failed to delete message", "error", err, "message_id", messageID)
		return fmt.Errorf("delete message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}

	return nil
}

// MarkRead stamps read_at once; later receipts leave the first value.
func (r *chatRepository) MarkRead(ctx context.Context, messageID int64, at time.Time) error {
	query := `
		UPDATE chat_messages
		SET read_at = COALESCE(read_at, $2)
		WHERE id = $1
	`

	if _, err := r.db.Exec(ctx, query, messageID, at); err != nil {
		r.log.Error("Failed to mark message read", "error", err, "message_id", messageID)
		return fmt.Errorf("mark read: %w", err)
	}

	return nil
}

// MarkRoomRead marks every unread message addressed to readerID inside the
// room as read and returns how many rows changed.
func (r *chatRepository) MarkRoomRead(ctx context.Context, room *domain.Room, readerID string, at time.Time) (int64, error) {
	query := `
		UPDATE chat_messages
		SET read_at = $4
		WHERE listing_id = $1 AND receiver_id = $2 AND sender_id = $3
		  AND read_at IS NULL AND deleted = FALSE
	`

	tag, err := r.db.Exec(ctx, query, room.ListingID, readerID, room.Peer(readerID), at)
	if err != nil {
		r.log.Error("Failed to mark room read", "error", err, "room_id", room.ID)
		return 0, fmt.Errorf("mark room read: %w", err)
	}

	return tag.RowsAffected(), nil
}
