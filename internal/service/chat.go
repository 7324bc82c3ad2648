package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"campus_exchange/internal/config"
	"campus_exchange/internal/domain"
	"campus_exchange/internal/repository"
	apperrors "campus_exchange/pkg/errors"
	"campus_exchange/pkg/logger"
)

const defaultPageSize = 50

// HistoryPage is one page of a room's visible messages, oldest first.
type HistoryPage struct {
	Messages []*domain.Message `json:"messages"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Total    int               `json:"total"`
}

// ChatService implements the room and message operations shared by the
// WebSocket session loop and the REST handlers. Every mutating call returns
// only after the store has committed.
type ChatService interface {
	OpenRoom(ctx context.Context, listingID int64, userID, peerID string) (*domain.Room, error)
	ListRooms(ctx context.Context, userID string) ([]*domain.Room, error)
	GetRoom(ctx context.Context, roomID int64, userID string) (*domain.Room, error)
	GetHistory(ctx context.Context, roomID int64, userID string, page, pageSize int) (*HistoryPage, error)
	MarkRoomRead(ctx context.Context, roomID int64, userID string) (int64, error)

	SendMessage(ctx context.Context, room *domain.Room, senderID, content string, replyToID *int64) (*domain.Message, error)
	EditMessage(ctx context.Context, room *domain.Room, userID string, messageID int64, newContent string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, room *domain.Room, userID string, messageID int64) error
	MarkDelivered(ctx context.Context, room *domain.Room, userID string, messageID int64) error
	ShareFile(ctx context.Context, room *domain.Room, senderID string, file *StoredFile, caption string) (*domain.Message, error)
}

type chatService struct {
	chatRepo repository.ChatRepository
	roomRepo repository.RoomRepository
	audit    AuditService
	cfg      config.ChatConfig
	log      logger.Logger
}

func NewChatService(chatRepo repository.ChatRepository, roomRepo repository.RoomRepository, audit AuditService, cfg config.ChatConfig, log logger.Logger) ChatService {
	return &chatService{
		chatRepo: chatRepo,
		roomRepo: roomRepo,
		audit:    audit,
		cfg:      cfg,
		log:      log,
	}
}

// OpenRoom returns the room for the unordered pair on listingID, creating
// it on first contact. A room that is not active is reactivated.
func (s *chatService) OpenRoom(ctx context.Context, listingID int64, userID, peerID string) (*domain.Room, error) {
	room := domain.NewRoom(listingID, userID, peerID)
	created, err := s.roomRepo.GetOrCreate(ctx, room)
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("Chat room created", "room_id", room.ID, "listing_id", listingID)
		return room, nil
	}

	if room.Status != domain.RoomStatusActive {
		if err := s.roomRepo.UpdateStatus(ctx, room.ID, domain.RoomStatusActive); err != nil {
			return nil, err
		}
		s.log.Info("Chat room reactivated", "room_id", room.ID, "previous_status", room.Status)
		room.Status = domain.RoomStatusActive
	}

	return room, nil
}

func (s *chatService) ListRooms(ctx context.Context, userID string) ([]*domain.Room, error) {
	return s.roomRepo.ListByParticipant(ctx, userID)
}

func (s *chatService) GetRoom(ctx context.Context, roomID int64, userID string) (*domain.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, apperrors.ErrNotParticipant
	}
	return room, nil
}

// GetHistory is read-only; MarkRoomRead is the separate read-state step.
func (s *chatService) GetHistory(ctx context.Context, roomID int64, userID string, page, pageSize int) (*HistoryPage, error) {
	room, err := s.GetRoom(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if s.cfg.MaxPageSize > 0 && pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}

	total, err := s.chatRepo.CountMessages(ctx, room)
	if err != nil {
		return nil, err
	}

	messages, err := s.chatRepo.GetMessages(ctx, room, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	// Stored newest first; pages read oldest first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return &HistoryPage{
		Messages: messages,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

func (s *chatService) MarkRoomRead(ctx context.Context, roomID int64, userID string) (int64, error) {
	room, err := s.GetRoom(ctx, roomID, userID)
	if err != nil {
		return 0, err
	}
	return s.chatRepo.MarkRoomRead(ctx, room, userID, time.Now().UTC())
}

// roomMessage loads a message and checks that it belongs to room and is
// still visible.
func (s *chatService) roomMessage(ctx context.Context, room *domain.Room, messageID int64) (*domain.Message, error) {
	message, err := s.chatRepo.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if !room.Contains(message) || !message.IsVisible() {
		return nil, apperrors.ErrMessageNotFound
	}
	return message, nil
}

func (s *chatService) SendMessage(ctx context.Context, room *domain.Room, senderID, content string, replyToID *int64) (*domain.Message, error) {
	content = domain.SanitizeContent(content)
	if content == "" {
		return nil, apperrors.ErrEmptyContent
	}
	if !room.HasParticipant(senderID) {
		return nil, apperrors.ErrNotParticipant
	}

	if replyToID != nil {
		if _, err := s.roomMessage(ctx, room, *replyToID); err != nil {
			return nil, err
		}
	}

	message := &domain.Message{
		ListingID:   room.ListingID,
		SenderID:    senderID,
		ReceiverID:  room.Peer(senderID),
		Content:     content,
		Timestamp:   time.Now().UTC(),
		MessageType: domain.MessageTypeText,
		ReplyToID:   replyToID,
	}
	if err := s.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

func (s *chatService) EditMessage(ctx context.Context, room *domain.Room, userID string, messageID int64, newContent string) (*domain.Message, error) {
	newContent = domain.SanitizeContent(newContent)
	if newContent == "" {
		return nil, apperrors.ErrEmptyContent
	}

	message, err := s.roomMessage(ctx, room, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != userID {
		return nil, apperrors.ErrNotSender
	}

	if err := s.chatRepo.UpdateContent(ctx, messageID, newContent); err != nil {
		return nil, err
	}

	message.Content = newContent
	message.Edited = true

	return message, nil
}

func (s *chatService) DeleteMessage(ctx context.Context, room *domain.Room, userID string, messageID int64) error {
	message, err := s.roomMessage(ctx, room, messageID)
	if err != nil {
		return err
	}
	if message.SenderID != userID {
		return apperrors.ErrNotSender
	}

	if err := s.chatRepo.SoftDelete(ctx, messageID); err != nil {
		return err
	}

	recordAudit(ctx, s.audit, s.log, userID, &room.ID, domain.EventTypeMessageDeleted, map[string]interface{}{
		"message_id": messageID,
		"listing_id": room.ListingID,
	})

	return nil
}

func (s *chatService) MarkDelivered(ctx context.Context, room *domain.Room, userID string, messageID int64) error {
	message, err := s.roomMessage(ctx, room, messageID)
	if err != nil {
		return err
	}
	if message.ReceiverID != userID {
		return apperrors.ErrForbidden
	}

	return s.chatRepo.MarkRead(ctx, messageID, time.Now().UTC())
}

func (s *chatService) ShareFile(ctx context.Context, room *domain.Room, senderID string, file *StoredFile, caption string) (*domain.Message, error) {
	if !room.HasParticipant(senderID) {
		return nil, apperrors.ErrNotParticipant
	}

	messageType := file.MessageType()
	content := domain.SanitizeContent(caption)
	if content == "" {
		content = fmt.Sprintf("Shared a %s (%s)", messageType, humanize.Bytes(uint64(file.Size)))
	}

	message := &domain.Message{
		ListingID:   room.ListingID,
		SenderID:    senderID,
		ReceiverID:  room.Peer(senderID),
		Content:     content,
		Timestamp:   time.Now().UTC(),
		MessageType: messageType,
		Metadata: map[string]interface{}{
			"file_url":     file.URL,
			"file_name":    file.Name,
			"file_size":    file.Size,
			"content_type": file.ContentType,
		},
	}
	if err := s.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}
