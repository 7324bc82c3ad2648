package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus_exchange/internal/config"
	"campus_exchange/internal/realtime"
	"campus_exchange/internal/service"
	apperrors "campus_exchange/pkg/errors"
	"campus_exchange/pkg/logger"
)

// multipartOverhead is the slack allowed on top of the upload limit for
// form boundaries and the caption field.
const multipartOverhead = 1 << 20

type ChatHandler struct {
	chatService service.ChatService
	storage     service.StorageService
	registry    *realtime.Registry
	uploads     config.UploadConfig
	log         logger.Logger
}

func NewChatHandler(chatService service.ChatService, storage service.StorageService, registry *realtime.Registry, uploads config.UploadConfig, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		storage:     storage,
		registry:    registry,
		uploads:     uploads,
		log:         log,
	}
}

func (h *ChatHandler) ListRooms(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	rooms, err := h.chatService.ListRooms(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// GetMessages returns one page of history. The fetch itself never changes
// read state; mark_read=true runs the explicit mark-read step afterwards.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := parseIDParam(c, "roomId", "room ID")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	history, err := h.chatService.GetHistory(c.Request.Context(), roomID, userID, page, pageSize)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if markRead, _ := strconv.ParseBool(c.Query("mark_read")); markRead {
		if _, err := h.chatService.MarkRoomRead(c.Request.Context(), roomID, userID); err != nil {
			_ = c.Error(err)
			return
		}
	}

	c.JSON(http.StatusOK, history)
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := parseIDParam(c, "roomId", "room ID")
	if !ok {
		return
	}

	marked, err := h.chatService.MarkRoomRead(c.Request.Context(), roomID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// UploadFile stores a shared file, records it as a message and then fans
// it out to the room's live connections.
func (h *ChatHandler) UploadFile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := parseIDParam(c, "roomId", "room ID")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	room, err := h.chatService.GetRoom(ctx, roomID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploads.MaxBytes+multipartOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(apperrors.ErrFileTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	stored, err := h.storage.Save(ctx, header)
	if err != nil {
		_ = c.Error(err)
		return
	}

	message, err := h.chatService.ShareFile(ctx, room, userID, stored, c.PostForm("caption"))
	if err != nil {
		if rmErr := h.storage.Remove(ctx, stored); rmErr != nil {
			h.log.Warn("Failed to remove orphaned upload", "error", rmErr, "url", stored.URL)
		}
		_ = c.Error(err)
		return
	}

	if _, err := h.registry.Broadcast(realtime.KeyForRoom(room), message, nil); err != nil {
		h.log.Warn("Failed to broadcast shared file", "error", err, "message_id", message.ID)
	}

	c.JSON(http.StatusCreated, message)
}
