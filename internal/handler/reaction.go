package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_exchange/internal/service"
	"campus_exchange/pkg/logger"
)

type ReactionHandler struct {
	reactionService service.ReactionService
	log             logger.Logger
}

func NewReactionHandler(reactionService service.ReactionService, log logger.Logger) *ReactionHandler {
	return &ReactionHandler{
		reactionService: reactionService,
		log:             log,
	}
}

type ToggleReactionRequest struct {
	Reaction string `json:"reaction"`
}

func (h *ReactionHandler) Toggle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	messageID, ok := parseIDParam(c, "messageId", "message ID")
	if !ok {
		return
	}

	req := ToggleReactionRequest{Reaction: c.Query("reaction")}
	if req.Reaction == "" {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reaction is required"})
			return
		}
	}

	active, err := h.reactionService.Toggle(c.Request.Context(), messageID, userID, req.Reaction)
	if err != nil {
		_ = c.Error(err)
		return
	}

	message := "Reaction removed"
	if active {
		message = "Reaction added"
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "active": active})
}

func (h *ReactionHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	messageID, ok := parseIDParam(c, "messageId", "message ID")
	if !ok {
		return
	}

	groups, err := h.reactionService.List(c.Request.Context(), messageID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, groups)
}
