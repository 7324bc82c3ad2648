package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_exchange/internal/service"
	"campus_exchange/pkg/logger"
)

type BlockHandler struct {
	blockService service.BlockService
	log          logger.Logger
}

func NewBlockHandler(blockService service.BlockService, log logger.Logger) *BlockHandler {
	return &BlockHandler{
		blockService: blockService,
		log:          log,
	}
}

type BlockUserRequest struct {
	Reason string `json:"reason"`
}

func (h *BlockHandler) BlockUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req BlockUserRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	block, err := h.blockService.Block(c.Request.Context(), userID, c.Param("userId"), req.Reason)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User blocked successfully",
		"block":   block,
	})
}

func (h *BlockHandler) UnblockUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.blockService.Unblock(c.Request.Context(), userID, c.Param("userId")); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unblocked successfully"})
}

func (h *BlockHandler) ListBlocked(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	blocked, err := h.blockService.ListBlocked(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, blocked)
}
