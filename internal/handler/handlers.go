package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus_exchange/internal/config"
	"campus_exchange/internal/middleware"
	"campus_exchange/internal/realtime"
	"campus_exchange/internal/service"
	"campus_exchange/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	User      *UserHandler
	Chat      *ChatHandler
	Block     *BlockHandler
	Reaction  *ReactionHandler
	Stats     *StatsHandler
	WebSocket *WebSocketHandler
}

func NewHandlers(services *service.Services, registry *realtime.Registry, cfg *config.Config, log logger.Logger, checks ...HealthCheck) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(checks...),
		User:      NewUserHandler(services.User, log),
		Chat:      NewChatHandler(services.Chat, services.Storage, registry, cfg.Uploads, log),
		Block:     NewBlockHandler(services.Block, log),
		Reaction:  NewReactionHandler(services.Reaction, log),
		Stats:     NewStatsHandler(services.Stats, log),
		WebSocket: NewWebSocketHandler(services.Guard, services.Chat, registry, cfg.Chat, cfg.Server.AllowedOrigins, log),
	}
}

// currentUser returns the authenticated caller, writing 401 when absent.
func currentUser(c *gin.Context) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return "", false
	}
	return userID, true
}

func parseIDParam(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + label})
		return 0, false
	}
	return id, true
}
