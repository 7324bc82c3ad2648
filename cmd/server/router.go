package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campus_exchange/internal/config"
	"campus_exchange/internal/handler"
	"campus_exchange/internal/middleware"
	"campus_exchange/pkg/logger"
)

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler(log))

	router.GET("/health", handlers.Health.Check)
	router.GET("/ready", handlers.Health.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static(cfg.Uploads.PublicBaseURL, cfg.Uploads.Dir)

	v1 := router.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(authMiddleware.RequireAuth(), rateLimitMiddleware.Limit())
	{
		users := protected.Group("/users")
		{
			users.GET("/me", handlers.User.GetMe)
		}

		chat := protected.Group("/chat")
		{
			chat.GET("/rooms", handlers.Chat.ListRooms)
			chat.GET("/rooms/:roomId/messages", handlers.Chat.GetMessages)
			chat.POST("/rooms/:roomId/read", handlers.Chat.MarkRead)
			chat.POST("/rooms/:roomId/messages/file", handlers.Chat.UploadFile)

			chat.POST("/messages/:messageId/reactions", handlers.Reaction.Toggle)
			chat.GET("/messages/:messageId/reactions", handlers.Reaction.List)

			chat.POST("/block/:userId", handlers.Block.BlockUser)
			chat.DELETE("/block/:userId", handlers.Block.UnblockUser)
			chat.GET("/blocked", handlers.Block.ListBlocked)

			chat.GET("/stats", handlers.Stats.GetChatStats)
		}
	}

	// Authenticated by the access guard inside the handler, not by middleware,
	// so that failures close the socket with a policy violation.
	router.GET("/ws/chat/:listingId/:peerId", handlers.WebSocket.HandleChat)

	return router
}

func withCORS(h http.Handler, allowedOrigins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	})(h)
}
