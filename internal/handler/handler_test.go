package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"campus_exchange/internal/config"
	"campus_exchange/internal/middleware"
	"campus_exchange/internal/realtime"
	"campus_exchange/internal/repository/repotest"
	"campus_exchange/internal/service"
	"campus_exchange/pkg/jwt"
	"campus_exchange/pkg/logger"
)

const testSecret = "handler-secret"

type testEnv struct {
	cfg      *config.Config
	store    *repotest.Store
	services *service.Services
	registry *realtime.Registry
	router   *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestEnv seeds owner (listing 1), buyer and stranger and mounts the
// same routes as the server.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Nop()

	cfg := &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{AllowedOrigins: []string{"*"}},
		JWT:         config.JWTConfig{AccessSecret: testSecret, Issuer: "campus-exchange"},
		Chat: config.ChatConfig{
			MaxFrameBytes: 4096,
			SendBuffer:    16,
			WriteWait:     time.Second,
			PongWait:      10 * time.Second,
			PingPeriod:    9 * time.Second,
			MaxPageSize:   100,
		},
		Uploads:   config.UploadConfig{Dir: t.TempDir(), MaxBytes: 1024, PublicBaseURL: "/uploads"},
		RateLimit: config.RateLimitConfig{Requests: 1000, Window: time.Minute},
	}

	store := repotest.NewStore()
	store.AddUser("owner", "owner@campus.edu")
	store.AddUser("buyer", "buyer@campus.edu")
	store.AddUser("stranger", "stranger@campus.edu")
	store.AddListing(1, "owner")

	registry := realtime.NewRegistry(log)
	services := service.NewServices(store.Repositories(), cfg, registry, log)
	handlers := NewHandlers(services, registry, cfg, log)

	auth := middleware.NewAuthMiddleware(services.Auth, log)
	limiter := middleware.NewRateLimitMiddleware(services.RateLimit, log)

	router := gin.New()
	router.Use(middleware.ErrorHandler(log))
	router.GET("/health", handlers.Health.Check)
	protected := router.Group("/api/v1")
	protected.Use(auth.RequireAuth(), limiter.Limit())
	{
		protected.GET("/users/me", handlers.User.GetMe)
		protected.GET("/chat/rooms", handlers.Chat.ListRooms)
		protected.GET("/chat/rooms/:roomId/messages", handlers.Chat.GetMessages)
		protected.POST("/chat/rooms/:roomId/read", handlers.Chat.MarkRead)
		protected.POST("/chat/rooms/:roomId/messages/file", handlers.Chat.UploadFile)
		protected.POST("/chat/messages/:messageId/reactions", handlers.Reaction.Toggle)
		protected.GET("/chat/messages/:messageId/reactions", handlers.Reaction.List)
		protected.POST("/chat/block/:userId", handlers.Block.BlockUser)
		protected.DELETE("/chat/block/:userId", handlers.Block.UnblockUser)
		protected.GET("/chat/blocked", handlers.Block.ListBlocked)
		protected.GET("/chat/stats", handlers.Stats.GetChatStats)
	}
	router.GET("/ws/chat/:listingId/:peerId", handlers.WebSocket.HandleChat)

	return &testEnv{cfg: cfg, store: store, services: services, registry: registry, router: router}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := jwt.GenerateAccessToken(userID, userID+"@campus.edu", testSecret, "campus-exchange", time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(t, userID))
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}
