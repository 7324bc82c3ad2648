package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"campus_exchange/internal/config"
	"campus_exchange/internal/domain"
	"campus_exchange/internal/metrics"
	"campus_exchange/internal/middleware"
	"campus_exchange/internal/realtime"
	"campus_exchange/internal/service"
	"campus_exchange/pkg/logger"
)

// maxCloseReason is the longest reason a close frame can carry.
const maxCloseReason = 123

type WebSocketHandler struct {
	guard    service.GuardService
	chat     service.ChatService
	registry *realtime.Registry
	upgrader websocket.Upgrader
	cfg      config.ChatConfig
	log      logger.Logger
}

func NewWebSocketHandler(guard service.GuardService, chat service.ChatService, registry *realtime.Registry, cfg config.ChatConfig, allowedOrigins []string, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		guard:    guard,
		chat:     chat,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		cfg: cfg,
		log: log,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// HandleChat serves GET /ws/chat/:listingId/:peerId. The connection is
// upgraded first; a failed access check then closes it with a policy
// violation before any room or registry state is touched. Browser clients
// only see a close code and reason, never the status of a refused upgrade,
// so the guard runs on the upgraded connection.
func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	listingID, ok := parseIDParam(c, "listingId", "listing ID")
	if !ok {
		return
	}
	peerID := c.Param("peerId")
	token := middleware.BearerToken(c.Request, true)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Failed to upgrade connection", "error", err)
		return
	}

	ctx := c.Request.Context()
	admission, err := h.guard.Admit(ctx, token, listingID, peerID)
	if err != nil {
		var rejection *service.Rejection
		if errors.As(err, &rejection) {
			metrics.GuardRejections.WithLabelValues(rejection.Reason).Inc()
			h.log.Info("Chat connection rejected", "reason", rejection.Reason, "listing_id", listingID)
			h.closeConn(conn, websocket.ClosePolicyViolation, rejection.Error())
			return
		}
		h.log.Error("Access check failed", "error", err, "listing_id", listingID)
		h.closeConn(conn, websocket.CloseInternalServerErr, "internal error")
		return
	}

	var room *domain.Room
	room, err = h.chat.OpenRoom(ctx, listingID, admission.User.ID, peerID)
	if err != nil {
		h.log.Error("Failed to open chat room", "error", err, "listing_id", listingID)
		h.closeConn(conn, websocket.CloseInternalServerErr, "internal error")
		return
	}

	client := realtime.NewClient(conn, admission.User.ID, h.cfg)
	realtime.NewSession(client, room, h.chat, h.registry, h.cfg, h.log).Run(ctx)
}

func (h *WebSocketHandler) closeConn(conn *websocket.Conn, code int, reason string) {
	if len(reason) > maxCloseReason {
		reason = reason[:maxCloseReason]
	}
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.cfg.WriteWait))
	_ = conn.Close()
}
