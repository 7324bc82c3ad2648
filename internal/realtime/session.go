package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"campus_exchange/internal/config"
	"campus_exchange/internal/domain"
	"campus_exchange/internal/metrics"
	"campus_exchange/internal/service"
	apperrors "campus_exchange/pkg/errors"
	"campus_exchange/pkg/logger"
)

const rateLimitedMessage = "Rate limit exceeded."

// Session runs the frame loop of one admitted connection. Frames are
// handled one at a time, each fully persisted before its broadcast.
type Session struct {
	client   *Client
	room     *domain.Room
	key      string
	chat     service.ChatService
	registry *Registry
	limiter  *rate.Limiter
	cfg      config.ChatConfig
	log      logger.Logger
}

func NewSession(client *Client, room *domain.Room, chat service.ChatService, registry *Registry, cfg config.ChatConfig, log logger.Logger) *Session {
	limit := rate.Inf
	if cfg.FramesPerSecond > 0 {
		limit = rate.Limit(cfg.FramesPerSecond)
	}

	return &Session{
		client:   client,
		room:     room,
		key:      KeyForRoom(room),
		chat:     chat,
		registry: registry,
		limiter:  rate.NewLimiter(limit, cfg.FrameBurst),
		cfg:      cfg,
		log:      log.With("client_id", client.ID, "user_id", client.UserID, "room_id", room.ID),
	}
}

func (s *Session) Key() string {
	return s.key
}

// Run admits the client, starts its write pump and reads frames until the
// connection ends. The client is always removed from the registry before
// Run returns.
func (s *Session) Run(ctx context.Context) {
	conn := s.client.conn
	s.registry.Admit(s.key, s.client)
	s.log.Info("Chat session opened")

	closeCode, closeReason := websocket.CloseNormalClosure, ""
	closeConn := func() { s.client.Close(closeCode, closeReason) }
	defer func() {
		s.registry.Remove(s.key, s.client)
		closeConn()
		s.log.Info("Chat session closed", "code", closeCode)
	}()

	go s.client.writePump(func() {
		s.registry.Remove(s.key, s.client)
		s.client.Close(websocket.CloseAbnormalClosure, "")
	})

	conn.SetReadLimit(s.cfg.MaxFrameBytes)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				// The reader has already sent 1009; the rest of the frame
				// is still unread.
				closeCode = websocket.CloseMessageTooBig
				closeConn = s.client.drainAndClose
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("Chat connection closed unexpectedly", "error", err)
			}
			return
		}

		if !s.limiter.Allow() {
			metrics.RateLimitHits.WithLabelValues("ws").Inc()
			if err := s.registry.Send(s.client, errorEvent{Error: rateLimitedMessage}); err != nil {
				return
			}
			continue
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			metrics.FramesTotal.WithLabelValues("invalid", "dropped").Inc()
			if err := s.registry.Send(s.client, errorEvent{Error: errInvalidPayload.Error()}); err != nil {
				return
			}
			continue
		}

		if err := s.dispatch(ctx, frame); err != nil {
			if apperrors.IsClientError(err) {
				metrics.FramesTotal.WithLabelValues(frame.Op(), "dropped").Inc()
				s.log.Debug("Chat frame dropped", "op", frame.Op(), "error", err)
				continue
			}
			metrics.FramesTotal.WithLabelValues(frame.Op(), "error").Inc()
			s.log.Error("Chat frame failed, closing session", "op", frame.Op(), "error", err)
			closeCode, closeReason = websocket.CloseInternalServerErr, "internal error"
			closeConn = func() { s.client.closeAndDrain(closeCode, closeReason) }
			return
		}
		metrics.FramesTotal.WithLabelValues(frame.Op(), "ok").Inc()
	}
}

// dispatch runs Handle and turns a panic into an error so one bad frame
// cannot take down the process.
func (s *Session) dispatch(ctx context.Context, frame Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic handling %s frame: %v", frame.Op(), r)
		}
	}()
	return s.Handle(ctx, frame)
}

// Handle applies one frame. Client errors mean the frame was rejected
// without mutation or broadcast; any other error is a fault.
func (s *Session) Handle(ctx context.Context, frame Frame) error {
	userID := s.client.UserID

	switch f := frame.(type) {
	case TypingFrame:
		if !f.Typing {
			return nil
		}
		return s.broadcast(typingEvent{Typing: true, User: userID}, s.client)

	case ReceiptFrame:
		if err := s.chat.MarkDelivered(ctx, s.room, userID, f.MessageID); err != nil {
			return err
		}
		return s.broadcast(receiptEvent{DeliveryReceipt: f.MessageID, User: userID}, s.client)

	case EditFrame:
		message, err := s.chat.EditMessage(ctx, s.room, userID, f.MessageID, f.NewContent)
		if err != nil {
			return err
		}
		return s.broadcast(editEvent{EditMessage: message}, nil)

	case DeleteFrame:
		if err := s.chat.DeleteMessage(ctx, s.room, userID, f.MessageID); err != nil {
			return err
		}
		return s.broadcast(deleteEvent{DeleteMessage: f.MessageID}, nil)

	case SendFrame:
		message, err := s.chat.SendMessage(ctx, s.room, userID, f.Content, f.ReplyTo)
		if err != nil {
			return err
		}
		return s.broadcast(message, nil)
	}

	return fmt.Errorf("%w: unhandled frame %T", apperrors.ErrBadRequest, frame)
}

func (s *Session) broadcast(payload interface{}, exclude *Client) error {
	_, err := s.registry.Broadcast(s.key, payload, exclude)
	return err
}
