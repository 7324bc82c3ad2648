package service

import (
	"context"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"campus_exchange/internal/config"
	"campus_exchange/internal/domain"
	"campus_exchange/internal/repository"
	"campus_exchange/pkg/logger"
)

// RoomArchiver periodically archives rooms with no recent activity.
type RoomArchiver struct {
	roomRepo repository.RoomRepository
	audit    AuditService
	cfg      config.ArchiveConfig
	log      logger.Logger

	mu      sync.Mutex
	running bool
	now     func() time.Time
}

func NewRoomArchiver(roomRepo repository.RoomRepository, audit AuditService, cfg config.ArchiveConfig, log logger.Logger) *RoomArchiver {
	return &RoomArchiver{
		roomRepo: roomRepo,
		audit:    audit,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Run blocks until ctx is done, archiving on every cron tick.
func (a *RoomArchiver) Run(ctx context.Context) {
	if !a.cfg.Enabled {
		return
	}
	a.log.Info("Room archiver started", "cron", a.cfg.Cron, "idle_after", a.cfg.IdleAfter.String())

	for {
		next, err := gronx.NextTickAfter(a.cfg.Cron, a.now(), false)
		if err != nil {
			a.log.Error("Room archiver schedule failed", "error", err, "cron", a.cfg.Cron)
			select {
			case <-time.After(30 * time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			if _, err := a.ArchiveOnce(ctx); err != nil {
				a.log.Error("Room archiver run failed", "error", err)
			}
		case <-ctx.Done():
			timer.Stop()
			a.log.Info("Room archiver stopped")
			return
		}
	}
}

// ArchiveOnce archives every active room idle for longer than IdleAfter.
// Overlapping calls return zero without touching the store.
func (a *RoomArchiver) ArchiveOnce(ctx context.Context) (int64, error) {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return 0, nil
	}
	a.running = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	cutoff := a.now().Add(-a.cfg.IdleAfter)
	archived, err := a.roomRepo.ArchiveIdle(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	a.log.Info("Idle rooms archived", "count", archived, "cutoff", cutoff)
	if archived > 0 && a.audit != nil {
		payload := map[string]interface{}{"count": archived, "cutoff": cutoff}
		if err := a.audit.LogEvent(ctx, nil, domain.ActorRoleSystem, nil, domain.EventTypeRoomsArchived, payload); err != nil {
			a.log.Warn("Failed to write audit entry", "error", err, "event_type", domain.EventTypeRoomsArchived)
		}
	}

	return archived, nil
}
