package sweeper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/internal/infrastructure/boltstore"
)

// Sweeper periodically removes expired sessions and their flash
// messages from the embedded store. Bolt has no key TTLs, so without
// the sweep the session bucket only shrinks when an expired session
// happens to be looked up again, and flash lists for dead sessions
// never shrink at all.
type Sweeper struct {
	store    *boltstore.Store
	logger   *zap.Logger
	cron     *cron.Cron
	interval time.Duration
}

func New(store *boltstore.Store, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Sweeper{
		store:    store,
		logger:   logger,
		interval: interval,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, func() {
		removed, err := s.Sweep(time.Now())
		if err != nil {
			s.logger.Error("session sweep failed", zap.Error(err))
			return
		}
		if removed > 0 {
			s.logger.Info("session sweep completed", zap.Int("removed", removed))
		}
	})

	return s
}

// Start launches the cron scheduler.
func (s *Sweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("session sweeper started", zap.Duration("interval", s.interval))
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *Sweeper) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("session sweeper stopped")
}

// Sweep removes expired or unreadable sessions, then flash lists whose
// session no longer exists. Returns the total number of keys removed.
func (s *Sweeper) Sweep(now time.Time) (int, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}

	live := make(map[string]struct{})
	removed, err := s.store.Prune(boltstore.BucketSessions, func(key string, value []byte) bool {
		var session domain.Session
		if err := json.Unmarshal(value, &session); err != nil {
			return true
		}
		if session.IsExpired(now) {
			return true
		}
		live[key] = struct{}{}
		return false
	})
	if err != nil {
		return removed, err
	}

	orphaned, err := s.store.Prune(boltstore.BucketFlash, func(key string, value []byte) bool {
		_, ok := live[key]
		return !ok
	})
	return removed + orphaned, err
}
