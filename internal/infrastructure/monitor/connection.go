package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Probe checks a backing service. Both checks are injected: the
// Postgres probe pings the pool, the session store probe differs per
// deployment mode (Redis ping vs. bolt bucket stat).
type Probe func(ctx context.Context) error

// Monitor periodically checks Postgres and the session store and caches
// the result for the health endpoint.
type Monitor struct {
	pgProbe      Probe
	sessionProbe Probe

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(pgProbe, sessionProbe Probe, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pgProbe:      pgProbe,
		sessionProbe: sessionProbe,
		interval:     interval,
		stopCh:       make(chan struct{}),
		logger:       logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

// IsOnline reports whether every dependency passed its last check.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.PostgreSQL && m.status.SessionStore
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh runs both probes immediately and caches the result. Called on
// every tick of the loop; callers can also invoke it to prime the
// status before the first tick.
func (m *Monitor) Refresh() {
	status := Status{
		PostgreSQL:   m.runProbe("postgresql", m.pgProbe, 3*time.Second),
		SessionStore: m.runProbe("session_store", m.sessionProbe, 2*time.Second),
		LastCheck:    time.Now(),
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) runProbe(name string, probe Probe, timeout time.Duration) bool {
	if probe == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := probe(ctx); err != nil {
		m.logger.Warn("dependency check failed", zap.String("dependency", name), zap.Error(err))
		return false
	}
	return true
}
