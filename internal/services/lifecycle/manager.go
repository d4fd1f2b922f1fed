package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// CloseFunc releases one component of the service (the HTTP listener,
// the session sweeper, the monitor, a data store).
type CloseFunc func(ctx context.Context) error

type component struct {
	name  string
	close CloseFunc
}

// Manager owns the teardown order. Components register as they come up
// in main and are closed in reverse: the listener stops accepting
// before the stores it writes to go away.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu         sync.Mutex
	components []component
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Register adds a component to the teardown list.
func (m *Manager) Register(name string, fn CloseFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, close: fn})
}

// Shutdown closes every registered component, newest first, within the
// configured timeout. A failing component does not stop the rest from
// closing; all failures are reported together.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	var failures error
	for i := len(m.components) - 1; i >= 0; i-- {
		c := m.components[i]
		started := time.Now()
		if err := c.close(ctx); err != nil {
			m.logger.Error("component failed to close",
				zap.String("component", c.name),
				zap.Error(err))
			failures = errors.Join(failures, err)
			continue
		}
		m.logger.Info("component closed",
			zap.String("component", c.name),
			zap.Duration("took", time.Since(started)))
	}
	return failures
}

// Listen invokes cancel once SIGTERM or SIGINT arrives. Non-blocking.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(signals)
		received := <-signals
		m.logger.Info("shutting down", zap.String("signal", received.String()))
		cancel()
	}()
}
