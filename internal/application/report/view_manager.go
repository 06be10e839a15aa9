package report

import (
	"context"
	"sync"
	"time"

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/domain/shared"
	"github.com/facultymis/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Defaults applied when the views config leaves a bound unset
const (
	DefaultViewIdleTTL       = 30 * time.Minute
	DefaultViewSweepInterval = time.Minute
	DefaultMaxViews          = 1000
)

// ViewManager holds the open views of every caller. Views idle longer than the
// configured TTL are closed by a janitor; opening past MaxViews evicts the least
// recently used view.
type ViewManager struct {
	cfg  config.ViewsConfig
	deps ViewDeps

	mu    sync.Mutex
	views map[string]*View

	runMu     sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewViewManager creates a manager whose views share deps
func NewViewManager(cfg config.ViewsConfig, deps ViewDeps) *ViewManager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultViewIdleTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultViewSweepInterval
	}
	if cfg.MaxViews <= 0 {
		cfg.MaxViews = DefaultMaxViews
	}
	deps = deps.withDefaults()
	deps.Logger = deps.Logger.Named("views")
	return &ViewManager{cfg: cfg, deps: deps, views: make(map[string]*View)}
}

// Open creates and registers an idle view for caller
func (m *ViewManager) Open(ctx context.Context, caller report.Caller) *View {
	v := NewView(uuid.NewString(), caller, m.deps)

	m.mu.Lock()
	evicted := 0
	for len(m.views) >= m.cfg.MaxViews {
		if !m.evictOldestLocked() {
			break
		}
		evicted++
	}
	m.views[v.ID()] = v
	m.mu.Unlock()

	if evicted > 0 {
		m.deps.Metrics.ViewsClosed(ctx, evicted)
		m.deps.Logger.Info("Evicted least recently used views", zap.Int("count", evicted))
	}
	m.deps.Metrics.ViewOpened(ctx)
	m.deps.Logger.Debug("View opened", zap.String("view_id", v.ID()), zap.String("user_id", caller.UserID))
	return v
}

func (m *ViewManager) evictOldestLocked() bool {
	var oldestID string
	var oldest time.Time
	for id, v := range m.views {
		used := v.LastUsed()
		if oldestID == "" || used.Before(oldest) {
			oldestID, oldest = id, used
		}
	}
	if oldestID == "" {
		return false
	}
	delete(m.views, oldestID)
	return true
}

// Get returns the view id of caller. A view owned by another user is reported as not found.
func (m *ViewManager) Get(caller report.Caller, id string) (*View, error) {
	m.mu.Lock()
	v, ok := m.views[id]
	m.mu.Unlock()
	if !ok || v.Caller().UserID != caller.UserID {
		return nil, shared.ErrNotFound.WithMessage("view not found")
	}
	return v, nil
}

// Close removes the view id of caller
func (m *ViewManager) Close(ctx context.Context, caller report.Caller, id string) error {
	m.mu.Lock()
	v, ok := m.views[id]
	if !ok || v.Caller().UserID != caller.UserID {
		m.mu.Unlock()
		return shared.ErrNotFound.WithMessage("view not found")
	}
	delete(m.views, id)
	m.mu.Unlock()

	m.deps.Metrics.ViewsClosed(ctx, 1)
	return nil
}

// Len returns the number of open views
func (m *ViewManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.views)
}

// Sweep closes views idle for longer than the TTL at now and returns how many it closed
func (m *ViewManager) Sweep(ctx context.Context, now time.Time) int {
	cutoff := now.Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	closed := 0
	for id, v := range m.views {
		if v.LastUsed().Before(cutoff) {
			delete(m.views, id)
			closed++
		}
	}
	m.mu.Unlock()

	if closed > 0 {
		m.deps.Metrics.ViewsClosed(ctx, closed)
		m.deps.Logger.Info("Closed idle views", zap.Int("count", closed), zap.Duration("idle_ttl", m.cfg.IdleTTL))
	}
	return closed
}

// Start runs the idle-view janitor until Stop is called or ctx ends
func (m *ViewManager) Start(ctx context.Context) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.isRunning {
		return
	}
	m.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	go m.sweepLoop(ctx)

	m.deps.Logger.Info("View janitor started",
		zap.Duration("idle_ttl", m.cfg.IdleTTL),
		zap.Duration("sweep_interval", m.cfg.SweepInterval),
		zap.Int("max_views", m.cfg.MaxViews),
	)
}

// Stop halts the janitor and waits for it to exit
func (m *ViewManager) Stop(ctx context.Context) error {
	m.runMu.Lock()
	if !m.isRunning {
		m.runMu.Unlock()
		return nil
	}
	m.isRunning = false
	cancel := m.cancel
	m.runMu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.deps.Logger.Info("View janitor stopped")
		return nil
	case <-ctx.Done():
		m.deps.Logger.Warn("View janitor stop timed out")
		return ctx.Err()
	}
}

func (m *ViewManager) sweepLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx, m.deps.Now())
		}
	}
}
