package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/saulet/grocery-compare/internal/cart/domain"
	catalogdomain "github.com/saulet/grocery-compare/internal/catalog/domain"
	"github.com/saulet/grocery-compare/pkg/logger"
	"github.com/saulet/grocery-compare/pkg/notify"
)

var (
	opsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_service_backend_operations_total",
			Help: "Backend operations by operation and backend",
		},
		[]string{"operation", "backend"},
	)
	opFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_service_operation_failures_total",
			Help: "Mutations that resolved to a failed outcome",
		},
		[]string{"operation"},
	)
	downgradeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_service_downgrades_total",
			Help: "Sessions downgraded from remote to local fallback",
		},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cart_service_active_sessions",
			Help: "Reconciler sessions currently held in memory",
		},
	)

	registerMetricsOnce sync.Once
)

// ManagerConfig wires the backends and collaborators shared by all
// sessions.
type ManagerConfig struct {
	Primary  domain.Backend
	Fallback domain.Backend
	Catalog  catalogdomain.Catalog
	Notifier notify.Notifier

	// DebounceInterval overrides the route debounce quiet period;
	// zero means DefaultDebounceInterval.
	DebounceInterval time.Duration
	// ProbeTimeout bounds the remote-connectivity probe at session
	// creation; zero means 3s.
	ProbeTimeout time.Duration
}

// Manager owns one Reconciler per user session. Sessions are created on
// first access and dropped on Invalidate, so each is an explicitly
// constructed instance rather than process-wide state.
type Manager struct {
	mu       sync.Mutex
	cfg      ManagerConfig
	sessions map[string]*Reconciler
}

func NewManager(cfg ManagerConfig) *Manager {
	registerMetricsOnce.Do(func() {
		prometheus.MustRegister(opsTotal, opFailures, downgradeTotal, activeSessions)
	})
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Reconciler),
	}
}

// Session returns the reconciler for a user, constructing and loading
// it on first use.
func (m *Manager) Session(ctx context.Context, userID string, demo bool) (*Reconciler, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	m.mu.Lock()
	if rec, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return rec, nil
	}
	rec := newReconciler(userID, demo, m.cfg)
	m.sessions[userID] = rec
	activeSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	if err := rec.Refresh(ctx); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("user_id", userID).
			Msg("Initial snapshot load incomplete")
	}

	logger.Info(ctx).
		Str("user_id", userID).
		Bool("demo", demo).
		Bool("downgraded", rec.Downgraded()).
		Msg("Session created")

	return rec, nil
}

// Invalidate drops a session so the next access rebuilds it from the
// backend. Used when another instance reports a change for the user.
func (m *Manager) Invalidate(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.sessions[userID]; ok {
		rec.Close()
		delete(m.sessions, userID)
		activeSessions.Set(float64(len(m.sessions)))
	}
}

// Close stops all sessions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, rec := range m.sessions {
		rec.Close()
		delete(m.sessions, id)
	}
	activeSessions.Set(0)
}
