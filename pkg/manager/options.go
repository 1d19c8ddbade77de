package manager

import (
	"log/slog"

	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/aretw0/tinyfsm/pkg/idpool"
)

// Option configures the Manager.
type Option func(*Manager)

// WithIDPool sets the pool identifiers are drawn from.
// By default a pool of idpool.DefaultCapacity identifiers is created.
func WithIDPool(pool *idpool.Pool) Option {
	return func(m *Manager) {
		m.pool = pool
	}
}

// WithInitialContexts pre-allocates n machine cores on the free list.
func WithInitialContexts(n int) Option {
	return func(m *Manager) {
		m.initialContexts = n
	}
}

// WithLogger configures a logger for the Manager and the machines it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHooks registers lifecycle hooks. Machine-level hooks are installed on every core.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}
