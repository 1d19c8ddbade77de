package machine

import (
	"log/slog"

	"github.com/aretw0/tinyfsm/pkg/domain"
)

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the structured logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}
