package manager

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/aretw0/tinyfsm/internal/logging"
	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/aretw0/tinyfsm/pkg/idpool"
	"github.com/aretw0/tinyfsm/pkg/machine"
)

// Handle is the read/write view of a managed machine given to outside callers.
type Handle interface {
	ID() int
	IsRunning() bool
	State() string
	RequestTransition(target string) error
	AuxData() any
	SetAuxData(data any)
}

var _ Handle = (*machine.Machine)(nil)

// Manager binds pool-issued identifiers to pooled machine cores.
type Manager struct {
	pool     *idpool.Pool
	machines arena
	free     []*machine.Machine

	onDestroyed []func(id int)

	initialContexts int
	logger          *slog.Logger
	hooks           domain.LifecycleHooks
}

// New creates a Manager. It fails with domain.ErrInvalidCapacity when
// WithInitialContexts is given a negative count.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.initialContexts < 0 {
		return nil, fmt.Errorf("%w: initial contexts %d", domain.ErrInvalidCapacity, m.initialContexts)
	}
	if m.pool == nil {
		m.pool = idpool.NewDefault()
	}
	if m.logger == nil {
		m.logger = logging.NewNop()
	}

	m.free = make([]*machine.Machine, 0, m.initialContexts)
	for i := 0; i < m.initialContexts; i++ {
		m.free = append(m.free, m.newContext())
	}
	return m, nil
}

// CreateMachine binds a new identifier to an idle core and runs bp on it.
// The machine's auxiliary data starts out as its identifier. The initial state's
// setup callbacks have run when CreateMachine returns.
func (m *Manager) CreateMachine(bp *domain.Blueprint) (int, error) {
	if err := bp.Validate(); err != nil {
		return domain.NoID, err
	}

	id, ok := m.pool.Provision()
	if !ok {
		return domain.NoID, fmt.Errorf("%w: capacity %d", domain.ErrPoolExhausted, m.pool.Capacity())
	}

	core := m.provisionContext()
	m.machines.put(id, core)

	m.logger.Debug("machine created", "machine_id", id, "state", bp.InitState)
	if m.hooks.OnMachineCreate != nil {
		m.hooks.OnMachineCreate(domain.NewMachineEvent(domain.EventMachineCreate, id, bp.InitState))
	}

	if err := core.RunAs(id, bp, id); err != nil {
		// Only a core still held by a previous run can get here; it is not reused.
		m.machines.remove(id)
		m.pool.Release(id)
		return domain.NoID, fmt.Errorf("failed to start machine %d: %w", id, err)
	}
	return id, nil
}

// DeleteMachine terminates the machine bound to id, recycles its core and
// identifier, then notifies destruction listeners.
func (m *Manager) DeleteMachine(id int) error {
	core, ok := m.machines.remove(id)
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrUnknownID, id)
	}

	state := core.State()
	core.Terminate()

	m.free = append(m.free, core)
	m.pool.Release(id)

	m.logger.Debug("machine destroyed", "machine_id", id, "state", state)
	if m.hooks.OnMachineDestroy != nil {
		m.hooks.OnMachineDestroy(domain.NewMachineEvent(domain.EventMachineDestroy, id, state))
	}
	for _, fn := range m.onDestroyed {
		fn(id)
	}
	return nil
}

// OnMachineDestroyed registers listeners called, in registration order, after
// every successful DeleteMachine.
func (m *Manager) OnMachineDestroyed(fns ...func(id int)) {
	m.onDestroyed = append(m.onDestroyed, fns...)
}

// Get returns the machine bound to id.
func (m *Manager) Get(id int) (Handle, bool) {
	core, ok := m.machines.get(id)
	if !ok {
		return nil, false
	}
	return core, true
}

// Machines yields every bound machine in identifier order.
func (m *Manager) Machines() iter.Seq2[int, Handle] {
	return func(yield func(int, Handle) bool) {
		for id, core := range m.machines.all() {
			if !yield(id, core) {
				return
			}
		}
	}
}

// Len returns the number of bound machines.
func (m *Manager) Len() int {
	return m.machines.len()
}

// FreeContexts returns the number of idle cores waiting for reuse.
func (m *Manager) FreeContexts() int {
	return len(m.free)
}

// Pool returns the identifier pool, e.g. to register release or reuse listeners.
func (m *Manager) Pool() *idpool.Pool {
	return m.pool
}

func (m *Manager) newContext() *machine.Machine {
	return machine.New(
		machine.WithLogger(m.logger),
		machine.WithHooks(m.hooks),
	)
}

// provisionContext hands out the core that has been idle the longest.
func (m *Manager) provisionContext() *machine.Machine {
	if len(m.free) == 0 {
		return m.newContext()
	}
	core := m.free[0]
	m.free[0] = nil
	m.free = m.free[1:]
	return core
}
