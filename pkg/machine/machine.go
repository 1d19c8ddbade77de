package machine

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/tinyfsm/internal/logging"
	"github.com/aretw0/tinyfsm/pkg/domain"
)

// Machine is the core state machine runner.
// The zero value is not usable; create machines with New.
type Machine struct {
	id        int
	blueprint *domain.Blueprint
	state     string
	aux       any

	// exits holds the cleanups collected on entry to the current state,
	// in the order their setup callbacks ran. It is consumed from the front.
	exits []domain.CleanupFunc

	phase       phase
	terminating bool

	// entering is set while the setup callbacks of a state run. A setup that
	// terminates its own machine then only sets stopAfterSetup.
	entering       bool
	stopAfterSetup bool

	// epoch changes every time a run starts or ends. A phase that observes a
	// different epoch after a callback returns was interrupted by Terminate.
	epoch uint64

	// The aux data a run held when it ended, for cleanups that outlive it.
	endedEpoch uint64
	endedAux   any

	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// New creates an idle machine.
func New(opts ...Option) *Machine {
	m := &Machine{
		id:     domain.NoID,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run binds the blueprint and enters its initial state.
// All setup callbacks of the initial state have run when Run returns.
func (m *Machine) Run(bp *domain.Blueprint, aux any) error {
	return m.RunAs(domain.NoID, bp, aux)
}

// RunAs is Run for a machine bound to a manager identifier.
// The identifier is only used to label logs and lifecycle events.
func (m *Machine) RunAs(id int, bp *domain.Blueprint, aux any) error {
	if m.blueprint != nil {
		return domain.ErrAlreadyRunning
	}
	if err := bp.Validate(); err != nil {
		return err
	}

	m.epoch++
	m.id = id
	m.blueprint = bp
	m.aux = aux

	m.logger.Debug("machine started", "machine_id", id, "state", bp.InitState)
	m.drive(bp.InitState)
	return nil
}

// IsRunning reports whether a blueprint is bound.
func (m *Machine) IsRunning() bool {
	return m.blueprint != nil
}

// State returns the current state, or "" when the machine is idle.
func (m *Machine) State() string {
	return m.state
}

// ID returns the identifier given to RunAs, or domain.NoID.
func (m *Machine) ID() int {
	return m.id
}

// AuxData returns the caller-owned payload.
func (m *Machine) AuxData() any {
	return m.aux
}

// SetAuxData replaces the caller-owned payload.
func (m *Machine) SetAuxData(data any) {
	m.aux = data
}

// RequestTransition moves the machine to target, or terminates it when target is
// domain.StateEnd. If a transition is already in flight the request is deferred;
// only the first deferred request per in-flight transition is honored.
func (m *Machine) RequestTransition(target string) error {
	if m.blueprint == nil {
		return domain.ErrNotRunning
	}
	if !m.blueprint.IsValidTarget(target) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownState, target)
	}

	if m.phase.inFlight() {
		var kept bool
		m.phase, kept = m.phase.enqueue(target)
		if !kept {
			m.logger.Debug("transition request dropped", "machine_id", m.id, "state", m.state, "target", target)
		}
		return nil
	}

	m.drive(target)
	return nil
}

// Terminate runs the exit phase of the current state, then the blueprint's OnEnd
// callbacks, and returns the machine to idle. It is a no-op on an idle machine and
// when called again while termination is already under way.
func (m *Machine) Terminate() {
	if m.blueprint == nil || m.terminating {
		return
	}
	m.terminating = true
	m.phase = transitioning()
	// The machine is idle afterwards even if a callback panics.
	defer m.reset()

	last := m.state
	m.leaveState(m.epoch)

	view := cleanupView{m}
	for _, fn := range m.blueprint.OnEnd {
		fn(view)
	}

	m.logger.Debug("machine terminated", "machine_id", m.id, "state", last)
	if m.hooks.OnMachineTerminate != nil {
		m.hooks.OnMachineTerminate(domain.NewMachineEvent(domain.EventMachineTerminate, m.id, last))
	}
}

// drive performs target and then every transition queued while it ran.
func (m *Machine) drive(target string) {
	epoch := m.epoch
	defer func() {
		// Leaves the guard down if a callback panicked mid-phase.
		if m.epoch == epoch {
			m.phase = idle()
			m.entering = false
			m.stopAfterSetup = false
		}
	}()

	for {
		m.phase = transitioning()
		if target == domain.StateEnd {
			m.Terminate()
			return
		}

		m.leaveState(epoch)
		if m.epoch != epoch {
			return
		}
		m.enterState(target, epoch)
		if m.epoch != epoch {
			return
		}

		next, ok := m.phase.queued()
		m.phase = idle()
		if !ok {
			return
		}
		target = next
	}
}

// leaveState runs every pending cleanup exactly once, in collection order.
// Cleanups are popped before they run so a nested Terminate picks up the rest.
// It stops as soon as the run identified by epoch is over: the core may already
// be serving another run whose cleanups are not ours to take.
func (m *Machine) leaveState(epoch uint64) {
	if m.state == "" {
		return
	}
	prev := m.state

	view := cleanupView{m}
	for len(m.exits) > 0 {
		fn := m.exits[0]
		m.exits[0] = nil
		m.exits = m.exits[1:]
		fn(view)
		if m.epoch != epoch {
			return
		}
	}
	m.state = ""
	m.exits = nil

	m.logger.Debug("left state", "machine_id", m.id, "state", prev)
	if m.hooks.OnStateExit != nil {
		m.hooks.OnStateExit(domain.NewStateEvent(domain.EventStateExit, m.id, prev))
	}
}

// enterState runs the setup callbacks of state in declared order.
// Returned cleanups are recorded as they arrive, so a panicking callback leaves
// the cleanups of its predecessors pending.
func (m *Machine) enterState(state string, epoch uint64) {
	m.state = state
	m.exits = nil

	m.logger.Debug("entered state", "machine_id", m.id, "state", state)
	if m.hooks.OnStateEnter != nil {
		m.hooks.OnStateEnter(domain.NewStateEvent(domain.EventStateEnter, m.id, state))
	}

	view := setupView{m}
	m.entering = true
	for _, setup := range m.blueprint.States[state] {
		cleanup := setup(view)
		if m.epoch != epoch {
			// The run was ended from outside, and the core may be bound again.
			// The cleanup still runs once, against what is left of its own run.
			if cleanup != nil {
				cleanup(m.detachedView(epoch))
			}
			return
		}
		if cleanup != nil {
			m.exits = append(m.exits, cleanup)
		}
		if m.stopAfterSetup {
			break
		}
	}
	m.entering = false

	if m.stopAfterSetup {
		m.Terminate()
	}
}

// terminateFromSetup ends the run once the running setup callback has returned,
// so its cleanup joins the exit phase. Outside an entry phase it is Terminate.
func (m *Machine) terminateFromSetup() {
	if m.entering {
		m.stopAfterSetup = true
		return
	}
	m.Terminate()
}

func (m *Machine) detachedView(epoch uint64) *detachedView {
	v := &detachedView{}
	if m.endedEpoch == epoch {
		v.aux = m.endedAux
	}
	return v
}

func (m *Machine) reset() {
	m.endedEpoch = m.epoch
	m.endedAux = m.aux

	m.blueprint = nil
	m.aux = nil
	m.state = ""
	m.exits = nil
	m.phase = idle()
	m.terminating = false
	m.entering = false
	m.stopAfterSetup = false
	m.id = domain.NoID
	m.epoch++
}
