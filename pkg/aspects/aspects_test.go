package aspects_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aretw0/tinyfsm/pkg/aspects"
	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/aretw0/tinyfsm/pkg/machine"
	"github.com/aretw0/tinyfsm/pkg/manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

// manualScheduler fires timers only when the test says so.
type manualScheduler struct {
	timers []*fakeTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) func() {
	ft := &fakeTimer{delay: d, fn: fn}
	s.timers = append(s.timers, ft)
	return func() { ft.stopped = true }
}

// fire runs every pending timer registered so far.
func (s *manualScheduler) fire() {
	pending := s.timers
	s.timers = nil
	for _, ft := range pending {
		if !ft.stopped {
			ft.fn()
		}
	}
}

func (s *manualScheduler) pending() int {
	n := 0
	for _, ft := range s.timers {
		if !ft.stopped {
			n++
		}
	}
	return n
}

func run(t *testing.T, bp *domain.Blueprint) *machine.Machine {
	t.Helper()
	m := machine.New()
	require.NoError(t, m.Run(bp, nil))
	return m
}

func TestOnEnterOnExit(t *testing.T) {
	var calls []string
	m := run(t, &domain.Blueprint{
		InitState: "a",
		States: map[string][]domain.SetupFunc{
			"a": {
				aspects.OnExit(func(domain.CleanupView) { calls = append(calls, "exit-1") }),
				aspects.OnEnter(func(domain.SetupView) { calls = append(calls, "enter") }),
				aspects.OnExit(func(domain.CleanupView) { calls = append(calls, "exit-2") }),
			},
			"b": nil,
		},
	})

	require.NoError(t, m.RequestTransition("b"))
	assert.Equal(t, []string{"enter", "exit-1", "exit-2"}, calls)
}

func TestWhile(t *testing.T) {
	lit := false
	m := run(t, &domain.Blueprint{
		InitState: "on",
		States: map[string][]domain.SetupFunc{
			"on":  {aspects.While(func() { lit = true }, func() { lit = false })},
			"off": nil,
		},
	})
	assert.True(t, lit)

	require.NoError(t, m.RequestTransition("off"))
	assert.False(t, lit)
}

func TestTransitionOnCondition(t *testing.T) {
	for _, tc := range []struct {
		cond bool
		want string
	}{{true, "yes"}, {false, "no"}} {
		m := run(t, &domain.Blueprint{
			InitState: "check",
			States: map[string][]domain.SetupFunc{
				"check": {aspects.TransitionOnCondition(func() bool { return tc.cond }, "yes", "no")},
				"yes":   nil,
				"no":    nil,
			},
		})
		assert.Equal(t, tc.want, m.State())
	}
}

func TestTransitionOnEnter_ToEnd(t *testing.T) {
	ended := false
	m := run(t, &domain.Blueprint{
		InitState: "a",
		States:    map[string][]domain.SetupFunc{"a": {aspects.TransitionOnEnter(domain.StateEnd)}},
		OnEnd:     []domain.CleanupFunc{func(domain.CleanupView) { ended = true }},
	})

	assert.True(t, ended)
	assert.False(t, m.IsRunning())
}

func TestTransitionAfter(t *testing.T) {
	s := &manualScheduler{}
	bus := aspects.NewSignals()
	m := run(t, &domain.Blueprint{
		InitState: "waiting",
		States: map[string][]domain.SetupFunc{
			"waiting": {
				aspects.TransitionAfter(s, time.Second, "timeout"),
				aspects.TransitionOnSignal(bus, "skip", "skipped"),
			},
			"timeout": nil,
			"skipped": nil,
		},
	})
	require.Len(t, s.timers, 1)
	assert.Equal(t, time.Second, s.timers[0].delay)

	bus.Emit("skip")
	assert.Equal(t, "skipped", m.State())
	assert.Equal(t, 0, s.pending(), "leaving the state stops the timer")

	s.fire()
	assert.Equal(t, "skipped", m.State())
}

func TestSignals_OffAndEmitCount(t *testing.T) {
	bus := aspects.NewSignals()
	var calls []string

	offA := bus.On("tick", func() { calls = append(calls, "a") })
	bus.On("tick", func() { calls = append(calls, "b") })
	assert.Equal(t, 2, bus.Listeners("tick"))

	assert.Equal(t, 2, bus.Emit("tick"))
	offA()
	offA()
	assert.Equal(t, 1, bus.Emit("tick"))
	assert.Equal(t, 0, bus.Emit("other"))

	assert.Equal(t, []string{"a", "b", "b"}, calls)
}

func TestSignals_HandlersChangedDuringEmit(t *testing.T) {
	bus := aspects.NewSignals()
	m := run(t, &domain.Blueprint{
		InitState: "A",
		States: map[string][]domain.SetupFunc{
			"A": {aspects.TransitionOnSignal(bus, "next", "B")},
			"B": {aspects.TransitionOnSignal(bus, "next", "A")},
		},
	})

	// B registers its handler during the emission that leaves A; it must not fire too.
	bus.Emit("next")
	assert.Equal(t, "B", m.State())
	assert.Equal(t, 1, bus.Listeners("next"))

	bus.Emit("next")
	assert.Equal(t, "A", m.State())
}

// The keyboard countdown from examples/countdown, driven by fakes.
func TestCountdownBlueprint(t *testing.T) {
	s := &manualScheduler{}
	bus := aspects.NewSignals()
	display := 0
	count := 0

	m := run(t, &domain.Blueprint{
		InitState: "ready",
		States: map[string][]domain.SetupFunc{
			"ready": {
				aspects.OnEnter(func(domain.SetupView) { display = 3 }),
				aspects.TransitionOnSignal(bus, "click", "updating"),
				aspects.OnExit(func(domain.CleanupView) { count = display }),
			},
			"updating": {
				aspects.OnEnter(func(domain.SetupView) { count-- }),
				aspects.OnEnter(func(domain.SetupView) { display = count }),
				aspects.TransitionOnCondition(func() bool { return count > 0 }, "running", "stopped"),
			},
			"running": {
				aspects.TransitionAfter(s, time.Second, "updating"),
				aspects.TransitionOnSignal(bus, "click", "stopped"),
			},
			"stopped": {
				aspects.TransitionOnSignal(bus, "click", "ready"),
			},
		},
	})
	assert.Equal(t, "ready", m.State())

	bus.Emit("click")
	assert.Equal(t, "running", m.State())
	assert.Equal(t, 2, display)

	s.fire()
	assert.Equal(t, "running", m.State())
	assert.Equal(t, 1, display)

	s.fire()
	assert.Equal(t, "stopped", m.State())
	assert.Equal(t, 0, display)

	bus.Emit("click")
	assert.Equal(t, "ready", m.State())
	assert.Equal(t, 3, display)
}

func TestNested(t *testing.T) {
	mgr, err := manager.New()
	require.NoError(t, err)
	bus := aspects.NewSignals()
	childRunning := false

	child := func(parent domain.SetupView) *domain.Blueprint {
		return &domain.Blueprint{
			InitState: "inner",
			States: map[string][]domain.SetupFunc{
				"inner": {
					aspects.While(func() { childRunning = true }, func() { childRunning = false }),
					aspects.OnEnter(func(domain.SetupView) {}),
				},
			},
			OnEnd: []domain.CleanupFunc{func(domain.CleanupView) {}},
		}
	}

	_, err = mgr.CreateMachine(&domain.Blueprint{
		InitState: "outer",
		States: map[string][]domain.SetupFunc{
			"outer": {aspects.Nested(mgr, child, "failed"), aspects.TransitionOnSignal(bus, "leave", "done")},
			"done":   nil,
			"failed": nil,
		},
	})
	require.NoError(t, err)
	assert.True(t, childRunning)
	assert.Equal(t, 2, mgr.Len())

	bus.Emit("leave")
	assert.False(t, childRunning)
	assert.Equal(t, 1, mgr.Len())
}

type failingSpawner struct{}

func (failingSpawner) CreateMachine(*domain.Blueprint) (int, error) {
	return domain.NoID, errors.New("no room")
}

func (failingSpawner) DeleteMachine(int) error { return nil }

func TestNested_FallbackWhenChildCannotStart(t *testing.T) {
	m := run(t, &domain.Blueprint{
		InitState: "outer",
		States: map[string][]domain.SetupFunc{
			"outer": {aspects.Nested(failingSpawner{}, func(domain.SetupView) *domain.Blueprint { return nil }, "failed")},
			"failed": nil,
		},
	})

	assert.Equal(t, "failed", m.State())
}
