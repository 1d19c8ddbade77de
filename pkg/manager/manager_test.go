package manager_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/aretw0/tinyfsm/pkg/idpool"
	"github.com/aretw0/tinyfsm/pkg/manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trigger struct {
	fire func()
}

func (t *trigger) transitionTo(state string) domain.SetupFunc {
	return func(m domain.SetupView) domain.CleanupFunc {
		t.fire = func() { _ = m.RequestTransition(state) }
		return func(domain.CleanupView) { t.fire = nil }
	}
}

func onEnter(fn func()) domain.SetupFunc {
	return func(domain.SetupView) domain.CleanupFunc {
		fn()
		return nil
	}
}

func singleState(setups ...domain.SetupFunc) *domain.Blueprint {
	return &domain.Blueprint{
		InitState: "idle",
		States:    map[string][]domain.SetupFunc{"idle": setups},
	}
}

func newManager(t *testing.T, opts ...manager.Option) *manager.Manager {
	t.Helper()
	m, err := manager.New(opts...)
	require.NoError(t, err)
	return m
}

func newPool(t *testing.T, capacity int) *idpool.Pool {
	t.Helper()
	p, err := idpool.New(capacity)
	require.NoError(t, err)
	return p
}

func TestNew_NegativeInitialContexts(t *testing.T) {
	_, err := manager.New(manager.WithInitialContexts(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidCapacity)
}

func TestNew_PreallocatesContexts(t *testing.T) {
	m := newManager(t, manager.WithInitialContexts(3))
	assert.Equal(t, 3, m.FreeContexts())
	assert.Equal(t, idpool.DefaultCapacity, m.Pool().Capacity())
}

func TestCreateMachine_RunsInitialStateBeforeReturning(t *testing.T) {
	m := newManager(t)
	entered := 0

	id, err := m.CreateMachine(singleState(onEnter(func() { entered++ })))
	require.NoError(t, err)

	assert.Equal(t, 1, entered)
	h, ok := m.Get(id)
	require.True(t, ok)
	assert.True(t, h.IsRunning())
	assert.Equal(t, "idle", h.State())
	assert.Equal(t, id, h.ID())
	assert.Equal(t, id, h.AuxData(), "aux data starts as the machine id")
	assert.True(t, m.Pool().IsProvisioned(id))
}

func TestCreateMachine_PoolExhausted(t *testing.T) {
	m := newManager(t, manager.WithIDPool(newPool(t, 1)))

	_, err := m.CreateMachine(singleState())
	require.NoError(t, err)

	_, err = m.CreateMachine(singleState())
	assert.ErrorIs(t, err, domain.ErrPoolExhausted)
	assert.Equal(t, 1, m.Len())
}

func TestCreateMachine_InvalidBlueprintConsumesNothing(t *testing.T) {
	m := newManager(t, manager.WithIDPool(newPool(t, 2)))

	_, err := m.CreateMachine(&domain.Blueprint{InitState: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidBlueprint)
	assert.Equal(t, 2, m.Pool().RemainingCapacity())
	assert.Equal(t, 0, m.Len())
}

func TestDeleteMachine_UnknownID(t *testing.T) {
	m := newManager(t)

	assert.ErrorIs(t, m.DeleteMachine(0), domain.ErrUnknownID)
	assert.ErrorIs(t, m.DeleteMachine(-1), domain.ErrUnknownID)

	id, err := m.CreateMachine(singleState())
	require.NoError(t, err)
	require.NoError(t, m.DeleteMachine(id))
	assert.ErrorIs(t, m.DeleteMachine(id), domain.ErrUnknownID, "double delete")
}

func TestDeleteMachine_TerminatesAndNotifies(t *testing.T) {
	m := newManager(t)
	var calls []string
	m.OnMachineDestroyed(
		func(id int) { calls = append(calls, "listener-a") },
		func(id int) { calls = append(calls, "listener-b") },
	)
	m.Pool().OnRelease(func(id int) { calls = append(calls, "released") })

	id, err := m.CreateMachine(&domain.Blueprint{
		InitState: "idle",
		States: map[string][]domain.SetupFunc{
			"idle": {func(domain.SetupView) domain.CleanupFunc {
				return func(domain.CleanupView) { calls = append(calls, "exit") }
			}},
		},
		OnEnd: []domain.CleanupFunc{func(domain.CleanupView) { calls = append(calls, "end") }},
	})
	require.NoError(t, err)

	require.NoError(t, m.DeleteMachine(id))

	assert.Equal(t, []string{"exit", "end", "released", "listener-a", "listener-b"}, calls)
	assert.False(t, m.Pool().IsProvisioned(id))
	_, ok := m.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 1, m.FreeContexts())
}

func TestDeleteMachine_ListenerReceivesID(t *testing.T) {
	m := newManager(t)
	var destroyed []int
	m.OnMachineDestroyed(func(id int) { destroyed = append(destroyed, id) })

	a, _ := m.CreateMachine(singleState())
	b, _ := m.CreateMachine(singleState())
	require.NoError(t, m.DeleteMachine(b))
	require.NoError(t, m.DeleteMachine(a))

	assert.Equal(t, []int{b, a}, destroyed)
}

func TestCreateMachine_ReusesCore(t *testing.T) {
	m := newManager(t, manager.WithIDPool(newPool(t, 1)), manager.WithInitialContexts(1))
	var views []domain.SetupView
	bp := singleState(func(v domain.SetupView) domain.CleanupFunc {
		views = append(views, v)
		return nil
	})

	first, err := m.CreateMachine(bp)
	require.NoError(t, err)
	assert.Equal(t, 0, m.FreeContexts())
	require.NoError(t, m.DeleteMachine(first))

	second, err := m.CreateMachine(bp)
	require.NoError(t, err)

	require.Len(t, views, 2)
	assert.True(t, views[0] == views[1], "the same core serves both machines")
	assert.Equal(t, first, second, "a single-slot pool hands back the same id")
}

func TestCreateMachine_LiveMachinesUseDistinctCores(t *testing.T) {
	m := newManager(t)
	var views []domain.SetupView
	bp := singleState(func(v domain.SetupView) domain.CleanupFunc {
		views = append(views, v)
		return nil
	})

	a, _ := m.CreateMachine(bp)
	b, _ := m.CreateMachine(bp)

	assert.NotEqual(t, a, b)
	require.Len(t, views, 2)
	assert.False(t, views[0] == views[1])
}

func TestCreateMachine_RecyclesIdentifiersFIFO(t *testing.T) {
	m := newManager(t, manager.WithIDPool(newPool(t, 3)))

	a, _ := m.CreateMachine(singleState())
	require.NoError(t, m.DeleteMachine(a))

	b, _ := m.CreateMachine(singleState())
	assert.NotEqual(t, a, b, "never-issued identifiers come before recycled ones")
}

func TestMachineThatEndsItselfStaysBound(t *testing.T) {
	m := newManager(t)
	trig := &trigger{}

	id, err := m.CreateMachine(&domain.Blueprint{
		InitState: "idle",
		States:    map[string][]domain.SetupFunc{"idle": {trig.transitionTo(domain.StateEnd)}},
	})
	require.NoError(t, err)

	trig.fire()

	h, ok := m.Get(id)
	require.True(t, ok)
	assert.False(t, h.IsRunning())
	assert.NoError(t, m.DeleteMachine(id))
}

func TestDeleteAndRecreateFromSetup_LeavesNewMachineAlone(t *testing.T) {
	m := newManager(t)
	var calls []string
	replacement := singleState(onEnter(func() { calls = append(calls, "enter:new") }))
	newID := domain.NoID

	_, err := m.CreateMachine(singleState(func(v domain.SetupView) domain.CleanupFunc {
		require.NoError(t, m.DeleteMachine(v.AuxData().(int)))
		id, err := m.CreateMachine(replacement)
		require.NoError(t, err)
		newID = id
		return func(c domain.CleanupView) {
			calls = append(calls, fmt.Sprintf("exit:old aux=%v", c.AuxData()))
			c.Terminate()
		}
	}))
	require.NoError(t, err)

	h, ok := m.Get(newID)
	require.True(t, ok)
	assert.True(t, h.IsRunning())
	assert.Equal(t, "idle", h.State())
	assert.Equal(t, newID, h.AuxData())
	assert.Equal(t, []string{"enter:new", "exit:old aux=0"}, calls)
	assert.Equal(t, 1, m.Len())
}

func TestDeleteAndRecreateFromCleanup_LeavesNewMachineAlone(t *testing.T) {
	m := newManager(t)
	trig := &trigger{}
	newExits := 0
	replacement := &domain.Blueprint{
		InitState: "a",
		States: map[string][]domain.SetupFunc{
			"a": {func(domain.SetupView) domain.CleanupFunc {
				return func(domain.CleanupView) { newExits++ }
			}},
		},
	}
	newID := domain.NoID

	_, err := m.CreateMachine(&domain.Blueprint{
		InitState: "a",
		States: map[string][]domain.SetupFunc{
			"a": {trig.transitionTo("b"), func(domain.SetupView) domain.CleanupFunc {
				return func(c domain.CleanupView) {
					require.NoError(t, m.DeleteMachine(c.AuxData().(int)))
					id, err := m.CreateMachine(replacement)
					require.NoError(t, err)
					newID = id
				}
			}},
			"b": nil,
		},
	})
	require.NoError(t, err)

	trig.fire()

	h, ok := m.Get(newID)
	require.True(t, ok)
	assert.True(t, h.IsRunning())
	assert.Equal(t, "a", h.State())
	assert.Equal(t, 0, newExits, "the old exit phase must not take the new run's cleanups")

	require.NoError(t, m.DeleteMachine(newID))
	assert.Equal(t, 1, newExits)
}

func TestMachines_IteratesBoundMachines(t *testing.T) {
	m := newManager(t)
	var ids []int
	for range 4 {
		id, err := m.CreateMachine(singleState())
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, m.DeleteMachine(ids[1]))

	var seen []int
	for id, h := range m.Machines() {
		assert.Equal(t, "idle", h.State())
		seen = append(seen, id)
	}
	assert.Equal(t, []int{ids[0], ids[2], ids[3]}, seen)
	assert.Equal(t, 3, m.Len())
}

func TestManager_Hooks(t *testing.T) {
	var events []domain.EventType
	record := func(e *domain.MachineEvent) { events = append(events, e.Type) }
	m := newManager(t, manager.WithHooks(domain.LifecycleHooks{
		OnMachineCreate:    record,
		OnMachineDestroy:   record,
		OnMachineTerminate: record,
		OnStateEnter:       func(e *domain.StateEvent) { events = append(events, e.Type) },
	}))

	id, err := m.CreateMachine(singleState())
	require.NoError(t, err)
	require.NoError(t, m.DeleteMachine(id))

	assert.Equal(t, []domain.EventType{
		domain.EventMachineCreate,
		domain.EventStateEnter,
		domain.EventMachineTerminate,
		domain.EventMachineDestroy,
	}, events)
}

func TestExternalTriggerScenario(t *testing.T) {
	trig := &trigger{}
	current := ""
	m := newManager(t)

	_, err := m.CreateMachine(&domain.Blueprint{
		InitState: "A",
		States: map[string][]domain.SetupFunc{
			"A": {trig.transitionTo("B"), onEnter(func() { current = "A" })},
			"B": {trig.transitionTo("A"), onEnter(func() { current = "B" })},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "A", current)

	trig.fire()
	assert.Equal(t, "B", current)

	trig.fire()
	assert.Equal(t, "A", current)
}

func TestNestedMachines(t *testing.T) {
	m := newManager(t)
	trig := &trigger{}
	current, sub := "", ""
	choice := "b"

	child := func(parent domain.SetupView) domain.CleanupFunc {
		id, err := m.CreateMachine(&domain.Blueprint{
			InitState: "wait",
			States: map[string][]domain.SetupFunc{
				"wait": {onEnter(func() { sub = "started" }), trig.transitionTo("decide")},
				"decide": {func(domain.SetupView) domain.CleanupFunc {
					_ = parent.RequestTransition(choice)
					return nil
				}},
			},
			OnEnd: []domain.CleanupFunc{func(domain.CleanupView) { sub = "terminated" }},
		})
		require.NoError(t, err)
		return func(domain.CleanupView) { _ = m.DeleteMachine(id) }
	}

	_, err := m.CreateMachine(&domain.Blueprint{
		InitState: "a",
		States: map[string][]domain.SetupFunc{
			"a": {onEnter(func() { current = "a" }), child},
			"b": {onEnter(func() { current = "b" }), trig.transitionTo("a")},
			"c": {onEnter(func() { current = "c" }), trig.transitionTo("a")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "a", current)
	assert.Equal(t, "started", sub)
	assert.Equal(t, 2, m.Len())

	trig.fire()
	assert.Equal(t, "terminated", sub)
	assert.Equal(t, "b", current)
	assert.Equal(t, 1, m.Len())

	trig.fire()
	assert.Equal(t, "a", current)
	assert.Equal(t, "started", sub)

	choice = "c"
	trig.fire()
	assert.Equal(t, "terminated", sub)
	assert.Equal(t, "c", current)
	assert.Equal(t, 1, m.FreeContexts())
}
