package metrics_test

import (
	"strings"
	"testing"

	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/aretw0/tinyfsm/pkg/manager"
	"github.com/aretw0/tinyfsm/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_TracksManagerLifecycle(t *testing.T) {
	c := metrics.New()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	mgr, err := manager.New(manager.WithHooks(c.Hooks()))
	require.NoError(t, err)

	var views []domain.SetupView
	bp := &domain.Blueprint{
		InitState: "a",
		States: map[string][]domain.SetupFunc{
			"a": {func(v domain.SetupView) domain.CleanupFunc {
				views = append(views, v)
				return nil
			}},
			"b": nil,
		},
	}

	first, err := mgr.CreateMachine(bp)
	require.NoError(t, err)
	_, err = mgr.CreateMachine(bp)
	require.NoError(t, err)
	require.NoError(t, views[0].RequestTransition("b"))
	require.NoError(t, mgr.DeleteMachine(first))

	expected := `
# HELP tinyfsm_machines_active Number of machines currently bound to an identifier.
# TYPE tinyfsm_machines_active gauge
tinyfsm_machines_active 1
# HELP tinyfsm_machines_created_total Total number of machines created by a manager.
# TYPE tinyfsm_machines_created_total counter
tinyfsm_machines_created_total 2
# HELP tinyfsm_machines_destroyed_total Total number of machines deleted from a manager.
# TYPE tinyfsm_machines_destroyed_total counter
tinyfsm_machines_destroyed_total 1
# HELP tinyfsm_state_entries_total Total number of state entries.
# TYPE tinyfsm_state_entries_total counter
tinyfsm_state_entries_total{state="a"} 2
tinyfsm_state_entries_total{state="b"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"tinyfsm_machines_active",
		"tinyfsm_machines_created_total",
		"tinyfsm_machines_destroyed_total",
		"tinyfsm_state_entries_total",
	))
}

func TestCollector_CountsExitsAndTerminations(t *testing.T) {
	c := metrics.New()
	hooks := c.Hooks()

	hooks.OnStateExit(domain.NewStateEvent(domain.EventStateExit, 0, "a"))
	hooks.OnStateExit(domain.NewStateEvent(domain.EventStateExit, 1, "a"))
	hooks.OnMachineTerminate(domain.NewMachineEvent(domain.EventMachineTerminate, 0, "a"))

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))
	count, err := testutil.GatherAndCount(reg, "tinyfsm_state_exits_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "one series per state")
	assert.Equal(t, 2, testutil.CollectAndCount(c, "tinyfsm_state_exits_total", "tinyfsm_machine_terminations_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(c, "tinyfsm_machines_active"))
}
