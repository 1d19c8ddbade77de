package machine

import "github.com/aretw0/tinyfsm/pkg/domain"

// setupView is what setup callbacks see. Two views of the same machine compare equal.
type setupView struct{ m *Machine }

func (v setupView) RequestTransition(state string) error { return v.m.RequestTransition(state) }
func (v setupView) Terminate()                           { v.m.terminateFromSetup() }
func (v setupView) AuxData() any                         { return v.m.aux }
func (v setupView) SetAuxData(data any)                  { v.m.aux = data }

// cleanupView has no transition method, so it cannot be asserted into a SetupView.
type cleanupView struct{ m *Machine }

func (v cleanupView) Terminate()          { v.m.Terminate() }
func (v cleanupView) AuxData() any        { return v.m.aux }
func (v cleanupView) SetAuxData(data any) { v.m.aux = data }

// detachedView is handed to a cleanup whose run ended while its setup was running.
// Terminate has nothing left to end.
type detachedView struct{ aux any }

func (v *detachedView) Terminate()          {}
func (v *detachedView) AuxData() any        { return v.aux }
func (v *detachedView) SetAuxData(data any) { v.aux = data }

var (
	_ domain.SetupView   = setupView{}
	_ domain.CleanupView = cleanupView{}
	_ domain.CleanupView = (*detachedView)(nil)
)
