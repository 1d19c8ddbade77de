package machine

type phaseKind uint8

const (
	phaseIdle phaseKind = iota
	phaseTransitioning
	phaseQueued
)

// phase tracks where the machine is in the transition protocol.
// A target only exists in the queued variant, so at most one can ever be pending.
type phase struct {
	kind   phaseKind
	target string
}

func idle() phase { return phase{kind: phaseIdle} }

func transitioning() phase { return phase{kind: phaseTransitioning} }

func (p phase) inFlight() bool { return p.kind != phaseIdle }

// enqueue records target if nothing is queued yet. The second return value
// reports whether target was kept.
func (p phase) enqueue(target string) (phase, bool) {
	if p.kind != phaseTransitioning {
		return p, false
	}
	return phase{kind: phaseQueued, target: target}, true
}

func (p phase) queued() (string, bool) {
	if p.kind != phaseQueued {
		return "", false
	}
	return p.target, true
}
