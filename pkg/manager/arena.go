package manager

import (
	"iter"

	"github.com/aretw0/tinyfsm/pkg/machine"
)

// arena stores machines by identifier. Identifiers are dense in [0, capacity),
// so a slice with holes replaces a map; the pool owns the free slot list.
type arena struct {
	slots []*machine.Machine
	n     int
}

func (a *arena) get(id int) (*machine.Machine, bool) {
	if id < 0 || id >= len(a.slots) || a.slots[id] == nil {
		return nil, false
	}
	return a.slots[id], true
}

func (a *arena) put(id int, m *machine.Machine) {
	if id >= len(a.slots) {
		a.slots = append(a.slots, make([]*machine.Machine, id+1-len(a.slots))...)
	}
	if a.slots[id] == nil {
		a.n++
	}
	a.slots[id] = m
}

func (a *arena) remove(id int) (*machine.Machine, bool) {
	m, ok := a.get(id)
	if !ok {
		return nil, false
	}
	a.slots[id] = nil
	a.n--
	return m, true
}

func (a *arena) len() int {
	return a.n
}

// all yields bound machines in identifier order. Slots emptied during iteration are skipped.
func (a *arena) all() iter.Seq2[int, *machine.Machine] {
	return func(yield func(int, *machine.Machine) bool) {
		for id := 0; id < len(a.slots); id++ {
			m := a.slots[id]
			if m == nil {
				continue
			}
			if !yield(id, m) {
				return
			}
		}
	}
}
