package idpool

import (
	"fmt"
	"iter"

	"github.com/aretw0/tinyfsm/pkg/domain"
)

// DefaultCapacity is the capacity used by NewDefault.
const DefaultCapacity = 4086

type status uint8

const (
	statusNeverIssued status = iota
	statusInUse
	statusReclaimed
)

// Listener receives the identifier an event refers to.
type Listener func(id int)

// Pool hands out identifiers in [0, Capacity()).
type Pool struct {
	freeList []int
	statuses []status
	next     int
	free     int

	onRelease []Listener
	onReuse   []Listener
}

// New creates a pool holding capacity identifiers.
func New(capacity int) (*Pool, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidCapacity, capacity)
	}

	p := &Pool{
		freeList: make([]int, capacity),
		statuses: make([]status, capacity),
		free:     capacity,
	}
	for i := range p.freeList {
		p.freeList[i] = i
	}
	return p, nil
}

// NewDefault creates a pool of DefaultCapacity identifiers.
func NewDefault() *Pool {
	p, _ := New(DefaultCapacity)
	return p
}

// Capacity returns the total number of identifiers the pool manages.
func (p *Pool) Capacity() int {
	return len(p.freeList)
}

// UsedCapacity returns the number of identifiers currently provisioned.
func (p *Pool) UsedCapacity() int {
	return len(p.freeList) - p.free
}

// RemainingCapacity returns the number of identifiers available for provisioning.
func (p *Pool) RemainingCapacity() int {
	return p.free
}

// Provision returns the identifier that has been free the longest and locks it
// until it is released. It returns false when the pool is exhausted.
func (p *Pool) Provision() (int, bool) {
	if p.free <= 0 {
		return 0, false
	}

	id := p.freeList[p.next]
	p.next = (p.next + 1) % len(p.freeList)
	p.free--

	if p.statuses[id] == statusReclaimed {
		for _, fn := range p.onReuse {
			fn(id)
		}
	}
	p.statuses[id] = statusInUse

	return id, true
}

// Release returns id to the back of the free list and notifies release listeners.
// Releasing an identifier that is not provisioned does nothing.
func (p *Pool) Release(id int) {
	if !p.IsProvisioned(id) {
		return
	}

	slot := (p.next + p.free) % len(p.freeList)
	p.statuses[id] = statusReclaimed
	p.freeList[slot] = id
	p.free++

	for _, fn := range p.onRelease {
		fn(id)
	}
}

// IsProvisioned reports whether id is currently in use.
func (p *Pool) IsProvisioned(id int) bool {
	return id >= 0 && id < len(p.statuses) && p.statuses[id] == statusInUse
}

// All yields the provisioned identifiers in ascending order.
// The set is captured when iteration starts; an identifier released before it is
// reached is skipped, and identifiers provisioned during iteration are not visited.
func (p *Pool) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		snapshot := make([]int, 0, p.UsedCapacity())
		for id, s := range p.statuses {
			if s == statusInUse {
				snapshot = append(snapshot, id)
			}
		}

		for _, id := range snapshot {
			if !p.IsProvisioned(id) {
				continue
			}
			if !yield(id) {
				return
			}
		}
	}
}

// OnRelease registers listeners called, in registration order, whenever an
// identifier is released.
func (p *Pool) OnRelease(fns ...Listener) {
	p.onRelease = append(p.onRelease, fns...)
}

// OnReuse registers listeners called, in registration order, whenever a
// previously released identifier is provisioned again. They run before the
// identifier is marked in use, which makes them a place for per-slot cleanup.
func (p *Pool) OnReuse(fns ...Listener) {
	p.onReuse = append(p.onReuse, fns...)
}
