package registry

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/tinyfsm/pkg/aspects"
	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Env carries the host resources aspects may need when they are built.
type Env struct {
	Scheduler aspects.Scheduler
	Signals   *aspects.Signals
	Logger    *slog.Logger
	Out       io.Writer
}

// Spec describes one aspect occurrence inside a blueprint document.
type Spec struct {
	// State is the state the aspect belongs to, or "" for termination callbacks.
	State string
	Args  map[string]any
}

// SetupFactory builds a setup callback from its arguments.
type SetupFactory func(env Env, spec Spec) (domain.SetupFunc, error)

// EndFactory builds a termination callback from its arguments.
type EndFactory func(env Env, spec Spec) (domain.CleanupFunc, error)

// Registry manages the aspects available to blueprint documents.
type Registry struct {
	mu     sync.RWMutex
	setups map[string]SetupFactory
	ends   map[string]EndFactory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		setups: make(map[string]SetupFactory),
		ends:   make(map[string]EndFactory),
	}
}

// RegisterSetup adds a setup aspect to the registry.
// If an aspect with the same name exists, it is overwritten.
func (r *Registry) RegisterSetup(name string, f SetupFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setups[name] = f
}

// RegisterEnd adds a termination aspect to the registry.
func (r *Registry) RegisterEnd(name string, f EndFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ends[name] = f
}

// BuildSetup looks up a setup aspect by name and builds it.
func (r *Registry) BuildSetup(name string, env Env, spec Spec) (domain.SetupFunc, error) {
	r.mu.RLock()
	f, ok := r.setups[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("aspect not found: %s", name)
	}
	return f(env, spec)
}

// BuildEnd looks up a termination aspect by name and builds it.
func (r *Registry) BuildEnd(name string, env Env, spec Spec) (domain.CleanupFunc, error) {
	r.mu.RLock()
	f, ok := r.ends[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("end aspect not found: %s", name)
	}
	return f(env, spec)
}

// HasSetup reports whether a setup aspect is registered under name.
func (r *Registry) HasSetup(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.setups[name]
	return ok
}

// HasEnd reports whether a termination aspect is registered under name.
func (r *Registry) HasEnd(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ends[name]
	return ok
}

// SetupNames lists the registered setup aspects in sorted order.
func (r *Registry) SetupNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.setups))
	for name := range r.setups {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Decode copies args into the struct pointed to by out.
// Durations may be given as strings ("1.5s"); unknown keys are rejected.
func Decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: false,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}
