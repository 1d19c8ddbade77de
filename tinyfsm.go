package tinyfsm

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/tinyfsm/internal/logging"
	"github.com/aretw0/tinyfsm/pkg/aspects"
	"github.com/aretw0/tinyfsm/pkg/blueprint"
	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/aretw0/tinyfsm/pkg/idpool"
	"github.com/aretw0/tinyfsm/pkg/loop"
	"github.com/aretw0/tinyfsm/pkg/manager"
	"github.com/aretw0/tinyfsm/pkg/metrics"
	"github.com/aretw0/tinyfsm/pkg/registry"
)

// Version is the release version, overridden at build time with -ldflags.
var Version = "0.1.0-dev"

// Runtime owns a manager and the loop that serializes access to it.
type Runtime struct {
	manager  *manager.Manager
	loop     *loop.Loop
	signals  *aspects.Signals
	registry *registry.Registry
	metrics  *metrics.Collector

	hooks           []domain.LifecycleHooks
	capacity        int
	initialContexts int
	out             io.Writer
	logger          *slog.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger shared by the runtime, its loop and its machines.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. It may be given several times;
// hooks run in registration order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runtime) {
		r.hooks = append(r.hooks, hooks)
	}
}

// WithMetrics feeds lifecycle events into c.
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Runtime) {
		r.metrics = c
	}
}

// WithCapacity bounds the number of simultaneously existing machines.
// The default is idpool.DefaultCapacity.
func WithCapacity(n int) Option {
	return func(r *Runtime) {
		r.capacity = n
	}
}

// WithInitialContexts preallocates n machine cores.
func WithInitialContexts(n int) Option {
	return func(r *Runtime) {
		r.initialContexts = n
	}
}

// WithRegistry replaces the built-in aspect registry used to compile documents.
func WithRegistry(reg *registry.Registry) Option {
	return func(r *Runtime) {
		r.registry = reg
	}
}

// WithOutput sets where printing aspects write. The default discards output.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.out = w
	}
}

// New creates a Runtime. Nothing runs until Run is called.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		capacity: idpool.DefaultCapacity,
		out:      io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	if r.registry == nil {
		r.registry = registry.Builtin()
	}

	pool, err := idpool.New(r.capacity)
	if err != nil {
		return nil, err
	}

	hooks := r.hooks
	if r.metrics != nil {
		hooks = append(hooks, r.metrics.Hooks())
	}

	r.manager, err = manager.New(
		manager.WithIDPool(pool),
		manager.WithInitialContexts(r.initialContexts),
		manager.WithLogger(r.logger),
		manager.WithHooks(domain.MergeHooks(hooks...)),
	)
	if err != nil {
		return nil, err
	}

	r.loop = loop.New(loop.WithLogger(r.logger))
	r.signals = aspects.NewSignals()
	return r, nil
}

// Run processes timers and submitted work until ctx is cancelled or Close is called.
func (r *Runtime) Run(ctx context.Context) error {
	return r.loop.Run(ctx)
}

// Close stops Run.
func (r *Runtime) Close() {
	r.loop.Close()
}

// Env returns the resources aspects are built with.
func (r *Runtime) Env() registry.Env {
	return registry.Env{
		Scheduler: r.loop,
		Signals:   r.signals,
		Logger:    r.logger,
		Out:       r.out,
	}
}

// Compile turns a document into a blueprint bound to this runtime's timers and signals.
func (r *Runtime) Compile(doc *blueprint.Document) (*domain.Blueprint, error) {
	return doc.Compile(r.registry, r.Env())
}

// Spawn creates a machine running bp and returns its identifier.
func (r *Runtime) Spawn(ctx context.Context, bp *domain.Blueprint) (int, error) {
	id := domain.NoID
	err := r.loop.Call(ctx, func() error {
		var err error
		id, err = r.manager.CreateMachine(bp)
		return err
	})
	return id, err
}

// SpawnDocument compiles doc and spawns a machine running it.
func (r *Runtime) SpawnDocument(ctx context.Context, doc *blueprint.Document) (int, error) {
	bp, err := r.Compile(doc)
	if err != nil {
		return domain.NoID, err
	}
	return r.Spawn(ctx, bp)
}

// Delete terminates and removes the machine with the given identifier.
func (r *Runtime) Delete(ctx context.Context, id int) error {
	return r.loop.Call(ctx, func() error {
		return r.manager.DeleteMachine(id)
	})
}

// Emit raises a signal and reports how many handlers ran.
func (r *Runtime) Emit(ctx context.Context, signal string) (int, error) {
	n := 0
	err := r.loop.Call(ctx, func() error {
		n = r.signals.Emit(signal)
		return nil
	})
	return n, err
}

// Inspect runs fn on the loop with read access to the manager.
func (r *Runtime) Inspect(ctx context.Context, fn func(m *manager.Manager) error) error {
	return r.loop.Call(ctx, func() error {
		return fn(r.manager)
	})
}

// Manager returns the underlying manager. It must only be used from the loop,
// e.g. inside Inspect or an aspect.
func (r *Runtime) Manager() *manager.Manager { return r.manager }

// Loop returns the runtime's loop.
func (r *Runtime) Loop() *loop.Loop { return r.loop }

// Signals returns the signal bus shared by compiled blueprints.
func (r *Runtime) Signals() *aspects.Signals { return r.signals }
