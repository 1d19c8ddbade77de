// Package redis publishes machine lifecycle events to Redis.
//
// Every event is sent as JSON on a pub/sub channel, and the current state of every
// managed machine is mirrored into a hash so that other processes can inspect it.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aretw0/tinyfsm/internal/logging"
	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// Event is the JSON payload published for every lifecycle event.
type Event struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Type      domain.EventType `json:"type"`
	MachineID int              `json:"machine_id"`
	State     string           `json:"state,omitempty"`
}

// Publisher writes lifecycle events to Redis.
type Publisher struct {
	client  *backend.Client
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithPrefix sets the prefix of the channel and hash keys.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// WithTimeout bounds every Redis call made from a hook.
func WithTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		p.timeout = d
	}
}

// WithLogger sets the logger used to report failed writes.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New connects to the Redis server at address.
func New(address, password string, db int, opts ...Option) *Publisher {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a publisher over an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client:  client,
		prefix:  "tinyfsm:",
		timeout: time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Channel is the pub/sub channel events are published on.
func (p *Publisher) Channel() string {
	return p.prefix + "events"
}

func (p *Publisher) statesKey() string {
	return p.prefix + "states"
}

// Ping checks the connection.
func (p *Publisher) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Publish sends one event and updates the state mirror in a single pipeline.
func (p *Publisher) Publish(ctx context.Context, t domain.EventType, machineID int, state string, at time.Time) error {
	data, err := json.Marshal(Event{
		ID:        uuid.NewString(),
		Timestamp: at,
		Type:      t,
		MachineID: machineID,
		State:     state,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	field := strconv.Itoa(machineID)
	pipe := p.client.Pipeline()
	pipe.Publish(ctx, p.Channel(), data)
	switch t {
	case domain.EventStateEnter:
		pipe.HSet(ctx, p.statesKey(), field, state)
	case domain.EventMachineTerminate:
		pipe.HSet(ctx, p.statesKey(), field, "")
	case domain.EventMachineDestroy:
		pipe.HDel(ctx, p.statesKey(), field)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// States returns the mirrored state of every machine, keyed by id.
// Terminated machines that have not been deleted map to "".
func (p *Publisher) States(ctx context.Context) (map[int]string, error) {
	raw, err := p.client.HGetAll(ctx, p.statesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read states: %w", err)
	}
	states := make(map[int]string, len(raw))
	for field, state := range raw {
		id, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		states[id] = state
	}
	return states, nil
}

// Hooks returns lifecycle hooks that publish every event.
// Failures are logged; they never interrupt the machine.
func (p *Publisher) Hooks() domain.LifecycleHooks {
	onState := func(e *domain.StateEvent) {
		p.publish(e.Type, e.MachineID, e.State, e.Timestamp)
	}
	onMachine := func(e *domain.MachineEvent) {
		p.publish(e.Type, e.MachineID, e.State, e.Timestamp)
	}
	return domain.LifecycleHooks{
		OnStateEnter:       onState,
		OnStateExit:        onState,
		OnMachineTerminate: onMachine,
		OnMachineCreate:    onMachine,
		OnMachineDestroy:   onMachine,
	}
}

func (p *Publisher) publish(t domain.EventType, machineID int, state string, at time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.Publish(ctx, t, machineID, state, at); err != nil {
		p.logger.Warn("event not published", "type", t, "machine_id", machineID, "error", err)
	}
}
