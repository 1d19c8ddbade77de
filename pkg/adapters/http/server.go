// Package http exposes a machine manager over a small JSON API.
//
// The manager is single-threaded, so every handler hands its work to an Executor
// (normally a loop.Loop) that runs it on the goroutine owning the manager.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/tinyfsm/internal/logging"
	"github.com/aretw0/tinyfsm/pkg/aspects"
	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/aretw0/tinyfsm/pkg/manager"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Executor runs fn on the goroutine that owns the manager and returns its error.
type Executor interface {
	Call(ctx context.Context, fn func() error) error
}

// BlueprintFactory builds the blueprint for each machine created through the API.
type BlueprintFactory func() (*domain.Blueprint, error)

// MachineView is the JSON representation of a managed machine.
type MachineView struct {
	ID      int    `json:"id"`
	State   string `json:"state"`
	Running bool   `json:"running"`
}

// ListResponse is returned by GET /machines.
type ListResponse struct {
	Machines  []MachineView `json:"machines"`
	Capacity  int           `json:"capacity"`
	Remaining int           `json:"remaining"`
}

// TransitionRequest is the body of POST /machines/{id}/transition.
type TransitionRequest struct {
	State string `json:"state"`
}

// SignalResponse is returned by POST /signals/{name}.
type SignalResponse struct {
	Signal    string `json:"signal"`
	Listeners int    `json:"listeners"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server handles API requests.
type Server struct {
	mgr      *manager.Manager
	exec     Executor
	build    BlueprintFactory
	signals  *aspects.Signals
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithSignals enables POST /signals/{name}.
func WithSignals(bus *aspects.Signals) Option {
	return func(s *Server) {
		s.signals = bus
	}
}

// WithMetrics serves the gatherer's metrics on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates the HTTP handler for mgr.
func NewHandler(mgr *manager.Manager, exec Executor, build BlueprintFactory, opts ...Option) http.Handler {
	s := &Server{
		mgr:    mgr,
		exec:   exec,
		build:  build,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.Health)
	r.Route("/machines", func(r chi.Router) {
		r.Get("/", s.ListMachines)
		r.Post("/", s.CreateMachine)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetMachine)
			r.Delete("/", s.DeleteMachine)
			r.Post("/transition", s.Transition)
		})
	})
	if s.signals != nil {
		r.Post("/signals/{name}", s.Signal)
	}
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListMachines handles GET /machines.
func (s *Server) ListMachines(w http.ResponseWriter, r *http.Request) {
	var resp ListResponse
	err := s.exec.Call(r.Context(), func() error {
		resp.Machines = make([]MachineView, 0, s.mgr.Len())
		for _, h := range s.mgr.Machines() {
			resp.Machines = append(resp.Machines, view(h))
		}
		resp.Capacity = s.mgr.Pool().Capacity()
		resp.Remaining = s.mgr.Pool().RemainingCapacity()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// CreateMachine handles POST /machines.
func (s *Server) CreateMachine(w http.ResponseWriter, r *http.Request) {
	var resp MachineView
	err := s.exec.Call(r.Context(), func() error {
		bp, err := s.build()
		if err != nil {
			return err
		}
		id, err := s.mgr.CreateMachine(bp)
		if err != nil {
			return err
		}
		// The initial state may already have deleted its own machine.
		if h, ok := s.mgr.Get(id); ok {
			resp = view(h)
		} else {
			resp = MachineView{ID: id}
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

// GetMachine handles GET /machines/{id}.
func (s *Server) GetMachine(w http.ResponseWriter, r *http.Request) {
	id, ok := s.machineID(w, r)
	if !ok {
		return
	}
	var resp MachineView
	err := s.exec.Call(r.Context(), func() error {
		h, ok := s.mgr.Get(id)
		if !ok {
			return domain.ErrUnknownID
		}
		resp = view(h)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// DeleteMachine handles DELETE /machines/{id}.
func (s *Server) DeleteMachine(w http.ResponseWriter, r *http.Request) {
	id, ok := s.machineID(w, r)
	if !ok {
		return
	}
	if err := s.exec.Call(r.Context(), func() error { return s.mgr.DeleteMachine(id) }); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Transition handles POST /machines/{id}/transition.
func (s *Server) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := s.machineID(w, r)
	if !ok {
		return
	}
	var body TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.State == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be {\"state\": \"<target>\"}"})
		return
	}

	var resp MachineView
	err := s.exec.Call(r.Context(), func() error {
		h, ok := s.mgr.Get(id)
		if !ok {
			return domain.ErrUnknownID
		}
		if err := h.RequestTransition(body.State); err != nil {
			return err
		}
		resp = view(h)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Signal handles POST /signals/{name}.
func (s *Server) Signal(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	resp := SignalResponse{Signal: name}
	err := s.exec.Call(r.Context(), func() error {
		resp.Listeners = s.signals.Emit(name)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) machineID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "machine id must be an integer"})
		return 0, false
	}
	return id, true
}

func view(h manager.Handle) MachineView {
	return MachineView{ID: h.ID(), State: h.State(), Running: h.IsRunning()}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownID):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPoolExhausted):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidBlueprint), errors.Is(err, domain.ErrUnknownState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotRunning):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
