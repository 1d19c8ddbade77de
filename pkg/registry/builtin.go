package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/tinyfsm/pkg/aspects"
	"github.com/aretw0/tinyfsm/pkg/domain"
)

// Names of the built-in aspects.
const (
	AspectTransitionAfter    = "transition_after"
	AspectTransitionOnSignal = "transition_on_signal"
	AspectTransitionOnEnter  = "transition_on_enter"
	AspectLog                = "log"
	AspectPrint              = "print"
)

// TargetKey is the argument every transition aspect uses for its target state.
const TargetKey = "to"

var (
	errNoScheduler = errors.New("no scheduler configured")
	errNoSignals   = errors.New("no signal bus configured")
)

type transitionAfterArgs struct {
	Delay time.Duration `mapstructure:"delay"`
	To    string        `mapstructure:"to"`
}

type transitionOnSignalArgs struct {
	Signal string `mapstructure:"signal"`
	To     string `mapstructure:"to"`
}

type transitionOnEnterArgs struct {
	To string `mapstructure:"to"`
}

type messageArgs struct {
	Message string `mapstructure:"message"`
}

// Builtin returns a registry holding the built-in aspects.
func Builtin() *Registry {
	r := NewRegistry()

	r.RegisterSetup(AspectTransitionAfter, func(env Env, spec Spec) (domain.SetupFunc, error) {
		var args transitionAfterArgs
		if err := Decode(spec.Args, &args); err != nil {
			return nil, err
		}
		if env.Scheduler == nil {
			return nil, errNoScheduler
		}
		if args.Delay <= 0 || args.To == "" {
			return nil, fmt.Errorf("%s needs a positive delay and a target", AspectTransitionAfter)
		}
		return aspects.TransitionAfter(env.Scheduler, args.Delay, args.To), nil
	})

	r.RegisterSetup(AspectTransitionOnSignal, func(env Env, spec Spec) (domain.SetupFunc, error) {
		var args transitionOnSignalArgs
		if err := Decode(spec.Args, &args); err != nil {
			return nil, err
		}
		if env.Signals == nil {
			return nil, errNoSignals
		}
		if args.Signal == "" || args.To == "" {
			return nil, fmt.Errorf("%s needs a signal and a target", AspectTransitionOnSignal)
		}
		return aspects.TransitionOnSignal(env.Signals, args.Signal, args.To), nil
	})

	r.RegisterSetup(AspectTransitionOnEnter, func(env Env, spec Spec) (domain.SetupFunc, error) {
		var args transitionOnEnterArgs
		if err := Decode(spec.Args, &args); err != nil {
			return nil, err
		}
		if args.To == "" {
			return nil, fmt.Errorf("%s needs a target", AspectTransitionOnEnter)
		}
		return aspects.TransitionOnEnter(args.To), nil
	})

	r.RegisterSetup(AspectLog, func(env Env, spec Spec) (domain.SetupFunc, error) {
		var args messageArgs
		if err := Decode(spec.Args, &args); err != nil {
			return nil, err
		}
		return aspects.OnEnter(func(m domain.SetupView) {
			if env.Logger != nil {
				env.Logger.Info(args.Message, "state", spec.State, "aux", m.AuxData())
			}
		}), nil
	})

	r.RegisterSetup(AspectPrint, func(env Env, spec Spec) (domain.SetupFunc, error) {
		var args messageArgs
		if err := Decode(spec.Args, &args); err != nil {
			return nil, err
		}
		return aspects.OnEnter(func(domain.SetupView) {
			if env.Out != nil {
				fmt.Fprintln(env.Out, args.Message)
			}
		}), nil
	})

	r.RegisterEnd(AspectLog, func(env Env, spec Spec) (domain.CleanupFunc, error) {
		var args messageArgs
		if err := Decode(spec.Args, &args); err != nil {
			return nil, err
		}
		return func(m domain.CleanupView) {
			if env.Logger != nil {
				env.Logger.Info(args.Message, "aux", m.AuxData())
			}
		}, nil
	})

	r.RegisterEnd(AspectPrint, func(env Env, spec Spec) (domain.CleanupFunc, error) {
		var args messageArgs
		if err := Decode(spec.Args, &args); err != nil {
			return nil, err
		}
		return func(domain.CleanupView) {
			if env.Out != nil {
				fmt.Fprintln(env.Out, args.Message)
			}
		}, nil
	})

	return r
}
