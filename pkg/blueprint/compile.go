package blueprint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/aretw0/tinyfsm/pkg/registry"
)

// Validate checks the document against reg without building any aspect.
// All problems are reported together.
func (d *Document) Validate(reg *registry.Registry) error {
	var problems []string

	if d.Initial == "" {
		problems = append(problems, "initial state is required")
	} else if _, ok := d.States[d.Initial]; !ok {
		problems = append(problems, fmt.Sprintf("initial state '%s' is not declared", d.Initial))
	}
	if _, ok := d.States[domain.StateEnd]; ok {
		problems = append(problems, fmt.Sprintf("'%s' is reserved and cannot be declared as a state", domain.StateEnd))
	}

	for _, state := range d.StateNames() {
		for i, a := range d.States[state] {
			if !reg.HasSetup(a.Use) {
				problems = append(problems, fmt.Sprintf("state '%s' aspect #%d: unknown aspect '%s'", state, i+1, a.Use))
			}
		}
	}
	for i, a := range d.OnEnd {
		if !reg.HasEnd(a.Use) {
			problems = append(problems, fmt.Sprintf("on_end aspect #%d: unknown aspect '%s'", i+1, a.Use))
		}
	}

	for _, e := range d.Edges() {
		if e.To == domain.StateEnd {
			continue
		}
		if _, ok := d.States[e.To]; !ok {
			problems = append(problems, fmt.Sprintf("state '%s' (%s): target '%s' is not declared", e.From, e.Aspect, e.To))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: found %d errors:\n- %s", domain.ErrInvalidBlueprint, len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}

// Compile validates the document and builds a runnable blueprint.
func (d *Document) Compile(reg *registry.Registry, env registry.Env) (*domain.Blueprint, error) {
	if err := d.Validate(reg); err != nil {
		return nil, err
	}

	bp := &domain.Blueprint{
		InitState: d.Initial,
		States:    make(map[string][]domain.SetupFunc, len(d.States)),
	}

	var errs []error
	for state, specs := range d.States {
		setups := make([]domain.SetupFunc, 0, len(specs))
		for i, a := range specs {
			fn, err := reg.BuildSetup(a.Use, env, registry.Spec{State: state, Args: a.With})
			if err != nil {
				errs = append(errs, fmt.Errorf("state '%s' aspect #%d (%s): %w", state, i+1, a.Use, err))
				continue
			}
			setups = append(setups, fn)
		}
		bp.States[state] = setups
	}

	for i, a := range d.OnEnd {
		fn, err := reg.BuildEnd(a.Use, env, registry.Spec{Args: a.With})
		if err != nil {
			errs = append(errs, fmt.Errorf("on_end aspect #%d (%s): %w", i+1, a.Use, err))
			continue
		}
		bp.OnEnd = append(bp.OnEnd, fn)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidBlueprint, errors.Join(errs...))
	}
	return bp, nil
}
