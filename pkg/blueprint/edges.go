package blueprint

import (
	"fmt"
	"slices"

	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/aretw0/tinyfsm/pkg/registry"
)

// Edge is a transition declared statically by an aspect's target argument.
type Edge struct {
	From   string
	To     string
	Aspect string
	// Detail summarizes what triggers the edge, e.g. the signal name or delay.
	Detail string
}

// Edges lists the statically known transitions, ordered by source state.
// Aspects that pick their target at runtime do not appear.
func (d *Document) Edges() []Edge {
	var edges []Edge
	for _, state := range d.StateNames() {
		for _, a := range d.States[state] {
			to, ok := a.With[registry.TargetKey].(string)
			if !ok || to == "" {
				continue
			}
			edges = append(edges, Edge{From: state, To: to, Aspect: a.Use, Detail: detail(a)})
		}
	}
	return edges
}

// Unreachable lists states that no static edge leads to from the initial state.
func (d *Document) Unreachable() []string {
	adj := make(map[string][]string)
	for _, e := range d.Edges() {
		adj[e.From] = append(adj[e.From], e.To)
	}

	visited := map[string]bool{d.Initial: true}
	queue := []string{d.Initial}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adj[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var out []string
	for _, name := range d.StateNames() {
		if !visited[name] {
			out = append(out, name)
		}
	}
	return out
}

// Terminates reports whether any static edge leads to the terminal state.
func (d *Document) Terminates() bool {
	return slices.ContainsFunc(d.Edges(), func(e Edge) bool { return e.To == domain.StateEnd })
}

func detail(a AspectSpec) string {
	if s, ok := a.With["signal"]; ok {
		return fmt.Sprintf("%v", s)
	}
	if s, ok := a.With["delay"]; ok {
		return fmt.Sprintf("after %v", s)
	}
	return ""
}
