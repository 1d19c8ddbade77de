/*
Package tinyfsm is a small runtime for declarative finite state machines.

A machine is described by a blueprint: a set of named states and, for each state, a list of
setup callbacks that run when the state is entered. A setup callback may return a cleanup
callback that runs when the state is left. Transitions are requested from inside callbacks,
or from external triggers such as timers and signals, and are never nested: a request made
while a transition is in flight is queued and applied once the current one completes.

# Packages

  - pkg/machine: the machine core and its reentrant transition protocol.
  - pkg/idpool: a bounded pool of reusable integer identifiers.
  - pkg/manager: creates and deletes machines bound to pool identifiers, reusing cores.
  - pkg/aspects: reusable setup callbacks (timers, signals, conditions, nested machines).
  - pkg/blueprint: YAML blueprint documents compiled through a pkg/registry of aspects.
  - pkg/loop: serializes timers and external events onto the goroutine owning the machines.

# Usage

The Runtime type wires these together with logging and metrics:

	rt, err := tinyfsm.New(tinyfsm.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	go rt.Run(ctx)

	doc, _ := blueprint.Load("traffic-light.yaml")
	id, err := rt.SpawnDocument(ctx, doc)
	...
	rt.Emit(ctx, "go")

Machines, managers and pools are not safe for concurrent use. Everything that touches them
runs on the Runtime's loop; Spawn, Emit and Delete hand their work to it and wait.
*/
package tinyfsm
