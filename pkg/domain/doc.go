/*
Package domain contains the contracts shared by every part of tinyfsm.

It defines what a blueprint looks like, the shape of the callbacks a blueprint carries,
and the two capability-restricted views of a running machine that those callbacks
receive. The package is free of runtime logic so that blueprint authors can depend on it
without pulling in the machine core.

# Key Entities

  - Blueprint: Initial state plus, per state, an ordered list of setup callbacks.
  - SetupFunc: Runs on state entry and may hand back a CleanupFunc.
  - CleanupFunc: Runs on state exit, or on machine termination when listed in OnEnd.
  - SetupView / CleanupView: What a callback may do to the machine that invoked it.
  - LifecycleHooks: Observability callbacks fired by machines and managers.
*/
package domain
