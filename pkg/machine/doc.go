/*
Package machine implements the machine core: it runs one blueprint at a time, one state at
a time, and owns the reentrant transition protocol.

Every callback runs synchronously on the caller's goroutine before the triggering call
returns. Callbacks may call back into the machine through the view they were given:

  - A transition requested while another transition is in flight is deferred until the
    in-flight exit and entry phases have completed. Only the first such request is kept.
  - Cleanup callbacks run in the order their setup callbacks ran, never reversed.
  - Terminate from inside a phase ends the machine immediately; the interrupted phase
    does not resume, but every collected cleanup still runs exactly once.

A Machine is not safe for concurrent use. Hosts with several goroutines should funnel all
calls through a single goroutine (see package loop).
*/
package machine
