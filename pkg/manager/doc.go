/*
Package manager multiplexes many state machines over a reusable set of machine cores.

Each machine is addressed by an identifier issued by an idpool.Pool. Deleting a machine
terminates it, parks its core on a free list for the next CreateMachine, and returns its
identifier to the pool. Identifier uniqueness is guaranteed by the pool independently of
core reuse.

Like the machines it drives, a Manager is not safe for concurrent use.
*/
package manager
