/*
Package idpool manages a bounded pool of reusable integer identifiers.

Identifiers are drawn from a circular free list. Released identifiers go to the back of
the list, so the identifier handed out next is always the one that has been free the
longest. Spreading reuse across the whole range keeps collaborators that briefly cache an
identifier from mistaking a new owner for the old one.

Pools are not generational and not safe for concurrent use.
*/
package idpool
