/*
Package session owns the mutable per-interview state and the manager
that serializes access to it.

A State is mutated by exactly one sequence per turn (ingest, advance,
render) and is never shared between sessions. The Manager guards each
session with an in-process reference-counted lock and, optionally, a
distributed lock for multi-replica deployments.
*/
package session
