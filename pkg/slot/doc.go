/*
Package slot implements the nested answer store for interview sessions.

A Store is a plain nested mapping (maps and slices of any), addressed by
dotted paths with optional list indices:

	engagement.process_name
	workflows.maps[0].trigger
	workflows.selected[]        (append marker: push a new last element)

Writes create missing intermediate containers on demand and never destroy
sibling keys. A write fails only when an intermediate segment already holds
a scalar where a container is required; that is reported as a ConflictError
and is never silently coerced.
*/
package slot
