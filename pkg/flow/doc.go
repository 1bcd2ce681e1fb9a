/*
Package flow defines the declarative interview graph: the document
model, the cached loader, and load-time validation.

A flow document (YAML or JSON) declares stages keyed by id. Every
transition target must resolve to an existing stage id or the terminal
marker "end"; that invariant is enforced when the document is loaded,
never at traversal time. Loaded flows are read-only programs: nothing
in this module mutates a Flow after Load returns it.
*/
package flow
