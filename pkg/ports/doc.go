/*
Package ports defines the driven ports (interfaces) for the quickscope
engine.

These interfaces decouple the core from external implementations:
distributed locking across replicas and the external action functions
invoked by action stages. The session persistence interface lives in
pkg/session next to its Manager, and the flow document source interface
lives in pkg/flow next to its loader.
*/
package ports
