// Package actions provides the built-in deterministic action functions
// invoked by action stages, plus a registry for custom ones.
//
// Actions are pure functions of the slot store. They never prompt the
// user and never call external services; every outcome is derived from
// the slots alone, so replaying a transcript reproduces the same
// results.
package actions

import (
	"context"
	"fmt"
	"sync"

	"github.com/cstaulbee/quickscope/pkg/slot"
)

// ResultOK is the result code returned by actions that have a single
// outcome.
const ResultOK = "ok"

// Func is the signature for a registered action. It receives the
// current slot store and returns the updated store plus a result code.
// The store passed in is a private copy; mutating it is safe.
type Func func(ctx context.Context, slots slot.Store) (slot.Store, string, error)

// Registry maps action names to implementations. It satisfies the
// engine's ActionInvoker port.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Func
}

// NewRegistry creates a registry preloaded with the built-in actions.
func NewRegistry() *Registry {
	r := &Registry{actions: make(map[string]Func)}
	registerBuiltins(r)
	return r
}

// Register adds an action to the registry.
// If an action with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = fn
}

// Names returns the registered action names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	return names
}

// Invoke looks up an action by name and executes it against a deep
// copy of the slots, so a failing action never leaves partial writes
// behind.
func (r *Registry) Invoke(ctx context.Context, name string, slots slot.Store) (slot.Store, string, error) {
	r.mu.RLock()
	fn, ok := r.actions[name]
	r.mu.RUnlock()

	if !ok {
		return slots, "", fmt.Errorf("action not found: %s", name)
	}

	return fn(ctx, slot.Clone(slots))
}
