package ports

import (
	"context"

	"github.com/cstaulbee/quickscope/pkg/slot"
)

// ActionInvoker executes the named external action functions referenced
// by action stages. An action is a pure function of the slot store: it
// returns the updated store plus a result code that the stage maps to a
// transition target. The engine treats invocations as synchronous black
// boxes and contracts only on the result code.
type ActionInvoker interface {
	Invoke(ctx context.Context, name string, slots slot.Store) (slot.Store, string, error)
}

// ActionFunc adapts a plain function to ActionInvoker.
type ActionFunc func(ctx context.Context, name string, slots slot.Store) (slot.Store, string, error)

func (f ActionFunc) Invoke(ctx context.Context, name string, slots slot.Store) (slot.Store, string, error) {
	return f(ctx, name, slots)
}
