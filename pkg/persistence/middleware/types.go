// Package middleware provides composable wrappers around a session
// store: at-rest encryption and PII masking for interview answers.
package middleware

import "github.com/cstaulbee/quickscope/pkg/session"

// Middleware wraps a StateStore to add behavior.
type Middleware func(session.StateStore) session.StateStore

// Chain applies middlewares to a store, first listed outermost.
func Chain(store session.StateStore, mws ...Middleware) session.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
