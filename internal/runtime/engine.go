// Package runtime implements the turn pipeline: answer ingestion with
// clarification, the stage advancer, the bounded auto-advance driver,
// and the repetition monitor.
package runtime

import (
	"log/slog"

	"github.com/cstaulbee/quickscope/internal/logging"
	"github.com/cstaulbee/quickscope/pkg/classify"
	"github.com/cstaulbee/quickscope/pkg/flow"
	"github.com/cstaulbee/quickscope/pkg/ports"
	"github.com/cstaulbee/quickscope/pkg/session"
	"github.com/cstaulbee/quickscope/pkg/slot"
)

// DefaultStepCeiling bounds auto-advance steps within one turn.
const DefaultStepCeiling = 50

// ForcedAdvanceMessage is emitted when the repetition monitor breaks a
// stuck interaction pattern.
const ForcedAdvanceMessage = "Thanks — moving on."

// Engine executes interview turns against loaded flows. It is
// stateless between turns; all session data lives in session.State.
type Engine struct {
	loader     *flow.Loader
	classifier classify.Classifier
	invoker    ports.ActionInvoker
	logger     *slog.Logger
	ceiling    int
	monitor    Monitor
	hooks      session.LifecycleHooks
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithClassifier replaces the heuristic answer classifier.
func WithClassifier(c classify.Classifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// WithInvoker sets the action invoker used by action stages.
func WithInvoker(inv ports.ActionInvoker) Option {
	return func(e *Engine) { e.invoker = inv }
}

// WithStepCeiling overrides the per-turn auto-advance ceiling.
func WithStepCeiling(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.ceiling = n
		}
	}
}

// WithMonitor overrides the repetition monitor parameters.
func WithMonitor(m Monitor) Option {
	return func(e *Engine) { e.monitor = m }
}

// WithHooks installs lifecycle callbacks. Repeated options compose;
// every registered hook set runs.
func WithHooks(hooks session.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = e.hooks.Merge(hooks) }
}

// New creates an Engine over the given flow loader.
func New(loader *flow.Loader, opts ...Option) *Engine {
	e := &Engine{
		loader:     loader,
		classifier: classify.NewHeuristic(),
		logger:     logging.NewNop(),
		ceiling:    DefaultStepCeiling,
		monitor:    DefaultMonitor(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Loader exposes the engine's flow loader.
func (e *Engine) Loader() *flow.Loader {
	return e.loader
}

// NewSession creates a session positioned at the flow's start stage,
// with the flow's declared initial slots seeded.
func NewSession(sessionID string, fl *flow.Flow) *session.State {
	st := session.New(sessionID, fl.ID, fl.Start)
	if len(fl.InitialSlots) > 0 {
		st.Slots = slot.Clone(fl.InitialSlots)
	}
	return st
}
