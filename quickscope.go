package quickscope

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/cstaulbee/quickscope/internal/adapters/memory"
	"github.com/cstaulbee/quickscope/internal/logging"
	"github.com/cstaulbee/quickscope/internal/runtime"
	"github.com/cstaulbee/quickscope/internal/sanitize"
	"github.com/cstaulbee/quickscope/pkg/actions"
	"github.com/cstaulbee/quickscope/pkg/classify"
	"github.com/cstaulbee/quickscope/pkg/flow"
	"github.com/cstaulbee/quickscope/pkg/ports"
	"github.com/cstaulbee/quickscope/pkg/session"
)

// Version is the release version reported by the CLI.
const Version = "0.1.0"

// Re-exported sentinels, so most consumers only import this package.
var (
	ErrFlowNotFound    = flow.ErrFlowNotFound
	ErrStageNotFound   = flow.ErrStageNotFound
	ErrSessionNotFound = session.ErrSessionNotFound
)

// CycleError reports a turn that exceeded the auto-advance ceiling.
type CycleError = runtime.CycleError

// Monitor holds the repetition monitor tuning.
type Monitor = runtime.Monitor

// Engine is the high-level entry point. It wraps the turn runtime with
// flow loading, session persistence, and per-session locking.
type Engine struct {
	loader  *flow.Loader
	core    *runtime.Engine
	manager *session.Manager
}

type config struct {
	store   session.StateStore
	locker  ports.DistributedLocker
	logger  *slog.Logger
	runtime []runtime.Option
}

// Option configures the Engine.
type Option func(*config)

// WithStateStore sets the session persistence backend.
// Defaults to an in-memory store.
func WithStateStore(store session.StateStore) Option {
	return func(c *config) { c.store = store }
}

// WithLocker enables distributed session locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *config) { c.locker = locker }
}

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithClassifier replaces the heuristic answer classifier.
func WithClassifier(cl classify.Classifier) Option {
	return func(c *config) {
		c.runtime = append(c.runtime, runtime.WithClassifier(cl))
	}
}

// WithActions sets the invoker for action stages. Defaults to the
// built-in registry.
func WithActions(inv ports.ActionInvoker) Option {
	return func(c *config) {
		c.runtime = append(c.runtime, runtime.WithInvoker(inv))
	}
}

// WithStepCeiling overrides the per-turn auto-advance ceiling.
func WithStepCeiling(n int) Option {
	return func(c *config) {
		c.runtime = append(c.runtime, runtime.WithStepCeiling(n))
	}
}

// WithMonitor overrides the repetition monitor tuning.
func WithMonitor(m Monitor) Option {
	return func(c *config) {
		c.runtime = append(c.runtime, runtime.WithMonitor(m))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks session.LifecycleHooks) Option {
	return func(c *config) {
		c.runtime = append(c.runtime, runtime.WithHooks(hooks))
	}
}

// New creates an Engine over the given flow source.
func New(source flow.Source, opts ...Option) *Engine {
	cfg := &config{
		store:  memory.NewStore(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	loader := flow.NewLoader(source)
	core := runtime.New(loader, append([]runtime.Option{
		runtime.WithInvoker(actions.NewRegistry()),
		runtime.WithLogger(cfg.logger),
	}, cfg.runtime...)...)

	managerOpts := []session.ManagerOption{session.WithLogger(cfg.logger)}
	if cfg.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(cfg.locker))
	}

	return &Engine{
		loader:  loader,
		core:    core,
		manager: session.NewManager(cfg.store, managerOpts...),
	}
}

// Turn is the outcome of one processed turn.
type Turn struct {
	SessionID string
	// Output is the text to show the user.
	Output string
	// Pending is the prompt the engine now waits on, nil when the
	// interview is over.
	Pending *session.Pending
	// Done reports that the session reached the terminal stage.
	Done bool
}

// StartSession creates a new session for the flow and runs its opening
// turn, producing the first prompt. The session id is a fresh ULID.
func (e *Engine) StartSession(ctx context.Context, flowID string) (*Turn, error) {
	return e.StartSessionWithID(ctx, flowID, ulid.Make().String())
}

// StartSessionWithID is StartSession with a caller-chosen session id,
// for named sessions that survive process restarts.
func (e *Engine) StartSessionWithID(ctx context.Context, flowID, sessionID string) (*Turn, error) {
	fl, err := e.loader.Load(flowID)
	if err != nil {
		return nil, err
	}
	st := runtime.NewSession(sessionID, fl)

	var turn *Turn
	err = e.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		next, output, err := e.core.ProcessTurn(ctx, st, "")
		if err != nil {
			return err
		}
		if err := e.manager.Store().Save(ctx, sessionID, next); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
		turn = &Turn{
			SessionID: sessionID,
			Output:    output,
			Pending:   next.Pending,
			Done:      next.Terminated(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return turn, nil
}

// ResumeSession re-emits the prompt an existing session is waiting
// on, without consuming a turn.
func (e *Engine) ResumeSession(ctx context.Context, sessionID string) (*Turn, error) {
	st, err := e.manager.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	output := ""
	if st.Pending != nil {
		output = st.Pending.Ask
	}
	return &Turn{
		SessionID: sessionID,
		Output:    output,
		Pending:   st.Pending,
		Done:      st.Terminated(),
	}, nil
}

// ProcessTurn runs one turn of an existing session. Input is sanitized
// before the engine sees it. On a fatal turn error the session is left
// at its pre-turn stage and the returned Turn carries a generic
// user-facing message alongside the error.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, input string) (*Turn, error) {
	clean, err := sanitize.Input(input)
	if err != nil {
		return nil, err
	}

	var turn *Turn
	var turnErr error
	err = e.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		st, err := e.manager.Store().Load(ctx, sessionID)
		if err != nil {
			return err
		}

		next, output, procErr := e.core.ProcessTurn(ctx, st, clean)
		// The failed state (unchanged stage, error recorded) is
		// persisted too, so operators can inspect it.
		if err := e.manager.Store().Save(ctx, sessionID, next); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}

		turn = &Turn{
			SessionID: sessionID,
			Output:    output,
			Pending:   next.Pending,
			Done:      next.Terminated(),
		}
		turnErr = procErr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return turn, turnErr
}

// Pending reports the prompt a session is waiting on, nil when the
// interview is complete.
func (e *Engine) Pending(ctx context.Context, sessionID string) (*session.Pending, error) {
	st, err := e.manager.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return st.Pending, nil
}

// State returns a copy of the full session state.
func (e *Engine) State(ctx context.Context, sessionID string) (*session.State, error) {
	return e.manager.Load(ctx, sessionID)
}

// Sessions lists the known session ids.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.manager.List(ctx)
}

// DeleteSession removes a session from the store.
func (e *Engine) DeleteSession(ctx context.Context, sessionID string) error {
	return e.manager.Delete(ctx, sessionID)
}

// Flows lists the flow ids available from the source.
func (e *Engine) Flows() ([]string, error) {
	return e.loader.List()
}

// Validate loads and validates a flow without starting a session.
func (e *Engine) Validate(flowID string) error {
	_, err := e.loader.Load(flowID)
	return err
}

// Loader exposes the underlying flow loader.
func (e *Engine) Loader() *flow.Loader {
	return e.loader
}
