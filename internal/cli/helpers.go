package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/cstaulbee/quickscope/internal/logging"
	"github.com/cstaulbee/quickscope/pkg/session"
)

// SignalContext wraps a context and captures the signal that cancelled
// it, so completion messages can tell Ctrl+C from SIGTERM.
type SignalContext struct {
	context.Context
	Cancel func()

	mu     sync.Mutex
	sigCh  chan os.Signal
	sigVal os.Signal
}

// NewSignalContext creates a context cancelled on SIGINT or SIGTERM.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sc.sigCh)
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
	}()

	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the CLI logger. Debug logs go to stderr so
// they never interleave with the interview on stdout.
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system line to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) session.LifecycleHooks {
	return session.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *session.StageEvent) {
			logger.Debug("enter stage", "stage_id", e.StageID, "kind", e.StageKind)
		},
		OnStageLeave: func(ctx context.Context, e *session.StageEvent) {
			logger.Debug("leave stage", "stage_id", e.StageID)
		},
		OnActionInvoke: func(ctx context.Context, e *session.ActionEvent) {
			logger.Debug("invoke action", "action", e.Action)
		},
		OnActionReturn: func(ctx context.Context, e *session.ActionEvent) {
			if e.IsError {
				logger.Debug("action failed", "action", e.Action)
				return
			}
			logger.Debug("action returned", "action", e.Action, "result", e.Result)
		},
	}
}

// InterruptibleReader wraps a blocking reader (os.Stdin) and surfaces
// cancellation around each Read.
type InterruptibleReader struct {
	base   io.Reader
	cancel <-chan struct{}
}

func NewInterruptibleReader(base io.Reader, cancel <-chan struct{}) *InterruptibleReader {
	return &InterruptibleReader{base: base, cancel: cancel}
}

func (r *InterruptibleReader) Read(p []byte) (int, error) {
	select {
	case <-r.cancel:
		return 0, errors.New("interrupted")
	default:
	}

	n, err := r.base.Read(p)

	select {
	case <-r.cancel:
		return 0, errors.New("interrupted")
	default:
	}
	return n, err
}

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF) ||
		err.Error() == "interrupted" ||
		(errors.Unwrap(err) != nil && isInterrupted(errors.Unwrap(err)))
}

// handleExecutionError converts user interruptions into clean exits.
func handleExecutionError(err error) error {
	if isInterrupted(err) {
		return nil
	}
	return err
}
