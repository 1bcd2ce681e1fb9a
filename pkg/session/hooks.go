package session

import (
	"context"
	"time"
)

// StageEvent records entry to or exit from a stage.
type StageEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	StageID   string    `json:"stage_id"`
	StageKind string    `json:"stage_kind"`
}

// ActionEvent records an action invocation.
type ActionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	StageID   string    `json:"stage_id"`
	Action    string    `json:"action"`
	Result    string    `json:"result,omitempty"`
	IsError   bool      `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. All
// fields are optional; nil hooks are skipped. Hooks run synchronously
// inside the turn, so implementations must be fast and must not mutate
// session state.
type LifecycleHooks struct {
	OnStageEnter   func(context.Context, *StageEvent)
	OnStageLeave   func(context.Context, *StageEvent)
	OnActionInvoke func(context.Context, *ActionEvent)
	OnActionReturn func(context.Context, *ActionEvent)
}

// Merge composes two hook sets; both run, h first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStageEnter:   chainStage(h.OnStageEnter, other.OnStageEnter),
		OnStageLeave:   chainStage(h.OnStageLeave, other.OnStageLeave),
		OnActionInvoke: chainAction(h.OnActionInvoke, other.OnActionInvoke),
		OnActionReturn: chainAction(h.OnActionReturn, other.OnActionReturn),
	}
}

func chainStage(a, b func(context.Context, *StageEvent)) func(context.Context, *StageEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *StageEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainAction(a, b func(context.Context, *ActionEvent)) func(context.Context, *ActionEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *ActionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
