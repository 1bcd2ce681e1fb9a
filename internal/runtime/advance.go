package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/cstaulbee/quickscope/pkg/flow"
	"github.com/cstaulbee/quickscope/pkg/session"
	"github.com/cstaulbee/quickscope/pkg/slot"
	"github.com/cstaulbee/quickscope/pkg/template"
)

// advanceOnce executes one non-interactive stage and returns the next
// stage id. Interactive stages never reach here; the driver halts on
// them first.
func (e *Engine) advanceOnce(ctx context.Context, fl *flow.Flow, st *session.State, stage *flow.Stage) (string, error) {
	switch stage.Kind {
	case flow.KindMessage:
		if stage.Prompt != "" {
			st.PushBot(e.render(st, stage.Prompt))
		}
		if stage.Next == "" {
			return flow.TerminalStage, nil
		}
		return stage.Next, nil

	case flow.KindGate:
		for i := range stage.Gate.Rules {
			rule := &stage.Gate.Rules[i]
			if rule.When.Eval(st.Slots) {
				st.Trace("gate_matched", map[string]any{
					"stage": stage.ID, "rule": i, "target": rule.Target,
				})
				return rule.Target, nil
			}
		}
		return stage.Gate.Default, nil

	case flow.KindAction:
		return e.invokeAction(ctx, st, stage)

	case flow.KindBranch:
		return e.branch(st, stage), nil

	case flow.KindLoop:
		if stage.Loop.StopCondition.Satisfied(st.Slots) {
			st.Trace("loop_exit", map[string]any{
				"stage": stage.ID, "signal_slot": stage.Loop.StopCondition.SignalSlot,
			})
			return stage.Loop.OnStop, nil
		}
		return stage.Next, nil

	default:
		// Validate rejects unknown kinds at load time.
		return "", fmt.Errorf("stage %q: unexpected kind %q", stage.ID, stage.Kind)
	}
}

// invokeAction runs the stage's named action and routes on the result
// code. A code absent from the route table falls back to Next.
func (e *Engine) invokeAction(ctx context.Context, st *session.State, stage *flow.Stage) (string, error) {
	if e.invoker == nil {
		return "", fmt.Errorf("stage %q: action %q: no invoker configured", stage.ID, stage.Action.Name)
	}

	if e.hooks.OnActionInvoke != nil {
		e.hooks.OnActionInvoke(ctx, &session.ActionEvent{
			Timestamp: time.Now(), SessionID: st.SessionID,
			StageID: stage.ID, Action: stage.Action.Name,
		})
	}

	slots, result, err := e.invoker.Invoke(ctx, stage.Action.Name, st.Slots)

	if e.hooks.OnActionReturn != nil {
		e.hooks.OnActionReturn(ctx, &session.ActionEvent{
			Timestamp: time.Now(), SessionID: st.SessionID,
			StageID: stage.ID, Action: stage.Action.Name,
			Result: result, IsError: err != nil,
		})
	}

	if err != nil {
		return "", fmt.Errorf("stage %q: action %q: %w", stage.ID, stage.Action.Name, err)
	}

	st.Slots = slots
	st.LastActionResult = result
	st.Trace("action_completed", map[string]any{
		"stage": stage.ID, "action": stage.Action.Name, "result": result,
	})

	if target, ok := stage.Action.Routes[result]; ok {
		return target, nil
	}
	return stage.Next, nil
}

// branch routes on an explicit slot value, or on the most recent
// action result code when no slot is declared.
func (e *Engine) branch(st *session.State, stage *flow.Stage) string {
	var key any
	if stage.Branch.Slot != "" {
		key, _ = slot.Lookup(st.Slots, stage.Branch.Slot)
	} else {
		key = st.LastActionResult
	}

	for _, c := range stage.Branch.Cases {
		if flow.ValueEquals(key, c.Equals) {
			return c.Target
		}
	}
	return stage.Branch.Default
}

// render resolves a template against the session slots, logging any
// unresolved references. Gaps degrade to placeholders, never errors.
func (e *Engine) render(st *session.State, tmpl string) string {
	text, gaps := template.RenderWithGaps(tmpl, st.Slots)
	if len(gaps) > 0 {
		e.logger.Warn("template resolution gap",
			"session_id", st.SessionID,
			"stage_id", st.ActiveStageID,
			"paths", gaps,
		)
		st.Trace("template_gap", map[string]any{"paths": gaps})
	}
	return text
}
