package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/cstaulbee/quickscope/pkg/flow"
	"github.com/cstaulbee/quickscope/pkg/session"
)

// drive advances through non-interactive stages until it reaches a
// stage requiring input, the terminal marker, or the step ceiling.
func (e *Engine) drive(ctx context.Context, fl *flow.Flow, st *session.State) error {
	for {
		if st.ActiveStageID == flow.TerminalStage {
			// An explicit end stage customizes the closing prompt.
			if end, ok := fl.Stage(flow.TerminalStage); ok && end.Prompt != "" {
				st.PushBot(e.render(st, end.Prompt))
			}
			st.Pending = nil
			st.Trace("flow_completed", map[string]any{"flow": fl.ID})
			return nil
		}

		stage, ok := fl.Stage(st.ActiveStageID)
		if !ok {
			return fmt.Errorf("flow %q: stage %q: %w", fl.ID, st.ActiveStageID, flow.ErrStageNotFound)
		}

		if stage.Interactive() {
			halted, err := e.emitPending(st, stage)
			if err != nil {
				return err
			}
			if halted {
				return nil
			}
			// All prompts of the stage are answered; advancing
			// past it counts as a step like any other. The cursor
			// resets so a later re-entry asks afresh.
			if err := e.step(st, stage); err != nil {
				return err
			}
			delete(st.QuestionCursor, stage.ID)
			e.enter(ctx, st, stage, stage.Next)
			continue
		}

		if err := e.step(st, stage); err != nil {
			return err
		}
		next, err := e.advanceOnce(ctx, fl, st, stage)
		if err != nil {
			return err
		}
		e.enter(ctx, st, stage, next)
	}
}

// step counts one driver advance against the per-turn ceiling.
func (e *Engine) step(st *session.State, stage *flow.Stage) error {
	st.AutoAdvanceSteps++
	if st.AutoAdvanceSteps > e.ceiling {
		return &CycleError{StageID: stage.ID, Steps: e.ceiling}
	}
	return nil
}

// enter fires leave/enter hooks and moves the session to the next
// stage. An empty target means the flow fell off its last stage, which
// is treated as completion.
func (e *Engine) enter(ctx context.Context, st *session.State, from *flow.Stage, next string) {
	if next == "" {
		next = flow.TerminalStage
	}

	if e.hooks.OnStageLeave != nil {
		e.hooks.OnStageLeave(ctx, &session.StageEvent{
			Timestamp: time.Now(), SessionID: st.SessionID,
			StageID: from.ID, StageKind: string(from.Kind),
		})
	}

	st.Trace("stage_advanced", map[string]any{"from": from.ID, "to": next})
	st.ActiveStageID = next

	if e.hooks.OnStageEnter != nil && next != flow.TerminalStage {
		e.hooks.OnStageEnter(ctx, &session.StageEvent{
			Timestamp: time.Now(), SessionID: st.SessionID,
			StageID: next,
		})
	}
}

// emitPending builds the pending descriptor for an interactive stage
// and pushes its prompt. It reports halted=false when every prompt of
// the stage is already answered.
func (e *Engine) emitPending(st *session.State, stage *flow.Stage) (bool, error) {
	switch stage.Kind {
	case flow.KindQuestions:
		idx := st.QuestionCursor[stage.ID]
		if idx >= len(stage.Questions) {
			return false, nil
		}
		q := stage.Questions[idx]
		ask := e.render(st, q.Ask)
		st.Pending = &session.Pending{
			StageID:       stage.ID,
			QuestionID:    q.ID,
			QuestionIndex: idx,
			SaveTo:        q.SaveTo,
			Ask:           ask,
		}
		st.PushBot(ask)
		return true, nil

	case flow.KindConfirm:
		ask := e.render(st, stage.Confirm.Ask)
		prompt := ask
		if stage.Confirm.SummaryTemplate != "" {
			prompt = e.render(st, stage.Confirm.SummaryTemplate) + "\n\n" + ask
		}
		st.Pending = &session.Pending{
			StageID: stage.ID,
			Ask:     ask,
		}
		st.PushBot(prompt)
		return true, nil

	default:
		return false, fmt.Errorf("stage %q: kind %q is not interactive", stage.ID, stage.Kind)
	}
}
