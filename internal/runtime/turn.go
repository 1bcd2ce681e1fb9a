package runtime

import (
	"context"
	"strings"

	"github.com/cstaulbee/quickscope/pkg/flow"
	"github.com/cstaulbee/quickscope/pkg/session"
)

// ProcessTurn executes one full turn: ingest the raw input against the
// pending prompt, drive auto-advance to the next halting stage, then
// check the repetition monitor. It returns the successor state and the
// text to show the user.
//
// The input state is never mutated. On a fatal error the returned
// state is the original with only its Err field set, so the session
// stays resumable at its pre-turn stage.
func (e *Engine) ProcessTurn(ctx context.Context, st *session.State, raw string) (*session.State, string, error) {
	fl, err := e.loader.Load(st.FlowID)
	if err != nil {
		return failed(st, err), UserFacingError, err
	}

	work := st.Snapshot()
	work.AutoAdvanceSteps = 0
	work.Err = ""

	if work.Terminated() {
		return work, "", nil
	}

	if work.Pending != nil || raw != "" {
		work.PushUser(raw)
	}
	outputFrom := len(work.Messages)

	if work.Pending != nil {
		halted, err := e.ingest(fl, work, raw)
		if err != nil {
			return failed(st, err), UserFacingError, err
		}
		if halted {
			return work, output(work, outputFrom), nil
		}
	}

	if err := e.drive(ctx, fl, work); err != nil {
		e.logger.Error("turn failed",
			"session_id", st.SessionID,
			"stage_id", st.ActiveStageID,
			"err", err,
		)
		return failed(st, err), UserFacingError, err
	}

	if e.monitor.Stuck(work) {
		e.forceProgress(ctx, fl, work)
	}

	return work, output(work, outputFrom), nil
}

// Pending reports the prompt the session is waiting on, if any.
func (e *Engine) Pending(st *session.State) *session.Pending {
	return st.Pending
}

// forceProgress breaks a stuck interaction: it abandons the repeating
// prompt and advances past its stage as if the user had said "move
// on". One forced advance per turn at most; if driving still fails the
// prior state stands.
func (e *Engine) forceProgress(ctx context.Context, fl *flow.Flow, st *session.State) {
	st.Trace("repetition_break", map[string]any{"stage": st.ActiveStageID})
	e.logger.Warn("repeated prompt detected, forcing progression",
		"session_id", st.SessionID,
		"stage_id", st.ActiveStageID,
	)
	st.PushBot(ForcedAdvanceMessage)

	stage, ok := fl.Stage(st.ActiveStageID)
	if !ok || st.Pending == nil {
		return
	}

	next := stage.Next
	if stage.Kind == flow.KindConfirm {
		next = stage.Confirm.OnYes
	}
	if stage.Kind == flow.KindQuestions {
		st.QuestionCursor[stage.ID] = len(stage.Questions)
	}
	if next == "" {
		next = flow.TerminalStage
	}

	st.Pending = nil
	st.ActiveStageID = next
	if err := e.drive(ctx, fl, st); err != nil {
		e.logger.Error("forced progression failed", "session_id", st.SessionID, "err", err)
	}
}

// failed marks the original state with the turn's error without
// touching anything else.
func failed(st *session.State, err error) *session.State {
	out := st.Snapshot()
	out.Err = err.Error()
	return out
}

// output collects the bot messages pushed since the turn started.
func output(st *session.State, from int) string {
	var parts []string
	for _, msg := range st.Messages[from:] {
		if msg.Role == session.RoleBot {
			parts = append(parts, msg.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
