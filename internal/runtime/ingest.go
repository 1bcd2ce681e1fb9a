package runtime

import (
	"fmt"
	"strings"

	"github.com/cstaulbee/quickscope/pkg/classify"
	"github.com/cstaulbee/quickscope/pkg/flow"
	"github.com/cstaulbee/quickscope/pkg/session"
	"github.com/cstaulbee/quickscope/pkg/slot"
)

// clarifySeparator joins an original answer with its clarification
// before the combined value is written.
const clarifySeparator = "\n"

// ingest commits a submitted answer against the pending prompt. It
// reports halted=true when a clarification follow-up was emitted and
// the turn must end without driving further.
func (e *Engine) ingest(fl *flow.Flow, st *session.State, raw string) (bool, error) {
	pending := st.Pending
	stage, ok := fl.Stage(pending.StageID)
	if !ok {
		return false, fmt.Errorf("flow %q: stage %q: %w", fl.ID, pending.StageID, flow.ErrStageNotFound)
	}

	switch stage.Kind {
	case flow.KindQuestions:
		return e.ingestQuestion(st, stage, raw)
	case flow.KindConfirm:
		return e.ingestConfirm(st, stage, raw)
	default:
		return false, fmt.Errorf("stage %q: pending on non-interactive kind %q", stage.ID, stage.Kind)
	}
}

// ingestQuestion runs the clarification check, then writes the answer
// and advances the question cursor. Clarification never recurses: once
// one follow-up has been asked for this question instance, the next
// answer is combined with the held one and committed as-is.
func (e *Engine) ingestQuestion(st *session.State, stage *flow.Stage, raw string) (bool, error) {
	pending := st.Pending
	if pending.QuestionIndex >= len(stage.Questions) {
		return false, fmt.Errorf("stage %q: pending question index %d out of range", stage.ID, pending.QuestionIndex)
	}
	q := stage.Questions[pending.QuestionIndex]

	answer := raw
	if pending.IsClarifying {
		answer = combineAnswers(pending.HeldAnswer, raw)
	} else if rule, ok := e.firesClarification(q, raw); ok {
		followUp := rule.FollowUp
		if followUp == "" {
			followUp = defaultFollowUp(rule.Condition)
		}
		followUp = e.render(st, followUp)

		pending.IsClarifying = true
		pending.HeldAnswer = raw
		pending.Ask = followUp
		st.PushBot(followUp)
		st.Trace("clarify_requested", map[string]any{
			"stage": stage.ID, "question": q.ID, "rule": string(rule.Condition),
		})
		return true, nil
	}

	if err := slot.Write(st.Slots, q.SaveTo, answer); err != nil {
		return false, fmt.Errorf("stage %q: save_to %q: %w", stage.ID, q.SaveTo, err)
	}
	st.Trace("answer_committed", map[string]any{
		"stage": stage.ID, "question": q.ID, "save_to": q.SaveTo,
	})

	st.QuestionCursor[stage.ID] = pending.QuestionIndex + 1
	st.Pending = nil
	return false, nil
}

// ingestConfirm interprets the answer as a boolean and routes to the
// yes or no target. A genuinely ambiguous answer earns one clarifying
// round; if it stays ambiguous after that, the engine takes the no
// path rather than asking forever.
func (e *Engine) ingestConfirm(st *session.State, stage *flow.Stage, raw string) (bool, error) {
	pending := st.Pending

	value, ok := e.classifier.YesNo(raw)
	if !ok && !pending.IsClarifying {
		followUp := "Just to be sure: is that a yes or a no?"
		pending.IsClarifying = true
		pending.HeldAnswer = raw
		pending.Ask = followUp
		st.PushBot(followUp)
		st.Trace("clarify_requested", map[string]any{
			"stage": stage.ID, "rule": string(classify.RuleUnclearYesNo),
		})
		return true, nil
	}

	confirmed := ok && value
	st.Trace("confirm_resolved", map[string]any{
		"stage": stage.ID, "confirmed": confirmed,
	})

	st.Pending = nil
	if confirmed {
		st.ActiveStageID = stage.Confirm.OnYes
	} else {
		st.ActiveStageID = stage.Confirm.OnNo
	}
	return false, nil
}

// firesClarification finds the first declared rule the answer trips.
func (e *Engine) firesClarification(q flow.Question, raw string) (flow.ClarifyRule, bool) {
	for _, rule := range q.ClarifyIf {
		if e.classifier.ShouldClarify(raw, rule.Condition) {
			return rule, true
		}
	}
	return flow.ClarifyRule{}, false
}

func defaultFollowUp(rule classify.Rule) string {
	switch rule {
	case classify.RuleUnclearYesNo:
		return "Just to be sure: is that a yes or a no?"
	case classify.RuleVague:
		return "Could you be a bit more specific?"
	default:
		return "Could you say a little more about that?"
	}
}

func combineAnswers(held, clarification string) string {
	held = strings.TrimSpace(held)
	clarification = strings.TrimSpace(clarification)
	switch {
	case held == "":
		return clarification
	case clarification == "":
		return held
	}
	return held + clarifySeparator + clarification
}
