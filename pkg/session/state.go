package session

import (
	"errors"

	"github.com/cstaulbee/quickscope/pkg/flow"
	"github.com/cstaulbee/quickscope/pkg/slot"
)

// ErrSessionNotFound is returned by state stores for unknown sessions.
var ErrSessionNotFound = errors.New("session not found")

// Role tags a message log entry.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one entry of the ordered session message log.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Pending describes the prompt the engine is waiting on. It carries
// only what cannot be reconstructed from the active stage: the question
// position and any in-flight clarification.
type Pending struct {
	StageID       string `json:"stage_id"`
	QuestionID    string `json:"question_id,omitempty"`
	QuestionIndex int    `json:"question_index"`
	SaveTo        string `json:"save_to,omitempty"`

	// Ask is the rendered prompt text, kept for callers inspecting
	// what was asked.
	Ask string `json:"ask"`

	// IsClarifying marks that the next answer completes a one-round
	// clarification; HeldAnswer is the original answer awaiting it.
	IsClarifying bool   `json:"is_clarifying"`
	HeldAnswer   string `json:"held_answer,omitempty"`
}

// Event is one append-only trace record, emitted per turn for
// observability. Events never influence control flow.
type Event struct {
	Kind   string         `json:"kind"`
	Fields map[string]any `json:"fields,omitempty"`
}

// State is the full persisted snapshot of one interview session.
type State struct {
	SessionID     string `json:"session_id"`
	FlowID        string `json:"flow_id"`
	ActiveStageID string `json:"active_stage_id"`

	Slots   slot.Store `json:"slots"`
	Pending *Pending   `json:"pending,omitempty"`

	// Messages is the ordered conversation log, bot and user turns
	// interleaved.
	Messages []Message `json:"message_log"`

	// Events is the structured trace of everything the engine did.
	Events []Event `json:"events,omitempty"`

	// QuestionCursor tracks progress through multi-question stages,
	// keyed by stage id.
	QuestionCursor map[string]int `json:"question_cursor,omitempty"`

	// AutoAdvanceSteps counts driver steps within the current turn;
	// reset at the start of every turn.
	AutoAdvanceSteps int `json:"auto_advance_step_count"`

	// LastActionResult is the result code of the most recent action
	// stage, consulted by branch stages.
	LastActionResult string `json:"last_action_result,omitempty"`

	// Err is the terminal error description, set when a turn failed
	// fatally. The session stays resumable at its last stable stage.
	Err string `json:"error,omitempty"`
}

// New creates a fresh session positioned at the flow's start stage.
func New(sessionID, flowID, startStage string) *State {
	return &State{
		SessionID:      sessionID,
		FlowID:         flowID,
		ActiveStageID:  startStage,
		Slots:          slot.NewStore(),
		QuestionCursor: make(map[string]int),
	}
}

// Terminated reports whether the session reached the terminal stage.
func (s *State) Terminated() bool {
	return s.ActiveStageID == flow.TerminalStage
}

// Snapshot returns a deep copy safe for independent mutation. The turn
// pipeline works on a snapshot and commits it only on success, which is
// what makes failed turns roll back for free.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Slots = slot.Clone(s.Slots)
	next.Messages = append([]Message(nil), s.Messages...)
	next.Events = append([]Event(nil), s.Events...)
	if s.Pending != nil {
		pending := *s.Pending
		next.Pending = &pending
	}
	next.QuestionCursor = make(map[string]int, len(s.QuestionCursor))
	for k, v := range s.QuestionCursor {
		next.QuestionCursor[k] = v
	}
	return &next
}

// PushBot appends a bot message to the log.
func (s *State) PushBot(text string) {
	s.Messages = append(s.Messages, Message{Role: RoleBot, Text: text})
}

// PushUser appends a user message to the log.
func (s *State) PushUser(text string) {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Text: text})
}

// RecentBotMessages returns up to max bot messages scanning backwards
// through the last window log entries, most recent first.
func (s *State) RecentBotMessages(window, max int) []string {
	var out []string
	start := len(s.Messages) - window
	if start < 0 {
		start = 0
	}
	for i := len(s.Messages) - 1; i >= start && len(out) < max; i-- {
		if s.Messages[i].Role == RoleBot {
			out = append(out, s.Messages[i].Text)
		}
	}
	return out
}

// Trace appends a structured event to the session trace.
func (s *State) Trace(kind string, fields map[string]any) {
	s.Events = append(s.Events, Event{Kind: kind, Fields: fields})
}
