package flow

import (
	"github.com/expr-lang/expr/vm"

	"github.com/cstaulbee/quickscope/pkg/classify"
)

// Kind tags a stage with its control-flow behavior. The advancer
// switches exhaustively on Kind; adding a kind is a compile-visible
// change, not a stray string comparison.
type Kind string

const (
	// KindMessage displays content and always auto-advances.
	KindMessage Kind = "message"
	// KindQuestions asks one or more prompts and halts for input.
	KindQuestions Kind = "questions"
	// KindConfirm asks a yes/no question and routes on the answer.
	KindConfirm Kind = "confirm"
	// KindGate routes on declared criteria over the slot store.
	KindGate Kind = "gate"
	// KindAction invokes a named external action and routes on its
	// result code.
	KindAction Kind = "action"
	// KindBranch routes on the last action result or a slot value.
	KindBranch Kind = "branch"
	// KindLoop re-enters its body until a declared stop condition
	// over the signal slot is satisfied.
	KindLoop Kind = "loop"
)

// TerminalStage is the reserved id marking the end of a flow. A flow
// may declare an explicit "end" stage to customize the closing prompt;
// absent that, the marker alone is a valid transition target.
const TerminalStage = "end"

// Flow is an immutable, validated collection of stages keyed by id.
type Flow struct {
	ID     string
	Start  string
	Stages []Stage

	// InitialSlots seeds a fresh session's slot store.
	InitialSlots map[string]any

	index map[string]*Stage
}

// Stage reports the stage with the given id.
func (f *Flow) Stage(id string) (*Stage, bool) {
	s, ok := f.index[id]
	return s, ok
}

// StageIDs returns all declared stage ids in document order.
func (f *Flow) StageIDs() []string {
	ids := make([]string, len(f.Stages))
	for i := range f.Stages {
		ids[i] = f.Stages[i].ID
	}
	return ids
}

// Stage is one node of the flow graph. Only the fields its Kind
// requires are populated; Validate enforces that at load time.
type Stage struct {
	ID   string `mapstructure:"id"`
	Kind Kind   `mapstructure:"type"`

	// Next is the default transition target. Meaning varies by kind:
	// message/questions/action advance here; loop re-enters its body.
	Next string `mapstructure:"next"`

	// Prompt is the message text (message stages and the end stage).
	Prompt string `mapstructure:"prompt"`

	Questions []Question   `mapstructure:"questions"`
	Confirm   *ConfirmSpec `mapstructure:"confirm"`
	Gate      *GateSpec    `mapstructure:"gate"`
	Action    *ActionSpec  `mapstructure:"action"`
	Branch    *BranchSpec  `mapstructure:"branch"`
	Loop      *LoopSpec    `mapstructure:"loop"`
}

// Interactive reports whether the stage halts for user input.
func (s *Stage) Interactive() bool {
	return s.Kind == KindQuestions || s.Kind == KindConfirm
}

// Targets returns every stage id this stage can transition to.
func (s *Stage) Targets() []string {
	var targets []string
	add := func(id string) {
		if id != "" {
			targets = append(targets, id)
		}
	}

	add(s.Next)
	if s.Confirm != nil {
		add(s.Confirm.OnYes)
		add(s.Confirm.OnNo)
	}
	if s.Gate != nil {
		for _, rule := range s.Gate.Rules {
			add(rule.Target)
		}
		add(s.Gate.Default)
	}
	if s.Action != nil {
		for _, target := range s.Action.Routes {
			add(target)
		}
	}
	if s.Branch != nil {
		for _, c := range s.Branch.Cases {
			add(c.Target)
		}
		add(s.Branch.Default)
	}
	if s.Loop != nil {
		add(s.Loop.OnStop)
	}
	return targets
}

// Question is one prompt/save_to tuple of a questions stage.
type Question struct {
	ID        string        `mapstructure:"id"`
	Ask       string        `mapstructure:"ask"`
	SaveTo    string        `mapstructure:"save_to"`
	ClarifyIf []ClarifyRule `mapstructure:"clarify_if"`
}

// ClarifyRule declares one follow-up condition for a question.
type ClarifyRule struct {
	Condition classify.Rule `mapstructure:"condition"`
	FollowUp  string        `mapstructure:"follow_up"`
}

// ConfirmSpec carries the yes/no routing of a confirm stage.
type ConfirmSpec struct {
	SummaryTemplate string `mapstructure:"summary_template"`
	Ask             string `mapstructure:"ask"`
	OnYes           string `mapstructure:"on_yes"`
	OnNo            string `mapstructure:"on_no"`
}

// GateSpec routes on boolean criteria, first match wins.
type GateSpec struct {
	Rules   []GateRule `mapstructure:"rules"`
	Default string     `mapstructure:"default"`
}

// GateRule pairs a criterion with its transition target.
type GateRule struct {
	When   Criterion `mapstructure:"when"`
	Target string    `mapstructure:"target"`
}

// ActionSpec names an external action and maps its result codes to
// transition targets. Codes absent from Routes fall back to the
// stage's Next.
type ActionSpec struct {
	Name   string            `mapstructure:"name"`
	Routes map[string]string `mapstructure:"routes"`
}

// BranchSpec routes on the most recent action result code, or on an
// explicit slot value when Slot is set.
type BranchSpec struct {
	Slot    string       `mapstructure:"slot"`
	Cases   []BranchCase `mapstructure:"cases"`
	Default string       `mapstructure:"default"`
}

// BranchCase matches one value against the branch key.
type BranchCase struct {
	Equals any    `mapstructure:"equals"`
	Target string `mapstructure:"target"`
}

// LoopSpec declares when a loop stops iterating. The stage's Next
// re-enters the loop body while the stop condition is unsatisfied.
type LoopSpec struct {
	StopCondition StopCondition `mapstructure:"stop_condition"`
	OnStop        string        `mapstructure:"on_stop"`
}

// StopCondition is evaluated against the signal slot only; a loop
// never inspects conversation history.
type StopCondition struct {
	SignalSlot string `mapstructure:"signal_slot"`

	// When selects the satisfaction test: "empty" (absent, nil,
	// empty list or empty string), "absent" (missing or nil), or
	// "equals" (deep equality with Value).
	When  string `mapstructure:"when"`
	Value any    `mapstructure:"value"`
}

// Stop condition kinds.
const (
	StopWhenEmpty  = "empty"
	StopWhenAbsent = "absent"
	StopWhenEquals = "equals"
)

// Criterion is a single declared boolean test over the slot store.
// Exactly one test field is set; Validate enforces that.
type Criterion struct {
	Slot string `mapstructure:"slot"`

	Exists   *bool `mapstructure:"exists"`
	Equals   any   `mapstructure:"equals"`
	In       []any `mapstructure:"in"`
	MinItems *int  `mapstructure:"min_items"`
	MaxItems *int  `mapstructure:"max_items"`

	// Expr is an expression over the slot store, compiled at load
	// time with expr-lang.
	Expr string `mapstructure:"expr"`

	program *vm.Program
}
