package flow

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/cstaulbee/quickscope/pkg/classify"
)

// Validate checks the structural invariants of the flow: unique stage
// ids, type-required fields present, every transition target resolved,
// and expression criteria compiling. It also builds the stage index
// used by Stage. A flow that fails Validate must not be traversed.
func (f *Flow) Validate() error {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if f.ID == "" {
		report("missing flow id")
	}
	if len(f.Stages) == 0 {
		report("flow declares no stages")
	}

	f.index = make(map[string]*Stage, len(f.Stages))
	for i := range f.Stages {
		s := &f.Stages[i]
		if s.ID == "" {
			report("stage %d: missing id", i)
			continue
		}
		if _, dup := f.index[s.ID]; dup {
			report("stage %q: duplicate id", s.ID)
			continue
		}
		f.index[s.ID] = s
	}

	for i := range f.Stages {
		f.validateStage(&f.Stages[i], report)
	}

	start := f.Start
	if start == "" {
		report("missing start stage")
	} else if !f.resolves(start) {
		report("start stage %q does not resolve", start)
	}

	for i := range f.Stages {
		s := &f.Stages[i]
		for _, target := range s.Targets() {
			if !f.resolves(target) {
				report("stage %q: transition target %q does not resolve", s.ID, target)
			}
		}
	}

	if len(problems) > 0 {
		return &GraphError{FlowID: f.ID, Problems: problems}
	}
	return nil
}

func (f *Flow) resolves(target string) bool {
	if target == TerminalStage {
		return true
	}
	_, ok := f.index[target]
	return ok
}

func (f *Flow) validateStage(s *Stage, report func(string, ...any)) {
	switch s.Kind {
	case KindMessage:
		if s.Next == "" && s.ID != TerminalStage {
			report("stage %q: message stage requires next", s.ID)
		}

	case KindQuestions:
		if len(s.Questions) == 0 {
			report("stage %q: questions stage declares no questions", s.ID)
		}
		for qi, q := range s.Questions {
			if q.Ask == "" {
				report("stage %q: question %d missing ask", s.ID, qi)
			}
			if q.SaveTo == "" {
				report("stage %q: question %d missing save_to", s.ID, qi)
			}
			for _, rule := range q.ClarifyIf {
				if !classify.KnownRule(rule.Condition) {
					report("stage %q: question %d: unknown clarify_if condition %q", s.ID, qi, rule.Condition)
				}
			}
		}
		if s.Next == "" {
			report("stage %q: questions stage requires next", s.ID)
		}

	case KindConfirm:
		if s.Confirm == nil {
			report("stage %q: confirm stage requires confirm block", s.ID)
			return
		}
		if s.Confirm.OnYes == "" {
			report("stage %q: confirm stage requires on_yes", s.ID)
		}
		if s.Confirm.OnNo == "" {
			report("stage %q: confirm stage requires on_no", s.ID)
		}

	case KindGate:
		if s.Gate == nil {
			report("stage %q: gate stage requires gate block", s.ID)
			return
		}
		if len(s.Gate.Rules) == 0 && s.Gate.Default == "" {
			report("stage %q: gate stage requires rules or a default target", s.ID)
		}
		for ri := range s.Gate.Rules {
			rule := &s.Gate.Rules[ri]
			if rule.Target == "" {
				report("stage %q: gate rule %d missing target", s.ID, ri)
			}
			f.validateCriterion(s, ri, &rule.When, report)
		}

	case KindAction:
		if s.Action == nil || s.Action.Name == "" {
			report("stage %q: action stage requires an action name", s.ID)
		}
		if s.Next == "" {
			report("stage %q: action stage requires next as its default route", s.ID)
		}
		if s.Action != nil {
			for code, target := range s.Action.Routes {
				if target == "" {
					report("stage %q: action route %q missing target", s.ID, code)
				}
			}
		}

	case KindBranch:
		if s.Branch == nil {
			report("stage %q: branch stage requires branch block", s.ID)
			return
		}
		if len(s.Branch.Cases) == 0 && s.Branch.Default == "" {
			report("stage %q: branch stage requires cases or a default target", s.ID)
		}
		for ci, c := range s.Branch.Cases {
			if c.Target == "" {
				report("stage %q: branch case %d missing target", s.ID, ci)
			}
		}

	case KindLoop:
		if s.Loop == nil {
			report("stage %q: loop stage requires loop block", s.ID)
			return
		}
		if s.Loop.StopCondition.SignalSlot == "" {
			report("stage %q: loop stage requires stop_condition.signal_slot", s.ID)
		}
		switch s.Loop.StopCondition.When {
		case "", StopWhenEmpty, StopWhenAbsent, StopWhenEquals:
		default:
			report("stage %q: unknown stop_condition.when %q", s.ID, s.Loop.StopCondition.When)
		}
		if s.Loop.OnStop == "" {
			report("stage %q: loop stage requires on_stop", s.ID)
		}
		if s.Next == "" {
			report("stage %q: loop stage requires next to re-enter its body", s.ID)
		}

	default:
		report("stage %q: unknown stage type %q", s.ID, s.Kind)
	}
}

func (f *Flow) validateCriterion(s *Stage, idx int, c *Criterion, report func(string, ...any)) {
	if c.Expr != "" {
		program, err := expr.Compile(c.Expr)
		if err != nil {
			report("stage %q: gate rule %d: invalid expr %q: %v", s.ID, idx, c.Expr, err)
			return
		}
		c.program = program
		return
	}
	if c.Slot == "" {
		report("stage %q: gate rule %d: criterion requires slot or expr", s.ID, idx)
	}
}
