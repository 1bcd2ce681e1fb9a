// Package graph renders a flow's stage graph as Mermaid flowchart
// syntax, for docs and for eyeballing routing during authoring.
package graph

import (
	"fmt"
	"strings"

	"github.com/cstaulbee/quickscope/pkg/flow"
)

// Overlay contains session state to highlight on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// Mermaid produces a flowchart for the flow. Stage shapes follow the
// kind: the start stage is a circle, interactive stages are
// parallelograms, actions are subroutines, gates and branches are
// diamonds, loops are hexagons. Overlay styling marks visited and
// current stages when provided.
func Mermaid(f *flow.Flow, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	declared := make(map[string]bool, len(f.Stages))
	for i := range f.Stages {
		declared[f.Stages[i].ID] = true
	}

	for i := range f.Stages {
		stage := &f.Stages[i]
		sb.WriteString(nodeLine(f, stage))

		for _, e := range edges(stage) {
			arrow := "-->"
			if e.label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(e.label))
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID(stage.ID), arrow, safeID(e.to)))
		}
	}

	// Targets pointing at the terminal marker without a declared end
	// stage still need a node to land on.
	if !declared[flow.TerminalStage] {
		needsEnd := false
		for i := range f.Stages {
			for _, target := range f.Stages[i].Targets() {
				if target == flow.TerminalStage {
					needsEnd = true
				}
			}
		}
		if needsEnd {
			sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", safeID(flow.TerminalStage), flow.TerminalStage))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Visited {
			sid := safeID(id)
			if sid != "" && !seen[sid] {
				seen[sid] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", sid))
			}
		}
		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", safeID(overlay.Current)))
		}
	}

	return sb.String()
}

func nodeLine(f *flow.Flow, stage *flow.Stage) string {
	opener, closer := "[", "]"
	switch {
	case stage.ID == f.Start:
		opener, closer = "((", "))"
	case stage.Kind == flow.KindAction:
		opener, closer = "[[", "]]"
	case stage.Interactive():
		opener, closer = "[/", "/]"
	case stage.Kind == flow.KindGate, stage.Kind == flow.KindBranch:
		opener, closer = "{", "}"
	case stage.Kind == flow.KindLoop:
		opener, closer = "{{", "}}"
	}
	return fmt.Sprintf("    %s%s\"%s\"%s\n", safeID(stage.ID), opener, stage.ID, closer)
}

type edge struct {
	to    string
	label string
}

// edges lists a stage's transitions with human labels. Mirrors
// Stage.Targets but keeps the routing reason on each arrow.
func edges(s *flow.Stage) []edge {
	var out []edge
	add := func(to, label string) {
		if to != "" {
			out = append(out, edge{to: to, label: label})
		}
	}

	switch s.Kind {
	case flow.KindConfirm:
		if s.Confirm != nil {
			add(s.Confirm.OnYes, "yes")
			add(s.Confirm.OnNo, "no")
		}
	case flow.KindGate:
		if s.Gate != nil {
			for _, rule := range s.Gate.Rules {
				add(rule.Target, describeCriterion(rule.When))
			}
			add(s.Gate.Default, "default")
		}
	case flow.KindAction:
		if s.Action != nil {
			for code, target := range s.Action.Routes {
				add(target, code)
			}
		}
		add(s.Next, "")
	case flow.KindBranch:
		if s.Branch != nil {
			for _, c := range s.Branch.Cases {
				add(c.Target, fmt.Sprintf("%v", c.Equals))
			}
			add(s.Branch.Default, "default")
		}
	case flow.KindLoop:
		add(s.Next, "iterate")
		if s.Loop != nil {
			add(s.Loop.OnStop, "stop")
		}
	default:
		add(s.Next, "")
	}
	return out
}

func describeCriterion(c flow.Criterion) string {
	switch {
	case c.Expr != "":
		return c.Expr
	case c.Exists != nil:
		if *c.Exists {
			return c.Slot + " exists"
		}
		return c.Slot + " absent"
	case c.Equals != nil:
		return fmt.Sprintf("%s == %v", c.Slot, c.Equals)
	case len(c.In) > 0:
		return fmt.Sprintf("%s in %v", c.Slot, c.In)
	case c.MinItems != nil:
		return fmt.Sprintf("len(%s) >= %d", c.Slot, *c.MinItems)
	case c.MaxItems != nil:
		return fmt.Sprintf("len(%s) <= %d", c.Slot, *c.MaxItems)
	}
	return c.Slot
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func safeID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_")
	return r.Replace(id)
}
