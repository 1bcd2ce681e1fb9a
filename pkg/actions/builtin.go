package actions

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cstaulbee/quickscope/pkg/slot"
)

func registerBuiltins(r *Registry) {
	r.Register("init_workflow_maps", initWorkflowMaps)
	r.Register("write_trigger", writeTrigger)
	r.Register("init_step_queue", initStepQueue)
	r.Register("queue_next_step", queueNextStep)
	r.Register("check_done", checkDone)
	r.Register("check_decision", checkDecision)
	r.Register("commit_step", commitStep)
	r.Register("select_next_data_element", selectNextDataElement)
	r.Register("commit_data_element", commitDataElement)
	r.Register("detect_gaps", detectGaps)
}

// lookupString reads a dotted path and coerces the value to a string.
func lookupString(slots slot.Store, path string) string {
	v, ok := slot.Lookup(slots, path)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// lookupList reads a dotted path as a generic list.
func lookupList(slots slot.Store, path string) []any {
	v, ok := slot.Lookup(slots, path)
	if !ok {
		return nil
	}
	list, _ := v.([]any)
	return list
}

// activeMap finds the workflow map whose id matches capture.active_workflow_id.
// The returned map aliases the store, so mutations stick.
func activeMap(slots slot.Store) (map[string]any, bool) {
	id := lookupString(slots, "capture.active_workflow_id")
	if id == "" {
		return nil, false
	}
	for _, raw := range lookupList(slots, "workflows.maps") {
		wf, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if wf["workflow_id"] == id {
			return wf, true
		}
	}
	return nil, false
}

// initWorkflowMaps builds an empty map skeleton per selected workflow
// and activates the first one.
func initWorkflowMaps(ctx context.Context, slots slot.Store) (slot.Store, string, error) {
	selected := lookupList(slots, "workflows.selected")

	maps := make([]any, 0, len(selected))
	for i, raw := range selected {
		name, _ := raw.(string)
		maps = append(maps, map[string]any{
			"workflow_id":   fmt.Sprintf("wf_%d", i+1),
			"workflow_name": name,
			"trigger":       nil,
			"end_condition": nil,
			"lanes":         []any{},
			"steps":         []any{},
		})
	}

	if err := slot.Write(slots, "workflows.maps", maps); err != nil {
		return slots, "", err
	}
	active := any(nil)
	if len(maps) > 0 {
		active = maps[0].(map[string]any)["workflow_id"]
	}
	if err := slot.Write(slots, "capture.active_workflow_id", active); err != nil {
		return slots, "", err
	}
	return slots, ResultOK, nil
}

// writeTrigger moves the trigger and boundary conditions from the
// capture buffer onto the active workflow map, then clears the buffer.
func writeTrigger(ctx context.Context, slots slot.Store) (slot.Store, string, error) {
	wf, ok := activeMap(slots)
	if !ok {
		return slots, ResultOK, nil
	}

	for _, field := range []string{"trigger", "start_condition", "end_condition"} {
		if v := lookupString(slots, "capture.workflow_buffer."+field); v != "" {
			wf[field] = v
		}
	}

	if err := slot.Write(slots, "capture.workflow_buffer", map[string]any{}); err != nil {
		return slots, "", err
	}
	return slots, ResultOK, nil
}

// enumerationPrefix strips "1.", "2)", "-", "*" or bullet markers from
// a list line.
var enumerationPrefix = regexp.MustCompile(`^(\d+[.)]?|-|\*|•)\s*`)

// initStepQueue parses the user's enumerated step list into a queue of
// step placeholders and positions the cursor on the first one.
func initStepQueue(ctx context.Context, slots slot.Store) (slot.Store, string, error) {
	enumerated := lookupString(slots, "capture.enumerated_steps")

	var names []string
	for _, line := range strings.Split(strings.TrimSpace(enumerated), "\n") {
		line = enumerationPrefix.ReplaceAllString(strings.TrimSpace(line), "")
		if line != "" {
			names = append(names, line)
		}
	}

	queue := make([]any, 0, len(names))
	var summary []string
	for i, name := range names {
		queue = append(queue, map[string]any{"step_name": name})
		summary = append(summary, fmt.Sprintf("%d. %s", i+1, name))
	}

	writes := map[string]any{
		"capture.step_queue":   queue,
		"capture.step_index":   0,
		"capture.step_number":  1,
		"capture.step_count":   len(names),
		"capture.step_summary": strings.Join(summary, "\n"),
	}
	if len(names) == 0 {
		writes["capture.step_summary"] = "No steps provided"
	} else {
		writes["capture.current_step_name"] = names[0]
	}
	for path, value := range writes {
		if err := slot.Write(slots, path, value); err != nil {
			return slots, "", err
		}
	}
	return slots, ResultOK, nil
}

// queueNextStep seeds the step buffer from the user's description of
// the next step. Fields are empty strings rather than nil so prompt
// templates never render a gap for them.
func queueNextStep(ctx context.Context, slots slot.Store) (slot.Store, string, error) {
	response := lookupString(slots, "capture.next_step_response")

	buffer := map[string]any{
		"description":      response,
		"owner_role":       "",
		"inputs":           "",
		"outputs":          "",
		"systems_used":     "",
		"decision":         "",
		"wait_or_delay":    "",
		"common_exception": "",
	}
	if err := slot.Write(slots, "capture.step_buffer", buffer); err != nil {
		return slots, "", err
	}
	return slots, ResultOK, nil
}

var doneSignals = []*regexp.Regexp{
	regexp.MustCompile(`\bdone\b`),
	regexp.MustCompile(`\bcomplete\b`),
	regexp.MustCompile(`\bfinished\b`),
	regexp.MustCompile(`that'?s it`),
	regexp.MustCompile(`\bno more\b`),
	regexp.MustCompile(`\bnothing\b`),
	regexp.MustCompile(`\bend\b`),
}

// checkDone decides whether the user declared the step list complete
// or described another step. A signal word only counts near the start
// of the response or in a very short one, so a step description that
// happens to contain "end" does not close the interview.
func checkDone(ctx context.Context, slots slot.Store) (slot.Store, string, error) {
	response := strings.ToLower(strings.TrimSpace(lookupString(slots, "capture.next_step_response")))
	isShort := len(strings.Fields(response)) <= 3

	for _, signal := range doneSignals {
		if loc := signal.FindStringIndex(response); loc != nil {
			if loc[0] < 15 || isShort {
				return slots, "done", nil
			}
		}
	}
	return slots, "continue", nil
}

// noDecisionPhrases are answers that mean the step has no branch point.
var noDecisionPhrases = []string{
	"no", "none", "n/a", "na", "not applicable",
	"no decision", "there's no decision", "there is no decision",
	"no, there", "not a decision", "no branch", "no branching",
}

// checkDecision routes on whether the captured step has a real decision
// point. Dismissive answers clear the field so "No" never shows up as a
// decision in downstream summaries.
func checkDecision(ctx context.Context, slots slot.Store) (slot.Store, string, error) {
	decision := strings.ToLower(strings.TrimSpace(lookupString(slots, "capture.step_buffer.decision")))

	if decision != "" {
		dismissive := false
		for _, phrase := range noDecisionPhrases {
			if strings.Contains(decision, phrase) {
				dismissive = true
				break
			}
		}
		if !dismissive {
			return slots, "has_decision", nil
		}
	}

	if err := slot.Write(slots, "capture.step_buffer.decision", ""); err != nil {
		return slots, "", err
	}
	return slots, "no_decision", nil
}

// commitStep appends the step buffer to the active workflow map, skips
// duplicates, records the owner as a lane, and resets the buffer.
func commitStep(ctx context.Context, slots slot.Store) (slot.Store, string, error) {
	bufferRaw, _ := slot.Lookup(slots, "capture.step_buffer")
	buffer, _ := bufferRaw.(map[string]any)
	wf, ok := activeMap(slots)
	if len(buffer) == 0 || !ok {
		return slots, ResultOK, nil
	}

	description := strings.ToLower(strings.TrimSpace(lookupString(slots, "capture.step_buffer.description")))
	if description == "" {
		return slots, ResultOK, nil
	}

	steps, _ := wf["steps"].([]any)
	for _, raw := range steps {
		step, _ := raw.(map[string]any)
		existing, _ := step["description"].(string)
		if strings.ToLower(strings.TrimSpace(existing)) == description {
			// Same step captured twice, drop the buffer.
			if err := slot.Write(slots, "capture.step_buffer", map[string]any{}); err != nil {
				return slots, "", err
			}
			return slots, ResultOK, nil
		}
	}

	step := make(map[string]any, len(buffer)+1)
	for k, v := range buffer {
		step[k] = v
	}
	if name := lookupString(slots, "capture.current_step_name"); name != "" {
		step["step_name"] = name
	}
	wf["steps"] = append(steps, step)

	if owner, _ := buffer["owner_role"].(string); owner != "" {
		lanes, _ := wf["lanes"].([]any)
		seen := false
		for _, lane := range lanes {
			if lane == owner {
				seen = true
				break
			}
		}
		if !seen {
			wf["lanes"] = append(lanes, owner)
		}
	}

	if err := slot.Write(slots, "capture.step_buffer", map[string]any{}); err != nil {
		return slots, "", err
	}
	return slots, ResultOK, nil
}

// selectNextDataElement points the cursor at the next data element that
// still needs validation, or reports that all of them are done.
func selectNextDataElement(ctx context.Context, slots slot.Store) (slot.Store, string, error) {
	elements := lookupList(slots, "parameters.data_elements")

	for i, raw := range elements {
		elem, _ := raw.(map[string]any)
		if elem == nil {
			continue
		}
		validated, _ := elem["validated"].(bool)
		if !validated || elem["definition"] == nil {
			if err := slot.Write(slots, "parameters.data_element_index", i); err != nil {
				return slots, "", err
			}
			return slots, "element_selected", nil
		}
	}

	if err := slot.Write(slots, "parameters.data_element_index", nil); err != nil {
		return slots, "", err
	}
	return slots, "all_validated", nil
}

// commitDataElement marks the element under the cursor as validated.
func commitDataElement(ctx context.Context, slots slot.Store) (slot.Store, string, error) {
	idxRaw, ok := slot.Lookup(slots, "parameters.data_element_index")
	if !ok || idxRaw == nil {
		return slots, ResultOK, nil
	}
	idx, ok := toInt(idxRaw)
	if !ok {
		return slots, ResultOK, nil
	}

	elements := lookupList(slots, "parameters.data_elements")
	if idx >= 0 && idx < len(elements) {
		if elem, ok := elements[idx].(map[string]any); ok {
			elem["validated"] = true
		}
	}
	return slots, ResultOK, nil
}

// detectGaps scans the captured maps for missing essentials and
// records them under validation.gaps and validation.contradictions.
func detectGaps(ctx context.Context, slots slot.Store) (slot.Store, string, error) {
	var gaps, contradictions []any

	for _, raw := range lookupList(slots, "workflows.maps") {
		wf, _ := raw.(map[string]any)
		if wf == nil {
			continue
		}
		end, _ := wf["end_condition"].(string)
		if end == "" {
			name, _ := wf["workflow_name"].(string)
			gaps = append(gaps, fmt.Sprintf("Workflow %q missing end condition", name))
		}
	}

	if exists, ok := slot.Lookup(slots, "reality.service_levels.slas_exist"); ok {
		if flag, _ := exists.(bool); flag {
			if defs := lookupString(slots, "reality.service_levels.sla_definitions"); defs == "" {
				contradictions = append(contradictions, "SLAs exist but no definitions provided")
			}
		}
	}

	if err := slot.Write(slots, "validation.gaps", gaps); err != nil {
		return slots, "", err
	}
	if err := slot.Write(slots, "validation.contradictions", contradictions); err != nil {
		return slots, "", err
	}
	return slots, ResultOK, nil
}

// toInt accepts the integer encodings that survive a JSON round trip.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
