package actions_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstaulbee/quickscope/pkg/actions"
	"github.com/cstaulbee/quickscope/pkg/slot"
)

func invoke(t *testing.T, r *actions.Registry, name string, slots slot.Store) (slot.Store, string) {
	t.Helper()
	updated, result, err := r.Invoke(context.Background(), name, slots)
	require.NoError(t, err)
	return updated, result
}

func TestRegistry_UnknownAction(t *testing.T) {
	r := actions.NewRegistry()
	_, _, err := r.Invoke(context.Background(), "no_such_action", slot.NewStore())
	assert.ErrorContains(t, err, "action not found")
}

func TestRegistry_InputNotMutated(t *testing.T) {
	r := actions.NewRegistry()
	slots := slot.NewStore()
	require.NoError(t, slot.Write(slots, "workflows.selected", []any{"Order to Cash"}))

	updated, _ := invoke(t, r, "init_workflow_maps", slots)

	_, ok := slot.Lookup(slots, "workflows.maps")
	assert.False(t, ok, "original store must stay untouched")
	_, ok = slot.Lookup(updated, "workflows.maps")
	assert.True(t, ok)
}

func TestInitWorkflowMaps(t *testing.T) {
	r := actions.NewRegistry()
	slots := slot.NewStore()
	require.NoError(t, slot.Write(slots, "workflows.selected", []any{"Order to Cash", "Returns"}))

	updated, result := invoke(t, r, "init_workflow_maps", slots)
	assert.Equal(t, actions.ResultOK, result)

	maps, _ := slot.Lookup(updated, "workflows.maps")
	require.Len(t, maps, 2)
	first := maps.([]any)[0].(map[string]any)
	assert.Equal(t, "wf_1", first["workflow_id"])
	assert.Equal(t, "Order to Cash", first["workflow_name"])

	active, _ := slot.Lookup(updated, "capture.active_workflow_id")
	assert.Equal(t, "wf_1", active)
}

func TestInitWorkflowMaps_Empty(t *testing.T) {
	r := actions.NewRegistry()
	updated, _ := invoke(t, r, "init_workflow_maps", slot.NewStore())

	active, ok := slot.Lookup(updated, "capture.active_workflow_id")
	assert.True(t, ok)
	assert.Nil(t, active)
}

func TestInitStepQueue(t *testing.T) {
	r := actions.NewRegistry()
	slots := slot.NewStore()
	require.NoError(t, slot.Write(slots, "capture.enumerated_steps",
		"1. Intake\n2) Review\n- Approve\n* Ship"))

	updated, _ := invoke(t, r, "init_step_queue", slots)

	count, _ := slot.Lookup(updated, "capture.step_count")
	assert.Equal(t, 4, count)
	name, _ := slot.Lookup(updated, "capture.current_step_name")
	assert.Equal(t, "Intake", name)
	summary, _ := slot.Lookup(updated, "capture.step_summary")
	assert.Equal(t, "1. Intake\n2. Review\n3. Approve\n4. Ship", summary)
	idx, _ := slot.Lookup(updated, "capture.step_index")
	assert.Equal(t, 0, idx)
}

func TestInitStepQueue_NoSteps(t *testing.T) {
	r := actions.NewRegistry()
	updated, _ := invoke(t, r, "init_step_queue", slot.NewStore())

	count, _ := slot.Lookup(updated, "capture.step_count")
	assert.Equal(t, 0, count)
	summary, _ := slot.Lookup(updated, "capture.step_summary")
	assert.Equal(t, "No steps provided", summary)
}

func TestCheckDone(t *testing.T) {
	cases := []struct {
		response string
		want     string
	}{
		{"done", "done"},
		{"That's it", "done"},
		{"no more steps", "done"},
		{"we're finished here", "done"},
		{"Then the clerk validates the invoice against the purchase order", "continue"},
		{"The packer moves the box to the end of the line for final weighing and labeling", "continue"},
	}

	r := actions.NewRegistry()
	for _, tc := range cases {
		t.Run(tc.response, func(t *testing.T) {
			slots := slot.NewStore()
			require.NoError(t, slot.Write(slots, "capture.next_step_response", tc.response))
			_, result := invoke(t, r, "check_done", slots)
			assert.Equal(t, tc.want, result)
		})
	}
}

func TestQueueNextStep(t *testing.T) {
	r := actions.NewRegistry()
	slots := slot.NewStore()
	require.NoError(t, slot.Write(slots, "capture.next_step_response", "Validate the invoice"))

	updated, _ := invoke(t, r, "queue_next_step", slots)

	desc, _ := slot.Lookup(updated, "capture.step_buffer.description")
	assert.Equal(t, "Validate the invoice", desc)
	owner, ok := slot.Lookup(updated, "capture.step_buffer.owner_role")
	assert.True(t, ok)
	assert.Equal(t, "", owner, "unfilled fields must render empty, not as gaps")
}

func TestCheckDecision(t *testing.T) {
	cases := []struct {
		decision string
		want     string
	}{
		{"Is the invoice above the approval threshold?", "has_decision"},
		{"no", "no_decision"},
		{"There is no decision at this step", "no_decision"},
		{"", "no_decision"},
	}

	r := actions.NewRegistry()
	for _, tc := range cases {
		t.Run(tc.want+"/"+tc.decision, func(t *testing.T) {
			slots := slot.NewStore()
			require.NoError(t, slot.Write(slots, "capture.step_buffer.decision", tc.decision))
			updated, result := invoke(t, r, "check_decision", slots)
			assert.Equal(t, tc.want, result)
			if tc.want == "no_decision" {
				cleared, _ := slot.Lookup(updated, "capture.step_buffer.decision")
				assert.Equal(t, "", cleared)
			}
		})
	}
}

func workflowFixture(t *testing.T) slot.Store {
	t.Helper()
	slots := slot.NewStore()
	require.NoError(t, slot.Write(slots, "workflows.maps", []any{
		map[string]any{
			"workflow_id":   "wf_1",
			"workflow_name": "Order to Cash",
			"lanes":         []any{},
			"steps":         []any{},
		},
	}))
	require.NoError(t, slot.Write(slots, "capture.active_workflow_id", "wf_1"))
	return slots
}

func TestCommitStep(t *testing.T) {
	r := actions.NewRegistry()
	slots := workflowFixture(t)
	require.NoError(t, slot.Write(slots, "capture.current_step_name", "Intake"))
	require.NoError(t, slot.Write(slots, "capture.step_buffer", map[string]any{
		"description": "Clerk records the order",
		"owner_role":  "Clerk",
	}))

	updated, _ := invoke(t, r, "commit_step", slots)

	steps, _ := slot.Lookup(updated, "workflows.maps[0].steps")
	require.Len(t, steps, 1)
	step := steps.([]any)[0].(map[string]any)
	assert.Equal(t, "Intake", step["step_name"])
	assert.Equal(t, "Clerk records the order", step["description"])

	lanes, _ := slot.Lookup(updated, "workflows.maps[0].lanes")
	assert.Equal(t, []any{"Clerk"}, lanes)

	buffer, _ := slot.Lookup(updated, "capture.step_buffer")
	assert.Empty(t, buffer)
}

func TestCommitStep_Duplicate(t *testing.T) {
	r := actions.NewRegistry()
	slots := workflowFixture(t)
	require.NoError(t, slot.Write(slots, "capture.step_buffer", map[string]any{
		"description": "Clerk records the order",
	}))

	once, _ := invoke(t, r, "commit_step", slots)
	require.NoError(t, slot.Write(once, "capture.step_buffer", map[string]any{
		"description": "clerk records the order  ",
	}))
	twice, _ := invoke(t, r, "commit_step", once)

	steps, _ := slot.Lookup(twice, "workflows.maps[0].steps")
	assert.Len(t, steps, 1)
}

func TestDataElementValidationCycle(t *testing.T) {
	r := actions.NewRegistry()
	slots := slot.NewStore()
	require.NoError(t, slot.Write(slots, "parameters.data_elements", []any{
		map[string]any{"name": "invoice_id", "definition": "Unique invoice number", "validated": true},
		map[string]any{"name": "customer_id", "definition": "CRM record key"},
	}))

	updated, result := invoke(t, r, "select_next_data_element", slots)
	assert.Equal(t, "element_selected", result)
	idx, _ := slot.Lookup(updated, "parameters.data_element_index")
	assert.Equal(t, 1, idx)

	updated, _ = invoke(t, r, "commit_data_element", updated)
	updated, result = invoke(t, r, "select_next_data_element", updated)
	assert.Equal(t, "all_validated", result)
	idx, _ = slot.Lookup(updated, "parameters.data_element_index")
	assert.Nil(t, idx)
}

func TestDetectGaps(t *testing.T) {
	r := actions.NewRegistry()
	slots := workflowFixture(t)
	require.NoError(t, slot.Write(slots, "reality.service_levels.slas_exist", true))

	updated, _ := invoke(t, r, "detect_gaps", slots)

	gaps, _ := slot.Lookup(updated, "validation.gaps")
	require.Len(t, gaps, 1)
	assert.Contains(t, gaps.([]any)[0], "Order to Cash")

	contradictions, _ := slot.Lookup(updated, "validation.contradictions")
	assert.Len(t, contradictions, 1)
}
