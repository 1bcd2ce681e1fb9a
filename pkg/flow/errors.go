package flow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStageNotFound is returned when a stage id does not resolve.
// It signals a flow-authoring defect and is never auto-retried.
var ErrStageNotFound = errors.New("stage not found")

// ErrFlowNotFound is returned when a flow id is unknown to the source.
var ErrFlowNotFound = errors.New("flow not found")

// GraphError reports an invalid stage graph at load time: unresolved
// transition targets, missing type-required fields, or duplicate ids.
type GraphError struct {
	FlowID   string
	Problems []string
}

func (e *GraphError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("flow %q: invalid stage graph: %s", e.FlowID, e.Problems[0])
	}
	return fmt.Sprintf("flow %q: invalid stage graph (%d problems):\n  - %s",
		e.FlowID, len(e.Problems), strings.Join(e.Problems, "\n  - "))
}
