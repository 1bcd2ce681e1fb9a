package runtime

import "fmt"

// UserFacingError is the only message shown to an end user when a turn
// fails fatally; details go to the log and the session trace.
const UserFacingError = "Something went wrong, please try again."

// CycleError reports that a turn exceeded the auto-advance step
// ceiling without reaching a halting stage. It is fatal for the turn
// and non-retryable; the session stays at its pre-turn stage.
type CycleError struct {
	StageID string
	Steps   int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("auto-advance exceeded %d steps at stage %q", e.Steps, e.StageID)
}
