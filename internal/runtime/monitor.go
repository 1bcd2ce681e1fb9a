package runtime

import "github.com/cstaulbee/quickscope/pkg/session"

// Monitor detects operationally stuck interactions: a well-formed flow
// can still re-ask the same prompt forever while every declared stop
// condition passes. The monitor reads conversation history only and is
// deliberately independent of loop stage semantics.
type Monitor struct {
	// Window is how many trailing log entries to scan.
	Window int
	// Threshold is how many repetitions of the latest prompt trip
	// the monitor.
	Threshold int
	// MinLength ignores short prompts, which repeat legitimately.
	MinLength int
}

// DefaultMonitor returns the standard tuning.
func DefaultMonitor() Monitor {
	return Monitor{Window: 20, Threshold: 3, MinLength: 20}
}

// Stuck reports whether the most recent bot prompt has repeated at or
// above the threshold within the window.
func (m Monitor) Stuck(st *session.State) bool {
	if m.Window <= 0 || m.Threshold <= 0 {
		return false
	}
	recent := st.RecentBotMessages(m.Window, m.Window)
	if len(recent) == 0 {
		return false
	}
	latest := recent[0]
	if len(latest) < m.MinLength {
		return false
	}

	count := 0
	for _, text := range recent {
		if text == latest {
			count++
		}
	}
	return count >= m.Threshold
}
