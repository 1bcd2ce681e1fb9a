package middleware

import (
	"context"
	"regexp"

	"github.com/cstaulbee/quickscope/pkg/session"
)

type piiMiddleware struct {
	next     session.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks slot values whose
// key matches any of the patterns before they reach the backing
// store. The in-memory state the engine works on is untouched, so
// masking only affects what lands at rest.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next session.StateStore) session.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *session.State) error {
	cloned := state.Snapshot()
	maskMap(cloned.Slots, m.patterns)
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*session.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				masked = true
				break
			}
		}
		if masked {
			continue
		}

		if subMap, ok := m[k].(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
