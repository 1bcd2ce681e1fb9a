package memory

import (
	"fmt"
	"sync"

	"github.com/cstaulbee/quickscope/pkg/flow"
)

// Source is an in-memory flow.Source, pre-populated by tests or
// embedded documents.
type Source struct {
	mu    sync.RWMutex
	flows map[string][]byte
}

// NewSource creates an empty source.
func NewSource() *Source {
	return &Source{flows: make(map[string][]byte)}
}

// Add registers a raw flow document under an id.
func (s *Source) Add(id string, doc []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[id] = doc
}

// Flow returns the raw document for an id.
func (s *Source) Flow(id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.flows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", flow.ErrFlowNotFound, id)
	}
	return doc, nil
}

// List returns the registered flow ids.
func (s *Source) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.flows))
	for id := range s.flows {
		ids = append(ids, id)
	}
	return ids, nil
}
