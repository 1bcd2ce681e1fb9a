package middleware_test

import (
	"context"

	"github.com/cstaulbee/quickscope/pkg/session"
)

// mapStore is a plain map-backed store for inspecting what middleware
// actually hands to the backend.
type mapStore struct {
	data map[string]*session.State
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string]*session.State)}
}

func (s *mapStore) Save(ctx context.Context, sessionID string, state *session.State) error {
	s.data[sessionID] = state
	return nil
}

func (s *mapStore) Load(ctx context.Context, sessionID string) (*session.State, error) {
	state, ok := s.data[sessionID]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return state, nil
}

func (s *mapStore) Delete(ctx context.Context, sessionID string) error {
	delete(s.data, sessionID)
	return nil
}

func (s *mapStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ session.StateStore = (*mapStore)(nil)
