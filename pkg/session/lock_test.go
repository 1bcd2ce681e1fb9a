package session

import (
	"context"
	"fmt"
	"testing"
)

type nopStore struct{}

func (nopStore) Save(ctx context.Context, sessionID string, state *State) error { return nil }
func (nopStore) Load(ctx context.Context, sessionID string) (*State, error)     { return nil, nil }
func (nopStore) Delete(ctx context.Context, sessionID string) error             { return nil }
func (nopStore) List(ctx context.Context) ([]string, error)                     { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, &State{})
		_ = mgr.Delete(ctx, sid)
	}

	// Every acquire must be paired with a release, otherwise the lock
	// map grows forever.
	if remaining := len(mgr.locks); remaining != 0 {
		t.Errorf("lock leak: %d entries remaining after delete", remaining)
	}
}
