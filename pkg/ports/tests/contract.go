// Package tests provides contract suites that every port implementation
// must pass.
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstaulbee/quickscope/pkg/session"
	"github.com/cstaulbee/quickscope/pkg/slot"
)

// RunStateStoreContract verifies that a StateStore implementation
// adheres to the interface contract, including full round-trip of the
// persisted session layout.
func RunStateStoreContract(t *testing.T, store session.StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("SaveAndLoad", func(t *testing.T) {
		state := session.New(sessionID, "intake_v1", "welcome")
		require.NoError(t, slot.Write(state.Slots, "engagement.process_name", "Order to Cash"))
		state.PushBot("What process are we mapping?")
		state.PushUser("Order to Cash")
		state.Pending = &session.Pending{
			StageID:      "basics",
			SaveTo:       "engagement.process_name",
			Ask:          "What process are we mapping?",
			IsClarifying: true,
			HeldAnswer:   "hm",
		}
		state.QuestionCursor["basics"] = 1
		state.AutoAdvanceSteps = 4

		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "intake_v1", loaded.FlowID)
		assert.Equal(t, "welcome", loaded.ActiveStageID)
		assert.Equal(t, 4, loaded.AutoAdvanceSteps)

		name, ok := slot.Lookup(loaded.Slots, "engagement.process_name")
		require.True(t, ok)
		assert.Equal(t, "Order to Cash", name)

		require.NotNil(t, loaded.Pending)
		assert.True(t, loaded.Pending.IsClarifying)
		assert.Equal(t, "hm", loaded.Pending.HeldAnswer)

		require.Len(t, loaded.Messages, 2)
		assert.Equal(t, session.RoleBot, loaded.Messages[0].Role)
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("SaveIsolation", func(t *testing.T) {
		state := session.New(sessionID+"-iso", "f", "welcome")
		require.NoError(t, store.Save(ctx, state.SessionID, state))

		// Mutating the saved state must not leak into the store.
		state.ActiveStageID = "mutated"
		loaded, err := store.Load(ctx, state.SessionID)
		require.NoError(t, err)
		assert.Equal(t, "welcome", loaded.ActiveStageID)

		_ = store.Delete(ctx, state.SessionID)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, session.New(sessionID, "f", "welcome")))
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, session.New(id1, "f", "welcome")))
		require.NoError(t, store.Save(ctx, id2, session.New(id2, "f", "welcome")))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
