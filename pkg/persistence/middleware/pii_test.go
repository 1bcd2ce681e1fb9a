package middleware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstaulbee/quickscope/pkg/persistence/middleware"
)

func TestPIIMiddleware_MasksMatchingSlots(t *testing.T) {
	backend := newMapStore()
	masked := middleware.NewPIIMiddleware([]string{"email", "(?i)ssn"})(backend)

	ctx := context.Background()
	st := interviewState()
	require.NoError(t, masked.Save(ctx, "sess-1", st))

	stored, err := backend.Load(ctx, "sess-1")
	require.NoError(t, err)

	contact := stored.Slots["contact"].(map[string]any)
	assert.Equal(t, "***", contact["email"])

	engagement := stored.Slots["engagement"].(map[string]any)
	assert.Equal(t, "Order to Cash", engagement["process_name"])

	// The engine's in-memory state stays intact.
	assert.Equal(t, "ada@example.com", st.Slots["contact"].(map[string]any)["email"])
}

func TestPIIMiddleware_LoadPassesThrough(t *testing.T) {
	backend := newMapStore()
	masked := middleware.NewPIIMiddleware([]string{"email"})(backend)

	ctx := context.Background()
	require.NoError(t, backend.Save(ctx, "sess-1", interviewState()))

	loaded, err := masked.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", loaded.Slots["contact"].(map[string]any)["email"])
}

func TestChain_OrderIsOutsideIn(t *testing.T) {
	backend := newMapStore()
	store := middleware.Chain(backend,
		middleware.NewPIIMiddleware([]string{"email"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "sess-1", interviewState()))

	// The backend sees the envelope, not the masked plaintext.
	stored, err := backend.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Contains(t, stored.Slots, "__encrypted__")

	// Loading decrypts, but the email was masked before encryption.
	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "***", loaded.Slots["contact"].(map[string]any)["email"])
}
