package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstaulbee/quickscope/pkg/persistence/middleware"
	"github.com/cstaulbee/quickscope/pkg/session"
	"github.com/cstaulbee/quickscope/pkg/slot"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func interviewState() *session.State {
	st := session.New("sess-1", "intake_v1", "basics")
	st.Slots = slot.Store{
		"engagement": map[string]any{"process_name": "Order to Cash"},
		"contact":    map[string]any{"email": "ada@example.com"},
	}
	st.PushUser("ada@example.com")
	return st
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	backend := newMapStore()
	key := generateKey(t)
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(backend)

	ctx := context.Background()
	original := interviewState()
	require.NoError(t, secure.Save(ctx, "sess-1", original))

	// The backend must only see the envelope.
	stored, err := backend.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.NotContains(t, stored.Slots, "engagement")
	assert.Contains(t, stored.Slots, "__encrypted__")
	assert.Empty(t, stored.Messages)
	assert.Equal(t, "intake_v1", stored.FlowID)

	loaded, err := secure.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, original.Slots, loaded.Slots)
	assert.Equal(t, original.Messages, loaded.Messages)
	assert.Equal(t, "basics", loaded.ActiveStageID)
	assert.NotNil(t, loaded.QuestionCursor)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	backend := newMapStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(backend)
	require.NoError(t, oldStore.Save(ctx, "sess-1", interviewState()))

	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(backend)

	loaded, err := rotated.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Contains(t, loaded.Slots, "engagement")

	// Re-saving under the rotated config moves the session to the
	// new key; the old key is no longer needed.
	require.NoError(t, rotated.Save(ctx, "sess-1", loaded))
	fresh := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})(backend)
	_, err = fresh.Load(ctx, "sess-1")
	assert.NoError(t, err)
}

func TestEncryptionMiddleware_WrongKeyFails(t *testing.T) {
	backend := newMapStore()
	ctx := context.Background()

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(backend)
	require.NoError(t, secure.Save(ctx, "sess-1", interviewState()))

	other := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(backend)
	_, err := other.Load(ctx, "sess-1")
	assert.ErrorContains(t, err, "failed to decrypt")
}

func TestEncryptionMiddleware_PlainStateFailsClosed(t *testing.T) {
	backend := newMapStore()
	ctx := context.Background()
	require.NoError(t, backend.Save(ctx, "sess-1", interviewState()))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(backend)
	_, err := secure.Load(ctx, "sess-1")
	assert.ErrorContains(t, err, "missing its encrypted envelope")
}

func TestEncryptionMiddleware_ShortKeyPanics(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}
