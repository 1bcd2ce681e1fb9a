package cli

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkinFlow = `
id: checkin
start: hello
stages:
  - id: hello
    type: message
    prompt: "Hello."
    next: mood
  - id: mood
    type: questions
    next: end
    questions:
      - id: q_mood
        ask: "How are you today?"
        save_to: checkin.mood
`

func writeFlowDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "checkin.yaml"), []byte(checkinFlow), 0o644))
	return dir
}

func TestCreateEngine_Defaults(t *testing.T) {
	opts := RunOptions{FlowDir: writeFlowDir(t)}

	engine, closer, err := CreateEngine(opts, createLogger(false))
	require.NoError(t, err)
	defer closer()

	flows, err := engine.Flows()
	require.NoError(t, err)
	assert.Equal(t, []string{"checkin"}, flows)
}

func TestCreateEngine_UnknownStore(t *testing.T) {
	_, _, err := CreateEngine(RunOptions{FlowDir: ".", Store: "etcd"}, createLogger(false))
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestCreateEngine_FileStore(t *testing.T) {
	dir := writeFlowDir(t)
	opts := RunOptions{FlowDir: dir, Store: "file", StorePath: filepath.Join(dir, "sessions")}

	engine, closer, err := CreateEngine(opts, createLogger(false))
	require.NoError(t, err)
	defer closer()

	turn, err := engine.StartSession(context.Background(), "checkin")
	require.NoError(t, err)

	// The session must land on disk.
	entries, err := os.ReadDir(filepath.Join(dir, "sessions"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), turn.SessionID)
}

func TestOpenSession_ResumeAndStart(t *testing.T) {
	opts := RunOptions{FlowDir: writeFlowDir(t), FlowID: "checkin", SessionID: "weekly"}

	engine, closer, err := CreateEngine(opts, createLogger(false))
	require.NoError(t, err)
	defer closer()
	ctx := context.Background()

	turn, resumed, err := openSession(ctx, engine, opts)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Equal(t, "weekly", turn.SessionID)
	require.NotNil(t, turn.Pending)

	turn, resumed, err = openSession(ctx, engine, opts)
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Contains(t, turn.Output, "How are you today?")
}

func TestIsQuitCommand(t *testing.T) {
	assert.True(t, isQuitCommand("q"))
	assert.True(t, isQuitCommand("QUIT"))
	assert.False(t, isQuitCommand("quite sure"))
}

func TestCreateEngine_EncryptedFileStore(t *testing.T) {
	dir := writeFlowDir(t)
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	opts := RunOptions{
		FlowDir:       dir,
		Store:         "file",
		StorePath:     filepath.Join(dir, "sessions"),
		EncryptionKey: base64.StdEncoding.EncodeToString(key),
	}

	engine, closer, err := CreateEngine(opts, createLogger(false))
	require.NoError(t, err)
	defer closer()

	turn, err := engine.StartSession(context.Background(), "checkin")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "sessions", turn.SessionID+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "__encrypted__")
	assert.NotContains(t, string(raw), "How are you today?")

	// The engine still reads its own writes.
	st, err := engine.State(context.Background(), turn.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "mood", st.ActiveStageID)
}

func TestCreateEngine_BadEncryptionKey(t *testing.T) {
	opts := RunOptions{FlowDir: ".", EncryptionKey: "not-base64!!"}
	_, _, err := CreateEngine(opts, createLogger(false))
	assert.ErrorContains(t, err, "invalid encryption key")

	opts.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("too short"))
	_, _, err = CreateEngine(opts, createLogger(false))
	assert.ErrorContains(t, err, "32 bytes")
}
