package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_CreatesIntermediateContainers(t *testing.T) {
	store := NewStore()

	err := Write(store, "engagement.process_name", "Order to Cash")
	require.NoError(t, err)

	got, ok := Lookup(store, "engagement.process_name")
	require.True(t, ok)
	assert.Equal(t, "Order to Cash", got)
}

func TestWrite_NeverDestroysSiblings(t *testing.T) {
	store := NewStore()
	require.NoError(t, Write(store, "engagement.process_name", "Order to Cash"))
	require.NoError(t, Write(store, "engagement.sponsor", "COO"))

	name, ok := Lookup(store, "engagement.process_name")
	require.True(t, ok)
	assert.Equal(t, "Order to Cash", name)

	sponsor, ok := Lookup(store, "engagement.sponsor")
	require.True(t, ok)
	assert.Equal(t, "COO", sponsor)
}

func TestWrite_ExplicitIndexPadsWithNils(t *testing.T) {
	store := NewStore()
	require.NoError(t, Write(store, "workflows.maps[2].trigger", "new order"))

	maps, ok := Lookup(store, "workflows.maps")
	require.True(t, ok)
	list, ok := maps.([]any)
	require.True(t, ok)
	require.Len(t, list, 3)
	assert.Nil(t, list[0])
	assert.Nil(t, list[1])

	trigger, ok := Lookup(store, "workflows.maps[2].trigger")
	require.True(t, ok)
	assert.Equal(t, "new order", trigger)
}

func TestWrite_IndexOverwrite(t *testing.T) {
	store := NewStore()
	require.NoError(t, Write(store, "items[0]", "first"))
	require.NoError(t, Write(store, "items[0]", "replaced"))

	got, ok := Lookup(store, "items[0]")
	require.True(t, ok)
	assert.Equal(t, "replaced", got)
}

func TestWrite_AppendMarker(t *testing.T) {
	store := NewStore()
	require.NoError(t, Write(store, "workflows.selected[]", "intake"))
	require.NoError(t, Write(store, "workflows.selected[]", "fulfillment"))

	got, ok := Lookup(store, "workflows.selected")
	require.True(t, ok)
	assert.Equal(t, []any{"intake", "fulfillment"}, got)
}

func TestWrite_ConflictOnScalarIntermediate(t *testing.T) {
	store := NewStore()
	require.NoError(t, Write(store, "engagement", "just a string"))

	err := Write(store, "engagement.process_name", "x")
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "engagement", conflict.Segment)

	// The conflicting write must not corrupt the rest of the store.
	got, ok := Lookup(store, "engagement")
	require.True(t, ok)
	assert.Equal(t, "just a string", got)
}

func TestWrite_ConflictOnScalarListElement(t *testing.T) {
	store := NewStore()
	require.NoError(t, Write(store, "steps[0]", "scalar step"))

	err := Write(store, "steps[0].owner", "ops")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestWrite_RejectsMalformedPath(t *testing.T) {
	store := NewStore()
	assert.Error(t, Write(store, "a[not-a-number]", 1))
	assert.Error(t, Write(store, "", 1))
}

func TestLookup_Gaps(t *testing.T) {
	store := Store{
		"workflows": map[string]any{
			"maps": []any{map[string]any{"trigger": "t"}},
		},
		"scalar": "x",
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing key", "workflows.nope"},
		{"out of range index", "workflows.maps[5]"},
		{"index into non-list", "scalar[0]"},
		{"descend through scalar", "scalar.inner"},
		{"malformed index", "workflows.maps[abc]"},
		{"negative index", "workflows.maps[-1]"},
		{"append marker", "workflows.maps[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Lookup(store, tt.path)
			assert.False(t, ok)
		})
	}
}

func TestClone_Isolation(t *testing.T) {
	store := NewStore()
	require.NoError(t, Write(store, "workflows.maps[0].trigger", "t"))

	copied := Clone(store)
	require.NoError(t, Write(copied, "workflows.maps[0].trigger", "changed"))

	orig, _ := Lookup(store, "workflows.maps[0].trigger")
	assert.Equal(t, "t", orig)
}
