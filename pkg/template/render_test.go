package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstaulbee/quickscope/pkg/slot"
)

func TestRender(t *testing.T) {
	store := slot.Store{
		"engagement": map[string]any{
			"process_name": "Order to Cash",
		},
		"workflows": map[string]any{
			"maps": []any{
				map[string]any{"trigger": "customer places order"},
			},
			"selected": []any{"intake", "billing"},
		},
		"count": 3,
	}

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{
			name: "simple path",
			tmpl: "Process: {{engagement.process_name}}",
			want: "Process: Order to Cash",
		},
		{
			name: "indexed path",
			tmpl: "Trigger: {{workflows.maps[0].trigger}}",
			want: "Trigger: customer places order",
		},
		{
			name: "list renders as json",
			tmpl: "{{workflows.selected}}",
			want: `["intake","billing"]`,
		},
		{
			name: "numeric value",
			tmpl: "seen {{count}} times",
			want: "seen 3 times",
		},
		{
			name: "missing path renders placeholder",
			tmpl: "Name: {{engagement.owner}}",
			want: "Name: [engagement.owner]",
		},
		{
			name: "out of range index is a gap",
			tmpl: "{{workflows.maps[4].trigger}}",
			want: "[workflows.maps[4].trigger]",
		},
		{
			name: "negative index is a gap",
			tmpl: "{{workflows.maps[-1]}}",
			want: "[workflows.maps[-1]]",
		},
		{
			name: "non numeric index is a gap",
			tmpl: "{{workflows.maps[first]}}",
			want: "[workflows.maps[first]]",
		},
		{
			name: "surrounding whitespace tolerated",
			tmpl: "{{ engagement.process_name }}",
			want: "Order to Cash",
		},
		{
			name: "no references",
			tmpl: "plain text",
			want: "plain text",
		},
		{
			name: "empty template",
			tmpl: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.tmpl, store))
		})
	}
}

func TestRenderWithGaps(t *testing.T) {
	store := slot.Store{"a": "x"}

	out, gaps := RenderWithGaps("{{a}} {{b}} {{c.d}}", store)
	assert.Equal(t, "x [b] [c.d]", out)
	require.Equal(t, []string{"b", "c.d"}, gaps)
}

func TestRenderRoundTrip(t *testing.T) {
	// Writing v at p then rendering {{p}} yields the literal form of v.
	store := slot.NewStore()
	require.NoError(t, slot.Write(store, "a.b[1].c", "deep value"))

	assert.Equal(t, "deep value", Render("{{a.b[1].c}}", store))
}
