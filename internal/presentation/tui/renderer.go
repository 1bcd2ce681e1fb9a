package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders interview prompts as
// markdown using glamour. Falls back to plain text when the renderer
// cannot be built.
func NewRenderer() func(string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(s string) string { return s }
	}

	return func(markdown string) string {
		out, err := r.Render(markdown)
		if err != nil {
			return markdown
		}
		return out
	}
}
