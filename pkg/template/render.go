// Package template resolves {{path}} references against a slot store.
//
// Rendering is best-effort by contract: a reference that cannot be
// resolved produces a stable bracketed placeholder instead of an error,
// so a half-filled store never breaks a prompt.
package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/cstaulbee/quickscope/pkg/slot"
)

var refPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Render substitutes every {{path}} occurrence in tmpl with the value
// found at that path in the store. Unresolvable references render as
// the literal path wrapped in brackets.
func Render(tmpl string, store slot.Store) string {
	out, _ := RenderWithGaps(tmpl, store)
	return out
}

// RenderWithGaps is Render plus the list of paths that did not resolve,
// so callers can log resolution gaps without failing the turn.
func RenderWithGaps(tmpl string, store slot.Store) (string, []string) {
	if tmpl == "" {
		return "", nil
	}

	var gaps []string
	out := refPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-2])
		value, ok := slot.Lookup(store, path)
		if !ok || value == nil {
			gaps = append(gaps, path)
			return "[" + path + "]"
		}
		return stringify(value)
	})
	return out, gaps
}

// stringify renders container values as compact JSON and everything else
// via the default format. JSON keeps list/map output deterministic.
func stringify(value any) string {
	switch value.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", value)
	}
}
