package slot

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a parsed slot path.
type Segment struct {
	Key string

	// Index addresses an element of the list stored under Key.
	// Only meaningful when HasIndex is true.
	Index    int
	HasIndex bool

	// Append marks the `key[]` form: push a new last element.
	// Valid only on the final segment of a path.
	Append bool
}

// ParsePath splits a dotted path into segments.
// It rejects empty segments, negative or non-numeric indices, and an
// append marker anywhere but the final segment.
func ParsePath(path string) ([]Segment, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty slot path")
	}

	parts := strings.Split(path, ".")
	segs := make([]Segment, 0, len(parts))

	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("slot path %q: empty segment", path)
		}

		open := strings.IndexByte(part, '[')
		if open < 0 {
			if strings.ContainsAny(part, "]") {
				return nil, fmt.Errorf("slot path %q: unmatched ']' in %q", path, part)
			}
			segs = append(segs, Segment{Key: part})
			continue
		}

		if !strings.HasSuffix(part, "]") || open == 0 {
			return nil, fmt.Errorf("slot path %q: malformed segment %q", path, part)
		}

		key := part[:open]
		idxStr := part[open+1 : len(part)-1]

		if idxStr == "" {
			if i != len(parts)-1 {
				return nil, fmt.Errorf("slot path %q: append marker only allowed on final segment", path)
			}
			segs = append(segs, Segment{Key: key, Append: true})
			continue
		}

		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("slot path %q: index %q must be a non-negative integer", path, idxStr)
		}
		segs = append(segs, Segment{Key: key, Index: idx, HasIndex: true})
	}

	return segs, nil
}
