package slot

import "fmt"

// ConflictError reports a write through a path whose intermediate segment
// already holds a scalar where a container is required.
type ConflictError struct {
	Path     string
	Segment  string
	Existing any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("write conflict at %q: segment %q holds %T, not a container", e.Path, e.Segment, e.Existing)
}

// Write stores value at path, creating intermediate containers as needed.
// A path ending in an explicit index overwrites that index, padding the
// list with nils if it is shorter. A path ending in the append marker
// pushes value as a new last element. Sibling keys are never touched.
func Write(store Store, path string, value any) error {
	segs, err := ParsePath(path)
	if err != nil {
		return err
	}

	current := map[string]any(store)

	for _, seg := range segs[:len(segs)-1] {
		next, err := descend(current, seg, path)
		if err != nil {
			return err
		}
		current = next
	}

	return writeFinal(current, segs[len(segs)-1], path, value)
}

// descend resolves one intermediate segment, materializing missing
// containers, and returns the mapping to continue from.
func descend(current map[string]any, seg Segment, path string) (map[string]any, error) {
	if !seg.HasIndex {
		child, ok := current[seg.Key]
		if !ok || child == nil {
			m := make(map[string]any)
			current[seg.Key] = m
			return m, nil
		}
		m, ok := child.(map[string]any)
		if !ok {
			return nil, &ConflictError{Path: path, Segment: seg.Key, Existing: child}
		}
		return m, nil
	}

	list, err := ensureList(current, seg.Key, path)
	if err != nil {
		return nil, err
	}
	for len(list) <= seg.Index {
		list = append(list, nil)
	}
	current[seg.Key] = list

	elem := list[seg.Index]
	if elem == nil {
		m := make(map[string]any)
		list[seg.Index] = m
		return m, nil
	}
	m, ok := elem.(map[string]any)
	if !ok {
		return nil, &ConflictError{Path: path, Segment: fmt.Sprintf("%s[%d]", seg.Key, seg.Index), Existing: elem}
	}
	return m, nil
}

func writeFinal(current map[string]any, seg Segment, path string, value any) error {
	switch {
	case seg.Append:
		list, err := ensureList(current, seg.Key, path)
		if err != nil {
			return err
		}
		current[seg.Key] = append(list, value)

	case seg.HasIndex:
		list, err := ensureList(current, seg.Key, path)
		if err != nil {
			return err
		}
		for len(list) <= seg.Index {
			list = append(list, nil)
		}
		list[seg.Index] = value
		current[seg.Key] = list

	default:
		current[seg.Key] = value
	}
	return nil
}

func ensureList(current map[string]any, key, path string) ([]any, error) {
	child, ok := current[key]
	if !ok || child == nil {
		return []any{}, nil
	}
	list, ok := child.([]any)
	if !ok {
		return nil, &ConflictError{Path: path, Segment: key, Existing: child}
	}
	return list, nil
}
