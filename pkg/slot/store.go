package slot

// Store is the mutable nested mapping owned by a single session.
// It is a type alias so values round-trip through JSON persistence
// without conversion.
type Store = map[string]any

// NewStore returns an empty store.
func NewStore() Store {
	return make(Store)
}

// Lookup resolves a dotted path against the store.
// It returns (nil, false) for any gap: missing key, out-of-range index,
// a scalar where a container was expected, or a malformed path.
// Lookup never fails; rendering gaps are recoverable by contract.
func Lookup(store Store, path string) (any, bool) {
	segs, err := ParsePath(path)
	if err != nil {
		return nil, false
	}

	var current any = store
	for _, seg := range segs {
		if seg.Append {
			// Append markers address a write position, not a value.
			return nil, false
		}

		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg.Key]
		if !ok {
			return nil, false
		}

		if seg.HasIndex {
			list, ok := current.([]any)
			if !ok || seg.Index >= len(list) {
				return nil, false
			}
			current = list[seg.Index]
		}
	}
	return current, true
}

// Clone returns a deep copy of the store. Maps and slices are copied
// recursively; scalar values are shared.
func Clone(store Store) Store {
	if store == nil {
		return nil
	}
	return cloneMap(store)
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		return v
	}
}
