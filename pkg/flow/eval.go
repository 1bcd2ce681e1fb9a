package flow

import (
	"reflect"

	"github.com/expr-lang/expr"

	"github.com/cstaulbee/quickscope/pkg/slot"
)

// Eval checks the criterion against the slot store. Evaluation is
// deterministic and side-effect free; an expression error counts as a
// non-match rather than failing the turn.
func (c *Criterion) Eval(store slot.Store) bool {
	if c.Expr != "" {
		if c.program == nil {
			return false
		}
		out, err := expr.Run(c.program, map[string]any(store))
		if err != nil {
			return false
		}
		matched, ok := out.(bool)
		return ok && matched
	}

	value, exists := slot.Lookup(store, c.Slot)

	switch {
	case c.Exists != nil:
		return exists == *c.Exists

	case c.Equals != nil:
		return exists && ValueEquals(value, c.Equals)

	case len(c.In) > 0:
		if !exists {
			return false
		}
		for _, candidate := range c.In {
			if ValueEquals(value, candidate) {
				return true
			}
		}
		return false

	case c.MinItems != nil || c.MaxItems != nil:
		list, ok := value.([]any)
		if !ok {
			return false
		}
		if c.MinItems != nil && len(list) < *c.MinItems {
			return false
		}
		if c.MaxItems != nil && len(list) > *c.MaxItems {
			return false
		}
		return true

	default:
		// A bare slot reference is an existence test.
		return exists && value != nil
	}
}

// Satisfied evaluates the stop condition against the signal slot.
func (sc *StopCondition) Satisfied(store slot.Store) bool {
	value, exists := slot.Lookup(store, sc.SignalSlot)

	when := sc.When
	if when == "" {
		when = StopWhenEmpty
	}

	switch when {
	case StopWhenAbsent:
		return !exists || value == nil
	case StopWhenEquals:
		return exists && ValueEquals(value, sc.Value)
	default: // StopWhenEmpty
		if !exists || value == nil {
			return true
		}
		switch v := value.(type) {
		case []any:
			return len(v) == 0
		case map[string]any:
			return len(v) == 0
		case string:
			return v == ""
		}
		return false
	}
}

// ValueEquals compares two values for routing purposes. Numeric values
// compare by magnitude so YAML ints match JSON floats; everything else
// uses deep equality.
func ValueEquals(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
