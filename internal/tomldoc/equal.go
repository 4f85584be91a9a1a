package tomldoc

import (
	"math"
	"time"
)

// Equal reports whether a and b hold the same data. Formatting, comments and
// key order are ignored; scalars must share a kind to be equal.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case *Scalar:
		return scalarEqual(av, b.(*Scalar))
	case *Array:
		bv := b.(*Array)
		if len(av.items) != len(bv.items) {
			return false
		}
		for i := range av.items {
			if !Equal(av.items[i].node, bv.items[i].node) {
				return false
			}
		}
		return true
	case *Table:
		bv := b.(*Table)
		if len(av.entries) != len(bv.entries) {
			return false
		}
		for _, e := range av.entries {
			other := bv.Get(e.key)
			if other == nil || !Equal(e.value, other) {
				return false
			}
		}
		return true
	}
	return false
}

func scalarEqual(a, b *Scalar) bool {
	switch av := a.value.(type) {
	case float64:
		bv := b.value.(float64)
		if math.IsNaN(av) && math.IsNaN(bv) {
			return true
		}
		return av == bv
	case time.Time:
		return av.Equal(b.value.(time.Time))
	default:
		return a.value == b.value
	}
}
