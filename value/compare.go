package value

import "fmt"

func isNumeric(k Kind) bool { return k == Int || k == Uint || k == Float }

func asFloat(v Value) float64 {
	switch v.kind {
	case Int:
		return float64(v.i)
	case Uint:
		return float64(v.u)
	case Float:
		return v.f
	default:
		return 0
	}
}

// Equal implements §3's equality rule: same-kind value equality; cross-kind
// numerics (Int/Uint/Float) compare by mathematical value; string and char
// never compare equal to anything but their own kind.
func Equal(a, b Value) bool {
	if isNumeric(a.kind) && isNumeric(b.kind) {
		return asFloat(a) == asFloat(b)
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Absent:
		return true
	case Bool:
		return a.b == b.b
	case Char:
		return a.ch == b.ch
	case String:
		return a.str == b.str
	case Slice:
		if len(a.slice) != len(b.slice) {
			return false
		}
		for i := range a.slice {
			if !Equal(a.slice[i], b.slice[i]) {
				return false
			}
		}
		return true
	case Map:
		if a.m.Len() != b.m.Len() {
			return false
		}
		for _, e := range a.m.Entries() {
			bv, ok := b.m.Get(e.Key)
			if !ok || !Equal(e.Val, bv) {
				return false
			}
		}
		return true
	case Record:
		return a.rec == b.rec
	case Func:
		return a.fn == b.fn
	default:
		return false
	}
}

// Compare implements ordering: defined on two values from the same numeric
// family (Int/Uint/Float, compared mathematically so differently-sized
// numeric literals remain orderable against each other — a deliberate
// broadening of a strict "same-kind" rule) and on two strings,
// lexicographically.
// It returns -1, 0 or 1, or an error if the pair is not orderable.
func Compare(a, b Value) (int, error) {
	if isNumeric(a.kind) && isNumeric(b.kind) {
		af, bf := asFloat(a), asFloat(b)
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if a.kind == String && b.kind == String {
		switch {
		case a.str < b.str:
			return -1, nil
		case a.str > b.str:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, fmt.Errorf("values of kind %s and %s are not orderable", a.kind, b.kind)
}
