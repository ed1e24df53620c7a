package value

import "sort"

// MapValue is a mapping from a comparable Value key to a Value; Entries
// reports its entries sorted by the rendered form of the key. Lookup goes through a canonical key so that cross-kind numeric
// keys (Int(3) and Uint(3)) collide the way Equal says they must.
type MapValue struct {
	keys []Value
	vals []Value
	idx  map[interface{}]int
}

// NewEmptyMap returns an empty, ready-to-use MapValue.
func NewEmptyMap() *MapValue {
	return &MapValue{idx: make(map[interface{}]int)}
}

// canonicalKey reduces a Value to a Go-comparable representation used for
// map indexing, so that Int/Uint/Float keys with the same mathematical
// value land in the same bucket (see Equal).
func canonicalKey(k Value) (interface{}, bool) {
	switch k.kind {
	case Bool:
		return k.b, true
	case Int:
		return numericKey(float64(k.i)), true
	case Uint:
		return numericKey(float64(k.u)), true
	case Float:
		return numericKey(k.f), true
	case Char:
		return "char:" + string(k.ch), true
	case String:
		return "str:" + k.str, true
	default:
		return nil, false
	}
}

// numericKey maps a mathematical value to a key bucket shared by every
// numeric Kind, so Int(3)==Uint(3)==Float(3.0) share one map slot.
func numericKey(f float64) interface{} {
	return f
}

// Set inserts or updates the value for key k. Returns an error if k is not
// a comparable/hashable kind.
func (m *MapValue) Set(k, v Value) error {
	ck, ok := canonicalKey(k)
	if !ok {
		return errNotHashable(k)
	}
	if i, found := m.idx[ck]; found {
		m.keys[i] = k
		m.vals[i] = v
		return nil
	}
	m.idx[ck] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
	return nil
}

// Get looks up the value for key k. ok is false if k is absent or
// unhashable.
func (m *MapValue) Get(k Value) (Value, bool) {
	ck, ok := canonicalKey(k)
	if !ok {
		return Nil, false
	}
	i, found := m.idx[ck]
	if !found {
		return Nil, false
	}
	return m.vals[i], true
}

// Len returns the number of entries.
func (m *MapValue) Len() int { return len(m.keys) }

// Entries returns the map's entries in the stable, deterministic order
// used for iteration: sorted by the rendered (Stringify) form of the key.
// This fixes Open Question (a) of the spec: the source implementation
// leaves map iteration order undefined.
func (m *MapValue) Entries() []MapEntry {
	out := make([]MapEntry, len(m.keys))
	for i := range m.keys {
		out[i] = MapEntry{Key: m.keys[i], Val: m.vals[i]}
	}
	sort.Slice(out, func(i, j int) bool {
		return Stringify(out[i].Key) < Stringify(out[j].Key)
	})
	return out
}

// MapEntry is one key/value pair of a MapValue, in iteration order.
type MapEntry struct {
	Key Value
	Val Value
}

func errNotHashable(k Value) error {
	return &notHashableError{kind: k.kind}
}

type notHashableError struct{ kind Kind }

func (e *notHashableError) Error() string {
	return "value of kind " + e.kind.String() + " is not a comparable map key"
}
