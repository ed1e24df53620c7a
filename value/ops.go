package value

import "fmt"

// Truthy implements §3's truthiness rule: false iff absent, boolean false,
// numeric zero, empty string, empty sequence/map, or the zero character.
func (v Value) Truthy() bool {
	switch v.kind {
	case Absent:
		return false
	case Bool:
		return v.b
	case Int:
		return v.i != 0
	case Uint:
		return v.u != 0
	case Float:
		return v.f != 0
	case Char:
		return v.ch != 0
	case String:
		return v.str != ""
	case Slice:
		return len(v.slice) != 0
	case Map:
		return v.m != nil && v.m.Len() != 0
	case Record, Func:
		return true
	default:
		return false
	}
}

// Length implements §3's length rule: defined on string, sequence, map and
// record (field count); undefined (an error) otherwise.
func (v Value) Length() (int, error) {
	switch v.kind {
	case String:
		return len(v.str), nil
	case Slice:
		return len(v.slice), nil
	case Map:
		if v.m == nil {
			return 0, nil
		}
		return v.m.Len(), nil
	case Record:
		return len(v.rec.Fields), nil
	default:
		return 0, fmt.Errorf("len of %s value", v.kind)
	}
}

// Index implements §3's single-step indexing: sequence by integer,
// map by any comparable key, record by string field name. It does not
// auto-invoke zero-arg methods (that is Member's job, used for dotted
// field chains); see §4.1's distinction between index and field traversal.
func (v Value) Index(k Value) (Value, error) {
	switch v.kind {
	case Slice:
		i, err := asIndex(k)
		if err != nil {
			return Nil, err
		}
		if i < 0 || i >= len(v.slice) {
			return Nil, fmt.Errorf("index %d out of range [0,%d)", i, len(v.slice))
		}
		return v.slice[i], nil
	case Map:
		if v.m == nil {
			return Nil, fmt.Errorf("index into nil map")
		}
		val, ok := v.m.Get(k)
		if !ok {
			return Nil, fmt.Errorf("map has no entry for key %s", Stringify(k))
		}
		return val, nil
	case String:
		i, err := asIndex(k)
		if err != nil {
			return Nil, err
		}
		if i < 0 || i >= len(v.str) {
			return Nil, fmt.Errorf("index %d out of range [0,%d)", i, len(v.str))
		}
		return NewChar(1, rune(v.str[i])), nil
	case Record:
		if k.kind != String {
			return Nil, fmt.Errorf("record index key must be a string, got %s", k.kind)
		}
		if f, ok := v.rec.Fields[k.str]; ok {
			return f, nil
		}
		if m, ok := v.rec.Methods[k.str]; ok {
			return NewFunc(m), nil
		}
		return Nil, fmt.Errorf("record has no field or method %q", k.str)
	default:
		return Nil, fmt.Errorf("cannot index a %s value", v.kind)
	}
}

// IndexChain performs repeated indexing left-to-right, aborting on the
// first failure (§4.1 "Index chain").
func IndexChain(base Value, keys []Value) (Value, error) {
	cur := base
	for _, k := range keys {
		next, err := cur.Index(k)
		if err != nil {
			return Nil, err
		}
		cur = next
	}
	return cur, nil
}

func asIndex(k Value) (int, error) {
	switch k.kind {
	case Int:
		return int(k.i), nil
	case Uint:
		return int(k.u), nil
	default:
		return 0, fmt.Errorf("index key must be an integer, got %s", k.kind)
	}
}

// Member implements §3/§4.1's field-or-method lookup with delegate
// auto-invocation: a traversal on an absent value yields absent and stops
// silently; if the current value is itself a zero-argument callable it is
// invoked first and the name is then applied to the result; a method with
// zero remaining required arguments is auto-invoked, otherwise the
// callable itself is returned.
func Member(cur Value, name string) (Value, error) {
	if cur.IsAbsent() {
		return Nil, nil
	}
	if cur.kind == Func && cur.fn.Arity == 0 && !cur.fn.Variadic {
		invoked, err := cur.fn.Call(nil)
		if err != nil {
			return Nil, err
		}
		cur = invoked
	}
	if cur.kind != Record {
		return Nil, fmt.Errorf("cannot access field %q of a %s value", name, cur.kind)
	}
	if f, ok := cur.rec.Fields[name]; ok {
		return f, nil
	}
	if m, ok := cur.rec.Methods[name]; ok {
		if m.Arity == 0 && !m.Variadic {
			return m.Call(nil)
		}
		return NewFunc(m), nil
	}
	return Nil, fmt.Errorf("record has no field or method %q", name)
}

// MemberChain applies Member repeatedly, left to right.
func MemberChain(cur Value, names []string) (Value, error) {
	for _, name := range names {
		next, err := Member(cur, name)
		if err != nil {
			return Nil, err
		}
		cur = next
	}
	return cur, nil
}

// Callable reports whether v can be invoked.
func (v Value) Callable() bool { return v.kind == Func }

// Invoke calls a callable Value, applying the arity-reconciliation policy
// of §4.1: if the declared arity is 1 and exactly 1 argument is supplied,
// call directly; otherwise, if the callee is variadic, pack the arguments
// into a single variadic call; otherwise the arities must match exactly.
func (v Value) Invoke(args []Value) (Value, error) {
	if v.kind != Func {
		return Nil, fmt.Errorf("cannot call a %s value", v.kind)
	}
	f := v.fn
	if f.Arity == 1 && len(args) == 1 {
		return f.Call(args)
	}
	if f.Variadic {
		if len(args) < f.Arity {
			return Nil, fmt.Errorf("not enough arguments: want at least %d, got %d", f.Arity, len(args))
		}
		return f.Call(args)
	}
	if len(args) != f.Arity {
		return Nil, fmt.Errorf("wrong number of arguments: want %d, got %d", f.Arity, len(args))
	}
	return f.Call(args)
}

// Iterator yields the key/value pairs of a Value during range (§3
// "iterate"): sequence (key 0,1,2,…), map (stable order, see MapValue.Entries),
// integer n (key/value both 0..n-1), string (key = byte index, value =
// character).
type Iterator struct {
	items []iterItem
	pos   int
}

type iterItem struct {
	key Value
	val Value
}

// Next advances the iterator. It returns false when exhausted.
func (it *Iterator) Next() (key, val Value, ok bool) {
	if it.pos >= len(it.items) {
		return Nil, Nil, false
	}
	item := it.items[it.pos]
	it.pos++
	return item.key, item.val, true
}

// Iterate builds an Iterator over v, or an error if v is not iterable.
func Iterate(v Value) (*Iterator, error) {
	switch v.kind {
	case Slice:
		items := make([]iterItem, len(v.slice))
		for i, e := range v.slice {
			items[i] = iterItem{key: NewInt(64, int64(i)), val: e}
		}
		return &Iterator{items: items}, nil
	case Map:
		if v.m == nil {
			return &Iterator{}, nil
		}
		entries := v.m.Entries()
		items := make([]iterItem, len(entries))
		for i, e := range entries {
			items[i] = iterItem{key: e.Key, val: e.Val}
		}
		return &Iterator{items: items}, nil
	case String:
		var items []iterItem
		for i, r := range v.str {
			items = append(items, iterItem{key: NewInt(64, int64(i)), val: NewChar(runeWidth(r), r)})
		}
		return &Iterator{items: items}, nil
	case Int, Uint:
		n, err := asIndex(v)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("cannot range over a negative count")
		}
		items := make([]iterItem, n)
		for i := 0; i < n; i++ {
			items[i] = iterItem{key: NewInt(64, int64(i)), val: NewInt(64, int64(i))}
		}
		return &Iterator{items: items}, nil
	default:
		return nil, fmt.Errorf("cannot range over a %s value", v.kind)
	}
}

func runeWidth(r rune) uint8 {
	switch {
	case r < 0x100:
		return 1
	case r < 0x10000:
		return 2
	default:
		return 4
	}
}
