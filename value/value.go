// Package value implements the dynamic tagged value model that the
// template evaluator operates on: a closed union over absence, booleans,
// sized integers/floats/characters, strings, sequences, maps, records and
// callables. There is no reflection-based dispatch in the core; every
// operation is a switch over Kind.
package value

import "fmt"

// Kind identifies which alternative of the tagged union a Value holds.
type Kind int

const (
	Absent Kind = iota
	Bool
	Int
	Uint
	Float
	Char
	String
	Slice
	Map
	Record
	Func
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case Char:
		return "char"
	case String:
		return "string"
	case Slice:
		return "slice"
	case Map:
		return "map"
	case Record:
		return "record"
	case Func:
		return "func"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a small tagged union. Only the fields relevant to kind are
// meaningful; the rest are zero. Value is cheap to copy by value; Slice,
// Map and Record contents are shared by reference, as the data model
// requires ("observers see the same sequence").
type Value struct {
	kind Kind

	bits  uint8 // bit width for Int/Uint/Float; byte width (1/2/4) for Char
	b     bool
	i     int64
	u     uint64
	f     float64
	ch    rune
	str   string
	slice []Value
	m     *MapValue
	rec   *RecordValue
	fn    *FuncValue
}

// Kind returns the tag of this Value.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is the absent/unit value.
func (v Value) IsAbsent() bool { return v.kind == Absent }

// Nil is the absent/unit value.
var Nil = Value{kind: Absent}

// NewBool constructs a boolean Value.
func NewBool(b bool) Value { return Value{kind: Bool, b: b} }

// NewInt constructs a signed integer Value of the given bit width (8/16/32/64).
func NewInt(bits uint8, i int64) Value { return Value{kind: Int, bits: bits, i: i} }

// NewUint constructs an unsigned integer Value of the given bit width (8/16/32/64).
func NewUint(bits uint8, u uint64) Value { return Value{kind: Uint, bits: bits, u: u} }

// NewFloat constructs a floating-point Value of the given bit width (32/64).
func NewFloat(bits uint8, f float64) Value { return Value{kind: Float, bits: bits, f: f} }

// NewChar constructs a character Value; width is the code point's byte
// width (1, 2 or 4).
func NewChar(width uint8, r rune) Value { return Value{kind: Char, bits: width, ch: r} }

// NewString constructs a string Value.
func NewString(s string) Value { return Value{kind: String, str: s} }

// NewSlice constructs a sequence Value. The backing array is shared, not copied.
func NewSlice(elems []Value) Value { return Value{kind: Slice, slice: elems} }

// NewMap constructs a map Value from the given MapValue.
func NewMap(m *MapValue) Value { return Value{kind: Map, m: m} }

// NewRecord constructs a record Value.
func NewRecord(r *RecordValue) Value { return Value{kind: Record, rec: r} }

// NewFunc constructs a callable Value.
func NewFunc(f *FuncValue) Value { return Value{kind: Func, fn: f} }

// Bits returns the declared bit width for Int/Uint/Float, or the byte
// width for Char. Zero for other kinds.
func (v Value) Bits() uint8 { return v.bits }

// AsBool returns the boolean payload; valid only when Kind()==Bool.
func (v Value) AsBool() bool { return v.b }

// AsInt returns the signed integer payload; valid only when Kind()==Int.
func (v Value) AsInt() int64 { return v.i }

// AsUint returns the unsigned integer payload; valid only when Kind()==Uint.
func (v Value) AsUint() uint64 { return v.u }

// AsFloat returns the float payload; valid only when Kind()==Float.
func (v Value) AsFloat() float64 { return v.f }

// AsChar returns the code point payload; valid only when Kind()==Char.
func (v Value) AsChar() rune { return v.ch }

// AsString returns the string payload; valid only when Kind()==String.
func (v Value) AsString() string { return v.str }

// AsSlice returns the backing sequence; valid only when Kind()==Slice.
func (v Value) AsSlice() []Value { return v.slice }

// AsMap returns the backing map; valid only when Kind()==Map.
func (v Value) AsMap() *MapValue { return v.m }

// AsRecord returns the backing record; valid only when Kind()==Record.
func (v Value) AsRecord() *RecordValue { return v.rec }

// AsFunc returns the backing callable; valid only when Kind()==Func.
func (v Value) AsFunc() *FuncValue { return v.fn }

// FuncValue is a callable Value: either fixed-arity or variadic. Call
// receives exactly the arguments the caller decided to pass (see
// Value.Invoke's arity-reconciliation policy).
type FuncValue struct {
	Arity    int // number of declared (fixed) parameters
	Variadic bool
	Call     func(args []Value) (Value, error)
}

// RecordValue is a structured value: named fields plus named zero-or-more
// argument methods. Member auto-invokes a zero-argument method; Index
// returns the method as an uncalled Func value.
type RecordValue struct {
	Fields  map[string]Value
	Methods map[string]*FuncValue
}
