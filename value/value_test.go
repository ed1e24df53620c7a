package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	assert.False(t, Nil.Truthy())
	assert.False(t, NewBool(false).Truthy())
	assert.True(t, NewBool(true).Truthy())
	assert.False(t, NewInt(64, 0).Truthy())
	assert.True(t, NewInt(64, 1).Truthy())
	assert.False(t, NewString("").Truthy())
	assert.True(t, NewString("x").Truthy())
	assert.False(t, NewSlice(nil).Truthy())
	assert.True(t, NewSlice([]Value{NewInt(8, 1)}).Truthy())
	assert.False(t, NewChar(1, 0).Truthy())
}

func TestEqualCrossKindNumeric(t *testing.T) {
	assert.True(t, Equal(NewInt(8, 3), NewUint(32, 3)))
	assert.True(t, Equal(NewInt(8, 3), NewFloat(64, 3.0)))
	assert.False(t, Equal(NewString("a"), NewChar(1, 'a')))
	assert.False(t, Equal(NewInt(8, 3), NewInt(8, 4)))
}

func TestCompare(t *testing.T) {
	c, err := Compare(NewInt(8, 3), NewFloat(64, 4))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare(NewString("a"), NewString("b"))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	_, err = Compare(NewString("a"), NewInt(8, 1))
	assert.Error(t, err)
}

func TestIndexSlice(t *testing.T) {
	s := NewSlice([]Value{NewInt(8, 1), NewInt(8, 2), NewInt(8, 3)})
	v, err := s.Index(NewInt(64, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.AsInt())

	_, err = s.Index(NewInt(64, 10))
	assert.Error(t, err)
}

func TestMapStableIteration(t *testing.T) {
	m := NewEmptyMap()
	require.NoError(t, m.Set(NewString("b"), NewInt(8, 2)))
	require.NoError(t, m.Set(NewString("a"), NewInt(8, 1)))
	require.NoError(t, m.Set(NewString("c"), NewInt(8, 3)))

	entries := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Key.AsString())
	assert.Equal(t, "b", entries[1].Key.AsString())
	assert.Equal(t, "c", entries[2].Key.AsString())
}

func TestRecordMemberAutoInvokesZeroArgMethod(t *testing.T) {
	rec := &RecordValue{
		Fields: map[string]Value{"Name": NewString("Joe")},
		Methods: map[string]*FuncValue{
			"Greeting": {
				Arity: 0,
				Call: func(args []Value) (Value, error) {
					return NewString("hi"), nil
				},
			},
		},
	}
	v := NewRecord(rec)

	got, err := Member(v, "Name")
	require.NoError(t, err)
	assert.Equal(t, "Joe", got.AsString())

	got, err = Member(v, "Greeting")
	require.NoError(t, err)
	assert.Equal(t, "hi", got.AsString())
}

func TestMemberOnAbsentStopsSilently(t *testing.T) {
	got, err := Member(Nil, "X")
	require.NoError(t, err)
	assert.True(t, got.IsAbsent())
}

func TestInvokeArityReconciliation(t *testing.T) {
	fn := NewFunc(&FuncValue{
		Arity: 1,
		Call: func(args []Value) (Value, error) {
			return NewInt(64, args[0].AsInt()*2), nil
		},
	})
	out, err := fn.Invoke([]Value{NewInt(64, 21)})
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.AsInt())

	variadic := NewFunc(&FuncValue{
		Arity:    0,
		Variadic: true,
		Call: func(args []Value) (Value, error) {
			return NewInt(64, int64(len(args))), nil
		},
	})
	out, err = variadic.Invoke([]Value{NewInt(8, 1), NewInt(8, 2), NewInt(8, 3)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.AsInt())
}

func TestStringifyDiagnosticForms(t *testing.T) {
	assert.Equal(t, "true", Stringify(NewBool(true)))
	assert.Equal(t, "3", Stringify(NewInt(8, 3)))
	assert.Equal(t, "", Stringify(Nil))
	assert.Equal(t, "<slice 2>", Stringify(NewSlice([]Value{Nil, Nil})))
}

func TestFromGoStructAndFunc(t *testing.T) {
	type Person struct{ Name string }
	v, err := FromGo(Person{Name: "Ada"})
	require.NoError(t, err)
	require.Equal(t, Record, v.Kind())

	add, err := FromGo(func(a, b int) int { return a + b })
	require.NoError(t, err)
	out, err := add.Invoke([]Value{NewInt(64, 1), NewInt(64, 2)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.AsInt())
}
