package value

import (
	"fmt"
	"reflect"
	"sort"
)

// FromGo bridges a native Go value into the Value union so that callers of
// this package's Template.Execute can hand it ordinary Go data (structs,
// maps, slices, funcs) instead of having to build up value.Value trees by
// hand. This is host glue, not part of the closed Value union itself: the
// core operations in ops.go/compare.go never use reflection.
func FromGo(x interface{}) (Value, error) {
	if x == nil {
		return Nil, nil
	}
	if v, ok := x.(Value); ok {
		return v, nil
	}
	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return Nil, nil
	case reflect.Bool:
		return NewBool(rv.Bool()), nil
	case reflect.Int8:
		return NewInt(8, rv.Int()), nil
	case reflect.Int16:
		return NewInt(16, rv.Int()), nil
	case reflect.Int32:
		return NewInt(32, rv.Int()), nil
	case reflect.Int, reflect.Int64:
		return NewInt(64, rv.Int()), nil
	case reflect.Uint8:
		return NewUint(8, rv.Uint()), nil
	case reflect.Uint16:
		return NewUint(16, rv.Uint()), nil
	case reflect.Uint32:
		return NewUint(32, rv.Uint()), nil
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return NewUint(64, rv.Uint()), nil
	case reflect.Float32:
		return NewFloat(32, rv.Float()), nil
	case reflect.Float64:
		return NewFloat(64, rv.Float()), nil
	case reflect.String:
		return NewString(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return NewSlice(nil), nil
		}
		elems := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := fromReflect(rv.Index(i))
			if err != nil {
				return Nil, err
			}
			elems[i] = ev
		}
		return NewSlice(elems), nil
	case reflect.Map:
		if rv.IsNil() {
			return NewMap(NewEmptyMap()), nil
		}
		m := NewEmptyMap()
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface()) })
		for _, k := range keys {
			kv, err := fromReflect(k)
			if err != nil {
				return Nil, err
			}
			vv, err := fromReflect(rv.MapIndex(k))
			if err != nil {
				return Nil, err
			}
			if err := m.Set(kv, vv); err != nil {
				return Nil, err
			}
		}
		return NewMap(m), nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Nil, nil
		}
		return fromReflect(rv.Elem())
	case reflect.Struct:
		return structToRecord(rv)
	case reflect.Func:
		fv, err := FuncFromReflect(rv)
		if err != nil {
			return Nil, err
		}
		return NewFunc(fv), nil
	default:
		return Nil, fmt.Errorf("cannot convert Go value of kind %s", rv.Kind())
	}
}

func structToRecord(rv reflect.Value) (Value, error) {
	rt := rv.Type()
	fields := make(map[string]Value, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		fv, err := fromReflect(rv.Field(i))
		if err != nil {
			return Nil, err
		}
		fields[sf.Name] = fv
	}
	methods := make(map[string]*FuncValue)
	addr := rv
	if rv.CanAddr() {
		addr = rv.Addr()
	}
	for _, holder := range []reflect.Value{rv, addr} {
		ht := holder.Type()
		for i := 0; i < ht.NumMethod(); i++ {
			m := ht.Method(i)
			if m.PkgPath != "" {
				continue
			}
			if _, exists := methods[m.Name]; exists {
				continue
			}
			fv, err := FuncFromReflect(holder.Method(i))
			if err != nil {
				return Nil, err
			}
			methods[m.Name] = fv
		}
	}
	return NewRecord(&RecordValue{Fields: fields, Methods: methods}), nil
}

// FuncFromReflect wraps a Go func value (already bound, e.g. a method
// value) as a FuncValue, inferring arity/variadic-ness from its type and
// converting arguments/results through FromGo/ToGo at call time. The
// wrapped func may optionally return a trailing error, matching the "user
// callables may themselves raise" contract of §7.
func FuncFromReflect(rv reflect.Value) (*FuncValue, error) {
	rt := rv.Type()
	if rt.Kind() != reflect.Func {
		return nil, fmt.Errorf("not a func: %s", rt)
	}
	numIn := rt.NumIn()
	variadic := rt.IsVariadic()
	arity := numIn
	if variadic {
		arity = numIn - 1
	}
	returnsError := rt.NumOut() > 0 && rt.Out(rt.NumOut()-1) == reflect.TypeOf((*error)(nil)).Elem()
	return &FuncValue{
		Arity:    arity,
		Variadic: variadic,
		Call: func(args []Value) (Value, error) {
			in := make([]reflect.Value, len(args))
			for i, a := range args {
				var target reflect.Type
				switch {
				case variadic && i >= numIn-1:
					target = rt.In(numIn - 1).Elem()
				case i < numIn:
					target = rt.In(i)
				default:
					return Nil, fmt.Errorf("too many arguments")
				}
				gv, err := toGoTyped(a, target)
				if err != nil {
					return Nil, err
				}
				in[i] = gv
			}
			out := rv.Call(in)
			if returnsError && len(out) > 0 {
				errv := out[len(out)-1]
				if !errv.IsNil() {
					return Nil, errv.Interface().(error)
				}
				out = out[:len(out)-1]
			}
			if len(out) == 0 {
				return Nil, nil
			}
			return fromReflect(out[0])
		},
	}, nil
}

func toGoTyped(v Value, target reflect.Type) (reflect.Value, error) {
	if target.Kind() == reflect.Interface {
		return reflect.ValueOf(ToGo(v)), nil
	}
	goVal := ToGo(v)
	if goVal == nil {
		return reflect.Zero(target), nil
	}
	rv := reflect.ValueOf(goVal)
	if rv.Type().ConvertibleTo(target) {
		return rv.Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s value as %s argument", v.Kind(), target)
}

// ToGo converts a Value back into a plain Go value (bool, int64, uint64,
// float64, string, rune, []interface{}, map[string]interface{}), the
// inverse of FromGo, for handing values to native Go functions.
func ToGo(v Value) interface{} {
	switch v.kind {
	case Absent:
		return nil
	case Bool:
		return v.b
	case Int:
		return v.i
	case Uint:
		return v.u
	case Float:
		return v.f
	case Char:
		return v.ch
	case String:
		return v.str
	case Slice:
		out := make([]interface{}, len(v.slice))
		for i, e := range v.slice {
			out[i] = ToGo(e)
		}
		return out
	case Map:
		out := make(map[string]interface{})
		if v.m != nil {
			for _, e := range v.m.Entries() {
				out[Stringify(e.Key)] = ToGo(e.Val)
			}
		}
		return out
	case Record:
		out := make(map[string]interface{}, len(v.rec.Fields))
		for k, f := range v.rec.Fields {
			out[k] = ToGo(f)
		}
		return out
	default:
		return nil
	}
}
