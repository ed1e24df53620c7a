// Package builtins implements the fixed function table of spec.md §4.5:
// not, call, index, len, print, println, eq, ne, lt, le, gt, ge. `and`/`or`
// are excluded — they are special forms handled directly by the evaluator
// (§4.4 Command evaluation step 1) and never appear as callable Values.
//
// The name set is grounded on the teacher's parser/builtins.go, a map of
// known names that its parser consults to validate identifiers; that file
// has no function bodies, so the bodies here are new. In this package
// Names serves the parser and Funcs serves the evaluator.
package builtins

import (
	"strings"

	"github.com/bithero-go/gotmpl/internal/terr"
	"github.com/bithero-go/gotmpl/value"
)

// Names lists every identifier the parser must accept as a known function,
// including "and"/"or" even though those resolve to special forms rather
// than a table entry (§4.4).
func Names() map[string]bool {
	names := map[string]bool{
		"and": true,
		"or":  true,
	}
	for name := range Funcs() {
		names[name] = true
	}
	return names
}

// Funcs returns a fresh map of every ordinary (non-special-form) builtin,
// suitable as the base layer of a template's function map.
func Funcs() map[string]*value.FuncValue {
	return map[string]*value.FuncValue{
		"not":     {Arity: 1, Call: builtinNot},
		"call":    {Arity: 1, Variadic: true, Call: builtinCall},
		"index":   {Arity: 2, Variadic: true, Call: builtinIndex},
		"len":     {Arity: 1, Call: builtinLen},
		"print":   {Arity: 0, Variadic: true, Call: builtinPrint},
		"println": {Arity: 0, Variadic: true, Call: builtinPrintln},
		"eq":      {Arity: 2, Variadic: true, Call: builtinEq},
		"ne":      {Arity: 2, Variadic: true, Call: builtinNe},
		"lt":      {Arity: 2, Call: builtinLt},
		"le":      {Arity: 2, Call: builtinLe},
		"gt":      {Arity: 2, Call: builtinGt},
		"ge":      {Arity: 2, Call: builtinGe},
	}
}

func builtinNot(args []value.Value) (value.Value, error) {
	return value.NewBool(!args[0].Truthy()), nil
}

func builtinCall(args []value.Value) (value.Value, error) {
	callee := args[0]
	if !callee.Callable() {
		return value.Nil, terr.NewExecError("", "call: first argument is not callable", nil)
	}
	return callee.Invoke(args[1:])
}

func builtinIndex(args []value.Value) (value.Value, error) {
	return value.IndexChain(args[0], args[1:])
}

func builtinLen(args []value.Value) (value.Value, error) {
	n, err := args[0].Length()
	if err != nil {
		return value.Nil, err
	}
	return value.NewInt(64, int64(n)), nil
}

// builtinPrint concatenates string forms, inserting a single space between
// two adjacent args only when neither is a string kind.
func builtinPrint(args []value.Value) (value.Value, error) {
	var sb strings.Builder
	for i, a := range args {
		if i > 0 && args[i-1].Kind() != value.String && a.Kind() != value.String {
			sb.WriteByte(' ')
		}
		sb.WriteString(value.Stringify(a))
	}
	return value.NewString(sb.String()), nil
}

func builtinPrintln(args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.Stringify(a)
	}
	return value.NewString(strings.Join(parts, " ") + "\n"), nil
}

func builtinEq(args []value.Value) (value.Value, error) {
	for _, b := range args[1:] {
		if value.Equal(args[0], b) {
			return value.NewBool(true), nil
		}
	}
	return value.NewBool(false), nil
}

func builtinNe(args []value.Value) (value.Value, error) {
	eq, err := builtinEq(args)
	if err != nil {
		return value.Nil, err
	}
	return value.NewBool(!eq.AsBool()), nil
}

func builtinLt(args []value.Value) (value.Value, error) {
	c, err := value.Compare(args[0], args[1])
	if err != nil {
		return value.Nil, err
	}
	return value.NewBool(c < 0), nil
}

func builtinLe(args []value.Value) (value.Value, error) {
	c, err := value.Compare(args[0], args[1])
	if err != nil {
		return value.Nil, err
	}
	return value.NewBool(c <= 0), nil
}

func builtinGt(args []value.Value) (value.Value, error) {
	c, err := value.Compare(args[0], args[1])
	if err != nil {
		return value.Nil, err
	}
	return value.NewBool(c > 0), nil
}

func builtinGe(args []value.Value) (value.Value, error) {
	c, err := value.Compare(args[0], args[1])
	if err != nil {
		return value.Nil, err
	}
	return value.NewBool(c >= 0), nil
}
