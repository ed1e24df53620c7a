package exec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bithero-go/gotmpl/builtins"
	"github.com/bithero-go/gotmpl/parse"
	"github.com/bithero-go/gotmpl/value"
)

// fakeSet is a map-backed TemplateSet used to exercise {{template}} calls
// without pulling in the root package (which itself depends on exec).
type fakeSet map[string]*parse.Tree

func (s fakeSet) Lookup(name string) (*parse.Tree, bool) {
	t, ok := s[name]
	return t, ok
}

func run(t *testing.T, tmplSrc string, data value.Value, funcs map[string]*value.FuncValue) string {
	t.Helper()
	names := builtins.Names()
	for k := range funcs {
		names[k] = true
	}
	treeSet, err := parse.Parse("root", tmplSrc, "{{", "}}", map[string]*parse.Tree{}, names)
	require.NoError(t, err)
	if funcs == nil {
		funcs = map[string]*value.FuncValue{}
	}
	merged := builtins.Funcs()
	for k, v := range funcs {
		merged[k] = v
	}
	var sb strings.Builder
	err = Execute(treeSet["root"], fakeSet(treeSet), merged, data, &sb)
	require.NoError(t, err)
	return sb.String()
}

func TestExecuteTextAndField(t *testing.T) {
	rec := &value.RecordValue{Fields: map[string]value.Value{"Name": value.NewString("Ada")}}
	out := run(t, "Hello, {{.Name}}!", value.NewRecord(rec), nil)
	assert.Equal(t, "Hello, Ada!", out)
}

func TestExecuteIfElse(t *testing.T) {
	out := run(t, "{{if .}}yes{{else}}no{{end}}", value.NewBool(false), nil)
	assert.Equal(t, "no", out)
}

func TestExecuteRangeBreakContinue(t *testing.T) {
	s := value.NewSlice([]value.Value{
		value.NewInt(64, 1), value.NewInt(64, 2), value.NewInt(64, 3), value.NewInt(64, 4),
	})
	out := run(t, `{{range $i, $v := .}}{{if eq $v 3}}{{break}}{{end}}{{if eq $v 2}}{{continue}}{{end}}{{$v}}{{end}}`, s, nil)
	assert.Equal(t, "1", out)
}

func TestExecuteWithRestoresDot(t *testing.T) {
	rec := &value.RecordValue{Fields: map[string]value.Value{
		"Name":  value.NewString("outer"),
		"Inner": value.NewRecord(&value.RecordValue{Fields: map[string]value.Value{"Name": value.NewString("inner")}}),
	}}
	out := run(t, "{{with .Inner}}{{.Name}}{{end}}-{{.Name}}", value.NewRecord(rec), nil)
	assert.Equal(t, "inner-outer", out)
}

func TestExecuteVariableDeclareAndAssign(t *testing.T) {
	out := run(t, `{{$x := 1}}{{$x = 2}}{{$x}}`, value.Nil, nil)
	assert.Equal(t, "2", out)
}

func TestExecuteAndOrShortCircuit(t *testing.T) {
	out := run(t, `{{if and .A .B}}both{{else}}not-both{{end}}`,
		value.NewRecord(&value.RecordValue{Fields: map[string]value.Value{
			"A": value.NewBool(true),
			"B": value.NewBool(false),
		}}), nil)
	assert.Equal(t, "not-both", out)
}

func TestExecuteTemplateCall(t *testing.T) {
	out := run(t, `{{define "greet"}}hi {{.}}{{end}}{{template "greet" "world"}}`, value.Nil, nil)
	assert.Equal(t, "hi world", out)
}

func TestExecutePipeAndUserFunc(t *testing.T) {
	funcs := map[string]*value.FuncValue{
		"upper": {Arity: 1, Call: func(args []value.Value) (value.Value, error) {
			return value.NewString(strings.ToUpper(args[0].AsString())), nil
		}},
	}
	out := run(t, `{{"hi" | upper}}`, value.Nil, funcs)
	assert.Equal(t, "HI", out)
}
