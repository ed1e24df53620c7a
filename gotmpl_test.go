package gotmpl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string
	Age  int
}

func TestExecuteBasicField(t *testing.T) {
	tmpl, err := New("greeting").Parse("Hello, {{.Name}}! You are {{.Age}}.")
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, tmpl.Execute(&sb, person{Name: "Ada", Age: 30}))
	assert.Equal(t, "Hello, Ada! You are 30.", sb.String())
}

func TestExecuteRange(t *testing.T) {
	tmpl, err := New("list").Parse("{{range .}}{{.}},{{end}}")
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, tmpl.Execute(&sb, []int{1, 2, 3}))
	assert.Equal(t, "1,2,3,", sb.String())
}

func TestExecuteDefineAndTemplateCall(t *testing.T) {
	tmpl, err := New("root").Parse(`{{define "greet"}}hi {{.}}{{end}}{{template "greet" .Name}}`)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, tmpl.Execute(&sb, person{Name: "Bob"}))
	assert.Equal(t, "hi Bob", sb.String())
}

func TestFuncsOverridesBuiltin(t *testing.T) {
	tmpl := New("t").Funcs(map[string]interface{}{
		"len": func(s string) int { return len(s) + 100 },
	})
	tmpl, err := tmpl.Parse(`{{len "abc"}}`)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, tmpl.Execute(&sb, nil))
	assert.Equal(t, "103", sb.String())
}

func TestLookupAndDefinedTemplates(t *testing.T) {
	tmpl, err := New("root").Parse(`{{define "a"}}A{{end}}{{define "b"}}B{{end}}`)
	require.NoError(t, err)

	assert.NotNil(t, tmpl.Lookup("a"))
	assert.NotNil(t, tmpl.Lookup("b"))
	assert.Nil(t, tmpl.Lookup("nope"))
	assert.Equal(t, []string{"a", "b", "root"}, tmpl.DefinedTemplates())
}

func TestIsEmpty(t *testing.T) {
	tmpl, err := New("blank").Parse("   \n  ")
	require.NoError(t, err)
	assert.True(t, tmpl.IsEmpty())

	tmpl2, err := New("nonblank").Parse("x")
	require.NoError(t, err)
	assert.False(t, tmpl2.IsEmpty())
}

func TestCloneIsIndependent(t *testing.T) {
	orig, err := New("root").Parse(`{{define "a"}}orig{{end}}{{template "a" .}}`)
	require.NoError(t, err)

	clone, err := orig.Clone()
	require.NoError(t, err)

	_, err = clone.Lookup("a").Parse("changed")
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, orig.Execute(&sb, nil))
	assert.Equal(t, "orig", sb.String())
}

func TestDelims(t *testing.T) {
	tmpl, err := New("root").Delims("<%", "%>").Parse("Hi <%.Name%>")
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, tmpl.Execute(&sb, person{Name: "Cleo"}))
	assert.Equal(t, "Hi Cleo", sb.String())
}

func TestExecuteUndefinedTemplateErrors(t *testing.T) {
	tmpl, err := New("root").Parse(`{{template "missing"}}`)
	require.NoError(t, err)

	var sb strings.Builder
	err = tmpl.Execute(&sb, nil)
	assert.Error(t, err)
}
