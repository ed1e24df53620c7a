package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bithero-go/gotmpl/ast"
)

var testFuncs = map[string]bool{"printf": true, "upper": true}

func TestParseTextAndField(t *testing.T) {
	set, err := Parse("root", "Hello, {{.Name}}!", "", "", map[string]*Tree{}, testFuncs)
	require.NoError(t, err)
	root := set["root"].Root
	require.Len(t, root, 3)
	assert.IsType(t, &ast.TextNode{}, root[0])
	assert.IsType(t, &ast.PipelineActionNode{}, root[1])
	assert.IsType(t, &ast.TextNode{}, root[2])

	action := root[1].(*ast.PipelineActionNode)
	field := action.Pipeline.Commands[0].Args[0].(*ast.FieldExpr)
	assert.Nil(t, field.Base)
	assert.Equal(t, []string{"Name"}, field.Names)
}

func TestParseIfElse(t *testing.T) {
	set, err := Parse("root", "{{if .X}}yes{{else}}no{{end}}", "", "", map[string]*Tree{}, testFuncs)
	require.NoError(t, err)
	ifNode := set["root"].Root[0].(*ast.IfNode)
	require.Len(t, ifNode.Branch.Body, 1)
	require.Len(t, ifNode.Branch.ElseBody, 1)
}

func TestParseElseIfChains(t *testing.T) {
	set, err := Parse("root", "{{if .A}}a{{else if .B}}b{{else}}c{{end}}", "", "", map[string]*Tree{}, testFuncs)
	require.NoError(t, err)
	ifNode := set["root"].Root[0].(*ast.IfNode)
	require.Len(t, ifNode.Branch.ElseBody, 1)
	nested, ok := ifNode.Branch.ElseBody[0].(*ast.IfNode)
	require.True(t, ok)
	require.Len(t, nested.Branch.Body, 1)
	require.Len(t, nested.Branch.ElseBody, 1)
}

func TestParseRangeTwoDecls(t *testing.T) {
	set, err := Parse("root", "{{range $i, $v := .Items}}{{$i}}{{$v}}{{end}}", "", "", map[string]*Tree{}, testFuncs)
	require.NoError(t, err)
	r := set["root"].Root[0].(*ast.RangeNode)
	assert.Equal(t, []string{"i", "v"}, r.Branch.Pipeline.Decls)
}

func TestParseBreakContinueOutsideRangeIsError(t *testing.T) {
	_, err := Parse("root", "{{break}}", "", "", map[string]*Tree{}, testFuncs)
	assert.Error(t, err)

	_, err = Parse("root", "{{range .Items}}{{continue}}{{end}}", "", "", map[string]*Tree{}, testFuncs)
	assert.NoError(t, err)
}

func TestParseDefineAndTemplateCall(t *testing.T) {
	set, err := Parse("root", `{{define "greet"}}hi{{end}}{{template "greet" .}}`, "", "", map[string]*Tree{}, testFuncs)
	require.NoError(t, err)
	_, ok := set["greet"]
	require.True(t, ok)
	call := set["root"].Root[0].(*ast.TemplateCallNode)
	assert.Equal(t, "greet", call.Name)
}

func TestParseBlock(t *testing.T) {
	set, err := Parse("root", `{{block "b" .}}inline{{end}}`, "", "", map[string]*Tree{}, testFuncs)
	require.NoError(t, err)
	_, ok := set["b"]
	require.True(t, ok)
	assert.False(t, set["b"].IsEmpty())
}

func TestParseNumberClassification(t *testing.T) {
	set, err := Parse("root", "{{1}}{{3.5}}{{-5}}{{300}}", "", "", map[string]*Tree{}, testFuncs)
	require.NoError(t, err)
	nums := []*ast.NumberExpr{}
	for _, n := range set["root"].Root {
		if a, ok := n.(*ast.PipelineActionNode); ok {
			nums = append(nums, a.Pipeline.Commands[0].Args[0].(*ast.NumberExpr))
		}
	}
	require.Len(t, nums, 4)
	assert.Equal(t, ast.NumberInt, nums[0].Kind)
	assert.Equal(t, uint8(8), nums[0].Bits)
	assert.Equal(t, ast.NumberFloat, nums[1].Kind)
	assert.Equal(t, ast.NumberInt, nums[2].Kind)
	assert.Equal(t, int64(-5), nums[2].Int)
	assert.Equal(t, uint8(16), nums[3].Bits)
}

func TestParseWhitespaceTrim(t *testing.T) {
	set, err := Parse("root", "a \n{{- .X -}}\n b", "", "", map[string]*Tree{}, testFuncs)
	require.NoError(t, err)
	root := set["root"].Root
	require.Len(t, root, 3)
	assert.Equal(t, "a", root[0].(*ast.TextNode).Text)
	assert.Equal(t, "b", root[2].(*ast.TextNode).Text)
}

func TestParseEmptyPipelineIsError(t *testing.T) {
	_, err := Parse("root", "{{}}", "", "", map[string]*Tree{}, testFuncs)
	assert.Error(t, err)
}

func TestParseUndefinedFunctionIsError(t *testing.T) {
	_, err := Parse("root", "{{nosuchfunc .}}", "", "", map[string]*Tree{}, testFuncs)
	assert.Error(t, err)
}

func TestParseMergeNonEmptyOverwritesExisting(t *testing.T) {
	set := map[string]*Tree{}
	_, err := Parse("root", `{{define "x"}}first{{end}}`, "", "", set, testFuncs)
	require.NoError(t, err)
	_, err = Parse("root", `{{define "x"}}second{{end}}`, "", "", set, testFuncs)
	require.NoError(t, err)
	txt := set["x"].Root[0].(*ast.TextNode).Text
	assert.Equal(t, "second", txt)
}
