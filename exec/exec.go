package exec

import (
	"io"

	"github.com/bithero-go/gotmpl/parse"
	"github.com/bithero-go/gotmpl/value"
)

// Execute runs tree's root block against data, writing emitted text to
// sink. funcs is the fully resolved function map (user globals already
// merged over the builtin table by the caller — see §4.5's resolution
// order); set resolves {{template}}/{{block}} calls against the owning
// template's common table.
func Execute(tree *parse.Tree, set TemplateSet, funcs map[string]*value.FuncValue, data value.Value, sink io.Writer) error {
	ctx := &Context{
		sink:  sink,
		self:  data,
		root:  data,
		set:   set,
		funcs: funcs,
		name:  tree.Name,
	}
	_, err := ctx.walk(tree.Root)
	return err
}
