package gotmpl

import (
	"github.com/bithero-go/gotmpl/parse"
	"github.com/bithero-go/gotmpl/value"
)

// common is the table shared by every Template parsed from the same
// source tree, mirroring §3's "Template... a reference to a shared common
// table storing (i) a map name → Template of all templates defined in the
// same parse tree (including self), and (ii) the globals function map."
// It is also passed directly to package exec as a exec.TemplateSet, since
// its Lookup method already has the right shape.
type common struct {
	treeSet map[string]*parse.Tree
	tmpl    map[string]*Template
	funcs   map[string]*value.FuncValue
}

// Lookup satisfies exec.TemplateSet: it resolves a {{template}}/{{block}}
// call against the parsed tree set.
func (c *common) Lookup(name string) (*parse.Tree, bool) {
	tr, ok := c.treeSet[name]
	return tr, ok
}
