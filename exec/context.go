// Package exec walks the AST package parse produces, maintaining the
// variable stack, `.` and `$`, and the function map (spec.md §4.4 — the
// Evaluator). It is the one package with no counterpart in the teacher:
// yomlette's parser package stops at producing an AST for a downstream
// YAML templating tool and never executes it. The evaluation-context
// shape (a mark/pop/push variable stack, `self`/`root` fields threaded
// through If/With/Range) follows the same discipline the teacher applies
// to its own parse-time scope stack (templateContext.vars), just turned
// into a runtime structure instead of a parse-time one.
package exec

import (
	"io"

	"github.com/bithero-go/gotmpl/internal/terr"
	"github.com/bithero-go/gotmpl/parse"
	"github.com/bithero-go/gotmpl/value"
)

// TemplateSet resolves a named sub-template during a {{template}}/{{block}}
// call, per the common-table model of §3/§4.3. The root gotmpl package
// implements this over its shared common table; exec never imports that
// package, avoiding an import cycle.
type TemplateSet interface {
	Lookup(name string) (*parse.Tree, bool)
}

type varFrame struct {
	name string
	val  value.Value
}

// Context is one evaluation's mutable state: the emit sink, the current
// `.` and `$`, the function map, and the LIFO variable stack. A Context is
// not safe for concurrent use — spec.md §5 is explicit that each
// concurrent execution needs its own.
type Context struct {
	sink  io.Writer
	self  value.Value
	root  value.Value
	vars  []varFrame
	set   TemplateSet
	funcs map[string]*value.FuncValue
	name  string // template name, for error messages
}

func (ctx *Context) mark() int { return len(ctx.vars) }

func (ctx *Context) popTo(mark int) { ctx.vars = ctx.vars[:mark] }

func (ctx *Context) pushVar(name string, v value.Value) {
	ctx.vars = append(ctx.vars, varFrame{name: name, val: v})
}

func (ctx *Context) getVar(name string) (value.Value, error) {
	for i := len(ctx.vars) - 1; i >= 0; i-- {
		if ctx.vars[i].name == name {
			return ctx.vars[i].val, nil
		}
	}
	return value.Nil, terr.NewExecError(ctx.name, "undefined variable $"+name, nil)
}

func (ctx *Context) setVar(name string, v value.Value) error {
	for i := len(ctx.vars) - 1; i >= 0; i-- {
		if ctx.vars[i].name == name {
			ctx.vars[i].val = v
			return nil
		}
	}
	return terr.NewExecError(ctx.name, "undefined variable $"+name, nil)
}

func (ctx *Context) emit(s string) error {
	if s == "" {
		return nil
	}
	if _, err := io.WriteString(ctx.sink, s); err != nil {
		return terr.NewExecError(ctx.name, "write to sink failed", err)
	}
	return nil
}

// resolveFunc implements §4.5's resolution order: user globals first, then
// the builtin table (already merged into ctx.funcs by Execute's caller —
// see exec.go); unknown names evaluate to absent.
func (ctx *Context) resolveFunc(name string) value.Value {
	fv, ok := ctx.funcs[name]
	if !ok {
		return value.Nil
	}
	return value.NewFunc(fv)
}
