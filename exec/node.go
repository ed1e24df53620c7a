package exec

import (
	"fmt"

	"github.com/bithero-go/gotmpl/ast"
	"github.com/bithero-go/gotmpl/internal/terr"
	"github.com/bithero-go/gotmpl/value"
)

// outcome signals how a node list ended, replacing the panic/recover loop
// control a naive port of break/continue would reach for: walk and its
// callers pass this value up explicitly instead (the evaluator never
// panics to unwind a loop).
type outcome int

const (
	outcomeNormal outcome = iota
	outcomeBreak
	outcomeContinue
)

// walk executes a node list in order, stopping as soon as a node yields a
// non-normal outcome (a Break or Continue needing to reach its enclosing
// Range) or an error.
func (ctx *Context) walk(nodes []ast.Node) (outcome, error) {
	for _, n := range nodes {
		out, err := ctx.execNode(n)
		if err != nil {
			return outcomeNormal, err
		}
		if out != outcomeNormal {
			return out, nil
		}
	}
	return outcomeNormal, nil
}

func (ctx *Context) execNode(n ast.Node) (outcome, error) {
	switch nd := n.(type) {
	case *ast.TextNode:
		return outcomeNormal, ctx.emit(nd.Text)
	case *ast.PipelineActionNode:
		v, err := ctx.evalPipeline(nd.Pipeline)
		if err != nil {
			return outcomeNormal, err
		}
		if len(nd.Pipeline.Decls) == 0 {
			return outcomeNormal, ctx.emit(value.Stringify(v))
		}
		return outcomeNormal, nil
	case *ast.IfNode:
		return ctx.execIf(nd.Branch)
	case *ast.WithNode:
		return ctx.execWith(nd.Branch)
	case *ast.RangeNode:
		return ctx.execRange(nd.Branch)
	case *ast.TemplateCallNode:
		return outcomeNormal, ctx.execTemplateCall(nd)
	case *ast.BreakNode:
		return outcomeBreak, nil
	case *ast.ContinueNode:
		return outcomeContinue, nil
	default:
		return outcomeNormal, terr.NewExecError(ctx.name, fmt.Sprintf("unhandled node %T", n), nil)
	}
}

// execIf implements §4.4's If contract: mark, evaluate, run body or else,
// restore the stack to the mark on exit either way.
func (ctx *Context) execIf(b ast.Branch) (outcome, error) {
	mark := ctx.mark()
	defer ctx.popTo(mark)

	v, err := ctx.evalPipeline(b.Pipeline)
	if err != nil {
		return outcomeNormal, err
	}
	if v.Truthy() {
		return ctx.walk(b.Body)
	}
	if b.ElseBody != nil {
		return ctx.walk(b.ElseBody)
	}
	return outcomeNormal, nil
}

// execWith additionally rebinds `.` to the pipeline's value for the
// duration of the body, restoring it afterward (§3 "`.` is restored to its
// prior value after a With/Range body completes").
func (ctx *Context) execWith(b ast.Branch) (outcome, error) {
	mark := ctx.mark()
	defer ctx.popTo(mark)

	v, err := ctx.evalPipeline(b.Pipeline)
	if err != nil {
		return outcomeNormal, err
	}
	if v.Truthy() {
		prevSelf := ctx.self
		ctx.self = v
		out, err := ctx.walk(b.Body)
		ctx.self = prevSelf
		return out, err
	}
	if b.ElseBody != nil {
		return ctx.walk(b.ElseBody)
	}
	return outcomeNormal, nil
}

// execRange implements §4.4's Range contract, including the two/one/zero
// decl forms and Break/Continue.
func (ctx *Context) execRange(b ast.Branch) (outcome, error) {
	outerMark := ctx.mark()
	defer ctx.popTo(outerMark)

	iterable, err := ctx.evalCommands(b.Pipeline)
	if err != nil {
		return outcomeNormal, err
	}
	if !iterable.Truthy() {
		if b.ElseBody != nil {
			return ctx.walk(b.ElseBody)
		}
		return outcomeNormal, nil
	}

	it, err := value.Iterate(iterable)
	if err != nil {
		return outcomeNormal, err
	}

	prevSelf := ctx.self
	defer func() { ctx.self = prevSelf }()

	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		iterMark := ctx.mark()
		switch len(b.Pipeline.Decls) {
		case 2:
			ctx.pushVar(b.Pipeline.Decls[0], k)
			ctx.pushVar(b.Pipeline.Decls[1], v)
		case 1:
			ctx.pushVar(b.Pipeline.Decls[0], v)
		}
		ctx.self = v

		out, err := ctx.walk(b.Body)
		ctx.popTo(iterMark)
		if err != nil {
			return outcomeNormal, err
		}
		if out == outcomeBreak {
			break
		}
	}
	return outcomeNormal, nil
}

// execTemplateCall resolves the named sub-template against the current
// template's common table and runs it with its own Context, sharing only
// the sink (§3 "the caller's `.`, `$`, and variable stack are not mutated
// by the callee").
func (ctx *Context) execTemplateCall(n *ast.TemplateCallNode) error {
	tree, ok := ctx.set.Lookup(n.Name)
	if !ok {
		return terr.NewExecError(ctx.name, fmt.Sprintf("template %q not defined", n.Name), nil)
	}

	data := value.Nil
	if n.Pipeline != nil {
		v, err := ctx.evalPipeline(n.Pipeline)
		if err != nil {
			return err
		}
		data = v
	}

	sub := &Context{
		sink:  ctx.sink,
		self:  data,
		root:  data,
		set:   ctx.set,
		funcs: ctx.funcs,
		name:  tree.Name,
	}
	_, err := sub.walk(tree.Root)
	return err
}
