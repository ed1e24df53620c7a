package exec

import (
	"fmt"

	"github.com/bithero-go/gotmpl/ast"
	"github.com/bithero-go/gotmpl/internal/terr"
	"github.com/bithero-go/gotmpl/value"
)

// evalExpr evaluates a single Expr node against the current `.`/`$`/
// variable stack, per §3's per-node contracts.
func (ctx *Context) evalExpr(e ast.Expr) (value.Value, error) {
	switch n := e.(type) {
	case *ast.DotExpr:
		return ctx.self, nil
	case *ast.RootExpr:
		return ctx.root, nil
	case *ast.VarExpr:
		return ctx.getVar(n.Name)
	case *ast.FieldExpr:
		base := ctx.self
		if n.Base != nil {
			v, err := ctx.evalExpr(n.Base)
			if err != nil {
				return value.Nil, err
			}
			base = v
		}
		v, err := value.MemberChain(base, n.Names)
		if err != nil {
			return value.Nil, terr.NewExecError(ctx.name, fmt.Sprintf("evaluating %s", n), err)
		}
		return v, nil
	case *ast.BoolExpr:
		return value.NewBool(n.Value), nil
	case *ast.StringExpr:
		return value.NewString(n.Value), nil
	case *ast.CharExpr:
		return value.NewChar(n.Width, n.Value), nil
	case *ast.NumberExpr:
		switch n.Kind {
		case ast.NumberInt:
			return value.NewInt(n.Bits, n.Int), nil
		case ast.NumberUint:
			return value.NewUint(n.Bits, n.Uint), nil
		default:
			return value.NewFloat(n.Bits, n.Flt), nil
		}
	case *ast.IdentifierExpr:
		return ctx.resolveFunc(n.Name), nil
	case *ast.Pipeline:
		return ctx.evalPipeline(n)
	default:
		return value.Nil, terr.NewExecError(ctx.name, fmt.Sprintf("unhandled expression %T", e), nil)
	}
}

// evalAndOr implements the and/or special form of §4.4 step 1: the only
// builtins with non-strict evaluation. restArgs is the command's
// arguments after the and/or identifier; extra is the piped-in value from
// the previous pipeline stage, if any.
func (ctx *Context) evalAndOr(name string, restArgs []ast.Expr, extra value.Value, hasExtra bool) (value.Value, error) {
	wantTruthy := name == "or"
	var last value.Value
	seen := false
	for _, a := range restArgs {
		v, err := ctx.evalExpr(a)
		if err != nil {
			return value.Nil, err
		}
		last, seen = v, true
		if v.Truthy() == wantTruthy {
			return v, nil
		}
	}
	if hasExtra {
		if extra.Truthy() == wantTruthy {
			return extra, nil
		}
		last, seen = extra, true
	}
	if !seen {
		return value.Nil, terr.NewExecError(ctx.name, name+" requires at least one argument", nil)
	}
	return last, nil
}

// evalCommand implements §4.4 Command evaluation steps 1-4.
func (ctx *Context) evalCommand(cmd *ast.Command, extra value.Value, hasExtra bool) (value.Value, error) {
	if ident, ok := cmd.Args[0].(*ast.IdentifierExpr); ok && (ident.Name == "and" || ident.Name == "or") {
		return ctx.evalAndOr(ident.Name, cmd.Args[1:], extra, hasExtra)
	}

	arg0, err := ctx.evalExpr(cmd.Args[0])
	if err != nil {
		return value.Nil, err
	}
	if arg0.IsAbsent() {
		return value.Nil, nil
	}

	if arg0.Callable() {
		args := make([]value.Value, 0, len(cmd.Args)-1+1)
		for _, a := range cmd.Args[1:] {
			v, err := ctx.evalExpr(a)
			if err != nil {
				return value.Nil, err
			}
			args = append(args, v)
		}
		if hasExtra {
			args = append(args, extra)
		}
		out, err := arg0.Invoke(args)
		if err != nil {
			return value.Nil, terr.NewExecError(ctx.name, fmt.Sprintf("executing %q", cmd), err)
		}
		return out, nil
	}

	if len(cmd.Args) > 1 {
		return value.Nil, terr.NewExecError(ctx.name, fmt.Sprintf("%s is not callable", cmd.Args[0]), nil)
	}
	return arg0, nil
}

// evalCommands runs a pipeline's command chain, threading each command's
// result as the next command's extraParam, but applies no decls — used
// directly by Range, which owns per-iteration decl assignment itself.
func (ctx *Context) evalCommands(p *ast.Pipeline) (value.Value, error) {
	cur := value.Nil
	hasExtra := false
	for _, cmd := range p.Commands {
		v, err := ctx.evalCommand(cmd, cur, hasExtra)
		if err != nil {
			return value.Nil, err
		}
		cur = v
		hasExtra = true
	}
	return cur, nil
}

// evalPipeline runs a pipeline's command chain and then applies its decls,
// if any (§4.4 Pipeline evaluation). Not used for a Range header pipeline.
func (ctx *Context) evalPipeline(p *ast.Pipeline) (value.Value, error) {
	v, err := ctx.evalCommands(p)
	if err != nil {
		return value.Nil, err
	}
	for _, name := range p.Decls {
		if p.IsAssign {
			if err := ctx.setVar(name, v); err != nil {
				return value.Nil, err
			}
		} else {
			ctx.pushVar(name, v)
		}
	}
	return v, nil
}
