// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.
//
// Package parse builds a Tree (and its nested sub-templates) from template
// source, implementing spec.md §4.3. It is adapted from the teacher's
// parser/parser_template.go — the same templateContext recursive-descent
// shape (three-token lookahead, a treeSet shared across define/block
// bodies, the elseOrEndNode sentinel trick for propagating {{else}}/{{end}}
// up through itemList) — with the YAML-splicing escape hatch removed and
// break/continue, two-variable range decls, and the sized Value-oriented
// number/char classification of §4.3 added.
package parse

import (
	"runtime"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bithero-go/gotmpl/ast"
	"github.com/bithero-go/gotmpl/internal/terr"
)

const (
	nodeEnd  = -1
	nodeElse = -2
)

// pseudoNode is returned by itemList to signal {{end}} or {{else}} without
// allocating a real ast.Node for it.
type pseudoNode struct{ typ int }

// Tree is one named template body: its name, the name of the top-level
// parse that produced it, and its root node list.
type Tree struct {
	Name      string
	ParseName string
	Root      []ast.Node
}

// IsEmpty reports whether the tree has no nodes, or only whitespace-only
// text nodes (§6 Template.isEmpty).
func (t *Tree) IsEmpty() bool {
	if t == nil {
		return true
	}
	for _, n := range t.Root {
		if txt, ok := n.(*ast.TextNode); ok {
			if strings.TrimSpace(txt.Text) == "" {
				continue
			}
		}
		return false
	}
	return true
}

type tree struct {
	name      string
	parseName string
	root      []ast.Node

	funcNames map[string]bool
	lex       *lexer
	token     [3]item
	peekCount int
	vars      []string
	treeSet   map[string]*Tree
	rangeDepth int

	leftDelim, rightDelim string
}

// Parse parses template text with the given name into treeSet, registering
// every {{define}}/{{block}} encountered along the way, and returns the
// resulting set (which always contains an entry for name itself once
// parsing succeeds — the "template self-entry" invariant of §3).
func Parse(name, text, leftDelim, rightDelim string, treeSet map[string]*Tree, funcNames map[string]bool) (map[string]*Tree, error) {
	t := &tree{name: name, funcNames: funcNames}
	_, err := t.Parse(text, leftDelim, rightDelim, treeSet)
	if err != nil {
		return nil, err
	}
	return treeSet, nil
}

func (t *tree) errorf(format string, args ...interface{}) {
	line := 0
	if t.token[0].line != 0 {
		line = t.token[0].line
	}
	panic(terr.NewParseError(t.parseName, line, format, args...))
}

func (t *tree) unexpected(tok item, context string) {
	t.errorf("unexpected %s in %s", tok, context)
}

func (t *tree) recover(errp *error) {
	e := recover()
	if e == nil {
		return
	}
	if _, ok := e.(runtime.Error); ok {
		panic(e)
	}
	if t.lex != nil {
		t.lex.drain()
	}
	*errp = e.(error)
}

func (t *tree) Parse(text, leftDelim, rightDelim string, treeSet map[string]*Tree) (tr *tree, err error) {
	defer t.recover(&err)
	t.parseName = t.name
	t.leftDelim, t.rightDelim = leftDelim, rightDelim
	t.lex = lex(t.name, text, leftDelim, rightDelim)
	t.vars = []string{""} // "" is the implicit root $ binding
	t.treeSet = treeSet
	t.parse()
	t.add()
	return t, nil
}

// add installs t into t.treeSet, honoring the "last writer wins, but an
// empty new body never overwrites a non-empty existing one" merge rule of
// §4.4.
func (t *tree) add() {
	existing := t.treeSet[t.name]
	tr := &Tree{Name: t.name, ParseName: t.parseName, Root: t.root}
	if existing == nil || existing.IsEmpty() {
		t.treeSet[t.name] = tr
		return
	}
	if !tr.IsEmpty() {
		t.treeSet[t.name] = tr
	}
}

func (t *tree) next() item {
	if t.peekCount > 0 {
		t.peekCount--
	} else {
		t.token[0] = t.lex.nextItem()
	}
	return t.token[t.peekCount]
}

func (t *tree) backup()                { t.peekCount++ }
func (t *tree) backup2(t1 item)        { t.token[1] = t1; t.peekCount = 2 }
func (t *tree) backup3(t2, t1 item)    { t.token[1] = t1; t.token[2] = t2; t.peekCount = 3 }

func (t *tree) peek() item {
	if t.peekCount > 0 {
		return t.token[t.peekCount-1]
	}
	t.peekCount = 1
	t.token[0] = t.lex.nextItem()
	return t.token[0]
}

func (t *tree) nextNonSpace() item {
	var tok item
	for {
		tok = t.next()
		if tok.typ != itemSpace {
			break
		}
	}
	return tok
}

func (t *tree) peekNonSpace() item {
	tok := t.nextNonSpace()
	t.backup()
	return tok
}

func (t *tree) expect(expected itemType, context string) item {
	tok := t.nextNonSpace()
	if tok.typ != expected {
		t.unexpected(tok, context)
	}
	return tok
}

func (t *tree) expectOneOf(e1, e2 itemType, context string) item {
	tok := t.nextNonSpace()
	if tok.typ != e1 && tok.typ != e2 {
		t.unexpected(tok, context)
	}
	return tok
}

// newTree allocates a parser for a nested define/block body sharing the
// current lexer and treeSet.
func (t *tree) newTree(name string) *tree {
	nt := &tree{
		name:       name,
		parseName:  t.parseName,
		funcNames:  t.funcNames,
		lex:        t.lex,
		vars:       []string{""},
		treeSet:    t.treeSet,
		rangeDepth: t.rangeDepth,
		leftDelim:  t.leftDelim,
		rightDelim: t.rightDelim,
	}
	return nt
}

// parse is the top-level loop: itemList except it also recognizes
// {{define}} and installs the definition instead of appending it.
func (t *tree) parse() {
	for t.peek().typ != itemEOF {
		if t.peek().typ == itemLeftDelim {
			delim := t.next()
			if t.nextNonSpace().typ == itemDefine {
				nt := t.newTree("definition")
				nt.parseDefinition()
				continue
			}
			t.backup2(delim)
		}
		n := t.textOrAction()
		switch nd := n.(type) {
		case *pseudoNode:
			t.errorf("unexpected %s", pseudoString(nd.typ))
		default:
			t.root = append(t.root, n)
		}
	}
}

func pseudoString(typ int) string {
	if typ == nodeEnd {
		return "{{end}}"
	}
	return "{{else}}"
}

// parseDefinition parses a {{define "name"}} ... {{end}} and installs it.
// The "define" keyword has already been scanned.
func (t *tree) parseDefinition() {
	const context = "define clause"
	nameTok := t.expectOneOf(itemString, itemRawString, context)
	name, err := strconv.Unquote(nameTok.val)
	if err != nil {
		t.errorf("%s", err)
	}
	t.name = name
	t.expect(itemRightDelim, context)
	list, next := t.itemList()
	if asPseudo(next) != nodeEnd {
		t.errorf("unexpected %s in %s", describe(next), context)
	}
	t.root = list
	t.add()
}

// itemList parses textOrAction* and terminates at {{end}} or {{else}},
// returned separately as a pseudoNode.
func (t *tree) itemList() ([]ast.Node, ast.Node) {
	var list []ast.Node
	for t.peekNonSpace().typ != itemEOF {
		n := t.textOrAction()
		if p, ok := n.(*pseudoNode); ok {
			return list, p
		}
		list = append(list, n)
	}
	t.errorf("unexpected EOF")
	return nil, nil
}

func asPseudo(n ast.Node) int {
	if p, ok := n.(*pseudoNode); ok {
		return p.typ
	}
	return 0
}

func describe(n ast.Node) string {
	if p, ok := n.(*pseudoNode); ok {
		return pseudoString(p.typ)
	}
	return n.String()
}

// pseudoNode implements ast.Node only so it can travel through the same
// return type as real nodes; it must never survive into a real tree.
func (*pseudoNode) nodeNode()      {}
func (p *pseudoNode) String() string { return pseudoString(p.typ) }

func (t *tree) textOrAction() ast.Node {
	switch tok := t.nextNonSpace(); tok.typ {
	case itemText:
		return &ast.TextNode{Text: tok.val}
	case itemLeftDelim:
		return t.action()
	default:
		t.unexpected(tok, "input")
		return nil
	}
}

// action parses the content of an action after the left delimiter.
func (t *tree) action() ast.Node {
	switch tok := t.nextNonSpace(); tok.typ {
	case itemBlock:
		return t.blockControl()
	case itemElse:
		return t.elseControl()
	case itemEnd:
		return t.endControl()
	case itemIf:
		return t.ifControl()
	case itemRange:
		return t.rangeControl()
	case itemTemplate:
		return t.templateControl()
	case itemWith:
		return t.withControl()
	case itemBreak:
		return t.breakControl()
	case itemContinue:
		return t.continueControl()
	default:
		t.backup()
		pipe := t.pipeline("command")
		return &ast.PipelineActionNode{Pipeline: pipe}
	}
}

func (t *tree) breakControl() ast.Node {
	if t.rangeDepth == 0 {
		t.errorf("{{break}} outside {{range}}")
	}
	t.expect(itemRightDelim, "break")
	return &ast.BreakNode{}
}

func (t *tree) continueControl() ast.Node {
	if t.rangeDepth == 0 {
		t.errorf("{{continue}} outside {{range}}")
	}
	t.expect(itemRightDelim, "continue")
	return &ast.ContinueNode{}
}

// pipeline parses: declarations? command ('|' command)*
func (t *tree) pipeline(context string) *ast.Pipeline {
	pipe := &ast.Pipeline{}

decls:
	if v := t.peekNonSpace(); v.typ == itemVariable {
		t.next()
		tokenAfterVariable := t.peek()
		next := t.peekNonSpace()
		switch {
		case next.typ == itemAssign, next.typ == itemDeclare:
			pipe.IsAssign = next.typ == itemAssign
			t.nextNonSpace()
			pipe.Decls = append(pipe.Decls, varName(v.val))
			t.vars = append(t.vars, varName(v.val))
		case next.typ == itemComma:
			t.nextNonSpace()
			pipe.Decls = append(pipe.Decls, varName(v.val))
			t.vars = append(t.vars, varName(v.val))
			if context == "range" && len(pipe.Decls) < 2 {
				switch t.peekNonSpace().typ {
				case itemVariable:
					goto decls
				default:
					t.errorf("range can only initialize variables")
				}
			}
			t.errorf("too many declarations in %s", context)
		case tokenAfterVariable.typ == itemSpace:
			t.backup3(v, tokenAfterVariable)
		default:
			t.backup2(v)
		}
	}

	for {
		switch tok := t.nextNonSpace(); tok.typ {
		case itemRightDelim, itemRightParen:
			t.checkPipeline(pipe, context)
			if tok.typ == itemRightParen {
				t.backup()
			}
			return pipe
		case itemBool, itemCharConstant, itemDot, itemField, itemIdentifier,
			itemNumber, itemRawString, itemString, itemVariable, itemLeftParen:
			t.backup()
			pipe.Commands = append(pipe.Commands, t.command())
		default:
			t.unexpected(tok, context)
		}
	}
}

func varName(tokVal string) string {
	return strings.TrimPrefix(tokVal, "$")
}

func (t *tree) checkPipeline(pipe *ast.Pipeline, context string) {
	if len(pipe.Commands) == 0 {
		t.errorf("missing value for %s", context)
	}
	for i, c := range pipe.Commands[1:] {
		switch c.Args[0].(type) {
		case *ast.BoolExpr, *ast.DotExpr, *ast.NumberExpr, *ast.StringExpr, *ast.CharExpr:
			t.errorf("non executable command in pipeline stage %d", i+2)
		}
	}
}

// controlBody parses a pipeline and itemList(s), handling else/else-if and
// restoring the variable-declaration stack on exit, per the Branch
// invariant ("variable stack is always restored to the mark on entry").
func (t *tree) controlBody(allowElseIf bool, context string) (pipe *ast.Pipeline, body, elseBody []ast.Node) {
	mark := len(t.vars)
	defer func() { t.vars = t.vars[:mark] }()

	pipe = t.pipeline(context)
	var next ast.Node
	body, next = t.itemList()
	switch asPseudo(next) {
	case nodeEnd:
	case nodeElse:
		if allowElseIf && t.peek().typ == itemIf {
			t.next()
			elseBody = []ast.Node{t.ifControl()}
			return
		}
		var n2 ast.Node
		elseBody, n2 = t.itemList()
		if asPseudo(n2) != nodeEnd {
			t.errorf("expected end; found %s", describe(n2))
		}
	}
	return
}

func (t *tree) ifControl() ast.Node {
	pipe, body, elseBody := t.controlBody(true, "if")
	return &ast.IfNode{Branch: ast.Branch{Pipeline: pipe, Body: body, ElseBody: elseBody}}
}

func (t *tree) withControl() ast.Node {
	pipe, body, elseBody := t.controlBody(false, "with")
	return &ast.WithNode{Branch: ast.Branch{Pipeline: pipe, Body: body, ElseBody: elseBody}}
}

func (t *tree) rangeControl() ast.Node {
	t.rangeDepth++
	pipe, body, elseBody := t.controlBody(false, "range")
	t.rangeDepth--
	return &ast.RangeNode{Branch: ast.Branch{Pipeline: pipe, Body: body, ElseBody: elseBody}}
}

func (t *tree) endControl() ast.Node {
	t.expect(itemRightDelim, "end")
	return &pseudoNode{typ: nodeEnd}
}

func (t *tree) elseControl() ast.Node {
	if t.peekNonSpace().typ == itemIf {
		return &pseudoNode{typ: nodeElse}
	}
	t.expect(itemRightDelim, "else")
	return &pseudoNode{typ: nodeElse}
}

// blockControl parses {{block "name" pipeline}} body {{end}}, registers
// the body as a named sub-template, and emits a TemplateCallNode in its
// place (§4.3).
func (t *tree) blockControl() ast.Node {
	const context = "block clause"
	tok := t.nextNonSpace()
	name := t.parseTemplateName(tok, context)
	pipe := t.pipeline(context)

	nt := t.newTree(name)
	list, next := nt.itemList()
	if asPseudo(next) != nodeEnd {
		t.errorf("unexpected %s in %s", describe(next), context)
	}
	nt.root = list
	nt.add()

	return &ast.TemplateCallNode{Name: name, Pipeline: pipe}
}

func (t *tree) templateControl() ast.Node {
	const context = "template clause"
	tok := t.nextNonSpace()
	name := t.parseTemplateName(tok, context)
	var pipe *ast.Pipeline
	if t.nextNonSpace().typ != itemRightDelim {
		t.backup()
		pipe = t.pipeline(context)
	}
	return &ast.TemplateCallNode{Name: name, Pipeline: pipe}
}

func (t *tree) parseTemplateName(tok item, context string) string {
	switch tok.typ {
	case itemString, itemRawString:
		s, err := strconv.Unquote(tok.val)
		if err != nil {
			t.errorf("%s", err)
		}
		return s
	default:
		t.unexpected(tok, context)
		return ""
	}
}

// command parses: operand (space operand)* up to '|' or the closing delim.
func (t *tree) command() *ast.Command {
	cmd := &ast.Command{}
	for {
		t.peekNonSpace()
		if operand := t.operand(); operand != nil {
			cmd.Args = append(cmd.Args, operand)
		}
		switch tok := t.next(); tok.typ {
		case itemSpace:
			continue
		case itemError:
			t.errorf("%s", tok.val)
		case itemRightDelim, itemRightParen:
			t.backup()
		case itemPipe:
		default:
			t.errorf("unexpected %s in operand", tok)
		}
		break
	}
	if len(cmd.Args) == 0 {
		t.errorf("empty command")
	}
	return cmd
}

// operand parses: term ('.' IDENT)*
func (t *tree) operand() ast.Expr {
	node := t.term()
	if node == nil {
		return nil
	}
	if t.peek().typ != itemField {
		return node
	}
	var names []string
	for t.peek().typ == itemField {
		names = append(names, strings.TrimPrefix(t.next().val, "."))
	}
	switch n := node.(type) {
	case *ast.FieldExpr:
		n.Names = append(n.Names, names...)
		return n
	case *ast.VarExpr, *ast.RootExpr, *ast.Pipeline:
		return &ast.FieldExpr{Base: node, Names: names}
	default:
		t.errorf("unexpected . after term %q", node.String())
		return nil
	}
}

// term parses a single term: literal, function identifier, '.', '$', or a
// parenthesized sub-pipeline.
func (t *tree) term() ast.Expr {
	switch tok := t.nextNonSpace(); tok.typ {
	case itemError:
		t.errorf("%s", tok.val)
	case itemIdentifier:
		if !t.hasFunction(tok.val) {
			t.errorf("function %q not defined", tok.val)
		}
		return &ast.IdentifierExpr{Name: tok.val}
	case itemDot:
		return &ast.DotExpr{}
	case itemField:
		return &ast.FieldExpr{Names: []string{strings.TrimPrefix(tok.val, ".")}}
	case itemVariable:
		return t.useVar(tok.val)
	case itemBool:
		return &ast.BoolExpr{Value: tok.val == "true"}
	case itemCharConstant:
		c, err := parseChar(tok.val)
		if err != nil {
			t.errorf("%s", err)
		}
		return c
	case itemNumber:
		n, err := parseNumber(tok.val)
		if err != nil {
			t.errorf("%s", err)
		}
		return n
	case itemLeftParen:
		pipe := t.pipeline("parenthesized pipeline")
		if tok := t.next(); tok.typ != itemRightParen {
			t.errorf("unclosed right paren: unexpected %s", tok)
		}
		return pipe
	case itemString, itemRawString:
		s, err := strconv.Unquote(tok.val)
		if err != nil {
			t.errorf("%s", err)
		}
		return &ast.StringExpr{Quoted: tok.val, Value: s}
	}
	t.backup()
	return nil
}

func (t *tree) hasFunction(name string) bool {
	if t.funcNames == nil {
		return false
	}
	return t.funcNames[name]
}

func (t *tree) useVar(tokVal string) ast.Expr {
	name := varName(tokVal)
	if name == "" {
		return &ast.RootExpr{}
	}
	for _, v := range t.vars {
		if v == name {
			return &ast.VarExpr{Name: name}
		}
	}
	t.errorf("undefined variable %q", "$"+name)
	return nil
}

// parseNumber classifies a numeric literal per §4.3: narrowest-fit signed
// or unsigned integer, or (if '.'        '/'e'/'p' is present) the
// narrowest of float32 then float64 that round-trips the value.
func parseNumber(text string) (*ast.NumberExpr, error) {
	clean := strings.ReplaceAll(text, "_", "")
	isFloat := strings.ContainsAny(clean, ".")
	if strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X") ||
		strings.HasPrefix(clean, "-0x") || strings.HasPrefix(clean, "-0X") ||
		strings.HasPrefix(clean, "+0x") || strings.HasPrefix(clean, "+0X") {
		if strings.ContainsAny(clean, "pP") {
			isFloat = true
		}
	} else if strings.ContainsAny(clean, "eE") {
		isFloat = true
	}

	if isFloat {
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return nil, err
		}
		bits := uint8(64)
		if float64(float32(f)) == f {
			bits = 32
		}
		return &ast.NumberExpr{Kind: ast.NumberFloat, Bits: bits, Flt: f, Text: text}, nil
	}

	negative := strings.HasPrefix(clean, "-")
	if !negative {
		u, err := strconv.ParseUint(strings.TrimPrefix(clean, "+"), 0, 64)
		if err != nil {
			return nil, err
		}
		if u > 1<<63-1 {
			return &ast.NumberExpr{Kind: ast.NumberUint, Bits: 64, Uint: u, Text: text}, nil
		}
		i := int64(u)
		return &ast.NumberExpr{Kind: ast.NumberInt, Bits: narrowestSignedBits(i), Int: i, Text: text}, nil
	}
	i, err := strconv.ParseInt(clean, 0, 64)
	if err != nil {
		return nil, err
	}
	return &ast.NumberExpr{Kind: ast.NumberInt, Bits: narrowestSignedBits(i), Int: i, Text: text}, nil
}

func narrowestSignedBits(i int64) uint8 {
	switch {
	case i >= -(1<<7) && i <= 1<<7-1:
		return 8
	case i >= -(1<<15) && i <= 1<<15-1:
		return 16
	case i >= -(1<<31) && i <= 1<<31-1:
		return 32
	default:
		return 64
	}
}

// parseChar unquotes a char literal and classifies its code point's byte
// width (1/2/4), per §4.3's character lexing rule.
func parseChar(text string) (*ast.CharExpr, error) {
	s, err := strconv.Unquote(text)
	if err != nil {
		return nil, err
	}
	r, _ := utf8.DecodeRuneInString(s)
	var width uint8 = 4
	switch {
	case r < 0x100:
		width = 1
	case r < 0x10000:
		width = 2
	}
	return &ast.CharExpr{Width: width, Value: r, Text: text}, nil
}
