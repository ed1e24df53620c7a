// Package gotmpl is a text-template engine compatible with the language
// of Go's own text/template: literal text, substitution actions,
// pipelines, define/block/template, if/else/with/range with
// break/continue, variable declaration/assignment, and whitespace-
// trimming delimiters (see ast, parse, exec and value for the pieces).
//
// It differs from text/template in one deliberate way: field and index
// access walk a closed dynamic Value (package value) rather than Go's
// reflect package, so the data passed to Execute need not be a Go struct
// or map — value.FromGo converts anything reflect-shaped, and a caller
// that already holds a value.Value may pass it directly.
package gotmpl

import (
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/bithero-go/gotmpl/builtins"
	"github.com/bithero-go/gotmpl/exec"
	"github.com/bithero-go/gotmpl/internal/terr"
	"github.com/bithero-go/gotmpl/parse"
	"github.com/bithero-go/gotmpl/value"
)

func templateNotDefinedError(name string) error {
	return terr.NewExecError(name, "template: no such template", nil)
}

// Template is one named entity in a common table of sub-templates
// (spec.md §3). The zero value is not usable; construct with New.
type Template struct {
	name      string
	common    *common
	leftDelim string
	rightDelim string
}

// New allocates a named Template with its own, fresh common table seeded
// with the builtin function set.
func New(name string) *Template {
	c := &common{
		treeSet: map[string]*parse.Tree{},
		tmpl:    map[string]*Template{},
		funcs:   builtins.Funcs(),
	}
	t := &Template{name: name, common: c, leftDelim: "{{", rightDelim: "}}"}
	c.tmpl[name] = t
	return t
}

// Name returns the template's name.
func (t *Template) Name() string { return t.name }

// Delims sets the action delimiters used by the next Parse call on t.
// Empty strings fall back to "{{" and "}}".
func (t *Template) Delims(left, right string) *Template {
	t.leftDelim, t.rightDelim = left, right
	return t
}

// Funcs merges fm into the template's function map, converting each Go
// function value via value.FuncFromReflect. It panics if any value is not
// a function — the same contract text/template's own Funcs applies to a
// malformed FuncMap, since there is no later point before Parse to
// surface the mistake.
func (t *Template) Funcs(fm map[string]interface{}) *Template {
	for name, fn := range fm {
		fv, err := value.FuncFromReflect(reflect.ValueOf(fn))
		if err != nil {
			panic("gotmpl: invalid function " + name + ": " + err.Error())
		}
		t.common.funcs[name] = fv
	}
	return t
}

func funcNames(funcs map[string]*value.FuncValue) map[string]bool {
	names := builtins.Names()
	for name := range funcs {
		names[name] = true
	}
	return names
}

// Parse parses text as the definition of t, registering any nested
// {{define}}/{{block}} bodies into the shared common table, and returns
// t. Redefining a name already present from a prior Parse replaces that
// name's parsed body per §4.4's merge rule; the Template objects in the
// common table are kept.
func (t *Template) Parse(text string) (*Template, error) {
	treeSet, err := parse.Parse(t.name, text, t.leftDelim, t.rightDelim, t.common.treeSet, funcNames(t.common.funcs))
	if err != nil {
		return nil, err
	}
	for name := range treeSet {
		if _, ok := t.common.tmpl[name]; !ok {
			t.common.tmpl[name] = &Template{
				name:       name,
				common:     t.common,
				leftDelim:  t.leftDelim,
				rightDelim: t.rightDelim,
			}
		}
	}
	return t.common.tmpl[t.name], nil
}

// Lookup returns the named sub-template from t's common table, or nil if
// none has been defined.
func (t *Template) Lookup(name string) *Template {
	return t.common.tmpl[name]
}

// DefinedTemplates lists the names of every template sharing t's common
// table, in sorted order.
func (t *Template) DefinedTemplates() []string {
	names := make([]string, 0, len(t.common.tmpl))
	for name := range t.common.tmpl {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsEmpty reports whether t's own body has no nodes, or only whitespace-
// only text nodes.
func (t *Template) IsEmpty() bool {
	return t.common.treeSet[t.name].IsEmpty()
}

// Execute renders t against data, writing emitted text to sink. data may
// be a value.Value already, or any Go value convertible via value.FromGo.
func (t *Template) Execute(sink io.Writer, data interface{}) error {
	return t.ExecuteTemplate(sink, t.name, data)
}

// ExecuteTemplate renders the named sub-template (which must share t's
// common table) against data.
func (t *Template) ExecuteTemplate(sink io.Writer, name string, data interface{}) error {
	tree, ok := t.common.treeSet[name]
	if !ok {
		return templateNotDefinedError(name)
	}
	v, err := value.FromGo(data)
	if err != nil {
		return err
	}
	return exec.Execute(tree, t.common, t.common.funcs, v, sink)
}

// Clone returns a new Template sharing no mutable state with t: a shallow
// copy of every parsed tree (trees are immutable after parse, so sharing
// their pointers is safe) and a fresh, independently mutable common table,
// with the self-entry remapped to the clone (§3 "Cloning a Template...").
func (t *Template) Clone() (*Template, error) {
	newCommon := &common{
		treeSet: make(map[string]*parse.Tree, len(t.common.treeSet)),
		tmpl:    make(map[string]*Template, len(t.common.tmpl)),
		funcs:   make(map[string]*value.FuncValue, len(t.common.funcs)),
	}
	for name, tr := range t.common.treeSet {
		newCommon.treeSet[name] = tr
	}
	for name, fv := range t.common.funcs {
		newCommon.funcs[name] = fv
	}
	for name := range t.common.tmpl {
		newCommon.tmpl[name] = &Template{
			name:       name,
			common:     newCommon,
			leftDelim:  t.leftDelim,
			rightDelim: t.rightDelim,
		}
	}
	clone, ok := newCommon.tmpl[t.name]
	if !ok {
		clone = &Template{name: t.name, common: newCommon, leftDelim: t.leftDelim, rightDelim: t.rightDelim}
		newCommon.tmpl[t.name] = clone
	}
	return clone, nil
}

// Dump renders t's own parsed body back into source form by concatenating
// each top-level node's String(), for the external debug printer
// collaborator (cmd/gotmpldump).
func (t *Template) Dump() string {
	tree, ok := t.common.treeSet[t.name]
	if !ok {
		return ""
	}
	var sb strings.Builder
	for _, n := range tree.Root {
		sb.WriteString(n.String())
	}
	return sb.String()
}
