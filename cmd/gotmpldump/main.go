// Command gotmpldump parses a template file and prints the reconstructed
// source of every defined template, each under a colorized name heading;
// the source text itself is printed uncolored. Adapted from the teacher's
// cmd/yparse, which does the same for a parsed YAML document: read a
// path from argv, parse it, and pretty-print the result to a colorable
// stdout via fatih/color + mattn/go-colorable.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"

	gotmpl "github.com/bithero-go/gotmpl"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: gotmpldump <template-file>")
		os.Exit(2)
	}

	src, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "gotmpldump:", err)
		os.Exit(1)
	}

	tmpl, err := gotmpl.New(os.Args[1]).Parse(string(src))
	if err != nil {
		fmt.Fprintln(os.Stderr, "gotmpldump:", err)
		os.Exit(1)
	}

	out := colorable.NewColorableStdout()
	names := tmpl.DefinedTemplates()

	heading := color.New(color.FgCyan, color.Bold)
	for _, name := range names {
		sub := tmpl.Lookup(name)
		heading.Fprintf(out, "-- %s --\n", name)
		fmt.Fprintln(out, sub.Dump())
		fmt.Fprintln(out)
	}
}
