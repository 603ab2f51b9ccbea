// Package sexpmsgcheck defines an Analyzer that reports Message calls the
// generator would reject, and directives that have no effect.
package sexpmsgcheck

import (
	"go/ast"
	"go/token"
	"path"
	"strconv"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/chazu/sexpmsg"
	"github.com/chazu/sexpmsg/expand"
)

const Doc = `check sexpmsg directives

The sexpmsgcheck analyzer expands every sexpmsg.Message call the way
"sexpmsg generate" does and reports the sites that fail: OptLabel uses,
malformed Label and As calls, and annotated types with no conversion.
It also reports Label, OptLabel and As calls outside a Message call,
which are left unexpanded and have no effect.

Directive sources are usually guarded by the sexpmsg build tag, so run it
with GOFLAGS=-tags=sexpmsg.`

var Analyzer = &analysis.Analyzer{
	Name:     "sexpmsgcheck",
	Doc:      Doc,
	URL:      "https://pkg.go.dev/github.com/chazu/sexpmsg/analysis/sexpmsgcheck",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var conversions stringMap

func init() {
	Analyzer.Flags.Var(&conversions, "conversion", "type=conversion override, as in sexpmsg.toml (repeatable)")
}

func run(pass *analysis.Pass) (any, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	expanders := make(map[*token.File]*expand.Expander)
	for _, file := range pass.Files {
		x, err := expanderFor(pass.Fset, file)
		if err != nil {
			return nil, err
		}
		if x != nil {
			expanders[pass.Fset.File(file.Pos())] = x
		}
	}
	if len(expanders) == 0 {
		return nil, nil
	}

	reported := make(map[token.Pos]bool)
	report := func(pos token.Pos, category, msg string) {
		if reported[pos] {
			return
		}
		reported[pos] = true
		pass.Report(analysis.Diagnostic{Pos: pos, Category: category, Message: msg})
	}

	inspect.WithStack([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		x := expanders[pass.Fset.File(n.Pos())]
		if x == nil {
			return false
		}
		call := n.(*ast.CallExpr)

		switch name := x.Directive(call); name {
		case "Message":
			if _, err := x.Expand(call); err != nil {
				if e, ok := err.(*expand.Error); ok {
					report(e.At, e.Kind.String(), e.Msg)
				} else {
					report(call.Pos(), "", err.Error())
				}
			}
		case "Label", "OptLabel", "As":
			if !insideMessage(x, stack) {
				report(call.Pos(), "unused directive", name+" outside a Message call has no effect")
			}
		}
		return true
	})
	return nil, nil
}

// expanderFor returns an Expander for the names file gives the directive
// and runtime packages, or nil when file does not import the directive.
func expanderFor(fset *token.FileSet, file *ast.File) (*expand.Expander, error) {
	directive, ok := importName(file, sexpmsg.DirectivePath)
	if !ok || directive == "_" {
		return nil, nil
	}
	runtime, ok := importName(file, sexpmsg.RuntimePath)
	if !ok || runtime == "_" {
		runtime = path.Base(sexpmsg.RuntimePath)
	}
	return expand.New(fset, expand.Options{
		Directive:   directive,
		Runtime:     runtime,
		Conversions: conversions,
	})
}

func importName(file *ast.File, importPath string) (string, bool) {
	for _, spec := range file.Imports {
		if p, err := strconv.Unquote(spec.Path.Value); err != nil || p != importPath {
			continue
		}
		if spec.Name != nil {
			return spec.Name.Name, true
		}
		return path.Base(importPath), true
	}
	return "", false
}

// insideMessage reports whether a Message call encloses the top of stack.
func insideMessage(x *expand.Expander, stack []ast.Node) bool {
	for i := len(stack) - 2; i >= 0; i-- {
		if call, ok := stack[i].(*ast.CallExpr); ok && x.Directive(call) == "Message" {
			return true
		}
	}
	return false
}
