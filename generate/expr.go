package generate

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"

	"github.com/chazu/sexpmsg/expand"
)

// Expr expands a single Message call given as source text and returns the
// formatted expansion. The call must use the default package names.
func (g *Generator) Expr(src string) (string, error) {
	fset := token.NewFileSet()
	e, err := parser.ParseExprFrom(fset, "<expr>", src, parser.SkipObjectResolution)
	if err != nil {
		return "", err
	}
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return "", fmt.Errorf("not a call: %s", src)
	}

	x, err := expand.New(fset, expand.Options{Conversions: g.Config.Conversions})
	if err != nil {
		return "", err
	}
	if x.Directive(call) != "Message" {
		return "", fmt.Errorf("not a sexpmsg.Message call: %s", src)
	}

	r := &rewriter{x: x}
	out := r.rewrite(call)
	if len(r.errs) > 0 {
		return "", r.errs[0]
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, out); err != nil {
		return "", err
	}
	return buf.String(), nil
}
