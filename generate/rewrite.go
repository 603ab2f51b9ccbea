package generate

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"path"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/chazu/sexpmsg"
	"github.com/chazu/sexpmsg/expand"
)

// Header marks generated files.
const Header = "// Code generated by sexpmsg. DO NOT EDIT."

// directiveNames are the exported names of the directive package.
var directiveNames = map[string]bool{
	"Message": true, "Label": true, "OptLabel": true, "As": true, "Here": true,
}

// FileResult describes the rewrite of one file.
type FileResult struct {
	Sites  int // Message calls expanded
	Lifted int // Here calls outside a Message replaced
}

// RewriteFile expands every Message call in file and returns the formatted
// source of the generated file. file is modified in place. On failure every
// failed site is reported and no output is returned.
func (g *Generator) RewriteFile(fset *token.FileSet, file *ast.File) ([]byte, FileResult, []error) {
	var res FileResult

	directive := "sexpmsg"
	spec := findImport(file, sexpmsg.DirectivePath)
	if spec != nil && spec.Name != nil {
		directive = spec.Name.Name
	}
	runtime, addRuntime := runtimeName(file)

	x, err := expand.New(fset, expand.Options{
		Directive:   directive,
		Runtime:     runtime,
		Conversions: g.Config.Conversions,
	})
	if err != nil {
		return nil, res, []error{fmt.Errorf("configuring expansion: %w", err)}
	}

	var errs []error
	if spec != nil && directive != "_" {
		r := &rewriter{x: x}
		r.rewrite(file)
		res.Sites, res.Lifted, errs = r.sites, r.lifted, r.errs
	}
	if len(errs) > 0 {
		return nil, res, errs
	}

	if res.Sites > 0 && addRuntime {
		if runtime == path.Base(sexpmsg.RuntimePath) {
			astutil.AddImport(fset, file, sexpmsg.RuntimePath)
		} else {
			astutil.AddNamedImport(fset, file, runtime, sexpmsg.RuntimePath)
		}
	}
	if spec != nil && !directiveUsed(file, directive) {
		name := ""
		if spec.Name != nil {
			name = spec.Name.Name
		}
		astutil.DeleteNamedImport(fset, file, name, sexpmsg.DirectivePath)
	}

	src, err := g.render(fset, file)
	if err != nil {
		return nil, res, []error{err}
	}
	return src, res, nil
}

// Source rewrites one file given as source text.
func (g *Generator) Source(filename string, src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	out, _, errs := g.RewriteFile(fset, file)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// render prints the rewritten file under the generated header with the
// inverted build constraint.
func (g *Generator) render(fset *token.FileSet, file *ast.File) ([]byte, error) {
	expr, err := takeConstraint(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fset.Position(file.Package).Filename, err)
	}
	if expr != nil && !mentionsTag(expr, g.Config.Tag) {
		g.Logger.Warningf("%s: build constraint %q does not mention tag %q",
			fset.Position(file.Package).Filename, expr.String(), g.Config.Tag)
	}

	var body bytes.Buffer
	if err := format.Node(&body, fset, file); err != nil {
		return nil, fmt.Errorf("printing: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n\n//go:build %s\n\n", Header, invertTag(expr, g.Config.Tag))
	buf.Write(body.Bytes())

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Traversal
// ---------------------------------------------------------------------------

type rewriter struct {
	x      *expand.Expander
	sites  int
	lifted int
	errs   []error
}

// rewrite replaces Message and Here calls under root. An expansion is
// rewritten again, so Message calls in its arguments are expanded from
// their original source.
func (r *rewriter) rewrite(root ast.Node) ast.Node {
	return astutil.Apply(root, func(c *astutil.Cursor) bool {
		call, ok := c.Node().(*ast.CallExpr)
		if !ok {
			return true
		}
		switch r.x.Directive(call) {
		case "Message":
			out, err := r.x.Expand(call)
			if err != nil {
				r.errs = append(r.errs, err)
				return true
			}
			r.sites++
			c.Replace(r.rewrite(out).(ast.Expr))
			return false
		case "Here":
			if len(call.Args) == 0 {
				r.lifted++
				c.Replace(r.x.Lifter.Lift(call.Pos()))
				return false
			}
		}
		return true
	}, nil)
}

// ---------------------------------------------------------------------------
// Imports
// ---------------------------------------------------------------------------

func findImport(file *ast.File, importPath string) *ast.ImportSpec {
	for _, spec := range file.Imports {
		if p, err := strconv.Unquote(spec.Path.Value); err == nil && p == importPath {
			return spec
		}
	}
	return nil
}

// runtimeName returns the name generated code uses for the runtime
// package and whether an import must be added for it.
func runtimeName(file *ast.File) (string, bool) {
	if spec := findImport(file, sexpmsg.RuntimePath); spec != nil {
		if spec.Name == nil {
			return path.Base(sexpmsg.RuntimePath), false
		}
		if spec.Name.Name != "_" {
			return spec.Name.Name, false
		}
	}

	name := path.Base(sexpmsg.RuntimePath)
	for taken(file, name) {
		name += "rt"
	}
	return name, true
}

// taken reports whether name is the local name of an import.
func taken(file *ast.File, name string) bool {
	for _, spec := range file.Imports {
		local := ""
		if spec.Name != nil {
			local = spec.Name.Name
		} else if p, err := strconv.Unquote(spec.Path.Value); err == nil {
			local = path.Base(p)
		}
		if local == name {
			return true
		}
	}
	return false
}

// directiveUsed reports whether the directive package is still referenced
// after expansion. It works on syntax alone, so file need not have been
// parsed with object resolution.
func directiveUsed(file *ast.File, name string) bool {
	switch name {
	case "_":
		return true
	case ".":
		return dotImportUsed(file)
	}
	used := false
	for _, decl := range file.Decls {
		ast.Inspect(decl, func(n ast.Node) bool {
			if sel, ok := n.(*ast.SelectorExpr); ok {
				if id, ok := sel.X.(*ast.Ident); ok && id.Name == name {
					used = true
				}
			}
			return !used
		})
	}
	return used
}

// dotImportUsed reports whether a directive name appears unqualified in
// expression position. Selected names, declared names, struct literal keys
// and labels are not references to the package.
func dotImportUsed(file *ast.File) bool {
	used := false
	var visit func(n ast.Node) bool
	inspect := func(n ast.Node) {
		if n != nil && !used {
			ast.Inspect(n, visit)
		}
	}
	visit = func(n ast.Node) bool {
		if used {
			return false
		}
		switch n := n.(type) {
		case *ast.Ident:
			used = directiveNames[n.Name]
		case *ast.ImportSpec, *ast.BranchStmt:
			return false
		case *ast.SelectorExpr:
			inspect(n.X)
			return false
		case *ast.Field:
			inspect(n.Type)
			return false
		case *ast.FuncDecl:
			if n.Recv != nil {
				inspect(n.Recv)
			}
			inspect(n.Type)
			if n.Body != nil {
				inspect(n.Body)
			}
			return false
		case *ast.TypeSpec:
			if n.TypeParams != nil {
				inspect(n.TypeParams)
			}
			inspect(n.Type)
			return false
		case *ast.ValueSpec:
			if n.Type != nil {
				inspect(n.Type)
			}
			for _, v := range n.Values {
				inspect(v)
			}
			return false
		case *ast.KeyValueExpr:
			if _, ok := n.Key.(*ast.Ident); !ok {
				inspect(n.Key)
			}
			inspect(n.Value)
			return false
		case *ast.AssignStmt:
			if n.Tok == token.DEFINE {
				for _, v := range n.Rhs {
					inspect(v)
				}
				return false
			}
		case *ast.LabeledStmt:
			inspect(n.Stmt)
			return false
		}
		return !used
	}
	for _, decl := range file.Decls {
		inspect(decl)
	}
	return used
}
