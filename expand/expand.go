// Package expand turns a sexpmsg.Message call into the Go expression that
// builds its S-expression.
//
// Expansion is a pure function of syntax. Each argument is classified as
// Present, Optional or Absent, optionally tagged with a name, and the
// results are folded into one expression. When no argument is Optional the
// shape of the result is decided here; otherwise the generated code decides
// it at runtime.
package expand

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
)

// Options configures an Expander.
type Options struct {
	// Directive is the name the source file uses for the directive
	// package, or "." when it is dot-imported. Defaults to "sexpmsg".
	Directive string

	// Runtime is the name the source file uses for the runtime package,
	// both in annotations (Option[T]) and in generated code. Defaults to
	// "sexp".
	Runtime string

	// Conversions maps the source text of a type to the source text of
	// its conversion function, overriding the built-in resolution.
	Conversions map[string]string
}

// Expander expands Message calls. The collaborators may be replaced after
// New; an Expander holds no per-expansion state and may be reused.
type Expander struct {
	Fset    *token.FileSet
	Types   TypeResolver
	Printer SourcePrinter
	Lifter  PositionLifter

	directive string
	runtime   string
}

// New returns an Expander wired with the default collaborators.
func New(fset *token.FileSet, opts Options) (*Expander, error) {
	if opts.Directive == "" {
		opts.Directive = "sexpmsg"
	}
	if opts.Runtime == "" {
		opts.Runtime = "sexp"
	}

	overrides := make(map[string]string, len(opts.Conversions))
	for ty, conv := range opts.Conversions {
		if _, err := parser.ParseExpr(conv); err != nil {
			return nil, fmt.Errorf("conversion for %s: %w", ty, err)
		}
		overrides[ty] = conv
	}

	printer := NewSourcePrinter()
	return &Expander{
		Fset:      fset,
		Types:     NewTypeResolver(opts.Runtime, printer, overrides),
		Printer:   printer,
		Lifter:    NewPositionLifter(fset),
		directive: opts.Directive,
		runtime:   opts.Runtime,
	}, nil
}

// Expand returns the expression replacing call. call is not modified.
func (x *Expander) Expand(call *ast.CallExpr) (ast.Expr, error) {
	args, err := x.arguments(call)
	if err != nil {
		return nil, err
	}

	entries := make([]Classified, 0, len(args))
	for _, arg := range args {
		c, err := x.entry(arg)
		if err != nil {
			return nil, err
		}
		entries = append(entries, c)
	}
	return x.assemble(entries), nil
}

func (x *Expander) entry(arg Argument) (Classified, error) {
	if arg.Label.Kind == OptionalLabel {
		return nil, x.optLabelError(arg.Label.Pos)
	}
	c, err := x.classify(arg.Expr)
	if err != nil {
		return nil, err
	}
	return x.encodeLabel(arg, c)
}

// ---------------------------------------------------------------------------
// Argument-list extraction
// ---------------------------------------------------------------------------

// arguments lists the syntactic arguments of a Message call. A single
// argument that is an ordinary call is taken apart into its function, as
// the first unlabeled argument, followed by its own arguments.
func (x *Expander) arguments(call *ast.CallExpr) ([]Argument, error) {
	if call.Ellipsis.IsValid() {
		return nil, x.errorAt(call.Ellipsis, InvalidDirective, "Message arguments cannot be spread with ...")
	}
	switch len(call.Args) {
	case 0:
		return nil, nil
	case 1:
		arg := call.Args[0]
		if app, ok := ast.Unparen(arg).(*ast.CallExpr); ok && x.directiveName(app.Fun) == "" && !x.isConstant(app) {
			if app.Ellipsis.IsValid() {
				return nil, x.errorAt(app.Ellipsis, InvalidDirective, "the arguments of a destructured call cannot be spread with ...")
			}
			args := []Argument{{Expr: app.Fun}}
			for _, a := range app.Args {
				d, err := x.destructure(a)
				if err != nil {
					return nil, err
				}
				args = append(args, d)
			}
			return args, nil
		}
	}

	args := make([]Argument, 0, len(call.Args))
	for _, a := range call.Args {
		d, err := x.destructure(a)
		if err != nil {
			return nil, err
		}
		args = append(args, d)
	}
	return args, nil
}

// destructure splits a Label or OptLabel wrapper off an argument.
func (x *Expander) destructure(e ast.Expr) (Argument, error) {
	call, ok := ast.Unparen(e).(*ast.CallExpr)
	if !ok {
		return Argument{Expr: e}, nil
	}

	var kind LabelKind
	switch x.directiveName(call.Fun) {
	case "Label":
		kind = Named
	case "OptLabel":
		kind = OptionalLabel
	default:
		return Argument{Expr: e}, nil
	}

	if len(call.Args) != 2 {
		return Argument{}, x.errorf(call, InvalidLabel, "%s takes a name and a value, got %d arguments", x.directiveName(call.Fun), len(call.Args))
	}
	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return Argument{}, x.errorf(call.Args[0], InvalidLabel, "label name must be a string literal")
	}
	name, err := strconv.Unquote(lit.Value)
	if err != nil {
		return Argument{}, x.errorf(lit, InvalidLabel, "label name: %v", err)
	}
	return Argument{
		Label: Label{Kind: kind, Name: name, Pos: call.Pos()},
		Expr:  call.Args[1],
	}, nil
}

func (x *Expander) optLabelError(pos token.Pos) *Error {
	return x.errorAt(pos, InvalidOptionalLabel,
		"OptLabel is reserved for optional parameters and cannot be used in Message")
}

// ---------------------------------------------------------------------------
// Directive recognition
// ---------------------------------------------------------------------------

// Directive returns the name of the directive call invokes, such as
// "Message", or "" when call is not a directive.
func (x *Expander) Directive(call *ast.CallExpr) string {
	return x.directiveName(call.Fun)
}

// directiveName returns the name of the directive fun refers to, or "".
// Generic instantiations such as As[int] name their base function.
func (x *Expander) directiveName(fun ast.Expr) string {
	switch f := fun.(type) {
	case *ast.IndexExpr:
		return x.directiveName(f.X)
	case *ast.IndexListExpr:
		return x.directiveName(f.X)
	case *ast.SelectorExpr:
		if id, ok := f.X.(*ast.Ident); ok && x.directive != "." && id.Name == x.directive {
			return f.Sel.Name
		}
	case *ast.Ident:
		if x.directive == "." {
			switch f.Name {
			case "Message", "Label", "OptLabel", "As", "Here":
				return f.Name
			}
		}
	}
	return ""
}

// annotation reports whether e is As[T](inner).
func (x *Expander) annotation(e ast.Expr) (call *ast.CallExpr, ok bool) {
	call, ok = ast.Unparen(e).(*ast.CallExpr)
	if !ok || x.directiveName(call.Fun) != "As" {
		return nil, false
	}
	return call, true
}

// annotationParts validates As[T](inner) and returns inner and T.
func (x *Expander) annotationParts(call *ast.CallExpr) (inner, ty ast.Expr, err error) {
	idx, ok := call.Fun.(*ast.IndexExpr)
	if !ok {
		return nil, nil, x.errorf(call, InvalidAnnotation, "As needs exactly one explicit type argument")
	}
	if len(call.Args) != 1 || call.Ellipsis.IsValid() {
		return nil, nil, x.errorf(call, InvalidAnnotation, "As takes exactly one value, got %d", len(call.Args))
	}
	return call.Args[0], idx.Index, nil
}

// ---------------------------------------------------------------------------
// Output construction
// ---------------------------------------------------------------------------

func (x *Expander) rt(name string) ast.Expr {
	if x.runtime == "." {
		return ast.NewIdent(name)
	}
	return &ast.SelectorExpr{X: ast.NewIdent(x.runtime), Sel: ast.NewIdent(name)}
}

func (x *Expander) rtCall(name string, args ...ast.Expr) ast.Expr {
	return &ast.CallExpr{Fun: x.rt(name), Args: args}
}

func apply(fn ast.Expr, args ...ast.Expr) ast.Expr {
	return &ast.CallExpr{Fun: fn, Args: args}
}

// list is sexp.List{elts...}.
func (x *Expander) list(elts ...ast.Expr) ast.Expr {
	return &ast.CompositeLit{Type: x.rt("List"), Elts: elts}
}

// atom is sexp.Atom("name").
func (x *Expander) atom(name string) ast.Expr {
	return x.rtCall("Atom", &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(name)})
}
