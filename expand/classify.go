package expand

import (
	"go/ast"
	"go/token"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"
)

// ---------------------------------------------------------------------------
// Arguments
// ---------------------------------------------------------------------------

// LabelKind says how an argument was labeled.
type LabelKind int

const (
	NoLabel LabelKind = iota
	Named
	OptionalLabel
)

// Label is the label of one argument. Pos is the position of the Label or
// OptLabel call.
type Label struct {
	Kind LabelKind
	Name string
	Pos  token.Pos
}

// Argument is one syntactic argument of a Message call with its label
// removed.
type Argument struct {
	Label Label
	Expr  ast.Expr
}

// ---------------------------------------------------------------------------
// Classified values
// ---------------------------------------------------------------------------

// Classified is what one argument contributes to a message: exactly one of
// Present, Optional or Absent.
type Classified interface {
	classified() // marker method
}

// Present always contributes Expr, an expression of type sexp.Sexp.
type Present struct {
	Expr ast.Expr
}

// Optional contributes Wrap(v) when Expr, of type sexp.Option[Elem], holds
// v at runtime, and nothing otherwise.
type Optional struct {
	Expr ast.Expr
	Elem ast.Expr
	Wrap func(v ast.Expr) ast.Expr
}

// Absent never contributes.
type Absent struct{}

func (Present) classified()  {}
func (Optional) classified() {}
func (Absent) classified()   {}

// ---------------------------------------------------------------------------
// Classification
// ---------------------------------------------------------------------------

// classify decides what expr contributes. Here() markers are replaced by
// their position first, so a lifted position classifies as a string.
func (x *Expander) classify(expr ast.Expr) (Classified, error) {
	expr, err := x.liftPositions(expr)
	if err != nil {
		return nil, err
	}

	if lit, ok := x.constant(expr); ok {
		if isEmptyString(lit) {
			return Absent{}, nil
		}
		conv, err := x.convertConstant(lit)
		if err != nil {
			return nil, err
		}
		return Present{Expr: conv}, nil
	}

	if call, ok := ast.Unparen(expr).(*ast.CallExpr); ok {
		switch x.directiveName(call.Fun) {
		case "As":
			inner, ty, err := x.annotationParts(call)
			if err != nil {
				return nil, err
			}
			return x.resolveConstraint(inner, ty)
		case "Label":
			return nil, x.errorf(call, InvalidLabel, "Label is only valid as a Message argument")
		case "OptLabel":
			return nil, x.optLabelError(call.Pos())
		}
	}

	// Anything else is taken to be a string at the call site.
	return Present{Expr: x.rtCall("OfString", expr)}, nil
}

func isEmptyString(lit literal) bool {
	if lit.kind != token.STRING || lit.width != "" {
		return false
	}
	s, err := strconv.Unquote(lit.value.Value)
	return err == nil && s == ""
}

// liftPositions returns expr with every Here() call replaced by the string
// literal for its position. The replacement happens on a copy; expr itself
// is left untouched.
func (x *Expander) liftPositions(expr ast.Expr) (ast.Expr, error) {
	if !x.mentionsHere(expr) {
		return expr, nil
	}

	var err error
	out := astutil.Apply(cloneNode(expr), func(c *astutil.Cursor) bool {
		if err != nil {
			return false
		}
		call, ok := c.Node().(*ast.CallExpr)
		if !ok || x.directiveName(call.Fun) != "Here" {
			return true
		}
		if len(call.Args) != 0 {
			err = x.errorf(call, InvalidDirective, "Here takes no arguments")
			return false
		}
		c.Replace(x.Lifter.Lift(call.Pos()))
		return false
	}, nil)
	if err != nil {
		return nil, err
	}
	return out.(ast.Expr), nil
}

func (x *Expander) mentionsHere(n ast.Node) bool {
	found := false
	ast.Inspect(n, func(n ast.Node) bool {
		if call, ok := n.(*ast.CallExpr); ok && x.directiveName(call.Fun) == "Here" {
			found = true
		}
		return !found
	})
	return found
}
