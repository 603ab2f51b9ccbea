package expand

import "go/ast"

// accumulator holds the tail of the message while folding from the right.
// It stays static, a list of element expressions known now, until an
// Optional is met; from then on it is an expression of type []sexp.Sexp
// built at runtime.
type accumulator struct {
	static  []ast.Expr
	dynamic ast.Expr
}

// assemble folds the classified entries into one expression of type
// sexp.Sexp. A single contributed value stands for itself rather than a
// one-element list, decided here when every entry is static and by
// sexp.Collapse otherwise.
func (x *Expander) assemble(entries []Classified) ast.Expr {
	var acc accumulator
	for i := len(entries) - 1; i >= 0; i-- {
		switch c := entries[i].(type) {
		case Absent:
		case Present:
			if acc.dynamic == nil {
				acc.static = append([]ast.Expr{c.Expr}, acc.static...)
			} else {
				acc.dynamic = x.rtCall("Cons", c.Expr, acc.dynamic)
			}
		case Optional:
			acc.dynamic = x.rtCall("ConsSome", c.Expr, x.wrapFunc(c), x.materialize(acc))
		}
	}

	if acc.dynamic != nil {
		return x.rtCall("Collapse", acc.dynamic)
	}
	if len(acc.static) == 1 {
		return acc.static[0]
	}
	return x.list(acc.static...)
}

// materialize returns the accumulator as a []sexp.Sexp expression.
func (x *Expander) materialize(acc accumulator) ast.Expr {
	if acc.dynamic != nil {
		return acc.dynamic
	}
	if len(acc.static) == 0 {
		return ast.NewIdent("nil")
	}
	return &ast.CompositeLit{
		Type: &ast.ArrayType{Elt: x.rt("Sexp")},
		Elts: acc.static,
	}
}

// wrapFunc is func(v T) sexp.Sexp { return wrap(v) }.
func (x *Expander) wrapFunc(c Optional) ast.Expr {
	v := ast.NewIdent("v")
	return &ast.FuncLit{
		Type: &ast.FuncType{
			Params: &ast.FieldList{List: []*ast.Field{{
				Names: []*ast.Ident{v},
				Type:  c.Elem,
			}}},
			Results: &ast.FieldList{List: []*ast.Field{{Type: x.rt("Sexp")}}},
		},
		Body: &ast.BlockStmt{List: []ast.Stmt{
			&ast.ReturnStmt{Results: []ast.Expr{c.Wrap(v)}},
		}},
	}
}
