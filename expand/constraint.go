package expand

import "go/ast"

// resolveConstraint classifies expr annotated with ty. Option[T] makes the
// argument Optional, converted with the conversion for T when present; any
// other type makes it Present.
func (x *Expander) resolveConstraint(expr, ty ast.Expr) (Classified, error) {
	if elem, ok := x.optionElem(ty); ok {
		conv, err := x.conversion(elem)
		if err != nil {
			return nil, err
		}
		return Optional{
			Expr: expr,
			Elem: elem,
			Wrap: func(v ast.Expr) ast.Expr { return apply(conv, v) },
		}, nil
	}

	conv, err := x.conversion(ty)
	if err != nil {
		return nil, err
	}
	return Present{Expr: apply(conv, expr)}, nil
}

func (x *Expander) conversion(ty ast.Expr) (ast.Expr, error) {
	conv, err := x.Types.Conversion(ty)
	if err != nil {
		return nil, x.errorf(ty, UnsupportedType, "%v", err)
	}
	return conv, nil
}

// optionElem reports whether ty is the runtime's Option[T] and returns T.
func (x *Expander) optionElem(ty ast.Expr) (ast.Expr, bool) {
	idx, ok := ast.Unparen(ty).(*ast.IndexExpr)
	if !ok {
		return nil, false
	}
	if !isRuntimeName(idx.X, x.runtime, "Option") {
		return nil, false
	}
	return idx.Index, true
}

// isRuntimeName reports whether e names the runtime package's name, as
// either pkg.name or, under a dot import, name.
func isRuntimeName(e ast.Expr, runtime, name string) bool {
	switch v := e.(type) {
	case *ast.SelectorExpr:
		id, ok := v.X.(*ast.Ident)
		return ok && runtime != "." && id.Name == runtime && v.Sel.Name == name
	case *ast.Ident:
		return runtime == "." && v.Name == name
	}
	return false
}
