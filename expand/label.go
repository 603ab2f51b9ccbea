package expand

import "go/ast"

// noTag is the label name meaning the value is not tagged.
const noTag = "_"

// encodeLabel tags c with the argument's label. An unlabeled annotated
// argument is tagged with the source text of its annotated expression.
func (x *Expander) encodeLabel(arg Argument, c Classified) (Classified, error) {
	switch arg.Label.Kind {
	case OptionalLabel:
		return nil, x.optLabelError(arg.Label.Pos)
	case Named:
		if arg.Label.Name == noTag {
			return c, nil
		}
		return x.tag(c, arg.Label.Name), nil
	}

	call, ok := x.annotation(arg.Expr)
	if !ok {
		return c, nil
	}
	inner, _, err := x.annotationParts(call)
	if err != nil {
		return nil, err
	}
	name, err := x.Printer.Source(inner)
	if err != nil {
		return nil, x.errorf(inner, InvalidAnnotation, "%v", err)
	}
	return x.tag(c, name), nil
}

// tag wraps a value as (name value). For an Optional the wrap is applied
// inside the presence check.
func (x *Expander) tag(c Classified, name string) Classified {
	switch v := c.(type) {
	case Present:
		return Present{Expr: x.list(x.atom(name), v.Expr)}
	case Optional:
		wrap := v.Wrap
		return Optional{
			Expr: v.Expr,
			Elem: v.Elem,
			Wrap: func(e ast.Expr) ast.Expr { return x.list(x.atom(name), wrap(e)) },
		}
	}
	return c
}
