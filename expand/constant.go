package expand

import (
	"go/ast"
	"go/token"
)

// literal is a constant argument: a basic literal, optionally negated, and
// optionally converted to a sized numeric type such as int32(5).
type literal struct {
	expr  ast.Expr      // the whole constant expression
	value *ast.BasicLit // the literal inside it
	kind  token.Token
	width string // sized type name, or "" for a bare literal
}

// sizedTypes are the predeclared types whose conversion of a literal is
// itself treated as a literal.
var sizedTypes = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
	"byte": true, "rune": true,
}

func (x *Expander) isConstant(e ast.Expr) bool {
	_, ok := x.constant(e)
	return ok
}

// constant recognizes the literal forms.
func (x *Expander) constant(e ast.Expr) (literal, bool) {
	if call, ok := ast.Unparen(e).(*ast.CallExpr); ok {
		id, ok := call.Fun.(*ast.Ident)
		if !ok || !sizedTypes[id.Name] || len(call.Args) != 1 {
			return literal{}, false
		}
		lit, ok := basicLiteral(call.Args[0])
		if !ok || lit.Kind == token.STRING {
			return literal{}, false
		}
		return literal{expr: e, value: lit, kind: lit.Kind, width: id.Name}, true
	}

	lit, ok := basicLiteral(e)
	if !ok {
		return literal{}, false
	}
	return literal{expr: e, value: lit, kind: lit.Kind}, true
}

func basicLiteral(e ast.Expr) (*ast.BasicLit, bool) {
	e = ast.Unparen(e)
	if u, ok := e.(*ast.UnaryExpr); ok && (u.Op == token.SUB || u.Op == token.ADD) {
		lit, ok := ast.Unparen(u.X).(*ast.BasicLit)
		if !ok || lit.Kind == token.STRING || lit.Kind == token.CHAR {
			return nil, false
		}
		return lit, true
	}
	lit, ok := e.(*ast.BasicLit)
	return lit, ok
}

// convertConstant applies the conversion routine for the literal's kind.
func (x *Expander) convertConstant(lit literal) (ast.Expr, error) {
	routine, ok := constantRoutine(lit)
	if !ok {
		return nil, x.errorf(lit.expr, UnsupportedLiteral, "unsupported literal %s", lit.value.Value)
	}
	return x.rtCall(routine, lit.expr), nil
}

func constantRoutine(lit literal) (string, bool) {
	switch lit.width {
	case "":
	case "int":
		return "OfInt", true
	case "int8":
		return "OfInt8", true
	case "int16":
		return "OfInt16", true
	case "int32":
		return "OfInt32", true
	case "rune":
		return "OfRune", true
	case "int64":
		return "OfInt64", true
	case "uint":
		return "OfUint", true
	case "uint8", "byte":
		return "OfUint8", true
	case "uint16":
		return "OfUint16", true
	case "uint32":
		return "OfUint32", true
	case "uint64":
		return "OfUint64", true
	case "uintptr":
		return "OfUintptr", true
	case "float32":
		return "OfFloat32", true
	case "float64":
		return "OfFloat64", true
	case "complex64":
		return "OfComplex64", true
	case "complex128":
		return "OfComplex128", true
	default:
		return "", false
	}

	switch lit.kind {
	case token.INT:
		return "OfInt", true
	case token.FLOAT:
		return "OfFloat64", true
	case token.IMAG:
		return "OfComplex128", true
	case token.CHAR:
		return "OfRune", true
	case token.STRING:
		return "OfString", true
	}
	return "", false
}
