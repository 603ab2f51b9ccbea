package expand

import (
	"fmt"
	"go/ast"
)

// TypeResolver derives the conversion function for a type expression: the
// returned expression, applied to a value of that type, yields a sexp.Sexp.
type TypeResolver interface {
	Conversion(ty ast.Expr) (ast.Expr, error)
}

// NewTypeResolver returns the syntax-directed resolver used by New. runtime
// is the name of the runtime package in generated code; overrides maps type
// source text, as rendered by printer, to conversion source text.
func NewTypeResolver(runtime string, printer SourcePrinter, overrides map[string]string) TypeResolver {
	return &syntaxResolver{runtime: runtime, printer: printer, overrides: overrides}
}

type syntaxResolver struct {
	runtime   string
	printer   SourcePrinter
	overrides map[string]string
}

// builtinConversions maps predeclared types to runtime routines.
var builtinConversions = map[string]string{
	"string":     "OfString",
	"bool":       "OfBool",
	"int":        "OfInt",
	"int8":       "OfInt8",
	"int16":      "OfInt16",
	"int32":      "OfInt32",
	"int64":      "OfInt64",
	"uint":       "OfUint",
	"uint8":      "OfUint8",
	"byte":       "OfUint8",
	"uint16":     "OfUint16",
	"uint32":     "OfUint32",
	"uint64":     "OfUint64",
	"uintptr":    "OfUintptr",
	"float32":    "OfFloat32",
	"float64":    "OfFloat64",
	"complex64":  "OfComplex64",
	"complex128": "OfComplex128",
	"rune":       "OfRune",
	"error":      "OfError",
	"any":        "OfAny",
}

func (r *syntaxResolver) Conversion(ty ast.Expr) (ast.Expr, error) {
	if len(r.overrides) > 0 {
		if text, err := r.printer.Source(ty); err == nil {
			if conv, ok := r.overrides[text]; ok {
				// Validated by New; spliced into the output as written.
				return ast.NewIdent(conv), nil
			}
		}
	}

	switch t := ty.(type) {
	case *ast.ParenExpr:
		return r.Conversion(t.X)

	case *ast.Ident:
		if routine, ok := builtinConversions[t.Name]; ok {
			return r.rt(routine), nil
		}
		return r.sexper(ty), nil

	case *ast.SelectorExpr:
		if isRuntimeName(t, r.runtime, "Sexp") {
			return r.rt("OfSexp"), nil
		}
		return r.sexper(ty), nil

	case *ast.StarExpr:
		elem, err := r.Conversion(t.X)
		if err != nil {
			return nil, err
		}
		return apply(r.rt("OfPtr"), elem), nil

	case *ast.ArrayType:
		if t.Len != nil {
			return nil, fmt.Errorf("no conversion for array type; annotate a slice of it instead")
		}
		elem, err := r.Conversion(t.Elt)
		if err != nil {
			return nil, err
		}
		return apply(r.rt("OfSlice"), elem), nil

	case *ast.MapType:
		key, err := r.Conversion(t.Key)
		if err != nil {
			return nil, err
		}
		val, err := r.Conversion(t.Value)
		if err != nil {
			return nil, err
		}
		return apply(r.rt("OfMap"), key, val), nil

	case *ast.IndexExpr:
		if isRuntimeName(t.X, r.runtime, "Option") {
			elem, err := r.Conversion(t.Index)
			if err != nil {
				return nil, err
			}
			return apply(r.rt("OfOption"), elem), nil
		}
		return r.sexper(ty), nil

	case *ast.IndexListExpr:
		return r.sexper(ty), nil

	case *ast.InterfaceType:
		if t.Methods == nil || len(t.Methods.List) == 0 {
			return r.rt("OfAny"), nil
		}
	}

	text, _ := r.printer.Source(ty)
	return nil, fmt.Errorf("no conversion for type %s", text)
}

// sexper is the conversion for a named type, which must implement
// sexp.Sexper.
func (r *syntaxResolver) sexper(ty ast.Expr) ast.Expr {
	return &ast.IndexExpr{X: r.rt("OfSexper"), Index: ty}
}

func (r *syntaxResolver) rt(name string) ast.Expr {
	if r.runtime == "." {
		return ast.NewIdent(name)
	}
	return &ast.SelectorExpr{X: ast.NewIdent(r.runtime), Sel: ast.NewIdent(name)}
}
