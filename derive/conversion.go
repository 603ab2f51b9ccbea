package derive

import (
	"fmt"
	"go/types"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/sexpmsg"
)

const rt = sexpmsg.RuntimePath

// basicConversions maps basic kinds to runtime routines.
var basicConversions = map[types.BasicKind]string{
	types.Bool:       "OfBool",
	types.Int:        "OfInt",
	types.Int8:       "OfInt8",
	types.Int16:      "OfInt16",
	types.Int32:      "OfInt32",
	types.Int64:      "OfInt64",
	types.Uint:       "OfUint",
	types.Uint8:      "OfUint8",
	types.Uint16:     "OfUint16",
	types.Uint32:     "OfUint32",
	types.Uint64:     "OfUint64",
	types.Uintptr:    "OfUintptr",
	types.Float32:    "OfFloat32",
	types.Float64:    "OfFloat64",
	types.Complex64:  "OfComplex64",
	types.Complex128: "OfComplex128",
	types.String:     "OfString",
}

var (
	errorType    = types.Universe.Lookup("error").Type()
	errorIface   = errorType.Underlying().(*types.Interface)
	stringerType = types.NewInterfaceType([]*types.Func{
		types.NewFunc(0, nil, "String", types.NewSignatureType(nil, nil, nil, nil,
			types.NewTuple(types.NewVar(0, nil, "", types.Typ[types.String])), false)),
	}, nil).Complete()
)

// Converter derives conversion functions from Go types: the code it returns
// is a function value taking the type and returning a sexp.Sexp.
type Converter struct {
	// Derived holds the types a Sexp method is being generated for, which
	// count as implementing sexp.Sexper.
	Derived map[*types.TypeName]bool
}

// ConversionFor returns the conversion for t.
func (c *Converter) ConversionFor(t types.Type) (jen.Code, error) {
	t = types.Unalias(t)

	if named, ok := t.(*types.Named); ok {
		obj := named.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() == rt {
			switch obj.Name() {
			case "Sexp":
				return jen.Qual(rt, "OfSexp"), nil
			case "Option":
				elem, err := c.ConversionFor(named.TypeArgs().At(0))
				if err != nil {
					return nil, err
				}
				return jen.Qual(rt, "OfOption").Call(elem), nil
			case "Atom", "List":
				return closure(t, jen.Qual(rt, "OfSexp").Call(jen.Id("v"))), nil
			}
		}
		if c.Derived[obj] || hasSexpMethod(named) {
			return jen.Qual(rt, "OfSexper").Types(typeCode(named)), nil
		}
	}

	if iface, ok := t.Underlying().(*types.Interface); ok {
		if types.Identical(iface, errorIface) {
			return jen.Qual(rt, "OfError"), nil
		}
		return jen.Qual(rt, "OfAny"), nil
	}

	if _, ok := t.(*types.Named); ok {
		switch {
		case types.Implements(t, errorIface):
			return closure(t, jen.Qual(rt, "OfError").Call(jen.Id("v"))), nil
		case types.Implements(t, stringerType):
			return jen.Qual(rt, "OfStringer").Types(typeCode(t)), nil
		}
		return c.underlying(t)
	}

	switch u := t.(type) {
	case *types.Basic:
		if routine, ok := basicConversions[u.Kind()]; ok {
			return jen.Qual(rt, routine), nil
		}
	case *types.Pointer:
		elem, err := c.ConversionFor(u.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Qual(rt, "OfPtr").Call(elem), nil
	case *types.Slice:
		elem, err := c.ConversionFor(u.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Qual(rt, "OfSlice").Call(elem), nil
	case *types.Array:
		elem, err := c.ConversionFor(u.Elem())
		if err != nil {
			return nil, err
		}
		return closure(t, jen.Qual(rt, "OfSlice").Call(elem).Call(jen.Id("v").Index(jen.Op(":")))), nil
	case *types.Map:
		key, err := c.ConversionFor(u.Key())
		if err != nil {
			return nil, err
		}
		val, err := c.ConversionFor(u.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Qual(rt, "OfMap").Call(key, val), nil
	}

	return nil, fmt.Errorf("no conversion for type %s", t)
}

// underlying converts a named type through its underlying type.
func (c *Converter) underlying(t types.Type) (jen.Code, error) {
	u := t.Underlying()
	if _, ok := u.(*types.Struct); ok {
		return nil, fmt.Errorf("no conversion for type %s: it has no Sexp method", t)
	}
	conv, err := c.ConversionFor(u)
	if err != nil {
		return nil, fmt.Errorf("no conversion for type %s: %w", t, err)
	}
	arg := jen.Id("v")
	if b, ok := u.(*types.Basic); ok {
		arg = jen.Id(b.Name()).Call(jen.Id("v"))
	}
	return closure(t, jen.Add(conv).Call(arg)), nil
}

// closure is func(v T) sexp.Sexp { return body }.
func closure(t types.Type, body jen.Code) jen.Code {
	return jen.Func().Params(jen.Id("v").Add(typeCode(t))).Qual(rt, "Sexp").Block(jen.Return(body))
}

// hasSexpMethod reports whether t has a value method Sexp() sexp.Sexp.
func hasSexpMethod(t types.Type) bool {
	obj, _, _ := types.LookupFieldOrMethod(t, false, nil, "Sexp")
	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}
	sig := fn.Type().(*types.Signature)
	if sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return false
	}
	res, ok := types.Unalias(sig.Results().At(0).Type()).(*types.Named)
	return ok && res.Obj().Pkg() != nil && res.Obj().Pkg().Path() == rt && res.Obj().Name() == "Sexp"
}

// typeCode renders t as jen code, qualifying named types by package path.
func typeCode(t types.Type) jen.Code {
	switch u := types.Unalias(t).(type) {
	case *types.Basic:
		return jen.Id(u.Name())
	case *types.Named:
		obj := u.Obj()
		var code *jen.Statement
		if obj.Pkg() == nil {
			code = jen.Id(obj.Name())
		} else {
			code = jen.Qual(obj.Pkg().Path(), obj.Name())
		}
		if args := u.TypeArgs(); args.Len() > 0 {
			var params []jen.Code
			for i := 0; i < args.Len(); i++ {
				params = append(params, typeCode(args.At(i)))
			}
			code = code.Types(params...)
		}
		return code
	case *types.Pointer:
		return jen.Op("*").Add(typeCode(u.Elem()))
	case *types.Slice:
		return jen.Index().Add(typeCode(u.Elem()))
	case *types.Array:
		return jen.Index(jen.Lit(int(u.Len()))).Add(typeCode(u.Elem()))
	case *types.Map:
		return jen.Map(typeCode(u.Key())).Add(typeCode(u.Elem()))
	case *types.Interface:
		if u.Empty() {
			return jen.Id("any")
		}
	}
	return jen.Id(types.TypeString(t, func(p *types.Package) string { return p.Name() }))
}
