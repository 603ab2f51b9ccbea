package derive

import (
	"bytes"
	"fmt"
	"go/types"

	"github.com/dave/jennifer/jen"
	"github.com/tliron/commonlog"
)

// Header is the first line of generated files.
const Header = "Code generated by sexpmsg derive. DO NOT EDIT."

var log = commonlog.GetLogger("sexpmsg.derive")

// Result contains the generated code and the fields that were left out.
type Result struct {
	Code    string
	Skipped []SkippedField
}

// GenerateMethods generates a file declaring
//
//	func (v T) Sexp() sexp.Sexp
//
// for every type in model. The result is a list of (Label value) pairs in
// field order. Fields whose type has no conversion are skipped.
func GenerateMethods(model *PackageModel) (*Result, error) {
	f := jen.NewFilePathName(model.ImportPath, model.Name)
	f.HeaderComment(Header)
	f.ImportName(rt, "sexp")

	conv := &Converter{Derived: make(map[*types.TypeName]bool)}
	for _, tm := range model.Types {
		if named, ok := tm.GoType.(*types.Named); ok {
			conv.Derived[named.Obj()] = true
			registerImports(f, named)
		}
	}

	res := &Result{}
	for _, tm := range model.Types {
		var fields []fieldCode
		for _, fm := range tm.Fields {
			c, err := conv.ConversionFor(fm.GoType)
			if err != nil {
				log.Debugf("%s.%s: %v", tm.Name, fm.Name, err)
				res.Skipped = append(res.Skipped, SkippedField{Type: tm.Name, Field: fm.Name, Reason: err.Error()})
				continue
			}
			fields = append(fields, fieldCode{model: fm, conv: c})
		}
		genMethod(f, tm, fields)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", model.ImportPath, err)
	}
	res.Code = buf.String()
	return res, nil
}

type fieldCode struct {
	model FieldModel
	conv  jen.Code
}

// pair is sexp.List{sexp.Atom("label"), conv(v.Field)}.
func (fc fieldCode) pair() jen.Code {
	return jen.Qual(rt, "List").Values(
		jen.Qual(rt, "Atom").Call(jen.Lit(fc.model.Label)),
		jen.Add(fc.conv).Call(jen.Id("v").Dot(fc.model.Name)),
	)
}

func genMethod(f *jen.File, tm TypeModel, fields []fieldCode) {
	var conditional bool
	for _, fc := range fields {
		if fc.model.OmitEmpty && presence(fc.model) != nil {
			conditional = true
		}
	}

	var body []jen.Code
	if !conditional {
		pairs := make([]jen.Code, 0, len(fields))
		for _, fc := range fields {
			pairs = append(pairs, jen.Line().Add(fc.pair()))
		}
		if len(pairs) > 0 {
			pairs = append(pairs, jen.Line())
		}
		body = append(body, jen.Return(jen.Qual(rt, "List").Values(pairs...)))
	} else {
		body = append(body, jen.Id("items").Op(":=").Make(jen.Qual(rt, "List"), jen.Lit(0), jen.Lit(len(fields))))
		for _, fc := range fields {
			add := jen.Id("items").Op("=").Append(jen.Id("items"), fc.pair())
			if cond := presence(fc.model); fc.model.OmitEmpty && cond != nil {
				body = append(body, jen.If(cond).Block(add))
			} else {
				body = append(body, add)
			}
		}
		body = append(body, jen.Return(jen.Id("items")))
	}

	f.Comment("Sexp returns v as a list of (field value) pairs.")
	f.Func().Params(jen.Id("v").Id(tm.Name)).Id("Sexp").Params().Qual(rt, "Sexp").Block(body...)
	f.Line()
}

// presence is the condition under which an omitempty field is included,
// or nil when its type has no zero test.
func presence(fm FieldModel) jen.Code {
	v := jen.Id("v").Dot(fm.Name)
	if named, ok := types.Unalias(fm.GoType).(*types.Named); ok {
		if obj := named.Obj(); obj.Pkg() != nil && obj.Pkg().Path() == rt && obj.Name() == "Option" {
			return v.Dot("IsSome").Call()
		}
	}

	switch u := fm.GoType.Underlying().(type) {
	case *types.Basic:
		switch {
		case u.Info()&types.IsBoolean != 0:
			return v
		case u.Info()&types.IsString != 0:
			return v.Op("!=").Lit("")
		case u.Info()&types.IsNumeric != 0:
			return v.Op("!=").Lit(0)
		}
	case *types.Pointer, *types.Interface, *types.Chan, *types.Signature:
		return v.Op("!=").Nil()
	case *types.Slice, *types.Map:
		return jen.Len(v).Op("!=").Lit(0)
	}
	return nil
}

// registerImports records the package names of the field types of named
// so jen renders them without aliases.
func registerImports(f *jen.File, named *types.Named) {
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return
	}
	for i := 0; i < st.NumFields(); i++ {
		walkNamed(st.Field(i).Type(), func(obj *types.TypeName) {
			if pkg := obj.Pkg(); pkg != nil {
				f.ImportName(pkg.Path(), pkg.Name())
			}
		}, make(map[types.Type]bool))
	}
}

func walkNamed(t types.Type, visit func(*types.TypeName), seen map[types.Type]bool) {
	if seen[t] {
		return
	}
	seen[t] = true
	switch u := types.Unalias(t).(type) {
	case *types.Named:
		visit(u.Obj())
		for i := 0; i < u.TypeArgs().Len(); i++ {
			walkNamed(u.TypeArgs().At(i), visit, seen)
		}
	case *types.Pointer:
		walkNamed(u.Elem(), visit, seen)
	case *types.Slice:
		walkNamed(u.Elem(), visit, seen)
	case *types.Array:
		walkNamed(u.Elem(), visit, seen)
	case *types.Map:
		walkNamed(u.Key(), visit, seen)
		walkNamed(u.Elem(), visit, seen)
	}
}
