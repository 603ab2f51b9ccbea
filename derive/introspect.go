package derive

import (
	"fmt"
	"go/token"
	"go/types"
	"path/filepath"
	"reflect"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Options configures IntrospectPackage.
type Options struct {
	// Dir is the directory the pattern is resolved in.
	Dir string
	// Output is the name of the generated file. Sexp methods declared in it
	// do not count as hand-written, and errors in it are ignored.
	Output string
	// Types, if non-nil, restricts which type names are included.
	Types map[string]bool
}

// IntrospectPackage loads the package matching pattern and returns the
// exported struct types that need a Sexp method.
func IntrospectPackage(pattern string, opts Options) (*PackageModel, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedTypes | packages.NeedSyntax,
		Dir:  opts.Dir,
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", pattern, err)
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("%s matches %d packages, want 1", pattern, len(pkgs))
	}

	pkg := pkgs[0]
	if errs := relevantErrors(pkg, opts.Output); len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}
	if pkg.Types == nil {
		return nil, fmt.Errorf("type information not available for %s", pattern)
	}

	model := &PackageModel{
		ImportPath: pkg.PkgPath,
		Name:       pkg.Name,
	}
	if len(pkg.GoFiles) > 0 {
		model.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		if opts.Types != nil && !opts.Types[name] {
			continue
		}
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() || tn.IsAlias() {
			continue
		}
		if tm := extractType(tn, pkg.Fset, opts.Output); tm != nil {
			model.Types = append(model.Types, *tm)
		}
	}

	return model, nil
}

// relevantErrors drops errors located in the generated file, which may be
// stale while its inputs change.
func relevantErrors(pkg *packages.Package, output string) []packages.Error {
	var errs []packages.Error
	for _, e := range pkg.Errors {
		if output != "" && strings.Contains(e.Pos, string(filepath.Separator)+output+":") {
			continue
		}
		errs = append(errs, e)
	}
	return errs
}

func extractType(tn *types.TypeName, fset *token.FileSet, output string) *TypeModel {
	named, ok := tn.Type().(*types.Named)
	if !ok || named.TypeParams().Len() > 0 {
		return nil
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil
	}
	if handWritten(named, fset, output) {
		return nil
	}

	tm := &TypeModel{
		Name:   tn.Name(),
		GoType: named,
	}
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Exported() {
			continue
		}
		label, omitEmpty, skip := parseTag(reflect.StructTag(st.Tag(i)).Get("sexp"))
		if skip {
			continue
		}
		if label == "" {
			label = f.Name()
		}
		tm.Fields = append(tm.Fields, FieldModel{
			Name:      f.Name(),
			Label:     label,
			GoType:    f.Type(),
			TypeStr:   types.TypeString(f.Type(), qualifier(tn.Pkg())),
			OmitEmpty: omitEmpty,
		})
	}
	return tm
}

// handWritten reports whether named already has a Sexp method declared
// outside the generated file.
func handWritten(named *types.Named, fset *token.FileSet, output string) bool {
	for i := 0; i < named.NumMethods(); i++ {
		m := named.Method(i)
		if m.Name() != "Sexp" {
			continue
		}
		file := filepath.Base(fset.Position(m.Pos()).Filename)
		return file != output
	}
	return false
}

// parseTag reads a `sexp:"name,omitempty"` struct tag.
func parseTag(tag string) (label string, omitEmpty, skip bool) {
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func qualifier(pkg *types.Package) types.Qualifier {
	return func(other *types.Package) string {
		if other == pkg {
			return ""
		}
		return other.Name()
	}
}
