package generate

import (
	"bytes"
	"errors"
	"go/ast"
	"go/build/constraint"
	"go/format"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/tliron/commonlog"

	"github.com/chazu/sexpmsg/expand"
)

const storeSource = `//go:build sexpmsg

package store

import (
	"fmt"

	"github.com/chazu/sexpmsg"
	"github.com/chazu/sexpmsg/sexp"
)

var where = sexpmsg.Here()

func notFound(key string, attempt sexp.Option[int]) error {
	return fmt.Errorf("%v", sexpmsg.Message("not found",
		sexpmsg.Label("key", key),
		sexpmsg.As[sexp.Option[int]](attempt),
	))
}
`

func newTestGenerator(cfg Config) *Generator {
	g := New(cfg)
	g.Logger = commonlog.MOCK_LOGGER
	return g
}

// oneLine prints e with no line information.
func oneLine(t *testing.T, e ast.Node) string {
	t.Helper()
	var buf bytes.Buffer
	if err := format.Node(&buf, token.NewFileSet(), e); err != nil {
		t.Fatalf("format: %v", err)
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

func canonical(t *testing.T, src string) string {
	t.Helper()
	e, err := parser.ParseExpr(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return oneLine(t, e)
}

func parseOutput(t *testing.T, out []byte) *ast.File {
	t.Helper()
	file, err := parser.ParseFile(token.NewFileSet(), "out.go", out, parser.ParseComments)
	if err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, out)
	}
	return file
}

// varValue returns the initializer of a package-level variable.
func varValue(t *testing.T, file *ast.File, name string) ast.Expr {
	t.Helper()
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}
		for _, spec := range gen.Specs {
			vs := spec.(*ast.ValueSpec)
			if vs.Names[0].Name == name {
				return vs.Values[0]
			}
		}
	}
	t.Fatalf("no var %s", name)
	return nil
}

// callArg returns argument i of the first call to fun.
func callArg(t *testing.T, file *ast.File, fun string, i int) ast.Expr {
	t.Helper()
	var found ast.Expr
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if ok && found == nil && oneLine(t, call.Fun) == fun {
			found = call.Args[i]
		}
		return found == nil
	})
	if found == nil {
		t.Fatalf("no call to %s", fun)
	}
	return found
}

func importPaths(file *ast.File) map[string]string {
	paths := make(map[string]string)
	for _, spec := range file.Imports {
		name := ""
		if spec.Name != nil {
			name = spec.Name.Name
		}
		paths[strings.Trim(spec.Path.Value, `"`)] = name
	}
	return paths
}

// ---------------------------------------------------------------------------
// Rewriting
// ---------------------------------------------------------------------------

func TestSource_RewritesFile(t *testing.T) {
	g := newTestGenerator(Config{})
	out, err := g.Source("internal/store/store.go", []byte(storeSource))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}

	if !bytes.HasPrefix(out, []byte(Header+"\n\n//go:build !sexpmsg\n\npackage store\n")) {
		t.Errorf("unexpected file header:\n%s", out)
	}

	file := parseOutput(t, out)
	imports := importPaths(file)
	if _, ok := imports["github.com/chazu/sexpmsg"]; ok {
		t.Error("directive import should be removed")
	}
	if _, ok := imports["github.com/chazu/sexpmsg/sexp"]; !ok {
		t.Error("runtime import missing")
	}
	if _, ok := imports["fmt"]; !ok {
		t.Error("fmt import missing")
	}

	if got, want := oneLine(t, varValue(t, file, "where")), `"store.go:12:13"`; got != want {
		t.Errorf("where = %s, want %s", got, want)
	}

	want := canonical(t, `sexp.Collapse(sexp.Cons(sexp.OfString("not found"), sexp.Cons(sexp.List{sexp.Atom("key"), sexp.OfString(key)}, sexp.ConsSome(attempt, func(v int) sexp.Sexp { return sexp.List{sexp.Atom("attempt"), sexp.OfInt(v)} }, nil))))`)
	if got := oneLine(t, callArg(t, file, "fmt.Errorf", 1)); got != want {
		t.Errorf("message expansion\n got: %s\nwant: %s", got, want)
	}
}

func TestSource_Idempotent(t *testing.T) {
	g := newTestGenerator(Config{})
	first, err := g.Source("store.go", []byte(storeSource))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	second, err := g.Source("store.go", []byte(storeSource))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("output differs between runs:\n%s\n---\n%s", first, second)
	}
}

func TestSource_AddsRuntimeImport(t *testing.T) {
	src := `//go:build sexpmsg

package p

import "github.com/chazu/sexpmsg"

var answer = sexpmsg.Message(42)
`
	out, err := newTestGenerator(Config{}).Source("p.go", []byte(src))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	file := parseOutput(t, out)
	imports := importPaths(file)
	if name, ok := imports["github.com/chazu/sexpmsg/sexp"]; !ok || name != "" {
		t.Errorf("imports = %v, want unnamed runtime import", imports)
	}
	if len(imports) != 1 {
		t.Errorf("imports = %v, want only the runtime", imports)
	}
	if got := oneLine(t, varValue(t, file, "answer")); got != "sexp.OfInt(42)" {
		t.Errorf("answer = %s", got)
	}
}

func TestSource_RuntimeNameTaken(t *testing.T) {
	src := `//go:build sexpmsg

package p

import (
	"example.com/other/sexp"
	"github.com/chazu/sexpmsg"
)

var a = sexp.Thing
var b = sexpmsg.Message(1, 2)
`
	out, err := newTestGenerator(Config{}).Source("p.go", []byte(src))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	file := parseOutput(t, out)
	if name := importPaths(file)["github.com/chazu/sexpmsg/sexp"]; name != "sexprt" {
		t.Errorf("runtime imported as %q, want sexprt", name)
	}
	if got, want := oneLine(t, varValue(t, file, "b")), canonical(t, `sexprt.List{sexprt.OfInt(1), sexprt.OfInt(2)}`); got != want {
		t.Errorf("b = %s, want %s", got, want)
	}
}

func TestSource_RenamedImports(t *testing.T) {
	src := `//go:build sexpmsg

package p

import (
	msg "github.com/chazu/sexpmsg"
	s "github.com/chazu/sexpmsg/sexp"
)

func f(n s.Option[int]) s.Sexp {
	return msg.Message(msg.As[s.Option[int]](n))
}
`
	out, err := newTestGenerator(Config{}).Source("p.go", []byte(src))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if !bytes.Contains(out, []byte("s.Collapse(s.ConsSome(n, func(v int) s.Sexp {")) {
		t.Errorf("expected expansion with renamed runtime:\n%s", out)
	}
	if bytes.Contains(out, []byte("github.com/chazu/sexpmsg\"")) {
		t.Errorf("directive import should be removed:\n%s", out)
	}
}

func TestSource_DotImportedDirective(t *testing.T) {
	src := `//go:build sexpmsg

package p

import . "github.com/chazu/sexpmsg"

var v = Message(Label("n", 1))
`
	out, err := newTestGenerator(Config{}).Source("p.go", []byte(src))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	file := parseOutput(t, out)
	if _, ok := importPaths(file)["github.com/chazu/sexpmsg"]; ok {
		t.Errorf("dot import should be removed:\n%s", out)
	}
	if got, want := oneLine(t, varValue(t, file, "v")), canonical(t, `sexp.List{sexp.Atom("n"), sexp.OfInt(1)}`); got != want {
		t.Errorf("v = %s, want %s", got, want)
	}
}

func TestSource_KeepsDirectiveImportWhenUsed(t *testing.T) {
	src := `//go:build sexpmsg

package p

import "github.com/chazu/sexpmsg"

var n = sexpmsg.As[int](3)
var m = sexpmsg.Message(n)
`
	out, err := newTestGenerator(Config{}).Source("p.go", []byte(src))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if _, ok := importPaths(parseOutput(t, out))["github.com/chazu/sexpmsg"]; !ok {
		t.Errorf("directive import should be kept:\n%s", out)
	}
}

func TestRewriteFile_WithoutObjectResolution(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "store.go", storeSource, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, res, errs := newTestGenerator(Config{}).RewriteFile(fset, file)
	if len(errs) > 0 {
		t.Fatalf("RewriteFile: %v", errs)
	}
	if res.Sites != 1 {
		t.Errorf("Sites = %d, want 1", res.Sites)
	}
	if _, ok := importPaths(parseOutput(t, out))["github.com/chazu/sexpmsg"]; ok {
		t.Errorf("directive import should be removed:\n%s", out)
	}
}

func TestRewriteFile_RenamedDirectiveStillUsed(t *testing.T) {
	src := `//go:build sexpmsg

package p

import msg "github.com/chazu/sexpmsg"

var n = msg.As[int](3)
var m = msg.Message("m", n)
`
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "p.go", src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, _, errs := newTestGenerator(Config{}).RewriteFile(fset, file)
	if len(errs) > 0 {
		t.Fatalf("RewriteFile: %v", errs)
	}
	if name, ok := importPaths(parseOutput(t, out))["github.com/chazu/sexpmsg"]; !ok || name != "msg" {
		t.Errorf("renamed directive import should be kept:\n%s", out)
	}
}

func TestSource_DotImportIgnoresFieldsAndKeys(t *testing.T) {
	src := `//go:build sexpmsg

package p

import . "github.com/chazu/sexpmsg"

type T struct{ Label string }

var t0 = T{Label: "x"}

func f(t T) any { return Message(t.Label) }
`
	out, err := newTestGenerator(Config{}).Source("p.go", []byte(src))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if _, ok := importPaths(parseOutput(t, out))["github.com/chazu/sexpmsg"]; ok {
		t.Errorf("dot import should be removed:\n%s", out)
	}
}

func TestSource_DotImportKeptWhenUsed(t *testing.T) {
	src := `//go:build sexpmsg

package p

import . "github.com/chazu/sexpmsg"

var n = As[int](3)
var m = Message("m", n)
`
	out, err := newTestGenerator(Config{}).Source("p.go", []byte(src))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if name, ok := importPaths(parseOutput(t, out))["github.com/chazu/sexpmsg"]; !ok || name != "." {
		t.Errorf("dot import should be kept:\n%s", out)
	}
}

func TestSource_NestedMessage(t *testing.T) {
	src := `//go:build sexpmsg

package p

import (
	"github.com/chazu/sexpmsg"
	"github.com/chazu/sexpmsg/sexp"
)

var v = sexpmsg.Message("outer", sexpmsg.As[sexp.Sexp](sexpmsg.Message("inner", 1)))
`
	out, err := newTestGenerator(Config{}).Source("p.go", []byte(src))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	want := canonical(t, `sexp.List{sexp.OfString("outer"), sexp.List{sexp.Atom("sexpmsg.Message(\"inner\", 1)"), sexp.OfSexp(sexp.List{sexp.OfString("inner"), sexp.OfInt(1)})}}`)
	if got := oneLine(t, varValue(t, parseOutput(t, out), "v")); got != want {
		t.Errorf("v\n got: %s\nwant: %s", got, want)
	}
}

func TestSource_Conversions(t *testing.T) {
	src := `//go:build sexpmsg

package p

import (
	"time"

	"github.com/chazu/sexpmsg"
)

func f(d time.Duration) any {
	return sexpmsg.Message(sexpmsg.As[time.Duration](d))
}
`
	g := newTestGenerator(Config{Conversions: map[string]string{
		"time.Duration": "sexp.OfStringer[time.Duration]",
	}})
	out, err := g.Source("p.go", []byte(src))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if !bytes.Contains(out, []byte(`sexp.List{sexp.Atom("d"), sexp.OfStringer[time.Duration](d)}`)) {
		t.Errorf("override not applied:\n%s", out)
	}
}

func TestSource_ReportsEveryFailedSite(t *testing.T) {
	src := `//go:build sexpmsg

package p

import "github.com/chazu/sexpmsg"

var a = sexpmsg.Message(x, sexpmsg.OptLabel("y", 1))
var b = sexpmsg.Message(1)
var c = sexpmsg.Message(x, sexpmsg.As[chan int](ch))
`
	g := newTestGenerator(Config{})
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "p.go", src, parser.ParseComments)
	if err != nil {
		t.Fatal(err)
	}

	out, res, errs := g.RewriteFile(fset, file)
	if out != nil {
		t.Error("expected no output for a file with failed sites")
	}
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	if res.Sites != 1 {
		t.Errorf("Sites = %d, want 1", res.Sites)
	}

	var xerr *expand.Error
	if !errors.As(errs[0], &xerr) || xerr.Kind != expand.InvalidOptionalLabel || xerr.Pos.Line != 7 {
		t.Errorf("errs[0] = %v", errs[0])
	}
	if !errors.As(errs[1], &xerr) || xerr.Kind != expand.UnsupportedType || xerr.Pos.Line != 9 {
		t.Errorf("errs[1] = %v", errs[1])
	}

	_, err = g.Source("p.go", []byte(src))
	if err == nil || !strings.Contains(err.Error(), "p.go:7:") || !strings.Contains(err.Error(), "p.go:9:") {
		t.Errorf("Source error = %v", err)
	}
}

func TestSource_NoDirectiveImport(t *testing.T) {
	src := `//go:build sexpmsg

package p

var v = sexpmsg.Message(1)
`
	out, err := newTestGenerator(Config{}).Source("p.go", []byte(src))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	// Without the import the call is not a directive.
	if !bytes.Contains(out, []byte("sexpmsg.Message(1)")) {
		t.Errorf("call should be left alone:\n%s", out)
	}
}

// ---------------------------------------------------------------------------
// Build constraints
// ---------------------------------------------------------------------------

func TestSource_BuildConstraints(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"tag only", "//go:build sexpmsg\n\n", "//go:build !sexpmsg"},
		{"combined", "//go:build sexpmsg && linux\n\n", "//go:build !sexpmsg && linux"},
		{"legacy lines dropped", "//go:build sexpmsg\n// +build sexpmsg\n\n", "//go:build !sexpmsg"},
		{"missing", "", "//go:build !sexpmsg"},
		{"license kept", "// Copyright 2026.\n\n//go:build sexpmsg\n\n", "//go:build !sexpmsg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.header + "package p\n\nimport \"github.com/chazu/sexpmsg\"\n\nvar v = sexpmsg.Message()\n"
			out, err := newTestGenerator(Config{}).Source("p.go", []byte(src))
			if err != nil {
				t.Fatalf("Source: %v", err)
			}
			if n := strings.Count(string(out), "//go:build"); n != 1 {
				t.Errorf("got %d build lines:\n%s", n, out)
			}
			if !strings.Contains(string(out), tt.want+"\n") {
				t.Errorf("want %q in:\n%s", tt.want, out)
			}
			if strings.Contains(string(out), "+build") {
				t.Errorf("legacy build line kept:\n%s", out)
			}
		})
	}
}

func TestInvertTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"//go:build sexpmsg", "!sexpmsg"},
		{"//go:build !sexpmsg", "sexpmsg"},
		{"//go:build sexpmsg || (linux && !cgo)", "!sexpmsg || (linux && !cgo)"},
		{"//go:build !(sexpmsg && race)", "!(!sexpmsg && race)"},
		{"//go:build linux", "linux"},
	}

	for _, tt := range tests {
		expr, err := constraint.Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if got := invertTag(expr, "sexpmsg").String(); got != tt.want {
			t.Errorf("invertTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := invertTag(nil, "msg").String(); got != "!msg" {
		t.Errorf("invertTag(nil) = %q, want !msg", got)
	}
}

func TestTakeConstraint_Multiple(t *testing.T) {
	src := "//go:build a\n//go:build b\n\npackage p\n"
	file, err := parser.ParseFile(token.NewFileSet(), "p.go", src, parser.ParseComments)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := takeConstraint(file); err == nil {
		t.Error("expected error for two //go:build lines")
	}
}

// ---------------------------------------------------------------------------
// Naming and single expressions
// ---------------------------------------------------------------------------

func TestOutputName(t *testing.T) {
	g := newTestGenerator(Config{})
	tests := map[string]string{
		"a/errors.go":      "a/errors_sexpmsg.go",
		"a/errors_test.go": "a/errors_sexpmsg_test.go",
	}
	for in, want := range tests {
		if got := g.OutputName(in); got != want {
			t.Errorf("OutputName(%q) = %q, want %q", in, got, want)
		}
		if !g.isOutput(want) {
			t.Errorf("isOutput(%q) = false", want)
		}
		if g.isOutput(in) {
			t.Errorf("isOutput(%q) = true", in)
		}
	}

	g = newTestGenerator(Config{Suffix: ".gen.go"})
	if got := g.OutputName("x.go"); got != "x.gen.go" {
		t.Errorf("OutputName with custom suffix = %q", got)
	}
}

func TestExpr(t *testing.T) {
	g := newTestGenerator(Config{})
	got, err := g.Expr(`sexpmsg.Message(f(x, sexpmsg.Label("y", 1)))`)
	if err != nil {
		t.Fatalf("Expr: %v", err)
	}
	want := `sexp.List{sexp.OfString(f), sexp.OfString(x), sexp.List{sexp.Atom("y"), sexp.OfInt(1)}}`
	if strings.Join(strings.Fields(got), " ") != want {
		t.Errorf("Expr = %s, want %s", got, want)
	}

	for _, bad := range []string{`x`, `fmt.Println(1)`, `sexpmsg.Message(sexpmsg.OptLabel("a", 1))`, `sexpmsg.Message(`} {
		if _, err := g.Expr(bad); err == nil {
			t.Errorf("Expr(%q): expected error", bad)
		}
	}
}
