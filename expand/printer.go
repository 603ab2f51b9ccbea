package expand

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
)

// SourcePrinter renders an expression back to Go source text.
type SourcePrinter interface {
	Source(e ast.Expr) (string, error)
}

// NewSourcePrinter returns a printer producing gofmt-style text collapsed
// onto one line.
func NewSourcePrinter() SourcePrinter {
	return gofmtPrinter{}
}

type gofmtPrinter struct{}

func (gofmtPrinter) Source(e ast.Expr) (string, error) {
	var buf bytes.Buffer
	// A fresh file set has no line information for e, so the printer
	// keeps everything it can on one line.
	if err := format.Node(&buf, token.NewFileSet(), e); err != nil {
		return "", fmt.Errorf("printing expression: %w", err)
	}
	return strings.Join(strings.Fields(buf.String()), " "), nil
}

// PositionLifter turns a source position into an expression that evaluates
// to a string describing it.
type PositionLifter interface {
	Lift(pos token.Pos) ast.Expr
}

// NewPositionLifter returns a lifter producing "file.go:line:col" string
// literals, using the base name of the file.
func NewPositionLifter(fset *token.FileSet) PositionLifter {
	return &literalLifter{fset: fset}
}

type literalLifter struct {
	fset *token.FileSet
}

func (l *literalLifter) Lift(pos token.Pos) ast.Expr {
	p := l.fset.Position(pos)
	text := fmt.Sprintf("%s:%d:%d", filepath.Base(p.Filename), p.Line, p.Column)
	if !p.IsValid() {
		text = "-"
	}
	return &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(text)}
}
