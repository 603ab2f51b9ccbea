package expand

import (
	"fmt"
	"go/ast"
	"go/token"
)

// ErrorKind classifies an expansion failure.
type ErrorKind int

const (
	// UnsupportedLiteral is a literal whose kind has no conversion. Parsed
	// Go never produces one.
	UnsupportedLiteral ErrorKind = iota
	// InvalidOptionalLabel is any use of OptLabel.
	InvalidOptionalLabel
	// InvalidLabel is a malformed Label, or a Label outside argument position.
	InvalidLabel
	// InvalidAnnotation is a malformed As.
	InvalidAnnotation
	// InvalidDirective is any other misuse of a directive.
	InvalidDirective
	// UnsupportedType is an annotated type with no conversion.
	UnsupportedType
)

func (k ErrorKind) String() string {
	switch k {
	case UnsupportedLiteral:
		return "unsupported literal"
	case InvalidOptionalLabel:
		return "invalid optional label"
	case InvalidLabel:
		return "invalid label"
	case InvalidAnnotation:
		return "invalid annotation"
	case InvalidDirective:
		return "invalid directive"
	case UnsupportedType:
		return "unsupported type"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a failed expansion, located at the offending syntax.
type Error struct {
	Pos  token.Position
	At   token.Pos // Pos in the Expander's file set
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return e.Msg
}

func (x *Expander) errorf(n ast.Node, kind ErrorKind, format string, args ...any) *Error {
	return x.errorAt(n.Pos(), kind, format, args...)
}

func (x *Expander) errorAt(p token.Pos, kind ErrorKind, format string, args ...any) *Error {
	var pos token.Position
	if x.Fset != nil {
		pos = x.Fset.Position(p)
	}
	return &Error{Pos: pos, At: p, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
