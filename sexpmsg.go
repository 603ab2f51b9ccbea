// Package sexpmsg provides directives for building S-expression messages that
// mirror their call-site syntax.
//
// Directives live in files guarded by the sexpmsg build tag:
//
//	//go:build sexpmsg
//
// and the sexpmsg command expands every Message call into plain Go that
// builds a sexp.Sexp, writing the result to a sibling *_sexpmsg.go file with
// the inverted constraint:
//
//	// source:
//	err := fmt.Errorf("%v", sexpmsg.Message("fetch failed",
//		sexpmsg.Label("url", url),
//		sexpmsg.As[int](attempt),
//	))
//
//	// generated:
//	err := fmt.Errorf("%v", sexp.List{
//		sexp.OfString("fetch failed"),
//		sexp.List{sexp.Atom("url"), sexp.OfString(url)},
//		sexp.List{sexp.Atom("attempt"), sexp.OfInt(attempt)},
//	})
//
// # Arguments
//
// Each argument contributes at most one value, in order:
//
//   - a literal constant is converted by its kind; the empty string "" contributes nothing
//   - As[T](e) converts e with the conversion for T and is tagged with the source text of e
//   - As[sexp.Option[T]](e) contributes only when the option holds a value
//   - Label("name", e) tags the value with name; Label("_", e) requests no tag
//   - any other expression is taken to be a string
//
// Here() is replaced by the file:line:column of the call. OptLabel is
// reserved and always rejected.
//
// A message with exactly one contributing value is that value; any other
// count is a list. When optional arguments are involved this decision is
// made at runtime.
//
// A single argument that is itself a call, Message(f(x, Label("y", 1))), is
// taken apart: f is the first argument and x and Label("y", 1) follow.
package sexpmsg

import "github.com/chazu/sexpmsg/sexp"

const (
	// DirectivePath is the import path of this package.
	DirectivePath = "github.com/chazu/sexpmsg"
	// RuntimePath is the import path of the package expanded code calls into.
	RuntimePath = "github.com/chazu/sexpmsg/sexp"
	// BuildTag marks files holding unexpanded directives.
	BuildTag = "sexpmsg"
)

// Message is the expansion site. Calling it at runtime means the file was
// compiled without being expanded.
func Message(args ...any) sexp.Sexp {
	panic("sexpmsg: Message called without expansion; run `sexpmsg generate` and build without -tags=" + BuildTag)
}

// Label tags v with name.
func Label[T any](name string, v T) T { return v }

// OptLabel is reserved for optional parameters and is rejected by the generator.
func OptLabel[T any](name string, v T) T { return v }

// As annotates v with the type whose conversion the generator should use.
func As[T any](v T) T { return v }

// Here is replaced by the position of the call.
func Here() string { return "" }
