package sexp

import (
	"fmt"
	"sort"
	"strconv"
)

// ---------------------------------------------------------------------------
// Conversions
//
// Expanded Message calls name these directly; the generator picks one per
// literal kind or annotated type.
// ---------------------------------------------------------------------------

// Sexper is implemented by types that know their own S-expression form.
type Sexper interface {
	Sexp() Sexp
}

func OfString(s string) Sexp { return Atom(s) }
func OfBool(b bool) Sexp     { return Atom(strconv.FormatBool(b)) }

func OfInt(i int) Sexp     { return Atom(strconv.Itoa(i)) }
func OfInt8(i int8) Sexp   { return Atom(strconv.FormatInt(int64(i), 10)) }
func OfInt16(i int16) Sexp { return Atom(strconv.FormatInt(int64(i), 10)) }
func OfInt32(i int32) Sexp { return Atom(strconv.FormatInt(int64(i), 10)) }
func OfInt64(i int64) Sexp { return Atom(strconv.FormatInt(i, 10)) }

func OfUint(u uint) Sexp       { return Atom(strconv.FormatUint(uint64(u), 10)) }
func OfUint8(u uint8) Sexp     { return Atom(strconv.FormatUint(uint64(u), 10)) }
func OfUint16(u uint16) Sexp   { return Atom(strconv.FormatUint(uint64(u), 10)) }
func OfUint32(u uint32) Sexp   { return Atom(strconv.FormatUint(uint64(u), 10)) }
func OfUint64(u uint64) Sexp   { return Atom(strconv.FormatUint(u, 10)) }
func OfUintptr(u uintptr) Sexp { return Atom(strconv.FormatUint(uint64(u), 10)) }

func OfFloat32(f float32) Sexp { return Atom(strconv.FormatFloat(float64(f), 'g', -1, 32)) }
func OfFloat64(f float64) Sexp { return Atom(strconv.FormatFloat(f, 'g', -1, 64)) }

func OfComplex64(c complex64) Sexp   { return formatComplex(complex128(c), 64) }
func OfComplex128(c complex128) Sexp { return formatComplex(c, 128) }

// formatComplex drops the parentheses strconv adds so the atom stays bare.
func formatComplex(c complex128, bitSize int) Sexp {
	s := strconv.FormatComplex(c, 'g', -1, bitSize)
	return Atom(s[1 : len(s)-1])
}

// OfRune renders a character as itself.
func OfRune(r rune) Sexp { return Atom(string(r)) }

// OfError renders err's message; a nil error becomes the empty list.
func OfError(err error) Sexp {
	if err == nil {
		return List{}
	}
	return Atom(err.Error())
}

// OfAny falls back to fmt's %v form unless v already has an S-expression form.
func OfAny(v any) Sexp {
	switch x := v.(type) {
	case nil:
		return List{}
	case Sexp:
		return x
	case Sexper:
		return x.Sexp()
	case error:
		return OfError(x)
	}
	return Atom(fmt.Sprint(v))
}

// OfSexp is the identity conversion.
func OfSexp(s Sexp) Sexp {
	if s == nil {
		return List{}
	}
	return s
}

func OfSexper[T Sexper](v T) Sexp { return v.Sexp() }

func OfStringer[T fmt.Stringer](v T) Sexp { return Atom(v.String()) }

// OfSlice converts each element with conv.
func OfSlice[T any](conv func(T) Sexp) func([]T) Sexp {
	return func(vs []T) Sexp {
		out := make(List, 0, len(vs))
		for _, v := range vs {
			out = append(out, conv(v))
		}
		return out
	}
}

// OfMap converts to a list of (key value) pairs ordered by the rendered key.
func OfMap[K comparable, V any](key func(K) Sexp, val func(V) Sexp) func(map[K]V) Sexp {
	return func(m map[K]V) Sexp {
		out := make(List, 0, len(m))
		for k, v := range m {
			out = append(out, List{key(k), val(v)})
		}
		sort.Slice(out, func(i, j int) bool {
			return out[i].(List)[0].String() < out[j].(List)[0].String()
		})
		return out
	}
}

// OfPtr converts the pointee; nil becomes the empty list.
func OfPtr[T any](conv func(T) Sexp) func(*T) Sexp {
	return func(p *T) Sexp {
		if p == nil {
			return List{}
		}
		return conv(*p)
	}
}
