// Package derive generates Sexp methods for Go struct types.
package derive

import "go/types"

// PackageModel is the in-memory representation of the struct types of a
// package that get a Sexp method.
type PackageModel struct {
	ImportPath string
	Name       string // short package name (e.g., "model")
	Dir        string // directory holding the package sources
	Types      []TypeModel
}

// TypeModel represents an exported named struct type.
type TypeModel struct {
	Name   string
	GoType types.Type
	Fields []FieldModel
}

// FieldModel represents a struct field that appears in the S-expression.
type FieldModel struct {
	Name      string // Go field name
	Label     string // atom tagging the value
	GoType    types.Type
	TypeStr   string // human-readable type string (e.g., "[]string", "*time.Time")
	OmitEmpty bool
}

// SkippedField records a field left out of a generated method.
type SkippedField struct {
	Type   string
	Field  string
	Reason string
}
