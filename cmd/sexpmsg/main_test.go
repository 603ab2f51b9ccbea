package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chazu/sexpmsg/manifest"
	"github.com/chazu/sexpmsg/sexp"
)

func TestDecode(t *testing.T) {
	msg := sexp.List{sexp.Atom("open"), sexp.List{sexp.Atom("path"), sexp.Atom("/tmp/x y")}}
	data, err := sexp.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out bytes.Buffer
	if err := decode(bytes.NewReader(data), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got, want := out.String(), msg.String()+"\n"; got != want {
		t.Errorf("decode = %q, want %q", got, want)
	}
}

func TestDecode_Invalid(t *testing.T) {
	var out bytes.Buffer
	if err := decode(strings.NewReader("not cbor"), &out); err == nil {
		t.Error("expected error for invalid input")
	}
}

func TestTypeFilter(t *testing.T) {
	if f := typeFilter(manifest.Default()); f != nil {
		t.Errorf("expected nil filter, got %v", f)
	}
	m := manifest.Default()
	m.Derive.Types = []string{"Job", "User"}
	f := typeFilter(m)
	if !f["Job"] || !f["User"] || len(f) != 2 {
		t.Errorf("unexpected filter %v", f)
	}
}
