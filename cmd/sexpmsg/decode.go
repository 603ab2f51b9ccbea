package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/sexpmsg/generate"
	"github.com/chazu/sexpmsg/sexp"
)

// handleExpandCommand prints the expansion of a single Message call.
func handleExpandCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: sexpmsg expand <expr>")
		os.Exit(2)
	}
	g := generate.New(generate.ConfigFromManifest(loadManifest(false)))
	out, err := g.Expr(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

// handleDecodeCommand prints a CBOR-encoded S-expression read from a file,
// or from stdin when no file is given.
func handleDecodeCommand(args []string) {
	in := io.Reader(os.Stdin)
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}
	if err := decode(in, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func decode(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s, err := sexp.Unmarshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}
