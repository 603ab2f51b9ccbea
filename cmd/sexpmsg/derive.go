package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/sexpmsg/derive"
	"github.com/chazu/sexpmsg/manifest"
)

// handleDeriveCommand processes the `sexpmsg derive` subcommand.
// Usage:
//
//	sexpmsg derive                  # packages from sexpmsg.toml
//	sexpmsg derive ./model          # one package, ad-hoc
//	sexpmsg derive -o sexp.go .     # custom output file name
func handleDeriveCommand(args []string, verbose bool) {
	m := loadManifest(verbose)
	output := m.Derive.Output

	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == "--output" || args[i] == "-o" {
			if i+1 < len(args) {
				output = args[i+1]
				i++
			} else {
				fmt.Fprintln(os.Stderr, "Error: --output requires a file name")
				os.Exit(1)
			}
		} else {
			remaining = append(remaining, args[i])
		}
	}

	packages, dir := remaining, ""
	if len(packages) == 0 {
		packages, dir = m.Derive.Packages, m.Dir
	}
	if len(packages) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no packages specified")
		fmt.Fprintln(os.Stderr, "Usage: sexpmsg derive [packages...] or configure [derive] in sexpmsg.toml")
		os.Exit(1)
	}

	opts := derive.Options{Dir: dir, Output: output, Types: typeFilter(m)}
	for _, pkg := range packages {
		if err := derivePackage(pkg, opts, verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error deriving %s: %v\n", pkg, err)
			os.Exit(1)
		}
	}
}

func typeFilter(m *manifest.Manifest) map[string]bool {
	if len(m.Derive.Types) == 0 {
		return nil
	}
	filter := make(map[string]bool, len(m.Derive.Types))
	for _, name := range m.Derive.Types {
		filter[name] = true
	}
	return filter
}

func derivePackage(pattern string, opts derive.Options, verbose bool) error {
	model, err := derive.IntrospectPackage(pattern, opts)
	if err != nil {
		return fmt.Errorf("introspecting: %w", err)
	}
	if len(model.Types) == 0 {
		if verbose {
			fmt.Printf("%s: no struct types need a Sexp method\n", model.ImportPath)
		}
		return nil
	}

	res, err := derive.GenerateMethods(model)
	if err != nil {
		return fmt.Errorf("generating: %w", err)
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(os.Stderr, "Warning: %s.%s skipped: %s\n", s.Type, s.Field, s.Reason)
	}

	path := filepath.Join(model.Dir, opts.Output)
	if err := os.WriteFile(path, []byte(res.Code), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if verbose {
		fmt.Printf("Wrote %s (%d types)\n", path, len(model.Types))
	}
	return nil
}
