// sexpmsg CLI - expands Message directives and derives Sexp methods
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/sexpmsg/manifest"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	debug := flag.Bool("debug", false, "Debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sexpmsg [options] <command> [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  generate [--check] [patterns...]   Expand Message calls in files tagged %q\n", "sexpmsg")
		fmt.Fprintf(os.Stderr, "  derive [-o file] [packages...]     Generate Sexp methods for struct types\n")
		fmt.Fprintf(os.Stderr, "  expand <expr>                      Print the expansion of one Message call\n")
		fmt.Fprintf(os.Stderr, "  decode [file]                      Print a CBOR-encoded S-expression as text\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  sexpmsg generate ./...\n")
		fmt.Fprintf(os.Stderr, "  sexpmsg generate --check ./...   # exit 1 if any output is stale\n")
		fmt.Fprintf(os.Stderr, "  sexpmsg expand 'sexpmsg.Message(\"open\", sexpmsg.Label(\"path\", p))'\n")
	}
	flag.Parse()

	switch {
	case *debug:
		commonlog.Configure(2, nil)
	case *verbose:
		commonlog.Configure(1, nil)
	default:
		commonlog.Configure(0, nil)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	switch args[0] {
	case "generate":
		handleGenerateCommand(args[1:], *verbose)
	case "derive":
		handleDeriveCommand(args[1:], *verbose)
	case "expand":
		handleExpandCommand(args[1:])
	case "decode":
		handleDecodeCommand(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
}

// loadManifest returns the nearest sexpmsg.toml, or the defaults.
func loadManifest(verbose bool) *manifest.Manifest {
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(1)
	}
	if m == nil {
		return manifest.Default()
	}
	if verbose {
		fmt.Printf("Using %s\n", m.Path(manifest.FileName))
	}
	return m
}
