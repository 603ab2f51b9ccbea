package main

import (
	"fmt"
	"os"

	"github.com/chazu/sexpmsg/generate"
)

// handleGenerateCommand processes the `sexpmsg generate` subcommand.
// Usage:
//
//	sexpmsg generate                # patterns from sexpmsg.toml
//	sexpmsg generate ./pkg/...      # explicit patterns
//	sexpmsg generate --check        # report stale outputs, write nothing
func handleGenerateCommand(args []string, verbose bool) {
	m := loadManifest(verbose)
	cfg := generate.ConfigFromManifest(m)

	var patterns []string
	for _, arg := range args {
		switch arg {
		case "--check", "-check":
			cfg.Check = true
		default:
			patterns = append(patterns, arg)
		}
	}
	if len(patterns) == 0 {
		patterns = m.Generate.Patterns
	} else {
		cfg.Dir = ""
	}

	res, err := generate.New(cfg).Run(patterns...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, ferr := range res.Failed {
		fmt.Fprintln(os.Stderr, ferr)
	}

	if verbose {
		fmt.Printf("Expanded %d sites; %d files written, %d up to date\n",
			res.Sites, len(res.Written), len(res.Current))
	}

	if cfg.Check && len(res.Written) > 0 {
		for _, name := range res.Written {
			fmt.Fprintf(os.Stderr, "stale: %s\n", name)
		}
		os.Exit(1)
	}
	if len(res.Failed) > 0 {
		os.Exit(1)
	}
}
