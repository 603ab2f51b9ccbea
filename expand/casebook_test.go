package expand

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/chazu/sexpmsg/internal/casebook"
)

// caseOptions is the options fence of a case.
type caseOptions struct {
	Directive   string            `toml:"directive"`
	Runtime     string            `toml:"runtime"`
	Conversions map[string]string `toml:"conversions"`
}

func TestCasebook(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.md"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no case books in testdata")
	}

	for _, file := range files {
		cases, err := casebook.Load(file)
		if err != nil {
			t.Fatalf("%v", err)
		}
		for _, c := range cases {
			t.Run(filepath.Base(file)+"/"+c.Name, func(t *testing.T) {
				runCase(t, c)
			})
		}
	}
}

func runCase(t *testing.T, c casebook.Case) {
	var opts Options
	if c.Options != "" {
		var co caseOptions
		if _, err := toml.Decode(c.Options, &co); err != nil {
			t.Fatalf("line %d: options: %v", c.Line, err)
		}
		opts = Options{Directive: co.Directive, Runtime: co.Runtime, Conversions: co.Conversions}
	}

	got, err := expandSource(t, c.Input, opts)
	for _, a := range c.Assertions {
		switch a.Fence {
		case casebook.FenceExpansion:
			if err != nil {
				t.Errorf("line %d: unexpected error: %v", a.Line, err)
				continue
			}
			if g, w := render(t, got), canonical(t, a.Content); g != w {
				t.Errorf("line %d:\n got: %s\nwant: %s", a.Line, g, w)
			}
		case casebook.FenceError:
			if err == nil {
				t.Errorf("line %d: expected error containing %q", a.Line, a.Content)
				continue
			}
			var xerr *Error
			if !errors.As(err, &xerr) {
				t.Errorf("line %d: error %v is not *Error", a.Line, err)
			}
			if !strings.Contains(err.Error(), a.Content) {
				t.Errorf("line %d: error %q does not contain %q", a.Line, err.Error(), a.Content)
			}
		}
	}
}
