// Package generate expands the directives in Go packages and writes the
// generated files.
package generate

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"
	"golang.org/x/tools/go/packages"

	"github.com/chazu/sexpmsg"
	"github.com/chazu/sexpmsg/manifest"
)

// Config configures a Generator.
type Config struct {
	Tag         string            // build tag of directive sources
	Suffix      string            // replaces ".go" in generated file names
	Conversions map[string]string // type source text -> conversion source text
	Dir         string            // directory packages are loaded from
	Check       bool              // report stale outputs instead of writing
}

// ConfigFromManifest returns the configuration described by m.
func ConfigFromManifest(m *manifest.Manifest) Config {
	return Config{
		Tag:         m.Generate.Tag,
		Suffix:      m.Generate.Suffix,
		Conversions: m.Conversions,
		Dir:         m.Dir,
	}
}

// Generator expands directive sources.
type Generator struct {
	Config Config
	Logger commonlog.Logger
}

// New returns a Generator logging to the "sexpmsg.generate" logger.
func New(cfg Config) *Generator {
	if cfg.Tag == "" {
		cfg.Tag = sexpmsg.BuildTag
	}
	if cfg.Suffix == "" {
		cfg.Suffix = "_sexpmsg.go"
	}
	return &Generator{
		Config: cfg,
		Logger: commonlog.GetLogger("sexpmsg.generate"),
	}
}

// Result summarizes a Run.
type Result struct {
	Written []string // files written, or found stale when checking
	Current []string // outputs that were already up to date
	Failed  []error  // failed expansion sites, in file order
	Sites   int
}

// Err returns the failed sites as one error, or nil.
func (r *Result) Err() error {
	return errors.Join(r.Failed...)
}

// Run loads the packages matching patterns with the build tag set and
// rewrites every file that imports the directive package. A file with a
// failed site is not written; the others still are.
func (g *Generator) Run(patterns ...string) (*Result, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	g.Logger.Debugf("loading %s with tag %s", strings.Join(patterns, " "), g.Config.Tag)

	cfg := &packages.Config{
		Mode:       packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles | packages.NeedSyntax,
		Dir:        g.Config.Dir,
		BuildFlags: []string{"-tags=" + g.Config.Tag},
		Tests:      true,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	res := &Result{}
	seen := make(map[string]bool)
	for _, pkg := range pkgs {
		for _, perr := range pkg.Errors {
			if perr.Kind == packages.ParseError {
				return nil, fmt.Errorf("package %s: %w", pkg.PkgPath, perr)
			}
			g.Logger.Debugf("package %s: %s", pkg.PkgPath, perr)
		}

		for _, file := range pkg.Syntax {
			filename := pkg.Fset.Position(file.Package).Filename
			if seen[filename] || g.isOutput(filename) {
				continue
			}
			seen[filename] = true
			if findImport(file, sexpmsg.DirectivePath) == nil {
				continue
			}

			out, fr, errs := g.RewriteFile(pkg.Fset, file)
			if len(errs) > 0 {
				g.Logger.Infof("%s: %d failed sites, not written", filename, len(errs))
				res.Failed = append(res.Failed, errs...)
				continue
			}
			res.Sites += fr.Sites

			target := g.OutputName(filename)
			if current, err := os.ReadFile(target); err == nil && bytes.Equal(current, out) {
				g.Logger.Debugf("%s is up to date", target)
				res.Current = append(res.Current, target)
				continue
			}
			res.Written = append(res.Written, target)
			if g.Config.Check {
				g.Logger.Infof("%s is stale", target)
				continue
			}
			if err := os.WriteFile(target, out, 0644); err != nil {
				return res, fmt.Errorf("writing %s: %w", target, err)
			}
			g.Logger.Infof("wrote %s (%d sites)", target, fr.Sites)
		}
	}
	return res, nil
}

// OutputName is the generated file for a directive source.
func (g *Generator) OutputName(filename string) string {
	if strings.HasSuffix(filename, "_test.go") {
		return strings.TrimSuffix(filename, "_test.go") + strings.TrimSuffix(g.Config.Suffix, ".go") + "_test.go"
	}
	return strings.TrimSuffix(filename, ".go") + g.Config.Suffix
}

func (g *Generator) isOutput(filename string) bool {
	return strings.HasSuffix(filename, g.Config.Suffix) ||
		strings.HasSuffix(filename, strings.TrimSuffix(g.Config.Suffix, ".go")+"_test.go")
}
