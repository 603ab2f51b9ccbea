// Package manifest handles sexpmsg.toml project configuration.
package manifest

import (
	"fmt"
	"go/parser"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file.
const FileName = "sexpmsg.toml"

// Manifest represents a sexpmsg.toml project configuration.
type Manifest struct {
	Generate    Generate          `toml:"generate"`
	Derive      Derive            `toml:"derive"`
	Conversions map[string]string `toml:"conversions"`

	// Dir is the directory containing the sexpmsg.toml file (set at load
	// time), or "" for a default manifest.
	Dir string `toml:"-"`
}

// Generate configures the expansion of directive sources.
type Generate struct {
	Tag      string   `toml:"tag"`
	Suffix   string   `toml:"suffix"`
	Patterns []string `toml:"patterns"`
}

// Derive configures generation of Sexp methods.
type Derive struct {
	Output   string   `toml:"output"`
	Packages []string `toml:"packages"`
	Types    []string `toml:"types"`
}

// Default returns the manifest used when no sexpmsg.toml exists.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

// Load parses a sexpmsg.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a sexpmsg.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func (m *Manifest) applyDefaults() {
	if m.Generate.Tag == "" {
		m.Generate.Tag = "sexpmsg"
	}
	if m.Generate.Suffix == "" {
		m.Generate.Suffix = "_sexpmsg.go"
	}
	if len(m.Generate.Patterns) == 0 {
		m.Generate.Patterns = []string{"./..."}
	}
	if m.Derive.Output == "" {
		m.Derive.Output = "sexp_gen.go"
	}
}

// validate checks that every conversion is a Go expression.
func (m *Manifest) validate() error {
	for _, ty := range m.ConversionTypes() {
		if _, err := parser.ParseExpr(ty); err != nil {
			return fmt.Errorf("conversions: key %q is not a type: %w", ty, err)
		}
		if _, err := parser.ParseExpr(m.Conversions[ty]); err != nil {
			return fmt.Errorf("conversions: %q: %w", ty, err)
		}
	}
	if filepath.Ext(m.Generate.Suffix) != ".go" && m.Generate.Suffix != "" {
		return fmt.Errorf("generate.suffix %q must end in .go", m.Generate.Suffix)
	}
	return nil
}

// ConversionTypes returns the overridden type names in sorted order.
func (m *Manifest) ConversionTypes() []string {
	types := make([]string, 0, len(m.Conversions))
	for ty := range m.Conversions {
		types = append(types, ty)
	}
	sort.Strings(types)
	return types
}

// Path resolves a relative file path against the manifest directory.
func (m *Manifest) Path(p string) string {
	if m.Dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
