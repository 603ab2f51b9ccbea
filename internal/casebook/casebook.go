// Package casebook reads expansion test cases written as Markdown.
//
// A case starts at a heading "Case: <name>" and holds one input fence and
// at least one assertion fence:
//
//	## Case: single literal
//	```go-expr
//	sexpmsg.Message(42)
//	```
//	```expansion
//	sexp.OfInt(42)
//	```
//
// An options fence, in TOML, configures the expander for that case.
package casebook

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fence is the info string of a code fence.
type Fence string

const (
	FenceInput     Fence = "go-expr"
	FenceOptions   Fence = "options"
	FenceExpansion Fence = "expansion"
	FenceError     Fence = "error"
)

const casePrefix = "Case: "

// Assertion is one expected outcome of a case.
type Assertion struct {
	Fence   Fence
	Content string
	Line    int
}

// Case is one expansion test case.
type Case struct {
	Name       string
	Line       int
	Input      string
	Options    string
	Assertions []Assertion
}

// Load reads the cases in a Markdown file.
func Load(path string) ([]Case, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cases, err := Extract(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// Extract parses a Markdown document and returns its cases in order.
func Extract(source []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []Case
	var current *Case

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := validate(current); err != nil {
			return err
		}
		cases = append(cases, *current)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			if !strings.HasPrefix(heading, casePrefix) {
				return ast.WalkContinue, nil
			}
			if err := flush(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{
				Name: strings.TrimSpace(strings.TrimPrefix(heading, casePrefix)),
				Line: lineOf(n, source),
			}

		case *ast.FencedCodeBlock:
			fence := Fence(n.Language(source))
			line := lineOf(n, source)
			if current == nil {
				if fence != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a case", line, fence)
				}
				return ast.WalkContinue, nil
			}

			content := strings.TrimRight(blockContent(n, source), "\n")
			switch fence {
			case FenceInput:
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences in case %q", line, current.Name)
				}
				current.Input = content
			case FenceOptions:
				if current.Options != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple options fences in case %q", line, current.Name)
				}
				current.Options = content
			case FenceExpansion, FenceError:
				current.Assertions = append(current.Assertions, Assertion{Fence: fence, Content: content, Line: line})
			case "":
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence %q in case %q", line, fence, current.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

func validate(c *Case) error {
	if c.Input == "" {
		return fmt.Errorf("case %q has no input fence", c.Name)
	}
	if len(c.Assertions) == 0 {
		return fmt.Errorf("case %q has no assertion fences", c.Name)
	}
	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineOf is the 1-based line of the node's first content line.
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 0
	}
	start := node.Lines().At(0).Start
	return 1 + bytes.Count(source[:min(start, len(source))], []byte("\n"))
}
