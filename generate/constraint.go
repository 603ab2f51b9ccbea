package generate

import (
	"fmt"
	"go/ast"
	"go/build/constraint"
)

// takeConstraint removes the build constraint lines above the package
// clause and returns the //go:build expression, or nil if there is none.
func takeConstraint(file *ast.File) (constraint.Expr, error) {
	var expr constraint.Expr
	var groups []*ast.CommentGroup

	for _, cg := range file.Comments {
		if cg.End() >= file.Package {
			groups = append(groups, cg)
			continue
		}

		var kept []*ast.Comment
		for _, c := range cg.List {
			switch {
			case constraint.IsGoBuild(c.Text):
				if expr != nil {
					return nil, fmt.Errorf("multiple //go:build lines")
				}
				e, err := constraint.Parse(c.Text)
				if err != nil {
					return nil, fmt.Errorf("build constraint: %w", err)
				}
				expr = e
			case constraint.IsPlusBuild(c.Text):
			default:
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			cg.List = kept
			groups = append(groups, cg)
		}
	}

	file.Comments = groups
	return expr, nil
}

// invertTag returns expr with every occurrence of tag negated, so the
// result selects the same configurations with tag unset. A nil expr
// yields !tag.
func invertTag(expr constraint.Expr, tag string) constraint.Expr {
	switch e := expr.(type) {
	case nil:
		return &constraint.NotExpr{X: &constraint.TagExpr{Tag: tag}}
	case *constraint.TagExpr:
		if e.Tag == tag {
			return &constraint.NotExpr{X: e}
		}
	case *constraint.NotExpr:
		if t, ok := e.X.(*constraint.TagExpr); ok && t.Tag == tag {
			return t
		}
		return &constraint.NotExpr{X: invertTag(e.X, tag)}
	case *constraint.AndExpr:
		return &constraint.AndExpr{X: invertTag(e.X, tag), Y: invertTag(e.Y, tag)}
	case *constraint.OrExpr:
		return &constraint.OrExpr{X: invertTag(e.X, tag), Y: invertTag(e.Y, tag)}
	}
	return expr
}

// mentionsTag reports whether tag appears in expr.
func mentionsTag(expr constraint.Expr, tag string) bool {
	found := false
	if expr != nil {
		expr.Eval(func(t string) bool {
			if t == tag {
				found = true
			}
			return false
		})
	}
	return found
}
