// Package emit is the thin downstream stage: it injects harvested
// annotations back into the canonical tree and renders the final host text
// handed to the external executor.
package emit

import (
	"fmt"

	"github.com/Icarogamer2441/snake/internal/annot"
	"github.com/Icarogamer2441/snake/internal/ast"
)

// Annotate rewrites mod in place so that every declaration the table knows
// about carries its resolved annotation. Function signatures gain parameter
// and return annotations where the source left them off, a plain assignment
// to a name with a harvested type becomes an annotated assignment, and an
// assignment to a constant becomes a runtime raise, so the violation also
// trips at execution time when checking was skipped.
func Annotate(mod *ast.Module, tbl *annot.Table) {
	mod.Stmts = annotateStmts(mod.Stmts, tbl)
}

func annotateStmts(stmts []ast.Stmt, tbl *annot.Table) []ast.Stmt {
	out := stmts[:0]
	for _, s := range stmts {
		out = append(out, annotateStmt(s, tbl))
	}
	return out
}

func annotateStmt(s ast.Stmt, tbl *annot.Table) ast.Stmt {
	switch s := s.(type) {
	case *ast.FunctionDef:
		annotateFunction(s, tbl)
	case *ast.ClassDef:
		s.Body = annotateStmts(s.Body, tbl)
	case *ast.AssignStmt:
		return annotateAssign(s, tbl)
	case *ast.IfStmt:
		s.Then = annotateStmts(s.Then, tbl)
		s.Else = annotateStmts(s.Else, tbl)
	case *ast.WhileStmt:
		s.Body = annotateStmts(s.Body, tbl)
	case *ast.ForStmt:
		s.Body = annotateStmts(s.Body, tbl)
	case *ast.TryStmt:
		s.Body = annotateStmts(s.Body, tbl)
		s.Handler = annotateStmts(s.Handler, tbl)
	}
	return s
}

func annotateFunction(fn *ast.FunctionDef, tbl *annot.Table) {
	if sig, ok := tbl.Func(fn.Name); ok {
		if fn.Returns == "" && sig.Return != "" {
			fn.Returns = sig.Return
		}
		for _, p := range fn.Params {
			if p.Annotation != "" {
				continue
			}
			if t, ok := sig.ParamType(p.Name); ok {
				p.Annotation = t
			}
		}
	}
	fn.Body = annotateStmts(fn.Body, tbl)
}

func annotateAssign(s *ast.AssignStmt, tbl *annot.Table) ast.Stmt {
	target, ok := s.Target.(*ast.NameExpr)
	if !ok {
		return s
	}
	v, ok := tbl.Var(target.Name)
	if !ok {
		return s
	}
	if v.IsConstant {
		return &ast.RaiseStmt{
			RaisePos: target.NamePos,
			Exc: &ast.CallExpr{
				Func: &ast.NameExpr{NamePos: target.NamePos, Name: "RuntimeError"},
				Args: []ast.Expr{&ast.StringLit{
					ValuePos: target.NamePos,
					Value:    fmt.Sprintf("Cannot reassign constant '%s'", target.Name),
				}},
			},
		}
	}
	if v.Type != "" {
		return &ast.AnnAssignStmt{Target: target, Annotation: v.Type, Value: s.Value}
	}
	return s
}
