// Package compile orchestrates one compilation call: lowering, parsing,
// signature harvesting and type checking, in that order. Lowering and
// parsing fail fast; checking is advisory and returns its diagnostics as a
// batch alongside the still-valid module.
package compile

import (
	"fmt"
	"strings"

	"github.com/Icarogamer2441/snake/internal/annot"
	"github.com/Icarogamer2441/snake/internal/ast"
	"github.com/Icarogamer2441/snake/internal/lexer"
	"github.com/Icarogamer2441/snake/internal/lower"
	"github.com/Icarogamer2441/snake/internal/parser"
	"github.com/Icarogamer2441/snake/internal/types"
)

// SyntaxError is a host-parse failure over the lowered text. It aborts the
// compilation; no module is produced.
type SyntaxError struct {
	Errs []string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Invalid syntax: %s", strings.Join(e.Errs, "; "))
}

// Result is one successful compilation: the parsed canonical module, its
// annotation table, and the lowered text the module was parsed from.
type Result struct {
	Module *ast.Module
	Table  *annot.Table
	Source string

	// Helper requirements collected while lowering; the emitter prepends
	// the matching runtime definitions.
	NeedsStructCast bool
	NeedsHelpers    bool
}

// Compile lowers and parses src. path resolves relative imports and may be
// empty. The annotation table is built by harvesting the lowered text first,
// then applying the declarations the passes collected, so a lowered
// declaration wins over a harvested signature of the same name.
func Compile(src, path string) (*Result, error) {
	ctx := lower.NewContext(path)
	lowered, err := lower.Lower(src, ctx)
	if err != nil {
		return nil, err
	}

	l := lexer.New(lowered)
	p := parser.New(l)
	mod := p.ParseModule()
	if errs := l.Errors(); len(errs) > 0 {
		return nil, &SyntaxError{Errs: errs}
	}
	if errs := p.Errors(); len(errs) > 0 {
		return nil, &SyntaxError{Errs: errs}
	}

	tbl := annot.NewTable()
	annot.Harvest(lowered, tbl)
	ctx.ApplyDefs(tbl)

	return &Result{
		Module:          mod,
		Table:           tbl,
		Source:          lowered,
		NeedsStructCast: ctx.NeedsStructCast(),
		NeedsHelpers:    ctx.NeedsHelpers(),
	}, nil
}

// Check runs the type checker over a compilation result and returns every
// diagnostic, in source order. An empty slice means the module checked
// clean.
func Check(r *Result) []types.Error {
	return types.Check(r.Module, r.Table)
}
