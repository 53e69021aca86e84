// Package lower implements the source lowering pipeline: a fixed,
// order-dependent sequence of text rewrite passes that turn surface syntax
// into the canonical form the host parser accepts. Each pass is idempotent
// once its trigger pattern no longer matches, and no pass rewrites text
// inside string literals or comments.
package lower

import (
	"fmt"

	"github.com/Icarogamer2441/snake/internal/annot"
)

// Error is a fatal lowering failure. The pipeline aborts on the first one;
// no partial output is produced.
type Error struct {
	Pass string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pass, e.Msg)
}

func passError(pass, format string, args ...any) *Error {
	return &Error{Pass: pass, Msg: fmt.Sprintf(format, args...)}
}

// A def is one declaration collected while lowering. Defs are applied to the
// annotation table after harvesting so they overwrite harvested entries.
type def struct {
	name  string
	entry annot.Entry
}

// Context threads the mutable per-compilation state through the pipeline.
// The passes have write access; the checker later reads the resulting table
// through its own read-only view.
type Context struct {
	// Path is the source file path, used to resolve relative imports.
	Path string

	// LibRoots are probed in order when resolving a named library import.
	LibRoots []string

	defs     []def
	exported []string
	hasMain  bool

	needsStructCast bool
	needsHelpers    bool
}

func NewContext(path string) *Context {
	return &Context{
		Path:     path,
		LibRoots: DefaultLibRoots(),
	}
}

func (c *Context) define(name string, e annot.Entry) {
	c.defs = append(c.defs, def{name: name, entry: e})
}

// ApplyDefs writes the collected declarations into tbl. Call after
// harvesting: a declaration lowered by a pass wins over a harvested
// signature of the same name.
func (c *Context) ApplyDefs(tbl *annot.Table) {
	for _, d := range c.defs {
		tbl.Define(d.name, d.entry)
	}
	for _, name := range c.exported {
		tbl.Exported[name] = true
	}
	if c.hasMain {
		tbl.HasMain = true
	}
}

// NeedsStructCast reports whether the lowered output calls the record-cast
// runtime helper, which the emitter must then prepend.
func (c *Context) NeedsStructCast() bool { return c.needsStructCast }

// NeedsHelpers reports whether the lowered output calls the container helper
// functions.
func (c *Context) NeedsHelpers() bool { return c.needsHelpers }

type pass struct {
	name string
	fn   func(ctx *Context, src string) (string, error)
}

// The pipeline. Order matters: imports must inline before any declaration
// pass can see imported declarations, operators must run before the passes
// that generate host boolean keywords, and the semicolon strip runs last so
// every earlier pass may still rely on ';' terminators.
var passes = []pass{
	{"imports", passImports},
	{"enums", passEnums},
	{"structs", passStructs},
	{"constants", passConstants},
	{"errors", passErrors},
	{"exports", passExports},
	{"operators", passOperators},
	{"increment", passIncDec},
	{"casts", passCasts},
	{"orelse", passOrElse},
	{"for-method", passForMethod},
	{"static-property", passStaticProperty},
	{"helpers", passHelpers},
	{"this-keyword", passThis},
	{"argv", passArgv},
	{"semicolons", passSemicolons},
}

// Lower runs every pass in order and returns the canonical text. The first
// failing pass aborts the pipeline.
func Lower(src string, ctx *Context) (string, error) {
	for _, p := range passes {
		out, err := p.fn(ctx, src)
		if err != nil {
			return "", err
		}
		src = out
	}
	return src, nil
}
