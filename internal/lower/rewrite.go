package lower

import (
	"regexp"
	"strings"

	"github.com/Icarogamer2441/snake/internal/annot"
)

// passOperators rewrites C-style boolean operators to host keywords. The
// code mask keeps operator-lookalike text inside strings and comments
// untouched; "!=" is left alone.
func passOperators(_ *Context, src string) (string, error) {
	mask := codeMask(src)
	var b strings.Builder
	b.Grow(len(src))

	for i := 0; i < len(src); {
		if mask[i] {
			b.WriteByte(src[i])
			i++
			continue
		}
		switch {
		case hasPrefixAt(src, i, "&&"):
			b.WriteString(" and ")
			i += 2
		case hasPrefixAt(src, i, "||"):
			b.WriteString(" or ")
			i += 2
		case src[i] == '!' && (i == 0 || !isWordByte(src[i-1])) &&
			!(i+1 < len(src) && src[i+1] == '='):
			b.WriteString("not ")
			i++
		default:
			b.WriteByte(src[i])
			i++
		}
	}
	return b.String(), nil
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

var (
	incRe = regexp.MustCompile(`(?m)^(\s*)([A-Za-z_][\w.\[\]]*)\s*\+\+\s*;?\s*$`)
	decRe = regexp.MustCompile(`(?m)^(\s*)([A-Za-z_][\w.\[\]]*)\s*--\s*;?\s*$`)
)

// passIncDec rewrites x++; and x--; to explicit rebind-by-one statements.
func passIncDec(_ *Context, src string) (string, error) {
	src = replaceUnmasked(src, incRe, func(m []string) string {
		return m[1] + m[2] + " = " + m[2] + " + 1"
	})
	src = replaceUnmasked(src, decRe, func(m []string) string {
		return m[1] + m[2] + " = " + m[2] + " - 1"
	})
	return src, nil
}

var (
	structCastRe = regexp.MustCompile(`\(([A-Za-z_][A-Za-z0-9_]*)\)\s*(\{[^{}]*\})`)
	simpleCastRe = regexp.MustCompile(`\((int|float|str|bool)\)\s*((?:[A-Za-z_][\w.]*(?:\([^()]*\))?)|(?:\d+(?:\.\d+)?)|(?:"[^"]*"))`)
)

func isBuiltinCast(name string) bool {
	switch name {
	case "int", "float", "str", "bool", "list", "dict", "tuple", "set":
		return true
	}
	return false
}

// passCasts rewrites (Type)expr to a conversion call and (Type){...} to the
// record-cast helper, which builds a bare instance and copies the mapping's
// entries onto it without going through the constructor.
func passCasts(ctx *Context, src string) (string, error) {
	src = replaceUnmasked(src, structCastRe, func(m []string) string {
		if isBuiltinCast(m[1]) {
			return m[1] + "(" + m[2] + ")"
		}
		ctx.needsStructCast = true
		return "__struct_cast(" + m[1] + ", " + m[2] + ")"
	})
	src = replaceUnmasked(src, simpleCastRe, func(m []string) string {
		if isKeywordOperand(m[2]) {
			return m[0]
		}
		return m[1] + "(" + m[2] + ")"
	})
	return src, nil
}

// isKeywordOperand guards the cast rewrite against a parenthesized name that
// is followed by a keyword rather than a castee, e.g. "f(int) or g()".
func isKeywordOperand(s string) bool {
	switch s {
	case "and", "or", "not", "in", "is", "if", "else", "for", "None", "True", "False":
		return true
	}
	return false
}

var orelseRe = regexp.MustCompile(`(?m)^(\s*)([A-Za-z_][\w.\[\]'"]*)\s*=\s*(.+)\s+(orelse)\s+(.+?)\s*;?\s*$`)

// passOrElse rewrites "lhs = expr orelse fallback;" into a guarded
// evaluation. The guard is a blanket one: any failure while evaluating the
// primary expression rebinds to the fallback. The pivot on the keyword group
// keeps "orelse" inside a string or trailing comment from triggering, and
// greedy expr matching pairs the rewrite with the last keyword on the line
// so a quoted occurrence earlier in the expression does not shadow it.
func passOrElse(_ *Context, src string) (string, error) {
	out := replaceUnmaskedGroup(src, orelseRe, 4, func(m []string) string {
		indent, lhs, expr, fallback := m[1], m[2], m[3], m[5]
		return indent + "try:\n" +
			indent + "    " + lhs + " = " + expr + "\n" +
			indent + "except:\n" +
			indent + "    " + lhs + " = " + fallback
	})
	return out, nil
}

var (
	forMethodRe = regexp.MustCompile(`(?m)^(\s*)(.+?)(\.for\()(.*)\)\s*:\s*$`)
	bareIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// passForMethod rewrites the two .for iteration forms to host for loops.
// A dotted-free single receiver with a single parenthesized operand is the
// legacy form (receiver is the loop variable); anything else treats the left
// side as the iterable and the operands as loop variables. Pivots on the
// ".for(" group so the token never fires from inside a string or comment.
func passForMethod(_ *Context, src string) (string, error) {
	out := replaceUnmaskedGroup(src, forMethodRe, 3, func(m []string) string {
		indent, left, operand := m[1], strings.TrimSpace(m[2]), m[4]
		args := annot.SplitTopLevel(operand, ',')
		for i := range args {
			args[i] = strings.TrimSpace(args[i])
		}
		if bareIdentRe.MatchString(left) && len(args) == 1 {
			return indent + "for " + left + " in " + args[0] + ":"
		}
		return indent + "for " + strings.Join(args, ", ") + " in " + left + ":"
	})
	return out, nil
}

var (
	staticDefRe   = regexp.MustCompile(`(?m)^(\s*)static(\s+def\s)`)
	propertyDefRe = regexp.MustCompile(`(?m)^(\s*)property(\s+def\s)`)
)

// passStaticProperty turns static/property prefixes into decorator markers
// ahead of a plain method definition.
func passStaticProperty(_ *Context, src string) (string, error) {
	src = replaceUnmasked(src, staticDefRe, func(m []string) string {
		return m[1] + "@staticmethod\n" + m[1] + strings.TrimLeft(m[2], " \t")
	})
	src = replaceUnmasked(src, propertyDefRe, func(m []string) string {
		return m[1] + "@property\n" + m[1] + strings.TrimLeft(m[2], " \t")
	})
	return src, nil
}

var (
	printallRe = regexp.MustCompile(`(?m)^(\s*)(.+?)(\.printall\()\s*\)\s*;?\s*$`)
	addRe      = regexp.MustCompile(`([A-Za-z_][\w.\[\]]*)\.add\(([^()]*)\)`)
	removeRe   = regexp.MustCompile(`([A-Za-z_][\w.\[\]]*)\.remove\(([^()]*)\)`)
	dotFRe     = regexp.MustCompile(`\.f\(`)
)

// passHelpers rewrites the pseudo-methods: .add and .remove become helper
// calls that work across container kinds, .f is shorthand for .format, and
// .printall expands to an inline enumerate-and-print loop.
func passHelpers(ctx *Context, src string) (string, error) {
	src = replaceUnmaskedGroup(src, printallRe, 3, func(m []string) string {
		indent, expr := m[1], m[2]
		return indent + "for __snake_i, __snake_v in enumerate(" + expr + "):\n" +
			indent + "    print(__snake_i, __snake_v)"
	})
	src = replaceUnmasked(src, addRe, func(m []string) string {
		ctx.needsHelpers = true
		if strings.TrimSpace(m[2]) == "" {
			return "__snake_add(" + m[1] + ")"
		}
		return "__snake_add(" + m[1] + ", " + m[2] + ")"
	})
	src = replaceUnmasked(src, removeRe, func(m []string) string {
		ctx.needsHelpers = true
		if strings.TrimSpace(m[2]) == "" {
			return "__snake_remove(" + m[1] + ")"
		}
		return "__snake_remove(" + m[1] + ", " + m[2] + ")"
	})
	src = replaceUnmasked(src, dotFRe, func(m []string) string {
		return ".format("
	})
	return src, nil
}

var (
	thisParamRe = regexp.MustCompile(`(\bdef\s+[A-Za-z_][A-Za-z0-9_]*\s*\(\s*)this\b`)
	thisRefRe   = regexp.MustCompile(`\bthis\.`)
)

// passThis renames a leading this parameter and this. references to the
// host implicit-self convention.
func passThis(_ *Context, src string) (string, error) {
	src = replaceUnmasked(src, thisParamRe, func(m []string) string {
		return m[1] + "self"
	})
	src = replaceUnmasked(src, thisRefRe, func(m []string) string {
		return "self."
	})
	return src, nil
}

// passArgv prepends the process-argument bindings exactly once, adding the
// host sys import only when one is not already present. Both probes are
// mask-aware: a binding or import quoted in a string or comment does not
// count as present.
func passArgv(_ *Context, src string) (string, error) {
	if containsUnmasked(src, "argv = sys.argv") {
		return src, nil
	}
	block := "# Command-line arguments\nargv = sys.argv\nargc = len(argv)\n\n"
	if !containsUnmasked(src, "import sys") {
		block = "import sys\n\n" + block
	}
	return block + src, nil
}

var trailingSemiRe = regexp.MustCompile(`;([ \t]*)(\n|$)`)

// passSemicolons strips statement-terminating semicolons. Runs last: every
// earlier pass may still rely on ';' terminators in its trigger patterns.
func passSemicolons(_ *Context, src string) (string, error) {
	out := replaceUnmasked(src, trailingSemiRe, func(m []string) string {
		return m[1] + m[2]
	})
	return out, nil
}
