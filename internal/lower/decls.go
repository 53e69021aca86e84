package lower

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Icarogamer2441/snake/internal/annot"
)

var (
	enumHeaderRe   = regexp.MustCompile(`^(\s*)enum\s+([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(.*)$`)
	structHeaderRe = regexp.MustCompile(`^(\s*)struct\s+([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(.*)$`)
	structFieldRe  = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*:\s*([A-Za-z_][A-Za-z0-9_]*(?:\[[^\]]*\])?)\s*;`)
	constRe        = regexp.MustCompile(`const\s+([A-Za-z_][A-Za-z0-9_]*)\s*:\s*([A-Za-z_][A-Za-z0-9_]*(?:\[[^\]]*\])?)\s*=\s*([^;]+);`)
	errorRe        = regexp.MustCompile(`(?s)error\s+([A-Za-z_][A-Za-z0-9_]*)\s*(?:\((.*?)\))?\s*->\s*(f?".*?");`)
	exportLineRe   = regexp.MustCompile(`^(\s*)export\s+(.*)$`)
	exportDefRe    = regexp.MustCompile(`^def\s+([A-Za-z_][A-Za-z0-9_]*)`)
	exportVarRe    = regexp.MustCompile(`^(?:const\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// passEnums lowers "enum Name:" declarations to host Enum classes. An
// unvalued member's ordinal is its position in the combined member list,
// starting at 1; valued members keep their explicit literal. Interleaving
// valued and unvalued members can therefore collide ordinals; that behavior
// is kept as is.
func passEnums(ctx *Context, src string) (string, error) {
	mask := codeMask(src)
	lines := strings.Split(src, "\n")
	starts := lineStarts(src)

	var out []string
	lowered := false
	for i := 0; i < len(lines); i++ {
		m := enumHeaderRe.FindStringSubmatch(lines[i])
		if m == nil || mask[starts[i]+len(m[1])] {
			out = append(out, lines[i])
			continue
		}
		indent, name := m[1], m[2]

		body, next := blockLines(lines, i, len(indent), m[3])
		members, values, types, err := parseEnumBody(body)
		if err != nil {
			return "", passError("enums", "enum %s: %v", name, err)
		}
		if len(members) == 0 {
			return "", passError("enums", "enum %s has no members", name)
		}

		ctx.define(name, &annot.EnumDef{Members: members, Values: values, Types: types})

		out = append(out, indent+"class "+name+"(Enum):")
		for idx, member := range members {
			value, ok := values[member]
			if !ok {
				value = strconv.Itoa(idx + 1)
			}
			out = append(out, indent+"    "+member+" = "+value)
		}
		out = append(out, "")
		lowered = true
		i = next - 1
	}

	result := strings.Join(out, "\n")
	if lowered && !strings.Contains(result, "from enum import Enum") {
		result = "from enum import Enum\n\n" + result
	}
	return result, nil
}

func parseEnumBody(body []string) (members []string, values, types map[string]string, err error) {
	values = make(map[string]string)
	types = make(map[string]string)
	for _, line := range body {
		for _, entry := range annot.SplitTopLevel(line, ',') {
			entry = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(entry), ";"))
			if entry == "" {
				continue
			}
			if colon := strings.IndexByte(entry, ':'); colon >= 0 {
				name := strings.TrimSpace(entry[:colon])
				rest := entry[colon+1:]
				eq := strings.IndexByte(rest, '=')
				if eq < 0 {
					return nil, nil, nil, errFormat("valued member %q has no value", name)
				}
				members = append(members, name)
				types[name] = strings.TrimSpace(rest[:eq])
				values[name] = strings.TrimSpace(rest[eq+1:])
			} else {
				members = append(members, entry)
			}
		}
	}
	return members, values, types, nil
}

// passStructs lowers "struct Name:" declarations to host classes with a
// positional constructor and a debug __repr__, both listing fields in
// declaration order.
func passStructs(ctx *Context, src string) (string, error) {
	mask := codeMask(src)
	lines := strings.Split(src, "\n")
	starts := lineStarts(src)

	var out []string
	for i := 0; i < len(lines); i++ {
		m := structHeaderRe.FindStringSubmatch(lines[i])
		if m == nil || mask[starts[i]+len(m[1])] {
			out = append(out, lines[i])
			continue
		}
		indent, name := m[1], m[2]

		body, next := blockLines(lines, i, len(indent), m[3])
		var fields []annot.FieldInfo
		for _, fm := range structFieldRe.FindAllStringSubmatch(strings.Join(body, "\n"), -1) {
			fields = append(fields, annot.FieldInfo{Name: fm[1], Type: fm[2]})
		}
		if len(fields) == 0 {
			return "", passError("structs", "struct %s has no fields", name)
		}

		ctx.define(name, &annot.RecordDef{Fields: fields})

		params := make([]string, len(fields))
		reprParts := make([]string, len(fields))
		for j, f := range fields {
			params[j] = f.Name + ": " + f.Type
			reprParts[j] = f.Name + "={self." + f.Name + "}"
		}
		out = append(out, indent+"class "+name+":")
		out = append(out, indent+"    def __init__(self, "+strings.Join(params, ", ")+") -> None:")
		for _, f := range fields {
			out = append(out, indent+"        self."+f.Name+" = "+f.Name)
		}
		out = append(out, indent+"    def __repr__(self) -> str:")
		out = append(out, indent+`        return f"`+name+"("+strings.Join(reprParts, ", ")+`)"`)
		out = append(out, "")
		i = next - 1
	}
	return strings.Join(out, "\n"), nil
}

// passConstants rewrites "const Name: Type = Expr;" to an ordinary annotated
// binding and flags the name immutable. Enforcement happens in the checker,
// not here.
func passConstants(ctx *Context, src string) (string, error) {
	out := replaceUnmasked(src, constRe, func(m []string) string {
		ctx.define(m[1], &annot.VarSig{Type: strings.TrimSpace(m[2]), IsConstant: true})
		return m[1] + ": " + strings.TrimSpace(m[2]) + " = " + strings.TrimSpace(m[3]) + ";"
	})
	return out, nil
}

// passErrors lowers error declarations to host exception classes. The
// message text is a (possibly formatted) string whose {param} placeholders
// are rebased onto the instance fields.
func passErrors(ctx *Context, src string) (string, error) {
	for {
		loc := findUnmasked(src, errorRe)
		if loc == nil {
			return src, nil
		}
		name := src[loc[2]:loc[3]]
		paramText := ""
		if loc[4] >= 0 {
			paramText = src[loc[4]:loc[5]]
		}
		msg := strings.TrimSpace(src[loc[6]:loc[7]])

		var params []annot.ParamInfo
		for _, p := range annot.SplitTopLevel(paramText, ',') {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			colon := strings.IndexByte(p, ':')
			if colon < 0 {
				return "", passError("errors", "error %s: parameter %q has no type", name, p)
			}
			params = append(params, annot.ParamInfo{
				Name: strings.TrimSpace(p[:colon]),
				Type: strings.TrimSpace(p[colon+1:]),
			})
		}
		ctx.define(name, &annot.ErrorDef{Params: params})

		for _, p := range params {
			placeholder := regexp.MustCompile(`\{\s*` + regexp.QuoteMeta(p.Name) + `\s*\}`)
			msg = placeholder.ReplaceAllString(msg, "{self."+p.Name+"}")
		}

		var b []string
		b = append(b, "class "+name+"(Exception):")
		if len(params) > 0 {
			sig := make([]string, len(params))
			for j, p := range params {
				sig[j] = p.Name + ": " + p.Type
			}
			b = append(b, "    def __init__(self, "+strings.Join(sig, ", ")+"):")
			for _, p := range params {
				b = append(b, "        self."+p.Name+" = "+p.Name)
			}
		} else {
			b = append(b, "    def __init__(self):")
			b = append(b, "        pass")
		}
		b = append(b, "    def __str__(self):")
		b = append(b, "        return "+msg)
		b = append(b, "")

		src = src[:loc[0]] + strings.Join(b, "\n") + src[loc[1]:]
	}
}

// passExports strips export markers and records external visibility. An
// exported function literally named main becomes the entry point.
func passExports(ctx *Context, src string) (string, error) {
	mask := codeMask(src)
	lines := strings.Split(src, "\n")
	starts := lineStarts(src)

	for i, line := range lines {
		m := exportLineRe.FindStringSubmatch(line)
		if m == nil || mask[starts[i]+len(m[1])] {
			continue
		}
		rest := m[2]
		if dm := exportDefRe.FindStringSubmatch(rest); dm != nil {
			ctx.exported = append(ctx.exported, dm[1])
			if dm[1] == "main" {
				ctx.hasMain = true
			}
		} else if vm := exportVarRe.FindStringSubmatch(rest); vm != nil {
			ctx.exported = append(ctx.exported, vm[1])
		}
		lines[i] = m[1] + rest
	}
	return strings.Join(lines, "\n"), nil
}

// blockLines collects a declaration body: anything on the header line plus
// the following lines indented deeper than the header. Returns the body and
// the index of the first line after the block.
func blockLines(lines []string, header, headerIndent int, inline string) ([]string, int) {
	var body []string
	if strings.TrimSpace(inline) != "" {
		body = append(body, inline)
	}
	j := header + 1
	for ; j < len(lines); j++ {
		line := lines[j]
		if strings.TrimSpace(line) == "" {
			break
		}
		if indentWidth(line) <= headerIndent {
			break
		}
		body = append(body, line)
	}
	return body, j
}

func indentWidth(line string) int {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return n
}

// lineStarts returns the byte offset of each line of src.
func lineStarts(src string) []int {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func errFormat(format string, args ...any) error {
	return passError("decls", format, args...)
}
