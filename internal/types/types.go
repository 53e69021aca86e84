// Package types implements the type-compatibility engine and the scope-aware
// checker over canonical host trees. Types are represented as type strings in
// the surface grammar: "int", "str", "list[int]", "dict[str, float]",
// "Optional[T]", or a declared record/enum name. The annotation table maps
// declared names to their descriptors; this package only reads it.
package types

import "strings"

// Reserved type names.
const (
	TopType  = "any"  // compatible in both directions
	NullType = "None" // the null type; flows into Optional[...]

	IntType    = "int"
	FloatType  = "float"
	StringType = "str"
	BoolType   = "bool"

	ListType  = "list"
	DictType  = "dict"
	TupleType = "tuple"
	SetType   = "set"

	OptionalType = "Optional"
)

// BaseName returns the text before the first bracket: "dict[str, int]" -> "dict".
func BaseName(t string) string {
	if i := strings.IndexByte(t, '['); i >= 0 {
		return strings.TrimSpace(t[:i])
	}
	return strings.TrimSpace(t)
}

// HasParams reports whether t carries a bracketed parameter list.
func HasParams(t string) bool {
	return strings.IndexByte(t, '[') >= 0
}

// Params returns the comma-separated parameters inside the outermost
// brackets, split at top level only. Returns nil when t has no brackets.
func Params(t string) []string {
	open := strings.IndexByte(t, '[')
	if open < 0 {
		return nil
	}
	end := strings.LastIndexByte(t, ']')
	if end <= open {
		return nil
	}
	inner := t[open+1 : end]
	parts := splitTopLevel(inner)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// splitTopLevel splits on commas outside any bracket nesting.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// IsSequence reports whether base is a sequence container (single element
// parameter).
func IsSequence(base string) bool {
	return base == ListType || base == SetType
}

// IsMapping reports whether base is a mapping container (key and value
// parameters).
func IsMapping(base string) bool {
	return base == DictType
}

// StripDefault removes a trailing "= default" fragment from a harvested
// parameter type text: "int = 5" -> "int".
func StripDefault(t string) string {
	if i := indexTopLevel(t, '='); i >= 0 {
		return strings.TrimSpace(t[:i])
	}
	return strings.TrimSpace(t)
}

func indexTopLevel(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		default:
			if s[i] == c && depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Balanced reports whether the brackets of t are balanced. Unbalanced type
// strings are malformed generic annotations and are diagnosed by the checker.
func Balanced(t string) bool {
	depth := 0
	for i := 0; i < len(t); i++ {
		switch t[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
