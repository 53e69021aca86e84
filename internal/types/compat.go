package types

import (
	"strings"

	"github.com/Icarogamer2441/snake/internal/annot"
)

// Compatible reports whether a value of type actual may flow into a slot of
// type expected. The checks run in order; the first match wins. The result is
// strictly boolean: the checker attaches position and context when it turns a
// false result into a diagnostic.
func Compatible(actual, expected string, tbl *annot.Table) bool {
	actual = strings.TrimSpace(actual)
	expected = strings.TrimSpace(expected)

	// 1. The top type is compatible in both directions.
	if actual == TopType || expected == TopType {
		return true
	}

	// 2. Exact match.
	if actual == expected {
		return true
	}

	// 3. The null type flows into any optional.
	if actual == NullType && BaseName(expected) == OptionalType {
		return true
	}

	// 4. One-way numeric widening.
	if actual == IntType && expected == FloatType {
		return true
	}

	// 5. Generic containers.
	actualBase := BaseName(actual)
	expectedBase := BaseName(expected)
	if actualBase == expectedBase {
		// An instantiated generic flows into its bare name, and a bare
		// container flows into any instantiation of the same base.
		if !HasParams(actual) || !HasParams(expected) {
			return true
		}
		return paramsCompatible(actualBase, Params(actual), Params(expected), tbl)
	}

	// 6. Declared record/sum types are nominal: only the identical name is
	// compatible, and that was already covered by the exact match above.
	return false
}

// paramsCompatible compares the bracketed parameters of two instantiations of
// the same container base.
func paramsCompatible(base string, actual, expected []string, tbl *annot.Table) bool {
	switch {
	case IsSequence(base):
		// Sequences carry a single element parameter.
		if len(actual) != 1 || len(expected) != 1 {
			return false
		}
		return paramCompatible(actual[0], expected[0], tbl)

	case IsMapping(base):
		// Mappings split on the first top-level comma: key, then value.
		if len(actual) != 2 || len(expected) != 2 {
			return false
		}
		return paramCompatible(actual[0], expected[0], tbl) &&
			paramCompatible(actual[1], expected[1], tbl)

	case base == TupleType:
		// Tuples require equal arity and pairwise compatibility.
		if len(actual) != len(expected) {
			return false
		}
		for i := range actual {
			if !paramCompatible(actual[i], expected[i], tbl) {
				return false
			}
		}
		return true

	case base == OptionalType:
		if len(actual) != 1 || len(expected) != 1 {
			return false
		}
		return paramCompatible(actual[0], expected[0], tbl)

	default:
		// Unknown parameterized base: require pairwise compatibility.
		if len(actual) != len(expected) {
			return false
		}
		for i := range actual {
			if !paramCompatible(actual[i], expected[i], tbl) {
				return false
			}
		}
		return true
	}
}

// paramCompatible compares one type parameter slot. A parameter equal to the
// top type is accepted unconditionally.
func paramCompatible(actual, expected string, tbl *annot.Table) bool {
	if strings.TrimSpace(expected) == TopType || strings.TrimSpace(actual) == TopType {
		return true
	}
	return Compatible(actual, expected, tbl)
}
