package lower

import (
	"regexp"
	"strings"
)

// codeMask returns a per-byte mask over src: true marks bytes inside a
// string literal or comment, which no pass may rewrite. Single and double
// quotes close at end of line; triple-quoted regions carry across lines.
// A backslash escapes the next character inside any quoted region.
func codeMask(src string) []bool {
	mask := make([]bool, len(src))

	const (
		code = iota
		single
		double
		tripleSingle
		tripleDouble
		comment
	)
	state := code

	for i := 0; i < len(src); i++ {
		ch := src[i]

		switch state {
		case code:
			switch {
			case ch == '#':
				state = comment
				mask[i] = true
			case hasPrefixAt(src, i, `"""`):
				state = tripleDouble
				mask[i], mask[i+1], mask[i+2] = true, true, true
				i += 2
			case hasPrefixAt(src, i, `'''`):
				state = tripleSingle
				mask[i], mask[i+1], mask[i+2] = true, true, true
				i += 2
			case ch == '"':
				state = double
				mask[i] = true
			case ch == '\'':
				state = single
				mask[i] = true
			}

		case single, double:
			mask[i] = true
			switch {
			case ch == '\\' && i+1 < len(src):
				mask[i+1] = true
				i++
			case ch == '\n':
				// An unterminated quote closes at end of line; the
				// newline itself is code.
				mask[i] = false
				state = code
			case ch == '\'' && state == single, ch == '"' && state == double:
				state = code
			}

		case tripleSingle, tripleDouble:
			mask[i] = true
			switch {
			case ch == '\\' && i+1 < len(src):
				mask[i+1] = true
				i++
			case state == tripleDouble && hasPrefixAt(src, i, `"""`),
				state == tripleSingle && hasPrefixAt(src, i, `'''`):
				mask[i+1], mask[i+2] = true, true
				i += 2
				state = code
			}

		case comment:
			if ch == '\n' {
				state = code
			} else {
				mask[i] = true
			}
		}
	}
	return mask
}

func hasPrefixAt(s string, i int, prefix string) bool {
	return i+len(prefix) <= len(s) && s[i:i+len(prefix)] == prefix
}

// replaceUnmasked applies repl to every match of re whose start lies in
// code. repl receives the submatch texts (m[0] is the whole match). The mask
// is recomputed after each replacement since offsets shift.
func replaceUnmasked(src string, re *regexp.Regexp, repl func(m []string) string) string {
	return replaceUnmaskedGroup(src, re, 0, repl)
}

// replaceUnmaskedGroup is replaceUnmasked probing the mask at the start of
// capture group g instead of the whole match. A line-anchored pattern always
// starts at an unmasked line start, so a pass whose trigger token sits
// mid-line must pivot on the token's own group: otherwise a keyword inside a
// string literal or trailing comment would fire the rewrite.
func replaceUnmaskedGroup(src string, re *regexp.Regexp, g int, repl func(m []string) string) string {
	for searchFrom := 0; ; {
		mask := codeMask(src)
		loc := re.FindStringSubmatchIndex(src[searchFrom:])
		if loc == nil {
			return src
		}
		start, end := searchFrom+loc[0], searchFrom+loc[1]
		pivot := start
		if loc[2*g] >= 0 {
			pivot = searchFrom + loc[2*g]
		}
		if mask[pivot] {
			searchFrom = start + 1
			continue
		}
		groups := make([]string, len(loc)/2)
		for i := 0; i < len(loc)/2; i++ {
			if loc[2*i] < 0 {
				continue
			}
			groups[i] = src[searchFrom+loc[2*i] : searchFrom+loc[2*i+1]]
		}
		out := repl(groups)
		src = src[:start] + out + src[end:]
		searchFrom = start + len(out)
	}
}

// containsUnmasked reports whether substr occurs in src outside every string
// literal and comment.
func containsUnmasked(src, substr string) bool {
	mask := codeMask(src)
	for i := 0; ; {
		j := strings.Index(src[i:], substr)
		if j < 0 {
			return false
		}
		if !mask[i+j] {
			return true
		}
		i += j + 1
	}
}
