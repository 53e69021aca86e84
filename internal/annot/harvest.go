package annot

import (
	"regexp"
	"strings"
)

// The harvester scans canonical (post-lowering) text for two textual shapes:
// callable signatures with declared parameter and return types, and top-level
// bindings with declared types. It is a text scan, not a parse: the host
// parser runs separately and the two never disagree on well-formed input.

var (
	funcSigRe = regexp.MustCompile(`^\s*def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\((.*)\)\s*->\s*([A-Za-z_][A-Za-z0-9_]*(?:\[[^\]]*\])?)\s*:`)
	varSigRe  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:\s*([A-Za-z_][A-Za-z0-9_]*(?:\[[^\]]*\])?)\s*=`)
)

// Harvest scans src and writes descriptors into tbl. Later occurrences of a
// name silently overwrite earlier ones.
func Harvest(src string, tbl *Table) {
	for _, line := range strings.Split(src, "\n") {
		if m := funcSigRe.FindStringSubmatch(line); m != nil {
			tbl.Define(m[1], &FuncSig{
				Params: harvestParams(m[2]),
				Return: strings.TrimSpace(m[3]),
			})
			continue
		}
		// Variable signatures are harvested at top level only.
		if len(line) > 0 && line[0] != ' ' && line[0] != '\t' {
			if m := varSigRe.FindStringSubmatch(line); m != nil {
				tbl.Define(m[1], &VarSig{Type: strings.TrimSpace(m[2])})
			}
		}
	}
}

// harvestParams splits a parameter list on top-level commas and takes the
// text after the first ':' of each entry as its type. A trailing "= default"
// fragment stays part of the type text; the checker strips it when comparing.
func harvestParams(list string) []ParamInfo {
	var params []ParamInfo
	for _, part := range SplitTopLevel(list, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.Index(part, ":")
		if idx < 0 {
			continue // untyped parameter, nothing to harvest
		}
		name := strings.TrimSpace(part[:idx])
		typ := strings.TrimSpace(part[idx+1:])
		if name == "" || typ == "" {
			continue
		}
		params = append(params, ParamInfo{Name: name, Type: typ})
	}
	return params
}

// SplitTopLevel splits s on sep occurrences outside any (), [] or {} nesting.
func SplitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
