package lower

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/valyala/fastjson"
)

// LibraryEntryFile is the file a named library must provide at its root.
const LibraryEntryFile = "__main__.sk"

// LibraryMetadataFile optionally lists a library's host-language
// dependencies.
const LibraryMetadataFile = "snake_metadata.json"

var (
	fileImportRe = regexp.MustCompile(`import\s+"([^"]+\.sk)"\s*;`)
	libImportRe  = regexp.MustCompile(`import\s+"([^"]+)"\s*;`)
	pyImportRe   = regexp.MustCompile(`from\s+python\s+import\s+([a-zA-Z0-9_.,\s]+?)\s*;`)
)

// DefaultLibRoots returns the library roots probed for a named import: the
// user-level root first, then the system-level root.
func DefaultLibRoots() []string {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, "snakelibs"))
	}
	return append(roots, "/usr/local/lib/snakelibs")
}

// FindLibrary probes the roots for a named library directory.
func FindLibrary(roots []string, name string) (string, bool) {
	for _, root := range roots {
		dir := filepath.Join(root, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, true
		}
	}
	return "", false
}

// passImports recursively inlines file and library imports and expands host
// imports. There is no cycle detection: a self-importing file recurses until
// the stack gives out.
func passImports(ctx *Context, src string) (string, error) {
	return resolveImports(ctx, src, ctx.Path)
}

func resolveImports(ctx *Context, src, path string) (string, error) {
	// Relative file imports first, so a library name ending in .sk is never
	// mistaken for a library.
	for {
		loc := findUnmasked(src, fileImportRe)
		if loc == nil {
			break
		}
		file := src[loc[2]:loc[3]]

		importPath := file
		if path != "" && !filepath.IsAbs(file) {
			importPath = filepath.Join(filepath.Dir(path), file)
		}
		data, err := os.ReadFile(importPath)
		if err != nil {
			return "", passError("imports", "Could not find imported file: %s", file)
		}
		inlined, err := resolveImports(ctx, string(data), importPath)
		if err != nil {
			return "", err
		}
		src = src[:loc[0]] + inlined + src[loc[1]:]
	}

	// Named library imports.
	for from := 0; ; {
		loc := findUnmaskedFrom(src, libImportRe, from)
		if loc == nil {
			break
		}
		name := src[loc[2]:loc[3]]
		if strings.HasSuffix(name, ".sk") {
			from = loc[0] + 1
			continue
		}

		dir, ok := FindLibrary(ctx.LibRoots, name)
		if !ok {
			return "", passError("imports", "Could not find Snake library: %s", name)
		}
		entry := filepath.Join(dir, LibraryEntryFile)
		data, err := os.ReadFile(entry)
		if err != nil {
			return "", passError("imports", "Invalid Snake library: %s (missing %s)", name, LibraryEntryFile)
		}
		inlined, err := resolveImports(ctx, string(data), entry)
		if err != nil {
			return "", err
		}
		src = src[:loc[0]] + inlined + src[loc[1]:]

		// A metadata file may declare host dependencies to prepend.
		if deps := libraryDependencies(filepath.Join(dir, LibraryMetadataFile)); len(deps) > 0 {
			var b strings.Builder
			for _, dep := range deps {
				b.WriteString("import " + dep + "\n")
			}
			src = b.String() + src
		}
		from = 0
	}

	// Host imports: "from python import a, b;" -> one import per module.
	for {
		loc := findUnmasked(src, pyImportRe)
		if loc == nil {
			break
		}
		var lines []string
		for _, mod := range strings.Split(src[loc[2]:loc[3]], ",") {
			if mod = strings.TrimSpace(mod); mod != "" {
				lines = append(lines, "import "+mod)
			}
		}
		src = src[:loc[0]] + strings.Join(lines, "\n") + src[loc[1]:]
	}

	return src, nil
}

// libraryDependencies reads the host dependency list from a metadata file.
// A missing or malformed file is not an error; malformed metadata produces a
// warning, matching the lenient handling of optional metadata.
func libraryDependencies(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not process library metadata: %v\n", err)
		return nil
	}
	var deps []string
	for _, d := range v.GetArray("python_dependencies") {
		if s, err := d.StringBytes(); err == nil {
			deps = append(deps, string(s))
		}
	}
	return deps
}

// findUnmasked returns the absolute submatch indices of the first match of
// re that starts outside strings and comments.
func findUnmasked(src string, re *regexp.Regexp) []int {
	return findUnmaskedFrom(src, re, 0)
}

func findUnmaskedFrom(src string, re *regexp.Regexp, from int) []int {
	mask := codeMask(src)
	for from <= len(src) {
		loc := re.FindStringSubmatchIndex(src[from:])
		if loc == nil {
			return nil
		}
		abs := make([]int, len(loc))
		for i, off := range loc {
			if off < 0 {
				abs[i] = -1
			} else {
				abs[i] = from + off
			}
		}
		if !mask[abs[0]] {
			return abs
		}
		from = abs[0] + 1
	}
	return nil
}
