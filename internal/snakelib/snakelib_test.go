package snakelib_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valyala/fastjson"

	"github.com/Icarogamer2441/snake/internal/lower"
	"github.com/Icarogamer2441/snake/internal/snakelib"
)

const setupSrc = `name: str = "mathx"
version: str = "1.2.3"
dependencies: list[str] = ["base"]
python_dependencies: list[str] = [
    "requests",
    "numpy",
]
`

func writeLibSource(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		snakelib.SetupFile:     setupSrc,
		lower.LibraryEntryFile: "def square(n: int) -> int:\n    return n * n\n",
		"extra.sk":             "def cube(n: int) -> int:\n    return n * n * n\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestParseSetup(t *testing.T) {
	dir := writeLibSource(t)
	setup, err := snakelib.ParseSetup(filepath.Join(dir, snakelib.SetupFile))
	if err != nil {
		t.Fatalf("ParseSetup: %v", err)
	}
	if setup.Name != "mathx" {
		t.Errorf("name = %q", setup.Name)
	}
	if setup.Version.String() != "1.2.3" {
		t.Errorf("version = %s", setup.Version)
	}
	if len(setup.Dependencies) != 1 || setup.Dependencies[0] != "base" {
		t.Errorf("dependencies = %v", setup.Dependencies)
	}
	if len(setup.PythonDependencies) != 2 || setup.PythonDependencies[1] != "numpy" {
		t.Errorf("python dependencies = %v", setup.PythonDependencies)
	}
}

func TestParseSetupMissingName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, snakelib.SetupFile)
	if err := os.WriteFile(path, []byte(`version: str = "1.0.0"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := snakelib.ParseSetup(path); err == nil || !strings.Contains(err.Error(), "name not found") {
		t.Fatalf("expected missing-name error, got %v", err)
	}
}

func TestParseSetupBadVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, snakelib.SetupFile)
	content := `name: str = "x"` + "\n" + `version: str = "not-a-version"` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := snakelib.ParseSetup(path); err == nil || !strings.Contains(err.Error(), "invalid library version") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestBuild(t *testing.T) {
	src := writeLibSource(t)
	root := t.TempDir()

	libDir, err := snakelib.Build(src, root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if libDir != filepath.Join(root, "mathx") {
		t.Fatalf("installed to %s", libDir)
	}

	// Sources are copied; setup.sk stays behind.
	if _, err := os.Stat(filepath.Join(libDir, lower.LibraryEntryFile)); err != nil {
		t.Fatalf("entry file not installed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(libDir, "extra.sk")); err != nil {
		t.Fatalf("source not installed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(libDir, snakelib.SetupFile)); !os.IsNotExist(err) {
		t.Fatal("setup.sk must not be installed")
	}

	data, err := os.ReadFile(filepath.Join(libDir, lower.LibraryMetadataFile))
	if err != nil {
		t.Fatalf("metadata not written: %v", err)
	}
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		t.Fatalf("metadata not valid JSON: %v", err)
	}
	if got := string(v.GetStringBytes("name")); got != "mathx" {
		t.Errorf("metadata name = %q", got)
	}
	if got := string(v.GetStringBytes("version")); got != "1.2.3" {
		t.Errorf("metadata version = %q", got)
	}
	if got := string(v.GetStringBytes("install_id")); len(got) != 36 {
		t.Errorf("install id = %q, want a UUID", got)
	}
	digest := v.Get("digests", lower.LibraryEntryFile)
	if digest == nil || len(digest.GetStringBytes()) != 64 {
		t.Errorf("entry digest missing or not a BLAKE2b-256 hex digest")
	}
	deps := v.GetArray("python_dependencies")
	if len(deps) != 2 {
		t.Errorf("metadata python dependencies = %v", deps)
	}
}

func TestBuildRequiresEntryFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, snakelib.SetupFile), []byte(setupSrc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := snakelib.Build(dir, t.TempDir()); err == nil || !strings.Contains(err.Error(), lower.LibraryEntryFile) {
		t.Fatalf("expected missing entry-file error, got %v", err)
	}
}

func TestBuiltLibraryResolvesThroughImportPass(t *testing.T) {
	src := writeLibSource(t)
	root := t.TempDir()
	if _, err := snakelib.Build(src, root); err != nil {
		t.Fatalf("Build: %v", err)
	}

	ctx := lower.NewContext("")
	ctx.LibRoots = []string{root}
	out, err := lower.Lower("import \"mathx\";\nprint(square(3))\n", ctx)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if !strings.Contains(out, "def square(n: int) -> int:") {
		t.Fatalf("installed library not inlined:\n%s", out)
	}
	for _, dep := range []string{"import requests", "import numpy"} {
		if !strings.Contains(out, dep) {
			t.Fatalf("metadata dependency %q not prepended:\n%s", dep, out)
		}
	}
}

func TestList(t *testing.T) {
	src := writeLibSource(t)
	root := t.TempDir()
	if _, err := snakelib.Build(src, root); err != nil {
		t.Fatalf("Build: %v", err)
	}

	libs, err := snakelib.List([]string{root, filepath.Join(root, "missing-root")})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(libs) != 1 {
		t.Fatalf("got %d libraries, want 1: %v", len(libs), libs)
	}
	lib := libs[0]
	if lib.Name != "mathx" || lib.Version != "1.2.3" {
		t.Fatalf("unexpected listing: %+v", lib)
	}
	if lib.Size == 0 {
		t.Fatal("library size not measured")
	}
	line := lib.String()
	if !strings.Contains(line, "mathx v1.2.3") {
		t.Fatalf("unexpected listing line: %q", line)
	}
}
