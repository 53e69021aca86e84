package compile_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/Icarogamer2441/snake/internal/compile"
	"github.com/Icarogamer2441/snake/internal/lower"
)

func mustCompile(t *testing.T, src string) *compile.Result {
	t.Helper()
	r, err := compile.Compile(src, "")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return r
}

func TestStructRoundTrip(t *testing.T) {
	src := "struct Point:\n" +
		"    x: int;\n" +
		"    y: int;\n" +
		"\n" +
		"def origin_distance(p: Point) -> int:\n" +
		"    return p.x + p.y\n" +
		"\n" +
		"p = Point(1, 2)\n" +
		"n: int = p.x\n"
	r := mustCompile(t, src)

	if diags := compile.Check(r); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestStructConstructorArity(t *testing.T) {
	src := "struct Point:\n" +
		"    x: int;\n" +
		"    y: int;\n" +
		"\n" +
		"p = Point(1)\n"
	r := mustCompile(t, src)

	diags := compile.Check(r)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
	if !strings.Contains(diags[0].Msg, "Constructor 'Point' takes 2 arguments") {
		t.Fatalf("unexpected diagnostic: %q", diags[0].Msg)
	}
}

func TestConstantImmutability(t *testing.T) {
	src := "const N: int = 5;\n" +
		"N = 6;\n"
	r := mustCompile(t, src)

	diags := compile.Check(r)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
	if !strings.Contains(diags[0].Msg, "Cannot reassign constant 'N'") {
		t.Fatalf("unexpected diagnostic: %q", diags[0].Msg)
	}
}

func TestQuotingSafetyEndToEnd(t *testing.T) {
	src := `x = "a && b";` + "\n"
	r := mustCompile(t, src)
	if !strings.Contains(r.Source, `"a && b"`) {
		t.Fatalf("string literal rewritten:\n%s", r.Source)
	}
}

func TestEnumOrdinalQuirk(t *testing.T) {
	src := "enum E: A, B: int = 10, C\n" +
		"\n" +
		"e = E.A\n"
	r := mustCompile(t, src)

	enum, ok := r.Table.Enum("E")
	if !ok {
		t.Fatal("enum not harvested")
	}
	if got := enum.Members; len(got) != 3 {
		t.Fatalf("members = %v", got)
	}
	// Index-based assignment over the combined list: A takes index 1, C
	// takes index 3, B keeps its explicit 10.
	for _, want := range []string{"A = 1", "B = 10", "C = 3"} {
		if !strings.Contains(r.Source, want) {
			t.Errorf("lowered source missing %q:\n%s", want, r.Source)
		}
	}
	if diags := compile.Check(r); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestMissingReturnThroughPipeline(t *testing.T) {
	src := "def f() -> int:\n" +
		"    x = 1\n"
	r := mustCompile(t, src)
	diags := compile.Check(r)
	if len(diags) != 1 || !strings.Contains(diags[0].Msg, "missing a return statement") {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestLoweringErrorAborts(t *testing.T) {
	_, err := compile.Compile(`import "missing.sk";`+"\n", "")
	if err == nil {
		t.Fatal("expected a lowering error")
	}
	var lerr *lower.Error
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *lower.Error, got %T", err)
	}
}

func TestSyntaxErrorAborts(t *testing.T) {
	_, err := compile.Compile("def broken(:\n    pass\n", "")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	var serr *compile.SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *compile.SyntaxError, got %T", err)
	}
}

func TestExportedMainMarked(t *testing.T) {
	src := "export def main() -> None:\n" +
		"    pass\n"
	r := mustCompile(t, src)
	if !r.Table.HasMain {
		t.Fatal("exported main not marked as entry point")
	}
}
