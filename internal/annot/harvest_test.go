package annot_test

import (
	"testing"

	"github.com/Icarogamer2441/snake/internal/annot"
)

func TestHarvestFunctionSignature(t *testing.T) {
	src := "def area(w: float, h: float = 1.0) -> float:\n" +
		"    return w * h\n"
	tbl := annot.NewTable()
	annot.Harvest(src, tbl)

	sig, ok := tbl.Func("area")
	if !ok {
		t.Fatal("signature not harvested")
	}
	if sig.Return != "float" {
		t.Errorf("return = %q, want float", sig.Return)
	}
	if len(sig.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(sig.Params))
	}
	if sig.Params[0].Name != "w" || sig.Params[0].Type != "float" {
		t.Errorf("param 0 = %+v", sig.Params[0])
	}
	// The default fragment stays in the harvested type text; the checker
	// strips it when comparing.
	if sig.Params[1].Type != "float = 1.0" {
		t.Errorf("param 1 type = %q", sig.Params[1].Type)
	}
}

func TestHarvestTopLevelBinding(t *testing.T) {
	src := "limit: int = 100\n" +
		"def f(inner: str = \"x\") -> None:\n" +
		"    local: int = 5\n"
	tbl := annot.NewTable()
	annot.Harvest(src, tbl)

	v, ok := tbl.Var("limit")
	if !ok || v.Type != "int" {
		t.Fatalf("binding not harvested: %+v", v)
	}
	// Indented bindings are function-local and are not harvested.
	if _, ok := tbl.Var("local"); ok {
		t.Fatal("function-local binding must not be harvested")
	}
}

func TestHarvestGenericParams(t *testing.T) {
	src := "def merge(a: dict[str, int], b: dict[str, int]) -> dict[str, int]:\n" +
		"    return a\n"
	tbl := annot.NewTable()
	annot.Harvest(src, tbl)

	sig, ok := tbl.Func("merge")
	if !ok {
		t.Fatal("signature not harvested")
	}
	// The parameter list splits on top-level commas only; the comma inside
	// the brackets stays part of the type.
	if len(sig.Params) != 2 {
		t.Fatalf("got %d params, want 2: %+v", len(sig.Params), sig.Params)
	}
	if sig.Params[0].Type != "dict[str, int]" {
		t.Errorf("param 0 type = %q", sig.Params[0].Type)
	}
	if sig.Return != "dict[str, int]" {
		t.Errorf("return = %q", sig.Return)
	}
}

func TestLastWriteWins(t *testing.T) {
	src := "def f(a: int) -> int:\n" +
		"    return a\n" +
		"def f(a: str, b: str) -> str:\n" +
		"    return a\n"
	tbl := annot.NewTable()
	annot.Harvest(src, tbl)

	sig, ok := tbl.Func("f")
	if !ok {
		t.Fatal("signature not harvested")
	}
	// Later declarations overwrite earlier ones silently.
	if len(sig.Params) != 2 || sig.Return != "str" {
		t.Fatalf("overwrite policy violated: %+v", sig)
	}
}

func TestDefineOverwritesAcrossKinds(t *testing.T) {
	tbl := annot.NewTable()
	tbl.Define("X", &annot.VarSig{Type: "int"})
	tbl.Define("X", &annot.RecordDef{Fields: []annot.FieldInfo{{Name: "a", Type: "int"}}})

	if _, ok := tbl.Var("X"); ok {
		t.Fatal("old entry survived the overwrite")
	}
	if _, ok := tbl.Record("X"); !ok {
		t.Fatal("new entry missing")
	}
	if tbl.Len() != 1 {
		t.Fatalf("table has %d entries, want 1", tbl.Len())
	}
}

func TestSplitTopLevel(t *testing.T) {
	got := annot.SplitTopLevel("a: dict[str, int], b: tuple[int, int], c", ',')
	if len(got) != 3 {
		t.Fatalf("got %d parts, want 3: %v", len(got), got)
	}
}
