package types_test

import (
	"strings"
	"testing"

	"github.com/Icarogamer2441/snake/internal/annot"
	"github.com/Icarogamer2441/snake/internal/lexer"
	"github.com/Icarogamer2441/snake/internal/parser"
	"github.com/Icarogamer2441/snake/internal/types"
)

func checkSource(t *testing.T, src string, setup func(*annot.Table)) []types.Error {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	mod := p.ParseModule()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	tbl := annot.NewTable()
	annot.Harvest(src, tbl)
	if setup != nil {
		setup(tbl)
	}
	return types.Check(mod, tbl)
}

func wantOne(t *testing.T, errs []types.Error, substr string) {
	t.Helper()
	if len(errs) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Msg, substr) {
		t.Fatalf("diagnostic %q does not contain %q", errs[0].Msg, substr)
	}
}

func TestCompatible(t *testing.T) {
	tbl := annot.NewTable()
	tbl.Define("Point", &annot.RecordDef{Fields: []annot.FieldInfo{
		{Name: "x", Type: "int"},
		{Name: "y", Type: "int"},
	}})

	tests := []struct {
		actual, expected string
		want             bool
	}{
		{"int", "int", true},
		{"int", "any", true},
		{"any", "int", true},
		{"int", "float", true},
		{"float", "int", false},
		{"None", "Optional[str]", true},
		{"None", "str", false},
		{"list[int]", "list", true},
		{"list", "list[int]", true},
		{"list[int]", "list[float]", true},
		{"list[str]", "list[int]", false},
		{"list[int]", "list[any]", true},
		{"list[list[int]]", "list[list[float]]", true},
		{"dict[str, int]", "dict[str, int]", true},
		{"dict[str, list[int]]", "dict[str, list[str]]", false},
		{"dict[int, int]", "dict[str, int]", false},
		{"tuple[int, str]", "tuple[int, str]", true},
		{"tuple[int, str]", "tuple[int, str, int]", false},
		{"list[int]", "dict[str, int]", false},
		{"Point", "Point", true},
		{"Point", "Vector", false},
		{"str", "int", false},
	}
	for _, tt := range tests {
		if got := types.Compatible(tt.actual, tt.expected, tbl); got != tt.want {
			t.Errorf("Compatible(%q, %q) = %v, want %v", tt.actual, tt.expected, got, tt.want)
		}
	}
}

func TestReassignmentKeepsFirstType(t *testing.T) {
	src := "def f() -> None:\n" +
		"    x = 5\n" +
		"    x = \"no\"\n"
	errs := checkSource(t, src, nil)
	wantOne(t, errs, "Variable 'x' has type int")
}

func TestAnnotatedAssignMismatch(t *testing.T) {
	src := "def f() -> None:\n" +
		"    x: int = \"no\"\n"
	errs := checkSource(t, src, nil)
	wantOne(t, errs, "Variable 'x' has type int")
}

func TestIntWidensToFloat(t *testing.T) {
	src := "def f() -> None:\n" +
		"    x: float = 3\n"
	if errs := checkSource(t, src, nil); len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
}

func TestMissingReturn(t *testing.T) {
	src := "def add(a: int, b: int) -> int:\n" +
		"    c = a + b\n"
	errs := checkSource(t, src, nil)
	wantOne(t, errs, "Function 'add' is missing a return statement")
}

func TestReturnInConditionalBranchSatisfies(t *testing.T) {
	src := "def f(flag: bool) -> int:\n" +
		"    if flag:\n" +
		"        return 1\n"
	if errs := checkSource(t, src, nil); len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
}

func TestReturnTypeMismatch(t *testing.T) {
	src := "def f() -> int:\n" +
		"    return \"no\"\n"
	errs := checkSource(t, src, nil)
	wantOne(t, errs, "Function 'f' returns str, but its return type is int")
}

func TestReturnOutsideFunction(t *testing.T) {
	errs := checkSource(t, "return 1\n", nil)
	wantOne(t, errs, "Return statement outside of function")
}

func TestConstantReassignment(t *testing.T) {
	src := "N: int = 5\n" +
		"N = 6\n"
	errs := checkSource(t, src, func(tbl *annot.Table) {
		tbl.Define("N", &annot.VarSig{Type: "int", IsConstant: true})
	})
	// Exactly one diagnostic: the constant violation, with no trailing
	// type-mismatch report even though the value happens to be compatible.
	wantOne(t, errs, "Cannot reassign constant 'N'")
}

func TestCallArity(t *testing.T) {
	src := "def add(a: int, b: int) -> int:\n" +
		"    return a + b\n" +
		"add(1, 2, 3)\n"
	errs := checkSource(t, src, nil)
	wantOne(t, errs, "Function 'add' takes 2 arguments, but 3 were given")
}

func TestFewerArgumentsTolerated(t *testing.T) {
	src := "def repeat(text: str, times: int = 1) -> str:\n" +
		"    return text * times\n" +
		"repeat(\"hi\")\n"
	if errs := checkSource(t, src, nil); len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
}

func TestArgumentTypeMismatch(t *testing.T) {
	src := "def add(a: int, b: int) -> int:\n" +
		"    return a + b\n" +
		"add(\"x\", 2)\n"
	errs := checkSource(t, src, nil)
	wantOne(t, errs, "Argument 1 to function 'add' has type str, but parameter 'a' has type int")
}

func TestUnknownKeywordArgument(t *testing.T) {
	src := "def add(a: int, b: int) -> int:\n" +
		"    return a + b\n" +
		"add(a=1, c=2)\n"
	errs := checkSource(t, src, nil)
	wantOne(t, errs, "Unknown keyword argument 'c' in call to 'add'")
}

func TestConstructorArity(t *testing.T) {
	src := "p = Point(1)\n"
	errs := checkSource(t, src, func(tbl *annot.Table) {
		tbl.Define("Point", &annot.RecordDef{Fields: []annot.FieldInfo{
			{Name: "x", Type: "int"},
			{Name: "y", Type: "int"},
		}})
	})
	wantOne(t, errs, "Constructor 'Point' takes 2 arguments, but 1 were given")
}

func TestUnknownRecordField(t *testing.T) {
	src := "p = Point(1, 2)\n" +
		"q = p.z\n"
	errs := checkSource(t, src, func(tbl *annot.Table) {
		tbl.Define("Point", &annot.RecordDef{Fields: []annot.FieldInfo{
			{Name: "x", Type: "int"},
			{Name: "y", Type: "int"},
		}})
	})
	wantOne(t, errs, "Type 'Point' has no field 'z'")
}

func TestRecordFieldType(t *testing.T) {
	src := "p = Point(1, 2)\n" +
		"n: int = p.x\n"
	errs := checkSource(t, src, func(tbl *annot.Table) {
		tbl.Define("Point", &annot.RecordDef{Fields: []annot.FieldInfo{
			{Name: "x", Type: "int"},
			{Name: "y", Type: "int"},
		}})
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
}

func TestEnumMemberAccess(t *testing.T) {
	enum := &annot.EnumDef{
		Members: []string{"RED", "GREEN"},
		Values:  map[string]string{},
		Types:   map[string]string{},
	}
	src := "c = Color.RED\n" +
		"d = Color.BLUE\n"
	errs := checkSource(t, src, func(tbl *annot.Table) {
		tbl.Define("Color", enum)
	})
	wantOne(t, errs, "Enum 'Color' has no member 'BLUE'")
}

func TestIndexedAssignMapping(t *testing.T) {
	src := "d: dict[str, int] = {}\n" +
		"d[1] = \"v\"\n"
	errs := checkSource(t, src, nil)
	if len(errs) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Msg, "Dictionary key has type int, but expected str") {
		t.Errorf("unexpected key diagnostic: %q", errs[0].Msg)
	}
	if !strings.Contains(errs[1].Msg, "Dictionary value has type str, but expected int") {
		t.Errorf("unexpected value diagnostic: %q", errs[1].Msg)
	}
}

func TestIndexedAssignSequence(t *testing.T) {
	src := "xs: list[int] = [1, 2]\n" +
		"xs[0] = \"no\"\n"
	errs := checkSource(t, src, nil)
	wantOne(t, errs, "List element has type str, but expected int")
}

func TestBuiltinMethodTypes(t *testing.T) {
	src := "s = \"hi\".upper()\n" +
		"parts: list[str] = \"a,b\".split(\",\")\n" +
		"n: int = s\n"
	errs := checkSource(t, src, nil)
	wantOne(t, errs, "Variable 'n' has type int, but is assigned a value of type str")
}

func TestLoopVariableElementType(t *testing.T) {
	src := "def total(xs: list[int]) -> int:\n" +
		"    acc = 0\n" +
		"    for x in xs:\n" +
		"        acc = acc + x\n" +
		"    return acc\n"
	if errs := checkSource(t, src, nil); len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
}

func TestListLiteralParameterInference(t *testing.T) {
	// A mixed literal falls back to bare list, which still flows into
	// list[int]; only a uniformly wrong literal is rejected.
	src := "xs: list[int] = [1, \"two\", 3]\n"
	if errs := checkSource(t, src, nil); len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	src = "ys: list[int] = [\"a\", \"b\"]\n"
	errs := checkSource(t, src, nil)
	if len(errs) == 0 {
		t.Fatalf("expected a diagnostic for list[str] into list[int]")
	}
	if !strings.Contains(errs[0].Msg, "Variable 'ys' has type list[int]") {
		t.Fatalf("unexpected diagnostic: %q", errs[0].Msg)
	}
}

func TestMalformedAnnotation(t *testing.T) {
	src := "def f() -> None:\n" +
		"    x: list[int = 5\n"
	errs := checkSource(t, src, nil)
	wantOne(t, errs, "Malformed type annotation")
}

func TestDiagnosticsAccumulate(t *testing.T) {
	src := "def f() -> int:\n" +
		"    x: int = \"a\"\n" +
		"    y: str = 2\n"
	errs := checkSource(t, src, nil)
	if len(errs) != 3 {
		t.Fatalf("got %d diagnostics, want 3: %v", len(errs), errs)
	}
}
