package lexer_test

import (
	"testing"

	"github.com/Icarogamer2441/snake/internal/lexer"
	"github.com/Icarogamer2441/snake/internal/token"
)

func TestNextToken_BasicProgram(t *testing.T) {
	input := "def add(a: int, b: int) -> int:\n" +
		"    return a + b\n"

	tests := []struct {
		kind token.Kind
		lit  string
	}{
		{token.Def, "def"},
		{token.Ident, "add"},
		{token.LParen, "("},
		{token.Ident, "a"},
		{token.Colon, ":"},
		{token.Ident, "int"},
		{token.Comma, ","},
		{token.Ident, "b"},
		{token.Colon, ":"},
		{token.Ident, "int"},
		{token.RParen, ")"},
		{token.Arrow, "->"},
		{token.Ident, "int"},
		{token.Colon, ":"},
		{token.Newline, ""},
		{token.Indent, ""},
		{token.Return, "return"},
		{token.Ident, "a"},
		{token.Plus, "+"},
		{token.Ident, "b"},
		{token.Newline, ""},
		{token.Dedent, ""},
		{token.EOF, ""},
	}

	l := lexer.New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.kind {
			t.Fatalf("tests[%d]: kind = %s, want %s (lexeme %q)", i, tok.Kind, tt.kind, tok.Lexeme)
		}
		if tt.lit != "" && tok.Lexeme != tt.lit {
			t.Fatalf("tests[%d]: lexeme = %q, want %q", i, tok.Lexeme, tt.lit)
		}
	}
	if errs := l.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected lexer errors: %v", errs)
	}
}

func TestNextToken_Operators(t *testing.T) {
	input := "a == b != c <= d >= e ** f // g\n"

	want := []token.Kind{
		token.Ident, token.Eq, token.Ident, token.NotEq, token.Ident,
		token.LtEq, token.Ident, token.GtEq, token.Ident,
		token.Power, token.Ident, token.DoubleSlash, token.Ident,
		token.Newline, token.EOF,
	}

	l := lexer.New(input)
	for i, k := range want {
		tok := l.NextToken()
		if tok.Kind != k {
			t.Fatalf("token %d: kind = %s, want %s", i, tok.Kind, k)
		}
	}
}

func TestDedentBurst(t *testing.T) {
	input := "if a:\n" +
		"    if b:\n" +
		"        pass\n" +
		"c = 1\n"

	var kinds []token.Kind
	l := lexer.New(input)
	for {
		tok := l.NextToken()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}

	// The line after the nested blocks closes both levels at once.
	dedents := 0
	for _, k := range kinds {
		if k == token.Dedent {
			dedents++
		}
	}
	if dedents != 2 {
		t.Fatalf("got %d dedents, want 2 (stream: %v)", dedents, kinds)
	}
}

func TestBracketsSuppressLayout(t *testing.T) {
	input := "xs = [1,\n" +
		"      2,\n" +
		"      3]\n"

	l := lexer.New(input)
	for {
		tok := l.NextToken()
		if tok.Kind == token.Indent || tok.Kind == token.Dedent {
			t.Fatalf("layout token %s inside brackets", tok.Kind)
		}
		if tok.Kind == token.EOF {
			break
		}
	}
	if errs := l.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected lexer errors: %v", errs)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
		value string
	}{
		{`"hello"`, token.String, "hello"},
		{`'hi'`, token.String, "hi"},
		{`"a\nb"`, token.String, "a\nb"},
		{`f"n={n}"`, token.FString, "n={n}"},
		{`""`, token.String, ""},
		{"'''multi\nline'''", token.String, "multi\nline"},
	}
	for _, tt := range tests {
		l := lexer.New(tt.input + "\n")
		tok := l.NextToken()
		if tok.Kind != tt.kind {
			t.Errorf("%q: kind = %s, want %s", tt.input, tok.Kind, tt.kind)
		}
		if tok.Lexeme != tt.value {
			t.Errorf("%q: value = %q, want %q", tt.input, tok.Lexeme, tt.value)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	l := lexer.New("x = \"oops\n")
	for {
		tok := l.NextToken()
		if tok.Kind == token.EOF {
			break
		}
	}
	if len(l.Errors()) == 0 {
		t.Fatal("expected an unterminated-string error")
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"42", token.Int},
		{"3.14", token.Float},
		{"1e9", token.Float},
		{"2.5e-3", token.Float},
	}
	for _, tt := range tests {
		l := lexer.New(tt.input + "\n")
		tok := l.NextToken()
		if tok.Kind != tt.kind {
			t.Errorf("%q: kind = %s, want %s", tt.input, tok.Kind, tt.kind)
		}
		if tok.Lexeme != tt.input {
			t.Errorf("%q: lexeme = %q", tt.input, tok.Lexeme)
		}
	}
}

func TestCommentsAndBlankLinesSkipped(t *testing.T) {
	input := "# leading comment\n" +
		"\n" +
		"x = 1  # trailing\n"

	l := lexer.New(input)
	tok := l.NextToken()
	if tok.Kind != token.Ident || tok.Lexeme != "x" {
		t.Fatalf("first token = %s %q, want Ident \"x\"", tok.Kind, tok.Lexeme)
	}
	if tok.Pos.Line != 3 {
		t.Fatalf("line = %d, want 3", tok.Pos.Line)
	}
}
