package lexer

import (
	"fmt"
	"unicode"

	"github.com/Icarogamer2441/snake/internal/token"
)

// Lexer tokenizes canonical (fully lowered) host text. The host grammar is
// indentation-sensitive, so the lexer synthesizes Newline, Indent and Dedent
// tokens from the physical layout. Inside (), [] and {} lines join implicitly
// and no layout tokens are produced.
type Lexer struct {
	input []rune

	pos int

	ch   rune
	line int
	col  int

	pending      []token.Token // queued layout tokens (dedent bursts, final newline)
	indents      []int         // indentation stack, always starts with 0
	atLineStart  bool
	bracketDepth int

	errors []string
}

func New(input string) *Lexer {
	l := &Lexer{
		input:       []rune(input),
		line:        1,
		col:         0,
		indents:     []int{0},
		atLineStart: true,
	}
	l.readChar()
	return l
}

func (l *Lexer) NextToken() token.Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}

	if l.atLineStart && l.bracketDepth == 0 {
		if tok, ok := l.handleLineStart(); ok {
			return tok
		}
	}

	l.skipInlineSpace()

	// Comments run to end of line.
	if l.ch == '#' {
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
	}

	pos := token.Position{
		Line:   l.line,
		Column: l.col,
	}

	ch := l.ch

	// EOF: close the last logical line, then unwind the indent stack.
	if ch == 0 {
		for len(l.indents) > 1 {
			l.indents = l.indents[:len(l.indents)-1]
			l.pending = append(l.pending, token.Token{Kind: token.Dedent, Pos: pos})
		}
		l.pending = append(l.pending, token.Token{Kind: token.EOF, Pos: pos})
		return token.Token{Kind: token.Newline, Pos: pos}
	}

	// Physical newline
	if ch == '\n' {
		l.readChar()
		if l.bracketDepth > 0 {
			return l.NextToken()
		}
		l.atLineStart = true
		return token.Token{Kind: token.Newline, Pos: pos}
	}

	// Numbers
	if isDigit(ch) {
		lit := l.readNumber()
		kind := token.Int
		for _, r := range lit {
			if r == '.' || r == 'e' || r == 'E' {
				kind = token.Float
				break
			}
		}
		return token.Token{Kind: kind, Lexeme: lit, Pos: pos}
	}

	// Formatted strings: f"..." / f'...'
	if ch == 'f' && (l.peekChar() == '"' || l.peekChar() == '\'') {
		l.readChar() // consume 'f'
		lit, ok := l.readString()
		if !ok {
			return token.Token{Kind: token.Illegal, Lexeme: "", Pos: pos}
		}
		return token.Token{Kind: token.FString, Lexeme: lit, Pos: pos}
	}

	// Identifiers / keywords
	if isLetter(ch) {
		lit := l.readIdentifier()
		return token.Token{Kind: token.LookupIdent(lit), Lexeme: lit, Pos: pos}
	}

	// Strings
	if ch == '"' || ch == '\'' {
		lit, ok := l.readString()
		if !ok {
			return token.Token{Kind: token.Illegal, Lexeme: "", Pos: pos}
		}
		return token.Token{Kind: token.String, Lexeme: lit, Pos: pos}
	}

	return l.nextOperatorToken(pos)
}

// handleLineStart measures the indentation of the upcoming line and queues
// Indent/Dedent tokens. Blank and comment-only lines produce no tokens.
func (l *Lexer) handleLineStart() (token.Token, bool) {
	for {
		width := 0
		for l.ch == ' ' || l.ch == '\t' {
			if l.ch == '\t' {
				width += 8 - width%8
			} else {
				width++
			}
			l.readChar()
		}

		// Skip blank and comment-only lines entirely.
		if l.ch == '\n' {
			l.readChar()
			continue
		}
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == 0 {
			l.atLineStart = false
			return token.Token{}, false
		}

		l.atLineStart = false
		pos := token.Position{Line: l.line, Column: l.col}
		cur := l.indents[len(l.indents)-1]

		if width > cur {
			l.indents = append(l.indents, width)
			return token.Token{Kind: token.Indent, Pos: pos}, true
		}
		if width < cur {
			var dedents []token.Token
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
				l.indents = l.indents[:len(l.indents)-1]
				dedents = append(dedents, token.Token{Kind: token.Dedent, Pos: pos})
			}
			if l.indents[len(l.indents)-1] != width {
				l.errorf(pos, "inconsistent indentation")
			}
			l.pending = append(l.pending, dedents[1:]...)
			return dedents[0], true
		}
		return token.Token{}, false
	}
}

func (l *Lexer) nextOperatorToken(pos token.Position) token.Token {
	ch := l.ch

	var kind token.Kind
	var lexeme string

	switch ch {
	case ';':
		kind = token.Semicolon
		lexeme = ";"
	case ',':
		kind = token.Comma
		lexeme = ","
	case ':':
		kind = token.Colon
		lexeme = ":"
	case '.':
		kind = token.Dot
		lexeme = "."
	case '@':
		kind = token.At
		lexeme = "@"
	case '(':
		kind = token.LParen
		lexeme = "("
		l.bracketDepth++
	case ')':
		kind = token.RParen
		lexeme = ")"
		l.bracketDepth--
	case '[':
		kind = token.LBracket
		lexeme = "["
		l.bracketDepth++
	case ']':
		kind = token.RBracket
		lexeme = "]"
		l.bracketDepth--
	case '{':
		kind = token.LBrace
		lexeme = "{"
		l.bracketDepth++
	case '}':
		kind = token.RBrace
		lexeme = "}"
		l.bracketDepth--
	case '+':
		kind = token.Plus
		lexeme = "+"
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			kind = token.Arrow
			lexeme = "->"
		} else {
			kind = token.Minus
			lexeme = "-"
		}
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			kind = token.Power
			lexeme = "**"
		} else {
			kind = token.Star
			lexeme = "*"
		}
	case '/':
		if l.peekChar() == '/' {
			l.readChar()
			kind = token.DoubleSlash
			lexeme = "//"
		} else {
			kind = token.Slash
			lexeme = "/"
		}
	case '%':
		kind = token.Percent
		lexeme = "%"
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			kind = token.Eq
			lexeme = "=="
		} else {
			kind = token.Assign
			lexeme = "="
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			kind = token.NotEq
			lexeme = "!="
		} else {
			l.errorf(pos, "unexpected character '!'")
			kind = token.Illegal
			lexeme = "!"
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			kind = token.LtEq
			lexeme = "<="
		} else {
			kind = token.Lt
			lexeme = "<"
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			kind = token.GtEq
			lexeme = ">="
		} else {
			kind = token.Gt
			lexeme = ">"
		}
	default:
		l.errorf(pos, fmt.Sprintf("unexpected character %q", ch))
		kind = token.Illegal
		lexeme = string(ch)
	}

	l.readChar()
	return token.Token{Kind: kind, Lexeme: lexeme, Pos: pos}
}

func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
		return
	}

	l.ch = l.input[l.pos]
	l.pos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) skipInlineSpace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
	// Backslash line continuation
	if l.ch == '\\' && l.peekChar() == '\n' {
		l.readChar()
		l.readChar()
		l.skipInlineSpace()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos - 1 // current rune is already in l.ch
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return string(l.input[start : l.pos-1])
}

func (l *Lexer) readNumber() string {
	start := l.pos - 1
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return string(l.input[start : l.pos-1])
}

// readString consumes a quoted string, returning its unquoted content.
// The opening quote is the current rune. Triple-quoted strings may span lines.
func (l *Lexer) readString() (string, bool) {
	delim := l.ch
	startPos := token.Position{Line: l.line, Column: l.col}
	l.readChar() // consume opening quote

	triple := false
	if l.ch == delim && l.peekChar() == delim {
		l.readChar()
		l.readChar()
		triple = true
	} else if l.ch == delim {
		// Empty string.
		l.readChar()
		return "", true
	}

	var out []rune
	for {
		if l.ch == 0 {
			l.errorf(startPos, "unterminated string literal")
			return "", false
		}
		if !triple && l.ch == '\n' {
			l.errorf(startPos, "unterminated string literal")
			return "", false
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '\\':
				out = append(out, '\\')
			case '\'':
				out = append(out, '\'')
			case '"':
				out = append(out, '"')
			case '0':
				out = append(out, 0)
			default:
				l.errorf(startPos, fmt.Sprintf("unknown escape sequence \\%c", l.ch))
			}
			l.readChar()
			continue
		}
		if l.ch == delim {
			if !triple {
				l.readChar()
				return string(out), true
			}
			// Count consecutive delimiters; three close the string.
			run := 0
			for l.ch == delim && run < 3 {
				run++
				l.readChar()
			}
			if run == 3 {
				return string(out), true
			}
			for i := 0; i < run; i++ {
				out = append(out, delim)
			}
			continue
		}
		out = append(out, l.ch)
		l.readChar()
	}
}

func (l *Lexer) errorf(pos token.Position, msg string) {
	l.errors = append(l.errors, fmt.Sprintf("%d:%d: %s", pos.Line, pos.Column, msg))
}

func (l *Lexer) Errors() []string {
	return l.errors
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return unicode.IsDigit(ch)
}
