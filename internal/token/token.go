package token

import "fmt"

type Kind int

const (
	Illegal Kind = iota
	EOF

	Newline // logical end of a statement line
	Indent  // increase of indentation level
	Dedent  // decrease of indentation level

	Ident   // Identifier
	Int     // Integer
	Float   // Floating-point number
	String  // String literal
	FString // Formatted string literal (f"...")

	// Keywords
	Def
	Return
	Class
	If
	Elif
	Else
	While
	For
	In
	Try
	Except
	Raise
	Pass
	Break
	Continue
	Import
	From
	And
	Or
	Not
	True
	False
	None

	// Operators
	Assign // =

	Plus        // +
	Minus       // -
	Star        // *
	Slash       // /
	DoubleSlash // //
	Percent     // %
	Power       // **

	Eq    // ==
	NotEq // !=
	Lt    // <
	LtEq  // <=
	Gt    // >
	GtEq  // >=
	NotIn // "not in", synthesized by the parser

	Arrow // ->

	// Symbols
	Comma     // ,
	Colon     // :
	Semicolon // ;
	Dot       // .
	At        // @
	LParen    // (
	RParen    // )
	LBracket  // [
	RBracket  // ]
	LBrace    // {
	RBrace    // }
)

type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Position
}

func (k Kind) String() string {
	switch k {
	case Illegal:
		return "Illegal"
	case EOF:
		return "EOF"
	case Newline:
		return "Newline"
	case Indent:
		return "Indent"
	case Dedent:
		return "Dedent"
	case Ident:
		return "Ident"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case String:
		return "String"
	case FString:
		return "FString"
	case Def:
		return "def"
	case Return:
		return "return"
	case Class:
		return "class"
	case If:
		return "if"
	case Elif:
		return "elif"
	case Else:
		return "else"
	case While:
		return "while"
	case For:
		return "for"
	case In:
		return "in"
	case Try:
		return "try"
	case Except:
		return "except"
	case Raise:
		return "raise"
	case Pass:
		return "pass"
	case Break:
		return "break"
	case Continue:
		return "continue"
	case Import:
		return "import"
	case From:
		return "from"
	case And:
		return "and"
	case Or:
		return "or"
	case Not:
		return "not"
	case True:
		return "True"
	case False:
		return "False"
	case None:
		return "None"
	case Assign:
		return "="
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Star:
		return "*"
	case Slash:
		return "/"
	case DoubleSlash:
		return "//"
	case Percent:
		return "%"
	case Power:
		return "**"
	case Eq:
		return "=="
	case NotEq:
		return "!="
	case Lt:
		return "<"
	case LtEq:
		return "<="
	case Gt:
		return ">"
	case GtEq:
		return ">="
	case NotIn:
		return "not in"
	case Arrow:
		return "->"
	case Comma:
		return ","
	case Colon:
		return ":"
	case Semicolon:
		return ";"
	case Dot:
		return "."
	case At:
		return "@"
	case LParen:
		return "("
	case RParen:
		return ")"
	case LBracket:
		return "["
	case RBracket:
		return "]"
	case LBrace:
		return "{"
	case RBrace:
		return "}"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var keywords = map[string]Kind{
	"def":      Def,
	"return":   Return,
	"class":    Class,
	"if":       If,
	"elif":     Elif,
	"else":     Else,
	"while":    While,
	"for":      For,
	"in":       In,
	"try":      Try,
	"except":   Except,
	"raise":    Raise,
	"pass":     Pass,
	"break":    Break,
	"continue": Continue,
	"import":   Import,
	"from":     From,
	"and":      And,
	"or":       Or,
	"not":      Not,
	"True":     True,
	"False":    False,
	"None":     None,
}

// LookupIdent returns the keyword kind for lit, or Ident if lit is not a keyword.
func LookupIdent(lit string) Kind {
	if k, ok := keywords[lit]; ok {
		return k
	}
	return Ident
}
