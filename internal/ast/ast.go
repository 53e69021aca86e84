package ast

import "github.com/Icarogamer2441/snake/internal/token"

// Basic interfaces

type Node interface {
	Pos() token.Position
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

// Module is the root of a canonical source tree.
type Module struct {
	Stmts []Stmt
}

func (m *Module) Pos() token.Position {
	if len(m.Stmts) > 0 {
		return m.Stmts[0].Pos()
	}
	return token.Position{}
}

// ---------- Statements ----------

// ImportStmt covers both "import a, b" and "from a import b, c".
type ImportStmt struct {
	ImportPos token.Position
	From      string   // module after "from", "" for plain imports
	Names     []string // imported names
}

func (s *ImportStmt) Pos() token.Position { return s.ImportPos }
func (s *ImportStmt) stmtNode()           {}

// Param is a single function parameter. Annotation and Default are carried as
// raw text: the annotation table is keyed on type strings, not structured
// type nodes.
type Param struct {
	Name       string
	NamePos    token.Position
	Annotation string // "" if unannotated
	Default    string // "" if no default
}

func (p *Param) Pos() token.Position { return p.NamePos }

type FunctionDef struct {
	DefPos     token.Position
	Name       string
	Decorators []string // decorator names, in source order
	Params     []*Param
	Returns    string // declared return type string, "" if none
	Body       []Stmt
}

func (s *FunctionDef) Pos() token.Position { return s.DefPos }
func (s *FunctionDef) stmtNode()           {}

type ClassDef struct {
	ClassPos token.Position
	Name     string
	Bases    []string
	Body     []Stmt
}

func (s *ClassDef) Pos() token.Position { return s.ClassPos }
func (s *ClassDef) stmtNode()           {}

// AssignStmt is an untyped assignment: target = value.
type AssignStmt struct {
	Target Expr // NameExpr, AttributeExpr or SubscriptExpr
	Value  Expr
}

func (s *AssignStmt) Pos() token.Position { return s.Target.Pos() }
func (s *AssignStmt) stmtNode()           {}

// AnnAssignStmt is an annotated assignment: name: type = value.
type AnnAssignStmt struct {
	Target     Expr
	Annotation string
	Value      Expr // may be nil for a bare declaration
}

func (s *AnnAssignStmt) Pos() token.Position { return s.Target.Pos() }
func (s *AnnAssignStmt) stmtNode()           {}

type ReturnStmt struct {
	ReturnPos token.Position
	Value     Expr // may be nil
}

func (s *ReturnStmt) Pos() token.Position { return s.ReturnPos }
func (s *ReturnStmt) stmtNode()           {}

type IfStmt struct {
	IfPos token.Position
	Cond  Expr
	Then  []Stmt
	Else  []Stmt // an elif chain nests as a single IfStmt in Else
}

func (s *IfStmt) Pos() token.Position { return s.IfPos }
func (s *IfStmt) stmtNode()           {}

type WhileStmt struct {
	WhilePos token.Position
	Cond     Expr
	Body     []Stmt
}

func (s *WhileStmt) Pos() token.Position { return s.WhilePos }
func (s *WhileStmt) stmtNode()           {}

type ForStmt struct {
	ForPos token.Position
	Vars   []string // loop variables (may destructure)
	Iter   Expr
	Body   []Stmt
}

func (s *ForStmt) Pos() token.Position { return s.ForPos }
func (s *ForStmt) stmtNode()           {}

type TryStmt struct {
	TryPos     token.Position
	Body       []Stmt
	ExceptType string // exception class name, "" for a bare except
	ExceptName string // "as" binding, "" if absent
	Handler    []Stmt
}

func (s *TryStmt) Pos() token.Position { return s.TryPos }
func (s *TryStmt) stmtNode()           {}

type RaiseStmt struct {
	RaisePos token.Position
	Exc      Expr // may be nil for a bare re-raise
}

func (s *RaiseStmt) Pos() token.Position { return s.RaisePos }
func (s *RaiseStmt) stmtNode()           {}

type PassStmt struct {
	PassPos token.Position
}

func (s *PassStmt) Pos() token.Position { return s.PassPos }
func (s *PassStmt) stmtNode()           {}

type BreakStmt struct {
	BreakPos token.Position
}

func (s *BreakStmt) Pos() token.Position { return s.BreakPos }
func (s *BreakStmt) stmtNode()           {}

type ContinueStmt struct {
	ContinuePos token.Position
}

func (s *ContinueStmt) Pos() token.Position { return s.ContinuePos }
func (s *ContinueStmt) stmtNode()           {}

type ExprStmt struct {
	Expression Expr
}

func (s *ExprStmt) Pos() token.Position { return s.Expression.Pos() }
func (s *ExprStmt) stmtNode()           {}

// ---------- Expressions ----------

type NameExpr struct {
	NamePos token.Position
	Name    string
}

func (e *NameExpr) Pos() token.Position { return e.NamePos }
func (e *NameExpr) exprNode()           {}

type IntLit struct {
	ValuePos token.Position
	Value    int64
	Raw      string
}

func (e *IntLit) Pos() token.Position { return e.ValuePos }
func (e *IntLit) exprNode()           {}

type FloatLit struct {
	ValuePos token.Position
	Value    float64
	Raw      string
}

func (e *FloatLit) Pos() token.Position { return e.ValuePos }
func (e *FloatLit) exprNode()           {}

type StringLit struct {
	ValuePos  token.Position
	Value     string
	Formatted bool // f"..." literal
}

func (e *StringLit) Pos() token.Position { return e.ValuePos }
func (e *StringLit) exprNode()           {}

type BoolLit struct {
	ValuePos token.Position
	Value    bool
}

func (e *BoolLit) Pos() token.Position { return e.ValuePos }
func (e *BoolLit) exprNode()           {}

type NoneLit struct {
	ValuePos token.Position
}

func (e *NoneLit) Pos() token.Position { return e.ValuePos }
func (e *NoneLit) exprNode()           {}

type ListLit struct {
	Lbracket token.Position
	Elements []Expr
}

func (e *ListLit) Pos() token.Position { return e.Lbracket }
func (e *ListLit) exprNode()           {}

type TupleLit struct {
	Lparen   token.Position
	Elements []Expr
}

func (e *TupleLit) Pos() token.Position { return e.Lparen }
func (e *TupleLit) exprNode()           {}

type DictLit struct {
	Lbrace token.Position
	Keys   []Expr
	Values []Expr
}

func (e *DictLit) Pos() token.Position { return e.Lbrace }
func (e *DictLit) exprNode()           {}

type Keyword struct {
	Name  string
	Value Expr
}

type CallExpr struct {
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
}

func (e *CallExpr) Pos() token.Position { return e.Func.Pos() }
func (e *CallExpr) exprNode()           {}

type AttributeExpr struct {
	X       Expr
	Name    string
	NamePos token.Position
}

func (e *AttributeExpr) Pos() token.Position { return e.X.Pos() }
func (e *AttributeExpr) exprNode()           {}

type SubscriptExpr struct {
	X     Expr
	Index Expr
}

func (e *SubscriptExpr) Pos() token.Position { return e.X.Pos() }
func (e *SubscriptExpr) exprNode()           {}

type UnaryExpr struct {
	OpPos token.Position
	Op    token.Kind // Minus, Plus or Not
	X     Expr
}

func (e *UnaryExpr) Pos() token.Position { return e.OpPos }
func (e *UnaryExpr) exprNode()           {}

type BinaryExpr struct {
	Op token.Kind
	L  Expr
	R  Expr
}

func (e *BinaryExpr) Pos() token.Position { return e.L.Pos() }
func (e *BinaryExpr) exprNode()           {}

// BoolExpr is an "and"/"or" chain.
type BoolExpr struct {
	Op     token.Kind // And or Or
	Values []Expr
}

func (e *BoolExpr) Pos() token.Position { return e.Values[0].Pos() }
func (e *BoolExpr) exprNode()           {}

// CompareExpr is a comparison chain: L op0 R0 op1 R1 ...
type CompareExpr struct {
	L   Expr
	Ops []token.Kind
	Rs  []Expr
}

func (e *CompareExpr) Pos() token.Position { return e.L.Pos() }
func (e *CompareExpr) exprNode()           {}
