package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump returns a human-readable representation of the tree, for debugging
// and the CLI's -ast flag.
func Dump(node Node) string {
	var sb strings.Builder
	fprintNode(&sb, node, 0)
	return sb.String()
}

func fprintNode(w io.Writer, n Node, indent int) {
	if n == nil {
		return
	}

	ind := strings.Repeat("  ", indent)

	switch n := n.(type) {
	case *Module:
		fmt.Fprintf(w, "%sModule\n", ind)
		for _, s := range n.Stmts {
			fprintNode(w, s, indent+1)
		}

	case *ImportStmt:
		if n.From != "" {
			fmt.Fprintf(w, "%sImport from=%s names=%s\n", ind, n.From, strings.Join(n.Names, ", "))
		} else {
			fmt.Fprintf(w, "%sImport names=%s\n", ind, strings.Join(n.Names, ", "))
		}

	case *FunctionDef:
		fmt.Fprintf(w, "%sFunctionDef name=%s returns=%q\n", ind, n.Name, n.Returns)
		for _, d := range n.Decorators {
			fmt.Fprintf(w, "%s  Decorator @%s\n", ind, d)
		}
		for _, p := range n.Params {
			fprintNode(w, p, indent+1)
		}
		for _, s := range n.Body {
			fprintNode(w, s, indent+1)
		}

	case *Param:
		fmt.Fprintf(w, "%sParam name=%s annotation=%q default=%q\n", ind, n.Name, n.Annotation, n.Default)

	case *ClassDef:
		fmt.Fprintf(w, "%sClassDef name=%s bases=%s\n", ind, n.Name, strings.Join(n.Bases, ", "))
		for _, s := range n.Body {
			fprintNode(w, s, indent+1)
		}

	case *AssignStmt:
		fmt.Fprintf(w, "%sAssign\n", ind)
		fprintNode(w, n.Target, indent+1)
		fprintNode(w, n.Value, indent+1)

	case *AnnAssignStmt:
		fmt.Fprintf(w, "%sAnnAssign annotation=%q\n", ind, n.Annotation)
		fprintNode(w, n.Target, indent+1)
		fprintNode(w, n.Value, indent+1)

	case *ReturnStmt:
		fmt.Fprintf(w, "%sReturn\n", ind)
		fprintNode(w, n.Value, indent+1)

	case *IfStmt:
		fmt.Fprintf(w, "%sIf\n", ind)
		fprintNode(w, n.Cond, indent+1)
		for _, s := range n.Then {
			fprintNode(w, s, indent+1)
		}
		if len(n.Else) > 0 {
			fmt.Fprintf(w, "%s  Else:\n", ind)
			for _, s := range n.Else {
				fprintNode(w, s, indent+2)
			}
		}

	case *WhileStmt:
		fmt.Fprintf(w, "%sWhile\n", ind)
		fprintNode(w, n.Cond, indent+1)
		for _, s := range n.Body {
			fprintNode(w, s, indent+1)
		}

	case *ForStmt:
		fmt.Fprintf(w, "%sFor vars=%s\n", ind, strings.Join(n.Vars, ", "))
		fprintNode(w, n.Iter, indent+1)
		for _, s := range n.Body {
			fprintNode(w, s, indent+1)
		}

	case *TryStmt:
		fmt.Fprintf(w, "%sTry except=%q as=%q\n", ind, n.ExceptType, n.ExceptName)
		for _, s := range n.Body {
			fprintNode(w, s, indent+1)
		}
		fmt.Fprintf(w, "%s  Handler:\n", ind)
		for _, s := range n.Handler {
			fprintNode(w, s, indent+2)
		}

	case *RaiseStmt:
		fmt.Fprintf(w, "%sRaise\n", ind)
		fprintNode(w, n.Exc, indent+1)

	case *PassStmt:
		fmt.Fprintf(w, "%sPass\n", ind)
	case *BreakStmt:
		fmt.Fprintf(w, "%sBreak\n", ind)
	case *ContinueStmt:
		fmt.Fprintf(w, "%sContinue\n", ind)

	case *ExprStmt:
		fmt.Fprintf(w, "%sExprStmt\n", ind)
		fprintNode(w, n.Expression, indent+1)

	case *NameExpr:
		fmt.Fprintf(w, "%sName %s\n", ind, n.Name)
	case *IntLit:
		fmt.Fprintf(w, "%sInt %d\n", ind, n.Value)
	case *FloatLit:
		fmt.Fprintf(w, "%sFloat %s\n", ind, n.Raw)
	case *StringLit:
		if n.Formatted {
			fmt.Fprintf(w, "%sFString %q\n", ind, n.Value)
		} else {
			fmt.Fprintf(w, "%sString %q\n", ind, n.Value)
		}
	case *BoolLit:
		fmt.Fprintf(w, "%sBool %v\n", ind, n.Value)
	case *NoneLit:
		fmt.Fprintf(w, "%sNone\n", ind)

	case *ListLit:
		fmt.Fprintf(w, "%sList\n", ind)
		for _, e := range n.Elements {
			fprintNode(w, e, indent+1)
		}
	case *TupleLit:
		fmt.Fprintf(w, "%sTuple\n", ind)
		for _, e := range n.Elements {
			fprintNode(w, e, indent+1)
		}
	case *DictLit:
		fmt.Fprintf(w, "%sDict\n", ind)
		for i := range n.Keys {
			fprintNode(w, n.Keys[i], indent+1)
			fprintNode(w, n.Values[i], indent+1)
		}

	case *CallExpr:
		fmt.Fprintf(w, "%sCall\n", ind)
		fprintNode(w, n.Func, indent+1)
		for _, a := range n.Args {
			fprintNode(w, a, indent+1)
		}
		for _, k := range n.Keywords {
			fmt.Fprintf(w, "%s  Keyword %s:\n", ind, k.Name)
			fprintNode(w, k.Value, indent+2)
		}

	case *AttributeExpr:
		fmt.Fprintf(w, "%sAttribute .%s\n", ind, n.Name)
		fprintNode(w, n.X, indent+1)

	case *SubscriptExpr:
		fmt.Fprintf(w, "%sSubscript\n", ind)
		fprintNode(w, n.X, indent+1)
		fprintNode(w, n.Index, indent+1)

	case *UnaryExpr:
		fmt.Fprintf(w, "%sUnary %s\n", ind, n.Op)
		fprintNode(w, n.X, indent+1)

	case *BinaryExpr:
		fmt.Fprintf(w, "%sBinary %s\n", ind, n.Op)
		fprintNode(w, n.L, indent+1)
		fprintNode(w, n.R, indent+1)

	case *BoolExpr:
		fmt.Fprintf(w, "%sBoolOp %s\n", ind, n.Op)
		for _, v := range n.Values {
			fprintNode(w, v, indent+1)
		}

	case *CompareExpr:
		ops := make([]string, len(n.Ops))
		for i, op := range n.Ops {
			ops[i] = op.String()
		}
		fmt.Fprintf(w, "%sCompare %s\n", ind, strings.Join(ops, ", "))
		fprintNode(w, n.L, indent+1)
		for _, r := range n.Rs {
			fprintNode(w, r, indent+1)
		}

	default:
		fmt.Fprintf(w, "%s%T\n", ind, n)
	}
}
