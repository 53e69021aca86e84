package types

import (
	"fmt"

	"github.com/Icarogamer2441/snake/internal/annot"
	"github.com/Icarogamer2441/snake/internal/ast"
	"github.com/Icarogamer2441/snake/internal/token"
)

// Error is one checker diagnostic with a source position.
type Error struct {
	Pos token.Position
	Msg string
}

func (e Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Checker walks a canonical module once and accumulates diagnostics. It never
// aborts on a violation: the walk completes and the full list is returned.
// The annotation table is read-only here; the only mutable state is the
// current scope, which is function-local. There are no per-block scopes.
type Checker struct {
	table  *annot.Table
	errors []Error

	// scope maps names to the type fixed at first assignment. It is replaced
	// wholesale on function entry and restored on exit.
	scope map[string]string

	currentFunc string
	returnType  string
	returnSeen  bool

	// snapshots keeps each function's final scope for forward reference.
	snapshots map[string]map[string]string
}

func NewChecker(tbl *annot.Table) *Checker {
	return &Checker{
		table:     tbl,
		scope:     make(map[string]string),
		snapshots: make(map[string]map[string]string),
	}
}

// Check runs the pass and returns every diagnostic found, in source order.
func Check(mod *ast.Module, tbl *annot.Table) []Error {
	c := NewChecker(tbl)
	return c.Check(mod)
}

func (c *Checker) Check(mod *ast.Module) []Error {
	c.checkStmts(mod.Stmts)
	return c.errors
}

// Snapshot returns the final scope recorded for a checked function.
func (c *Checker) Snapshot(fn string) (map[string]string, bool) {
	s, ok := c.snapshots[fn]
	return s, ok
}

func (c *Checker) errorf(pos token.Position, format string, args ...any) {
	c.errors = append(c.errors, Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (c *Checker) checkStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		c.checkStmt(s)
	}
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.FunctionDef:
		c.checkFunction(s)
	case *ast.ClassDef:
		c.checkStmts(s.Body)
	case *ast.AssignStmt:
		c.checkAssign(s)
	case *ast.AnnAssignStmt:
		c.checkAnnAssign(s)
	case *ast.ReturnStmt:
		c.checkReturn(s)
	case *ast.IfStmt:
		c.exprType(s.Cond)
		c.checkStmts(s.Then)
		c.checkStmts(s.Else)
	case *ast.WhileStmt:
		c.exprType(s.Cond)
		c.checkStmts(s.Body)
	case *ast.ForStmt:
		c.checkFor(s)
	case *ast.TryStmt:
		c.checkStmts(s.Body)
		if s.ExceptName != "" && s.ExceptType != "" {
			c.scope[s.ExceptName] = s.ExceptType
		}
		c.checkStmts(s.Handler)
	case *ast.RaiseStmt:
		if s.Exc != nil {
			c.exprType(s.Exc)
		}
	case *ast.ExprStmt:
		c.exprType(s.Expression)
	}
}

func (c *Checker) checkFunction(fn *ast.FunctionDef) {
	outerScope := c.scope
	outerFunc := c.currentFunc
	outerReturn := c.returnType
	outerSeen := c.returnSeen

	c.scope = make(map[string]string)
	c.currentFunc = fn.Name
	c.returnSeen = false

	sig, harvested := c.table.Func(fn.Name)
	c.returnType = fn.Returns
	if harvested && sig.Return != "" {
		c.returnType = sig.Return
	}

	for _, p := range fn.Params {
		ann := p.Annotation
		if harvested {
			if t, ok := sig.ParamType(p.Name); ok {
				ann = t
			}
		}
		ann = StripDefault(ann)
		if ann == "" {
			continue
		}
		if !Balanced(ann) {
			c.errorf(p.NamePos, "Malformed type annotation: %s", ann)
			continue
		}
		c.scope[p.Name] = ann
	}

	c.checkStmts(fn.Body)

	if c.returnType != "" && c.returnType != NullType && !c.returnSeen {
		c.errorf(fn.DefPos, "Function '%s' is missing a return statement", fn.Name)
	}

	c.snapshots[fn.Name] = c.scope
	c.scope = outerScope
	c.currentFunc = outerFunc
	c.returnType = outerReturn
	c.returnSeen = outerSeen
}

func (c *Checker) checkReturn(s *ast.ReturnStmt) {
	c.returnSeen = true

	if c.currentFunc == "" {
		c.errorf(s.ReturnPos, "Return statement outside of function")
		return
	}
	expected := c.returnType
	if expected == "" {
		return
	}
	if s.Value == nil {
		if expected != NullType {
			c.errorf(s.ReturnPos,
				"Function '%s' has no return value, but its return type is %s",
				c.currentFunc, expected)
		}
		return
	}
	actual := c.exprType(s.Value)
	if actual != "" && !Compatible(actual, expected, c.table) {
		c.errorf(s.ReturnPos,
			"Function '%s' returns %s, but its return type is %s",
			c.currentFunc, actual, expected)
	}
}

func (c *Checker) checkAssign(s *ast.AssignStmt) {
	valueType := c.exprType(s.Value)

	switch target := s.Target.(type) {
	case *ast.NameExpr:
		name := target.Name

		// Constant reassignment is an error on its own, independent of
		// whether the value's type would have been compatible.
		if v, ok := c.table.Var(name); ok && v.IsConstant {
			c.errorf(target.NamePos, "Cannot reassign constant '%s'", name)
			return
		}

		if fixed, bound := c.scope[name]; bound {
			// Later assignments check against the type fixed at first
			// assignment. The type is never re-inferred.
			if valueType != "" && !Compatible(valueType, fixed, c.table) {
				c.errorf(target.NamePos,
					"Variable '%s' has type %s, but is assigned a value of type %s",
					name, fixed, valueType)
				c.checkContainerLiteral(s.Value, fixed, name)
			}
			return
		}

		// First assignment: adopt the harvested declared type if any, else
		// infer from the right-hand side.
		if v, ok := c.table.Var(name); ok && v.Type != "" {
			declared := StripDefault(v.Type)
			c.scope[name] = declared
			if valueType != "" && !Compatible(valueType, declared, c.table) {
				c.errorf(target.NamePos,
					"Variable '%s' has type %s, but is assigned a value of type %s",
					name, declared, valueType)
				c.checkContainerLiteral(s.Value, declared, name)
			}
			return
		}
		if valueType != "" {
			c.scope[name] = valueType
		}

	case *ast.SubscriptExpr:
		c.checkIndexedAssign(target, s.Value, valueType)

	case *ast.TupleLit:
		// Destructuring assignment leaves the targets untyped, the same
		// treatment destructuring for loops get.

	case *ast.AttributeExpr:
		fieldType := c.exprType(target)
		if fieldType != "" && valueType != "" && !Compatible(valueType, fieldType, c.table) {
			c.errorf(target.NamePos,
				"Field '%s' has type %s, but is assigned a value of type %s",
				target.Name, fieldType, valueType)
		}
	}
}

func (c *Checker) checkAnnAssign(s *ast.AnnAssignStmt) {
	target, ok := s.Target.(*ast.NameExpr)
	if !ok {
		return
	}
	ann := StripDefault(s.Annotation)
	if !Balanced(ann) {
		c.errorf(target.NamePos, "Malformed type annotation: %s", ann)
		return
	}
	c.scope[target.Name] = ann

	if s.Value == nil {
		return
	}
	valueType := c.exprType(s.Value)
	if valueType != "" && !Compatible(valueType, ann, c.table) {
		c.errorf(target.NamePos,
			"Variable '%s' has type %s, but is assigned a value of type %s",
			target.Name, ann, valueType)
		c.checkContainerLiteral(s.Value, ann, target.Name)
	}
}

// checkIndexedAssign checks container[index] = value against the container's
// type parameters.
func (c *Checker) checkIndexedAssign(target *ast.SubscriptExpr, value ast.Expr, valueType string) {
	containerType := c.exprType(target.X)
	indexType := c.exprType(target.Index)
	if containerType == "" {
		return
	}

	switch {
	case IsMapping(BaseName(containerType)):
		if !HasParams(containerType) {
			return
		}
		params := Params(containerType)
		if len(params) != 2 {
			c.errorf(target.Pos(), "Invalid dictionary type annotation: %s", containerType)
			return
		}
		if indexType != "" && !Compatible(indexType, params[0], c.table) {
			c.errorf(target.Index.Pos(),
				"Dictionary key has type %s, but expected %s", indexType, params[0])
		}
		if valueType != "" && !Compatible(valueType, params[1], c.table) {
			c.errorf(value.Pos(),
				"Dictionary value has type %s, but expected %s", valueType, params[1])
		}

	case IsSequence(BaseName(containerType)):
		if indexType != "" && indexType != IntType {
			c.errorf(target.Index.Pos(),
				"List index has type %s, but expected int", indexType)
		}
		if !HasParams(containerType) {
			return
		}
		elem := Params(containerType)[0]
		if valueType != "" && !Compatible(valueType, elem, c.table) {
			c.errorf(value.Pos(),
				"List element has type %s, but expected %s", valueType, elem)
		}
	}
}

// checkContainerLiteral reports the offending elements of a list or dict
// literal after a container-level mismatch has already been reported.
func (c *Checker) checkContainerLiteral(value ast.Expr, expected, name string) {
	switch lit := value.(type) {
	case *ast.ListLit:
		if BaseName(expected) != ListType || !HasParams(expected) {
			return
		}
		elem := Params(expected)[0]
		for i, e := range lit.Elements {
			t := c.exprType(e)
			if t != "" && !Compatible(t, elem, c.table) {
				c.errorf(e.Pos(),
					"List element at index %d in '%s' has type %s, but expected %s",
					i, name, t, elem)
			}
		}

	case *ast.DictLit:
		if BaseName(expected) != DictType || !HasParams(expected) {
			return
		}
		params := Params(expected)
		if len(params) != 2 {
			c.errorf(lit.Lbrace, "Invalid dictionary type annotation: %s", expected)
			return
		}
		for i := range lit.Keys {
			kt := c.exprType(lit.Keys[i])
			vt := c.exprType(lit.Values[i])
			if kt != "" && !Compatible(kt, params[0], c.table) {
				c.errorf(lit.Keys[i].Pos(),
					"Dictionary key at index %d in '%s' has type %s, but expected %s",
					i, name, kt, params[0])
			}
			if vt != "" && !Compatible(vt, params[1], c.table) {
				c.errorf(lit.Values[i].Pos(),
					"Dictionary value at index %d in '%s' has type %s, but expected %s",
					i, name, vt, params[1])
			}
		}
	}
}

func (c *Checker) checkFor(s *ast.ForStmt) {
	iterType := c.exprType(s.Iter)

	// Bind a single loop variable when the element type is derivable from
	// the iterable. Multiple variables destructure; those stay untyped.
	if len(s.Vars) == 1 && iterType != "" {
		switch {
		case IsSequence(BaseName(iterType)) && HasParams(iterType):
			c.scope[s.Vars[0]] = Params(iterType)[0]
		case iterType == StringType:
			c.scope[s.Vars[0]] = StringType
		case IsMapping(BaseName(iterType)) && HasParams(iterType):
			c.scope[s.Vars[0]] = Params(iterType)[0]
		}
	}
	c.checkStmts(s.Body)
}

// checkCall checks a call's arguments against the callee's harvested
// signature and returns the call's result type. This is the single entry
// point for typing calls, so each call site is checked exactly once.
func (c *Checker) checkCall(call *ast.CallExpr) string {
	switch fn := call.Func.(type) {
	case *ast.NameExpr:
		if rec, ok := c.table.Record(fn.Name); ok {
			c.checkConstructor(call, fn.Name, rec)
			return fn.Name
		}
		if errDef, ok := c.table.Error(fn.Name); ok {
			c.checkArgs(call, fn.Name, errDef.Params)
			return fn.Name
		}
		if sig, ok := c.table.Func(fn.Name); ok {
			c.checkArgs(call, fn.Name, sig.Params)
			return sig.Return
		}
		if result, ok := builtinFuncs[fn.Name]; ok {
			c.typeArgs(call)
			return result
		}
		c.typeArgs(call)
		return ""

	case *ast.AttributeExpr:
		recv := c.exprType(fn.X)
		c.typeArgs(call)
		if recv == "" {
			return ""
		}
		return methodResult(recv, fn.Name)

	default:
		c.exprType(call.Func)
		c.typeArgs(call)
		return ""
	}
}

// typeArgs types every argument for its side-effect diagnostics without
// checking against any signature.
func (c *Checker) typeArgs(call *ast.CallExpr) {
	for _, a := range call.Args {
		c.exprType(a)
	}
	for _, k := range call.Keywords {
		c.exprType(k.Value)
	}
}

// checkArgs checks a call against a declared parameter list. Supplying fewer
// arguments than declared is tolerated (the rest are treated as defaulted);
// supplying more is an arity error.
func (c *Checker) checkArgs(call *ast.CallExpr, name string, params []annot.ParamInfo) {
	given := len(call.Args) + len(call.Keywords)
	if given > len(params) {
		c.errorf(call.Pos(),
			"Function '%s' takes %d arguments, but %d were given",
			name, len(params), given)
		c.typeArgs(call)
		return
	}

	for i, arg := range call.Args {
		argType := c.exprType(arg)
		paramType := StripDefault(params[i].Type)
		if argType != "" && paramType != "" && !Compatible(argType, paramType, c.table) {
			c.errorf(arg.Pos(),
				"Argument %d to function '%s' has type %s, but parameter '%s' has type %s",
				i+1, name, argType, params[i].Name, paramType)
		}
	}
	for _, kw := range call.Keywords {
		kwType := c.exprType(kw.Value)
		declared := ""
		found := false
		for _, p := range params {
			if p.Name == kw.Name {
				declared = StripDefault(p.Type)
				found = true
				break
			}
		}
		if !found {
			c.errorf(kw.Value.Pos(),
				"Unknown keyword argument '%s' in call to '%s'", kw.Name, name)
			continue
		}
		if kwType != "" && declared != "" && !Compatible(kwType, declared, c.table) {
			c.errorf(kw.Value.Pos(),
				"Keyword argument '%s' to function '%s' has type %s, but parameter has type %s",
				kw.Name, name, kwType, declared)
		}
	}
}

// checkConstructor checks a record construction. Unlike plain calls the field
// count must match exactly.
func (c *Checker) checkConstructor(call *ast.CallExpr, name string, rec *annot.RecordDef) {
	given := len(call.Args) + len(call.Keywords)
	if given != len(rec.Fields) {
		c.errorf(call.Pos(),
			"Constructor '%s' takes %d arguments, but %d were given",
			name, len(rec.Fields), given)
		c.typeArgs(call)
		return
	}

	for i, arg := range call.Args {
		argType := c.exprType(arg)
		fieldType := rec.Fields[i].Type
		if argType != "" && fieldType != "" && !Compatible(argType, fieldType, c.table) {
			c.errorf(arg.Pos(),
				"Argument %d to constructor '%s' has type %s, but field '%s' has type %s",
				i+1, name, argType, rec.Fields[i].Name, fieldType)
		}
	}
	for _, kw := range call.Keywords {
		kwType := c.exprType(kw.Value)
		fieldType, ok := rec.Field(kw.Name)
		if !ok {
			c.errorf(kw.Value.Pos(),
				"Unknown field '%s' in constructor '%s'", kw.Name, name)
			continue
		}
		if kwType != "" && fieldType != "" && !Compatible(kwType, fieldType, c.table) {
			c.errorf(kw.Value.Pos(),
				"Field '%s' of '%s' has type %s, but is assigned a value of type %s",
				kw.Name, name, fieldType, kwType)
		}
	}
}

// exprType determines the type of an expression, or "" when no type can be
// derived. Unknown types silently disable the checks that need them.
func (c *Checker) exprType(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.IntLit:
		return IntType
	case *ast.FloatLit:
		return FloatType
	case *ast.StringLit:
		return StringType
	case *ast.BoolLit:
		return BoolType
	case *ast.NoneLit:
		return NullType

	case *ast.NameExpr:
		if t, ok := c.scope[e.Name]; ok {
			return t
		}
		if v, ok := c.table.Var(e.Name); ok && v.Type != "" {
			return StripDefault(v.Type)
		}
		return ""

	case *ast.CallExpr:
		return c.checkCall(e)

	case *ast.AttributeExpr:
		return c.attributeType(e)

	case *ast.SubscriptExpr:
		return c.subscriptType(e)

	case *ast.UnaryExpr:
		if e.Op == token.Not {
			c.exprType(e.X)
			return BoolType
		}
		t := c.exprType(e.X)
		if t == IntType || t == FloatType {
			return t
		}
		return ""

	case *ast.BinaryExpr:
		return c.binaryType(e)

	case *ast.BoolExpr:
		for _, v := range e.Values {
			c.exprType(v)
		}
		return BoolType

	case *ast.CompareExpr:
		c.exprType(e.L)
		for _, r := range e.Rs {
			c.exprType(r)
		}
		return BoolType

	case *ast.ListLit:
		return c.listType(e)
	case *ast.DictLit:
		return c.dictType(e)
	case *ast.TupleLit:
		return c.tupleType(e)
	}
	return ""
}

func (c *Checker) attributeType(e *ast.AttributeExpr) string {
	// Enum member access: Color.RED has the enum's type.
	if base, ok := e.X.(*ast.NameExpr); ok {
		if enum, ok := c.table.Enum(base.Name); ok {
			for _, m := range enum.Members {
				if m == e.Name {
					return base.Name
				}
			}
			c.errorf(e.NamePos, "Enum '%s' has no member '%s'", base.Name, e.Name)
			return base.Name
		}
	}

	recvType := c.exprType(e.X)
	if recvType == "" {
		return ""
	}
	if rec, ok := c.table.Record(BaseName(recvType)); ok {
		fieldType, ok := rec.Field(e.Name)
		if !ok {
			c.errorf(e.NamePos, "Type '%s' has no field '%s'", recvType, e.Name)
			return ""
		}
		return fieldType
	}
	return ""
}

func (c *Checker) subscriptType(e *ast.SubscriptExpr) string {
	containerType := c.exprType(e.X)
	c.exprType(e.Index)
	if containerType == "" {
		return ""
	}

	base := BaseName(containerType)
	params := Params(containerType)
	switch base {
	case StringType:
		return StringType
	case ListType, SetType:
		if len(params) == 1 {
			return params[0]
		}
	case DictType:
		if len(params) == 2 {
			return params[1]
		}
	case TupleType:
		if idx, ok := e.Index.(*ast.IntLit); ok {
			if i := int(idx.Value); i >= 0 && i < len(params) {
				return params[i]
			}
		}
	case OptionalType:
		if len(params) == 1 {
			return params[0]
		}
	}
	return ""
}

func (c *Checker) binaryType(e *ast.BinaryExpr) string {
	left := c.exprType(e.L)
	right := c.exprType(e.R)

	numeric := func(t string) bool { return t == IntType || t == FloatType }

	switch e.Op {
	case token.Plus:
		if numeric(left) && numeric(right) {
			if left == FloatType || right == FloatType {
				return FloatType
			}
			return IntType
		}
		if left == StringType && right == StringType {
			return StringType
		}
		// Sequence concatenation preserves the element type when both
		// sides agree.
		if IsSequence(BaseName(left)) && left == right {
			return left
		}

	case token.Minus, token.DoubleSlash, token.Power:
		if numeric(left) && numeric(right) {
			if left == FloatType || right == FloatType {
				return FloatType
			}
			return IntType
		}

	case token.Star:
		if numeric(left) && numeric(right) {
			if left == FloatType || right == FloatType {
				return FloatType
			}
			return IntType
		}
		// Repetition: "ab" * 3, [0] * n.
		if left == StringType && right == IntType {
			return StringType
		}
		if IsSequence(BaseName(left)) && right == IntType {
			return left
		}

	case token.Slash:
		if numeric(left) && numeric(right) {
			if left == FloatType || right == FloatType {
				return FloatType
			}
			return IntType
		}

	case token.Percent:
		if numeric(left) && numeric(right) {
			if left == FloatType || right == FloatType {
				return FloatType
			}
			return IntType
		}
		if left == StringType {
			return StringType
		}
	}
	return ""
}

func (c *Checker) listType(e *ast.ListLit) string {
	if len(e.Elements) == 0 {
		return ListType
	}
	elem := c.exprType(e.Elements[0])
	for _, el := range e.Elements[1:] {
		t := c.exprType(el)
		if t != elem {
			elem = ""
		}
	}
	if elem == "" {
		return ListType
	}
	return ListType + "[" + elem + "]"
}

func (c *Checker) dictType(e *ast.DictLit) string {
	if len(e.Keys) == 0 {
		return DictType
	}
	keyType := c.exprType(e.Keys[0])
	valueType := c.exprType(e.Values[0])
	for i := 1; i < len(e.Keys); i++ {
		if t := c.exprType(e.Keys[i]); t != keyType {
			keyType = ""
		}
		if t := c.exprType(e.Values[i]); t != valueType {
			valueType = ""
		}
	}
	if keyType == "" || valueType == "" {
		return DictType
	}
	return DictType + "[" + keyType + ", " + valueType + "]"
}

func (c *Checker) tupleType(e *ast.TupleLit) string {
	if len(e.Elements) == 0 {
		return TupleType
	}
	parts := make([]string, len(e.Elements))
	for i, el := range e.Elements {
		t := c.exprType(el)
		if t == "" {
			// Type the rest for their diagnostics, then fall back.
			for _, rest := range e.Elements[i+1:] {
				c.exprType(rest)
			}
			return TupleType
		}
		parts[i] = t
	}
	out := TupleType + "["
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out + "]"
}
