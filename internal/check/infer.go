package check

import "github.com/kestrel-lang/kestrelc/internal/tree"

// inferExpr implements the abbreviated type-inference table from spec.md
// §4.C, annotating each node's inferred type as it goes (the post-analysis
// Inferred field every tree.Expr carries).
func (c *Checker) inferExpr(e tree.Expr, s *scope) tree.Type {
	t := c.inferExprUncached(e, s)
	if setter, ok := e.(interface{ SetInferred(tree.Type) }); ok {
		setter.SetInferred(t)
	}
	return t
}

func (c *Checker) inferExprUncached(e tree.Expr, s *scope) tree.Type {
	switch n := e.(type) {
	case *tree.IntLit:
		return tree.Scalar(tree.TInt32)
	case *tree.FloatLit:
		return tree.Scalar(tree.TFloat64)
	case *tree.StringLit:
		for _, seg := range n.Segments {
			if seg.Expr != nil {
				c.inferExpr(seg.Expr, s)
			}
		}
		return tree.Scalar(tree.TString)
	case *tree.BoolLit:
		return tree.Scalar(tree.TBool)
	case *tree.EnumAccess:
		return tree.Scalar(n.EnumName)
	case *tree.Ident:
		if b, ok := s.lookup(n.Name); ok {
			return b.typ
		}
		return tree.Unknown()
	case *tree.MemberAccess:
		return c.inferMemberAccess(n, s)
	case *tree.IndexAccess:
		obj := c.inferExpr(n.Object, s)
		c.inferExpr(n.Index, s)
		if obj.IsArray() {
			return obj.Elem()
		}
		return tree.Unknown()
	case *tree.ArrayLit:
		if len(n.Elements) == 0 {
			return tree.Array(tree.Unknown())
		}
		elem := c.inferExpr(n.Elements[0], s)
		for _, el := range n.Elements[1:] {
			c.inferExpr(el, s)
		}
		return tree.Array(elem)
	case *tree.ArrayRepeat:
		elem := c.inferExpr(n.Value, s)
		c.inferExpr(n.Count, s)
		size := -1
		if lit, ok := n.Count.(*tree.IntLit); ok {
			size = int(lit.Value)
		}
		if size < 0 {
			return tree.Array(elem)
		}
		return tree.FixedArray(elem, size)
	case *tree.RefExpr:
		return c.inferExpr(n.Operand, s)
	case *tree.MoveExpr:
		return c.inferExpr(n.Operand, s)
	case *tree.UnaryOp:
		operand := c.inferExpr(n.Operand, s)
		if n.Op == "!" {
			return tree.Scalar(tree.TBool)
		}
		return operand
	case *tree.PostfixOp:
		return c.inferExpr(n.Operand, s)
	case *tree.TernaryOp:
		c.inferExpr(n.Cond, s)
		then := c.inferExpr(n.Then, s)
		els := c.inferExpr(n.Else, s)
		return c.commonType(then, els)
	case *tree.MatchExpr:
		c.inferExpr(n.Subject, s)
		var common tree.Type
		for i, arm := range n.Arms {
			t := c.inferExpr(arm.Body, s)
			if i == 0 {
				common = t
			} else {
				common = c.commonType(common, t)
			}
		}
		return common
	case *tree.BlockExpr:
		return c.inferBlockExpr(n, s)
	case *tree.BinaryOp:
		return c.inferBinaryOp(n, s)
	case *tree.Call:
		return c.inferCall(n, s)
	default:
		return tree.Unknown()
	}
}

func (c *Checker) commonType(a, b tree.Type) tree.Type {
	if a.Equal(b) {
		return a
	}
	if a.IsNumeric() && b.IsNumeric() {
		return widerNumeric(a, b)
	}
	if a.IsUnknown() {
		return b
	}
	if b.IsUnknown() {
		return a
	}
	return tree.Unknown()
}

func (c *Checker) inferBinaryOp(n *tree.BinaryOp, s *scope) tree.Type {
	left := c.inferExpr(n.Left, s)
	right := c.inferExpr(n.Right, s)
	if n.IsComparison() {
		return tree.Scalar(tree.TBool)
	}
	if left.IsNumeric() && right.IsNumeric() {
		return widerNumeric(left, right)
	}
	if left.Name == tree.TString || right.Name == tree.TString {
		return tree.Scalar(tree.TString)
	}
	return tree.Unknown()
}

func (c *Checker) inferMemberAccess(n *tree.MemberAccess, s *scope) tree.Type {
	objType := c.inferExpr(n.Object, s)
	if fields, ok := c.dataFields[objType.Name]; ok {
		for _, f := range fields {
			if f == n.Member {
				return tree.Unknown() // field type not retained per-name; resolved structurally elsewhere
			}
		}
	}
	if _, _, ok := c.store.LookupMethod(objType.Name, n.Member, 0); ok {
		return tree.Unknown()
	}
	return tree.Unknown()
}

func (c *Checker) inferBlockExpr(n *tree.BlockExpr, s *scope) tree.Type {
	inner := newScope(s)
	for _, stmt := range n.Stmts {
		c.checkStmt(stmt, inner)
	}
	if n.Yield != nil {
		return c.inferExpr(n.Yield, inner)
	}
	if trailing := n.TrailingExprStmt(); trailing != nil {
		return c.inferExpr(trailing, inner)
	}
	return tree.Scalar(tree.TVoid)
}

// inferCall resolves a call's return type from the schema store (handle
// methods), falling back to a small built-in string/array method table,
// otherwise "unknown" per the type-inference table's function-call row.
func (c *Checker) inferCall(n *tree.Call, s *scope) tree.Type {
	for _, a := range n.Args {
		c.inferExpr(a, s)
	}
	if recv := n.Receiver(); recv != nil {
		recvType := c.inferExpr(recv, s)
		if m, _, ok := c.store.LookupMethod(recvType.Name, n.CalleeName(), len(n.Args)); ok {
			return returnTypeOf(m.Return)
		}
		if t, ok := builtinMethodReturn(recvType, n.CalleeName()); ok {
			return t
		}
		return tree.Unknown()
	}
	if comp, ok := c.components[n.CalleeName()]; ok {
		_ = comp
		return tree.Unknown()
	}
	for _, m := range c.store.LookupBySnakeName(n.CalleeName()) {
		return returnTypeOf(m.Return)
	}
	return tree.Unknown()
}

func returnTypeOf(name string) tree.Type {
	if name == "" {
		return tree.Scalar(tree.TVoid)
	}
	return tree.Scalar(name)
}

// builtinMethodReturn covers the handful of built-in string/array methods
// the checker must resolve without any schema declaration backing them
// (e.g. array length, string concatenation helpers).
func builtinMethodReturn(recv tree.Type, method string) (tree.Type, bool) {
	if recv.IsArray() {
		switch method {
		case "length", "len", "size":
			return tree.Scalar(tree.TInt32), true
		case "push", "push_back", "pop", "pop_back", "clear":
			return tree.Scalar(tree.TVoid), true
		}
	}
	if recv.Name == tree.TString {
		switch method {
		case "length", "len", "size":
			return tree.Scalar(tree.TInt32), true
		}
	}
	return tree.Type{}, false
}
