package check

import (
	"github.com/kestrel-lang/kestrelc/internal/diag"
	"github.com/kestrel-lang/kestrelc/internal/tree"
)

// checkMethod is substage 5: per-method checking over a fresh local scope
// seeded with the component's state and the method's own parameters.
func (c *Checker) checkMethod(comp *tree.Component, m *tree.Method) {
	s := newScope(nil)
	for _, sv := range comp.State {
		s.declare(sv.Name, sv.Type, sv.Mutable, sv.Reference)
	}
	for _, p := range m.Params {
		s.declare(p.Name, p.Type, p.Mutable, p.Reference)
	}

	if m.Body == nil {
		return
	}
	c.checkStmt(m.Body, s)
	if c.diags.Failed() {
		return
	}
	c.checkReturns(m, m.Body)
}

// checkStmt validates use-before-update (moved-name reads) and then folds
// the statement's bindings/moves into s, in that order, per spec.md §4.C
// substage 5: "first validate use ... then update the scope/mutable/moved
// sets atomically."
func (c *Checker) checkStmt(stmt tree.Stmt, s *scope) {
	if c.diags.Failed() {
		return
	}
	switch st := stmt.(type) {
	case *tree.VarDecl:
		c.checkExprUses(st.Init, s)
		if c.diags.Failed() {
			return
		}
		if st.Init != nil {
			c.inferExpr(st.Init, s)
			if mv, isMove := st.Init.(*tree.MoveExpr); isMove {
				if name, ok := mv.MovedName(); ok {
					s.markMoved(name)
				}
			}
		}
		s.declare(st.Name, st.Declared, st.Mutable, st.Reference)

	case *tree.Assign:
		c.checkExprUses(st.Value, s)
		if c.diags.Failed() {
			return
		}
		if s.isMoved(st.Name) {
			c.diags.Report(diag.New(diag.KindMove, st.Pos().Line,
				"assignment to moved variable %q", st.Name))
			return
		}
		if !s.isMutable(st.Name) {
			c.diags.Report(diag.New(diag.KindMutability, st.Pos().Line,
				"assignment to immutable binding %q", st.Name))
			return
		}
		c.inferExpr(st.Value, s)

	case *tree.IndexAssign:
		c.checkExprUses(st.Target, s)
		c.checkExprUses(st.Value, s)
		if c.diags.Failed() {
			return
		}
		c.inferExpr(st.Target, s)
		c.inferExpr(st.Value, s)

	case *tree.MemberAssign:
		c.checkExprUses(st.Target, s)
		c.checkExprUses(st.Value, s)
		if c.diags.Failed() {
			return
		}
		c.inferExpr(st.Target, s)
		c.inferExpr(st.Value, s)

	case *tree.TupleDestructure:
		c.checkExprUses(st.Value, s)
		if c.diags.Failed() {
			return
		}
		call, isCall := st.Value.(*tree.Call)
		var tupleTypes []tree.Type
		if isCall {
			tupleTypes = c.calleeTupleReturn(call)
		}
		if tupleTypes != nil && len(tupleTypes) != len(st.Names) {
			c.diags.Report(diag.New(diag.KindType, st.Pos().Line,
				"tuple destructuring arity mismatch: expected %d, got %d", len(tupleTypes), len(st.Names)))
			return
		}
		for i, name := range st.Names {
			if name == "_" {
				continue
			}
			t := tree.Unknown()
			if tupleTypes != nil && i < len(tupleTypes) {
				t = tupleTypes[i]
			} else if i < len(st.Types) {
				t = st.Types[i]
			}
			mutable := i < len(st.Mutable) && st.Mutable[i]
			s.declare(name, t, mutable, false)
		}

	case *tree.ExprStmt:
		c.checkExprUses(st.X, s)
		if c.diags.Failed() {
			return
		}
		c.inferExpr(st.X, s)
		c.checkMutationRule(st, s)

	case *tree.Return:
		for _, v := range st.Values {
			c.checkExprUses(v, s)
			if c.diags.Failed() {
				return
			}
			c.inferExpr(v, s)
		}

	case *tree.Block:
		inner := newScope(s)
		for _, sub := range st.Stmts {
			c.checkStmt(sub, inner)
			if c.diags.Failed() {
				return
			}
		}

	case *tree.If:
		c.checkExprUses(st.Cond, s)
		if c.diags.Failed() {
			return
		}
		c.inferExpr(st.Cond, s)
		c.checkStmt(st.Then, s)
		if c.diags.Failed() {
			return
		}
		if st.Else != nil {
			c.checkStmt(st.Else, s)
		}

	case *tree.RangeFor:
		c.checkExprUses(st.Start, s)
		c.checkExprUses(st.End, s)
		if c.diags.Failed() {
			return
		}
		c.inferExpr(st.Start, s)
		c.inferExpr(st.End, s)
		inner := newScope(s)
		inner.declare(st.Var, tree.Scalar(tree.TInt32), false, false)
		c.checkStmt(st.Body, inner)

	case *tree.EachFor:
		c.checkExprUses(st.Iterable, s)
		if c.diags.Failed() {
			return
		}
		iterType := c.inferExpr(st.Iterable, s)
		inner := newScope(s)
		elem := tree.Unknown()
		if iterType.IsArray() {
			elem = iterType.Elem()
		}
		inner.declare(st.Var, elem, false, false)
		c.checkStmt(st.Body, inner)
	}
}

// checkExprUses walks e looking for a read of a moved-from identifier
// (spec.md §8 invariant 7 / §4.C substage 5's "validate use" step). A nil
// expression is trivially valid.
func (c *Checker) checkExprUses(e tree.Expr, s *scope) {
	if e == nil || c.diags.Failed() {
		return
	}
	for name := range e.FreeIdentifiers() {
		if s.isMoved(name) {
			c.diags.Report(diag.New(diag.KindMove, e.Pos().Line,
				"use of moved variable %q", name))
			return
		}
	}
}

// checkMutationRule enforces mutability for ++/-- on local identifiers and
// for mutating-method calls on component-typed bindings, per spec.md §4.C
// substage 5's last bullet.
func (c *Checker) checkMutationRule(st *tree.ExprStmt, s *scope) {
	switch x := st.X.(type) {
	case *tree.PostfixOp:
		if id, ok := x.Operand.(*tree.Ident); ok {
			if !s.isMutable(id.Name) {
				c.diags.Report(diag.New(diag.KindMutability, st.Pos().Line,
					"%s on immutable binding %q", x.Op, id.Name))
			}
		}
	case *tree.UnaryOp:
		if x.Op == "++" || x.Op == "--" {
			if id, ok := x.Operand.(*tree.Ident); ok && !s.isMutable(id.Name) {
				c.diags.Report(diag.New(diag.KindMutability, st.Pos().Line,
					"%s on immutable binding %q", x.Op, id.Name))
			}
		}
	case *tree.Call:
		recv := x.Receiver()
		if recv == nil {
			return
		}
		id, ok := recv.(*tree.Ident)
		if !ok {
			return
		}
		comp, isComponent := c.components[s.typeNameOf(id.Name)]
		if !isComponent {
			return
		}
		method := comp.MethodByName(x.CalleeName())
		if method == nil {
			return
		}
		if len(method.ComputeModifications()) > 0 && !s.isMutable(id.Name) {
			c.diags.Report(diag.New(diag.KindMutability, st.Pos().Line,
				"call to mutating method %q on immutable binding %q", x.CalleeName(), id.Name))
		}
	}
}

// typeNameOf returns the declared type name for a bound identifier, for
// resolving whether a receiver is component-typed.
func (s *scope) typeNameOf(name string) string {
	b, ok := s.lookup(name)
	if !ok {
		return ""
	}
	return b.typ.Name
}

// checkReturns validates a method's return statements against its declared
// return type, per spec.md §4.C substage 5.
func (c *Checker) checkReturns(m *tree.Method, body *tree.Block) {
	walkReturns(body, func(r *tree.Return) {
		if c.diags.Failed() {
			return
		}
		switch {
		case m.Return.IsVoid():
			if !r.IsBare() {
				c.diags.Report(diag.New(diag.KindType, r.Pos().Line,
					"method %q: void methods must use a bare return", m.Name))
			}
		case m.Return.IsTuple():
			if !r.IsTuple() || len(r.Values) != len(m.Return.Tuple) {
				c.diags.Report(diag.New(diag.KindType, r.Pos().Line,
					"method %q: return arity mismatch, expected %d values", m.Name, len(m.Return.Tuple)))
			}
		default:
			if r.IsBare() || r.IsTuple() {
				c.diags.Report(diag.New(diag.KindType, r.Pos().Line,
					"method %q: expected a single return value of type %s", m.Name, *m.Return.Single))
			}
		}
	})
}

func walkReturns(stmt tree.Stmt, fn func(*tree.Return)) {
	switch st := stmt.(type) {
	case *tree.Return:
		fn(st)
	case *tree.Block:
		for _, sub := range st.Stmts {
			walkReturns(sub, fn)
		}
	case *tree.If:
		walkReturns(st.Then, fn)
		if st.Else != nil {
			walkReturns(st.Else, fn)
		}
	case *tree.RangeFor:
		walkReturns(st.Body, fn)
	case *tree.EachFor:
		walkReturns(st.Body, fn)
	}
}

// calleeTupleReturn resolves a call's schema- or component-declared tuple
// return types for tuple-destructuring validation; nil means "unknown",
// which the destructuring check treats as not-validatable rather than an
// error. Tuple returns in this language are user-defined-component-method
// only (the schema store's external types never declare tuple returns), so
// this resolves through the component method table.
func (c *Checker) calleeTupleReturn(call *tree.Call) []tree.Type {
	if call.Receiver() != nil {
		return nil
	}
	for _, comp := range c.components {
		if method := comp.MethodByName(call.CalleeName()); method != nil && method.Return.IsTuple() {
			return method.Return.Tuple
		}
	}
	return nil
}
