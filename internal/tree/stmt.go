package tree

// Stmt is the capability interface every statement variant implements:
// source position and the modification-collection rule from spec.md §4.B
// item 2.
type Stmt interface {
	Pos() Position
	Modifies() IdentSet
	stmtNode()
}

type stmtBase struct {
	Position Position
}

func (b stmtBase) Pos() Position { return b.Position }

// VarDecl is a variable declaration, introducing a new binding (not a write
// to an existing one — Modifies is empty per spec.md §4.B's write-only
// rule).
type VarDecl struct {
	stmtBase
	Name      string
	Mutable   bool
	Reference bool
	Declared  Type
	Init      Expr // nil for an uninitialized reference is a checker error, not a parse error
}

func (n *VarDecl) stmtNode()        {}
func (n *VarDecl) Modifies() IdentSet { return IdentSet{} }

// Assign is plain `name = value`, writing the left-hand name.
type Assign struct {
	stmtBase
	Name  string
	Value Expr
}

func (n *Assign) stmtNode()          {}
func (n *Assign) Modifies() IdentSet { return NewIdentSet(n.Name) }

// IndexAssign is `target[index] (op)= value` — "compound index assignment"
// in spec.md §3. It writes the outermost identifier of Target.
type IndexAssign struct {
	stmtBase
	Target Expr // *IndexAccess
	Op     string
	Value  Expr
}

func (n *IndexAssign) stmtNode() {}
func (n *IndexAssign) Modifies() IdentSet {
	if root, ok := rootIdent(n.Target); ok {
		return NewIdentSet(root)
	}
	return IdentSet{}
}

// MemberAssign is `target.member (op)= value`. It writes the outermost
// identifier of Target.
type MemberAssign struct {
	stmtBase
	Target Expr // *MemberAccess
	Op     string
	Value  Expr
}

func (n *MemberAssign) stmtNode() {}
func (n *MemberAssign) Modifies() IdentSet {
	if root, ok := rootIdent(n.Target); ok {
		return NewIdentSet(root)
	}
	return IdentSet{}
}

// TupleDestructure is `(T a, T b, _) = call();` — a declaration, so it
// introduces bindings rather than modifying existing ones. Names containing
// "_" alone are wildcard placeholders and are not bound (spec.md §4.C item 5).
type TupleDestructure struct {
	stmtBase
	Names   []string
	Types   []Type
	Mutable []bool
	Value   Expr // the tuple-returning call
}

func (n *TupleDestructure) stmtNode()          {}
func (n *TupleDestructure) Modifies() IdentSet { return IdentSet{} }

// BoundNames returns the non-wildcard names this destructuring binds.
func (n *TupleDestructure) BoundNames() []string {
	var out []string
	for _, name := range n.Names {
		if name != "_" {
			out = append(out, name)
		}
	}
	return out
}

type ExprStmt struct {
	stmtBase
	X Expr
}

func (n *ExprStmt) stmtNode() {}

// Modifies implements the pre/postfix and built-in-collection-mutator rules
// from spec.md §4.B item 2.
func (n *ExprStmt) Modifies() IdentSet {
	switch x := n.X.(type) {
	case *PostfixOp:
		if root, ok := rootIdent(x.Operand); ok {
			return NewIdentSet(root)
		}
	case *UnaryOp:
		if x.Op == "++" || x.Op == "--" {
			if root, ok := rootIdent(x.Operand); ok {
				return NewIdentSet(root)
			}
		}
	case *Call:
		if x.IsBuiltinMutator() {
			if recv := x.Receiver(); recv != nil {
				if root, ok := rootIdent(recv); ok {
					return NewIdentSet(root)
				}
			}
		}
	}
	return IdentSet{}
}

// Return is `return;`, `return expr;`, or `return (a, b, ...);`.
type Return struct {
	stmtBase
	Values []Expr
}

func (n *Return) stmtNode()          {}
func (n *Return) Modifies() IdentSet { return IdentSet{} }

// IsTuple reports a multi-value return.
func (n *Return) IsTuple() bool { return len(n.Values) > 1 }

// IsBare reports a bare `return;` with no values.
func (n *Return) IsBare() bool { return len(n.Values) == 0 }

type Block struct {
	stmtBase
	Stmts []Stmt
}

func (n *Block) stmtNode() {}

func (n *Block) Modifies() IdentSet {
	out := IdentSet{}
	for _, s := range n.Stmts {
		out.Union(s.Modifies())
	}
	return out
}

type If struct {
	stmtBase
	Cond Expr
	Then *Block
	Else *Block // nil if no else branch
}

func (n *If) stmtNode() {}

func (n *If) Modifies() IdentSet {
	out := n.Then.Modifies()
	if n.Else != nil {
		out.Union(n.Else.Modifies())
	}
	return out
}

// RangeFor is `for i in start:end { ... }` — index-based.
type RangeFor struct {
	stmtBase
	Var        string
	Start, End Expr
	Body       *Block
}

func (n *RangeFor) stmtNode() {}

func (n *RangeFor) Modifies() IdentSet {
	out := n.Body.Modifies()
	out.Remove(n.Var)
	return out
}

// EachFor is `for item in iterable { ... }` — iterable-based, the view
// compiler's keyed each-for construct shares this statement shape with an
// optional key expression when used in a view body (see ViewForEach).
type EachFor struct {
	stmtBase
	Var      string
	Iterable Expr
	Body     *Block
}

func (n *EachFor) stmtNode() {}

func (n *EachFor) Modifies() IdentSet {
	out := n.Body.Modifies()
	out.Remove(n.Var)
	return out
}

// ---- shared free-identifier / member-dependency walk over statements ----

// StmtFreeIdentifiers computes the identifiers a statement reads, ignoring
// any shadowing from sibling statements in an enclosing block (that
// subtraction is layered on by the caller — see freeIdentifiersMinusBound).
func StmtFreeIdentifiers(s Stmt) IdentSet {
	switch n := s.(type) {
	case *VarDecl:
		if n.Init != nil {
			return n.Init.FreeIdentifiers()
		}
		return IdentSet{}
	case *Assign:
		return n.Value.FreeIdentifiers()
	case *IndexAssign:
		out := n.Value.FreeIdentifiers()
		if ia, ok := n.Target.(*IndexAccess); ok {
			out.Union(ia.Object.FreeIdentifiers()).Union(ia.Index.FreeIdentifiers())
		}
		return out
	case *MemberAssign:
		out := n.Value.FreeIdentifiers()
		if ma, ok := n.Target.(*MemberAccess); ok {
			out.Union(ma.Object.FreeIdentifiers())
		}
		return out
	case *TupleDestructure:
		return n.Value.FreeIdentifiers()
	case *ExprStmt:
		return n.X.FreeIdentifiers()
	case *Return:
		out := IdentSet{}
		for _, v := range n.Values {
			out.Union(v.FreeIdentifiers())
		}
		return out
	case *Block:
		out := IdentSet{}
		bound := IdentSet{}
		for _, st := range n.Stmts {
			out.Union(freeIdentifiersMinusBound(st, bound))
			collectBindings(st, bound)
		}
		return out
	case *If:
		out := n.Cond.FreeIdentifiers()
		out.Union(StmtFreeIdentifiers(n.Then))
		if n.Else != nil {
			out.Union(StmtFreeIdentifiers(n.Else))
		}
		return out
	case *RangeFor:
		out := n.Start.FreeIdentifiers().Union(n.End.FreeIdentifiers())
		body := IdentSet{}
		for name := range StmtFreeIdentifiers(n.Body) {
			if name != n.Var {
				body.Add(name)
			}
		}
		return out.Union(body)
	case *EachFor:
		out := n.Iterable.FreeIdentifiers()
		body := IdentSet{}
		for name := range StmtFreeIdentifiers(n.Body) {
			if name != n.Var {
				body.Add(name)
			}
		}
		return out.Union(body)
	default:
		return IdentSet{}
	}
}

// freeIdentifiersMinusBound subtracts names already bound by prior sibling
// statements in the same block (var declarations shadow outer names for the
// remainder of the block, per invariant 1 in spec.md §8).
func freeIdentifiersMinusBound(s Stmt, bound IdentSet) IdentSet {
	reads := StmtFreeIdentifiers(s)
	if len(bound) == 0 {
		return reads
	}
	out := IdentSet{}
	for name := range reads {
		if !bound.Has(name) {
			out.Add(name)
		}
	}
	return out
}

// collectBindings adds the names s introduces into the enclosing block's
// scope (declarations only — loop variables are scoped to their own body,
// not the enclosing block).
func collectBindings(s Stmt, bound IdentSet) {
	switch n := s.(type) {
	case *VarDecl:
		bound.Add(n.Name)
	case *TupleDestructure:
		for _, name := range n.BoundNames() {
			bound.Add(name)
		}
	}
}

// StmtMemberDependencies computes the (object, member) pairs a statement
// reads, recursing the same way StmtFreeIdentifiers does.
func StmtMemberDependencies(s Stmt) MemberDeps {
	switch n := s.(type) {
	case *VarDecl:
		if n.Init != nil {
			return n.Init.MemberDependencies()
		}
		return nil
	case *Assign:
		return n.Value.MemberDependencies()
	case *IndexAssign:
		out := n.Value.MemberDependencies()
		if ia, ok := n.Target.(*IndexAccess); ok {
			out = out.Union(ia.Object.MemberDependencies()).Union(ia.Index.MemberDependencies())
		}
		return out
	case *MemberAssign:
		out := n.Value.MemberDependencies()
		if ma, ok := n.Target.(*MemberAccess); ok {
			out = out.Union(ma.Object.MemberDependencies())
		}
		return out
	case *TupleDestructure:
		return n.Value.MemberDependencies()
	case *ExprStmt:
		return n.X.MemberDependencies()
	case *Return:
		var out MemberDeps
		for _, v := range n.Values {
			out = out.Union(v.MemberDependencies())
		}
		return out
	case *Block:
		var out MemberDeps
		for _, st := range n.Stmts {
			out = out.Union(StmtMemberDependencies(st))
		}
		return out
	case *If:
		out := n.Cond.MemberDependencies()
		out = out.Union(StmtMemberDependencies(n.Then))
		if n.Else != nil {
			out = out.Union(StmtMemberDependencies(n.Else))
		}
		return out
	case *RangeFor:
		out := n.Start.MemberDependencies().Union(n.End.MemberDependencies())
		return out.Union(StmtMemberDependencies(n.Body))
	case *EachFor:
		out := n.Iterable.MemberDependencies()
		return out.Union(StmtMemberDependencies(n.Body))
	default:
		return nil
	}
}
