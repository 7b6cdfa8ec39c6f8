package tree

import "strings"

// Expr is the capability interface every expression variant implements:
// source position, free-identifier collection, member-access dependency
// collection (for cross-component change wiring), and staticness.
type Expr interface {
	Pos() Position
	FreeIdentifiers() IdentSet
	MemberDependencies() MemberDeps
	IsStatic() bool
	exprNode()
}

// base carries the fields common to every expression variant: its source
// position and the type the checker infers for it (post-analysis
// annotation, zero value Type{} before checking runs).
type base struct {
	Position    Position
	Inferred    Type
	inferredSet bool
}

func (b base) Pos() Position { return b.Position }

// SetInferred records the checker's inferred type for this node.
func (b *base) SetInferred(t Type) {
	b.Inferred = t
	b.inferredSet = true
}

// InferredType returns the checker-assigned type, or Unknown() if checking
// has not yet annotated this node.
func (b base) InferredType() Type {
	if !b.inferredSet {
		return Unknown()
	}
	return b.Inferred
}

// ---- literals ----

type IntLit struct {
	base
	Value int64
}

func (n *IntLit) exprNode()                        {}
func (n *IntLit) IsStatic() bool                   { return true }
func (n *IntLit) FreeIdentifiers() IdentSet        { return IdentSet{} }
func (n *IntLit) MemberDependencies() MemberDeps   { return nil }

type FloatLit struct {
	base
	Value float64
}

func (n *FloatLit) exprNode()                      {}
func (n *FloatLit) IsStatic() bool                 { return true }
func (n *FloatLit) FreeIdentifiers() IdentSet      { return IdentSet{} }
func (n *FloatLit) MemberDependencies() MemberDeps { return nil }

type BoolLit struct {
	base
	Value bool
}

func (n *BoolLit) exprNode()                       {}
func (n *BoolLit) IsStatic() bool                  { return true }
func (n *BoolLit) FreeIdentifiers() IdentSet       { return IdentSet{} }
func (n *BoolLit) MemberDependencies() MemberDeps  { return nil }

// StringSegment is one piece of a (possibly interpolated) string literal:
// either literal text or an embedded expression.
type StringSegment struct {
	Literal string
	Expr    Expr // nil when this segment is plain Literal text
}

type StringLit struct {
	base
	Segments []StringSegment
}

func (n *StringLit) exprNode() {}

func (n *StringLit) IsStatic() bool {
	for _, s := range n.Segments {
		if s.Expr != nil {
			return false
		}
	}
	return true
}

// FreeIdentifiers scans each interpolation segment identifier-by-identifier;
// plain digits within a segment are ignored per spec.md §4.B.
func (n *StringLit) FreeIdentifiers() IdentSet {
	out := IdentSet{}
	for _, s := range n.Segments {
		if s.Expr != nil {
			out.Union(s.Expr.FreeIdentifiers())
		}
	}
	return out
}

func (n *StringLit) MemberDependencies() MemberDeps {
	var out MemberDeps
	for _, s := range n.Segments {
		if s.Expr != nil {
			out = out.Union(s.Expr.MemberDependencies())
		}
	}
	return out
}

// ---- identifier & access ----

type Ident struct {
	base
	Name string
}

func (n *Ident) exprNode()                      {}
func (n *Ident) IsStatic() bool                 { return false }
func (n *Ident) FreeIdentifiers() IdentSet      { return NewIdentSet(n.Name) }
func (n *Ident) MemberDependencies() MemberDeps { return nil }

// MemberAccess is `object.member`. The object is both a free-identifier read
// and a structured (object, member) dependency (spec.md §4.B item 1).
type MemberAccess struct {
	base
	Object Expr
	Member string
}

func (n *MemberAccess) exprNode()    {}
func (n *MemberAccess) IsStatic() bool {
	return n.Object.IsStatic()
}

func (n *MemberAccess) FreeIdentifiers() IdentSet {
	return n.Object.FreeIdentifiers()
}

func (n *MemberAccess) MemberDependencies() MemberDeps {
	deps := n.Object.MemberDependencies()
	if root, ok := rootIdent(n.Object); ok {
		deps = deps.Union(MemberDeps{{Object: root, Member: n.Member}})
	}
	return deps
}

// rootIdent returns the bare identifier name at the root of a member/index
// access chain, used both for MemberAccess dependency recording and for
// §4.B modification-collection's "outermost identifier" rule.
func rootIdent(e Expr) (string, bool) {
	switch v := e.(type) {
	case *Ident:
		return v.Name, true
	case *MemberAccess:
		return rootIdent(v.Object)
	case *IndexAccess:
		return rootIdent(v.Object)
	default:
		return "", false
	}
}

type IndexAccess struct {
	base
	Object Expr
	Index  Expr
}

func (n *IndexAccess) exprNode() {}
func (n *IndexAccess) IsStatic() bool {
	return n.Object.IsStatic() && n.Index.IsStatic()
}

func (n *IndexAccess) FreeIdentifiers() IdentSet {
	return n.Object.FreeIdentifiers().Union(n.Index.FreeIdentifiers())
}

func (n *IndexAccess) MemberDependencies() MemberDeps {
	return n.Object.MemberDependencies().Union(n.Index.MemberDependencies())
}

// ---- operators ----

type BinaryOp struct {
	base
	Op          string
	Left, Right Expr
}

func (n *BinaryOp) exprNode() {}
func (n *BinaryOp) IsStatic() bool {
	return n.Left.IsStatic() && n.Right.IsStatic()
}

func (n *BinaryOp) FreeIdentifiers() IdentSet {
	return n.Left.FreeIdentifiers().Union(n.Right.FreeIdentifiers())
}

func (n *BinaryOp) MemberDependencies() MemberDeps {
	return n.Left.MemberDependencies().Union(n.Right.MemberDependencies())
}

// IsComparison reports whether Op is one of the comparison/logical operators
// that always infer to bool.
func (n *BinaryOp) IsComparison() bool {
	switch n.Op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return true
	}
	return false
}

type UnaryOp struct {
	base
	Op      string
	Operand Expr
}

func (n *UnaryOp) exprNode()                        {}
func (n *UnaryOp) IsStatic() bool                   { return n.Operand.IsStatic() }
func (n *UnaryOp) FreeIdentifiers() IdentSet        { return n.Operand.FreeIdentifiers() }
func (n *UnaryOp) MemberDependencies() MemberDeps   { return n.Operand.MemberDependencies() }

// PostfixOp is `x++` / `x--`. Its operand drives the modification rule in
// spec.md §4.B (pre/postfix writes the operand identifier).
type PostfixOp struct {
	base
	Op      string
	Operand Expr
}

func (n *PostfixOp) exprNode()                      {}
func (n *PostfixOp) IsStatic() bool                 { return false }
func (n *PostfixOp) FreeIdentifiers() IdentSet      { return n.Operand.FreeIdentifiers() }
func (n *PostfixOp) MemberDependencies() MemberDeps { return n.Operand.MemberDependencies() }

type TernaryOp struct {
	base
	Cond, Then, Else Expr
}

func (n *TernaryOp) exprNode() {}
func (n *TernaryOp) IsStatic() bool {
	return n.Cond.IsStatic() && n.Then.IsStatic() && n.Else.IsStatic()
}

func (n *TernaryOp) FreeIdentifiers() IdentSet {
	return n.Cond.FreeIdentifiers().Union(n.Then.FreeIdentifiers()).Union(n.Else.FreeIdentifiers())
}

func (n *TernaryOp) MemberDependencies() MemberDeps {
	return n.Cond.MemberDependencies().Union(n.Then.MemberDependencies()).Union(n.Else.MemberDependencies())
}

// ---- calls ----

// Call is a function/method call. Callee is typically *Ident (a bare
// function or schema lookup) or *MemberAccess (a dotted method call, whose
// receiver is separately recorded per spec.md §4.B item 1).
type Call struct {
	base
	Callee Expr
	Args   []Expr
}

func (n *Call) exprNode() {}

func (n *Call) IsStatic() bool {
	// A call is never static: it may have side effects or depend on runtime
	// state even when every argument happens to be static.
	return false
}

func (n *Call) FreeIdentifiers() IdentSet {
	out := n.Callee.FreeIdentifiers()
	for _, a := range n.Args {
		out.Union(a.FreeIdentifiers())
	}
	return out
}

func (n *Call) MemberDependencies() MemberDeps {
	deps := n.Callee.MemberDependencies()
	for _, a := range n.Args {
		deps = deps.Union(a.MemberDependencies())
	}
	return deps
}

// CalleeName returns the bare or dotted function name used for schema
// lookup: "name" for an *Ident callee, "receiverMember" is resolved
// separately by the checker (the receiver's static type supplies the
// namespace), this returns just the method name.
func (n *Call) CalleeName() string {
	switch c := n.Callee.(type) {
	case *Ident:
		return c.Name
	case *MemberAccess:
		return c.Member
	default:
		return ""
	}
}

// Receiver returns the dotted-call receiver expression, or nil for a bare
// function call.
func (n *Call) Receiver() Expr {
	if m, ok := n.Callee.(*MemberAccess); ok {
		return m.Object
	}
	return nil
}

// IsBuiltinMutator reports whether this call's name is one of the
// collection-mutating built-ins from spec.md §4.B item 2.
func (n *Call) IsBuiltinMutator() bool {
	switch n.CalleeName() {
	case "push", "push_back", "pop", "pop_back", "clear":
		return true
	}
	return false
}

// EnumAccess is `EnumName::Member`.
type EnumAccess struct {
	base
	EnumName string
	Member   string
}

func (n *EnumAccess) exprNode()                        {}
func (n *EnumAccess) IsStatic() bool                   { return true }
func (n *EnumAccess) FreeIdentifiers() IdentSet        { return IdentSet{} }
func (n *EnumAccess) MemberDependencies() MemberDeps   { return nil }

// ---- arrays ----

type ArrayLit struct {
	base
	Elements []Expr
}

func (n *ArrayLit) exprNode() {}

func (n *ArrayLit) IsStatic() bool {
	for _, e := range n.Elements {
		if !e.IsStatic() {
			return false
		}
	}
	return true
}

func (n *ArrayLit) FreeIdentifiers() IdentSet {
	out := IdentSet{}
	for _, e := range n.Elements {
		out.Union(e.FreeIdentifiers())
	}
	return out
}

func (n *ArrayLit) MemberDependencies() MemberDeps {
	var out MemberDeps
	for _, e := range n.Elements {
		out = out.Union(e.MemberDependencies())
	}
	return out
}

// ArrayRepeat is `[value; count]`.
type ArrayRepeat struct {
	base
	Value Expr
	Count Expr
}

func (n *ArrayRepeat) exprNode() {}
func (n *ArrayRepeat) IsStatic() bool {
	return n.Value.IsStatic() && n.Count.IsStatic()
}

func (n *ArrayRepeat) FreeIdentifiers() IdentSet {
	return n.Value.FreeIdentifiers().Union(n.Count.FreeIdentifiers())
}

func (n *ArrayRepeat) MemberDependencies() MemberDeps {
	return n.Value.MemberDependencies().Union(n.Count.MemberDependencies())
}

// ---- reference / move ----

// RefExpr is `&expr`, aliasing without transferring ownership.
type RefExpr struct {
	base
	Operand Expr
}

func (n *RefExpr) exprNode()                        {}
func (n *RefExpr) IsStatic() bool                   { return false }
func (n *RefExpr) FreeIdentifiers() IdentSet        { return n.Operand.FreeIdentifiers() }
func (n *RefExpr) MemberDependencies() MemberDeps   { return n.Operand.MemberDependencies() }

// MoveExpr is `:expr`, transferring ownership under the linear discipline
// the checker enforces (spec.md §3 invariants, §4.C item 5, §8 invariant 7).
type MoveExpr struct {
	base
	Operand Expr
}

func (n *MoveExpr) exprNode()                        {}
func (n *MoveExpr) IsStatic() bool                   { return false }
func (n *MoveExpr) FreeIdentifiers() IdentSet        { return n.Operand.FreeIdentifiers() }
func (n *MoveExpr) MemberDependencies() MemberDeps   { return n.Operand.MemberDependencies() }

// MovedName returns the bare identifier name being moved, if the operand is
// a plain identifier (the only legal form for `:x`).
func (n *MoveExpr) MovedName() (string, bool) {
	id, ok := n.Operand.(*Ident)
	if !ok {
		return "", false
	}
	return id.Name, true
}

// ---- match / block ----

type MatchArm struct {
	Pattern string
	Body    Expr
}

type MatchExpr struct {
	base
	Subject Expr
	Arms    []MatchArm
}

func (n *MatchExpr) exprNode() {}

func (n *MatchExpr) IsStatic() bool {
	if !n.Subject.IsStatic() {
		return false
	}
	for _, a := range n.Arms {
		if !a.Body.IsStatic() {
			return false
		}
	}
	return true
}

func (n *MatchExpr) FreeIdentifiers() IdentSet {
	out := n.Subject.FreeIdentifiers()
	for _, a := range n.Arms {
		out.Union(a.Body.FreeIdentifiers())
	}
	return out
}

func (n *MatchExpr) MemberDependencies() MemberDeps {
	deps := n.Subject.MemberDependencies()
	for _, a := range n.Arms {
		deps = deps.Union(a.Body.MemberDependencies())
	}
	return deps
}

// BlockExpr is a `{ ...; yield expr }` or `{ ...; expr }` expression form.
// Its static value is the trailing yield expression, or the trailing
// expression statement, or void (see the type-inference table, spec.md
// §4.C).
type BlockExpr struct {
	base
	Stmts []Stmt
	Yield Expr // nil if the block ends in a bare expression statement or void
}

func (n *BlockExpr) exprNode() {}

func (n *BlockExpr) IsStatic() bool {
	if len(n.Stmts) > 0 {
		return false // a block with statements has runtime-ordered side effects
	}
	return n.Yield == nil || n.Yield.IsStatic()
}

func (n *BlockExpr) FreeIdentifiers() IdentSet {
	out := IdentSet{}
	bound := IdentSet{}
	for _, s := range n.Stmts {
		out.Union(freeIdentifiersMinusBound(s, bound))
		collectBindings(s, bound)
	}
	if n.Yield != nil {
		for name := range n.Yield.FreeIdentifiers() {
			if !bound.Has(name) {
				out.Add(name)
			}
		}
	}
	return out
}

func (n *BlockExpr) MemberDependencies() MemberDeps {
	var out MemberDeps
	for _, s := range n.Stmts {
		out = out.Union(StmtMemberDependencies(s))
	}
	if n.Yield != nil {
		out = out.Union(n.Yield.MemberDependencies())
	}
	return out
}

// TrailingExprStmt returns the block's final bare expression statement when
// it has no explicit yield, used by type inference's "else trailing
// expression statement" fallback.
func (n *BlockExpr) TrailingExprStmt() Expr {
	if n.Yield != nil || len(n.Stmts) == 0 {
		return nil
	}
	if es, ok := n.Stmts[len(n.Stmts)-1].(*ExprStmt); ok {
		return es.X
	}
	return nil
}

// interpolationIdents extracts identifier tokens from a raw interpolation
// source fragment, ignoring bare digit runs, for parsers that hand the tree
// builder a raw string instead of pre-split segments.
func interpolationIdents(src string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		tok := cur.String()
		cur.Reset()
		isDigits := true
		for _, r := range tok {
			if r < '0' || r > '9' {
				isDigits = false
				break
			}
		}
		if !isDigits {
			out = append(out, tok)
		}
	}
	for _, r := range src {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return out
}
