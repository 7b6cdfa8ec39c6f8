// Package feature implements the feature/header detector, component G
// (spec.md §4.G): it scans a checked program for the presence or absence
// of event kinds, namespace usages, and required handle types, and emits a
// flag record that gates which runtime-support surfaces and event-dispatch
// switch arms a downstream back-end needs to emit.
package feature

import (
	"sort"

	"github.com/kestrel-lang/kestrelc/internal/schema"
	"github.com/kestrel-lang/kestrelc/internal/tree"
)

// Flags is the detector's output: which event kinds occur anywhere in the
// program, which schema-backed namespaces are exercised, and which handle
// types must be available at runtime.
type Flags struct {
	Click    bool `json:"click"`
	Input    bool `json:"input"`
	Change   bool `json:"change"`
	Keydown  bool `json:"keydown"`

	// Namespaces is the set of back-end namespaces (derived from
	// schema.Store.GetNamespaceForType / LookupByMappedID) any call in the
	// program resolves into — e.g. "keyboard", "router", "fetch",
	// "websocket", "json".
	Namespaces []string `json:"namespaces,omitempty"`

	// RequiredHandles is the set of schema handle-type names the program
	// actually constructs, references, or calls a method on.
	RequiredHandles []string `json:"required_handles,omitempty"`
}

// accumulator lets Detect accumulate without duplicate entries
// before producing the sorted, deterministic output slices.
type accumulator struct {
	namespaces map[string]bool
	handles    map[string]bool
}

// Detect scans every component in prog and returns the combined feature
// flags for the whole program (spec.md §4.G operates program-wide: a
// single back-end runtime surface serves every compiled component).
func Detect(prog *tree.Program, store *schema.Store) Flags {
	acc := &accumulator{namespaces: map[string]bool{}, handles: map[string]bool{}}
	var flags Flags

	for _, comp := range prog.Components {
		scanAttrsForEvents(comp.View, &flags)
		scanViewForHandlesAndCalls(comp.View, store, acc)
		for i := range comp.Methods {
			scanStmtForCalls(comp.Methods[i].Body, store, acc)
		}
		for _, p := range comp.Params {
			recordHandleType(p.Type, store, acc)
		}
		for _, sv := range comp.State {
			recordHandleType(sv.Type, store, acc)
		}
	}

	flags.Namespaces = sortedKeys(acc.namespaces)
	flags.RequiredHandles = sortedKeys(acc.handles)
	return flags
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// scanAttrsForEvents walks a view tree recording which distinguished event
// attribute kinds (spec.md §4.C substage 6's oninput/onchange/onkeydown,
// plus onclick for click-handler registration) occur anywhere.
func scanAttrsForEvents(nodes []tree.ViewNode, flags *Flags) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *tree.Element:
			for _, a := range v.Attributes {
				switch a.Name {
				case "onclick":
					flags.Click = true
				case "oninput":
					flags.Input = true
				case "onchange":
					flags.Change = true
				case "onkeydown":
					flags.Keydown = true
				}
			}
			scanAttrsForEvents(v.Children, flags)
		case *tree.ViewIf:
			scanAttrsForEvents(v.Then, flags)
			scanAttrsForEvents(v.Else, flags)
		case *tree.ViewForRange:
			scanAttrsForEvents(v.Body, flags)
		case *tree.ViewForEach:
			scanAttrsForEvents(v.Body, flags)
		}
	}
}

// scanViewForHandlesAndCalls recurses a view tree, accumulating namespace
// and handle usage from every expression attached to an attribute, text
// node, condition, or loop bound.
func scanViewForHandlesAndCalls(nodes []tree.ViewNode, store *schema.Store, acc *accumulator) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *tree.Element:
			for _, a := range v.Attributes {
				scanExprForCalls(a.Value, store, acc)
			}
			scanViewForHandlesAndCalls(v.Children, store, acc)
		case *tree.TextNode:
			scanExprForCalls(v.Value, store, acc)
		case *tree.ViewIf:
			scanExprForCalls(v.Cond, store, acc)
			scanViewForHandlesAndCalls(v.Then, store, acc)
			scanViewForHandlesAndCalls(v.Else, store, acc)
		case *tree.ViewForRange:
			scanExprForCalls(v.Start, store, acc)
			scanExprForCalls(v.End, store, acc)
			scanViewForHandlesAndCalls(v.Body, store, acc)
		case *tree.ViewForEach:
			scanExprForCalls(v.Iterable, store, acc)
			if v.Key != nil {
				scanExprForCalls(v.Key, store, acc)
			}
			scanViewForHandlesAndCalls(v.Body, store, acc)
		}
	}
}

func scanStmtForCalls(s tree.Stmt, store *schema.Store, acc *accumulator) {
	switch n := s.(type) {
	case nil:
		return
	case *tree.VarDecl:
		scanExprForCalls(n.Init, store, acc)
		recordHandleType(n.Declared, store, acc)
	case *tree.Assign:
		scanExprForCalls(n.Value, store, acc)
	case *tree.IndexAssign:
		scanExprForCalls(n.Target, store, acc)
		scanExprForCalls(n.Value, store, acc)
	case *tree.MemberAssign:
		scanExprForCalls(n.Target, store, acc)
		scanExprForCalls(n.Value, store, acc)
	case *tree.TupleDestructure:
		scanExprForCalls(n.Value, store, acc)
	case *tree.ExprStmt:
		scanExprForCalls(n.X, store, acc)
	case *tree.Return:
		for _, v := range n.Values {
			scanExprForCalls(v, store, acc)
		}
	case *tree.Block:
		if n == nil {
			return
		}
		for _, sub := range n.Stmts {
			scanStmtForCalls(sub, store, acc)
		}
	case *tree.If:
		scanExprForCalls(n.Cond, store, acc)
		scanStmtForCalls(n.Then, store, acc)
		if n.Else != nil {
			scanStmtForCalls(n.Else, store, acc)
		}
	case *tree.RangeFor:
		scanExprForCalls(n.Start, store, acc)
		scanExprForCalls(n.End, store, acc)
		scanStmtForCalls(n.Body, store, acc)
	case *tree.EachFor:
		scanExprForCalls(n.Iterable, store, acc)
		scanStmtForCalls(n.Body, store, acc)
	}
}

// scanExprForCalls recurses an expression, recording a namespace/handle hit
// for every schema-resolvable call it finds.
func scanExprForCalls(e tree.Expr, store *schema.Store, acc *accumulator) {
	switch n := e.(type) {
	case nil:
		return
	case *tree.Call:
		recordCall(n, store, acc)
		scanExprForCalls(n.Callee, store, acc)
		for _, a := range n.Args {
			scanExprForCalls(a, store, acc)
		}
	case *tree.MemberAccess:
		scanExprForCalls(n.Object, store, acc)
	case *tree.IndexAccess:
		scanExprForCalls(n.Object, store, acc)
		scanExprForCalls(n.Index, store, acc)
	case *tree.BinaryOp:
		scanExprForCalls(n.Left, store, acc)
		scanExprForCalls(n.Right, store, acc)
	case *tree.UnaryOp:
		scanExprForCalls(n.Operand, store, acc)
	case *tree.PostfixOp:
		scanExprForCalls(n.Operand, store, acc)
	case *tree.TernaryOp:
		scanExprForCalls(n.Cond, store, acc)
		scanExprForCalls(n.Then, store, acc)
		scanExprForCalls(n.Else, store, acc)
	case *tree.ArrayLit:
		for _, el := range n.Elements {
			scanExprForCalls(el, store, acc)
		}
	case *tree.ArrayRepeat:
		scanExprForCalls(n.Value, store, acc)
		scanExprForCalls(n.Count, store, acc)
	case *tree.RefExpr:
		scanExprForCalls(n.Operand, store, acc)
	case *tree.MoveExpr:
		scanExprForCalls(n.Operand, store, acc)
	case *tree.MatchExpr:
		scanExprForCalls(n.Subject, store, acc)
		for _, arm := range n.Arms {
			scanExprForCalls(arm.Body, store, acc)
		}
	case *tree.BlockExpr:
		for _, st := range n.Stmts {
			scanStmtForCalls(st, store, acc)
		}
		scanExprForCalls(n.Yield, store, acc)
	case *tree.StringLit:
		for _, seg := range n.Segments {
			scanExprForCalls(seg.Expr, store, acc)
		}
	}
}

// recordCall resolves a call against the schema store and, on a hit,
// records both the owning type's namespace and the handle type itself.
func recordCall(n *tree.Call, store *schema.Store, acc *accumulator) {
	if store == nil {
		return
	}
	var owner string
	if recv := n.Receiver(); recv != nil {
		owner = receiverTypeName(recv)
	}
	if owner != "" {
		if _, actualOwner, ok := store.LookupMethod(owner, n.CalleeName(), len(n.Args)); ok {
			recordOwner(actualOwner, store, acc)
			return
		}
	}
	if mappedOwner, _, ok := store.LookupByMappedID(n.CalleeName()); ok {
		recordOwner(mappedOwner, store, acc)
		return
	}
	// A bare snake_case call with no resolvable receiver still proves the
	// method exists somewhere in the schema; record it against whatever
	// receiver type was syntactically present, if any.
	if owner != "" && len(store.LookupBySnakeName(n.CalleeName())) > 0 {
		recordOwner(owner, store, acc)
	}
}

// recordOwner records owner as a required handle and resolves the namespace
// its mapped methods fall under, if any.
func recordOwner(owner string, store *schema.Store, acc *accumulator) {
	if owner == "" || !store.IsHandle(owner) {
		return
	}
	acc.handles[owner] = true
	if ns := store.GetNamespaceForType(owner); ns != "" {
		acc.namespaces[ns] = true
	}
}

// receiverTypeName best-effort extracts a bare type/identifier name a call
// receiver might resolve to; full type resolution lives in internal/check,
// so this is a syntactic approximation sufficient for namespace detection
// on an already-checked program's annotated nodes.
func receiverTypeName(e tree.Expr) string {
	switch n := e.(type) {
	case *tree.Ident:
		return n.InferredType().Name
	case *tree.MemberAccess:
		return n.InferredType().Name
	case *tree.Call:
		return n.InferredType().Name
	default:
		return ""
	}
}

// recordHandleType records t (stripping array decoration) as a required
// handle if the schema store knows it as a handle type.
func recordHandleType(t tree.Type, store *schema.Store, acc *accumulator) {
	if store == nil {
		return
	}
	for t.IsArray() {
		t = t.Elem()
	}
	if t.Name == "" {
		return
	}
	if store.IsHandle(t.Name) {
		acc.handles[t.Name] = true
		if ns := store.GetNamespaceForType(t.Name); ns != "" {
			acc.namespaces[ns] = true
		}
	}
}
