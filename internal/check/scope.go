// Package check implements the type checker (spec.md §4.C): the eight
// ordered substages that validate a parsed program against the schema
// store and against each other, plus the abbreviated type-inference table
// and the inter-type compatibility rules they share.
package check

import "github.com/kestrel-lang/kestrelc/internal/tree"

// binding is one entry of a method's local scope.
type binding struct {
	typ       tree.Type
	mutable   bool
	reference bool
}

// scope is the per-method local state spec.md §4.C substage 5 threads
// through the statement walk: a type-by-name map, a mutable-binding set,
// and a moved-identifier set. Scopes nest block-by-block; a child scope
// shadows, and on exit its declarations are discarded.
type scope struct {
	parent   *scope
	bindings map[string]binding
	moved    map[string]bool
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, bindings: map[string]binding{}, moved: map[string]bool{}}
}

// declare introduces a new local binding, shadowing any outer binding of
// the same name for the remainder of this scope.
func (s *scope) declare(name string, typ tree.Type, mutable, reference bool) {
	s.bindings[name] = binding{typ: typ, mutable: mutable, reference: reference}
	delete(s.moved, name)
}

// lookup finds name's binding, walking outward through enclosing scopes.
func (s *scope) lookup(name string) (binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.bindings[name]; ok {
			return b, true
		}
	}
	return binding{}, false
}

// isMoved reports whether name has been moved-from in this scope or any
// enclosing one, without an intervening re-declaration.
func (s *scope) isMoved(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, declared := cur.bindings[name]; declared {
			return cur.moved[name]
		}
	}
	return false
}

// markMoved records name as moved-from in the scope that actually declares
// it, so the flag is visible to sibling statements sharing that scope.
func (s *scope) markMoved(name string) {
	for cur := s; cur != nil; cur = cur.parent {
		if _, declared := cur.bindings[name]; declared {
			cur.moved[name] = true
			return
		}
	}
}

// isMutable reports whether name's nearest binding was declared mutable.
func (s *scope) isMutable(name string) bool {
	b, ok := s.lookup(name)
	return ok && b.mutable
}

// isReference reports whether name's nearest binding is a reference
// parameter or state variable.
func (s *scope) isReference(name string) bool {
	b, ok := s.lookup(name)
	return ok && b.reference
}
