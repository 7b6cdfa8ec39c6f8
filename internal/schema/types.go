// Package schema loads and queries external type definitions (handle types,
// their instance/static methods, inheritance, and annotation-derived
// metadata) from the definition-file grammar described in spec.md §6.
package schema

// MappingKind classifies how a method maps onto the back-end runtime.
type MappingKind byte

const (
	MappingNone      MappingKind = 0
	MappingMap       MappingKind = 1
	MappingInline    MappingKind = 2
	MappingIntrinsic MappingKind = 3
)

// Param is one method parameter as declared in a definition file.
type Param struct {
	Type string
	Name string
}

// Method is one type-level method declaration.
type Method struct {
	Name         string
	Return       string // "" for void
	Shared       bool   // a static/shared method rather than an instance method
	Mapping      MappingKind
	MappingValue string
	Params       []Param
}

// arity returns the parameter count used to merge same-named overloads by
// (name, arity) per spec.md §4.A load semantics.
func (m Method) arity() int { return len(m.Params) }

// Type is one external handle/value type declaration.
type Type struct {
	Name      string
	Builtin   bool
	NoCopy    bool
	Extends   string // "" if no parent
	AliasOf   string // "" if not an alias
	Methods   []Method
}

// methodKey identifies a method by (name, arity) for merge-by-overload.
type methodKey struct {
	name  string
	arity int
}
