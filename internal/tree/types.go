package tree

import "fmt"

// Type is the canonical representation of a source-language type: a bare
// name (primitive, enum, data type, handle type, or component), optionally
// wrapped in array decoration. FixedSize is -1 for a dynamically sized
// array ("elem[]") and >= 0 for a fixed-size array ("elem[N]").
type Type struct {
	Name      string
	ArrayOf   *Type
	FixedSize int
}

// Built-in scalar type names.
const (
	TInt32   = "int32"
	TFloat32 = "float32"
	TFloat64 = "float64"
	TString  = "string"
	TBool    = "bool"
	TVoid    = "void"
	TUnknown = "unknown"
)

// Scalar constructs a bare (non-array) Type by name.
func Scalar(name string) Type { return Type{Name: name, FixedSize: -1} }

// Unknown is the inference result for expressions the checker cannot place
// (an unresolved call to an unknown schema function, for instance).
func Unknown() Type { return Scalar(TUnknown) }

// Array wraps elem in a dynamically sized array type ("elem[]").
func Array(elem Type) Type {
	e := elem
	return Type{Name: "", ArrayOf: &e, FixedSize: -1}
}

// FixedArray wraps elem in a fixed-size array type ("elem[n]").
func FixedArray(elem Type, n int) Type {
	e := elem
	return Type{Name: "", ArrayOf: &e, FixedSize: n}
}

// IsArray reports whether t is any array type (fixed or dynamic).
func (t Type) IsArray() bool { return t.ArrayOf != nil }

// Elem returns the element type of an array type. Calling Elem on a
// non-array type is a checker bug and returns Unknown.
func (t Type) Elem() Type {
	if t.ArrayOf == nil {
		return Unknown()
	}
	return *t.ArrayOf
}

// IsUnknown reports whether t is the "unknown" sentinel type.
func (t Type) IsUnknown() bool { return !t.IsArray() && t.Name == TUnknown }

// IsNumeric reports whether t is one of the built-in numeric types.
func (t Type) IsNumeric() bool {
	if t.IsArray() {
		return false
	}
	switch t.Name {
	case TInt32, TFloat32, TFloat64:
		return true
	}
	return false
}

// IsFloat reports whether t is a floating-point type.
func (t Type) IsFloat() bool {
	return !t.IsArray() && (t.Name == TFloat32 || t.Name == TFloat64)
}

// String renders t in source-like notation, used in diagnostic messages.
func (t Type) String() string {
	if t.ArrayOf == nil {
		if t.Name == "" {
			return TUnknown
		}
		return t.Name
	}
	if t.FixedSize < 0 {
		return fmt.Sprintf("%s[]", t.ArrayOf.String())
	}
	return fmt.Sprintf("%s[%d]", t.ArrayOf.String(), t.FixedSize)
}

// Equal reports structural equality between two types.
func (t Type) Equal(o Type) bool {
	if t.IsArray() != o.IsArray() {
		return false
	}
	if t.IsArray() {
		return t.FixedSize == o.FixedSize && t.ArrayOf.Equal(*o.ArrayOf)
	}
	return t.Name == o.Name
}

// ReturnType is a method's declared return: either a single type or a tuple
// of types. Exactly one of Single/Tuple is populated; both empty means void.
type ReturnType struct {
	Single *Type
	Tuple  []Type
}

// IsVoid reports a method declared with no return type at all.
func (r ReturnType) IsVoid() bool { return r.Single == nil && len(r.Tuple) == 0 }

// IsTuple reports a tuple return declaration.
func (r ReturnType) IsTuple() bool { return len(r.Tuple) > 0 }
