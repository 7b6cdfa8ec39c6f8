package check

import "github.com/kestrel-lang/kestrelc/internal/tree"

// typeWorld lets compatibility checking recognize
// qualified-vs-bare enum names and enum-to-int conversions without
// threading the whole Checker into every helper.
type typeWorld struct {
	enums map[string]bool
}

// compatible implements spec.md §4.C's compatibility-rules paragraph:
// identity; unknown on either side; qualified-enum vs bare-enum by name
// match; array element-by-element with size equality for fixed arrays;
// unknown[] matches any array type; upcast/downcast through handle
// inheritance; numeric widening/narrowing; enum<->int both ways for a
// known enum.
func (w typeWorld) compatible(want, got tree.Type, schemaInherits func(child, ancestor string) bool) bool {
	if want.IsUnknown() || got.IsUnknown() {
		return true
	}
	if want.Equal(got) {
		return true
	}

	if want.IsArray() && got.IsArray() {
		if got.Elem().IsUnknown() || want.Elem().IsUnknown() {
			if want.FixedSize >= 0 && got.FixedSize >= 0 && want.FixedSize != got.FixedSize {
				return false
			}
			return true
		}
		if want.FixedSize >= 0 && got.FixedSize >= 0 && want.FixedSize != got.FixedSize {
			return false
		}
		return w.compatible(want.Elem(), got.Elem(), schemaInherits)
	}
	if want.IsArray() != got.IsArray() {
		return false
	}

	if bareEnumMatch(w.enums, want.Name, got.Name) {
		return true
	}

	if w.enums[want.Name] && got.Name == tree.TInt32 {
		return true
	}
	if w.enums[got.Name] && want.Name == tree.TInt32 {
		return true
	}

	if isNumericWidening(want.Name, got.Name) {
		return true
	}

	if schemaInherits != nil && (schemaInherits(got.Name, want.Name) || schemaInherits(want.Name, got.Name)) {
		return true
	}

	return false
}

// bareEnumMatch compares qualified ("Module::Color") and bare ("Color")
// spellings of the same enum name.
func bareEnumMatch(enums map[string]bool, a, b string) bool {
	if !enums[bareName(a)] && !enums[bareName(b)] {
		return false
	}
	return bareName(a) == bareName(b)
}

func bareName(qualified string) string {
	for i := len(qualified) - 1; i >= 1; i-- {
		if qualified[i] == ':' && qualified[i-1] == ':' {
			return qualified[i+1:]
		}
	}
	return qualified
}

// isNumericWidening reports the numeric conversions spec.md §4.C allows:
// float widenings/narrowings, int-to-float, and int<->unsigned variants
// (the language's only unsigned-flavored numeric name is "int32" itself in
// this grammar, so this reduces to int32<->float32/float64 and
// float32<->float64).
func isNumericWidening(want, got string) bool {
	numeric := map[string]bool{tree.TInt32: true, tree.TFloat32: true, tree.TFloat64: true}
	return numeric[want] && numeric[got]
}

// widerNumeric returns the wider of two numeric types per the
// type-inference table's binary-arithmetic rule: mixed int32 x float*
// widens to float, and float64 dominates float32.
func widerNumeric(a, b tree.Type) tree.Type {
	if a.Name == tree.TFloat64 || b.Name == tree.TFloat64 {
		return tree.Scalar(tree.TFloat64)
	}
	if a.Name == tree.TFloat32 || b.Name == tree.TFloat32 {
		return tree.Scalar(tree.TFloat32)
	}
	return tree.Scalar(tree.TInt32)
}
