package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Store is the loaded, queryable set of external type definitions for one
// project. It is built once by Load (or LoadCache) and is safe to query
// concurrently only for reads; spec.md §5 never mutates a Store after load.
type Store struct {
	types  map[string]*Type
	byKey  map[string]map[methodKey]*Method // type name -> (name,arity) -> method
	closed *closures

	// byMappedID indexes methods by their mapped runtime identifier,
	// "namespace::func" as recorded by an @map/@intrinsic annotation's
	// value, for the feature detector's reverse lookups (spec.md §4.G).
	byMappedID map[string]*boundMethod
	// bySnakeName indexes methods by the snake_case form of their
	// declared name, built eagerly at load time per the design note in
	// spec.md §4.A: the checker looks up call targets far more often
	// than the store is loaded, so the index amortizes to_snake_case.
	bySnakeName map[string][]*boundMethod
}

// boundMethod pairs a method with the type that declares it, for index
// entries that must report both.
type boundMethod struct {
	Owner  string
	Method *Method
}

// Load reads every `.kdef` definition file directly under dir (spec.md §6),
// parses it, and merges same-named/same-arity method overloads across
// files. A file that cannot be read or parsed is logged as a warning and
// skipped — schema loading never fails the whole build over one bad file,
// mirroring the "missing file logs and returns empty" tolerance spec.md §4.A
// specifies for a missing directory.
func Load(dir string, logger *zap.Logger) (*Store, error) {
	types := make(map[string]*Type)
	loadDirInto(types, dir, logger)
	return buildStore(types)
}

// LoadDirs reads every schema definition directory in order, merging
// same-named/same-arity methods across directories the same way Load merges
// them across files within one directory: a later directory's declaration
// of a type overrides an earlier one's same-keyed methods. This backs
// internal/config.Config.SchemaDirs, which a project may list more than one
// of (e.g. first-party plus vendored definitions).
func LoadDirs(dirs []string, logger *zap.Logger) (*Store, error) {
	types := make(map[string]*Type)
	for _, dir := range dirs {
		loadDirInto(types, dir, logger)
	}
	return buildStore(types)
}

// loadDirInto reads every `.kdef` file directly under dir (spec.md §6) and
// merges its declarations into types. A file that cannot be read or parsed
// is logged as a warning and skipped — schema loading never fails the whole
// build over one bad file, mirroring the "missing file logs and returns
// empty" tolerance spec.md §4.A specifies for a missing directory.
func loadDirInto(types map[string]*Type, dir string, logger *zap.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("schema: definition directory unavailable, continuing with empty store",
			zap.String("dir", dir), zap.Error(err))
		return
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".kdef") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("schema: could not read definition file", zap.String("file", path), zap.Error(err))
			continue
		}
		decls, err := ParseFile(string(raw))
		if err != nil {
			logger.Warn("schema: could not parse definition file", zap.String("file", path), zap.Error(err))
			continue
		}
		for _, decl := range decls {
			mergeType(types, decl)
		}
	}
}

// newEmptyStore returns a Store with no declared types: every lookup
// reports "not found" rather than panicking.
func newEmptyStore() (*Store, error) {
	return buildStore(map[string]*Type{})
}

// mergeType merges decl into the accumulating type map: a type seen in more
// than one file has its method lists merged by (name, arity), with a
// later-loaded method overriding an earlier one of the same key — matching
// how the checker treats file load order as declaration order.
func mergeType(types map[string]*Type, decl Type) {
	existing, ok := types[decl.Name]
	if !ok {
		t := decl
		t.Methods = append([]Method(nil), decl.Methods...)
		types[decl.Name] = &t
		return
	}

	if decl.Builtin {
		existing.Builtin = true
	}
	if decl.NoCopy {
		existing.NoCopy = true
	}
	if decl.Extends != "" {
		existing.Extends = decl.Extends
	}
	if decl.AliasOf != "" {
		existing.AliasOf = decl.AliasOf
	}

	seen := make(map[methodKey]int, len(existing.Methods))
	for i, m := range existing.Methods {
		seen[methodKey{m.Name, m.arity()}] = i
	}
	for _, m := range decl.Methods {
		key := methodKey{m.Name, m.arity()}
		if i, ok := seen[key]; ok {
			existing.Methods[i] = m
			continue
		}
		existing.Methods = append(existing.Methods, m)
		seen[key] = len(existing.Methods) - 1
	}
}

// buildStore finalizes a merged type map into a queryable Store: it runs the
// inheritance/alias/no-copy closure program once and builds both reverse
// indices eagerly.
func buildStore(types map[string]*Type) (*Store, error) {
	flat := make([]Type, 0, len(types))
	for _, t := range types {
		flat = append(flat, *t)
	}

	closed, err := buildClosures(flat)
	if err != nil {
		return nil, fmt.Errorf("schema: building type closures: %w", err)
	}

	s := &Store{
		types:       types,
		byKey:       make(map[string]map[methodKey]*Method, len(types)),
		closed:      closed,
		byMappedID:  make(map[string]*boundMethod),
		bySnakeName: make(map[string][]*boundMethod),
	}

	for name, t := range types {
		byKey := make(map[methodKey]*Method, len(t.Methods))
		for i := range t.Methods {
			m := &t.Methods[i]
			byKey[methodKey{m.Name, m.arity()}] = m

			bm := &boundMethod{Owner: name, Method: m}
			if m.Mapping != MappingNone && m.MappingValue != "" {
				s.byMappedID[m.MappingValue] = bm
			}
			snake := toSnakeCase(m.Name)
			s.bySnakeName[snake] = append(s.bySnakeName[snake], bm)
		}
		s.byKey[name] = byKey
	}

	return s, nil
}

// LookupType returns the declared Type by name, or false if undeclared.
func (s *Store) LookupType(name string) (*Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// LookupMethod finds name/arity on typeName, walking the inheritance chain
// (most-derived first) the way spec.md §4.A's method-resolution order
// requires: an override on a child type shadows the parent's.
func (s *Store) LookupMethod(typeName, name string, arity int) (*Method, string, bool) {
	key := methodKey{name, arity}
	if byKey, ok := s.byKey[typeName]; ok {
		if m, ok := byKey[key]; ok {
			return m, typeName, true
		}
	}
	for _, ancestor := range s.closed.ancestors[typeName] {
		if byKey, ok := s.byKey[ancestor]; ok {
			if m, ok := byKey[key]; ok {
				return m, ancestor, true
			}
		}
	}
	return nil, "", false
}

// IsHandle reports whether typeName names a declared external handle type
// (builtin or user-defined) as opposed to a value/data type.
func (s *Store) IsHandle(typeName string) bool {
	_, ok := s.types[typeName]
	return ok
}

// IsNoCopy reports whether typeName is no-copy, directly or by inheritance,
// stripping one level of array wrapping first (spec.md §4.C item 3: an
// array of a no-copy type is itself no-copy to move-check).
func (s *Store) IsNoCopy(typeName string) bool {
	typeName = strings.TrimPrefix(typeName, "[]")
	if t, ok := s.types[typeName]; ok && t.NoCopy {
		return true
	}
	return s.closed.nocopyTransitive[typeName]
}

// InheritsFrom reports whether child is child-of-or-equal-to ancestor in
// the extends chain.
func (s *Store) InheritsFrom(child, ancestor string) bool {
	if child == ancestor {
		return true
	}
	for _, a := range s.closed.ancestors[child] {
		if a == ancestor {
			return true
		}
	}
	return false
}

// ResolveAlias follows an @alias chain to its final, non-alias type name.
// A type with no alias resolves to itself.
func (s *Store) ResolveAlias(typeName string) string {
	if target, ok := s.closed.aliasTarget[typeName]; ok {
		return target
	}
	return typeName
}

// GetNamespaceForType returns the back-end namespace a mapped method on
// typeName resolves into, derived from its @map annotation value's
// "ns::func" form, or "" if the type has no mapped methods.
func (s *Store) GetNamespaceForType(typeName string) string {
	t, ok := s.types[typeName]
	if !ok {
		return ""
	}
	for _, m := range t.Methods {
		if m.Mapping == MappingMap || m.Mapping == MappingIntrinsic {
			if ns, _, found := strings.Cut(m.MappingValue, "::"); found {
				return ns
			}
		}
	}
	return ""
}

// LookupByMappedID finds the method whose @map/@intrinsic value exactly
// equals id (the "ns::func" form), for the feature detector's reverse
// lookup from a discovered back-end call (spec.md §4.G).
func (s *Store) LookupByMappedID(id string) (owner string, m *Method, ok bool) {
	bm, found := s.byMappedID[id]
	if !found {
		return "", nil, false
	}
	return bm.Owner, bm.Method, true
}

// LookupBySnakeName finds every declared method whose snake_case spelling
// equals name, across all types — used when the feature detector only has
// a bare function name to resolve against the schema.
func (s *Store) LookupBySnakeName(name string) []*Method {
	bound := s.bySnakeName[name]
	out := make([]*Method, len(bound))
	for i, bm := range bound {
		out[i] = bm.Method
	}
	return out
}

// toSnakeCase converts a camelCase or PascalCase identifier to snake_case,
// the spelling the generated back-end calls use for otherwise-unmapped
// methods (spec.md §4.A).
func toSnakeCase(name string) string {
	var sb strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if isUpperRune(r) {
			if i > 0 && (!isUpperRune(runes[i-1]) || (i+1 < len(runes) && !isUpperRune(runes[i+1]))) {
				sb.WriteByte('_')
			}
			sb.WriteRune(toLowerRune(r))
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimPrefix(sb.String(), "_")
}

func isUpperRune(r rune) bool { return r >= 'A' && r <= 'Z' }
func toLowerRune(r rune) rune {
	if isUpperRune(r) {
		return r + ('a' - 'A')
	}
	return r
}
