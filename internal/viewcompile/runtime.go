package viewcompile

// This file models the runtime behavior the emitted _sync_loop_<id> and
// _sync_if_<id> routines must exhibit (spec.md §4.F, §8 invariants 4/5/9).
// Since the back-end code generator is out of scope (spec.md §1), there is
// no generated source to execute; RangeLoopState, KeyedLoopState, and
// IfState instead give the compiler's own test suite something concrete to
// drive, so the behavioral contract itself — not just the IR shape — is
// exercised.

// item is an opaque runtime handle standing in for a created component
// instance or root element; identity is the pointer value.
type item struct {
	index int
}

// RangeLoopState tracks a range-for or unkeyed each-for region's live item
// vector, implementing the grow/shrink semantics of spec.md §4.F's "View
// range-for" sync routine.
type RangeLoopState struct {
	items []*item
}

// SyncResult reports what a sync call did, for tests to assert on without
// inspecting internal vector state directly.
type SyncResult struct {
	Grew          bool
	Shrank        bool
	Created       int
	Destroyed     int
	RebindNeeded  bool
	NoOp          bool
}

// Sync grows or shrinks the tracked vector to newCount, preserving the
// identity of every item at an index below min(old, new) (spec.md §8
// invariant 4). Shrinking destroys from the back. Growing a vector that
// already held at least one component instance requires rebinding handlers
// on the previously-created items, since a slice grow can move backing
// storage (spec.md §4.F).
func (s *RangeLoopState) Sync(newCount int) SyncResult {
	old := len(s.items)
	if newCount == old {
		return SyncResult{NoOp: true}
	}
	if newCount > old {
		preGrowth := old
		for i := old; i < newCount; i++ {
			s.items = append(s.items, &item{index: i})
		}
		return SyncResult{Grew: true, Created: newCount - old, RebindNeeded: preGrowth > 0}
	}

	destroyed := old - newCount
	for i := old - 1; i >= newCount; i-- {
		s.items = s.items[:i]
	}
	return SyncResult{Shrank: true, Destroyed: destroyed}
}

// Len reports the tracked item count.
func (s *RangeLoopState) Len() int { return len(s.items) }

// ItemAt returns the identity token at index i, for asserting identity is
// preserved across a grow or shrink.
func (s *RangeLoopState) ItemAt(i int) *item { return s.items[i] }

// KeyedLoopState tracks a keyed each-for region's live-item map,
// implementing spec.md §4.F's "View each-for with key" reconciliation:
// items whose key drops out of the new set are destroyed back-to-front,
// and new keys are created in iteration order without reordering survivors.
type KeyedLoopState[K comparable] struct {
	items map[K]*item
	order []K // insertion order, for a deterministic back-to-front destroy walk
}

// NewKeyedLoopState builds an empty keyed loop state.
func NewKeyedLoopState[K comparable]() *KeyedLoopState[K] {
	return &KeyedLoopState[K]{items: map[K]*item{}}
}

// Sync reconciles the tracked items against newKeys, in iteration order.
func (s *KeyedLoopState[K]) Sync(newKeys []K) SyncResult {
	newSet := make(map[K]struct{}, len(newKeys))
	for _, k := range newKeys {
		newSet[k] = struct{}{}
	}

	preGrowthSize := len(s.items)
	destroyed := 0
	var survivors []K
	for i := len(s.order) - 1; i >= 0; i-- {
		k := s.order[i]
		if _, keep := newSet[k]; keep {
			continue
		}
		delete(s.items, k)
		destroyed++
	}
	for _, k := range s.order {
		if _, ok := s.items[k]; ok {
			survivors = append(survivors, k)
		}
	}
	s.order = survivors

	created := 0
	for _, k := range newKeys {
		if _, ok := s.items[k]; ok {
			continue
		}
		s.items[k] = &item{}
		s.order = append(s.order, k)
		created++
	}

	result := SyncResult{Created: created, Destroyed: destroyed}
	if created == 0 && destroyed == 0 {
		result.NoOp = true
	}
	if len(s.items) > preGrowthSize {
		result.Grew = true
		result.RebindNeeded = preGrowthSize > 0
	}
	return result
}

// Keys returns the live key set, in current iteration order.
func (s *KeyedLoopState[K]) Keys() []K { return append([]K(nil), s.order...) }

// Has reports whether key k currently has a live item.
func (s *KeyedLoopState[K]) Has(k K) bool {
	_, ok := s.items[k]
	return ok
}

// IfState tracks a reactive if-region's current branch flag, implementing
// spec.md §4.F's _sync_if_<id> contract: a no-op when the condition hasn't
// changed, otherwise tear down the old branch and construct the other.
type IfState struct {
	current bool
	set     bool
}

// Sync evaluates newCond against the tracked state, reporting whether a
// toggle occurred (spec.md §8 invariant 6/9).
func (s *IfState) Sync(newCond bool) (toggled bool) {
	if s.set && s.current == newCond {
		return false
	}
	s.current = newCond
	s.set = true
	return true
}

// Current reports the tracked branch flag.
func (s *IfState) Current() bool { return s.current }
