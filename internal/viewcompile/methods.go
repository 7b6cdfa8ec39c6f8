package viewcompile

import "github.com/kestrel-lang/kestrelc/internal/tree"

// buildUpdateRoutines implements spec.md §4.F's "Per-variable update
// routines": for every state variable any binding reads, emit a routine
// that applies every binding's update code, and — for a public mutable
// state variable — invokes its onXChange notifier.
func (c *Compiler) buildUpdateRoutines(em *ComponentEmission, comp *tree.Component) {
	public := map[string]bool{}
	for _, sv := range comp.State {
		public[sv.Name] = sv.Public && sv.Mutable
	}

	for i, b := range em.Bindings {
		for name := range b.FreeIdents {
			r, ok := em.UpdateRoutines[name]
			if !ok {
				r = &UpdateRoutine{Var: name, NotifiesChange: public[name]}
				em.UpdateRoutines[name] = r
			}
			r.BindingIndices = append(r.BindingIndices, i)
		}
	}
}

// wrapMethods implements spec.md §4.F's "Method wrapping": after a user
// method body, append calls to _update_x for each modified x with
// bindings, _sync_if_<id> for each if-region reading x, _sync_loop_<id>
// for each loop region reading x, and on<Y>Change for each modified
// reference parameter. "init" is excluded (it runs before the DOM exists);
// "mount" and "tick" still receive the trailing block.
func (c *Compiler) wrapMethods(em *ComponentEmission, comp *tree.Component) []MethodWrap {
	refParams := map[string]bool{}
	for _, p := range comp.Params {
		if p.Reference {
			refParams[p.Name] = true
		}
	}

	wraps := make([]MethodWrap, 0, len(comp.Methods))
	for i := range comp.Methods {
		m := &comp.Methods[i]
		w := MethodWrap{Name: m.Name}
		if m.IsLifecycleInit() {
			w.Skipped = true
			wraps = append(wraps, w)
			continue
		}

		modifies := m.ComputeModifications()
		for name := range modifies {
			if _, ok := em.UpdateRoutines[name]; ok {
				w.UpdateCalls = append(w.UpdateCalls, name)
			}
			if refParams[name] {
				w.ChangeNotifyCalls = append(w.ChangeNotifyCalls, name)
			}
		}
		for _, region := range em.IfRegions {
			if intersects(region.FreeIdents, modifies) {
				w.IfSyncCalls = append(w.IfSyncCalls, region.ID)
			}
		}
		for _, region := range em.LoopRegions {
			if intersectsLoop(region, modifies) {
				w.LoopSyncCalls = append(w.LoopSyncCalls, region.ID)
			}
		}
		wraps = append(wraps, w)
	}
	return wraps
}

func intersects(a, b tree.IdentSet) bool {
	for name := range b {
		if a.Has(name) {
			return true
		}
	}
	return false
}

func intersectsLoop(region *LoopRegion, modifies tree.IdentSet) bool {
	free := loopFreeIdentifiers(region)
	return intersects(free, modifies)
}

func loopFreeIdentifiers(region *LoopRegion) tree.IdentSet {
	out := tree.IdentSet{}
	if region.Start != nil {
		out.Union(region.Start.FreeIdentifiers())
	}
	if region.End != nil {
		out.Union(region.End.FreeIdentifiers())
	}
	if region.Iterable != nil {
		out.Union(region.Iterable.FreeIdentifiers())
	}
	return out
}
