package viewcompile

import "github.com/kestrel-lang/kestrelc/internal/tree"

// walkViewIf implements spec.md §4.F's two ViewIf regimes. Inside a loop
// (ctx.insideLoop), reactive tracking is disabled and both branches are
// just walked as a plain conditional's creation steps. Otherwise a fresh
// if-region is allocated and each branch's created element/instance/loop/
// nested-if IDs are captured for the region's future teardown.
func (c *Compiler) walkViewIf(em *ComponentEmission, v *tree.ViewIf, parentElementID int, ctx walkCtx) {
	if ctx.insideLoop {
		v.Reactive = false
		v.RegionID = 0
		c.walkBranch(em, v.Then, parentElementID, ctx, 0, true)
		c.walkBranch(em, v.Else, parentElementID, ctx, 0, false)
		return
	}

	v.Reactive = true
	id := len(em.IfRegions) + 1
	v.RegionID = id
	region := &IfRegion{
		ID:              id,
		Cond:            v.Cond,
		FreeIdents:      v.Cond.FreeIdentifiers(),
		ParentElementID: parentElementID,
	}
	em.IfRegions = append(em.IfRegions, region)
	c.recordChangeSubscriptions(em, v.Cond)

	before := captureCounts(em)
	region.ThenInstances = c.walkBranchInstances(em, v.Then, parentElementID, ctx, id, true)
	region.ThenElements, _, region.ThenLoops, region.ThenIfs = diffCounts(em, before)

	before = captureCounts(em)
	region.ElseInstances = c.walkBranchInstances(em, v.Else, parentElementID, ctx, id, false)
	region.ElseElements, _, region.ElseLoops, region.ElseIfs = diffCounts(em, before)
}

// walkBranchInstances is walkBranch plus collection of every component
// instance the branch's walk creates, by recording a snapshot of each
// type's counter immediately before and after.
func (c *Compiler) walkBranchInstances(em *ComponentEmission, nodes []tree.ViewNode, parentElementID int, ctx walkCtx, ifRegionID int, ifBranch bool) []InstanceRef {
	before := make(map[string]int, len(em.InstanceCounters))
	for name, n := range em.InstanceCounters {
		before[name] = n
	}
	c.walkBranch(em, nodes, parentElementID, ctx, ifRegionID, ifBranch)

	var refs []InstanceRef
	for name, after := range em.InstanceCounters {
		for id := before[name]; id < after; id++ {
			refs = append(refs, InstanceRef{ComponentName: name, InstanceID: id})
		}
	}
	return refs
}

// walkBranch walks one ViewIf branch, tagging any bindings produced inside
// it with the owning if-region so their update routines can be guarded by
// _if_<id>_state (spec.md §4.F).
func (c *Compiler) walkBranch(em *ComponentEmission, nodes []tree.ViewNode, parentElementID int, ctx walkCtx, ifRegionID int, ifBranch bool) {
	start := len(em.Bindings)
	c.walkNodes(em, nodes, parentElementID, ctx)
	for i := start; i < len(em.Bindings); i++ {
		if em.Bindings[i].IfRegionID == 0 {
			em.Bindings[i].IfRegionID = ifRegionID
			em.Bindings[i].IfBranch = ifBranch
		}
	}
}

// branchCounts is a snapshot of the per-kind counters used to diff what a
// branch's walk created.
type branchCounts struct {
	elements int
	loops    int
	ifs      int
}

func captureCounts(em *ComponentEmission) branchCounts {
	return branchCounts{
		elements: em.NextElementID,
		loops:    len(em.LoopRegions),
		ifs:      len(em.IfRegions),
	}
}

// diffCounts turns the before/after element/loop/if counter snapshots into
// the ID ranges a branch created — enough to drive a teardown routine that
// removes "everything created since the branch started."
func diffCounts(em *ComponentEmission, before branchCounts) (elements []int, instances []InstanceRef, loops []int, ifs []int) {
	for id := before.elements; id < em.NextElementID; id++ {
		elements = append(elements, id)
	}
	for i := before.loops; i < len(em.LoopRegions); i++ {
		loops = append(loops, em.LoopRegions[i].ID)
	}
	for i := before.ifs; i < len(em.IfRegions); i++ {
		ifs = append(ifs, em.IfRegions[i].ID)
	}
	return elements, instances, loops, ifs
}

// recordChangeSubscriptions scans a view-if condition for member accesses
// on a named child instance or ref-bound element, recording the
// (object, member) pairs the mount pipeline must subscribe a change
// notifier to (spec.md §4.D item 2).
func (c *Compiler) recordChangeSubscriptions(em *ComponentEmission, cond tree.Expr) {
	for _, dep := range cond.MemberDependencies() {
		em.ChangeSubscriptions = append(em.ChangeSubscriptions, ChangeSubscription{
			ComponentName: dep.Object,
			Member:        dep.Member,
		})
	}
}

// walkViewForRange implements the range-for region (spec.md §4.F, "View
// range-for"): outside a loop the body would be a plain integer for-loop,
// but every region is modeled uniformly here since the emitted code's
// shape is a downstream concern, not this package's.
func (c *Compiler) walkViewForRange(em *ComponentEmission, v *tree.ViewForRange, parentElementID int, ctx walkCtx) {
	id := len(em.LoopRegions) + 1
	v.Reactive = !ctx.insideLoop
	v.RegionID = id

	region := &LoopRegion{
		ID:              id,
		Kind:            LoopRange,
		Var:             v.Var,
		ParentElementID: parentElementID,
		Start:           v.Start,
		End:             v.End,
		Body:            v.Body,
	}
	classifyBody(region, v.Body)
	em.LoopRegions = append(em.LoopRegions, region)

	c.walkNodes(em, v.Body, parentElementID, walkCtx{insideLoop: true})
}

// walkViewForEach implements the each-for region (spec.md §4.F, "View
// each-for with key"), recording the iterable, optional key expression, and
// child shape needed for keyed reconciliation.
func (c *Compiler) walkViewForEach(em *ComponentEmission, v *tree.ViewForEach, parentElementID int, ctx walkCtx) {
	id := len(em.LoopRegions) + 1
	v.RegionID = id

	region := &LoopRegion{
		ID:              id,
		Kind:            LoopEach,
		Var:             v.Var,
		ParentElementID: parentElementID,
		Iterable:        v.Iterable,
		Key:             v.Key,
		Body:            v.Body,
	}
	classifyBody(region, v.Body)
	em.LoopRegions = append(em.LoopRegions, region)

	c.walkNodes(em, v.Body, parentElementID, walkCtx{insideLoop: true})
}

// classifyBody records whether a loop's body is a single component
// instantiation (requiring a vector of that component type) or an HTML
// root (requiring a vector of root handles), per spec.md §4.F.
func classifyBody(region *LoopRegion, body []tree.ViewNode) {
	if len(body) != 1 {
		region.BodyIsElement = true
		return
	}
	switch n := body[0].(type) {
	case *tree.ComponentInst:
		region.BodyIsComponent = true
		region.ComponentType = n.Name
	case *tree.Element:
		region.BodyIsElement = true
	default:
		region.BodyIsElement = true
	}
}
