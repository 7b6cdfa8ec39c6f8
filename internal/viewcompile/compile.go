package viewcompile

import (
	"github.com/kestrel-lang/kestrelc/internal/diag"
	"github.com/kestrel-lang/kestrelc/internal/schema"
	"github.com/kestrel-lang/kestrelc/internal/tree"
)

// Compiler holds the schema store it was built with; the creation-phase
// walk does not query it. The Compiler holds no diagnostic collector:
// invariant violations uncovered after a successful type check, which
// spec.md §7 treats as compiler bugs rather than user-facing errors, panic
// through diag.Bug.
type Compiler struct {
	store *schema.Store
}

// New builds a Compiler bound to store.
func New(store *schema.Store) *Compiler {
	return &Compiler{store: store}
}

// walkCtx threads the "inside a loop" flag the creation-phase walk needs to
// pick between the reactive and non-reactive ViewIf regimes (spec.md §4.F):
// a condition nested in a loop body disables reactive tracking because the
// region would have to be re-created per iteration.
type walkCtx struct {
	insideLoop bool
}

// Compile runs the view compiler over comp's view tree, producing the
// complete per-component emission record. comp must already have passed
// internal/check; Compile assumes a well-typed tree and panics (via
// diag.Bug) on a structural shape it cannot have reached otherwise.
func (c *Compiler) Compile(comp *tree.Component) *ComponentEmission {
	em := &ComponentEmission{
		Component:        comp,
		NextElementID:    1,
		InstanceCounters: map[string]int{},
		UpdateRoutines:   map[string]*UpdateRoutine{},
	}

	c.walkNodes(em, comp.View, 0, walkCtx{})
	c.buildUpdateRoutines(em, comp)
	em.MethodWraps = c.wrapMethods(em, comp)
	em.Mount = MountPipeline{
		HasInit:             comp.MethodByName("init") != nil,
		HasMount:            comp.MethodByName("mount") != nil,
		ClickHandlers:       em.ClickHandlers,
		ChangeSubscriptions: em.ChangeSubscriptions,
	}
	return em
}

// walkNodes implements the creation phase: "creates each element by tag;
// ... sets attributes from immediate values; registers click listeners;
// appends to parent; recurses into children" (spec.md §4.F), threading
// parentElementID down so loop/if regions know their anchor.
func (c *Compiler) walkNodes(em *ComponentEmission, nodes []tree.ViewNode, parentElementID int, ctx walkCtx) {
	for _, n := range nodes {
		c.walkNode(em, n, parentElementID, ctx)
	}
}

func (c *Compiler) walkNode(em *ComponentEmission, n tree.ViewNode, parentElementID int, ctx walkCtx) {
	switch v := n.(type) {
	case *tree.Element:
		c.walkElement(em, v, ctx)
	case *tree.ComponentInst:
		c.walkComponentInst(em, v)
	case *tree.TextNode:
		c.walkTextNode(em, v, parentElementID, 0, false)
	case *tree.ViewIf:
		c.walkViewIf(em, v, parentElementID, ctx)
	case *tree.ViewForRange:
		c.walkViewForRange(em, v, parentElementID, ctx)
	case *tree.ViewForEach:
		c.walkViewForEach(em, v, parentElementID, ctx)
	case *tree.RouteNode:
		// A route placeholder has no creation-phase work of its own; the
		// router dispatches to the routed component's own view(parent).
	default:
		diag.Bug("viewcompile: unhandled ViewNode variant %T", n)
	}
}

func (c *Compiler) walkElement(em *ComponentEmission, e *tree.Element, ctx walkCtx) {
	id := em.NextElementID
	em.NextElementID++
	e.ElementID = id

	for _, a := range e.Attributes {
		if a.IsEvent() {
			if a.Name == "onclick" {
				em.ClickHandlers = append(em.ClickHandlers, ClickHandler{ElementID: id, Handler: a.Value})
			}
			continue
		}
		if a.Value != nil && !a.Value.IsStatic() {
			em.Bindings = append(em.Bindings, Binding{
				ElementID:  id,
				Kind:       BindingAttribute,
				AttrName:   a.Name,
				Value:      a.Value,
				FreeIdents: a.Value.FreeIdentifiers(),
			})
		}
	}

	c.walkNodes(em, e.Children, id, ctx)
}

func (c *Compiler) walkComponentInst(em *ComponentEmission, inst *tree.ComponentInst) {
	inst.InstanceID = em.InstanceCounters[inst.Name]
	em.InstanceCounters[inst.Name]++
}

func (c *Compiler) walkTextNode(em *ComponentEmission, t *tree.TextNode, elementID, ifRegionID int, ifBranch bool) {
	if t.Value == nil || t.Value.IsStatic() {
		return
	}
	em.Bindings = append(em.Bindings, Binding{
		ElementID:  elementID,
		Kind:       BindingText,
		Value:      t.Value,
		FreeIdents: t.Value.FreeIdentifiers(),
		IfRegionID: ifRegionID,
		IfBranch:   ifBranch,
	})
}
