// Package viewcompile implements the view compiler, component F (spec.md
// §4.F, "the hardest subsystem"): it lowers a checked component's view tree
// into a creation phase plus the data a back-end needs to emit the
// behavioral contract — view(parent), _destroy, _rebind, per-variable
// _update_<v> routines, and the if/loop/each-region sync routines. The
// contract with downstream code generation is behavioral, not textual
// (spec.md §6), so this package's output is a structured record, not
// generated source text.
package viewcompile

import "github.com/kestrel-lang/kestrelc/internal/tree"

// BindingKind distinguishes an attribute binding from a text binding.
type BindingKind int

const (
	BindingAttribute BindingKind = iota
	BindingText
)

// Binding is a runtime link between an element's attribute or text content
// and the state variables its value expression reads (spec.md §4.F,
// "Bindings are attached to non-static attribute values and non-static text
// content only").
type Binding struct {
	ElementID  int
	Kind       BindingKind
	AttrName   string // "" for a text binding
	Value      tree.Expr
	FreeIdents tree.IdentSet

	// IfRegionID and IfBranch record that this binding belongs to a
	// reactive if-region's branch, so its update routine can be guarded by
	// _if_<id>_state (spec.md §4.F, per-variable update routines).
	IfRegionID int  // 0 if not inside a reactive if-region
	IfBranch   bool // true = Then branch, false = Else branch
}

// ClickHandler is one registered click listener, recorded during the
// creation phase's "registers click listeners" step.
type ClickHandler struct {
	ElementID int
	Handler   tree.Expr
}

// IfRegion is a stored description of a reactive view-if/else (spec.md
// §4.F, GLOSSARY "If region"): condition, parent handle, and per-branch
// sets of created IDs, enough for a sync routine to tear down the inactive
// branch and construct the other.
type IfRegion struct {
	ID              int
	Cond            tree.Expr
	FreeIdents      tree.IdentSet
	ParentElementID int

	ThenElements  []int
	ThenInstances []InstanceRef
	ThenLoops     []int
	ThenIfs       []int

	ElseElements  []int
	ElseInstances []InstanceRef
	ElseLoops     []int
	ElseIfs       []int
}

// InstanceRef names one component instance by its (declared component
// type, per-type instance ordinal) pair — the per-component-type instance
// counters spec.md §4.F's creation-phase data requires, as opposed to a
// single compiler-wide integer.
type InstanceRef struct {
	ComponentName string
	InstanceID    int
}

// LoopKind distinguishes a range-for region from a keyed/unkeyed each-for
// region.
type LoopKind int

const (
	LoopRange LoopKind = iota
	LoopEach
)

// LoopRegion is a stored description of a view loop (spec.md §4.F,
// GLOSSARY "Loop region"): parent handle, range or iterable, child type,
// and whether the body is a single component instantiation (requiring a
// vector of that component type) or a plain element (requiring a vector of
// root handles).
type LoopRegion struct {
	ID              int
	Kind            LoopKind
	Var             string
	ParentElementID int

	// Range-for bounds; nil for an each-for region.
	Start, End tree.Expr

	// Each-for iterable and optional key expression (resolved against Var);
	// nil Iterable for a range-for region. A nil Key on an each-for region
	// is lowered like a range-for over the iterable (spec.md §4.F).
	Iterable tree.Expr
	Key      tree.Expr

	// BodyIsComponent/ComponentType/BodyIsElement record which vector kind
	// the region's runtime tracked state needs: a vector of component
	// instances named by ComponentType, or a vector of plain root handles.
	BodyIsComponent bool
	ComponentType   string
	BodyIsElement   bool

	Body []tree.ViewNode
}

// IsKeyed reports whether this is a keyed each-for region.
func (r *LoopRegion) IsKeyed() bool { return r.Kind == LoopEach && r.Key != nil }

// ChangeSubscription is a (child-instance, member-name) pair observed in a
// view-if condition, recorded so the emitter can subscribe to the child's
// per-field change notifier (spec.md §4.D item 2).
type ChangeSubscription struct {
	InstanceID    int
	ComponentName string
	Member        string
}

// UpdateRoutine is the per-state-variable update routine spec.md §4.F
// requires: the bindings it applies, in order, and whether it must invoke
// the variable's onXChange notifier (public mutable state only).
type UpdateRoutine struct {
	Var             string
	BindingIndices  []int
	NotifiesChange  bool
}

// MethodWrap records the trailing synchronization calls spec.md §4.F's
// "Method wrapping" step appends after a user method body.
type MethodWrap struct {
	Name              string
	Skipped           bool // true for the reserved "init" lifecycle method
	UpdateCalls       []string
	IfSyncCalls       []int
	LoopSyncCalls     []int
	ChangeNotifyCalls []string
}

// MountPipeline describes the component's entry routine (spec.md §4.F,
// "Mount pipeline"): whether init/mount lifecycle hooks exist, the click
// handlers to register, and the change subscriptions to wire.
type MountPipeline struct {
	HasInit             bool
	HasMount            bool
	ClickHandlers       []ClickHandler
	ChangeSubscriptions []ChangeSubscription
}

// ComponentEmission is the complete view-compiler output for one component.
type ComponentEmission struct {
	Component *tree.Component

	NextElementID    int
	InstanceCounters map[string]int

	Bindings     []Binding
	ClickHandlers []ClickHandler
	IfRegions    []*IfRegion
	LoopRegions  []*LoopRegion

	// UpdateRoutines is keyed by state-variable name.
	UpdateRoutines map[string]*UpdateRoutine

	ChangeSubscriptions []ChangeSubscription
	MethodWraps         []MethodWrap
	Mount               MountPipeline
}
