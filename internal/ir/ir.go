// Package ir assembles the per-component output of the checker, the view
// compiler, and the feature detector into a single serializable Program
// artifact (SPEC_FULL.md §2's "internal/ir" row). It is the JSON contract a
// downstream back-end code generator would consume; the contract is
// deliberately flat (sorted identifier lists, not raw internal/tree
// expressions) since spec.md §6 makes the emitted-code contract behavioral,
// not textual, and the tree's Expr variants have no stable wire
// representation of their own here (the external parser owns that side of
// the JSON boundary, spec.md §4.B).
package ir

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"

	"github.com/kestrel-lang/kestrelc/internal/feature"
	"github.com/kestrel-lang/kestrelc/internal/tree"
	"github.com/kestrel-lang/kestrelc/internal/viewcompile"
)

// Binding is the serializable form of viewcompile.Binding.
type Binding struct {
	ElementID  int      `json:"element_id"`
	Kind       string   `json:"kind"` // "attribute" | "text"
	AttrName   string   `json:"attr_name,omitempty"`
	FreeIdents []string `json:"free_idents"`
	IfRegionID int      `json:"if_region_id,omitempty"`
	IfBranch   bool     `json:"if_branch,omitempty"`
}

// ClickHandler is the serializable form of viewcompile.ClickHandler.
type ClickHandler struct {
	ElementID  int      `json:"element_id"`
	FreeIdents []string `json:"free_idents"`
}

// InstanceRef is the serializable form of viewcompile.InstanceRef.
type InstanceRef struct {
	ComponentName string `json:"component_name"`
	InstanceID    int    `json:"instance_id"`
}

// IfRegion is the serializable form of viewcompile.IfRegion.
type IfRegion struct {
	ID              int           `json:"id"`
	FreeIdents      []string      `json:"free_idents"`
	ParentElementID int           `json:"parent_element_id"`
	ThenElements    []int         `json:"then_elements,omitempty"`
	ThenInstances   []InstanceRef `json:"then_instances,omitempty"`
	ThenLoops       []int         `json:"then_loops,omitempty"`
	ThenIfs         []int         `json:"then_ifs,omitempty"`
	ElseElements    []int         `json:"else_elements,omitempty"`
	ElseInstances   []InstanceRef `json:"else_instances,omitempty"`
	ElseLoops       []int         `json:"else_loops,omitempty"`
	ElseIfs         []int         `json:"else_ifs,omitempty"`
}

// LoopRegion is the serializable form of viewcompile.LoopRegion.
type LoopRegion struct {
	ID              int    `json:"id"`
	Kind            string `json:"kind"` // "range" | "each" | "each-keyed"
	Var             string `json:"var"`
	ParentElementID int    `json:"parent_element_id"`
	BodyIsComponent bool   `json:"body_is_component,omitempty"`
	ComponentType   string `json:"component_type,omitempty"`
	BodyIsElement   bool   `json:"body_is_element,omitempty"`
}

// ChangeSubscription is the serializable form of viewcompile.ChangeSubscription.
type ChangeSubscription struct {
	InstanceID    int    `json:"instance_id,omitempty"`
	ComponentName string `json:"component_name"`
	Member        string `json:"member"`
}

// UpdateRoutine is the serializable form of viewcompile.UpdateRoutine.
type UpdateRoutine struct {
	Var            string `json:"var"`
	BindingIndices []int  `json:"binding_indices"`
	NotifiesChange bool   `json:"notifies_change"`
}

// MethodWrap is the serializable form of viewcompile.MethodWrap.
type MethodWrap struct {
	Name              string   `json:"name"`
	Skipped           bool     `json:"skipped,omitempty"`
	UpdateCalls       []string `json:"update_calls,omitempty"`
	IfSyncCalls       []int    `json:"if_sync_calls,omitempty"`
	LoopSyncCalls     []int    `json:"loop_sync_calls,omitempty"`
	ChangeNotifyCalls []string `json:"change_notify_calls,omitempty"`
}

// MountPipeline is the serializable form of viewcompile.MountPipeline.
type MountPipeline struct {
	HasInit             bool                  `json:"has_init"`
	HasMount            bool                  `json:"has_mount"`
	ClickHandlers       []ClickHandler        `json:"click_handlers,omitempty"`
	ChangeSubscriptions []ChangeSubscription  `json:"change_subscriptions,omitempty"`
}

// Component is one compiled component's complete IR record: its emission
// order position, the view compiler's output, and the feature detector's
// flags.
type Component struct {
	Name  string `json:"name"`
	Order int    `json:"order"` // 0-based position in the topological emission order

	Bindings       []Binding                 `json:"bindings,omitempty"`
	IfRegions      []IfRegion                `json:"if_regions,omitempty"`
	LoopRegions    []LoopRegion              `json:"loop_regions,omitempty"`
	UpdateRoutines map[string]UpdateRoutine  `json:"update_routines,omitempty"`
	MethodWraps    []MethodWrap              `json:"method_wraps,omitempty"`
	Mount          MountPipeline             `json:"mount"`
}

// Program is the complete build artifact: every component in emission
// order, stamped with a CompilationID unique to this build invocation
// (SPEC_FULL.md §6's "compilation identity" addition), plus the
// program-wide feature flags internal/feature.Detect computes once across
// every component (spec.md §4.G: a single back-end runtime surface serves
// the whole compiled program, not one per component).
type Program struct {
	CompilationID string        `json:"compilation_id"`
	Components    []Component   `json:"components"`
	Feature       feature.Flags `json:"feature"`
}

// NewCompilationID mints a fresh v7 (time-ordered) UUID for a build
// invocation, matching the source language's own node-identity UUID
// version (SPEC_FULL.md §6).
func NewCompilationID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Assemble builds the Program IR from the topologically-sorted component
// order, the view compiler's per-component emissions, and the
// program-wide feature flags.
func Assemble(compilationID string, order []*tree.Component, emissions map[string]*viewcompile.ComponentEmission, flags feature.Flags) *Program {
	prog := &Program{CompilationID: compilationID, Feature: flags, Components: make([]Component, 0, len(order))}
	for i, comp := range order {
		em := emissions[comp.Name]
		prog.Components = append(prog.Components, Component{
			Name:           comp.Name,
			Order:          i,
			Bindings:       convertBindings(em),
			IfRegions:      convertIfRegions(em),
			LoopRegions:    convertLoopRegions(em),
			UpdateRoutines: convertUpdateRoutines(em),
			MethodWraps:    convertMethodWraps(em),
			Mount:          convertMount(em),
		})
	}
	return prog
}

// Marshal renders prog as indented JSON, matching the teacher's
// acceptance.SerializeIR convention of pretty-printed build artifacts.
func Marshal(prog *Program) ([]byte, error) {
	return json.MarshalIndent(prog, "", "  ")
}

func sortedIdents(s tree.IdentSet) []string {
	out := s.Slice()
	sort.Strings(out)
	return out
}

func convertBindings(em *viewcompile.ComponentEmission) []Binding {
	if em == nil {
		return nil
	}
	out := make([]Binding, 0, len(em.Bindings))
	for _, b := range em.Bindings {
		kind := "attribute"
		if b.Kind == viewcompile.BindingText {
			kind = "text"
		}
		out = append(out, Binding{
			ElementID:  b.ElementID,
			Kind:       kind,
			AttrName:   b.AttrName,
			FreeIdents: sortedIdents(b.FreeIdents),
			IfRegionID: b.IfRegionID,
			IfBranch:   b.IfBranch,
		})
	}
	return out
}

func convertInstances(refs []viewcompile.InstanceRef) []InstanceRef {
	if len(refs) == 0 {
		return nil
	}
	out := make([]InstanceRef, len(refs))
	for i, r := range refs {
		out[i] = InstanceRef{ComponentName: r.ComponentName, InstanceID: r.InstanceID}
	}
	return out
}

func convertIfRegions(em *viewcompile.ComponentEmission) []IfRegion {
	if em == nil {
		return nil
	}
	out := make([]IfRegion, 0, len(em.IfRegions))
	for _, r := range em.IfRegions {
		out = append(out, IfRegion{
			ID:              r.ID,
			FreeIdents:      sortedIdents(r.FreeIdents),
			ParentElementID: r.ParentElementID,
			ThenElements:    r.ThenElements,
			ThenInstances:   convertInstances(r.ThenInstances),
			ThenLoops:       r.ThenLoops,
			ThenIfs:         r.ThenIfs,
			ElseElements:    r.ElseElements,
			ElseInstances:   convertInstances(r.ElseInstances),
			ElseLoops:       r.ElseLoops,
			ElseIfs:         r.ElseIfs,
		})
	}
	return out
}

func convertLoopRegions(em *viewcompile.ComponentEmission) []LoopRegion {
	if em == nil {
		return nil
	}
	out := make([]LoopRegion, 0, len(em.LoopRegions))
	for _, r := range em.LoopRegions {
		kind := "range"
		if r.Kind == viewcompile.LoopEach {
			kind = "each"
			if r.IsKeyed() {
				kind = "each-keyed"
			}
		}
		out = append(out, LoopRegion{
			ID:              r.ID,
			Kind:            kind,
			Var:             r.Var,
			ParentElementID: r.ParentElementID,
			BodyIsComponent: r.BodyIsComponent,
			ComponentType:   r.ComponentType,
			BodyIsElement:   r.BodyIsElement,
		})
	}
	return out
}

func convertUpdateRoutines(em *viewcompile.ComponentEmission) map[string]UpdateRoutine {
	if em == nil || len(em.UpdateRoutines) == 0 {
		return nil
	}
	out := make(map[string]UpdateRoutine, len(em.UpdateRoutines))
	for name, r := range em.UpdateRoutines {
		out[name] = UpdateRoutine{
			Var:            r.Var,
			BindingIndices: r.BindingIndices,
			NotifiesChange: r.NotifiesChange,
		}
	}
	return out
}

func convertMethodWraps(em *viewcompile.ComponentEmission) []MethodWrap {
	if em == nil {
		return nil
	}
	out := make([]MethodWrap, 0, len(em.MethodWraps))
	for _, w := range em.MethodWraps {
		out = append(out, MethodWrap{
			Name:              w.Name,
			Skipped:           w.Skipped,
			UpdateCalls:       w.UpdateCalls,
			IfSyncCalls:       w.IfSyncCalls,
			LoopSyncCalls:     w.LoopSyncCalls,
			ChangeNotifyCalls: w.ChangeNotifyCalls,
		})
	}
	return out
}

func convertMount(em *viewcompile.ComponentEmission) MountPipeline {
	if em == nil {
		return MountPipeline{}
	}
	clicks := make([]ClickHandler, 0, len(em.Mount.ClickHandlers))
	for _, h := range em.Mount.ClickHandlers {
		var idents []string
		if h.Handler != nil {
			idents = sortedIdents(h.Handler.FreeIdentifiers())
		}
		clicks = append(clicks, ClickHandler{ElementID: h.ElementID, FreeIdents: idents})
	}
	subs := make([]ChangeSubscription, 0, len(em.Mount.ChangeSubscriptions))
	for _, s := range em.Mount.ChangeSubscriptions {
		subs = append(subs, ChangeSubscription{
			InstanceID:    s.InstanceID,
			ComponentName: s.ComponentName,
			Member:        s.Member,
		})
	}
	return MountPipeline{
		HasInit:             em.Mount.HasInit,
		HasMount:            em.Mount.HasMount,
		ClickHandlers:       clicks,
		ChangeSubscriptions: subs,
	}
}
