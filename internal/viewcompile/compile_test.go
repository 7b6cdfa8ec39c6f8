package viewcompile_test

import (
	"testing"

	"github.com/kestrel-lang/kestrelc/internal/tree"
	"github.com/kestrel-lang/kestrelc/internal/viewcompile"
)

func TestCompile_AssignsElementIDsAndBindings(t *testing.T) {
	comp := &tree.Component{
		Name: "Box",
		State: []tree.StateVar{{Name: "count", Type: tree.Scalar(tree.TInt32), Mutable: true}},
		View: []tree.ViewNode{
			&tree.Element{Tag: "div", Attributes: []tree.Attribute{
				{Name: "data-count", Value: &tree.Ident{Name: "count"}},
			}},
		},
	}

	em := viewcompile.New(nil).Compile(comp)

	el := comp.View[0].(*tree.Element)
	if el.ElementID != 1 {
		t.Fatalf("ElementID = %d, want 1", el.ElementID)
	}
	if len(em.Bindings) != 1 {
		t.Fatalf("len(Bindings) = %d, want 1", len(em.Bindings))
	}
	if !em.Bindings[0].FreeIdents.Has("count") {
		t.Error("binding free identifiers missing 'count'")
	}
	r, ok := em.UpdateRoutines["count"]
	if !ok || len(r.BindingIndices) != 1 {
		t.Errorf("UpdateRoutines[count] = %+v, ok=%v, want one binding", r, ok)
	}
}

func TestCompile_StaticAttributeIsNotBound(t *testing.T) {
	comp := &tree.Component{
		Name: "Box",
		View: []tree.ViewNode{
			&tree.Element{Tag: "div", Attributes: []tree.Attribute{
				{Name: "class", Value: &tree.StringLit{Segments: []tree.StringSegment{{Literal: "box"}}}},
			}},
		},
	}
	em := viewcompile.New(nil).Compile(comp)
	if len(em.Bindings) != 0 {
		t.Errorf("len(Bindings) = %d, want 0 for a static attribute", len(em.Bindings))
	}
}

func TestCompile_ViewIfInsideLoopIsNonReactive(t *testing.T) {
	rangeFor := &tree.ViewForRange{
		Var:   "i",
		Start: &tree.IntLit{Value: 0},
		End:   &tree.Ident{Name: "count"},
		Body: []tree.ViewNode{
			&tree.ViewIf{Cond: &tree.Ident{Name: "flag"}, Then: []tree.ViewNode{
				&tree.Element{Tag: "span"},
			}},
		},
	}
	comp := &tree.Component{Name: "List", View: []tree.ViewNode{rangeFor}}

	viewcompile.New(nil).Compile(comp)

	inner := rangeFor.Body[0].(*tree.ViewIf)
	if inner.Reactive {
		t.Error("ViewIf nested in a loop should not be reactive")
	}
	if !rangeFor.Reactive {
		t.Error("top-level ViewForRange should be reactive")
	}
}

func TestCompile_ReactiveIfCapturesBranchContents(t *testing.T) {
	vif := &tree.ViewIf{
		Cond: &tree.Ident{Name: "cond"},
		Then: []tree.ViewNode{&tree.ComponentInst{Name: "A"}},
		Else: []tree.ViewNode{&tree.ComponentInst{Name: "B"}},
	}
	comp := &tree.Component{Name: "Toggle", View: []tree.ViewNode{vif}}

	em := viewcompile.New(nil).Compile(comp)

	if !vif.Reactive || vif.RegionID == 0 {
		t.Fatal("top-level ViewIf should be reactive with a nonzero region id")
	}
	if len(em.IfRegions) != 1 {
		t.Fatalf("len(IfRegions) = %d, want 1", len(em.IfRegions))
	}
	region := em.IfRegions[0]
	if len(region.ThenInstances) != 1 || region.ThenInstances[0].ComponentName != "A" {
		t.Errorf("ThenInstances = %v, want one A instance", region.ThenInstances)
	}
	if len(region.ElseInstances) != 1 || region.ElseInstances[0].ComponentName != "B" {
		t.Errorf("ElseInstances = %v, want one B instance", region.ElseInstances)
	}
}

func TestCompile_MethodWrapping_SkipsInitAppendsUpdateCalls(t *testing.T) {
	comp := &tree.Component{
		Name:  "Counter",
		State: []tree.StateVar{{Name: "count", Type: tree.Scalar(tree.TInt32), Mutable: true, Public: true}},
		View: []tree.ViewNode{
			&tree.Element{Tag: "div", Attributes: []tree.Attribute{
				{Name: "data-count", Value: &tree.Ident{Name: "count"}},
			}},
		},
		Methods: []tree.Method{
			{Name: "init", Body: &tree.Block{}},
			{Name: "increment", Body: &tree.Block{Stmts: []tree.Stmt{
				&tree.Assign{Name: "count", Value: &tree.IntLit{Value: 1}},
			}}},
		},
	}

	em := viewcompile.New(nil).Compile(comp)

	var initWrap, incWrap *viewcompile.MethodWrap
	for i := range em.MethodWraps {
		switch em.MethodWraps[i].Name {
		case "init":
			initWrap = &em.MethodWraps[i]
		case "increment":
			incWrap = &em.MethodWraps[i]
		}
	}
	if initWrap == nil || !initWrap.Skipped {
		t.Fatal("init method should be marked Skipped")
	}
	if incWrap == nil || len(incWrap.UpdateCalls) != 1 || incWrap.UpdateCalls[0] != "count" {
		t.Errorf("increment wrap = %+v, want one UpdateCalls entry 'count'", incWrap)
	}
}

func TestCompile_MountPipelineReportsLifecycleHooks(t *testing.T) {
	comp := &tree.Component{
		Name: "Widget",
		Methods: []tree.Method{
			{Name: "mount", Body: &tree.Block{}},
		},
	}
	em := viewcompile.New(nil).Compile(comp)
	if !em.Mount.HasMount {
		t.Error("Mount.HasMount = false, want true")
	}
	if em.Mount.HasInit {
		t.Error("Mount.HasInit = true, want false (no init method declared)")
	}
}
