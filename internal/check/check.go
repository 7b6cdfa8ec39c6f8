package check

import (
	"github.com/kestrel-lang/kestrelc/internal/diag"
	"github.com/kestrel-lang/kestrelc/internal/schema"
	"github.com/kestrel-lang/kestrelc/internal/tree"
)

// eventValueTypes maps the distinguished event-attribute names spec.md
// §4.C substage 6 names to the value type their handler parameter must
// accept.
var eventValueTypes = map[string]string{
	"oninput":   tree.TString,
	"onchange":  tree.TString,
	"onkeydown": tree.TInt32,
}

// Checker runs the eight ordered substages of spec.md §4.C over a whole
// parsed Program, reporting the first error through a fail-fast
// diag.Collector (spec.md §9's "exception-style control flow" design note).
type Checker struct {
	store *schema.Store
	diags *diag.Collector

	enums      map[string]bool
	dataFields map[string][]string // data-type name (bare and qualified) -> field names
	components map[string]*tree.Component
	byModule   map[string]map[string]*tree.Component // module -> bare name -> component
	world      typeWorld
}

// New creates a Checker bound to a schema store; diagnostics accumulate on
// the returned collector.
func New(store *schema.Store) *Checker {
	return &Checker{
		store:      store,
		diags:      &diag.Collector{},
		enums:      map[string]bool{},
		dataFields: map[string][]string{},
		components: map[string]*tree.Component{},
		byModule:   map[string]map[string]*tree.Component{},
	}
}

// Check runs all eight substages in order against prog, stopping at the
// first reported error. It returns the collector so the caller can inspect
// warnings even on success.
func (c *Checker) Check(prog *tree.Program) *diag.Collector {
	c.registerEnumsAndData(prog)
	c.world = typeWorld{enums: c.enums}

	c.componentNameCollisions(prog)
	if c.diags.Failed() {
		return c.diags
	}
	c.validateDataTypes(prog)
	if c.diags.Failed() {
		return c.diags
	}
	for _, comp := range prog.Components {
		c.validateParamsAndState(comp)
		if c.diags.Failed() {
			return c.diags
		}
	}
	for _, comp := range prog.Components {
		for i := range comp.Methods {
			c.checkMethod(comp, &comp.Methods[i])
			if c.diags.Failed() {
				return c.diags
			}
		}
	}
	for _, comp := range prog.Components {
		c.checkViewAttributes(comp)
		if c.diags.Failed() {
			return c.diags
		}
	}
	for _, comp := range prog.Components {
		c.checkCrossComponentVisibility(prog, comp)
		if c.diags.Failed() {
			return c.diags
		}
	}
	for _, comp := range prog.Components {
		c.checkRouter(comp)
		if c.diags.Failed() {
			return c.diags
		}
	}
	return c.diags
}

// registerEnumsAndData is substage 2: build the enum-name set and the
// data-type field-name map, both bare and module-qualified.
func (c *Checker) registerEnumsAndData(prog *tree.Program) {
	for _, e := range prog.Enums {
		c.enums[e.Name] = true
	}
	for _, comp := range prog.Components {
		for _, e := range comp.Enums {
			c.enums[e.Name] = true
			c.enums[comp.Module+"::"+e.Name] = true
		}
		c.components[comp.Name] = comp
		c.components[comp.Module+"::"+comp.Name] = comp
		if c.byModule[comp.Module] == nil {
			c.byModule[comp.Module] = map[string]*tree.Component{}
		}
		c.byModule[comp.Module][comp.Name] = comp
		for _, d := range comp.DataTypes {
			c.dataFields[d.Name] = d.FieldNames()
			c.dataFields[comp.Module+"::"+d.Name] = d.FieldNames()
		}
	}
	for _, d := range prog.DataTypes {
		c.dataFields[d.Name] = d.FieldNames()
		c.dataFields[d.Module+"::"+d.Name] = d.FieldNames()
	}
}

// componentNameCollisions is substage 1: a component may not share its
// bare name with any known schema handle type.
func (c *Checker) componentNameCollisions(prog *tree.Program) {
	for _, comp := range prog.Components {
		if c.store.IsHandle(comp.Name) {
			c.diags.Report(diag.New(diag.KindStructural, 0,
				"component %q collides with schema handle type of the same name", comp.Name))
			return
		}
	}
}

// validateDataTypes is substage 3: every field of every data type must be
// value-semantic (non-no-copy, including through arrays).
func (c *Checker) validateDataTypes(prog *tree.Program) {
	check := func(d *tree.DataTypeDecl) bool {
		for _, f := range d.Fields {
			name := f.Type.Name
			if f.Type.IsArray() {
				name = f.Type.Elem().Name
			}
			if c.store.IsNoCopy(name) {
				c.diags.Report(diag.New(diag.KindType, d.Position.Line,
					"data type %q field %q has no-copy type %q: data types must be value-semantic",
					d.Name, f.Name, name))
				return false
			}
		}
		return true
	}
	for i := range prog.DataTypes {
		if !check(&prog.DataTypes[i]) {
			return
		}
	}
	for _, comp := range prog.Components {
		for i := range comp.DataTypes {
			if !check(&comp.DataTypes[i]) {
				return
			}
		}
	}
}

// validateParamsAndState is substage 4: per-component parameter and state
// validation (type compatibility, public-on-reference, uninitialized
// references, move/reference/copy discipline at declaration, and the
// upward-reference ban below).
func (c *Checker) validateParamsAndState(comp *tree.Component) {
	for _, p := range comp.Params {
		if p.Default == nil {
			continue
		}
		s := newScope(nil)
		got := c.inferExpr(p.Default, s)
		if !c.world.compatible(p.Type, got, c.store.InheritsFrom) {
			c.diags.Report(diag.New(diag.KindType, p.Position.Line,
				"parameter %q declared %s but default initializer is %s", p.Name, p.Type, got))
			return
		}
	}
	for _, sv := range comp.State {
		if sv.Public && sv.Reference {
			c.diags.Report(diag.New(diag.KindVisibility, sv.Position.Line,
				"state variable %q: pub is not allowed on a reference binding", sv.Name))
			return
		}
		if sv.Reference && sv.Init == nil {
			c.diags.Report(diag.New(diag.KindMutability, sv.Position.Line,
				"state variable %q: a reference binding must be initialized", sv.Name))
			return
		}
		if sv.Init == nil {
			continue
		}
		if sv.Reference && isUpwardReference(sv.Init) {
			c.diags.Report(diag.New(diag.KindStructural, sv.Position.Line,
				"state variable %q: a reference binding may not target a child component's member (upward reference)", sv.Name))
			return
		}
		s := newScope(nil)
		got := c.inferExpr(sv.Init, s)
		if !c.world.compatible(sv.Type, got, c.store.InheritsFrom) {
			c.diags.Report(diag.New(diag.KindType, sv.Position.Line,
				"state variable %q declared %s but initializer is %s", sv.Name, sv.Type, got))
			return
		}
		if sv.Reference {
			continue
		}
		if c.store.IsNoCopy(sv.Type.Name) {
			if _, isMove := sv.Init.(*tree.MoveExpr); !isMove {
				c.diags.Report(diag.New(diag.KindMove, sv.Position.Line,
					"state variable %q: no-copy type %s must be initialized by move (:expr)", sv.Name, sv.Type))
				return
			}
		}
	}
}

// isUpwardReference reports whether init is a reference expression over a
// member access (`&child.prop`), the shape spec.md §3 forbids as a state
// initializer: a component's own state may not hold a reference into a
// child component instance's member, since the child's identity only
// becomes observable to its parent through the view tree, not through the
// parent's own declaration scope.
func isUpwardReference(init tree.Expr) bool {
	ref, ok := init.(*tree.RefExpr)
	if !ok {
		return false
	}
	_, isMember := ref.Operand.(*tree.MemberAccess)
	return isMember
}

// checkRouter is substage 8: router/placeholder correspondence and route
// argument validation.
func (c *Checker) checkRouter(comp *tree.Component) {
	hasPlaceholder := viewContainsRoute(comp.View)
	if comp.Router == nil {
		if hasPlaceholder {
			c.diags.Report(diag.New(diag.KindStructural, 0,
				"component %q: <route/> placeholder with no router block", comp.Name))
		}
		return
	}
	if !hasPlaceholder {
		c.diags.Report(diag.New(diag.KindStructural, comp.Router.Position.Line,
			"component %q: router block with no <route/> placeholder in view", comp.Name))
		return
	}
	for _, r := range comp.Router.Routes {
		target := c.resolveComponent(comp, r.Module, r.Component)
		if target == nil {
			c.diags.Report(diag.New(diag.KindUnresolved, r.Position.Line,
				"route %q: component %q not found", r.Path, r.Component))
			return
		}
		args := make([]tree.ComponentArg, len(r.Args))
		for i, a := range r.Args {
			args[i] = tree.ComponentArg{Name: a.Name, Value: a.Value}
		}
		if !c.checkInstantiationArgs(target, args, r.Position.Line) {
			return
		}
	}
}

func viewContainsRoute(nodes []tree.ViewNode) bool {
	for _, n := range nodes {
		switch v := n.(type) {
		case *tree.RouteNode:
			return true
		case *tree.ViewIf:
			if viewContainsRoute(v.Then) || viewContainsRoute(v.Else) {
				return true
			}
		case *tree.ViewForRange:
			if viewContainsRoute(v.Body) {
				return true
			}
		case *tree.ViewForEach:
			if viewContainsRoute(v.Body) {
				return true
			}
		case *tree.Element:
			if viewContainsRoute(v.Children) {
				return true
			}
		}
	}
	return false
}
