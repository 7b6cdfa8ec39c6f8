package check

import (
	"github.com/kestrel-lang/kestrelc/internal/diag"
	"github.com/kestrel-lang/kestrelc/internal/tree"
)

// checkViewAttributes is substage 6: non-event attributes must infer to
// string; event attributes of distinguished names must bind to a method
// taking a single parameter of the event's value type.
func (c *Checker) checkViewAttributes(comp *tree.Component) {
	s := newScope(nil)
	for _, sv := range comp.State {
		s.declare(sv.Name, sv.Type, sv.Mutable, sv.Reference)
	}
	for _, p := range comp.Params {
		s.declare(p.Name, p.Type, p.Mutable, p.Reference)
	}
	c.checkViewNodes(comp, comp.View, s)
}

func (c *Checker) checkViewNodes(comp *tree.Component, nodes []tree.ViewNode, s *scope) {
	for _, n := range nodes {
		if c.diags.Failed() {
			return
		}
		switch v := n.(type) {
		case *tree.Element:
			c.checkAttributes(comp, v.Attributes, s)
			if c.diags.Failed() {
				return
			}
			c.checkViewNodes(comp, v.Children, s)
		case *tree.ViewIf:
			c.inferExpr(v.Cond, s)
			c.checkViewNodes(comp, v.Then, s)
			if c.diags.Failed() {
				return
			}
			c.checkViewNodes(comp, v.Else, s)
		case *tree.ViewForRange:
			inner := newScope(s)
			inner.declare(v.Var, tree.Scalar(tree.TInt32), false, false)
			c.checkViewNodes(comp, v.Body, inner)
		case *tree.ViewForEach:
			iterType := c.inferExpr(v.Iterable, s)
			inner := newScope(s)
			elem := tree.Unknown()
			if iterType.IsArray() {
				elem = iterType.Elem()
			}
			inner.declare(v.Var, elem, false, false)
			c.checkViewNodes(comp, v.Body, inner)
		case *tree.TextNode:
			c.inferExpr(v.Value, s)
		case *tree.ComponentInst:
			c.checkComponentArgs(comp, v, s)
		}
	}
}

func (c *Checker) checkAttributes(comp *tree.Component, attrs []tree.Attribute, s *scope) {
	for _, a := range attrs {
		if c.diags.Failed() {
			return
		}
		if !a.IsEvent() {
			got := c.inferExpr(a.Value, s)
			if !got.IsUnknown() && got.Name != tree.TString {
				c.diags.Report(diag.New(diag.KindType, a.Value.Pos().Line,
					"attribute %q must infer to string, got %s", a.Name, got))
				return
			}
			continue
		}
		wantValue, distinguished := eventValueTypes[a.Name]
		if !distinguished {
			c.inferExpr(a.Value, s)
			continue
		}
		handlerName, ok := eventHandlerName(a.Value)
		if !ok {
			c.diags.Report(diag.New(diag.KindType, a.Value.Pos().Line,
				"event attribute %q must bind a method reference", a.Name))
			return
		}
		method := comp.MethodByName(handlerName)
		if method == nil {
			c.diags.Report(diag.New(diag.KindUnresolved, a.Value.Pos().Line,
				"event attribute %q: no method %q on component %q", a.Name, handlerName, comp.Name))
			return
		}
		if len(method.Params) != 1 || method.Params[0].Type.Name != wantValue {
			c.diags.Report(diag.New(diag.KindType, a.Value.Pos().Line,
				"event attribute %q: handler %q must take a single %s parameter", a.Name, handlerName, wantValue))
			return
		}
	}
}

// eventHandlerName extracts the bound method name from an event attribute's
// value expression, which is always a bare identifier naming the handler.
func eventHandlerName(e tree.Expr) (string, bool) {
	id, ok := e.(*tree.Ident)
	if !ok {
		return "", false
	}
	return id.Name, true
}

// checkComponentArgs validates a component instantiation's argument list
// against the target's parameter list (spec.md §4.C substage 5's
// reference/move-at-call-site rules, shared with substage 8's route-args
// validation).
func (c *Checker) checkComponentArgs(comp *tree.Component, inst *tree.ComponentInst, s *scope) {
	target := c.resolveComponent(comp, inst.Module, inst.Name)
	if target == nil {
		c.diags.Report(diag.New(diag.KindUnresolved, inst.Pos().Line,
			"component %q not found", inst.Name))
		return
	}
	for _, a := range inst.Args {
		if a.Value != nil {
			c.inferExpr(a.Value, s)
		}
	}
	c.checkInstantiationArgs(target, inst.Args, inst.Pos().Line)
}

// checkInstantiationArgs validates args against target's declared
// parameters: reference-ness of `&arg`/`:arg` markers per-parameter.
// Shared between component instantiation (checkComponentArgs, reached from
// substage 6's view walk) and route argument validation (substage 8).
func (c *Checker) checkInstantiationArgs(target *tree.Component, args []tree.ComponentArg, line int) bool {
	byName := map[string]*tree.Param{}
	for i := range target.Params {
		byName[target.Params[i].Name] = &target.Params[i]
	}
	for _, a := range args {
		p, ok := byName[a.Name]
		if !ok {
			c.diags.Report(diag.New(diag.KindUnresolved, line,
				"component %q: unknown prop %q", target.Name, a.Name))
			return false
		}
		if a.Reference && !p.Reference {
			c.diags.Report(diag.New(diag.KindType, line,
				"component %q: prop %q is not a reference parameter, but %q was passed with &", target.Name, a.Name, a.Name))
			return false
		}
		if !a.Reference && p.Reference && !a.Move {
			c.diags.Report(diag.New(diag.KindType, line,
				"component %q: prop %q is a reference parameter and requires &", target.Name, a.Name))
			return false
		}
		if a.Move && p.Reference {
			c.diags.Report(diag.New(diag.KindType, line,
				"component %q: prop %q is a reference parameter; : (move) is incompatible", target.Name, a.Name))
			return false
		}
	}
	for _, p := range target.Params {
		if p.Default != nil {
			continue
		}
		found := false
		for _, a := range args {
			if a.Name == p.Name {
				found = true
				break
			}
		}
		if !found {
			c.diags.Report(diag.New(diag.KindType, line,
				"component %q: missing required prop %q", target.Name, p.Name))
			return false
		}
	}
	return true
}
