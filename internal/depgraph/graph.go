// Package depgraph implements the dependency graph and topological sort
// component E (spec.md §4.E) builds on top of the free-identifier and
// modification-tracking capabilities component D adds to internal/tree
// (spec.md §4.D). A component C depends on component D if C instantiates D
// in its view, if a route in C's router targets D, if C has a parameter or
// state whose type (after stripping array decoration) names D, or via a
// module-qualified reference to D.
package depgraph

import (
	"fmt"

	"github.com/kestrel-lang/kestrelc/internal/diag"
	"github.com/kestrel-lang/kestrelc/internal/tree"
)

// Graph is the built component dependency graph: for each component name,
// the set of component names it depends on.
type Graph struct {
	order []*tree.Component // declaration order, used to break ties deterministically
	deps  map[*tree.Component]map[*tree.Component]struct{}
}

// resolver mirrors the (module-qualified, same-module, default-module)
// lookup order internal/check uses for cross-component visibility
// (spec.md §4.C substage 7), built directly over the program rather than
// sharing the checker's private state.
type resolver struct {
	byModule map[string]map[string]*tree.Component
}

func newResolver(prog *tree.Program) *resolver {
	r := &resolver{byModule: map[string]map[string]*tree.Component{}}
	for _, c := range prog.Components {
		if r.byModule[c.Module] == nil {
			r.byModule[c.Module] = map[string]*tree.Component{}
		}
		r.byModule[c.Module][c.Name] = c
	}
	return r
}

func (r *resolver) resolve(from *tree.Component, moduleQualifier, name string) *tree.Component {
	if moduleQualifier != "" {
		if m, ok := r.byModule[moduleQualifier]; ok {
			return m[name]
		}
		return nil
	}
	if m, ok := r.byModule[from.Module]; ok {
		if c, ok := m[name]; ok {
			return c
		}
	}
	return r.byModule[""][name]
}

// Build constructs the dependency graph for prog.
func Build(prog *tree.Program) *Graph {
	g := &Graph{
		order: append([]*tree.Component(nil), prog.Components...),
		deps:  make(map[*tree.Component]map[*tree.Component]struct{}, len(prog.Components)),
	}
	res := newResolver(prog)

	for _, c := range prog.Components {
		g.deps[c] = map[*tree.Component]struct{}{}
		g.collectViewDeps(res, c, c.View)
		g.collectParamStateDeps(res, c)
		g.collectRouterDeps(res, c)
	}
	return g
}

func (g *Graph) addDep(from, to *tree.Component) {
	if to == nil || to == from {
		return
	}
	g.deps[from][to] = struct{}{}
}

func (g *Graph) collectViewDeps(res *resolver, c *tree.Component, nodes []tree.ViewNode) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *tree.ComponentInst:
			g.addDep(c, res.resolve(c, v.Module, v.Name))
		case *tree.ViewIf:
			g.collectViewDeps(res, c, v.Then)
			g.collectViewDeps(res, c, v.Else)
		case *tree.ViewForRange:
			g.collectViewDeps(res, c, v.Body)
		case *tree.ViewForEach:
			g.collectViewDeps(res, c, v.Body)
		case *tree.Element:
			g.collectViewDeps(res, c, v.Children)
		}
	}
}

func (g *Graph) collectParamStateDeps(res *resolver, c *tree.Component) {
	named := func(t tree.Type) string {
		for t.IsArray() {
			t = t.Elem()
		}
		return t.Name
	}
	for _, p := range c.Params {
		g.addDep(c, res.resolve(c, "", named(p.Type)))
	}
	for _, sv := range c.State {
		g.addDep(c, res.resolve(c, "", named(sv.Type)))
	}
}

func (g *Graph) collectRouterDeps(res *resolver, c *tree.Component) {
	if c.Router == nil {
		return
	}
	for _, r := range c.Router.Routes {
		g.addDep(c, res.resolve(c, r.Module, r.Component))
	}
}

// Sort produces a Kahn-style topological order, stable on declaration order
// among components with no remaining dependency at each step, and reports
// a structural "cycle" diagnostic if any component cannot be placed
// (spec.md §4.E).
func Sort(g *Graph) ([]*tree.Component, diag.Diagnostic, bool) {
	indegree := make(map[*tree.Component]int, len(g.order))
	dependents := make(map[*tree.Component][]*tree.Component, len(g.order))
	for _, c := range g.order {
		indegree[c] = 0
	}
	for c, deps := range g.deps {
		for dep := range deps {
			indegree[c]++
			dependents[dep] = append(dependents[dep], c)
		}
	}

	var ready []*tree.Component
	for _, c := range g.order {
		if indegree[c] == 0 {
			ready = append(ready, c)
		}
	}

	var out []*tree.Component
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		out = append(out, next)

		var freed []*tree.Component
		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				freed = append(freed, dep)
			}
		}
		// Preserve declaration order among components freed at the same
		// step (Kahn's "stable on queue order" requirement).
		for _, c := range g.order {
			for _, f := range freed {
				if f == c {
					ready = append(ready, c)
				}
			}
		}
	}

	if len(out) != len(g.order) {
		var stuck []string
		for _, c := range g.order {
			if indegree[c] > 0 {
				stuck = append(stuck, c.Name)
			}
		}
		return nil, diag.New(diag.KindStructural, 0,
			"circular dependency among components: %v", stuck), false
	}
	return out, diag.Diagnostic{}, true
}

// DependsOn reports whether c's dependency set contains dep, used by tests
// to confirm an instantiated child actually participates in the graph.
func (g *Graph) DependsOn(c, dep *tree.Component) bool {
	_, ok := g.deps[c][dep]
	return ok
}

// String renders the dependency graph for debugging/diagnostic output.
func (g *Graph) String() string {
	var out string
	for _, c := range g.order {
		deps := make([]string, 0, len(g.deps[c]))
		for dep := range g.deps[c] {
			deps = append(deps, dep.Name)
		}
		out += fmt.Sprintf("%s -> %v\n", c.Name, deps)
	}
	return out
}
