package check

import (
	"github.com/kestrel-lang/kestrelc/internal/diag"
	"github.com/kestrel-lang/kestrelc/internal/tree"
)

// resolveComponent locates a component-instantiation or route target via
// (a) module-qualified lookup if moduleQualifier is non-empty, otherwise
// (b) same-module lookup, otherwise (c) default-module ("") lookup, per
// spec.md §4.C substage 7.
func (c *Checker) resolveComponent(from *tree.Component, moduleQualifier, name string) *tree.Component {
	if moduleQualifier != "" {
		if m, ok := c.byModule[moduleQualifier]; ok {
			if comp, ok := m[name]; ok {
				return comp
			}
		}
		return nil
	}
	if m, ok := c.byModule[from.Module]; ok {
		if comp, ok := m[name]; ok {
			return comp
		}
	}
	if m, ok := c.byModule[""]; ok {
		if comp, ok := m[name]; ok {
			return comp
		}
	}
	return nil
}

// checkCrossComponentVisibility is substage 7: for each component
// instantiation in comp's view, resolve the target and enforce the
// import/module/pub rules.
func (c *Checker) checkCrossComponentVisibility(prog *tree.Program, comp *tree.Component) {
	c.walkInstantiations(prog, comp, comp.View)
}

func (c *Checker) walkInstantiations(prog *tree.Program, comp *tree.Component, nodes []tree.ViewNode) {
	for _, n := range nodes {
		if c.diags.Failed() {
			return
		}
		switch v := n.(type) {
		case *tree.ComponentInst:
			c.checkOneInstantiation(prog, comp, v.Module, v.Name, v.Pos().Line)
		case *tree.ViewIf:
			c.walkInstantiations(prog, comp, v.Then)
			if c.diags.Failed() {
				return
			}
			c.walkInstantiations(prog, comp, v.Else)
		case *tree.ViewForRange:
			c.walkInstantiations(prog, comp, v.Body)
		case *tree.ViewForEach:
			c.walkInstantiations(prog, comp, v.Body)
		case *tree.Element:
			c.walkInstantiations(prog, comp, v.Children)
		}
	}
}

func (c *Checker) checkOneInstantiation(prog *tree.Program, comp *tree.Component, moduleQualifier, name string, line int) {
	target := c.resolveComponent(comp, moduleQualifier, name)
	if target == nil {
		c.diags.Report(diag.New(diag.KindUnresolved, line, "component %q not found", name))
		return
	}

	sameFile := comp.SourceFile == target.SourceFile
	sameModule := comp.Module == target.Module
	directlyImports := false
	for _, imp := range prog.Imports[comp.SourceFile] {
		if imp == target.SourceFile {
			directlyImports = true
			break
		}
	}

	if !sameFile && !sameModule && !directlyImports {
		c.diags.Report(diag.New(diag.KindVisibility, line,
			"component %q is not visible here: not in the same file or module, and not directly imported", name))
		return
	}

	if !sameModule {
		if !target.Public {
			c.diags.Report(diag.New(diag.KindVisibility, line,
				"component %q is in another module and is not pub", name))
			return
		}
		if moduleQualifier == "" {
			c.diags.Report(diag.New(diag.KindVisibility, line,
				"component %q: cross-module reference requires a module prefix", name))
			return
		}
	}
}
