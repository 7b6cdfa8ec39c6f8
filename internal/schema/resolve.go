package schema

import (
	"fmt"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	_ "github.com/google/mangle/builtin"
)

// closures holds the result of evaluating the inheritance/no-copy
// transitive-closure program once at load time, plus the resolved alias
// chain. Every lookup afterward is a plain map read: spec.md §5 forbids any
// suspension point inside a type query, so the Datalog engine itself never
// runs again after Store.Load returns.
type closures struct {
	// ancestors[t] is the full (transitive) set of names t extends.
	ancestors map[string][]string
	// aliasTarget[t] is the final, non-alias type name t resolves to.
	aliasTarget map[string]string
	// nocopyTransitive is the set of type names that are no-copy, either
	// directly annotated or inherited from a no-copy ancestor.
	nocopyTransitive map[string]bool
}

// ancestorProgram computes the transitive closure of `extends` and the
// transitive no-copy flag in one recursive Datalog program, following the
// same Decl/recursive-rule shape as the embedded mangle reference
// (parent/ancestor) in the example pack's Go-integration snippet.
const ancestorProgram = `
Decl extends(Child, Parent).
Decl nocopyDirect(Name).

Decl ancestor(Child, Ancestor).
ancestor(Child, Parent) :- extends(Child, Parent).
ancestor(Child, Ancestor) :- extends(Child, Parent), ancestor(Parent, Ancestor).

Decl nocopyType(Name).
nocopyType(Name) :- nocopyDirect(Name).
nocopyType(Name) :- extends(Name, Parent), nocopyType(Parent).
`

// buildClosures evaluates the extends/nocopy facts of every loaded type
// through a small Datalog program (github.com/google/mangle) and caches the
// results into plain Go maps. Alias chains are resolved separately with a
// direct chase over the (small, cycle-checked) aliasOf edges: chain
// following here is a bounded walk over data already in hand, not a
// repeated query, so it is done in Go rather than added to the Datalog
// program.
func buildClosures(types []Type) (*closures, error) {
	unit, err := parse.Unit(strings.NewReader(ancestorProgram))
	if err != nil {
		return nil, fmt.Errorf("schema: internal resolver program: %w", err)
	}

	store := factstore.NewSimpleInMemoryStore()
	aliasOf := make(map[string]string, len(types))
	for _, t := range types {
		if t.Extends != "" {
			store.Add(ast.NewAtom("extends", ast.String(t.Name), ast.String(t.Extends)))
		}
		if t.NoCopy {
			store.Add(ast.NewAtom("nocopyDirect", ast.String(t.Name)))
		}
		if t.AliasOf != "" {
			aliasOf[t.Name] = t.AliasOf
		}
	}

	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("schema: analyzing resolver program: %w", err)
	}
	if _, err := engine.EvalProgramWithStats(programInfo, store); err != nil {
		return nil, fmt.Errorf("schema: evaluating resolver program: %w", err)
	}

	c := &closures{
		ancestors:        make(map[string][]string),
		aliasTarget:      make(map[string]string, len(aliasOf)),
		nocopyTransitive: make(map[string]bool),
	}

	ancestorQuery := ast.NewQuery(ast.PredicateSym{Symbol: "ancestor", Arity: 2})
	if err := store.GetFacts(ancestorQuery, func(fact ast.Atom) error {
		child := constantString(fact.Args[0])
		parent := constantString(fact.Args[1])
		c.ancestors[child] = append(c.ancestors[child], parent)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("schema: querying ancestor facts: %w", err)
	}

	nocopyQuery := ast.NewQuery(ast.PredicateSym{Symbol: "nocopyType", Arity: 1})
	if err := store.GetFacts(nocopyQuery, func(fact ast.Atom) error {
		c.nocopyTransitive[constantString(fact.Args[0])] = true
		return nil
	}); err != nil {
		return nil, fmt.Errorf("schema: querying nocopy facts: %w", err)
	}

	for name := range aliasOf {
		target := name
		seen := map[string]bool{}
		for {
			next, isAlias := aliasOf[target]
			if !isAlias || seen[target] {
				break
			}
			seen[target] = true
			target = next
		}
		c.aliasTarget[name] = target
	}

	return c, nil
}

// constantString extracts the Go string underlying an ast.Constant built by
// ast.String. The resolver program only ever produces string-valued facts.
func constantString(t ast.BaseTerm) string {
	c, ok := t.(ast.Constant)
	if !ok {
		return ""
	}
	if c.Type != ast.StringType {
		return ""
	}
	return c.Symbol
}
