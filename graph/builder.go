package graph

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl2/hcl"
	"github.com/hashicorp/hcl2/hcl/hclsyntax"
	"github.com/landform/landform/config"
	"github.com/landform/landform/resource"
	"github.com/landform/landform/suggest"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty/gocty"
	"gonum.org/v1/gonum/graph/topo"
)

// A Builder builds a dependency graph from resource declarations.
//
// Building is a pure transformation: no provider call is ever made. Counted
// declarations are expanded into one node per ordinal before edges are
// computed, so the executor never needs to index into templates at run time.
type Builder struct {
	// Registry is used to check declared resource types.
	Registry *resource.Registry
}

// Build expands the declarations in cfg into a graph of resource instances
// with dependency edges from parent to child.
//
// The base context carries var, secret and other static values; count
// expressions are evaluated against it.
//
// Returns CycleError if the reference graph contains a cycle,
// DanglingReferenceError if an attribute references a nonexistent resource or
// an out of range ordinal, and UnknownTypeError for unregistered resource
// types.
func (b *Builder) Build(cfg *config.Config, base *hcl.EvalContext) (*Graph, error) {
	g := newGraph()

	// Expand declarations into instances.
	counts := make(map[string]int, len(cfg.Resources))
	for _, decl := range cfg.Resources {
		if b.Registry.New(decl.Type) == nil {
			return nil, UnknownTypeError{
				Type:       decl.Type,
				Subject:    decl.DeclRange,
				Suggestion: suggest.String(decl.Type, b.Registry.Types()),
			}
		}
		n, err := evalCount(decl, base)
		if err != nil {
			return nil, err
		}
		counts[decl.Type+"."+decl.Name] = n
		if n < 0 {
			g.add(&Node{
				Addr:      resource.Address{Type: decl.Type, Name: decl.Name, Index: -1},
				Config:    decl.Config,
				DeclRange: decl.DeclRange,
			})
			continue
		}
		for i := 0; i < n; i++ {
			g.add(&Node{
				Addr:      resource.Address{Type: decl.Type, Name: decl.Name, Index: i},
				Config:    decl.Config,
				DeclRange: decl.DeclRange,
			})
		}
	}

	// Connect references.
	for _, node := range g.List() {
		seen := make(map[string]struct{})
		for _, trav := range bodyTraversals(node.Config) {
			parents, err := b.resolve(cfg, counts, trav)
			if err != nil {
				return nil, err
			}
			for _, parent := range parents {
				if parent == node.Addr.String() {
					return nil, CycleError{Addresses: []string{parent}}
				}
				if _, ok := seen[parent]; ok {
					continue
				}
				seen[parent] = struct{}{}
				node.Deps = append(node.Deps, parent)
				g.SetEdge(g.NewEdge(g.Get(parent), node))
			}
		}
		sort.Strings(node.Deps)
	}

	// The graph must be sortable; a failure here means a reference cycle.
	if _, err := topo.Sort(g); err != nil {
		if unord, ok := err.(topo.Unorderable); ok && len(unord) > 0 {
			cycle := make([]string, len(unord[0]))
			for i, n := range unord[0] {
				cycle[i] = n.(*Node).Addr.String()
			}
			sort.Strings(cycle)
			return nil, CycleError{Addresses: cycle}
		}
		return nil, errors.Wrap(err, "sort graph")
	}

	return g, nil
}

// evalCount evaluates a declaration's count. Returns -1 if count is not set.
func evalCount(decl config.Declaration, ctx *hcl.EvalContext) (int, error) {
	if decl.Count == nil {
		return -1, nil
	}
	for _, trav := range decl.Count.Variables() {
		root := trav.RootName()
		if root != "var" && root != "secret" {
			return 0, errors.Errorf(
				"%s.%s: count cannot reference resources (%s at %s)",
				decl.Type, decl.Name, root, trav.SourceRange(),
			)
		}
	}
	v, diags := decl.Count.Value(ctx)
	if diags.HasErrors() {
		return 0, errors.Wrapf(diags, "%s.%s: evaluate count", decl.Type, decl.Name)
	}
	var n int
	if err := gocty.FromCtyValue(v, &n); err != nil {
		return 0, errors.Wrapf(err, "%s.%s: count must be a number", decl.Type, decl.Name)
	}
	if n < 0 {
		return 0, errors.Errorf("%s.%s: count must not be negative", decl.Type, decl.Name)
	}
	return n, nil
}

// resolve maps a reference traversal to the addresses of the instances it
// depends on. Returns no addresses for non-resource roots (var, secret,
// count).
func (b *Builder) resolve(cfg *config.Config, counts map[string]int, trav hcl.Traversal) ([]string, error) {
	root := trav.RootName()
	switch root {
	case "var", "secret", "count":
		return nil, nil
	}
	if b.Registry.New(root) == nil {
		return nil, DanglingReferenceError{
			Reference:  root,
			Subject:    trav.SourceRange(),
			Suggestion: suggest.String(root, b.Registry.Types()),
		}
	}
	if len(trav) < 2 {
		return nil, DanglingReferenceError{
			Reference: root,
			Subject:   trav.SourceRange(),
		}
	}
	attr, ok := trav[1].(hcl.TraverseAttr)
	if !ok {
		return nil, DanglingReferenceError{
			Reference: root,
			Subject:   trav.SourceRange(),
		}
	}

	key := root + "." + attr.Name
	n, declared := counts[key]
	if !declared {
		var candidates []string
		for _, d := range cfg.Resources {
			candidates = append(candidates, d.Type+"."+d.Name)
		}
		return nil, DanglingReferenceError{
			Reference:  key,
			Subject:    trav.SourceRange(),
			Suggestion: suggest.String(key, candidates),
		}
	}

	if n < 0 {
		// Not counted; a single instance.
		return []string{resource.Address{Type: root, Name: attr.Name, Index: -1}.String()}, nil
	}

	// Counted. A literal index selects a single instance; anything else
	// (whole tuple, count.index) depends on every instance.
	if len(trav) > 2 {
		if idx, ok := trav[2].(hcl.TraverseIndex); ok && idx.Key.IsKnown() {
			var i int
			if err := gocty.FromCtyValue(idx.Key, &i); err == nil {
				if i < 0 || i >= n {
					return nil, DanglingReferenceError{
						Reference: fmt.Sprintf("%s[%d]", key, i),
						Subject:   trav.SourceRange(),
					}
				}
				return []string{resource.Address{Type: root, Name: attr.Name, Index: i}.String()}, nil
			}
		}
	}

	all := make([]string, n)
	for i := 0; i < n; i++ {
		all[i] = resource.Address{Type: root, Name: attr.Name, Index: i}.String()
	}
	return all, nil
}

// bodyTraversals collects all variable traversals from a declaration body,
// including nested blocks. The top level count attribute is excluded; it is
// handled separately during expansion.
func bodyTraversals(body hcl.Body) []hcl.Traversal {
	sb, ok := body.(*hclsyntax.Body)
	if !ok {
		return nil
	}
	var out []hcl.Traversal
	var walk func(b *hclsyntax.Body)
	walk = func(b *hclsyntax.Body) {
		names := make([]string, 0, len(b.Attributes))
		for name := range b.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if b == sb && name == "count" {
				continue
			}
			out = append(out, b.Attributes[name].Expr.Variables()...)
		}
		for _, blk := range b.Blocks {
			walk(blk.Body)
		}
	}
	walk(sb)
	return out
}
