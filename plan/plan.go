// Package plan orders resource graphs for execution.
//
// Apply plans are computed with a stable topological sort so an unchanged
// graph always produces the identical plan. Destroy plans are not computed
// from the graph at all; they reverse the order recorded by the last
// successful apply, which keeps teardown dependency safe even if the
// declarations changed since.
package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/landform/landform/graph"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"
)

// A Plan is an ordered list of resource instances to process.
type Plan struct {
	// Steps contains the graph nodes in execution order, dependencies
	// before dependents.
	Steps []*graph.Node
}

// Addresses returns the step addresses in execution order.
func (p *Plan) Addresses() []string {
	out := make([]string, len(p.Steps))
	for i, n := range p.Steps {
		out[i] = n.Addr.String()
	}
	return out
}

// An UnreachableNodeError is returned when a node's dependencies cannot all
// be scheduled before it. The graph builder guarantees this does not happen
// for graphs it produced, so this error indicates an internal fault and is
// never retried.
type UnreachableNodeError struct {
	Address string
	Missing []string
}

func (e UnreachableNodeError) Error() string {
	return fmt.Sprintf(
		"cannot schedule %s: dependencies not satisfied: %s",
		e.Address, strings.Join(e.Missing, ", "),
	)
}

// Create computes the apply order for a graph.
//
// The sort is stabilized on declaration order: nodes with no dependency
// relation between them keep their relative declaration positions, so
// repeated runs on an unchanged graph return identical plans.
func Create(g *graph.Graph) (*Plan, error) {
	sorted, err := topo.SortStabilized(g, func(nodes []gonum.Node) {
		sort.Slice(nodes, func(i, j int) bool {
			return nodes[i].ID() < nodes[j].ID()
		})
	})
	if err != nil {
		// Cycles are caught when the graph is built.
		if unord, ok := err.(topo.Unorderable); ok && len(unord) > 0 {
			var members []string
			for _, n := range unord[0] {
				members = append(members, n.(*graph.Node).Addr.String())
			}
			sort.Strings(members)
			return nil, UnreachableNodeError{
				Address: members[0],
				Missing: members[1:],
			}
		}
		return nil, err
	}

	p := &Plan{Steps: make([]*graph.Node, len(sorted))}
	scheduled := make(map[string]struct{}, len(sorted))
	for i, gn := range sorted {
		n := gn.(*graph.Node)
		var missing []string
		for _, dep := range n.Deps {
			if _, ok := scheduled[dep]; !ok {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			return nil, UnreachableNodeError{
				Address: n.Addr.String(),
				Missing: missing,
			}
		}
		p.Steps[i] = n
		scheduled[n.Addr.String()] = struct{}{}
	}
	return p, nil
}

// Reverse returns the addresses in reverse order. Used to turn a recorded
// apply order into a destroy order. The input is not modified.
func Reverse(order []string) []string {
	out := make([]string, len(order))
	for i, addr := range order {
		out[len(order)-1-i] = addr
	}
	return out
}
