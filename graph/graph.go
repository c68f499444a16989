package graph

import (
	"github.com/hashicorp/hcl2/hcl"
	"github.com/landform/landform/resource"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// A Graph contains the expanded resource instances and the dependencies
// between them.
//
// The Graph should be created with a Builder. Node ids are assigned in
// declaration order, which gives the planner a stable tie break.
type Graph struct {
	*simple.DirectedGraph

	nodes map[string]*Node
	list  []*Node
}

// A Node is a single resource instance in the graph. Counted declarations
// expand into one node per ordinal.
type Node struct {
	gonum.Node

	Addr resource.Address

	// Config is the declaration body for the instance. References are
	// resolved and the body is decoded when the node is realized.
	Config hcl.Body

	// Deps contains the addresses of the parent resources this node
	// references. Sorted, without duplicates.
	Deps []string

	DeclRange hcl.Range
}

func newGraph() *Graph {
	return &Graph{
		DirectedGraph: simple.NewDirectedGraph(),
		nodes:         make(map[string]*Node),
	}
}

func (g *Graph) add(n *Node) {
	n.Node = g.NewNode()
	g.AddNode(n)
	g.nodes[n.Addr.String()] = n
	g.list = append(g.list, n)
}

// Nodes returns all nodes in declaration order.
func (g *Graph) List() []*Node {
	return g.list
}

// Get returns the node with the given address. Returns nil if the node does
// not exist.
func (g *Graph) Get(address string) *Node {
	return g.nodes[address]
}

// Dependents returns the addresses of nodes that directly depend on the node
// with the given address. Panics if the node does not exist.
func (g *Graph) Dependents(address string) []string {
	n := g.nodes[address]
	var out []string
	it := g.From(n.ID())
	for it.Next() {
		out = append(out, it.Node().(*Node).Addr.String())
	}
	return out
}
