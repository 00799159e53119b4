package sim

import (
	"fmt"
	"slices"

	"golang.org/x/exp/maps"
)

// Edge is an undirected link between two nodes.
type Edge struct {
	A, B string
}

// Topology is the static node set and its links. It only answers
// membership questions; traffic does not follow edges.
type Topology struct {
	nodes map[string]bool
	edges []Edge
}

// NewTopology builds a topology, rejecting duplicate or empty node names and
// edges that reference unknown nodes.
func NewTopology(nodes []string, edges []Edge) (*Topology, error) {
	t := &Topology{nodes: make(map[string]bool, len(nodes))}
	for i, n := range nodes {
		if n == "" {
			return nil, fmt.Errorf("topology.nodes[%d]: empty node name", i)
		}
		if t.nodes[n] {
			return nil, fmt.Errorf("topology.nodes[%d]: duplicate node %q", i, n)
		}
		t.nodes[n] = true
	}
	for i, e := range edges {
		if !t.nodes[e.A] {
			return nil, fmt.Errorf("topology.edges[%d]: unknown node %q", i, e.A)
		}
		if !t.nodes[e.B] {
			return nil, fmt.Errorf("topology.edges[%d]: unknown node %q", i, e.B)
		}
	}
	t.edges = append(t.edges, edges...)
	return t, nil
}

// HasNode reports whether id is a member of the node set.
func (t *Topology) HasNode(id string) bool {
	return t.nodes[id]
}

// Nodes returns the node set in sorted order.
func (t *Topology) Nodes() []string {
	nodes := maps.Keys(t.nodes)
	slices.Sort(nodes)
	return nodes
}

// Edges returns a copy of the configured links.
func (t *Topology) Edges() []Edge {
	return slices.Clone(t.edges)
}

// ValidateFlow checks that both endpoints of a flow exist.
func (t *Topology) ValidateFlow(index int, f Flow) error {
	if !t.HasNode(f.Source) {
		return fmt.Errorf("flows[%d].source: node %q not in topology", index, f.Source)
	}
	if !t.HasNode(f.Destination) {
		return fmt.Errorf("flows[%d].destination: node %q not in topology", index, f.Destination)
	}
	return nil
}
