package molecule

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Topology returns the bond graph as an undirected weighted graph.
// Node IDs are atom indices and edge weights are bond orders.
//
// Duplicate bonds between the same pair collapse to the last one added.
func (m *Molecule) Topology() *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := range m.Atoms {
		g.AddNode(simple.Node(i))
	}
	for _, b := range m.Bonds {
		if b.A1 == b.A2 || g.Node(int64(b.A1)) == nil || g.Node(int64(b.A2)) == nil {
			continue
		}
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(b.A1),
			T: simple.Node(b.A2),
			W: float64(b.Epairs),
		})
	}
	return g
}

// Fragments returns the atom indices of each connected component, in order
// of their lowest atom index. A molecule file that holds a salt or a
// solvated structure has more than one fragment.
func (m *Molecule) Fragments() [][]int {
	if len(m.Atoms) == 0 {
		return nil
	}
	comps := topo.ConnectedComponents(m.Topology())
	out := make([][]int, 0, len(comps))
	for _, c := range comps {
		out = append(out, nodeIDs(c))
	}
	sortFragments(out)
	return out
}

// Degree returns the number of distinct neighbours of atom i.
func (m *Molecule) Degree(i int) int {
	g := m.Topology()
	if g.Node(int64(i)) == nil {
		return 0
	}
	return g.From(int64(i)).Len()
}

func nodeIDs(nodes []graph.Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = int(n.ID())
	}
	return ids
}
