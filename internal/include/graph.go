package include

import (
	"slices"
	"sort"
)

// NodeID indexes a file in a Graph.
type NodeID uint32

// Graph is the include graph discovered during resolution.
// Edges[from] lists the files that from includes.
type Graph struct {
	Paths   []string
	Display []string
	Edges   [][]NodeID
	index   map[string]NodeID
}

func newGraph() *Graph {
	return &Graph{index: make(map[string]NodeID)}
}

func (g *Graph) node(path, display string) NodeID {
	if id, ok := g.index[path]; ok {
		return id
	}
	id := NodeID(toU32(len(g.Paths)))
	g.index[path] = id
	g.Paths = append(g.Paths, path)
	g.Display = append(g.Display, display)
	g.Edges = append(g.Edges, nil)
	return id
}

func (g *Graph) addEdge(from, to NodeID) {
	if !slices.Contains(g.Edges[from], to) {
		g.Edges[from] = append(g.Edges[from], to)
	}
}

// Lookup returns the node for a normalized absolute path.
func (g *Graph) Lookup(path string) (NodeID, bool) {
	id, ok := g.index[path]
	return id, ok
}

// Len is the number of files in the graph.
func (g *Graph) Len() int {
	return len(g.Paths)
}

// Layers groups files into waves: layer 0 includes nothing, layer n only
// includes files from earlier layers. Files on a cycle are returned in
// the second result instead.
func (g *Graph) Layers() (layers [][]NodeID, cyclic []NodeID) {
	n := len(g.Paths)
	pending := make([]int, n)
	dependents := make([][]NodeID, n)
	for from, tos := range g.Edges {
		pending[from] = len(tos)
		for _, to := range tos {
			dependents[to] = append(dependents[to], NodeID(toU32(from)))
		}
	}

	current := make([]NodeID, 0, n)
	for i := range n {
		if pending[i] == 0 {
			current = append(current, NodeID(toU32(i)))
		}
	}

	visited := 0
	for len(current) > 0 {
		g.sortByPath(current)
		layers = append(layers, current)
		visited += len(current)
		var next []NodeID
		for _, id := range current {
			for _, dep := range dependents[id] {
				pending[dep]--
				if pending[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		current = next
	}

	if visited != n {
		for i := range n {
			if pending[i] > 0 {
				cyclic = append(cyclic, NodeID(toU32(i)))
			}
		}
		g.sortByPath(cyclic)
	}
	return layers, cyclic
}

func (g *Graph) sortByPath(ids []NodeID) {
	sort.Slice(ids, func(i, j int) bool { return g.Paths[ids[i]] < g.Paths[ids[j]] })
}
