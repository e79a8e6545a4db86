package graph

// Adjacency is an undirected incidence list in CSR (Compressed Sparse Row)
// format. Slots FirstOut[u]..FirstOut[u+1] of Edge hold the indices of the
// edges incident to u, in ascending edge order.
type Adjacency struct {
	NumNodes uint32
	FirstOut []uint32 // len: NumNodes + 1
	Edge     []uint32 // len: 2 * number of edges
}

// EdgesOf returns the incident edge indices of node u.
func (a *Adjacency) EdgesOf(u int) []uint32 {
	return a.Edge[a.FirstOut[u]:a.FirstOut[u+1]]
}

// BuildAdjacency creates the incidence list of m edges over n nodes, where
// ends(e) returns the endpoints of edge e. When edges are numbered in a
// total order, every node's incident list comes out sorted in that order.
func BuildAdjacency(n, m int, ends func(e int) (u, v int)) *Adjacency {
	firstOut := make([]uint32, n+1)

	// Step 1: Count incident edges per node.
	for e := range m {
		u, v := ends(e)
		firstOut[u+1]++
		firstOut[v+1]++
	}
	for i := 1; i <= n; i++ {
		firstOut[i] += firstOut[i-1]
	}

	// Step 2: Place edges in index order.
	edge := make([]uint32, 2*m)
	pos := make([]uint32, n)
	copy(pos, firstOut[:n])
	for e := range m {
		u, v := ends(e)
		edge[pos[u]] = uint32(e)
		pos[u]++
		edge[pos[v]] = uint32(e)
		pos[v]++
	}

	return &Adjacency{
		NumNodes: uint32(n),
		FirstOut: firstOut,
		Edge:     edge,
	}
}
