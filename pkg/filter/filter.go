// Package filter prunes planned sub-networks that are too small to build.
package filter

import "gridplan/pkg/graph"

// Stats summarizes one filter pass.
type Stats struct {
	Components     int // connected components among the input edges
	GridComponents int // components touching an existing network node
	Dropped        int // components removed for being too small
	DroppedNodes   int
}

// MinNodes partitions edges into connected components and drops every
// component that has no existing network node and fewer than minNodes nodes.
// Components connected to the network are always kept. Edges must already
// be resolved to real node ids. Surviving edges keep their input order.
func MinNodes(edges []graph.Edge, minNodes int) ([]graph.Edge, Stats) {
	// Step 1: Number the endpoints.
	index := make(map[graph.NodeID]int)
	ids := make([]graph.NodeID, 0, len(edges))
	number := func(id graph.NodeID) int {
		if i, ok := index[id]; ok {
			return i
		}
		i := len(ids)
		index[id] = i
		ids = append(ids, id)
		return i
	}
	ends := make([][2]int, len(edges))
	for k, e := range edges {
		ends[k] = [2]int{number(e.A), number(e.B)}
	}

	// Step 2: Connect them.
	f := graph.NewForest(len(ids))
	for _, uv := range ends {
		f.Union(uv[0], uv[1])
	}

	// Step 3: Decide per component.
	var st Stats
	keep := make(map[int]bool)
	for _, members := range graph.Components(f) {
		st.Components++
		root := f.Find(members[0])
		grid := false
		for _, m := range members {
			if ids[m].Kind == graph.KindNetwork {
				grid = true
				break
			}
		}
		switch {
		case grid:
			st.GridComponents++
			keep[root] = true
		case len(members) >= minNodes:
			keep[root] = true
		default:
			st.Dropped++
			st.DroppedNodes += len(members)
		}
	}

	out := make([]graph.Edge, 0, len(edges))
	for k, e := range edges {
		if keep[f.Find(ends[k][0])] {
			out = append(out, e)
		}
	}
	return out, st
}
