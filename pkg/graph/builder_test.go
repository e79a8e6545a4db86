package graph

import "testing"

func TestBuildAdjacencyTriangle(t *testing.T) {
	// Triangle 0-1, 1-2, 2-0.
	edges := [][2]int{{0, 1}, {1, 2}, {2, 0}}
	a := BuildAdjacency(3, len(edges), func(e int) (int, int) { return edges[e][0], edges[e][1] })

	if a.NumNodes != 3 {
		t.Fatalf("NumNodes = %d, want 3", a.NumNodes)
	}
	if len(a.Edge) != 6 {
		t.Fatalf("len(Edge) = %d, want 6", len(a.Edge))
	}

	// Each node touches exactly 2 edges.
	for u := range 3 {
		if n := len(a.EdgesOf(u)); n != 2 {
			t.Errorf("node %d has %d edges, want 2", u, n)
		}
	}

	want := map[int][]uint32{0: {0, 2}, 1: {0, 1}, 2: {1, 2}}
	for u, w := range want {
		got := a.EdgesOf(u)
		for i := range w {
			if got[i] != w[i] {
				t.Errorf("EdgesOf(%d) = %v, want %v", u, got, w)
				break
			}
		}
	}
}

func TestBuildAdjacencyEmpty(t *testing.T) {
	a := BuildAdjacency(0, 0, nil)
	if a.NumNodes != 0 || len(a.Edge) != 0 {
		t.Errorf("expected empty adjacency, got %d nodes, %d slots", a.NumNodes, len(a.Edge))
	}

	a = BuildAdjacency(4, 0, nil)
	for u := range 4 {
		if n := len(a.EdgesOf(u)); n != 0 {
			t.Errorf("node %d has %d edges, want 0", u, n)
		}
	}
}

func TestBuildAdjacencyCSRInvariants(t *testing.T) {
	// Star: center 0 with leaves 1..4, plus 3-4.
	edges := [][2]int{{0, 1}, {2, 0}, {0, 3}, {4, 0}, {3, 4}}
	a := BuildAdjacency(5, len(edges), func(e int) (int, int) { return edges[e][0], edges[e][1] })

	// CSR invariant: FirstOut is monotonically non-decreasing.
	for i := uint32(1); i <= a.NumNodes; i++ {
		if a.FirstOut[i] < a.FirstOut[i-1] {
			t.Errorf("FirstOut[%d]=%d < FirstOut[%d]=%d, not monotonic", i, a.FirstOut[i], i-1, a.FirstOut[i-1])
		}
	}

	// CSR invariant: FirstOut[NumNodes] == 2 * edges.
	if int(a.FirstOut[a.NumNodes]) != 2*len(edges) {
		t.Errorf("FirstOut[NumNodes] = %d, want %d", a.FirstOut[a.NumNodes], 2*len(edges))
	}

	// Incident lists are ascending and every edge appears at both endpoints.
	for u := range 5 {
		inc := a.EdgesOf(u)
		for i := 1; i < len(inc); i++ {
			if inc[i] <= inc[i-1] {
				t.Errorf("EdgesOf(%d) = %v not ascending", u, inc)
			}
		}
		for _, e := range inc {
			if edges[e][0] != u && edges[e][1] != u {
				t.Errorf("edge %d listed at node %d it does not touch", e, u)
			}
		}
	}
	if n := len(a.EdgesOf(0)); n != 4 {
		t.Errorf("center has %d edges, want 4", n)
	}
}
