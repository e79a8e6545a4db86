package graph

import (
	"math/rand/v2"
	"testing"
)

func TestForest(t *testing.T) {
	f := NewForest(5)

	// Initially all separate.
	for i := range 5 {
		if f.Find(i) != i {
			t.Errorf("Find(%d) = %d, want %d", i, f.Find(i), i)
		}
		if f.Size(i) != 1 {
			t.Errorf("Size(%d) = %d, want 1", i, f.Size(i))
		}
	}

	if !f.Union(0, 1) {
		t.Error("Union(0, 1) should merge")
	}
	if !f.Connected(0, 1) {
		t.Error("0 and 1 should be in same set")
	}

	f.Union(2, 3)
	if !f.Connected(2, 3) {
		t.Error("2 and 3 should be in same set")
	}
	if f.Connected(0, 2) {
		t.Error("0 and 2 should be in different sets")
	}

	// Union the two groups.
	f.Union(1, 3)
	if !f.Connected(0, 3) {
		t.Error("0 and 3 should now be in same set")
	}
	if f.Size(2) != 4 {
		t.Errorf("Size(2) = %d, want 4", f.Size(2))
	}

	// Already connected: no-op, reported as such.
	if f.Union(0, 2) {
		t.Error("Union(0, 2) should report no merge")
	}
	if f.Size(0) != 4 {
		t.Errorf("Size(0) = %d after no-op union, want 4", f.Size(0))
	}
	if f.Connected(4, 0) {
		t.Error("4 should stay isolated")
	}
}

func TestForestPathCompression(t *testing.T) {
	f := NewForest(8)
	for i := 1; i < 8; i++ {
		f.Union(i-1, i)
	}
	root := f.Find(7)
	for i := range 8 {
		f.Find(i)
		if f.parent[i] != uint32(root) {
			t.Errorf("parent[%d] = %d after Find, want root %d", i, f.parent[i], root)
		}
	}
}

func TestForestMatchesNaiveLabels(t *testing.T) {
	const n = 200
	rng := rand.New(rand.NewPCG(1, 2))
	f := NewForest(n)
	label := make([]int, n)
	for i := range label {
		label[i] = i
	}

	for range 300 {
		x, y := rng.IntN(n), rng.IntN(n)
		wantMerge := label[x] != label[y]
		if got := f.Union(x, y); got != wantMerge {
			t.Fatalf("Union(%d, %d) = %v, want %v", x, y, got, wantMerge)
		}
		if wantMerge {
			old := label[y]
			for i := range label {
				if label[i] == old {
					label[i] = label[x]
				}
			}
		}
	}

	for range 500 {
		x, y := rng.IntN(n), rng.IntN(n)
		if f.Connected(x, y) != (label[x] == label[y]) {
			t.Fatalf("Connected(%d, %d) disagrees with naive labels", x, y)
		}
	}
}

func TestComponents(t *testing.T) {
	f := NewForest(7)
	f.Union(5, 1)
	f.Union(3, 6)
	f.Union(6, 0)

	comps := Components(f)
	want := [][]int{{0, 3, 6}, {1, 5}, {2}, {4}}
	if len(comps) != len(want) {
		t.Fatalf("got %d components, want %d: %v", len(comps), len(want), comps)
	}
	for i := range want {
		if len(comps[i]) != len(want[i]) {
			t.Errorf("component %d = %v, want %v", i, comps[i], want[i])
			continue
		}
		for j := range want[i] {
			if comps[i][j] != want[i][j] {
				t.Errorf("component %d = %v, want %v", i, comps[i], want[i])
				break
			}
		}
	}
}

func TestComponentsEmpty(t *testing.T) {
	if comps := Components(NewForest(0)); len(comps) != 0 {
		t.Errorf("expected no components, got %v", comps)
	}
}

func BenchmarkForestUnionFind(b *testing.B) {
	const n = 1 << 16
	rng := rand.New(rand.NewPCG(3, 4))
	pairs := make([][2]int, n)
	for i := range pairs {
		pairs[i] = [2]int{rng.IntN(n), rng.IntN(n)}
	}
	for b.Loop() {
		f := NewForest(n)
		for _, p := range pairs {
			f.Union(p[0], p[1])
		}
	}
}

func TestForestClone(t *testing.T) {
	f := NewForest(4)
	f.Union(0, 1)

	c := f.Clone()
	c.Union(2, 3)
	c.Union(1, 2)

	if f.Connected(2, 3) || f.Connected(0, 2) {
		t.Error("union on clone leaked into original")
	}
	if !c.Connected(0, 3) {
		t.Error("clone should have all four connected")
	}
	if f.Size(0) != 2 {
		t.Errorf("original Size(0) = %d, want 2", f.Size(0))
	}
}
