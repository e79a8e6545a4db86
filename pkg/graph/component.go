package graph

import "slices"

// Forest is a disjoint-set forest over the indices 0..n-1 with full path
// compression and union by rank. It only grows: sets merge, never split.
type Forest struct {
	parent []uint32
	rank   []byte // byte is sufficient, rank is bounded by log2(n)
	size   []uint32
}

// NewForest creates a Forest of n singleton sets.
func NewForest(n int) *Forest {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range parent {
		parent[i] = uint32(i)
		size[i] = 1
	}
	return &Forest{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Clone returns an independent copy of f.
func (f *Forest) Clone() *Forest {
	return &Forest{
		parent: slices.Clone(f.parent),
		rank:   slices.Clone(f.rank),
		size:   slices.Clone(f.size),
	}
}

// Len returns the size of the universe.
func (f *Forest) Len() int { return len(f.parent) }

// Find returns the representative of the set containing x. Every node on the
// path is re-pointed at the root.
func (f *Forest) Find(x int) int {
	root := uint32(x)
	for f.parent[root] != root {
		root = f.parent[root]
	}
	for cur := uint32(x); cur != root; {
		next := f.parent[cur]
		f.parent[cur] = root
		cur = next
	}
	return int(root)
}

// Union merges the sets containing x and y. Returns false if they were
// already the same set.
func (f *Forest) Union(x, y int) bool {
	rx := uint32(f.Find(x))
	ry := uint32(f.Find(y))
	if rx == ry {
		return false
	}

	if f.rank[rx] < f.rank[ry] {
		rx, ry = ry, rx
	}
	f.parent[ry] = rx
	f.size[rx] += f.size[ry]
	if f.rank[rx] == f.rank[ry] {
		f.rank[rx]++
	}
	return true
}

// Connected reports whether x and y are in the same set.
func (f *Forest) Connected(x, y int) bool {
	return f.Find(x) == f.Find(y)
}

// Size returns the number of elements in the set containing x.
func (f *Forest) Size(x int) int {
	return int(f.size[f.Find(x)])
}

// Components returns the members of every set, each in ascending order.
// Sets are ordered by their smallest member.
func Components(f *Forest) [][]int {
	slot := make(map[int]int)
	var comps [][]int
	for i := range f.Len() {
		root := f.Find(i)
		s, ok := slot[root]
		if !ok {
			s = len(comps)
			slot[root] = s
			comps = append(comps, make([]int, 0, f.size[root]))
		}
		comps[s] = append(comps[s], i)
	}
	return comps
}
