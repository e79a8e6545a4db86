package msf

import (
	"context"
	"math"
	"slices"

	"gridplan/pkg/graph"
	"gridplan/pkg/merge"
)

const noEdge = math.MaxUint32

// Boruvka grows every component in rounds. In each round every component
// that can still pay proposes its cheapest live outgoing edge. Proposals are
// settled in canonical order, and a proposal is settled only while it is
// still the cheapest live edge of both components it touches; otherwise it
// waits for the next round. That keeps every decision identical to the one
// Kruskal makes for the same edge. The loop stops when a round settles nothing.
func Boruvka(ctx context.Context, r *merge.Result) ([]graph.Edge, error) {
	edges, err := candidates(ctx, r)
	if err != nil {
		return nil, err
	}

	b := newGrower(r, edges)
	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		props := b.propose(round)
		if len(props) == 0 {
			break
		}
		if b.settle(props) == 0 {
			break
		}
	}
	return b.out, nil
}

// grower holds the per-run state of Boruvka.
type grower struct {
	r         *merge.Result
	p         *pools
	edges     []candidate
	adj       *graph.Adjacency
	cursor    []uint32   // per candidate: first incident edge that may still be live
	discarded []bool     // per edge: rejected for good
	members   [][]uint32 // per root: candidate members of its component
	seen      []int      // per root: last round it was visited
	out       []graph.Edge
}

func newGrower(r *merge.Result, edges []candidate) *grower {
	n := r.Len()
	b := &grower{
		r:     r,
		p:     newPools(r),
		edges: edges,
		adj: graph.BuildAdjacency(n, len(edges), func(e int) (int, int) {
			return int(edges[e].u), int(edges[e].v)
		}),
		cursor:    make([]uint32, n),
		discarded: make([]bool, len(edges)),
	}
	b.members = make([][]uint32, b.p.f.Len())
	b.seen = make([]int, b.p.f.Len())
	for i := range n {
		root := b.p.f.Find(i)
		b.members[root] = append(b.members[root], uint32(i))
	}
	return b
}

// minLive returns the cheapest edge leaving the component rooted at root
// that has not been discarded, or noEdge. Cursors only move forward: an edge
// that became internal or was discarded stays that way.
func (b *grower) minLive(root int) uint32 {
	best := uint32(noEdge)
	for _, u := range b.members[root] {
		inc := b.adj.EdgesOf(int(u))
		c := int(b.cursor[u])
		for ; c < len(inc); c++ {
			e := inc[c]
			if b.discarded[e] {
				continue
			}
			other := b.edges[e].u
			if other == u {
				other = b.edges[e].v
			}
			if b.p.f.Find(int(other)) != root {
				break
			}
		}
		b.cursor[u] = uint32(c)
		if c < len(inc) && inc[c] < best {
			best = inc[c]
		}
	}
	return best
}

// propose collects one edge per live component, sorted and deduplicated.
func (b *grower) propose(round int) []uint32 {
	var props []uint32
	for i := range b.r.Len() {
		root := b.p.f.Find(i)
		if b.seen[root] == round {
			continue
		}
		b.seen[root] = round
		if b.p.exhausted[root] {
			continue
		}
		if e := b.minLive(root); e != noEdge {
			props = append(props, e)
		}
	}
	slices.Sort(props)
	return slices.Compact(props)
}

// settle decides the proposals that are ready and returns how many it decided.
func (b *grower) settle(props []uint32) int {
	settled := 0
	for _, e := range props {
		if b.discarded[e] {
			continue
		}
		c := b.edges[e]
		ru, rv := b.p.f.Find(int(c.u)), b.p.f.Find(int(c.v))
		if ru == rv {
			continue
		}
		if b.p.exhausted[ru] || b.p.exhausted[rv] {
			b.discarded[e] = true
			settled++
			continue
		}
		if b.minLive(ru) != e || b.minLive(rv) != e {
			continue
		}

		fu, fv := b.p.fits(ru, c.w), b.p.fits(rv, c.w)
		if fu && fv {
			root := b.p.merge(ru, rv, c.w)
			b.join(root, ru, rv)
			b.out = append(b.out, b.r.Edge(int(c.u), int(c.v), c.w))
		} else {
			b.discarded[e] = true
			b.p.exhausted[ru] = !fu
			b.p.exhausted[rv] = !fv
		}
		settled++
	}
	return settled
}

// join moves the members of the absorbed root into root.
func (b *grower) join(root, ru, rv int) {
	other := ru
	if root == ru {
		other = rv
	}
	keep, moved := b.members[root], b.members[other]
	if len(moved) > len(keep) {
		keep, moved = moved, keep
	}
	b.members[root] = append(keep, moved...)
	b.members[other] = nil
}
