package msf

import (
	"cmp"
	"context"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"gridplan/pkg/merge"
)

// candidate is an edge of the candidate space with u < v.
type candidate struct {
	u, v uint32
	w    float64
}

func compareCandidates(a, b candidate) int {
	if c := cmp.Compare(a.w, b.w); c != 0 {
		return c
	}
	if c := cmp.Compare(a.u, b.u); c != 0 {
		return c
	}
	return cmp.Compare(a.v, b.v)
}

// CandidateCount returns the number of candidate edges of r: every pair of
// candidates except anchor pairs.
func CandidateCount(r *merge.Result) int {
	d, a := r.DemandLen(), r.Len()-r.DemandLen()
	return d*(d-1)/2 + d*a
}

// candidates computes the weight of every candidate edge and returns them in
// canonical order. Row i of the triangular layout holds the edges (i, j > i)
// of demand candidate i; rows are filled in parallel.
func candidates(ctx context.Context, r *merge.Result) ([]candidate, error) {
	n, d := r.Len(), r.DemandLen()
	offsets := make([]int, d+1)
	for i := range d {
		offsets[i+1] = offsets[i] + n - 1 - i
	}
	edges := make([]candidate, offsets[d])

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range d {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := edges[offsets[i]:offsets[i+1]]
			for k := range row {
				j := i + 1 + k
				row[k] = candidate{u: uint32(i), v: uint32(j), w: r.Weight(i, j)}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(edges, compareCandidates)
	return edges, nil
}
