package msf

import (
	"context"

	"gridplan/pkg/graph"
	"gridplan/pkg/merge"
)

// ctxCheckInterval is how many edges are scanned between context checks.
const ctxCheckInterval = 1 << 14

// Kruskal sorts all candidate edges once and commits, in order, every edge
// that joins two components and is affordable.
func Kruskal(ctx context.Context, r *merge.Result) ([]graph.Edge, error) {
	edges, err := candidates(ctx, r)
	if err != nil {
		return nil, err
	}

	p := newPools(r)
	var out []graph.Edge
	for k, e := range edges {
		if k%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		ru, rv := p.f.Find(int(e.u)), p.f.Find(int(e.v))
		if ru == rv {
			continue
		}
		if !p.fits(ru, e.w) || !p.fits(rv, e.w) {
			continue
		}
		p.merge(ru, rv, e.w)
		out = append(out, r.Edge(int(e.u), int(e.v), e.w))
	}
	return out, nil
}
