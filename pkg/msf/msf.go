// Package msf builds budget-constrained minimum spanning forests over a
// merged candidate space.
//
// Every forest component holds a budget pool: the budgets of its demand
// members minus the weight of the edges already built inside it. An edge of
// weight w joining components A and B is affordable when w fits in the pool
// of each side that has demand members; components made only of existing
// network pay nothing. The merged component's pool is pool(A) + pool(B) - w.
//
// Two strategies are provided. Kruskal sorts every candidate edge once;
// Boruvka grows all components in rounds. Both commit edges in the same
// total order (weight, then lower candidate index, then higher) and return
// the same edge set for every input.
package msf

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gridplan/pkg/graph"
	"gridplan/pkg/merge"
)

// ErrUnknownStrategy is returned by ParseStrategy and Build.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy selects the forest construction algorithm.
type Strategy uint8

const (
	StrategyBoruvka Strategy = iota
	StrategyKruskal
)

func (s Strategy) String() string {
	switch s {
	case StrategyBoruvka:
		return "boruvka"
	case StrategyKruskal:
		return "kruskal"
	default:
		return fmt.Sprintf("Strategy(%d)", s)
	}
}

// ParseStrategy parses a strategy name. The empty string selects Boruvka.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boruvka", "":
		return StrategyBoruvka, nil
	case "kruskal":
		return StrategyKruskal, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Build runs the selected strategy. Edges reference candidate ids; anchors
// are not resolved.
func Build(ctx context.Context, r *merge.Result, s Strategy) ([]graph.Edge, error) {
	switch s {
	case StrategyBoruvka:
		return Boruvka(ctx, r)
	case StrategyKruskal:
		return Kruskal(ctx, r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, s)
	}
}

// pools tracks the budget pool of every forest root.
type pools struct {
	f         *graph.Forest
	pool      []float64
	demand    []bool // root has at least one demand member
	exhausted []bool // root failed its own pool check; it can never grow again
}

func newPools(r *merge.Result) *pools {
	f := r.Forest()
	p := &pools{
		f:         f,
		pool:      make([]float64, f.Len()),
		demand:    make([]bool, f.Len()),
		exhausted: make([]bool, f.Len()),
	}
	for i := range r.DemandLen() {
		root := f.Find(i)
		p.pool[root] += r.Budget(i)
		p.demand[root] = true
	}
	return p
}

// fits reports whether root can pay w.
func (p *pools) fits(root int, w float64) bool {
	return !p.demand[root] || w <= p.pool[root]
}

// merge joins two distinct roots over an edge of weight w.
func (p *pools) merge(ru, rv int, w float64) int {
	pool := p.pool[ru] + p.pool[rv] - w
	demand := p.demand[ru] || p.demand[rv]
	p.f.Union(ru, rv)
	root := p.f.Find(ru)
	p.pool[root] = pool
	p.demand[root] = demand
	return root
}
