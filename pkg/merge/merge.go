// Package merge combines an existing network with new demand nodes into the
// candidate space searched by the spanning forest builders.
package merge

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/paulmach/orb"

	"gridplan/pkg/geo"
	"gridplan/pkg/graph"
)

// Mode controls how the existing network's connectivity is seeded.
type Mode uint8

const (
	// Disjoint keeps every connected piece of the network as its own component.
	Disjoint Mode = iota
	// Single treats the whole network as one already connected component.
	Single
)

func (m Mode) String() string {
	switch m {
	case Disjoint:
		return "disjoint"
	case Single:
		return "single"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// ParseMode parses "single" or "disjoint".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single":
		return Single, nil
	case "disjoint", "":
		return Disjoint, nil
	default:
		return 0, fmt.Errorf("unknown merge mode %q", s)
	}
}

// Anchor is a connection point on the existing network created for one
// demand node.
type Anchor struct {
	ID      graph.NodeID
	Point   orb.Point
	Demand  int64    // demand node the anchor was placed for
	Segment [2]int64 // network node ids of the line it lies on
	Node    int64    // nearer endpoint; edges to the anchor resolve to it
}

// Result is the merged candidate space. Candidates are indexed 0..Len()-1:
// demand nodes in ascending id order, followed by anchors. The forest
// universe is the candidates followed by the network nodes.
type Result struct {
	mode    Mode
	metric  geo.Metric
	ids     []graph.NodeID
	points  []orb.Point
	budgets []float64
	demand  int // number of demand candidates
	anchors []Anchor
	network []graph.Node
	forest  *graph.Forest
}

// Merge validates both graphs and builds the candidate space. Either graph
// may be nil or empty.
func Merge(network, demand *graph.GeoGraph, mode Mode) (*Result, error) {
	// Step 1: Validate structure and reference systems before any distance work.
	if err := network.Validate(); err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}
	if err := demand.Validate(); err != nil {
		return nil, fmt.Errorf("demand: %w", err)
	}
	ref, err := commonRef(network, demand)
	if err != nil {
		return nil, err
	}

	r := &Result{mode: mode}
	if !ref.IsZero() {
		if r.metric, err = geo.MetricFor(ref); err != nil {
			return nil, err
		}
	}

	// Step 2: Demand candidates in id order.
	var dnodes []graph.Node
	if demand != nil {
		dnodes = slices.Clone(demand.Nodes)
	}
	slices.SortFunc(dnodes, func(a, b graph.Node) int { return cmp.Compare(a.ID, b.ID) })
	r.demand = len(dnodes)
	for _, n := range dnodes {
		r.ids = append(r.ids, graph.Demand(n.ID))
		r.points = append(r.points, n.Point)
		r.budgets = append(r.budgets, n.Budget)
	}

	// Step 3: One anchor per demand node at its projection onto the nearest segment.
	var segOf []SnapResult
	if network.Len() > 0 {
		r.network = network.Nodes
		snap := NewSnapper(network, r.metric)
		for _, n := range dnodes {
			res, ok := snap.Snap(n.Point)
			if !ok {
				break
			}
			near := snap.Nearer(res)
			a := Anchor{
				ID:      graph.Anchor(int64(len(r.anchors))),
				Point:   res.Point,
				Demand:  n.ID,
				Segment: [2]int64{r.network[res.NodeU].ID, r.network[res.NodeV].ID},
				Node:    r.network[near].ID,
			}
			r.anchors = append(r.anchors, a)
			segOf = append(segOf, res)
			r.ids = append(r.ids, a.ID)
			r.points = append(r.points, a.Point)
			r.budgets = append(r.budgets, 0)
		}
	}

	// Step 4: Seed the forest with existing connectivity.
	n := len(r.ids)
	r.forest = graph.NewForest(n + len(r.network))
	if len(r.network) > 0 {
		switch mode {
		case Single:
			for i := 1; i < len(r.network); i++ {
				r.forest.Union(n, n+i)
			}
		default:
			idx := network.Index()
			for _, l := range network.Links {
				r.forest.Union(n+idx[l.A], n+idx[l.B])
			}
		}
		for k, res := range segOf {
			r.forest.Union(r.demand+k, n+res.NodeU)
		}
	}

	return r, nil
}

// commonRef checks that the graphs share a reference system and returns it.
// An empty graph without a reference adopts the other one.
func commonRef(network, demand *graph.GeoGraph) (geo.SpatialRef, error) {
	var nref, dref geo.SpatialRef
	if network != nil {
		nref = network.Ref
	}
	if demand != nil {
		dref = demand.Ref
	}
	if demand.Len() == 0 && dref.IsZero() {
		return nref, nil
	}
	if err := geo.Validate(dref, nref, network.Len() == 0); err != nil {
		return geo.SpatialRef{}, err
	}
	return dref, nil
}

// Mode returns the merge mode the result was built with.
func (r *Result) Mode() Mode { return r.mode }

// Len returns the number of candidates.
func (r *Result) Len() int { return len(r.ids) }

// DemandLen returns the number of demand candidates; they occupy indices 0..DemandLen()-1.
func (r *Result) DemandLen() int { return r.demand }

// NetworkLen returns the number of existing network nodes in the forest universe.
func (r *Result) NetworkLen() int { return len(r.network) }

// Nodes returns the candidate identifiers in index order.
func (r *Result) Nodes() []graph.NodeID { return r.ids }

// Node returns the identifier of candidate i.
func (r *Result) Node(i int) graph.NodeID { return r.ids[i] }

// Point returns the coordinate of candidate i.
func (r *Result) Point(i int) orb.Point { return r.points[i] }

// Budget returns the budget of candidate i; anchors have none.
func (r *Result) Budget(i int) float64 { return r.budgets[i] }

// IsAnchor reports whether candidate i is an anchor.
func (r *Result) IsAnchor(i int) bool { return i >= r.demand }

// Anchors returns the anchors in creation order.
func (r *Result) Anchors() []Anchor { return r.anchors }

// Metric returns the distance metric; nil when both inputs are empty.
func (r *Result) Metric() geo.Metric { return r.metric }

// Forest returns a fresh copy of the seeded forest. Callers own the copy.
func (r *Result) Forest() *graph.Forest { return r.forest.Clone() }

// Weight is the metric distance between candidates i and j.
func (r *Result) Weight(i, j int) float64 {
	return r.metric.Distance(r.points[i], r.points[j])
}

// Candidate reports whether (i, j) is in the candidate edge space: every
// pair of distinct candidates except two anchors.
func (r *Result) Candidate(i, j int) bool {
	return i != j && !(r.IsAnchor(i) && r.IsAnchor(j))
}

// Edge builds the output edge between candidates i and j.
func (r *Result) Edge(i, j int, w float64) graph.Edge {
	return graph.Edge{A: r.ids[i], B: r.ids[j], PA: r.points[i], PB: r.points[j], Weight: w}
}

// Resolve rewrites anchor endpoints to the network node the anchor stands
// for. Endpoint coordinates keep the anchor position.
func (r *Result) Resolve(edges []graph.Edge) []graph.Edge {
	out := make([]graph.Edge, len(edges))
	for i, e := range edges {
		e.A = r.resolve(e.A)
		e.B = r.resolve(e.B)
		out[i] = e
	}
	return out
}

func (r *Result) resolve(id graph.NodeID) graph.NodeID {
	if id.Kind != graph.KindAnchor {
		return id
	}
	return graph.Network(r.anchors[id.ID].Node)
}
