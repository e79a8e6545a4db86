package merge

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"gridplan/pkg/geo"
	"gridplan/pkg/graph"
)

// segment is a pair of network node indices. u == v marks an isolated node.
type segment struct {
	u, v int
}

// SnapResult is a point snapped onto the existing network.
type SnapResult struct {
	NodeU, NodeV int       // network node indices of the segment, NodeU == NodeV for an isolated node
	Point        orb.Point // closest point of the segment
	Dist         float64   // metric distance from the query point to Point
}

// Snapper finds the nearest existing segment to a point using an R-tree
// over segment bounds.
type Snapper struct {
	tr     rtree.RTreeG[segment]
	nodes  []graph.Node
	metric geo.Metric
}

// NewSnapper indexes every link of the network as a segment and every node
// without links as a degenerate one.
func NewSnapper(network *graph.GeoGraph, m geo.Metric) *Snapper {
	s := &Snapper{metric: m}
	if network.Len() == 0 {
		return s
	}
	s.nodes = network.Nodes

	idx := network.Index()
	linked := make([]bool, len(s.nodes))
	seen := make(map[segment]struct{}, len(network.Links))
	for _, l := range network.Links {
		u, v := idx[l.A], idx[l.B]
		if u > v {
			u, v = v, u
		}
		seg := segment{u: u, v: v}
		if _, dup := seen[seg]; dup {
			continue
		}
		seen[seg] = struct{}{}
		linked[u], linked[v] = true, true
		s.insert(seg)
	}
	for i := range s.nodes {
		if !linked[i] {
			s.insert(segment{u: i, v: i})
		}
	}
	return s
}

func (s *Snapper) insert(seg segment) {
	b := orb.MultiPoint{s.nodes[seg.u].Point, s.nodes[seg.v].Point}.Bound()
	s.tr.Insert(b.Min, b.Max, seg)
}

// Len returns the number of indexed segments.
func (s *Snapper) Len() int { return s.tr.Len() }

// Snap finds the segment closest to p. Among equally close segments the one
// with the smallest (min endpoint id, max endpoint id) wins. ok is false when
// the network is empty.
func (s *Snapper) Snap(p orb.Point) (res SnapResult, ok bool) {
	var bestSeg segment
	res.Dist = math.Inf(1)

	s.tr.Nearby(
		func(min, max [2]float64, seg segment, item bool) float64 {
			if item {
				_, d := s.metric.Project(p, s.nodes[seg.u].Point, s.nodes[seg.v].Point)
				return d
			}
			return s.metric.BoundDistance(p, orb.Bound{Min: min, Max: max})
		},
		func(_, _ [2]float64, seg segment, dist float64) bool {
			if ok && dist > res.Dist {
				return false
			}
			if !ok || dist < res.Dist || s.segLess(seg, bestSeg) {
				q, _ := s.metric.Project(p, s.nodes[seg.u].Point, s.nodes[seg.v].Point)
				res = SnapResult{NodeU: seg.u, NodeV: seg.v, Point: q, Dist: dist}
				bestSeg = seg
				ok = true
			}
			return true
		},
	)
	return res, ok
}

// segLess orders segments by their endpoint ids.
func (s *Snapper) segLess(a, b segment) bool {
	a0, a1 := s.idPair(a)
	b0, b1 := s.idPair(b)
	if a0 != b0 {
		return a0 < b0
	}
	return a1 < b1
}

func (s *Snapper) idPair(seg segment) (lo, hi int64) {
	lo, hi = s.nodes[seg.u].ID, s.nodes[seg.v].ID
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Nearer returns the endpoint of the snapped segment closest to the snapped
// point, preferring the smaller id on a tie.
func (s *Snapper) Nearer(r SnapResult) int {
	if r.NodeU == r.NodeV {
		return r.NodeU
	}
	du := s.metric.Distance(r.Point, s.nodes[r.NodeU].Point)
	dv := s.metric.Distance(r.Point, s.nodes[r.NodeV].Point)
	switch {
	case du < dv:
		return r.NodeU
	case dv < du:
		return r.NodeV
	case s.nodes[r.NodeU].ID < s.nodes[r.NodeV].ID:
		return r.NodeU
	default:
		return r.NodeV
	}
}
