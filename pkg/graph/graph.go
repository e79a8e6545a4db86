package graph

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb"

	"gridplan/pkg/geo"
)

// ErrInvalidGraph is wrapped by every structural input error.
var ErrInvalidGraph = errors.New("invalid graph")

// Kind tags a node identifier.
type Kind uint8

const (
	KindDemand Kind = iota
	KindNetwork
	KindAnchor
)

func (k Kind) String() string {
	switch k {
	case KindDemand:
		return "demand"
	case KindNetwork:
		return "network"
	case KindAnchor:
		return "anchor"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// NodeID identifies a node across the demand, network and anchor namespaces.
// Ids are only unique within one kind.
type NodeID struct {
	Kind Kind
	ID   int64
}

func Demand(id int64) NodeID  { return NodeID{Kind: KindDemand, ID: id} }
func Network(id int64) NodeID { return NodeID{Kind: KindNetwork, ID: id} }
func Anchor(id int64) NodeID  { return NodeID{Kind: KindAnchor, ID: id} }

// IsReal reports whether n names an input node rather than a synthetic anchor.
func (n NodeID) IsReal() bool { return n.Kind != KindAnchor }

// Compare orders by kind (demand < network < anchor), then id.
func (n NodeID) Compare(o NodeID) int {
	if c := cmp.Compare(n.Kind, o.Kind); c != 0 {
		return c
	}
	return cmp.Compare(n.ID, o.ID)
}

func (n NodeID) String() string {
	var prefix string
	switch n.Kind {
	case KindDemand:
		prefix = "d"
	case KindNetwork:
		prefix = "n"
	case KindAnchor:
		prefix = "a"
	default:
		prefix = "?"
	}
	return prefix + strconv.FormatInt(n.ID, 10)
}

// Node is a point of an input graph. Budget is the largest edge weight the
// node may pay for to get connected; it is ignored for network nodes.
type Node struct {
	ID     int64
	Point  orb.Point
	Budget float64
}

// Link is an existing connection between two nodes of the same graph.
type Link struct {
	A, B int64
}

// GeoGraph is an immutable input graph. All coordinates share Ref.
type GeoGraph struct {
	Ref   geo.SpatialRef
	Nodes []Node
	Links []Link
}

// Len returns the number of nodes; a nil graph is empty.
func (g *GeoGraph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Nodes)
}

// Index maps node ids to their position in Nodes.
func (g *GeoGraph) Index() map[int64]int {
	idx := make(map[int64]int, g.Len())
	if g == nil {
		return idx
	}
	for i, n := range g.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// Validate checks the structural invariants of the graph. Errors wrap ErrInvalidGraph.
func (g *GeoGraph) Validate() error {
	if g.Len() == 0 {
		if g != nil && len(g.Links) > 0 {
			return fmt.Errorf("%w: %d links without nodes", ErrInvalidGraph, len(g.Links))
		}
		return nil
	}
	if g.Ref.IsZero() {
		return fmt.Errorf("%w: nodes without spatial reference", ErrInvalidGraph)
	}

	seen := make(map[int64]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %d", ErrInvalidGraph, n.ID)
		}
		seen[n.ID] = struct{}{}

		if !finite(n.Point[0]) || !finite(n.Point[1]) {
			return fmt.Errorf("%w: node %d has non-finite coordinate %v", ErrInvalidGraph, n.ID, n.Point)
		}
		if math.IsNaN(n.Budget) || n.Budget < 0 {
			return fmt.Errorf("%w: node %d has invalid budget %v", ErrInvalidGraph, n.ID, n.Budget)
		}
	}

	for _, l := range g.Links {
		if l.A == l.B {
			return fmt.Errorf("%w: self link on node %d", ErrInvalidGraph, l.A)
		}
		if _, ok := seen[l.A]; !ok {
			return fmt.Errorf("%w: link %d-%d references unknown node %d", ErrInvalidGraph, l.A, l.B, l.A)
		}
		if _, ok := seen[l.B]; !ok {
			return fmt.Errorf("%w: link %d-%d references unknown node %d", ErrInvalidGraph, l.A, l.B, l.B)
		}
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Edge is a planned connection. PA and PB are the endpoint coordinates; for an
// anchor endpoint that is the point on the existing line, not a network node.
type Edge struct {
	A, B   NodeID
	PA, PB orb.Point
	Weight float64
}

// Canonical returns e with endpoints ordered so that A < B.
func (e Edge) Canonical() Edge {
	if e.B.Compare(e.A) < 0 {
		e.A, e.B = e.B, e.A
		e.PA, e.PB = e.PB, e.PA
	}
	return e
}

func (e Edge) String() string {
	return fmt.Sprintf("%s-%s(%g)", e.A, e.B, e.Weight)
}

// TotalWeight sums the weights of edges.
func TotalWeight(edges []Edge) float64 {
	var sum float64
	for _, e := range edges {
		sum += e.Weight
	}
	return sum
}
