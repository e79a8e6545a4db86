// Package geoio reads demand points and existing networks from GeoJSON and
// writes planned edges back out.
package geoio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"gridplan/pkg/geo"
	"gridplan/pkg/graph"
)

// ErrUnsupportedGeometry is returned for geometries a reader cannot use.
var ErrUnsupportedGeometry = errors.New("unsupported geometry")

// ErrMissingBudget is returned when a demand feature has no usable budget.
var ErrMissingBudget = errors.New("missing budget")

// DefaultBudgetProperty names the demand budget property when none is set.
const DefaultBudgetProperty = "budget"

// DemandOptions controls how demand features are read.
type DemandOptions struct {
	// BudgetProperty holds each point's budget. Numbers and numeric strings
	// are accepted, including "inf".
	BudgetProperty string
	// IDProperty holds each point's id. When empty the feature id is used,
	// then the feature index.
	IDProperty string
	// Ref overrides the collection's crs member.
	Ref geo.SpatialRef
}

// NetworkOptions controls how network features are read.
type NetworkOptions struct {
	Ref geo.SpatialRef
}

func decode(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	return fc, nil
}

// ReadDemand reads a FeatureCollection of Point features.
func ReadDemand(r io.Reader, opts DemandOptions) (*graph.GeoGraph, error) {
	fc, err := decode(r)
	if err != nil {
		return nil, err
	}
	ref, err := collectionRef(fc, opts.Ref)
	if err != nil {
		return nil, err
	}
	prop := opts.BudgetProperty
	if prop == "" {
		prop = DefaultBudgetProperty
	}

	g := &graph.GeoGraph{Ref: ref, Nodes: make([]graph.Node, 0, len(fc.Features))}
	for i, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("demand feature %d: %w: %s", i, ErrUnsupportedGeometry, geometryType(f.Geometry))
		}
		id, err := featureID(f, opts.IDProperty, i)
		if err != nil {
			return nil, fmt.Errorf("demand feature %d: %w", i, err)
		}
		budget, err := number(f.Properties[prop])
		if err != nil {
			return nil, fmt.Errorf("demand feature %d: %w: property %q: %w", i, ErrMissingBudget, prop, err)
		}
		g.Nodes = append(g.Nodes, graph.Node{ID: id, Point: p, Budget: budget})
	}
	return g, nil
}

// ReadNetwork reads an existing network. LineString and MultiLineString
// vertices become nodes, shared by coordinate, and consecutive vertices
// become links. Point features add nodes without links. Node ids follow
// first appearance.
func ReadNetwork(r io.Reader, opts NetworkOptions) (*graph.GeoGraph, error) {
	fc, err := decode(r)
	if err != nil {
		return nil, err
	}
	ref, err := collectionRef(fc, opts.Ref)
	if err != nil {
		return nil, err
	}

	b := newNetworkBuilder(ref)
	for i, f := range fc.Features {
		switch geom := f.Geometry.(type) {
		case orb.Point:
			b.vertex(geom)
		case orb.LineString:
			b.line(geom)
		case orb.MultiLineString:
			for _, ls := range geom {
				b.line(ls)
			}
		default:
			return nil, fmt.Errorf("network feature %d: %w: %s", i, ErrUnsupportedGeometry, geometryType(f.Geometry))
		}
	}
	return b.g, nil
}

type networkBuilder struct {
	g     *graph.GeoGraph
	ids   map[orb.Point]int64
	links map[graph.Link]struct{}
}

func newNetworkBuilder(ref geo.SpatialRef) *networkBuilder {
	return &networkBuilder{
		g:     &graph.GeoGraph{Ref: ref},
		ids:   make(map[orb.Point]int64),
		links: make(map[graph.Link]struct{}),
	}
}

func (b *networkBuilder) vertex(p orb.Point) int64 {
	if id, ok := b.ids[p]; ok {
		return id
	}
	id := int64(len(b.g.Nodes))
	b.ids[p] = id
	b.g.Nodes = append(b.g.Nodes, graph.Node{ID: id, Point: p})
	return id
}

func (b *networkBuilder) line(ls orb.LineString) {
	prev := int64(-1)
	for i, p := range ls {
		id := b.vertex(p)
		if i > 0 && id != prev {
			l := graph.Link{A: min(prev, id), B: max(prev, id)}
			if _, dup := b.links[l]; !dup {
				b.links[l] = struct{}{}
				b.g.Links = append(b.g.Links, l)
			}
		}
		prev = id
	}
}

// collectionRef returns override when set, else the legacy crs member, else
// WGS84.
func collectionRef(fc *geojson.FeatureCollection, override geo.SpatialRef) (geo.SpatialRef, error) {
	if !override.IsZero() {
		return override, nil
	}
	crs, ok := fc.ExtraMembers["crs"].(map[string]interface{})
	if !ok {
		return geo.WGS84, nil
	}
	props, _ := crs["properties"].(map[string]interface{})
	name, _ := props["name"].(string)
	if name == "" {
		return geo.WGS84, nil
	}
	return geo.ParseRef(name)
}

func featureID(f *geojson.Feature, prop string, index int) (int64, error) {
	if prop != "" {
		v, ok := f.Properties[prop]
		if !ok {
			return 0, fmt.Errorf("missing id property %q", prop)
		}
		return integer(v)
	}
	if f.ID != nil {
		return integer(f.ID)
	}
	return int64(index), nil
}

func number(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return 0, errors.New("NaN")
		}
		return x, nil
	case string:
		return strconv.ParseFloat(x, 64)
	case nil:
		return 0, errors.New("not set")
	default:
		return 0, fmt.Errorf("unexpected %T", v)
	}
}

func integer(v interface{}) (int64, error) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > 1<<53 {
			return 0, fmt.Errorf("id %v is not an integer", x)
		}
		return int64(x), nil
	case string:
		id, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("id %q is not an integer", x)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("unexpected id type %T", v)
	}
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "null"
	}
	return g.GeoJSONType()
}

// EdgeCollection converts planned edges to a FeatureCollection of
// LineStrings. Each feature carries from, to, from_kind, to_kind and weight.
// A non-WGS84 ref is recorded in a crs member.
func EdgeCollection(ref geo.SpatialRef, edges []graph.Edge) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, e := range edges {
		f := geojson.NewFeature(orb.LineString{e.PA, e.PB})
		f.Properties["from"] = e.A.ID
		f.Properties["to"] = e.B.ID
		f.Properties["from_kind"] = e.A.Kind.String()
		f.Properties["to_kind"] = e.B.Kind.String()
		f.Properties["weight"] = e.Weight
		fc.Append(f)
	}
	if !ref.IsZero() && !ref.Equal(geo.WGS84) {
		fc.ExtraMembers = geojson.Properties{
			"crs": map[string]interface{}{
				"type":       "name",
				"properties": map[string]interface{}{"name": ref.Code},
			},
		}
	}
	return fc
}

// WriteEdges encodes EdgeCollection(ref, edges) to w.
func WriteEdges(w io.Writer, ref geo.SpatialRef, edges []graph.Edge) error {
	data, err := EdgeCollection(ref, edges).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode edges: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write edges: %w", err)
	}
	return nil
}
