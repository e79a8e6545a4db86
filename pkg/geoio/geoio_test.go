package geoio

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridplan/pkg/geo"
	"gridplan/pkg/graph"
)

const demandJSON = `{
  "type": "FeatureCollection",
  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::32737"}},
  "features": [
    {"type": "Feature", "id": 10, "geometry": {"type": "Point", "coordinates": [1, 2]}, "properties": {"budget": 5}},
    {"type": "Feature", "id": "11", "geometry": {"type": "Point", "coordinates": [3, 4]}, "properties": {"budget": "inf"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [5, 6]}, "properties": {"budget": 0.5}}
  ]
}`

func TestReadDemand(t *testing.T) {
	g, err := ReadDemand(strings.NewReader(demandJSON), DemandOptions{})
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	assert.Equal(t, geo.MustParseRef("EPSG:32737"), g.Ref)
	require.Len(t, g.Nodes, 3)
	assert.Equal(t, graph.Node{ID: 10, Point: orb.Point{1, 2}, Budget: 5}, g.Nodes[0])
	assert.Equal(t, int64(11), g.Nodes[1].ID)
	assert.True(t, math.IsInf(g.Nodes[1].Budget, 1))
	assert.Equal(t, int64(2), g.Nodes[2].ID, "falls back to the feature index")
	assert.Empty(t, g.Links)
}

func TestReadDemandProperties(t *testing.T) {
	in := `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "id": 99, "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"site": 7, "mv": 12.5}}
	]}`
	g, err := ReadDemand(strings.NewReader(in), DemandOptions{BudgetProperty: "mv", IDProperty: "site"})
	require.NoError(t, err)
	assert.Equal(t, geo.WGS84, g.Ref, "no crs member means WGS84")
	assert.Equal(t, []graph.Node{{ID: 7, Point: orb.Point{0, 0}, Budget: 12.5}}, g.Nodes)

	g, err = ReadDemand(strings.NewReader(in), DemandOptions{BudgetProperty: "mv", Ref: geo.FlatEarth})
	require.NoError(t, err)
	assert.Equal(t, geo.FlatEarth, g.Ref)
	assert.Equal(t, int64(99), g.Nodes[0].ID)
}

func TestReadDemandErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts DemandOptions
		want error
	}{
		{
			name: "line feature",
			in:   `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{"budget":1}}]}`,
			want: ErrUnsupportedGeometry,
		},
		{
			name: "missing budget",
			in:   `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[0,0]},"properties":{}}]}`,
			want: ErrMissingBudget,
		},
		{
			name: "bad budget",
			in:   `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[0,0]},"properties":{"budget":"lots"}}]}`,
			want: ErrMissingBudget,
		},
		{
			name: "unknown crs",
			in:   `{"type":"FeatureCollection","crs":{"type":"name","properties":{"name":"somewhere"}},"features":[]}`,
			want: geo.ErrUnknownRef,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDemand(strings.NewReader(tt.in), tt.opts)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := ReadDemand(strings.NewReader(`{"type":"FeatureCollection","features":[{"type":"Feature","id":1.5,"geometry":{"type":"Point","coordinates":[0,0]},"properties":{"budget":1}}]}`), DemandOptions{})
	assert.Error(t, err)

	_, err = ReadDemand(strings.NewReader(`{"type":"Feature"}`), DemandOptions{})
	assert.Error(t, err)
}

func TestReadNetwork(t *testing.T) {
	in := `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0,0],[1,0],[1,0],[2,0]]}, "properties": {}},
	  {"type": "Feature", "geometry": {"type": "MultiLineString", "coordinates": [[[2,0],[1,0]], [[5,5],[6,5]]]}, "properties": {}},
	  {"type": "Feature", "geometry": {"type": "Point", "coordinates": [9,9]}, "properties": {}},
	  {"type": "Feature", "geometry": {"type": "Point", "coordinates": [0,0]}, "properties": {}}
	]}`
	g, err := ReadNetwork(strings.NewReader(in), NetworkOptions{})
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	assert.Equal(t, geo.WGS84, g.Ref)
	assert.Equal(t, []graph.Node{
		{ID: 0, Point: orb.Point{0, 0}},
		{ID: 1, Point: orb.Point{1, 0}},
		{ID: 2, Point: orb.Point{2, 0}},
		{ID: 3, Point: orb.Point{5, 5}},
		{ID: 4, Point: orb.Point{6, 5}},
		{ID: 5, Point: orb.Point{9, 9}},
	}, g.Nodes)
	assert.Equal(t, []graph.Link{{A: 0, B: 1}, {A: 1, B: 2}, {A: 3, B: 4}}, g.Links)
}

func TestReadNetworkRejectsPolygons(t *testing.T) {
	in := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]},"properties":{}}]}`
	_, err := ReadNetwork(strings.NewReader(in), NetworkOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)
}

func TestWriteEdges(t *testing.T) {
	edges := []graph.Edge{
		{A: graph.Demand(3), B: graph.Network(8), PA: orb.Point{0, 0}, PB: orb.Point{3, 4}, Weight: 5},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEdges(&buf, geo.FlatEarth, edges))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	f := fc.Features[0]
	assert.Equal(t, orb.LineString{{0, 0}, {3, 4}}, f.Geometry)
	assert.Equal(t, 3, f.Properties.MustInt("from"))
	assert.Equal(t, 8, f.Properties.MustInt("to"))
	assert.Equal(t, "demand", f.Properties.MustString("from_kind"))
	assert.Equal(t, "network", f.Properties.MustString("to_kind"))
	assert.Equal(t, 5.0, f.Properties.MustFloat64("weight"))

	ref, err := collectionRef(fc, geo.SpatialRef{})
	require.NoError(t, err)
	assert.Equal(t, geo.FlatEarth, ref, "crs member survives a round trip")
}

func TestWriteEdgesWGS84HasNoCRS(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEdges(&buf, geo.WGS84, nil))
	assert.NotContains(t, buf.String(), "crs")
	assert.Contains(t, buf.String(), `"features":[]`)
}
