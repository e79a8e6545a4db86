package geo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		want SpatialRef
	}{
		{"EPSG:4326", WGS84},
		{"epsg:4326", WGS84},
		{"WGS84", WGS84},
		{"CRS84", WGS84},
		{"urn:ogc:def:crs:OGC:1.3:CRS84", WGS84},
		{"urn:ogc:def:crs:EPSG::4326", WGS84},
		{"+proj=longlat +datum=WGS84 +no_defs", WGS84},
		{"+no_defs +datum=WGS84 +proj=longlat", WGS84},
		{"EPSG:3857", SpatialRef{Kind: KindPlanar, Code: "EPSG:3857"}},
		{"EPSG:04269", SpatialRef{Kind: KindGeodetic, Code: "EPSG:4269"}},
		{"+proj=utm +zone=33 +datum=WGS84", SpatialRef{Kind: KindPlanar, Code: "+datum=wgs84 +proj=utm +zone=33"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRef(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRefProj4TokenOrder(t *testing.T) {
	a, err := ParseRef("+proj=utm +zone=33 +datum=WGS84 +units=m")
	require.NoError(t, err)
	b, err := ParseRef("+units=m +datum=wgs84 +zone=33 +proj=utm +units=m")
	require.NoError(t, err)
	assert.True(t, a.Equal(b), "%s != %s", a, b)

	c, err := ParseRef("+proj=utm +zone=34 +datum=WGS84 +units=m")
	require.NoError(t, err)
	assert.False(t, a.Equal(c))
}

func TestParseRefErrors(t *testing.T) {
	for _, in := range []string{"", "   ", "nonsense", "EPSG:abc", "+proj", "+zone=33", "+proj=utm zone=33"} {
		_, err := ParseRef(in)
		assert.ErrorIs(t, err, ErrUnknownRef, "input %q", in)
	}
}

func TestFlatEarth(t *testing.T) {
	assert.Equal(t, KindPlanar, FlatEarth.Kind)
	assert.False(t, FlatEarth.Equal(WGS84))
}

func TestValidate(t *testing.T) {
	utm := MustParseRef("EPSG:32633")

	require.NoError(t, Validate(WGS84, WGS84, false))
	require.NoError(t, Validate(WGS84, MustParseRef("+proj=longlat +datum=WGS84"), false))
	require.NoError(t, Validate(WGS84, SpatialRef{}, true))

	err := Validate(WGS84, utm, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSpatialReferenceMismatch))

	var mm *MismatchError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, WGS84, mm.Demand)
	assert.Equal(t, utm, mm.Network)
	assert.Contains(t, err.Error(), "EPSG:32633")

	assert.ErrorIs(t, Validate(WGS84, SpatialRef{}, false), ErrSpatialReferenceMismatch)
}

func TestRefKindString(t *testing.T) {
	assert.Equal(t, "planar", KindPlanar.String())
	assert.Equal(t, "geodetic", KindGeodetic.String())
	assert.Equal(t, "RefKind(7)", RefKind(7).String())
	assert.Equal(t, "<unset>", SpatialRef{}.String())
}
