package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Metric turns coordinates into non-negative edge weights. Implementations
// are symmetric and Distance(a, a) == 0.
type Metric interface {
	Ref() SpatialRef
	Distance(a, b orb.Point) float64
	// Project returns the point of segment ab closest to p and its distance from p.
	Project(p, a, b orb.Point) (orb.Point, float64)
	// BoundDistance is a lower bound of Distance from p to any point inside b.
	BoundDistance(p orb.Point, b orb.Bound) float64
}

// MetricFor returns the metric matching the reference kind.
func MetricFor(ref SpatialRef) (Metric, error) {
	if ref.IsZero() {
		return nil, fmt.Errorf("%w: no metric for unset reference", ErrUnknownRef)
	}
	switch ref.Kind {
	case KindPlanar:
		return Planar{ref: ref}, nil
	case KindGeodetic:
		return Geodetic{ref: ref}, nil
	default:
		return nil, fmt.Errorf("%w: kind %s", ErrUnknownRef, ref.Kind)
	}
}

// Planar is Euclidean distance in projection units.
type Planar struct{ ref SpatialRef }

func (m Planar) Ref() SpatialRef { return m.ref }

func (Planar) Distance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

func (Planar) Project(p, a, b orb.Point) (orb.Point, float64) {
	q, _ := projectSegment(p, a, b, 1)
	return q, planar.Distance(p, q)
}

func (Planar) BoundDistance(p orb.Point, b orb.Bound) float64 {
	dx := axisGap(p[0], b.Min[0], b.Max[0])
	dy := axisGap(p[1], b.Min[1], b.Max[1])
	return math.Sqrt(dx*dx + dy*dy)
}

// Geodetic is great-circle (haversine) distance in meters on lon/lat degrees.
type Geodetic struct{ ref SpatialRef }

func (m Geodetic) Ref() SpatialRef { return m.ref }

func (Geodetic) Distance(a, b orb.Point) float64 {
	return orbgeo.DistanceHaversine(a, b)
}

// Project works in a local equirectangular projection, which is accurate for
// the short spans between a demand point and nearby lines; the returned
// distance is exact haversine to the projected point.
func (Geodetic) Project(p, a, b orb.Point) (orb.Point, float64) {
	cosLat := math.Cos((a.Lat() + b.Lat()) / 2 * math.Pi / 180)
	q, _ := projectSegment(p, a, b, cosLat)
	return q, orbgeo.DistanceHaversine(p, q)
}

func (Geodetic) BoundDistance(p orb.Point, b orb.Bound) float64 {
	dLat := axisGap(p.Lat(), b.Min.Lat(), b.Max.Lat())
	dLon := axisGap(p.Lon(), b.Min.Lon(), b.Max.Lon())
	if dLat == 0 && dLon == 0 {
		return 0
	}
	// Scale longitude by the widest latitude touched so the bound stays low.
	maxLat := math.Max(math.Abs(p.Lat()), math.Max(math.Abs(b.Min.Lat()), math.Abs(b.Max.Lat())))
	cosLat := math.Cos(math.Min(maxLat, 90) * math.Pi / 180)
	rad := math.Hypot(dLat, dLon*cosLat) * math.Pi / 180
	return rad * orb.EarthRadius * boundSlack
}

// boundSlack absorbs the gap between the equirectangular estimate and haversine.
const boundSlack = 0.95

func axisGap(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	default:
		return 0
	}
}
