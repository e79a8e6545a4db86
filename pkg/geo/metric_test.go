package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestGeodeticDistance(t *testing.T) {
	m := Geodetic{ref: WGS84}

	tests := []struct {
		name             string
		a, b             orb.Point
		wantMeters       float64
		tolerancePercent float64
	}{
		{
			name:             "Singapore CBD to Changi Airport",
			a:                orb.Point{103.8513, 1.2830},
			b:                orb.Point{103.9915, 1.3644},
			wantMeters:       18_023,
			tolerancePercent: 1,
		},
		{
			name:       "Same point",
			a:          orb.Point{103.8198, 1.3521},
			b:          orb.Point{103.8198, 1.3521},
			wantMeters: 0,
		},
		{
			name:             "London to Paris",
			a:                orb.Point{-0.1278, 51.5074},
			b:                orb.Point{2.3522, 48.8566},
			wantMeters:       343_500,
			tolerancePercent: 1,
		},
		{
			name:             "Short distance (~100m)",
			a:                orb.Point{103.8198, 1.3521},
			b:                orb.Point{103.8198, 1.3530},
			wantMeters:       100,
			tolerancePercent: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Distance(tt.a, tt.b)
			if tt.wantMeters == 0 {
				if got != 0 {
					t.Errorf("expected 0, got %f", got)
				}
				return
			}
			diff := math.Abs(got-tt.wantMeters) / tt.wantMeters * 100
			if diff > tt.tolerancePercent {
				t.Errorf("Distance = %f m, want ~%f m (diff %.1f%%)", got, tt.wantMeters, diff)
			}
			if back := m.Distance(tt.b, tt.a); back != got {
				t.Errorf("not symmetric: %f vs %f", got, back)
			}
		})
	}
}

func TestPlanarDistance(t *testing.T) {
	m := Planar{ref: FlatEarth}
	if d := m.Distance(orb.Point{0, 0}, orb.Point{3, 4}); d != 5 {
		t.Errorf("Distance = %f, want 5", d)
	}
	if d := m.Distance(orb.Point{-1, 4}, orb.Point{-1, 4}); d != 0 {
		t.Errorf("Distance(a, a) = %f, want 0", d)
	}
}

func TestPlanarProject(t *testing.T) {
	m := Planar{ref: FlatEarth}
	a, b := orb.Point{-5, 0}, orb.Point{5, 0}

	tests := []struct {
		name     string
		p        orb.Point
		want     orb.Point
		wantDist float64
	}{
		{name: "perpendicular above midpoint", p: orb.Point{0, 2}, want: orb.Point{0, 0}, wantDist: 2},
		{name: "perpendicular off center", p: orb.Point{4, 1}, want: orb.Point{4, 0}, wantDist: 1},
		{name: "clamped to start", p: orb.Point{-8, 4}, want: a, wantDist: 5},
		{name: "clamped to end", p: orb.Point{8, -4}, want: b, wantDist: 5},
		{name: "on the segment", p: orb.Point{1, 0}, want: orb.Point{1, 0}, wantDist: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dist := m.Project(tt.p, a, b)
			if math.Abs(got[0]-tt.want[0]) > 1e-12 || math.Abs(got[1]-tt.want[1]) > 1e-12 {
				t.Errorf("Project = %v, want %v", got, tt.want)
			}
			if math.Abs(dist-tt.wantDist) > 1e-12 {
				t.Errorf("dist = %f, want %f", dist, tt.wantDist)
			}
		})
	}
}

func TestProjectDegenerateSegment(t *testing.T) {
	m := Planar{ref: FlatEarth}
	a := orb.Point{2, 2}
	got, dist := m.Project(orb.Point{2, 5}, a, a)
	if got != a {
		t.Errorf("Project = %v, want %v", got, a)
	}
	if dist != 3 {
		t.Errorf("dist = %f, want 3", dist)
	}
}

func TestGeodeticProject(t *testing.T) {
	m := Geodetic{ref: WGS84}
	a := orb.Point{103.8200, 1.3500}
	b := orb.Point{103.8200, 1.3600}

	got, dist := m.Project(orb.Point{103.8210, 1.3550}, a, b)
	if math.Abs(got.Lat()-1.3550) > 1e-9 || math.Abs(got.Lon()-103.8200) > 1e-9 {
		t.Errorf("Project = %v, want midpoint of segment", got)
	}
	// 0.001 degrees of longitude at 1.35N is roughly 111 m.
	if dist < 100 || dist > 120 {
		t.Errorf("dist = %f m, want ~111 m", dist)
	}
}

func TestBoundDistanceIsLowerBound(t *testing.T) {
	bound := orb.Bound{Min: orb.Point{103.80, 1.30}, Max: orb.Point{103.82, 1.32}}
	corners := []orb.Point{bound.Min, bound.Max, {103.80, 1.32}, {103.82, 1.30}, {103.81, 1.31}}
	queries := []orb.Point{{103.70, 1.25}, {103.90, 1.31}, {103.81, 1.40}, {103.81, 1.31}}

	for _, m := range []Metric{Planar{ref: FlatEarth}, Geodetic{ref: WGS84}} {
		for _, q := range queries {
			lb := m.BoundDistance(q, bound)
			for _, c := range corners {
				if d := m.Distance(q, c); lb > d {
					t.Errorf("%s: BoundDistance(%v) = %f exceeds Distance to %v = %f", m.Ref(), q, lb, c, d)
				}
			}
		}
	}
}

func TestMetricFor(t *testing.T) {
	if _, err := MetricFor(SpatialRef{}); err == nil {
		t.Fatal("expected error for unset reference")
	}
	m, err := MetricFor(WGS84)
	if err != nil {
		t.Fatalf("MetricFor(WGS84): %v", err)
	}
	if _, ok := m.(Geodetic); !ok {
		t.Errorf("MetricFor(WGS84) = %T, want Geodetic", m)
	}
	m, err = MetricFor(FlatEarth)
	if err != nil {
		t.Fatalf("MetricFor(FlatEarth): %v", err)
	}
	if _, ok := m.(Planar); !ok {
		t.Errorf("MetricFor(FlatEarth) = %T, want Planar", m)
	}
}

func BenchmarkGeodeticDistance(b *testing.B) {
	m := Geodetic{ref: WGS84}
	p, q := orb.Point{103.8198, 1.3521}, orb.Point{103.8520, 1.2905}
	for b.Loop() {
		m.Distance(p, q)
	}
}

func BenchmarkPlanarProject(b *testing.B) {
	m := Planar{ref: FlatEarth}
	p, s, e := orb.Point{1, 2}, orb.Point{-5, 0}, orb.Point{5, 0}
	for b.Loop() {
		m.Project(p, s, e)
	}
}
