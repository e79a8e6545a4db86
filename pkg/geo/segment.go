package geo

import "github.com/paulmach/orb"

// projectSegment finds the point of AB closest to P. The x axis is scaled by
// xScale before projecting (1 for planar, cos(lat) for equirectangular).
// ratio is the position along AB, clamped to [0,1].
func projectSegment(p, a, b orb.Point, xScale float64) (q orb.Point, ratio float64) {
	// Degenerate segment: compare in original coordinates, scaled values can
	// differ by float noise for identical points.
	if a == b {
		return a, 0
	}

	ax, ay := a[0]*xScale, a[1]
	bx, by := b[0]*xScale, b[1]
	px, py := p[0]*xScale, p[1]

	dx := bx - ax
	dy := by - ay
	lenSq := dx*dx + dy*dy

	var t float64
	if lenSq > 0 {
		t = ((px-ax)*dx + (py-ay)*dy) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}

	switch t {
	case 0:
		return a, 0
	case 1:
		return b, 1
	}
	return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}, t
}
