package geospatial

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Endpoints returns the first and last coordinate of a line. A nil or
// zero-coordinate line yields the origin for both.
func Endpoints(ls *geom.LineString) (start, end geom.Coord) {
	if ls == nil || ls.NumCoords() == 0 {
		return geom.Coord{0, 0}, geom.Coord{0, 0}
	}
	return ls.Coord(0), ls.Coord(ls.NumCoords() - 1)
}

// Midpoint returns the point halfway along the line by arc length, matching
// normalized interpolation at 0.5. A zero-length line yields its first
// coordinate. go-geom has no linear-referencing primitive, so this walks the
// cumulative segment lengths directly.
func Midpoint(ls *geom.LineString) geom.Coord {
	if ls == nil || ls.NumCoords() == 0 {
		return geom.Coord{0, 0}
	}
	n := ls.NumCoords()
	if n == 1 {
		return ls.Coord(0)
	}

	total := ls.Length()
	if total == 0 {
		return ls.Coord(0)
	}

	target := total / 2
	var walked float64
	for i := 0; i < n-1; i++ {
		a, b := ls.Coord(i), ls.Coord(i+1)
		seg := math.Hypot(b[0]-a[0], b[1]-a[1])
		if walked+seg >= target {
			t := (target - walked) / seg
			return geom.Coord{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
		}
		walked += seg
	}
	return ls.Coord(n - 1)
}

// PointToLineDistance returns the minimum Euclidean distance from pt to any
// segment of ls.
func PointToLineDistance(pt geom.Coord, ls *geom.LineString) float64 {
	n := ls.NumCoords()
	if n == 0 {
		return math.Inf(1)
	}
	if n == 1 {
		c := ls.Coord(0)
		return math.Hypot(pt[0]-c[0], pt[1]-c[1])
	}

	best := math.Inf(1)
	for i := 0; i < n-1; i++ {
		d := xy.DistanceFromPointToLine(pt, ls.Coord(i), ls.Coord(i+1))
		if d < best {
			best = d
		}
	}
	return best
}

// boxDist is the Euclidean distance from a point to an axis-aligned box;
// zero when the point is inside. It lower-bounds the exact distance to any
// geometry contained in the box, which is what makes distance-ordered index
// traversal correct.
func boxDist(pt [2]float64, min, max [2]float64) float64 {
	var dx, dy float64
	if pt[0] < min[0] {
		dx = min[0] - pt[0]
	} else if pt[0] > max[0] {
		dx = pt[0] - max[0]
	}
	if pt[1] < min[1] {
		dy = min[1] - pt[1]
	} else if pt[1] > max[1] {
		dy = pt[1] - max[1]
	}
	return math.Hypot(dx, dy)
}
