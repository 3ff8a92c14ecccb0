package geospatial

import (
	"github.com/tidwall/rtree"
	"github.com/twpayne/go-geom"
)

// LineSet is a set of candidate lines behind an R-tree over their bounding
// boxes. Empty geometries are dropped at construction and never produce
// matches.
type LineSet struct {
	lines []*geom.LineString
	tree  rtree.RTreeG[int]
}

// NewLineSet indexes the given lines. The slice index doubles as the
// candidate id reported in matches.
func NewLineSet(lines []*geom.LineString) *LineSet {
	s := &LineSet{lines: lines}
	for i, ls := range lines {
		if ls == nil || ls.NumCoords() == 0 {
			continue
		}
		b := ls.Bounds()
		s.tree.Insert(
			[2]float64{b.Min(0), b.Min(1)},
			[2]float64{b.Max(0), b.Max(1)},
			i,
		)
	}
	return s
}

// Len reports the number of indexed (non-empty) lines.
func (s *LineSet) Len() int {
	return s.tree.Len()
}

// Line returns the candidate line for an index previously reported by a
// match or search.
func (s *LineSet) Line(i int) *geom.LineString {
	return s.lines[i]
}

// searchBox streams candidate indices whose bounding boxes intersect the box.
func (s *LineSet) searchBox(min, max [2]float64, fn func(i int) bool) {
	s.tree.Search(min, max, func(_, _ [2]float64, i int) bool {
		return fn(i)
	})
}

// nearby streams candidate indices in order of increasing point-to-box
// distance, passing that lower-bound distance along.
func (s *LineSet) nearby(pt geom.Coord, fn func(i int, lowerBound float64) bool) {
	q := [2]float64{pt[0], pt[1]}
	s.tree.Nearby(
		func(min, max [2]float64, _ int, _ bool) float64 {
			return boxDist(q, min, max)
		},
		func(_, _ [2]float64, i int, d float64) bool {
			return fn(i, d)
		},
	)
}
