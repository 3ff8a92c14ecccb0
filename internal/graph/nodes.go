// Package graph derives the topological node set of the road network from
// edge geometries: endpoints plus true interior intersections, merged by
// grid-quantization snapping.
package graph

import (
	"math"
	"sort"

	"github.com/tidwall/rtree"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy/lineintersector"
	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
)

// EdgeLine is the slice of an edge the node builder needs: identity,
// metric-frame geometry, and the grade key that suppresses nodes at
// grade-separated crossings.
type EdgeLine struct {
	ID       int
	Geom     *geom.LineString
	GradeKey string
}

// Options configures node extraction.
type Options struct {
	// Tolerance is the grid-quantization merge distance: candidate points
	// whose coordinates land in the same tolerance-sized bucket become one
	// node. Zero means the default of 5 metric units.
	Tolerance float64
}

type candidate struct {
	x, y  float64
	edges []int
}

// BuildNodes computes the deduplicated node table for an edge set. Ids are
// sequential from 1 in sorted bucket order, so reruns over the same input
// produce identical output. Empty or zero-edge inputs yield an empty table.
func BuildNodes(edges []EdgeLine, opts Options) []model.Node {
	tol := opts.Tolerance
	if tol <= 0 {
		tol = 5.0
	}

	var cands []candidate

	// Endpoints first, so dead-end nodes with a single incident edge are
	// preserved even when nothing crosses them.
	for _, e := range edges {
		if e.Geom == nil || e.Geom.NumCoords() == 0 {
			continue
		}
		first := e.Geom.Coord(0)
		last := e.Geom.Coord(e.Geom.NumCoords() - 1)
		cands = append(cands,
			candidate{x: first[0], y: first[1], edges: []int{e.ID}},
			candidate{x: last[0], y: last[1], edges: []int{e.ID}},
		)
	}

	cands = append(cands, intersectionCandidates(edges)...)

	nodes := mergeByQuantization(cands, tol)

	zap.L().Info("graph: nodes built",
		zap.Int("edges", len(edges)),
		zap.Int("candidates", len(cands)),
		zap.Int("nodes", len(nodes)),
	)
	return nodes
}

// intersectionCandidates finds every interior intersection point between
// pairs of edges. The index prunes pairs to those with overlapping bounding
// boxes; pairs with differing grade keys are skipped entirely, since an
// over/underpass crossing does not connect the network.
func intersectionCandidates(edges []EdgeLine) []candidate {
	var tr rtree.RTreeG[int]
	for i, e := range edges {
		if e.Geom == nil || e.Geom.NumCoords() == 0 {
			continue
		}
		b := e.Geom.Bounds()
		tr.Insert(
			[2]float64{b.Min(0), b.Min(1)},
			[2]float64{b.Max(0), b.Max(1)},
			i,
		)
	}

	var cands []candidate
	for i, ei := range edges {
		if ei.Geom == nil || ei.Geom.NumCoords() == 0 {
			continue
		}
		b := ei.Geom.Bounds()
		tr.Search(
			[2]float64{b.Min(0), b.Min(1)},
			[2]float64{b.Max(0), b.Max(1)},
			func(_, _ [2]float64, j int) bool {
				if j <= i {
					return true // each unordered pair once
				}
				ej := edges[j]
				if ei.GradeKey != ej.GradeKey {
					return true
				}
				for _, pt := range lineIntersections(ei.Geom, ej.Geom) {
					cands = append(cands, candidate{x: pt[0], y: pt[1], edges: []int{ei.ID, ej.ID}})
				}
				return true
			},
		)
	}
	return cands
}

// lineIntersections returns every intersection point between two lines,
// testing each segment pair exactly. A proper crossing or touch yields one
// point; a collinear overlap yields the overlap segment's endpoints.
func lineIntersections(a, b *geom.LineString) []geom.Coord {
	var pts []geom.Coord
	strategy := lineintersector.RobustLineIntersector{}

	for i := 0; i < a.NumCoords()-1; i++ {
		a0, a1 := a.Coord(i), a.Coord(i+1)
		for j := 0; j < b.NumCoords()-1; j++ {
			b0, b1 := b.Coord(j), b.Coord(j+1)
			if !segmentBoxesOverlap(a0, a1, b0, b1) {
				continue
			}
			result := lineintersector.LineIntersectsLine(strategy, a0, a1, b0, b1)
			if !result.HasIntersection() {
				continue
			}
			pts = append(pts, result.Intersection()...)
		}
	}
	return pts
}

func segmentBoxesOverlap(a0, a1, b0, b1 geom.Coord) bool {
	return math.Min(a0[0], a1[0]) <= math.Max(b0[0], b1[0]) &&
		math.Min(b0[0], b1[0]) <= math.Max(a0[0], a1[0]) &&
		math.Min(a0[1], a1[1]) <= math.Max(b0[1], b1[1]) &&
		math.Min(b0[1], b1[1]) <= math.Max(a0[1], a1[1])
}

type bucketKey struct {
	qx, qy int64
}

type bucket struct {
	sumX, sumY float64
	n          int
	edges      map[int]struct{}
}

// mergeByQuantization buckets candidates by round(coord/tol) and collapses
// each bucket into one node at the mean of its raw points with the union of
// incident edges.
func mergeByQuantization(cands []candidate, tol float64) []model.Node {
	if len(cands) == 0 {
		return []model.Node{}
	}

	buckets := make(map[bucketKey]*bucket)
	for _, c := range cands {
		key := bucketKey{
			qx: int64(math.Round(c.x / tol)),
			qy: int64(math.Round(c.y / tol)),
		}
		bk := buckets[key]
		if bk == nil {
			bk = &bucket{edges: make(map[int]struct{})}
			buckets[key] = bk
		}
		bk.sumX += c.x
		bk.sumY += c.y
		bk.n++
		for _, e := range c.edges {
			bk.edges[e] = struct{}{}
		}
	}

	keys := make([]bucketKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].qx != keys[j].qx {
			return keys[i].qx < keys[j].qx
		}
		return keys[i].qy < keys[j].qy
	})

	nodes := make([]model.Node, 0, len(keys))
	for i, k := range keys {
		bk := buckets[k]
		incident := make([]int, 0, len(bk.edges))
		for e := range bk.edges {
			incident = append(incident, e)
		}
		sort.Ints(incident)
		nodes = append(nodes, model.Node{
			ID:    i + 1,
			X:     bk.sumX / float64(bk.n),
			Y:     bk.sumY / float64(bk.n),
			Edges: incident,
		})
	}
	return nodes
}
