package geospatial

import (
	"math"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
)

// Match is a nearest-candidate result: the candidate's index in its LineSet
// and the exact metric distance to the query.
type Match struct {
	Index    int
	Distance float64
}

// Joiner finds the minimum-distance candidate line for a query point.
// Nearest reports ok=false when the set is empty or the nearest candidate
// lies beyond threshold; implementations must agree on every accept/reject
// decision for the same inputs, differing only in how they traverse the
// index.
type Joiner interface {
	Nearest(set *LineSet, pt geom.Coord, threshold float64) (Match, bool)
}

// BulkJoiner walks the index in increasing point-to-box distance, refining
// each candidate with an exact distance and cutting off as soon as the box
// lower bound exceeds the best exact distance seen. This is the primary
// strategy.
type BulkJoiner struct{}

// Nearest implements Joiner.
func (BulkJoiner) Nearest(set *LineSet, pt geom.Coord, threshold float64) (Match, bool) {
	best := Match{Index: -1, Distance: math.Inf(1)}
	set.nearby(pt, func(i int, lowerBound float64) bool {
		if lowerBound > best.Distance {
			return false
		}
		d := PointToLineDistance(pt, set.Line(i))
		if d < best.Distance {
			best = Match{Index: i, Distance: d}
		}
		return true
	})
	if best.Index < 0 || best.Distance > threshold {
		return best, false
	}
	return best, true
}

// ProbeJoiner is the fallback strategy: a bounding-box search of
// threshold radius around the query, refined by exact distances, expanding
// the box outward when no candidate's box is nearby. Any candidate within
// the threshold is guaranteed to appear in the first probe, so accept/reject
// decisions match BulkJoiner exactly.
type ProbeJoiner struct {
	// MaxExpansions bounds the outward doubling when the first probe comes
	// back empty. Zero means the default of 8.
	MaxExpansions int
}

// Nearest implements Joiner.
func (p ProbeJoiner) Nearest(set *LineSet, pt geom.Coord, threshold float64) (Match, bool) {
	expansions := p.MaxExpansions
	if expansions <= 0 {
		expansions = 8
	}

	r := threshold
	for n := 0; n <= expansions; n++ {
		best := Match{Index: -1, Distance: math.Inf(1)}
		set.searchBox(
			[2]float64{pt[0] - r, pt[1] - r},
			[2]float64{pt[0] + r, pt[1] + r},
			func(i int) bool {
				d := PointToLineDistance(pt, set.Line(i))
				if d < best.Distance {
					best = Match{Index: i, Distance: d}
				}
				return true
			},
		)
		if best.Index >= 0 {
			return best, best.Distance <= threshold
		}
		r *= 2
	}
	return Match{Index: -1, Distance: math.Inf(1)}, false
}

// NewJoiner selects a strategy by name, defaulting to bulk.
func NewJoiner(strategy string) Joiner {
	if strategy == "probe" {
		return ProbeJoiner{}
	}
	return BulkJoiner{}
}

// AttributedLine is a candidate line carrying the attribute value a join
// attaches, e.g. a posted speed limit.
type AttributedLine struct {
	Geom  *geom.LineString
	Value float64
}

// AttachSpeedLimits resolves each edge's speed limit from the nearest
// speed-limit line within threshold of the edge's midpoint. Edges with no
// accepted match keep a nil SpeedLimit. Returns the number of matched edges.
func AttachSpeedLimits(edges []*model.Edge, limits []AttributedLine, j Joiner, threshold float64) int {
	lines := make([]*geom.LineString, len(limits))
	for i, l := range limits {
		lines[i] = l.Geom
	}
	set := NewLineSet(lines)

	var matched int
	for _, e := range edges {
		m, ok := j.Nearest(set, Midpoint(e.Geom), threshold)
		if !ok {
			continue
		}
		v := limits[m.Index].Value
		e.SpeedLimit = &v
		matched++
	}

	zap.L().Debug("geospatial: speed limits attached",
		zap.Int("edges", len(edges)),
		zap.Int("matched", matched),
	)
	return matched
}

// SnappedCrash is a crash record matched to its nearest edge.
type SnappedCrash struct {
	Crash     model.Crash
	EdgeID    int
	ClusterID string
}

// SnapCrashes matches each crash point to the nearest edge within threshold,
// recording the edge id and its cluster. Crashes with no accepted match are
// dropped; they cannot contribute to any (cluster, bin) aggregate.
func SnapCrashes(crashes []model.Crash, edges []*model.Edge, proj *Projector, j Joiner, threshold float64) []SnappedCrash {
	lines := make([]*geom.LineString, len(edges))
	for i, e := range edges {
		lines[i] = e.Geom
	}
	set := NewLineSet(lines)

	var snapped []SnappedCrash
	for _, c := range crashes {
		x, y := proj.ToMetric(c.Lon, c.Lat)
		m, ok := j.Nearest(set, geom.Coord{x, y}, threshold)
		if !ok {
			continue
		}
		e := edges[m.Index]
		snapped = append(snapped, SnappedCrash{Crash: c, EdgeID: e.ID, ClusterID: e.ClusterID})
	}

	zap.L().Debug("geospatial: crashes snapped",
		zap.Int("crashes", len(crashes)),
		zap.Int("snapped", len(snapped)),
	)
	return snapped
}
