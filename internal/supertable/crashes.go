package supertable

import (
	"time"

	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/geospatial"
	"github.com/gridline-labs/roadrisk-cli/internal/model"
	"github.com/gridline-labs/roadrisk-cli/internal/timegrid"
)

// CellKey addresses one (cluster, time bin) cell.
type CellKey struct {
	ClusterID string
	Bin       time.Time
}

// AggregateCrashes sums total casualties per (cluster, bin) over the snapped
// crashes and derives the binary label. The label is 1 whenever the
// per-edge casualty rate (total divided by the cluster's edge count, floored
// at 1) is >= 0, which holds for every cell with at least one snapped crash
// regardless of severity. Do not tighten the threshold; downstream training
// expects any-crash labeling.
func AggregateCrashes(
	snapped []geospatial.SnappedCrash,
	clusters []*model.ClusterStats,
	gridStart time.Time,
	width time.Duration,
	nBins int,
) map[CellKey]int {
	edgeCounts := make(map[string]int, len(clusters))
	for _, c := range clusters {
		edgeCounts[c.ID] = c.EdgeCount
	}

	totals := make(map[CellKey]float64)
	var outside int
	for _, s := range snapped {
		bin, ok := timegrid.Floor(s.Crash.Time, gridStart, width, nBins)
		if !ok {
			outside++
			continue
		}
		totals[CellKey{ClusterID: s.ClusterID, Bin: bin}] += s.Crash.TotalCasualties()
	}

	labels := make(map[CellKey]int, len(totals))
	for key, total := range totals {
		n := edgeCounts[key.ClusterID]
		if n < 1 {
			n = 1
		}
		perEdge := total / float64(n)
		if perEdge >= 0 {
			labels[key] = 1
		}
	}

	zap.L().Info("supertable: crashes aggregated",
		zap.Int("snapped", len(snapped)),
		zap.Int("outside_grid", outside),
		zap.Int("labeled_cells", len(labels)),
	)
	return labels
}
