package supertable

import (
	"time"

	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
	"github.com/gridline-labs/roadrisk-cli/internal/timegrid"
	"github.com/gridline-labs/roadrisk-cli/internal/weather"
)

// Assemble builds the full cluster x bin cross product and left-joins the
// weather grid, traffic volume, and crash labels. Exactly one row per
// (cluster, bin); cells with no crash signal get label 0. Rows come out
// sorted by bin first (the table's index), then cluster id.
func Assemble(
	clusters []*model.ClusterStats,
	bins []time.Time,
	wgrid *weather.Grid,
	labels map[CellKey]int,
	w Weights,
) []model.SuperRow {
	scores := timegrid.Scores(bins)

	rows := make([]model.SuperRow, 0, len(clusters)*len(bins))
	for i, bin := range bins {
		wx := wgrid.At(i)
		for _, c := range clusters {
			row := model.SuperRow{
				Bin:           bin,
				ClusterID:     c.ID,
				LatSin:        c.LatSin,
				LatCos:        c.LatCos,
				LonSin:        c.LonSin,
				LonCos:        c.LonCos,
				Weather:       wx,
				TrafficVolume: TrafficVolume(w, c.MeanRoadScore, scores[i], c.MeanSpeedScore),
				Label:         labels[CellKey{ClusterID: c.ID, Bin: bin}],
			}
			rows = append(rows, row)
		}
	}

	zap.L().Info("supertable: assembled",
		zap.Int("clusters", len(clusters)),
		zap.Int("bins", len(bins)),
		zap.Int("rows", len(rows)),
	)
	return rows
}
