package pipeline

import (
	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/geospatial"
	"github.com/gridline-labs/roadrisk-cli/internal/graph"
	"github.com/gridline-labs/roadrisk-cli/internal/ingest"
	"github.com/gridline-labs/roadrisk-cli/internal/model"
	"github.com/gridline-labs/roadrisk-cli/internal/supertable"
)

// BuildEdges turns ingested geographic records into metric-frame edges with
// stable 0-based ids in input order.
func BuildEdges(records []ingest.RoadEdgeRecord, proj *geospatial.Projector) []*model.Edge {
	edges := make([]*model.Edge, len(records))
	for i, r := range records {
		edges[i] = &model.Edge{
			ID:       i,
			Geom:     proj.LineToMetric(r.Geom),
			RoadType: r.RoadType,
			GradeKey: r.GradeKey,
		}
	}
	return edges
}

// BuildEdgeTable produces the per-edge output artifact: geographic endpoint
// and midpoint coordinates, metric length, the edge's cluster features, and
// a per-edge traffic volume at the peak time score of 1.0. RiskScore is left
// nil; scoring happens outside this pipeline.
func BuildEdgeTable(
	edges []*model.Edge,
	clusters []*model.ClusterStats,
	proj *geospatial.Projector,
	w supertable.Weights,
) []model.EdgeTableRow {
	byID := make(map[string]*model.ClusterStats, len(clusters))
	for _, c := range clusters {
		byID[c.ID] = c
	}

	rows := make([]model.EdgeTableRow, 0, len(edges))
	for _, e := range edges {
		start, end := geospatial.Endpoints(e.Geom)
		mid := geospatial.Midpoint(e.Geom)

		row := model.EdgeTableRow{
			EdgeID:        e.ID,
			LengthM:       e.Geom.Length(),
			ClusterID:     e.ClusterID,
			RoadType:      e.RoadType,
			SpeedLimit:    e.SpeedLimit,
			TrafficVolume: supertable.TrafficVolume(w, e.RoadTypeScore(), 1.0, e.SpeedScore),
		}
		row.StartLon, row.StartLat = proj.ToGeographic(start[0], start[1])
		row.EndLon, row.EndLat = proj.ToGeographic(end[0], end[1])
		row.MidLon, row.MidLat = proj.ToGeographic(mid[0], mid[1])

		if c := byID[e.ClusterID]; c != nil {
			row.LatSin, row.LatCos = c.LatSin, c.LatCos
			row.LonSin, row.LonCos = c.LonSin, c.LonCos
		}

		rows = append(rows, row)
	}

	zap.L().Info("pipeline: edge table built", zap.Int("rows", len(rows)))
	return rows
}

// BuildNodeTable derives the deduplicated intersection-node table from the
// metric edge geometries. Node detection and merging run in the metric frame;
// each merged centroid is then reprojected so the output carries geographic
// coordinates alongside the metric ones, matching the edge table's frame.
func BuildNodeTable(edges []*model.Edge, proj *geospatial.Projector, tolerance float64) []model.Node {
	lines := make([]graph.EdgeLine, len(edges))
	for i, e := range edges {
		lines[i] = graph.EdgeLine{ID: e.ID, Geom: e.Geom, GradeKey: e.GradeKey}
	}
	nodes := graph.BuildNodes(lines, graph.Options{Tolerance: tolerance})
	for i := range nodes {
		nodes[i].Lon, nodes[i].Lat = proj.ToGeographic(nodes[i].X, nodes[i].Y)
	}
	return nodes
}
