package geospatial

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	h3 "github.com/uber/h3-go/v4"
	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
	"github.com/gridline-labs/roadrisk-cli/internal/stats"
)

// Neutral defaults used when a cluster's member inputs carry no signal.
const (
	neutralRoadScore  = 0.6
	neutralSpeedScore = 0.5
)

// CellIndex is the geo-cell capability pair: map a geographic point to a
// cell id at a resolution, and a cell id back to its center. Backends with
// different primitive names hide behind this; the concrete backend is chosen
// once at startup.
type CellIndex interface {
	CellFromLatLon(lat, lon float64, res int) (string, error)
	LatLonFromCell(cell string) (lat, lon float64, err error)
}

type h3CellIndex struct{}

// NewH3CellIndex returns the H3-backed CellIndex.
func NewH3CellIndex() CellIndex {
	return h3CellIndex{}
}

func (h3CellIndex) CellFromLatLon(lat, lon float64, res int) (string, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lon), res)
	if err != nil {
		return "", eris.Wrapf(err, "hexgrid: cell for lat=%v lon=%v res=%d", lat, lon, res)
	}
	return cell.String(), nil
}

func (h3CellIndex) LatLonFromCell(id string) (float64, float64, error) {
	cell := h3.Cell(h3.IndexFromString(id))
	if !cell.IsValid() {
		return 0, 0, eris.Errorf("hexgrid: invalid cell id %q", id)
	}
	ll, err := h3.CellToLatLng(cell)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "hexgrid: center of cell %q", id)
	}
	return ll.Lat, ll.Lng, nil
}

// AssignClusters sets every edge's cluster id from the hex cell containing
// the edge's geographic midpoint.
func AssignClusters(edges []*model.Edge, proj *Projector, cells CellIndex, res int) error {
	for _, e := range edges {
		mid := Midpoint(e.Geom)
		lon, lat := proj.ToGeographic(mid[0], mid[1])
		id, err := cells.CellFromLatLon(lat, lon, res)
		if err != nil {
			return eris.Wrapf(err, "hexgrid: assign cluster for edge %d", e.ID)
		}
		e.ClusterID = id
	}
	return nil
}

// BuildClusterStats aggregates per-cell statistics over the member edges and
// encodes each cell center as sin/cos of lat/lon in radians. Clusters are
// returned sorted by id for deterministic downstream iteration.
func BuildClusterStats(edges []*model.Edge, cells CellIndex) ([]*model.ClusterStats, error) {
	type agg struct {
		roadScores  []float64
		speedScores []float64
	}
	byCell := make(map[string]*agg)
	for _, e := range edges {
		a := byCell[e.ClusterID]
		if a == nil {
			a = &agg{}
			byCell[e.ClusterID] = a
		}
		a.roadScores = append(a.roadScores, e.RoadTypeScore())
		a.speedScores = append(a.speedScores, e.SpeedScore)
	}

	ids := make([]string, 0, len(byCell))
	for id := range byCell {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	clusters := make([]*model.ClusterStats, 0, len(ids))
	for _, id := range ids {
		a := byCell[id]
		lat, lon, err := cells.LatLonFromCell(id)
		if err != nil {
			return nil, err
		}
		latRad, lonRad := lat*math.Pi/180, lon*math.Pi/180
		clusters = append(clusters, &model.ClusterStats{
			ID:             id,
			EdgeCount:      len(a.roadScores),
			MeanRoadScore:  stats.Mean(a.roadScores, neutralRoadScore),
			MeanSpeedScore: stats.Mean(a.speedScores, neutralSpeedScore),
			LatSin:         math.Sin(latRad),
			LatCos:         math.Cos(latRad),
			LonSin:         math.Sin(lonRad),
			LonCos:         math.Cos(lonRad),
		})
	}

	zap.L().Info("hexgrid: clusters built",
		zap.Int("edges", len(edges)),
		zap.Int("clusters", len(clusters)),
	)
	return clusters, nil
}
