// Package pipeline orchestrates the full supertable build: ingest,
// reprojection, nearest joins, hex clustering, temporal grids, and assembly,
// plus the edge and node table artifacts.
package pipeline

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/config"
	"github.com/gridline-labs/roadrisk-cli/internal/geospatial"
	"github.com/gridline-labs/roadrisk-cli/internal/ingest"
	"github.com/gridline-labs/roadrisk-cli/internal/model"
	"github.com/gridline-labs/roadrisk-cli/internal/supertable"
	"github.com/gridline-labs/roadrisk-cli/internal/timegrid"
	"github.com/gridline-labs/roadrisk-cli/internal/weather"
)

// Result carries everything a build produces, ready for persistence or for
// the downstream table builders.
type Result struct {
	RunID    string
	Edges    []*model.Edge
	Clusters []*model.ClusterStats
	Bins     []time.Time
	Rows     []model.SuperRow
}

// LoadEdges reads road edges from the configured source; a shapefile path,
// when set, takes precedence over the WKT CSV.
func LoadEdges(in config.InputsConfig) ([]ingest.RoadEdgeRecord, error) {
	if in.EdgesSHP != "" {
		return ingest.ReadRoadShapefile(in.EdgesSHP)
	}
	f, err := os.Open(in.EdgesCSV)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: open edges %s", in.EdgesCSV)
	}
	defer func() { _ = f.Close() }()
	return ingest.ReadRoadEdges(f)
}

func loadSpeedLimits(path string) ([]ingest.SpeedLimitRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: open speed limits %s", path)
	}
	defer func() { _ = f.Close() }()
	return ingest.ReadSpeedLimits(f)
}

func loadCrashes(path string, start, end time.Time) ([]model.Crash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: open crashes %s", path)
	}
	defer func() { _ = f.Close() }()
	return ingest.ReadCrashes(f, start, end)
}

func loadWeather(path string) ([]model.WeatherObs, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: open weather %s", path)
	}
	defer func() { _ = f.Close() }()
	return ingest.ReadWeather(f)
}

// Run executes the supertable build end to end.
func Run(cfg *config.Config) (*Result, error) {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))
	started := time.Now()

	start, end, err := cfg.TimeGrid.ParseRange()
	if err != nil {
		return nil, err
	}
	width := cfg.TimeGrid.BinWidth()

	records, err := LoadEdges(cfg.Inputs)
	if err != nil {
		return nil, err
	}
	limits, err := loadSpeedLimits(cfg.Inputs.SpeedLimitCSV)
	if err != nil {
		return nil, err
	}
	crashes, err := loadCrashes(cfg.Inputs.CrashesCSV, start, end)
	if err != nil {
		return nil, err
	}
	obs, err := loadWeather(cfg.Inputs.WeatherCSV)
	if err != nil {
		return nil, err
	}

	proj, err := geospatial.NewProjector(cfg.Projection.UTMZone, cfg.Projection.Northern)
	if err != nil {
		return nil, err
	}
	edges := BuildEdges(records, proj)

	limitLines := make([]geospatial.AttributedLine, len(limits))
	for i, l := range limits {
		limitLines[i] = geospatial.AttributedLine{Geom: proj.LineToMetric(l.Geom), Value: l.SpeedLimit}
	}

	joiner := geospatial.NewJoiner(cfg.Join.Strategy)
	matched := geospatial.AttachSpeedLimits(edges, limitLines, joiner, cfg.Join.SnapThreshold)
	log.Info("pipeline: speed limits joined",
		zap.Int("edges", len(edges)),
		zap.Int("matched", matched),
	)

	FillSpeedFallback(edges, cfg.Speed.FallbackSeed, cfg.Speed.FallbackMin, cfg.Speed.FallbackMax)
	ComputeSpeedScores(edges)

	cells := geospatial.NewH3CellIndex()
	if err := geospatial.AssignClusters(edges, proj, cells, cfg.Hex.Resolution); err != nil {
		return nil, err
	}
	clusters, err := geospatial.BuildClusterStats(edges, cells)
	if err != nil {
		return nil, err
	}

	bins := timegrid.Build(start, end, width)
	wgrid := weather.Resample(obs, bins, width)

	snapped := geospatial.SnapCrashes(crashes, edges, proj, joiner, cfg.Join.SnapThreshold)
	labels := supertable.AggregateCrashes(snapped, clusters, start, width, len(bins))

	weights := supertable.Weights{
		RoadType: cfg.Traffic.RoadTypeWeight,
		Time:     cfg.Traffic.TimeWeight,
		Speed:    cfg.Traffic.SpeedWeight,
	}
	rows := supertable.Assemble(clusters, bins, wgrid, labels, weights)

	log.Info("pipeline: build complete",
		zap.Int("edges", len(edges)),
		zap.Int("clusters", len(clusters)),
		zap.Int("bins", len(bins)),
		zap.Int("crashes_snapped", len(snapped)),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &Result{
		RunID:    runID,
		Edges:    edges,
		Clusters: clusters,
		Bins:     bins,
		Rows:     rows,
	}, nil
}
