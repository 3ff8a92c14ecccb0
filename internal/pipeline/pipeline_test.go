package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridline-labs/roadrisk-cli/internal/config"
	"github.com/gridline-labs/roadrisk-cli/internal/supertable"
)

func writeTempCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	edges := strings.Join([]string{
		`coordinates,rw_type`,
		`"LINESTRING (-74.0 40.7, -73.999 40.7)",1`,
		`"LINESTRING (-73.995 40.705, -73.994 40.705)",3`,
	}, "\n")

	// One limit line on top of the first edge; the second edge is far
	// enough (>60 m) that the join leaves it to the synthetic fallback.
	limits := strings.Join([]string{
		`coordinates,speedlimit`,
		`"LINESTRING (-74.0 40.7, -73.999 40.7)",25`,
	}, "\n")

	crashes := strings.Join([]string{
		"time,LATITUDE,LONGITUDE," +
			"NUMBER OF PERSONS INJURED,NUMBER OF PERSONS KILLED," +
			"NUMBER OF PEDESTRIANS INJURED,NUMBER OF PEDESTRIANS KILLED," +
			"NUMBER OF CYCLIST INJURED,NUMBER OF CYCLIST KILLED," +
			"NUMBER OF MOTORIST INJURED,NUMBER OF MOTORIST KILLED",
		"2016/01/04 08,40.7,-73.9995,1,0,0,0,0,0,0,0",
	}, "\n")

	var weather strings.Builder
	weather.WriteString("time,temperature,precipitation,rain,cloudcover,windspeed\n")
	for h := 0; h < 24; h++ {
		fmt.Fprintf(&weather, "2016/01/04 %02d,%d,0.1,0,50,%d\n", h, h-5, h)
	}

	return &config.Config{
		Inputs: config.InputsConfig{
			EdgesCSV:      writeTempCSV(t, dir, "edges.csv", edges),
			SpeedLimitCSV: writeTempCSV(t, dir, "speedlimit.csv", limits),
			CrashesCSV:    writeTempCSV(t, dir, "crashes.csv", crashes),
			WeatherCSV:    writeTempCSV(t, dir, "weather.csv", weather.String()),
		},
		Projection: config.ProjectionConfig{UTMZone: 18, Northern: true},
		Join:       config.JoinConfig{SnapThreshold: 60, Strategy: "bulk"},
		Hex:        config.HexConfig{Resolution: 9},
		TimeGrid: config.TimeGridConfig{
			Start:    "2016-01-04 00:00:00",
			End:      "2016-01-04 23:59:59",
			BinHours: 4,
		},
		Traffic: config.TrafficConfig{RoadTypeWeight: 0.45, TimeWeight: 0.35, SpeedWeight: 0.15},
		Speed:   config.SpeedConfig{FallbackSeed: 42, FallbackMin: 15, FallbackMax: 30},
		Nodes:   config.NodesConfig{Tolerance: 5},
		Reduce:  config.ReduceConfig{KeepThreshold: 0.5, ChunkSize: 1000, Workers: 2},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := testConfig(t)

	res, err := Run(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)
	require.Len(t, res.Edges, 2)

	// First edge joined, second filled synthetically.
	require.NotNil(t, res.Edges[0].SpeedLimit)
	assert.Equal(t, 25.0, *res.Edges[0].SpeedLimit)
	require.NotNil(t, res.Edges[1].SpeedLimit)
	assert.GreaterOrEqual(t, *res.Edges[1].SpeedLimit, 15.0)
	assert.LessOrEqual(t, *res.Edges[1].SpeedLimit, 30.0)

	// Every edge got a cluster; 24h at 4h spacing is 6 bins.
	for _, e := range res.Edges {
		assert.NotEmpty(t, e.ClusterID)
	}
	require.NotEmpty(t, res.Clusters)
	require.Len(t, res.Bins, 6)

	// Full cross product, rows grouped by bin.
	require.Len(t, res.Rows, len(res.Clusters)*len(res.Bins))
	for i := 1; i < len(res.Rows); i++ {
		assert.False(t, res.Rows[i].Bin.Before(res.Rows[i-1].Bin))
	}

	// The crash at 08:00 on the first edge labels exactly its (cluster, bin).
	crashBin := time.Date(2016, 1, 4, 8, 0, 0, 0, time.UTC)
	crashCluster := res.Edges[0].ClusterID
	var positives int
	for _, row := range res.Rows {
		assert.GreaterOrEqual(t, row.TrafficVolume, 0.0)
		assert.LessOrEqual(t, row.TrafficVolume, 1.0)
		for _, v := range row.Weather {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
		if row.Label == 1 {
			positives++
			assert.Equal(t, crashBin, row.Bin)
			assert.Equal(t, crashCluster, row.ClusterID)
		}
	}
	assert.Equal(t, 1, positives)
}

func TestRun_ReduceKeepsAllPositives(t *testing.T) {
	cfg := testConfig(t)

	res, err := Run(cfg)
	require.NoError(t, err)

	kept, counters, err := supertable.Reduce(context.Background(), res.Rows, supertable.ReduceOptions{
		KeepThreshold: cfg.Reduce.KeepThreshold,
		ChunkSize:     cfg.Reduce.ChunkSize,
		Workers:       cfg.Reduce.Workers,
	})
	require.NoError(t, err)
	assert.Equal(t, len(res.Rows), counters.In)
	assert.Equal(t, len(kept), counters.Out)

	var positives int
	for _, row := range kept {
		if row.Label == 1 {
			positives++
		}
	}
	assert.Equal(t, 1, positives)
}

func TestRun_MissingInputFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Inputs.CrashesCSV = filepath.Join(t.TempDir(), "absent.csv")

	_, err := Run(cfg)
	assert.Error(t, err)
}
