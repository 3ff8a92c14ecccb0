package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
)

func TestWriteSuperCSV(t *testing.T) {
	rows := []model.SuperRow{
		{
			Bin:       time.Date(2016, 1, 4, 8, 0, 0, 0, time.UTC),
			ClusterID: "cell-a",
			LatSin:    0.5, LatCos: 0.25, LonSin: -0.5, LonCos: 0.75,
			Weather:       [5]float64{0.1, 0.2, 0.3, 0.4, 0.5},
			TrafficVolume: 0.9,
			Label:         1,
		},
	}

	var b strings.Builder
	require.NoError(t, WriteSuperCSV(&b, rows))

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"bin,cluster_id,lat_sin,lat_cos,lon_sin,lon_cos,"+
			"temperature,precipitation,rain,cloudcover,windspeed,traffic_volume,label",
		lines[0])
	assert.Equal(t,
		"2016-01-04T08:00:00Z,cell-a,0.5,0.25,-0.5,0.75,0.1,0.2,0.3,0.4,0.5,0.9,1",
		lines[1])
}

func TestWriteSuperCSV_Empty(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteSuperCSV(&b, nil))
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(b.String()), "\n")+1)
}
