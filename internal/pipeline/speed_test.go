package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
)

func ptr(v float64) *float64 { return &v }

func TestFillSpeedFallback(t *testing.T) {
	edges := []*model.Edge{
		{ID: 0},
		{ID: 1, SpeedLimit: ptr(25)},
		{ID: 2},
	}

	filled := FillSpeedFallback(edges, 42, 15, 30)
	assert.Equal(t, 2, filled)

	assert.Equal(t, 25.0, *edges[1].SpeedLimit)
	for _, e := range []*model.Edge{edges[0], edges[2]} {
		require.NotNil(t, e.SpeedLimit)
		assert.GreaterOrEqual(t, *e.SpeedLimit, 15.0)
		assert.LessOrEqual(t, *e.SpeedLimit, 30.0)
		assert.Equal(t, *e.SpeedLimit, float64(int(*e.SpeedLimit)))
	}
}

func TestFillSpeedFallback_SeedReproducible(t *testing.T) {
	a := []*model.Edge{{ID: 0}, {ID: 1}, {ID: 2}, {ID: 3}}
	b := []*model.Edge{{ID: 0}, {ID: 1}, {ID: 2}, {ID: 3}}

	FillSpeedFallback(a, 42, 15, 30)
	FillSpeedFallback(b, 42, 15, 30)

	for i := range a {
		assert.Equal(t, *a[i].SpeedLimit, *b[i].SpeedLimit)
	}
}

func TestComputeSpeedScores(t *testing.T) {
	edges := []*model.Edge{
		{ID: 0, SpeedLimit: ptr(15)},
		{ID: 1, SpeedLimit: ptr(30)},
		{ID: 2, SpeedLimit: ptr(22.5)},
	}
	ComputeSpeedScores(edges)

	assert.Equal(t, 0.0, edges[0].SpeedScore)
	assert.Equal(t, 1.0, edges[1].SpeedScore)
	assert.InDelta(t, 0.5, edges[2].SpeedScore, 1e-9)
}

func TestComputeSpeedScores_DegenerateIsNeutral(t *testing.T) {
	edges := []*model.Edge{
		{ID: 0, SpeedLimit: ptr(25)},
		{ID: 1, SpeedLimit: ptr(25)},
	}
	ComputeSpeedScores(edges)

	assert.Equal(t, 0.5, edges[0].SpeedScore)
	assert.Equal(t, 0.5, edges[1].SpeedScore)
}
