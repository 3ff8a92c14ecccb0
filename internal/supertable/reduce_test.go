package supertable

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
)

func negRows(n int) []model.SuperRow {
	rows := make([]model.SuperRow, n)
	for i := range rows {
		rows[i] = model.SuperRow{
			ClusterID: fmt.Sprintf("cell-%d", i%97),
			Bin:       gridStart.Add(time.Duration(i) * 4 * time.Hour),
		}
	}
	return rows
}

func TestKeep_PositivesAlwaysSurvive(t *testing.T) {
	row := model.SuperRow{ClusterID: "x", Bin: gridStart, Label: 1}
	assert.True(t, Keep(row, 0.5))
	assert.True(t, Keep(row, 1.0))
}

func TestKeep_Deterministic(t *testing.T) {
	row := model.SuperRow{ClusterID: "x", Bin: gridStart}
	first := Keep(row, 0.5)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Keep(row, 0.5))
	}
}

func TestKeep_ThresholdExtremes(t *testing.T) {
	row := model.SuperRow{ClusterID: "x", Bin: gridStart}
	assert.True(t, Keep(row, 0.0)) // u >= 0 always
}

func TestRowUniform_Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		u := rowUniform(fmt.Sprintf("c%d", i), gridStart)
		assert.GreaterOrEqual(t, u, 0.0)
		assert.Less(t, u, 1.0)
	}
}

func TestReduce_IndependentOfChunking(t *testing.T) {
	rows := negRows(5000)

	a, _, err := Reduce(context.Background(), rows, ReduceOptions{KeepThreshold: 0.5, ChunkSize: 7, Workers: 8})
	require.NoError(t, err)
	b, _, err := Reduce(context.Background(), rows, ReduceOptions{KeepThreshold: 0.5, ChunkSize: 5000, Workers: 1})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestReduce_KeepsRoughlyHalfOfNegatives(t *testing.T) {
	rows := negRows(20000)
	out, counters, err := Reduce(context.Background(), rows, ReduceOptions{KeepThreshold: 0.5})
	require.NoError(t, err)

	assert.Equal(t, 20000, counters.In)
	assert.Equal(t, 20000, counters.InNeg)
	assert.Equal(t, len(out), counters.Out)

	ratio := float64(counters.OutNeg) / float64(counters.InNeg)
	assert.InDelta(t, 0.5, ratio, 0.03)
}

func TestReduce_AllPositivesRetainedInOrder(t *testing.T) {
	rows := negRows(1000)
	for i := 0; i < len(rows); i += 10 {
		rows[i].Label = 1
	}

	out, counters, err := Reduce(context.Background(), rows, ReduceOptions{KeepThreshold: 0.5, ChunkSize: 13, Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, 100, counters.InPos)
	assert.Equal(t, 100, counters.OutPos)

	// Input order preserved.
	for i := 1; i < len(out); i++ {
		assert.False(t, out[i].Bin.Before(out[i-1].Bin))
	}
}

func TestReduce_Empty(t *testing.T) {
	out, counters, err := Reduce(context.Background(), nil, ReduceOptions{KeepThreshold: 0.5})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, ReduceCounters{}, counters)
}

func TestReduce_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Reduce(ctx, negRows(100000), ReduceOptions{KeepThreshold: 0.5, ChunkSize: 10, Workers: 2})
	assert.Error(t, err)
}
