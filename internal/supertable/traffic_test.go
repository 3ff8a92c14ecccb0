package supertable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrafficVolume_PeakEverything(t *testing.T) {
	// All components at 1.0: raw = 0.95, rescaled to exactly 1.0.
	assert.InDelta(t, 1.0, TrafficVolume(DefaultWeights, 1, 1, 1), 1e-9)
}

func TestTrafficVolume_AllZero(t *testing.T) {
	assert.Equal(t, 0.0, TrafficVolume(DefaultWeights, 0, 0, 0))
}

func TestTrafficVolume_Mix(t *testing.T) {
	// 0.45*0.6 + 0.35*0.65 + 0.15*0.5 = 0.5725; / 0.95
	got := TrafficVolume(DefaultWeights, 0.6, 0.65, 0.5)
	assert.InDelta(t, 0.5725/0.95, got, 1e-9)
}

func TestTrafficVolume_BoundsOverValidRange(t *testing.T) {
	grid := []float64{0, 0.2, 0.45, 0.55, 0.6, 0.65, 0.8, 1.0}
	for _, rw := range grid {
		for _, ts := range grid {
			for _, sp := range grid {
				v := TrafficVolume(DefaultWeights, rw, ts, sp)
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}
	}
}

func TestTrafficVolume_ZeroWeights(t *testing.T) {
	assert.Equal(t, 0.0, TrafficVolume(Weights{}, 1, 1, 1))
}

func TestWeightsSum(t *testing.T) {
	assert.InDelta(t, 0.95, DefaultWeights.Sum(), 1e-12)
}
