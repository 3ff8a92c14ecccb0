// Package supertable combines the per-cluster and per-bin signals into the
// final feature grid: synthetic traffic scoring, crash aggregation, the
// cluster x bin cross product, and deterministic negative downsampling.
package supertable

import "github.com/gridline-labs/roadrisk-cli/internal/stats"

// Weights are the synthetic traffic mix. The defaults sum to 0.95; the raw
// score is divided by the weight sum rather than renormalized.
type Weights struct {
	RoadType float64
	Time     float64
	Speed    float64
}

// DefaultWeights mirrors the configured defaults.
var DefaultWeights = Weights{RoadType: 0.45, Time: 0.35, Speed: 0.15}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.RoadType + w.Time + w.Speed
}

// TrafficVolume computes the normalized synthetic traffic signal for one
// (cluster, bin) cell from the cluster's mean road-type score, the bin's
// time score, and the cluster's mean speed score. Always in [0,1].
func TrafficVolume(w Weights, roadScore, timeScore, speedScore float64) float64 {
	sum := w.Sum()
	if sum == 0 {
		return 0
	}
	raw := w.RoadType*roadScore + w.Time*timeScore + w.Speed*speedScore
	return stats.Clamp(raw/sum, 0, 1)
}
