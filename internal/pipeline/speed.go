package pipeline

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
	"github.com/gridline-labs/roadrisk-cli/internal/stats"
)

// FillSpeedFallback assigns a seeded uniform integer limit in [min, max] to
// every edge the nearest-join left unresolved. Edges are visited in id order
// so a fixed seed reproduces the same limits run to run. Returns the number
// of edges filled.
func FillSpeedFallback(edges []*model.Edge, seed int64, min, max int) int {
	rng := rand.New(rand.NewSource(seed))
	span := max - min + 1

	var filled int
	for _, e := range edges {
		if e.SpeedLimit != nil {
			continue
		}
		v := float64(min + rng.Intn(span))
		e.SpeedLimit = &v
		filled++
	}

	if filled > 0 {
		zap.L().Info("pipeline: synthetic speed limits assigned",
			zap.Int("filled", filled),
			zap.Int("min", min),
			zap.Int("max", max),
		)
	}
	return filled
}

// ComputeSpeedScores min-max scales the resolved speed limits into [0, 1]
// speed scores. When all limits are equal (or the edge set is empty) every
// score is the neutral 0.5.
func ComputeSpeedScores(edges []*model.Edge) {
	vals := make([]float64, len(edges))
	defined := make([]bool, len(edges))
	for i, e := range edges {
		if e.SpeedLimit != nil {
			vals[i] = *e.SpeedLimit
			defined[i] = true
		}
	}

	scores := stats.MinMaxScale(vals, defined, 0.5)
	for i, e := range edges {
		e.SpeedScore = scores[i]
	}
}
