// Package weather resamples irregular weather observations onto the
// temporal grid and min-max normalizes each channel across it.
package weather

import (
	"time"

	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
	"github.com/gridline-labs/roadrisk-cli/internal/stats"
	"github.com/gridline-labs/roadrisk-cli/internal/timegrid"
)

// Grid is the resampled, normalized weather signal: one value per channel
// per bin, always defined. A degenerate or empty channel is all 0.0.
type Grid struct {
	Bins     []time.Time
	Channels [5][]float64 // model.WeatherChannels order
}

// At returns the channel vector for bin index i.
func (g *Grid) At(i int) [5]float64 {
	return [5]float64{
		g.Channels[0][i], g.Channels[1][i], g.Channels[2][i],
		g.Channels[3][i], g.Channels[4][i],
	}
}

// Resample averages the observations falling in each bin's half-open
// interval [bin, bin+width), then normalizes each channel to [0,1] over the
// whole grid. Bins with no observations and degenerate channels end up 0.0
// rather than undefined; observations outside the grid are ignored.
func Resample(obs []model.WeatherObs, bins []time.Time, width time.Duration) *Grid {
	g := &Grid{Bins: bins}
	if len(bins) == 0 {
		return g
	}
	start := bins[0]

	sums := [5][]float64{}
	counts := make([]int, len(bins))
	for c := range sums {
		sums[c] = make([]float64, len(bins))
	}

	var outside int
	for _, o := range obs {
		bin, ok := timegrid.Floor(o.Time, start, width, len(bins))
		if !ok {
			outside++
			continue
		}
		i := int(bin.Sub(start) / width)
		vals := o.Channels()
		for c := range sums {
			sums[c][i] += vals[c]
		}
		counts[i]++
	}

	defined := make([]bool, len(bins))
	for i, n := range counts {
		defined[i] = n > 0
	}

	for c := range sums {
		means := make([]float64, len(bins))
		for i := range bins {
			if counts[i] > 0 {
				means[i] = sums[c][i] / float64(counts[i])
			}
		}
		g.Channels[c] = stats.MinMaxScale(means, defined, 0.0)
	}

	if outside > 0 {
		zap.L().Debug("weather: observations outside grid ignored",
			zap.Int("ignored", outside),
			zap.Int("total", len(obs)),
		)
	}
	return g
}
