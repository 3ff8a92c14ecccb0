package ingest

import (
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
)

// ReadWeather parses the weather CSV. Required columns: time plus the five
// channels in model.WeatherChannels. Rows with any blank cell are dropped;
// non-blank cells that fail to parse abort the load.
func ReadWeather(r io.Reader) ([]model.WeatherObs, error) {
	var obs []model.WeatherObs
	var dropped int

	required := append([]string{"time"}, model.WeatherChannels...)
	err := forEachRecord(r, required, func(row int, record []string, idx map[string]int) error {
		ts := field(record, idx, "time")
		if ts == "" {
			dropped++
			return nil
		}
		t, err := time.ParseInLocation(crashTimeLayout, ts, time.UTC)
		if err != nil {
			return eris.Wrapf(err, "ingest: weather row %d: time %q", row, ts)
		}

		var vals [5]float64
		for i, col := range model.WeatherChannels {
			s := field(record, idx, col)
			if s == "" {
				dropped++
				return nil
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return eris.Wrapf(err, "ingest: weather row %d: %s %q", row, col, s)
			}
			vals[i] = v
		}

		obs = append(obs, model.WeatherObs{
			Time:          t,
			Temperature:   vals[0],
			Precipitation: vals[1],
			Rain:          vals[2],
			CloudCover:    vals[3],
			WindSpeed:     vals[4],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if dropped > 0 {
		zap.L().Debug("ingest: dropped incomplete weather rows", zap.Int("dropped", dropped))
	}
	zap.L().Info("ingest: weather observations loaded", zap.Int("observations", len(obs)))
	return obs, nil
}
