package ingest

import (
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
)

// crashTimeLayout is the pre-truncated hour stamp the crash export carries.
const crashTimeLayout = "2006/01/02 15"

// casualtyColumns lists the eight count columns in model.Crash.Counts order.
var casualtyColumns = []string{
	"number of persons injured",
	"number of persons killed",
	"number of pedestrians injured",
	"number of pedestrians killed",
	"number of cyclist injured",
	"number of cyclist killed",
	"number of motorist injured",
	"number of motorist killed",
}

// ReadCrashes parses the crash CSV and keeps rows whose timestamp falls in
// [start, end]. Required columns: time, latitude, longitude. Blank casualty
// cells count as zero; rows with a blank time or position are dropped.
func ReadCrashes(r io.Reader, start, end time.Time) ([]model.Crash, error) {
	var crashes []model.Crash
	var dropped, outside int

	required := append([]string{"time", "latitude", "longitude"}, casualtyColumns...)
	err := forEachRecord(r, required, func(row int, record []string, idx map[string]int) error {
		ts := field(record, idx, "time")
		latRaw := field(record, idx, "latitude")
		lonRaw := field(record, idx, "longitude")
		if ts == "" || latRaw == "" || lonRaw == "" {
			dropped++
			return nil
		}

		t, err := time.ParseInLocation(crashTimeLayout, ts, time.UTC)
		if err != nil {
			return eris.Wrapf(err, "ingest: crashes row %d: time %q", row, ts)
		}
		if t.Before(start) || t.After(end) {
			outside++
			return nil
		}

		lat, err := strconv.ParseFloat(latRaw, 64)
		if err != nil {
			return eris.Wrapf(err, "ingest: crashes row %d: latitude %q", row, latRaw)
		}
		lon, err := strconv.ParseFloat(lonRaw, 64)
		if err != nil {
			return eris.Wrapf(err, "ingest: crashes row %d: longitude %q", row, lonRaw)
		}

		c := model.Crash{Time: t, Lat: lat, Lon: lon}
		for i, col := range casualtyColumns {
			s := field(record, idx, col)
			if s == "" {
				continue
			}
			n, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return eris.Wrapf(err, "ingest: crashes row %d: %s %q", row, col, s)
			}
			c.Counts[i] = n
		}

		crashes = append(crashes, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("ingest: crashes loaded",
		zap.Int("crashes", len(crashes)),
		zap.Int("dropped", dropped),
		zap.Int("outside_range", outside),
	)
	return crashes, nil
}
