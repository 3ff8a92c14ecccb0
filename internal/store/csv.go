package store

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
)

// WriteSuperCSV streams the supertable as CSV: a bin column followed by the
// fixed feature columns.
func WriteSuperCSV(w io.Writer, rows []model.SuperRow) error {
	cw := csv.NewWriter(w)

	header := append([]string{"bin"}, model.SuperColumns...)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "store: write CSV header")
	}

	record := make([]string, 0, len(header))
	for _, r := range rows {
		record = record[:0]
		record = append(record,
			r.Bin.UTC().Format(time.RFC3339),
			r.ClusterID,
			formatFloat(r.LatSin), formatFloat(r.LatCos),
			formatFloat(r.LonSin), formatFloat(r.LonCos),
		)
		for _, v := range r.Weather {
			record = append(record, formatFloat(v))
		}
		record = append(record, formatFloat(r.TrafficVolume), strconv.Itoa(r.Label))
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "store: write CSV row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "store: flush CSV")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
