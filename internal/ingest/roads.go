package ingest

import (
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// RoadEdgeRecord is one ingested road feature in the geographic frame,
// before id assignment and reprojection.
type RoadEdgeRecord struct {
	Geom     *geom.LineString
	RoadType int
	GradeKey string
}

// SpeedLimitRecord is one speed-limit line in the geographic frame.
type SpeedLimitRecord struct {
	Geom       *geom.LineString
	SpeedLimit float64
}

// gradeColumns are the optional attributes whose joined values distinguish
// grade-separated crossings. Absent columns contribute an empty component.
var gradeColumns = []string{"bridge", "tunnel", "layer"}

// ReadRoadEdges parses the road-edge CSV. Required columns: coordinates
// (WKT line), rw_type. Rows with a blank geometry are dropped; any other
// contract violation fails the load with the offending row number.
func ReadRoadEdges(r io.Reader) ([]RoadEdgeRecord, error) {
	var records []RoadEdgeRecord
	var dropped int

	err := forEachRecord(r, []string{"coordinates", "rw_type"}, func(row int, record []string, idx map[string]int) error {
		raw := field(record, idx, "coordinates")
		if raw == "" {
			dropped++
			return nil
		}
		ls, err := ParseLine(raw)
		if err != nil {
			return eris.Wrapf(err, "ingest: roads row %d", row)
		}

		roadType := 0
		if s := field(record, idx, "rw_type"); s != "" {
			rt, err := parseIntLike(s)
			if err != nil {
				return eris.Wrapf(err, "ingest: roads row %d: rw_type %q", row, s)
			}
			roadType = rt
		}

		parts := make([]string, len(gradeColumns))
		for i, col := range gradeColumns {
			parts[i] = field(record, idx, col)
		}

		records = append(records, RoadEdgeRecord{
			Geom:     ls,
			RoadType: roadType,
			GradeKey: strings.Join(parts, "|"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if dropped > 0 {
		zap.L().Debug("ingest: dropped road rows without geometry", zap.Int("dropped", dropped))
	}
	zap.L().Info("ingest: road edges loaded", zap.Int("edges", len(records)))
	return records, nil
}

// ReadSpeedLimits parses the speed-limit CSV. Required columns: coordinates
// (WKT line), speedlimit. Rows with a blank geometry or blank limit are
// dropped.
func ReadSpeedLimits(r io.Reader) ([]SpeedLimitRecord, error) {
	var records []SpeedLimitRecord
	var dropped int

	err := forEachRecord(r, []string{"coordinates", "speedlimit"}, func(row int, record []string, idx map[string]int) error {
		raw := field(record, idx, "coordinates")
		limit := field(record, idx, "speedlimit")
		if raw == "" || limit == "" {
			dropped++
			return nil
		}
		ls, err := ParseLine(raw)
		if err != nil {
			return eris.Wrapf(err, "ingest: speed limits row %d", row)
		}
		v, err := strconv.ParseFloat(limit, 64)
		if err != nil {
			return eris.Wrapf(err, "ingest: speed limits row %d: speedlimit %q", row, limit)
		}
		records = append(records, SpeedLimitRecord{Geom: ls, SpeedLimit: v})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if dropped > 0 {
		zap.L().Debug("ingest: dropped speed-limit rows", zap.Int("dropped", dropped))
	}
	zap.L().Info("ingest: speed limits loaded", zap.Int("lines", len(records)))
	return records, nil
}
