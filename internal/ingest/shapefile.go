package ingest

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// polylineToLine flattens a shapefile PolyLine into one LineString by
// concatenating part coordinates in encounter order.
func polylineToLine(poly *shp.PolyLine) *geom.LineString {
	flat := make([]float64, 0, len(poly.Points)*2)
	for _, p := range poly.Points {
		flat = append(flat, p.X, p.Y)
	}
	return geom.NewLineStringFlat(geom.XY, flat)
}

// shapeToLine converts one shapefile record into a LineString. Anything other
// than a PolyLine with at least two points is an error; a road shapefile
// holding point or polygon records is the wrong input, not noise to skip.
func shapeToLine(n int, shape shp.Shape) (*geom.LineString, error) {
	poly, ok := shape.(*shp.PolyLine)
	if !ok {
		return nil, eris.Wrapf(ErrUnsupportedGeometryKind, "ingest: shapefile record %d: got %T", n, shape)
	}
	if len(poly.Points) < 2 {
		return nil, eris.Wrapf(ErrEmptyGeometry, "ingest: shapefile record %d", n)
	}
	return polylineToLine(poly), nil
}

// ReadRoadShapefile loads road edges from a shapefile instead of the WKT CSV.
// PolyLine parts are flattened by concatenation, matching ParseLine's
// handling of multi-part WKT, so both ingest paths yield identical edges for
// the same geometry.
func ReadRoadShapefile(path string) ([]RoadEdgeRecord, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	attr := func(name string) string {
		i, ok := fieldIdx[name]
		if !ok {
			return ""
		}
		val := strings.TrimRight(reader.Attribute(i), "\x00")
		return strings.TrimSpace(val)
	}

	var records []RoadEdgeRecord

	for reader.Next() {
		n, shape := reader.Shape()

		ls, err := shapeToLine(n, shape)
		if err != nil {
			return nil, err
		}

		roadType := 0
		if s := attr("rw_type"); s != "" {
			rt, err := parseIntLike(s)
			if err != nil {
				return nil, eris.Wrapf(err, "ingest: shapefile record %d: rw_type %q", n, s)
			}
			roadType = rt
		}

		parts := make([]string, len(gradeColumns))
		for i, col := range gradeColumns {
			parts[i] = attr(col)
		}

		records = append(records, RoadEdgeRecord{
			Geom:     ls,
			RoadType: roadType,
			GradeKey: strings.Join(parts, "|"),
		})
	}

	zap.L().Info("ingest: road edges loaded from shapefile",
		zap.String("path", path),
		zap.Int("edges", len(records)),
	)
	return records, nil
}
