// Package ingest parses raw tabular inputs (WKT CSVs, shapefiles) into typed
// geographic-frame records with explicit column contracts. Rows that violate
// the contract fail the load with a row-numbered error rather than being
// silently coerced.
package ingest

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// ErrUnsupportedGeometryKind is returned when an input geometry is neither a
// LineString nor a MultiLineString.
var ErrUnsupportedGeometryKind = eris.New("ingest: unsupported geometry kind")

// ErrEmptyGeometry is returned for geometries that decode to zero coordinates,
// such as LINESTRING EMPTY. Empty lines have no endpoints or midpoint and
// cannot participate in any spatial operation.
var ErrEmptyGeometry = eris.New("ingest: empty geometry")

// ParseLine decodes a WKT string into a single LineString. MultiLineStrings
// with one part are unwrapped; multi-part ones are flattened by concatenating
// part coordinates in encounter order, without gap-closing or reordering.
func ParseLine(s string) (*geom.LineString, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: decode WKT")
	}

	var ls *geom.LineString
	switch t := g.(type) {
	case *geom.LineString:
		ls = t
	case *geom.MultiLineString:
		if t.NumLineStrings() == 1 {
			ls = t.LineString(0)
			break
		}
		flat := make([]float64, len(t.FlatCoords()))
		copy(flat, t.FlatCoords())
		ls = geom.NewLineStringFlat(t.Layout(), flat)
	default:
		return nil, eris.Wrapf(ErrUnsupportedGeometryKind, "got %T", g)
	}
	if ls.NumCoords() == 0 {
		return nil, ErrEmptyGeometry
	}
	return ls, nil
}
