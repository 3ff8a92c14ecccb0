package ingest

import (
	"errors"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolylineToLine_SinglePart(t *testing.T) {
	pl := &shp.PolyLine{
		NumParts: 1,
		Parts:    []int32{0},
		Points:   []shp.Point{{X: -74.0, Y: 40.7}, {X: -73.999, Y: 40.7}},
	}
	ls := polylineToLine(pl)
	assert.Equal(t, []float64{-74.0, 40.7, -73.999, 40.7}, ls.FlatCoords())
}

func TestPolylineToLine_MatchesWKTFlattening(t *testing.T) {
	// A two-part polyline and the equivalent MultiLineString WKT must yield
	// the same edge geometry.
	pl := &shp.PolyLine{
		NumParts: 2,
		Parts:    []int32{0, 2},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 1, Y: 0},
			{X: 5, Y: 5}, {X: 6, Y: 5},
		},
	}
	fromSHP := polylineToLine(pl)

	fromWKT, err := ParseLine("MULTILINESTRING ((0 0, 1 0), (5 5, 6 5))")
	require.NoError(t, err)

	assert.Equal(t, fromWKT.FlatCoords(), fromSHP.FlatCoords())
}

func TestShapeToLine_PolyLine(t *testing.T) {
	pl := &shp.PolyLine{
		NumParts: 1,
		Parts:    []int32{0},
		Points:   []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
	}
	ls, err := shapeToLine(0, pl)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 1}, ls.FlatCoords())
}

func TestShapeToLine_RejectsNonPolyLine(t *testing.T) {
	_, err := shapeToLine(3, &shp.Point{X: -74.0, Y: 40.7})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedGeometryKind))
	assert.Contains(t, err.Error(), "record 3")
}

func TestShapeToLine_RejectsDegeneratePolyLine(t *testing.T) {
	pl := &shp.PolyLine{
		NumParts: 1,
		Parts:    []int32{0},
		Points:   []shp.Point{{X: 0, Y: 0}},
	}
	_, err := shapeToLine(7, pl)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyGeometry))
	assert.Contains(t, err.Error(), "record 7")
}
