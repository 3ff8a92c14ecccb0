package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine_LineString(t *testing.T) {
	ls, err := ParseLine("LINESTRING (0 0, 1 1, 2 0)")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 1, 2, 0}, ls.FlatCoords())
}

func TestParseLine_SinglePartMultiLineString(t *testing.T) {
	ls, err := ParseLine("MULTILINESTRING ((0 0, 1 1))")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 1}, ls.FlatCoords())
}

func TestParseLine_MultiPartConcatenatesInOrder(t *testing.T) {
	ls, err := ParseLine("MULTILINESTRING ((0 0, 1 0), (5 5, 6 5))")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 0, 5, 5, 6, 5}, ls.FlatCoords())
}

func TestParseLine_RejectsOtherKinds(t *testing.T) {
	for _, s := range []string{
		"POLYGON ((0 0, 1 0, 1 1, 0 0))",
		"POINT (1 2)",
	} {
		_, err := ParseLine(s)
		require.Error(t, err, s)
		assert.True(t, errors.Is(err, ErrUnsupportedGeometryKind), s)
	}
}

func TestParseLine_RejectsEmpty(t *testing.T) {
	for _, s := range []string{
		"LINESTRING EMPTY",
		"MULTILINESTRING EMPTY",
	} {
		_, err := ParseLine(s)
		require.Error(t, err, s)
		assert.True(t, errors.Is(err, ErrEmptyGeometry), s)
	}
}

func TestParseLine_Garbage(t *testing.T) {
	_, err := ParseLine("not wkt at all")
	assert.Error(t, err)
}
