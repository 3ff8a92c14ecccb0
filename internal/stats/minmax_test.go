package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinMaxScale_Bounds(t *testing.T) {
	got := MinMaxScale([]float64{10, 20, 30}, nil, 0)
	assert.Equal(t, []float64{0.0, 0.5, 1.0}, got)
}

func TestMinMaxScale_MaxIsOne_MinIsZero(t *testing.T) {
	vals := []float64{3, -7, 12, 0.5}
	got := MinMaxScale(vals, nil, 0)
	for _, v := range got {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Equal(t, 0.0, got[1]) // min row
	assert.Equal(t, 1.0, got[2]) // max row
}

func TestMinMaxScale_DegenerateConstant(t *testing.T) {
	got := MinMaxScale([]float64{5, 5, 5}, nil, 0)
	assert.Equal(t, []float64{0, 0, 0}, got)
}

func TestMinMaxScale_DegenerateWithFallback(t *testing.T) {
	got := MinMaxScale([]float64{30, 30}, nil, 0.5)
	assert.Equal(t, []float64{0.5, 0.5}, got)
}

func TestMinMaxScale_AllUndefined(t *testing.T) {
	got := MinMaxScale([]float64{1, 2}, []bool{false, false}, 0)
	assert.Equal(t, []float64{0, 0}, got)
}

func TestMinMaxScale_UndefinedEntriesGetFallback(t *testing.T) {
	got := MinMaxScale([]float64{0, 99, 10}, []bool{true, false, true}, 0)
	assert.Equal(t, []float64{0, 0, 1}, got)
}

func TestMinMaxScale_Empty(t *testing.T) {
	assert.Empty(t, MinMaxScale(nil, nil, 0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.1, 0, 1))
	assert.Equal(t, 1.0, Clamp(1.1, 0, 1))
	assert.Equal(t, 0.7, Clamp(0.7, 0, 1))
}

func TestMean(t *testing.T) {
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}, 0))
	assert.Equal(t, 0.5, Mean(nil, 0.5))
}
