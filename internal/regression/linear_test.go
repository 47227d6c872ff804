package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitIndexRecoversKnownLine(t *testing.T) {
	y := make([]float64, 50)
	for i := range y {
		y[i] = 2*float64(i) + 5
	}

	l, err := FitIndex(y)
	require.NoError(t, err)
	assert.InDelta(t, 2, l.Slope, 1e-9)
	assert.InDelta(t, 5, l.Intercept, 1e-9)
	assert.InDelta(t, 1, l.R2, 1e-12)
	assert.InDelta(t, 0, l.MSE, 1e-12)
	assert.Equal(t, 50, l.N)
	assert.InDelta(t, 205, l.At(100), 1e-9)
}

func TestFitNoisy(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{1, 3, 2, 4}

	l, err := Fit(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, l.Slope, 1e-9)
	assert.InDelta(t, 1.3, l.Intercept, 1e-9)
	assert.InDelta(t, 0.64, l.R2, 1e-9)
	assert.InDelta(t, 0.45, l.MSE, 1e-9)
}

func TestFitInsufficientData(t *testing.T) {
	_, err := FitIndex(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = FitIndex([]float64{1})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestFitConstantSeries(t *testing.T) {
	l, err := FitIndex([]float64{7, 7, 7})
	require.NoError(t, err)
	assert.InDelta(t, 0, l.Slope, 1e-12)
	assert.InDelta(t, 7, l.Intercept, 1e-12)
	assert.False(t, math.IsNaN(l.R2))
	assert.Equal(t, 1.0, l.R2)
}

func TestFitRejectsNonFinite(t *testing.T) {
	_, err := FitIndex([]float64{1, math.NaN(), 3})
	assert.Error(t, err)
}

func TestMeanStep(t *testing.T) {
	assert.Equal(t, 0.0, MeanStep(nil))
	assert.Equal(t, 0.0, MeanStep([]int64{5}))
	assert.Equal(t, 150.0, MeanStep([]int64{0, 100, 300}))
}
