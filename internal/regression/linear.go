// Package regression fits ordinary least squares lines over a price series.
package regression

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned when fewer than two samples are given.
var ErrInsufficientData = errors.New("regression needs at least two samples")

// Line is a fitted y = Intercept + Slope*x with its training-set quality.
type Line struct {
	Slope     float64
	Intercept float64
	R2        float64
	MSE       float64
	N         int
}

// At evaluates the line.
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// FitIndex fits y against its row index 0..n-1.
func FitIndex(y []float64) (Line, error) {
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i)
	}
	return Fit(x, y)
}

// Fit fits y against x in closed form.
func Fit(x, y []float64) (Line, error) {
	if len(x) != len(y) {
		return Line{}, errors.New("regression: x and y length mismatch")
	}
	if len(y) < 2 {
		return Line{}, ErrInsufficientData
	}
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Line{}, errors.New("regression: non-finite sample")
		}
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	l := Line{Slope: beta, Intercept: alpha, N: len(y)}

	var sse float64
	for i := range y {
		d := y[i] - l.At(x[i])
		sse += d * d
	}
	l.MSE = sse / float64(len(y))

	// Constant targets leave R² undefined.
	l.R2 = stat.RSquared(x, y, nil, alpha, beta)
	if math.IsNaN(l.R2) || math.IsInf(l.R2, 0) {
		if l.MSE == 0 {
			l.R2 = 1
		} else {
			l.R2 = 0
		}
	}
	return l, nil
}

// MeanStep returns the mean gap between consecutive timestamps, or 0 for
// fewer than two.
func MeanStep(ts []int64) float64 {
	if len(ts) < 2 {
		return 0
	}
	return float64(ts[len(ts)-1]-ts[0]) / float64(len(ts)-1)
}
