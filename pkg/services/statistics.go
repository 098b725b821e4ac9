package services

import (
	"fmt"

	"github.com/yadnesh111/AgriSaarthi/pkg/models"
)

// LinearRegression fits y = slope*x + intercept by ordinary least squares.
// When every x is equal the fit degenerates to a flat line at the mean of y.
func LinearRegression(x, y []float64) (*models.RegressionResult, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("series length mismatch: %d x values, %d y values", len(x), len(y))
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("cannot fit a trend to an empty series")
	}

	n := float64(len(x))
	var sumX, sumY, sumXY, sumX2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
	}

	meanY := sumY / n
	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return &models.RegressionResult{Slope: 0, Intercept: meanY, RSquared: 0}, nil
	}

	slope := (n*sumXY - sumX*sumY) / denominator
	intercept := (sumY - slope*sumX) / n

	var ssTotal, ssResidual float64
	for i := range x {
		predicted := slope*x[i] + intercept
		ssTotal += (y[i] - meanY) * (y[i] - meanY)
		ssResidual += (y[i] - predicted) * (y[i] - predicted)
	}
	rSquared := 1.0
	if ssTotal != 0 {
		rSquared = 1 - ssResidual/ssTotal
	}

	return &models.RegressionResult{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  rSquared,
	}, nil
}
