package prediction

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metric scores a forecast slice against a same-length verification slice
// and returns a scalar. Metrics are pluggable: callers can substitute any
// custom skill score without modifying the engine. Both slices span the
// member dimension of a single (initialization, lead) pair.
type Metric func(forecast, observed []float64) float64

// RMSE is the root-mean-square error. It is the default metric: unlike
// correlation it stays finite when the verification slice is a broadcast
// constant, which is the common hindcast case.
func RMSE(forecast, observed []float64) float64 {
	if len(forecast) == 0 {
		return math.NaN()
	}
	return floats.Distance(forecast, observed, 2) / math.Sqrt(float64(len(forecast)))
}

// MSE is the mean square error.
func MSE(forecast, observed []float64) float64 {
	r := RMSE(forecast, observed)
	return r * r
}

// MAE is the mean absolute error.
func MAE(forecast, observed []float64) float64 {
	if len(forecast) == 0 {
		return math.NaN()
	}
	return floats.Distance(forecast, observed, 1) / float64(len(forecast))
}

// Bias is the mean forecast minus the mean observation.
func Bias(forecast, observed []float64) float64 {
	if len(forecast) == 0 {
		return math.NaN()
	}
	return stat.Mean(forecast, nil) - stat.Mean(observed, nil)
}

// PearsonR is the Pearson correlation coefficient. It is NaN when either
// slice has zero variance, so it only suits verification slices that vary
// across members (e.g. perfect-model peer comparisons with per-member
// targets, or metrics applied by the caller along other axes).
func PearsonR(forecast, observed []float64) float64 {
	return stat.Correlation(forecast, observed, nil)
}
