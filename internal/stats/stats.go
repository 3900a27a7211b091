// Package stats provides the small numeric toolkit shared by the coaching
// engines. All functions return 0 for empty input rather than NaN so callers
// can feed results straight into scoring formulas.
package stats

import (
	"math"
	"sort"
)

// Sum returns the total of values.
func Sum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

// Mean returns the arithmetic mean, or 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// Median returns the middle value, averaging the two middle values for
// even-length input. Returns 0 for empty input.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n))
}

// MeanAbsDeviation returns the mean absolute deviation from the median.
func MeanAbsDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	med := Median(values)
	var sum float64
	for _, v := range values {
		sum += math.Abs(v - med)
	}
	return sum / float64(len(values))
}

// Quartiles returns the first and third quartiles using the nearest-rank
// positions floor(n/4) and floor(3n/4) on the sorted values.
func Quartiles(values []float64) (q1, q3 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	q1 = sorted[n/4]
	q3 = sorted[(n*3)/4]
	return q1, q3
}

// Clamp constrains value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}

// Clamp01 constrains value to [0, 1].
func Clamp01(value float64) float64 {
	return Clamp(value, 0, 1)
}

// Round2 rounds to two decimal places.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// NormalCDF evaluates the standard normal cumulative distribution function
// using the Abramowitz and Stegun erf approximation.
func NormalCDF(z float64) float64 {
	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)

	sign := 1.0
	if z < 0 {
		sign = -1.0
	}
	x := math.Abs(z) / math.Sqrt2

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)

	return 0.5 * (1.0 + sign*y)
}
