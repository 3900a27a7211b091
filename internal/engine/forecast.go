package engine

import (
	"math"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/stats"
)

// Forecast method names as reported in responses.
const (
	MethodMean       = "mean"
	MethodRegression = "regression"
	MethodExpSmooth  = "expSmooth"
)

// ForecastMethods lists every candidate in backtest order.
var ForecastMethods = []string{MethodMean, MethodRegression, MethodExpSmooth}

func savingsSeries(data []domain.MonthlyData) []float64 {
	out := make([]float64, len(data))
	for i, d := range data {
		out[i] = d.Savings
	}
	return out
}

// MeanForecast predicts next month's savings as the trailing average.
func MeanForecast(data []domain.MonthlyData) float64 {
	return stats.Mean(savingsSeries(data))
}

// RegressionForecast fits a least-squares line over the savings series and
// extrapolates one month ahead. Falls back to the mean with fewer than two
// points.
func RegressionForecast(data []domain.MonthlyData) float64 {
	if len(data) < 2 {
		return MeanForecast(data)
	}

	n := float64(len(data))
	var sumX, sumY, sumXY, sumXX float64
	for i, d := range data {
		x := float64(i)
		sumX += x
		sumY += d.Savings
		sumXY += x * d.Savings
		sumXX += x * x
	}
	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / n

	return slope*n + intercept
}

// ExpSmoothForecast applies exponential smoothing with alpha 0.5, seeded by
// the first value.
func ExpSmoothForecast(data []domain.MonthlyData) float64 {
	series := savingsSeries(data)
	if len(series) == 0 {
		return 0
	}
	const alpha = 0.5
	smoothed := series[0]
	for _, v := range series[1:] {
		smoothed = alpha*v + (1-alpha)*smoothed
	}
	return smoothed
}

func forecastBy(method string, data []domain.MonthlyData) float64 {
	switch method {
	case MethodRegression:
		return RegressionForecast(data)
	case MethodExpSmooth:
		return ExpSmoothForecast(data)
	default:
		return MeanForecast(data)
	}
}

// selectMethod backtests the candidates by holding out the final month and
// picks the lowest absolute error. With fewer than 3 months of data a
// two-point regression is ill-conditioned for error comparison, so
// regression is preferred outright. After choosing, it recomputes one-step
// walk-forward errors across the whole series for uncertainty estimation.
func selectMethod(data []domain.MonthlyData) (method string, forecast float64, errors []float64) {
	if len(data) < 2 {
		return MethodMean, MeanForecast(data), nil
	}

	train := data[:len(data)-1]
	actual := data[len(data)-1].Savings

	best := ""
	bestForecast := 0.0
	bestError := math.Inf(1)
	for _, candidate := range ForecastMethods {
		prediction := forecastBy(candidate, train)
		err := math.Abs(actual - prediction)
		if err < bestError {
			best = candidate
			bestForecast = prediction
			bestError = err
		}
	}

	if len(data) < 3 {
		prediction := forecastBy(MethodRegression, train)
		return MethodRegression, prediction, []float64{math.Abs(actual - prediction)}
	}

	for i := 1; i < len(data); i++ {
		prediction := forecastBy(best, data[:i])
		errors = append(errors, math.Abs(data[i].Savings-prediction))
	}
	return best, bestForecast, errors
}

// ForecastSavings predicts next month's savings from trailing monthly
// aggregates and estimates the probability of reaching requiredMonthly.
func ForecastSavings(data []domain.MonthlyData, requiredMonthly float64) domain.ForecastResult {
	method, forecast, errors := selectMethod(data)

	// A zero residual RMS would make the z-score 0/0 on an exactly on-target
	// forecast, so the 10%-of-requirement fallback also covers that case.
	sigma := math.Max(1, requiredMonthly*0.1)
	if len(errors) > 0 {
		var sumSq float64
		for _, e := range errors {
			sumSq += e * e
		}
		if rms := math.Sqrt(sumSq / float64(len(errors))); rms > 0 {
			sigma = rms
		}
	}

	zScore := (forecast - requiredMonthly) / sigma
	probability := stats.Clamp01(stats.NormalCDF(zScore))

	return domain.ForecastResult{
		Method:  method,
		Savings: math.Round(forecast),
		Interval: domain.ForecastInterval{
			Low:  math.Round(math.Max(0, forecast-sigma)),
			High: math.Round(forecast + sigma),
		},
		ProbabilityOnTrack: stats.Round2(probability),
	}
}
