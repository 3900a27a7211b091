package engine_test

import (
	"testing"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/engine"
)

func monthly(savings ...float64) []domain.MonthlyData {
	data := make([]domain.MonthlyData, len(savings))
	for i, s := range savings {
		data[i] = domain.MonthlyData{Month: i, Income: 5000, Expenses: 5000 - s, Savings: s}
	}
	return data
}

func TestForecastSavings_SingleMonthUsesMean(t *testing.T) {
	result := engine.ForecastSavings(monthly(400), 500)

	if result.Method != engine.MethodMean {
		t.Errorf("method = %s, want mean", result.Method)
	}
	if result.Savings != 400 {
		t.Errorf("savings = %v, want 400", result.Savings)
	}
	// No backtest errors, so sigma falls back to 10% of the requirement.
	if result.Interval.Low != 350 || result.Interval.High != 450 {
		t.Errorf("interval = %+v, want [350, 450]", result.Interval)
	}
	if result.ProbabilityOnTrack != 0.02 {
		t.Errorf("probability = %v, want 0.02", result.ProbabilityOnTrack)
	}
}

func TestForecastSavings_EmptyData(t *testing.T) {
	result := engine.ForecastSavings(nil, 500)

	if result.Method != engine.MethodMean || result.Savings != 0 {
		t.Errorf("got method=%s savings=%v, want mean forecast of 0", result.Method, result.Savings)
	}
	if result.Interval.Low != 0 {
		t.Errorf("interval low = %v, want floor at 0", result.Interval.Low)
	}
	if result.ProbabilityOnTrack != 0 {
		t.Errorf("probability = %v, want 0", result.ProbabilityOnTrack)
	}
}

func TestForecastSavings_TwoMonthsPrefersRegression(t *testing.T) {
	result := engine.ForecastSavings(monthly(100, 200), 100)

	if result.Method != engine.MethodRegression {
		t.Errorf("method = %s, want regression with two months", result.Method)
	}
	// A one-point training set degenerates to the mean.
	if result.Savings != 100 {
		t.Errorf("savings = %v, want 100", result.Savings)
	}
	if result.ProbabilityOnTrack != 0.5 {
		t.Errorf("probability = %v, want 0.5 when forecast meets requirement", result.ProbabilityOnTrack)
	}
}

func TestForecastSavings_LinearGrowthPicksRegression(t *testing.T) {
	result := engine.ForecastSavings(monthly(100, 200, 300, 400, 500), 400)

	if result.Method != engine.MethodRegression {
		t.Errorf("method = %s, want regression for a perfect trend", result.Method)
	}
	if result.Savings != 500 {
		t.Errorf("savings = %v, want 500", result.Savings)
	}
	// Walk-forward errors are [100, 0, 0, 0], so sigma is 50.
	if result.Interval.Low != 450 || result.Interval.High != 550 {
		t.Errorf("interval = %+v, want [450, 550]", result.Interval)
	}
	if result.ProbabilityOnTrack != 0.98 {
		t.Errorf("probability = %v, want 0.98", result.ProbabilityOnTrack)
	}
}

func TestForecastSavings_ConstantSeriesKeepsMeanOnTie(t *testing.T) {
	result := engine.ForecastSavings(monthly(300, 300, 300, 300), 200)

	if result.Method != engine.MethodMean {
		t.Errorf("method = %s, want mean to win ties", result.Method)
	}
	if result.Savings != 300 {
		t.Errorf("savings = %v, want 300", result.Savings)
	}
	// Zero residuals fall back to 10% of the requirement, so sigma is 20.
	if result.Interval.Low != 280 || result.Interval.High != 320 {
		t.Errorf("interval = %+v, want [280, 320]", result.Interval)
	}
	if result.ProbabilityOnTrack != 1 {
		t.Errorf("probability = %v, want 1", result.ProbabilityOnTrack)
	}
}

func TestForecastSavings_ConstantSeriesOnTarget(t *testing.T) {
	result := engine.ForecastSavings(monthly(400, 400, 400, 400), 400)

	if result.Savings != 400 {
		t.Errorf("savings = %v, want 400", result.Savings)
	}
	// Meeting the requirement exactly with zero residuals is a coin flip,
	// not a division of zero by zero.
	if result.ProbabilityOnTrack != 0.5 {
		t.Errorf("probability = %v, want 0.5", result.ProbabilityOnTrack)
	}
	if result.Interval.Low != 360 || result.Interval.High != 440 {
		t.Errorf("interval = %+v, want [360, 440]", result.Interval)
	}
}

func TestForecastSavings_Invariants(t *testing.T) {
	cases := [][]float64{
		{50},
		{-200, 150, 80},
		{1000, 900, 800, 700, 600, 500},
		{0, 0, 10, 0, 25},
	}
	for _, savings := range cases {
		result := engine.ForecastSavings(monthly(savings...), 400)
		if result.Interval.Low < 0 {
			t.Errorf("savings %v: interval low %v below zero", savings, result.Interval.Low)
		}
		if result.Interval.Low > result.Interval.High {
			t.Errorf("savings %v: interval inverted %+v", savings, result.Interval)
		}
		if result.ProbabilityOnTrack < 0 || result.ProbabilityOnTrack > 1 {
			t.Errorf("savings %v: probability %v out of range", savings, result.ProbabilityOnTrack)
		}
	}
}
