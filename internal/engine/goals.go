package engine

import (
	"math"
	"time"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"
)

// monthsBetween counts whole calendar months from start to end, ignoring
// the day component.
func monthsBetween(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}

// monthlyAggregate sums a month's income, expenses and savings, rounded to
// whole dollars.
func monthlyAggregate(txs []domain.Transaction) domain.MonthlyData {
	income := math.Round(domain.TotalIncome(txs))
	expenses := math.Round(domain.TotalExpenses(txs))
	return domain.MonthlyData{
		Income:   income,
		Expenses: expenses,
		Savings:  math.Round(income - expenses),
	}
}

// categorySpends sums absolute amounts per category, rounded to whole
// dollars.
func categorySpends(txs []domain.Transaction) map[string]float64 {
	spends := map[string]float64{}
	for _, t := range txs {
		spends[t.Category] += math.Abs(t.Amount)
	}
	for category, spend := range spends {
		spends[category] = math.Round(spend)
	}
	return spends
}

// EvaluateGoal checks whether a savings goal is reachable from the account's
// transaction history and, when it is not, proposes a cut plan to close the
// gap. The now parameter anchors date-based timelines.
func EvaluateGoal(
	req domain.GoalsRequest,
	txs []domain.Transaction,
	graySubs []domain.Subscription,
	now time.Time,
) (domain.GoalsResponse, error) {
	if req.TargetAmount <= 0 {
		return domain.GoalsResponse{}, &domain.ErrValidation{
			Field:   "targetAmount",
			Message: "must be greater than 0",
		}
	}
	if (req.Months == 0) == (req.By == "") {
		return domain.GoalsResponse{}, &domain.ErrValidation{
			Field:   "months",
			Message: "exactly one of months or by must be provided",
		}
	}

	var monthsToGoal int
	if req.Months != 0 {
		if req.Months < 1 || req.Months > 120 {
			return domain.GoalsResponse{}, &domain.ErrValidation{
				Field:   "months",
				Message: "must be between 1 and 120",
			}
		}
		monthsToGoal = req.Months
	} else {
		targetDate, err := time.Parse("2006-01-02", req.By)
		if err != nil {
			return domain.GoalsResponse{}, &domain.ErrValidation{
				Field:   "by",
				Message: "must be YYYY-MM-DD",
			}
		}
		monthsToGoal = monthsBetween(now, targetDate)
	}
	if monthsToGoal <= 0 {
		return domain.GoalsResponse{}, &domain.ErrValidation{
			Field:   "by",
			Message: "goal timeline must be in the future",
		}
	}

	monthlyTarget := math.Round(req.TargetAmount / float64(monthsToGoal))

	monthGroups := domain.GroupByMonth(txs)
	if len(monthGroups) == 0 {
		return domain.GoalsResponse{}, &domain.ErrNoData{Reason: "no transaction history to analyze"}
	}

	sortedMonths := domain.SortedMonthKeys(monthGroups)
	monthsToAnalyze := len(sortedMonths)
	if monthsToAnalyze > 6 {
		monthsToAnalyze = 6
	}
	analyzed := sortedMonths[len(sortedMonths)-monthsToAnalyze:]

	monthlyData := make([]domain.MonthlyData, len(analyzed))
	for i, monthKey := range analyzed {
		agg := monthlyAggregate(monthGroups[monthKey])
		agg.Month = i
		monthlyData[i] = agg
	}

	forecast := ForecastSavings(monthlyData, monthlyTarget)
	onTrack := forecast.Savings >= monthlyTarget
	shortfall := math.Max(0, monthlyTarget-forecast.Savings)

	plan := []domain.CutPlanItem{}
	alternatives := domain.GoalAlternatives{CancelSubscriptions: []domain.GraySubscription{}}

	if !onTrack && shortfall > 0 {
		mostRecent := sortedMonths[len(sortedMonths)-1]
		currentCategorySpends := categorySpends(monthGroups[mostRecent])

		discretionarySpends := map[string]float64{}
		history := map[string][]float64{}
		for category := range domain.DiscretionaryCategories {
			if spend, ok := currentCategorySpends[category]; ok {
				discretionarySpends[category] = spend
			}
			series := make([]float64, len(sortedMonths))
			for i, monthKey := range sortedMonths {
				series[i] = categorySpends(monthGroups[monthKey])[category]
			}
			history[category] = series
		}

		plan, alternatives = OptimizeCutPlan(history, discretionarySpends, shortfall, graySubs)
	}

	meta := domain.GoalsMeta{
		MonthsAnalyzed: len(monthlyData),
		MethodTried:    ForecastMethods,
		Chosen:         forecast.Method,
	}
	if req.Extras == "debug" {
		meta.Debug = map[string]any{
			"monthlyData":     monthlyData,
			"monthsToGoal":    monthsToGoal,
			"availableMonths": len(sortedMonths),
		}
	}

	return domain.GoalsResponse{
		OnTrack:       onTrack,
		MonthlyTarget: monthlyTarget,
		Forecast:      forecast,
		Shortfall:     shortfall,
		Plan:          plan,
		Alternatives:  alternatives,
		Meta:          meta,
	}, nil
}
