package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/stats"
)

// categoryMetrics holds the scoring inputs for one cut-plan candidate.
type categoryMetrics struct {
	category       string
	monthlySpend   float64
	pain           float64
	maxCut         float64
	savingsPerPain float64
}

// volatility is the coefficient of variation of a category's monthly
// spend history.
func volatility(monthlySpends []float64) float64 {
	if len(monthlySpends) == 0 {
		return 0
	}
	mean := stats.Mean(monthlySpends)
	if mean == 0 {
		return 0
	}
	return stats.StdDev(monthlySpends) / mean
}

func painScore(essentialness, vol float64) float64 {
	volatilityFactor := 1 - math.Min(1, 1/(1+vol))
	return 0.5*essentialness + 0.5*volatilityFactor
}

func cutRationale(category string, proposedCut, monthlySpend float64) string {
	percentage := math.Round(proposedCut / monthlySpend * 100)
	cut := math.Round(proposedCut)

	switch category {
	case "Restaurants":
		return fmt.Sprintf("Reduce dining out by $%.0f (%.0f%%) while maintaining some social meals", cut, percentage)
	case "Coffee":
		return fmt.Sprintf("Cut coffee spending by $%.0f (%.0f%%) by brewing more at home", cut, percentage)
	case "Rideshare":
		return fmt.Sprintf("Reduce rideshare costs by $%.0f (%.0f%%) using alternative transportation", cut, percentage)
	case "Entertainment":
		return fmt.Sprintf("Lower entertainment spending by $%.0f (%.0f%%) with more free activities", cut, percentage)
	case "Subscriptions":
		return fmt.Sprintf("Trim subscription costs by $%.0f (%.0f%%) by pausing unused services", cut, percentage)
	default:
		return fmt.Sprintf("Reduce %s spending by $%.0f (%.0f%%)", strings.ToLower(category), cut, percentage)
	}
}

// OptimizeCutPlan proposes per-category spending cuts covering shortfall.
// Categories are ranked by savings-per-pain so the easiest money comes
// first, and no category is cut more than 35% of its current spend. Gray
// subscriptions are returned as zero-effort alternatives alongside the plan.
func OptimizeCutPlan(
	categoryHistory map[string][]float64,
	currentSpends map[string]float64,
	shortfall float64,
	graySubs []domain.Subscription,
) ([]domain.CutPlanItem, domain.GoalAlternatives) {
	metrics := make([]categoryMetrics, 0, len(currentSpends))
	for category, spend := range currentSpends {
		essentialness, ok := domain.EssentialnessScores[category]
		if !ok {
			essentialness = domain.DefaultEssentialness
		}
		pain := painScore(essentialness, volatility(categoryHistory[category]))
		maxCut := 0.35 * spend
		metrics = append(metrics, categoryMetrics{
			category:       category,
			monthlySpend:   spend,
			pain:           pain,
			maxCut:         maxCut,
			savingsPerPain: maxCut / (pain + 0.05),
		})
	}

	sort.SliceStable(metrics, func(i, j int) bool {
		if metrics[i].savingsPerPain != metrics[j].savingsPerPain {
			return metrics[i].savingsPerPain > metrics[j].savingsPerPain
		}
		return metrics[i].category < metrics[j].category
	})

	plan := []domain.CutPlanItem{}
	remaining := shortfall
	for _, m := range metrics {
		if remaining <= 0 {
			break
		}
		proposedCut := math.Min(remaining, m.maxCut)
		if proposedCut <= 0 {
			continue
		}
		plan = append(plan, domain.CutPlanItem{
			Category:     m.category,
			ProposedCut:  math.Round(proposedCut),
			Rationale:    cutRationale(m.category, proposedCut, m.monthlySpend),
			MicroActions: domain.MicroActionsFor(m.category),
		})
		remaining -= proposedCut
	}

	alternatives := domain.GoalAlternatives{CancelSubscriptions: []domain.GraySubscription{}}
	for _, sub := range graySubs {
		alternatives.CancelSubscriptions = append(alternatives.CancelSubscriptions, domain.GraySubscription{
			Label: sub.Merchant,
			Save:  math.Round(sub.MonthlyEstimate),
		})
	}

	return plan, alternatives
}
