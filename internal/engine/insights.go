package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/stats"
)

// InsightsContext bundles everything a rule needs to run: the analyzed
// month's transactions, the previous month's for comparison, and a few
// precomputed aggregates.
type InsightsContext struct {
	CurrentTransactions   []domain.Transaction
	PrevTransactions      []domain.Transaction
	TotalExpenses         float64
	DiscretionaryExpenses float64
	DaysInMonth           int
	DayOfMonth            int
}

// insightRule is one deterministic analysis. Rules return nil when they have
// nothing worth saying.
type insightRule func(ctx InsightsContext) *domain.Insight

var coreRules = []insightRule{
	coffeeSavings,
	merchantShift,
	weekendRideshare,
	categorySpike,
	paceProjection,
	discretionaryCuts,
}

var bonusRules = []insightRule{
	noSpendStreak,
	feeDetector,
	duplicateCharges,
	newOrRisingSubscriptions,
	cashDrips,
}

// GenerateInsights runs the rule set over the context, ranks the results by
// impact and confidence, and returns at most limit insights. With
// extras == "all" the bonus rules run too. The second return value is the
// number of insights generated before truncation.
func GenerateInsights(ctx InsightsContext, limit int, extras string) ([]domain.Insight, int) {
	rules := coreRules
	if extras == "all" {
		rules = append(append([]insightRule{}, coreRules...), bonusRules...)
	}

	var generated []domain.Insight
	for _, rule := range rules {
		if insight := rule(ctx); insight != nil {
			insight.ConfidenceLabel = domain.ConfidenceLabel(insight.Confidence)
			generated = append(generated, *insight)
		}
	}

	selected := rankAndSelect(generated, ctx.TotalExpenses, limit)
	return selected, len(generated)
}

// rankAndSelect scores each insight by normalized monthly impact (60%) and
// confidence (40%), then keeps the top limit entries.
func rankAndSelect(insights []domain.Insight, totalExpenses float64, limit int) []domain.Insight {
	type scored struct {
		insight domain.Insight
		score   float64
	}
	list := make([]scored, len(insights))
	for i, insight := range insights {
		// With no expenses to normalize against the impact term is 0 and
		// confidence alone drives the ranking.
		normalized := 0.0
		if totalExpenses > 0 {
			normalized = math.Min(insight.Impact.Monthly/(totalExpenses*0.25), 1)
		}
		list[i] = scored{insight, normalized*0.6 + insight.Confidence*0.4}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})

	if limit < len(list) {
		list = list[:limit]
	}
	out := make([]domain.Insight, len(list))
	for i, s := range list {
		out[i] = s.insight
	}
	return out
}

func absAmounts(txs []domain.Transaction) []float64 {
	amounts := make([]float64, len(txs))
	for i, t := range txs {
		amounts[i] = math.Abs(t.Amount)
	}
	return amounts
}

func round(v float64) float64 {
	return math.Round(v)
}

func coffeeSavings(ctx InsightsContext) *domain.Insight {
	var coffee []domain.Transaction
	for _, t := range ctx.CurrentTransactions {
		if domain.IsCoffee(t) {
			coffee = append(coffee, t)
		}
	}
	if len(coffee) == 0 {
		return nil
	}

	cups := len(coffee)
	avgStorePrice := stats.Mean(absAmounts(coffee))
	const homePrice = 3.0
	monthlySaving := math.Max(0, (avgStorePrice-homePrice)*float64(cups))

	confidence := 0.4
	switch {
	case cups >= 6:
		confidence = 0.8
	case cups >= 3:
		confidence = 0.6
	}

	return &domain.Insight{
		ID:    "coffee-savings",
		Title: "Brew-at-home saves on coffee",
		Detail: fmt.Sprintf("You spent $%.0f on %d coffee purchases this month. Brewing at home could save $%.0f monthly.",
			round(avgStorePrice*float64(cups)), cups, round(monthlySaving)),
		Impact:     domain.InsightImpact{Monthly: round(monthlySaving), Annual: round(monthlySaving * 12)},
		Confidence: confidence,
		Tags:       []string{"coffee", "habits"},
		Evidence:   map[string]any{"cups": cups, "avgStorePrice": avgStorePrice, "homePrice": homePrice},
	}
}

func merchantShift(ctx InsightsContext) *domain.Insight {
	current := domain.GroupByMerchant(ctx.CurrentTransactions)
	prev := domain.GroupByMerchant(ctx.PrevTransactions)

	var maxIncrease, maxPrevSpend float64
	var maxMerchant string

	// Iterate merchants in sorted order so ties resolve deterministically.
	merchants := make([]string, 0, len(current))
	for m := range current {
		merchants = append(merchants, m)
	}
	sort.Strings(merchants)

	for _, merchant := range merchants {
		currentSpend := stats.Sum(absAmounts(current[merchant]))
		prevSpend := stats.Sum(absAmounts(prev[merchant]))
		increase := currentSpend - prevSpend
		if increase > maxIncrease {
			maxIncrease = increase
			maxMerchant = merchant
			maxPrevSpend = prevSpend
		}
	}
	if maxIncrease <= 0 {
		return nil
	}

	confidence := stats.Clamp01(maxIncrease / 100)
	redacted := domain.RedactMerchant(maxMerchant)

	context := " (new this month)"
	if maxPrevSpend > 0 {
		context = fmt.Sprintf(" (from $%.0f last month)", round(maxPrevSpend))
	}

	return &domain.Insight{
		ID:    "merchant-shift",
		Title: fmt.Sprintf("Spending spike at %s", redacted),
		Detail: fmt.Sprintf("Your spending at %s increased by $%.0f this month%s.",
			redacted, round(maxIncrease), context),
		Impact:     domain.InsightImpact{Monthly: round(maxIncrease), Annual: round(maxIncrease * 12)},
		Confidence: confidence,
		Tags:       []string{"spending", "merchants"},
		Evidence:   map[string]any{"merchant": maxMerchant, "increase": maxIncrease, "prevSpend": maxPrevSpend},
	}
}

func weekendRideshare(ctx InsightsContext) *domain.Insight {
	rides := domain.FilterByCategory(ctx.CurrentTransactions, "Rideshare")
	if len(rides) == 0 {
		return nil
	}

	var weekday, weekend []domain.Transaction
	for _, t := range rides {
		if domain.IsWeekend(t.Date) {
			weekend = append(weekend, t)
		} else {
			weekday = append(weekday, t)
		}
	}

	const weekdayDays, weekendDays = 22.0, 8.0
	weekdayAvg := stats.Sum(absAmounts(weekday)) / weekdayDays
	weekendAvg := stats.Sum(absAmounts(weekend)) / weekendDays

	if weekendAvg < 1.3*weekdayAvg {
		return nil
	}

	const savingsPerRide = 10.0
	ridesPerWeekendDay := math.Min(float64(len(weekend))/weekendDays, 2)
	monthlyImpact := math.Min(ridesPerWeekendDay*2, 4) * savingsPerRide

	confidence := stats.Clamp(float64(len(rides))/10, 0.3, 0.9)

	ratio := 0.0
	if weekdayAvg > 0 {
		ratio = weekendAvg / weekdayAvg
	}

	return &domain.Insight{
		ID:    "weekend-rideshare",
		Title: "Weekend rideshare costs add up",
		Detail: fmt.Sprintf("Weekend rideshare spending is %.0f%% higher than weekdays. Consider public transit for some weekend trips to save $%.0f monthly.",
			math.Round(ratio*100), round(monthlyImpact)),
		Impact:     domain.InsightImpact{Monthly: round(monthlyImpact), Annual: round(monthlyImpact * 12)},
		Confidence: confidence,
		Tags:       []string{"rideshare", "transportation"},
		Evidence:   map[string]any{"weekdayAvg": weekdayAvg, "weekendAvg": weekendAvg, "ridesPerWeekendDay": ridesPerWeekendDay},
	}
}

func categorySpike(ctx InsightsContext) *domain.Insight {
	current := domain.GroupByCategory(ctx.CurrentTransactions)
	prev := domain.GroupByCategory(ctx.PrevTransactions)

	categories := make([]string, 0, len(current))
	for c := range current {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var maxSpike, spikeAmount float64
	var maxCategory string

	for _, category := range categories {
		amounts := absAmounts(current[category])
		currentTotal := stats.Sum(amounts)
		prevTotal := stats.Sum(absAmounts(prev[category]))

		isSpike := false
		if len(amounts) >= 4 {
			q1, q3 := stats.Quartiles(amounts)
			threshold := q3 + 1.5*(q3-q1)
			isSpike = currentTotal > threshold
		} else {
			increase := currentTotal - prevTotal
			isSpike = increase > 0 && increase > maxSpike
		}

		if isSpike && currentTotal > maxSpike {
			maxSpike = currentTotal
			maxCategory = category
			spikeAmount = currentTotal - prevTotal
		}
	}
	if maxSpike == 0 {
		return nil
	}

	return &domain.Insight{
		ID:    "category-spike",
		Title: fmt.Sprintf("Spike in %s this month", maxCategory),
		Detail: fmt.Sprintf("Your %s spending increased by $%.0f this month. Consider if this reflects a one-time expense or a new spending pattern.",
			strings.ToLower(maxCategory), round(spikeAmount)),
		Impact:     domain.InsightImpact{Monthly: round(spikeAmount), Annual: round(spikeAmount * 12)},
		Confidence: 0.8,
		Tags:       []string{"spending", "categories"},
		Evidence:   map[string]any{"category": maxCategory, "spike": spikeAmount},
	}
}

func paceProjection(ctx InsightsContext) *domain.Insight {
	if ctx.DayOfMonth < 5 {
		return nil
	}

	current := domain.GroupByCategory(ctx.CurrentTransactions)

	categories := make([]string, 0, len(current))
	for c := range current {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var topCategory string
	var topSpend float64
	for _, category := range categories {
		if spend := stats.Sum(absAmounts(current[category])); spend > topSpend {
			topSpend = spend
			topCategory = category
		}
	}
	if topSpend == 0 {
		return nil
	}

	projected := topSpend / float64(ctx.DayOfMonth) * float64(ctx.DaysInMonth)
	prevCategorySpend := stats.Sum(absAmounts(domain.FilterByCategory(ctx.PrevTransactions, topCategory)))

	difference := math.Abs(projected - prevCategorySpend)
	confidence := stats.Clamp(float64(ctx.DayOfMonth)/15, 0.3, 0.9)

	comparison := ""
	if prevCategorySpend > 0 {
		comparison = fmt.Sprintf(" (vs $%.0f last month)", round(prevCategorySpend))
	}

	return &domain.Insight{
		ID:    "pace-projection",
		Title: fmt.Sprintf("%s spending pace", topCategory),
		Detail: fmt.Sprintf("At your current pace, you'll spend $%.0f on %s this month%s.",
			round(projected), strings.ToLower(topCategory), comparison),
		Impact:     domain.InsightImpact{Monthly: round(difference), Annual: round(difference * 12)},
		Confidence: confidence,
		Tags:       []string{"projection", "spending"},
		Evidence:   map[string]any{"category": topCategory, "projected": projected, "prevSpend": prevCategorySpend},
	}
}

func discretionaryCuts(ctx InsightsContext) *domain.Insight {
	if ctx.TotalExpenses == 0 {
		return nil
	}

	share := ctx.DiscretionaryExpenses / ctx.TotalExpenses
	if share <= 0.35 {
		return nil
	}

	suggestedCut := ctx.DiscretionaryExpenses * 0.12
	actionList := map[string]any{}
	for category := range domain.DiscretionaryCategories {
		spend := stats.Sum(absAmounts(domain.FilterByCategory(ctx.CurrentTransactions, category)))
		if spend > 0 {
			actionList[category] = math.Min(spend*0.15, suggestedCut/3)
		}
	}

	confidence := stats.Clamp(share, 0.4, 0.9)

	return &domain.Insight{
		ID:    "discretionary-cuts",
		Title: "High discretionary spending detected",
		Detail: fmt.Sprintf("%.0f%% of your spending is discretionary. Consider reducing by $%.0f monthly to improve savings.",
			math.Round(share*100), round(suggestedCut)),
		Impact:     domain.InsightImpact{Monthly: round(suggestedCut), Annual: round(suggestedCut * 12)},
		Confidence: confidence,
		Tags:       []string{"budgeting", "savings"},
		Evidence:   map[string]any{"discretionaryShare": share, "actionList": actionList},
	}
}

func noSpendStreak(ctx InsightsContext) *domain.Insight {
	var discretionary []domain.Transaction
	for _, t := range ctx.CurrentTransactions {
		if domain.IsDiscretionary(t) {
			discretionary = append(discretionary, t)
		}
	}

	daysWithSpending := map[string]bool{}
	for _, t := range discretionary {
		daysWithSpending[t.Date.Format("2006-01-02")] = true
	}

	noSpendDays := ctx.DaysInMonth - len(daysWithSpending)
	if noSpendDays < 6 {
		return nil
	}

	medianDailySpend := stats.Median(absAmounts(discretionary))
	monthlySavings := medianDailySpend * 4

	confidence := stats.Clamp(float64(noSpendDays)/10, 0.4, 0.8)

	return &domain.Insight{
		ID:    "no-spend-streak",
		Title: "Great no-spend day streak",
		Detail: fmt.Sprintf("You had %d no-spend days this month. Adding one more no-spend day per week could save $%.0f monthly.",
			noSpendDays, round(monthlySavings)),
		Impact:     domain.InsightImpact{Monthly: round(monthlySavings), Annual: round(monthlySavings * 12)},
		Confidence: confidence,
		Tags:       []string{"habits", "savings"},
		Evidence:   map[string]any{"noSpendDays": noSpendDays, "medianDailySpend": medianDailySpend},
	}
}

func feeDetector(ctx InsightsContext) *domain.Insight {
	var fees []domain.Transaction
	for _, t := range ctx.CurrentTransactions {
		if domain.ContainsKeyword(t.Merchant, domain.FeeKeywords) ||
			domain.ContainsKeyword(t.Description, domain.FeeKeywords) {
			fees = append(fees, t)
		}
	}
	if len(fees) == 0 {
		return nil
	}

	totalFees := stats.Sum(absAmounts(fees))
	confidence := stats.Clamp(float64(len(fees))/5, 0.5, 0.9)

	return &domain.Insight{
		ID:    "fee-detector",
		Title: "Bank fees detected",
		Detail: fmt.Sprintf("You paid $%.0f in fees this month. Review your account to avoid unnecessary charges.",
			round(totalFees)),
		Impact:     domain.InsightImpact{Monthly: round(totalFees), Annual: round(totalFees * 12)},
		Confidence: confidence,
		Tags:       []string{"fees", "banking"},
		Evidence:   map[string]any{"feeCount": len(fees), "totalFees": totalFees},
	}
}

func duplicateCharges(ctx InsightsContext) *domain.Insight {
	var groups [][]domain.Transaction
	processed := map[string]bool{}

	txs := ctx.CurrentTransactions
	for i := range txs {
		t1 := txs[i]
		if processed[t1.ID] {
			continue
		}
		var matches []domain.Transaction
		for j := range txs {
			t2 := txs[j]
			if t2.ID == t1.ID || processed[t2.ID] {
				continue
			}
			if domain.SameDay(t1.Date, t2.Date) &&
				t1.Merchant == t2.Merchant &&
				math.Abs(math.Abs(t1.Amount)-math.Abs(t2.Amount)) <= 1.0 {
				matches = append(matches, t2)
			}
		}
		if len(matches) > 0 {
			group := append([]domain.Transaction{t1}, matches...)
			groups = append(groups, group)
			for _, t := range group {
				processed[t.ID] = true
			}
		}
	}
	if len(groups) == 0 {
		return nil
	}

	var totalSuspected float64
	for _, group := range groups {
		totalSuspected += stats.Sum(absAmounts(group))
	}

	confidence := stats.Clamp(float64(len(groups))/3, 0.5, 0.8)

	return &domain.Insight{
		ID:    "duplicate-charges",
		Title: "Possible duplicate charges",
		Detail: fmt.Sprintf("Found %d potential duplicate charges totaling $%.0f. Review these transactions for accuracy.",
			len(groups), round(totalSuspected)),
		Impact:     domain.InsightImpact{Monthly: round(totalSuspected), Annual: round(totalSuspected * 12)},
		Confidence: confidence,
		Tags:       []string{"duplicates", "review"},
		Evidence:   map[string]any{"duplicateGroups": len(groups), "totalSuspected": totalSuspected},
	}
}

func newOrRisingSubscriptions(ctx InsightsContext) *domain.Insight {
	current := domain.FilterByCategory(ctx.CurrentTransactions, "Subscriptions")
	if len(current) == 0 {
		return nil
	}

	currentTotal := stats.Sum(absAmounts(current))
	prevTotal := stats.Sum(absAmounts(domain.FilterByCategory(ctx.PrevTransactions, "Subscriptions")))

	increase := currentTotal - prevTotal
	if increase <= 0 {
		return nil
	}

	confidence := stats.Clamp(increase/50, 0.4, 0.8)

	return &domain.Insight{
		ID:    "new-subscriptions",
		Title: "New or increased subscriptions",
		Detail: fmt.Sprintf("Your subscription spending increased by $%.0f this month. Review if all services are still needed.",
			round(increase)),
		Impact:     domain.InsightImpact{Monthly: round(increase), Annual: round(increase * 12)},
		Confidence: confidence,
		Tags:       []string{"subscriptions", "review"},
		Evidence:   map[string]any{"currentTotal": currentTotal, "prevTotal": prevTotal, "increase": increase},
	}
}

func cashDrips(ctx InsightsContext) *domain.Insight {
	var drips []domain.Transaction
	for _, t := range domain.FilterByAmountRange(ctx.CurrentTransactions, 0, 10) {
		if domain.IsDiscretionary(t) {
			drips = append(drips, t)
		}
	}
	if len(drips) < 8 {
		return nil
	}

	medianDrip := stats.Median(absAmounts(drips))
	suggestedReduction := int(math.Min(3, math.Floor(float64(len(drips))/4)))
	monthlyImpact := float64(suggestedReduction) * medianDrip

	confidence := stats.Clamp(float64(len(drips))/15, 0.4, 0.7)

	return &domain.Insight{
		ID:    "cash-drips",
		Title: "Small purchases add up",
		Detail: fmt.Sprintf("You made %d small purchases under $10. Skipping %d per week could save $%.0f monthly.",
			len(drips), suggestedReduction, round(monthlyImpact)),
		Impact:     domain.InsightImpact{Monthly: round(monthlyImpact), Annual: round(monthlyImpact * 12)},
		Confidence: confidence,
		Tags:       []string{"small-purchases", "habits"},
		Evidence:   map[string]any{"dripCount": len(drips), "medianDrip": medianDrip, "suggestedReduction": suggestedReduction},
	}
}
