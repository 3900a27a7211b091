// Package engine implements the analytical cores of the financial coach:
// subscription detection, insight generation, savings forecasting and cut
// plan optimization. Every function here is pure and deterministic; the
// reference time is always passed in by the caller.
package engine

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/stats"
)

// Periodicity bands, in days of median inter-charge interval.
var periodicityBands = []struct {
	name string
	lo   float64
	hi   float64
}{
	{"weekly", 6, 8},
	{"bi-weekly", 13, 15},
	{"monthly", 28, 32},
	{"quarterly", 85, 95},
	{"annual", 360, 370},
}

var trialPattern = regexp.MustCompile(`(?i)` + strings.Join(domain.TrialKeywords, "|"))

// chargeGroup collects expense transactions at the same merchant with
// matching amounts. The representative amount is the first transaction's.
type chargeGroup struct {
	merchant string
	amount   float64
	txs      []domain.Transaction
}

// DetectSubscriptions scans transactions for recurring charges and returns
// those at or above minConfidence, sorted by confidence descending. Only
// expenses (negative amounts) are considered. The now parameter anchors
// recency scoring so results are reproducible.
func DetectSubscriptions(txs []domain.Transaction, minConfidence float64, now time.Time) domain.SubscriptionsResponse {
	resp := domain.SubscriptionsResponse{
		Items:         []domain.Subscription{},
		MinConfidence: minConfidence,
	}

	var groups []*chargeGroup
	for _, t := range txs {
		if t.Amount >= 0 {
			continue
		}
		placed := false
		for _, g := range groups {
			if g.merchant == t.Merchant && domain.AmountsMatch(g.amount, t.Amount) {
				g.txs = append(g.txs, t)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, &chargeGroup{merchant: t.Merchant, amount: t.Amount, txs: []domain.Transaction{t}})
		}
	}

	for _, g := range groups {
		if sub, ok := scoreGroup(g, now); ok && sub.Confidence >= minConfidence {
			resp.Items = append(resp.Items, sub)
		}
	}

	sort.SliceStable(resp.Items, func(i, j int) bool {
		return resp.Items[i].Confidence > resp.Items[j].Confidence
	})
	resp.TotalDetected = len(resp.Items)
	return resp
}

func scoreGroup(g *chargeGroup, now time.Time) (domain.Subscription, bool) {
	if len(g.txs) < 2 {
		return domain.Subscription{}, false
	}

	sorted := make([]domain.Transaction, len(g.txs))
	copy(sorted, g.txs)
	domain.SortByDate(sorted)

	deltas := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		deltas = append(deltas, float64(domain.DaysBetween(sorted[i-1].Date, sorted[i].Date)))
	}

	medianInterval := stats.Median(deltas)
	madInterval := stats.MeanAbsDeviation(deltas)

	subType := ""
	for _, band := range periodicityBands {
		if medianInterval >= band.lo && medianInterval <= band.hi {
			subType = band.name
			break
		}
	}
	if len(sorted) < 3 || subType == "" {
		return domain.Subscription{}, false
	}

	n := len(sorted)
	periodicityStrength := stats.Clamp01(1 - madInterval/medianInterval)

	amounts := make([]float64, n)
	daysOfMonth := make([]float64, n)
	for i, t := range sorted {
		amounts[i] = math.Abs(t.Amount)
		daysOfMonth[i] = float64(t.Date.Day())
	}
	amountMean := stats.Mean(amounts)
	amountCV := 0.0
	if amountMean > 0 {
		amountCV = stats.StdDev(amounts) / amountMean
	}
	amountStability := stats.Clamp01(1 - amountCV)
	domStability := stats.Clamp01(1 - stats.StdDev(daysOfMonth)/15)

	lastCharge := sorted[n-1].Date
	daysSinceLast := domain.DaysBetween(lastCharge, now)
	recencyBoost := 0.0
	switch {
	case daysSinceLast <= 40:
		recencyBoost = 1
	case daysSinceLast <= 90:
		recencyBoost = 0.5
	}

	confidence := 0.45*periodicityStrength +
		0.25*amountStability +
		0.15*domStability +
		0.10*math.Min(1, float64(n)/4) +
		0.05*recencyBoost

	firstSeenWithin30d := len(sorted) == 1 && daysSinceLast <= 30
	hasTrialKeywords := false
	for _, t := range sorted {
		if t.Description != "" && trialPattern.MatchString(t.Description) {
			hasTrialKeywords = true
			break
		}
	}
	isGray := firstSeenWithin30d ||
		hasTrialKeywords ||
		(len(sorted) <= 2 && confidence >= 0.6)

	nextExpected := lastCharge.AddDate(0, 0, int(math.Round(medianInterval)))

	return domain.Subscription{
		Merchant:        g.merchant,
		PeriodicityDays: int(math.Round(medianInterval)),
		Type:            subType,
		MonthlyEstimate: math.Abs(g.amount),
		LastCharge:      lastCharge.Format("2006-01-02"),
		NextExpected:    nextExpected.Format("2006-01-02"),
		IsGray:          isGray,
		Confidence:      stats.Round2(confidence),
		Features: domain.SubscriptionFeatures{
			N:                   n,
			PeriodicityStrength: stats.Round2(periodicityStrength),
			AmountStability:     stats.Round2(amountStability),
			DomStability:        stats.Round2(domStability),
			RecencyBoost:        stats.Round2(recencyBoost),
		},
	}, true
}
