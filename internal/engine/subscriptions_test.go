package engine_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/engine"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// recurringCharges builds n charges at the given merchant, amount and fixed
// interval starting at start.
func recurringCharges(merchant string, amount float64, start time.Time, intervalDays, n int) []domain.Transaction {
	txs := make([]domain.Transaction, n)
	for i := 0; i < n; i++ {
		txs[i] = domain.Transaction{
			ID:       merchant + "-" + string(rune('a'+i)),
			Date:     start.AddDate(0, 0, i*intervalDays),
			Amount:   amount,
			Merchant: merchant,
			Category: "Subscriptions",
		}
	}
	return txs
}

func TestDetectSubscriptions_MonthlyCharge(t *testing.T) {
	txs := recurringCharges("Netflix", -15.99, date("2025-01-05"), 30, 6)
	now := date("2025-06-10")

	resp := engine.DetectSubscriptions(txs, 0.6, now)

	if resp.TotalDetected != 1 {
		t.Fatalf("expected 1 subscription, got %d", resp.TotalDetected)
	}
	sub := resp.Items[0]
	if sub.Merchant != "Netflix" {
		t.Errorf("merchant = %s", sub.Merchant)
	}
	if sub.Type != "monthly" {
		t.Errorf("type = %s, want monthly", sub.Type)
	}
	if sub.PeriodicityDays != 30 {
		t.Errorf("periodicityDays = %d, want 30", sub.PeriodicityDays)
	}
	if sub.IsGray {
		t.Error("six stable charges should not be gray")
	}
	if sub.Confidence <= 0.6 {
		t.Errorf("confidence = %v, want > 0.6", sub.Confidence)
	}
	if sub.MonthlyEstimate != 15.99 {
		t.Errorf("monthlyEstimate = %v, want 15.99", sub.MonthlyEstimate)
	}
	if sub.LastCharge != "2025-06-04" {
		t.Errorf("lastCharge = %s", sub.LastCharge)
	}
	if sub.NextExpected != "2025-07-04" {
		t.Errorf("nextExpected = %s", sub.NextExpected)
	}
	if sub.Features.N != 6 {
		t.Errorf("features.n = %d", sub.Features.N)
	}
}

func TestDetectSubscriptions_WeeklyCharge(t *testing.T) {
	txs := recurringCharges("Blue Apron", -59.99, date("2025-04-07"), 7, 5)
	resp := engine.DetectSubscriptions(txs, 0.5, date("2025-05-10"))

	if resp.TotalDetected != 1 {
		t.Fatalf("expected 1 subscription, got %d", resp.TotalDetected)
	}
	if resp.Items[0].Type != "weekly" {
		t.Errorf("type = %s, want weekly", resp.Items[0].Type)
	}
}

func TestDetectSubscriptions_TrialKeywordIsGray(t *testing.T) {
	for _, keyword := range domain.TrialKeywords {
		txs := recurringCharges("StreamPlus", -9.99, date("2025-03-01"), 30, 3)
		txs[0].Description = "Signup " + strings.ToUpper(keyword) + " offer"

		resp := engine.DetectSubscriptions(txs, 0, date("2025-05-05"))
		if resp.TotalDetected != 1 {
			t.Fatalf("keyword %s: expected 1 subscription, got %d", keyword, resp.TotalDetected)
		}
		if !resp.Items[0].IsGray {
			t.Errorf("keyword %s should mark subscription gray", keyword)
		}
	}
}

func TestDetectSubscriptions_TwoChargesDoNotQualify(t *testing.T) {
	txs := recurringCharges("ShortLived", -4.99, date("2025-04-01"), 30, 2)
	resp := engine.DetectSubscriptions(txs, 0, date("2025-05-10"))
	if resp.TotalDetected != 0 {
		t.Errorf("expected no subscriptions from 2 charges, got %d", resp.TotalDetected)
	}
}

func TestDetectSubscriptions_IrregularIntervalsRejected(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "1", Date: date("2025-01-03"), Amount: -25, Merchant: "Cafe"},
		{ID: "2", Date: date("2025-01-20"), Amount: -25, Merchant: "Cafe"},
		{ID: "3", Date: date("2025-03-11"), Amount: -25, Merchant: "Cafe"},
	}
	resp := engine.DetectSubscriptions(txs, 0, date("2025-04-01"))
	if resp.TotalDetected != 0 {
		t.Errorf("irregular intervals should not qualify, got %d", resp.TotalDetected)
	}
}

func TestDetectSubscriptions_IncomeIgnored(t *testing.T) {
	txs := recurringCharges("Employer", 3000, date("2025-01-01"), 30, 6)
	resp := engine.DetectSubscriptions(txs, 0, date("2025-06-10"))
	if resp.TotalDetected != 0 {
		t.Errorf("income should be ignored, got %d", resp.TotalDetected)
	}
}

func TestDetectSubscriptions_EmptyInput(t *testing.T) {
	resp := engine.DetectSubscriptions(nil, 0.6, date("2025-06-01"))
	if resp.TotalDetected != 0 || len(resp.Items) != 0 {
		t.Errorf("expected empty result, got %+v", resp)
	}
	if resp.MinConfidence != 0.6 {
		t.Errorf("minConfidence = %v", resp.MinConfidence)
	}
}

func TestDetectSubscriptions_ThresholdMonotonicity(t *testing.T) {
	var txs []domain.Transaction
	txs = append(txs, recurringCharges("Netflix", -15.99, date("2025-01-05"), 30, 6)...)
	txs = append(txs, recurringCharges("Gym", -45.00, date("2025-02-01"), 31, 4)...)
	txs = append(txs, recurringCharges("Cloud", -2.99, date("2025-01-10"), 29, 3)...)
	now := date("2025-06-15")

	prevCount := len(txs) + 1
	for _, threshold := range []float64{0, 0.3, 0.6, 0.8, 0.95} {
		resp := engine.DetectSubscriptions(txs, threshold, now)
		if resp.TotalDetected > prevCount {
			t.Errorf("count increased when threshold rose to %v", threshold)
		}
		for _, sub := range resp.Items {
			if sub.Confidence < threshold {
				t.Errorf("item %s below threshold %v: %v", sub.Merchant, threshold, sub.Confidence)
			}
			if sub.Confidence < 0 || sub.Confidence > 1 {
				t.Errorf("confidence out of bounds: %v", sub.Confidence)
			}
		}
		prevCount = resp.TotalDetected
	}
}

func TestDetectSubscriptions_SortedByConfidence(t *testing.T) {
	var txs []domain.Transaction
	txs = append(txs, recurringCharges("Stable", -10, date("2025-01-01"), 30, 6)...)
	// Wobbly amounts lower the stability features.
	wobbly := recurringCharges("Wobbly", -10, date("2025-01-03"), 30, 4)
	wobbly[1].Amount = -10.80
	wobbly[2].Amount = -9.30
	txs = append(txs, wobbly...)

	resp := engine.DetectSubscriptions(txs, 0, date("2025-06-10"))
	for i := 1; i < len(resp.Items); i++ {
		if resp.Items[i].Confidence > resp.Items[i-1].Confidence {
			t.Error("items not sorted by confidence descending")
		}
	}
}

func TestDetectSubscriptions_Deterministic(t *testing.T) {
	var txs []domain.Transaction
	txs = append(txs, recurringCharges("Netflix", -15.99, date("2025-01-05"), 30, 6)...)
	txs = append(txs, recurringCharges("Spotify", -9.99, date("2025-01-12"), 30, 5)...)
	now := date("2025-06-15")

	first := engine.DetectSubscriptions(txs, 0.5, now)
	second := engine.DetectSubscriptions(txs, 0.5, now)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated invocations differ")
	}
}
