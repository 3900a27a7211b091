// Package domain defines the core business entities for the financial coach.
// These models are independent of external services and represent the
// canonical data structures used throughout the coaching engines.
package domain

import "time"

// ============================================================
// Transactions
// ============================================================

// Transaction represents a single financial transaction.
// Amounts are signed: positive = income/credit, negative = expense/debit.
// Engines never mutate transactions; they only read.
type Transaction struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Merchant    string    `json:"merchant"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
}

// ============================================================
// Subscription detection
// ============================================================

// SubscriptionFeatures is the per-group feature breakdown behind a
// subscription's confidence score.
type SubscriptionFeatures struct {
	N                   int     `json:"n"`
	PeriodicityStrength float64 `json:"periodicityStrength"`
	AmountStability     float64 `json:"amountStability"`
	DomStability        float64 `json:"domStability"`
	RecencyBoost        float64 `json:"recencyBoost"`
}

// Subscription is a detected recurring charge.
type Subscription struct {
	Merchant        string               `json:"merchant"`
	PeriodicityDays int                  `json:"periodicityDays"`
	Type            string               `json:"subscriptionType"` // weekly, bi-weekly, monthly, quarterly, annual
	MonthlyEstimate float64              `json:"monthlyEstimate"`
	LastCharge      string               `json:"lastCharge"`   // YYYY-MM-DD
	NextExpected    string               `json:"nextExpected"` // YYYY-MM-DD
	IsGray          bool                 `json:"isGray"`
	Confidence      float64              `json:"confidence"`
	Features        SubscriptionFeatures `json:"features"`
}

// SubscriptionsResponse is returned by the subscriptions endpoint.
type SubscriptionsResponse struct {
	Items         []Subscription `json:"items"`
	MinConfidence float64        `json:"minConfidence"`
	TotalDetected int            `json:"totalDetected"`
}

// GraySubscription is a gray charge surfaced as a zero-effort "cancel this"
// alternative by the goals engine.
type GraySubscription struct {
	Label string  `json:"label"`
	Save  float64 `json:"save"`
}

// ============================================================
// Insights
// ============================================================

// InsightImpact estimates the money at stake for an insight.
type InsightImpact struct {
	Monthly float64 `json:"monthly"`
	Annual  float64 `json:"annual"`
}

// Insight is one generated spending observation. ID is a stable slug
// identifying the rule that produced it.
type Insight struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Detail          string         `json:"detail"`
	Impact          InsightImpact  `json:"impact"`
	Confidence      float64        `json:"confidence"`
	ConfidenceLabel string         `json:"confidenceLabel"`
	Tags            []string       `json:"tags"`
	Evidence        map[string]any `json:"evidence,omitempty"`
}

// InsightSelection counts how many insights were generated vs returned.
type InsightSelection struct {
	Generated int `json:"generated"`
	Returned  int `json:"returned"`
}

// InsightsMeta carries context about the analyzed month.
type InsightsMeta struct {
	TxCount               int              `json:"txCount"`
	HasPrevMonth          bool             `json:"hasPrevMonth"`
	TotalExpenses         float64          `json:"totalExpenses"`
	DiscretionaryExpenses float64          `json:"discretionaryExpenses"`
	Selection             InsightSelection `json:"selection"`
	Debug                 map[string]any   `json:"debug,omitempty"`
}

// InsightsResponse is returned by the insights endpoint.
type InsightsResponse struct {
	Month    string       `json:"month"`
	Insights []Insight    `json:"insights"`
	Meta     InsightsMeta `json:"meta"`
}

// ============================================================
// Goals & forecasting
// ============================================================

// MonthlyData is a per-month aggregate over the trailing window analyzed.
// Month is a 0-based index, most recent last.
type MonthlyData struct {
	Month    int     `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Savings  float64 `json:"savings"`
}

// ForecastInterval is a ±1σ band around the forecast, floored at zero.
type ForecastInterval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ForecastResult is the output of the savings forecaster.
type ForecastResult struct {
	Method             string           `json:"method"` // mean, regression, expSmooth
	Savings            float64          `json:"savings"`
	Interval           ForecastInterval `json:"interval"`
	ProbabilityOnTrack float64          `json:"probabilityOnTrack"`
}

// CutPlanItem is one proposed category cut in a savings plan.
type CutPlanItem struct {
	Category     string   `json:"category"`
	ProposedCut  float64  `json:"proposedCut"`
	Rationale    string   `json:"rationale"`
	MicroActions []string `json:"microActions"`
}

// GoalAlternatives lists zero-effort savings options alongside a cut plan.
type GoalAlternatives struct {
	CancelSubscriptions []GraySubscription `json:"cancelSubscriptions"`
}

// GoalsRequest is the body for the goals endpoint. Exactly one of Months
// or By must be set.
type GoalsRequest struct {
	TargetAmount float64 `json:"targetAmount"`
	Months       int     `json:"months,omitempty"`
	By           string  `json:"by,omitempty"` // YYYY-MM-DD
	Extras       string  `json:"extras,omitempty"`
}

// GoalsMeta describes how the forecast was produced. EvaluationID is a
// fresh id for correlating an evaluation across logs and traces.
type GoalsMeta struct {
	EvaluationID   string         `json:"evaluationId"`
	MonthsAnalyzed int            `json:"monthsAnalyzed"`
	MethodTried    []string       `json:"methodTried"`
	Chosen         string         `json:"chosen"`
	Debug          map[string]any `json:"debug,omitempty"`
}

// GoalsResponse is the full goal feasibility evaluation.
type GoalsResponse struct {
	OnTrack       bool             `json:"onTrack"`
	MonthlyTarget float64          `json:"monthlyTarget"`
	Forecast      ForecastResult   `json:"forecast"`
	Shortfall     float64          `json:"shortfall"`
	Plan          []CutPlanItem    `json:"plan"`
	Alternatives  GoalAlternatives `json:"alternatives"`
	Meta          GoalsMeta        `json:"meta"`
}

// ============================================================
// Health & Metrics API responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// EngineMetrics is returned by GET /v1/metrics/engines.
type EngineMetrics struct {
	SubscriptionRuns float64 `json:"subscriptionRuns"`
	InsightRuns      float64 `json:"insightRuns"`
	GoalRuns         float64 `json:"goalRuns"`
	ErrorRate        float64 `json:"errorRate"`
	CacheHitRate     float64 `json:"cacheHitRate"`
	Period           string  `json:"period"`
}

// ConfidenceLabel buckets a confidence score for display.
func ConfidenceLabel(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "High"
	case confidence >= 0.6:
		return "Medium"
	default:
		return "Low"
	}
}
