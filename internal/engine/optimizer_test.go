package engine_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/engine"
)

func TestOptimizeCutPlan_EasiestCategoryFirst(t *testing.T) {
	// Steady histories keep volatility at zero, so ranking reduces to
	// essentialness: Coffee (0.2) beats Restaurants (0.3) at equal spend.
	history := map[string][]float64{
		"Coffee":      {100, 100, 100},
		"Restaurants": {100, 100, 100},
	}
	spends := map[string]float64{"Coffee": 100, "Restaurants": 100}

	plan, _ := engine.OptimizeCutPlan(history, spends, 60, nil)
	if len(plan) != 2 {
		t.Fatalf("plan has %d items, want 2", len(plan))
	}
	if plan[0].Category != "Coffee" {
		t.Errorf("first cut = %s, want Coffee", plan[0].Category)
	}
	// Coffee is capped at 35% of 100, the rest falls to Restaurants.
	if plan[0].ProposedCut != 35 {
		t.Errorf("coffee cut = %v, want 35", plan[0].ProposedCut)
	}
	if plan[1].ProposedCut != 25 {
		t.Errorf("restaurants cut = %v, want 25", plan[1].ProposedCut)
	}
}

func TestOptimizeCutPlan_MaxCutCap(t *testing.T) {
	spends := map[string]float64{"Coffee": 100}

	plan, _ := engine.OptimizeCutPlan(nil, spends, 1000, nil)
	if len(plan) != 1 {
		t.Fatalf("plan has %d items, want 1", len(plan))
	}
	if plan[0].ProposedCut != 35 {
		t.Errorf("cut = %v, want 35%% cap", plan[0].ProposedCut)
	}
}

func TestOptimizeCutPlan_StopsOnceCovered(t *testing.T) {
	spends := map[string]float64{
		"Coffee":        200,
		"Restaurants":   200,
		"Entertainment": 200,
	}

	plan, _ := engine.OptimizeCutPlan(nil, spends, 50, nil)
	if len(plan) != 1 {
		t.Fatalf("plan has %d items, want 1 once shortfall is covered", len(plan))
	}
	if plan[0].ProposedCut != 50 {
		t.Errorf("cut = %v, want the remaining 50", plan[0].ProposedCut)
	}
}

func TestOptimizeCutPlan_RationaleAndActions(t *testing.T) {
	plan, _ := engine.OptimizeCutPlan(nil, map[string]float64{"Coffee": 100}, 20, nil)
	if len(plan) != 1 {
		t.Fatal("expected one plan item")
	}
	if !strings.Contains(plan[0].Rationale, "brewing more at home") {
		t.Errorf("unexpected rationale: %s", plan[0].Rationale)
	}
	want := []string{"Brew at home 3 times per week", "Keep 2 cafe visits as treats"}
	if !reflect.DeepEqual(plan[0].MicroActions, want) {
		t.Errorf("micro actions = %v", plan[0].MicroActions)
	}
}

func TestOptimizeCutPlan_UnknownCategoryFallbacks(t *testing.T) {
	plan, _ := engine.OptimizeCutPlan(nil, map[string]float64{"Gadgets": 100}, 20, nil)
	if len(plan) != 1 {
		t.Fatal("expected one plan item")
	}
	if !strings.Contains(plan[0].Rationale, "Reduce gadgets spending") {
		t.Errorf("unexpected rationale: %s", plan[0].Rationale)
	}
	if len(plan[0].MicroActions) != 2 {
		t.Errorf("micro actions = %v", plan[0].MicroActions)
	}
}

func TestOptimizeCutPlan_GrayAlternatives(t *testing.T) {
	gray := []domain.Subscription{
		{Merchant: "Mystery Box Club", MonthlyEstimate: 14.99, IsGray: true},
	}
	plan, alternatives := engine.OptimizeCutPlan(nil, nil, 0, gray)
	if len(plan) != 0 {
		t.Errorf("no shortfall should produce an empty plan, got %v", plan)
	}
	if len(alternatives.CancelSubscriptions) != 1 {
		t.Fatalf("alternatives = %+v", alternatives)
	}
	got := alternatives.CancelSubscriptions[0]
	if got.Label != "Mystery Box Club" || got.Save != 15 {
		t.Errorf("alternative = %+v, want Mystery Box Club saving 15", got)
	}
}

func TestOptimizeCutPlan_TiesBreakByName(t *testing.T) {
	spends := map[string]float64{"Zeta": 100, "Alpha": 100}

	plan, _ := engine.OptimizeCutPlan(nil, spends, 200, nil)
	if len(plan) != 2 {
		t.Fatalf("plan has %d items, want 2", len(plan))
	}
	if plan[0].Category != "Alpha" || plan[1].Category != "Zeta" {
		t.Errorf("order = [%s, %s], want alphabetical on ties", plan[0].Category, plan[1].Category)
	}
}
