package domain

import "strings"

// Discretionary spending categories targeted by cut plans and
// discretionary-share insights.
var DiscretionaryCategories = map[string]bool{
	"Restaurants":   true,
	"Coffee":        true,
	"Rideshare":     true,
	"Entertainment": true,
	"Subscriptions": true,
}

// EssentialnessScores express how painful a category is to cut, 0 = easy,
// 1 = essential. Categories not listed default to 0.5.
var EssentialnessScores = map[string]float64{
	"Restaurants":   0.3,
	"Coffee":        0.2,
	"Rideshare":     0.4,
	"Entertainment": 0.3,
	"Subscriptions": 0.5,
}

// DefaultEssentialness applies to categories without an explicit score.
const DefaultEssentialness = 0.5

// merchantRedactions maps known merchant names to generic labels so insight
// text never leaks exact merchant identities.
var merchantRedactions = map[string]string{
	"starbucks":     "coffee shop",
	"dunkin":        "coffee shop",
	"dunkin donuts": "coffee shop",
	"peet's coffee": "coffee shop",
	"local coffee":  "coffee shop",
	"netflix":       "streaming service",
	"spotify":       "music service",
	"amazon":        "online retailer",
	"apple icloud":  "cloud storage",
	"uber":          "rideshare service",
	"lyft":          "rideshare service",
	"whole foods":   "grocery store",
	"target":        "retail store",
	"costco":        "wholesale store",
	"chipotle":      "restaurant",
	"sweetgreen":    "restaurant",
	"panera":        "restaurant",
	"mcdonald's":    "restaurant",
	"subway":        "restaurant",
	"olive garden":  "restaurant",
	"local bistro":  "restaurant",
	"shell":         "gas station",
	"cvs":           "pharmacy",
	"employer":      "employer",
}

// RedactMerchant returns a generic label for a merchant name, falling back
// to "a service" for unknown merchants. Lookup is exact so the same name
// always maps to the same label.
func RedactMerchant(merchant string) string {
	if label, ok := merchantRedactions[strings.ToLower(strings.TrimSpace(merchant))]; ok {
		return label
	}
	return "a service"
}

// CoffeeMerchantKeywords identify coffee purchases outside the Coffee category.
var CoffeeMerchantKeywords = []string{"starbucks", "dunkin", "coffee", "peet's"}

// FeeKeywords identify bank and service fees in merchant or description text.
var FeeKeywords = []string{"fee", "atm fee", "overdraft", "service fee"}

// TrialKeywords mark transactions that look like trial or promo charges.
var TrialKeywords = []string{"trial", "renewal", "promo"}

// ContainsKeyword reports whether text contains any of the keywords,
// case-insensitively.
func ContainsKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsCoffee reports whether a transaction is a coffee purchase.
func IsCoffee(t Transaction) bool {
	return t.Category == "Coffee" || ContainsKeyword(t.Merchant, CoffeeMerchantKeywords)
}

// IsDiscretionary reports whether a transaction falls in a discretionary
// spending category.
func IsDiscretionary(t Transaction) bool {
	return DiscretionaryCategories[t.Category]
}

// CategoryMicroActions suggests concrete steps for cutting each category.
var CategoryMicroActions = map[string][]string{
	"Restaurants": {
		"Cap dining-out to 2 times per week",
		"Swap 1 meal per week to home-cooked",
	},
	"Coffee": {
		"Brew at home 3 times per week",
		"Keep 2 cafe visits as treats",
	},
	"Rideshare": {
		"Replace 2 weekend rides with transit",
		"Consider carpooling for regular trips",
	},
	"Entertainment": {
		"Skip one ticketed event this month",
		"Use free or low-cost entertainment options",
	},
	"Subscriptions": {
		"Pause or downgrade 1 subscription plan",
		"Review and cancel unused trial subscriptions",
	},
}

// MicroActionsFor returns cut suggestions for a category.
func MicroActionsFor(category string) []string {
	if actions, ok := CategoryMicroActions[category]; ok {
		return actions
	}
	return []string{
		"Reduce " + strings.ToLower(category) + " spending",
		"Look for cost-saving alternatives",
	}
}
