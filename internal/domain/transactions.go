package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// MonthRange parses a "YYYY-MM" string into the half-open interval
// [first of month, first of next month) in UTC.
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, &ErrValidation{
			Field:   "month",
			Message: fmt.Sprintf("must be YYYY-MM, got %q", month),
		}
	}
	return start, start.AddDate(0, 1, 0), nil
}

// PrevMonth returns the "YYYY-MM" string of the month before the given one.
// The input must already be validated.
func PrevMonth(month string) string {
	start, _ := time.Parse("2006-01", month)
	return start.AddDate(0, -1, 0).Format("2006-01")
}

// DaysInMonth returns the number of calendar days in a "YYYY-MM" month.
func DaysInMonth(month string) int {
	start, _ := time.Parse("2006-01", month)
	return start.AddDate(0, 1, -1).Day()
}

// IsWeekend reports whether a date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DaysBetween returns the number of days from a to b, rounding any partial
// day up. Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(math.Ceil(b.Sub(a).Hours() / 24))
}

// FilterByDateRange returns transactions with from <= Date < to.
func FilterByDateRange(txs []Transaction, from, to time.Time) []Transaction {
	var out []Transaction
	for _, t := range txs {
		if !t.Date.Before(from) && t.Date.Before(to) {
			out = append(out, t)
		}
	}
	return out
}

// FilterByCategory returns transactions in the given category.
func FilterByCategory(txs []Transaction, category string) []Transaction {
	var out []Transaction
	for _, t := range txs {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// FilterByAmountRange returns transactions whose absolute amount lies in
// [min, max).
func FilterByAmountRange(txs []Transaction, min, max float64) []Transaction {
	var out []Transaction
	for _, t := range txs {
		abs := math.Abs(t.Amount)
		if abs >= min && abs < max {
			out = append(out, t)
		}
	}
	return out
}

// GroupByMerchant buckets transactions by exact merchant name.
func GroupByMerchant(txs []Transaction) map[string][]Transaction {
	groups := make(map[string][]Transaction)
	for _, t := range txs {
		groups[t.Merchant] = append(groups[t.Merchant], t)
	}
	return groups
}

// GroupByCategory buckets transactions by category.
func GroupByCategory(txs []Transaction) map[string][]Transaction {
	groups := make(map[string][]Transaction)
	for _, t := range txs {
		groups[t.Category] = append(groups[t.Category], t)
	}
	return groups
}

// GroupByMonth buckets transactions by their "YYYY-MM" month key.
func GroupByMonth(txs []Transaction) map[string][]Transaction {
	groups := make(map[string][]Transaction)
	for _, t := range txs {
		key := t.Date.Format("2006-01")
		groups[key] = append(groups[key], t)
	}
	return groups
}

// SortedMonthKeys returns the keys of a month-grouped map in ascending
// chronological order.
func SortedMonthKeys(groups map[string][]Transaction) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TotalIncome sums positive amounts.
func TotalIncome(txs []Transaction) float64 {
	var sum float64
	for _, t := range txs {
		if t.Amount > 0 {
			sum += t.Amount
		}
	}
	return sum
}

// TotalExpenses sums the absolute values of negative amounts.
func TotalExpenses(txs []Transaction) float64 {
	var sum float64
	for _, t := range txs {
		if t.Amount < 0 {
			sum += -t.Amount
		}
	}
	return sum
}

// AmountsMatch reports whether two amounts are close enough to belong to the
// same recurring charge. The tolerance is the looser of 2% of the larger
// absolute amount or one dollar.
func AmountsMatch(a, b float64) bool {
	absA, absB := math.Abs(a), math.Abs(b)
	tolerance := math.Max(0.02*math.Max(absA, absB), 1.0)
	return math.Abs(absA-absB) <= tolerance
}

// SortByDate orders transactions ascending by date, in place.
func SortByDate(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})
}
