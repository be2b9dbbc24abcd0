// Package billing holds the quote/invoice arithmetic: line-item subtotals,
// totals with fees and taxes, quote-vs-invoice variance, deposits and the
// confidence-based quote ranking. Everything here is a pure function over
// plain inputs; validation of the inputs is the caller's job.
package billing

import (
	"math"
	"sort"
)

const (
	// DefaultTaxRate is applied when the caller passes no explicit rate.
	DefaultTaxRate = 0.08
	// DefaultDepositPercent is the upfront share of the estimated total.
	DefaultDepositPercent = 20.0
	// DefaultVarianceTolerance is the fraction beyond which an invoice is
	// considered to have drifted from its quote.
	DefaultVarianceTolerance = 0.15
)

// LineItem is the calculation-side view of a billable unit.
type LineItem struct {
	Description string
	PartCost    float64
	Quantity    int
	LaborHours  float64
	LaborRate   float64
}

// Totals is the computed money breakdown shared by quotes and invoices.
type Totals struct {
	PartsCostTotal float64 `json:"partsCostTotal"`
	LaborCostTotal float64 `json:"laborCostTotal"`
	ShopFees       float64 `json:"shopFees"`
	Subtotal       float64 `json:"subtotal"`
	Taxes          float64 `json:"taxes"`
	Total          float64 `json:"total"`
}

// Round2 rounds to two decimal places, half up on the cent.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// LineItemSubtotal returns partCost*quantity + laborHours*laborRate.
func LineItemSubtotal(item LineItem) float64 {
	return Round2(item.PartCost*float64(item.Quantity) + item.LaborHours*item.LaborRate)
}

// CalculateTotals sums the line items, adds shop fees and applies taxRate.
// An empty item slice yields zero parts/labor totals; fees and taxes still
// apply on the remaining base.
func CalculateTotals(items []LineItem, shopFees, taxRate float64) Totals {
	var parts, labor float64
	for _, item := range items {
		parts += item.PartCost * float64(item.Quantity)
		labor += item.LaborHours * item.LaborRate
	}

	subtotal := parts + labor + shopFees
	taxes := subtotal * taxRate

	return Totals{
		PartsCostTotal: Round2(parts),
		LaborCostTotal: Round2(labor),
		ShopFees:       Round2(shopFees),
		Subtotal:       Round2(subtotal),
		Taxes:          Round2(taxes),
		Total:          Round2(subtotal + taxes),
	}
}

// Variance returns the percentage difference between an invoice total and
// the quote it came from. A zero quote total returns 0: there is nothing
// meaningful to compare against, and surfacing +Inf to callers would be
// worse than reporting no drift.
func Variance(quoteTotal, invoiceTotal float64) float64 {
	if quoteTotal == 0 {
		return 0
	}
	return Round2((invoiceTotal - quoteTotal) / quoteTotal * 100)
}

// OverTolerance reports whether a variance (in percent) exceeds the
// tolerance (a fraction, e.g. 0.15 for 15%). The unit mismatch is part of
// the contract; callers must not pass the tolerance as a percent.
func OverTolerance(variance, tolerance float64) bool {
	return math.Abs(variance) > tolerance*100
}

// Deposit returns the upfront payment for an estimated total.
func Deposit(estimatedTotal, depositPercent float64) float64 {
	return Round2(estimatedTotal * depositPercent / 100)
}

// EstimatedRange derives a min/max band around a total from the shop's
// confidence score: full confidence collapses the band to the total, lower
// confidence widens it by up to 25% either way.
func EstimatedRange(total, confidence float64) (min, max float64) {
	margin := (1 - confidence) * 0.25
	return Round2(total * (1 - margin)), Round2(total * (1 + margin))
}

// QuoteRank carries the fields CompareQuotes sorts on.
type QuoteRank struct {
	ID             uint
	Guaranteed     bool
	Confidence     float64
	EstimatedTotal float64
}

// CompareQuotes orders quotes by preference: guaranteed first, then higher
// confidence, then lower estimated total. The sort is stable so equal
// quotes keep their submission order.
func CompareQuotes(quotes []QuoteRank) []QuoteRank {
	ranked := make([]QuoteRank, len(quotes))
	copy(ranked, quotes)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Guaranteed != b.Guaranteed {
			return a.Guaranteed
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.EstimatedTotal < b.EstimatedTotal
	})
	return ranked
}

// ConfidenceLabel maps a 0-1 confidence score to its display band. Each
// band includes its lower bound.
func ConfidenceLabel(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return "High Confidence"
	case confidence >= 0.7:
		return "Good Confidence"
	case confidence >= 0.5:
		return "Moderate Confidence"
	default:
		return "Estimate Only"
	}
}
