package billing

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLineItemSubtotal(t *testing.T) {
	item := LineItem{PartCost: 100, Quantity: 1, LaborHours: 2, LaborRate: 50}
	if got := LineItemSubtotal(item); !almostEqual(got, 200) {
		t.Fatalf("expected 200, got %v", got)
	}

	// Quantity multiplies parts only, never labor.
	item = LineItem{PartCost: 25.5, Quantity: 4, LaborHours: 1.5, LaborRate: 80}
	if got := LineItemSubtotal(item); !almostEqual(got, 222) {
		t.Fatalf("expected 222, got %v", got)
	}
}

func TestCalculateTotals(t *testing.T) {
	t.Run("parts plus labor plus fees and tax", func(t *testing.T) {
		items := []LineItem{{PartCost: 100, Quantity: 1, LaborHours: 2, LaborRate: 50}}
		totals := CalculateTotals(items, 10, DefaultTaxRate)

		if !almostEqual(totals.PartsCostTotal, 100) {
			t.Errorf("partsCostTotal = %v, want 100", totals.PartsCostTotal)
		}
		if !almostEqual(totals.LaborCostTotal, 100) {
			t.Errorf("laborCostTotal = %v, want 100", totals.LaborCostTotal)
		}
		if !almostEqual(totals.Subtotal, 210) {
			t.Errorf("subtotal = %v, want 210", totals.Subtotal)
		}
		if !almostEqual(totals.Taxes, 16.80) {
			t.Errorf("taxes = %v, want 16.80", totals.Taxes)
		}
		if !almostEqual(totals.Total, 226.80) {
			t.Errorf("total = %v, want 226.80", totals.Total)
		}
	})

	t.Run("subtotal equals item subtotals plus fees", func(t *testing.T) {
		items := []LineItem{
			{PartCost: 12.34, Quantity: 3, LaborHours: 0.5, LaborRate: 95},
			{PartCost: 0, Quantity: 1, LaborHours: 2.25, LaborRate: 110},
			{PartCost: 199.99, Quantity: 1},
		}
		totals := CalculateTotals(items, 25, DefaultTaxRate)

		var sum float64
		for _, item := range items {
			sum += item.PartCost*float64(item.Quantity) + item.LaborHours*item.LaborRate
		}
		if !almostEqual(totals.Subtotal, Round2(sum+25)) {
			t.Errorf("subtotal = %v, want %v", totals.Subtotal, Round2(sum+25))
		}
		if !almostEqual(totals.Taxes, Round2((sum+25)*DefaultTaxRate)) {
			t.Errorf("taxes = %v, want %v", totals.Taxes, Round2((sum+25)*DefaultTaxRate))
		}
	})

	t.Run("empty items", func(t *testing.T) {
		totals := CalculateTotals(nil, 0, DefaultTaxRate)
		if totals.Total != 0 || totals.Subtotal != 0 || totals.Taxes != 0 {
			t.Fatalf("expected all-zero totals, got %+v", totals)
		}

		// Fees alone still get taxed.
		totals = CalculateTotals(nil, 50, DefaultTaxRate)
		if !almostEqual(totals.Taxes, 4) || !almostEqual(totals.Total, 54) {
			t.Fatalf("expected taxes=4 total=54, got %+v", totals)
		}
	})

	// The calculation does not reject negative inputs; that is the
	// caller's responsibility. Locking the behavior in so a future
	// "fix" here is a conscious decision.
	t.Run("no input validation", func(t *testing.T) {
		totals := CalculateTotals([]LineItem{{PartCost: -100, Quantity: 1}}, 0, DefaultTaxRate)
		if !almostEqual(totals.PartsCostTotal, -100) {
			t.Fatalf("negative part cost passes through, got %v", totals.PartsCostTotal)
		}
	})
}

func TestVariance(t *testing.T) {
	if got := Variance(100, 115); !almostEqual(got, 15.0) {
		t.Errorf("Variance(100, 115) = %v, want 15.0", got)
	}
	if got := Variance(200, 250); !almostEqual(got, 25.0) {
		t.Errorf("Variance(200, 250) = %v, want 25.0", got)
	}
	if got := Variance(100, 80); !almostEqual(got, -20.0) {
		t.Errorf("Variance(100, 80) = %v, want -20.0", got)
	}
	// Divide-by-zero guard: a zero quote total reports no drift. Policy,
	// not a bug.
	if got := Variance(0, 50); got != 0 {
		t.Errorf("Variance(0, 50) = %v, want 0", got)
	}
}

func TestOverTolerance(t *testing.T) {
	// variance is a percent, tolerance a fraction
	if !OverTolerance(16, 0.15) {
		t.Error("16%% should exceed 0.15 tolerance")
	}
	if OverTolerance(14, 0.15) {
		t.Error("14%% should not exceed 0.15 tolerance")
	}
	if OverTolerance(15, 0.15) {
		t.Error("exactly 15%% is within tolerance")
	}
	if !OverTolerance(-16, 0.15) {
		t.Error("negative variance counts by magnitude")
	}
	if !OverTolerance(25, DefaultVarianceTolerance) {
		t.Error("25%% exceeds the default tolerance")
	}
}

func TestDeposit(t *testing.T) {
	if got := Deposit(1000, 20); !almostEqual(got, 200.00) {
		t.Errorf("Deposit(1000, 20) = %v, want 200.00", got)
	}
	if got := Deposit(226.80, DefaultDepositPercent); !almostEqual(got, 45.36) {
		t.Errorf("Deposit(226.80, 20) = %v, want 45.36", got)
	}
	if got := Deposit(0, 20); got != 0 {
		t.Errorf("Deposit(0, 20) = %v, want 0", got)
	}
}

func TestEstimatedRange(t *testing.T) {
	min, max := EstimatedRange(100, 1)
	if !almostEqual(min, 100) || !almostEqual(max, 100) {
		t.Errorf("full confidence should collapse the range, got [%v, %v]", min, max)
	}

	min, max = EstimatedRange(100, 0.6)
	if !almostEqual(min, 90) || !almostEqual(max, 110) {
		t.Errorf("confidence 0.6 => [90, 110], got [%v, %v]", min, max)
	}

	loMin, loMax := EstimatedRange(100, 0.2)
	hiMin, hiMax := EstimatedRange(100, 0.8)
	if loMax-loMin <= hiMax-hiMin {
		t.Error("lower confidence must produce a wider range")
	}
}

func TestCompareQuotes(t *testing.T) {
	t.Run("guaranteed wins regardless of price and confidence", func(t *testing.T) {
		quotes := []QuoteRank{
			{ID: 1, Guaranteed: false, Confidence: 0.9, EstimatedTotal: 100},
			{ID: 2, Guaranteed: true, Confidence: 0.5, EstimatedTotal: 200},
		}
		ranked := CompareQuotes(quotes)
		if ranked[0].ID != 2 {
			t.Fatalf("expected guaranteed quote first, got ID %d", ranked[0].ID)
		}
	})

	t.Run("confidence breaks guaranteed ties", func(t *testing.T) {
		quotes := []QuoteRank{
			{ID: 1, Guaranteed: true, Confidence: 0.6, EstimatedTotal: 100},
			{ID: 2, Guaranteed: true, Confidence: 0.9, EstimatedTotal: 300},
		}
		ranked := CompareQuotes(quotes)
		if ranked[0].ID != 2 {
			t.Fatalf("expected higher confidence first, got ID %d", ranked[0].ID)
		}
	})

	t.Run("price breaks confidence ties", func(t *testing.T) {
		quotes := []QuoteRank{
			{ID: 1, Confidence: 0.8, EstimatedTotal: 300},
			{ID: 2, Confidence: 0.8, EstimatedTotal: 150},
		}
		ranked := CompareQuotes(quotes)
		if ranked[0].ID != 2 {
			t.Fatalf("expected cheaper quote first, got ID %d", ranked[0].ID)
		}
	})

	t.Run("stable on full ties", func(t *testing.T) {
		quotes := []QuoteRank{
			{ID: 1, Confidence: 0.8, EstimatedTotal: 100},
			{ID: 2, Confidence: 0.8, EstimatedTotal: 100},
			{ID: 3, Confidence: 0.8, EstimatedTotal: 100},
		}
		ranked := CompareQuotes(quotes)
		for i, q := range ranked {
			if q.ID != uint(i+1) {
				t.Fatalf("tie order not preserved: %+v", ranked)
			}
		}
	})

	t.Run("does not mutate input", func(t *testing.T) {
		quotes := []QuoteRank{
			{ID: 1, EstimatedTotal: 300},
			{ID: 2, EstimatedTotal: 100},
		}
		CompareQuotes(quotes)
		if quotes[0].ID != 1 {
			t.Fatal("input slice was reordered")
		}
	})
}

func TestConfidenceLabel(t *testing.T) {
	cases := []struct {
		confidence float64
		want       string
	}{
		{1.0, "High Confidence"},
		{0.9, "High Confidence"}, // lower bound inclusive
		{0.89, "Good Confidence"},
		{0.7, "Good Confidence"},
		{0.69, "Moderate Confidence"},
		{0.5, "Moderate Confidence"},
		{0.49, "Estimate Only"},
		{0, "Estimate Only"},
	}
	for _, c := range cases {
		if got := ConfidenceLabel(c.confidence); got != c.want {
			t.Errorf("ConfidenceLabel(%v) = %q, want %q", c.confidence, got, c.want)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(0.125); !almostEqual(got, 0.13) {
		t.Errorf("Round2(0.125) = %v, want 0.13 (half up)", got)
	}
	if got := Round2(0.124); !almostEqual(got, 0.12) {
		t.Errorf("Round2(0.124) = %v, want 0.12", got)
	}
}
