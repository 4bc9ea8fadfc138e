package trader

import (
	"math"
	"testing"
)

func TestAdjustForSplits(t *testing.T) {
	market := NewMarketData()
	nvda := testInstrument("NVDA", "2024-01-02", 424)
	nvda.Splits = []SplitEvent{{Date: day("2024-06-10"), Numerator: 10, Denominator: 1}}
	market.Add(nvda)

	actions := []Action{
		testBuy("2024-03-01", "NVDA", 1, 424, 424),
		testBuy("2024-06-10", "NVDA", 5, 42.4, 212), // on the split date, already post-split
		testBuy("2024-07-01", "NVDA", 2, 45, 90),    // after the split, untouched
	}
	AdjustForSplits(actions, market)

	a := actions[0]
	if got, want := a.Quantity.InexactFloat64(), 10.0; got != want {
		t.Errorf("Quantity = %v, want %v", got, want)
	}
	if got, want := a.Price, 42.4; math.Abs(got-want) > 1e-9 {
		t.Errorf("Price = %v, want %v", got, want)
	}
	if got, want := a.Total.InexactFloat64(), 424.0; got != want {
		t.Errorf("Total = %v, want %v (account total must not change)", got, want)
	}
	if !a.SplitAdjusted() {
		t.Error("SplitAdjusted() = false, want true")
	}
	if got, want := a.OriginalQuantity.InexactFloat64(), 1.0; got != want {
		t.Errorf("OriginalQuantity = %v, want %v", got, want)
	}

	for _, a := range actions[1:] {
		if a.SplitAdjusted() {
			t.Errorf("action on %s adjusted, want untouched", a.Date)
		}
	}
}

func TestAdjustForSplits_ReverseSplit(t *testing.T) {
	market := NewMarketData()
	ins := testInstrument("X", "2024-01-02", 100)
	// 1-for-10 reverse split: fewer shares, higher price
	ins.Splits = []SplitEvent{{Date: day("2024-06-10"), Numerator: 1, Denominator: 10}}
	market.Add(ins)

	actions := []Action{testBuy("2024-03-01", "X", 100, 1, 100)}
	AdjustForSplits(actions, market)

	if got, want := actions[0].Quantity.InexactFloat64(), 10.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Quantity = %v, want %v", got, want)
	}
	if got, want := actions[0].Price, 10.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Price = %v, want %v", got, want)
	}
	if got, want := actions[0].Total.InexactFloat64(), 100.0; got != want {
		t.Errorf("Total = %v, want %v", got, want)
	}
}

func TestAdjustForSplits_NoMarketData(t *testing.T) {
	actions := []Action{testBuy("2024-03-01", "GONE", 1, 424, 424)}
	AdjustForSplits(actions, NewMarketData())
	if actions[0].SplitAdjusted() {
		t.Error("an instrument without market data must keep factor 1")
	}
}

func TestTradeToAccount(t *testing.T) {
	tests := []struct {
		amount, rate, want float64
	}{
		{100, 100, 1},     // minor-unit quote, e.g. GBX against GBP
		{100, 1.2, 83.33}, // ordinary FX divisor
		{100, 0, 100},     // missing rate means same currency
		{100, 1, 100},
	}
	for _, tc := range tests {
		if got := tradeToAccount(tc.amount, tc.rate); math.Abs(got-tc.want) > 0.005 {
			t.Errorf("tradeToAccount(%v, %v) = %v, want %v", tc.amount, tc.rate, got, tc.want)
		}
	}
}
