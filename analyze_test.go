package trader

import (
	"context"
	"encoding/json"
	"testing"
)

// setupAnalyzeTest builds a small but complete run: a DCA schedule on one
// instrument, a panicky exit on another, a benchmark, and one instrument
// with no market data at all.
func setupAnalyzeTest(t *testing.T) ([]Action, *MarketData) {
	t.Helper()

	market := NewMarketData()

	vwrl := &Instrument{Ticker: "VWRL", Currency: "USD"}
	on := day("2025-01-01")
	for i := 0; i < 200; i++ {
		vwrl.Prices.Append(on.Add(i), 100+float64(i)*0.1)
	}
	market.Add(vwrl)

	// meme slides 10% in the week before the sell, then keeps sliding
	meme := &Instrument{Ticker: "MEME", Currency: "USD"}
	for i := 0; i < 60; i++ {
		meme.Prices.Append(on.Add(i), 200-float64(i)*2)
	}
	market.Add(meme)

	spy := &Instrument{Ticker: "SPY", Currency: "USD"}
	for i := 0; i < 200; i++ {
		spy.Prices.Append(on.Add(i), 500+float64(i)*0.2)
	}
	market.Add(spy)

	actions := []Action{
		{ID: "d1", Date: day("2025-01-02"), Kind: KindDeposit, Total: M(10000, "USD")},
		testBuy("2025-01-05", "VWRL", 5, 100, 500),
		testBuy("2025-02-04", "VWRL", 5, 103, 515),
		testBuy("2025-03-06", "VWRL", 5, 106, 530),
		testBuy("2025-04-05", "VWRL", 5, 109, 545),
		testBuy("2025-01-10", "MEME", 10, 182, 1820),
		testSell("2025-02-10", "MEME", 10, 120, 1200),
		testBuy("2025-01-20", "GHOST", 10, 50, 500),
	}
	return actions, market
}

func TestAnalyze(t *testing.T) {
	actions, market := setupAnalyzeTest(t)
	r, err := Analyze(context.Background(), actions, market, DefaultConfig())
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}

	if got, want := r.Currency, "USD"; got != want {
		t.Errorf("Currency = %q, want %q", got, want)
	}
	if got, want := len(r.Actions), len(actions); got != want {
		t.Errorf("len(Actions) = %d, want %d (every action appears)", got, want)
	}

	// the monthly VWRL buys form one DCA sequence, and its members keep
	// their scores but lose emotional flags
	if got, want := len(r.DCA), 1; got != want {
		t.Fatalf("len(DCA) = %d, want %d", got, want)
	}
	for i := range r.Actions {
		sa := &r.Actions[i]
		if sa.Instrument != "VWRL" || sa.Kind != KindBuy {
			continue
		}
		if !sa.IsDCA {
			t.Errorf("action %s not marked as DCA member", sa.ID)
		}
		if sa.Flagged(TagFOMOBuy) || sa.Flagged(TagWorstBuy) {
			t.Errorf("action %s keeps an emotional flag despite DCA membership", sa.ID)
		}
	}

	// the MEME exit is a panic sell into a continued slide
	panics := r.FindingsByTag(TagPanicSell)
	if len(panics) != 1 {
		t.Fatalf("panic_sell findings = %d, want 1", len(panics))
	}
	if !panics[0].StayedBelowSellPrice {
		t.Error("StayedBelowSellPrice = false, want true for the continued slide")
	}

	// GHOST has no market data: reported as a gap, valued as null
	if got, want := len(r.Gaps), 1; got != want || r.Gaps[0] != "GHOST" {
		t.Errorf("Gaps = %v, want [GHOST]", r.Gaps)
	}
	var ghost *Holding
	for i := range r.Holdings {
		if r.Holdings[i].Instrument == "GHOST" {
			ghost = &r.Holdings[i]
		}
	}
	if ghost == nil {
		t.Fatal("GHOST missing from holdings")
	}
	if ghost.HasValue {
		t.Error("GHOST.HasValue = true, want unvalued")
	}

	if r.Benchmark.Partial {
		t.Error("Benchmark.Partial = true, want a full comparison against SPY")
	}
	if r.Summary.Verdict == "" {
		t.Error("Summary.Verdict is empty")
	}
	if r.Summary.ScoredTrades == 0 {
		t.Error("Summary.ScoredTrades = 0, want scored trades")
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	r, err := Analyze(context.Background(), nil, NewMarketData(), DefaultConfig())
	if err != nil {
		t.Fatalf("Analyze() failed on empty input: %v", err)
	}
	if len(r.Actions) != 0 || len(r.Findings) != 0 {
		t.Error("empty input must produce an empty, valid report")
	}
}

func TestAnalyze_ReportIsSerializable(t *testing.T) {
	actions, market := setupAnalyzeTest(t)
	r, err := Analyze(context.Background(), actions, market, DefaultConfig())
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal(report) failed: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("report is not a valid JSON object: %v", err)
	}
	for _, key := range []string{"holdings", "actions", "risk", "benchmark", "summary"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("report JSON lacks %q", key)
		}
	}
	// a null current_value for the uncovered instrument
	holdings := doc["holdings"].([]any)
	foundNull := false
	for _, h := range holdings {
		hm := h.(map[string]any)
		if hm["ticker"] == "GHOST" {
			if v, ok := hm["current_value"]; ok && v == nil {
				foundNull = true
			}
		}
	}
	if !foundNull {
		t.Error("GHOST holding must serialize current_value as null")
	}
}
