package trader

import (
	"math"
	"reflect"
	"testing"
)

func TestScoreAction_Sell(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name      string
		prices    []float64 // consecutive days after the trade
		sellPrice float64
		want      float64
	}{
		{
			name:      "sold before a decline",
			prices:    []float64{95, 90, 85, 88, 92},
			sellPrice: 100,
			want:      15, // 100 * (100-85)/100
		},
		{
			name:      "sold before a rally",
			prices:    []float64{105, 110, 115, 112, 118},
			sellPrice: 100,
			want:      -5, // min after is 105, never below the sell price
		},
		{
			name:      "clamped at the lower bound",
			prices:    []float64{500, 600, 700, 800, 900},
			sellPrice: 100,
			want:      -100,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ins := testInstrument("X", "2025-03-02", tc.prices...)
			a := testSell("2025-03-01", "X", 10, tc.sellPrice, 10*tc.sellPrice)
			sa := ScoreAction(&a, ins, &cfg)
			if !sa.HasScore {
				t.Fatal("HasScore = false, want a score")
			}
			if got := float64(sa.TimingScore); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("TimingScore = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScoreAction_Buy(t *testing.T) {
	cfg := DefaultConfig()
	ins := testInstrument("X", "2025-03-02", 105, 112, 120, 118, 110)
	a := testBuy("2025-03-01", "X", 10, 100, 1000)
	sa := ScoreAction(&a, ins, &cfg)
	if !sa.HasScore {
		t.Fatal("HasScore = false, want a score")
	}
	if got, want := float64(sa.TimingScore), 20.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("TimingScore = %v, want %v (max after is 120)", got, want)
	}
}

func TestScoreAction_Bounds(t *testing.T) {
	// whatever the window holds, the score never leaves [-100, 100]
	cfg := DefaultConfig()
	windows := [][]float64{
		{0.0001, 10000},
		{10000, 0.0001},
		{1},
		{math.NaN(), 50, math.NaN()},
	}
	for _, prices := range windows {
		ins := testInstrument("X", "2025-03-02", prices...)
		for _, a := range []Action{
			testBuy("2025-03-01", "X", 1, 100, 100),
			testSell("2025-03-01", "X", 1, 100, 100),
		} {
			sa := ScoreAction(&a, ins, &cfg)
			if !sa.HasScore {
				continue
			}
			if sa.TimingScore < -100 || sa.TimingScore > 100 {
				t.Errorf("ScoreAction(%s, window %v) = %v, out of [-100,100]", a.Kind, prices, sa.TimingScore)
			}
		}
	}
}

func TestScoreAction_PartialWindow(t *testing.T) {
	cfg := DefaultConfig()
	// only three bars exist after the trade, below MinBarsForScore
	ins := testInstrument("X", "2025-03-02", 95, 94, 93)
	a := testSell("2025-03-01", "X", 10, 100, 1000)
	sa := ScoreAction(&a, ins, &cfg)
	if !sa.HasScore {
		t.Fatal("HasScore = false, want a partial score over the available bars")
	}
	if !sa.PartialScore {
		t.Error("PartialScore = false, want true for a short window")
	}
}

func TestScoreAction_NoData(t *testing.T) {
	cfg := DefaultConfig()
	a := testSell("2025-03-01", "X", 10, 100, 1000)
	sa := ScoreAction(&a, nil, &cfg)
	if sa.HasScore || sa.HasImpact {
		t.Error("scoring without market data must leave the action unscored")
	}
}

func TestScoreAction_IntervalPrices(t *testing.T) {
	cfg := DefaultConfig()
	// seven bars after the trade: only the +1 and +5 offsets exist
	ins := testInstrument("X", "2025-03-02", 101, 102, 103, 104, 105, 106, 107)
	a := testBuy("2025-03-01", "X", 1, 100, 100)
	sa := ScoreAction(&a, ins, &cfg)
	want := []IntervalPrice{{Bars: 1, Price: 101}, {Bars: 5, Price: 105}}
	if !reflect.DeepEqual(sa.PriceAfter, want) {
		t.Errorf("PriceAfter = %v, want %v", sa.PriceAfter, want)
	}
}

func TestScoreAction_DollarImpact(t *testing.T) {
	cfg := DefaultConfig()
	// buy at 100 while the nearby window bottomed at 80: paid 20% over the
	// optimum, so a fifth of the 1000 total was avoidable
	ins := testInstrument("X", "2025-02-20", 90, 85, 80, 95, 100, 105, 110, 120, 115)
	a := testBuy("2025-03-01", "X", 10, 100, 1000)
	sa := ScoreAction(&a, ins, &cfg)
	if !sa.HasImpact {
		t.Fatal("HasImpact = false, want an impact figure")
	}
	if got, want := sa.DollarImpact.InexactFloat64(), 200.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("DollarImpact = %v, want %v", got, want)
	}
}

func TestScoreAction_ImpactWindowIsCalendarBounded(t *testing.T) {
	cfg := DefaultConfig()
	// an extreme low sits 40 days before the action, outside the +-30 day
	// impact window, and must not count
	ins := testInstrument("X", "2025-02-25", 99, 98, 97, 96, 95)
	ins.Prices.Append(day("2025-01-20"), 10)
	a := testBuy("2025-03-01", "X", 1, 100, 100)
	_, around := ins.Prices.Between(a.Date.Add(-cfg.ImpactWindowDays), a.Date.Add(cfg.ImpactWindowDays))
	for _, v := range around {
		if v == 10 {
			t.Fatal("fixture error: the outlier leaked into the impact window")
		}
	}
	sa := ScoreAction(&a, ins, &cfg)
	if !sa.HasImpact {
		t.Fatal("HasImpact = false, want an impact figure")
	}
	if got := sa.DollarImpact.InexactFloat64(); got > 100*(100-95)/100.0+1e-9 {
		t.Errorf("DollarImpact = %v, the 40-day-old outlier must not count", got)
	}
}
